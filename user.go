package secureforms

// Account origin: created through the registration form or provisioned by an
// external identity provider.
const (
	AccountTypeDirect = "DIRECT"
	AccountTypeOAuth  = "OAUTH"
)

// User is an account row as exposed to callers. The password hash never
// leaves the repository layer.
type User struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"` // free-form, e.g. "admin", "editor"
	Type     string `json:"type"` // DIRECT | OAUTH
}
