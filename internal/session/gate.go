package session

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

// Session keys. The fixed key set is the whole contract with the backend.
const (
	keyLoggedIn = "loggedin"
	keyUsername = "username"
	keyRole     = "user_role"
)

const cookieMaxAge = 12 * 60 * 60 // seconds

// State is the per-request view of the client session.
type State struct {
	LoggedIn bool
	Username string
	Role     string
}

// Authenticated reports whether the state counts as logged in. The contract
// is flag+username; a cached role is optional enrichment and never required.
func (s State) Authenticated() bool {
	return s.LoggedIn && s.Username != ""
}

// Gate reads and writes login state in the request-scoped session. It never
// verifies credentials; that is the caller's job, done against the account
// store before Login.
type Gate struct{}

func NewGate() *Gate {
	return &Gate{}
}

// CookieMiddleware returns the gin middleware that backs the gate with a
// signed cookie store.
func CookieMiddleware(name string, secret []byte, secure bool) gin.HandlerFunc {
	store := cookie.NewStore(secret)
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   cookieMaxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	return sessions.Sessions(name, store)
}

// Load reads the session into a State. Missing or mistyped keys read as
// zero values, which yields the anonymous state.
func (g *Gate) Load(c *gin.Context) State {
	sess := sessions.Default(c)

	var st State
	if v, ok := sess.Get(keyLoggedIn).(bool); ok {
		st.LoggedIn = v
	}
	if v, ok := sess.Get(keyUsername).(string); ok {
		st.Username = v
	}
	if v, ok := sess.Get(keyRole).(string); ok {
		st.Role = v
	}
	return st
}

// Login marks the session as authenticated for username. A non-empty role is
// cached as enrichment for handlers that want it without a store round trip.
func (g *Gate) Login(c *gin.Context, username, role string) error {
	sess := sessions.Default(c)
	sess.Set(keyLoggedIn, true)
	sess.Set(keyUsername, username)
	if role != "" {
		sess.Set(keyRole, role)
	}
	return sess.Save()
}

// Logout clears the login keys. Logging out an anonymous session is a no-op,
// not an error.
func (g *Gate) Logout(c *gin.Context) error {
	sess := sessions.Default(c)
	sess.Delete(keyUsername)
	sess.Delete(keyLoggedIn)
	sess.Delete(keyRole)
	return sess.Save()
}
