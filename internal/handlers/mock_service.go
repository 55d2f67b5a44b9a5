package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"

	sf "secureforms"
	"secureforms/internal/service"
	"secureforms/internal/session"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAccounts struct {
	loadUser        *sf.User
	loadErr         error
	createErr       error
	usernameAvail   service.Availability
	emailAvail      service.Availability
	resolveUsername string
	resolveErr      error
	verifyErr       error

	lastCreateUsername string
	lastCreateEmail    string
	lastVerifyUsername string
	lastVerifyPassword string
	createCalls        int
}

func (m *mockAccounts) LoadByUsername(username string) (*sf.User, error) {
	return m.loadUser, m.loadErr
}

func (m *mockAccounts) Create(username, email, role, password, accountType string) error {
	m.createCalls++
	m.lastCreateUsername = username
	m.lastCreateEmail = email
	return m.createErr
}

func (m *mockAccounts) CheckUsername(username string) service.Availability {
	return m.usernameAvail
}

func (m *mockAccounts) CheckEmail(email string) service.Availability {
	return m.emailAvail
}

func (m *mockAccounts) ResolveUsernameFromEmail(email string) (string, error) {
	return m.resolveUsername, m.resolveErr
}

func (m *mockAccounts) VerifyPassword(username, plaintext string) error {
	m.lastVerifyUsername = username
	m.lastVerifyPassword = plaintext
	return m.verifyErr
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s, session.CookieMiddleware("TestSession", []byte("test-secret"), false), nil)
	return h.InitRoutes()
}

// perform issues a request, attaching previously collected cookies, and
// returns the recorder plus the updated cookie header for the next request.
func perform(r *gin.Engine, method, target, body, cookies string) (*httptest.ResponseRecorder, string) {
	w := httptest.NewRecorder()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if cookies != "" {
		req.Header.Set("Cookie", cookies)
	}

	r.ServeHTTP(w, req)

	if set := w.Result().Cookies(); len(set) > 0 {
		cookies = ""
		for i, ck := range set {
			if i > 0 {
				cookies += "; "
			}
			cookies += ck.Name + "=" + ck.Value
		}
	}
	return w, cookies
}
