package session

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

// newGateRouter builds a router exposing the gate operations so tests can
// drive them through real cookie round trips.
func newGateRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	g := NewGate()

	r := gin.New()
	r.Use(CookieMiddleware("TestSession", []byte("test-secret"), false))

	r.GET("/state", func(c *gin.Context) {
		st := g.Load(c)
		c.JSON(http.StatusOK, gin.H{
			"authenticated": st.Authenticated(),
			"username":      st.Username,
			"role":          st.Role,
		})
	})
	r.POST("/login", func(c *gin.Context) {
		if err := g.Login(c, c.Query("username"), c.Query("role")); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Status(http.StatusOK)
	})
	r.POST("/logout", func(c *gin.Context) {
		if err := g.Logout(c); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Status(http.StatusOK)
	})
	return r
}

// do runs a request with the cookies collected so far and returns the
// recorder plus the updated cookie header.
func do(t *testing.T, r *gin.Engine, method, target, cookies string) (*httptest.ResponseRecorder, string) {
	t.Helper()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	if cookies != "" {
		req.Header.Set("Cookie", cookies)
	}
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("%s %s: status=%d body=%s", method, target, w.Code, w.Body.String())
	}

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

func stateOf(t *testing.T, w *httptest.ResponseRecorder) (bool, string, string) {
	t.Helper()

	var m map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatalf("bad state body %q: %v", w.Body.String(), err)
	}
	return m["authenticated"].(bool), m["username"].(string), m["role"].(string)
}

func TestGate_LoginLoadLogout(t *testing.T) {
	r := newGateRouter()

	// fresh session is anonymous
	w, cookies := do(t, r, http.MethodGet, "/state", "")
	if auth, _, _ := stateOf(t, w); auth {
		t.Fatalf("fresh session should be anonymous")
	}

	// login with role enrichment
	_, cookies = do(t, r, http.MethodPost, "/login?username=alice&role=admin", cookies)
	w, cookies = do(t, r, http.MethodGet, "/state", cookies)
	auth, username, role := stateOf(t, w)
	if !auth || username != "alice" || role != "admin" {
		t.Fatalf("expected authenticated alice/admin, got auth=%v username=%q role=%q", auth, username, role)
	}

	// logout clears everything
	_, cookies = do(t, r, http.MethodPost, "/logout", cookies)
	w, cookies = do(t, r, http.MethodGet, "/state", cookies)
	if auth, username, _ := stateOf(t, w); auth || username != "" {
		t.Fatalf("expected anonymous after logout, got auth=%v username=%q", auth, username)
	}

	// logout on an anonymous session is a no-op
	_, cookies = do(t, r, http.MethodPost, "/logout", cookies)
	w, _ = do(t, r, http.MethodGet, "/state", cookies)
	if auth, _, _ := stateOf(t, w); auth {
		t.Fatalf("double logout should stay anonymous")
	}
}

func TestGate_LoginWithoutRole(t *testing.T) {
	r := newGateRouter()

	_, cookies := do(t, r, http.MethodPost, "/login?username=bob", "")
	w, _ := do(t, r, http.MethodGet, "/state", cookies)
	auth, username, role := stateOf(t, w)
	if !auth || username != "bob" {
		t.Fatalf("role must not be required for authentication, got auth=%v username=%q", auth, username)
	}
	if role != "" {
		t.Fatalf("expected empty role, got %q", role)
	}
}

func TestState_Authenticated(t *testing.T) {
	cases := []struct {
		name string
		st   State
		want bool
	}{
		{name: "flag and username", st: State{LoggedIn: true, Username: "alice"}, want: true},
		{name: "flag without username", st: State{LoggedIn: true}, want: false},
		{name: "username without flag", st: State{Username: "alice"}, want: false},
		{name: "zero value", st: State{}, want: false},
	}
	for _, tt := range cases {
		if got := tt.st.Authenticated(); got != tt.want {
			t.Fatalf("%s: want %v, got %v", tt.name, tt.want, got)
		}
	}
}
