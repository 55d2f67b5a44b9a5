package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	sf "secureforms"
	"secureforms/internal/service"
)

func TestRegister(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		acc := &mockAccounts{usernameAvail: service.Available, emailAvail: service.Available}
		r := newTestRouter(&service.Service{Accounts: acc})

		w, _ := perform(r, http.MethodPost, "/auth/register",
			`{"username":"alice","email":"alice@x.com","password":"pw123"}`, "")
		if w.Code != http.StatusOK {
			t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
		}
		if acc.lastCreateUsername != "alice" || acc.lastCreateEmail != "alice@x.com" {
			t.Fatalf("create called with %q/%q", acc.lastCreateUsername, acc.lastCreateEmail)
		}
	})

	t.Run("taken username is a conflict, no create", func(t *testing.T) {
		acc := &mockAccounts{usernameAvail: service.Taken, emailAvail: service.Available}
		r := newTestRouter(&service.Service{Accounts: acc})

		w, _ := perform(r, http.MethodPost, "/auth/register",
			`{"username":"alice","email":"alice@x.com","password":"pw123"}`, "")
		if w.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", w.Code)
		}
		if acc.createCalls != 0 {
			t.Fatalf("create must not run for a taken username")
		}
	})

	t.Run("availability store failure is 503, not 409", func(t *testing.T) {
		acc := &mockAccounts{usernameAvail: service.AvailabilityUnknown}
		r := newTestRouter(&service.Service{Accounts: acc})

		w, _ := perform(r, http.MethodPost, "/auth/register",
			`{"username":"alice","email":"alice@x.com","password":"pw123"}`, "")
		if w.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", w.Code)
		}
	})

	t.Run("invalid email is a bad request", func(t *testing.T) {
		acc := &mockAccounts{
			usernameAvail: service.Available,
			emailAvail:    service.Available,
			createErr:     service.ErrInvalidEmail,
		}
		r := newTestRouter(&service.Service{Accounts: acc})

		w, _ := perform(r, http.MethodPost, "/auth/register",
			`{"username":"alice","email":"not-an-email","password":"pw123"}`, "")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("missing fields rejected by binding", func(t *testing.T) {
		r := newTestRouter(&service.Service{Accounts: &mockAccounts{}})

		w, _ := perform(r, http.MethodPost, "/auth/register", `{"username":"alice"}`, "")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})
}

func TestLogin(t *testing.T) {
	alice := &sf.User{Username: "alice", Email: "alice@x.com", Role: "admin", Type: "DIRECT"}

	t.Run("by username", func(t *testing.T) {
		acc := &mockAccounts{loadUser: alice}
		r := newTestRouter(&service.Service{Accounts: acc})

		w, cookies := perform(r, http.MethodPost, "/auth/login",
			`{"login":"alice","password":"pw123"}`, "")
		if w.Code != http.StatusOK {
			t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
		}
		if acc.lastVerifyUsername != "alice" || acc.lastVerifyPassword != "pw123" {
			t.Fatalf("verify called with %q/%q", acc.lastVerifyUsername, acc.lastVerifyPassword)
		}

		// the session cookie now authenticates /auth/me
		w, _ = perform(r, http.MethodGet, "/auth/me", "", cookies)
		if w.Code != http.StatusOK {
			t.Fatalf("me after login: status=%d body=%s", w.Code, w.Body.String())
		}
		var got sf.User
		if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
			t.Fatalf("bad me body: %v", err)
		}
		if got.Username != "alice" || got.Role != "admin" {
			t.Fatalf("unexpected me payload: %+v", got)
		}
	})

	t.Run("by email resolves the username first", func(t *testing.T) {
		acc := &mockAccounts{loadUser: alice, resolveUsername: "alice"}
		r := newTestRouter(&service.Service{Accounts: acc})

		w, _ := perform(r, http.MethodPost, "/auth/login",
			`{"login":"alice@x.com","password":"pw123"}`, "")
		if w.Code != http.StatusOK {
			t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
		}
		if acc.lastVerifyUsername != "alice" {
			t.Fatalf("expected verify against resolved username, got %q", acc.lastVerifyUsername)
		}
	})

	t.Run("wrong password and unknown user both read as 401", func(t *testing.T) {
		for _, verifyErr := range []error{service.ErrInvalidPassword, service.ErrNotFound} {
			acc := &mockAccounts{loadUser: alice, verifyErr: verifyErr}
			r := newTestRouter(&service.Service{Accounts: acc})

			w, _ := perform(r, http.MethodPost, "/auth/login",
				`{"login":"alice","password":"wrong"}`, "")
			if w.Code != http.StatusUnauthorized {
				t.Fatalf("%v: expected 401, got %d", verifyErr, w.Code)
			}
		}
	})

	t.Run("unknown email reads as 401", func(t *testing.T) {
		acc := &mockAccounts{resolveErr: service.ErrNotFound}
		r := newTestRouter(&service.Service{Accounts: acc})

		w, _ := perform(r, http.MethodPost, "/auth/login",
			`{"login":"nobody@x.com","password":"pw123"}`, "")
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})

	t.Run("store failure during verify is 500", func(t *testing.T) {
		acc := &mockAccounts{verifyErr: errors.New("db down")}
		r := newTestRouter(&service.Service{Accounts: acc})

		w, _ := perform(r, http.MethodPost, "/auth/login",
			`{"login":"alice","password":"pw123"}`, "")
		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", w.Code)
		}
	})
}

func TestLogout(t *testing.T) {
	alice := &sf.User{Username: "alice", Role: "admin"}
	acc := &mockAccounts{loadUser: alice}
	r := newTestRouter(&service.Service{Accounts: acc})

	_, cookies := perform(r, http.MethodPost, "/auth/login",
		`{"login":"alice","password":"pw123"}`, "")

	w, cookies := perform(r, http.MethodPost, "/auth/logout", "", cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("logout status=%d", w.Code)
	}

	w, cookies = perform(r, http.MethodGet, "/auth/me", "", cookies)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("me after logout: expected 401, got %d", w.Code)
	}

	// logout of an anonymous session is still a 200
	w, _ = perform(r, http.MethodPost, "/auth/logout", "", cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("anonymous logout: expected 200, got %d", w.Code)
	}
}

func TestAvailable(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		acc      *mockAccounts
		wantCode int
		wantFree bool
	}{
		{
			name:     "username free",
			target:   "/auth/available?username=alice",
			acc:      &mockAccounts{usernameAvail: service.Available},
			wantCode: http.StatusOK,
			wantFree: true,
		},
		{
			name:     "email taken",
			target:   "/auth/available?email=alice@x.com",
			acc:      &mockAccounts{emailAvail: service.Taken},
			wantCode: http.StatusOK,
			wantFree: false,
		},
		{
			name:     "store failure distinguishable from taken",
			target:   "/auth/available?username=alice",
			acc:      &mockAccounts{usernameAvail: service.AvailabilityUnknown},
			wantCode: http.StatusServiceUnavailable,
		},
		{
			name:     "no parameter",
			target:   "/auth/available",
			acc:      &mockAccounts{},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "both parameters",
			target:   "/auth/available?username=a&email=a@x.com",
			acc:      &mockAccounts{},
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(&service.Service{Accounts: tt.acc})

			w, _ := perform(r, http.MethodGet, tt.target, "", "")
			if w.Code != tt.wantCode {
				t.Fatalf("status=%d want=%d body=%s", w.Code, tt.wantCode, w.Body.String())
			}
			if tt.wantCode != http.StatusOK {
				return
			}
			var m map[string]any
			_ = json.Unmarshal(w.Body.Bytes(), &m)
			if m["available"].(bool) != tt.wantFree {
				t.Fatalf("available=%v want=%v", m["available"], tt.wantFree)
			}
		})
	}
}

func TestMe_RequiresSession(t *testing.T) {
	r := newTestRouter(&service.Service{Accounts: &mockAccounts{}})

	w, _ := perform(r, http.MethodGet, "/auth/me", "", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a session, got %d", w.Code)
	}
}
