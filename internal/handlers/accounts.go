package handlers

import (
	"errors"
	"net/http"
	"strings"

	"secureforms/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	statusOK         = "ok"
	statusRegistered = "registered"
	statusLoggedIn   = "logged_in"
	statusLoggedOut  = "logged_out"

	errInvalidCredentials = "invalid credentials"
	errCreateAccount      = "failed to create account"
	errAvailabilityCheck  = "availability check unavailable"
	errSessionSave        = "failed to update session"
)

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

// loginRequest accepts either a username or an email in the login field.
type loginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// bindJSONOrBadRequest tries to bind the request body into dst and writes a 400 JSON on failure.
// Returns false if the request was already handled (aborted), true otherwise.
func (h *Handler) bindJSONOrBadRequest(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		if h.log != nil {
			h.log.Infow("auth_bad_request_body", "err", err)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

func (h *Handler) register(c *gin.Context) {
	var input registerRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}
	if strings.TrimSpace(input.Password) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password must not be blank"})
		return
	}

	// Pre-checks give precise answers for the common cases; the UNIQUE
	// constraints remain the arbiter for concurrent registrations.
	switch h.services.CheckUsername(input.Username) {
	case service.Taken:
		c.JSON(http.StatusConflict, gin.H{"error": "username is taken"})
		return
	case service.AvailabilityUnknown:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": errAvailabilityCheck})
		return
	}
	switch h.services.CheckEmail(input.Email) {
	case service.Taken:
		c.JSON(http.StatusConflict, gin.H{"error": "email is taken"})
		return
	case service.AvailabilityUnknown:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": errAvailabilityCheck})
		return
	}

	err := h.services.Create(input.Username, input.Email, input.Role, input.Password, "")
	if err != nil {
		if errors.Is(err, service.ErrInvalidEmail) {
			c.JSON(http.StatusBadRequest, gin.H{"error": service.ErrInvalidEmail.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errCreateAccount, "account_create_failed", err,
			"username", input.Username)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": statusRegistered, "username": input.Username})
}

func (h *Handler) login(c *gin.Context) {
	var input loginRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	username := input.Login
	if strings.Contains(username, "@") {
		resolved, err := h.services.ResolveUsernameFromEmail(username)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": errInvalidCredentials})
				return
			}
			h.logAndJSONError(c, http.StatusInternalServerError, errInvalidCredentials, "login_resolve_failed", err)
			return
		}
		username = resolved
	}

	if err := h.services.VerifyPassword(username, input.Password); err != nil {
		if errors.Is(err, service.ErrNotFound) || errors.Is(err, service.ErrInvalidPassword) {
			if h.log != nil {
				h.log.Infow("auth_sign_in_failed", "username", username, "err", err)
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": errInvalidCredentials})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errInvalidCredentials, "login_verify_failed", err,
			"username", username)
		return
	}

	// Cache the role as session enrichment; the account must exist because a
	// credential just verified against it.
	user, err := h.services.LoadByUsername(username)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errInvalidCredentials, "login_load_failed", err,
			"username", username)
		return
	}

	if err := h.gate.Login(c, user.Username, user.Role); err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errSessionSave, "login_session_save_failed", err,
			"username", username)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": statusLoggedIn, "username": user.Username})
}

func (h *Handler) logout(c *gin.Context) {
	if err := h.gate.Logout(c); err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errSessionSave, "logout_session_save_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusLoggedOut})
}

// available answers uniqueness probes for the registration form. Exactly one
// of username= or email= must be supplied.
func (h *Handler) available(c *gin.Context) {
	username := c.Query("username")
	email := c.Query("email")
	if (username == "") == (email == "") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "supply exactly one of username or email"})
		return
	}

	var result service.Availability
	if username != "" {
		result = h.services.CheckUsername(username)
	} else {
		result = h.services.CheckEmail(email)
	}

	if result == service.AvailabilityUnknown {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": errAvailabilityCheck})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"available": result == service.Available,
		"status":    result.String(),
	})
}

// me materializes the current account from the store, so the role is always
// fresh rather than the login-time session copy.
func (h *Handler) me(c *gin.Context) {
	state := sessionStateFrom(c)

	user, err := h.services.LoadByUsername(state.Username)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			// Session refers to an account that no longer exists.
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown account"})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load account", "me_load_failed", err,
			"username", state.Username)
		return
	}

	c.JSON(http.StatusOK, user)
}

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}
