package handlers

import (
	"fmt"
	"net/http"

	"secureforms/internal/pages"
	"secureforms/internal/session"

	"github.com/gin-gonic/gin"
)

const loginPath = "/accounts/login"

// dispatchPage runs any non-API request through the page router. Paths the
// table does not know render not-found.
func (h *Handler) dispatchPage(c *gin.Context) {
	state := h.gate.Load(c)
	if !h.pages.Dispatch(c, pages.Normalize(c.Request.URL.Path), state) {
		h.notFoundPage(c)
	}
}

// rootPage always sends the visitor to the login page.
func (h *Handler) rootPage(c *gin.Context, _ session.State) {
	c.Redirect(http.StatusFound, loginPath)
}

// redirectToLogin is the fallback for protected pages hit anonymously.
func (h *Handler) redirectToLogin(c *gin.Context, _ session.State) {
	c.Redirect(http.StatusFound, loginPath)
}

func (h *Handler) loginPage(c *gin.Context, _ session.State) {
	renderPage(c, "Sign In", `<h1>Secure Forms</h1><p>Sign in to continue.</p>`)
}

// dashboardPage materializes the current user from the account store so the
// displayed role survives role changes made after login.
func (h *Handler) dashboardPage(c *gin.Context, state session.State) {
	user, err := h.services.LoadByUsername(state.Username)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load account", "dashboard_load_failed", err,
			"username", state.Username)
		return
	}
	renderPage(c, "Dashboard",
		fmt.Sprintf(`<h1>Dashboard</h1><p>Signed in as %s (%s).</p>`, user.Username, user.Role))
}

func (h *Handler) newFormPage(c *gin.Context, state session.State) {
	renderPage(c, "New Form",
		fmt.Sprintf(`<h1>New Form</h1><p>Create a new secure form, %s.</p>`, state.Username))
}

func (h *Handler) notFoundPage(c *gin.Context) {
	c.Data(http.StatusNotFound, contentTypeHTML,
		[]byte(`<!doctype html><title>Not Found</title><h1>404</h1><p>No such page.</p>`))
}

const contentTypeHTML = "text/html; charset=utf-8"

func renderPage(c *gin.Context, title, body string) {
	c.Data(http.StatusOK, contentTypeHTML,
		[]byte(fmt.Sprintf(`<!doctype html><title>%s - Secure Forms</title>%s`, title, body)))
}
