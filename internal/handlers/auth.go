package handlers

import (
	"net/http"
	"strings"

	"github.com/diewo77/go-courses/internal/httpx"
	"github.com/diewo77/go-courses/internal/routes"
)

type AuthHandler struct{ Base }

func NewAuthHandler(b Base) *AuthHandler { return &AuthHandler{Base: b} }

// Login renders the form on GET and attempts the login on POST. Already
// logged-in users land on their dashboard.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		if h.Gate.IsLoggedIn() {
			redirect(w, r, routes.Dashboard)
			return
		}
		h.render(w, r, routes.Login, "login.html", map[string]any{"Username": ""})
		return
	}
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	res := h.Gate.Login(username, password)
	if httpx.WantsJSON(r) {
		if !res.OK {
			httpx.JSONError(w, http.StatusUnauthorized, res.Code, nil)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{"code": res.Code, "user": res.User})
		return
	}
	if !res.OK {
		h.render(w, r, routes.Login, "login.html", map[string]any{"Error": res.Code, "Username": username})
		return
	}
	redirect(w, r, routes.Dashboard)
}

// Register renders the form on GET and runs the gate's validation chain on
// POST. The failing check's message code comes back verbatim for translation.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		if h.Gate.IsLoggedIn() {
			redirect(w, r, routes.Dashboard)
			return
		}
		h.render(w, r, routes.Register, "register.html", map[string]any{"Username": "", "Role": ""})
		return
	}
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	role := r.FormValue("role")
	adminCode := r.FormValue("admin_code")
	res := h.Gate.Register(username, password, role, adminCode)
	if httpx.WantsJSON(r) {
		if !res.OK {
			httpx.JSONError(w, http.StatusBadRequest, res.Code, nil)
			return
		}
		httpx.JSON(w, http.StatusCreated, map[string]any{"code": res.Code, "user": res.User})
		return
	}
	if !res.OK {
		h.render(w, r, routes.Register, "register.html", map[string]any{
			"Error": res.Code, "Username": username, "Role": role,
		})
		return
	}
	h.render(w, r, routes.Login, "login.html", map[string]any{"Notice": res.Code, "Username": username})
}

// Logout clears the session and returns to the landing page.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.Gate.Logout()
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]string{"code": "auth.logged_out"})
		return
	}
	redirect(w, r, routes.Home)
}
