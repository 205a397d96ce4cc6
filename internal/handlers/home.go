package handlers

import (
	"net/http"

	"github.com/diewo77/go-courses/internal/httpx"
	"github.com/diewo77/go-courses/internal/routes"
)

type HomeHandler struct{ Base }

func NewHomeHandler(b Base) *HomeHandler { return &HomeHandler{Base: b} }

// Home is the public landing page: a teaser of the approved catalog.
func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	courses := h.Repo.ApprovedCourses()
	if len(courses) > 3 {
		courses = courses[:3]
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"featured": courses})
		return
	}
	h.render(w, r, routes.Home, "home.html", map[string]any{"Featured": courses})
}

// NotFound renders the catch-all view for unknown paths.
func (h *HomeHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	if httpx.WantsJSON(r) {
		httpx.JSONError(w, http.StatusNotFound, "route_not_found", nil)
		return
	}
	w.WriteHeader(http.StatusNotFound)
	h.render(w, r, routes.Home, "not-found.html", nil)
}
