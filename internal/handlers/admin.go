package handlers

import (
	"net/http"

	"github.com/diewo77/go-courses/internal/httpx"
	"github.com/diewo77/go-courses/internal/models"
	"github.com/diewo77/go-courses/internal/routes"
)

type AdminHandler struct{ Base }

func NewAdminHandler(b Base) *AdminHandler { return &AdminHandler{Base: b} }

// Dashboard aggregates the marketplace statistics. Everything is recomputed
// per request; chart rendering is the template's problem, this hands over
// plain numbers.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats := map[string]any{
		"usersByRole":        h.Repo.UserCountsByRole(),
		"priceStats":         h.Repo.CoursePriceStats(),
		"coursesPerProvider": h.Repo.CoursesPerProvider(),
		"topEnrolled":        h.Repo.TopEnrolledCourses(5),
		"simulatedRevenue":   h.Repo.SimulatedRevenue(),
		"pendingCourses":     len(h.Repo.PendingCourses()),
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, stats)
		return
	}
	h.render(w, r, routes.AdminDashboard, "admin-dashboard.html", map[string]any{"Stats": stats})
}

// Users lists every registered account.
func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	users := h.Repo.AllUsers()
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"users": users})
		return
	}
	h.render(w, r, routes.AdminUsers, "admin-users.html", map[string]any{"Users": users})
}

// Courses lists every course with its moderation state.
func (h *AdminHandler) Courses(w http.ResponseWriter, r *http.Request) {
	courses := h.Repo.AllCourses()
	providers := map[string]string{}
	for _, c := range courses {
		if _, ok := providers[c.ProviderID]; ok {
			continue
		}
		if p, found := h.Repo.FindUserByID(c.ProviderID); found {
			providers[c.ProviderID] = p.Username
		}
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"courses": courses})
		return
	}
	h.render(w, r, routes.AdminCourses, "admin-courses.html", map[string]any{
		"Courses": courses, "Providers": providers,
	})
}

// Approve moves a pending course to approved.
func (h *AdminHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, models.StatusApproved)
}

// Reject moves a pending course to rejected.
func (h *AdminHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, models.StatusRejected)
}

func (h *AdminHandler) setStatus(w http.ResponseWriter, r *http.Request, status string) {
	id := r.PathValue("param")
	if !h.Repo.SetCourseStatus(id, status) {
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusNotFound, "course_not_found", nil)
			return
		}
		redirect(w, r, routes.AdminCourses)
		return
	}
	if httpx.WantsJSON(r) {
		c, _ := h.Repo.FindCourseByID(id)
		httpx.JSON(w, http.StatusOK, map[string]any{"course": c})
		return
	}
	redirect(w, r, routes.AdminCourses)
}
