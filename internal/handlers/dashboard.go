package handlers

import (
	"net/http"

	"github.com/diewo77/go-courses/internal/httpx"
	"github.com/diewo77/go-courses/internal/models"
	"github.com/diewo77/go-courses/internal/repo"
	"github.com/diewo77/go-courses/internal/routes"
)

type DashboardHandler struct{ Base }

func NewDashboardHandler(b Base) *DashboardHandler { return &DashboardHandler{Base: b} }

// SessionNotice is a live session flagged for the client dashboard. New is set
// when the session was scheduled after the last notification check.
type SessionNotice struct {
	CourseID    string             `json:"courseId"`
	CourseTitle string             `json:"courseTitle"`
	Session     models.LiveSession `json:"session"`
	New         bool               `json:"new"`
}

// Dashboard dispatches on the logged-in role. Admins are sent to the admin
// dashboard; the route guard has already bounced anonymous users.
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	u, ok := h.Gate.CurrentUser()
	if !ok {
		redirect(w, r, routes.Login)
		return
	}
	switch u.Role {
	case models.RoleAdmin:
		redirect(w, r, routes.AdminDashboard)
	case models.RoleProvider:
		h.providerDashboard(w, r, u)
	default:
		h.clientDashboard(w, r, u)
	}
}

func (h *DashboardHandler) providerDashboard(w http.ResponseWriter, r *http.Request, u models.User) {
	courses := h.Repo.CoursesByProvider(u.ID)
	enrolled := 0
	for _, c := range courses {
		enrolled += len(c.EnrolledStudentIDs)
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{
			"courses": courses, "enrolledTotal": enrolled, "revenue": h.Repo.SimulatedRevenue(),
		})
		return
	}
	h.render(w, r, routes.Dashboard, "dashboard-provider.html", map[string]any{
		"Courses": courses, "EnrolledTotal": enrolled,
	})
}

// clientDashboard lists enrolled courses and upcoming live sessions, flagging
// sessions scheduled since the last visit as new, then advances the
// last-notification-check scalar.
func (h *DashboardHandler) clientDashboard(w http.ResponseWriter, r *http.Request, u models.User) {
	courses := h.Repo.CoursesEnrolledByStudent(u.ID)
	lastCheck, checked := h.Repo.LastNotificationCheck()

	var notices []SessionNotice
	for _, c := range courses {
		for _, ls := range c.LiveSessions {
			notices = append(notices, SessionNotice{
				CourseID:    c.ID,
				CourseTitle: c.Title,
				Session:     ls,
				New:         !checked || ls.ScheduledAt > lastCheck,
			})
		}
	}
	if err := h.Repo.SetLastNotificationCheck(repo.Now()); err != nil {
		// A failed advance only means a notice may show as new twice.
		_ = err
	}

	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"courses": courses, "sessions": notices})
		return
	}
	h.render(w, r, routes.Dashboard, "dashboard-client.html", map[string]any{
		"Courses": courses, "Sessions": notices,
	})
}
