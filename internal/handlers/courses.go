package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/diewo77/go-courses/internal/httpx"
	"github.com/diewo77/go-courses/internal/models"
	"github.com/diewo77/go-courses/internal/routes"
	"github.com/diewo77/go-courses/internal/validation"
)

type CourseHandler struct{ Base }

func NewCourseHandler(b Base) *CourseHandler { return &CourseHandler{Base: b} }

// Browse lists approved courses only; pending and rejected ones are invisible
// to the catalog.
func (h *CourseHandler) Browse(w http.ResponseWriter, r *http.Request) {
	courses := h.Repo.ApprovedCourses()
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"courses": courses})
		return
	}
	h.render(w, r, routes.BrowseCourses, "browse-courses.html", map[string]any{"Courses": courses})
}

// Detail shows one course with its materials and live sessions. The enroll
// button switches to a simulated payment confirmation for priced courses.
func (h *CourseHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("param")
	c, ok := h.Repo.FindCourseByID(id)
	if !ok {
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusNotFound, "course_not_found", nil)
			return
		}
		h.render(w, r, routes.CourseDetail, "not-found.html", nil)
		return
	}
	provider, _ := h.Repo.FindUserByID(c.ProviderID)
	u, _ := h.Gate.CurrentUser()
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"course": c, "provider": provider.Username})
		return
	}
	h.render(w, r, routes.CourseDetail, "course-detail.html", map[string]any{
		"Course":       c,
		"Provider":     provider,
		"Enrolled":     c.IsEnrolled(u.ID),
		"Owner":        u.ID == c.ProviderID,
		"CanModerate":  u.Role == models.RoleAdmin || u.ID == c.ProviderID,
		"NeedsPayment": !c.Free(),
		"Notice":       r.URL.Query().Get("notice"),
		"Error":        r.URL.Query().Get("error"),
	})
}

// MyCourses shows the provider's own courses, or the client's enrollments.
// Admins never reach this handler: the route guard rewrites their navigation
// to the admin dashboard.
func (h *CourseHandler) MyCourses(w http.ResponseWriter, r *http.Request) {
	u, _ := h.Gate.CurrentUser()
	var courses []models.Course
	if u.Role == models.RoleProvider {
		courses = h.Repo.CoursesByProvider(u.ID)
	} else {
		courses = h.Repo.CoursesEnrolledByStudent(u.ID)
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"courses": courses})
		return
	}
	h.render(w, r, routes.MyCourses, "my-courses.html", map[string]any{
		"Courses": courses, "IsProviderView": u.Role == models.RoleProvider,
	})
}

// Create renders the form on GET; on POST it validates and stores the course
// as pending. Only providers reach this route.
func (h *CourseHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		h.render(w, r, routes.CreateCourse, "create-course.html", map[string]any{"Title": "", "Description": "", "Price": ""})
		return
	}
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	u, _ := h.Gate.CurrentUser()
	title := strings.TrimSpace(r.FormValue("title"))
	desc := strings.TrimSpace(r.FormValue("description"))
	priceStr := strings.TrimSpace(r.FormValue("price"))

	v := validation.Violations{}
	validation.Required("title", title, v)
	validation.Required("description", desc, v)
	price := 0.0
	if priceStr != "" {
		p, err := strconv.ParseFloat(priceStr, 64)
		if err != nil {
			v["price"] = "invalid_number"
		} else {
			price = p
			validation.NonNegativeFloat("price", price, v)
		}
	}
	if !v.Empty() {
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
			return
		}
		h.render(w, r, routes.CreateCourse, "create-course.html", map[string]any{
			"Violations": v, "Title": title, "Description": desc, "Price": priceStr,
		})
		return
	}

	c, err := h.Repo.AddCourse(models.Course{
		ProviderID:  u.ID,
		Title:       title,
		Description: desc,
		Price:       price,
		Status:      models.StatusPending,
	})
	if err != nil {
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusInternalServerError, "persist_failed", nil)
			return
		}
		h.render(w, r, routes.CreateCourse, "create-course.html", map[string]any{"Error": "course.create_failed"})
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusCreated, map[string]any{"course": c})
		return
	}
	redirect(w, r, routes.CourseDetail, c.ID)
}

// Enroll handles the enroll action, including the simulated payment step:
// priced courses require the confirm_payment field, free ones enroll directly.
// Double enrollment is rejected by the repository.
func (h *CourseHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("param")
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	u, _ := h.Gate.CurrentUser()
	c, ok := h.Repo.FindCourseByID(id)
	if !ok {
		h.enrollOutcome(w, r, id, http.StatusNotFound, "course_not_found")
		return
	}
	if c.Status != models.StatusApproved {
		h.enrollOutcome(w, r, id, http.StatusBadRequest, "course.not_enrollable")
		return
	}
	if !c.Free() && r.FormValue("confirm_payment") == "" {
		h.enrollOutcome(w, r, id, http.StatusBadRequest, "course.payment_required")
		return
	}
	if !h.Repo.EnrollStudentInCourse(id, u.ID) {
		h.enrollOutcome(w, r, id, http.StatusConflict, "course.already_enrolled")
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]string{"code": "course.enrolled"})
		return
	}
	http.Redirect(w, r, routes.CourseDetail.Path()+"/"+id+"?notice=course.enrolled", statusSeeOther)
}

func (h *CourseHandler) enrollOutcome(w http.ResponseWriter, r *http.Request, id string, status int, code string) {
	if httpx.WantsJSON(r) {
		httpx.JSONError(w, status, code, nil)
		return
	}
	http.Redirect(w, r, routes.CourseDetail.Path()+"/"+id+"?error="+code, statusSeeOther)
}

// AddSession schedules a live session on an owned course. The list comes back
// sorted by date regardless of insertion order.
func (h *CourseHandler) AddSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("param")
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	if !h.canManage(r, id) {
		h.enrollOutcome(w, r, id, http.StatusForbidden, "course.not_owner")
		return
	}
	title := strings.TrimSpace(r.FormValue("title"))
	dateTime := strings.TrimSpace(r.FormValue("date_time"))
	link := strings.TrimSpace(r.FormValue("meeting_link"))

	v := validation.Violations{}
	validation.Required("title", title, v)
	validation.Required("date_time", dateTime, v)
	validation.Required("meeting_link", link, v)
	if v.Empty() {
		validation.DateTime("date_time", dateTime, v)
		validation.URL("meeting_link", link, v)
	}
	if !v.Empty() {
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
			return
		}
		h.enrollOutcome(w, r, id, http.StatusBadRequest, "session.invalid")
		return
	}
	if !h.Repo.AddLiveSession(id, models.LiveSession{Title: title, DateTime: dateTime, MeetingLink: link}) {
		h.enrollOutcome(w, r, id, http.StatusNotFound, "course_not_found")
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"sessions": h.Repo.LiveSessionsForCourse(id)})
		return
	}
	http.Redirect(w, r, routes.CourseDetail.Path()+"/"+id+"?notice=session.scheduled", statusSeeOther)
}

// AddMaterial appends a course material. URL-bearing types must carry a valid
// URL; text materials must carry a description.
func (h *CourseHandler) AddMaterial(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("param")
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	if !h.canManage(r, id) {
		h.enrollOutcome(w, r, id, http.StatusForbidden, "course.not_owner")
		return
	}
	m := models.CourseMaterial{
		Title:       strings.TrimSpace(r.FormValue("title")),
		Type:        r.FormValue("type"),
		URL:         strings.TrimSpace(r.FormValue("url")),
		Description: strings.TrimSpace(r.FormValue("description")),
	}
	v := validation.Violations{}
	validation.Required("title", m.Title, v)
	if !models.ValidMaterialType(m.Type) {
		v["type"] = "invalid_type"
	}
	if m.Type == models.MaterialText {
		validation.Required("description", m.Description, v)
	} else if v.Empty() {
		validation.URL("url", m.URL, v)
	}
	if !v.Empty() {
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
			return
		}
		h.enrollOutcome(w, r, id, http.StatusBadRequest, "material.invalid")
		return
	}
	if !h.Repo.AddCourseMaterial(id, m) {
		h.enrollOutcome(w, r, id, http.StatusNotFound, "course_not_found")
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"materials": h.Repo.MaterialsForCourse(id)})
		return
	}
	http.Redirect(w, r, routes.CourseDetail.Path()+"/"+id+"?notice=material.added", statusSeeOther)
}

// Delete removes a course. Allowed for the owning provider and for admins.
func (h *CourseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("param")
	if !h.canManage(r, id) {
		h.enrollOutcome(w, r, id, http.StatusForbidden, "course.not_owner")
		return
	}
	if !h.Repo.DeleteCourse(id) {
		h.enrollOutcome(w, r, id, http.StatusNotFound, "course_not_found")
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]string{"code": "course.deleted"})
		return
	}
	u, _ := h.Gate.CurrentUser()
	if u.Role == models.RoleAdmin {
		redirect(w, r, routes.AdminCourses)
		return
	}
	redirect(w, r, routes.MyCourses)
}

// canManage reports whether the current user owns the course or is an admin.
func (h *CourseHandler) canManage(r *http.Request, courseID string) bool {
	u, ok := h.Gate.CurrentUser()
	if !ok {
		return false
	}
	if u.Role == models.RoleAdmin {
		return true
	}
	c, ok := h.Repo.FindCourseByID(courseID)
	return ok && c.ProviderID == u.ID
}
