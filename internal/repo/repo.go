package repo

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/diewo77/go-courses/internal/models"
	"github.com/diewo77/go-courses/internal/store"
)

// Repository is the typed access layer over the key/value store. It owns every
// write-side invariant: id generation, default fields, non-nil slices. It never
// touches HTTP or templates.
type Repository struct {
	s *store.Store
}

func New(s *store.Store) *Repository { return &Repository{s: s} }

// Store exposes the underlying store for scalar helpers and tests.
func (r *Repository) Store() *store.Store { return r.s }

func newID(prefix string) string {
	tok := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("%s_%d_%s", prefix, time.Now().UnixMilli(), tok)
}

func now() string { return time.Now().UTC().Format(time.RFC3339) }

// seedDocument is the bundled default dataset loaded on first run.
type seedDocument struct {
	DefaultUsers   []models.User   `json:"defaultUsers"`
	DefaultCourses []models.Course `json:"defaultCourses"`
}

// Initialize populates missing collections from the seed document at seedPath.
// When both users and courses already exist it instead runs a forward migration
// pass making sure every course carries non-nil liveSessions, materials and
// enrolledStudentIds (older records may predate those fields). A missing or
// unreadable seed file is non-fatal: the caller logs it and the app continues
// with empty collections.
func (r *Repository) Initialize(seedPath string) error {
	_, usersOK := store.Read[[]models.User](r.s, store.KeyUsers)
	_, coursesOK := store.Read[[]models.Course](r.s, store.KeyCourses)

	if usersOK && coursesOK {
		return r.migrateCourses()
	}

	body, err := os.ReadFile(seedPath)
	if err != nil {
		return fmt.Errorf("read seed data: %w", err)
	}
	var seed seedDocument
	if err := json.Unmarshal(body, &seed); err != nil {
		return fmt.Errorf("parse seed data: %w", err)
	}

	if !usersOK {
		users := seed.DefaultUsers
		for i := range users {
			if users[i].ID == "" {
				users[i].ID = newID("u")
			}
			if users[i].CreatedAt == "" {
				users[i].CreatedAt = now()
			}
		}
		if err := store.Write(r.s, store.KeyUsers, users); err != nil {
			return err
		}
	}
	if !coursesOK {
		courses := seed.DefaultCourses
		for i := range courses {
			if courses[i].ID == "" {
				courses[i].ID = newID("c")
			}
			if courses[i].CreatedAt == "" {
				courses[i].CreatedAt = now()
			}
			normalizeCourse(&courses[i])
		}
		if err := store.Write(r.s, store.KeyCourses, courses); err != nil {
			return err
		}
	}
	return nil
}

func normalizeCourse(c *models.Course) {
	if c.EnrolledStudentIDs == nil {
		c.EnrolledStudentIDs = []string{}
	}
	if c.LiveSessions == nil {
		c.LiveSessions = []models.LiveSession{}
	}
	if c.Materials == nil {
		c.Materials = []models.CourseMaterial{}
	}
}

func (r *Repository) migrateCourses() error {
	return store.Update(r.s, store.KeyCourses, func(courses []models.Course) ([]models.Course, error) {
		for i := range courses {
			normalizeCourse(&courses[i])
		}
		return courses, nil
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// Users
// ─────────────────────────────────────────────────────────────────────────────

// AddUser appends a user, assigning id and createdAt when absent. Username
// uniqueness is deliberately the caller's job: the auth gate checks before
// inserting, matching the original check-then-act behavior (see DESIGN.md).
func (r *Repository) AddUser(u models.User) (models.User, error) {
	if u.ID == "" {
		u.ID = newID("u")
	}
	if u.CreatedAt == "" {
		u.CreatedAt = now()
	}
	err := store.Update(r.s, store.KeyUsers, func(users []models.User) ([]models.User, error) {
		return append(users, u), nil
	})
	return u, err
}

// FindUserByUsername does an exact, case-sensitive scan.
func (r *Repository) FindUserByUsername(name string) (models.User, bool) {
	users, _ := store.Read[[]models.User](r.s, store.KeyUsers)
	for _, u := range users {
		if u.Username == name {
			return u, true
		}
	}
	return models.User{}, false
}

func (r *Repository) FindUserByID(id string) (models.User, bool) {
	users, _ := store.Read[[]models.User](r.s, store.KeyUsers)
	for _, u := range users {
		if u.ID == id {
			return u, true
		}
	}
	return models.User{}, false
}

func (r *Repository) AllUsers() []models.User {
	users, _ := store.Read[[]models.User](r.s, store.KeyUsers)
	return users
}

// AdminIDs returns the ids of every admin account. The support conversation is
// derived against this set.
func (r *Repository) AdminIDs() []string {
	var ids []string
	for _, u := range r.AllUsers() {
		if u.Role == models.RoleAdmin {
			ids = append(ids, u.ID)
		}
	}
	return ids
}

// ─────────────────────────────────────────────────────────────────────────────
// Courses
// ─────────────────────────────────────────────────────────────────────────────

// AddCourse appends a course, assigning id, createdAt and empty owned slices
// when absent. Status is whatever the caller supplied; the create-course
// handler passes pending by convention.
func (r *Repository) AddCourse(c models.Course) (models.Course, error) {
	if c.ID == "" {
		c.ID = newID("c")
	}
	if c.CreatedAt == "" {
		c.CreatedAt = now()
	}
	normalizeCourse(&c)
	err := store.Update(r.s, store.KeyCourses, func(courses []models.Course) ([]models.Course, error) {
		return append(courses, c), nil
	})
	return c, err
}

func (r *Repository) FindCourseByID(id string) (models.Course, bool) {
	for _, c := range r.AllCourses() {
		if c.ID == id {
			return c, true
		}
	}
	return models.Course{}, false
}

func (r *Repository) AllCourses() []models.Course {
	courses, _ := store.Read[[]models.Course](r.s, store.KeyCourses)
	return courses
}

func (r *Repository) CoursesByProvider(providerID string) []models.Course {
	return r.filterCourses(func(c models.Course) bool { return c.ProviderID == providerID })
}

func (r *Repository) ApprovedCourses() []models.Course {
	return r.filterCourses(func(c models.Course) bool { return c.Status == models.StatusApproved })
}

func (r *Repository) PendingCourses() []models.Course {
	return r.filterCourses(func(c models.Course) bool { return c.Status == models.StatusPending })
}

func (r *Repository) CoursesEnrolledByStudent(studentID string) []models.Course {
	return r.filterCourses(func(c models.Course) bool { return c.IsEnrolled(studentID) })
}

func (r *Repository) filterCourses(keep func(models.Course) bool) []models.Course {
	var out []models.Course
	for _, c := range r.AllCourses() {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

var errNotFound = fmt.Errorf("not found")

// UpdateCourse replaces the stored course with the same id, merging owned
// collections: a payload with nil LiveSessions, Materials or
// EnrolledStudentIDs keeps the stored ones. Returns false (persisting nothing)
// when the id is unknown.
func (r *Repository) UpdateCourse(c models.Course) bool {
	err := store.Update(r.s, store.KeyCourses, func(courses []models.Course) ([]models.Course, error) {
		for i := range courses {
			if courses[i].ID != c.ID {
				continue
			}
			if c.LiveSessions == nil {
				c.LiveSessions = courses[i].LiveSessions
			}
			if c.Materials == nil {
				c.Materials = courses[i].Materials
			}
			if c.EnrolledStudentIDs == nil {
				c.EnrolledStudentIDs = courses[i].EnrolledStudentIDs
			}
			courses[i] = c
			return courses, nil
		}
		return nil, errNotFound
	})
	if err != nil && err != errNotFound {
		log.Printf("repo: update course %s: %v", c.ID, err)
	}
	return err == nil
}

// DeleteCourse removes a course by id; true when a row was removed.
func (r *Repository) DeleteCourse(id string) bool {
	err := store.Update(r.s, store.KeyCourses, func(courses []models.Course) ([]models.Course, error) {
		for i := range courses {
			if courses[i].ID == id {
				return append(courses[:i], courses[i+1:]...), nil
			}
		}
		return nil, errNotFound
	})
	if err != nil && err != errNotFound {
		log.Printf("repo: delete course %s: %v", id, err)
	}
	return err == nil
}

// SetCourseStatus moves a course to the given lifecycle status.
func (r *Repository) SetCourseStatus(id, status string) bool {
	err := store.Update(r.s, store.KeyCourses, func(courses []models.Course) ([]models.Course, error) {
		for i := range courses {
			if courses[i].ID == id {
				courses[i].Status = status
				return courses, nil
			}
		}
		return nil, errNotFound
	})
	if err != nil && err != errNotFound {
		log.Printf("repo: set status on course %s: %v", id, err)
	}
	return err == nil
}

// EnrollStudentInCourse adds studentID to the course's enrolled set. False when
// the course is unknown or the student is already enrolled, so a double click
// enrolls exactly once.
func (r *Repository) EnrollStudentInCourse(courseID, studentID string) bool {
	err := store.Update(r.s, store.KeyCourses, func(courses []models.Course) ([]models.Course, error) {
		for i := range courses {
			if courses[i].ID != courseID {
				continue
			}
			if courses[i].IsEnrolled(studentID) {
				return nil, errNotFound
			}
			courses[i].EnrolledStudentIDs = append(courses[i].EnrolledStudentIDs, studentID)
			return courses, nil
		}
		return nil, errNotFound
	})
	if err != nil && err != errNotFound {
		log.Printf("repo: enroll %s in %s: %v", studentID, courseID, err)
	}
	return err == nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Live sessions & materials
// ─────────────────────────────────────────────────────────────────────────────

// AddLiveSession appends a session to the course and re-sorts the list by
// DateTime ascending. False when a required field is missing or the course is
// unknown.
func (r *Repository) AddLiveSession(courseID string, ls models.LiveSession) bool {
	if ls.Title == "" || ls.DateTime == "" || ls.MeetingLink == "" {
		return false
	}
	ls.ID = fmt.Sprintf("ls_%s_%d_%s", courseID, time.Now().UnixMilli(), strings.SplitN(uuid.NewString(), "-", 2)[0])
	ls.ScheduledAt = now()
	err := store.Update(r.s, store.KeyCourses, func(courses []models.Course) ([]models.Course, error) {
		for i := range courses {
			if courses[i].ID != courseID {
				continue
			}
			courses[i].LiveSessions = append(courses[i].LiveSessions, ls)
			sortSessions(courses[i].LiveSessions)
			return courses, nil
		}
		return nil, errNotFound
	})
	if err != nil && err != errNotFound {
		log.Printf("repo: add live session to %s: %v", courseID, err)
	}
	return err == nil
}

// LiveSessionsForCourse returns the course's sessions sorted ascending by
// DateTime. Empty (not nil-panicking) for unknown courses.
func (r *Repository) LiveSessionsForCourse(courseID string) []models.LiveSession {
	c, ok := r.FindCourseByID(courseID)
	if !ok {
		return nil
	}
	out := make([]models.LiveSession, len(c.LiveSessions))
	copy(out, c.LiveSessions)
	sortSessions(out)
	return out
}

// sessionTime parses the DateTime formats the forms produce; unparseable
// values sort by their raw string so a bad record never blocks the list.
func sessionTime(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02 15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func sortSessions(list []models.LiveSession) {
	sort.SliceStable(list, func(i, j int) bool {
		ti, iok := sessionTime(list[i].DateTime)
		tj, jok := sessionTime(list[j].DateTime)
		if iok && jok {
			return ti.Before(tj)
		}
		return list[i].DateTime < list[j].DateTime
	})
}

// AddCourseMaterial validates and appends a material. Append-only.
func (r *Repository) AddCourseMaterial(courseID string, m models.CourseMaterial) bool {
	if m.Title == "" || !models.ValidMaterialType(m.Type) {
		return false
	}
	if m.Type == models.MaterialText {
		if m.Description == "" {
			return false
		}
	} else if m.URL == "" {
		return false
	}
	err := store.Update(r.s, store.KeyCourses, func(courses []models.Course) ([]models.Course, error) {
		for i := range courses {
			if courses[i].ID == courseID {
				courses[i].Materials = append(courses[i].Materials, m)
				return courses, nil
			}
		}
		return nil, errNotFound
	})
	if err != nil && err != errNotFound {
		log.Printf("repo: add material to %s: %v", courseID, err)
	}
	return err == nil
}

func (r *Repository) MaterialsForCourse(courseID string) []models.CourseMaterial {
	c, ok := r.FindCourseByID(courseID)
	if !ok {
		return nil
	}
	return c.Materials
}

// ─────────────────────────────────────────────────────────────────────────────
// Session & notification scalars
// ─────────────────────────────────────────────────────────────────────────────

func (r *Repository) LoggedInUserID() (string, bool) {
	id, ok := store.Read[string](r.s, store.KeyCurrentUserID)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

func (r *Repository) SetLoggedInUserID(id string) error {
	return store.Write(r.s, store.KeyCurrentUserID, id)
}

func (r *Repository) ClearLoggedInUser() error {
	return r.s.Delete(store.KeyCurrentUserID)
}

// LoggedInUser resolves the session scalar. A dangling id (user deleted or
// store reset underneath the session) invalidates the session: the scalar is
// cleared here and the caller sees "not logged in".
func (r *Repository) LoggedInUser() (models.User, bool) {
	id, ok := r.LoggedInUserID()
	if !ok {
		return models.User{}, false
	}
	u, ok := r.FindUserByID(id)
	if !ok {
		if err := r.ClearLoggedInUser(); err != nil {
			log.Printf("repo: clearing stale session: %v", err)
		}
		return models.User{}, false
	}
	return u, true
}

func (r *Repository) LastNotificationCheck() (string, bool) {
	return store.Read[string](r.s, store.KeyNotificationCheck)
}

func (r *Repository) SetLastNotificationCheck(ts string) error {
	return store.Write(r.s, store.KeyNotificationCheck, ts)
}

// Now is the timestamp format used for the notification scalar.
func Now() string { return now() }
