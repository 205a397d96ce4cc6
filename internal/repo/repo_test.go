package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/diewo77/go-courses/internal/models"
	"github.com/diewo77/go-courses/internal/store"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	s, err := store.New(db)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return New(s)
}

func TestAddCourseAssignsDefaults(t *testing.T) {
	r := newTestRepo(t)
	c, err := r.AddCourse(models.Course{
		ProviderID: "u_p1", Title: "Go", Description: "d", Price: 10, Status: models.StatusPending,
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if c.ID == "" || c.CreatedAt == "" {
		t.Fatalf("expected generated id and createdAt, got %+v", c)
	}
	if c.EnrolledStudentIDs == nil || c.LiveSessions == nil || c.Materials == nil {
		t.Fatalf("owned slices must not be nil: %+v", c)
	}
	got, ok := r.FindCourseByID(c.ID)
	if !ok || got.Title != "Go" || got.Status != models.StatusPending {
		t.Fatalf("round trip failed: %+v ok=%v", got, ok)
	}
}

func TestUpdateCoursePreservesOwnedCollections(t *testing.T) {
	r := newTestRepo(t)
	c, _ := r.AddCourse(models.Course{ProviderID: "p", Title: "Go", Status: models.StatusApproved})
	if !r.EnrollStudentInCourse(c.ID, "s1") {
		t.Fatalf("enroll failed")
	}
	if !r.AddLiveSession(c.ID, models.LiveSession{Title: "Kickoff", DateTime: "2026-01-10T10:00", MeetingLink: "https://meet.example/1"}) {
		t.Fatalf("add session failed")
	}

	// Update with the owned collections omitted.
	if !r.UpdateCourse(models.Course{ID: c.ID, ProviderID: "p", Title: "Go v2", Status: models.StatusApproved}) {
		t.Fatalf("update failed")
	}
	got, _ := r.FindCourseByID(c.ID)
	if got.Title != "Go v2" {
		t.Fatalf("title not updated: %+v", got)
	}
	if len(got.EnrolledStudentIDs) != 1 || len(got.LiveSessions) != 1 {
		t.Fatalf("owned collections lost on update: %+v", got)
	}
}

func TestUpdateCourseUnknownID(t *testing.T) {
	r := newTestRepo(t)
	if r.UpdateCourse(models.Course{ID: "c_missing", Title: "x"}) {
		t.Fatalf("update of unknown course must fail")
	}
}

func TestEnrollIsIdempotent(t *testing.T) {
	r := newTestRepo(t)
	c, _ := r.AddCourse(models.Course{ProviderID: "p", Title: "Go", Status: models.StatusApproved})
	if !r.EnrollStudentInCourse(c.ID, "s1") {
		t.Fatalf("first enroll must succeed")
	}
	if r.EnrollStudentInCourse(c.ID, "s1") {
		t.Fatalf("second enroll must report already enrolled")
	}
	got, _ := r.FindCourseByID(c.ID)
	if len(got.EnrolledStudentIDs) != 1 {
		t.Fatalf("student enrolled more than once: %v", got.EnrolledStudentIDs)
	}
	if r.EnrollStudentInCourse("c_missing", "s1") {
		t.Fatalf("enrolling in unknown course must fail")
	}
	enrolled := r.CoursesEnrolledByStudent("s1")
	if len(enrolled) != 1 || enrolled[0].ID != c.ID {
		t.Fatalf("enrolled listing wrong: %+v", enrolled)
	}
}

func TestLiveSessionsSortedByDateTime(t *testing.T) {
	r := newTestRepo(t)
	c, _ := r.AddCourse(models.Course{ProviderID: "p", Title: "Go", Status: models.StatusApproved})
	for _, dt := range []string{"2026-03-01T10:00", "2026-01-01T10:00", "2026-02-01T10:00"} {
		if !r.AddLiveSession(c.ID, models.LiveSession{Title: "s", DateTime: dt, MeetingLink: "https://meet.example/x"}) {
			t.Fatalf("add session %s failed", dt)
		}
	}
	got := r.LiveSessionsForCourse(c.ID)
	if len(got) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(got))
	}
	want := []string{"2026-01-01T10:00", "2026-02-01T10:00", "2026-03-01T10:00"}
	for i, dt := range want {
		if got[i].DateTime != dt {
			t.Fatalf("position %d: got %s want %s", i, got[i].DateTime, dt)
		}
	}
	if got[0].ID == "" || got[0].ScheduledAt == "" {
		t.Fatalf("session missing generated fields: %+v", got[0])
	}
}

func TestAddLiveSessionValidatesFields(t *testing.T) {
	r := newTestRepo(t)
	c, _ := r.AddCourse(models.Course{ProviderID: "p", Title: "Go"})
	if r.AddLiveSession(c.ID, models.LiveSession{Title: "", DateTime: "2026-01-01", MeetingLink: "https://x"}) {
		t.Fatalf("missing title must be rejected")
	}
	if r.AddLiveSession(c.ID, models.LiveSession{Title: "t", DateTime: "", MeetingLink: "https://x"}) {
		t.Fatalf("missing datetime must be rejected")
	}
	if r.AddLiveSession(c.ID, models.LiveSession{Title: "t", DateTime: "2026-01-01", MeetingLink: ""}) {
		t.Fatalf("missing link must be rejected")
	}
}

func TestAddCourseMaterialValidation(t *testing.T) {
	r := newTestRepo(t)
	c, _ := r.AddCourse(models.Course{ProviderID: "p", Title: "Go"})
	cases := []struct {
		m  models.CourseMaterial
		ok bool
	}{
		{models.CourseMaterial{Title: "Video", Type: models.MaterialVideo, URL: "https://v"}, true},
		{models.CourseMaterial{Title: "Video", Type: models.MaterialVideo}, false},
		{models.CourseMaterial{Title: "Notes", Type: models.MaterialText, Description: "body"}, true},
		{models.CourseMaterial{Title: "Notes", Type: models.MaterialText}, false},
		{models.CourseMaterial{Title: "Bad", Type: "slideshow", URL: "https://x"}, false},
		{models.CourseMaterial{Title: "", Type: models.MaterialLink, URL: "https://x"}, false},
	}
	for i, tc := range cases {
		if got := r.AddCourseMaterial(c.ID, tc.m); got != tc.ok {
			t.Fatalf("case %d: got %v want %v (%+v)", i, got, tc.ok, tc.m)
		}
	}
	if n := len(r.MaterialsForCourse(c.ID)); n != 2 {
		t.Fatalf("expected 2 accepted materials, got %d", n)
	}
}

func TestDeleteCourse(t *testing.T) {
	r := newTestRepo(t)
	c, _ := r.AddCourse(models.Course{ProviderID: "p", Title: "Go"})
	if !r.DeleteCourse(c.ID) {
		t.Fatalf("delete failed")
	}
	if _, ok := r.FindCourseByID(c.ID); ok {
		t.Fatalf("course still present after delete")
	}
	if r.DeleteCourse(c.ID) {
		t.Fatalf("second delete must report not found")
	}
}

func TestSetCourseStatus(t *testing.T) {
	r := newTestRepo(t)
	c, _ := r.AddCourse(models.Course{ProviderID: "p", Title: "Go", Status: models.StatusPending})
	if !r.SetCourseStatus(c.ID, models.StatusApproved) {
		t.Fatalf("set status failed")
	}
	got, _ := r.FindCourseByID(c.ID)
	if got.Status != models.StatusApproved {
		t.Fatalf("status not updated: %s", got.Status)
	}
	if len(r.ApprovedCourses()) != 1 || len(r.PendingCourses()) != 0 {
		t.Fatalf("status listings inconsistent")
	}
}

func TestInitializeSeedsEmptyStore(t *testing.T) {
	r := newTestRepo(t)
	seed := `{
	  "defaultUsers": [{"username": "admin", "password": "admin123", "role": "admin"}],
	  "defaultCourses": [{"providerId": "p", "title": "Go", "status": "approved"}]
	}`
	path := filepath.Join(t.TempDir(), "seed.json")
	if err := os.WriteFile(path, []byte(seed), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := r.Initialize(path); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	u, ok := r.FindUserByUsername("admin")
	if !ok || u.ID == "" || u.CreatedAt == "" {
		t.Fatalf("seed user not backfilled: %+v ok=%v", u, ok)
	}
	courses := r.AllCourses()
	if len(courses) != 1 || courses[0].ID == "" || courses[0].EnrolledStudentIDs == nil {
		t.Fatalf("seed course not normalized: %+v", courses)
	}
}

func TestInitializeLeavesExistingDataAlone(t *testing.T) {
	r := newTestRepo(t)
	u, _ := r.AddUser(models.User{Username: "keep", Password: "x", Role: models.RoleClient})
	if _, err := r.AddCourse(models.Course{ProviderID: u.ID, Title: "Mine"}); err != nil {
		t.Fatal(err)
	}
	// Seed path does not even need to exist when both collections are present.
	if err := r.Initialize(filepath.Join(t.TempDir(), "absent.json")); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if len(r.AllUsers()) != 1 || len(r.AllCourses()) != 1 {
		t.Fatalf("existing data disturbed")
	}
}

func TestInitializeMigratesLegacyCourses(t *testing.T) {
	r := newTestRepo(t)
	// Legacy records written before liveSessions/materials existed.
	legacy := []models.Course{{ID: "c_old", ProviderID: "p", Title: "Old", Status: models.StatusApproved}}
	if err := store.Write(r.Store(), store.KeyCourses, legacy); err != nil {
		t.Fatal(err)
	}
	if err := store.Write(r.Store(), store.KeyUsers, []models.User{}); err != nil {
		t.Fatal(err)
	}
	if err := r.Initialize(""); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	got, _ := r.FindCourseByID("c_old")
	if got.LiveSessions == nil || got.Materials == nil || got.EnrolledStudentIDs == nil {
		t.Fatalf("legacy course not migrated: %+v", got)
	}
}

func TestInitializeMissingSeedIsAnError(t *testing.T) {
	r := newTestRepo(t)
	if err := r.Initialize(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatalf("expected error for missing seed on empty store")
	}
	// The app continues with empty collections after the logged warning.
	if len(r.AllUsers()) != 0 {
		t.Fatalf("store must stay empty")
	}
}

func TestLoggedInUserClearsDanglingSession(t *testing.T) {
	r := newTestRepo(t)
	u, _ := r.AddUser(models.User{Username: "alice", Password: "secret1", Role: models.RoleClient})
	if err := r.SetLoggedInUserID(u.ID); err != nil {
		t.Fatal(err)
	}
	got, ok := r.LoggedInUser()
	if !ok || got.ID != u.ID {
		t.Fatalf("expected session to resolve, got %+v ok=%v", got, ok)
	}
	// Wipe the users collection underneath the session.
	if err := store.Write(r.Store(), store.KeyUsers, []models.User{}); err != nil {
		t.Fatal(err)
	}
	if _, ok := r.LoggedInUser(); ok {
		t.Fatalf("dangling session must not resolve")
	}
	if _, ok := r.LoggedInUserID(); ok {
		t.Fatalf("dangling session scalar must be cleared")
	}
}

func TestNewIDShape(t *testing.T) {
	id := newID("c")
	if id[:2] != "c_" {
		t.Fatalf("unexpected prefix: %s", id)
	}
	other := newID("c")
	if id == other {
		t.Fatalf("ids must be unique")
	}
}
