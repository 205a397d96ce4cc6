package repo

import (
	"fmt"
	"math"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/diewo77/go-courses/internal/models"
	"github.com/diewo77/go-courses/internal/store"
)

func newStatsRepo(t *testing.T) *Repository {
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

func TestCoursePriceStats(t *testing.T) {
	r := newStatsRepo(t)
	r.AddCourse(models.Course{ProviderID: "p1", Title: "a", Price: 10})
	r.AddCourse(models.Course{ProviderID: "p1", Title: "b", Price: 30})
	r.AddCourse(models.Course{ProviderID: "p2", Title: "c", Price: 0})
	s := r.CoursePriceStats()
	if s.Priced != 2 || s.Free != 1 {
		t.Fatalf("counts wrong: %+v", s)
	}
	if s.Min != 10 || s.Max != 30 || math.Abs(s.Avg-20) > 1e-9 {
		t.Fatalf("price stats wrong: %+v", s)
	}
}

func TestCoursePriceStatsEmpty(t *testing.T) {
	r := newStatsRepo(t)
	s := r.CoursePriceStats()
	if s != (PriceStats{}) {
		t.Fatalf("expected zero stats, got %+v", s)
	}
}

func TestUserCountsAndCoursesPerProvider(t *testing.T) {
	r := newStatsRepo(t)
	r.AddUser(models.User{Username: "a", Role: models.RoleClient})
	r.AddUser(models.User{Username: "b", Role: models.RoleClient})
	r.AddUser(models.User{Username: "c", Role: models.RoleProvider})
	counts := r.UserCountsByRole()
	if counts[models.RoleClient] != 2 || counts[models.RoleProvider] != 1 {
		t.Fatalf("role counts wrong: %v", counts)
	}
	r.AddCourse(models.Course{ProviderID: "p1", Title: "a"})
	r.AddCourse(models.Course{ProviderID: "p1", Title: "b"})
	r.AddCourse(models.Course{ProviderID: "p2", Title: "c"})
	per := r.CoursesPerProvider()
	if per["p1"] != 2 || per["p2"] != 1 {
		t.Fatalf("per-provider counts wrong: %v", per)
	}
}

func TestTopEnrolledAndRevenue(t *testing.T) {
	r := newStatsRepo(t)
	a, _ := r.AddCourse(models.Course{ProviderID: "p", Title: "a", Price: 10, Status: models.StatusApproved})
	b, _ := r.AddCourse(models.Course{ProviderID: "p", Title: "b", Price: 0, Status: models.StatusApproved})
	c, _ := r.AddCourse(models.Course{ProviderID: "p", Title: "c", Price: 5, Status: models.StatusApproved})
	for i, id := range []string{a.ID, b.ID, b.ID, b.ID, c.ID, c.ID} {
		r.EnrollStudentInCourse(id, fmt.Sprintf("s%d", i))
	}
	top := r.TopEnrolledCourses(2)
	if len(top) != 2 || top[0].ID != b.ID || top[1].ID != c.ID {
		t.Fatalf("top enrolled wrong: %+v", top)
	}
	// a: 10×1, b: free, c: 5×2
	if got := r.SimulatedRevenue(); math.Abs(got-20) > 1e-9 {
		t.Fatalf("revenue wrong: %v", got)
	}
}
