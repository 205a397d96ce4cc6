package repo

import (
	"sort"

	"github.com/diewo77/go-courses/internal/models"
)

// All statistics are pure reads recomputed on demand. Nothing here caches or
// incrementally maintains anything; the collections are small.

// PriceStats summarizes prices over positively-priced courses. Zero-valued
// when no course has a price.
type PriceStats struct {
	Priced int     `json:"priced"`
	Free   int     `json:"free"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Avg    float64 `json:"avg"`
}

// UserCountsByRole counts registered users per role.
func (r *Repository) UserCountsByRole() map[string]int {
	counts := map[string]int{}
	for _, u := range r.AllUsers() {
		counts[u.Role]++
	}
	return counts
}

func (r *Repository) CoursePriceStats() PriceStats {
	var s PriceStats
	var sum float64
	for _, c := range r.AllCourses() {
		if c.Free() {
			s.Free++
			continue
		}
		if s.Priced == 0 || c.Price < s.Min {
			s.Min = c.Price
		}
		if c.Price > s.Max {
			s.Max = c.Price
		}
		sum += c.Price
		s.Priced++
	}
	if s.Priced > 0 {
		s.Avg = sum / float64(s.Priced)
	}
	return s
}

// CoursesPerProvider counts courses keyed by provider id.
func (r *Repository) CoursesPerProvider() map[string]int {
	counts := map[string]int{}
	for _, c := range r.AllCourses() {
		counts[c.ProviderID]++
	}
	return counts
}

// TopEnrolledCourses returns up to n courses ordered by enrollment count
// descending.
func (r *Repository) TopEnrolledCourses(n int) []models.Course {
	courses := r.AllCourses()
	sort.SliceStable(courses, func(i, j int) bool {
		return len(courses[i].EnrolledStudentIDs) > len(courses[j].EnrolledStudentIDs)
	})
	if n >= 0 && len(courses) > n {
		courses = courses[:n]
	}
	return courses
}

// SimulatedRevenue sums price × enrollments over positively-priced courses.
// Payment is simulated, so this is the only revenue figure that exists.
func (r *Repository) SimulatedRevenue() float64 {
	var total float64
	for _, c := range r.AllCourses() {
		if !c.Free() {
			total += c.Price * float64(len(c.EnrolledStudentIDs))
		}
	}
	return total
}
