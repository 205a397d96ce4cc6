package routes

import (
	"testing"

	"github.com/diewo77/go-courses/internal/models"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in    string
		route Route
		param string
		ok    bool
	}{
		{"", Home, "", true},
		{"/", Home, "", true},
		{"home", Home, "", true},
		{"/browse-courses", BrowseCourses, "", true},
		{"#dashboard", Dashboard, "", true},
		{"course-detail/c_1", CourseDetail, "c_1", true},
		{"/conversation/u_2", Conversation, "u_2", true},
		{"support-chat", SupportChat, "", true},
		{"Browse-Courses", Home, "", false}, // keys are case-sensitive
		{"unknown-view", Home, "", false},
	}
	for _, tc := range cases {
		r, param, ok := Parse(tc.in)
		if r != tc.route || param != tc.param || ok != tc.ok {
			t.Fatalf("Parse(%q) = %v %q %v, want %v %q %v", tc.in, r, param, ok, tc.route, tc.param, tc.ok)
		}
	}
}

func TestEveryRouteHasAKey(t *testing.T) {
	seen := map[string]Route{}
	for _, r := range All {
		key := r.Key()
		if key == "" {
			t.Fatalf("route %d has no key", r)
		}
		if prev, dup := seen[key]; dup {
			t.Fatalf("key %q claimed by %v and %v", key, prev, r)
		}
		seen[key] = r
		if back, _, ok := Parse(r.Path()); !ok || back != r {
			t.Fatalf("Parse(Path()) does not round-trip for %q", key)
		}
	}
}

func TestAccessProperties(t *testing.T) {
	public := map[Route]bool{Home: true, Login: true, Register: true, BrowseCourses: true}
	for _, r := range All {
		if r.RequiresAuth() == public[r] {
			t.Fatalf("%q: RequiresAuth=%v", r.Key(), r.RequiresAuth())
		}
	}
	for _, r := range []Route{AdminDashboard, AdminUsers, AdminCourses} {
		if !r.AdminOnly() {
			t.Fatalf("%q must be admin only", r.Key())
		}
	}
	if AdminOnlyCount := countTrue(func(r Route) bool { return r.AdminOnly() }); AdminOnlyCount != 3 {
		t.Fatalf("expected exactly 3 admin-only routes, got %d", AdminOnlyCount)
	}
	if !CreateCourse.ProviderOnly() || countTrue(Route.ProviderOnly) != 1 {
		t.Fatalf("create-course must be the only provider-only route")
	}
}

func countTrue(p func(Route) bool) int {
	n := 0
	for _, r := range All {
		if p(r) {
			n++
		}
	}
	return n
}

func TestMissingParamRedirect(t *testing.T) {
	if !CourseDetail.RequiresParam() || !Conversation.RequiresParam() {
		t.Fatalf("parameterized routes misdeclared")
	}
	if SupportChat.RequiresParam() {
		t.Fatalf("support chat needs no parameter")
	}
	if CourseDetail.MissingParamRedirect() != BrowseCourses {
		t.Fatalf("course detail without id must land on browse")
	}
	if Conversation.MissingParamRedirect() != Messages {
		t.Fatalf("conversation without partner must land on inbox")
	}
}

func TestGuardPriorities(t *testing.T) {
	cases := []struct {
		name     string
		route    Route
		loggedIn bool
		role     string
		want     Route
		pass     bool
	}{
		{"public logged out", BrowseCourses, false, "", BrowseCourses, true},
		{"protected logged out", Dashboard, false, "", Login, false},
		{"admin route logged out goes to login first", AdminDashboard, false, "", Login, false},
		{"admin route as client", AdminDashboard, true, models.RoleClient, Dashboard, false},
		{"admin route as provider", AdminUsers, true, models.RoleProvider, Dashboard, false},
		{"admin route as admin", AdminCourses, true, models.RoleAdmin, AdminCourses, true},
		{"create course as client", CreateCourse, true, models.RoleClient, Dashboard, false},
		{"create course as provider", CreateCourse, true, models.RoleProvider, CreateCourse, true},
		{"my courses as admin", MyCourses, true, models.RoleAdmin, AdminDashboard, false},
		{"my courses as client", MyCourses, true, models.RoleClient, MyCourses, true},
		{"messages as provider", Messages, true, models.RoleProvider, Messages, true},
	}
	for _, tc := range cases {
		got, pass := Guard(tc.route, tc.loggedIn, tc.role)
		if got != tc.want || pass != tc.pass {
			t.Fatalf("%s: Guard = %v %v, want %v %v", tc.name, got, pass, tc.want, tc.pass)
		}
	}
}
