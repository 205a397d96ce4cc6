// Package routes defines the navigation surface as a closed enum. Every
// property of a route — its key, access level, parameter requirement and the
// redirect applied when a guard trips — is a total function over the enum, so
// adding a route without deciding its access rules fails to compile instead of
// falling through to a runtime "route not found".
package routes

import (
	"strings"

	"github.com/diewo77/go-courses/internal/models"
)

type Route int

const (
	Home Route = iota
	Login
	Register
	BrowseCourses
	Dashboard
	MyCourses
	CreateCourse
	AdminDashboard
	AdminUsers
	AdminCourses
	CourseDetail
	Messages
	Conversation
	SupportChat
)

// All lists every route, in navigation-chrome order.
var All = []Route{
	Home, Login, Register, BrowseCourses, Dashboard, MyCourses, CreateCourse,
	AdminDashboard, AdminUsers, AdminCourses, CourseDetail, Messages,
	Conversation, SupportChat,
}

// Key is the case-sensitive dispatch key: the path segment before the first
// slash (the fragment key in the original URL grammar).
func (r Route) Key() string {
	switch r {
	case Home:
		return "home"
	case Login:
		return "login"
	case Register:
		return "register"
	case BrowseCourses:
		return "browse-courses"
	case Dashboard:
		return "dashboard"
	case MyCourses:
		return "my-courses"
	case CreateCourse:
		return "create-course"
	case AdminDashboard:
		return "admin-dashboard"
	case AdminUsers:
		return "admin-users"
	case AdminCourses:
		return "admin-courses"
	case CourseDetail:
		return "course-detail"
	case Messages:
		return "messages"
	case Conversation:
		return "conversation"
	case SupportChat:
		return "support-chat"
	}
	return ""
}

// Path is the route's URL path, without parameter.
func (r Route) Path() string { return "/" + r.Key() }

// Parse splits a path (or fragment) of the form <route>[/<param>] and matches
// the route key exactly. Leading "/" and "#" are tolerated so the same grammar
// serves links, redirects and stored fragments.
func Parse(path string) (Route, string, bool) {
	path = strings.TrimPrefix(strings.TrimPrefix(path, "/"), "#")
	if path == "" {
		return Home, "", true
	}
	key, param, _ := strings.Cut(path, "/")
	for _, r := range All {
		if r.Key() == key {
			return r, param, true
		}
	}
	return Home, "", false
}

// RequiresAuth reports whether the route needs a logged-in user.
func (r Route) RequiresAuth() bool {
	switch r {
	case Home, Login, Register, BrowseCourses:
		return false
	default:
		return true
	}
}

// AdminOnly routes also control the admin side panel: it is visible exactly on
// these routes.
func (r Route) AdminOnly() bool {
	switch r {
	case AdminDashboard, AdminUsers, AdminCourses:
		return true
	default:
		return false
	}
}

func (r Route) ProviderOnly() bool { return r == CreateCourse }

// RequiresParam reports whether the route is meaningless without a path
// parameter. SupportChat is the parameterless alias of Conversation, pinned to
// the synthetic support thread.
func (r Route) RequiresParam() bool { return r == CourseDetail || r == Conversation }

// MissingParamRedirect is where navigation lands when a parameterized route is
// hit without its parameter.
func (r Route) MissingParamRedirect() Route {
	switch r {
	case CourseDetail:
		return BrowseCourses
	case Conversation:
		return Messages
	}
	return r
}

// Guard applies the access rules in fixed priority order and returns the
// redirect target when one trips. The caller redirects and re-enters dispatch,
// exactly like the original fragment rewrite.
func Guard(r Route, loggedIn bool, role string) (Route, bool) {
	switch {
	case r.RequiresAuth() && !loggedIn:
		return Login, false
	case r.AdminOnly() && role != models.RoleAdmin:
		return Dashboard, false
	case r.ProviderOnly() && role != models.RoleProvider:
		return Dashboard, false
	case r == MyCourses && role == models.RoleAdmin:
		return AdminDashboard, false
	}
	return r, true
}
