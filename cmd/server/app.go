package main

import (
	"log"
	"net/http"

	"github.com/diewo77/go-courses/internal/auth"
	"github.com/diewo77/go-courses/internal/config"
	"github.com/diewo77/go-courses/internal/handlers"
	"github.com/diewo77/go-courses/internal/i18n"
	"github.com/diewo77/go-courses/internal/repo"
	"github.com/diewo77/go-courses/internal/routes"
	"github.com/diewo77/go-courses/internal/view"
)

// App is the navigation controller: it owns the route table and runs every
// request through session resolution, the route guards and the recover
// boundary before a view handler executes. It replaces the module-level state
// of a typical SPA router with one explicit object, constructed once at
// startup and rebuildable in tests.
type App struct {
	mux     *http.ServeMux
	cfg     config.Config
	gate    *auth.Gate
	catalog *i18n.Catalog
	view    *view.Renderer
}

// NewApp wires the handlers into the route table.
func NewApp(cfg config.Config, r *repo.Repository, gate *auth.Gate, catalog *i18n.Catalog, renderer *view.Renderer) *App {
	app := &App{
		mux:     http.NewServeMux(),
		cfg:     cfg,
		gate:    gate,
		catalog: catalog,
		view:    renderer,
	}

	base := handlers.Base{Repo: r, Gate: gate, View: renderer}
	home := handlers.NewHomeHandler(base)
	ah := handlers.NewAuthHandler(base)
	dh := handlers.NewDashboardHandler(base)
	ch := handlers.NewCourseHandler(base)
	adh := handlers.NewAdminHandler(base)
	mh := handlers.NewMessageHandler(base)

	mux := app.mux

	// ─────────────────────────────────────────────────────────────────────────
	// Public routes
	// ─────────────────────────────────────────────────────────────────────────
	mux.Handle("GET /{$}", app.navigate(routes.Home, home.Home))
	mux.Handle("GET /login", app.navigate(routes.Login, ah.Login))
	mux.Handle("POST /login", app.navigate(routes.Login, ah.Login))
	mux.Handle("GET /register", app.navigate(routes.Register, ah.Register))
	mux.Handle("POST /register", app.navigate(routes.Register, ah.Register))
	mux.Handle("GET /logout", http.HandlerFunc(ah.Logout))
	mux.Handle("POST /logout", http.HandlerFunc(ah.Logout))
	mux.Handle("GET /browse-courses", app.navigate(routes.BrowseCourses, ch.Browse))

	// ─────────────────────────────────────────────────────────────────────────
	// Authenticated routes
	// ─────────────────────────────────────────────────────────────────────────
	mux.Handle("GET /dashboard", app.navigate(routes.Dashboard, dh.Dashboard))
	mux.Handle("GET /my-courses", app.navigate(routes.MyCourses, ch.MyCourses))

	mux.Handle("GET /course-detail", app.navigate(routes.CourseDetail, ch.Detail))
	mux.Handle("GET /course-detail/{param}", app.navigate(routes.CourseDetail, ch.Detail))
	mux.Handle("POST /course-detail/{param}/enroll", app.navigate(routes.CourseDetail, ch.Enroll))
	mux.Handle("POST /course-detail/{param}/sessions", app.navigate(routes.CourseDetail, ch.AddSession))
	mux.Handle("POST /course-detail/{param}/materials", app.navigate(routes.CourseDetail, ch.AddMaterial))
	mux.Handle("POST /course-detail/{param}/delete", app.navigate(routes.CourseDetail, ch.Delete))

	mux.Handle("GET /create-course", app.navigate(routes.CreateCourse, ch.Create))
	mux.Handle("POST /create-course", app.navigate(routes.CreateCourse, ch.Create))

	mux.Handle("GET /messages", app.navigate(routes.Messages, mh.Inbox))
	mux.Handle("GET /conversation", app.navigate(routes.Conversation, mh.Conversation))
	mux.Handle("GET /conversation/{param}", app.navigate(routes.Conversation, mh.Conversation))
	mux.Handle("POST /conversation/{param}/send", app.navigate(routes.Conversation, mh.Send))
	mux.Handle("GET /support-chat", app.navigate(routes.SupportChat, mh.SupportChat))

	// ─────────────────────────────────────────────────────────────────────────
	// Admin routes
	// ─────────────────────────────────────────────────────────────────────────
	mux.Handle("GET /admin-dashboard", app.navigate(routes.AdminDashboard, adh.Dashboard))
	mux.Handle("GET /admin-users", app.navigate(routes.AdminUsers, adh.Users))
	mux.Handle("GET /admin-courses", app.navigate(routes.AdminCourses, adh.Courses))
	mux.Handle("POST /admin-courses/{param}/approve", app.navigate(routes.AdminCourses, adh.Approve))
	mux.Handle("POST /admin-courses/{param}/reject", app.navigate(routes.AdminCourses, adh.Reject))
	mux.Handle("POST /admin-courses/{param}/delete", app.navigate(routes.AdminCourses, ch.Delete))

	// Static assets
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))

	// Anything else is an unknown route.
	mux.Handle("/", http.HandlerFunc(home.NotFound))

	return app
}

// ServeHTTP applies the global middleware chain: language preference, then the
// recover boundary, then dispatch.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.withLang(a.withRecover(a.mux)).ServeHTTP(w, r)
}

// navigate wraps a view handler with the per-navigation state machine:
// resolve the session, apply the access guards in priority order (a redirect
// re-enters this flow, like a fragment rewrite), then bounce parameterized
// routes hit without their parameter to a sensible listing.
func (a *App) navigate(rt routes.Route, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, loggedIn := a.gate.CurrentUser()
		if target, ok := routes.Guard(rt, loggedIn, u.Role); !ok {
			http.Redirect(w, r, target.Path(), http.StatusSeeOther)
			return
		}
		if rt.RequiresParam() && r.PathValue("param") == "" {
			http.Redirect(w, r, rt.MissingParamRedirect().Path(), http.StatusSeeOther)
			return
		}
		next(w, r)
	})
}

// withLang resolves the language preference (cookie > query > Accept-Language)
// and stores it in the request context. Query-provided prefs persist in a
// cookie for ~30 days.
func (a *App) withLang(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := ""
		if c, err := r.Cookie("lang"); err == nil && c.Value != "" {
			lang = c.Value
		}
		if ql := r.URL.Query().Get("lang"); ql != "" {
			lang = ql
			http.SetCookie(w, &http.Cookie{Name: "lang", Value: lang, Path: "/", MaxAge: 86400 * 30})
		}
		if !a.catalog.Has(lang) {
			lang = a.catalog.DetectLanguage(r.Header.Get("Accept-Language"))
		}
		next.ServeHTTP(w, r.WithContext(i18n.WithLang(r.Context(), lang)))
	})
}

// withRecover is the rendering failure boundary: a panicking view handler is
// replaced by a generic error view and never reaches the host's default
// handling.
func (a *App) withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("router: recovered from view handler: %v", rec)
				w.WriteHeader(http.StatusInternalServerError)
				if err := a.view.Render(w, r, "error.html", nil); err != nil {
					if _, werr := w.Write([]byte("error rendering view")); werr != nil {
						_ = werr
					}
				}
			}
		}()
		next.ServeHTTP(w, r)
	})
}
