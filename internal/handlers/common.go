// Package handlers implements the view handlers behind each route. Handlers
// read and write exclusively through the domain repository and the auth gate;
// rendering goes through the shared view renderer. Every handler also answers
// a JSON projection when the client asks for application/json, which is what
// the tests exercise.
package handlers

import (
	"log"
	"net/http"

	"github.com/diewo77/go-courses/internal/auth"
	"github.com/diewo77/go-courses/internal/models"
	"github.com/diewo77/go-courses/internal/repo"
	"github.com/diewo77/go-courses/internal/routes"
	"github.com/diewo77/go-courses/internal/view"
)

// Explicit constant for 303 See Other (Post/Redirect/Get)
const statusSeeOther = 303

// Base bundles the collaborators every handler needs.
type Base struct {
	Repo *repo.Repository
	Gate *auth.Gate
	View *view.Renderer
}

// render executes a view, degrading to a plain 500 when the template layer
// itself fails. Chrome data (session, unread badge, admin panel flag) is
// injected for the layout.
func (b *Base) render(w http.ResponseWriter, r *http.Request, rt routes.Route, name string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	u, loggedIn := b.Gate.CurrentUser()
	data["IsLoggedIn"] = loggedIn
	data["CurrentUser"] = u
	data["IsAdmin"] = u.Role == models.RoleAdmin
	data["IsProvider"] = u.Role == models.RoleProvider
	data["ShowAdminPanel"] = rt.AdminOnly()
	if loggedIn {
		data["UnreadCount"] = b.Repo.UnreadCount(u.ID)
	}
	if err := b.View.Render(w, r, name, data); err != nil {
		log.Printf("handlers: render %s: %v", name, err)
		w.WriteHeader(http.StatusInternalServerError)
		if _, werr := w.Write([]byte("template error")); werr != nil {
			_ = werr
		}
	}
}

// redirect sends navigation to a route, optionally with its parameter.
func redirect(w http.ResponseWriter, r *http.Request, rt routes.Route, param ...string) {
	target := rt.Path()
	if len(param) > 0 && param[0] != "" {
		target += "/" + param[0]
	}
	http.Redirect(w, r, target, statusSeeOther)
}
