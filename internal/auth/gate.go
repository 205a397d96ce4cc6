// Package auth implements login, registration and current-session resolution
// on top of the domain repository. The session is the single persisted
// currentUserId scalar; there is no cookie or token layer because the app
// serves exactly one local user, like the browser profile it replaces.
package auth

import (
	"log"

	"github.com/diewo77/go-courses/internal/models"
	"github.com/diewo77/go-courses/internal/repo"
)

// Message codes surfaced to the view layer; each doubles as a translation key.
const (
	CodeRegistered         = "auth.registered"
	CodeLoggedIn           = "auth.logged_in"
	CodeMissingFields      = "auth.missing_fields"
	CodeUsernameTooShort   = "auth.username_too_short"
	CodePasswordTooShort   = "auth.password_too_short"
	CodeInvalidRole        = "auth.invalid_role"
	CodeUsernameTaken      = "auth.username_taken"
	CodeInvalidAdminCode   = "auth.invalid_admin_code"
	CodeInvalidCredentials = "auth.invalid_credentials"
)

// Result is the outcome of a register or login attempt.
type Result struct {
	OK   bool
	Code string
	User models.User
}

func failure(code string) Result { return Result{Code: code} }

// Gate owns the session scalar and the credential checks.
type Gate struct {
	repo       *repo.Repository
	adminCode  string
	demoLogins bool
}

// New builds a gate. adminCode is the shared secret required to register an
// admin account. demoLogins enables the built-in fallback accounts (a
// development convenience to survive store resets; see DESIGN.md).
func New(r *repo.Repository, adminCode string, demoLogins bool) *Gate {
	return &Gate{repo: r, adminCode: adminCode, demoLogins: demoLogins}
}

// demoAccounts are hardcoded development logins, consulted only when the
// username is not in the store and demo logins are enabled. Plaintext and
// hardcoded: flagged, never to be treated as a production feature.
var demoAccounts = []models.User{
	{Username: "admin", Password: "admin123", Role: models.RoleAdmin},
	{Username: "provider1", Password: "provider123", Role: models.RoleProvider},
	{Username: "client1", Password: "client123", Role: models.RoleClient},
}

// Register validates in a fixed order — the first failing check decides the
// message code — and inserts the user on success. The uniqueness check is
// check-then-act against the repository; the store mutex makes the window
// unobservable in-process (decision recorded in DESIGN.md).
func (g *Gate) Register(username, password, role, adminCode string) Result {
	if username == "" || password == "" || role == "" {
		return failure(CodeMissingFields)
	}
	if len(username) < 3 {
		return failure(CodeUsernameTooShort)
	}
	if len(password) < 6 {
		return failure(CodePasswordTooShort)
	}
	if !models.ValidRole(role) {
		return failure(CodeInvalidRole)
	}
	if _, taken := g.repo.FindUserByUsername(username); taken {
		return failure(CodeUsernameTaken)
	}
	if role == models.RoleAdmin && adminCode != g.adminCode {
		return failure(CodeInvalidAdminCode)
	}
	u, err := g.repo.AddUser(models.User{Username: username, Password: password, Role: role})
	if err != nil {
		log.Printf("auth: register %q: %v", username, err)
		return failure(CodeMissingFields)
	}
	return Result{OK: true, Code: CodeRegistered, User: u}
}

// Login resolves the username in the store, then in the demo fallback list.
// Unknown user and wrong password fail with the same code so the outcome does
// not leak which usernames exist.
func (g *Gate) Login(username, password string) Result {
	u, found := g.repo.FindUserByUsername(username)
	if !found && g.demoLogins {
		for _, demo := range demoAccounts {
			if demo.Username != username {
				continue
			}
			// Materialize the demo account so the session id resolves.
			created, err := g.repo.AddUser(demo)
			if err != nil {
				log.Printf("auth: materialize demo account %q: %v", username, err)
				return failure(CodeInvalidCredentials)
			}
			u, found = created, true
			break
		}
	}
	if !found || u.Password != password {
		return failure(CodeInvalidCredentials)
	}
	if err := g.repo.SetLoggedInUserID(u.ID); err != nil {
		log.Printf("auth: persist session for %q: %v", username, err)
		return failure(CodeInvalidCredentials)
	}
	return Result{OK: true, Code: CodeLoggedIn, User: u}
}

// Logout clears the session unconditionally; calling it logged-out is a no-op.
func (g *Gate) Logout() {
	if err := g.repo.ClearLoggedInUser(); err != nil {
		log.Printf("auth: logout: %v", err)
	}
}

// CurrentUser resolves the session scalar through the repository, which also
// clears it when the referenced user no longer exists.
func (g *Gate) CurrentUser() (models.User, bool) {
	return g.repo.LoggedInUser()
}

func (g *Gate) IsLoggedIn() bool {
	_, ok := g.CurrentUser()
	return ok
}

// CurrentRole returns the logged-in user's role, or "" when logged out.
func (g *Gate) CurrentRole() string {
	u, ok := g.CurrentUser()
	if !ok {
		return ""
	}
	return u.Role
}
