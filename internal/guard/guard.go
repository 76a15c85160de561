// Package guard decides, without side effects, whether a route renders or
// redirects for a given session state.
package guard

import (
	"slices"
	"strings"

	"junkmart/web/internal/auth"
	"junkmart/web/internal/models"
)

type Outcome int

const (
	// Loading means the session is unresolved: show a neutral placeholder
	// and do not navigate.
	Loading Outcome = iota
	Render
	Redirect
)

func (o Outcome) String() string {
	switch o {
	case Loading:
		return "loading"
	case Render:
		return "render"
	case Redirect:
		return "redirect"
	}
	return "unknown"
}

type Reason string

const (
	ReasonNone            Reason = ""
	ReasonUnauthenticated Reason = "unauthenticated"
	ReasonWrongRole       Reason = "wrong_role"
	ReasonPendingApproval Reason = "pending_approval"
	ReasonAuthenticated   Reason = "authenticated"
)

// Decision is what a guard wants done. From carries the originally requested
// path on login redirects so the login page can send the user back.
type Decision struct {
	Outcome Outcome
	To      string
	From    string
	Reason  Reason
}

const (
	LandingPath = "/"

	userLoginPath  = "/login/user"
	ownerLoginPath = "/login/owner"
	adminLoginPath = "/login/admin"
)

var dashboards = map[models.UserRole]string{
	models.UserRoleUser:  "/dashboard",
	models.UserRoleOwner: "/owner/dashboard",
	models.UserRoleAdmin: "/admin/dashboard",
}

// LoginPathFor picks the login form matching the area the path belongs to.
func LoginPathFor(path string) string {
	switch {
	case hasSegmentPrefix(path, "/admin"):
		return adminLoginPath
	case hasSegmentPrefix(path, "/owner"):
		return ownerLoginPath
	default:
		return userLoginPath
	}
}

func DashboardFor(role models.UserRole) string {
	if p, ok := dashboards[role]; ok {
		return p
	}
	return LandingPath
}

// RequireAuth gates a route to authenticated sessions whose role is in
// allowed. An empty allowed list admits every role.
func RequireAuth(state auth.State, path string, allowed ...models.UserRole) Decision {
	if state.Loading {
		return Decision{Outcome: Loading}
	}
	if !state.IsAuthenticated() {
		return Decision{Outcome: Redirect, To: LoginPathFor(path), From: path, Reason: ReasonUnauthenticated}
	}

	role := state.Role()
	if len(allowed) > 0 && !slices.Contains(allowed, role) {
		return Decision{Outcome: Redirect, To: DashboardFor(role), Reason: ReasonWrongRole}
	}
	if state.User.PendingApproval() {
		return Decision{Outcome: Redirect, To: LandingPath, Reason: ReasonPendingApproval}
	}
	return Decision{Outcome: Render}
}

// PublicOnly gates login, sign-up and password recovery forms: signed-in
// sessions are sent to their dashboard instead.
func PublicOnly(state auth.State) Decision {
	if state.Loading {
		return Decision{Outcome: Loading}
	}
	if state.IsAuthenticated() {
		return Decision{Outcome: Redirect, To: DashboardFor(state.Role()), Reason: ReasonAuthenticated}
	}
	return Decision{Outcome: Render}
}

func hasSegmentPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}
