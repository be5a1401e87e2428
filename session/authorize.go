package session

import (
	"strings"

	"github.com/lawchain/lawchain-api/models"
)

// Decision is the outcome of a page authorization check.
type Decision string

// Authorization outcomes.
const (
	Allowed Decision = "allowed"
	Denied  Decision = "denied"
)

// roleTokens is the fixed match order for role tokens embedded in page
// paths. Checked first to last, first substring match wins.
var roleTokens = []string{
	models.RoleAdmin,
	models.RoleLawyer,
	models.RoleJudge,
	models.RoleClient,
}

var dashboardRoutes = map[string]string{
	models.RoleClient: "/client-dashboard.html",
	models.RoleLawyer: "/lawyer-dashboard.html",
	models.RoleJudge:  "/judge-dashboard.html",
	models.RoleAdmin:  "/admin-dashboard.html",
}

// RouteForRole maps a role to its dashboard path. Unmapped roles return
// ErrUnknownRole, which callers surface as a message rather than a failure.
func RouteForRole(role string) (string, error) {
	route, ok := dashboardRoutes[role]
	if !ok {
		return "", ErrUnknownRole
	}
	return route, nil
}

// RoleForPath extracts the role token embedded in a page path, empty when
// none is present.
func RoleForPath(path string) string {
	lowered := strings.ToLower(path)
	for _, role := range roleTokens {
		if strings.Contains(lowered, role) {
			return role
		}
	}
	return models.RoleNone
}

// AuthorizeForPath decides whether a session may view a role-scoped page.
// Pure function of (path, session): Denied for a missing session, an
// unapproved session regardless of role match, a path with no role token,
// or a role mismatch. Rendering of the denied view is the caller's concern.
func AuthorizeForPath(path string, sess *models.Session) Decision {
	if sess == nil || !sess.IsApproved {
		return Denied
	}
	expected := RoleForPath(path)
	if expected == models.RoleNone || expected != sess.Role {
		return Denied
	}
	return Allowed
}
