// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/dalemusser/listinghub/internal/app/system/auth"
	"github.com/dalemusser/listinghub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the user's role, Mongo ObjectID, and a found flag.
// If no user is present in context or the user ID is malformed, it returns
// "", NilObjectID, false, so ok=true means a valid, authenticated user.
func UserCtx(r *http.Request) (role models.Role, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		return "", primitive.NilObjectID, false
	}
	return user.Role, userID, true
}

// CanModifyProperty reports whether actor may update, delete or change the
// images of p: the owning agent or any admin.
func CanModifyProperty(actor *auth.SessionUser, p *models.Property) bool {
	if actor == nil || p == nil {
		return false
	}
	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleAgent, models.RoleUser:
		return p.AgentID.Hex() == actor.ID
	default:
		return false
	}
}

// CanChangeRole reports whether actor may change target's role. An admin
// account's role can be changed only by that same account.
func CanChangeRole(actor *auth.SessionUser, target *models.User) bool {
	if actor == nil || target == nil {
		return false
	}
	switch target.Role {
	case models.RoleAdmin:
		return target.ID.Hex() == actor.ID
	case models.RoleAgent, models.RoleUser:
		return true
	default:
		return true
	}
}

// CanDeleteUser reports whether target may be deleted. Admin accounts
// cannot be deleted by anyone.
func CanDeleteUser(target *models.User) bool {
	if target == nil {
		return false
	}
	switch target.Role {
	case models.RoleAdmin:
		return false
	case models.RoleAgent, models.RoleUser:
		return true
	default:
		return true
	}
}

// CanAssignRole reports whether actor may set target's role to role. On
// top of CanChangeRole, no account other than the actor's own can be moved
// into the admin role.
func CanAssignRole(actor *auth.SessionUser, target *models.User, role models.Role) bool {
	if !CanChangeRole(actor, target) {
		return false
	}
	if role == models.RoleAdmin {
		return target.ID.Hex() == actor.ID
	}
	return true
}
