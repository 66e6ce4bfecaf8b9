// internal/app/features/admin/users.go
package admin

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/listinghub/internal/app/system/apierr"
	"github.com/dalemusser/listinghub/internal/app/system/auth"
	"github.com/dalemusser/listinghub/internal/app/system/authz"
	"github.com/dalemusser/listinghub/internal/app/system/formutil"
	"github.com/dalemusser/listinghub/internal/app/system/timeouts"
	"github.com/dalemusser/listinghub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var errUserNotFound = apierr.NotFoundf("User not found")

// ServeUsers handles GET /api/admin/users.
func (h *Handler) ServeUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	apierr.JSON(w, http.StatusOK, users)
}

func (h *Handler) loadTarget(ctx context.Context, r *http.Request) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return nil, errUserNotFound
	}
	u, err := h.Users.GetByID(ctx, oid)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errUserNotFound
	}
	return u, err
}

type roleRequest struct {
	Role string `json:"role"`
}

// HandleUpdateRole handles PUT /api/admin/users/{id}/role. An admin
// account's role can be changed only by that account, and nobody can be
// promoted to admin by someone else.
func (h *Handler) HandleUpdateRole(w http.ResponseWriter, r *http.Request) {
	var in roleRequest
	if err := formutil.DecodeJSON(w, r, &in); err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	role, err := models.ParseRole(in.Role)
	if err != nil {
		apierr.Write(w, h.Log, apierr.Wrap(apierr.Validation, err.Error(), err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	target, err := h.loadTarget(ctx, r)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	actor, _ := auth.CurrentUser(r)
	if !authz.CanAssignRole(actor, target, role) {
		apierr.Write(w, h.Log, apierr.Forbiddenf("Cannot modify other admin users"))
		return
	}

	updated, err := h.Users.UpdateRole(ctx, target.ID, role)
	if errors.Is(err, mongo.ErrNoDocuments) {
		apierr.Write(w, h.Log, errUserNotFound)
		return
	}
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	h.Log.Info("user role changed",
		zap.String("user_id", target.ID.Hex()),
		zap.String("from", string(target.Role)),
		zap.String("to", string(role)),
		zap.String("by", actor.ID))
	apierr.JSON(w, http.StatusOK, updated)
}

// HandleDeleteUser handles DELETE /api/admin/users/{id}. The user's
// properties go with it: their images and search entries are removed best
// effort, then the documents are deleted.
func (h *Handler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "user delete cascade")
	defer cancel()

	target, err := h.loadTarget(ctx, r)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	if !authz.CanDeleteUser(target) {
		apierr.Write(w, h.Log, apierr.Forbiddenf("Cannot delete admin users"))
		return
	}

	props, err := h.Props.ListByAgent(ctx, target.ID)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	for _, p := range props {
		h.destroyImages(ctx, &p)
		h.Sync.Delete(ctx, p.ID.Hex())
	}

	removed, err := h.Props.DeleteByAgent(ctx, target.ID)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	if _, err := h.Users.Delete(ctx, target.ID); err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	h.Log.Info("user deleted",
		zap.String("user_id", target.ID.Hex()),
		zap.Int64("properties_removed", removed))
	apierr.Msg(w, http.StatusOK, "User removed")
}

func (h *Handler) destroyImages(ctx context.Context, p *models.Property) {
	if h.Assets == nil {
		return
	}
	for _, img := range p.Images {
		if err := h.Assets.Destroy(ctx, img.AssetID); err != nil {
			h.Log.Warn("image destroy failed during user cascade",
				zap.String("property_id", p.ID.Hex()),
				zap.String("asset_id", img.AssetID),
				zap.Error(err))
		}
	}
}
