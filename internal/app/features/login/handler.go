// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"

	userstore "github.com/dalemusser/listinghub/internal/app/store/users"
	"github.com/dalemusser/listinghub/internal/app/system/apierr"
	"github.com/dalemusser/listinghub/internal/app/system/auth"
	"github.com/dalemusser/listinghub/internal/app/system/authutil"
	"github.com/dalemusser/listinghub/internal/app/system/formutil"
	"github.com/dalemusser/listinghub/internal/app/system/inputval"
	"github.com/dalemusser/listinghub/internal/app/system/normalize"
	"github.com/dalemusser/listinghub/internal/app/system/ratelimit"
	"github.com/dalemusser/listinghub/internal/app/system/timeouts"
	"github.com/dalemusser/listinghub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const invalidCredentials = "Invalid credentials"

type Handler struct {
	Users   *userstore.Store
	Auth    *auth.Manager
	Limiter *ratelimit.LoginLimiter
	Log     *zap.Logger
}

func NewHandler(db *mongo.Database, authMgr *auth.Manager, limiter *ratelimit.LoginLimiter, logger *zap.Logger) *Handler {
	if limiter == nil {
		limiter = ratelimit.NewLoginLimiter()
	}
	return &Handler{
		Users:   userstore.New(db),
		Auth:    authMgr,
		Limiter: limiter,
		Log:     logger,
	}
}

type tokenResponse struct {
	Token string `json:"token"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /api/auth/register                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var in registerRequest
	if err := formutil.DecodeJSON(w, r, &in); err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	u, err := h.validateRegistration(in)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Users.Create(ctx, u)
	switch {
	case errors.Is(err, userstore.ErrDuplicateEmail):
		apierr.Write(w, h.Log, apierr.New(apierr.Conflict, "User already exists"))
		return
	case err != nil:
		apierr.Write(w, h.Log, err)
		return
	}

	h.Log.Info("user registered",
		zap.String("user_id", created.ID.Hex()),
		zap.String("role", string(created.Role)))
	h.writeToken(w, created.ID)
}

func (h *Handler) validateRegistration(in registerRequest) (models.User, error) {
	name := normalize.Name(in.Name)
	email := normalize.Email(in.Email)

	if name == "" {
		return models.User{}, apierr.New(apierr.Validation, "Name is required")
	}
	if !inputval.IsValidEmail(email) {
		return models.User{}, apierr.New(apierr.Validation, "Please include a valid email")
	}
	if err := authutil.ValidatePassword(in.Password); err != nil {
		return models.User{}, apierr.Wrap(apierr.Validation, authutil.PasswordRules(), err)
	}

	role := models.RoleUser
	if !inputval.IsBlank(in.Role) {
		parsed, err := models.ParseRole(in.Role)
		if err != nil {
			return models.User{}, apierr.Wrap(apierr.Validation, err.Error(), err)
		}
		// admin accounts are never self-registered
		if parsed == models.RoleAdmin {
			return models.User{}, apierr.New(apierr.Validation, `role must be "user"|"agent"`)
		}
		role = parsed
	}

	hash, err := authutil.HashPassword(in.Password)
	if err != nil {
		return models.User{}, err
	}
	return models.User{Name: name, Email: email, PasswordHash: hash, Role: role}, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /api/auth/login                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := formutil.DecodeJSON(w, r, &in); err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	email := normalize.Email(in.Email)
	if email == "" || in.Password == "" {
		apierr.Write(w, h.Log, apierr.New(apierr.Validation, "Email and password are required"))
		return
	}

	if ok, reason := h.Limiter.Check(r, email); !ok {
		h.Log.Warn("login rate limited",
			zap.String("ip", ratelimit.ClientIP(r)),
			zap.String("email", email))
		apierr.Msg(w, http.StatusTooManyRequests, reason)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		apierr.Msg(w, http.StatusBadRequest, invalidCredentials)
		return
	case err != nil:
		apierr.Write(w, h.Log, err)
		return
	}

	if !authutil.CheckPassword(in.Password, u.PasswordHash) {
		apierr.Msg(w, http.StatusBadRequest, invalidCredentials)
		return
	}

	h.Limiter.ResetEmail(email)
	h.writeToken(w, u.ID)
}

func (h *Handler) writeToken(w http.ResponseWriter, id primitive.ObjectID) {
	token, err := h.Auth.Issue(id.Hex())
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	apierr.JSON(w, http.StatusOK, tokenResponse{Token: token})
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /api/auth/user                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeCurrentUser returns the signed-in user's stored record.
func (h *Handler) ServeCurrentUser(w http.ResponseWriter, r *http.Request) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		apierr.Write(w, h.Log, apierr.Unauthorizedf("Not authorized to access this route"))
		return
	}
	oid, err := primitive.ObjectIDFromHex(su.ID)
	if err != nil {
		apierr.Write(w, h.Log, apierr.Unauthorizedf("Not authorized to access this route"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, oid)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		apierr.Write(w, h.Log, apierr.NotFoundf("User not found"))
		return
	case err != nil:
		apierr.Write(w, h.Log, err)
		return
	}
	apierr.JSON(w, http.StatusOK, u)
}
