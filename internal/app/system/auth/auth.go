// internal/app/system/auth/auth.go
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/listinghub/internal/app/system/apierr"
	"github.com/dalemusser/listinghub/internal/domain/models"
	"go.uber.org/zap"
)

// ErrUserNotFound is returned by a UserFetcher when the subject does not
// resolve to a stored user.
var ErrUserNotFound = errors.New("user not found")

const unauthorizedMsg = "Not authorized to access this route"

// SessionUser is the authenticated caller attached to the request context.
// It never carries the credential hash.
type SessionUser struct {
	ID    string
	Name  string
	Email string
	Role  models.Role
}

// UserFetcher resolves a token subject to a user.
type UserFetcher interface {
	FetchUser(ctx context.Context, id string) (*SessionUser, error)
}

// Manager issues and verifies bearer tokens and gates requests on them.
type Manager struct {
	secret  []byte
	expiry  time.Duration
	fetcher UserFetcher
	log     *zap.Logger
	now     func() time.Time
}

// NewManager builds a Manager. fetcher may be nil when only Issue/Verify
// are needed.
func NewManager(secret string, expiry time.Duration, fetcher UserFetcher, logger *zap.Logger) (*Manager, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrShortSecret
	}
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	return &Manager{
		secret:  []byte(secret),
		expiry:  expiry,
		fetcher: fetcher,
		log:     logger,
		now:     time.Now,
	}, nil
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user & “found?” flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok && u != nil
}

// WithUser returns ctx carrying u.
func WithUser(ctx context.Context, u *SessionUser) context.Context {
	return context.WithValue(ctx, currentUserKey, u)
}

// WithTestUser attaches u to r. Used by handler tests to skip token checks.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(WithUser(r.Context(), u))
}

// BearerToken extracts the credential from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// RequireUser verifies the bearer token, loads the user and attaches it to
// the request. Every failure is a 401.
func (m *Manager) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := BearerToken(r)
		if !ok {
			apierr.Msg(w, http.StatusUnauthorized, unauthorizedMsg)
			return
		}

		userID, err := m.Verify(token)
		if err != nil {
			m.log.Debug("bearer token rejected", zap.Error(err))
			apierr.Msg(w, http.StatusUnauthorized, unauthorizedMsg)
			return
		}

		u, err := m.fetcher.FetchUser(r.Context(), userID)
		switch {
		case errors.Is(err, ErrUserNotFound):
			apierr.Msg(w, http.StatusUnauthorized, unauthorizedMsg)
			return
		case err != nil:
			m.log.Error("load token user", zap.String("user_id", userID), zap.Error(err))
			apierr.Msg(w, http.StatusUnauthorized, unauthorizedMsg)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
	})
}

// RequireRole responds 403 unless the attached user's role is one of
// allowed. A request with no user gets 401.
func RequireRole(allowed ...models.Role) func(http.Handler) http.Handler {
	set := make(map[models.Role]struct{}, len(allowed))
	for _, role := range allowed {
		set[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				apierr.Msg(w, http.StatusUnauthorized, unauthorizedMsg)
				return
			}
			if _, has := set[u.Role]; !has {
				apierr.Msg(w, http.StatusForbidden,
					"User role "+string(u.Role)+" is not authorized to access this route")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
