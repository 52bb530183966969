package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/teamaptiv/volunteer-hub/pkg/core/model"
	"github.com/teamaptiv/volunteer-hub/pkg/db"
)

// UserIDHeader carries the caller's user id for HeaderAuthenticator
const UserIDHeader = "X-User-ID"

var (
	errUnauthenticated = fmt.Errorf("%w: authentication required", model.ErrPermissionDenied)
	errInvalidBody     = fmt.Errorf("%w: invalid request body", model.ErrFormat)
	errInvalidID       = fmt.Errorf("%w: invalid id", model.ErrFormat)
)

// Authenticator resolves the caller of a request. Credentials stay outside the core;
// only the resulting Principal is passed to services.
type Authenticator interface {
	Authenticate(r *http.Request) (model.Principal, error)
}

// HeaderAuthenticator trusts an upstream proxy to set X-User-ID and looks the
// user up to find their status
type HeaderAuthenticator struct {
	Users db.UserStore
}

// Authenticate implements Authenticator
func (h HeaderAuthenticator) Authenticate(r *http.Request) (model.Principal, error) {
	raw := r.Header.Get(UserIDHeader)
	if raw == "" {
		return model.Principal{}, errUnauthenticated
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return model.Principal{}, fmt.Errorf("%w: malformed %s", errUnauthenticated, UserIDHeader)
	}

	user, err := h.Users.GetUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.Principal{}, fmt.Errorf("%w: unknown user", errUnauthenticated)
		}
		return model.Principal{}, fmt.Errorf("failed to load user: %w", err)
	}

	return model.Principal{UserID: user.ID, Status: user.Status}, nil
}

type principalKey struct{}

func (a *API) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, err := a.auth.Authenticate(r)
		if err != nil {
			a.fail(w, "authenticate", err)
			return
		}
		ctx := context.WithValue(r.Context(), principalKey{}, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func principalFrom(ctx context.Context) model.Principal {
	p, _ := ctx.Value(principalKey{}).(model.Principal)
	return p
}
