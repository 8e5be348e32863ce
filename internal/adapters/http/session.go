package web

import (
	"context"
	"errors"
	"net"
	"net/http"

	"coachhub/internal/adapters/http/middleware"
	"coachhub/internal/adapters/identity"
	"coachhub/internal/application/orchestrators"
	"coachhub/internal/application/projections"
	"coachhub/internal/domain/user"
)

// profileReader resolves a bearer subject to its profile for the role.
type profileReader interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

// bearerAuth turns an access token into a session.
type bearerAuth struct {
	identity identity.Provider
	users    profileReader
}

// Authenticate verifies token and loads the role from the profile row.
// POST: identity.ErrInvalidAccessToken when the token is bad or has no profile
func (b *bearerAuth) Authenticate(ctx context.Context, token string) (middleware.Session, error) {
	if b.identity == nil || b.users == nil {
		return middleware.Session{}, identity.ErrInvalidAccessToken
	}
	claims, err := b.identity.ParseAccessToken(ctx, token)
	if err != nil {
		return middleware.Session{}, err
	}
	u, err := b.users.GetByID(ctx, claims.Subject)
	if err != nil {
		return middleware.Session{}, errors.Join(identity.ErrInvalidAccessToken, err)
	}
	return middleware.Session{UserID: u.ID, Email: u.Email, Role: u.Role}, nil
}

// remoteIP is the client address without its port.
func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// actorFrom builds the orchestrator actor for the request. Anonymous requests
// yield an empty ID, which orchestrators reject where sign-in is required.
func actorFrom(r *http.Request) orchestrators.Actor {
	a := orchestrators.Actor{IP: remoteIP(r), UserAgent: r.UserAgent()}
	if sess, ok := middleware.GetSessionFromContext(r.Context()); ok {
		a.ID = sess.UserID
		a.Email = sess.Email
		a.Role = sess.Role
	}
	return a
}

// viewerFrom is actorFrom for read models.
func viewerFrom(r *http.Request) projections.Viewer {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	return projections.Viewer{ID: sess.UserID, Role: sess.Role}
}

// requireSession answers 401 for anonymous requests.
func requireSession(w http.ResponseWriter, r *http.Request) (middleware.Session, bool) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return middleware.Session{}, false
	}
	return sess, true
}

// requireAdmin answers 401 or 403 unless the caller is an admin.
func requireAdmin(w http.ResponseWriter, r *http.Request) (middleware.Session, bool) {
	sess, ok := requireSession(w, r)
	if !ok {
		return sess, false
	}
	if sess.Role != user.RoleAdmin {
		http.Error(w, "admin required", http.StatusForbidden)
		return sess, false
	}
	return sess, true
}
