package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// ─── Roles ──────────────────────────────────────────────────────────────────
// Two roles guard the mutating surface. Recorders adjust scores and manage
// attestations; operators additionally manage communities, seed credits,
// and take snapshots. Operator implies recorder. Participant routes
// (items, proposals, bonds, badge claims) accept any valid token.
// With no auth secret configured the whole surface is open.

const (
	RoleRecorder = "recorder"
	RoleOperator = "operator"
)

type authCtxKey int

const callerKey authCtxKey = 1

// Claims are the JWT claims the API expects: sub identifies the caller,
// role grants access beyond the participant surface.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// SignToken mints an HS256 token for the given subject and role.
func SignToken(secret []byte, subject, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func parseToken(secret []byte, tok string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(tok, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, err
	}
	if c, ok := t.Claims.(*Claims); ok && t.Valid {
		return c, nil
	}
	return nil, errors.New("invalid token")
}

// requireToken admits any caller holding a valid token.
func (s *Server) requireToken(next http.Handler) http.Handler {
	return s.requireRole("")(next)
}

// requireRole guards a route behind the given role; the empty role accepts
// any valid token. A pass-through when no auth secret is configured.
func (s *Server) requireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if s.config.AuthSecret == "" {
				next.ServeHTTP(w, r)
				return
			}
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				writeError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			tok := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
			claims, err := parseToken([]byte(s.config.AuthSecret), tok)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}
			if !roleAllows(claims.Role, role) {
				writeError(w, http.StatusForbidden, "insufficient role")
				return
			}
			ctx := context.WithValue(r.Context(), callerKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// roleAllows reports whether a caller's role satisfies the required one.
func roleAllows(have, want string) bool {
	switch want {
	case "":
		return true
	case RoleRecorder:
		return have == RoleRecorder || have == RoleOperator
	case RoleOperator:
		return have == RoleOperator
	}
	return false
}

// caller returns the authenticated subject, empty when auth is disabled.
func caller(ctx context.Context) string {
	if c, ok := ctx.Value(callerKey).(*Claims); ok {
		return c.Subject
	}
	return ""
}
