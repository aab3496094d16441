package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/baking-contest/webapp/types"
	"github.com/golang-jwt/jwt/v5"
)

const (
	sessionCookieName = "contest_session"
	defaultSessionTTL = 12 * time.Hour
)

type contextKey string

const contextSessionKey contextKey = "session"

// sessionClaims is the JWT payload backing a session cookie. The display
// name and security level are snapshots taken at login time.
type sessionClaims struct {
	Name  string `json:"name"`
	Level int    `json:"level"`
	jwt.RegisteredClaims
}

func issueSession(session types.Session, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		Name:  session.Name,
		Level: session.Level,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(session.UserID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func parseSession(tokenString string, secret []byte) (types.Session, error) {
	claims := sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return secret, nil
	})
	if err != nil {
		return types.Session{}, err
	}
	if !token.Valid {
		return types.Session{}, errors.New("invalid token")
	}

	userID, err := strconv.Atoi(strings.TrimSpace(claims.Subject))
	if err != nil || userID < 1 {
		return types.Session{}, errors.New("invalid subject")
	}
	if claims.Level < types.LevelParticipant || claims.Level > types.LevelAdmin {
		return types.Session{}, errors.New("invalid level")
	}

	return types.Session{UserID: userID, Name: claims.Name, Level: claims.Level}, nil
}

func sessionFor(person types.Person) types.Session {
	return types.Session{
		UserID: person.ID,
		Name:   person.Name,
		Level:  person.SecurityLevel,
	}
}

func sessionFromRequest(r *http.Request, secret []byte) (types.Session, error) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return types.Session{}, err
	}
	return parseSession(cookie.Value, secret)
}

func sessionFromContext(ctx context.Context) (types.Session, bool) {
	session, ok := ctx.Value(contextSessionKey).(types.Session)
	return session, ok
}

func setSessionCookie(w http.ResponseWriter, token string) {
	// No MaxAge: the cookie lives for the browser session, the JWT expiry
	// bounds it server-side.
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// RequireSession redirects anonymous requests to the login page, preserving
// the originally requested path for the post-login redirect. Valid sessions
// are injected into the request context.
func RequireSession(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := sessionFromRequest(r, secret)
			if err != nil {
				redirectToLogin(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), contextSessionKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireLevel gates a route by minimum security level. An authenticated
// session below the required level gets the generic not-found page, so an
// insufficient role is indistinguishable from a route that does not exist.
// Must be stacked after RequireSession.
func RequireLevel(minLevel int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := sessionFromContext(r.Context())
			if !ok {
				redirectToLogin(w, r)
				return
			}
			if session.Level < minLevel {
				renderNotFound(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	next := r.URL.Path
	if r.URL.RawQuery != "" {
		next += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, "/login?next="+url.QueryEscape(next), http.StatusFound)
}

// safeNextPath accepts only same-site absolute paths for the post-login
// redirect, rejecting protocol-relative and external targets.
func safeNextPath(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") {
		return "/"
	}
	return raw
}
