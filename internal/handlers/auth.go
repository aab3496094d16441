package handlers

import (
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/baking-contest/webapp/internal/services"
	"github.com/go-chi/chi/v5"
)

// AuthHandler serves login, logout, home, and the shared result page.
type AuthHandler struct {
	personService *services.PersonService
	secret        []byte
	sessionTTL    time.Duration
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(personService *services.PersonService, sessionSecret string) *AuthHandler {
	return &AuthHandler{
		personService: personService,
		secret:        []byte(sessionSecret),
		sessionTTL:    defaultSessionTTL,
	}
}

// AuthRouter registers the anonymous-facing routes on the given router.
func AuthRouter(r chi.Router, personService *services.PersonService, sessionSecret string) {
	handler := NewAuthHandler(personService, sessionSecret)

	r.Get("/", handler.Home)
	r.Get("/login", handler.LoginForm)
	r.Post("/login", handler.Login)
	r.Get("/logout", handler.Logout)
	r.With(RequireSession(handler.secret)).Get("/result", handler.Result)
}

// Home renders the landing page. No auth check: navigation targets enforce
// their own gates.
func (h *AuthHandler) Home(w http.ResponseWriter, r *http.Request) {
	const body = `<p>Welcome to the baking contest.</p>
<ul>
<li><a href="/login">Login</a></li>
<li><a href="/add_entry">Submit a contest entry</a></li>
<li><a href="/my_entries">My entries</a></li>
<li><a href="/list_users">List users</a></li>
<li><a href="/list_results">Contest results</a></li>
<li><a href="/add_user">Add user</a></li>
<li><a href="/logout">Logout</a></li>
</ul>`
	renderPage(w, http.StatusOK, "Baking Contest", body)
}

// LoginForm renders the login form.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.renderLogin(w, http.StatusOK, r.URL.Query().Get("next"), "")
}

// Login verifies credentials and issues the session cookie. Every failure
// renders the same generic message so names cannot be enumerated.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderLogin(w, http.StatusBadRequest, "", "Invalid form submission.")
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	next := r.PostFormValue("next")

	person, err := h.personService.Authenticate(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			h.renderLogin(w, http.StatusUnauthorized, next, services.ErrInvalidCredentials.Error())
			return
		}
		slog.Error("login failed", "error", err)
		renderServerError(w)
		return
	}

	token, err := issueSession(sessionFor(person), h.secret, h.sessionTTL)
	if err != nil {
		slog.Error("session issue failed", "error", err)
		renderServerError(w)
		return
	}

	setSessionCookie(w, token)
	http.Redirect(w, r, safeNextPath(next), http.StatusFound)
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}

// Result renders a message carried in the query string. The message is
// escaped line by line before it reaches the page.
func (h *AuthHandler) Result(w http.ResponseWriter, r *http.Request) {
	msg := r.URL.Query().Get("msg")
	renderPage(w, http.StatusOK, "Result", escapeLines(msg))
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, status int, next, message string) {
	var note string
	if message != "" {
		note = fmt.Sprintf("<p>%s</p>\n", html.EscapeString(message))
	}
	body := fmt.Sprintf(`%s<form method="post" action="/login">
<input type="hidden" name="next" value="%s">
<label>Username: <input type="text" name="username"></label><br>
<label>Password: <input type="password" name="password"></label><br>
<button type="submit">Login</button>
</form>`, note, html.EscapeString(next))
	renderPage(w, status, "Login", body)
}

func redirectResult(w http.ResponseWriter, r *http.Request, msg string) {
	http.Redirect(w, r, "/result?msg="+url.QueryEscape(msg), http.StatusFound)
}
