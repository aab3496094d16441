package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/baking-contest/webapp/internal/services"
	"github.com/baking-contest/webapp/types"
	"github.com/go-chi/chi/v5"
)

const (
	formFieldName     = "name"
	formFieldAge      = "age"
	formFieldPhone    = "phone"
	formFieldLevel    = "security_level"
	formFieldPassword = "password"
)

// PersonHandler serves user registration and the user listing.
type PersonHandler struct {
	personService *services.PersonService
}

func NewPersonHandler(personService *services.PersonService) *PersonHandler {
	return &PersonHandler{personService: personService}
}

// PersonRouter registers the person routes. Registration requires an admin
// session; the listing requires at least a judge session.
func PersonRouter(r chi.Router, personService *services.PersonService, sessionSecret string) {
	handler := NewPersonHandler(personService)
	requireSession := RequireSession([]byte(sessionSecret))

	r.With(requireSession, RequireLevel(types.LevelAdmin)).Get("/add_user", handler.AddUserForm)
	r.With(requireSession, RequireLevel(types.LevelAdmin)).Post("/add_user", handler.AddUser)
	r.With(requireSession, RequireLevel(types.LevelJudge)).Get("/list_users", handler.ListUsers)
}

// AddUserForm renders the registration form.
func (h *PersonHandler) AddUserForm(w http.ResponseWriter, r *http.Request) {
	const body = `<form method="post" action="/add_user">
<label>Name: <input type="text" name="name"></label><br>
<label>Age: <input type="text" name="age"></label><br>
<label>Phone Number: <input type="text" name="phone"></label><br>
<label>Security Level (1-3): <input type="text" name="security_level"></label><br>
<label>Login Password: <input type="password" name="password"></label><br>
<button type="submit">Add User</button>
</form>`
	renderPage(w, http.StatusOK, "Add New Contest User", body)
}

// AddUser validates the submitted fields, collecting every violation before
// deciding. On any violation nothing is written and the full list is shown;
// on success exactly one row is inserted.
func (h *PersonHandler) AddUser(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectResult(w, r, "Record NOT added:\nInvalid form submission.")
		return
	}

	var v violations
	name := requireText(&v, r.PostFormValue(formFieldName), "Name cannot be empty or spaces only.")
	age := requireIntRange(&v, r.PostFormValue(formFieldAge), 1, 120, "Age must be a whole number between 1 and 120.")
	phone := requireText(&v, r.PostFormValue(formFieldPhone), "Phone Number cannot be empty or spaces only.")
	level := requireIntRange(&v, r.PostFormValue(formFieldLevel), 1, 3, "Security Level must be a number between 1 and 3.")
	password := requireText(&v, r.PostFormValue(formFieldPassword), "Login Password cannot be empty or spaces only.")

	if len(v) > 0 {
		redirectResult(w, r, v.message())
		return
	}

	person, err := h.personService.Create(r.Context(), types.Person{
		Name:          name,
		Age:           age,
		Phone:         phone,
		SecurityLevel: level,
		Password:      password,
	})
	if err != nil {
		if errors.Is(err, services.ErrDuplicateName) {
			redirectResult(w, r, "Record NOT added:\nA user with that name already exists.")
			return
		}
		slog.Error("add user failed", "error", err)
		renderServerError(w)
		return
	}

	redirectResult(w, r, fmt.Sprintf("Record added successfully for user: %s", person.Name))
}

// ListUsers renders every registered person with decrypted fields, sorted by
// name. Ciphertext never reaches this layer.
func (h *PersonHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	people, err := h.personService.List(r.Context())
	if err != nil {
		slog.Error("list users failed", "error", err)
		renderServerError(w)
		return
	}

	var b strings.Builder
	b.WriteString("<table border=\"1\">\n")
	b.WriteString("<tr><th>Name</th><th>Age</th><th>Phone Number</th><th>Security Level</th><th>Login Password</th></tr>\n")
	for _, person := range people {
		b.WriteString(tableRow(
			person.Name,
			strconv.Itoa(person.Age),
			person.Phone,
			strconv.Itoa(person.SecurityLevel),
			person.Password,
		))
	}
	b.WriteString("</table>")
	renderPage(w, http.StatusOK, "List of Baking Contest Users", b.String())
}
