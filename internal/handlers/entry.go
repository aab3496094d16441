package handlers

import (
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
	formFieldItemName  = "item_name"
	formFieldExcellent = "num_excellent"
	formFieldOk        = "num_ok"
	formFieldBad       = "num_bad"
)

// EntryHandler serves entry submission and the results listings.
type EntryHandler struct {
	entryService *services.EntryService
}

func NewEntryHandler(entryService *services.EntryService) *EntryHandler {
	return &EntryHandler{entryService: entryService}
}

// EntryRouter registers the entry routes. Submission and the personal
// listing need any authenticated session; the full results need at least a
// judge session.
func EntryRouter(r chi.Router, entryService *services.EntryService, sessionSecret string) {
	handler := NewEntryHandler(entryService)
	requireSession := RequireSession([]byte(sessionSecret))

	r.With(requireSession).Get("/add_entry", handler.AddEntryForm)
	r.With(requireSession).Post("/add_entry", handler.AddEntry)
	r.With(requireSession).Get("/my_entries", handler.MyEntries)
	r.With(requireSession, RequireLevel(types.LevelJudge)).Get("/list_results", handler.ListResults)
}

// AddEntryForm renders the entry submission form.
func (h *EntryHandler) AddEntryForm(w http.ResponseWriter, r *http.Request) {
	const body = `<form method="post" action="/add_entry">
<label>Name of Baking Item: <input type="text" name="item_name"></label><br>
<label>Number of Excellent Votes: <input type="text" name="num_excellent"></label><br>
<label>Number of Ok Votes: <input type="text" name="num_ok"></label><br>
<label>Number of Bad Votes: <input type="text" name="num_bad"></label><br>
<button type="submit">Add Entry</button>
</form>`
	renderPage(w, http.StatusOK, "Add New Baking Contest Entry", body)
}

// AddEntry validates the submitted fields, collecting every violation. The
// entry is always owned by the session user; a caller-supplied user id is
// never accepted.
func (h *EntryHandler) AddEntry(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFromContext(r.Context())
	if !ok {
		redirectToLogin(w, r)
		return
	}

	if err := r.ParseForm(); err != nil {
		redirectResult(w, r, "Record NOT added:\nInvalid form submission.")
		return
	}

	var v violations
	itemName := requireText(&v, r.PostFormValue(formFieldItemName), "Name of Baking Item cannot be empty or spaces only.")
	numExcellent := requireCount(&v, r.PostFormValue(formFieldExcellent), "Number of Excellent Votes must be a whole number greater than or equal to 0.")
	numOk := requireCount(&v, r.PostFormValue(formFieldOk), "Number of Ok Votes must be a whole number greater than or equal to 0.")
	numBad := requireCount(&v, r.PostFormValue(formFieldBad), "Number of Bad Votes must be a whole number greater than or equal to 0.")

	if len(v) > 0 {
		redirectResult(w, r, v.message())
		return
	}

	entry, err := h.entryService.Create(r.Context(), types.Entry{
		UserID:       session.UserID,
		ItemName:     itemName,
		NumExcellent: numExcellent,
		NumOk:        numOk,
		NumBad:       numBad,
	})
	if err != nil {
		slog.Error("add entry failed", "error", err)
		renderServerError(w)
		return
	}

	redirectResult(w, r, fmt.Sprintf("Record added successfully for entry: %s", entry.ItemName))
}

// MyEntries renders only the session user's entries, ordered by entry id.
func (h *EntryHandler) MyEntries(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFromContext(r.Context())
	if !ok {
		redirectToLogin(w, r)
		return
	}

	entries, err := h.entryService.ListByUser(r.Context(), session.UserID)
	if err != nil {
		slog.Error("list my entries failed", "error", err)
		renderServerError(w)
		return
	}

	renderPage(w, http.StatusOK, "My Contest Entries", entryTable(entries))
}

// ListResults renders every contest entry, ordered by entry id.
func (h *EntryHandler) ListResults(w http.ResponseWriter, r *http.Request) {
	entries, err := h.entryService.List(r.Context())
	if err != nil {
		slog.Error("list results failed", "error", err)
		renderServerError(w)
		return
	}

	renderPage(w, http.StatusOK, "Baking Contest Results", entryTable(entries))
}

func entryTable(entries []types.Entry) string {
	var b strings.Builder
	b.WriteString("<table border=\"1\">\n")
	b.WriteString("<tr><th>Entry Id</th><th>User Id</th><th>Name of Baking Item</th><th>Excellent</th><th>Ok</th><th>Bad</th></tr>\n")
	for _, entry := range entries {
		b.WriteString(tableRow(
			strconv.Itoa(entry.ID),
			strconv.Itoa(entry.UserID),
			entry.ItemName,
			strconv.Itoa(entry.NumExcellent),
			strconv.Itoa(entry.NumOk),
			strconv.Itoa(entry.NumBad),
		))
	}
	b.WriteString("</table>")
	return b.String()
}
