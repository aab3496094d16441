package handlers

import (
	"fmt"
	"html"
	"net/http"
	"strings"
)

// The page layer is deliberately minimal: handlers emit small fragments into
// one shared shell, with every dynamic value HTML-escaped.

func renderPage(w http.ResponseWriter, status int, title, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head><title>%s</title></head>
<body>
<h1>%s</h1>
%s
<p><a href="/">Home</a></p>
</body>
</html>
`, html.EscapeString(title), html.EscapeString(title), body)
}

func renderNotFound(w http.ResponseWriter) {
	renderPage(w, http.StatusNotFound, "Page Not Found", "<p>The page you requested does not exist.</p>")
}

func renderServerError(w http.ResponseWriter) {
	renderPage(w, http.StatusInternalServerError, "Something Went Wrong", "<p>Please try again later.</p>")
}

// NotFound is the router-level handler for unmatched routes. Level-gated
// routes render the identical page on insufficient privilege.
func NotFound(w http.ResponseWriter, r *http.Request) {
	renderNotFound(w)
}

// Healthz reports liveness.
func Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok")
}

// escapeLines escapes a multi-line message and renders each line as a list
// item, so validation reports arrive intact without trusting their content.
func escapeLines(message string) string {
	lines := strings.Split(message, "\n")
	var b strings.Builder
	b.WriteString("<ul>\n")
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fmt.Fprintf(&b, "<li>%s</li>\n", html.EscapeString(line))
	}
	b.WriteString("</ul>")
	return b.String()
}

func tableRow(cells ...string) string {
	var b strings.Builder
	b.WriteString("<tr>")
	for _, cell := range cells {
		fmt.Fprintf(&b, "<td>%s</td>", html.EscapeString(cell))
	}
	b.WriteString("</tr>\n")
	return b.String()
}
