// Package validator serves the validation endpoint: GET / with a url
// parameter renders a report as an HTML page or, with format=json, as a
// JSON document.
package validator

import (
	"context"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"jsonfeed-validator/internal/handler/http/respond"
	"jsonfeed-validator/internal/observability/logging"
	"jsonfeed-validator/internal/usecase/validate"
)

// Output formats accepted by the format query parameter.
const (
	FormatHTML = "html"
	FormatJSON = "json"
)

//go:embed templates/report.html
var templateFS embed.FS

var reportTemplate = template.Must(
	template.New("report.html").
		Funcs(template.FuncMap{"join": strings.Join}).
		ParseFS(templateFS, "templates/report.html"),
)

// Validator produces a report for a user-supplied feed URL.
type Validator interface {
	Validate(ctx context.Context, rawURL string) validate.Report
}

// Handler renders validation reports.
type Handler struct {
	Svc Validator
}

// Register mounts the handler on GET / only; other paths 404 and other
// methods get 405 from the mux.
func Register(mux *http.ServeMux, svc Validator) {
	mux.Handle("GET /{$}", Handler{Svc: svc})
}

// ServeHTTP validates the url query parameter.
// Validation failures are part of the report, so the status is always 200.
func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	report := h.Svc.Validate(r.Context(), q.Get("url"))

	switch q.Get("format") {
	case FormatJSON:
		respond.JSON(w, http.StatusOK, NewResponse(report))
	default:
		// html 以外の不明な format も HTML で返す
		h.renderHTML(w, r, report)
	}
}

// Response is the JSON rendering of a report.
//
//	{"valid": false, "errors": [{"Error": "..."}, {"Warning": "..."}]}
type Response struct {
	Valid  bool                `json:"valid"`
	Errors []map[string]string `json:"errors"`
}

// NewResponse converts a report, keeping message order.
func NewResponse(report validate.Report) Response {
	errs := make([]map[string]string, 0, len(report.Errors))
	for _, e := range report.Errors {
		errs = append(errs, map[string]string{e.Label(): e.Message})
	}
	return Response{Valid: report.Valid(), Errors: errs}
}

type pageMessage struct {
	Label   string
	Class   string
	Message string
}

type pageData struct {
	validate.Report
	Messages []pageMessage
}

func (h Handler) renderHTML(w http.ResponseWriter, r *http.Request, report validate.Report) {
	data := pageData{Report: report}
	for _, e := range report.Errors {
		data.Messages = append(data.Messages, pageMessage{
			Label:   e.Label(),
			Class:   string(e.Kind),
			Message: e.Message,
		})
	}

	var buf strings.Builder
	if err := reportTemplate.Execute(&buf, data); err != nil {
		logging.FromContext(r.Context()).Error("render report page failed",
			slog.String("url", respond.SanitizeString(report.URL)),
			slog.Any("error", err))
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(buf.String()))
}
