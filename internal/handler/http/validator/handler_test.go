package validator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jsonfeed-validator/internal/domain/entity"
	"jsonfeed-validator/internal/infra/feedparser"
	"jsonfeed-validator/internal/usecase/validate"
)

type stubValidator struct {
	report validate.Report
	gotURL string
	calls  int
}

func (s *stubValidator) Validate(_ context.Context, rawURL string) validate.Report {
	s.calls++
	s.gotURL = rawURL
	return s.report
}

func invalidReport() validate.Report {
	return validate.Report{
		URL:      "http://example.org/feed.json",
		Document: map[string]any{"title": "Example"},
		Pretty:   "{\n  \"title\": \"Example <b>\"\n}",
		Errors: []entity.FeedError{
			{Kind: entity.KindError, Message: `The top-level object did not contain a required property of 'items'.`},
			entity.Warning(`The "feed_url" field is missing. It is strongly recommended, but not required.`),
		},
	}
}

func newMux(svc Validator) *http.ServeMux {
	mux := http.NewServeMux()
	Register(mux, svc)
	return mux
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHandler_JSON(t *testing.T) {
	svc := &stubValidator{report: invalidReport()}

	rec := get(t, newMux(svc), "/?url=example.org/feed.json&format=json")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "example.org/feed.json", svc.gotURL)
	assert.JSONEq(t, `{
		"valid": false,
		"errors": [
			{"Error": "The top-level object did not contain a required property of 'items'."},
			{"Warning": "The \"feed_url\" field is missing. It is strongly recommended, but not required."}
		]
	}`, rec.Body.String())
}

func TestHandler_JSON_ValidFeed(t *testing.T) {
	svc := &stubValidator{report: validate.Report{URL: "http://example.org/feed.json"}}

	rec := get(t, newMux(svc), "/?url=example.org/feed.json&format=json")

	assert.JSONEq(t, `{"valid": true, "errors": []}`, rec.Body.String())
}

func TestHandler_JSON_NoURL(t *testing.T) {
	svc := &stubValidator{}

	rec := get(t, newMux(svc), "/?format=json")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"valid": false, "errors": []}`, rec.Body.String())
	assert.Equal(t, "", svc.gotURL)
}

func TestHandler_JSON_FetchError(t *testing.T) {
	svc := &stubValidator{report: validate.Report{
		URL:    "http://example.org/missing.json",
		Errors: []entity.FeedError{*entity.Errorf("404 not found. No feed was found at this URL.")},
	}}

	rec := get(t, newMux(svc), "/?url=example.org/missing.json&format=json")

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Valid)
	assert.Equal(t, []map[string]string{{"Error": "404 not found. No feed was found at this URL."}}, body.Errors)
}

func TestHandler_HTML(t *testing.T) {
	svc := &stubValidator{report: invalidReport()}

	rec := get(t, newMux(svc), "/?url=example.org/feed.json")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, `value="http://example.org/feed.json"`)
	assert.Contains(t, body, "1 error, 1 warning.")
	assert.Contains(t, body, `<li class="error"><strong>Error:</strong>`)
	assert.Contains(t, body, `<li class="warning"><strong>Warning:</strong>`)
	// Messages and document are escaped.
	assert.Contains(t, body, "The &#34;feed_url&#34; field is missing.")
	assert.Contains(t, body, "Example &lt;b&gt;")
	assert.NotContains(t, body, "<b>")

	errIdx := strings.Index(body, `class="error"`)
	warnIdx := strings.Index(body, `class="warning"`)
	assert.Less(t, errIdx, warnIdx, "errors must be listed before warnings")
}

func TestHandler_HTML_ValidWithSummary(t *testing.T) {
	latest := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc := &stubValidator{report: validate.Report{
		URL:    "https://example.org/feed.json",
		Pretty: "{}",
		Summary: &feedparser.Summary{
			Title:      "My Example Feed",
			Version:    "1.1",
			ItemCount:  2,
			Authors:    []string{"Alice", "Bob"},
			LatestItem: &latest,
		},
	}}

	body := get(t, newMux(svc), "/?url=https://example.org/feed.json&format=html").Body.String()

	assert.Contains(t, body, "Your feed is valid.")
	assert.Contains(t, body, "<dd>My Example Feed</dd>")
	assert.Contains(t, body, "<dd>2</dd>")
	assert.Contains(t, body, "<dd>Alice, Bob</dd>")
	assert.Contains(t, body, "2024-05-01 12:00 UTC")
}

func TestHandler_HTML_EmptyForm(t *testing.T) {
	svc := &stubValidator{}

	body := get(t, newMux(svc), "/").Body.String()

	assert.Contains(t, body, `<form method="get" action="/">`)
	assert.NotContains(t, body, "Your feed is valid.")
	assert.NotContains(t, body, `class="messages"`)
}

func TestHandler_UnknownFormatFallsBackToHTML(t *testing.T) {
	svc := &stubValidator{report: invalidReport()}

	rec := get(t, newMux(svc), "/?url=example.org/feed.json&format=xml")

	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<!DOCTYPE html>")
}

func TestRegister_Routing(t *testing.T) {
	svc := &stubValidator{}
	mux := newMux(svc)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/?url=x", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	assert.Equal(t, http.StatusNotFound, get(t, mux, "/feed.json").Code)
	assert.Zero(t, svc.calls)
}

func TestNewResponse_KeepsOrder(t *testing.T) {
	report := validate.Report{
		URL: "http://example.org/feed.json",
		Errors: []entity.FeedError{
			{Kind: entity.KindError, Message: "first"},
			{Kind: entity.KindError, Message: "second"},
			entity.Warning("third"),
		},
	}

	got := NewResponse(report)

	assert.False(t, got.Valid)
	assert.Equal(t, []map[string]string{
		{"Error": "first"},
		{"Error": "second"},
		{"Warning": "third"},
	}, got.Errors)
}
