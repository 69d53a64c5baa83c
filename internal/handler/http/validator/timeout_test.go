package validator

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	hhttp "jsonfeed-validator/internal/handler/http"
	"jsonfeed-validator/internal/infra/fetcher"
	"jsonfeed-validator/internal/usecase/validate"
)

type acceptAllSchema struct{}

func (acceptAllSchema) Validate(any) []string { return nil }

// slowRedirectServer redirects forever, pausing delay before each answer.
func slowRedirectServer(t *testing.T, delay time.Duration) *httptest.Server {
	t.Helper()
	var hops atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := hops.Add(1)
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
		http.Redirect(w, r, "/hop"+strconv.Itoa(int(n)), http.StatusFound)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// A redirect chain whose hops each stay within the per-hop timeouts but
// together outlast the fetch budget is reported in the JSON body, not
// replaced by the server's 504.
func TestHandler_SlowRedirectChainReportedInBody(t *testing.T) {
	feedSrv := slowRedirectServer(t, 90*time.Millisecond)

	cfg := fetcher.DefaultConfig()
	cfg.ConnectTimeout = 100 * time.Millisecond
	cfg.ReadTimeout = 100 * time.Millisecond
	cfg.TotalTimeout = 150 * time.Millisecond

	svc := &validate.Service{
		Fetcher: fetcher.NewHTTPFetcher(cfg),
		Schema:  acceptAllSchema{},
	}
	h := hhttp.Chain(newMux(svc), hhttp.Timeout(400*time.Millisecond))

	rec := get(t, h, "/?format=json&url="+url.QueryEscape(feedSrv.URL))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Valid)
	assert.Equal(t, []map[string]string{{"Error": "Unknown exception Timeout."}}, resp.Errors)
}

func TestHandler_FastFeedUnderRequestTimeout(t *testing.T) {
	feedSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/feed+json")
		_, _ = w.Write([]byte(`{"version":"https://jsonfeed.org/version/1.1","title":"T","home_page_url":"http://x","feed_url":"http://x/f","items":[]}`))
	}))
	defer feedSrv.Close()

	cfg := fetcher.DefaultConfig()
	cfg.TotalTimeout = 150 * time.Millisecond

	svc := &validate.Service{
		Fetcher: fetcher.NewHTTPFetcher(cfg),
		Schema:  acceptAllSchema{},
	}
	h := hhttp.Chain(newMux(svc), hhttp.Timeout(400*time.Millisecond))

	rec := get(t, h, "/?format=json&url="+url.QueryEscape(feedSrv.URL))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Valid, rec.Body.String())
	assert.Empty(t, resp.Errors)
}

// "url=%20" is a supplied URL, so it is reported rather than treated as an
// empty form.
func TestHandler_BlankURLReported(t *testing.T) {
	svc := &validate.Service{
		Fetcher: fetcher.NewHTTPFetcher(fetcher.DefaultConfig()),
		Schema:  acceptAllSchema{},
	}

	rec := get(t, newMux(svc), "/?format=json&url=%20")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Valid)
	assert.Equal(t, []map[string]string{{"Error": "Unknown exception InvalidURL."}}, resp.Errors)
}
