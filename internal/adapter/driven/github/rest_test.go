package github

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petems/github-pr-review-mcp-server/internal/apierr"
	"github.com/petems/github-pr-review-mcp-server/internal/domain/model"
)

// newWalkClient builds a Client aimed at the given httptest handler, with
// sleeps recorded instead of performed.
func newWalkClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server, *[]time.Duration) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(Config{
		Token:  "test-token",
		Logger: slog.New(slog.DiscardHandler),
	})

	var sleeps []time.Duration
	client.sleep = func(_ context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	}
	return client, server, &sleeps
}

// restUserJSON and restCommentJSON match the wire shape of a REST review
// comment.
type restUserJSON struct {
	Login string `json:"login"`
}

type restCommentJSON struct {
	User     *restUserJSON `json:"user,omitempty"`
	Path     string        `json:"path"`
	Line     *int          `json:"line,omitempty"`
	Body     string        `json:"body"`
	DiffHunk string        `json:"diff_hunk,omitempty"`
}

func restPage(n int) []restCommentJSON {
	page := make([]restCommentJSON, n)
	for i := range page {
		line := i + 1
		page[i] = restCommentJSON{
			User: &restUserJSON{Login: "reviewer"},
			Path: "main.go",
			Line: &line,
			Body: fmt.Sprintf("comment %d", i),
		}
	}
	return page
}

// pagedHandler serves fixed page sizes in order, recording which pages were
// requested.
func pagedHandler(t *testing.T, sizes []int, requested *[]int) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page == 0 {
			page = 1
		}
		*requested = append(*requested, page)

		var body []restCommentJSON
		if page <= len(sizes) {
			body = restPage(sizes[page-1])
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(body))
	})
}

func restRequest(serverURL string) model.RetrievalRequest {
	return model.RetrievalRequest{
		Owner:      "octocat",
		Repo:       "hello",
		PullNumber: 7,
		BaseURL:    serverURL,
	}
}

func TestRESTWalkNaturalEnd(t *testing.T) {
	var requested []int
	client, server, _ := newWalkClient(t, pagedHandler(t, []int{100, 100, 40}, &requested))

	set, err := NewRESTSource(client).Walk(context.Background(), restRequest(server.URL))
	require.NoError(t, err)

	assert.Equal(t, 240, set.Len())
	assert.False(t, set.Truncated)
	assert.Equal(t, []int{1, 2, 3}, requested, "short page ends the walk without a fourth request")
}

func TestRESTWalkPageCeiling(t *testing.T) {
	var requested []int
	client, server, _ := newWalkClient(t, pagedHandler(t, []int{100, 100, 40}, &requested))

	req := restRequest(server.URL)
	req.MaxPages = 2

	set, err := NewRESTSource(client).Walk(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 200, set.Len())
	assert.True(t, set.Truncated)
	assert.Equal(t, []int{1, 2}, requested, "third page must never be fetched")
}

func TestRESTWalkCommentCeilingMidPage(t *testing.T) {
	var requested []int
	client, server, _ := newWalkClient(t, pagedHandler(t, []int{100, 100, 100}, &requested))

	req := restRequest(server.URL)
	req.MaxComments = 150

	set, err := NewRESTSource(client).Walk(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 150, set.Len(), "truncation happens exactly at the boundary, not per page")
	assert.True(t, set.Truncated)
	assert.Equal(t, []int{1, 2}, requested)
}

func TestRESTWalkExactCeilingFillIsComplete(t *testing.T) {
	var requested []int
	client, server, _ := newWalkClient(t, pagedHandler(t, []int{100, 50}, &requested))

	req := restRequest(server.URL)
	req.MaxComments = 150

	set, err := NewRESTSource(client).Walk(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 150, set.Len())
	assert.False(t, set.Truncated, "a listing ending exactly at the ceiling is complete")
}

func TestRESTWalkAuthSchemeSwitch(t *testing.T) {
	var schemes []string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		schemes = append(schemes, auth)
		if len(schemes) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"message": "Bad credentials"}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(restPage(1))
	})

	client, server, _ := newWalkClient(t, handler)

	set, err := NewRESTSource(client).Walk(context.Background(), restRequest(server.URL))
	require.NoError(t, err)
	assert.Equal(t, 1, set.Len())

	require.Len(t, schemes, 2)
	assert.Equal(t, "Bearer test-token", schemes[0])
	assert.Equal(t, "token test-token", schemes[1])
}

func TestRESTWalkAuthFailureBothSchemes(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"message": "Bad credentials"}`)
	})
	client, server, _ := newWalkClient(t, handler)

	_, err := NewRESTSource(client).Walk(context.Background(), restRequest(server.URL))
	assert.ErrorIs(t, err, apierr.ErrAuthFailed)
}

func TestRESTWalkSecondaryLimitRetryOncePartial(t *testing.T) {
	calls := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page <= 1 {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(restPage(100))
			return
		}
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"message": "You have exceeded a secondary rate limit"}`)
	})

	client, server, sleeps := newWalkClient(t, handler)

	set, err := NewRESTSource(client).Walk(context.Background(), restRequest(server.URL))
	require.NoError(t, err, "second secondary hit is a partial result, not an error")

	assert.Equal(t, 100, set.Len(), "everything collected before the limit is kept")
	assert.True(t, set.Truncated)
	assert.Equal(t, 3, calls, "exactly one retry of the throttled page")
	assert.Equal(t, []time.Duration{secondaryRetryWait}, *sleeps)
}

func TestRESTWalkServerErrorRetriesThenSucceeds(t *testing.T) {
	calls := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls <= 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(restPage(5))
	})

	client, server, sleeps := newWalkClient(t, handler)

	req := restRequest(server.URL)
	req.MaxRetries = 3

	set, err := NewRESTSource(client).Walk(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 5, set.Len())
	assert.Len(t, *sleeps, 2)
}

func TestRESTWalkServerErrorExhaustsRetries(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	client, server, _ := newWalkClient(t, handler)

	req := restRequest(server.URL)
	req.MaxRetries = 2

	_, err := NewRESTSource(client).Walk(context.Background(), req)
	assert.ErrorIs(t, err, apierr.ErrServerError)
}

func TestRESTWalkNotFound(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message": "Not Found"}`)
	})
	client, server, _ := newWalkClient(t, handler)

	_, err := NewRESTSource(client).Walk(context.Background(), restRequest(server.URL))
	assert.ErrorIs(t, err, apierr.ErrNotFound)
}

func TestRESTWalkPrimaryRateLimitWaitsAndRetries(t *testing.T) {
	calls := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set(headerRetryAfter, "7")
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `{"message": "API rate limit exceeded for user"}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(restPage(1))
	})

	client, server, sleeps := newWalkClient(t, handler)

	set, err := NewRESTSource(client).Walk(context.Background(), restRequest(server.URL))
	require.NoError(t, err)
	assert.Equal(t, 1, set.Len())
	assert.Equal(t, []time.Duration{7 * time.Second}, *sleeps)
}
