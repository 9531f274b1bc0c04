package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wantbot/internal/pacer"
)

// fakeCatalog is an httptest-backed catalog with per-endpoint call counts.
type fakeCatalog struct {
	server       *httptest.Server
	cardCalls    int64
	editionCalls int64
	listCalls    int64

	mu       sync.Mutex
	cards    map[string]cardPayload // keyed by fuzzy query
	editions []editionPayload
}

func newFakeCatalog(t *testing.T) *fakeCatalog {
	t.Helper()
	f := &fakeCatalog{
		cards: map[string]cardPayload{
			"lightning bolt": {Name: "Lightning Bolt", Set: "m25", SetName: "Masters 25"},
			"opt":            {Name: "Opt", Set: "xln", SetName: "Ixalan"},
		},
		editions: []editionPayload{
			{Name: "Masters 25", Code: "m25"},
			{Name: "Ixalan", Code: "xln"},
			{Name: "Dominaria", Code: "dom"},
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/cards/named", f.handleNamed)
	mux.HandleFunc("/sets/", f.handleEdition)
	mux.HandleFunc("/sets", f.handleList)
	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeCatalog) handleNamed(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt64(&f.cardCalls, 1)
	fuzzy := r.URL.Query().Get("fuzzy")
	set := r.URL.Query().Get("set")

	if fuzzy == "bol" {
		writeJSON(w, http.StatusNotFound, errorPayload{
			Code: "not_found", Type: "ambiguous",
			Details: "Too many cards match ambiguous name \"bol\".",
		})
		return
	}

	f.mu.Lock()
	card, ok := f.cards[lower(fuzzy)]
	f.mu.Unlock()
	if !ok || (set != "" && set != card.Set) {
		writeJSON(w, http.StatusNotFound, errorPayload{
			Code: "not_found", Details: "No cards found matching the query.",
		})
		return
	}
	writeJSON(w, http.StatusOK, card)
}

func (f *fakeCatalog) handleEdition(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt64(&f.editionCalls, 1)
	code := r.URL.Path[len("/sets/"):]
	for _, e := range f.editions {
		if e.Code == code {
			writeJSON(w, http.StatusOK, e)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, errorPayload{Code: "not_found", Details: "No set found."})
}

func (f *fakeCatalog) handleList(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt64(&f.listCalls, 1)
	writeJSON(w, http.StatusOK, editionListPayload{Data: f.editions})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func lower(s string) string {
	b := []byte(s)
	for i := range b {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}

// testClock lets tests push cached entries past the freshness window.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestResolver(t *testing.T, f *fakeCatalog) (*Resolver, *testClock) {
	t.Helper()
	clock := &testClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	p := pacer.New(pacer.Config{Spacing: time.Millisecond})
	t.Cleanup(p.Stop)
	r := NewResolver(ResolverConfig{
		Client: NewHTTPClient(HTTPConfig{BaseURL: f.server.URL, Timeout: 2 * time.Second}),
		Pacer:  p,
		Now:    clock.Now,
	})
	return r, clock
}

func TestResolveCardCachesFreshEntries(t *testing.T) {
	f := newFakeCatalog(t)
	r, _ := newTestResolver(t, f)

	card, err := r.ResolveCard(context.Background(), "lightning bolt", "")
	require.NoError(t, err)
	assert.Equal(t, Card{Name: "Lightning Bolt", EditionCode: "m25", EditionName: "Masters 25"}, card)

	// Case differences hit the same cache row.
	_, err = r.ResolveCard(context.Background(), "Lightning Bolt", "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), atomic.LoadInt64(&f.cardCalls))
}

func TestResolveCardStaleEntryIsRefetched(t *testing.T) {
	f := newFakeCatalog(t)
	r, clock := newTestResolver(t, f)

	_, err := r.ResolveCard(context.Background(), "opt", "")
	require.NoError(t, err)

	clock.Advance(23 * time.Hour)
	_, err = r.ResolveCard(context.Background(), "opt", "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), atomic.LoadInt64(&f.cardCalls), "fresh entry must not refetch")

	clock.Advance(2 * time.Hour)
	_, err = r.ResolveCard(context.Background(), "opt", "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), atomic.LoadInt64(&f.cardCalls), "stale entry must refetch")
}

func TestResolveCardConstrainedQueriesCacheSeparately(t *testing.T) {
	f := newFakeCatalog(t)
	r, _ := newTestResolver(t, f)

	_, err := r.ResolveCard(context.Background(), "lightning bolt", "")
	require.NoError(t, err)
	_, err = r.ResolveCard(context.Background(), "lightning bolt", "m25")
	require.NoError(t, err)
	assert.Equal(t, int64(2), atomic.LoadInt64(&f.cardCalls))
}

func TestResolveCardEditionScopedNotFound(t *testing.T) {
	f := newFakeCatalog(t)
	r, _ := newTestResolver(t, f)

	_, err := r.ResolveCard(context.Background(), "opt", "m25")
	var catErr *Error
	require.ErrorAs(t, err, &catErr)
	assert.Equal(t, KindNotFound, catErr.Kind)
	assert.Contains(t, catErr.Error(), `"opt"`)
	assert.Contains(t, catErr.Error(), `"m25"`)
}

func TestResolveCardAmbiguous(t *testing.T) {
	f := newFakeCatalog(t)
	r, _ := newTestResolver(t, f)

	_, err := r.ResolveCard(context.Background(), "bol", "")
	var catErr *Error
	require.ErrorAs(t, err, &catErr)
	assert.Equal(t, KindAmbiguous, catErr.Kind)
	assert.Contains(t, catErr.Error(), "more specific")
}

func TestResolveCardTimeout(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer slow.Close()

	p := pacer.New(pacer.Config{Spacing: time.Millisecond})
	defer p.Stop()
	r := NewResolver(ResolverConfig{
		Client: NewHTTPClient(HTTPConfig{BaseURL: slow.URL, Timeout: 20 * time.Millisecond}),
		Pacer:  p,
	})

	_, err := r.ResolveCard(context.Background(), "opt", "")
	var catErr *Error
	require.ErrorAs(t, err, &catErr)
	assert.Equal(t, KindTimeout, catErr.Kind)
}

func TestResolveEditionDirectCode(t *testing.T) {
	f := newFakeCatalog(t)
	r, _ := newTestResolver(t, f)

	edition, err := r.ResolveEdition(context.Background(), "M25")
	require.NoError(t, err)
	assert.Equal(t, Edition{Name: "Masters 25", Code: "m25"}, edition)

	// Second lookup of the same identifier is served from cache.
	_, err = r.ResolveEdition(context.Background(), "m25")
	require.NoError(t, err)
	assert.Equal(t, int64(1), atomic.LoadInt64(&f.editionCalls))
}

func TestResolveEditionNameFallbackCachesBothForms(t *testing.T) {
	f := newFakeCatalog(t)
	r, _ := newTestResolver(t, f)

	edition, err := r.ResolveEdition(context.Background(), "Masters 25")
	require.NoError(t, err)
	assert.Equal(t, Edition{Name: "Masters 25", Code: "m25"}, edition)
	assert.Equal(t, int64(1), atomic.LoadInt64(&f.listCalls))

	// The canonical code was cached by the name lookup, so no further
	// external calls happen for it.
	before := atomic.LoadInt64(&f.editionCalls) + atomic.LoadInt64(&f.listCalls)
	_, err = r.ResolveEdition(context.Background(), "m25")
	require.NoError(t, err)
	after := atomic.LoadInt64(&f.editionCalls) + atomic.LoadInt64(&f.listCalls)
	assert.Equal(t, before, after)
}

func TestResolveEditionSubstringFallback(t *testing.T) {
	f := newFakeCatalog(t)
	r, _ := newTestResolver(t, f)

	edition, err := r.ResolveEdition(context.Background(), "domin")
	require.NoError(t, err)
	assert.Equal(t, Edition{Name: "Dominaria", Code: "dom"}, edition)
}

func TestResolveEditionNotFound(t *testing.T) {
	f := newFakeCatalog(t)
	r, _ := newTestResolver(t, f)

	_, err := r.ResolveEdition(context.Background(), "atlantis")
	var catErr *Error
	require.ErrorAs(t, err, &catErr)
	assert.Equal(t, KindNotFound, catErr.Kind)
	assert.Contains(t, catErr.Error(), "atlantis")
}

func TestDecodeErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   Kind
	}{
		{"ambiguous", 404, `{"code":"not_found","type":"ambiguous","details":"x"}`, KindAmbiguous},
		{"not found", 404, `{"code":"not_found","details":"x"}`, KindNotFound},
		{"server error", 500, `{"code":"internal","details":"x"}`, KindNetwork},
		{"unreadable body", 502, `<html>`, KindNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := decodeError(tt.status, []byte(tt.body))
			assert.Equal(t, tt.want, err.Kind)
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	inner := errors.New("inner")
	err := &Error{Kind: KindNetwork, Err: inner}
	assert.ErrorIs(t, err, inner)
}
