package api

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
	v1 "github.com/trusttrade/trusttrade/pkg/types/v1"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	c, err := New(srv.URL+"/api/", opts...)
	require.NoError(t, err)
	return c
}

func TestListAssetsQuery(t *testing.T) {
	var got *http.Request
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		_, _ = w.Write([]byte(`{"assets":[],"page":2,"pages":3}`))
	})

	page, err := c.ListAssets(context.Background(), ListParams{
		Filters: v1.Filters{Category: "Vehicles", MinPrice: "100"},
		Page:    2,
	})
	require.NoError(t, err)

	assert.Equal(t, "/api/assets", got.URL.Path)
	q := got.URL.Query()
	assert.Equal(t, "2", q.Get("page"))
	assert.Equal(t, "12", q.Get("limit"))
	assert.Equal(t, "Vehicles", q.Get("category"))
	assert.Equal(t, "100", q.Get("minPrice"))
	assert.Equal(t, "1714564800000", q.Get("_t"))
	assert.False(t, q.Has("search"))
	assert.False(t, q.Has("condition"))
	assert.NotEmpty(t, got.Header.Get(requestIDHeader))

	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 3, page.Pages)
	assert.True(t, page.HasMore())
}

func TestListAssetsWithoutCacheBust(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("_t"))
		_, _ = w.Write([]byte(`[]`))
	}, WithCacheBust(false))

	_, err := c.ListAssets(context.Background(), ListParams{Page: 1})
	require.NoError(t, err)
}

func TestListAssetsLegacyArray(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"_id":"a"},{"_id":"b"}]`))
	})

	page, err := c.ListAssets(context.Background(), ListParams{Page: 1})
	require.NoError(t, err)
	assert.Len(t, page.Assets, 2)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 1, page.Pages)
	assert.False(t, page.HasMore())
}

func TestListAssetsRejectsUnknownShape(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items":[]}`))
	})

	_, err := c.ListAssets(context.Background(), ListParams{Page: 1})
	assert.True(t, errors.Is(err, ErrUnrecognizedShape), "got %v", err)
}

func TestStatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "upstream down"})
	})

	_, err := c.ListAssets(context.Background(), ListParams{Page: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnexpectedStatus))

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadGateway, se.Code)
	assert.Equal(t, "upstream down", se.Body)
}

func TestGetAssetSharesConcurrentRequests(t *testing.T) {
	var hits int32
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		<-release
		_, _ = w.Write([]byte(`{"_id":"a1","title":"Forklift"}`))
	})

	var wg sync.WaitGroup
	results := make([]*v1.Asset, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, err := c.GetAsset(context.Background(), "a1")
			assert.NoError(t, err)
			results[i] = a
		}(i)
	}

	// give every goroutine a chance to join the in-flight call
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
	for _, a := range results {
		require.NotNil(t, a)
		assert.Equal(t, "Forklift", a.Title)
	}
}

func TestExpressInterest(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/assets/a%2F1/interest", r.URL.EscapedPath())
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "still available?", body["message"])
		w.WriteHeader(http.StatusCreated)
	})

	require.NoError(t, c.ExpressInterest(context.Background(), "a/1", "still available?"))
}

func TestNewRejectsRelativeURL(t *testing.T) {
	_, err := New("/api")
	assert.Error(t, err)
}
