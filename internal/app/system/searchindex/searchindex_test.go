package searchindex_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/listinghub/internal/app/system/searchindex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type call struct {
	Method string
	Path   string
	Body   string
}

// fakeES records requests and answers through respond. Every response
// carries the product header the client checks for.
type fakeES struct {
	mu      sync.Mutex
	calls   []call
	respond func(w http.ResponseWriter, r *http.Request)
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.calls = append(f.calls, call{Method: r.Method, Path: r.URL.Path, Body: string(body)})
	f.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	if f.respond != nil {
		f.respond(w, r)
		return
	}
	w.Write([]byte(`{}`))
}

func (f *fakeES) recorded() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

func newClient(t *testing.T, fake *fakeES) *searchindex.Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	c, err := searchindex.New(searchindex.Config{
		Addresses: []string{srv.URL},
		Index:     "properties",
	}, zap.NewNop())
	require.NoError(t, err)
	return c
}

func testCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestNew_RequiresIndex(t *testing.T) {
	_, err := searchindex.New(searchindex.Config{Addresses: []string{"http://localhost:9200"}}, zap.NewNop())
	assert.Error(t, err)
}

func TestEnsureIndex_CreatesWhenMissing(t *testing.T) {
	fake := &fakeES{respond: func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"acknowledged":true}`))
	}}
	c := newClient(t, fake)

	require.NoError(t, c.EnsureIndex(testCtx(t)))

	calls := fake.recorded()
	require.Len(t, calls, 2)
	assert.Equal(t, http.MethodHead, calls[0].Method)
	assert.Equal(t, http.MethodPut, calls[1].Method)
	assert.Equal(t, "/properties", calls[1].Path)
}

func TestEnsureIndex_ExistingIsNoop(t *testing.T) {
	fake := &fakeES{}
	c := newClient(t, fake)

	require.NoError(t, c.EnsureIndex(testCtx(t)))
	assert.Len(t, fake.recorded(), 1)
}

func TestEnsureIndex_CreateRace(t *testing.T) {
	fake := &fakeES{respond: func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"type":"resource_already_exists_exception"}}`))
	}}
	c := newClient(t, fake)

	assert.NoError(t, c.EnsureIndex(testCtx(t)))
}

func TestPutMapping_SendsFieldTypes(t *testing.T) {
	fake := &fakeES{}
	c := newClient(t, fake)

	require.NoError(t, c.PutMapping(testCtx(t)))

	calls := fake.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, "/properties/_mapping", calls[0].Path)

	var body struct {
		Properties map[string]struct {
			Type string `json:"type"`
		} `json:"properties"`
	}
	require.NoError(t, json.Unmarshal([]byte(calls[0].Body), &body))
	assert.Equal(t, "geo_point", body.Properties["location"].Type)
	assert.Equal(t, "keyword", body.Properties["amenities"].Type)
	assert.Equal(t, "keyword", body.Properties["propertyType"].Type)
	assert.Equal(t, "double", body.Properties["price"].Type)
	assert.Equal(t, "date", body.Properties["createdAt"].Type)
	assert.Equal(t, "text", body.Properties["title"].Type)
}

func TestUpsert_IndexesByID(t *testing.T) {
	fake := &fakeES{}
	c := newClient(t, fake)

	err := c.Upsert(testCtx(t), searchindex.Entry{
		ID:           "abc123",
		Title:        "Loft",
		Price:        1200,
		Location:     searchindex.GeoPoint{Lat: 40.7, Lon: -74},
		PropertyType: "apartment",
	})
	require.NoError(t, err)

	calls := fake.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, http.MethodPut, calls[0].Method)
	assert.Equal(t, "/properties/_doc/abc123", calls[0].Path)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(calls[0].Body), &doc))
	assert.Equal(t, "Loft", doc["title"])
	assert.Equal(t, "apartment", doc["propertyType"])
	assert.Equal(t, []any{}, doc["amenities"])
	assert.NotContains(t, doc, "ID")
}

func TestUpsert_RequiresID(t *testing.T) {
	c := newClient(t, &fakeES{})
	assert.Error(t, c.Upsert(testCtx(t), searchindex.Entry{Title: "x"}))
}

func TestDelete_NotFoundIsSuccess(t *testing.T) {
	fake := &fakeES{respond: func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"result":"not_found"}`))
	}}
	c := newClient(t, fake)

	assert.NoError(t, c.Delete(testCtx(t), "gone"))
	assert.Equal(t, "/properties/_doc/gone", fake.recorded()[0].Path)
}

func TestSearch_ReturnsIDsInOrder(t *testing.T) {
	fake := &fakeES{respond: func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"hits":{"hits":[{"_id":"b"},{"_id":"a"},{"_id":"c"}]}}`))
	}}
	c := newClient(t, fake)

	ids, err := c.Search(testCtx(t), searchindex.Query{
		Filters: searchindex.Filters{PropertyType: "house"},
	}, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "c"}, ids)

	calls := fake.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, "/properties/_search", calls[0].Path)
	assert.Contains(t, calls[0].Body, `"propertyType":"house"`)
}

func TestSearch_ServerErrorIsUnavailable(t *testing.T) {
	fake := &fakeES{respond: func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"boom"}`))
	}}
	c := newClient(t, fake)

	_, err := c.Search(testCtx(t), searchindex.Query{}, 10)
	assert.ErrorIs(t, err, searchindex.ErrUnavailable)
}

func TestSearch_BadRequestIsNotUnavailable(t *testing.T) {
	fake := &fakeES{respond: func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"parsing_exception"}`))
	}}
	c := newClient(t, fake)

	_, err := c.Search(testCtx(t), searchindex.Query{}, 10)
	require.Error(t, err)
	assert.NotErrorIs(t, err, searchindex.ErrUnavailable)

	var se *searchindex.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadRequest, se.Status)
}

func TestUnreachableIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := searchindex.New(searchindex.Config{Addresses: []string{url}, Index: "properties"}, zap.NewNop())
	require.NoError(t, err)

	assert.ErrorIs(t, c.Ping(testCtx(t)), searchindex.ErrUnavailable)
	_, err = c.Search(testCtx(t), searchindex.Query{Text: "x"}, 10)
	assert.ErrorIs(t, err, searchindex.ErrUnavailable)
}

func TestPing_OK(t *testing.T) {
	c := newClient(t, &fakeES{})
	assert.NoError(t, c.Ping(testCtx(t)))
}
