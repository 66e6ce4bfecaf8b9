package indexsync_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/listinghub/internal/app/system/indexsync"
	"github.com/dalemusser/listinghub/internal/app/system/searchindex"
	"github.com/dalemusser/listinghub/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeIndex struct {
	mu        sync.Mutex
	entries   map[string]searchindex.Entry
	deleted   []string
	upsertErr error
	deleteErr error
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{entries: map[string]searchindex.Entry{}}
}

func (f *fakeIndex) Upsert(_ context.Context, e searchindex.Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.entries[e.ID] = e
	return nil
}

func (f *fakeIndex) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.entries, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeDead struct {
	ids map[string]bool
}

func newFakeDead(ids ...string) *fakeDead {
	d := &fakeDead{ids: map[string]bool{}}
	for _, id := range ids {
		d.ids[id] = true
	}
	return d
}

func (d *fakeDead) Add(_ context.Context, id string) error { d.ids[id] = true; return nil }

func (d *fakeDead) Members(_ context.Context) ([]string, error) {
	out := make([]string, 0, len(d.ids))
	for id := range d.ids {
		out = append(out, id)
	}
	return out, nil
}

func (d *fakeDead) Remove(_ context.Context, ids ...string) error {
	for _, id := range ids {
		delete(d.ids, id)
	}
	return nil
}

type sliceSource []models.Property

func (s sliceSource) Each(_ context.Context, fn func(*models.Property) error) error {
	for i := range s {
		if err := fn(&s[i]); err != nil {
			return err
		}
	}
	return nil
}

func sampleProperty() *models.Property {
	loc := models.NewPoint(40.71, -74.0)
	loc.Address = "12 Elm St"
	loc.City = "Springfield"
	return &models.Property{
		ID:           primitive.NewObjectID(),
		Title:        "Corner house",
		Description:  "Two floors",
		Price:        250000,
		Location:     loc,
		PropertyType: models.TypeHouse,
		Amenities:    []string{"garage"},
		CreatedAt:    time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestEntryFromProperty(t *testing.T) {
	p := sampleProperty()
	e := indexsync.EntryFromProperty(p)

	assert.Equal(t, p.ID.Hex(), e.ID)
	assert.Equal(t, "Corner house", e.Title)
	assert.Equal(t, "12 Elm St", e.Address)
	assert.Equal(t, "Springfield", e.City)
	assert.Equal(t, 40.71, e.Location.Lat)
	assert.Equal(t, -74.0, e.Location.Lon)
	assert.Equal(t, "house", e.PropertyType)
	assert.Equal(t, p.CreatedAt, e.CreatedAt)

	p.Amenities = nil
	assert.NotNil(t, indexsync.EntryFromProperty(p).Amenities)
}

func TestUpsert_Success(t *testing.T) {
	idx := newFakeIndex()
	s := indexsync.New(idx, nil, zap.NewNop())
	p := sampleProperty()

	s.Upsert(context.Background(), p)

	assert.Contains(t, idx.entries, p.ID.Hex())
}

func TestUpsert_FailureIsLoggedNotReturned(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	idx := newFakeIndex()
	idx.upsertErr = searchindex.ErrUnavailable
	s := indexsync.New(idx, nil, zap.New(core))
	p := sampleProperty()

	s.Upsert(context.Background(), p)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "search index upsert failed", entry.Message)
	assert.Equal(t, p.ID.Hex(), entry.ContextMap()["property_id"])
}

func TestUpsert_FailureRecordsDeadLetter(t *testing.T) {
	idx := newFakeIndex()
	idx.upsertErr = errors.New("boom")
	dead := newFakeDead()
	s := indexsync.New(idx, dead, zap.NewNop())
	p := sampleProperty()

	s.Upsert(context.Background(), p)

	assert.True(t, dead.ids[p.ID.Hex()])
}

func TestDelete_FailureRecordsDeadLetter(t *testing.T) {
	idx := newFakeIndex()
	idx.deleteErr = errors.New("boom")
	dead := newFakeDead()
	s := indexsync.New(idx, dead, zap.NewNop())

	s.Delete(context.Background(), "abc")

	assert.True(t, dead.ids["abc"])
}

func TestReindex_RebuildsAndDrains(t *testing.T) {
	idx := newFakeIndex()
	p1, p2 := sampleProperty(), sampleProperty()
	// "gone" was deleted from the store but its index delete failed.
	dead := newFakeDead(p1.ID.Hex(), "gone")
	idx.entries["gone"] = searchindex.Entry{ID: "gone"}

	s := indexsync.New(idx, dead, zap.NewNop())
	res, err := s.Reindex(context.Background(), sliceSource{*p1, *p2})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Indexed)
	assert.Equal(t, 1, res.Removed)
	assert.Equal(t, 2, res.Drained)
	assert.Empty(t, dead.ids)
	assert.NotContains(t, idx.entries, "gone")
	assert.Contains(t, idx.entries, p1.ID.Hex())
	assert.Contains(t, idx.entries, p2.ID.Hex())
}

func TestReindex_StopsWhenIndexUnavailable(t *testing.T) {
	idx := newFakeIndex()
	idx.upsertErr = searchindex.ErrUnavailable
	s := indexsync.New(idx, nil, zap.NewNop())

	_, err := s.Reindex(context.Background(), sliceSource{*sampleProperty()})
	assert.ErrorIs(t, err, searchindex.ErrUnavailable)
}

func TestReindex_WithoutDeadLetter(t *testing.T) {
	idx := newFakeIndex()
	s := indexsync.New(idx, nil, zap.NewNop())

	res, err := s.Reindex(context.Background(), sliceSource{*sampleProperty()})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Indexed)
	assert.Zero(t, res.Drained)
}

type mapLookup map[primitive.ObjectID]models.Property

func (m mapLookup) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Property, error) {
	out := []models.Property{}
	for _, id := range ids {
		if p, ok := m[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func TestRetryDead_ResyncsOnlyDeadIDs(t *testing.T) {
	idx := newFakeIndex()
	stored, other := sampleProperty(), sampleProperty()
	gone := primitive.NewObjectID().Hex()
	idx.entries[gone] = searchindex.Entry{ID: gone}
	dead := newFakeDead(stored.ID.Hex(), gone, "not-an-id")

	s := indexsync.New(idx, dead, zap.NewNop())
	res, err := s.RetryDead(context.Background(), mapLookup{stored.ID: *stored, other.ID: *other})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Indexed)
	assert.Equal(t, 1, res.Removed)
	assert.Equal(t, 3, res.Drained)
	assert.Empty(t, dead.ids)
	assert.Contains(t, idx.entries, stored.ID.Hex())
	assert.NotContains(t, idx.entries, other.ID.Hex())
	assert.NotContains(t, idx.entries, gone)
}

func TestRetryDead_KeepsIDsWhenIndexUnavailable(t *testing.T) {
	idx := newFakeIndex()
	idx.upsertErr = searchindex.ErrUnavailable
	p := sampleProperty()
	dead := newFakeDead(p.ID.Hex())

	s := indexsync.New(idx, dead, zap.NewNop())
	res, err := s.RetryDead(context.Background(), mapLookup{p.ID: *p})

	assert.ErrorIs(t, err, searchindex.ErrUnavailable)
	assert.Zero(t, res.Drained)
	assert.True(t, dead.ids[p.ID.Hex()])
}

func TestRetryDead_WithoutDeadLetter(t *testing.T) {
	s := indexsync.New(newFakeIndex(), nil, zap.NewNop())
	res, err := s.RetryDead(context.Background(), mapLookup{})
	require.NoError(t, err)
	assert.Zero(t, res)
}
