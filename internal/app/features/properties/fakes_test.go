package properties_test

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/dalemusser/listinghub/internal/app/system/assets"
	"github.com/dalemusser/listinghub/internal/app/system/searchindex"
)

type fakeIndex struct {
	mu        sync.Mutex
	entries   map[string]searchindex.Entry
	deleted   []string
	deleteErr error
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{entries: map[string]searchindex.Entry{}}
}

func (f *fakeIndex) Upsert(_ context.Context, e searchindex.Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
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

// fakeSearcher filters the entries held by a fakeIndex on property type
// only, which is enough to drive the handler.
type fakeSearcher struct {
	index *fakeIndex
	err   error
	last  searchindex.Query
	size  int
}

func (f *fakeSearcher) Search(_ context.Context, q searchindex.Query, size int) ([]string, error) {
	f.last, f.size = q, size
	if f.err != nil {
		return nil, f.err
	}
	f.index.mu.Lock()
	defer f.index.mu.Unlock()
	var ids []string
	for id, e := range f.index.entries {
		if q.Filters.PropertyType != "" && e.PropertyType != q.Filters.PropertyType {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

type fakeAssets struct {
	mu        sync.Mutex
	next      int
	stored    map[string][]byte
	destroyed []string
	failOn    string // asset ID whose Destroy fails
	uploadErr error
}

func newFakeAssets() *fakeAssets {
	return &fakeAssets{stored: map[string][]byte{}}
}

func (f *fakeAssets) Upload(_ context.Context, u assets.Upload) (assets.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return assets.Asset{}, f.uploadErr
	}
	body, err := io.ReadAll(u.Body)
	if err != nil {
		return assets.Asset{}, err
	}
	f.next++
	id := assets.NewAssetID(u.Filename)
	f.stored[id] = body
	return assets.Asset{ID: id, URL: "https://cdn.test/" + id}, nil
}

func (f *fakeAssets) Destroy(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id == f.failOn {
		return errors.New("destroy failed")
	}
	delete(f.stored, id)
	f.destroyed = append(f.destroyed, id)
	return nil
}
