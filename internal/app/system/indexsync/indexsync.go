// internal/app/system/indexsync/indexsync.go
package indexsync

import (
	"context"
	"errors"

	"github.com/dalemusser/listinghub/internal/app/system/searchindex"
	"github.com/dalemusser/listinghub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Index is the write side of the search index.
type Index interface {
	Upsert(ctx context.Context, e searchindex.Entry) error
	Delete(ctx context.Context, id string) error
}

// DeadLetter records IDs whose index write failed.
type DeadLetter interface {
	Add(ctx context.Context, id string) error
	Members(ctx context.Context) ([]string, error)
	Remove(ctx context.Context, ids ...string) error
}

// Lookup loads properties by ID; missing IDs are simply absent.
type Lookup interface {
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Property, error)
}

// Source streams every property from the document store.
type Source interface {
	Each(ctx context.Context, fn func(*models.Property) error) error
}

// Syncer keeps search-index entries in line with property writes. Writes
// are best effort: a failure is logged, recorded in the dead-letter set when
// one is configured, and never returned to the caller.
type Syncer struct {
	index Index
	dead  DeadLetter
	log   *zap.Logger
}

// New returns a Syncer. dead may be nil.
func New(index Index, dead DeadLetter, logger *zap.Logger) *Syncer {
	return &Syncer{index: index, dead: dead, log: logger}
}

// EntryFromProperty projects p into its search-index entry.
func EntryFromProperty(p *models.Property) searchindex.Entry {
	amenities := p.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	return searchindex.Entry{
		ID:           p.ID.Hex(),
		Title:        p.Title,
		Description:  p.Description,
		Address:      p.Location.Address,
		City:         p.Location.City,
		Price:        p.Price,
		Location:     searchindex.GeoPoint{Lat: p.Location.Lat(), Lon: p.Location.Lng()},
		Amenities:    amenities,
		PropertyType: p.PropertyType,
		CreatedAt:    p.CreatedAt,
	}
}

// Upsert writes the entry for p.
func (s *Syncer) Upsert(ctx context.Context, p *models.Property) {
	if err := s.index.Upsert(ctx, EntryFromProperty(p)); err != nil {
		s.log.Error("search index upsert failed",
			zap.String("property_id", p.ID.Hex()),
			zap.Error(err))
		s.record(ctx, p.ID.Hex())
	}
}

// Delete removes the entry for id.
func (s *Syncer) Delete(ctx context.Context, id string) {
	if err := s.index.Delete(ctx, id); err != nil {
		s.log.Error("search index delete failed",
			zap.String("property_id", id),
			zap.Error(err))
		s.record(ctx, id)
	}
}

func (s *Syncer) record(ctx context.Context, id string) {
	if s.dead == nil {
		return
	}
	if err := s.dead.Add(ctx, id); err != nil {
		s.log.Warn("dead-letter record failed",
			zap.String("property_id", id),
			zap.Error(err))
	}
}

// ReindexResult summarizes a Reindex run.
type ReindexResult struct {
	Indexed int `json:"indexed"`
	Failed  int `json:"failed"`
	Removed int `json:"removed"`
	Drained int `json:"drained"`
}

// Reindex rewrites the entry of every stored property, then drains the
// dead-letter set: IDs that no longer exist in the store are deleted from
// the index, and IDs handled successfully leave the set.
func (s *Syncer) Reindex(ctx context.Context, src Source) (ReindexResult, error) {
	var res ReindexResult
	seen := map[string]bool{}

	err := src.Each(ctx, func(p *models.Property) error {
		id := p.ID.Hex()
		if err := s.index.Upsert(ctx, EntryFromProperty(p)); err != nil {
			if errors.Is(err, searchindex.ErrUnavailable) {
				return err
			}
			res.Failed++
			s.log.Warn("reindex entry failed", zap.String("property_id", id), zap.Error(err))
			return nil
		}
		seen[id] = true
		res.Indexed++
		return nil
	})
	if err != nil {
		return res, err
	}

	if s.dead == nil {
		return res, nil
	}
	dead, err := s.dead.Members(ctx)
	if err != nil {
		return res, err
	}
	var drained []string
	for _, id := range dead {
		if seen[id] {
			drained = append(drained, id)
			continue
		}
		if err := s.index.Delete(ctx, id); err != nil {
			s.log.Warn("dead-letter delete failed", zap.String("property_id", id), zap.Error(err))
			continue
		}
		res.Removed++
		drained = append(drained, id)
	}
	if err := s.dead.Remove(ctx, drained...); err != nil {
		return res, err
	}
	res.Drained = len(drained)

	s.log.Info("search index rebuilt",
		zap.Int("indexed", res.Indexed),
		zap.Int("failed", res.Failed),
		zap.Int("removed", res.Removed),
		zap.Int("drained", res.Drained))
	return res, nil
}

// RetryDead re-syncs only the IDs in the dead-letter set: stored properties
// are upserted, IDs missing from the store are deleted from the index, and
// malformed IDs are dropped. Handled IDs leave the set; the rest stay for
// the next attempt. It returns early with ErrUnavailable when the index is
// down.
func (s *Syncer) RetryDead(ctx context.Context, src Lookup) (ReindexResult, error) {
	var res ReindexResult
	if s.dead == nil {
		return res, nil
	}
	members, err := s.dead.Members(ctx)
	if err != nil || len(members) == 0 {
		return res, err
	}

	var drained []string
	oids := make([]primitive.ObjectID, 0, len(members))
	for _, id := range members {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			drained = append(drained, id)
			continue
		}
		oids = append(oids, oid)
	}

	props, err := src.FindByIDs(ctx, oids)
	if err != nil {
		return res, err
	}
	found := make(map[primitive.ObjectID]*models.Property, len(props))
	for i := range props {
		found[props[i].ID] = &props[i]
	}

	var runErr error
	for _, oid := range oids {
		id := oid.Hex()
		if p, ok := found[oid]; ok {
			err = s.index.Upsert(ctx, EntryFromProperty(p))
			if err == nil {
				res.Indexed++
			}
		} else {
			err = s.index.Delete(ctx, id)
			if err == nil {
				res.Removed++
			}
		}
		if err != nil {
			if errors.Is(err, searchindex.ErrUnavailable) {
				runErr = err
				break
			}
			res.Failed++
			s.log.Warn("dead-letter retry failed", zap.String("property_id", id), zap.Error(err))
			continue
		}
		drained = append(drained, id)
	}

	if err := s.dead.Remove(ctx, drained...); err != nil {
		return res, err
	}
	res.Drained = len(drained)
	return res, runErr
}
