package propertystore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/listinghub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrInvalid wraps every validation failure from Validate.
var ErrInvalid = errors.New("invalid property")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("properties")}
}

var newestFirst = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}

// Validate checks the invariants every stored property must hold.
func Validate(p *models.Property) error {
	switch {
	case p.Title == "":
		return fmt.Errorf("%w: title is required", ErrInvalid)
	case p.Price < 0:
		return fmt.Errorf("%w: price must not be negative", ErrInvalid)
	case !p.Location.ValidCoordinates():
		return fmt.Errorf("%w: location needs a valid latitude and longitude", ErrInvalid)
	case !models.IsValidPropertyType(p.PropertyType):
		return fmt.Errorf("%w: unknown property type %q", ErrInvalid, p.PropertyType)
	case !models.IsValidPropertyStatus(p.Status):
		return fmt.Errorf("%w: unknown status %q", ErrInvalid, p.Status)
	case p.Bedrooms < 0 || p.Bathrooms < 0 || p.Area < 0:
		return fmt.Errorf("%w: bedrooms, bathrooms and area must not be negative", ErrInvalid)
	}
	return nil
}

// Create assigns ID and timestamps, defaults status to available, validates
// and inserts p.
func (s *Store) Create(ctx context.Context, p models.Property) (models.Property, error) {
	p.ID = primitive.NewObjectID()
	if p.Status == "" {
		p.Status = models.StatusAvailable
	}
	p.Location.Type = "Point"
	if p.Amenities == nil {
		p.Amenities = []string{}
	}
	if p.Images == nil {
		p.Images = []models.Image{}
	}
	if err := Validate(&p); err != nil {
		return models.Property{}, err
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	p.CreatedAt = now
	p.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Property{}, err
	}
	return p, nil
}

// GetByID loads a property. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Property, error) {
	var p models.Property
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns every property, newest first.
func (s *Store) List(ctx context.Context) ([]models.Property, error) {
	return s.find(ctx, bson.M{}, options.Find().SetSort(newestFirst))
}

// ListByAgent returns the properties owned by agentID, newest first.
func (s *Store) ListByAgent(ctx context.Context, agentID primitive.ObjectID) ([]models.Property, error) {
	return s.find(ctx, bson.M{"agent_id": agentID}, options.Find().SetSort(newestFirst))
}

// Recent returns the n newest properties.
func (s *Store) Recent(ctx context.Context, n int64) ([]models.Property, error) {
	return s.find(ctx, bson.M{}, options.Find().SetSort(newestFirst).SetLimit(n))
}

// FindByIDs returns the properties whose IDs are in ids. The result is in
// whatever order the database yields, not the order of ids.
func (s *Store) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Property, error) {
	if len(ids) == 0 {
		return []models.Property{}, nil
	}
	return s.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find())
}

func (s *Store) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Property, error) {
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Property{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Each streams every property to fn, stopping at the first error.
func (s *Store) Each(ctx context.Context, fn func(*models.Property) error) error {
	cur, err := s.c.Find(ctx, bson.M{})
	if err != nil {
		return err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var p models.Property
		if err := cur.Decode(&p); err != nil {
			return err
		}
		if err := fn(&p); err != nil {
			return err
		}
	}
	return cur.Err()
}

// Update overwrites the mutable fields of p and returns the stored result.
// There is no version check: the last writer wins.
func (s *Store) Update(ctx context.Context, p *models.Property) (*models.Property, error) {
	p.Location.Type = "Point"
	if p.Amenities == nil {
		p.Amenities = []string{}
	}
	if err := Validate(p); err != nil {
		return nil, err
	}
	set := bson.M{
		"title":         p.Title,
		"description":   p.Description,
		"price":         p.Price,
		"location":      p.Location,
		"property_type": p.PropertyType,
		"bedrooms":      p.Bedrooms,
		"bathrooms":     p.Bathrooms,
		"area":          p.Area,
		"amenities":     p.Amenities,
		"floor_plan":    p.FloorPlan,
		"virtual_tour":  p.VirtualTour,
		"status":        p.Status,
		"updated_at":    time.Now().UTC(),
	}
	return s.findOneAndUpdate(ctx, p.ID, bson.M{"$set": set})
}

// PushImages appends imgs to the property's image list.
func (s *Store) PushImages(ctx context.Context, id primitive.ObjectID, imgs []models.Image) (*models.Property, error) {
	return s.findOneAndUpdate(ctx, id, bson.M{
		"$push": bson.M{"images": bson.M{"$each": imgs}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
}

// PullImage removes the image with assetID from the list.
func (s *Store) PullImage(ctx context.Context, id primitive.ObjectID, assetID string) (*models.Property, error) {
	return s.findOneAndUpdate(ctx, id, bson.M{
		"$pull": bson.M{"images": bson.M{"asset_id": assetID}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
}

func (s *Store) findOneAndUpdate(ctx context.Context, id primitive.ObjectID, update bson.M) (*models.Property, error) {
	var out models.Property
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a property and returns the number deleted.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByAgent removes every property owned by agentID.
func (s *Store) DeleteByAgent(ctx context.Context, agentID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"agent_id": agentID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Count returns the number of properties.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}

// GroupCount is one bucket of CountByField.
type GroupCount struct {
	Key   string `bson:"_id" json:"_id"`
	Count int64  `bson:"count" json:"count"`
}

// CountByField groups properties by field and counts each group, largest first.
func (s *Store) CountByField(ctx context.Context, field string) ([]GroupCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$" + field, "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []GroupCount{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
