package propertystore_test

import (
	"errors"
	"testing"
	"time"

	propertystore "github.com/dalemusser/listinghub/internal/app/store/properties"
	"github.com/dalemusser/listinghub/internal/domain/models"
	"github.com/dalemusser/listinghub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func newListing(agentID primitive.ObjectID) models.Property {
	loc := models.NewPoint(34.05, -118.25)
	loc.Address = "200 Main St"
	loc.City = "Los Angeles"
	return models.Property{
		Title:        "Downtown condo",
		Description:  "Views",
		Price:        650000,
		Location:     loc,
		PropertyType: models.TypeCondo,
		Bedrooms:     2,
		Bathrooms:    2,
		Amenities:    []string{"gym", "pool"},
		AgentID:      agentID,
	}
}

func TestStore_Create_EchoesFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := propertystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	agent := primitive.NewObjectID()
	created, err := store.Create(ctx, newListing(agent))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.Status != models.StatusAvailable {
		t.Errorf("Status = %q, want default available", created.Status)
	}

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Price != 650000 || got.PropertyType != models.TypeCondo {
		t.Errorf("price/type not echoed: %+v", got)
	}
	if got.Location.Lat() != 34.05 || got.Location.Lng() != -118.25 || got.Location.Type != "Point" {
		t.Errorf("location not echoed: %+v", got.Location)
	}
	if got.AgentID != agent {
		t.Error("agent not echoed")
	}
	if got.Images == nil || len(got.Images) != 0 {
		t.Errorf("expected empty image list, got %v", got.Images)
	}
}

func TestValidate(t *testing.T) {
	base := newListing(primitive.NewObjectID())
	base.Status = models.StatusAvailable

	tests := []struct {
		name   string
		mutate func(*models.Property)
		valid  bool
	}{
		{"ok", func(p *models.Property) {}, true},
		{"zero price", func(p *models.Property) { p.Price = 0 }, true},
		{"negative price", func(p *models.Property) { p.Price = -1 }, false},
		{"missing title", func(p *models.Property) { p.Title = "" }, false},
		{"bad latitude", func(p *models.Property) { p.Location = models.NewPoint(91, 0) }, false},
		{"bad longitude", func(p *models.Property) { p.Location = models.NewPoint(0, -181) }, false},
		{"no coordinates", func(p *models.Property) { p.Location.Coordinates = nil }, false},
		{"bad type", func(p *models.Property) { p.PropertyType = "castle" }, false},
		{"bad status", func(p *models.Property) { p.Status = "rented" }, false},
		{"negative bedrooms", func(p *models.Property) { p.Bedrooms = -1 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base
			tt.mutate(&p)
			err := propertystore.Validate(&p)
			if tt.valid && err != nil {
				t.Errorf("expected valid, got %v", err)
			}
			if !tt.valid && !errors.Is(err, propertystore.ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestStore_ListAndRecent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := propertystore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	agent := primitive.NewObjectID()
	first := fx.CreateProperty(ctx, agent, "first")
	time.Sleep(5 * time.Millisecond)
	second := fx.CreateProperty(ctx, agent, "second")
	time.Sleep(5 * time.Millisecond)
	other := fx.CreateProperty(ctx, primitive.NewObjectID(), "other")

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 3 || all[0].ID != other.ID || all[2].ID != first.ID {
		t.Errorf("expected newest first, got %d items", len(all))
	}

	mine, err := store.ListByAgent(ctx, agent)
	if err != nil {
		t.Fatalf("ListByAgent failed: %v", err)
	}
	if len(mine) != 2 || mine[0].ID != second.ID {
		t.Error("ListByAgent returned wrong properties")
	}

	recent, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(recent) != 2 || recent[0].ID != other.ID {
		t.Error("Recent(2) returned wrong properties")
	}
}

func TestStore_FindByIDs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := propertystore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	agent := primitive.NewObjectID()
	a := fx.CreateProperty(ctx, agent, "a")
	b := fx.CreateProperty(ctx, agent, "b")
	fx.CreateProperty(ctx, agent, "c")

	got, err := store.FindByIDs(ctx, []primitive.ObjectID{b.ID, a.ID, primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("FindByIDs failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 properties, got %d", len(got))
	}
	ids := map[primitive.ObjectID]bool{got[0].ID: true, got[1].ID: true}
	if !ids[a.ID] || !ids[b.ID] {
		t.Error("FindByIDs returned the wrong set")
	}

	empty, err := store.FindByIDs(ctx, nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("FindByIDs(nil) = %v, %v", empty, err)
	}
}

func TestStore_Update_LastWriterWins(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := propertystore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fx.CreateProperty(ctx, primitive.NewObjectID(), "original")

	w1 := p
	w1.Title = "writer one"
	w2 := p
	w2.Title = "writer two"
	w2.Price = 1

	if _, err := store.Update(ctx, &w1); err != nil {
		t.Fatalf("Update 1: %v", err)
	}
	updated, err := store.Update(ctx, &w2)
	if err != nil {
		t.Fatalf("Update 2: %v", err)
	}
	if updated.Title != "writer two" || updated.Price != 1 {
		t.Errorf("expected last write to win, got %+v", updated)
	}
	if !updated.CreatedAt.Equal(p.CreatedAt) {
		t.Error("Update must not touch created_at")
	}

	bad := p
	bad.Price = -5
	if _, err := store.Update(ctx, &bad); !errors.Is(err, propertystore.ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}

	ghost := p
	ghost.ID = primitive.NewObjectID()
	if _, err := store.Update(ctx, &ghost); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}
}

func TestStore_Images(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := propertystore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fx.CreateProperty(ctx, primitive.NewObjectID(), "with images")

	updated, err := store.PushImages(ctx, p.ID, []models.Image{
		{URL: "https://cdn/1.jpg", AssetID: "1.jpg"},
		{URL: "https://cdn/2.jpg", AssetID: "2.jpg"},
	})
	if err != nil {
		t.Fatalf("PushImages failed: %v", err)
	}
	if len(updated.Images) != 2 || updated.Images[0].AssetID != "1.jpg" {
		t.Fatalf("unexpected images %+v", updated.Images)
	}

	updated, err = store.PushImages(ctx, p.ID, []models.Image{{URL: "https://cdn/3.jpg", AssetID: "3.jpg"}})
	if err != nil {
		t.Fatalf("PushImages failed: %v", err)
	}
	if len(updated.Images) != 3 || updated.Images[2].AssetID != "3.jpg" {
		t.Error("expected append to keep order")
	}

	updated, err = store.PullImage(ctx, p.ID, "2.jpg")
	if err != nil {
		t.Fatalf("PullImage failed: %v", err)
	}
	if len(updated.Images) != 2 || updated.Images[0].AssetID != "1.jpg" || updated.Images[1].AssetID != "3.jpg" {
		t.Errorf("unexpected images after pull %+v", updated.Images)
	}
}

func TestStore_DeleteAndByAgent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := propertystore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	agent := primitive.NewObjectID()
	p := fx.CreateProperty(ctx, agent, "one")
	fx.CreateProperty(ctx, agent, "two")
	keep := fx.CreateProperty(ctx, primitive.NewObjectID(), "keep")

	if n, err := store.Delete(ctx, p.ID); err != nil || n != 1 {
		t.Fatalf("Delete = %d, %v", n, err)
	}
	if _, err := store.GetByID(ctx, p.ID); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("expected ErrNoDocuments after delete, got %v", err)
	}

	n, err := store.DeleteByAgent(ctx, agent)
	if err != nil || n != 1 {
		t.Fatalf("DeleteByAgent = %d, %v", n, err)
	}
	if c, _ := store.Count(ctx); c != 1 {
		t.Errorf("Count = %d, want 1", c)
	}
	if _, err := store.GetByID(ctx, keep.ID); err != nil {
		t.Error("other agent's property must survive")
	}
}

func TestStore_CountByField(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := propertystore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	agent := primitive.NewObjectID()
	fx.CreateProperty(ctx, agent, "h1")
	fx.CreateProperty(ctx, agent, "h2")
	fx.CreateProperty(ctx, agent, "c1", func(p *models.Property) {
		p.PropertyType = models.TypeCondo
		p.Status = models.StatusSold
	})

	byType, err := store.CountByField(ctx, "property_type")
	if err != nil {
		t.Fatalf("CountByField failed: %v", err)
	}
	if len(byType) != 2 || byType[0].Key != "house" || byType[0].Count != 2 || byType[1].Count != 1 {
		t.Errorf("unexpected by-type counts %+v", byType)
	}

	byStatus, err := store.CountByField(ctx, "status")
	if err != nil {
		t.Fatalf("CountByField failed: %v", err)
	}
	if len(byStatus) != 2 {
		t.Errorf("expected 2 status buckets, got %+v", byStatus)
	}
}

func TestStore_Each(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := propertystore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	agent := primitive.NewObjectID()
	fx.CreateProperty(ctx, agent, "a")
	fx.CreateProperty(ctx, agent, "b")

	seen := 0
	if err := store.Each(ctx, func(*models.Property) error { seen++; return nil }); err != nil {
		t.Fatalf("Each failed: %v", err)
	}
	if seen != 2 {
		t.Errorf("Each visited %d, want 2", seen)
	}

	stop := errors.New("stop")
	err := store.Each(ctx, func(*models.Property) error { return stop })
	if !errors.Is(err, stop) {
		t.Errorf("expected callback error to propagate, got %v", err)
	}
}
