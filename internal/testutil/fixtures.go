package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/listinghub/internal/app/system/authutil"
	"github.com/dalemusser/listinghub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// FixturePassword is the password of every user created by Fixtures.
const FixturePassword = "fixture-pass-123"

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a user with FixturePassword.
func (f *Fixtures) CreateUser(ctx context.Context, name, email string, role models.Role) models.User {
	f.t.Helper()

	hash, err := authutil.HashPassword(FixturePassword)
	if err != nil {
		f.t.Fatalf("hash fixture password: %v", err)
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	user := models.User{
		ID:           primitive.NewObjectID(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateAgent creates a test agent.
func (f *Fixtures) CreateAgent(ctx context.Context, name, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, name, email, models.RoleAgent)
}

// CreateAdmin creates a test admin.
func (f *Fixtures) CreateAdmin(ctx context.Context, name, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, name, email, models.RoleAdmin)
}

// CreateProperty inserts a property owned by agentID. Each mutate func
// runs on the property before insert.
func (f *Fixtures) CreateProperty(ctx context.Context, agentID primitive.ObjectID, title string, mutate ...func(*models.Property)) models.Property {
	f.t.Helper()

	now := time.Now().UTC().Truncate(time.Millisecond)
	loc := models.NewPoint(40.7128, -74.0060)
	loc.Address = "1 Test Plaza"
	loc.City = "Testville"
	p := models.Property{
		ID:           primitive.NewObjectID(),
		Title:        title,
		Description:  "A test listing",
		Price:        100000,
		Location:     loc,
		PropertyType: models.TypeHouse,
		Amenities:    []string{},
		Images:       []models.Image{},
		Status:       models.StatusAvailable,
		AgentID:      agentID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for _, m := range mutate {
		m(&p)
	}
	if _, err := f.db.Collection("properties").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test property: %v", err)
	}
	return p
}
