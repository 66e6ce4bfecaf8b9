package userstore_test

import (
	"errors"
	"testing"
	"time"

	userstore "github.com/dalemusser/listinghub/internal/app/store/users"
	"github.com/dalemusser/listinghub/internal/app/system/auth"
	"github.com/dalemusser/listinghub/internal/app/system/indexes"
	"github.com/dalemusser/listinghub/internal/domain/models"
	"github.com/dalemusser/listinghub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func TestStore_Create_Normalizes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.User{
		Name:         "  Ada   Lovelace ",
		Email:        " Ada@Example.COM ",
		PasswordHash: "hash",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.Name != "Ada Lovelace" {
		t.Errorf("Name = %q, want collapsed", created.Name)
	}
	if created.Email != "ada@example.com" {
		t.Errorf("Email = %q, want lowercased", created.Email)
	}
	if created.Role != models.RoleUser {
		t.Errorf("Role = %q, want default user", created.Role)
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}

	got, err := store.GetByEmail(ctx, "ADA@example.com")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if got.ID != created.ID || got.PasswordHash != "hash" {
		t.Error("GetByEmail returned the wrong user")
	}
}

func TestStore_Create_BadRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.Create(ctx, models.User{Name: "X", Email: "x@example.com", Role: "owner"})
	if !errors.Is(err, models.ErrBadRole) {
		t.Errorf("expected ErrBadRole, got %v", err)
	}
}

func TestStore_Create_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}

	if _, err := store.Create(ctx, models.User{Name: "A", Email: "dup@example.com"}); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	_, err := store.Create(ctx, models.User{Name: "B", Email: "DUP@example.com"})
	if !errors.Is(err, userstore.ErrDuplicateEmail) {
		t.Errorf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestStore_List_NewestFirstWithoutHash(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	older := fx.CreateUser(ctx, "Older", "older@example.com", models.RoleUser)
	time.Sleep(5 * time.Millisecond)
	newer := fx.CreateAgent(ctx, "Newer", "newer@example.com")

	users, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	if users[0].ID != newer.ID || users[1].ID != older.ID {
		t.Error("expected newest user first")
	}
	for _, u := range users {
		if u.PasswordHash != "" {
			t.Errorf("user %s: password hash must not be loaded", u.Email)
		}
	}

	recent, err := store.Recent(ctx, 1)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(recent) != 1 || recent[0].ID != newer.ID {
		t.Error("Recent(1) should return the newest user")
	}
}

func TestStore_UpdateRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateUser(ctx, "U", "u@example.com", models.RoleUser)

	updated, err := store.UpdateRole(ctx, u.ID, models.RoleAgent)
	if err != nil {
		t.Fatalf("UpdateRole failed: %v", err)
	}
	if updated.Role != models.RoleAgent {
		t.Errorf("Role = %q, want agent", updated.Role)
	}
	if updated.PasswordHash != "" {
		t.Error("UpdateRole must not return the password hash")
	}

	if _, err := store.UpdateRole(ctx, u.ID, "superuser"); !errors.Is(err, models.ErrBadRole) {
		t.Errorf("expected ErrBadRole, got %v", err)
	}
	if _, err := store.UpdateRole(ctx, primitive.NewObjectID(), models.RoleUser); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}
}

func TestStore_DeleteAndCounts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateUser(ctx, "U", "u@example.com", models.RoleUser)
	fx.CreateAgent(ctx, "A1", "a1@example.com")
	fx.CreateAgent(ctx, "A2", "a2@example.com")

	if n, _ := store.Count(ctx); n != 3 {
		t.Errorf("Count = %d, want 3", n)
	}
	if n, _ := store.CountByRole(ctx, models.RoleAgent); n != 2 {
		t.Errorf("CountByRole(agent) = %d, want 2", n)
	}

	n, err := store.Delete(ctx, u.ID)
	if err != nil || n != 1 {
		t.Fatalf("Delete = %d, %v", n, err)
	}
	if n, _ := store.Delete(ctx, u.ID); n != 0 {
		t.Error("second Delete should remove nothing")
	}
}

func TestStore_Summaries(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := fx.CreateAgent(ctx, "Agent A", "a@example.com")
	missing := primitive.NewObjectID()

	got, err := store.Summaries(ctx, []primitive.ObjectID{a.ID, missing})
	if err != nil {
		t.Fatalf("Summaries failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(got))
	}
	if got[a.ID].Name != "Agent A" || got[a.ID].Email != "a@example.com" {
		t.Errorf("unexpected summary %+v", got[a.ID])
	}
}

func TestFetcher_FetchUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := fx.CreateAgent(ctx, "Agent A", "a@example.com")
	f := userstore.NewFetcher(db)

	su, err := f.FetchUser(ctx, a.ID.Hex())
	if err != nil {
		t.Fatalf("FetchUser failed: %v", err)
	}
	if su.ID != a.ID.Hex() || su.Role != models.RoleAgent || su.Email != "a@example.com" {
		t.Errorf("unexpected session user %+v", su)
	}

	if _, err := f.FetchUser(ctx, "not-hex"); !errors.Is(err, auth.ErrUserNotFound) {
		t.Errorf("malformed id: expected ErrUserNotFound, got %v", err)
	}
	if _, err := f.FetchUser(ctx, primitive.NewObjectID().Hex()); !errors.Is(err, auth.ErrUserNotFound) {
		t.Errorf("unknown id: expected ErrUserNotFound, got %v", err)
	}

	// Role stored as-is is read back as the typed role.
	if _, err := db.Collection("users").UpdateOne(ctx, bson.M{"_id": a.ID}, bson.M{"$set": bson.M{"role": "admin"}}); err != nil {
		t.Fatalf("update role: %v", err)
	}
	su, _ = f.FetchUser(ctx, a.ID.Hex())
	if su.Role != models.RoleAdmin {
		t.Errorf("Role = %q, want admin", su.Role)
	}
}
