package menutypes

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/dalemusser/stratacms/internal/testutil"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mt, err := store.Create(ctx, "Main Menu")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if mt.ID.IsZero() {
		t.Error("ID should not be zero")
	}
	if mt.Name != "Main Menu" {
		t.Errorf("Name = %v, want Main Menu", mt.Name)
	}
	if mt.NameCI != "main menu" {
		t.Errorf("NameCI = %v, want main menu", mt.NameCI)
	}
	if mt.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}

func TestStore_Create_DuplicateName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, "Footer"); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Same name with different case hits the unique name_ci index
	if _, err := store.Create(ctx, "FOOTER"); err == nil {
		t.Error("Create() with duplicate name should fail")
	}
}

func TestStore_GetByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, "Top Menu")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	mt, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if mt.Name != "Top Menu" {
		t.Errorf("Name = %v, want Top Menu", mt.Name)
	}

	_, err = store.GetByID(ctx, primitive.NewObjectID())
	if err != mongo.ErrNoDocuments {
		t.Errorf("GetByID() for nonexistent ID error = %v, want %v", err, mongo.ErrNoDocuments)
	}
}

func TestStore_List_SortedByName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, name := range []string{"Others", "Footer", "Top Menu"} {
		if _, err := store.Create(ctx, name); err != nil {
			t.Fatalf("Create(%s) error = %v", name, err)
		}
	}

	menuTypes, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	want := []string{"Footer", "Others", "Top Menu"}
	if len(menuTypes) != len(want) {
		t.Fatalf("List() returned %d menu types, want %d", len(menuTypes), len(want))
	}
	for i, name := range want {
		if menuTypes[i].Name != name {
			t.Errorf("menuTypes[%d].Name = %v, want %v", i, menuTypes[i].Name, name)
		}
	}
}

func TestStore_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, "Sidebar")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := store.Update(ctx, created.ID, "Side Menu"); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	mt, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if mt.Name != "Side Menu" {
		t.Errorf("Name = %v, want Side Menu", mt.Name)
	}
	if mt.NameCI != "side menu" {
		t.Errorf("NameCI = %v, want side menu", mt.NameCI)
	}

	if err := store.Update(ctx, primitive.NewObjectID(), "Nope"); err != mongo.ErrNoDocuments {
		t.Errorf("Update() for nonexistent ID error = %v, want %v", err, mongo.ErrNoDocuments)
	}
}

func TestStore_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, "Hidden")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := store.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := store.GetByID(ctx, created.ID); err != mongo.ErrNoDocuments {
		t.Errorf("GetByID() after delete error = %v, want %v", err, mongo.ErrNoDocuments)
	}

	if err := store.Delete(ctx, created.ID); err != mongo.ErrNoDocuments {
		t.Errorf("Delete() for nonexistent ID error = %v, want %v", err, mongo.ErrNoDocuments)
	}
}

func TestStore_NameExists(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, "Main Menu")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	exists, err := store.NameExists(ctx, "main menu", nil)
	if err != nil {
		t.Fatalf("NameExists() error = %v", err)
	}
	if !exists {
		t.Error("NameExists() = false for existing name (case-insensitive)")
	}

	exists, err = store.NameExists(ctx, "Nonexistent", nil)
	if err != nil {
		t.Fatalf("NameExists() error = %v", err)
	}
	if exists {
		t.Error("NameExists() = true for missing name")
	}

	// Excluding the record itself (rename check)
	exists, err = store.NameExists(ctx, "Main Menu", &created.ID)
	if err != nil {
		t.Fatalf("NameExists() error = %v", err)
	}
	if exists {
		t.Error("NameExists() = true when the only match is excluded")
	}
}
