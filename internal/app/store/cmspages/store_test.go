package cmspages

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/dalemusser/stratacms/internal/app/system/hierarchy"
	"github.com/dalemusser/stratacms/internal/domain/models"
	"github.com/dalemusser/stratacms/internal/testutil"
)

func createPage(t *testing.T, store *Store, input CreateInput) *models.Page {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if input.ContentKind == "" {
		input.ContentKind = models.ContentKindContent
	}
	if input.CreatedBy == "" {
		input.CreatedBy = "admin"
	}

	page, err := store.Create(ctx, input)
	if err != nil {
		t.Fatalf("Create(%s) error = %v", input.Title, err)
	}
	return page
}

func TestStore_Create_AppendsToOrder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	menuID := primitive.NewObjectID()

	first := createPage(t, store, CreateInput{Title: "Home", Slug: "home", MenuTypeID: menuID, Enabled: true})
	second := createPage(t, store, CreateInput{Title: "About", Slug: "about", MenuTypeID: menuID, Enabled: true})

	if first.Order != 1 {
		t.Errorf("first page Order = %d, want 1", first.Order)
	}
	if second.Order != 2 {
		t.Errorf("second page Order = %d, want 2", second.Order)
	}
	if first.TitleCI != "home" {
		t.Errorf("TitleCI = %q, want home", first.TitleCI)
	}
	if first.CreatedBy != "admin" || first.UpdatedBy != "admin" {
		t.Errorf("CreatedBy/UpdatedBy = %q/%q, want admin/admin", first.CreatedBy, first.UpdatedBy)
	}
}

func TestStore_Create_DuplicateSlug(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	menuID := primitive.NewObjectID()
	createPage(t, store, CreateInput{Title: "Home", Slug: "home", MenuTypeID: menuID})

	_, err := store.Create(ctx, CreateInput{
		Title:       "Home Again",
		Slug:        "home",
		MenuTypeID:  menuID,
		ContentKind: models.ContentKindContent,
		CreatedBy:   "admin",
	})
	if err == nil {
		t.Error("Create() with duplicate slug should fail on unique index")
	}
}

func TestStore_GetBySlug(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	menuID := primitive.NewObjectID()
	created := createPage(t, store, CreateInput{Title: "Contact Us", Slug: "contact-us", MenuTypeID: menuID, Enabled: true})

	page, err := store.GetBySlug(ctx, "contact-us")
	if err != nil {
		t.Fatalf("GetBySlug() error = %v", err)
	}
	if page.ID != created.ID {
		t.Errorf("ID = %v, want %v", page.ID, created.ID)
	}

	_, err = store.GetBySlug(ctx, "missing")
	if err != mongo.ErrNoDocuments {
		t.Errorf("GetBySlug() for missing slug error = %v, want %v", err, mongo.ErrNoDocuments)
	}
}

func TestStore_List_Pagination(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	menuID := primitive.NewObjectID()
	slugs := []string{"one", "two", "three", "four", "five"}
	for _, slug := range slugs {
		createPage(t, store, CreateInput{Title: slug, Slug: slug, MenuTypeID: menuID, Enabled: true})
	}

	pages, total, err := store.List(ctx, ListOptions{Page: 1, Limit: 2})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}
	if len(pages) != 2 {
		t.Fatalf("len(pages) = %d, want 2", len(pages))
	}
	// Sorted by order, so the first created come first
	if pages[0].Slug != "one" || pages[1].Slug != "two" {
		t.Errorf("page 1 = %v, %v; want one, two", pages[0].Slug, pages[1].Slug)
	}

	pages, _, err = store.List(ctx, ListOptions{Page: 3, Limit: 2})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(pages) != 1 || pages[0].Slug != "five" {
		t.Errorf("page 3 = %v, want [five]", pages)
	}
}

func TestStore_List_Filters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mainMenu := primitive.NewObjectID()
	footer := primitive.NewObjectID()

	home := createPage(t, store, CreateInput{Title: "Home Page", Slug: "home", MenuTypeID: mainMenu, Enabled: true})
	createPage(t, store, CreateInput{Title: "Privacy", Slug: "privacy", MenuTypeID: footer, Enabled: true})
	createPage(t, store, CreateInput{Title: "Draft", Slug: "draft", MenuTypeID: mainMenu, Enabled: false})
	createPage(t, store, CreateInput{Title: "Team", Slug: "team", MenuTypeID: mainMenu, ParentID: &home.ID, Enabled: true})

	// By menu type
	_, total, err := store.List(ctx, ListOptions{MenuTypeID: &mainMenu})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 3 {
		t.Errorf("menu filter total = %d, want 3", total)
	}

	// By enabled
	enabled := true
	_, total, err = store.List(ctx, ListOptions{MenuTypeID: &mainMenu, Enabled: &enabled})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 2 {
		t.Errorf("enabled filter total = %d, want 2", total)
	}

	// By parent
	pages, total, err := store.List(ctx, ListOptions{ParentID: &home.ID})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 1 || pages[0].Slug != "team" {
		t.Errorf("parent filter = %v (total %d), want [team]", pages, total)
	}

	// Search matches title case-insensitively
	_, total, err = store.List(ctx, ListOptions{Search: "HOME"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 1 {
		t.Errorf("search total = %d, want 1", total)
	}
}

func TestStore_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	menuID := primitive.NewObjectID()
	created := createPage(t, store, CreateInput{Title: "Old Title", Slug: "old-title", MenuTypeID: menuID, Enabled: true})

	newTitle := "New Title"
	newSlug := "new-title"
	err := store.Update(ctx, created.ID, UpdateInput{
		Title:     &newTitle,
		Slug:      &newSlug,
		UpdatedBy: "editor",
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	page, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if page.Title != "New Title" || page.Slug != "new-title" {
		t.Errorf("Title/Slug = %q/%q, want New Title/new-title", page.Title, page.Slug)
	}
	if page.TitleCI != "new title" {
		t.Errorf("TitleCI = %q, want new title", page.TitleCI)
	}
	if page.UpdatedBy != "editor" {
		t.Errorf("UpdatedBy = %q, want editor", page.UpdatedBy)
	}
	if page.CreatedBy != "admin" {
		t.Errorf("CreatedBy = %q, should be unchanged", page.CreatedBy)
	}

	if err := store.Update(ctx, primitive.NewObjectID(), UpdateInput{Title: &newTitle}); err != mongo.ErrNoDocuments {
		t.Errorf("Update() for nonexistent ID error = %v, want %v", err, mongo.ErrNoDocuments)
	}
}

func TestStore_Update_ClearParent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	menuID := primitive.NewObjectID()
	parent := createPage(t, store, CreateInput{Title: "Parent", Slug: "parent", MenuTypeID: menuID, Enabled: true})
	child := createPage(t, store, CreateInput{Title: "Child", Slug: "child", MenuTypeID: menuID, ParentID: &parent.ID, Enabled: true})

	var noParent *primitive.ObjectID
	if err := store.Update(ctx, child.ID, UpdateInput{ParentID: &noParent}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	page, err := store.GetByID(ctx, child.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if page.ParentID != nil {
		t.Errorf("ParentID = %v, want nil", page.ParentID)
	}
}

func TestStore_ToggleEnabled(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	menuID := primitive.NewObjectID()
	created := createPage(t, store, CreateInput{Title: "Toggle Me", Slug: "toggle-me", MenuTypeID: menuID, Enabled: true})

	page, err := store.ToggleEnabled(ctx, created.ID, "editor")
	if err != nil {
		t.Fatalf("ToggleEnabled() error = %v", err)
	}
	if page.Enabled {
		t.Error("Enabled = true after first toggle, want false")
	}

	page, err = store.ToggleEnabled(ctx, created.ID, "editor")
	if err != nil {
		t.Fatalf("ToggleEnabled() error = %v", err)
	}
	if !page.Enabled {
		t.Error("Enabled = false after second toggle, want true")
	}
}

func TestStore_SlugExists(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	menuID := primitive.NewObjectID()
	created := createPage(t, store, CreateInput{Title: "Home", Slug: "home", MenuTypeID: menuID, Enabled: true})

	exists, err := store.SlugExists(ctx, "home", nil)
	if err != nil {
		t.Fatalf("SlugExists() error = %v", err)
	}
	if !exists {
		t.Error("SlugExists(home) = false, want true")
	}

	exists, err = store.SlugExists(ctx, "home", &created.ID)
	if err != nil {
		t.Fatalf("SlugExists() error = %v", err)
	}
	if exists {
		t.Error("SlugExists(home, exclude self) = true, want false")
	}

	exists, err = store.SlugExists(ctx, "missing", nil)
	if err != nil {
		t.Fatalf("SlugExists() error = %v", err)
	}
	if exists {
		t.Error("SlugExists(missing) = true, want false")
	}
}

func TestStore_Dropdown_OnlyEnabled(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	menuID := primitive.NewObjectID()
	createPage(t, store, CreateInput{Title: "Zebra", Slug: "zebra", MenuTypeID: menuID, Enabled: true})
	createPage(t, store, CreateInput{Title: "Apple", Slug: "apple", MenuTypeID: menuID, Enabled: true})
	createPage(t, store, CreateInput{Title: "Hidden", Slug: "hidden", MenuTypeID: menuID, Enabled: false})

	items, err := store.Dropdown(ctx)
	if err != nil {
		t.Fatalf("Dropdown() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	// Sorted by folded title
	if items[0].Title != "Apple" || items[1].Title != "Zebra" {
		t.Errorf("items = %v, want [Apple Zebra]", items)
	}
}

func TestStore_ListParents_ScopedToMenu(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mainMenu := primitive.NewObjectID()
	footer := primitive.NewObjectID()
	createPage(t, store, CreateInput{Title: "Main Page", Slug: "main-page", MenuTypeID: mainMenu, Enabled: true})
	createPage(t, store, CreateInput{Title: "Footer Page", Slug: "footer-page", MenuTypeID: footer, Enabled: true})
	createPage(t, store, CreateInput{Title: "Disabled", Slug: "disabled", MenuTypeID: mainMenu, Enabled: false})

	items, err := store.ListParents(ctx, mainMenu)
	if err != nil {
		t.Fatalf("ListParents() error = %v", err)
	}
	if len(items) != 1 || items[0].Title != "Main Page" {
		t.Errorf("items = %v, want [Main Page]", items)
	}
}

func TestStore_Delete_LeavesChildren(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	menuID := primitive.NewObjectID()
	parent := createPage(t, store, CreateInput{Title: "Parent", Slug: "parent", MenuTypeID: menuID, Enabled: true})
	child := createPage(t, store, CreateInput{Title: "Child", Slug: "child", MenuTypeID: menuID, ParentID: &parent.ID, Enabled: true})

	if err := store.Delete(ctx, parent.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	// The child record survives with a dangling parent reference; tree
	// building promotes it to root.
	got, err := store.GetByID(ctx, child.ID)
	if err != nil {
		t.Fatalf("GetByID(child) error = %v", err)
	}
	if got.ParentID == nil || *got.ParentID != parent.ID {
		t.Errorf("child ParentID = %v, want %v", got.ParentID, parent.ID)
	}

	pages, err := store.ListByMenuType(ctx, menuID)
	if err != nil {
		t.Fatalf("ListByMenuType() error = %v", err)
	}
	tree := hierarchy.Build(pages, menuID)
	if len(tree) != 1 {
		t.Fatalf("len(tree) = %d, want 1", len(tree))
	}
	if tree[0].ID != child.ID {
		t.Errorf("root = %v, want child %v", tree[0].ID, child.ID)
	}
	if tree[0].Resolution != hierarchy.OrphanedToRoot {
		t.Errorf("Resolution = %v, want %v", tree[0].Resolution, hierarchy.OrphanedToRoot)
	}
}

func TestStore_MaxOrder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	max, err := store.MaxOrder(ctx)
	if err != nil {
		t.Fatalf("MaxOrder() error = %v", err)
	}
	if max != 0 {
		t.Errorf("MaxOrder() on empty collection = %d, want 0", max)
	}

	menuID := primitive.NewObjectID()
	createPage(t, store, CreateInput{Title: "One", Slug: "one", MenuTypeID: menuID, Enabled: true})
	createPage(t, store, CreateInput{Title: "Two", Slug: "two", MenuTypeID: menuID, Enabled: true})

	max, err = store.MaxOrder(ctx)
	if err != nil {
		t.Fatalf("MaxOrder() error = %v", err)
	}
	if max != 2 {
		t.Errorf("MaxOrder() = %d, want 2", max)
	}
}

func TestStore_ApplyReorder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	menuID := primitive.NewObjectID()
	home := createPage(t, store, CreateInput{Title: "Home", Slug: "home", MenuTypeID: menuID, Enabled: true})
	about := createPage(t, store, CreateInput{Title: "About", Slug: "about", MenuTypeID: menuID, Enabled: true})
	team := createPage(t, store, CreateInput{Title: "Team", Slug: "team", MenuTypeID: menuID, ParentID: &home.ID, Enabled: true})

	// Move About first, nest Team under About instead of Home.
	assignments := []hierarchy.Assignment{
		{PageID: about.ID, ParentID: nil, Order: 1},
		{PageID: home.ID, ParentID: nil, Order: 2},
		{PageID: team.ID, ParentID: &about.ID, Order: 1},
	}

	result, err := store.ApplyReorder(ctx, assignments, "editor", zap.NewNop())
	if err != nil {
		t.Fatalf("ApplyReorder() error = %v", err)
	}
	if result.Applied != 3 {
		t.Errorf("Applied = %d, want 3", result.Applied)
	}
	if len(result.Failed) != 0 {
		t.Errorf("Failed = %v, want empty", result.Failed)
	}

	got, err := store.GetByID(ctx, team.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.ParentID == nil || *got.ParentID != about.ID {
		t.Errorf("team ParentID = %v, want %v", got.ParentID, about.ID)
	}
	if got.Order != 1 {
		t.Errorf("team Order = %d, want 1", got.Order)
	}
	if got.UpdatedBy != "editor" {
		t.Errorf("team UpdatedBy = %q, want editor", got.UpdatedBy)
	}

	pages, err := store.ListByMenuType(ctx, menuID)
	if err != nil {
		t.Fatalf("ListByMenuType() error = %v", err)
	}
	tree := hierarchy.Build(pages, menuID)
	if len(tree) != 2 || tree[0].ID != about.ID || tree[1].ID != home.ID {
		t.Fatalf("unexpected root order after reorder")
	}
	if len(tree[0].Children) != 1 || tree[0].Children[0].ID != team.ID {
		t.Errorf("team should be nested under about")
	}
}

func TestStore_ApplyReorder_ReportsMissingPages(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	menuID := primitive.NewObjectID()
	home := createPage(t, store, CreateInput{Title: "Home", Slug: "home", MenuTypeID: menuID, Enabled: true})

	missing := primitive.NewObjectID()
	assignments := []hierarchy.Assignment{
		{PageID: home.ID, ParentID: nil, Order: 1},
		{PageID: missing, ParentID: nil, Order: 2},
	}

	result, err := store.ApplyReorder(ctx, assignments, "editor", zap.NewNop())
	if err != nil {
		t.Fatalf("ApplyReorder() error = %v", err)
	}
	if result.Applied != 1 {
		t.Errorf("Applied = %d, want 1", result.Applied)
	}
	if len(result.Failed) != 1 || result.Failed[0].PageID != missing {
		t.Errorf("Failed = %v, want one entry for %v", result.Failed, missing)
	}
}
