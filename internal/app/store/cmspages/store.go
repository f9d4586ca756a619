// Package cmspages provides storage for CMS page records.
package cmspages

import (
	"context"
	"regexp"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/dalemusser/stratacms/internal/app/system/hierarchy"
	"github.com/dalemusser/stratacms/internal/app/system/txn"
	"github.com/dalemusser/stratacms/internal/domain/models"
)

// Store provides access to the cms_pages collection.
type Store struct {
	c  *mongo.Collection
	db *mongo.Database
}

// New creates a new page store.
func New(db *mongo.Database) *Store {
	return &Store{
		c:  db.Collection("cms_pages"),
		db: db,
	}
}

// CreateInput contains the input for creating a page.
type CreateInput struct {
	Title           string
	Slug            string
	MenuTypeID      primitive.ObjectID
	ParentID        *primitive.ObjectID
	ContentKind     models.ContentKind
	Body            string
	ExternalURL     string
	File            *models.FileRef
	OpenInNewWindow bool
	Enabled         bool
	SEO             models.SEO
	CreatedBy       string
}

// Create creates a new page. The page is appended to the end of the global
// ordering (highest order + 1) so new pages show up last until reordered.
func (s *Store) Create(ctx context.Context, input CreateInput) (*models.Page, error) {
	maxOrder, err := s.MaxOrder(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	page := models.Page{
		ID:              primitive.NewObjectID(),
		Title:           input.Title,
		TitleCI:         text.Fold(input.Title),
		Slug:            input.Slug,
		MenuTypeID:      input.MenuTypeID,
		ParentID:        input.ParentID,
		Order:           maxOrder + 1,
		ContentKind:     input.ContentKind,
		Body:            input.Body,
		ExternalURL:     input.ExternalURL,
		File:            input.File,
		OpenInNewWindow: input.OpenInNewWindow,
		Enabled:         input.Enabled,
		SEO:             input.SEO,
		CreatedBy:       input.CreatedBy,
		UpdatedBy:       input.CreatedBy,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if _, err := s.c.InsertOne(ctx, page); err != nil {
		return nil, err
	}

	return &page, nil
}

// GetByID retrieves a page by ID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Page, error) {
	var page models.Page
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetBySlug retrieves a page by its slug.
func (s *Store) GetBySlug(ctx context.Context, slug string) (*models.Page, error) {
	var page models.Page
	if err := s.c.FindOne(ctx, bson.M{"slug": slug}).Decode(&page); err != nil {
		return nil, err
	}
	return &page, nil
}

// ListOptions contains filters for listing pages.
type ListOptions struct {
	Search     string              // match against title or slug
	MenuTypeID *primitive.ObjectID // filter by menu
	ParentID   *primitive.ObjectID // filter by parent page
	RootOnly   bool                // only pages without a parent
	Enabled    *bool               // filter by enabled state
	Page       int64               // 1-based page number
	Limit      int64               // page size
}

// DefaultPageLimit is the page size used when the caller does not specify one.
const DefaultPageLimit = 10

// MaxPageLimit caps the page size so a single request cannot dump the
// whole collection.
const MaxPageLimit = 100

func (o ListOptions) filter() bson.M {
	filter := bson.M{}

	if o.Search != "" {
		quoted := regexp.QuoteMeta(text.Fold(o.Search))
		filter["$or"] = []bson.M{
			{"title_ci": bson.M{"$regex": quoted}},
			{"slug": bson.M{"$regex": quoted}},
		}
	}
	if o.MenuTypeID != nil {
		filter["menu_type_id"] = *o.MenuTypeID
	}
	if o.ParentID != nil {
		filter["parent_id"] = *o.ParentID
	} else if o.RootOnly {
		filter["parent_id"] = nil
	}
	if o.Enabled != nil {
		filter["is_enabled"] = *o.Enabled
	}

	return filter
}

// List returns pages matching the given filters plus the total match count
// for pagination.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]models.Page, int64, error) {
	filter := opts.filter()

	total, err := s.c.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	page := opts.Page
	if page <= 0 {
		page = 1
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "order_id", Value: 1}, {Key: "created_at", Value: 1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cursor, err := s.c.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var pages []models.Page
	if err := cursor.All(ctx, &pages); err != nil {
		return nil, 0, err
	}

	return pages, total, nil
}

// ListByMenuType returns all pages belonging to a menu, in display order.
// This is the input to tree building, so no pagination.
func (s *Store) ListByMenuType(ctx context.Context, menuTypeID primitive.ObjectID) ([]models.Page, error) {
	findOpts := options.Find().
		SetSort(bson.D{{Key: "order_id", Value: 1}, {Key: "created_at", Value: 1}})

	cursor, err := s.c.Find(ctx, bson.M{"menu_type_id": menuTypeID}, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var pages []models.Page
	if err := cursor.All(ctx, &pages); err != nil {
		return nil, err
	}

	return pages, nil
}

// DropdownItem is a minimal page projection for select lists.
type DropdownItem struct {
	ID    primitive.ObjectID `bson:"_id" json:"id"`
	Title string             `bson:"title" json:"title"`
}

// Dropdown returns all enabled pages as id/title pairs sorted by title.
func (s *Store) Dropdown(ctx context.Context) ([]DropdownItem, error) {
	findOpts := options.Find().
		SetSort(bson.D{{Key: "title_ci", Value: 1}}).
		SetProjection(bson.M{"_id": 1, "title": 1})

	cursor, err := s.c.Find(ctx, bson.M{"is_enabled": true}, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []DropdownItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}

	return items, nil
}

// ListParents returns enabled pages in a menu that can serve as parents,
// as id/title pairs sorted by title.
func (s *Store) ListParents(ctx context.Context, menuTypeID primitive.ObjectID) ([]DropdownItem, error) {
	findOpts := options.Find().
		SetSort(bson.D{{Key: "title_ci", Value: 1}}).
		SetProjection(bson.M{"_id": 1, "title": 1})

	filter := bson.M{
		"menu_type_id": menuTypeID,
		"is_enabled":   true,
	}

	cursor, err := s.c.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []DropdownItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}

	return items, nil
}

// UpdateInput contains the input for updating a page. Nil fields are left
// unchanged.
type UpdateInput struct {
	Title           *string
	Slug            *string
	MenuTypeID      *primitive.ObjectID
	ParentID        **primitive.ObjectID // outer nil = unchanged, inner nil = clear parent
	ContentKind     *models.ContentKind
	Body            *string
	ExternalURL     *string
	File            *models.FileRef
	ClearFile       bool
	OpenInNewWindow *bool
	Enabled         *bool
	SEO             *models.SEO
	UpdatedBy       string
}

// Update updates a page.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, input UpdateInput) error {
	set := bson.M{"updated_at": time.Now()}
	unset := bson.M{}

	if input.Title != nil {
		set["title"] = *input.Title
		set["title_ci"] = text.Fold(*input.Title)
	}
	if input.Slug != nil {
		set["slug"] = *input.Slug
	}
	if input.MenuTypeID != nil {
		set["menu_type_id"] = *input.MenuTypeID
	}
	if input.ParentID != nil {
		if *input.ParentID != nil {
			set["parent_id"] = **input.ParentID
		} else {
			unset["parent_id"] = ""
		}
	}
	if input.ContentKind != nil {
		set["content_kind"] = *input.ContentKind
	}
	if input.Body != nil {
		set["body"] = *input.Body
	}
	if input.ExternalURL != nil {
		set["external_url"] = *input.ExternalURL
	}
	if input.File != nil {
		set["file"] = *input.File
	} else if input.ClearFile {
		unset["file"] = ""
	}
	if input.OpenInNewWindow != nil {
		set["open_in_new_window"] = *input.OpenInNewWindow
	}
	if input.Enabled != nil {
		set["is_enabled"] = *input.Enabled
	}
	if input.SEO != nil {
		set["seo"] = *input.SEO
	}
	if input.UpdatedBy != "" {
		set["updated_by"] = input.UpdatedBy
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	result, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete deletes a page. Children of the deleted page keep their parent_id;
// tree building promotes them to root when their parent is missing.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ToggleEnabled flips a page's enabled flag and returns the updated page.
func (s *Store) ToggleEnabled(ctx context.Context, id primitive.ObjectID, updatedBy string) (*models.Page, error) {
	page, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	set := bson.M{
		"is_enabled": !page.Enabled,
		"updated_at": time.Now(),
	}
	if updatedBy != "" {
		set["updated_by"] = updatedBy
	}

	if _, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set}); err != nil {
		return nil, err
	}

	return s.GetByID(ctx, id)
}

// SlugExists checks if a page with the given slug exists. Pass excludeID to
// exclude a specific page (useful for updates).
func (s *Store) SlugExists(ctx context.Context, slug string, excludeID *primitive.ObjectID) (bool, error) {
	filter := bson.M{"slug": slug}

	if excludeID != nil {
		filter["_id"] = bson.M{"$ne": *excludeID}
	}

	count, err := s.c.CountDocuments(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// Count returns the total number of pages.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}

// CountByMenuType returns the number of pages in a menu.
func (s *Store) CountByMenuType(ctx context.Context, menuTypeID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"menu_type_id": menuTypeID})
}

// HasChildren reports whether any page lists the given page as its parent.
func (s *Store) HasChildren(ctx context.Context, id primitive.ObjectID) (bool, error) {
	count, err := s.c.CountDocuments(ctx, bson.M{"parent_id": id})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// MaxOrder returns the highest order value across all pages, or 0 when the
// collection is empty.
func (s *Store) MaxOrder(ctx context.Context) (int, error) {
	findOpts := options.FindOne().
		SetSort(bson.D{{Key: "order_id", Value: -1}}).
		SetProjection(bson.M{"order_id": 1})

	var doc struct {
		Order int `bson:"order_id"`
	}
	err := s.c.FindOne(ctx, bson.M{}, findOpts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return doc.Order, nil
}

// ReorderFailure records one assignment that could not be applied.
type ReorderFailure struct {
	PageID primitive.ObjectID `json:"pageId"`
	Reason string             `json:"reason"`
}

// ReorderResult summarizes a bulk reorder.
type ReorderResult struct {
	Applied int              `json:"applied"`
	Failed  []ReorderFailure `json:"failed,omitempty"`
}

// ApplyReorder persists a set of parent/order assignments produced by
// flattening a reordered tree. The updates run inside a transaction when the
// deployment supports one; on standalone MongoDB they are applied
// individually and any per-page failures are reported in the result.
func (s *Store) ApplyReorder(ctx context.Context, assignments []hierarchy.Assignment, updatedBy string, logger *zap.Logger) (*ReorderResult, error) {
	result := &ReorderResult{}
	now := time.Now()

	err := txn.Run(ctx, s.db, logger, func(ctx context.Context) error {
		// The closure may run more than once (transaction retry or the
		// standalone fallback); start each attempt from a clean slate.
		result.Applied = 0
		result.Failed = nil

		for _, a := range assignments {
			set := bson.M{
				"order_id":   a.Order,
				"updated_at": now,
			}
			if updatedBy != "" {
				set["updated_by"] = updatedBy
			}

			update := bson.M{"$set": set}
			if a.ParentID != nil {
				set["parent_id"] = *a.ParentID
			} else {
				update["$unset"] = bson.M{"parent_id": ""}
			}

			res, err := s.c.UpdateOne(ctx, bson.M{"_id": a.PageID}, update)
			if err != nil {
				result.Failed = append(result.Failed, ReorderFailure{
					PageID: a.PageID,
					Reason: err.Error(),
				})
				continue
			}
			if res.MatchedCount == 0 {
				result.Failed = append(result.Failed, ReorderFailure{
					PageID: a.PageID,
					Reason: "page not found",
				})
				continue
			}
			result.Applied++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
