package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MenuType is a named bucket ("Top Menu", "Footer", ...) that scopes a
// page tree. Names are unique across the collection.
type MenuType struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	NameCI    string             `bson:"name_ci" json:"-"` // Case-insensitive for sorting/uniqueness
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
}

// MaxMenuTypeNameLen bounds the menu type display name.
const MaxMenuTypeNameLen = 50

// DefaultMenuTypeNames are seeded on first startup so a fresh install has
// the standard site menus available.
func DefaultMenuTypeNames() []string {
	return []string{"Top Menu", "Main Menu", "Footer", "Others", "Hidden"}
}
