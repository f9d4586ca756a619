// internal/app/system/seeding/seeding.go
package seeding

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	menutypestore "github.com/dalemusser/stratacms/internal/app/store/menutypes"
	"github.com/dalemusser/stratacms/internal/domain/models"
)

// SeedAll seeds default data if not already present.
func SeedAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	if err := seedMenuTypes(ctx, db, logger); err != nil {
		return err
	}
	return nil
}

// seedMenuTypes creates the default menu types if they don't exist.
// Names are matched case-insensitively so a renamed "main menu" is not
// re-seeded alongside "Main Menu".
func seedMenuTypes(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	store := menutypestore.New(db)

	for _, name := range models.DefaultMenuTypeNames() {
		exists, err := store.NameExists(ctx, name, nil)
		if err != nil {
			logger.Error("failed to check if menu type exists",
				zap.String("name", name),
				zap.Error(err))
			return err
		}
		if !exists {
			if _, err := store.Create(ctx, name); err != nil {
				logger.Error("failed to seed menu type",
					zap.String("name", name),
					zap.Error(err))
				return err
			}
			logger.Info("seeded default menu type", zap.String("name", name))
		}
	}

	return nil
}
