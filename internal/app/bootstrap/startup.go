// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"

	cmspagestore "github.com/dalemusser/stratacms/internal/app/store/cmspages"
	menutypestore "github.com/dalemusser/stratacms/internal/app/store/menutypes"
)

// Startup runs once after DB connections and schema/index setup are
// complete, but before the HTTP handler is built and requests are served.
//
// Returning a non-nil error will abort startup and prevent the server
// from starting. The context will be cancelled if the process is asked
// to shut down while Startup is running.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	// Log the content inventory so a fresh deployment is easy to verify.
	menuTypes := menutypestore.New(deps.MongoDatabase)
	menuTypeCount, err := menuTypes.Count(ctx)
	if err != nil {
		logger.Warn("failed to count menu types", zap.Error(err))
		return nil
	}

	pages := cmspagestore.New(deps.MongoDatabase)
	pageCount, err := pages.Count(ctx)
	if err != nil {
		logger.Warn("failed to count pages", zap.Error(err))
		return nil
	}

	logger.Info("content inventory",
		zap.Int64("menu_types", menuTypeCount),
		zap.Int64("pages", pageCount),
	)
	return nil
}
