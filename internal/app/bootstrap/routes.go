// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/middleware"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	auditapifeature "github.com/dalemusser/stratacms/internal/app/features/auditapi"
	healthfeature "github.com/dalemusser/stratacms/internal/app/features/health"
	menusapifeature "github.com/dalemusser/stratacms/internal/app/features/menusapi"
	pagesapifeature "github.com/dalemusser/stratacms/internal/app/features/pagesapi"
	"github.com/dalemusser/stratacms/internal/app/store/audit"
	cmspagestore "github.com/dalemusser/stratacms/internal/app/store/cmspages"
	menutypestore "github.com/dalemusser/stratacms/internal/app/store/menutypes"
	"github.com/dalemusser/stratacms/internal/app/system/auditlog"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed.
//
// The content API uses API key auth with permissive CORS; each feature
// router applies auth.APIKeyAuth and apicors.Middleware itself, so there
// is no session or CSRF layer here.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Audit store and logger for content change tracking
	auditStore := audit.New(deps.MongoDatabase)
	auditLogger := auditlog.New(auditStore, logger, auditlog.Config{
		Content: appCfg.AuditLogContent,
	})

	pages := cmspagestore.New(deps.MongoDatabase)
	menuTypes := menutypestore.New(deps.MongoDatabase)

	r := chi.NewRouter()

	// Request timeout middleware: prevents requests from hanging indefinitely.
	r.Use(chimw.Timeout(30 * time.Second))

	// CORS middleware: must be early in the chain to handle preflight requests.
	r.Use(middleware.CORSFromConfig(coreCfg))

	// Security headers middleware: adds X-Frame-Options, X-Content-Type-Options, etc.
	r.Use(middleware.SecurityHeadersFromConfig(coreCfg))

	// Menu type management API
	menusHandler := menusapifeature.NewHandler(menuTypes, pages, auditLogger, logger)
	r.Mount("/api/menu-types", menusapifeature.Routes(menusHandler, appCfg.APIKey, logger))

	// Page management API
	pagesHandler := pagesapifeature.NewHandler(pages, menuTypes, deps.FileStorage, auditLogger, logger)
	r.Mount("/api/cms-pages", pagesapifeature.Routes(pagesHandler, appCfg.APIKey, logger))

	// Audit trail API (read-only)
	auditHandler := auditapifeature.NewHandler(auditStore, logger)
	r.Mount("/api/audit-logs", auditapifeature.Routes(auditHandler, appCfg.APIKey, logger))

	// Health check endpoints for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	healthfeature.MountRootEndpoints(r, healthHandler)

	// Uploaded files (local storage only)
	// When using local storage, serve files from the configured path.
	// Attachments are normally streamed through /api/cms-pages/file/{id};
	// this gives direct access to stored files for debugging and backups.
	if appCfg.StorageType == "local" || appCfg.StorageType == "" {
		r.Handle(appCfg.StorageLocalURL+"/*", fileserver.Handler(appCfg.StorageLocalURL, appCfg.StorageLocalPath))
	}

	return r, nil
}
