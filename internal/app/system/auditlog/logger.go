// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strconv"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/dalemusser/stratacms/internal/app/store/audit"
	"github.com/dalemusser/stratacms/internal/app/system/auth"
)

// Config holds audit logging configuration.
type Config struct {
	// Content controls logging for content change events (page and menu
	// type CRUD, reordering).
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Content string
}

// Logger provides convenience methods for logging audit events.
// It logs to both MongoDB (via audit.Store) and structured logs (via zap).
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// getClientIP extracts the client IP from the request.
func getClientIP(r *http.Request) string {
	// Check X-Forwarded-For header first (for reverse proxies)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	// Check X-Real-IP header
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	// Fall back to RemoteAddr
	return r.RemoteAddr
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("event", event.Event),
		zap.String("actor", event.Actor),
		zap.String("ip", event.IP),
	}

	if event.TargetID != nil {
		fields = append(fields, zap.String("target_id", event.TargetID.Hex()))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	l.zapLog.Info("audit event", fields...)
}

// Log records an audit event based on configuration.
// If the logger is nil, this is a no-op (allows tests to use nil audit logger).
// Logging destination is controlled by config: "all", "db", "log", or "off".
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	setting := l.config.Content
	if setting == "" {
		setting = "all"
	}
	if setting == "off" {
		return
	}

	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}

	if setting == "all" || setting == "db" {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event", event.Event),
			)
		}
	}
}

// LogContentEvent records a content change performed through the admin API.
// The actor comes from the request context (auth.WithActor middleware).
func (l *Logger) LogContentEvent(r *http.Request, targetID *primitive.ObjectID, eventType string, details map[string]string) {
	if l == nil {
		return
	}
	l.Log(r.Context(), audit.Event{
		Event:     eventType,
		Actor:     auth.CurrentActor(r),
		TargetID:  targetID,
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		Details:   details,
	})
}

// PageCreated logs creation of a page.
func (l *Logger) PageCreated(r *http.Request, pageID primitive.ObjectID, slug string) {
	l.LogContentEvent(r, &pageID, audit.EventPageCreated, map[string]string{
		"slug": slug,
	})
}

// PageUpdated logs an update to a page.
func (l *Logger) PageUpdated(r *http.Request, pageID primitive.ObjectID, slug string) {
	l.LogContentEvent(r, &pageID, audit.EventPageUpdated, map[string]string{
		"slug": slug,
	})
}

// PageDeleted logs deletion of a page.
func (l *Logger) PageDeleted(r *http.Request, pageID primitive.ObjectID, slug string) {
	l.LogContentEvent(r, &pageID, audit.EventPageDeleted, map[string]string{
		"slug": slug,
	})
}

// PageToggled logs an enabled/disabled flip on a page.
func (l *Logger) PageToggled(r *http.Request, pageID primitive.ObjectID, enabled bool) {
	l.LogContentEvent(r, &pageID, audit.EventPageToggled, map[string]string{
		"enabled": strconv.FormatBool(enabled),
	})
}

// PagesReordered logs a bulk reorder of a menu's page tree.
func (l *Logger) PagesReordered(r *http.Request, menuTypeID primitive.ObjectID, applied, failed int) {
	l.LogContentEvent(r, &menuTypeID, audit.EventPagesReordered, map[string]string{
		"applied": strconv.Itoa(applied),
		"failed":  strconv.Itoa(failed),
	})
}

// MenuTypeCreated logs creation of a menu type.
func (l *Logger) MenuTypeCreated(r *http.Request, menuTypeID primitive.ObjectID, name string) {
	l.LogContentEvent(r, &menuTypeID, audit.EventMenuTypeCreated, map[string]string{
		"name": name,
	})
}

// MenuTypeUpdated logs a rename of a menu type.
func (l *Logger) MenuTypeUpdated(r *http.Request, menuTypeID primitive.ObjectID, name string) {
	l.LogContentEvent(r, &menuTypeID, audit.EventMenuTypeUpdated, map[string]string{
		"name": name,
	})
}

// MenuTypeDeleted logs deletion of a menu type.
func (l *Logger) MenuTypeDeleted(r *http.Request, menuTypeID primitive.ObjectID, name string) {
	l.LogContentEvent(r, &menuTypeID, audit.EventMenuTypeDeleted, map[string]string{
		"name": name,
	})
}
