package logger

import (
	"context"
	"log/slog"
	"time"
)

// AuditEvent represents a security audit event
type AuditEvent struct {
	EventType     string
	UserID        string
	Username      string
	IPAddress     string
	UserAgent     string
	Success       bool
	FailureReason string
}

// AuditLogger writes security-relevant events with a fixed "audit" message so
// they can be filtered out of the request log stream.
type AuditLogger struct {
	logger *slog.Logger
	now    func() time.Time
}

func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return &AuditLogger{
		logger: logger,
		now:    time.Now,
	}
}

// LogAuthAttempt logs a login, registration or logout attempt. Failures are
// logged at warn level.
func (al *AuditLogger) LogAuthAttempt(ctx context.Context, event AuditEvent) {
	attrs := []slog.Attr{
		slog.String("audit_type", "auth"),
		slog.String("event_type", event.EventType),
		slog.Bool("success", event.Success),
		slog.String("timestamp", al.now().UTC().Format(time.RFC3339)),
	}

	if event.UserID != "" {
		attrs = append(attrs, slog.String("user_id", event.UserID))
	}
	if event.Username != "" {
		attrs = append(attrs, slog.String("username", MaskIdentifier(event.Username)))
	}
	if event.IPAddress != "" {
		attrs = append(attrs, slog.String("ip_address", event.IPAddress))
	}
	if event.UserAgent != "" {
		attrs = append(attrs, slog.String("user_agent", event.UserAgent))
	}
	if event.FailureReason != "" {
		attrs = append(attrs, slog.String("failure_reason", event.FailureReason))
	}

	level := slog.LevelInfo
	if !event.Success {
		level = slog.LevelWarn
	}
	al.logger.LogAttrs(ctx, level, "audit", attrs...)
}

// LogRecordAction logs a change to a customer, supplier, detail or exclusion.
func (al *AuditLogger) LogRecordAction(ctx context.Context, action, recordType, recordID, userID string) {
	al.logger.LogAttrs(ctx, slog.LevelInfo, "audit",
		slog.String("audit_type", "record"),
		slog.String("event_type", action),
		slog.String("record_type", recordType),
		slog.String("record_id", recordID),
		slog.String("user_id", userID),
		slog.String("timestamp", al.now().UTC().Format(time.RFC3339)),
	)
}
