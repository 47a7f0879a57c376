package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ServiceLogger provides structured logging for service layer operations
type ServiceLogger struct {
	logger *slog.Logger
	config LogConfig
}

type LogConfig struct {
	Service     string
	Component   string
	EnableDebug bool
}

func NewServiceLogger(logger *slog.Logger, config LogConfig) *ServiceLogger {
	return &ServiceLogger{
		logger: logger.With("service", config.Service, "component", config.Component),
		config: config,
	}
}

// ===== OPERATION LOGGING =====

// LogOperation logs one finished operation. The level follows the error
// class: expected client mistakes are warnings, unknown failures errors.
func (l *ServiceLogger) LogOperation(ctx context.Context, operation string, resourceID uint, resourceType string, duration time.Duration, err error) {
	level := slog.LevelInfo
	status := "success"

	if err != nil {
		level = slog.LevelError
		status = "error"

		switch {
		case IsValidation(err) || IsBusinessRule(err):
			level = slog.LevelWarn
			status = "validation_error"
		case IsUnauthorized(err):
			level = slog.LevelWarn
			status = "unauthorized"
		case IsNotFound(err):
			status = "not_found"
		case IsConflict(err):
			level = slog.LevelWarn
			status = "conflict"
		}
	}

	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.Uint64("resource_id", uint64(resourceID)),
		slog.String("resource_type", resourceType),
		slog.String("status", status),
		slog.Duration("duration", duration),
	}

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))

		var validationErrs ValidationErrors
		var businessErr *BusinessRuleError
		if errors.As(err, &validationErrs) {
			attrs = append(attrs, slog.Int("validation_errors_count", len(validationErrs)))
		} else if errors.As(err, &businessErr) {
			attrs = append(attrs, slog.String("business_rule", businessErr.Rule))
		}
	}

	if requestID, ok := ctx.Value(requestIDKey).(string); ok && requestID != "" {
		attrs = append(attrs, slog.String("request_id", requestID))
	}

	l.logger.LogAttrs(ctx, level, fmt.Sprintf("%s operation %s", operation, status), attrs...)
}

// ===== AUDIT LOGGING =====

type AuditEventType string

const (
	AuditEventCreate AuditEventType = "create"
	AuditEventUpdate AuditEventType = "update"
	AuditEventDelete AuditEventType = "delete"
)

type AuditEvent struct {
	Type         AuditEventType
	ResourceID   uint
	ResourceType string
	Action       string
	Metadata     map[string]any
}

func (l *ServiceLogger) LogAuditEvent(ctx context.Context, event AuditEvent) {
	attrs := []slog.Attr{
		slog.String("event_type", string(event.Type)),
		slog.Uint64("resource_id", uint64(event.ResourceID)),
		slog.String("resource_type", event.ResourceType),
		slog.String("action", event.Action),
	}
	for key, value := range event.Metadata {
		attrs = append(attrs, slog.Any("meta_"+key, value))
	}

	l.logger.LogAttrs(ctx, slog.LevelInfo, fmt.Sprintf("Audit: %s %s", event.Action, event.ResourceType), attrs...)
}

// ===== SECURITY LOGGING =====

// LogPINRejected records a failed PIN check without the attempted value.
func (l *ServiceLogger) LogPINRejected(ctx context.Context, operation string, examID uint) {
	l.logger.LogAttrs(ctx, slog.LevelWarn, "Security: PIN rejected",
		slog.String("security_event", "invalid_pin"),
		slog.String("operation", operation),
		slog.Uint64("exam_id", uint64(examID)),
	)
}

// ===== HELPERS =====

type contextKey string

const requestIDKey contextKey = "request_id"

// WithRequestID tags ctx so operation logs carry the HTTP request id.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// ContextualLogger wraps operations with automatic logging
type ContextualLogger struct {
	logger    *ServiceLogger
	operation string
	startTime time.Time
	ctx       context.Context
}

func (l *ServiceLogger) WithOperation(ctx context.Context, operation string) *ContextualLogger {
	return &ContextualLogger{
		logger:    l,
		operation: operation,
		startTime: time.Now(),
		ctx:       ctx,
	}
}

func (cl *ContextualLogger) LogResult(resourceID uint, resourceType string, err error) {
	cl.logger.LogOperation(cl.ctx, cl.operation, resourceID, resourceType, time.Since(cl.startTime), err)
}

func (cl *ContextualLogger) LogAudit(eventType AuditEventType, resourceID uint, resourceType string, metadata map[string]any) {
	cl.logger.LogAuditEvent(cl.ctx, AuditEvent{
		Type:         eventType,
		ResourceID:   resourceID,
		ResourceType: resourceType,
		Action:       cl.operation,
		Metadata:     metadata,
	})
}
