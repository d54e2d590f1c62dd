package security

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EventType represents the type of security event
type EventType string

const (
	EventSignInFailed       EventType = "sign_in_failed"
	EventSignInBlocked      EventType = "sign_in_blocked"
	EventSignInSuccess      EventType = "sign_in_success"
	EventRateLimitTriggered EventType = "rate_limit_triggered"
	EventTokenRejected      EventType = "token_rejected"
	EventBlockCreated       EventType = "block_created"
	EventUploadRejected     EventType = "upload_rejected"
)

// eventLevels derives the level from the event type, never from the caller.
var eventLevels = map[EventType]zapcore.Level{
	EventSignInSuccess:      zapcore.InfoLevel,
	EventSignInFailed:       zapcore.WarnLevel,
	EventRateLimitTriggered: zapcore.WarnLevel,
	EventTokenRejected:      zapcore.WarnLevel,
	EventSignInBlocked:      zapcore.ErrorLevel,
	EventBlockCreated:       zapcore.ErrorLevel,
	EventUploadRejected:     zapcore.ErrorLevel,
}

// SecurityEvent represents a security-related event to be logged
type SecurityEvent struct {
	Event     EventType
	Wallet    string // logged shortened
	IP        string
	UserAgent string
	RequestID string
	Details   map[string]interface{}
}

// SecurityLogger writes security events as structured zap entries.
type SecurityLogger struct {
	zapLogger   *zap.Logger
	serviceName string
	environment string
}

var (
	defaultMu     sync.RWMutex
	defaultLogger = NewSecurityLogger(zap.NewNop(), "chamba-onchain", "test")
)

func NewSecurityLogger(z *zap.Logger, serviceName, environment string) *SecurityLogger {
	return &SecurityLogger{zapLogger: z, serviceName: serviceName, environment: environment}
}

// InitSecurityLogger installs a production zap logger on stdout as the default.
func InitSecurityLogger(serviceName, environment string) *SecurityLogger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	z, err := config.Build(zap.AddCaller())
	if err != nil {
		z, _ = zap.NewProduction()
	}

	sl := NewSecurityLogger(z, serviceName, environment)
	defaultMu.Lock()
	defaultLogger = sl
	defaultMu.Unlock()
	return sl
}

// DefaultLogger returns the installed logger; it discards until InitSecurityLogger runs.
func DefaultLogger() *SecurityLogger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// Log logs a security event
func (sl *SecurityLogger) Log(_ context.Context, event SecurityEvent) {
	level, ok := eventLevels[event.Event]
	if !ok {
		level = zapcore.WarnLevel
	}

	fields := []zap.Field{
		zap.String("service", sl.serviceName),
		zap.String("env", sl.environment),
		zap.String("event", string(event.Event)),
		zap.Time("at", time.Now().UTC()),
	}
	if event.Wallet != "" {
		fields = append(fields, zap.String("wallet", ShortAddress(event.Wallet)))
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
	}
	if event.UserAgent != "" {
		fields = append(fields, zap.String("user_agent", event.UserAgent))
	}
	if event.RequestID != "" {
		fields = append(fields, zap.String("request_id", event.RequestID))
	}
	if len(event.Details) > 0 {
		fields = append(fields, zap.Any("details", event.Details))
	}

	sl.zapLogger.Log(level, string(event.Event), fields...)
}

func (sl *SecurityLogger) LogSignInFailed(ctx context.Context, wallet, ip, reason string) {
	sl.Log(ctx, SecurityEvent{
		Event:   EventSignInFailed,
		Wallet:  wallet,
		IP:      ip,
		Details: map[string]interface{}{"reason": reason},
	})
}

func (sl *SecurityLogger) LogSignInBlocked(ctx context.Context, wallet, ip string) {
	sl.Log(ctx, SecurityEvent{
		Event:   EventSignInBlocked,
		Wallet:  wallet,
		IP:      ip,
		Details: map[string]interface{}{"reason": "too_many_failed_attempts"},
	})
}

func (sl *SecurityLogger) LogRateLimitTriggered(ctx context.Context, ip, userAgent, requestID, endpoint string) {
	sl.Log(ctx, SecurityEvent{
		Event:     EventRateLimitTriggered,
		IP:        ip,
		UserAgent: userAgent,
		RequestID: requestID,
		Details:   map[string]interface{}{"endpoint": endpoint},
	})
}

func (sl *SecurityLogger) LogTokenRejected(ctx context.Context, ip, requestID, reason string) {
	sl.Log(ctx, SecurityEvent{
		Event:     EventTokenRejected,
		IP:        ip,
		RequestID: requestID,
		Details:   map[string]interface{}{"reason": reason},
	})
}

func (sl *SecurityLogger) LogBlockCreated(ctx context.Context, wallet, ip string, duration time.Duration) {
	sl.Log(ctx, SecurityEvent{
		Event:   EventBlockCreated,
		Wallet:  wallet,
		IP:      ip,
		Details: map[string]interface{}{"duration_minutes": int(duration.Minutes())},
	})
}

func (sl *SecurityLogger) LogUploadRejected(ctx context.Context, wallet, filename, threat string) {
	sl.Log(ctx, SecurityEvent{
		Event:   EventUploadRejected,
		Wallet:  wallet,
		Details: map[string]interface{}{"filename": filename, "threat": threat},
	})
}

// Sync flushes any buffered log entries
func (sl *SecurityLogger) Sync() error {
	return sl.zapLogger.Sync()
}

// ShortAddress keeps the first 6 and last 4 characters ("0x7099…79C8").
func ShortAddress(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}
