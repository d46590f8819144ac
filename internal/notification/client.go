package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NotificationLevel represents the severity level of a notification
type NotificationLevel string

const (
	LevelInfo     NotificationLevel = "info"
	LevelWarning  NotificationLevel = "warning"
	LevelError    NotificationLevel = "error"
	LevelCritical NotificationLevel = "critical"
)

const (
	defaultSource    = "gearguard"
	userAgent        = "gearguard/1.0"
	maxMessageLength = 1000
	maxTechnician    = 100
)

// Health is the reachability of the webhook as seen by the last check.
type Health string

const (
	HealthHealthy     Health = "healthy"
	HealthUnreachable Health = "unreachable"
	HealthDisabled    Health = "disabled"
)

// Notifier is an interface for sending notifications with context support
type Notifier interface {
	SendNotification(notification Notification) error
	SendNotificationWithContext(ctx context.Context, notification Notification) error
	Health(ctx context.Context) Health
}

// NotificationConfig holds configuration for the notification client
type NotificationConfig struct {
	URL            string
	Timeout        time.Duration
	RetryAttempts  int
	RetryDelay     time.Duration
	MaxPayloadSize int64
}

// DefaultConfig returns a default configuration for the notification client
func DefaultConfig(url string) NotificationConfig {
	return NotificationConfig{
		URL:            url,
		Timeout:        10 * time.Second,
		RetryAttempts:  3,
		RetryDelay:     time.Second,
		MaxPayloadSize: 1024 * 1024, // 1MB
	}
}

// notificationClient delivers notifications to a webhook over HTTP
type notificationClient struct {
	config NotificationConfig
	client *http.Client
	logger *zap.Logger
}

// NewNotifier creates a new Notifier with default configuration
func NewNotifier(url string, logger *zap.Logger) Notifier {
	return NewNotifierWithConfig(DefaultConfig(url), logger)
}

// NewNotifierWithConfig creates a new Notifier with custom configuration.
// An empty URL yields a notifier that drops everything.
func NewNotifierWithConfig(config NotificationConfig, logger *zap.Logger) Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.URL == "" {
		return &noopNotifier{logger: logger}
	}

	return &notificationClient{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: logger.With(zap.String("component", "notifier")),
	}
}

// Notification represents the payload delivered to the webhook
type Notification struct {
	ID          string            `json:"id"`
	Level       NotificationLevel `json:"level"`
	Event       string            `json:"event,omitempty"`
	Message     string            `json:"message"`
	RequestID   int               `json:"requestId,omitempty"`
	EquipmentID int               `json:"equipmentId,omitempty"`
	Technician  string            `json:"technician,omitempty"`
	Timestamp   time.Time         `json:"timestamp,omitempty"`
	Source      string            `json:"source,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Validate checks if the notification is valid
func (n *Notification) Validate() error {
	if n.Level == "" {
		return fmt.Errorf("notification level is required")
	}
	if n.Message == "" {
		return fmt.Errorf("notification message is required")
	}
	if len(n.Message) > maxMessageLength {
		return fmt.Errorf("notification message too long (max %d characters)", maxMessageLength)
	}
	if len(n.Technician) > maxTechnician {
		return fmt.Errorf("technician too long (max %d characters)", maxTechnician)
	}

	switch n.Level {
	case LevelInfo, LevelWarning, LevelError, LevelCritical:
	default:
		return fmt.Errorf("invalid notification level: %s", n.Level)
	}

	return nil
}

// permanentError marks failures that a retry cannot fix.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

func permanent(err error) error { return &permanentError{err: err} }

// SendNotification sends a notification to the notification service
func (c *notificationClient) SendNotification(notification Notification) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.config.Timeout)
	defer cancel()
	return c.SendNotificationWithContext(ctx, notification)
}

// SendNotificationWithContext sends a notification, retrying transient failures with linear backoff
func (c *notificationClient) SendNotificationWithContext(ctx context.Context, notification Notification) error {
	if err := notification.Validate(); err != nil {
		return fmt.Errorf("invalid notification: %w", err)
	}

	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	if notification.Timestamp.IsZero() {
		notification.Timestamp = time.Now().UTC()
	}
	if notification.Source == "" {
		notification.Source = defaultSource
	}

	var lastErr error
	for attempt := 0; attempt <= c.config.RetryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.config.RetryDelay * time.Duration(attempt)):
			}
			c.logger.Debug("Retrying notification send",
				zap.String("notification_id", notification.ID),
				zap.Int("attempt", attempt+1),
				zap.Int("max_attempts", c.config.RetryAttempts+1))
		}

		err := c.sendNotificationAttempt(ctx, notification)
		if err == nil {
			return nil
		}
		lastErr = err
		c.logger.Warn("Notification send attempt failed",
			zap.String("notification_id", notification.ID),
			zap.Int("attempt", attempt+1),
			zap.Error(err))

		var perm *permanentError
		if errors.As(err, &perm) {
			return err
		}
	}

	return fmt.Errorf("failed to send notification after %d attempts: %w", c.config.RetryAttempts+1, lastErr)
}

// sendNotificationAttempt performs a single notification send attempt
func (c *notificationClient) sendNotificationAttempt(ctx context.Context, notification Notification) error {
	payload, err := json.Marshal(notification)
	if err != nil {
		return permanent(fmt.Errorf("failed to marshal notification: %w", err))
	}

	if int64(len(payload)) > c.config.MaxPayloadSize {
		return permanent(fmt.Errorf("notification payload too large: %d bytes (max %d)", len(payload), c.config.MaxPayloadSize))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.URL, bytes.NewReader(payload))
	if err != nil {
		return permanent(fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode >= 400 {
		statusErr := fmt.Errorf("notification service returned error status %d: %s", resp.StatusCode, string(body))
		// 4xx other than throttling won't succeed on retry
		if resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return permanent(statusErr)
		}
		return statusErr
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusNoContent {
		c.logger.Warn("Unexpected status code from notification service", zap.Int("status", resp.StatusCode))
	}

	return nil
}

// Health checks the webhook with a HEAD request. Any answer below 500 counts as reachable.
func (c *notificationClient) Health(ctx context.Context) Health {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.config.URL, nil)
	if err != nil {
		return HealthUnreachable
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("Notification service health check failed", zap.Error(err))
		return HealthUnreachable
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return HealthUnreachable
	}
	return HealthHealthy
}

// noopNotifier is used when no webhook is configured
type noopNotifier struct {
	logger *zap.Logger
}

func (n *noopNotifier) SendNotification(notification Notification) error {
	return n.SendNotificationWithContext(context.Background(), notification)
}

func (n *noopNotifier) SendNotificationWithContext(_ context.Context, notification Notification) error {
	if err := notification.Validate(); err != nil {
		return fmt.Errorf("invalid notification: %w", err)
	}
	n.logger.Debug("Notification delivery disabled, dropping",
		zap.String("level", string(notification.Level)),
		zap.String("event", notification.Event))
	return nil
}

func (n *noopNotifier) Health(context.Context) Health { return HealthDisabled }
