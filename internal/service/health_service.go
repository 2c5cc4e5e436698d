package service

import (
	"context"
	"database/sql"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Health status constants
const (
	StatusHealthy      = "healthy"
	StatusDegraded     = "degraded"
	StatusUnhealthy    = "unhealthy"
	StatusConnected    = "connected"
	StatusDisconnected = "disconnected"
	StatusDisabled     = "disabled"
)

// HealthStatus represents the overall health status of the application
type HealthStatus struct {
	Status    string            `json:"status"`
	Services  map[string]string `json:"services"`
	Timestamp time.Time         `json:"timestamp"`
}

// HealthChecker handles health check operations
type HealthChecker struct {
	db       *sql.DB
	queueURL string
}

// NewHealthService creates a new HealthChecker. queueURL may be empty when
// the activity-feed broker is not configured.
func NewHealthService(db *sql.DB, queueURL string) *HealthChecker {
	return &HealthChecker{db: db, queueURL: queueURL}
}

func (h *HealthChecker) checkDatabase(ctx context.Context) string {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		return StatusDisconnected
	}
	return StatusConnected
}

func (h *HealthChecker) checkQueue() string {
	if h.queueURL == "" {
		return StatusDisabled
	}

	conn, err := amqp.Dial(h.queueURL)
	if err != nil {
		return StatusDisconnected
	}
	defer conn.Close()

	return StatusConnected
}

// CheckHealth performs health checks on all dependencies. The database is
// load-bearing; the broker only degrades the status.
func (h *HealthChecker) CheckHealth(ctx context.Context) *HealthStatus {
	services := map[string]string{
		"database": h.checkDatabase(ctx),
		"queue":    h.checkQueue(),
	}

	status := StatusHealthy
	if services["queue"] == StatusDisconnected {
		status = StatusDegraded
	}
	if services["database"] == StatusDisconnected {
		status = StatusUnhealthy
	}

	return &HealthStatus{
		Status:    status,
		Services:  services,
		Timestamp: time.Now().UTC(),
	}
}
