package services

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/FreightDesk/freight-desk-backend/logger"
	"github.com/FreightDesk/freight-desk-backend/types"
)

// Pinger is the slice of pgxpool.Pool the health probe needs; pgxmock
// satisfies it too.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthService struct {
	db        Pinger
	redis     redis.UniversalClient
	version   string
	startedAt time.Time
	log       *zap.SugaredLogger
}

func NewHealthService(db Pinger, redisClient redis.UniversalClient, version string) *HealthService {
	return &HealthService{
		db:        db,
		redis:     redisClient,
		version:   version,
		startedAt: time.Now(),
		log:       logger.GetLogger(),
	}
}

// CheckHealth probes the dependencies. A database failure takes the service
// down; a Redis failure only degrades it, since events and rate limiting
// stall but the core intake API keeps working.
func (h *HealthService) CheckHealth(ctx context.Context) types.HealthCheck {
	components := make(map[string]types.ComponentHealth)
	overallStatus := types.HealthStatusUp

	dbStatus := h.checkDatabase(ctx)
	components["database"] = dbStatus
	if dbStatus.Status == types.HealthStatusDown {
		overallStatus = types.HealthStatusDown
	}

	redisStatus := h.checkRedis(ctx)
	components["redis"] = redisStatus
	if redisStatus.Status == types.HealthStatusDown && overallStatus == types.HealthStatusUp {
		overallStatus = types.HealthStatusDegraded
	}

	return types.HealthCheck{
		Status:     overallStatus,
		Version:    h.version,
		Components: components,
		Uptime:     time.Since(h.startedAt).Round(time.Second).String(),
	}
}

// IsReady reports whether the service can take traffic. Used by the
// readiness probe; liveness only needs the process up.
func (h *HealthService) IsReady(ctx context.Context) bool {
	return h.CheckHealth(ctx).Status != types.HealthStatusDown
}

func (h *HealthService) checkDatabase(ctx context.Context) types.ComponentHealth {
	if err := h.db.Ping(ctx); err != nil {
		h.log.Errorw("Database health check failed", "error", err)
		return types.ComponentHealth{
			Status:  types.HealthStatusDown,
			Details: "Database connection failed",
		}
	}
	return types.ComponentHealth{Status: types.HealthStatusUp}
}

func (h *HealthService) checkRedis(ctx context.Context) types.ComponentHealth {
	if err := h.redis.Ping(ctx).Err(); err != nil {
		h.log.Errorw("Redis health check failed", "error", err)
		return types.ComponentHealth{
			Status:  types.HealthStatusDown,
			Details: "Redis connection failed",
		}
	}
	return types.ComponentHealth{Status: types.HealthStatusUp}
}
