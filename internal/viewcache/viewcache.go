// Package viewcache invalidates cached UI views after ledger mutations.
//
// The web client caches rendered views for a patient's detail and financial
// pages and for the clinic-wide financial page. Every mutation that can change
// what those pages show must drop the matching keys.
package viewcache

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/odontocare/odontocare/internal/config"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module provides the view cache.
var Module = fx.Provide(New)

type Cache interface {
	// InvalidatePatient drops the patient detail and patient finance views.
	InvalidatePatient(ctx context.Context, clinicID, patientID snowflake.ID)
	// InvalidateClinicFinance drops the clinic-wide financial view.
	InvalidateClinicFinance(ctx context.Context, clinicID snowflake.ID)
}

func New(cfg config.Config, log *zap.Logger) Cache {
	if cfg.RedisAddr == "" {
		log.Info("view cache disabled, no redis address configured")
		return noop{}
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	return &redisCache{
		client: client,
		log:    log.Named("viewcache"),
	}
}

type redisCache struct {
	client *redis.Client
	log    *zap.Logger
}

func (c *redisCache) InvalidatePatient(ctx context.Context, clinicID, patientID snowflake.ID) {
	keys := []string{
		fmt.Sprintf("view:%s:patient:%s:detail", clinicID, patientID),
		fmt.Sprintf("view:%s:patient:%s:finance", clinicID, patientID),
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		// Invalidation failure must not fail the request.
		c.log.Warn("patient view invalidation failed",
			zap.String("clinic_id", clinicID.String()),
			zap.String("patient_id", patientID.String()),
			zap.Error(err),
		)
	}
}

func (c *redisCache) InvalidateClinicFinance(ctx context.Context, clinicID snowflake.ID) {
	key := fmt.Sprintf("view:%s:finance", clinicID)
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.log.Warn("clinic finance view invalidation failed",
			zap.String("clinic_id", clinicID.String()),
			zap.Error(err),
		)
	}
}

type noop struct{}

func (noop) InvalidatePatient(context.Context, snowflake.ID, snowflake.ID) {}

func (noop) InvalidateClinicFinance(context.Context, snowflake.ID) {}
