package main

import (
	"context"
	"errors"
	"time"

	"github.com/devkarki/shopveda-backend/pkg/config"
	"github.com/devkarki/shopveda-backend/pkg/db/models"
	"github.com/devkarki/shopveda-backend/pkg/logger"
	"github.com/devkarki/shopveda-backend/pkg/metrics"
)

const jobName = "shipment_tracking"

type trackingService interface {
	ListTrackable(ctx context.Context, limit int) ([]models.Shipment, error)
	Track(ctx context.Context, awbCode string) (string, error)
}

type lockStore interface {
	AcquireLock(ctx context.Context, job, holder string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, job string) error
}

// poller refreshes tracking statuses for in-flight shipments. A Redis lock
// keeps concurrent instances from polling the carrier twice per cycle.
type poller struct {
	shipping trackingService
	locks    lockStore
	cfg      config.TrackingConfig
	holder   string
	metrics  *metrics.JobMetrics
	logger   *logger.Logger
}

func newPoller(shipping trackingService, locks lockStore, cfg config.TrackingConfig, holder string, jobMetrics *metrics.JobMetrics, logg *logger.Logger) (*poller, error) {
	if shipping == nil {
		return nil, errors.New("shipping service is required")
	}
	if locks == nil {
		return nil, errors.New("lock store is required")
	}
	return &poller{
		shipping: shipping,
		locks:    locks,
		cfg:      cfg,
		holder:   holder,
		metrics:  jobMetrics,
		logger:   logg,
	}, nil
}

func (p *poller) run(ctx context.Context) {
	ticker := time.NewTicker(p.cfg.PollInterval)
	defer ticker.Stop()

	p.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *poller) tick(ctx context.Context) {
	acquired, err := p.locks.AcquireLock(ctx, jobName, p.holder, p.cfg.LockTTL)
	if err != nil {
		p.warn(ctx, "failed to acquire tracking lock", err)
		return
	}
	if !acquired {
		return
	}
	defer func() {
		if err := p.locks.ReleaseLock(ctx, jobName); err != nil {
			p.warn(ctx, "failed to release tracking lock", err)
		}
	}()

	start := time.Now()
	updated, failed, err := p.pollBatch(ctx)
	if p.metrics != nil {
		p.metrics.ObserveDuration(jobName, time.Since(start))
		if err != nil || failed > 0 {
			p.metrics.IncFailure(jobName)
		} else {
			p.metrics.IncSuccess(jobName)
		}
	}

	if p.logger != nil {
		logCtx := p.logger.WithFields(ctx, map[string]any{
			"updated": updated,
			"failed":  failed,
		})
		if err != nil {
			p.logger.Error(logCtx, "tracking poll aborted", err)
			return
		}
		p.logger.Info(logCtx, "tracking poll complete")
	}
}

// pollBatch refreshes one batch of shipments. Per-shipment failures are
// counted and skipped so one dead AWB cannot stall the rest of the batch.
func (p *poller) pollBatch(ctx context.Context) (updated, failed int, err error) {
	shipments, err := p.shipping.ListTrackable(ctx, p.cfg.BatchSize)
	if err != nil {
		return 0, 0, err
	}

	for i := range shipments {
		if ctx.Err() != nil {
			return updated, failed, ctx.Err()
		}
		awb := shipments[i].AWBCode
		if awb == nil || *awb == "" {
			continue
		}
		if _, err := p.shipping.Track(ctx, *awb); err != nil {
			failed++
			p.warn(ctx, "failed to refresh tracking for "+*awb, err)
			continue
		}
		updated++
	}
	return updated, failed, nil
}

func (p *poller) warn(ctx context.Context, msg string, err error) {
	if p.logger == nil {
		return
	}
	p.logger.Warn(p.logger.WithField(ctx, "error", err.Error()), msg)
}
