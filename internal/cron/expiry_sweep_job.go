package cron

import (
	"context"
	"fmt"

	"github.com/angelmondragon/ticket-escrow-backend/internal/expiry"
	"github.com/angelmondragon/ticket-escrow-backend/pkg/logger"
)

type expirySweeper interface {
	SweepExpired(ctx context.Context) (expiry.SweepResult, error)
}

type ExpirySweepJobParams struct {
	Logger  *logger.Logger
	Sweeper expirySweeper
}

// NewExpirySweepJob closes listings whose deadlines passed without a verifier
// attestation, refunding their bidders.
func NewExpirySweepJob(params ExpirySweepJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Sweeper == nil {
		return nil, fmt.Errorf("expiry sweeper required")
	}
	return &expirySweepJob{logg: params.Logger, sweeper: params.Sweeper}, nil
}

type expirySweepJob struct {
	logg    *logger.Logger
	sweeper expirySweeper
}

func (j *expirySweepJob) Name() string { return "expiry-sweep" }

func (j *expirySweepJob) Run(ctx context.Context) error {
	result, err := j.sweeper.SweepExpired(ctx)
	if len(result.Closed) > 0 {
		logCtx := j.logg.WithField(ctx, "listing_ids", result.Closed)
		j.logg.Info(logCtx, "expired listings closed")
	}
	if err != nil {
		return fmt.Errorf("expiry sweep (%d failed): %w", len(result.Failed), err)
	}
	return nil
}
