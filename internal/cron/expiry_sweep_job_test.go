package cron

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/angelmondragon/ticket-escrow-backend/internal/expiry"
	"github.com/angelmondragon/ticket-escrow-backend/pkg/logger"
)

type fakeSweeper struct {
	result expiry.SweepResult
	err    error
	calls  int
}

func (f *fakeSweeper) SweepExpired(context.Context) (expiry.SweepResult, error) {
	f.calls++
	return f.result, f.err
}

func TestExpirySweepJobRunsSweep(t *testing.T) {
	sweeper := &fakeSweeper{result: expiry.SweepResult{Closed: []uint64{3, 9}, Skipped: 4}}
	job, err := NewExpirySweepJob(ExpirySweepJobParams{Logger: logger.Nop(), Sweeper: sweeper})
	if err != nil {
		t.Fatalf("NewExpirySweepJob: %v", err)
	}
	if job.Name() != "expiry-sweep" {
		t.Fatalf("unexpected job name %q", job.Name())
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sweeper.calls != 1 {
		t.Fatalf("expected one sweep, got %d", sweeper.calls)
	}
}

func TestExpirySweepJobReportsFailures(t *testing.T) {
	sweeper := &fakeSweeper{
		result: expiry.SweepResult{Closed: []uint64{1}, Failed: []uint64{2}},
		err:    errors.New("listing 2: ledger unavailable"),
	}
	job, err := NewExpirySweepJob(ExpirySweepJobParams{Logger: logger.Nop(), Sweeper: sweeper})
	if err != nil {
		t.Fatalf("NewExpirySweepJob: %v", err)
	}
	err = job.Run(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "1 failed") {
		t.Fatalf("expected failure count in error, got %v", err)
	}
}

func TestNewExpirySweepJobRequiresSweeper(t *testing.T) {
	if _, err := NewExpirySweepJob(ExpirySweepJobParams{Logger: logger.Nop()}); err == nil {
		t.Fatal("expected error")
	}
}
