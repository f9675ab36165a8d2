package cron

import (
	"context"
	"testing"
)

type stubJob struct {
	name string
}

func (s *stubJob) Name() string              { return s.name }
func (s *stubJob) Run(context.Context) error { return nil }

func TestRegistryKeepsOrderAndCopies(t *testing.T) {
	sweep := &stubJob{name: "expiry-sweep"}
	retention := &stubJob{name: "outbox-retention"}
	registry := NewRegistry(sweep, nil)
	registry.Register(retention)

	jobs := registry.Jobs()
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0] != sweep || jobs[1] != retention {
		t.Fatalf("jobs returned out of order")
	}
	jobs[0] = nil
	if registry.Jobs()[0] == nil {
		t.Fatalf("internal slice leaked")
	}
}

func TestRegistryIgnoresDuplicateNames(t *testing.T) {
	registry := NewRegistry(&stubJob{name: "expiry-sweep"}, &stubJob{name: "expiry-sweep"})
	if got := len(registry.Jobs()); got != 1 {
		t.Fatalf("expected duplicate job to be dropped, got %d jobs", got)
	}
}
