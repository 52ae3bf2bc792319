package health

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestChecker_Liveness(t *testing.T) {
	c := New(0)
	status := c.CheckLiveness(context.Background())
	if status.Status != "ok" {
		t.Errorf("expected ok, got %s", status.Status)
	}
}

func TestChecker_ReadinessAllHealthy(t *testing.T) {
	c := New(0)
	c.RegisterCheck("store", func(ctx context.Context) error { return nil })
	c.RegisterCheck("provider", func(ctx context.Context) error { return nil })

	status := c.CheckReadiness(context.Background())
	if status.Status != "ready" {
		t.Errorf("expected ready, got %s", status.Status)
	}
	if len(status.Checks) != 2 {
		t.Errorf("expected 2 check results, got %d", len(status.Checks))
	}
}

func TestChecker_ReadinessDegraded(t *testing.T) {
	c := New(0)
	c.RegisterCheck("store", func(ctx context.Context) error { return nil })
	c.RegisterCheck("provider", func(ctx context.Context) error {
		return errors.New("remote unreachable")
	})

	status := c.CheckReadiness(context.Background())
	if status.Status != "degraded" {
		t.Errorf("expected degraded, got %s", status.Status)
	}
	if status.Checks["provider"].Message != "remote unreachable" {
		t.Errorf("expected failure message, got %q", status.Checks["provider"].Message)
	}
	if status.Checks["store"].Status != "ok" {
		t.Error("healthy check should stay ok")
	}
}

func TestChecker_ReadinessTimeout(t *testing.T) {
	c := New(50 * time.Millisecond)
	c.RegisterCheck("slow", func(ctx context.Context) error {
		select {
		case <-time.After(5 * time.Second):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	status := c.CheckReadiness(context.Background())
	if status.Status != "degraded" {
		t.Errorf("expected degraded on timeout, got %s", status.Status)
	}
}

func TestChecker_ReadinessNoChecks(t *testing.T) {
	c := New(0)
	status := c.CheckReadiness(context.Background())
	if status.Status != "ready" {
		t.Errorf("expected ready with no checks, got %s", status.Status)
	}
}
