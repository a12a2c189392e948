package health

import (
	"context"
	"errors"
	"testing"
)

func TestStatusWithoutChecks(t *testing.T) {
	got := NewService().Status(context.Background())
	if !got.OK || got.Checks != nil {
		t.Fatalf("expected bare ok report, got %+v", got)
	}
}

func TestStatusReportsFailingCheck(t *testing.T) {
	svc := NewService()
	svc.Register("postgres", func(ctx context.Context) error { return nil })
	svc.Register("redis", func(ctx context.Context) error { return errors.New("connection refused") })
	svc.Register("ignored", nil)

	got := svc.Status(context.Background())
	if got.OK {
		t.Fatalf("expected not ok")
	}
	if got.Checks["postgres"] != "ok" || got.Checks["redis"] != "connection refused" {
		t.Fatalf("unexpected checks %+v", got.Checks)
	}
	if _, ok := got.Checks["ignored"]; ok {
		t.Fatalf("nil check should not be registered")
	}
}
