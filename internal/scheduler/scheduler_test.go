package scheduler

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"SignalSentinel/internal/model"
	"SignalSentinel/internal/scanner"
)

type fakeRunner struct {
	scanned [][]string
	trigger model.TriggerType
	scanErr error
	checked string
	last    *model.ScanSummary
}

func (f *fakeRunner) Scan(_ context.Context, trigger model.TriggerType, symbols []string) (*model.ScanSummary, error) {
	if f.scanErr != nil {
		return nil, f.scanErr
	}
	f.trigger = trigger
	f.scanned = append(f.scanned, symbols)
	f.last = &model.ScanSummary{Trigger: trigger, Total: len(symbols), Evaluated: len(symbols)}
	return f.last, nil
}

func (f *fakeRunner) Check(_ context.Context, symbol string) (string, error) {
	f.checked = symbol
	if symbol == "NOPE" {
		return "", errors.New("no data")
	}
	return "report for " + symbol, nil
}

func (f *fakeRunner) LastSummary() *model.ScanSummary { return f.last }

func newTestScheduler(r *fakeRunner) *Scheduler {
	return NewScheduler(context.Background(), r, func() ([]string, error) {
		return []string{"INFY", "TCS"}, nil
	}, time.UTC)
}

func TestHandleCommand_Scan(t *testing.T) {
	r := &fakeRunner{}
	s := newTestScheduler(r)

	if reply := s.HandleCommand(context.Background(), "/scan"); reply != "" {
		t.Errorf("a successful scan should not reply, got %q", reply)
	}
	if len(r.scanned) != 1 || strings.Join(r.scanned[0], ",") != "INFY,TCS" || r.trigger != model.TriggerManual {
		t.Errorf("unexpected scan %v %s", r.scanned, r.trigger)
	}

	r.scanErr = scanner.ErrScanInProgress
	if reply := s.HandleCommand(context.Background(), "/scan@SentinelBot"); !strings.Contains(reply, "already running") {
		t.Errorf("unexpected reply %q", reply)
	}
}

func TestHandleCommand_Check(t *testing.T) {
	r := &fakeRunner{}
	s := newTestScheduler(r)
	ctx := context.Background()

	if reply := s.HandleCommand(ctx, "/check infy"); reply != "report for INFY" {
		t.Errorf("unexpected reply %q", reply)
	}
	if reply := s.HandleCommand(ctx, "/check"); !strings.HasPrefix(reply, "Usage") {
		t.Errorf("expected usage, got %q", reply)
	}
	if reply := s.HandleCommand(ctx, "/check nope"); !strings.Contains(reply, "no data") {
		t.Errorf("expected the error in the reply, got %q", reply)
	}
}

func TestHandleCommand_StatusAndHelp(t *testing.T) {
	r := &fakeRunner{}
	s := newTestScheduler(r)
	if err := s.Register("0 30 16 * * 1-5"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	s.Start()
	defer s.Stop()

	status := s.HandleCommand(context.Background(), "/status")
	if !strings.Contains(status, "No scan has run yet.") || !strings.Contains(status, "Next scan:") {
		t.Errorf("unexpected status %q", status)
	}

	s.RunScanNow(model.TriggerStartup)
	if status := s.HandleCommand(context.Background(), "/status"); !strings.Contains(status, "Scan complete") {
		t.Errorf("expected the last summary, got %q", status)
	}

	if help := s.HandleCommand(context.Background(), "hello"); !strings.Contains(help, "/check SYMBOL") {
		t.Errorf("expected help text, got %q", help)
	}
}

func TestRegister_InvalidCron(t *testing.T) {
	s := newTestScheduler(&fakeRunner{})
	if err := s.Register("not a cron"); err == nil {
		t.Error("expected an error for an invalid expression")
	}
}

func TestRunScanNow_UniverseError(t *testing.T) {
	s := NewScheduler(context.Background(), &fakeRunner{}, func() ([]string, error) {
		return nil, errors.New("no symbols")
	}, nil)
	if _, err := s.RunScanNow(model.TriggerManual); err == nil || !strings.Contains(err.Error(), "load universe") {
		t.Errorf("unexpected error %v", err)
	}
}
