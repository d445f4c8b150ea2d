package scheduler

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"SignalSentinel/internal/model"
	"SignalSentinel/internal/notifier"
	"SignalSentinel/internal/scanner"
)

// Runner performs scans and on-demand checks.
type Runner interface {
	Scan(ctx context.Context, trigger model.TriggerType, symbols []string) (*model.ScanSummary, error)
	Check(ctx context.Context, symbol string) (string, error)
	LastSummary() *model.ScanSummary
}

// UniverseFunc returns the symbols to scan. It is called on every run so
// universe files can change without a restart.
type UniverseFunc func() ([]string, error)

// Scheduler manages the cron task and chat commands.
type Scheduler struct {
	Cron     *cron.Cron
	Runner   Runner
	Universe UniverseFunc
	Ctx      context.Context

	scanEntry cron.EntryID
}

// NewScheduler creates a new Scheduler. A nil loc means the local time zone.
func NewScheduler(ctx context.Context, runner Runner, universe UniverseFunc, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
		Runner:   runner,
		Universe: universe,
		Ctx:      ctx,
	}
}

// Register adds the daily scan task.
func (s *Scheduler) Register(scanCron string) error {
	id, err := s.Cron.AddFunc(scanCron, func() {
		if _, err := s.RunScanNow(model.TriggerScheduled); err != nil {
			log.Error().Err(err).Msg("scheduled scan")
		}
	})
	if err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	s.scanEntry = id
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Time("next", s.NextRun()).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running scan to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

// NextRun is the time of the next scheduled scan, or zero if none is registered.
func (s *Scheduler) NextRun() time.Time {
	if s.scanEntry == 0 {
		return time.Time{}
	}
	return s.Cron.Entry(s.scanEntry).Next
}

// RunScanNow loads the universe and scans it immediately.
func (s *Scheduler) RunScanNow(trigger model.TriggerType) (*model.ScanSummary, error) {
	symbols, err := s.Universe()
	if err != nil {
		return nil, fmt.Errorf("load universe: %w", err)
	}
	return s.Runner.Scan(s.Ctx, trigger, symbols)
}

const helpText = "Available commands:\n" +
	"• /scan - scan the universe now\n" +
	"• /check SYMBOL - evaluate one instrument\n" +
	"• /status - last scan summary"

// HandleCommand processes a chat command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	// "/check@MyBot INFY" addresses the bot in a group chat
	name, _, _ := strings.Cut(strings.ToLower(fields[0]), "@")

	switch name {
	case "/scan":
		if _, err := s.RunScanNow(model.TriggerManual); err != nil {
			if errors.Is(err, scanner.ErrScanInProgress) {
				return "⏳ A scan is already running."
			}
			return fmt.Sprintf("❌ Scan failed: %s", html.EscapeString(err.Error()))
		}
		// the scanner already sent the alerts and summary
		return ""
	case "/check":
		if len(fields) < 2 {
			return "Usage: /check SYMBOL"
		}
		symbol := strings.ToUpper(fields[1])
		reply, err := s.Runner.Check(ctx, symbol)
		if err != nil {
			return fmt.Sprintf("❌ %s: %s", html.EscapeString(symbol), html.EscapeString(err.Error()))
		}
		return reply
	case "/status":
		var b strings.Builder
		if last := s.Runner.LastSummary(); last != nil {
			b.WriteString(notifier.FormatScanSummary(*last))
		} else {
			b.WriteString("No scan has run yet.")
		}
		if next := s.NextRun(); !next.IsZero() {
			b.WriteString("\nNext scan: " + next.Format("2006-01-02 15:04 MST"))
		}
		return b.String()
	default:
		return helpText
	}
}
