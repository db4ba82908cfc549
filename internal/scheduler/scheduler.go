package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"RatioChart/internal/calculator"
	"RatioChart/internal/model"
	"RatioChart/internal/notifier"
	"RatioChart/internal/prefs"
	"RatioChart/internal/recorder"
	"RatioChart/internal/session"
)

// Sender delivers a formatted message. *notifier.TelegramNotifier satisfies it.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler manages the cron tasks and the bot commands.
type Scheduler struct {
	Cron     *cron.Cron
	Session  *session.Session
	Prefs    *prefs.Store
	Notifier Sender // nil disables notifications
	Recorder recorder.Recorder
	Location *time.Location
	Range    string // preset used by scheduled refreshes
	Now      func() time.Time
	Ctx      context.Context

	refreshID cron.EntryID
}

// NewScheduler creates a new Scheduler. Cron expressions are evaluated in loc.
func NewScheduler(ctx context.Context, sess *session.Session, store *prefs.Store, sender Sender, rec recorder.Recorder, loc *time.Location, rangePreset string) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
		Session:  sess,
		Prefs:    store,
		Notifier: sender,
		Recorder: rec,
		Location: loc,
		Range:    rangePreset,
		Now:      time.Now,
		Ctx:      ctx,
	}
}

// RegisterAll registers the refresh and report tasks.
func (s *Scheduler) RegisterAll(refreshCron, reportCron string) error {
	id, err := s.Cron.AddFunc(refreshCron, s.refreshTask)
	if err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	s.refreshID = id
	if _, err := s.Cron.AddFunc(reportCron, s.reportTask); err != nil {
		return fmt.Errorf("register report task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes the refresh task immediately (for startup warm-up).
func (s *Scheduler) RunNow() {
	s.refreshTask()
}

// NextRefresh returns when the refresh task runs next, or zero if not scheduled.
func (s *Scheduler) NextRefresh() time.Time {
	if s.refreshID == 0 {
		return time.Time{}
	}
	return s.Cron.Entry(s.refreshID).Next
}

// refreshTask keeps the session chart current. Failures are reported, successes are not.
func (s *Scheduler) refreshTask() {
	log.Println("[INFO] running refresh task")
	p := s.Prefs.Get()
	if _, err := s.refresh(s.Ctx, "schedule", s.Range); err != nil {
		if msg := notifier.FormatError(model.NewPair(p.SymbolA, p.SymbolB, p.Order), err); msg != "" {
			s.trySend(msg)
		}
	}
}

func (s *Scheduler) reportTask() {
	log.Println("[INFO] running report task")
	s.trySend(s.report(s.Ctx, "schedule", s.Range))
}

// refresh charts the saved pair over preset.
func (s *Scheduler) refresh(ctx context.Context, source, preset string) (*model.RatioChart, error) {
	p := s.Prefs.Get()
	from, to, err := calculator.ResolveRange(preset, "", "", s.Now(), s.Location)
	if err != nil {
		return nil, err
	}
	req := model.Request{SymbolA: p.SymbolA, SymbolB: p.SymbolB, Order: p.Order, From: from, To: to}
	return s.Session.Refresh(ctx, source, req)
}

func (s *Scheduler) report(ctx context.Context, source, preset string) string {
	p := s.Prefs.Get()
	chart, err := s.refresh(ctx, source, preset)
	if err != nil {
		return notifier.FormatError(model.NewPair(p.SymbolA, p.SymbolB, p.Order), err)
	}
	return notifier.FormatRatioReport(chart)
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}
	// Group chats append the bot name: /ratio@RatioChartBot
	name, _, _ := strings.Cut(fields[0], "@")
	args := fields[1:]

	switch name {
	case "/ratio", "比值":
		preset := s.Range
		if len(args) > 0 {
			preset = args[0]
			if preset == calculator.RangeCustom {
				return "❌ 自定义区间请使用 HTTP 接口"
			}
		}
		return s.report(ctx, "telegram", preset)
	case "/pair", "切换":
		if len(args) < 2 {
			return "用法: /pair A B [a/b|b/a]"
		}
		order := model.OrderAOverB
		if len(args) > 2 {
			o, err := model.ParseRatioOrder(args[2])
			if err != nil {
				return fmt.Sprintf("❌ %v", err)
			}
			order = o
		}
		if err := s.Prefs.SetPair(args[0], args[1], order); err != nil {
			return notifier.FormatError(model.Pair{}, err)
		}
		p := s.Prefs.Get()
		return fmt.Sprintf("✅ 已切换到 %s", model.NewPair(p.SymbolA, p.SymbolB, p.Order))
	case "/status", "状态":
		p := s.Prefs.Get()
		history, err := s.Recorder.Recent(5)
		if err != nil {
			log.Printf("[ERROR] read refresh history: %v", err)
		}
		return notifier.FormatStatus(model.NewPair(p.SymbolA, p.SymbolB, p.Order), s.NextRefresh(), history)
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil || text == "" {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
