package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cryptoSignalBot/config"
	"cryptoSignalBot/internal/domain"
	"cryptoSignalBot/internal/metrics"
	"cryptoSignalBot/internal/notify"
	"cryptoSignalBot/internal/ports"
	"cryptoSignalBot/internal/risk"
	"cryptoSignalBot/internal/strategy/indicators"
	"cryptoSignalBot/internal/tracker"
)

// Classifier turns an indicator frame into a verdict.
type Classifier interface {
	Classify(frame *indicators.Frame) domain.Verdict
}

// CycleResult summarizes one analysis cycle.
type CycleResult struct {
	Verdict    domain.Verdict
	Price      float64
	Row        indicators.Row
	Frame      *indicators.Frame
	Transition *tracker.Transition // nil when the side did not change
	Position   domain.Position
	PnL        float64
	Notified   bool
}

// SignalService runs the fetch, classify, track and notify cycle on a timer.
type SignalService struct {
	cfg        *config.Config
	logger     ports.Logger
	market     ports.MarketData
	notifier   ports.Notifier
	store      ports.PositionStore
	classifier Classifier
	engine     *indicators.Engine
	risk       *risk.Calculator
	gate       *notify.Gate
	metrics    *metrics.Metrics

	tracker *tracker.Tracker // set by Restore

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewSignalService creates a new application service instance.
func NewSignalService(
	cfg *config.Config,
	logger ports.Logger,
	market ports.MarketData,
	notifier ports.Notifier,
	store ports.PositionStore,
	classifier Classifier,
	m *metrics.Metrics,
) (*SignalService, error) {
	if cfg == nil || logger == nil || market == nil || notifier == nil || store == nil || classifier == nil {
		return nil, fmt.Errorf("missing required dependencies for SignalService")
	}
	if cfg.DispatchRetries < 1 {
		return nil, fmt.Errorf("configuration DispatchRetries must be at least 1")
	}
	if cfg.CycleInterval <= 0 || cfg.ErrorRetry <= 0 {
		return nil, fmt.Errorf("configuration cycle and retry intervals must be positive")
	}

	engine, err := indicators.NewEngine(cfg.Indicators)
	if err != nil {
		return nil, fmt.Errorf("invalid indicator configuration: %w", err)
	}
	calc, err := risk.NewCalculator(cfg.Risk)
	if err != nil {
		return nil, fmt.Errorf("invalid risk configuration: %w", err)
	}
	if m == nil {
		m = metrics.NewMetrics(nil)
	}

	return &SignalService{
		cfg:        cfg,
		logger:     logger,
		market:     market,
		notifier:   notifier,
		store:      store,
		classifier: classifier,
		engine:     engine,
		risk:       calc,
		gate:       notify.NewGate(cfg.NotifyCooldown),
		metrics:    m,
		now:        time.Now,
		sleep:      sleepContext,
	}, nil
}

// Start runs the service until SIGINT/SIGTERM or ctx cancellation.
func (s *SignalService) Start(ctx context.Context) error {
	s.logger.Info(ctx, "Starting Signal Service...")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			s.logger.Info(ctx, "Received shutdown signal", map[string]interface{}{"signal": sig.String()})
			cancel()
		case <-ctx.Done():
		}
	}()

	err := s.Run(ctx)
	s.logger.Info(context.Background(), "Signal Service stopped.")
	return err
}

// Run restores state, announces startup and loops until ctx is done. Cycle
// errors only change the wait before the next cycle.
func (s *SignalService) Run(ctx context.Context) error {
	s.Restore(ctx)
	s.announce(ctx, notify.FormatStartup(s.cfg.Symbol, s.cfg.Interval, s.tracker.Position()))

	for {
		wait := s.cfg.CycleInterval
		if _, err := s.RunCycle(ctx); err != nil {
			if ctx.Err() != nil {
				break
			}
			s.logger.Error(ctx, err, "Cycle failed, backing off", map[string]interface{}{"retryIn": s.cfg.ErrorRetry.String()})
			wait = s.cfg.ErrorRetry
		}
		if err := s.sleep(ctx, wait); err != nil {
			break
		}
	}

	// The run context is gone; use a fresh one so the goodbye can still go out.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.HTTPTimeout)
	defer cancel()
	s.announce(shutdownCtx, notify.FormatShutdown(s.cfg.Symbol))
	return nil
}

// Restore loads the persisted position into the tracker. A load failure
// starts FLAT.
func (s *SignalService) Restore(ctx context.Context) {
	s.logger.Info(ctx, "Synchronizing initial state...")
	persisted, err := s.store.Load(ctx, s.cfg.Symbol)
	if err != nil {
		s.logger.Error(ctx, err, "Failed to load persisted position, starting FLAT", map[string]interface{}{"symbol": s.cfg.Symbol})
		persisted = nil
	}
	s.tracker = tracker.New(s.cfg.Symbol, persisted)

	pos := s.tracker.Position()
	if pos.IsOpen() {
		s.logger.Info(ctx, "Found persisted position", map[string]interface{}{
			"side":       pos.Side,
			"entryPrice": pos.EntryPrice,
			"entryTime":  pos.EntryTime.Format(time.RFC3339),
		})
	} else {
		s.logger.Info(ctx, "No persisted position found")
	}
}

// Position returns the tracked position; FLAT before Restore.
func (s *SignalService) Position() domain.Position {
	if s.tracker == nil {
		return domain.Position{Symbol: s.cfg.Symbol, Side: domain.Flat}
	}
	return s.tracker.Position()
}

// RunCycle performs a single fetch, classify, track, notify and persist pass.
func (s *SignalService) RunCycle(ctx context.Context) (*CycleResult, error) {
	if s.tracker == nil {
		s.Restore(ctx)
	}
	start := s.now()
	s.metrics.CyclesTotal.Inc()
	defer func() { s.metrics.ObserveCycle(start, s.now()) }()

	required := s.engine.RequiredDataPoints()
	klines, err := s.market.GetKlines(ctx, s.cfg.Symbol, s.cfg.Interval, s.cfg.Window)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.metrics.Fail(metrics.ReasonData)
		return nil, fmt.Errorf("fetch klines: %w: %w", ports.ErrDataUnavailable, err)
	}
	if len(klines) < required {
		s.metrics.Fail(metrics.ReasonData)
		return nil, fmt.Errorf("got %d klines, need at least %d: %w", len(klines), required, ports.ErrDataUnavailable)
	}
	for i, k := range klines {
		if !k.Valid() {
			s.metrics.Fail(metrics.ReasonData)
			return nil, fmt.Errorf("kline %d of %d is malformed: %w", i, len(klines), ports.ErrDataUnavailable)
		}
	}

	frame := s.engine.Compute(klines)
	last, _ := frame.Last()
	price := last.Close()

	verdict := s.classifier.Classify(frame)
	s.metrics.Verdicts.WithLabelValues(string(verdict.Direction)).Inc()
	s.metrics.SignalStrength.Set(verdict.Strength)
	s.metrics.LastClose.Set(price)

	logFields := ports.Fields{
		"symbol":     s.cfg.Symbol,
		"close":      price,
		"direction":  verdict.Direction,
		"strength":   verdict.Strength,
		"conditions": verdict.Conditions,
	}
	if verdict.Conflict {
		s.logger.Warn(ctx, "Buy and sell both qualified, holding", logFields)
	} else {
		s.logger.Info(ctx, "Cycle verdict", logFields)
	}

	at := s.now()
	result := &CycleResult{Verdict: verdict, Price: price, Row: last, Frame: frame}

	transition, changed := s.tracker.Apply(verdict, price, at)
	if changed {
		result.Transition = &transition
		s.logger.Info(ctx, "Position changed", map[string]interface{}{
			"from":       transition.From,
			"to":         transition.To,
			"entryPrice": transition.Current.EntryPrice,
		})
	}
	result.Position = s.tracker.Position()
	result.PnL = s.tracker.UnrealizedPnL(price)
	s.metrics.UnrealizedPnL.Set(result.PnL)

	if s.gate.Due(verdict, changed, at) {
		text := notify.FormatSignal(s.report(result, at))
		if err := s.dispatch(ctx, text); err != nil {
			s.metrics.Notifications.WithLabelValues("failed").Inc()
			s.logger.Error(ctx, err, "Failed to deliver signal notification", map[string]interface{}{"direction": verdict.Direction})
		} else {
			s.gate.MarkSent(at)
			result.Notified = true
			s.metrics.Notifications.WithLabelValues("sent").Inc()
		}
	} else if verdict.IsActionable() {
		s.metrics.Notifications.WithLabelValues("suppressed").Inc()
		s.logger.Debug(ctx, "Notification suppressed by cooldown", map[string]interface{}{"lastSent": s.gate.LastSent().Format(time.RFC3339)})
	}

	// Saved regardless of the dispatch outcome; a failed save keeps the in-memory state.
	if changed {
		pos := s.tracker.Position()
		if err := s.store.Save(ctx, &pos); err != nil {
			s.metrics.Fail(metrics.ReasonPersist)
			s.logger.Error(ctx, err, "Failed to persist position", map[string]interface{}{"symbol": s.cfg.Symbol})
		}
	}
	return result, nil
}

func (s *SignalService) report(r *CycleResult, at time.Time) notify.SignalReport {
	rep := notify.SignalReport{
		Symbol:   s.cfg.Symbol,
		Interval: s.cfg.Interval,
		Verdict:  r.Verdict,
		Price:    r.Price,
		Position: r.Position,
		PnL:      r.PnL,
		Row:      r.Row,
		At:       at,
	}
	if r.Position.IsOpen() {
		if ladder, err := s.risk.ForPosition(&r.Position); err == nil {
			rep.Ladder = &ladder
		}
	}
	return rep
}

// dispatch sends text with up to DispatchRetries attempts and a fixed delay.
func (s *SignalService) dispatch(ctx context.Context, text string) error {
	var lastErr error
	for attempt := 1; attempt <= s.cfg.DispatchRetries; attempt++ {
		lastErr = s.notifier.Send(ctx, text)
		if lastErr == nil {
			return nil
		}
		s.logger.Warn(ctx, "Notification attempt failed", map[string]interface{}{"attempt": attempt, "error": lastErr.Error()})
		if errors.Is(lastErr, context.Canceled) || ctx.Err() != nil {
			break
		}
		if attempt < s.cfg.DispatchRetries {
			if err := s.sleep(ctx, s.cfg.DispatchRetryDelay); err != nil {
				break
			}
		}
	}
	return fmt.Errorf("notification not delivered: %w: %w", ports.ErrDispatchFailed, lastErr)
}

// announce sends a lifecycle message once; failures are only logged.
func (s *SignalService) announce(ctx context.Context, text string) {
	if err := s.notifier.Send(ctx, text); err != nil {
		s.logger.Warn(ctx, "Lifecycle notification failed", map[string]interface{}{"error": err.Error()})
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
