package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/futig/lab-assistant/internal/entity"
	"github.com/futig/lab-assistant/internal/pkg/logger"
	"github.com/futig/lab-assistant/internal/telegram/handlers"
	"github.com/futig/lab-assistant/internal/telegram/keyboard"
	"github.com/futig/lab-assistant/internal/telegram/middleware"
	"github.com/futig/lab-assistant/internal/telegram/state"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

var (
	ErrQueueFull = errors.New("user event queue is full")
	ErrStopped   = errors.New("dispatcher stopped")
)

const cancelWord = "отмена"

// Dispatcher routes events to handlers. Each user has a FIFO queue drained
// by a single worker, so one user's events are handled in receipt order
// while different users run in parallel.
type Dispatcher struct {
	states    *state.Manager
	channel   handlers.Channel
	commands  *handlers.CommandHandler
	form      handlers.Handler
	handlers  map[state.State]handlers.Handler
	queueSize int
	logger    *zap.Logger

	rateLimitMW *middleware.RateLimiterMiddleware
	loggingMW   *middleware.LoggingMiddleware
	recoveryMW  *middleware.RecoveryMiddleware

	mu      sync.Mutex
	queues  map[int64]chan *handlers.Event
	stopped bool
	wg      sync.WaitGroup
	cancel  context.CancelFunc
}

// DispatcherConfig holds dispatcher limits
type DispatcherConfig struct {
	QueueSize          int
	RateLimitPerMinute int
	RateLimitBurst     int
}

// NewDispatcher creates a dispatcher. Handlers are added with RegisterHandler.
func NewDispatcher(
	cfg DispatcherConfig,
	states *state.Manager,
	channel handlers.Channel,
	commands *handlers.CommandHandler,
	form handlers.Handler,
	logger *zap.Logger,
) *Dispatcher {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1
	}
	return &Dispatcher{
		states:      states,
		channel:     channel,
		commands:    commands,
		form:        form,
		handlers:    make(map[state.State]handlers.Handler),
		queueSize:   cfg.QueueSize,
		logger:      logger,
		rateLimitMW: middleware.NewRateLimiterMiddleware(cfg.RateLimitPerMinute, cfg.RateLimitBurst, channel),
		loggingMW:   middleware.NewLoggingMiddleware(),
		recoveryMW:  middleware.NewRecoveryMiddleware(channel),
		queues:      make(map[int64]chan *handlers.Event),
	}
}

// RegisterHandler registers a handler for its state
func (d *Dispatcher) RegisterHandler(handler handlers.Handler) {
	st := handler.GetState()
	if !st.IsValid() {
		d.logger.Fatal("invalid handler state", zap.String("state", string(st)))
	}

	d.handlers[st] = handler
	d.logger.Debug("handler registered", zap.String("state", string(st)))
}

// Start runs the rate limiter janitor until Stop
func (d *Dispatcher) Start(ctx context.Context) {
	ctx, d.cancel = context.WithCancel(ctx)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.rateLimitMW.Run(ctx)
	}()
}

// Stop refuses new events and waits for queued ones to be handled
func (d *Dispatcher) Stop(timeout time.Duration) error {
	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()

	if d.cancel != nil {
		d.cancel()
	}

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info("all handlers completed gracefully")
		return nil
	case <-time.After(timeout):
		d.logger.Warn("shutdown timeout exceeded, some handlers may not have completed",
			zap.Duration("timeout", timeout),
		)
		return fmt.Errorf("shutdown timeout exceeded")
	}
}

// Dispatch rate limits the event, acknowledges callbacks and queues it.
// A dropped event is reported as entity.ErrRateLimited, ErrQueueFull or
// ErrStopped.
func (d *Dispatcher) Dispatch(ctx context.Context, ev *handlers.Event) error {
	var queueErr error
	err := d.rateLimitMW.Handle(ctx, ev, func(ctx context.Context, ev *handlers.Event) {
		if ev.Kind == handlers.EventCallback && ev.CallbackID != "" {
			if cbErr := d.channel.AnswerCallback(ctx, ev.CallbackID, ""); cbErr != nil {
				ctxzap.Warn(ctx, "failed to answer callback", zap.Error(cbErr))
			}
		}
		queueErr = d.enqueue(ev)
	})
	if err == nil {
		err = queueErr
	}

	if err != nil {
		ctxzap.Warn(ctx, "event dropped",
			zap.Error(err),
			zap.Int64("user_id", ev.UserID),
			zap.Stringer("event", ev.Kind),
		)
	}
	return err
}

// SubmitForm queues a hosted form submission for the user
func (d *Dispatcher) SubmitForm(ctx context.Context, userID, chatID int64, payload []byte) error {
	return d.Dispatch(ctx, handlers.NewFormEvent(userID, chatID, payload))
}

func (d *Dispatcher) enqueue(ev *handlers.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return ErrStopped
	}

	queue, ok := d.queues[ev.UserID]
	if !ok {
		queue = make(chan *handlers.Event, d.queueSize)
		d.queues[ev.UserID] = queue
		d.wg.Add(1)
		go d.work(ev.UserID, queue)
	}

	select {
	case queue <- ev:
		return nil
	default:
		return ErrQueueFull
	}
}

// work drains one user's queue and exits once it is empty
func (d *Dispatcher) work(userID int64, queue chan *handlers.Event) {
	defer d.wg.Done()

	for {
		d.mu.Lock()
		select {
		case ev := <-queue:
			d.mu.Unlock()
			d.process(ev)
		default:
			delete(d.queues, userID)
			d.mu.Unlock()
			return
		}
	}
}

func (d *Dispatcher) process(ev *handlers.Event) {
	ctx := ctxzap.ToContext(context.Background(), d.logger)

	d.loggingMW.Handle(ctx, ev, func(ctx context.Context, ev *handlers.Event) {
		d.recoveryMW.Handle(ctx, ev, func(ctx context.Context, ev *handlers.Event) {
			if err := d.route(ctx, ev); err != nil {
				d.commands.HandleError(ctx, ev.ChatID, err)
			}
		})
	})
}

// route picks the handler: commands, the cancel word, menu buttons and
// after-report callbacks work in any state, everything else goes to the
// handler of the current state
func (d *Dispatcher) route(ctx context.Context, ev *handlers.Event) error {
	switch ev.Kind {
	case handlers.EventForm:
		return d.form.Handle(ctx, ev)

	case handlers.EventText:
		if ev.IsCommand() {
			return d.command(ctx, ev)
		}
		if fn := d.shortcut(ev.TrimmedText()); fn != nil {
			return fn(ctx, ev)
		}

	case handlers.EventCallback:
		if fn := d.globalCallback(ev); fn != nil {
			return fn(ctx, ev)
		}
	}

	current, err := d.states.GetState(ctx, ev.UserID)
	if err != nil {
		return fmt.Errorf("get state: %w", err)
	}
	ctx = logger.AddFields(ctx, zap.String("state", string(current)))

	handler, ok := d.handlers[current]
	if !ok {
		ctxzap.Warn(ctx, "no handler for state, resetting session")
		if err := d.states.Clear(ctx, ev.UserID); err != nil {
			ctxzap.Error(ctx, "failed to clear session", zap.Error(err))
		}
		return fmt.Errorf("%w: no handler for %q", entity.ErrInvalidState, current)
	}

	return handler.Handle(ctx, ev)
}

type handleFunc func(ctx context.Context, ev *handlers.Event) error

func (d *Dispatcher) command(ctx context.Context, ev *handlers.Event) error {
	ctx = logger.WithAction(ctx, "command_"+ev.Command)

	switch ev.Command {
	case "start":
		return d.commands.Start(ctx, ev)
	case "help":
		return d.commands.Help(ctx, ev)
	case "cancel":
		return d.commands.Cancel(ctx, ev)
	case "reregister":
		return d.commands.Reregister(ctx, ev)
	default:
		return d.commands.Unknown(ctx, ev)
	}
}

func (d *Dispatcher) shortcut(text string) handleFunc {
	if strings.EqualFold(text, cancelWord) {
		return d.commands.Cancel
	}

	switch text {
	case keyboard.BtnAttachAnalyses:
		return d.commands.AttachAnalyses
	case keyboard.BtnAbout:
		return d.commands.About
	case keyboard.BtnProfile:
		return d.commands.Profile
	case keyboard.BtnReset:
		return d.commands.ResetButton
	}
	return nil
}

func (d *Dispatcher) globalCallback(ev *handlers.Event) handleFunc {
	cb := ev.Callback()
	if cb == nil {
		return nil
	}

	switch cb.Action {
	case keyboard.ActionReport:
		switch cb.Value {
		case keyboard.ValueNew:
			return d.commands.AnalyzeNew
		case keyboard.ValueReregister:
			return d.commands.Reregister
		}

	case keyboard.ActionDownload:
		format := entity.ResultFormat(cb.Value)
		if !format.IsValid() {
			return nil
		}
		return func(ctx context.Context, ev *handlers.Event) error {
			return d.commands.Download(ctx, ev, format)
		}
	}
	return nil
}
