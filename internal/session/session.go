// Package session drives a single file upload through validation, encoding,
// transmission and finalization, reporting simulated progress while the
// gateway call is in flight.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"docintake/internal/gateway"
	"docintake/internal/logging"
	"docintake/internal/validation"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("docintake/internal/session")

// State is a session lifecycle state.
type State string

const (
	StateIdle         State = "idle"
	StateValidating   State = "validating"
	StateEncoding     State = "encoding"
	StateTransmitting State = "transmitting"
	StateFinalizing   State = "finalizing"
	StateSucceeded    State = "succeeded"
	StateFailed       State = "failed"
)

// Terminal reports whether no further transitions follow s.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

const (
	ReasonInvalidFileType = "invalid file type"
	ReasonFileTooLarge    = "file too large"
	ReasonUploadFailed    = "upload failed"
)

// ErrSlotBusy is returned when a slot already has a session in flight.
var ErrSlotBusy = errors.New("upload already in progress for slot")

// Error describes a session that ended in Failed or never started.
type Error struct {
	SessionID string
	Slot      string
	Stage     State
	Reason    string
	Err       error
}

func (e *Error) Error() string {
	return fmt.Sprintf("session %s (%s): %s", e.Slot, e.Stage, e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }

// Snapshot is a point-in-time view of a session.
type Snapshot struct {
	ID         string    `json:"id"`
	Slot       string    `json:"slot"`
	Kind       string    `json:"kind"`
	FileName   string    `json:"file_name"`
	State      State     `json:"state"`
	Progress   int       `json:"progress"`
	Reason     string    `json:"reason,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitzero"`
}

// Request describes one upload. Submit performs the gateway call with the
// encoded payload; OnSuccess runs after the settle delay, typically to
// re-fetch the owning candidate.
type Request[T any] struct {
	Slot      string
	Kind      string
	Field     string
	File      validation.File
	Content   []byte
	Profile   validation.Profile
	Submit    func(ctx context.Context, p gateway.Payload) (T, error)
	OnSuccess func(ctx context.Context, result T) error
}

// Outcome is the terminal snapshot and, on success, the gateway result.
type Outcome[T any] struct {
	Snapshot
	Result T
}

// Options tunes progress simulation.
type Options struct {
	Step       int
	Interval   time.Duration
	Ceiling    int
	Settle     time.Duration
	NewTicker  TickerFactory
	OnProgress func(slot string, progress int)
	Metrics    *Metrics
	Logger     *slog.Logger
}

// Controller owns the per-slot sessions. At most one session per slot is
// active; slots are independent of each other.
type Controller struct {
	opts   Options
	log    *slog.Logger
	mu     sync.Mutex
	active map[string]*session
	last   map[string]Snapshot
}

// NewController returns a Controller with defaults filled in for zero options.
func NewController(opts Options) *Controller {
	if opts.Step <= 0 {
		opts.Step = 10
	}
	if opts.Interval <= 0 {
		opts.Interval = 200 * time.Millisecond
	}
	if opts.Ceiling <= 0 || opts.Ceiling > 99 {
		opts.Ceiling = 90
	}
	if opts.Settle < 0 {
		opts.Settle = 0
	}
	if opts.NewTicker == nil {
		opts.NewTicker = NewTimeTicker
	}
	log := opts.Logger
	if log == nil {
		log = logging.New("session")
	}

	return &Controller{
		opts:   opts,
		log:    log,
		active: make(map[string]*session),
		last:   make(map[string]Snapshot),
	}
}

// Snapshot returns the active session for slot or, if none, the last one
// that finished there.
func (c *Controller) Snapshot(slot string) (Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.active[slot]; ok {
		return s.snapshot(), true
	}
	snap, ok := c.last[slot]
	return snap, ok
}

// Busy reports whether slot has a session in flight.
func (c *Controller) Busy(slot string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.active[slot]
	return ok
}

func (c *Controller) acquire(slot, kind, fileName string) (*session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.active[slot]; busy {
		return nil, false
	}
	s := &session{
		id:        uuid.NewString(),
		slot:      slot,
		kind:      kind,
		fileName:  fileName,
		state:     StateIdle,
		startedAt: time.Now(),
	}
	c.active[slot] = s
	return s, true
}

func (c *Controller) release(s *session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last[s.slot] = s.snapshot()
	delete(c.active, s.slot)
}

func (c *Controller) notify(s *session, progress int) {
	if c.opts.OnProgress != nil {
		c.opts.OnProgress(s.slot, progress)
	}
}

// Run executes req to a terminal state. The returned error is a *Error for
// every failure, wrapping ErrSlotBusy, a validation error or the gateway
// error.
func Run[T any](ctx context.Context, c *Controller, req Request[T]) (Outcome[T], error) {
	var out Outcome[T]

	s, ok := c.acquire(req.Slot, req.Kind, req.File.Name)
	if !ok {
		c.log.Warn("session_rejected", "slot", req.Slot, "reason", "busy")
		return out, &Error{Slot: req.Slot, Stage: StateIdle, Reason: "busy", Err: ErrSlotBusy}
	}
	defer c.release(s)

	ctx, span := tracer.Start(ctx, "session.run", trace.WithAttributes(
		attribute.String("session.id", s.id),
		attribute.String("session.slot", s.slot),
		attribute.String("session.kind", s.kind),
		attribute.Int64("file.size", req.File.Size),
	))
	defer span.End()

	log := c.log.With("session_id", s.id, "slot", s.slot, "kind", s.kind)

	fail := func(stage State, reason string, err error) (Outcome[T], error) {
		span.SetStatus(codes.Error, reason)
		span.SetAttributes(attribute.String("session.stage", string(stage)))
		s.finish(StateFailed, reason)
		c.opts.Metrics.observe(s.kind, StateFailed, time.Since(s.startedAt))
		log.Error("session_failed", "stage", string(stage), "reason", reason, "error", err)
		out.Snapshot = s.snapshot()
		return out, &Error{SessionID: s.id, Slot: s.slot, Stage: stage, Reason: reason, Err: err}
	}

	s.setState(StateValidating)
	if err := validation.Validate(req.File, req.Profile); err != nil {
		reason := ReasonInvalidFileType
		if errors.Is(err, validation.ErrFileTooLarge) {
			reason = ReasonFileTooLarge
		}
		return fail(StateValidating, reason, err)
	}

	s.setState(StateEncoding)
	payload, err := gateway.EncodeFile(req.Field, req.File.Name, req.File.MediaType, req.Content)
	if err != nil {
		return fail(StateEncoding, ReasonUploadFailed, err)
	}

	// The in-flight call is not cancelled by the caller; the gateway timeout
	// bounds it instead.
	callCtx := context.WithoutCancel(ctx)

	s.setState(StateTransmitting)
	log.Info("session_transmitting", "file", req.File.Name, "size", req.File.Size)
	result, err := transmit(callCtx, c, s, req.Submit, payload)
	if responseReceived(err) {
		s.setProgress(100)
		c.notify(s, 100)
	}
	if err != nil {
		return fail(StateTransmitting, gateway.Message(err, ReasonUploadFailed), err)
	}

	s.setState(StateFinalizing)
	if err := settle(callCtx, c.opts.Settle); err != nil {
		return fail(StateFinalizing, ReasonUploadFailed, err)
	}
	if req.OnSuccess != nil {
		if err := req.OnSuccess(callCtx, result); err != nil {
			log.Warn("session_refresh_failed", "error", err)
		}
	}

	s.finish(StateSucceeded, "")
	c.opts.Metrics.observe(s.kind, StateSucceeded, time.Since(s.startedAt))
	log.Info("session_succeeded", "duration_ms", time.Since(s.startedAt).Milliseconds())

	out.Snapshot = s.snapshot()
	out.Result = result
	return out, nil
}

// transmit calls submit while a ticker advances progress toward the ceiling.
// The ticker goroutine has exited by the time transmit returns.
func transmit[T any](ctx context.Context, c *Controller, s *session,
	submit func(context.Context, gateway.Payload) (T, error), p gateway.Payload) (T, error) {
	c.notify(s, 0)

	ticker := c.opts.NewTicker(c.opts.Interval)
	stop := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			select {
			case <-stop:
				return
			case <-ticker.C():
				progress, advanced := s.advance(c.opts.Step, c.opts.Ceiling)
				if advanced {
					c.notify(s, progress)
				}
				if progress >= c.opts.Ceiling {
					return
				}
			}
		}
	}()

	result, err := submit(ctx, p)

	close(stop)
	ticker.Stop()
	<-done
	return result, err
}

// responseReceived reports whether the backend answered, successfully or not.
func responseReceived(err error) bool {
	if err == nil {
		return true
	}
	var te *gateway.TransportError
	if errors.As(err, &te) {
		return te.Status != 0
	}
	var me *gateway.MalformedResponseError
	return errors.As(err, &me)
}

func settle(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type session struct {
	id        string
	slot      string
	kind      string
	fileName  string
	startedAt time.Time

	mu         sync.Mutex
	state      State
	progress   int
	reason     string
	finishedAt time.Time
}

func (s *session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

func (s *session) finish(st State, reason string) {
	s.mu.Lock()
	s.state = st
	s.reason = reason
	s.finishedAt = time.Now()
	s.mu.Unlock()
}

// advance moves progress by step without exceeding ceiling.
func (s *session) advance(step, ceiling int) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.progress >= ceiling {
		return s.progress, false
	}
	s.progress = min(s.progress+step, ceiling)
	return s.progress, true
}

func (s *session) setProgress(p int) {
	s.mu.Lock()
	if p > s.progress {
		s.progress = p
	}
	s.mu.Unlock()
}

func (s *session) snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ID:         s.id,
		Slot:       s.slot,
		Kind:       s.kind,
		FileName:   s.fileName,
		State:      s.state,
		Progress:   s.progress,
		Reason:     s.reason,
		StartedAt:  s.startedAt,
		FinishedAt: s.finishedAt,
	}
}
