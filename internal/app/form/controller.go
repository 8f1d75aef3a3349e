/*
Package form runs the validate, submit and settle lifecycle of the phonebook forms.

A Controller owns one form instance. All state changes happen on a single event-loop
goroutine: user events (Change, Blur, Submit) and the settlement of the one outstanding
remote call are applied in arrival order, so no locking is needed around form state.
What differs between the register, login and contact forms is plain data in Config:
the schema, the remote action and the messages.
*/
package form

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	"phonebook/internal/pkg/logx"

	"github.com/rs/zerolog"
)

var (
	// ErrClosed is returned by every operation on a closed controller.
	ErrClosed = errors.New("form: controller closed")

	// ErrUnknownField is returned by Change and Blur for a field the schema does not declare.
	ErrUnknownField = errors.New("form: unknown field")
)

const (
	DefaultSuccessMessage = "Saved"
	DefaultFailureMessage = "Something went wrong. Please, try again!"
)

// SubmitFunc is the remote action of a form. It receives the transmitted subset of the
// validated values.
type SubmitFunc func(ctx context.Context, payload map[string]string) (Result, error)

// Config is everything that distinguishes one form kind from another.
type Config struct {
	Schema *Schema
	Submit SubmitFunc

	SuccessMessage string
	FailureMessage string

	// ModalID is closed through the ModalCloser after a successful submission; empty means
	// the form is not rendered in a modal.
	ModalID string

	// Timeout bounds a remote call; zero waits for as long as the call takes.
	Timeout time.Duration

	// OnUpdate receives every state the loop produces, transient phases included.
	// It runs on the loop goroutine and must not call back into the controller.
	OnUpdate func(State)
}

// Option customises a Controller.
type Option func(*Controller)

func WithNotifier(n Notifier) Option {
	return func(c *Controller) { c.notifier = n }
}

func WithModal(m ModalCloser) Option {
	return func(c *Controller) { c.modal = m }
}

// WithContext sets the parent context of remote calls. It is not cancelled by Close.
func WithContext(ctx context.Context) Option {
	return func(c *Controller) { c.baseCtx = ctx }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

type eventKind int

const (
	eventChange eventKind = iota
	eventBlur
	eventSubmit
	eventSnapshot
	eventAwaitIdle
)

type event struct {
	kind  eventKind
	field string
	value string

	// reply is buffered so the loop never blocks on a caller that gave up.
	reply chan State
	err   chan error
}

type settlement struct {
	attempt int
	result  Result
	err     error
}

// Controller drives one form instance.
type Controller struct {
	cfg      Config
	notifier Notifier
	modal    ModalCloser
	baseCtx  context.Context
	logger   zerolog.Logger

	// events carries user events and queries into the loop.
	events chan event

	// settled carries the outcome of the in-flight remote call.
	settled chan settlement

	// stopChan is closed by Close; done is closed when the loop has exited.
	stopChan chan struct{}
	done     chan struct{}
}

// NewController starts the event loop of a new form instance with empty values.
// It panics if cfg has no schema or no submit action.
func NewController(cfg Config, opts ...Option) *Controller {
	if cfg.Schema == nil || cfg.Submit == nil {
		panic("form: Config needs a Schema and a Submit action")
	}
	if cfg.SuccessMessage == "" {
		cfg.SuccessMessage = DefaultSuccessMessage
	}
	if cfg.FailureMessage == "" {
		cfg.FailureMessage = DefaultFailureMessage
	}

	c := &Controller{
		cfg:      cfg,
		notifier: nopNotifier{},
		baseCtx:  context.Background(),
		logger:   logx.Component("form"),
		events:   make(chan event),
		settled:  make(chan settlement),
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With().Str("form_kind", string(cfg.Schema.Kind)).Logger()

	go c.run()

	return c
}

// Change stores value for field. The phase is unchanged; errors of touched fields are
// re-evaluated.
func (c *Controller) Change(field, value string) (State, error) {
	return c.send(event{kind: eventChange, field: field, value: value})
}

// Blur marks field as touched and re-validates all touched fields.
func (c *Controller) Blur(field string) (State, error) {
	return c.send(event{kind: eventBlur, field: field})
}

// Submit validates every field and, when the form is valid, dispatches the remote
// action. It returns without waiting for the remote call; use AwaitIdle for that.
// While a submission is in flight Submit is a no-op that returns the current state.
func (c *Controller) Submit() (State, error) {
	return c.send(event{kind: eventSubmit})
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() (State, error) {
	return c.send(event{kind: eventSnapshot})
}

// AwaitIdle blocks until no submission is in flight and returns the state at that point.
func (c *Controller) AwaitIdle(ctx context.Context) (State, error) {
	ev := event{kind: eventAwaitIdle, reply: make(chan State, 1), err: make(chan error, 1)}

	select {
	case c.events <- ev:
	case <-c.stopChan:
		return State{}, ErrClosed
	case <-ctx.Done():
		return State{}, ctx.Err()
	}

	select {
	case st, ok := <-ev.reply:
		if !ok {
			return State{}, ErrClosed
		}
		return st, nil
	case <-ctx.Done():
		return State{}, ctx.Err()
	}
}

// Close unmounts the form and waits for its loop to exit. A submission still in flight
// keeps running, but its outcome is discarded. Close is idempotent.
func (c *Controller) Close() {
	select {
	case <-c.stopChan:
	default:
		close(c.stopChan)
	}
	<-c.done
}

func (c *Controller) send(ev event) (State, error) {
	ev.reply = make(chan State, 1)
	ev.err = make(chan error, 1)

	select {
	case c.events <- ev:
	case <-c.stopChan:
		return State{}, ErrClosed
	}

	select {
	case st := <-ev.reply:
		return st, nil
	case err := <-ev.err:
		return State{}, err
	}
}

// run is the event loop. It is the only goroutine touching st.
func (c *Controller) run() {
	st := State{
		Kind:    c.cfg.Schema.Kind,
		Phase:   PhaseIdle,
		Values:  c.cfg.Schema.Initial(),
		Errors:  map[string]string{},
		Touched: map[string]bool{},
	}

	var waiters []chan State

	defer func() {
		for _, w := range waiters {
			close(w)
		}
		close(c.done)
	}()

	for {
		select {
		case <-c.stopChan:
			c.logger.Debug().Int("attempts", st.Attempts).Msg("Form closed.")
			return

		case ev := <-c.events:
			switch ev.kind {
			case eventChange:
				if _, ok := c.cfg.Schema.Field(ev.field); !ok {
					ev.err <- fmt.Errorf("%w: %q", ErrUnknownField, ev.field)
					continue
				}
				st.Values[ev.field] = ev.value
				c.revalidateTouched(&st)
				c.publish(st)

			case eventBlur:
				if _, ok := c.cfg.Schema.Field(ev.field); !ok {
					ev.err <- fmt.Errorf("%w: %q", ErrUnknownField, ev.field)
					continue
				}
				st.Touched[ev.field] = true
				c.revalidateTouched(&st)
				c.publish(st)

			case eventSubmit:
				if st.Phase == PhaseSubmitting {
					c.logger.Debug().Msg("Submit ignored: a submission is already in flight.")
					break
				}
				c.submit(&st)

			case eventAwaitIdle:
				if st.Phase != PhaseSubmitting {
					ev.reply <- st.clone()
					continue
				}
				waiters = append(waiters, ev.reply)
				continue
			}

			ev.reply <- st.clone()

		case s := <-c.settled:
			select {
			case <-c.stopChan:
				c.logger.Debug().Int("attempt", s.attempt).Msg("Form closed before submission settled; result discarded.")
				return
			default:
			}
			c.settle(&st, s)

			for _, w := range waiters {
				w <- st.clone()
			}
			waiters = nil
		}
	}
}

func (c *Controller) submit(st *State) {
	st.Phase = PhaseValidating
	c.publish(*st)

	failures := c.cfg.Schema.Validate(st.Values)
	if len(failures) > 0 {
		for field := range failures {
			st.Touched[field] = true
		}
		c.revalidateTouched(st)
		st.Phase = PhaseIdle
		c.publish(*st)
		return
	}

	st.Phase = PhaseSubmitting
	st.Attempts++
	c.publish(*st)

	go c.dispatch(st.Attempts, c.cfg.Schema.Payload(st.Values))
}

// dispatch runs the remote action off the loop and hands the outcome back to it,
// unless the form was closed in the meantime.
func (c *Controller) dispatch(attempt int, payload map[string]string) {
	ctx := c.baseCtx
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	result, err := c.call(ctx, payload)

	select {
	case c.settled <- settlement{attempt: attempt, result: result, err: err}:
	case <-c.stopChan:
		c.logger.Debug().Int("attempt", attempt).Msg("Form closed before submission settled; result discarded.")
	}
}

func (c *Controller) call(ctx context.Context, payload map[string]string) (result Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("submit action panicked: %v", r)
		}
	}()
	return c.cfg.Submit(ctx, payload)
}

func (c *Controller) settle(st *State, s settlement) {
	if s.err != nil {
		st.Phase = PhaseFailed
		c.publish(*st)

		c.logger.Warn().
			Err(s.err).
			Int("attempt", s.attempt).
			Msg("Form submission failed.")
		c.notifier.Notify(SeverityError, c.cfg.FailureMessage)

		st.Phase = PhaseIdle
		c.publish(*st)
		return
	}

	st.Phase = PhaseSucceeded
	st.Result = &Result{Fields: maps.Clone(s.result.Fields)}
	c.publish(*st)

	st.Values = c.cfg.Schema.Initial()
	st.Errors = map[string]string{}
	st.Touched = map[string]bool{}

	c.notifier.Notify(SeveritySuccess, c.cfg.SuccessMessage)
	if c.cfg.ModalID != "" && c.modal != nil {
		c.modal.Close(c.cfg.ModalID)
	}

	c.logger.Info().Int("attempt", s.attempt).Msg("Form submitted.")

	st.Phase = PhaseIdle
	c.publish(*st)
}

// revalidateTouched recomputes the errors of every touched field. Cross-field rules
// make a change to one field able to fix or break another.
func (c *Controller) revalidateTouched(st *State) {
	errs := make(map[string]string, len(st.Touched))
	for field := range st.Touched {
		if msg := c.cfg.Schema.ValidateField(field, st.Values); msg != "" {
			errs[field] = msg
		}
	}
	st.Errors = errs
}

func (c *Controller) publish(st State) {
	if c.cfg.OnUpdate != nil {
		c.cfg.OnUpdate(st.clone())
	}
}
