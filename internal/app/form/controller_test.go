package form

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type note struct {
	severity Severity
	message  string
}

type recorder struct {
	mu     sync.Mutex
	notes  []note
	modals []string
	phases []Phase
	calls  []map[string]string
}

func (r *recorder) Notify(severity Severity, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, note{severity: severity, message: message})
}

func (r *recorder) Close(modalID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modals = append(r.modals, modalID)
}

func (r *recorder) onUpdate(st State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.phases = append(r.phases, st.Phase)
}

func (r *recorder) snapshot() (notes []note, modals []string, calls []map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]note(nil), r.notes...), append([]string(nil), r.modals...), append([]map[string]string(nil), r.calls...)
}

type outcome struct {
	result Result
	err    error
}

// gatedSubmit records every call and blocks it until the test sends an outcome on gate.
func (r *recorder) gatedSubmit(gate <-chan outcome) SubmitFunc {
	return func(ctx context.Context, payload map[string]string) (Result, error) {
		r.mu.Lock()
		r.calls = append(r.calls, payload)
		r.mu.Unlock()

		select {
		case o := <-gate:
			return o.result, o.err
		case <-ctx.Done():
			return Result{}, ctx.Err()
		}
	}
}

func newContactForm(t *testing.T, rec *recorder, gate <-chan outcome) *Controller {
	t.Helper()

	c := NewController(Config{
		Schema:         schemaOf(t, KindContact),
		Submit:         rec.gatedSubmit(gate),
		SuccessMessage: contactSuccessMessage,
		ModalID:        ModalNewContact,
		OnUpdate:       rec.onUpdate,
	}, WithNotifier(rec), WithModal(rec))
	t.Cleanup(c.Close)

	return c
}

func fill(t *testing.T, c *Controller, values map[string]string) {
	t.Helper()

	for field, value := range values {
		_, err := c.Change(field, value)
		require.NoError(t, err)
		_, err = c.Blur(field)
		require.NoError(t, err)
	}
}

func awaitIdle(t *testing.T, c *Controller) State {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	st, err := c.AwaitIdle(ctx)
	require.NoError(t, err)
	return st
}

func TestChange_KeepsIdleAndHidesUntouchedErrors(t *testing.T) {
	t.Parallel()
	c := newContactForm(t, &recorder{}, nil)

	st, err := c.Change("name", "J")
	require.NoError(t, err)
	assert.Equal(t, PhaseIdle, st.Phase)
	assert.Equal(t, "J", st.Values["name"])
	assert.Empty(t, st.Errors, "untouched fields show no errors")
	assert.Empty(t, st.VisibleError("name"))
}

func TestBlur_ValidatesTouchedFields(t *testing.T) {
	t.Parallel()
	c := newContactForm(t, &recorder{}, nil)

	st, err := c.Blur("name")
	require.NoError(t, err)
	assert.True(t, st.Touched["name"])
	assert.Equal(t, "Name is required", st.VisibleError("name"))
	assert.NotContains(t, st.Errors, "number")

	st, err = c.Change("name", "J")
	require.NoError(t, err)
	assert.Equal(t, "Name must be at least 2 characters", st.VisibleError("name"))

	st, err = c.Change("name", "Jo")
	require.NoError(t, err)
	assert.Empty(t, st.Errors)
	assert.Equal(t, PhaseIdle, st.Phase)
}

func TestCrossFieldRuleFollowsOtherField(t *testing.T) {
	t.Parallel()

	c := NewController(Config{
		Schema: schemaOf(t, KindRegister),
		Submit: func(context.Context, map[string]string) (Result, error) { return Result{}, nil },
	})
	defer c.Close()

	fill(t, c, map[string]string{"password": "secret12", "confirmPassword": "secret1"})
	st, err := c.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, "Passwords must match", st.VisibleError("confirmPassword"))

	st, err = c.Change("password", "secret1")
	require.NoError(t, err)
	assert.Empty(t, st.Errors, "matching the password clears the confirmation error")

	st, err = c.Change("password", "secret")
	require.NoError(t, err)
	assert.Equal(t, "Password should be of minimum 7 characters length", st.VisibleError("password"))
	assert.Equal(t, "Passwords must match", st.VisibleError("confirmPassword"))
}

func TestUnknownField(t *testing.T) {
	t.Parallel()
	c := newContactForm(t, &recorder{}, nil)

	_, err := c.Change("email", "x")
	assert.True(t, errors.Is(err, ErrUnknownField))

	_, err = c.Blur("email")
	assert.True(t, errors.Is(err, ErrUnknownField))
}

func TestSubmit_InvalidFormNeverCallsRemote(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	c := newContactForm(t, rec, nil)

	_, err := c.Change("name", "Rosie Simpson")
	require.NoError(t, err)

	st, err := c.Submit()
	require.NoError(t, err)

	assert.Equal(t, PhaseIdle, st.Phase)
	assert.True(t, st.Touched["number"])
	assert.Equal(t, "Phone number is required", st.VisibleError("number"))
	assert.False(t, st.Touched["name"], "valid fields are not touched by a failed submit")
	assert.Zero(t, st.Attempts)

	notes, modals, calls := rec.snapshot()
	assert.Empty(t, calls)
	assert.Empty(t, notes)
	assert.Empty(t, modals)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, []Phase{PhaseIdle, PhaseValidating, PhaseIdle}, rec.phases)
}

func TestSubmit_SuccessResetsAndNotifies(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	gate := make(chan outcome)
	c := newContactForm(t, rec, gate)

	fill(t, c, map[string]string{"name": "Rosie Simpson", "number": "459-12-56"})

	st, err := c.Submit()
	require.NoError(t, err)
	assert.Equal(t, PhaseSubmitting, st.Phase)
	assert.True(t, st.Busy())
	assert.Equal(t, 1, st.Attempts)

	gate <- outcome{result: Result{Fields: map[string]string{"id": "c-1"}}}
	st = awaitIdle(t, c)

	assert.Equal(t, PhaseIdle, st.Phase)
	assert.False(t, st.Busy())
	if diff := cmp.Diff(map[string]string{"name": "", "number": ""}, st.Values); diff != "" {
		t.Errorf("values not reset (-want +got):\n%s", diff)
	}
	assert.Empty(t, st.Touched)
	assert.Empty(t, st.Errors)
	require.NotNil(t, st.Result)
	assert.Equal(t, "c-1", st.Result.Fields["id"])

	notes, modals, calls := rec.snapshot()
	require.Len(t, calls, 1)
	assert.Equal(t, map[string]string{"name": "Rosie Simpson", "number": "459-12-56"}, calls[0])
	assert.Equal(t, []note{{severity: SeveritySuccess, message: contactSuccessMessage}}, notes)
	assert.Equal(t, []string{ModalNewContact}, modals)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	tail := rec.phases[len(rec.phases)-4:]
	assert.Equal(t, []Phase{PhaseValidating, PhaseSubmitting, PhaseSucceeded, PhaseIdle}, tail)
}

func TestSubmit_FailureKeepsValues(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	gate := make(chan outcome)
	c := newContactForm(t, rec, gate)

	values := map[string]string{"name": "Rosie Simpson", "number": "459-12-56"}
	fill(t, c, values)

	_, err := c.Submit()
	require.NoError(t, err)
	gate <- outcome{err: errors.New("502 from contacts API")}
	st := awaitIdle(t, c)

	assert.Equal(t, PhaseIdle, st.Phase)
	assert.Equal(t, values, st.Values)
	assert.Nil(t, st.Result)

	notes, modals, calls := rec.snapshot()
	assert.Len(t, calls, 1)
	assert.Equal(t, []note{{severity: SeverityError, message: DefaultFailureMessage}}, notes)
	assert.Empty(t, modals, "failed submissions keep the modal open")

	// The form stays usable for a retry.
	_, err = c.Submit()
	require.NoError(t, err)
	gate <- outcome{}
	st = awaitIdle(t, c)

	assert.Equal(t, 2, st.Attempts)
	_, _, calls = rec.snapshot()
	assert.Len(t, calls, 2)
}

func TestSubmit_IgnoredWhileSubmitting(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	gate := make(chan outcome)
	c := newContactForm(t, rec, gate)

	fill(t, c, map[string]string{"name": "Rosie Simpson", "number": "459-12-56"})

	first, err := c.Submit()
	require.NoError(t, err)
	require.True(t, first.Busy())

	for range 3 {
		st, err := c.Submit()
		require.NoError(t, err)
		assert.Equal(t, PhaseSubmitting, st.Phase)
		assert.Equal(t, 1, st.Attempts)
	}

	gate <- outcome{}
	awaitIdle(t, c)

	_, _, calls := rec.snapshot()
	assert.Len(t, calls, 1)
}

func TestChangeWhileSubmitting(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	gate := make(chan outcome)
	c := newContactForm(t, rec, gate)

	fill(t, c, map[string]string{"name": "Rosie Simpson", "number": "459-12-56"})
	_, err := c.Submit()
	require.NoError(t, err)

	st, err := c.Change("number", "459-12-57")
	require.NoError(t, err)
	assert.Equal(t, PhaseSubmitting, st.Phase)

	gate <- outcome{}
	awaitIdle(t, c)

	_, _, calls := rec.snapshot()
	require.Len(t, calls, 1)
	assert.Equal(t, "459-12-56", calls[0]["number"], "the payload is taken when the submission starts")
}

func TestClose_DiscardsLateSettlement(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	gate := make(chan outcome)
	c := newContactForm(t, rec, gate)

	fill(t, c, map[string]string{"name": "Rosie Simpson", "number": "459-12-56"})
	_, err := c.Submit()
	require.NoError(t, err)

	c.Close()
	c.Close()

	// The remote call still runs to completion.
	gate <- outcome{}

	notes, modals, calls := rec.snapshot()
	assert.Len(t, calls, 1)
	assert.Empty(t, notes)
	assert.Empty(t, modals)

	_, err = c.Change("name", "x")
	assert.ErrorIs(t, err, ErrClosed)
	_, err = c.Submit()
	assert.ErrorIs(t, err, ErrClosed)
	_, err = c.AwaitIdle(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestAwaitIdle_ReleasedByClose(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	gate := make(chan outcome, 1)
	c := newContactForm(t, rec, gate)

	fill(t, c, map[string]string{"name": "Rosie Simpson", "number": "459-12-56"})
	_, err := c.Submit()
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() {
		_, err := c.AwaitIdle(context.Background())
		errCh <- err
	}()

	require.Eventually(t, func() bool {
		_, _, calls := rec.snapshot()
		return len(calls) == 1
	}, time.Second, time.Millisecond)

	c.Close()
	assert.ErrorIs(t, <-errCh, ErrClosed)

	gate <- outcome{}
}

func TestAwaitIdle_ContextCancelled(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	gate := make(chan outcome)
	c := newContactForm(t, rec, gate)

	fill(t, c, map[string]string{"name": "Rosie Simpson", "number": "459-12-56"})
	_, err := c.Submit()
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = c.AwaitIdle(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	gate <- outcome{}
	awaitIdle(t, c)
}

func TestTimeout_FailsStuckSubmission(t *testing.T) {
	t.Parallel()
	rec := &recorder{}

	c := NewController(Config{
		Schema:  schemaOf(t, KindContact),
		Submit:  rec.gatedSubmit(nil),
		Timeout: 20 * time.Millisecond,
	}, WithNotifier(rec))
	defer c.Close()

	fill(t, c, map[string]string{"name": "Rosie Simpson", "number": "459-12-56"})
	_, err := c.Submit()
	require.NoError(t, err)

	st := awaitIdle(t, c)
	assert.Equal(t, PhaseIdle, st.Phase)
	assert.Equal(t, "Rosie Simpson", st.Values["name"])

	notes, _, _ := rec.snapshot()
	assert.Equal(t, []note{{severity: SeverityError, message: DefaultFailureMessage}}, notes)
}

func TestSubmitPanicIsAFailure(t *testing.T) {
	t.Parallel()
	rec := &recorder{}

	c := NewController(Config{
		Schema: schemaOf(t, KindContact),
		Submit: func(context.Context, map[string]string) (Result, error) { panic("boom") },
	}, WithNotifier(rec))
	defer c.Close()

	fill(t, c, map[string]string{"name": "Rosie Simpson", "number": "459-12-56"})
	_, err := c.Submit()
	require.NoError(t, err)
	awaitIdle(t, c)

	notes, _, _ := rec.snapshot()
	require.Len(t, notes, 1)
	assert.Equal(t, SeverityError, notes[0].severity)
}

func TestSnapshotIsACopy(t *testing.T) {
	t.Parallel()
	c := newContactForm(t, &recorder{}, nil)

	st, err := c.Change("name", "Rosie")
	require.NoError(t, err)
	st.Values["name"] = "mutated"

	again, err := c.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, "Rosie", again.Values["name"])
}

func TestNewController_PanicsWithoutSchemaOrSubmit(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { NewController(Config{}) })
	assert.Panics(t, func() { NewController(Config{Schema: schemaOf(t, KindLogin)}) })
}

func TestPhaseString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "idle", PhaseIdle.String())
	assert.Equal(t, "submitting", PhaseSubmitting.String())
	assert.Equal(t, "unknown", Phase(42).String())
}
