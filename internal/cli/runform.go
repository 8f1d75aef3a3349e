package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"phonebook/internal/app/form"
	"phonebook/internal/pkg/logx"
)

// ErrNotSubmitted is returned when the user declines to retry a failed submission.
var ErrNotSubmitted = errors.New("cli: form was not submitted")

// terminalNotifier prints form notifications and remembers the last severity, which
// tells the form loop how a submission ended.
type terminalNotifier struct {
	out io.Writer

	mu   sync.Mutex
	last form.Severity
}

func (n *terminalNotifier) Notify(severity form.Severity, message string) {
	n.mu.Lock()
	n.last = severity
	n.mu.Unlock()

	mark := "✔"
	if severity == form.SeverityError {
		mark = "✘"
	}
	fmt.Fprintf(n.out, "%s %s\n", mark, message)
}

// Close implements form.ModalCloser. A terminal has no modal; the form loop just ends.
func (n *terminalNotifier) Close(modalID string) {
	logx.Debug("modal closed", "modal_id", modalID)
}

func (n *terminalNotifier) reset() {
	n.mu.Lock()
	n.last = ""
	n.mu.Unlock()
}

func (n *terminalNotifier) lastSeverity() form.Severity {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.last
}

// runForm asks for every field of cfg's schema, submits, and waits for the outcome.
// Every answer is a change followed by a blur, so the prompt's validator shows the
// same message the form would show on a touched field. A failed submission keeps
// the typed values as defaults and offers a retry.
func runForm(ctx context.Context, p Prompter, out io.Writer, cfg form.Config) (form.State, error) {
	notes := &terminalNotifier{out: out}
	ctrl := form.NewController(cfg,
		form.WithNotifier(notes),
		form.WithModal(notes),
		form.WithContext(ctx),
	)
	defer ctrl.Close()

	st, err := ctrl.Snapshot()
	if err != nil {
		return form.State{}, err
	}

	for {
		for _, f := range cfg.Schema.Fields {
			if st, err = askField(ctx, p, ctrl, f, st.Values[f.Name]); err != nil {
				return st, err
			}
		}

		notes.reset()
		if st, err = ctrl.Submit(); err != nil {
			return st, err
		}
		if st.Phase != form.PhaseSubmitting {
			// Validation failed; the prompts ask again with the current values.
			continue
		}

		if st, err = ctrl.AwaitIdle(ctx); err != nil {
			return st, err
		}
		if notes.lastSeverity() == form.SeveritySuccess {
			return st, nil
		}

		retry, err := p.Confirm(ctx, "Try again?", true)
		if err != nil {
			return st, err
		}
		if !retry {
			return st, ErrNotSubmitted
		}
	}
}

func askField(ctx context.Context, p Prompter, ctrl *form.Controller, f form.Field, current string) (form.State, error) {
	var st form.State

	in := InputConfig{
		Message: f.Label,
		Validator: func(answer string) error {
			var err error
			if st, err = ctrl.Change(f.Name, answer); err != nil {
				return err
			}
			if st, err = ctrl.Blur(f.Name); err != nil {
				return err
			}
			if msg := st.VisibleError(f.Name); msg != "" {
				return errors.New(msg)
			}
			return nil
		},
	}

	var err error
	if f.Secret {
		_, err = p.Password(ctx, in)
	} else {
		in.Default = current
		_, err = p.Input(ctx, in)
	}
	return st, err
}
