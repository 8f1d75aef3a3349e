package form

// Severity is the tone of a notification.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Notifier shows transient messages (toasts) to the user. Notify is called from the
// form's event loop and must not block or call back into the controller.
type Notifier interface {
	Notify(severity Severity, message string)
}

// ModalCloser closes the overlay a form is rendered in.
type ModalCloser interface {
	Close(modalID string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(severity Severity, message string)

func (f NotifierFunc) Notify(severity Severity, message string) { f(severity, message) }

// ModalCloserFunc adapts a function to ModalCloser.
type ModalCloserFunc func(modalID string)

func (f ModalCloserFunc) Close(modalID string) { f(modalID) }

type nopNotifier struct{}

func (nopNotifier) Notify(Severity, string) {}
