package form

import (
	"context"
	"fmt"

	"phonebook/internal/app/contact"
	"phonebook/internal/app/user"
)

// Kind identifies a form and selects its schema.
type Kind string

const (
	KindRegister Kind = "register"
	KindLogin    Kind = "login"
	KindContact  Kind = "contact"
)

// ModalNewContact is the modal the contact form is rendered in.
const ModalNewContact = "new"

const (
	registerSuccessMessage = "Your account has been created"
	loginSuccessMessage    = "Welcome back"
	contactSuccessMessage  = "Contact has been added"
)

// AuthAPI is the remote account service used by the register and login forms.
type AuthAPI interface {
	Register(ctx context.Context, name, email, password string) (user.Session, error)
	Login(ctx context.Context, email, password string) (user.Session, error)
}

// ContactsAPI is the remote contact service used by the contact form.
type ContactsAPI interface {
	AddContact(ctx context.Context, name, number string) (contact.Contact, error)
}

// RegisterConfig builds the register form: confirmPassword is checked locally and
// only name, email and password are sent.
func RegisterConfig(reg *Registry, api AuthAPI) (Config, error) {
	schema, err := reg.Schema(KindRegister)
	if err != nil {
		return Config{}, err
	}

	return Config{
		Schema: schema,
		Submit: func(ctx context.Context, payload map[string]string) (Result, error) {
			session, err := api.Register(ctx, payload["name"], payload["email"], payload["password"])
			if err != nil {
				return Result{}, err
			}
			return sessionResult(session), nil
		},
		SuccessMessage: registerSuccessMessage,
		FailureMessage: DefaultFailureMessage,
	}, nil
}

// LoginConfig builds the login form.
func LoginConfig(reg *Registry, api AuthAPI) (Config, error) {
	schema, err := reg.Schema(KindLogin)
	if err != nil {
		return Config{}, err
	}

	return Config{
		Schema: schema,
		Submit: func(ctx context.Context, payload map[string]string) (Result, error) {
			session, err := api.Login(ctx, payload["email"], payload["password"])
			if err != nil {
				return Result{}, err
			}
			return sessionResult(session), nil
		},
		SuccessMessage: loginSuccessMessage,
		FailureMessage: DefaultFailureMessage,
	}, nil
}

// ContactConfig builds the new-contact form, which closes ModalNewContact on success.
func ContactConfig(reg *Registry, api ContactsAPI) (Config, error) {
	schema, err := reg.Schema(KindContact)
	if err != nil {
		return Config{}, err
	}

	return Config{
		Schema: schema,
		Submit: func(ctx context.Context, payload map[string]string) (Result, error) {
			c, err := api.AddContact(ctx, payload["name"], payload["number"])
			if err != nil {
				return Result{}, err
			}
			return Result{Fields: map[string]string{
				"id":     c.ID,
				"name":   c.Name,
				"number": c.Number,
			}}, nil
		},
		SuccessMessage: contactSuccessMessage,
		FailureMessage: DefaultFailureMessage,
		ModalID:        ModalNewContact,
	}, nil
}

// ConfigFor selects the configuration of kind. The API a kind needs must not be nil.
func ConfigFor(kind Kind, reg *Registry, auth AuthAPI, contacts ContactsAPI) (Config, error) {
	switch kind {
	case KindRegister, KindLogin:
		if auth == nil {
			return Config{}, fmt.Errorf("form %s needs an AuthAPI", kind)
		}
		if kind == KindRegister {
			return RegisterConfig(reg, auth)
		}
		return LoginConfig(reg, auth)
	case KindContact:
		if contacts == nil {
			return Config{}, fmt.Errorf("form %s needs a ContactsAPI", kind)
		}
		return ContactConfig(reg, contacts)
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

func sessionResult(session user.Session) Result {
	return Result{Fields: map[string]string{
		"token": session.Token,
		"id":    session.User.ID,
		"name":  session.User.Name,
		"email": session.User.Email,
	}}
}
