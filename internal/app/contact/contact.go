/*
Package contact manages the personal address book of each user.
*/
package contact

import (
	"context"
	"sort"
	"strings"
	"time"

	"phonebook/internal/app/avatar"
	"phonebook/internal/app/db"
	"phonebook/internal/pkg/errs"
	"phonebook/internal/pkg/logx"
	"phonebook/internal/pkg/textx"

	"github.com/google/uuid"
)

// Contact is one address book entry as served to clients.
type Contact struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Number    string      `json:"number"`
	Avatar    avatar.Spec `json:"avatar"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// FromRecord converts a stored row into its public view.
func FromRecord(c db.Contact) Contact {
	return Contact{
		ID:        c.ID.String(),
		Name:      c.Name,
		Number:    c.Number,
		Avatar:    avatar.Derive(c.Name),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// Validator checks submitted values and returns per-field messages.
// *form.Schema satisfies it.
type Validator interface {
	ValidatePayload(payload map[string]string) map[string]string
}

// Service implements the contact operations on top of a db.Store.
type Service struct {
	store     db.Store
	validator Validator
}

// NewService returns a Service. A nil validator accepts any non-empty input.
func NewService(store db.Store, validator Validator) *Service {
	return &Service{store: store, validator: validator}
}

// List returns the owner's contacts ordered by name, ignoring case.
func (s *Service) List(ctx context.Context, ownerID string) ([]Contact, error) {
	owner, err := parseOwner(ownerID)
	if err != nil {
		return nil, err
	}

	rows, err := s.store.ListContacts(ctx, owner)
	if err != nil {
		return nil, errs.NewError(errs.ErrUnknown, err)
	}

	items := make([]Contact, len(rows))
	for i, row := range rows {
		items[i] = FromRecord(row)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return strings.ToLower(items[i].Name) < strings.ToLower(items[j].Name)
	})

	return items, nil
}

// Add creates a contact for owner.
func (s *Service) Add(ctx context.Context, ownerID, name, number string) (Contact, error) {
	owner, err := parseOwner(ownerID)
	if err != nil {
		return Contact{}, err
	}

	name, number, err = s.clean(name, number)
	if err != nil {
		return Contact{}, err
	}

	row, err := s.store.CreateContact(ctx, db.CreateContactParams{OwnerID: owner, Name: name, Number: number})
	if err != nil {
		if db.IsNotFound(err) {
			return Contact{}, errs.NewError(errs.ErrUserNotFound)
		}
		return Contact{}, errs.NewError(errs.ErrUnknown, err)
	}

	logx.Info("Contact added", "owner_id", ownerID, "contact_id", row.ID.String())
	return FromRecord(row), nil
}

// Update replaces the name and number of one of owner's contacts.
func (s *Service) Update(ctx context.Context, ownerID, id, name, number string) (Contact, error) {
	owner, err := parseOwner(ownerID)
	if err != nil {
		return Contact{}, err
	}
	contactID, err := uuid.Parse(id)
	if err != nil {
		return Contact{}, errs.NewError(errs.ErrContactNotFound)
	}

	name, number, err = s.clean(name, number)
	if err != nil {
		return Contact{}, err
	}

	row, err := s.store.UpdateContact(ctx, db.UpdateContactParams{ID: contactID, OwnerID: owner, Name: name, Number: number})
	if err != nil {
		if db.IsNotFound(err) {
			return Contact{}, errs.NewError(errs.ErrContactNotFound)
		}
		return Contact{}, errs.NewError(errs.ErrUnknown, err)
	}

	return FromRecord(row), nil
}

// Delete removes one of owner's contacts.
func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	owner, err := parseOwner(ownerID)
	if err != nil {
		return err
	}
	contactID, err := uuid.Parse(id)
	if err != nil {
		return errs.NewError(errs.ErrContactNotFound)
	}

	if err := s.store.DeleteContact(ctx, owner, contactID); err != nil {
		if db.IsNotFound(err) {
			return errs.NewError(errs.ErrContactNotFound)
		}
		return errs.NewError(errs.ErrUnknown, err)
	}

	logx.Info("Contact deleted", "owner_id", ownerID, "contact_id", id)
	return nil
}

// Book returns the address book of one owner.
func (s *Service) Book(ownerID string) *Book {
	return &Book{svc: s, ownerID: ownerID}
}

func (s *Service) clean(name, number string) (string, string, error) {
	name = textx.CleanName(name)
	number = textx.CleanNumber(number)

	var failures map[string]string
	if s.validator != nil {
		failures = s.validator.ValidatePayload(map[string]string{"name": name, "number": number})
	} else if name == "" || number == "" {
		failures = map[string]string{}
		if name == "" {
			failures["name"] = "Name is required"
		}
		if number == "" {
			failures["number"] = "Phone number is required"
		}
	}

	if len(failures) > 0 {
		return "", "", errs.NewError(errs.ErrValidationFailed).WithFields(failures)
	}
	return name, number, nil
}

func parseOwner(ownerID string) (uuid.UUID, error) {
	owner, err := uuid.Parse(ownerID)
	if err != nil {
		return uuid.Nil, errs.NewError(errs.ErrUnauthorized)
	}
	return owner, nil
}

// Book is a Service bound to a single owner.
type Book struct {
	svc     *Service
	ownerID string
}

// AddContact creates a contact in the book.
func (b *Book) AddContact(ctx context.Context, name, number string) (Contact, error) {
	return b.svc.Add(ctx, b.ownerID, name, number)
}

func (b *Book) List(ctx context.Context) ([]Contact, error) {
	return b.svc.List(ctx, b.ownerID)
}
