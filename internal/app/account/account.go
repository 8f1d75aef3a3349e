/*
Package account registers users, signs them in and maintains their profile.
*/
package account

import (
	"context"
	"errors"
	"io"
	"time"

	"phonebook/internal/app/db"
	"phonebook/internal/app/storage"
	"phonebook/internal/app/user"
	"phonebook/internal/pkg/auth/jwt"
	"phonebook/internal/pkg/errs"
	"phonebook/internal/pkg/logx"
	"phonebook/internal/pkg/textx"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Validator checks submitted registration values; *form.Schema satisfies it.
type Validator interface {
	ValidatePayload(payload map[string]string) map[string]string
}

// Config wires a Service.
type Config struct {
	Store     db.Store
	JWTSecret string

	// Photos is nil when no object storage is configured; avatar uploads are then refused.
	Photos storage.PhotoStore

	// Validator re-checks registration input; nil skips the check.
	Validator Validator

	// TokenTTL defaults to jwt.UserIdentityExpiration.
	TokenTTL time.Duration

	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
}

// Service implements the account operations.
type Service struct {
	cfg Config
}

func NewService(cfg Config) *Service {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = jwt.UserIdentityExpiration
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &Service{cfg: cfg}
}

// Register creates an account and signs it in.
func (s *Service) Register(ctx context.Context, name, email, password string) (user.Session, error) {
	name = textx.CleanName(name)
	email = textx.CleanEmail(email)

	if s.cfg.Validator != nil {
		failures := s.cfg.Validator.ValidatePayload(map[string]string{
			"name":     name,
			"email":    email,
			"password": password,
		})
		if len(failures) > 0 {
			return user.Session{}, errs.NewError(errs.ErrValidationFailed).WithFields(failures)
		}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return user.Session{}, errs.NewError(errs.ErrUnknown, err)
	}

	row, err := s.cfg.Store.CreateUser(ctx, db.CreateUserParams{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			logx.Warn("registration conflict: email already exists", "email", email)
			return user.Session{}, errs.NewError(errs.ErrUserAlreadyExists)
		}
		return user.Session{}, errs.NewError(errs.ErrUnknown, err)
	}

	s.touchLastLogin(ctx, row.ID)
	logx.Info("User registered", "user_id", row.ID.String())

	return s.session(row)
}

// Login verifies credentials. Unknown emails and wrong passwords yield the same error.
func (s *Service) Login(ctx context.Context, email, password string) (user.Session, error) {
	email = textx.CleanEmail(email)

	row, err := s.cfg.Store.GetUserByEmail(ctx, email)
	if err != nil {
		if !db.IsNotFound(err) {
			return user.Session{}, errs.NewError(errs.ErrUnknown, err)
		}
		logx.Warn("login: unknown email", "email", email)
		return user.Session{}, errs.NewError(errs.ErrInvalidCredentials)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(row.PasswordHash), []byte(password)); err != nil {
		logx.Warn("login: password mismatch", "user_id", row.ID.String())
		return user.Session{}, errs.NewError(errs.ErrInvalidCredentials)
	}

	s.touchLastLogin(ctx, row.ID)

	return s.session(row)
}

// Current returns the profile of userID.
func (s *Service) Current(ctx context.Context, userID string) (user.User, error) {
	row, err := s.load(ctx, userID)
	if err != nil {
		return user.User{}, err
	}
	return user.FromRecord(row), nil
}

// Photo is an uploaded profile picture.
type Photo struct {
	Body        io.Reader
	ContentType string

	// Ext is the file extension matching ContentType, e.g. ".png".
	Ext string
}

// UpdateAvatar stores photo as the profile picture of userID and removes the previous one.
func (s *Service) UpdateAvatar(ctx context.Context, userID string, photo Photo) (user.User, error) {
	if s.cfg.Photos == nil {
		return user.User{}, errs.NewError(errs.ErrPhotoUploadDisabled)
	}

	row, err := s.load(ctx, userID)
	if err != nil {
		return user.User{}, err
	}

	key := storage.AvatarKey(row.ID.String(), photo.Ext)
	url, err := s.cfg.Photos.Upload(ctx, key, photo.ContentType, photo.Body)
	if err != nil {
		return user.User{}, errs.NewError(errs.ErrFileStorageFailed)
	}

	updated, err := s.cfg.Store.UpdateUserAvatar(ctx, db.UpdateUserAvatarParams{ID: row.ID, AvatarKey: key, AvatarURL: url})
	if err != nil {
		if delErr := s.cfg.Photos.Delete(ctx, key); delErr != nil {
			logx.Error(delErr, "avatar: failed to remove orphaned upload", "key", key)
		}
		return user.User{}, errs.NewError(errs.ErrUnknown, err)
	}

	if row.AvatarKey != "" {
		if err := s.cfg.Photos.Delete(ctx, row.AvatarKey); err != nil {
			logx.Error(err, "avatar: failed to remove previous photo", "key", row.AvatarKey)
		}
	}

	return user.FromRecord(updated), nil
}

func (s *Service) load(ctx context.Context, userID string) (db.User, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return db.User{}, errs.NewError(errs.ErrUnauthorized)
	}

	row, err := s.cfg.Store.GetUserByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return db.User{}, errs.NewError(errs.ErrUserNotFound)
		}
		return db.User{}, errs.NewError(errs.ErrUnknown, err)
	}
	return row, nil
}

func (s *Service) session(row db.User) (user.Session, error) {
	payload := &jwt.Payload{
		ID:    row.ID.String(),
		Email: row.Email,
		Name:  row.Name,
	}

	token, err := jwt.GenerateToken(payload, s.cfg.JWTSecret, s.cfg.TokenTTL)
	if err != nil {
		return user.Session{}, errs.NewError(errs.ErrUnknown, errors.Join(errors.New("jwt generation failed"), err))
	}

	return user.Session{Token: token, User: user.FromRecord(row)}, nil
}

func (s *Service) touchLastLogin(ctx context.Context, id uuid.UUID) {
	if err := s.cfg.Store.UpdateLastLogin(ctx, id, time.Now()); err != nil {
		logx.Error(err, "failed to update last_login_at", "user_id", id.String())
	}
}
