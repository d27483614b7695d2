package service

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"finbank/internal/audit"
	"finbank/internal/ownership"
	usermetrics "finbank/internal/users/metrics"
	"finbank/internal/users/models"
	"finbank/pkg/domain"
	dErrors "finbank/pkg/domain-errors"
	"finbank/pkg/platform/sentinel"
	"finbank/pkg/requestcontext"
)

// Store is the persistence collaborator for user records.
type Store interface {
	CreateIfEmailAvailable(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id domain.UserID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id domain.UserID) error
}

// AccountCounter reports how many active accounts a user owns. Deletion is
// refused while any remain.
type AccountCounter interface {
	CountByOwner(ctx context.Context, owner domain.UserID) (int, error)
}

// Service orchestrates user identity management.
type Service struct {
	store    Store
	accounts AccountCounter
	logger   *slog.Logger
	metrics  *usermetrics.Metrics
	audit    audit.Recorder
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *usermetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditRecorder(r audit.Recorder) Option {
	return func(s *Service) { s.audit = r }
}

func New(store Store, accounts AccountCounter, opts ...Option) *Service {
	s := &Service{
		store:    store,
		accounts: accounts,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterParams carries the fields of a registration request.
type RegisterParams struct {
	Email    string
	Password string
	Name     string
	Address  models.Address
	Phone    string
}

// Register creates a new user with a bcrypt-hashed credential. Duplicate
// emails (case-insensitive) fail with a conflict.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*models.User, error) {
	if len(params.Password) < 8 {
		return nil, dErrors.New(dErrors.CodeValidation, "password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	user, err := models.NewUser(domain.NewUserID(), params.Email, string(hash), params.Name, params.Address, params.Phone, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	if err := s.store.CreateIfEmailAvailable(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "a user with this email already exists")
		}
		return nil, wrapStoreErr(err, "failed to create user")
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID)
	s.metrics.IncrementUsersCreated()
	audit.Emit(ctx, s.audit, audit.Event{
		Actor:    user.ID.String(),
		Action:   audit.ActionUserRegistered,
		Resource: user.ID.String(),
	})
	return user, nil
}

// Authenticate verifies an email/password pair and returns the user. Both a
// missing user and a wrong password produce the same unauthorized error so
// login attempts cannot probe for registered emails.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
		}
		return nil, wrapStoreErr(err, "failed to look up user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
	}
	return user, nil
}

// Get returns the target user. Principals may only read their own record.
func (s *Service) Get(ctx context.Context, principal, target domain.UserID) (*models.User, error) {
	user, err := s.find(ctx, target)
	if err != nil {
		return nil, err
	}
	if err := ownership.RequireSelf(principal, user.ID); err != nil {
		return nil, err
	}
	return user, nil
}

// Update applies a partial update to the principal's own record. Blank
// fields are skipped; an email change re-checks uniqueness.
func (s *Service) Update(ctx context.Context, principal, target domain.UserID, update models.UserUpdate) (*models.User, error) {
	if err := update.Validate(); err != nil {
		return nil, err
	}

	user, err := s.find(ctx, target)
	if err != nil {
		return nil, err
	}
	if err := ownership.RequireSelf(principal, user.ID); err != nil {
		return nil, err
	}

	user.ApplyUpdate(update, requestcontext.Now(ctx))
	if err := s.store.Update(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "a user with this email already exists")
		}
		return nil, wrapStoreErr(err, "failed to update user")
	}

	audit.Emit(ctx, s.audit, audit.Event{
		Actor:    principal.String(),
		Action:   audit.ActionUserUpdated,
		Resource: user.ID.String(),
	})
	return user, nil
}

// Delete removes the principal's own record. Refused while the user still
// owns active accounts.
func (s *Service) Delete(ctx context.Context, principal, target domain.UserID) error {
	user, err := s.find(ctx, target)
	if err != nil {
		return err
	}
	if err := ownership.RequireSelf(principal, user.ID); err != nil {
		return err
	}

	count, err := s.accounts.CountByOwner(ctx, user.ID)
	if err != nil {
		return wrapStoreErr(err, "failed to count accounts")
	}
	if count > 0 {
		return dErrors.New(dErrors.CodeConflict, "user cannot be deleted while they have bank accounts")
	}

	if err := s.store.Delete(ctx, user.ID); err != nil {
		return wrapStoreErr(err, "failed to delete user")
	}

	s.logger.InfoContext(ctx, "user deleted", "user_id", user.ID)
	s.metrics.IncrementUsersDeleted()
	audit.Emit(ctx, s.audit, audit.Event{
		Actor:    principal.String(),
		Action:   audit.ActionUserDeleted,
		Resource: user.ID.String(),
	})
	return nil
}

func (s *Service) find(ctx context.Context, id domain.UserID) (*models.User, error) {
	if id.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "user id is required")
	}
	user, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user was not found")
		}
		return nil, wrapStoreErr(err, "failed to look up user")
	}
	return user, nil
}

// wrapStoreErr classifies a store failure, keeping deadline expiry distinct
// from internal faults.
func wrapStoreErr(err error, internalMsg string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "request timed out")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, internalMsg)
}
