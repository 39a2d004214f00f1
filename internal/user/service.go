package user

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	id "olea/pkg/domain"
	dErrors "olea/pkg/domain-errors"
	"olea/pkg/platform/audit"
)

// Store persists accounts. Create must fail with a conflict when the email
// is already registered.
type Store interface {
	Create(ctx context.Context, u *User) error
	Get(ctx context.Context, uid id.UserID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, limit int) ([]User, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, uid id.UserID) error
}

// TokenIssuer mints access tokens on login.
type TokenIssuer interface {
	GenerateAccessToken(userID uuid.UUID, email string, expiresIn time.Duration) (string, error)
}

// Metrics counts account creation.
type Metrics interface {
	IncrementUsersCreated()
}

type Service struct {
	store    Store
	tokens   TokenIssuer
	tokenTTL time.Duration
	logger   *slog.Logger
	metrics  Metrics
	audit    audit.Publisher
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func WithMetrics(m Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditPublisher(p audit.Publisher) Option {
	return func(s *Service) { s.audit = p }
}

func NewService(store Store, tokens TokenIssuer, tokenTTL time.Duration, opts ...Option) *Service {
	s := &Service{
		store:    store,
		tokens:   tokens,
		tokenTTL: tokenTTL,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create registers an account. Emails are stored lowercased; a duplicate
// email is a conflict.
func (s *Service) Create(ctx context.Context, email, name, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid email")
	}
	if len(password) < 8 {
		return nil, dErrors.New(dErrors.CodeValidation, "password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "hash password")
	}

	now := time.Now().UTC()
	u := &User{
		ID:           id.NewUserID(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Create(ctx, u); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncrementUsersCreated()
	}
	audit.LogAudit(ctx, s.logger, s.audit, "user.created", "user_id", u.ID.String())
	return u, nil
}

// Login checks credentials and issues an access token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (string, *User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return "", nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}

	token, err := s.tokens.GenerateAccessToken(uuid.UUID(u.ID), u.Email, s.tokenTTL)
	if err != nil {
		return "", nil, dErrors.Wrap(err, dErrors.CodeInternal, "issue token")
	}

	s.logger.InfoContext(ctx, "user logged in", "user_id", u.ID)
	return token, u, nil
}

func (s *Service) Get(ctx context.Context, uid id.UserID) (*User, error) {
	return s.store.Get(ctx, uid)
}

func (s *Service) List(ctx context.Context, limit int) ([]User, error) {
	return s.store.List(ctx, limit)
}

// Update changes name and, when non-empty, the password.
func (s *Service) Update(ctx context.Context, uid id.UserID, name, password string) (*User, error) {
	u, err := s.store.Get(ctx, uid)
	if err != nil {
		return nil, err
	}

	if name != "" {
		u.Name = name
	}
	if password != "" {
		if len(password) < 8 {
			return nil, dErrors.New(dErrors.CodeValidation, "password must be at least 8 characters")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "hash password")
		}
		u.PasswordHash = string(hash)
	}
	u.UpdatedAt = time.Now().UTC()

	if err := s.store.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) Delete(ctx context.Context, uid id.UserID) error {
	if err := s.store.Delete(ctx, uid); err != nil {
		return err
	}
	audit.LogAudit(ctx, s.logger, s.audit, "user.deleted", "user_id", uid.String())
	return nil
}
