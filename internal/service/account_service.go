package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"devconnect/internal/auth"
	"devconnect/internal/events"
	"devconnect/internal/models"
	"devconnect/internal/observability"
	"devconnect/internal/repository"
	"devconnect/internal/validation"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/crypto/bcrypt"
)

// TokenIssuer is satisfied by *auth.TokenManager.
type TokenIssuer interface {
	Issue(accountID string) (string, error)
	Revoke(ctx context.Context, identity *auth.Identity) error
}

type AccountService struct {
	accounts   repository.AccountRepository
	tokens     TokenIssuer
	events     events.Publisher
	bcryptCost int
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

func NewAccountService(accounts repository.AccountRepository, tokens TokenIssuer, publisher events.Publisher) *AccountService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &AccountService{
		accounts:   accounts,
		tokens:     tokens,
		events:     publisher,
		bcryptCost: bcrypt.DefaultCost,
	}
}

// WithBcryptCost lowers the hashing cost, for tests and seeding.
func (s *AccountService) WithBcryptCost(cost int) *AccountService {
	s.bcryptCost = cost
	return s
}

// GravatarURL returns the avatar the web client shows for email.
func GravatarURL(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return "//www.gravatar.com/avatar/" + hex.EncodeToString(sum[:]) + "?s=200&r=pg&d=mm"
}

// Register creates the account and returns a token for it.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (_ string, err error) {
	span, ctx := observability.StartServiceSpan(ctx, "AccountService", "Register")
	defer func() { span.End(err) }()

	email := strings.ToLower(strings.TrimSpace(in.Email))

	var v validation.Validator
	v.Required("name", in.Name, "Name is required")
	v.Email("email", email, "Please include a valid email")
	v.Check(validation.ValidatePassword(in.Password) == nil, "password",
		fmt.Sprintf("Please enter a password with %d or more characters", validation.MinPasswordLength))
	if err := v.Err(); err != nil {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return "", models.NewInternalError(err)
	}

	account := &models.Account{
		Name:     strings.TrimSpace(in.Name),
		Email:    email,
		Password: string(hash),
		Avatar:   GravatarURL(email),
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return "", models.NewValidationError("User already exists")
		}
		return "", models.NewInternalError(err)
	}
	span.AddAttributes(attribute.String("account.id", account.ID))

	_ = s.events.Publish(ctx, events.Event{Type: events.AccountRegistered, ActorID: account.ID})

	token, err := s.tokens.Issue(account.ID)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return token, nil
}

// Login checks the credentials and returns a fresh token.
func (s *AccountService) Login(ctx context.Context, in LoginInput) (_ string, err error) {
	span, ctx := observability.StartServiceSpan(ctx, "AccountService", "Login")
	defer func() { span.End(err) }()

	email := strings.ToLower(strings.TrimSpace(in.Email))

	var v validation.Validator
	v.Email("email", email, "Please include a valid email")
	v.Required("password", in.Password, "Password is required")
	if err := v.Err(); err != nil {
		return "", err
	}

	invalid := models.NewValidationError("Invalid Credentials")

	account, err := s.accounts.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		observability.AuthFailures.WithLabelValues("InvalidCredentials").Inc()
		return "", invalid
	}
	if err != nil {
		return "", models.NewInternalError(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(in.Password)); err != nil {
		observability.AuthFailures.WithLabelValues("InvalidCredentials").Inc()
		return "", invalid
	}

	token, err := s.tokens.Issue(account.ID)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return token, nil
}

// Me returns the caller's account. The password hash never leaves the
// service because Account omits it from JSON.
func (s *AccountService) Me(ctx context.Context, accountID string) (*models.Account, error) {
	account, err := s.accounts.GetByID(ctx, models.CanonicalID(accountID))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, models.NewNotFoundError("User not found")
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return account, nil
}

// Logout revokes the token the caller authenticated with.
func (s *AccountService) Logout(ctx context.Context, identity *auth.Identity) error {
	if err := s.tokens.Revoke(ctx, identity); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
