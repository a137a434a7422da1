package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"vocab-sprint/internal/domain"
)

// Revocations remembers signed-out tokens until they expire.
type Revocations interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Grant is the result of a successful sign-up or sign-in.
type Grant struct {
	User      domain.User `json:"user"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

// Service is the identity provider: accounts, sign-in tokens and sign-out.
type Service struct {
	users       *Directory
	tokens      *TokenIssuer
	revocations Revocations
	hashCost    int
}

func NewService(users *Directory, tokens *TokenIssuer, revocations Revocations) *Service {
	return NewServiceWithCost(users, tokens, revocations, bcrypt.DefaultCost)
}

// NewServiceWithCost lets tests use a cheap bcrypt cost.
func NewServiceWithCost(users *Directory, tokens *TokenIssuer, revocations Revocations, cost int) *Service {
	return &Service{users: users, tokens: tokens, revocations: revocations, hashCost: cost}
}

// SignUp registers an account and signs it in.
func (s *Service) SignUp(ctx context.Context, email, password string) (Grant, error) {
	if err := ValidateEmail(email); err != nil {
		return Grant{}, err
	}
	if err := validatePassword(password); err != nil {
		return Grant{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return Grant{}, fmt.Errorf("hash password: %w", err)
	}
	user, err := s.users.create(NormalizeEmail(email), hash)
	if err != nil {
		return Grant{}, err
	}
	log.Printf("account created: %s", user.ID)
	return s.grant(user)
}

// SignIn checks the password and issues a token.
func (s *Service) SignIn(_ context.Context, email, password string) (Grant, error) {
	if err := ValidateEmail(email); err != nil {
		return Grant{}, err
	}
	acct, ok := s.users.findByEmail(NormalizeEmail(email))
	if !ok {
		return Grant{}, domain.ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword(acct.hash, []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return Grant{}, domain.ErrInvalidCredentials
		}
		return Grant{}, fmt.Errorf("compare password: %w", err)
	}
	return s.grant(acct.user)
}

// SignOut revokes the token for the rest of its lifetime.
func (s *Service) SignOut(ctx context.Context, token string) error {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return err
	}
	return s.revocations.Revoke(ctx, claims.ID, s.tokens.Remaining(claims))
}

// Authenticate resolves a token to its user.
func (s *Service) Authenticate(ctx context.Context, token string) (domain.User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return domain.User{}, err
	}
	revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return domain.User{}, err
	}
	if revoked {
		return domain.User{}, fmt.Errorf("%w: signed out", domain.ErrUnauthenticated)
	}
	user, ok := s.users.Lookup(claims.Subject)
	if !ok {
		return domain.User{}, fmt.Errorf("%w: unknown account", domain.ErrUnauthenticated)
	}
	return user, nil
}

func (s *Service) grant(user domain.User) (Grant, error) {
	token, claims, err := s.tokens.Issue(user)
	if err != nil {
		return Grant{}, err
	}
	return Grant{User: user, Token: token, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Message is the user-facing text for an identity error.
func Message(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "Incorrect email or password."
	case errors.Is(err, domain.ErrUserNotFound):
		return "No account found with this email."
	case errors.Is(err, domain.ErrEmailTaken):
		return "An account already exists for this email."
	case errors.Is(err, domain.ErrWeakPassword):
		return fmt.Sprintf("Password should be at least %d characters.", MinPasswordLength)
	case errors.Is(err, domain.ErrInvalidEmail):
		return "Please enter a valid email address."
	case errors.Is(err, domain.ErrUnauthenticated):
		return "Please sign in again."
	}
	return "An error occurred. Please try again."
}
