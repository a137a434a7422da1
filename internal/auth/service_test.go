package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"vocab-sprint/internal/domain"
	"vocab-sprint/internal/infra/memory"
)

func newTestService(now func() time.Time) *Service {
	return NewServiceWithCost(
		NewDirectory(),
		NewTokenIssuerWithClock("test-secret", time.Hour, now),
		memory.NewRevocationStoreWithClock(now),
		bcrypt.MinCost,
	)
}

func TestSignUpSignInAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(time.Now)

	grant, err := svc.SignUp(ctx, "  Player@Example.com ", "secret1")
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if grant.User.Email != "player@example.com" || grant.Token == "" {
		t.Fatalf("unexpected grant %+v", grant)
	}

	signedIn, err := svc.SignIn(ctx, "player@example.com", "secret1")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	user, err := svc.Authenticate(ctx, signedIn.Token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if user.ID != grant.User.ID {
		t.Fatalf("expected same user, got %s vs %s", user.ID, grant.User.ID)
	}
}

func TestSignInErrors(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(time.Now)
	if _, err := svc.SignUp(ctx, "a@b.co", "secret1"); err != nil {
		t.Fatalf("sign up: %v", err)
	}

	cases := []struct {
		email, password string
		want            error
		message         string
	}{
		{"a@b.co", "wrong-pass", domain.ErrInvalidCredentials, "Incorrect email or password."},
		{"nobody@b.co", "secret1", domain.ErrUserNotFound, "No account found with this email."},
		{"not-an-email", "secret1", domain.ErrInvalidEmail, "Please enter a valid email address."},
	}
	for _, tc := range cases {
		_, err := svc.SignIn(ctx, tc.email, tc.password)
		if !errors.Is(err, tc.want) {
			t.Errorf("%s: expected %v, got %v", tc.email, tc.want, err)
		}
		if got := Message(err); got != tc.message {
			t.Errorf("%s: got message %q, want %q", tc.email, got, tc.message)
		}
	}
}

func TestSignUpRules(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(time.Now)

	if _, err := svc.SignUp(ctx, "a@b.co", "12345"); !errors.Is(err, domain.ErrWeakPassword) {
		t.Fatalf("expected weak password, got %v", err)
	} else if Message(err) != "Password should be at least 6 characters." {
		t.Fatalf("unexpected message %q", Message(err))
	}
	if _, err := svc.SignUp(ctx, "a@b.co", "123456"); err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if _, err := svc.SignUp(ctx, "A@B.CO", "123456"); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected email taken, got %v", err)
	}
}

func TestSignOutRevokesToken(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(time.Now)
	grant, _ := svc.SignUp(ctx, "a@b.co", "secret1")

	if err := svc.SignOut(ctx, grant.Token); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	if _, err := svc.Authenticate(ctx, grant.Token); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected revoked token to fail, got %v", err)
	}

	again, _ := svc.SignIn(ctx, "a@b.co", "secret1")
	if _, err := svc.Authenticate(ctx, again.Token); err != nil {
		t.Fatalf("a fresh sign-in should work: %v", err)
	}
}

func TestExpiredAndForeignTokensRejected(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	svc := newTestService(func() time.Time { return now })
	grant, _ := svc.SignUp(ctx, "a@b.co", "secret1")

	other := NewTokenIssuer("other-secret", time.Hour)
	forged, _, _ := other.Issue(grant.User)
	if _, err := svc.Authenticate(ctx, forged); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected foreign signature rejected, got %v", err)
	}

	now = now.Add(2 * time.Hour)
	if _, err := svc.Authenticate(ctx, grant.Token); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected expired token rejected, got %v", err)
	}
}
