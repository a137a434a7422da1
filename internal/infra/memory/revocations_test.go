package memory

import (
	"context"
	"testing"
	"time"
)

func TestRevocationStoreExpires(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewRevocationStoreWithClock(func() time.Time { return now })
	ctx := context.Background()

	if err := store.Revoke(ctx, "jti-1", time.Hour); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if revoked, _ := store.IsRevoked(ctx, "jti-1"); !revoked {
		t.Fatalf("expected token revoked")
	}
	if revoked, _ := store.IsRevoked(ctx, "jti-2"); revoked {
		t.Fatalf("unknown token should not be revoked")
	}

	now = now.Add(2 * time.Hour)
	if revoked, _ := store.IsRevoked(ctx, "jti-1"); revoked {
		t.Fatalf("revocation should lapse with the token")
	}
}
