package cache

import (
	"context"
	"errors"
	"testing"
)

func TestNewRedisCacheRequiresAddr(t *testing.T) {
	if _, err := NewRedisCache(context.Background(), Options{}); !errors.Is(err, ErrMissingAddr) {
		t.Fatalf("expected ErrMissingAddr, got %v", err)
	}
}

func TestNamespacedKey(t *testing.T) {
	if got := namespaced("txs:ADDR:1000:30"); got != "addrlink:txs:ADDR:1000:30" {
		t.Fatalf("unexpected key %s", got)
	}
}
