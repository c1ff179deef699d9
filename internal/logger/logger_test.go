package logger

import (
	"context"
	"net/http/httptest"
	"testing"
)

func TestNewLogger(t *testing.T) {
	l := NewLogger("test")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	// must not panic
	l.Debug().Str("k", "v").Msg("smoke")
}

func TestNopDiscards(t *testing.T) {
	l := Nop()
	l.Error().Msg("discarded")
}

func TestFromContextRoundTrip(t *testing.T) {
	l := Nop()
	ctx := l.WithContext(context.Background())

	got := FromContext(ctx)
	if got == nil {
		t.Fatal("expected logger from context")
	}
}

func TestFromContextWithoutLogger(t *testing.T) {
	got := FromContext(context.Background())
	if got == nil {
		t.Fatal("FromContext must never return nil")
	}
}

func TestFromRequest(t *testing.T) {
	l := Nop()
	r := httptest.NewRequest("GET", "/", nil)
	r = r.WithContext(l.WithContext(r.Context()))

	if FromRequest(r) == nil {
		t.Fatal("expected logger from request")
	}
}
