package token_test

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/goliatone/go-fetchforms/pkg/token"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name         string
		in           token.Config
		wantVersion  string
		wantWarnings int
	}{
		{"numeric", token.Config{Version: "3", SiteKey: "key"}, "v3", 0},
		{"upper", token.Config{Version: "V3", SiteKey: "key"}, "v3", 0},
		{"default", token.Config{SiteKey: "key"}, "v3", 0},
		{"unsupported", token.Config{Version: "2", SiteKey: "key"}, "v2", 1},
		{"missing key", token.Config{Version: "v3"}, "v3", 1},
		{"both", token.Config{Version: "Enterprise"}, "enterprise", 2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			core, logs := observer.New(zap.WarnLevel)
			got := token.Normalize(tc.in, zap.New(core))
			if got.Version != tc.wantVersion {
				t.Fatalf("version = %q, want %q", got.Version, tc.wantVersion)
			}
			if n := logs.Len(); n != tc.wantWarnings {
				t.Fatalf("warnings = %d, want %d", n, tc.wantWarnings)
			}
		})
	}
}

func TestStatic(t *testing.T) {
	tok, err := token.Static("abc").Token(context.Background(), "key", token.Action)
	if err != nil || tok != "abc" {
		t.Fatalf("expected abc, got %q (%v)", tok, err)
	}

	if _, err := token.Static("").Token(context.Background(), "key", token.Action); !errors.Is(err, token.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := token.Static("abc").Token(ctx, "key", token.Action); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
