package codec_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/goliatone/go-fetchforms/pkg/codec"
)

func TestRegistryDecode(t *testing.T) {
	reg := codec.NewRegistry()

	packed, err := msgpack.Marshal(map[string]any{
		"errors": map[string]any{"email": map[string]any{"messages": []string{"required"}}},
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	want := map[string]any{
		"errors": map[string]any{"email": map[string]any{"messages": []any{"required"}}},
	}

	cases := []struct {
		name        string
		contentType string
		body        []byte
	}{
		{"json", "application/json; charset=utf-8", []byte(`{"errors":{"email":{"messages":["required"]}}}`)},
		{"problem json", "application/problem+json", []byte(`{"errors":{"email":{"messages":["required"]}}}`)},
		{"missing type", "", []byte(`{"errors":{"email":{"messages":["required"]}}}`)},
		{"msgpack", "application/msgpack", packed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := reg.Decode(tc.contentType, tc.body)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if diff := cmp.Diff(any(want), got); diff != "" {
				t.Fatalf("decoded mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRegistryDecode_Errors(t *testing.T) {
	reg := codec.NewRegistry()

	if _, err := reg.Decode("application/json", []byte("  ")); !errors.Is(err, codec.ErrEmptyBody) {
		t.Fatalf("expected ErrEmptyBody, got %v", err)
	}
	if _, err := reg.Decode("text/html", []byte("<html>")); err == nil {
		t.Fatalf("expected html body to be undecodable")
	}
}

func TestLookup(t *testing.T) {
	body := map[string]any{"responseJSON": map[string]any{"errors": map[string]any{"x": 1.0}}}

	got, ok := codec.Lookup(body, "responseJSON", "errors", "x")
	if !ok || got != 1.0 {
		t.Fatalf("expected 1, got %v (%v)", got, ok)
	}
	if _, ok := codec.Lookup(body, "errors"); ok {
		t.Fatalf("expected missing path")
	}
}
