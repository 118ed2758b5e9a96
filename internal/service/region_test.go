package service

import (
	"errors"
	"testing"
)

func TestRegionResolver_Resolve(t *testing.T) {
	r := NewRegionResolver("wss://default.example.com", map[string]string{
		"LIVEKIT_URL_EU": "wss://eu.example.com",
	})

	t.Run("empty region uses default", func(t *testing.T) {
		url, err := r.Resolve("")
		if err != nil || url != "wss://default.example.com" {
			t.Fatalf("expected default url, got %q, %v", url, err)
		}
	})

	t.Run("region is uppercased", func(t *testing.T) {
		url, err := r.Resolve("eu")
		if err != nil || url != "wss://eu.example.com" {
			t.Fatalf("expected eu url, got %q, %v", url, err)
		}
	})

	t.Run("idempotente", func(t *testing.T) {
		first, err1 := r.Resolve("eu")
		second, err2 := r.Resolve("eu")
		if first != second || err1 != nil || err2 != nil {
			t.Fatalf("expected stable resolution, got %q/%v and %q/%v", first, err1, second, err2)
		}
	})

	t.Run("unset override never falls back", func(t *testing.T) {
		url, err := r.Resolve("us")
		if !errors.Is(err, ErrRegionNotConfigured) {
			t.Fatalf("expected ErrRegionNotConfigured, got %q, %v", url, err)
		}
		if url != "" {
			t.Fatalf("expected no url on failure, got %q", url)
		}
		if err.Error() != "LIVEKIT_URL_US is not defined" {
			t.Fatalf("unexpected message %q", err.Error())
		}
	})
}

func TestRegionResolver_MissingDefault(t *testing.T) {
	r := NewRegionResolver("", nil)
	if _, err := r.Resolve(""); !errors.Is(err, ErrRegionNotConfigured) {
		t.Fatalf("expected ErrRegionNotConfigured, got %v", err)
	}
}
