// Package themetest provides shared contract tests that verify any
// theme.Engine implementation behaves correctly. Every engine's test
// file should call TestEngineContract to ensure conformance.
//
// The candidate-producing tests require a reachable completion service
// (or a mock). Skip them via the factory when none is available.
package themetest

import (
	"context"
	"strings"
	"testing"

	"github.com/HerbHall/themeforge/pkg/colorspace"
	"github.com/HerbHall/themeforge/pkg/theme"
)

// TestEngineContract runs a suite of behavioral contract tests against
// any theme.Engine implementation. Call this from each engine's _test.go:
//
//	func TestContract(t *testing.T) {
//	    themetest.TestEngineContract(t, func() theme.Engine { return newTestClient(t, srv.URL) })
//	}
func TestEngineContract(t *testing.T, factory func() theme.Engine) {
	t.Helper()

	t.Run("GenerateTheme_returns_complete_candidate", func(t *testing.T) {
		e := factory()
		c, err := e.GenerateTheme(context.Background(), "ocean waves", theme.PromptOptions{
			DiversityLevel: theme.DiversityStandard,
		})
		if err != nil {
			t.Fatalf("GenerateTheme() error = %v", err)
		}
		if c == nil {
			t.Fatal("GenerateTheme() returned nil candidate")
		}
		if c.ThemeName == "" {
			t.Error("candidate has empty ThemeName")
		}
		for i, hex := range c.AllColors() {
			if !colorspace.IsValidHex(hex) {
				t.Errorf("color %d = %q, want valid hex", i, hex)
			}
		}
		if c.Confidence < 0 || c.Confidence > 1 {
			t.Errorf("Confidence = %v, want within [0, 1]", c.Confidence)
		}
	})

	t.Run("ValidatePrompt_rejects_empty", func(t *testing.T) {
		e := factory()
		v := e.ValidatePrompt("")
		if v.IsValid {
			t.Error("empty prompt validated as ok")
		}
		if len(v.Errors) == 0 {
			t.Error("invalid result carries no errors")
		}
	})

	t.Run("ValidatePrompt_rejects_overlong", func(t *testing.T) {
		e := factory()
		v := e.ValidatePrompt(strings.Repeat("x", 200))
		if v.IsValid {
			t.Error("200-char prompt validated as ok")
		}
	})

	t.Run("ValidatePrompt_sanitizes_whitespace", func(t *testing.T) {
		e := factory()
		v := e.ValidatePrompt("  ocean   waves ")
		if !v.IsValid {
			t.Fatalf("expected valid, got errors %v", v.Errors)
		}
		if strings.Contains(v.SanitizedPrompt, "  ") {
			t.Errorf("SanitizedPrompt = %q, want collapsed whitespace", v.SanitizedPrompt)
		}
	})

	t.Run("GenerateTheme_cancelled_context", func(t *testing.T) {
		e := factory()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := e.GenerateTheme(ctx, "ocean waves", theme.PromptOptions{})
		if err == nil {
			t.Error("GenerateTheme() with cancelled context should return error")
		}
	})
}
