package composer

import (
	"strings"
	"testing"
	"time"

	"github.com/HerbHall/themeforge/pkg/theme"
	"go.uber.org/zap"
)

// fixedComposer pins the clock and phrase draw so output is deterministic.
func fixedComposer(t *testing.T) *Composer {
	t.Helper()
	c := New(zap.NewNop())
	c.now = func() time.Time { return time.UnixMilli(1700000000000) }
	c.pick = func(int) int { return 0 }
	return c
}

func TestCompose_SystemTextContract(t *testing.T) {
	c := fixedComposer(t)
	got := c.Compose("ocean waves", theme.PromptOptions{DiversityLevel: theme.DiversityStandard})

	for _, want := range []string{"4.5:1", "strict JSON", "focus", "relax", "backgroundType"} {
		if !strings.Contains(got.SystemText, want) {
			t.Errorf("SystemText missing %q", want)
		}
	}
}

func TestCompose_EmbedsSemanticGuidance(t *testing.T) {
	c := fixedComposer(t)
	got := c.Compose("ocean waves", theme.PromptOptions{DiversityLevel: theme.DiversityStandard})

	if !strings.Contains(got.UserText, "deep blue") {
		t.Error("UserText missing ocean color family guidance")
	}
	if !strings.Contains(got.UserText, "flicker") {
		t.Error("UserText missing inappropriate animation warning")
	}
}

func TestCompose_NoContextOmitsGuidance(t *testing.T) {
	c := fixedComposer(t)
	got := c.Compose("xylophone quartz", theme.PromptOptions{DiversityLevel: theme.DiversityStandard})

	if strings.Contains(got.UserText, "Semantic guidance") {
		t.Error("UserText has semantic guidance for an unresolved prompt")
	}
}

func TestCompose_AvoidListContainsPreviousColors(t *testing.T) {
	c := fixedComposer(t)
	prev := []theme.ThemeColorSummary{
		{ID: "t1", Hex: [6]string{"#111111", "#222222", "#333333", "#444444", "#555555", "#111111"}},
	}
	got := c.Compose("ocean waves", theme.PromptOptions{
		DiversityLevel:    theme.DiversityStandard,
		PreviousSummaries: prev,
	})

	for _, hex := range []string{"#111111", "#222222", "#555555"} {
		if !strings.Contains(got.UserText, hex) {
			t.Errorf("UserText missing avoided color %s", hex)
		}
	}
	// Duplicates collapse to one mention.
	if strings.Count(got.UserText, "#111111") != 1 {
		t.Errorf("avoided color #111111 listed %d times, want 1",
			strings.Count(got.UserText, "#111111"))
	}
}

func TestCompose_DiversityDirectiveEscalates(t *testing.T) {
	c := fixedComposer(t)
	std := c.Compose("ocean", theme.PromptOptions{DiversityLevel: theme.DiversityStandard}).UserText
	high := c.Compose("ocean", theme.PromptOptions{DiversityLevel: theme.DiversityHigh}).UserText
	max := c.Compose("ocean", theme.PromptOptions{DiversityLevel: theme.DiversityMaximum}).UserText

	if strings.Contains(std, "HIGH") || strings.Contains(std, "MAXIMUM") {
		t.Error("standard directive should not carry escalation markers")
	}
	if !strings.Contains(high, "HIGH") {
		t.Error("high directive missing HIGH marker")
	}
	if !strings.Contains(max, "MAXIMUM") {
		t.Error("maximum directive missing MAXIMUM marker")
	}
}

func TestCompose_SeedAndSessionToken(t *testing.T) {
	c := fixedComposer(t)
	got := c.Compose("ocean", theme.PromptOptions{
		DiversityLevel: theme.DiversityStandard,
		SessionToken:   "sess-abc",
	})

	if got.RandomizationSeed != "1700000000000" {
		t.Errorf("RandomizationSeed = %q, want timestamp-derived value", got.RandomizationSeed)
	}
	if !strings.Contains(got.UserText, got.RandomizationSeed) {
		t.Error("UserText missing randomization seed")
	}
	if !strings.Contains(got.UserText, "sess-abc") {
		t.Error("UserText missing session token")
	}
}

func TestCompose_DeterministicGivenFixedHooks(t *testing.T) {
	c := fixedComposer(t)
	opts := theme.PromptOptions{DiversityLevel: theme.DiversityStandard}
	a := c.Compose("forest trails", opts)
	b := c.Compose("forest trails", opts)
	if a != b {
		t.Error("Compose not deterministic with pinned clock and phrase draw")
	}
}
