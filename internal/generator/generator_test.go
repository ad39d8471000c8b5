package generator

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/HerbHall/themeforge/pkg/theme"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
)

// mockEngine records every GenerateTheme call and delegates candidate
// production to a per-call function.
type mockEngine struct {
	mu       sync.Mutex
	calls    []theme.PromptOptions
	generate func(call int) (*theme.CandidateTheme, error)
}

func (m *mockEngine) GenerateTheme(ctx context.Context, prompt string, opts theme.PromptOptions) (*theme.CandidateTheme, error) {
	if err := ctx.Err(); err != nil {
		return nil, theme.NewServiceError(theme.ErrCodeTimeout, "request timed out or cancelled", err)
	}
	m.mu.Lock()
	m.calls = append(m.calls, opts)
	n := len(m.calls)
	m.mu.Unlock()
	return m.generate(n)
}

func (m *mockEngine) ValidatePrompt(prompt string) theme.PromptValidation {
	s := strings.Join(strings.Fields(prompt), " ")
	if s == "" || len(s) > 50 {
		return theme.PromptValidation{IsValid: false, Errors: []string{"invalid prompt: must be 1-50 characters"}}
	}
	return theme.PromptValidation{IsValid: true, SanitizedPrompt: s}
}

func (m *mockEngine) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *mockEngine) callOpts(i int) theme.PromptOptions {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[i]
}

// distinctCandidate is structurally valid, far from the fallback palette,
// and carries no context-bound vocabulary.
func distinctCandidate() *theme.CandidateTheme {
	return &theme.CandidateTheme{
		ThemeName:   "Midnight Slate",
		StudyColors: theme.ColorTriple{Primary: "#0E7490", Secondary: "#111827", Accent: "#A16207"},
		BreakColors: theme.ColorTriple{Primary: "#7C3AED", Secondary: "#1F2937", Accent: "#15803D"},
		VisualElements: theme.VisualElements{
			BackgroundType: theme.BackgroundGradient,
			Animations:     []theme.Animation{{Type: "float", Duration: 5000}},
		},
		Confidence: 0.8,
	}
}

// fallbackAlike mirrors the fixed fallback palette exactly.
func fallbackAlike() *theme.CandidateTheme {
	return &theme.CandidateTheme{
		ThemeName:   "Deja Vu",
		StudyColors: theme.FallbackStudyColors,
		BreakColors: theme.FallbackBreakColors,
		VisualElements: theme.VisualElements{
			BackgroundType: theme.BackgroundGradient,
		},
		Confidence: 0.9,
	}
}

// newTestOrchestrator wires a mock engine with an instant, recorded sleep.
func newTestOrchestrator(t *testing.T, eng *mockEngine) (*Orchestrator, *[]time.Duration) {
	t.Helper()
	o := New(eng, theme.DefaultDiversityConfig(), NewMetrics(nil), zap.NewNop())
	var waits []time.Duration
	o.sleep = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return ctx.Err()
	}
	return o, &waits
}

func TestGenerate_AcceptsOnFirstAttempt(t *testing.T) {
	eng := &mockEngine{generate: func(int) (*theme.CandidateTheme, error) {
		return distinctCandidate(), nil
	}}
	o, _ := newTestOrchestrator(t, eng)

	res := o.Generate(context.Background(), "abstract geometry", Options{})
	if !res.Success {
		t.Fatalf("Success = false, Err = %q", res.Err)
	}
	if res.UsedFallback {
		t.Error("UsedFallback = true on clean acceptance")
	}
	if res.Theme == nil || res.Theme.Kind != theme.KindGenerated {
		t.Fatalf("Theme = %+v, want generated kind", res.Theme)
	}
	if !strings.HasPrefix(res.Theme.ID, "ai-theme-") {
		t.Errorf("ID = %q, want ai-theme- prefix", res.Theme.ID)
	}
	if got := eng.callCount(); got != 1 {
		t.Errorf("engine calls = %d, want 1", got)
	}
	if got := o.SessionCount(); got != 1 {
		t.Errorf("SessionCount = %d, want 1", got)
	}
	if got := len(o.RecentThemes()); got != 1 {
		t.Errorf("RecentThemes = %d entries, want 1", got)
	}
	if res.Theme.DiversityReport.FallbackDistance < 50 {
		t.Errorf("FallbackDistance = %v, want >= 50", res.Theme.DiversityReport.FallbackDistance)
	}
}

func TestGenerate_FallbackAfterClampedAttempts(t *testing.T) {
	eng := &mockEngine{generate: func(int) (*theme.CandidateTheme, error) {
		return fallbackAlike(), nil
	}}
	o, waits := newTestOrchestrator(t, eng)

	res := o.Generate(context.Background(), "abstract geometry", Options{
		FallbackOnError: true,
		RetryAttempts:   5, // clamped to 2
	})
	if !res.Success {
		t.Fatalf("Success = false, want fallback success; Err = %q", res.Err)
	}
	if !res.UsedFallback {
		t.Fatal("UsedFallback = false, want true")
	}
	if res.Theme == nil || res.Theme.Kind != theme.KindFallback {
		t.Fatalf("Theme = %+v, want fallback kind", res.Theme)
	}
	if res.Err == "" || !strings.Contains(res.Err, "fallback") {
		t.Errorf("Err = %q, want explanation naming fallback", res.Err)
	}
	if res.DiversityFailures != 2 {
		t.Errorf("DiversityFailures = %d, want 2", res.DiversityFailures)
	}
	if got := eng.callCount(); got != 2 {
		t.Errorf("engine calls = %d, want clamped 2", got)
	}
	// Diversity rejections use the short fixed backoff.
	if len(*waits) != 1 || (*waits)[0] != 500*time.Millisecond {
		t.Errorf("backoffs = %v, want [500ms]", *waits)
	}
}

func TestGenerate_MetricsAdvanceOnFallback(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	eng := &mockEngine{generate: func(int) (*theme.CandidateTheme, error) {
		return fallbackAlike(), nil
	}}
	o := New(eng, theme.DefaultDiversityConfig(), m, zap.NewNop())
	o.sleep = func(ctx context.Context, d time.Duration) error { return nil }

	res := o.Generate(context.Background(), "abstract geometry", Options{FallbackOnError: true})
	if !res.UsedFallback {
		t.Fatalf("Result = %+v, want fallback", res)
	}

	if got := testutil.ToFloat64(m.fallbacks); got != 1 {
		t.Errorf("fallbacks counter = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.attempts); got != 2 {
		t.Errorf("attempts counter = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.rejections.WithLabelValues(reasonDiversity)); got != 2 {
		t.Errorf("diversity rejections counter = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.accepted); got != 0 {
		t.Errorf("accepted counter = %v, want 0", got)
	}
}

func TestGenerate_EscalatesDiversityLevel(t *testing.T) {
	eng := &mockEngine{generate: func(int) (*theme.CandidateTheme, error) {
		return nil, theme.NewServiceError(theme.ErrCodeServerError, "overloaded", nil)
	}}
	o, waits := newTestOrchestrator(t, eng)

	res := o.Generate(context.Background(), "abstract geometry", Options{
		DiversityLevel: theme.DiversityStandard,
	})
	if res.Success {
		t.Fatal("Success = true, want failure without fallback")
	}
	if got := eng.callCount(); got != 2 {
		t.Fatalf("engine calls = %d, want 2", got)
	}
	if lvl := eng.callOpts(0).DiversityLevel; lvl != theme.DiversityStandard {
		t.Errorf("attempt 1 level = %q, want standard", lvl)
	}
	if lvl := eng.callOpts(1).DiversityLevel; lvl != theme.DiversityHigh {
		t.Errorf("attempt 2 level = %q, want high", lvl)
	}
	// Service failures back off exponentially.
	if len(*waits) != 1 || (*waits)[0] != time.Second {
		t.Errorf("backoffs = %v, want [1s]", *waits)
	}
}

func TestGenerate_NonRetryableAbortsImmediately(t *testing.T) {
	eng := &mockEngine{generate: func(int) (*theme.CandidateTheme, error) {
		return nil, theme.NewServiceError(theme.ErrCodeAuthentication, "invalid api key", nil)
	}}
	o, waits := newTestOrchestrator(t, eng)

	res := o.Generate(context.Background(), "abstract geometry", Options{})
	if res.Success {
		t.Fatal("Success = true, want failure")
	}
	if !strings.Contains(res.Err, "invalid api key") {
		t.Errorf("Err = %q, want invalid api key message", res.Err)
	}
	if got := eng.callCount(); got != 1 {
		t.Errorf("engine calls = %d, want 1 (no retry)", got)
	}
	if len(*waits) != 0 {
		t.Errorf("backoffs = %v, want none", *waits)
	}
}

func TestGenerate_StructuralFailureIsNonRetryable(t *testing.T) {
	eng := &mockEngine{generate: func(int) (*theme.CandidateTheme, error) {
		c := distinctCandidate()
		c.StudyColors.Primary = "not-a-color"
		return c, nil
	}}
	o, _ := newTestOrchestrator(t, eng)

	res := o.Generate(context.Background(), "abstract geometry", Options{})
	if res.Success {
		t.Fatal("Success = true, want failure")
	}
	if !strings.Contains(res.Err, "studyColors.primary") {
		t.Errorf("Err = %q, want offending field name", res.Err)
	}
	if got := eng.callCount(); got != 1 {
		t.Errorf("engine calls = %d, want 1", got)
	}
}

func TestGenerate_InvalidPromptSkipsEngine(t *testing.T) {
	eng := &mockEngine{generate: func(int) (*theme.CandidateTheme, error) {
		t.Fatal("engine called for invalid prompt")
		return nil, nil
	}}
	o, _ := newTestOrchestrator(t, eng)

	res := o.Generate(context.Background(), "   ", Options{})
	if res.Success {
		t.Fatal("Success = true, want failure")
	}
	if !strings.Contains(res.Err, "invalid prompt") {
		t.Errorf("Err = %q, want invalid prompt message", res.Err)
	}

	// With fallback enabled the caller still gets a usable theme.
	res = o.Generate(context.Background(), "   ", Options{FallbackOnError: true})
	if !res.Success || !res.UsedFallback {
		t.Errorf("Result = %+v, want fallback success", res)
	}
}

func TestGenerate_ContextMismatchRetriesThenFallsBack(t *testing.T) {
	fire := &theme.CandidateTheme{
		ThemeName:   "Ember",
		StudyColors: theme.ColorTriple{Primary: "#D32F2F", Secondary: "#7F1D1D", Accent: "#F59E0B"},
		BreakColors: theme.ColorTriple{Primary: "#B91C1C", Secondary: "#450A0A", Accent: "#FBBF24"},
		VisualElements: theme.VisualElements{
			BackgroundType: theme.BackgroundParticles,
			Elements:       []string{"flame"},
			Animations: []theme.Animation{
				{Type: "flicker", Duration: 4000},
				{Type: "intensity", Duration: 4000},
			},
		},
		Confidence: 0.9,
	}
	eng := &mockEngine{generate: func(int) (*theme.CandidateTheme, error) {
		return fire, nil
	}}
	o, waits := newTestOrchestrator(t, eng)

	res := o.Generate(context.Background(), "winter snow", Options{FallbackOnError: true})
	if !res.Success || !res.UsedFallback {
		t.Fatalf("Result = %+v, want fallback after contextual rejection", res)
	}
	if res.DiversityFailures != 0 {
		t.Errorf("DiversityFailures = %d, want 0 (rejections were contextual)", res.DiversityFailures)
	}
	if got := eng.callCount(); got != 2 {
		t.Errorf("engine calls = %d, want 2", got)
	}
	if len(*waits) != 1 || (*waits)[0] != 500*time.Millisecond {
		t.Errorf("backoffs = %v, want [500ms]", *waits)
	}
}

func TestGenerate_SecondIdenticalThemeConflicts(t *testing.T) {
	eng := &mockEngine{generate: func(int) (*theme.CandidateTheme, error) {
		return distinctCandidate(), nil
	}}
	o, _ := newTestOrchestrator(t, eng)

	first := o.Generate(context.Background(), "abstract geometry", Options{})
	if !first.Success || first.UsedFallback {
		t.Fatalf("first Result = %+v, want clean acceptance", first)
	}

	second := o.Generate(context.Background(), "abstract geometry", Options{FallbackOnError: true})
	if !second.UsedFallback {
		t.Fatalf("second Result = %+v, want fallback after session conflict", second)
	}
	if second.DiversityFailures == 0 {
		t.Error("DiversityFailures = 0, want session-conflict rejections counted")
	}
}

func TestGenerate_PreviousThemesSeedSession(t *testing.T) {
	c := distinctCandidate()
	eng := &mockEngine{generate: func(int) (*theme.CandidateTheme, error) {
		return c, nil
	}}
	o, _ := newTestOrchestrator(t, eng)

	seed := theme.ThemeColorSummary{
		ID:         "restored-theme",
		Hex:        c.AllColors(),
		AcceptedAt: time.Now(),
	}
	res := o.Generate(context.Background(), "abstract geometry", Options{
		PreviousThemes:  []theme.ThemeColorSummary{seed},
		FallbackOnError: true,
	})
	if !res.UsedFallback {
		t.Fatalf("Result = %+v, want fallback: candidate repeats seeded theme", res)
	}
	if res.DiversityFailures == 0 {
		t.Error("DiversityFailures = 0, want conflict with seeded theme")
	}
}

func TestGenerate_CancelledContextFallsBack(t *testing.T) {
	eng := &mockEngine{generate: func(int) (*theme.CandidateTheme, error) {
		return distinctCandidate(), nil
	}}
	o, _ := newTestOrchestrator(t, eng)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := o.Generate(ctx, "abstract geometry", Options{FallbackOnError: true})
	if !res.Success || !res.UsedFallback {
		t.Errorf("Result = %+v, want fallback on cancelled context", res)
	}
}

func TestGenerate_RecentThemesBound(t *testing.T) {
	o, _ := newTestOrchestrator(t, &mockEngine{})
	for i := 0; i < recentCapacity+5; i++ {
		o.remember(theme.ThemeColorSummary{ID: "t" + string(rune('a'+i))})
	}
	got := o.RecentThemes()
	if len(got) != recentCapacity {
		t.Fatalf("RecentThemes = %d entries, want %d", len(got), recentCapacity)
	}
	if got[0].ID != "tf" {
		t.Errorf("oldest = %q, want tf (first five evicted)", got[0].ID)
	}
}

func TestClearSession(t *testing.T) {
	eng := &mockEngine{generate: func(int) (*theme.CandidateTheme, error) {
		return distinctCandidate(), nil
	}}
	o, _ := newTestOrchestrator(t, eng)

	if res := o.Generate(context.Background(), "abstract geometry", Options{}); !res.Success {
		t.Fatalf("Generate failed: %q", res.Err)
	}
	o.ClearSession()
	if got := o.SessionCount(); got != 0 {
		t.Errorf("SessionCount = %d after clear, want 0", got)
	}
	if got := len(o.RecentThemes()); got != 0 {
		t.Errorf("RecentThemes = %d after clear, want 0", got)
	}
}

func TestEscalatedLevel(t *testing.T) {
	tests := []struct {
		base    theme.DiversityLevel
		attempt int
		want    theme.DiversityLevel
	}{
		{theme.DiversityStandard, 1, theme.DiversityStandard},
		{"", 1, theme.DiversityStandard},
		{theme.DiversityMaximum, 1, theme.DiversityMaximum},
		{theme.DiversityStandard, 2, theme.DiversityHigh},
		{theme.DiversityStandard, 3, theme.DiversityMaximum},
	}
	for _, tt := range tests {
		if got := escalatedLevel(tt.base, tt.attempt); got != tt.want {
			t.Errorf("escalatedLevel(%q, %d) = %q, want %q", tt.base, tt.attempt, got, tt.want)
		}
	}
}
