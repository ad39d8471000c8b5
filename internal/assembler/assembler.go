// Package assembler converts validated candidates into canonical immutable
// theme records, and builds the deterministic fallback record used when
// generation is exhausted.
package assembler

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/HerbHall/themeforge/internal/diversity"
	"github.com/HerbHall/themeforge/pkg/colorspace"
	"github.com/HerbHall/themeforge/pkg/theme"
	"go.uber.org/zap"
)

// Animation duration bounds and defaults, in milliseconds.
const (
	minAnimationDuration     = 3000
	maxAnimationDuration     = 10000
	defaultAnimationDuration = 6000
	defaultEasing            = "ease-in-out"

	maxDisplayNameLen = 20
)

// Assembler builds AcceptedTheme records and registers them into the
// session history.
type Assembler struct {
	diversity *diversity.Validator
	logger    *zap.Logger
	now       func() time.Time
}

// New creates an Assembler sharing the given diversity validator's session.
func New(div *diversity.Validator, logger *zap.Logger) *Assembler {
	return &Assembler{
		diversity: div,
		logger:    logger,
		now:       time.Now,
	}
}

// ValidateStructure checks that every required color field is a syntactically
// valid 6-digit hex string and that the visual element description is usable.
// The returned error names the first offending field.
func (a *Assembler) ValidateStructure(c *theme.CandidateTheme) error {
	if c == nil {
		return &theme.StructuralError{Field: "candidate", Reason: "is missing"}
	}

	colorFields := []struct {
		name string
		hex  string
	}{
		{"studyColors.primary", c.StudyColors.Primary},
		{"studyColors.secondary", c.StudyColors.Secondary},
		{"studyColors.accent", c.StudyColors.Accent},
		{"breakColors.primary", c.BreakColors.Primary},
		{"breakColors.secondary", c.BreakColors.Secondary},
		{"breakColors.accent", c.BreakColors.Accent},
	}
	for _, f := range colorFields {
		if f.hex == "" {
			return &theme.StructuralError{Field: f.name, Reason: "is missing"}
		}
		if !colorspace.IsValidHex(f.hex) {
			return &theme.StructuralError{Field: f.name, Reason: "is not a 6-digit hex color"}
		}
	}

	switch c.VisualElements.BackgroundType {
	case theme.BackgroundParticles, theme.BackgroundPattern, theme.BackgroundGradient:
	case "":
		return &theme.StructuralError{Field: "visualElements.backgroundType", Reason: "is missing"}
	default:
		return &theme.StructuralError{Field: "visualElements.backgroundType", Reason: "is not one of particles, pattern, gradient"}
	}

	return nil
}

// Assemble converts a candidate into an AcceptedTheme and registers it into
// the session history. It re-checks the provided uniqueness result so an
// assembled theme can never violate the diversity invariants, regardless of
// caller ordering.
func (a *Assembler) Assemble(c *theme.CandidateTheme, prompt string, uniq diversity.UniquenessCheck) (*theme.AcceptedTheme, error) {
	if err := a.ValidateStructure(c); err != nil {
		return nil, err
	}
	if !uniq.IsUnique {
		return nil, &theme.DiversityError{
			FallbackDistance: uniq.FallbackDistance,
			SimilarityScore:  uniq.SimilarityScore,
			ConflictingIDs:   uniq.ConflictingIDs,
			Recommendations:  uniq.Recommendations,
		}
	}

	now := a.now()
	t := &theme.AcceptedTheme{
		ID:                 "ai-theme-" + hash32(prompt) + "-" + strconv.FormatInt(now.UnixMilli(), 10),
		Kind:               theme.KindGenerated,
		Name:               displayName(c.ThemeName, prompt),
		StudyColors:        c.StudyColors,
		BreakColors:        c.BreakColors,
		StudyBackground:    c.StudyColors.Secondary,
		BreakBackground:    c.BreakColors.Secondary,
		StudyGradient:      []string{c.StudyColors.Secondary, c.StudyColors.Primary},
		BreakGradient:      []string{c.BreakColors.Secondary, c.BreakColors.Primary},
		BackgroundElements: buildBackgroundElements(c),
		Animations:         normalizeAnimations(c.VisualElements.Animations),
		OriginalPrompt:     prompt,
		CreatedAt:          now,
		Confidence:         clampFloat(c.Confidence, 0, 1),
		DiversityReport: theme.DiversityReport{
			IsUnique:         true,
			FallbackDistance: uniq.FallbackDistance,
			SimilarityScore:  uniq.SimilarityScore,
		},
	}

	a.diversity.AddToSession(t)
	a.logger.Info("theme assembled",
		zap.String("theme_id", t.ID),
		zap.String("name", t.Name),
		zap.Float64("fallback_distance", uniq.FallbackDistance),
	)
	return t, nil
}

// BuildFallback returns the deterministic fallback theme for a prompt. It is
// registered into the session history so later generations are pushed away
// from it too.
func (a *Assembler) BuildFallback(prompt string) *theme.AcceptedTheme {
	now := a.now()
	t := &theme.AcceptedTheme{
		ID:              "fallback-theme-" + strconv.FormatInt(now.UnixMilli(), 10),
		Kind:            theme.KindFallback,
		Name:            "Classic Focus",
		StudyColors:     theme.FallbackStudyColors,
		BreakColors:     theme.FallbackBreakColors,
		StudyBackground: theme.FallbackStudyColors.Secondary,
		BreakBackground: theme.FallbackBreakColors.Secondary,
		StudyGradient:   []string{theme.FallbackStudyColors.Secondary, theme.FallbackStudyColors.Primary},
		BreakGradient:   []string{theme.FallbackBreakColors.Secondary, theme.FallbackBreakColors.Primary},
		BackgroundElements: theme.BackgroundElements{
			Type: theme.BackgroundGradient,
			Gradient: &theme.GradientBackground{
				Colors:    []string{theme.FallbackStudyColors.Secondary, theme.FallbackStudyColors.Primary},
				Direction: "vertical",
			},
		},
		Animations:     normalizeAnimations(nil),
		OriginalPrompt: prompt,
		CreatedAt:      now,
		Confidence:     0.5,
		DiversityReport: theme.DiversityReport{
			IsUnique:         false,
			FallbackDistance: 0,
			SimilarityScore:  1,
		},
	}

	a.diversity.AddToSession(t)
	a.logger.Info("fallback theme built", zap.String("theme_id", t.ID))
	return t
}

// buildBackgroundElements maps the untrusted visual description onto the
// tagged background configuration.
func buildBackgroundElements(c *theme.CandidateTheme) theme.BackgroundElements {
	ve := c.VisualElements
	switch ve.BackgroundType {
	case theme.BackgroundParticles:
		return theme.BackgroundElements{
			Type: theme.BackgroundParticles,
			Particles: &theme.ParticleBackground{
				Pattern:  element(ve.Elements, 0, "default"),
				Count:    clampInt(len(ve.Elements)*3, 5, 15),
				Duration: defaultAnimationDuration,
				Opacity:  0.4,
			},
		}
	case theme.BackgroundPattern:
		return theme.BackgroundElements{
			Type: theme.BackgroundPattern,
			Pattern: &theme.PatternBackground{
				StudyCharacter: element(ve.Elements, 0, "•"),
				BreakCharacter: element(ve.Elements, 1, "•"),
				Position:       "left-side",
				Scale:          0.8,
			},
		}
	default: // gradient, guaranteed by ValidateStructure
		colors := ve.Elements
		if len(colors) == 0 {
			colors = []string{c.StudyColors.Secondary, c.StudyColors.Primary}
		}
		return theme.BackgroundElements{
			Type: theme.BackgroundGradient,
			Gradient: &theme.GradientBackground{
				Colors:    colors,
				Direction: "vertical",
			},
		}
	}
}

// normalizeAnimations applies defaults when the candidate declares none and
// clamps declared durations into the allowed band.
func normalizeAnimations(anims []theme.Animation) []theme.Animation {
	if len(anims) == 0 {
		return []theme.Animation{{
			Type:     "float",
			Duration: defaultAnimationDuration,
			Easing:   defaultEasing,
			Properties: map[string]any{
				"count":   8,
				"speed":   1,
				"opacity": 0.4,
			},
		}}
	}

	out := make([]theme.Animation, len(anims))
	for i, a := range anims {
		if a.Duration == 0 {
			a.Duration = defaultAnimationDuration
		}
		a.Duration = clampInt(a.Duration, minAnimationDuration, maxAnimationDuration)
		if a.Easing == "" {
			a.Easing = defaultEasing
		}
		out[i] = a
	}
	return out
}

// displayName prefers the engine's theme name, falling back to the prompt
// capitalized and truncated.
func displayName(themeName, prompt string) string {
	if name := strings.TrimSpace(themeName); name != "" {
		return name
	}
	name := strings.TrimSpace(prompt)
	runes := []rune(name)
	if len(runes) == 0 {
		return "Generated Theme"
	}
	runes[0] = unicode.ToUpper(runes[0])
	if len(runes) > maxDisplayNameLen {
		return string(runes[:maxDisplayNameLen]) + "..."
	}
	return string(runes)
}

// hash32 is a rolling 32-bit signed hash of the prompt, rendered in base36.
func hash32(s string) string {
	var h int32
	for _, r := range s {
		h = h*31 + int32(r)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return strconv.FormatInt(v, 36)
}

func element(elems []string, i int, def string) string {
	if i < len(elems) && strings.TrimSpace(elems[i]) != "" {
		return elems[i]
	}
	return def
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
