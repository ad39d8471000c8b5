// Package contextual scores how well a candidate theme's colors and
// animations match the semantic meaning of the prompt that requested it.
package contextual

import (
	"fmt"
	"math"
	"strings"

	"github.com/HerbHall/themeforge/internal/semantics"
	"github.com/HerbHall/themeforge/pkg/colorspace"
	"github.com/HerbHall/themeforge/pkg/theme"
	"go.uber.org/zap"
)

// Score weights and thresholds. Hue dominates the per-color score because
// family membership is primarily a hue judgment.
const (
	hueWeight   = 0.7
	satWeight   = 0.2
	lightWeight = 0.1

	// Hue penalty reaches zero at this many degrees outside the family band.
	hueFalloffDegrees = 60.0

	// Saturation/lightness fit falls off linearly over this many points
	// from the range midpoint.
	slFalloffPoints = 50.0

	// Candidates at or above this overall score fit the prompt.
	appropriateThreshold = 0.6

	// Sub-scores below these bounds produce issues and recommendations.
	issueThreshold     = 0.4
	recommendThreshold = 0.6

	neutralScore          = 0.7
	neutralAnimationScore = 0.5
)

// Result is the outcome of contextual validation.
type Result struct {
	ContextName     string
	ColorScore      float64
	AnimationScore  float64
	Overall         float64
	IsAppropriate   bool
	Issues          []string
	Recommendations []string
}

// Validator scores candidates against resolved semantic contexts.
type Validator struct {
	logger *zap.Logger
}

// New creates a contextual validator.
func New(logger *zap.Logger) *Validator {
	return &Validator{logger: logger}
}

// Validate resolves the prompt's semantic context and scores the candidate
// against it. When no context resolves, the result is neutral and
// appropriate: an unconstrained prompt cannot mismatch.
func (v *Validator) Validate(prompt string, c *theme.CandidateTheme) Result {
	ctx := semantics.Resolve(prompt)
	if ctx == nil {
		return Result{
			ColorScore:     neutralScore,
			AnimationScore: neutralScore,
			Overall:        neutralScore,
			IsAppropriate:  true,
			Recommendations: []string{
				"prompt matched no known context; use more specific keywords (e.g. ocean, forest, winter) for tailored validation",
			},
		}
	}

	res := Result{ContextName: ctx.Name}
	res.ColorScore = v.scoreColors(ctx, c)
	res.AnimationScore, res.Recommendations = v.scoreAnimations(ctx, c.VisualElements.Animations)
	res.Overall = 0.5*res.ColorScore + 0.5*res.AnimationScore
	res.IsAppropriate = res.Overall >= appropriateThreshold

	if res.ColorScore < issueThreshold {
		res.Issues = append(res.Issues,
			fmt.Sprintf("colors do not resemble the %s palette (score %.2f)", ctx.Name, res.ColorScore))
	}
	if res.ColorScore < recommendThreshold {
		res.Recommendations = append(res.Recommendations,
			fmt.Sprintf("favor %s tones for a %q prompt", familyNames(ctx), prompt))
	}
	if res.AnimationScore < issueThreshold && len(c.VisualElements.Animations) > 0 {
		res.Issues = append(res.Issues,
			fmt.Sprintf("animations clash with the %s mood (score %.2f)", ctx.Name, res.AnimationScore))
	}

	v.logger.Debug("contextual validation",
		zap.String("context", ctx.Name),
		zap.Float64("color_score", res.ColorScore),
		zap.Float64("animation_score", res.AnimationScore),
		zap.Float64("overall", res.Overall),
		zap.Bool("appropriate", res.IsAppropriate),
	)
	return res
}

// scoreColors averages the best-family fit of all six candidate colors.
// Colors that fail to parse score zero; structural validation upstream
// normally prevents that.
func (v *Validator) scoreColors(ctx *semantics.Context, c *theme.CandidateTheme) float64 {
	colors := c.AllColors()
	var sum float64
	for _, hex := range colors {
		hsl, ok := colorspace.HexToHSL(hex)
		if !ok {
			continue
		}
		best := 0.0
		for _, fam := range ctx.ColorFamilies {
			if s := familyFit(fam, hsl); s > best {
				best = s
			}
		}
		sum += best
	}
	return sum / float64(len(colors))
}

// familyFit combines hue, saturation, and lightness fit for one family.
func familyFit(f semantics.ColorFamily, c colorspace.HSL) float64 {
	hue := 1.0
	if !f.ContainsHue(c.H) {
		d := math.Min(colorspace.HueDistance(c.H, f.HueMin), colorspace.HueDistance(c.H, f.HueMax))
		hue = math.Max(0, 1-d/hueFalloffDegrees)
	}
	sat := midpointFit(c.S, f.SatMin, f.SatMax)
	light := midpointFit(c.L, f.LightMin, f.LightMax)
	return hueWeight*hue + satWeight*sat + lightWeight*light
}

// midpointFit falls off linearly with distance from the range midpoint.
func midpointFit(v, lo, hi float64) float64 {
	mid := (lo + hi) / 2
	return math.Max(0, 1-math.Abs(v-mid)/slFalloffPoints)
}

// scoreAnimations classifies each declared animation against the context's
// appropriate and inappropriate vocabularies by substring match.
// score = max(0, (#appropriate - #inappropriate) / #total), clipped to [0,1].
func (v *Validator) scoreAnimations(ctx *semantics.Context, anims []theme.Animation) (float64, []string) {
	if len(anims) == 0 {
		rec := fmt.Sprintf("no animations declared; consider adding one of: %s",
			strings.Join(ctx.AppropriateAnimations, ", "))
		return neutralAnimationScore, []string{rec}
	}

	var appropriate, inappropriate int
	for _, a := range anims {
		switch {
		case matchesVocab(a.Type, ctx.AppropriateAnimations):
			appropriate++
		case matchesVocab(a.Type, ctx.InappropriateAnimations):
			inappropriate++
		}
	}

	score := float64(appropriate-inappropriate) / float64(len(anims))
	score = math.Max(0, math.Min(1, score))

	var recs []string
	if score < recommendThreshold {
		recs = append(recs, fmt.Sprintf("replace clashing animations with %s-friendly types: %s",
			ctx.Name, strings.Join(ctx.AppropriateAnimations, ", ")))
	}
	return score, recs
}

// matchesVocab reports whether the animation type matches any vocabulary
// entry by case-insensitive substring in either direction.
func matchesVocab(animType string, vocab []string) bool {
	at := strings.ToLower(strings.TrimSpace(animType))
	if at == "" {
		return false
	}
	for _, w := range vocab {
		lw := strings.ToLower(w)
		if strings.Contains(at, lw) || strings.Contains(lw, at) {
			return true
		}
	}
	return false
}

func familyNames(ctx *semantics.Context) string {
	names := make([]string, len(ctx.ColorFamilies))
	for i, f := range ctx.ColorFamilies {
		names[i] = f.Name
	}
	return strings.Join(names, ", ")
}
