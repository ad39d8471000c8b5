// Package composer builds the outbound instruction pair for the text
// generation engine: a fixed system directive plus a user message embedding
// semantic guidance, an avoid-list of recently accepted colors, a diversity
// directive, and randomization to defeat cached identical responses.
package composer

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/HerbHall/themeforge/internal/semantics"
	"github.com/HerbHall/themeforge/pkg/theme"
	"go.uber.org/zap"
)

// systemText is constant across all calls: output contract first, aesthetic
// constraints second.
const systemText = `You are a color theme designer for a study timer application. Produce a two-phase theme: study colors that promote focus and break colors that promote relaxation.

Requirements:
- All text/background color pairs must meet WCAG AA contrast (at least 4.5:1).
- Avoid generic default blues and greens; choose distinctive, intentional palettes.
- Study phase colors must be focus-promoting; break phase colors must be relax-promoting.
- Respond with strict JSON only, no prose and no code fences, in exactly this schema:
{"themeName": string, "description": string, "studyColors": {"primary": "#rrggbb", "secondary": "#rrggbb", "accent": "#rrggbb"}, "breakColors": {"primary": "#rrggbb", "secondary": "#rrggbb", "accent": "#rrggbb"}, "visualElements": {"backgroundType": "particles"|"pattern"|"gradient", "elements": [string], "animations": [{"type": string, "duration": number, "properties": object}]}, "confidence": number}`

// creativeDirections is the fixed pool of randomization phrases. One is
// drawn per composition so repeated prompts do not hit a response cache.
var creativeDirections = []string{
	"Lean into an unexpected accent color that still harmonizes.",
	"Imagine the palette a film colorist would grade this scene with.",
	"Choose colors you would defend in a design critique.",
	"Pick a palette that would stand out in a theme gallery.",
	"Let one color carry the personality and keep the rest restrained.",
	"Design as if this theme will be someone's favorite for a year.",
}

// Composed is the assembled instruction pair.
type Composed struct {
	SystemText        string
	UserText          string
	RandomizationSeed string
}

// Composer assembles engine instructions. The phrase draw and seed are the
// only non-deterministic inputs; tests override them via the hook fields.
type Composer struct {
	logger *zap.Logger

	now  func() time.Time
	pick func(n int) int
}

// New creates a Composer with real randomness.
func New(logger *zap.Logger) *Composer {
	return &Composer{
		logger: logger,
		now:    time.Now,
		pick:   rand.IntN,
	}
}

// Compose builds the system and user texts for one engine call.
func (c *Composer) Compose(prompt string, opts theme.PromptOptions) Composed {
	seed := fmt.Sprintf("%d", c.now().UnixMilli())

	var b strings.Builder
	fmt.Fprintf(&b, "Create a theme for: %q\n", prompt)

	if ctx := semantics.Resolve(prompt); ctx != nil {
		b.WriteString("\nSemantic guidance:\n")
		for _, f := range ctx.ColorFamilies {
			fmt.Fprintf(&b, "- Favor %s tones (hue %.0f-%.0f, saturation %.0f-%.0f%%, lightness %.0f-%.0f%%).\n",
				f.Name, f.HueMin, f.HueMax, f.SatMin, f.SatMax, f.LightMin, f.LightMax)
		}
		fmt.Fprintf(&b, "- Use animation types like: %s.\n", strings.Join(ctx.AppropriateAnimations, ", "))
		fmt.Fprintf(&b, "- Never use animation types like: %s.\n", strings.Join(ctx.InappropriateAnimations, ", "))
		fmt.Fprintf(&b, "- Overall mood: %s.\n", strings.Join(ctx.Moods, ", "))
	}

	if avoid := avoidList(opts.PreviousSummaries); len(avoid) > 0 {
		fmt.Fprintf(&b, "\nDo NOT reuse or closely approximate these colors from earlier themes: %s\n",
			strings.Join(avoid, ", "))
	}

	b.WriteString("\n" + diversityDirective(opts.DiversityLevel) + "\n")

	phrase := creativeDirections[c.pick(len(creativeDirections))]
	fmt.Fprintf(&b, "\nCreative direction: %s\n", phrase)
	fmt.Fprintf(&b, "Variation seed: %s", seed)
	if opts.SessionToken != "" {
		fmt.Fprintf(&b, " (session %s)", opts.SessionToken)
	}
	b.WriteString("\n")

	c.logger.Debug("prompt composed",
		zap.String("diversity_level", string(opts.DiversityLevel)),
		zap.Int("avoid_colors", len(opts.PreviousSummaries)*6),
		zap.String("seed", seed),
	)

	return Composed{
		SystemText:        systemText,
		UserText:          b.String(),
		RandomizationSeed: seed,
	}
}

// diversityDirective escalates with the level: each step is more emphatic
// about avoiding anything resembling earlier output.
func diversityDirective(level theme.DiversityLevel) string {
	switch level {
	case theme.DiversityHigh:
		return "Diversity requirement (HIGH): the palette must be clearly distinct from common defaults and from every avoided color above. Shift to a different hue family entirely."
	case theme.DiversityMaximum:
		return "Diversity requirement (MAXIMUM): produce a palette radically unlike anything listed above. Pick hue families, saturation, and lightness that share nothing with previous themes. Surprise within the prompt's meaning."
	default:
		return "Diversity requirement: make this palette visually distinct from typical app themes."
	}
}

// avoidList flattens previous summaries into their unique hex values.
func avoidList(summaries []theme.ThemeColorSummary) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, s := range summaries {
		for _, hex := range s.Hex {
			if hex == "" {
				continue
			}
			if _, dup := seen[hex]; dup {
				continue
			}
			seen[hex] = struct{}{}
			out = append(out, hex)
		}
	}
	return out
}
