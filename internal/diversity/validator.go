// Package diversity rejects candidate themes that are visually
// indistinguishable from the fixed fallback palette or from themes already
// accepted in the current session.
package diversity

import (
	"fmt"

	"github.com/HerbHall/themeforge/pkg/colorspace"
	"github.com/HerbHall/themeforge/pkg/theme"
	"go.uber.org/zap"
)

// Per-color weights for the fallback distance. Primary dominates because it
// is the color the user actually sees most.
const (
	weightPrimary   = 0.5
	weightSecondary = 0.3
	weightAccent    = 0.2
)

// Validator checks candidates against the fallback palette and the session
// history.
type Validator struct {
	cfg     theme.DiversityConfig
	history *SessionHistory
	logger  *zap.Logger
}

// New creates a Validator with its own session history.
func New(cfg theme.DiversityConfig, logger *zap.Logger) *Validator {
	cfg = cfg.Normalize()
	return &Validator{
		cfg:     cfg,
		history: NewSessionHistory(cfg.SessionCapacity),
		logger:  logger,
	}
}

// FallbackCheck is the result of comparing a candidate to the fallback palette.
type FallbackCheck struct {
	Distance  float64
	IsSimilar bool
}

// UniquenessCheck is the result of comparing a candidate to session history.
type UniquenessCheck struct {
	IsUnique         bool
	FallbackDistance float64
	SimilarityScore  float64 // Highest similarity against any session entry.
	ConflictingIDs   []string
	Recommendations  []string
}

// ValidateAgainstFallback computes the weighted average RGB distance between
// the candidate and the fixed fallback palette. Each phase contributes the
// weighted sum of its per-color distances; the two phases are averaged.
func (v *Validator) ValidateAgainstFallback(c *theme.CandidateTheme) FallbackCheck {
	study := tripleDistance(c.StudyColors, theme.FallbackStudyColors)
	brk := tripleDistance(c.BreakColors, theme.FallbackBreakColors)
	distance := (study + brk) / 2

	check := FallbackCheck{
		Distance:  distance,
		IsSimilar: distance < v.cfg.MinColorDistance,
	}
	if check.IsSimilar {
		v.logger.Debug("candidate too close to fallback palette",
			zap.Float64("distance", distance),
			zap.Float64("min_distance", v.cfg.MinColorDistance),
		)
	}
	return check
}

// ValidateSessionUniqueness compares the candidate's six colors against every
// remembered theme. Similarity is 1 - avgDistance/maxDistance; any entry
// above the configured ceiling is a conflict. IsUnique additionally requires
// the fallback distance floor.
func (v *Validator) ValidateSessionUniqueness(c *theme.CandidateTheme) UniquenessCheck {
	fallback := v.ValidateAgainstFallback(c)
	check := UniquenessCheck{
		FallbackDistance: fallback.Distance,
	}

	candidate := c.AllColors()
	for _, entry := range v.history.Snapshot() {
		sim := colorspace.Similarity(avgDistance(candidate, entry.Hex))
		if sim > check.SimilarityScore {
			check.SimilarityScore = sim
		}
		if sim > v.cfg.MaxSimilarityScore {
			check.ConflictingIDs = append(check.ConflictingIDs, entry.ID)
		}
	}

	check.IsUnique = len(check.ConflictingIDs) == 0 && !fallback.IsSimilar
	if !check.IsUnique {
		if fallback.IsSimilar {
			check.Recommendations = append(check.Recommendations,
				fmt.Sprintf("colors are within %.0f RGB units of the fallback theme; request a bolder palette", v.cfg.MinColorDistance))
		}
		if len(check.ConflictingIDs) > 0 {
			check.Recommendations = append(check.Recommendations,
				fmt.Sprintf("colors repeat %d earlier theme(s) from this session; vary hue families", len(check.ConflictingIDs)))
		}
	}
	return check
}

// AddToSession registers an accepted theme's color digest for future
// uniqueness comparisons.
func (v *Validator) AddToSession(t *theme.AcceptedTheme) {
	v.history.Add(t.Summary())
	v.logger.Debug("theme added to session history",
		zap.String("theme_id", t.ID),
		zap.Int("session_count", v.history.Count()),
	)
}

// ClearSession forgets all remembered themes.
func (v *Validator) ClearSession() {
	v.history.Clear()
}

// SessionCount returns the number of remembered themes.
func (v *Validator) SessionCount() int {
	return v.history.Count()
}

// History exposes the session history for prompt composition (avoid-lists).
func (v *Validator) History() *SessionHistory {
	return v.history
}

// Config returns the normalized configuration in effect.
func (v *Validator) Config() theme.DiversityConfig {
	return v.cfg
}

// tripleDistance is the weighted per-phase distance between two triples.
func tripleDistance(a, b theme.ColorTriple) float64 {
	return weightPrimary*colorspace.RGBDistance(a.Primary, b.Primary) +
		weightSecondary*colorspace.RGBDistance(a.Secondary, b.Secondary) +
		weightAccent*colorspace.RGBDistance(a.Accent, b.Accent)
}

// avgDistance is the unweighted mean RGB distance over six color pairs.
func avgDistance(a, b [6]string) float64 {
	var sum float64
	for i := range a {
		sum += colorspace.RGBDistance(a[i], b[i])
	}
	return sum / float64(len(a))
}
