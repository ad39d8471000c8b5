// Package theme provides the public SDK types for AI theme generation.
// The generation pipeline (composer, validators, assembler, orchestrator)
// consumes and produces these types. Implementations of the Engine contract
// live in internal/engine adapters.
package theme

import (
	"context"
	"time"
)

// Kind discriminates theme variants by origin. Code must switch on Kind,
// never on ID prefixes.
type Kind string

const (
	// KindPredefined marks a theme shipped with the application.
	KindPredefined Kind = "predefined"
	// KindGenerated marks a theme produced by the AI pipeline.
	KindGenerated Kind = "generated"
	// KindFallback marks the deterministic theme substituted after
	// generation retries are exhausted.
	KindFallback Kind = "fallback"
)

// ColorTriple holds the three colors of one phase. Each value is a
// 6-digit hex string with a leading '#'.
type ColorTriple struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Accent    string `json:"accent"`
}

// Hex returns the triple's values in primary, secondary, accent order.
func (c ColorTriple) Hex() [3]string {
	return [3]string{c.Primary, c.Secondary, c.Accent}
}

// Animation describes a single declared animation on a theme.
type Animation struct {
	Type       string         `json:"type"`
	Duration   int            `json:"duration"` // Milliseconds.
	Easing     string         `json:"easing,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Background type constants for VisualElements.BackgroundType.
const (
	BackgroundParticles = "particles"
	BackgroundPattern   = "pattern"
	BackgroundGradient  = "gradient"
)

// VisualElements is the untrusted visual description returned by the engine.
type VisualElements struct {
	BackgroundType string      `json:"backgroundType"`
	Elements       []string    `json:"elements"`
	Animations     []Animation `json:"animations,omitempty"`
}

// CandidateTheme is the unvalidated proposal returned by an Engine.
// It is ephemeral: either it passes structural, diversity, and contextual
// validation and is converted into an AcceptedTheme, or it is discarded.
type CandidateTheme struct {
	ThemeName      string         `json:"themeName"`
	Description    string         `json:"description"`
	StudyColors    ColorTriple    `json:"studyColors"`
	BreakColors    ColorTriple    `json:"breakColors"`
	VisualElements VisualElements `json:"visualElements"`
	Confidence     float64        `json:"confidence"` // 0-1.
}

// AllColors returns the six colors in study primary/secondary/accent,
// break primary/secondary/accent order.
func (c *CandidateTheme) AllColors() [6]string {
	s, b := c.StudyColors.Hex(), c.BreakColors.Hex()
	return [6]string{s[0], s[1], s[2], b[0], b[1], b[2]}
}

// ThemeColorSummary is the immutable digest of an accepted theme kept in
// session history: six hex values plus a single representative animation type.
type ThemeColorSummary struct {
	ID            string    `json:"id"`
	Hex           [6]string `json:"hex"` // Study p/s/a, then break p/s/a.
	AnimationType string    `json:"animationType,omitempty"`
	AcceptedAt    time.Time `json:"acceptedAt"`
}

// ParticleBackground configures a particle-field background.
type ParticleBackground struct {
	Pattern  string  `json:"pattern"`
	Count    int     `json:"count"`
	Duration int     `json:"duration"`
	Opacity  float64 `json:"opacity"`
}

// PatternBackground configures a repeated-character background.
type PatternBackground struct {
	StudyCharacter string  `json:"studyCharacter"`
	BreakCharacter string  `json:"breakCharacter"`
	Position       string  `json:"position"`
	Scale          float64 `json:"scale"`
}

// GradientBackground configures a gradient background.
type GradientBackground struct {
	Colors    []string `json:"colors"`
	Direction string   `json:"direction"`
}

// BackgroundElements is the assembled background configuration. Exactly one
// of the pointer fields is set, matching Type.
type BackgroundElements struct {
	Type      string              `json:"type"`
	Particles *ParticleBackground `json:"particles,omitempty"`
	Pattern   *PatternBackground  `json:"pattern,omitempty"`
	Gradient  *GradientBackground `json:"gradient,omitempty"`
}

// DiversityReport records the distances and conflicts measured when a theme
// was accepted.
type DiversityReport struct {
	IsUnique         bool     `json:"isUnique"`
	FallbackDistance float64  `json:"fallbackDistance"`
	SimilarityScore  float64  `json:"similarityScore"`
	ConflictingIDs   []string `json:"conflictingIds,omitempty"`
	Recommendations  []string `json:"recommendations,omitempty"`
}

// AcceptedTheme is the canonical, immutable output of the pipeline. It is
// constructed only after structural, diversity, and (when a prompt context
// resolved) contextual validation all passed.
type AcceptedTheme struct {
	ID                 string             `json:"id"`
	Kind               Kind               `json:"kind"`
	Name               string             `json:"name"`
	StudyColors        ColorTriple        `json:"studyColors"`
	BreakColors        ColorTriple        `json:"breakColors"`
	StudyBackground    string             `json:"studyBackground"`
	BreakBackground    string             `json:"breakBackground"`
	StudyGradient      []string           `json:"studyGradient"`
	BreakGradient      []string           `json:"breakGradient"`
	BackgroundElements BackgroundElements `json:"backgroundElements"`
	Animations         []Animation        `json:"animations,omitempty"`
	OriginalPrompt     string             `json:"originalPrompt"`
	CreatedAt          time.Time          `json:"createdAt"`
	Confidence         float64            `json:"confidence"`
	DiversityReport    DiversityReport    `json:"diversityReport"`
}

// Summary returns the session-history digest of the theme.
func (t *AcceptedTheme) Summary() ThemeColorSummary {
	s, b := t.StudyColors.Hex(), t.BreakColors.Hex()
	animType := ""
	if len(t.Animations) > 0 {
		animType = t.Animations[0].Type
	}
	return ThemeColorSummary{
		ID:            t.ID,
		Hex:           [6]string{s[0], s[1], s[2], b[0], b[1], b[2]},
		AnimationType: animType,
		AcceptedAt:    t.CreatedAt,
	}
}

// The fixed fallback palette. Diversity validation rejects candidates that
// sit too close to it, and the assembler emits it verbatim when generation
// is exhausted.
var (
	FallbackStudyColors = ColorTriple{Primary: "#6B73FF", Secondary: "#F0F2FF", Accent: "#4C51BF"}
	FallbackBreakColors = ColorTriple{Primary: "#48BB78", Secondary: "#F0FFF4", Accent: "#38A169"}
)

// DiversityConfig tunes diversity validation. Zero values are replaced by
// the documented defaults via Normalize.
type DiversityConfig struct {
	MinColorDistance   float64 `mapstructure:"min_color_distance"`
	MaxSimilarityScore float64 `mapstructure:"max_similarity_score"`
	SessionCapacity    int     `mapstructure:"session_capacity"`
}

// DefaultDiversityConfig returns the documented defaults.
func DefaultDiversityConfig() DiversityConfig {
	return DiversityConfig{
		MinColorDistance:   50,
		MaxSimilarityScore: 0.7,
		SessionCapacity:    10,
	}
}

// Normalize fills zero fields with defaults.
func (c DiversityConfig) Normalize() DiversityConfig {
	def := DefaultDiversityConfig()
	if c.MinColorDistance <= 0 {
		c.MinColorDistance = def.MinColorDistance
	}
	if c.MaxSimilarityScore <= 0 {
		c.MaxSimilarityScore = def.MaxSimilarityScore
	}
	if c.SessionCapacity <= 0 {
		c.SessionCapacity = def.SessionCapacity
	}
	return c
}

// DiversityLevel controls how emphatically the outbound prompt requests
// unique colors.
type DiversityLevel string

const (
	DiversityStandard DiversityLevel = "standard"
	DiversityHigh     DiversityLevel = "high"
	DiversityMaximum  DiversityLevel = "maximum"
)

// PromptOptions carries the composed instruction context for an Engine call.
type PromptOptions struct {
	DiversityLevel    DiversityLevel
	PreviousSummaries []ThemeColorSummary
	SessionToken      string
}

// PromptValidation is the result of Engine.ValidatePrompt.
type PromptValidation struct {
	IsValid         bool
	Errors          []string
	SanitizedPrompt string
}

// Engine is the contract to the external text-generation service. The
// pipeline treats its output as untrusted and validates every field.
type Engine interface {
	// GenerateTheme asks the service for a candidate theme. Cancelling ctx
	// aborts the in-flight call; the resulting error classifies as retryable.
	GenerateTheme(ctx context.Context, prompt string, opts PromptOptions) (*CandidateTheme, error)

	// ValidatePrompt checks prompt length and content before any network call.
	ValidatePrompt(prompt string) PromptValidation
}

// Store is the durable persistence collaborator for accepted themes.
// The pipeline owns only the transient in-memory session history.
type Store interface {
	Save(ctx context.Context, t *AcceptedTheme) error
	LoadAll(ctx context.Context) ([]*AcceptedTheme, error)
	Delete(ctx context.Context, id string) error
}

// CredentialSource supplies the API key for cloud engines. Storage and
// security of the key are outside this library.
type CredentialSource interface {
	APIKey() (string, error)
}
