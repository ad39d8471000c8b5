// Package generator orchestrates the theme generation pipeline as an
// explicit state machine: prompt gate, engine call, diversity and
// contextual validation, retry with escalation, and fallback on
// exhaustion. Generate never returns a Go error for generation failure;
// every outcome is folded into the Result.
package generator

import (
	"context"
	"sync"
	"time"

	"github.com/HerbHall/themeforge/internal/assembler"
	"github.com/HerbHall/themeforge/internal/contextual"
	"github.com/HerbHall/themeforge/internal/diversity"
	"github.com/HerbHall/themeforge/pkg/theme"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Retry and cache bounds.
const (
	// maxRetryAttempts caps total engine attempts regardless of caller
	// configuration.
	maxRetryAttempts = 2

	// recentCapacity bounds the orchestrator-local recent-themes cache,
	// separately from the diversity session history.
	recentCapacity = 10

	validationBackoff  = 500 * time.Millisecond
	serviceBackoffUnit = time.Second
)

// state enumerates the pipeline's generation states.
type state int

const (
	stateInit state = iota
	stateValidatingPrompt
	stateCallingEngine
	stateDiversityCheck
	stateContextualCheck
	stateAccepted
	stateRetry
	stateExhausted
	stateFallback
	stateFailed
)

var stateNames = [...]string{
	"init", "validating_prompt", "calling_engine", "diversity_check",
	"contextual_check", "accepted", "retry", "exhausted", "fallback", "failed",
}

func (s state) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Options tunes a single Generate call. The zero value requests standard
// diversity, the full retry budget, and no fallback.
type Options struct {
	// DiversityLevel used on the first attempt. Retries escalate it.
	DiversityLevel theme.DiversityLevel

	// PreviousThemes seeds the session history, so a caller restoring
	// state across restarts keeps uniqueness guarantees.
	PreviousThemes []theme.ThemeColorSummary

	// FallbackOnError substitutes the deterministic fallback theme when
	// generation is exhausted, instead of failing.
	FallbackOnError bool

	// RetryAttempts is the total engine attempt budget. Values above the
	// clamp or at zero resolve to the clamp.
	RetryAttempts int
}

// Result is the terminal outcome of a Generate call.
type Result struct {
	Success           bool
	Theme             *theme.AcceptedTheme
	Err               string
	UsedFallback      bool
	DiversityFailures int
}

// Orchestrator drives candidates through validation until one is accepted
// or the attempt budget is exhausted. Safe for concurrent Generate calls.
type Orchestrator struct {
	engine     theme.Engine
	diversity  *diversity.Validator
	contextual *contextual.Validator
	assembler  *assembler.Assembler
	metrics    *Metrics
	logger     *zap.Logger

	// sessionToken feeds the composed prompt's randomization seed for the
	// lifetime of this orchestrator.
	sessionToken string

	mu     sync.Mutex
	recent []theme.ThemeColorSummary

	sleep func(ctx context.Context, d time.Duration) error
}

// New creates an Orchestrator with a fresh session. The diversity
// validator, contextual validator, and assembler share one session
// history. A nil metrics uses unregistered counters.
func New(engine theme.Engine, cfg theme.DiversityConfig, metrics *Metrics, logger *zap.Logger) *Orchestrator {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	div := diversity.New(cfg, logger.Named("diversity"))
	return &Orchestrator{
		engine:       engine,
		diversity:    div,
		contextual:   contextual.New(logger.Named("contextual")),
		assembler:    assembler.New(div, logger.Named("assembler")),
		metrics:      metrics,
		logger:       logger,
		sessionToken: uuid.NewString(),
		sleep:        sleepCtx,
	}
}

// Generate runs the full pipeline for one prompt. It always returns a
// Result: an accepted theme, a fallback theme with a warning, or a
// failure carrying the last error and the diversity rejection count.
func (o *Orchestrator) Generate(ctx context.Context, prompt string, opts Options) Result {
	attempts := opts.RetryAttempts
	if attempts <= 0 || attempts > maxRetryAttempts {
		attempts = maxRetryAttempts
	}
	o.seedSession(opts.PreviousThemes)

	var (
		st                = stateInit
		attempt           = 1
		sanitized         string
		candidate         *theme.CandidateTheme
		uniq              diversity.UniquenessCheck
		lastErr           error
		diversityFailures int
	)

	for {
		switch st {
		case stateInit:
			st = stateValidatingPrompt

		case stateValidatingPrompt:
			v := o.engine.ValidatePrompt(prompt)
			if !v.IsValid {
				lastErr = &theme.InvalidPromptError{Reasons: v.Errors}
				o.metrics.reject(reasonPrompt)
				st = stateExhausted
				continue
			}
			sanitized = v.SanitizedPrompt
			st = stateCallingEngine

		case stateCallingEngine:
			o.metrics.attempts.Inc()
			o.logger.Debug("calling engine",
				zap.Int("attempt", attempt),
				zap.String("diversity_level", string(escalatedLevel(opts.DiversityLevel, attempt))),
			)
			c, err := o.engine.GenerateTheme(ctx, sanitized, theme.PromptOptions{
				DiversityLevel:    escalatedLevel(opts.DiversityLevel, attempt),
				PreviousSummaries: o.diversity.History().Snapshot(),
				SessionToken:      o.sessionToken,
			})
			if err != nil {
				lastErr = err
				o.metrics.reject(reasonService)
				st = stateRetry
				continue
			}
			if err := o.assembler.ValidateStructure(c); err != nil {
				lastErr = err
				o.metrics.reject(reasonStructural)
				st = stateRetry
				continue
			}
			candidate = c
			st = stateDiversityCheck

		case stateDiversityCheck:
			uniq = o.diversity.ValidateSessionUniqueness(candidate)
			if !uniq.IsUnique {
				diversityFailures++
				lastErr = &theme.DiversityError{
					FallbackDistance: uniq.FallbackDistance,
					SimilarityScore:  uniq.SimilarityScore,
					ConflictingIDs:   uniq.ConflictingIDs,
					Recommendations:  uniq.Recommendations,
				}
				o.metrics.reject(reasonDiversity)
				st = stateRetry
				continue
			}
			st = stateContextualCheck

		case stateContextualCheck:
			res := o.contextual.Validate(sanitized, candidate)
			if !res.IsAppropriate {
				lastErr = &theme.ContextualError{
					ColorScore:      res.ColorScore,
					AnimationScore:  res.AnimationScore,
					Overall:         res.Overall,
					Issues:          res.Issues,
					Recommendations: res.Recommendations,
				}
				o.metrics.reject(reasonContextual)
				st = stateRetry
				continue
			}
			st = stateAccepted

		case stateAccepted:
			t, err := o.assembler.Assemble(candidate, sanitized, uniq)
			if err != nil {
				lastErr = err
				st = stateRetry
				continue
			}
			o.remember(t.Summary())
			o.metrics.accepted.Inc()
			o.logger.Info("theme accepted",
				zap.String("theme_id", t.ID),
				zap.Int("attempt", attempt),
			)
			return Result{
				Success:           true,
				Theme:             t,
				DiversityFailures: diversityFailures,
			}

		case stateRetry:
			if !theme.IsRetryable(lastErr) || attempt >= attempts {
				st = stateExhausted
				continue
			}
			if err := o.sleep(ctx, backoffFor(lastErr, attempt)); err != nil {
				lastErr = theme.NewServiceError(theme.ErrCodeTimeout, "generation cancelled during backoff", err)
				st = stateExhausted
				continue
			}
			attempt++
			st = stateCallingEngine

		case stateExhausted:
			o.logger.Warn("generation exhausted",
				zap.Int("attempts", attempt),
				zap.Int("diversity_failures", diversityFailures),
				zap.Error(lastErr),
			)
			if opts.FallbackOnError {
				st = stateFallback
			} else {
				st = stateFailed
			}

		case stateFallback:
			t := o.assembler.BuildFallback(prompt)
			o.remember(t.Summary())
			o.metrics.fallbacks.Inc()
			return Result{
				Success:           true,
				Theme:             t,
				Err:               "generation failed, using fallback theme: " + errString(lastErr),
				UsedFallback:      true,
				DiversityFailures: diversityFailures,
			}

		case stateFailed:
			return Result{
				Success:           false,
				Err:               errString(lastErr),
				DiversityFailures: diversityFailures,
			}
		}
	}
}

// ClearSession forgets all remembered themes, both the shared session
// history and the orchestrator-local cache.
func (o *Orchestrator) ClearSession() {
	o.diversity.ClearSession()
	o.mu.Lock()
	o.recent = nil
	o.mu.Unlock()
}

// SessionCount returns the number of themes in the shared session history.
func (o *Orchestrator) SessionCount() int {
	return o.diversity.SessionCount()
}

// RecentThemes returns a copy of the orchestrator-local cache of themes
// accepted by this orchestrator, oldest first.
func (o *Orchestrator) RecentThemes() []theme.ThemeColorSummary {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]theme.ThemeColorSummary, len(o.recent))
	copy(out, o.recent)
	return out
}

// seedSession merges caller-provided summaries into the session history.
// Re-seeding the same IDs is idempotent.
func (o *Orchestrator) seedSession(prev []theme.ThemeColorSummary) {
	for _, s := range prev {
		o.diversity.History().Add(s)
	}
}

// remember appends to the local cache, evicting the oldest past capacity.
func (o *Orchestrator) remember(s theme.ThemeColorSummary) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.recent = append(o.recent, s)
	if n := len(o.recent) - recentCapacity; n > 0 {
		o.recent = o.recent[n:]
	}
}

// escalatedLevel maps the attempt number to a diversity level. The first
// attempt honors the caller's choice; later attempts force stronger
// uniqueness directives.
func escalatedLevel(base theme.DiversityLevel, attempt int) theme.DiversityLevel {
	switch {
	case attempt >= 3:
		return theme.DiversityMaximum
	case attempt == 2:
		return theme.DiversityHigh
	}
	if base == "" {
		return theme.DiversityStandard
	}
	return base
}

// backoffFor returns the wait before the next attempt: a short fixed pause
// for validation rejections, exponential for service failures.
func backoffFor(err error, attempt int) time.Duration {
	if theme.IsDiversityError(err) || theme.IsContextualError(err) {
		return validationBackoff
	}
	return serviceBackoffUnit << (attempt - 1)
}

// sleepCtx waits for d or until ctx is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func errString(err error) string {
	if err == nil {
		return "generation failed"
	}
	return err.Error()
}
