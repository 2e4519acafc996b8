package narrative

import (
	"context"
	"errors"
	"time"

	"github.com/kfadel/gridops/core/logger"
	"github.com/kfadel/gridops/core/model"
)

// Outcome is the terminal state of one plan enhancement.
type Outcome string

const (
	// OutcomeEnhanced means the backend produced a valid bundle.
	OutcomeEnhanced Outcome = "ENHANCED"
	// OutcomeFallback means retries were exhausted and the template fallback
	// was used.
	OutcomeFallback Outcome = "FALLBACK_USED"
)

// Config defines narrator behaviour.
type Config struct {
	// MaxRetries is the number of retries after the first backend attempt.
	MaxRetries int `json:"max_retries"`
	// TimeoutSeconds bounds each backend call. A timeout counts as a
	// retryable failure.
	TimeoutSeconds int `json:"timeout_seconds"`
}

// SetDefaults applies two retries and a 30s per-call timeout.
func (c *Config) SetDefaults() {
	if c.MaxRetries <= 0 {
		c.MaxRetries = 2
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
}

// ErrNoBackend is wrapped into a BackendError when no backend is configured;
// enhancement then falls through to the template on the first attempt.
var ErrNoBackend = errors.New("no narrative backend configured")

// Narrator enhances mitigation plans with operator instructions.
type Narrator struct {
	backend Backend
	cfg     Config
	log     logger.Logger
}

// NewNarrator creates a narrator. backend may be nil, in which case every
// enhancement uses the template fallback.
func NewNarrator(cfg Config, backend Backend, log logger.Logger) *Narrator {
	cfg.SetDefaults()
	return &Narrator{backend: backend, cfg: cfg, log: log}
}

type fsmState int

const (
	stateAttempt fsmState = iota
	stateFallback
	stateDone
)

// Enhance replaces the plan's narrative fields in place. It runs the
// attempt/retry/fallback state machine and never returns a backend error:
// the result is always one of the two terminal outcomes.
func (n *Narrator) Enhance(ctx context.Context, p *model.MitigationPlan) Outcome {
	var (
		bundle  Bundle
		outcome Outcome
		attempt int
	)

	st := stateAttempt
	for st != stateDone {
		switch st {
		case stateAttempt:
			b, err := n.Generate(ctx, *p)
			if err == nil {
				bundle = b
				outcome = OutcomeEnhanced
				st = stateDone
				break
			}
			n.log.Warnf("narrative attempt %d for plan %s failed: %v", attempt+1, p.ID, err)
			if attempt >= n.cfg.MaxRetries {
				st = stateFallback
			} else {
				attempt++
			}
		case stateFallback:
			bundle = Fallback(*p)
			outcome = OutcomeFallback
			st = stateDone
		}
	}

	apply(p, bundle, outcome)
	return outcome
}

// Generate calls the backend once and validates the response. It returns a
// BackendError or SchemaValidationError on failure; callers wanting the
// never-fails behaviour use Enhance.
func (n *Narrator) Generate(ctx context.Context, p model.MitigationPlan) (Bundle, error) {
	if n.backend == nil {
		return Bundle{}, &BackendError{Err: ErrNoBackend}
	}

	callCtx, cancel := context.WithTimeout(ctx, time.Duration(n.cfg.TimeoutSeconds)*time.Second)
	defer cancel()

	raw, err := n.backend.Complete(callCtx, systemPrompt, buildUserPrompt(p))
	if err != nil {
		return Bundle{}, &BackendError{Err: err}
	}
	return parseBundle(raw)
}

// apply copies the bundle onto the plan. Only narrative fields are written.
func apply(p *model.MitigationPlan, b Bundle, outcome Outcome) {
	p.Narrative = model.Narrative{
		Summary:        b.ExecutiveSummary,
		OperatorSteps:  b.OperatorSteps,
		FieldChecklist: b.FieldChecklist,
		RollbackSteps:  b.RollbackSteps,
		Assumptions:    b.Assumptions,
	}
	p.NarrativeConfidence = b.Confidence
	if outcome == OutcomeEnhanced {
		p.NarrativeSource = model.NarrativeLLM
	} else {
		p.NarrativeSource = model.NarrativeFallback
	}
}
