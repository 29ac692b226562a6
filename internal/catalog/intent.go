package catalog

import (
	"errors"

	"github.com/petermazzocco/interior-admin/internal/logger"
	"github.com/petermazzocco/interior-admin/models"
)

type Phase string

const (
	PhaseIdle         Phase = "idle"
	PhaseValidating   Phase = "validating"
	PhaseAuthorizing  Phase = "authorizing"
	PhasePersisting   Phase = "persisting"
	PhaseAssetSyncing Phase = "assetSyncing"
)

// State is how an intent ended.
type State string

const (
	StateCommitted State = "committed"
	StateRejected  State = "rejected"
	StateFailed    State = "failed"
)

// Result is the outcome of a mutation intent. Warnings hold cleanup
// problems that did not stop the intent.
type Result struct {
	State    State
	Record   models.Record
	Warnings []error
	Trace    []Phase
}

type intent struct {
	kind  models.Kind
	op    string
	log   logger.Logger
	trace []Phase
}

func newIntent(log logger.Logger, kind models.Kind, op string) *intent {
	return &intent{
		kind:  kind,
		op:    op,
		log:   log.With("kind", kind, "op", op),
		trace: []Phase{PhaseIdle},
	}
}

func (in *intent) enter(p Phase) {
	if in.trace[len(in.trace)-1] == p {
		return
	}
	in.trace = append(in.trace, p)
	in.log.Debug("intent phase", "phase", p)
}

func (in *intent) phase() Phase {
	return in.trace[len(in.trace)-1]
}

// stateFor classifies a failed intent. Anything stopped before the first
// remote call is rejected; later failures are failed.
func (in *intent) stateFor(err error) State {
	switch in.phase() {
	case PhaseIdle, PhaseValidating, PhaseAuthorizing:
		return StateRejected
	}
	if errors.Is(err, models.ErrValidation) || errors.Is(err, models.ErrUnauthorized) {
		return StateRejected
	}
	return StateFailed
}
