package linkage

import (
	"fmt"

	"github.com/katalvlaran/eventcluster/events"
)

// TwoStepOptions configures TwoStep.
type TwoStepOptions struct {
	GroupColumn      string
	StepOneThreshold float64
	StepTwoThreshold float64
	StepOne          GetOptions
	StepTwo          GetOptions
	DefaultCluster   int
}

// DefaultTwoStepOptions groups by subject with threshold 2 on both stages.
func DefaultTwoStepOptions() TwoStepOptions {
	return TwoStepOptions{
		GroupColumn:      events.ColumnSubjectID,
		StepOneThreshold: 2,
		StepTwoThreshold: 2,
		StepOne:          DefaultGetOptions(),
		StepTwo:          DefaultGetOptions(),
		DefaultCluster:   events.DefaultCluster,
	}
}

// TwoStepResult is the outcome of TwoStep.
//
//   - Combined: every stage-one barycenter, pooled in group order; the
//     row position is the synthetic event id used by stage two.
//   - Internal: event id → pooled row position.
//   - StepTwo:  barycenters of the pooled set.
//   - External: event id → stage-two cluster.
type TwoStepResult struct {
	Combined []Barycenter
	Internal *events.LookupTable
	StepTwo  []Barycenter
	External *events.LookupTable
}

// TwoStep clusters every group separately, then clusters the pooled group
// barycenters, and composes both lookups:
// External[id] = stageTwo[Internal[id]].
// Precomputed distances in the stage options are ignored.
func (l *Linker) TwoStep(evs *events.Events, o TwoStepOptions) (TwoStepResult, error) {
	if err := o.StepOne.Criterion.Validate(); err != nil {
		return TwoStepResult{}, err
	}
	if err := o.StepTwo.Criterion.Validate(); err != nil {
		return TwoStepResult{}, err
	}
	groups, err := evs.Groups(o.GroupColumn)
	if err != nil {
		return TwoStepResult{}, err
	}

	stepOne := o.StepOne
	stepOne.Distance = nil
	stepOne.DefaultCluster = o.DefaultCluster

	internal := events.NewLookupTable(o.DefaultCluster)
	var (
		combined []Barycenter
		pooled   []events.Event
	)
	for _, g := range groups {
		res, err := l.GetBarycenters(g.Events, o.StepOneThreshold, stepOne)
		if err != nil {
			return TwoStepResult{}, fmt.Errorf("linkage: group %s: %w", g.Key, err)
		}
		for _, bc := range res.Barycenters {
			pos := len(combined)
			for _, id := range bc.Members {
				internal.Set(id, pos)
			}
			combined = append(combined, bc)
			pooled = append(pooled, events.Event{
				Index:     pos,
				Trace:     bc.Trace,
				Z1:        len(bc.Trace),
				Dz:        len(bc.Trace),
				SubjectID: g.Key,
			})
		}
	}
	if len(pooled) == 0 {
		return TwoStepResult{}, fmt.Errorf("%w: stage one kept no clusters", ErrInvalidInput)
	}
	l.logger.Infow("pooled group barycenters", "groups", len(groups), "barycenters", len(pooled))

	stepTwo := o.StepTwo
	stepTwo.Distance = nil
	stepTwo.DefaultCluster = o.DefaultCluster
	res, err := l.GetBarycenters(events.New(pooled), o.StepTwoThreshold, stepTwo)
	if err != nil {
		return TwoStepResult{}, fmt.Errorf("linkage: stage two: %w", err)
	}

	return TwoStepResult{
		Combined: combined,
		Internal: internal,
		StepTwo:  res.Barycenters,
		External: internal.Compose(res.Lookup),
	}, nil
}
