package wizard

import (
	"fmt"

	"github.com/BradenHooton/srm/internal/models"
)

// Step is a position in the creation flow. The zero value is not a step.
type Step int

const (
	StepCustomer Step = iota + 1
	StepSupplier
	StepDetail
	StepExclusion
	// StepComplete is reported once the exclusion step has been stored. A
	// session never waits on it.
	StepComplete
)

// Steps lists the submittable steps in order.
var Steps = []Step{StepCustomer, StepSupplier, StepDetail, StepExclusion}

func (s Step) String() string {
	switch s {
	case StepCustomer:
		return "customer"
	case StepSupplier:
		return "supplier"
	case StepDetail:
		return "detail"
	case StepExclusion:
		return "exclusion"
	case StepComplete:
		return "complete"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// ParseStep maps a submitted step name to a Step. Only the four
// submittable steps are accepted.
func ParseStep(name string) (Step, error) {
	for _, step := range Steps {
		if step.String() == name {
			return step, nil
		}
	}
	return 0, fmt.Errorf("%q: %w", name, models.ErrUnknownStep)
}

// Next returns the step that follows s.
func (s Step) Next() Step {
	switch s {
	case StepCustomer:
		return StepSupplier
	case StepSupplier:
		return StepDetail
	case StepDetail:
		return StepExclusion
	default:
		return StepComplete
	}
}

func (s Step) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Step) UnmarshalText(text []byte) error {
	if string(text) == StepComplete.String() {
		*s = StepComplete
		return nil
	}
	step, err := ParseStep(string(text))
	if err != nil {
		return err
	}
	*s = step
	return nil
}
