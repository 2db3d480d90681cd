package agent

import (
	"fmt"

	"github.com/tbxark/cardioagent/patch"
	"github.com/tbxark/cardioagent/types"
	"github.com/tbxark/cardioagent/validation"
)

var recordPaths = patch.PathSet[types.Record]()

// writablePaths returns the only pointer a step may write.
func writablePaths(step types.Step) (map[string]bool, error) {
	pointer := step.Pointer()
	if !recordPaths[pointer] {
		return nil, fmt.Errorf("step %s has no record field", step)
	}
	return map[string]bool{pointer: true}, nil
}

type fieldParser func(raw string) (any, error)

func wrap[T any](fn func(string) (T, error)) fieldParser {
	return func(raw string) (any, error) {
		v, err := fn(raw)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}

var fieldParsers = map[types.Step]fieldParser{
	types.StepAge:         wrap(validation.Age),
	types.StepSex:         wrap(validation.Sex),
	types.StepChestPain:   wrap(validation.ChestPain),
	types.StepRestingBP:   wrap(validation.RestingBP),
	types.StepCholesterol: wrap(validation.Cholesterol),
	types.StepFastingBS:   wrap(validation.FastingBS),
	types.StepRestingECG:  wrap(validation.RestingECG),
	types.StepMaxHR:       wrap(validation.MaxHR),
	types.StepExang:       wrap(validation.Exang),
	types.StepOldpeak:     wrap(validation.Oldpeak),
	types.StepSTSlope:     wrap(validation.STSlope),
}
