package types

import "fmt"

// Step is a named state of the collection sequence.
type Step string

const (
	StepIdle           Step = "idle"
	StepAge            Step = "age"
	StepSex            Step = "sex"
	StepChestPain      Step = "chest_pain"
	StepRestingBP      Step = "resting_bp"
	StepCholesterol    Step = "cholesterol"
	StepFastingBS      Step = "fasting_bs"
	StepRestingECG     Step = "resting_ecg"
	StepMaxHR          Step = "max_hr"
	StepExang          Step = "exang"
	StepOldpeak        Step = "oldpeak"
	StepSTSlope        Step = "st_slope"
	StepConfirmSummary Step = "confirm_summary"
)

var stepOrder = []Step{
	StepIdle,
	StepAge,
	StepSex,
	StepChestPain,
	StepRestingBP,
	StepCholesterol,
	StepFastingBS,
	StepRestingECG,
	StepMaxHR,
	StepExang,
	StepOldpeak,
	StepSTSlope,
	StepConfirmSummary,
}

// Steps returns every step in collection order, idle first.
func Steps() []Step {
	out := make([]Step, len(stepOrder))
	copy(out, stepOrder)
	return out
}

// FieldSteps returns the steps that collect a record field.
func FieldSteps() []Step {
	return Steps()[1 : len(stepOrder)-1]
}

// ParseStep maps a wire value to a Step.
func ParseStep(s string) (Step, bool) {
	for _, step := range stepOrder {
		if string(step) == s {
			return step, true
		}
	}
	return StepIdle, false
}

// Next returns the step that follows s. The confirmation step wraps to idle.
func (s Step) Next() Step {
	for i, step := range stepOrder {
		if step == s && i+1 < len(stepOrder) {
			return stepOrder[i+1]
		}
	}
	return StepIdle
}

// IsField reports whether s collects a record field.
func (s Step) IsField() bool {
	return s != StepIdle && s != StepConfirmSummary && s.valid()
}

func (s Step) valid() bool {
	_, ok := ParseStep(string(s))
	return ok
}

// Pointer is the JSON pointer of the record field collected at s.
func (s Step) Pointer() string {
	switch s {
	case StepAge:
		return "/age"
	case StepSex:
		return "/sex"
	case StepChestPain:
		return "/chestpain_type"
	case StepRestingBP:
		return "/restingbp"
	case StepCholesterol:
		return "/cholesterol"
	case StepFastingBS:
		return "/fastingbs"
	case StepRestingECG:
		return "/restingecg"
	case StepMaxHR:
		return "/maxhr"
	case StepExang:
		return "/exang"
	case StepOldpeak:
		return "/oldpeak"
	case StepSTSlope:
		return "/st_slope"
	default:
		return ""
	}
}

type FieldInfo struct {
	JSONPointer string `json:"json_pointer"`
	DisplayName string `json:"display_name"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required"`
}

// ValidationError carries a message meant to be shown verbatim to the user.
type ValidationError struct {
	JSONPointer string `json:"json_pointer"`
	Message     string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

// MissingFieldsError is returned when a record is not complete yet.
type MissingFieldsError struct {
	Missing []FieldInfo
}

func (e *MissingFieldsError) Error() string {
	names := make([]string, 0, len(e.Missing))
	for _, f := range e.Missing {
		names = append(names, f.DisplayName)
	}
	return fmt.Sprintf("missing fields: %v", names)
}

type MessagePair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ToolRequest is the context handed to intent recognizers.
type ToolRequest struct {
	Step        Step        `json:"step"`
	MessagePair MessagePair `json:"message_pair"`
	Missing     []FieldInfo `json:"missing,omitempty"`
}
