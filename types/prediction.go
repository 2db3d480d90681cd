package types

import (
	"fmt"
	"strings"
)

// Payload is the record as the classifier API expects it.
type Payload struct {
	Age           int     `json:"Age"`
	Sex           string  `json:"Sex"`
	ChestPainType string  `json:"ChestPainType"`
	RestingBP     float64 `json:"RestingBP"`
	Cholesterol   int     `json:"Cholesterol"`
	FastingBS     int     `json:"FastingBS"`
	RestingECG    string  `json:"RestingECG"`
	MaxHR         int     `json:"MaxHR"`
	Exang         int     `json:"Exang"`
	Oldpeak       float64 `json:"Oldpeak"`
	STSlope       string  `json:"ST_Slope"`
}

// Prediction is the classifier response.
type Prediction struct {
	Prediction          any      `json:"prediction"`
	Label               string   `json:"label"`
	ProbabilityPositive *float64 `json:"probability_positive,omitempty"`
	Warnings            []string `json:"warnings,omitempty"`
}

var highRiskLabels = map[string]bool{
	"ALTO_RISCO": true,
	"ALTO RISCO": true,
	"HIGH_RISK":  true,
	"HIGH RISK":  true,
	"1":          true,
}

// HighRisk reports whether the prediction falls in the high-risk bucket.
func (p *Prediction) HighRisk() bool {
	if p == nil {
		return false
	}
	label := strings.ToUpper(strings.TrimSpace(p.Label))
	if label != "" {
		return highRiskLabels[label]
	}
	switch v := p.Prediction.(type) {
	case nil:
		return false
	case float64:
		return v == 1
	case int:
		return v == 1
	case int64:
		return v == 1
	case bool:
		return v
	default:
		return strings.TrimSpace(fmt.Sprint(v)) == "1"
	}
}
