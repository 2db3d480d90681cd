// Package rationale explains a prediction in terms of the submitted values.
package rationale

import (
	"fmt"
	"strings"

	"github.com/tbxark/cardioagent/types"
)

type rule struct {
	match  func(p types.Payload) bool
	reason string
}

var highRiskRules = []rule{
	{func(p types.Payload) bool { return p.Age >= 55 }, "idade avançada"},
	{func(p types.Payload) bool { return p.MaxHR < 100 }, "HR baixo (<100)"},
	{func(p types.Payload) bool { return p.FastingBS == 1 }, "jejum alterado"},
	{func(p types.Payload) bool { return slopeIs(p, types.SlopeFlat) }, "ST plano"},
	{func(p types.Payload) bool { return slopeIs(p, types.SlopeDown) }, "ST descendente"},
	{func(p types.Payload) bool { return chestIs(p, types.ChestPainAsymptomatic) }, "assintomático"},
	{func(p types.Payload) bool { return hypertrophy(p.RestingECG) }, "ECG com hipertrofia"},
	{func(p types.Payload) bool { return p.Exang == 1 }, "esforço com angina"},
	{func(p types.Payload) bool { return p.Oldpeak >= 2.0 }, "oldpeak alto"},
}

var lowRiskRules = []rule{
	{func(p types.Payload) bool { return p.Age < 50 }, "idade jovem"},
	{func(p types.Payload) bool { return p.MaxHR > 140 }, "HR elevado (>140)"},
	{func(p types.Payload) bool { return p.FastingBS == 0 }, "jejum normal"},
	{func(p types.Payload) bool { return slopeIs(p, types.SlopeUp) }, "ST ascendente"},
	{func(p types.Payload) bool {
		return chestIs(p, types.ChestPainAtypicalAngina) || chestIs(p, types.ChestPainNonAnginal)
	}, "dor anginosa atípica/não anginosa"},
	{func(p types.Payload) bool { return strings.EqualFold(p.RestingECG, string(types.ECGNormal)) }, "ECG normal"},
	{func(p types.Payload) bool { return p.Exang == 0 }, "sem angina ao esforço"},
	{func(p types.Payload) bool { return p.Oldpeak <= 0.2 }, "oldpeak baixo"},
}

const (
	highRiskFallback = "características semelhantes às observadas em pacientes com doença cardíaca"
	lowRiskFallback  = "padrão compatível com baixo risco de doença cardíaca"
)

func slopeIs(p types.Payload, s types.Slope) bool {
	return strings.EqualFold(p.STSlope, string(s))
}

func chestIs(p types.Payload, c types.ChestPain) bool {
	return strings.EqualFold(p.ChestPainType, string(c))
}

func hypertrophy(ecg string) bool {
	return strings.EqualFold(ecg, string(types.ECGHVE)) || strings.EqualFold(ecg, "LVH")
}

func reasons(p types.Payload, rules []rule) []string {
	var out []string
	for _, r := range rules {
		if r.match(p) {
			out = append(out, r.reason)
		}
	}
	return out
}

// Explain lists the submitted values that agree with the predicted bucket.
// It never panics; a failure is rendered as a fallback sentence.
func Explain(p types.Payload, pred *types.Prediction) string {
	return explain(p, pred, highRiskRules, lowRiskRules)
}

func explain(p types.Payload, pred *types.Prediction, high, low []rule) (text string) {
	defer func() {
		if r := recover(); r != nil {
			text = fmt.Sprintf("\n➡️ Explicação automática não gerada (%v).\n\n", r)
		}
	}()

	rules, fallback, tendency := low, lowRiskFallback, "baixo risco"
	if pred.HighRisk() {
		rules, fallback, tendency = high, highRiskFallback, "alto risco"
	}
	body := strings.Join(reasons(p, rules), ", ")
	if body == "" {
		body = fallback
	}
	return "\n➡️ Explicação:\n" + body + " → o modelo tende a classificar como " + tendency + ".\n\n"
}
