// Package validation turns raw chat answers into normalized record values.
// Every error returned here is a *types.ValidationError whose message can be
// shown to the user as is.
package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tbxark/cardioagent/types"
)

const (
	AgeMin         = 1
	AgeMax         = 120
	RestingBPMin   = 50
	RestingBPMax   = 250
	CholesterolMin = 80
	CholesterolMax = 700
	MaxHRMin       = 60
	MaxHRMax       = 202
	OldpeakMin     = 0.0
	OldpeakMax     = 10.0
)

var decimalPattern = regexp.MustCompile(`^(\d+([.,]\d*)?|[.,]\d+)$`)

func fail(step types.Step, format string, args ...any) error {
	return &types.ValidationError{
		JSONPointer: step.Pointer(),
		Message:     fmt.Sprintf(format, args...),
	}
}

func normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func intInRange(step types.Step, raw string, min, max int, notNumber, outOfRange string) (int, error) {
	text := normalize(raw)
	if text == "" {
		return 0, fail(step, "%s", notNumber)
	}
	v, err := strconv.Atoi(text)
	if err != nil {
		return 0, fail(step, "%s", notNumber)
	}
	if v < min || v > max {
		return 0, fail(step, outOfRange, min, max)
	}
	return v, nil
}

func Age(raw string) (int, error) {
	return intInRange(types.StepAge, raw, AgeMin, AgeMax,
		"⚠️ Idade inválida.\nInforme a idade em anos completos, usando apenas números (ex.: 54).",
		"⚠️ Idade fora do intervalo aceito.\nInforme um valor entre %d e %d anos.")
}

func RestingBP(raw string) (int, error) {
	return intInRange(types.StepRestingBP, raw, RestingBPMin, RestingBPMax,
		"⚠️ Pressão arterial inválida.\nInforme apenas o número, em mmHg (ex.: 130).",
		"⚠️ Pressão arterial fora do intervalo fisiológico.\nInforme um valor entre %d e %d mmHg.")
}

func Cholesterol(raw string) (int, error) {
	return intInRange(types.StepCholesterol, raw, CholesterolMin, CholesterolMax,
		"⚠️ Colesterol inválido.\nInforme apenas o número, em mg/dL (ex.: 220).",
		"⚠️ Colesterol fora do intervalo fisiológico.\nInforme um valor entre %d e %d mg/dL.")
}

func MaxHR(raw string) (int, error) {
	return intInRange(types.StepMaxHR, raw, MaxHRMin, MaxHRMax,
		"⚠️ Frequência cardíaca inválida.\nInforme apenas o número de batimentos por minuto (ex.: 150).",
		"⚠️ Frequência cardíaca máxima fora do intervalo.\nInforme um valor entre %d e %d bpm.")
}

const oldpeakInvalid = "⚠️ Valor de Oldpeak inválido.\nInforme um número decimal, por exemplo 1.5 ou 1,5."

func Oldpeak(raw string) (float64, error) {
	text := normalize(raw)
	if !decimalPattern.MatchString(text) {
		return 0, fail(types.StepOldpeak, oldpeakInvalid)
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(text, ",", "."), 64)
	if err != nil {
		return 0, fail(types.StepOldpeak, oldpeakInvalid)
	}
	if v < OldpeakMin || v > OldpeakMax {
		return 0, fail(types.StepOldpeak, "⚠️ Oldpeak fora do intervalo.\nInforme um número entre %.1f e %.1f.", OldpeakMin, OldpeakMax)
	}
	return v, nil
}
