// Package dialogue holds every user-facing message of the assessment:
// prompts, acknowledgements, the confirmation summary and the result.
package dialogue

import (
	"fmt"
	"math"
	"strconv"

	"github.com/tbxark/cardioagent/types"
)

const (
	Greeting = " Olá! Seja bem-vindo(a) à avaliação de risco cardiovascular.\n\n" +
		"Este assistente ajudará você a estimar, de forma simples e segura, o seu risco de doenças cardíacas com base em alguns dados clínicos.\n\n" +
		"Podemos começar agora?\n" +
		" Responda “sim” para iniciar ou “não” para sair."

	Farewell = "✅ Entendido!\nO atendimento foi encerrado.\n\n💬 Agradecemos seu tempo e confiança. Cuide bem do seu coração! ❤️\n\nAté logo!"

	IdleReprompt = "Opa! 😅\nEsse tipo de solicitação não pode ser feita aqui.\n\n" +
		"Podemos iniciar sua avaliação de risco cardiovascular agora?\n\n" +
		"👉 Responda “sim” para começar ou “não” para sair."

	ConfirmReprompt = "Por favor, responda 'sim' para confirmar e enviar à API, ou 'não' para recomeçar."

	retryInstruction = "Digite 'sim' para tentar novamente ou 'não' para recomeçar."
)

var prompts = map[types.Step]string{
	types.StepAge: "Agora, por favor, informe a idade do paciente (em anos completos).",
	types.StepSex: "Agora, por favor, informe o sexo do paciente (Masculino ou Feminino).",
	types.StepChestPain: "Agora, por favor, informe se o paciente sente dor no peito. Se sim, escolha a opção que melhor descreve o tipo de dor:\n\n" +
		"💔 TA: Angina típica (dor típica de esforço)\n" +
		"💓 ATA: Angina atípica (dor atípica)\n" +
		"❤️ NAP: Dor não anginosa (não relacionada ao coração)\n" +
		"🚫 ASY: Assintomática (sem dor no peito)",
	types.StepRestingBP:   "Agora, por favor, informe a pressão arterial em repouso (em mmHg).",
	types.StepCholesterol: "Agora, por favor, informe o **nível de colesterol total** (em **mg/dL**).",
	types.StepFastingBS:   "Agora, por favor, informe se a glicemia em jejum do paciente está acima de 120 mg/dL (FastingBS).\n👉 Responda 'sim' ou 'não'.",
	types.StepRestingECG: "Agora, por favor, informe o resultado do eletrocardiograma em repouso (RestingECG).\n\n" +
		"As opções são:\n" +
		"🩺 Normal\n" +
		"⚡ ST-T wave abnormality\n" +
		"❤️ LVH Left ventricular hypertrophy",
	types.StepMaxHR:   "Agora, por favor, informe a frequência cardíaca máxima atingida (MaxHR), em batimentos por minuto (bpm).",
	types.StepExang:   "Agora, por favor, informe se o paciente apresentou angina induzida por exercício (Exang).\n👉 Responda 'sim' ou 'não'.",
	types.StepOldpeak: "Agora, por favor, informe o valor da depressão do segmento ST (Oldpeak), em relação ao repouso.\n👉 Informe um número entre 0.0 e 10.0",
	types.StepSTSlope: "Agora, por favor, informe a inclinação do segmento ST (Slope):\n" +
		"📈 Up → crescente\n" +
		"➖ Flat → plano\n" +
		"📉 Down → decrescente",
}

// Prompt returns the question asked when s becomes the current step.
func Prompt(s types.Step) string {
	return prompts[s]
}

// Start is the reply to accepting the assessment.
func Start() string {
	return "Perfeito!\n" + Prompt(types.StepAge)
}

// Acknowledge confirms the value just stored for s. It returns an empty
// string when r does not hold that field.
func Acknowledge(s types.Step, r types.Record) string {
	if !r.Has(s) {
		return ""
	}
	switch s {
	case types.StepAge:
		return fmt.Sprintf("Perfeito! 👏\nA idade registrada é %d anos.", *r.Age)
	case types.StepSex:
		return fmt.Sprintf("Entendido! 👍\nSexo registrado: %s.", sexName(*r.Sex))
	case types.StepChestPain:
		return fmt.Sprintf("Entendido! 👍\nDor no peito registrada: %s.", *r.ChestPainType)
	case types.StepRestingBP:
		return fmt.Sprintf("Perfeito! 🙌\nPressão registrada: %d mmHg.", *r.RestingBP)
	case types.StepCholesterol:
		return fmt.Sprintf("Ótimo! 🙌\nColesterol registrado: %d mg/dL.", *r.Cholesterol)
	case types.StepFastingBS:
		if *r.FastingBS {
			return "Entendido! 👍\nGlicemia em jejum acima de 120 mg/dL registrada."
		}
		return "Entendido! 👍\nGlicemia em jejum normal registrada."
	case types.StepRestingECG:
		return fmt.Sprintf("Perfeito! 💓\nResultado do ECG: %s.", *r.RestingECG)
	case types.StepMaxHR:
		return fmt.Sprintf("Excelente! 🩺\nFrequência cardíaca máxima: %d bpm.", *r.MaxHR)
	case types.StepExang:
		if *r.Exang {
			return "Entendido 👍\nO paciente APRESENTOU Angina Induzida durante o exercício."
		}
		return "Entendido 👍\nO paciente NÃO APRESENTOU Angina Induzida durante o exercício."
	case types.StepOldpeak:
		return fmt.Sprintf("Perfeito 👍\nValor de Oldpeak registrado: %s mV.", FormatDecimal(*r.Oldpeak))
	case types.StepSTSlope:
		return fmt.Sprintf("Perfeito 👍\nInclinação do ST registrada: %s.", *r.STSlope)
	default:
		return ""
	}
}

// Advance is the reply after a successful write at s: the acknowledgement
// followed by the question of the next step.
func Advance(s types.Step, r types.Record) string {
	next := r.NextMissing(s)
	if next == types.StepConfirmSummary {
		return BuildSummary(r)
	}
	return Acknowledge(s, r) + "\n\n" + Prompt(next)
}

// FormatFailure is the reply when the prediction could not be obtained.
func FormatFailure(err error) string {
	return "❌ " + err.Error() + "\n\n" + retryInstruction
}

// FormatDecimal renders whole values with one decimal place, others with
// the shortest exact representation.
func FormatDecimal(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func sexName(s types.Sex) string {
	switch s {
	case types.SexMale:
		return "Masculino"
	case types.SexFemale:
		return "Feminino"
	default:
		return "—"
	}
}
