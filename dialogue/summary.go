package dialogue

import (
	"strconv"
	"strings"

	"github.com/tbxark/cardioagent/types"
)

const missing = "—"

var chestPainGloss = map[types.ChestPain]string{
	types.ChestPainTypicalAngina:  "TA (Angina típica)",
	types.ChestPainAtypicalAngina: "ATA (Angina atípica)",
	types.ChestPainNonAnginal:     "NAP (Dor não anginosa)",
	types.ChestPainAsymptomatic:   "ASY (Assintomática)",
}

var ecgGloss = map[types.ECG]string{
	types.ECGNormal: "Normal",
	types.ECGST:     "ST-T wave abnormality",
	types.ECGHVE:    "Left ventricular hypertrophy",
}

var slopeGloss = map[types.Slope]string{
	types.SlopeUp:   "Up (ascendente)",
	types.SlopeFlat: "Flat (plano)",
	types.SlopeDown: "Down (descendente)",
}

func intOr(v *int) string {
	if v == nil {
		return missing
	}
	return strconv.Itoa(*v)
}

func flagOr(v *bool) string {
	switch {
	case v == nil:
		return missing
	case *v:
		return "Sim"
	default:
		return "Não"
	}
}

func glossOr[K ~string](v *K, gloss map[K]string) string {
	if v == nil {
		return missing
	}
	if g, ok := gloss[*v]; ok {
		return g
	}
	if *v == "" {
		return missing
	}
	return string(*v)
}

// BuildSummary lists every collected field followed by the confirmation
// question. Absent fields are shown as "—".
func BuildSummary(r types.Record) string {
	sex := missing
	if r.Sex != nil {
		sex = sexName(*r.Sex)
	}
	oldpeak := missing
	if r.Oldpeak != nil {
		oldpeak = FormatDecimal(*r.Oldpeak)
	}
	lines := []string{
		"✅ Resumo dos dados informados\n",
		"👤 Idade: " + intOr(r.Age),
		"🚻 Sexo: " + sex,
		"❤️ Dor no Peito (ChestPainType): " + glossOr(r.ChestPainType, chestPainGloss),
		"🩺 Pressão arterial (mmHg - RestingBP): " + intOr(r.RestingBP),
		"🧬 Colesterol (mg/dL): " + intOr(r.Cholesterol),
		"🍽️ Jejum (FastingBS): " + flagOr(r.FastingBS),
		"⚡ ECG em repouso (RestingECG): " + glossOr(r.RestingECG, ecgGloss),
		"💓 Frequência cardíaca máxima (bpm - MaxHR): " + intOr(r.MaxHR),
		"💢 Angina durante exercício (Exang): " + flagOr(r.Exang),
		"📉 Oldpeak (mV): " + oldpeak,
		"📈 Inclinação do ST (ST_Slope): " + glossOr(r.STSlope, slopeGloss),
		// Thal is not collected by this flow.
		"🧪 Exame de tálio (Thal): " + missing,
		"",
		"🔎 Confere?\n\n",
		"👉 Responda SIM para confirmar e enviar à API, ou NÃO para reiniciar o preenchimento.",
		"",
	}
	return strings.Join(lines, "\n")
}
