package validation

import "github.com/tbxark/cardioagent/types"

var sexes = map[string]types.Sex{
	"m":         types.SexMale,
	"masculino": types.SexMale,
	"homem":     types.SexMale,
	"male":      types.SexMale,
	"f":         types.SexFemale,
	"feminino":  types.SexFemale,
	"mulher":    types.SexFemale,
	"female":    types.SexFemale,
}

var chestPains = map[string]types.ChestPain{
	"ta":  types.ChestPainTypicalAngina,
	"ata": types.ChestPainAtypicalAngina,
	"nap": types.ChestPainNonAnginal,
	"asy": types.ChestPainAsymptomatic,
}

var ecgs = map[string]types.ECG{
	"normal":                           types.ECGNormal,
	"st":                               types.ECGST,
	"st-t":                             types.ECGST,
	"st-t wave abnormality":            types.ECGST,
	"anormalidade st-t":                types.ECGST,
	"hve":                              types.ECGHVE,
	"lvh":                              types.ECGHVE,
	"hipertrofia":                      types.ECGHVE,
	"lvh left ventricular hypertrophy": types.ECGHVE,
}

var slopes = map[string]types.Slope{
	"up":          types.SlopeUp,
	"ascendente":  types.SlopeUp,
	"crescente":   types.SlopeUp,
	"flat":        types.SlopeFlat,
	"plano":       types.SlopeFlat,
	"down":        types.SlopeDown,
	"descendente": types.SlopeDown,
	"decrescente": types.SlopeDown,
}

var yesNo = map[string]bool{
	"sim": true,
	"s":   true,
	"yes": true,
	"não": false,
	"nao": false,
	"n":   false,
	"no":  false,
}

func Sex(raw string) (types.Sex, error) {
	if v, ok := sexes[normalize(raw)]; ok {
		return v, nil
	}
	return "", fail(types.StepSex, "⚠️ Sexo não reconhecido.\nResponda \"Masculino\" (M) ou \"Feminino\" (F).")
}

func ChestPain(raw string) (types.ChestPain, error) {
	if v, ok := chestPains[normalize(raw)]; ok {
		return v, nil
	}
	return "", fail(types.StepChestPain, "⚠️ Tipo de dor no peito não reconhecido.\nEscolha uma das opções: TA, ATA, NAP ou ASY.")
}

func RestingECG(raw string) (types.ECG, error) {
	if v, ok := ecgs[normalize(raw)]; ok {
		return v, nil
	}
	return "", fail(types.StepRestingECG, "⚠️ Resultado de ECG não reconhecido.\nEscolha uma das opções: Normal, ST ou HVE.")
}

func STSlope(raw string) (types.Slope, error) {
	if v, ok := slopes[normalize(raw)]; ok {
		return v, nil
	}
	return "", fail(types.StepSTSlope, "⚠️ Inclinação do ST não reconhecida.\nEscolha uma das opções: Up, Flat ou Down.")
}

func FastingBS(raw string) (bool, error) {
	if v, ok := yesNo[normalize(raw)]; ok {
		return v, nil
	}
	return false, fail(types.StepFastingBS, "⚠️ Resposta não reconhecida.\nInforme se a glicemia em jejum está acima de 120 mg/dL respondendo 'sim' ou 'não'.")
}

func Exang(raw string) (bool, error) {
	if v, ok := yesNo[normalize(raw)]; ok {
		return v, nil
	}
	return false, fail(types.StepExang, "⚠️ Resposta não reconhecida.\nO paciente apresentou angina induzida por exercício? Responda 'sim' ou 'não'.")
}
