package dialogue

import (
	"fmt"
	"strings"

	"github.com/tbxark/cardioagent/types"
)

// BuildResult formats a prediction. explanation is appended verbatim.
func BuildResult(pred *types.Prediction, explanation string) string {
	lines := []string{"🔮 *Resultado da Predição*"}
	if pred.HighRisk() {
		lines = append(lines, "- Classe: 🔴 ALTO RISCO CARDÍACO")
	} else {
		lines = append(lines, "- Classe: 🟢 BAIXO RISCO CARDÍACO")
	}
	if pred != nil && pred.ProbabilityPositive != nil {
		lines = append(lines, fmt.Sprintf("- Probabilidade de classe positiva: %.2f%%", *pred.ProbabilityPositive*100))
	} else {
		lines = append(lines, "- Probabilidade: "+missing)
	}
	if pred != nil && len(pred.Warnings) > 0 {
		lines = append(lines, "\n⚠️ Avisos:\n "+strings.Join(pred.Warnings, "; "))
	}
	lines = append(lines, explanation)
	lines = append(lines, "Digite 'sim' para iniciar novo atendimento ou 'não' para encerrar.")
	return strings.Join(lines, "\n")
}
