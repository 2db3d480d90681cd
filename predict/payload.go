package predict

import "github.com/tbxark/cardioagent/types"

func flag(v bool) int {
	if v {
		return 1
	}
	return 0
}

// BuildPayload maps a complete patient to the classifier's field names.
func BuildPayload(p types.Patient) types.Payload {
	return types.Payload{
		Age:           p.Age,
		Sex:           string(p.Sex),
		ChestPainType: string(p.ChestPainType),
		RestingBP:     float64(p.RestingBP),
		Cholesterol:   p.Cholesterol,
		FastingBS:     flag(p.FastingBS),
		RestingECG:    string(p.RestingECG),
		MaxHR:         p.MaxHR,
		Exang:         flag(p.Exang),
		Oldpeak:       p.Oldpeak,
		STSlope:       string(p.STSlope),
	}
}

// PayloadFromRecord fails with *types.MissingFieldsError instead of sending
// an incomplete record.
func PayloadFromRecord(r types.Record) (types.Payload, error) {
	p, err := r.Complete()
	if err != nil {
		return types.Payload{}, err
	}
	return BuildPayload(p), nil
}
