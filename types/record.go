package types

type Sex string

const (
	SexMale   Sex = "M"
	SexFemale Sex = "F"
)

type ChestPain string

const (
	ChestPainTypicalAngina  ChestPain = "TA"
	ChestPainAtypicalAngina ChestPain = "ATA"
	ChestPainNonAnginal     ChestPain = "NAP"
	ChestPainAsymptomatic   ChestPain = "ASY"
)

type ECG string

const (
	ECGNormal ECG = "Normal"
	ECGST     ECG = "ST"
	ECGHVE    ECG = "HVE"
)

type Slope string

const (
	SlopeUp   Slope = "Up"
	SlopeFlat Slope = "Flat"
	SlopeDown Slope = "Down"
)

// Record is the partially collected form. A nil field has not been
// collected yet.
type Record struct {
	Age           *int       `json:"age,omitempty"`
	Sex           *Sex       `json:"sex,omitempty"`
	ChestPainType *ChestPain `json:"chestpain_type,omitempty"`
	RestingBP     *int       `json:"restingbp,omitempty"`
	Cholesterol   *int       `json:"cholesterol,omitempty"`
	FastingBS     *bool      `json:"fastingbs,omitempty"`
	RestingECG    *ECG       `json:"restingecg,omitempty"`
	MaxHR         *int       `json:"maxhr,omitempty"`
	Exang         *bool      `json:"exang,omitempty"`
	Oldpeak       *float64   `json:"oldpeak,omitempty"`
	STSlope       *Slope     `json:"st_slope,omitempty"`
}

// Patient is a record with every field collected.
type Patient struct {
	Age           int
	Sex           Sex
	ChestPainType ChestPain
	RestingBP     int
	Cholesterol   int
	FastingBS     bool
	RestingECG    ECG
	MaxHR         int
	Exang         bool
	Oldpeak       float64
	STSlope       Slope
}

var fieldInfos = map[Step]FieldInfo{
	StepAge:         {JSONPointer: "/age", DisplayName: "Idade", Description: "idade em anos completos", Required: true},
	StepSex:         {JSONPointer: "/sex", DisplayName: "Sexo", Description: "M ou F", Required: true},
	StepChestPain:   {JSONPointer: "/chestpain_type", DisplayName: "Dor no peito", Description: "TA, ATA, NAP ou ASY", Required: true},
	StepRestingBP:   {JSONPointer: "/restingbp", DisplayName: "Pressão arterial em repouso", Description: "mmHg", Required: true},
	StepCholesterol: {JSONPointer: "/cholesterol", DisplayName: "Colesterol", Description: "mg/dL", Required: true},
	StepFastingBS:   {JSONPointer: "/fastingbs", DisplayName: "Glicemia em jejum", Description: "sim ou não", Required: true},
	StepRestingECG:  {JSONPointer: "/restingecg", DisplayName: "ECG em repouso", Description: "Normal, ST ou HVE", Required: true},
	StepMaxHR:       {JSONPointer: "/maxhr", DisplayName: "Frequência cardíaca máxima", Description: "bpm entre 60 e 202", Required: true},
	StepExang:       {JSONPointer: "/exang", DisplayName: "Angina induzida por exercício", Description: "sim ou não", Required: true},
	StepOldpeak:     {JSONPointer: "/oldpeak", DisplayName: "Oldpeak", Description: "entre 0.0 e 10.0", Required: true},
	StepSTSlope:     {JSONPointer: "/st_slope", DisplayName: "Inclinação do ST", Description: "Up, Flat ou Down", Required: true},
}

// Field returns the description of the field collected at s.
func Field(s Step) (FieldInfo, bool) {
	info, ok := fieldInfos[s]
	return info, ok
}

// Has reports whether the field collected at s is present.
func (r Record) Has(s Step) bool {
	switch s {
	case StepAge:
		return r.Age != nil
	case StepSex:
		return r.Sex != nil
	case StepChestPain:
		return r.ChestPainType != nil
	case StepRestingBP:
		return r.RestingBP != nil
	case StepCholesterol:
		return r.Cholesterol != nil
	case StepFastingBS:
		return r.FastingBS != nil
	case StepRestingECG:
		return r.RestingECG != nil
	case StepMaxHR:
		return r.MaxHR != nil
	case StepExang:
		return r.Exang != nil
	case StepOldpeak:
		return r.Oldpeak != nil
	case StepSTSlope:
		return r.STSlope != nil
	default:
		return false
	}
}

// Missing lists the fields not collected yet, in collection order.
func (r Record) Missing() []FieldInfo {
	var missing []FieldInfo
	for _, s := range FieldSteps() {
		if !r.Has(s) {
			missing = append(missing, fieldInfos[s])
		}
	}
	return missing
}

// NextMissing returns the first field step after s that is still absent,
// or StepConfirmSummary when every later field is present.
func (r Record) NextMissing(s Step) Step {
	for next := s.Next(); next.IsField(); next = next.Next() {
		if !r.Has(next) {
			return next
		}
	}
	return StepConfirmSummary
}

// Complete converts r into a Patient. It fails with *MissingFieldsError
// while any field is absent.
func (r Record) Complete() (Patient, error) {
	if missing := r.Missing(); len(missing) > 0 {
		return Patient{}, &MissingFieldsError{Missing: missing}
	}
	return Patient{
		Age:           *r.Age,
		Sex:           *r.Sex,
		ChestPainType: *r.ChestPainType,
		RestingBP:     *r.RestingBP,
		Cholesterol:   *r.Cholesterol,
		FastingBS:     *r.FastingBS,
		RestingECG:    *r.RestingECG,
		MaxHR:         *r.MaxHR,
		Exang:         *r.Exang,
		Oldpeak:       *r.Oldpeak,
		STSlope:       *r.STSlope,
	}, nil
}
