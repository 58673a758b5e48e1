package features

// Enumerated form domains. Labels must match training-time categories exactly.
var (
	Genders        = []string{"Male", "Female", "Other"}
	YesNo          = []string{"Yes", "No"}
	WorkTypes      = []string{"Private", "Self-employed", "Govt_job", "children", "Never_worked"}
	ResidenceTypes = []string{"Urban", "Rural"}
	SmokingStatus  = []string{"formerly smoked", "never smoked", "smokes", "Unknown"}
)

// PatientInput is what the form collects for one assessment.
type PatientInput struct {
	Gender          string  `json:"gender" binding:"required,oneof=Male Female Other"`
	Age             float64 `json:"age" binding:"min=0,max=100"`
	EverMarried     string  `json:"ever_married" binding:"required,oneof=Yes No"`
	WorkType        string  `json:"work_type" binding:"required,oneof=Private Self-employed Govt_job children Never_worked"`
	ResidenceType   string  `json:"residence_type" binding:"required,oneof=Urban Rural"`
	Hypertension    bool    `json:"hypertension"`
	HeartDisease    bool    `json:"heart_disease"`
	SmokingStatus   string  `json:"smoking_status" binding:"required,oneof='formerly smoked' 'never smoked' smokes Unknown"`
	AvgGlucoseLevel float64 `json:"avg_glucose_level" binding:"min=50,max=300"`
	BMI             float64 `json:"bmi" binding:"min=10,max=60"`
}

// DefaultInput mirrors the initial state of the form widgets.
func DefaultInput() PatientInput {
	return PatientInput{
		Gender:          "Male",
		Age:             50,
		EverMarried:     "Yes",
		WorkType:        "Private",
		ResidenceType:   "Urban",
		SmokingStatus:   "formerly smoked",
		AvgGlucoseLevel: 100.0,
		BMI:             25.0,
	}
}

// Column names in training order.
const (
	ColGender          = "gender"
	ColAge             = "age"
	ColHypertension    = "hypertension"
	ColHeartDisease    = "heart_disease"
	ColEverMarried     = "ever_married"
	ColWorkType        = "work_type"
	ColResidenceType   = "Residence_type"
	ColAvgGlucoseLevel = "avg_glucose_level"
	ColBMI             = "bmi"
	ColSmokingStatus   = "smoking_status"
)

var columns = []string{
	ColGender,
	ColAge,
	ColHypertension,
	ColHeartDisease,
	ColEverMarried,
	ColWorkType,
	ColResidenceType,
	ColAvgGlucoseLevel,
	ColBMI,
	ColSmokingStatus,
}

// FeatureVector is the single-row table the model was fit on.
// Hypertension and HeartDisease are the text tokens "0"/"1" because the
// model's categorical encoder was fit on string categories.
type FeatureVector struct {
	Gender          string  `json:"gender"`
	Age             float64 `json:"age"`
	Hypertension    string  `json:"hypertension"`
	HeartDisease    string  `json:"heart_disease"`
	EverMarried     string  `json:"ever_married"`
	WorkType        string  `json:"work_type"`
	ResidenceType   string  `json:"Residence_type"`
	AvgGlucoseLevel float64 `json:"avg_glucose_level"`
	BMI             float64 `json:"bmi"`
	SmokingStatus   string  `json:"smoking_status"`
}

// Cell is one named value of a FeatureVector row. Exactly one of Text or
// Number is meaningful, selected by Categorical.
type Cell struct {
	Column      string
	Categorical bool
	Text        string
	Number      float64
}

// Columns returns the column names in training order.
func Columns() []string {
	out := make([]string, len(columns))
	copy(out, columns)
	return out
}

// Cells returns the row in column order.
func (v FeatureVector) Cells() []Cell {
	return []Cell{
		{Column: ColGender, Categorical: true, Text: v.Gender},
		{Column: ColAge, Number: v.Age},
		{Column: ColHypertension, Categorical: true, Text: v.Hypertension},
		{Column: ColHeartDisease, Categorical: true, Text: v.HeartDisease},
		{Column: ColEverMarried, Categorical: true, Text: v.EverMarried},
		{Column: ColWorkType, Categorical: true, Text: v.WorkType},
		{Column: ColResidenceType, Categorical: true, Text: v.ResidenceType},
		{Column: ColAvgGlucoseLevel, Number: v.AvgGlucoseLevel},
		{Column: ColBMI, Number: v.BMI},
		{Column: ColSmokingStatus, Categorical: true, Text: v.SmokingStatus},
	}
}

// Normalize maps form values onto the model's feature schema. It performs no
// validation; the form is the only input gate.
func Normalize(in PatientInput) FeatureVector {
	return FeatureVector{
		Gender:          in.Gender,
		Age:             in.Age,
		Hypertension:    flagToken(in.Hypertension),
		HeartDisease:    flagToken(in.HeartDisease),
		EverMarried:     in.EverMarried,
		WorkType:        in.WorkType,
		ResidenceType:   in.ResidenceType,
		AvgGlucoseLevel: in.AvgGlucoseLevel,
		BMI:             in.BMI,
		SmokingStatus:   in.SmokingStatus,
	}
}

func flagToken(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
