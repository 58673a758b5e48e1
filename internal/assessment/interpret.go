package assessment

import (
	"fmt"
	"strings"

	"github.com/Skufu/StrokeGuard/internal/features"
)

const (
	CategoryHigh = "HIGH"
	CategoryLow  = "LOW"
)

// Risk factor flags, in display order.
const (
	FlagHypertension    = "Hypertension"
	FlagHeartDisease    = "Heart Disease"
	FlagCurrentSmoker   = "Current Smoker"
	FlagAgeOver65       = "Age over 65"
	FlagElevatedGlucose = "Elevated Glucose"
	FlagObesity         = "Obesity (BMI > 30)"

	NoMajorRiskFactors = "No major risk factors identified"
)

// Heuristic thresholds shown next to the prediction. They are informational
// and have no effect on the model output.
const (
	ageThreshold     = 65.0
	glucoseThreshold = 140.0
	bmiThreshold     = 30.0
	smokingCurrent   = "smokes"
)

const (
	adviceHigh = "This patient matches profiles with a high probability of stroke. Immediate clinical consultation is recommended."
	adviceLow  = "The patient currently exhibits a low probability of stroke based on the provided metrics."
)

type Result struct {
	ID                 string   `json:"id"`
	PredictedClass     int      `json:"predicted_class"`
	Probability        float64  `json:"probability"`
	ProbabilityDisplay string   `json:"probability_display"`
	Category           string   `json:"category"`
	Headline           string   `json:"headline"`
	Advice             string   `json:"advice"`
	RiskFactors        []string `json:"risk_factors"`
	NoMajorRiskFactors bool     `json:"no_major_risk_factors"`
	RiskFactorSummary  string   `json:"risk_factor_summary"`
}

// Interpret turns the model's decision into a displayable result. The
// category follows predictedClass only; probability is never re-thresholded.
func Interpret(predictedClass int, probability float64, in features.PatientInput) Result {
	category := CategoryLow
	headline := "Low Risk Detected: "
	advice := adviceLow
	if predictedClass == 1 {
		category = CategoryHigh
		headline = "High Risk Detected: "
		advice = adviceHigh
	}

	pct := FormatProbability(probability)
	factors := RiskFactors(in)

	summary := NoMajorRiskFactors
	if len(factors) > 0 {
		summary = strings.Join(factors, ", ")
	}

	return Result{
		PredictedClass:     predictedClass,
		Probability:        probability,
		ProbabilityDisplay: pct,
		Category:           category,
		Headline:           headline + pct,
		Advice:             advice,
		RiskFactors:        factors,
		NoMajorRiskFactors: len(factors) == 0,
		RiskFactorSummary:  summary,
	}
}

// RiskFactors evaluates the fixed rule set against the raw input. The
// returned slice is never nil.
func RiskFactors(in features.PatientInput) []string {
	factors := []string{}

	if in.Hypertension {
		factors = append(factors, FlagHypertension)
	}
	if in.HeartDisease {
		factors = append(factors, FlagHeartDisease)
	}
	if in.SmokingStatus == smokingCurrent {
		factors = append(factors, FlagCurrentSmoker)
	}
	if in.Age > ageThreshold {
		factors = append(factors, FlagAgeOver65)
	}
	if in.AvgGlucoseLevel > glucoseThreshold {
		factors = append(factors, FlagElevatedGlucose)
	}
	if in.BMI > bmiThreshold {
		factors = append(factors, FlagObesity)
	}

	return factors
}

// FormatProbability renders p as a percentage with one decimal place.
func FormatProbability(p float64) string {
	return fmt.Sprintf("%.1f%%", p*100)
}
