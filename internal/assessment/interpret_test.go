package assessment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Skufu/StrokeGuard/internal/features"
)

func TestRiskFactors_FixedOrder(t *testing.T) {
	in := features.PatientInput{
		Hypertension:    true,
		HeartDisease:    false,
		SmokingStatus:   "smokes",
		Age:             70,
		AvgGlucoseLevel: 150,
		BMI:             32,
	}

	got := RiskFactors(in)
	assert.Equal(t, []string{
		"Hypertension",
		"Current Smoker",
		"Age over 65",
		"Elevated Glucose",
		"Obesity (BMI > 30)",
	}, got)
}

func TestRiskFactors_AllFlags(t *testing.T) {
	in := features.PatientInput{
		Hypertension:    true,
		HeartDisease:    true,
		SmokingStatus:   "smokes",
		Age:             80,
		AvgGlucoseLevel: 200,
		BMI:             40,
	}

	assert.Equal(t, []string{
		FlagHypertension,
		FlagHeartDisease,
		FlagCurrentSmoker,
		FlagAgeOver65,
		FlagElevatedGlucose,
		FlagObesity,
	}, RiskFactors(in))
}

func TestRiskFactors_NoneMatched(t *testing.T) {
	in := features.PatientInput{
		SmokingStatus:   "never smoked",
		Age:             40,
		AvgGlucoseLevel: 90,
		BMI:             22,
	}

	got := RiskFactors(in)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	result := Interpret(0, 0.03, in)
	assert.True(t, result.NoMajorRiskFactors)
	assert.Empty(t, result.RiskFactors)
	assert.Equal(t, NoMajorRiskFactors, result.RiskFactorSummary)
}

func TestRiskFactors_ThresholdsAreStrict(t *testing.T) {
	in := features.PatientInput{
		SmokingStatus:   "formerly smoked",
		Age:             65,
		AvgGlucoseLevel: 140,
		BMI:             30,
	}
	assert.Empty(t, RiskFactors(in))

	in.Age = 65.5
	in.AvgGlucoseLevel = 140.01
	in.BMI = 30.1
	assert.Equal(t, []string{FlagAgeOver65, FlagElevatedGlucose, FlagObesity}, RiskFactors(in))
}

func TestRiskFactors_OnlyCurrentSmokersFlagged(t *testing.T) {
	for _, status := range []string{"formerly smoked", "never smoked", "Unknown"} {
		in := features.PatientInput{SmokingStatus: status, Age: 30, AvgGlucoseLevel: 90, BMI: 22}
		assert.NotContains(t, RiskFactors(in), FlagCurrentSmoker, status)
	}
}

func TestInterpret_CategoryFollowsClass(t *testing.T) {
	in := features.DefaultInput()

	tests := []struct {
		name         string
		class        int
		probability  float64
		wantCategory string
		wantHeadline string
	}{
		{"class 1 low probability", 1, 0.12, CategoryHigh, "High Risk Detected: 12.0%"},
		{"class 0 high probability", 0, 0.91, CategoryLow, "Low Risk Detected: 91.0%"},
		{"class 0 at boundary", 0, 0.5, CategoryLow, "Low Risk Detected: 50.0%"},
		{"class 1 at boundary", 1, 0.5, CategoryHigh, "High Risk Detected: 50.0%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Interpret(tt.class, tt.probability, in)
			assert.Equal(t, tt.wantCategory, result.Category)
			assert.Equal(t, tt.wantHeadline, result.Headline)
			assert.Equal(t, tt.class, result.PredictedClass)
			assert.Equal(t, tt.probability, result.Probability)
		})
	}
}

func TestInterpret_FlagsDoNotAffectDecision(t *testing.T) {
	risky := features.PatientInput{
		Hypertension:    true,
		HeartDisease:    true,
		SmokingStatus:   "smokes",
		Age:             90,
		AvgGlucoseLevel: 250,
		BMI:             45,
	}

	result := Interpret(0, 0.04, risky)
	assert.Equal(t, CategoryLow, result.Category)
	assert.Equal(t, 0, result.PredictedClass)
	assert.Equal(t, 0.04, result.Probability)
	assert.Len(t, result.RiskFactors, 6)
	assert.False(t, result.NoMajorRiskFactors)
}

func TestInterpret_Advice(t *testing.T) {
	in := features.DefaultInput()
	assert.Contains(t, Interpret(1, 0.7, in).Advice, "Immediate clinical consultation")
	assert.Contains(t, Interpret(0, 0.1, in).Advice, "low probability of stroke")
}

func TestInterpret_Idempotent(t *testing.T) {
	in := features.DefaultInput()
	in.BMI = 33
	assert.Equal(t, Interpret(1, 0.6234, in), Interpret(1, 0.6234, in))
}

func TestFormatProbability(t *testing.T) {
	assert.Equal(t, "0.0%", FormatProbability(0))
	assert.Equal(t, "100.0%", FormatProbability(1))
	assert.Equal(t, "62.3%", FormatProbability(0.6234))
	assert.Equal(t, "7.5%", FormatProbability(0.0751))
}
