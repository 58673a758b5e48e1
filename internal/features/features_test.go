package features

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_FlagTokens(t *testing.T) {
	tests := []struct {
		name         string
		hypertension bool
		heartDisease bool
		wantHyp      string
		wantHeart    string
	}{
		{"neither", false, false, "0", "0"},
		{"hypertension only", true, false, "1", "0"},
		{"heart disease only", false, true, "0", "1"},
		{"both", true, true, "1", "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := DefaultInput()
			in.Hypertension = tt.hypertension
			in.HeartDisease = tt.heartDisease

			v := Normalize(in)
			assert.Equal(t, tt.wantHyp, v.Hypertension)
			assert.Equal(t, tt.wantHeart, v.HeartDisease)
		})
	}
}

func TestNormalize_FlagsEncodeAsJSONStrings(t *testing.T) {
	in := DefaultInput()
	in.Hypertension = true

	raw, err := json.Marshal(Normalize(in))
	require.NoError(t, err)

	var row map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &row))
	assert.IsType(t, "", row[ColHypertension])
	assert.IsType(t, "", row[ColHeartDisease])
	assert.Equal(t, "1", row[ColHypertension])
	assert.Equal(t, "0", row[ColHeartDisease])
}

func TestNormalize_NumericCoercion(t *testing.T) {
	in := DefaultInput()
	in.Age = 67
	in.AvgGlucoseLevel = 228.69
	in.BMI = 36.6

	v := Normalize(in)
	assert.Equal(t, 67.0, v.Age)
	assert.InDelta(t, 228.69, v.AvgGlucoseLevel, 1e-9)
	assert.InDelta(t, 36.6, v.BMI, 1e-9)

	in.Age = 70.5
	assert.Equal(t, 70.5, Normalize(in).Age)
}

func TestNormalize_EnumsPassThrough(t *testing.T) {
	in := PatientInput{
		Gender:        "Other",
		EverMarried:   "No",
		WorkType:      "Govt_job",
		ResidenceType: "Rural",
		SmokingStatus: "never smoked",
	}

	v := Normalize(in)
	assert.Equal(t, "Other", v.Gender)
	assert.Equal(t, "No", v.EverMarried)
	assert.Equal(t, "Govt_job", v.WorkType)
	assert.Equal(t, "Rural", v.ResidenceType)
	assert.Equal(t, "never smoked", v.SmokingStatus)
}

func TestNormalize_Idempotent(t *testing.T) {
	in := DefaultInput()
	in.Hypertension = true

	a, err := json.Marshal(Normalize(in))
	require.NoError(t, err)
	b, err := json.Marshal(Normalize(in))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestFeatureVector_ColumnNames(t *testing.T) {
	raw, err := json.Marshal(Normalize(DefaultInput()))
	require.NoError(t, err)

	var row map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &row))

	assert.Len(t, row, len(Columns()))
	for _, col := range Columns() {
		assert.Contains(t, row, col)
	}
	assert.Contains(t, row, "Residence_type")
	assert.NotContains(t, row, "residence_type")
}

func TestFeatureVector_CellsFollowColumnOrder(t *testing.T) {
	cells := Normalize(DefaultInput()).Cells()
	cols := Columns()

	require.Len(t, cells, len(cols))
	for i, c := range cells {
		assert.Equal(t, cols[i], c.Column)
	}
	assert.False(t, cells[1].Categorical, "age is numeric")
	assert.True(t, cells[2].Categorical, "hypertension is categorical")
}

func TestColumns_ReturnsCopy(t *testing.T) {
	cols := Columns()
	cols[0] = "mutated"
	assert.Equal(t, ColGender, Columns()[0])
}
