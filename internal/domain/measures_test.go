package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeasureDirection(t *testing.T) {
	tests := []struct {
		description string
		expected    Direction
	}{
		{"Percentage of long-stay residents experiencing one or more falls with major injury", LowerIsBetter},
		{"Percentage of high risk long-stay residents with pressure ulcers", LowerIsBetter},
		{"Percentage of long-stay residents with a urinary tract infection", LowerIsBetter},
		{"Percentage of long-stay residents whose ability to walk independently worsened", LowerIsBetter},
		{"Number of hospitalizations per 1000 long-stay resident days", LowerIsBetter},
		{"Percentage of short-stay residents who were re-hospitalized after a nursing home admission", LowerIsBetter},
		{"Percentage of long-stay residents who received an antipsychotic medication", Ambiguous},
		{"Percentage of long-stay residents who received an antianxiety or hypnotic medication", Ambiguous},
		{"Percentage of short-stay residents who got antipsychotic medication for the first time", Ambiguous},
		{"Percentage of long-stay residents assessed and appropriately given the seasonal influenza vaccine", HigherIsBetter},
		{"Percentage of short-stay residents who improved in their ability to move around on their own", HigherIsBetter},
		{"Rate of successful return to home and community from a SNF", HigherIsBetter},
		{"Percentage of low risk long-stay residents who lose control of their bowels or bladder", LowerIsBetter},
		{"Percentage of long-stay residents who have symptoms of depression", LowerIsBetter},
		{"Percentage of long-stay residents who lose too much weight", LowerIsBetter},
		{"Percentage of residents who made improvements in function", HigherIsBetter},
		{"Percentage of long-stay residents whose need for help with daily activities has increased", LowerIsBetter},
		{"", Ambiguous},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			assert.Equal(t, tt.expected, MeasureDirection(tt.description))
		})
	}
}

func TestQualityMeasureScore(t *testing.T) {
	t.Run("four quarter average preferred", func(t *testing.T) {
		m := QualityMeasure{FourQuarter: ptr(4.5), Quarters: [4]*float64{ptr(1), ptr(2), ptr(3), ptr(4)}}
		got, ok := m.Score()
		require.True(t, ok)
		assert.Equal(t, 4.5, got)
	})

	t.Run("latest reported quarter", func(t *testing.T) {
		m := QualityMeasure{Quarters: [4]*float64{ptr(1), ptr(2), ptr(12), nil}}
		got, ok := m.Score()
		require.True(t, ok)
		assert.Equal(t, 12.0, got)
	})

	t.Run("nothing reported", func(t *testing.T) {
		_, ok := QualityMeasure{}.Score()
		assert.False(t, ok)
	})
}

func TestClassifyMeasures(t *testing.T) {
	th := DefaultThresholds()
	measures := []QualityMeasure{
		{Code: "410", Description: "Percentage of residents who received the pneumococcal vaccine", FourQuarter: ptr(95)},
		{Code: "403", Description: "Percentage of residents with a urinary tract infection", FourQuarter: ptr(3)},
		{Code: "419", Description: "Percentage of residents who received an antipsychotic medication", FourQuarter: ptr(50)},
		{Code: "453", Description: "Percentage of residents experiencing one or more falls with major injury"},
	}

	got := th.ClassifyMeasures(measures)

	require.Len(t, got.Measures, 4)
	assert.Equal(t, TierGreat, got.Measures[0].Tier)
	assert.Equal(t, TierGood, got.Measures[1].Tier)
	assert.Equal(t, TierNone, got.Measures[2].Tier)
	assert.Equal(t, Ambiguous, got.Measures[2].Direction)
	assert.Nil(t, got.Measures[3].Score)
	assert.Equal(t, TierNone, got.Measures[3].Tier)
	// (95 + (100 - 3)) / 2 = 96
	assert.Equal(t, 96.0, got.Score)
	assert.Equal(t, TierGreat, got.Section)
}

func TestClassifyMeasuresOnlyAmbiguous(t *testing.T) {
	got := DefaultThresholds().ClassifyMeasures([]QualityMeasure{
		{Description: "antianxiety medication", FourQuarter: ptr(10)},
	})
	assert.Equal(t, TierNone, got.Section)

	empty := DefaultThresholds().ClassifyMeasures(nil)
	assert.Empty(t, empty.Measures)
	assert.Equal(t, TierNone, empty.Section)
}

func TestClassifyMeasure_BowelBladderControl(t *testing.T) {
	th := DefaultThresholds()

	got := th.ClassifyMeasure(QualityMeasure{
		Code:        "407",
		Description: "Percentage of low risk long-stay residents who lose control of their bowels or bladder",
		FourQuarter: ptr(45),
	})
	assert.Equal(t, LowerIsBetter, got.Direction)
	assert.Equal(t, TierBad, got.Tier)

	table := th.ClassifyMeasures([]QualityMeasure{
		{Code: "407", Description: got.Measure.Description, FourQuarter: ptr(45)},
		{Code: "408", Description: "Percentage of long-stay residents who have symptoms of depression", FourQuarter: ptr(5)},
	})
	// ((100 - 45) + (100 - 5)) / 2 = 75
	assert.Equal(t, 75.0, table.Score)
	assert.Equal(t, TierGood, table.Section)
}
