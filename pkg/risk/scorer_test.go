package risk

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synaptica-ai/healthlab/pkg/common/models"
	"github.com/synaptica-ai/healthlab/pkg/common/outcome"
	"github.com/synaptica-ai/healthlab/pkg/common/random"
	"github.com/synaptica-ai/healthlab/pkg/report"
)

var fixedNow = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

func newTestScorer(draw float64) *Scorer {
	return NewScorer(random.Fixed{Value: draw}, report.FixedClock(fixedNow))
}

func TestAgeContribution(t *testing.T) {
	scorer := newTestScorer(0)

	cases := []struct {
		age  int
		want float64
	}{
		{0, 0}, {20, 0},
		{21, 0.1}, {40, 0.1},
		{41, 0.2}, {60, 0.2},
		{61, 0.3}, {120, 0.3},
	}
	for _, tc := range cases {
		result, err := scorer.Score(models.RiskProfile{Age: tc.age, Gender: models.GenderMale})
		require.NoError(t, err)
		assert.Equal(t, tc.want, result.Score, "age %d", tc.age)
		assert.Equal(t, tc.want, result.Factors.Age, "age %d", tc.age)
	}
}

func TestAdditiveTerms(t *testing.T) {
	scorer := newTestScorer(0)

	result, err := scorer.Score(models.RiskProfile{
		Age:           30,
		Gender:        models.GenderFemale,
		Symptoms:      "最近胸痛，还有发热",
		FamilyHistory: true,
	})
	require.NoError(t, err)

	assert.Equal(t, 0.1, result.Factors.Age)
	assert.Equal(t, 0.1, result.Factors.Gender)
	assert.Equal(t, 0.3, result.Factors.Symptoms)
	assert.Equal(t, []string{"胸痛", "发热"}, result.Factors.MatchedSymptoms)
	assert.Equal(t, 0.2, result.Factors.FamilyHistory)
	assert.InDelta(t, 0.7, result.Score, 1e-9)
	assert.Equal(t, models.RiskMedium, result.Band)
}

func TestScoreBandBoundaries(t *testing.T) {
	// 0.3 age + 0.1 gender
	profile := models.RiskProfile{Age: 61, Gender: "女"}
	result, err := newTestScorer(0).Score(profile)
	require.NoError(t, err)
	assert.Equal(t, 0.4, result.Score)
	assert.Equal(t, models.RiskLow, result.Band)

	// 0.3 age + 0.1 gender + 0.2 family + 0.1 alcohol
	profile = models.RiskProfile{Age: 61, Gender: models.GenderFemale, FamilyHistory: true, Alcohol: true}
	result, err = newTestScorer(0).Score(profile)
	require.NoError(t, err)
	assert.Equal(t, 0.7, result.Score)
	assert.Equal(t, models.RiskMedium, result.Band)

	result, err = newTestScorer(0.01).Score(profile)
	require.NoError(t, err)
	assert.Equal(t, models.RiskHigh, result.Band)
	assert.Equal(t, "高风险", result.BandLabel)
	assert.Equal(t, "建议立即就医检查，进行详细的医学评估", result.Recommendation)
}

func TestBandFor(t *testing.T) {
	assert.Equal(t, models.RiskHigh, BandFor(0.71))
	assert.Equal(t, models.RiskMedium, BandFor(0.70))
	assert.Equal(t, models.RiskMedium, BandFor(0.41))
	assert.Equal(t, models.RiskLow, BandFor(0.40))
	assert.Equal(t, models.RiskLow, BandFor(0))
	assert.Equal(t, models.RiskHigh, BandFor(1))
}

func TestBandsAreDistinct(t *testing.T) {
	seen := map[string]bool{}
	for _, b := range []models.RiskBand{models.RiskLow, models.RiskMedium, models.RiskHigh} {
		require.NotEmpty(t, Recommendation(b))
		assert.False(t, seen[Recommendation(b)])
		seen[Recommendation(b)] = true
	}
}

func TestScoreIsClamped(t *testing.T) {
	result, err := newTestScorer(0.1999).Score(models.RiskProfile{
		Age:           95,
		Gender:        models.GenderFemale,
		Symptoms:      "胸痛 呼吸困难 头痛 发热 咳嗽 疲劳",
		FamilyHistory: true,
		Smoking:       true,
		Alcohol:       true,
	})
	require.NoError(t, err)

	assert.Equal(t, 1.0, result.Score)
	assert.Len(t, result.Factors.MatchedSymptoms, 6)
	assert.Equal(t, models.RiskHigh, result.Band)
}

func TestScoreAlwaysInUnitInterval(t *testing.T) {
	scorer := NewScorer(random.New(11), nil)
	symptomTexts := []string{"", "咳嗽", "chest pain, FEVER and fatigue", "胸痛呼吸困难头痛发热咳嗽疲劳"}

	for age := 0; age <= 120; age += 7 {
		for _, text := range symptomTexts {
			for mask := 0; mask < 16; mask++ {
				gender := models.GenderMale
				if mask&8 != 0 {
					gender = models.GenderFemale
				}
				result, err := scorer.Score(models.RiskProfile{
					Age:           age,
					Gender:        gender,
					Symptoms:      text,
					FamilyHistory: mask&1 != 0,
					Smoking:       mask&2 != 0,
					Alcohol:       mask&4 != 0,
				})
				require.NoError(t, err)
				assert.GreaterOrEqual(t, result.Score, 0.0)
				assert.LessOrEqual(t, result.Score, 1.0)
				assert.Equal(t, BandFor(result.Score), result.Band)
			}
		}
	}
}

func TestMatchSymptoms(t *testing.T) {
	assert.Nil(t, MatchSymptoms(""))
	assert.Equal(t, []string{"头痛"}, MatchSymptoms("头痛头痛，一直头痛"))
	assert.Equal(t, []string{"胸痛", "呼吸困难"}, MatchSymptoms("Chest pain with SHORTNESS OF BREATH"))
	assert.Equal(t, []string{"咳嗽"}, MatchSymptoms("咳嗽 and a cough"))
	assert.Empty(t, MatchSymptoms("感觉良好"))
}

func TestRejectsInvalidInput(t *testing.T) {
	scorer := newTestScorer(0)

	for _, profile := range []models.RiskProfile{
		{Age: -1, Gender: models.GenderMale},
		{Age: 121, Gender: models.GenderMale},
		{Age: 30, Gender: "other"},
		{Age: 30},
	} {
		_, err := scorer.Score(profile)
		require.Error(t, err)
		assert.True(t, outcome.Is(err, outcome.KindInvalidInput), "profile %+v", profile)
	}
}

func TestParseGender(t *testing.T) {
	for in, want := range map[string]models.Gender{
		"male": models.GenderMale, "男": models.GenderMale, " Female ": models.GenderFemale, "女": models.GenderFemale,
	} {
		got, err := ParseGender(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestReportContents(t *testing.T) {
	result, err := newTestScorer(0.01).Score(models.RiskProfile{Age: 45, Gender: models.GenderMale, Symptoms: "咳嗽"})
	require.NoError(t, err)

	assert.Equal(t, fixedNow, result.Timestamp)
	assert.Contains(t, result.Report, "风险评分: 0.36")
	assert.Contains(t, result.Report, "风险等级: 低风险")
	assert.Contains(t, result.Report, "症状: 0.15 (咳嗽)")
	assert.Contains(t, result.Report, "评估时间: 2026-10-19 09:30:00")
	assert.Contains(t, result.Report, disclaimer)
}

func TestConcurrentScoring(t *testing.T) {
	scorer := NewScorer(random.New(0), nil)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(age int) {
			defer wg.Done()
			_, err := scorer.Score(models.RiskProfile{Age: age, Gender: models.GenderMale, Smoking: true})
			assert.NoError(t, err)
		}(i * 7)
	}
	wg.Wait()
}
