package risk

import (
	"strings"

	"github.com/synaptica-ai/healthlab/pkg/common/models"
	"github.com/synaptica-ai/healthlab/pkg/common/outcome"
	"github.com/synaptica-ai/healthlab/pkg/common/random"
	"github.com/synaptica-ai/healthlab/pkg/report"
)

const (
	MinAge = 0
	MaxAge = 120

	// Points are kept in hundredths so that deterministic contributions add up exactly.
	pointsAgeOver60      = 30
	pointsAgeOver40      = 20
	pointsAgeOver20      = 10
	pointsFemale         = 10
	pointsPerSymptom     = 15
	pointsFamilyHistory  = 20
	pointsSmoking        = 25
	pointsAlcohol        = 10
	randomComponentLimit = 0.2

	highThreshold   = 0.7
	mediumThreshold = 0.4
)

// Symptom is one high-risk symptom. It counts once when any of its terms occurs in the text.
type Symptom struct {
	Name  string
	Terms []string
}

var highRiskSymptoms = []Symptom{
	{Name: "胸痛", Terms: []string{"胸痛", "chest pain"}},
	{Name: "呼吸困难", Terms: []string{"呼吸困难", "shortness of breath"}},
	{Name: "头痛", Terms: []string{"头痛", "headache"}},
	{Name: "发热", Terms: []string{"发热", "fever"}},
	{Name: "咳嗽", Terms: []string{"咳嗽", "cough"}},
	{Name: "疲劳", Terms: []string{"疲劳", "fatigue"}},
}

// HighRiskSymptoms returns a copy of the symptom table in scoring order.
func HighRiskSymptoms() []Symptom {
	out := make([]Symptom, len(highRiskSymptoms))
	for i, s := range highRiskSymptoms {
		out[i] = Symptom{Name: s.Name, Terms: append([]string(nil), s.Terms...)}
	}
	return out
}

type band struct {
	label          string
	recommendation string
}

var bands = map[models.RiskBand]band{
	models.RiskHigh:   {label: "高风险", recommendation: "建议立即就医检查，进行详细的医学评估"},
	models.RiskMedium: {label: "中等风险", recommendation: "建议定期体检，注意观察症状变化"},
	models.RiskLow:    {label: "低风险", recommendation: "保持健康生活方式，定期体检"},
}

// BandFor maps a final score to its band. 0.7 itself is medium and 0.4 itself is low.
func BandFor(score float64) models.RiskBand {
	switch {
	case score > highThreshold:
		return models.RiskHigh
	case score > mediumThreshold:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

func BandLabel(b models.RiskBand) string {
	return bands[b].label
}

func Recommendation(b models.RiskBand) string {
	return bands[b].recommendation
}

// Scorer computes heuristic risk scores. It holds no state besides its collaborators and is
// safe for concurrent use when its random source is.
type Scorer struct {
	rand  random.Source
	clock report.Clock
}

func NewScorer(src random.Source, clock report.Clock) *Scorer {
	if src == nil {
		src = random.New(0)
	}
	if clock == nil {
		clock = report.SystemClock
	}
	return &Scorer{rand: src, clock: clock}
}

// Score validates the profile and returns its score, band and recommendation.
func (s *Scorer) Score(profile models.RiskProfile) (models.RiskResult, error) {
	gender, err := Validate(profile)
	if err != nil {
		return models.RiskResult{}, err
	}
	profile.Gender = gender

	factors := models.RiskFactors{}
	points := 0

	age := agePoints(profile.Age)
	points += age
	factors.Age = hundredths(age)

	if profile.Gender == models.GenderFemale {
		points += pointsFemale
		factors.Gender = hundredths(pointsFemale)
	}

	factors.MatchedSymptoms = MatchSymptoms(profile.Symptoms)
	symptomPoints := pointsPerSymptom * len(factors.MatchedSymptoms)
	points += symptomPoints
	factors.Symptoms = hundredths(symptomPoints)

	if profile.FamilyHistory {
		points += pointsFamilyHistory
		factors.FamilyHistory = hundredths(pointsFamilyHistory)
	}
	if profile.Smoking {
		points += pointsSmoking
		factors.Smoking = hundredths(pointsSmoking)
	}
	if profile.Alcohol {
		points += pointsAlcohol
		factors.Alcohol = hundredths(pointsAlcohol)
	}

	factors.Random = s.rand.Uniform(0, randomComponentLimit)

	score := hundredths(points) + factors.Random
	if score > 1 {
		score = 1
	}

	b := BandFor(score)
	result := models.RiskResult{
		Score:          score,
		Band:           b,
		BandLabel:      BandLabel(b),
		Recommendation: Recommendation(b),
		Factors:        factors,
		Timestamp:      s.clock(),
	}
	result.Report = Render(result)
	return result, nil
}

// MatchSymptoms lists the high-risk symptoms mentioned in text, in table order.
func MatchSymptoms(text string) []string {
	if text == "" {
		return nil
	}
	lower := strings.ToLower(text)
	var matched []string
	for _, symptom := range highRiskSymptoms {
		for _, term := range symptom.Terms {
			if strings.Contains(lower, term) {
				matched = append(matched, symptom.Name)
				break
			}
		}
	}
	return matched
}

func agePoints(age int) int {
	switch {
	case age > 60:
		return pointsAgeOver60
	case age > 40:
		return pointsAgeOver40
	case age > 20:
		return pointsAgeOver20
	default:
		return 0
	}
}

func hundredths(points int) float64 {
	return float64(points) / 100
}

// Validate checks the caller-supplied fields and returns the normalised gender.
func Validate(profile models.RiskProfile) (models.Gender, error) {
	if profile.Age < MinAge || profile.Age > MaxAge {
		return "", outcome.InvalidInput("年龄必须在 %d 到 %d 之间, 实际为 %d", MinAge, MaxAge, profile.Age)
	}
	return ParseGender(string(profile.Gender))
}

// ParseGender accepts the English enum values and the Chinese form labels.
func ParseGender(value string) (models.Gender, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "male", "m", "男":
		return models.GenderMale, nil
	case "female", "f", "女":
		return models.GenderFemale, nil
	default:
		return "", outcome.InvalidInput("无法识别的性别: %q", value)
	}
}
