package models

import (
	"time"
)

// Risk assessment
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

type RiskBand string

const (
	RiskLow    RiskBand = "low"
	RiskMedium RiskBand = "medium"
	RiskHigh   RiskBand = "high"
)

type RiskProfile struct {
	Age           int    `json:"age"`
	Gender        Gender `json:"gender"`
	Symptoms      string `json:"symptoms"`
	FamilyHistory bool   `json:"family_history"`
	Smoking       bool   `json:"smoking"`
	Alcohol       bool   `json:"alcohol"`
}

// RiskFactors is the per-term breakdown of a score. Random is the only non-deterministic term.
type RiskFactors struct {
	Age             float64  `json:"age"`
	Gender          float64  `json:"gender"`
	Symptoms        float64  `json:"symptoms"`
	MatchedSymptoms []string `json:"matched_symptoms,omitempty"`
	FamilyHistory   float64  `json:"family_history"`
	Smoking         float64  `json:"smoking"`
	Alcohol         float64  `json:"alcohol"`
	Random          float64  `json:"random"`
}

type RiskResult struct {
	Score          float64     `json:"score"`
	Band           RiskBand    `json:"band"`
	BandLabel      string      `json:"band_label"`
	Recommendation string      `json:"recommendation"`
	Factors        RiskFactors `json:"factors"`
	Timestamp      time.Time   `json:"timestamp"`
	Report         string      `json:"report"`
}

// Dataset analysis
type PrivacyLevel string

const (
	PrivacyLow    PrivacyLevel = "low"
	PrivacyMedium PrivacyLevel = "medium"
	PrivacyHigh   PrivacyLevel = "high"
)

type AnalysisConfig struct {
	FederatedLearning bool         `json:"federated_learning"`
	PrivacyProtection bool         `json:"privacy_protection"`
	PrivacyLevel      PrivacyLevel `json:"privacy_level"`
}

type DatasetStats struct {
	Rows         int     `json:"rows"`
	Columns      int     `json:"columns"`
	MissingCells int     `json:"missing_cells"`
	MissingRate  float64 `json:"missing_rate"`
}

type ModelMetrics struct {
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

type TrainingSummary struct {
	TimeSeconds float64 `json:"time_seconds"`
	Nodes       int     `json:"nodes"`
}

// AnalysisResult metrics and training figures are synthetic draws, not derived from the data.
type AnalysisResult struct {
	Dataset    DatasetStats    `json:"dataset"`
	Metrics    ModelMetrics    `json:"metrics"`
	Training   TrainingSummary `json:"training"`
	Config     AnalysisConfig  `json:"config"`
	Report     string          `json:"report"`
	Preview    string          `json:"preview"`
	Statistics string          `json:"statistics"`
	Timestamp  time.Time       `json:"timestamp"`
}

// Text classification
type TextProfile struct {
	Keywords   []string `json:"keywords" yaml:"keywords"`
	Sentiment  string   `json:"sentiment" yaml:"sentiment"`
	Confidence float64  `json:"confidence" yaml:"confidence"`
	Topic      string   `json:"topic" yaml:"topic"`
}

type TextStats struct {
	Chars     int `json:"chars"`
	Words     int `json:"words"`
	Sentences int `json:"sentences"`
}

type TextAnalysisResult struct {
	Category         string      `json:"category"`
	ResolvedCategory string      `json:"resolved_category"`
	Fallback         bool        `json:"fallback"`
	Profile          TextProfile `json:"profile"`
	Stats            TextStats   `json:"stats"`
	Timestamp        time.Time   `json:"timestamp"`
	Report           string      `json:"report"`
}

// SoftFailure is an error condition the caller renders like any other result.
type SoftFailure struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Event types published after each successful assessment.
const (
	EventRiskScored      = "risk.scored"
	EventDatasetAnalyzed = "dataset.analyzed"
	EventTextClassified  = "text.classified"
)

// Event Bus models
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"` // risk.scored, dataset.analyzed, text.classified
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]string      `json:"metadata,omitempty"`
}
