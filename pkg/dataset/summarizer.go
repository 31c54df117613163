package dataset

import (
	"fmt"
	"strings"

	"github.com/synaptica-ai/healthlab/pkg/common/models"
	"github.com/synaptica-ai/healthlab/pkg/common/outcome"
	"github.com/synaptica-ai/healthlab/pkg/common/random"
	"github.com/synaptica-ai/healthlab/pkg/report"
)

const (
	DefaultPreviewRows = 10

	// privacyCost is the flat penalty applied to every metric when privacy protection is on.
	privacyCost = 0.98
)

type metricRange struct {
	lo, hi float64
}

var (
	accuracyRange  = metricRange{0.85, 0.95}
	precisionRange = metricRange{0.80, 0.90}
	recallRange    = metricRange{0.75, 0.85}
	f1Range        = metricRange{0.78, 0.88}

	federatedTime   = metricRange{200, 400}
	centralisedTime = metricRange{100, 200}
	federatedNodes  = [2]int{3, 8}
)

var privacyLabels = map[models.PrivacyLevel]string{
	models.PrivacyLow:    "低",
	models.PrivacyMedium: "中",
	models.PrivacyHigh:   "高",
}

// ParsePrivacyLevel accepts the enum values and the Chinese labels. Blank means high, the
// form default.
func ParsePrivacyLevel(value string) (models.PrivacyLevel, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "high", "高":
		return models.PrivacyHigh, nil
	case "medium", "中":
		return models.PrivacyMedium, nil
	case "low", "低":
		return models.PrivacyLow, nil
	default:
		return "", outcome.InvalidInput("无法识别的隐私级别: %q", value)
	}
}

func PrivacyLabel(level models.PrivacyLevel) string {
	if label, ok := privacyLabels[level]; ok {
		return label
	}
	return string(level)
}

// Summarizer produces the synthetic analysis report for an uploaded dataset.
type Summarizer struct {
	rand        random.Source
	clock       report.Clock
	previewRows int
}

func NewSummarizer(src random.Source, clock report.Clock, previewRows int) *Summarizer {
	if src == nil {
		src = random.New(0)
	}
	if clock == nil {
		clock = report.SystemClock
	}
	if previewRows <= 0 {
		previewRows = DefaultPreviewRows
	}
	return &Summarizer{rand: src, clock: clock, previewRows: previewRows}
}

// Summarize reports the dataset's shape and missingness together with randomly drawn
// performance figures. Only shape and missingness come from the data itself.
func (s *Summarizer) Summarize(d *Dataset, cfg models.AnalysisConfig) (result models.AnalysisResult, err error) {
	if d == nil {
		return models.AnalysisResult{}, outcome.EmptyInput("请上传数据文件")
	}
	level, err := ParsePrivacyLevel(string(cfg.PrivacyLevel))
	if err != nil {
		return models.AnalysisResult{}, err
	}
	cfg.PrivacyLevel = level
	if err := d.Validate(); err != nil {
		return models.AnalysisResult{}, err
	}

	defer outcome.Recover("分析失败", &err)

	rows, cols := d.Shape()
	result.Dataset = models.DatasetStats{
		Rows:         rows,
		Columns:      cols,
		MissingCells: d.MissingCount(),
		MissingRate:  d.MissingRate(),
	}

	result.Metrics = models.ModelMetrics{
		Accuracy:  s.draw(accuracyRange),
		Precision: s.draw(precisionRange),
		Recall:    s.draw(recallRange),
		F1:        s.draw(f1Range),
	}
	if cfg.PrivacyProtection {
		result.Metrics.Accuracy *= privacyCost
		result.Metrics.Precision *= privacyCost
		result.Metrics.Recall *= privacyCost
		result.Metrics.F1 *= privacyCost
	}

	if cfg.FederatedLearning {
		result.Training.TimeSeconds = s.draw(federatedTime)
		result.Training.Nodes = s.rand.IntRange(federatedNodes[0], federatedNodes[1])
	} else {
		result.Training.TimeSeconds = s.draw(centralisedTime)
		result.Training.Nodes = 1
	}

	result.Config = cfg
	result.Timestamp = s.clock()
	result.Report = RenderAnalysis(result)
	result.Preview = Preview(d, s.previewRows)
	result.Statistics = Describe(d)
	return result, nil
}

func (s *Summarizer) draw(r metricRange) float64 {
	return s.rand.Uniform(r.lo, r.hi)
}

// RenderAnalysis produces the user-facing analysis text.
func RenderAnalysis(result models.AnalysisResult) string {
	ds := result.Dataset
	m := result.Metrics
	return report.New("数据分析报告").
		Section("数据概览").
		Item("样本数量", "%s", report.Grouped(ds.Rows)).
		Item("特征数量", "%d", ds.Columns).
		Item("缺失值", "%d (%s)", ds.MissingCells, report.Percent(ds.MissingRate)).
		Section("模型性能").
		Item("准确率", "%.3f", m.Accuracy).
		Item("精确率", "%.3f", m.Precision).
		Item("召回率", "%.3f", m.Recall).
		Item("F1分数", "%.3f", m.F1).
		Section("训练配置").
		Item("联邦学习", "%s", report.Toggle(result.Config.FederatedLearning)).
		Item("隐私保护", "%s", report.Toggle(result.Config.PrivacyProtection)).
		Item("隐私级别", "%s", PrivacyLabel(result.Config.PrivacyLevel)).
		Item("参与节点", "%d", result.Training.Nodes).
		Item("训练时间", "%.1f秒", result.Training.TimeSeconds).
		Footer(fmt.Sprintf("分析时间: %s", report.Timestamp(result.Timestamp))).
		String()
}
