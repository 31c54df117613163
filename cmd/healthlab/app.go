package main

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/synaptica-ai/healthlab/pkg/common/config"
	"github.com/synaptica-ai/healthlab/pkg/common/models"
	"github.com/synaptica-ai/healthlab/pkg/common/random"
	"github.com/synaptica-ai/healthlab/pkg/dataset"
	"github.com/synaptica-ai/healthlab/pkg/loader"
	"github.com/synaptica-ai/healthlab/pkg/report"
	"github.com/synaptica-ai/healthlab/pkg/risk"
	"github.com/synaptica-ai/healthlab/pkg/textclass"
)

type app struct {
	scorer     *risk.Scorer
	summarizer *dataset.Summarizer
	classifier *textclass.Classifier
	jsonOutput bool
}

// newApp wires the engine from cfg. src and clock default to the configured seed and the
// system clock.
func newApp(cfg *config.Config, src random.Source, clock report.Clock) (*app, error) {
	profiles, err := textclass.LoadProfiles(cfg.TextProfilesPath)
	if err != nil {
		return nil, err
	}
	if src == nil {
		src = random.New(cfg.RandomSeed)
	}
	if clock == nil {
		clock = report.SystemClock
	}
	return &app{
		scorer:     risk.NewScorer(src, clock),
		summarizer: dataset.NewSummarizer(src, clock, cfg.PreviewRows),
		classifier: textclass.NewClassifier(profiles, clock),
	}, nil
}

func (a *app) analyzeFile(path string, cfg models.AnalysisConfig) (models.AnalysisResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.AnalysisResult{}, err
	}
	defer f.Close()

	d, err := loader.Load(path, f)
	if err != nil {
		return models.AnalysisResult{}, err
	}
	return a.summarizer.Summarize(d, cfg)
}

var bandColors = map[models.RiskBand]*color.Color{
	models.RiskHigh:   color.New(color.FgRed, color.Bold),
	models.RiskMedium: color.New(color.FgYellow, color.Bold),
	models.RiskLow:    color.New(color.FgGreen, color.Bold),
}

func (a *app) printRisk(w io.Writer, result models.RiskResult) error {
	if a.jsonOutput {
		return writeJSON(w, result)
	}
	text := result.Report
	if c, ok := bandColors[result.Band]; ok {
		line := "- 风险等级: " + result.BandLabel
		text = strings.Replace(text, line, "- 风险等级: "+c.Sprint(result.BandLabel), 1)
	}
	_, err := io.WriteString(w, text)
	return err
}

func (a *app) printAnalysis(w io.Writer, result models.AnalysisResult) error {
	if a.jsonOutput {
		return writeJSON(w, result)
	}
	heading := color.New(color.FgCyan, color.Bold)
	var b strings.Builder
	b.WriteString(result.Report)
	b.WriteString("\n")
	b.WriteString(heading.Sprint("数据预览"))
	b.WriteString("\n")
	b.WriteString(result.Preview)
	b.WriteString("\n\n")
	b.WriteString(heading.Sprint("统计信息"))
	b.WriteString("\n")
	b.WriteString(result.Statistics)
	b.WriteString("\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func (a *app) printText(w io.Writer, result models.TextAnalysisResult) error {
	if a.jsonOutput {
		return writeJSON(w, result)
	}
	_, err := io.WriteString(w, result.Report)
	return err
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
