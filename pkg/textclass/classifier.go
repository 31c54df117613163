// Package textclass classifies free text against a fixed category table and reports simple
// text statistics alongside the category profile.
package textclass

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/synaptica-ai/healthlab/pkg/common/models"
	"github.com/synaptica-ai/healthlab/pkg/common/outcome"
	"github.com/synaptica-ai/healthlab/pkg/report"
)

const emptyTextMessage = "请输入要分析的文本内容"

type Classifier struct {
	table *Table
	clock report.Clock
}

// NewClassifier uses the built-in table and system clock when given nil.
func NewClassifier(table *Table, clock report.Clock) *Classifier {
	if table == nil {
		table = DefaultTable()
	}
	if clock == nil {
		clock = report.SystemClock
	}
	return &Classifier{table: table, clock: clock}
}

func (c *Classifier) Categories() []string {
	return c.table.Categories()
}

// DefaultCategory is the category unknown labels resolve to.
func (c *Classifier) DefaultCategory() string {
	return c.table.Default()
}

func (c *Classifier) Classify(text, category string) (models.TextAnalysisResult, error) {
	if strings.TrimSpace(text) == "" {
		return models.TextAnalysisResult{}, outcome.EmptyInput(emptyTextMessage)
	}

	resolved, profile, ok := c.table.Lookup(category)
	result := models.TextAnalysisResult{
		Category:         category,
		ResolvedCategory: resolved,
		Fallback:         !ok,
		Profile:          profile,
		Stats:            Stats(text),
		Timestamp:        c.clock(),
	}
	result.Report = Render(result)
	return result, nil
}

// Stats counts code points, whitespace-separated words and sentence terminators. Both the
// ideographic and the ASCII full stop count, so "。." counts twice.
func Stats(text string) models.TextStats {
	return models.TextStats{
		Chars:     utf8.RuneCountInString(text),
		Words:     len(strings.Fields(text)),
		Sentences: strings.Count(text, "。") + strings.Count(text, "."),
	}
}

func Render(result models.TextAnalysisResult) string {
	p := result.Profile
	return report.New("多模态分析结果").
		Section("").
		Item("文本类型", "%s", result.Category).
		Item("分析置信度", "%.2f", p.Confidence).
		Item("主要主题", "%s", p.Topic).
		Item("情感倾向", "%s", p.Sentiment).
		Section("关键词提取").
		Line(strings.Join(p.Keywords, ", ")).
		Section("文本统计").
		Item("字符数", "%d", result.Stats.Chars).
		Item("词汇数", "%d", result.Stats.Words).
		Item("句子数", "%d", result.Stats.Sentences).
		Footer(fmt.Sprintf("分析时间: %s", report.Timestamp(result.Timestamp))).
		String()
}
