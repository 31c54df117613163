package risk

import (
	"fmt"
	"strings"

	"github.com/synaptica-ai/healthlab/pkg/common/models"
	"github.com/synaptica-ai/healthlab/pkg/report"
)

const disclaimer = "免责声明: 此结果仅供参考，不能替代专业医疗诊断"

// Render produces the user-facing assessment text.
func Render(result models.RiskResult) string {
	b := report.New("疾病风险评估结果").
		Section("").
		Item("风险评分", "%.2f", result.Score).
		Item("风险等级", "%s", result.BandLabel).
		Item("建议", "%s", result.Recommendation)

	b.Section("风险因素").
		Item("年龄", "%.2f", result.Factors.Age).
		Item("性别", "%.2f", result.Factors.Gender).
		Item("症状", "%.2f%s", result.Factors.Symptoms, matchedSuffix(result.Factors.MatchedSymptoms)).
		Item("家族病史", "%.2f", result.Factors.FamilyHistory).
		Item("吸烟", "%.2f", result.Factors.Smoking).
		Item("饮酒", "%.2f", result.Factors.Alcohol)

	return b.
		Footer(fmt.Sprintf("评估时间: %s", report.Timestamp(result.Timestamp))).
		Footer(disclaimer).
		String()
}

func matchedSuffix(symptoms []string) string {
	if len(symptoms) == 0 {
		return ""
	}
	return " (" + strings.Join(symptoms, "、") + ")"
}
