package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/synaptica-ai/healthlab/pkg/common/models"
	"github.com/synaptica-ai/healthlab/pkg/risk"
)

const menuRule = "=================================================="

// runMenu is the line-oriented interactive loop. It returns when the user picks exit or the
// input ends.
func runMenu(a *app, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	prompt := func(label string) (string, bool) {
		fmt.Fprint(out, label)
		if !scanner.Scan() {
			return "", false
		}
		return strings.TrimSpace(scanner.Text()), true
	}
	warn := color.New(color.FgRed)

	fmt.Fprintln(out, "疾病预测系统 - 命令行版本")
	fmt.Fprintln(out, menuRule)

	for {
		fmt.Fprintln(out, "\n请选择功能:")
		fmt.Fprintln(out, "1. 疾病预测")
		fmt.Fprintln(out, "2. 数据分析")
		fmt.Fprintln(out, "3. 退出")

		choice, ok := prompt("\n请输入选择 (1-3): ")
		if !ok {
			return scanner.Err()
		}

		switch choice {
		case "1":
			fmt.Fprintln(out, "\n疾病预测")
			profile, err := readProfile(prompt)
			if err == io.EOF {
				return scanner.Err()
			}
			if err != nil {
				warn.Fprintln(out, softMessage(err))
				continue
			}
			result, err := a.scorer.Score(profile)
			if err != nil {
				warn.Fprintln(out, softMessage(err))
				continue
			}
			if err := a.printRisk(out, result); err != nil {
				return err
			}
		case "2":
			fmt.Fprintln(out, "\n数据分析")
			path, ok := prompt("请输入数据文件路径: ")
			if !ok {
				return scanner.Err()
			}
			result, err := a.analyzeFile(path, models.AnalysisConfig{FederatedLearning: true, PrivacyProtection: true})
			if err != nil {
				warn.Fprintln(out, softMessage(err))
				continue
			}
			if err := a.printAnalysis(out, result); err != nil {
				return err
			}
		case "3":
			fmt.Fprintln(out, "感谢使用疾病预测系统！")
			return nil
		default:
			fmt.Fprintln(out, "无效选择，请重新输入")
		}
	}
}

func readProfile(prompt func(string) (string, bool)) (models.RiskProfile, error) {
	var profile models.RiskProfile

	raw, ok := prompt("请输入年龄: ")
	if !ok {
		return profile, io.EOF
	}
	age, err := strconv.Atoi(raw)
	if err != nil {
		return profile, fmt.Errorf("年龄必须是整数: %q", raw)
	}
	profile.Age = age

	raw, ok = prompt("请输入性别 (男/女): ")
	if !ok {
		return profile, io.EOF
	}
	gender, err := risk.ParseGender(raw)
	if err != nil {
		return profile, err
	}
	profile.Gender = gender

	if profile.Symptoms, ok = prompt("请描述症状: "); !ok {
		return profile, io.EOF
	}

	for _, q := range []struct {
		label string
		dst   *bool
	}{
		{"是否有家族病史 (y/N): ", &profile.FamilyHistory},
		{"是否吸烟 (y/N): ", &profile.Smoking},
		{"是否饮酒 (y/N): ", &profile.Alcohol},
	} {
		raw, ok := prompt(q.label)
		if !ok {
			return profile, io.EOF
		}
		*q.dst = yes(raw)
	}
	return profile, nil
}

func yes(answer string) bool {
	switch strings.ToLower(answer) {
	case "y", "yes", "是", "1", "true":
		return true
	}
	return false
}
