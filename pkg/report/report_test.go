package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuilderLayout(t *testing.T) {
	got := New("数据分析报告").
		Section("数据概览").
		Item("样本数量", "%s", Grouped(1200)).
		Item("缺失值", "%d (%s)", 3, Percent(0.025)).
		Section("训练配置").
		Item("联邦学习", "%s", Toggle(true)).
		Footer("分析时间: 2026-10-19 08:30:00").
		String()

	want := "数据分析报告\n" +
		"\n数据概览\n- 样本数量: 1,200\n- 缺失值: 3 (2.5%)\n" +
		"\n训练配置\n- 联邦学习: 启用\n" +
		"\n分析时间: 2026-10-19 08:30:00\n"
	assert.Equal(t, want, got)
}

func TestLineWithoutSection(t *testing.T) {
	got := New("").Line("检查, 结果").String()
	assert.Equal(t, "\n检查, 结果\n", got)
}

func TestGrouped(t *testing.T) {
	cases := map[int]string{
		0:        "0",
		999:      "999",
		1000:     "1,000",
		1234567:  "1,234,567",
		-45000:   "-45,000",
		10000000: "10,000,000",
	}
	for in, want := range cases {
		assert.Equal(t, want, Grouped(in), "input %d", in)
	}
}

func TestTimestampAndToggle(t *testing.T) {
	ts := time.Date(2026, 10, 19, 8, 5, 9, 0, time.UTC)
	assert.Equal(t, "2026-10-19 08:05:09", Timestamp(ts))
	assert.Equal(t, ts, FixedClock(ts)())
	assert.Equal(t, "禁用", Toggle(false))
}
