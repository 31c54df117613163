package dataset

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
)

const noStatistics = "无统计信息"

// NumericSummary holds describe-style statistics for one numeric column. Values that cannot be
// computed (no data, or std with fewer than two values) are NaN.
type NumericSummary struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q25    float64 `json:"q25"`
	Median float64 `json:"median"`
	Q75    float64 `json:"q75"`
	Max    float64 `json:"max"`
}

// TextSummary describes a non-numeric column.
type TextSummary struct {
	Column string `json:"column"`
	Count  int    `json:"count"`
	Unique int    `json:"unique"`
	Top    string `json:"top"`
	Freq   int    `json:"freq"`
}

func SummarizeNumeric(name string, cells []Cell) NumericSummary {
	values := make([]float64, 0, len(cells))
	for _, c := range cells {
		if f, ok := c.Float(); ok {
			values = append(values, f)
		}
	}
	s := NumericSummary{Column: name, Count: len(values)}
	nan := math.NaN()
	if len(values) == 0 {
		s.Mean, s.Std, s.Min, s.Q25, s.Median, s.Q75, s.Max = nan, nan, nan, nan, nan, nan, nan
		return s
	}
	sort.Float64s(values)

	var sum float64
	for _, v := range values {
		sum += v
	}
	s.Mean = sum / float64(len(values))

	s.Std = nan
	if len(values) > 1 {
		var sq float64
		for _, v := range values {
			sq += (v - s.Mean) * (v - s.Mean)
		}
		s.Std = math.Sqrt(sq / float64(len(values)-1))
	}

	s.Min = values[0]
	s.Max = values[len(values)-1]
	s.Q25 = Quantile(values, 0.25)
	s.Median = Quantile(values, 0.5)
	s.Q75 = Quantile(values, 0.75)
	return s
}

// Quantile interpolates linearly between the closest ranks of sorted.
func Quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// SummarizeText counts present values; ties for the most frequent value go to the first seen.
func SummarizeText(name string, cells []Cell) TextSummary {
	s := TextSummary{Column: name}
	counts := make(map[string]int)
	var order []string
	for _, c := range cells {
		if c.Missing {
			continue
		}
		s.Count++
		if counts[c.Value] == 0 {
			order = append(order, c.Value)
		}
		counts[c.Value]++
	}
	s.Unique = len(order)
	for _, v := range order {
		if counts[v] > s.Freq {
			s.Top, s.Freq = v, counts[v]
		}
	}
	return s
}

// Describe renders descriptive statistics: numeric columns when there are any, otherwise
// the text columns.
func Describe(d *Dataset) string {
	if d == nil || d.Empty() {
		return noStatistics
	}

	numeric := d.NumericColumns()
	if len(numeric) > 0 {
		summaries := make([]NumericSummary, 0, len(numeric))
		for _, i := range numeric {
			summaries = append(summaries, SummarizeNumeric(d.Columns[i], d.Column(i)))
		}
		return renderNumeric(summaries)
	}

	summaries := make([]TextSummary, 0, len(d.Columns))
	for i, name := range d.Columns {
		summaries = append(summaries, SummarizeText(name, d.Column(i)))
	}
	return renderText(summaries)
}

func renderNumeric(summaries []NumericSummary) string {
	header := []string{""}
	for _, s := range summaries {
		header = append(header, s.Column)
	}
	labels := []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}
	pick := []func(NumericSummary) float64{
		func(s NumericSummary) float64 { return float64(s.Count) },
		func(s NumericSummary) float64 { return s.Mean },
		func(s NumericSummary) float64 { return s.Std },
		func(s NumericSummary) float64 { return s.Min },
		func(s NumericSummary) float64 { return s.Q25 },
		func(s NumericSummary) float64 { return s.Median },
		func(s NumericSummary) float64 { return s.Q75 },
		func(s NumericSummary) float64 { return s.Max },
	}

	rows := [][]string{header}
	for i, label := range labels {
		row := []string{label}
		for _, s := range summaries {
			row = append(row, formatFloat(pick[i](s)))
		}
		rows = append(rows, row)
	}
	return renderTable(rows)
}

func renderText(summaries []TextSummary) string {
	header := []string{""}
	count, unique, top, freq := []string{"count"}, []string{"unique"}, []string{"top"}, []string{"freq"}
	for _, s := range summaries {
		header = append(header, s.Column)
		count = append(count, strconv.Itoa(s.Count))
		unique = append(unique, strconv.Itoa(s.Unique))
		if s.Count == 0 {
			top = append(top, "NaN")
			freq = append(freq, "NaN")
			continue
		}
		top = append(top, s.Top)
		freq = append(freq, strconv.Itoa(s.Freq))
	}
	return renderTable([][]string{header, count, unique, top, freq})
}

// Preview renders the first n rows with a leading row index. Missing cells show as NaN.
func Preview(d *Dataset, n int) string {
	if d == nil {
		return ""
	}
	head := d.Head(n)
	if head.Empty() {
		return fmt.Sprintf("Empty DataFrame\nColumns: [%s]\nIndex: []", strings.Join(d.Columns, ", "))
	}

	rows := [][]string{append([]string{""}, head.Columns...)}
	for i, r := range head.Rows {
		row := []string{strconv.Itoa(i)}
		for _, c := range r {
			if c.Missing {
				row = append(row, "NaN")
				continue
			}
			row = append(row, c.Value)
		}
		rows = append(rows, row)
	}
	return renderTable(rows)
}

func renderTable(rows [][]string) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', tabwriter.AlignRight)
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t")+"\t")
	}
	w.Flush()

	lines := strings.Split(strings.TrimRight(b.String(), "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	return strings.Join(lines, "\n")
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', 6, 64)
}
