// Package report renders engine results as multi-section plain text.
package report

import (
	"fmt"
	"strings"
	"time"
)

const TimestampLayout = "2006-01-02 15:04:05"

// Clock supplies the time stamped on results.
type Clock func() time.Time

func SystemClock() time.Time {
	return time.Now()
}

// FixedClock always returns t.
func FixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func Timestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// Toggle renders a feature flag the way every report shows it.
func Toggle(enabled bool) string {
	if enabled {
		return "启用"
	}
	return "禁用"
}

// Percent renders a fraction with one decimal, e.g. 0.125 -> "12.5%".
func Percent(fraction float64) string {
	return fmt.Sprintf("%.1f%%", fraction*100)
}

// Grouped renders n with thousands separators.
func Grouped(n int) string {
	s := fmt.Sprintf("%d", n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

type section struct {
	heading string
	lines   []string
}

// Builder collects a title, headed sections and trailing lines.
type Builder struct {
	title    string
	sections []section
	footer   []string
}

func New(title string) *Builder {
	return &Builder{title: title}
}

// Section starts a new headed section; subsequent Line/Item calls append to it.
func (b *Builder) Section(heading string) *Builder {
	b.sections = append(b.sections, section{heading: heading})
	return b
}

// Item appends "- label: value" to the current section.
func (b *Builder) Item(label string, format string, args ...interface{}) *Builder {
	return b.Line("- " + label + ": " + fmt.Sprintf(format, args...))
}

// Line appends a raw line to the current section, or to an untitled one if none exists.
func (b *Builder) Line(line string) *Builder {
	if len(b.sections) == 0 {
		b.sections = append(b.sections, section{})
	}
	last := &b.sections[len(b.sections)-1]
	last.lines = append(last.lines, line)
	return b
}

// Footer adds a line after all sections.
func (b *Builder) Footer(line string) *Builder {
	b.footer = append(b.footer, line)
	return b
}

func (b *Builder) String() string {
	var out strings.Builder
	if b.title != "" {
		out.WriteString(b.title)
		out.WriteString("\n")
	}
	for _, s := range b.sections {
		out.WriteString("\n")
		if s.heading != "" {
			out.WriteString(s.heading)
			out.WriteString("\n")
		}
		for _, line := range s.lines {
			out.WriteString(line)
			out.WriteString("\n")
		}
	}
	if len(b.footer) > 0 {
		out.WriteString("\n")
		for _, line := range b.footer {
			out.WriteString(line)
			out.WriteString("\n")
		}
	}
	return out.String()
}
