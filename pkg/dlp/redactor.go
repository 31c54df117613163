package dlp

import (
	"regexp"
)

type compiledRule struct {
	rule Rule
	re   *regexp.Regexp
}

type Redactor struct {
	rules []compiledRule
}

func NewRedactor(cfg RulesConfig) (*Redactor, error) {
	var compiled []compiledRule
	for _, rule := range cfg.Rules {
		if !rule.Enabled {
			continue
		}
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, compiledRule{rule: rule, re: re})
	}
	return &Redactor{rules: compiled}, nil
}

// RedactString masks every match and reports how many were masked. When a pattern has a
// capture group only the first group is masked, which lets a rule anchor on its surroundings.
// Matching resumes right after the masked group, so a separator shared by two adjacent
// identifiers anchors both of them.
func (r *Redactor) RedactString(text string) (string, int) {
	if r == nil {
		return text, 0
	}
	count := 0
	for _, c := range r.rules {
		var n int
		text, n = c.apply(text)
		count += n
	}
	return text, count
}

func (c compiledRule) apply(text string) (string, int) {
	var out []byte
	last, from, count := 0, 0, 0
	for from <= len(text) {
		m := c.re.FindStringSubmatchIndex(text[from:])
		if m == nil {
			break
		}
		start, end := from+m[0], from+m[1]
		if len(m) >= 4 && m[2] >= 0 {
			start, end = from+m[2], from+m[3]
		}
		if end == start {
			// empty match, step past one byte
			from = from + m[1] + 1
			continue
		}
		out = append(out, text[last:start]...)
		out = append(out, c.rule.Mask...)
		last, from = end, end
		count++
	}
	if count == 0 {
		return text, 0
	}
	out = append(out, text[last:]...)
	return string(out), count
}

// Redact returns a copy of data with every string, including nested ones, masked.
func (r *Redactor) Redact(data map[string]interface{}) (map[string]interface{}, int) {
	if data == nil {
		return nil, 0
	}
	total := 0
	out := make(map[string]interface{}, len(data))
	for key, value := range data {
		var n int
		out[key], n = r.redactValue(value)
		total += n
	}
	return out, total
}

func (r *Redactor) redactValue(value interface{}) (interface{}, int) {
	switch v := value.(type) {
	case string:
		return r.RedactString(v)
	case map[string]interface{}:
		return r.Redact(v)
	case []interface{}:
		out := make([]interface{}, len(v))
		total := 0
		for i, nested := range v {
			var n int
			out[i], n = r.redactValue(nested)
			total += n
		}
		return out, total
	case []string:
		out := make([]string, len(v))
		total := 0
		for i, s := range v {
			var n int
			out[i], n = r.RedactString(s)
			total += n
		}
		return out, total
	default:
		return value, 0
	}
}
