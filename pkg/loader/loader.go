// Package loader turns uploaded files into datasets. It is the only place that knows about
// file formats.
package loader

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/synaptica-ai/healthlab/pkg/common/outcome"
	"github.com/synaptica-ai/healthlab/pkg/dataset"
)

const (
	unsupportedMessage = "不支持的文件格式"
	noFileMessage      = "请上传数据文件"
	failurePrefix      = "分析失败"
)

type Format string

const (
	FormatDelimited   Format = "delimited"
	FormatSpreadsheet Format = "spreadsheet"
	FormatJSON        Format = "json"
)

var extensions = map[string]Format{
	".csv":  FormatDelimited,
	".tsv":  FormatDelimited,
	".txt":  FormatDelimited,
	".xlsx": FormatSpreadsheet,
	".json": FormatJSON,
}

// naTokens are read as missing cells, compared after trimming.
var naTokens = map[string]struct{}{
	"":     {},
	"NA":   {},
	"N/A":  {},
	"NaN":  {},
	"nan":  {},
	"null": {},
	"NULL": {},
	"None": {},
	"#N/A": {},
}

// FormatFor reports the format for a file name, by extension.
func FormatFor(name string) (Format, error) {
	f, ok := extensions[strings.ToLower(filepath.Ext(name))]
	if !ok {
		return "", outcome.UnsupportedFormat(unsupportedMessage)
	}
	return f, nil
}

// Load reads the whole of r and parses it according to name's extension. The caller is
// responsible for bounding r.
func Load(name string, r io.Reader) (*dataset.Dataset, error) {
	if r == nil {
		return nil, outcome.EmptyInput(noFileMessage)
	}
	format, err := FormatFor(name)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, outcome.ComputationFailure(failurePrefix, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, outcome.EmptyInput(noFileMessage)
	}

	var d *dataset.Dataset
	switch format {
	case FormatDelimited:
		d, err = parseDelimited(name, data)
	case FormatSpreadsheet:
		d, err = parseSpreadsheet(data)
	case FormatJSON:
		d, err = parseJSON(data)
	}
	if err != nil {
		if _, classified := outcome.KindOf(err); classified {
			return nil, err
		}
		return nil, outcome.ComputationFailure(failurePrefix, err)
	}
	return d, nil
}

func cell(raw string) dataset.Cell {
	if _, na := naTokens[strings.TrimSpace(raw)]; na {
		return dataset.Missing()
	}
	return dataset.Value(raw)
}

// headerNames fills blank names and renames repeats so every column name is unique:
// a, a, a becomes a, a.1, a.2.
func headerNames(raw []string) []string {
	names := make([]string, len(raw))
	used := make(map[string]struct{}, len(raw))
	for i, name := range raw {
		name = strings.TrimSpace(name)
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		candidate := name
		for n := 1; ; n++ {
			if _, taken := used[candidate]; !taken {
				break
			}
			candidate = fmt.Sprintf("%s.%d", name, n)
		}
		used[candidate] = struct{}{}
		names[i] = candidate
	}
	return names
}

// buildRows pads short records with missing cells. Records wider than the header are an error.
func buildRows(width int, records [][]string, firstLine int) ([][]dataset.Cell, error) {
	rows := make([][]dataset.Cell, 0, len(records))
	for i, rec := range records {
		if len(rec) > width {
			return nil, fmt.Errorf("line %d: expected %d fields, saw %d", firstLine+i, width, len(rec))
		}
		row := make([]dataset.Cell, width)
		for j := range row {
			if j < len(rec) {
				row[j] = cell(rec[j])
			} else {
				row[j] = dataset.Missing()
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
