package loader

import (
	"bytes"
	"errors"

	"github.com/synaptica-ai/healthlab/pkg/dataset"
	"github.com/xuri/excelize/v2"
)

// parseSpreadsheet reads the first sheet; its first row is the header.
func parseSpreadsheet(data []byte) (*dataset.Dataset, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New("no columns to parse from file")
	}

	columns := headerNames(records[0])
	body := records[1:]
	// excelize drops trailing empty rows but keeps blank ones in the middle
	for len(body) > 0 && len(body[len(body)-1]) == 0 {
		body = body[:len(body)-1]
	}
	rows, err := buildRows(len(columns), body, 2)
	if err != nil {
		return nil, err
	}
	return dataset.New(columns, rows)
}
