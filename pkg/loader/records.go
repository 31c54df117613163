package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cast"
	"github.com/synaptica-ai/healthlab/pkg/dataset"
)

// parseJSON accepts an array of objects or {"records": [...]}. Columns follow the order in
// which keys are first seen.
func parseJSON(data []byte) (*dataset.Dataset, error) {
	records, err := decodeRecords(data)
	if err != nil {
		return nil, err
	}

	var columns []string
	index := make(map[string]int)
	for _, rec := range records {
		for _, key := range rec.keys {
			if _, ok := index[key]; !ok {
				index[key] = len(columns)
				columns = append(columns, key)
			}
		}
	}

	rows := make([][]dataset.Cell, 0, len(records))
	for _, rec := range records {
		row := make([]dataset.Cell, len(columns))
		for i := range row {
			row[i] = dataset.Missing()
		}
		for key, v := range rec.values {
			c, err := jsonCell(v)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", key, err)
			}
			row[index[key]] = c
		}
		rows = append(rows, row)
	}
	return dataset.New(columns, rows)
}

type record struct {
	keys   []string
	values map[string]interface{}
}

func decodeRecords(data []byte) ([]record, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var wrapper struct {
			Records json.RawMessage `json:"records"`
		}
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return nil, err
		}
		if len(wrapper.Records) == 0 {
			return nil, errors.New(`object input must carry a "records" array`)
		}
		trimmed = wrapper.Records
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, err
	}
	out := make([]record, 0, len(raw))
	for i, msg := range raw {
		rec, err := decodeRecord(msg)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// decodeRecord keeps the key order of the object as written.
func decodeRecord(msg json.RawMessage) (record, error) {
	dec := json.NewDecoder(bytes.NewReader(msg))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return record{}, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return record{}, errors.New("expected an object")
	}

	rec := record{values: make(map[string]interface{})}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return record{}, err
		}
		key, _ := tok.(string)
		var v interface{}
		if err := dec.Decode(&v); err != nil {
			return record{}, err
		}
		if _, seen := rec.values[key]; !seen {
			rec.keys = append(rec.keys, key)
		}
		rec.values[key] = v
	}
	return rec, nil
}

func jsonCell(v interface{}) (dataset.Cell, error) {
	switch v.(type) {
	case nil:
		return dataset.Missing(), nil
	case map[string]interface{}, []interface{}:
		b, err := json.Marshal(v)
		if err != nil {
			return dataset.Cell{}, err
		}
		return dataset.Value(string(b)), nil
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return dataset.Cell{}, err
	}
	return cell(s), nil
}
