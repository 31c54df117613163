package loader

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/synaptica-ai/healthlab/pkg/dataset"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func parseDelimited(name string, data []byte) (*dataset.Dataset, error) {
	text, err := decodeText(data)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(bytes.NewReader(text))
	r.Comma = sniffDelimiter(name, text)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("no columns to parse from file")
		}
		return nil, err
	}
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	columns := headerNames(header)
	rows, err := buildRows(len(columns), records, 2)
	if err != nil {
		return nil, err
	}
	return dataset.New(columns, rows)
}

// decodeText strips a UTF-8 byte order mark and decodes GBK when the bytes are not valid UTF-8.
func decodeText(data []byte) ([]byte, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return data, nil
	}
	decoded, _, err := transform.Bytes(simplifiedchinese.GBK.NewDecoder(), data)
	if err != nil {
		return nil, err
	}
	return decoded, nil
}

// sniffDelimiter picks tab for .tsv files and otherwise the most frequent of comma, semicolon
// and tab on the header line, preferring comma on ties.
func sniffDelimiter(name string, text []byte) rune {
	if strings.EqualFold(filepath.Ext(name), ".tsv") {
		return '\t'
	}
	line, _ := bufio.NewReader(bytes.NewReader(text)).ReadString('\n')

	best, bestCount := ',', strings.Count(line, ",")
	for _, d := range []rune{';', '\t'} {
		if n := strings.Count(line, string(d)); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}
