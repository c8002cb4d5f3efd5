// Package export serialises tabular data to CSV and back.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// WriteCSV emits the rows under the given header order. Values containing
// commas, quotes or newlines are double-quote escaped by the writer; maps
// and slices are JSON-stringified. Nil values become empty cells.
func WriteCSV(w io.Writer, headers []string, rows []map[string]any) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(headers); err != nil {
		return err
	}
	for _, row := range rows {
		record := make([]string, len(headers))
		for i, h := range headers {
			cell, err := encodeCell(row[h])
			if err != nil {
				return err
			}
			record[i] = cell
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ParseCSV reads a header row plus data rows. Empty cells come back as nil
// and numeric cells as float64; everything else stays a string.
func ParseCSV(r io.Reader) ([]string, []map[string]any, error) {
	reader := csv.NewReader(r)
	headers, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	var rows []map[string]any
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		row := make(map[string]any, len(headers))
		for i, h := range headers {
			if i >= len(record) {
				row[h] = nil
				continue
			}
			row[h] = decodeCell(record[i])
		}
		rows = append(rows, row)
	}
	return headers, rows, nil
}

func encodeCell(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case bool:
		return strconv.FormatBool(val), nil
	case int:
		return strconv.Itoa(val), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case map[string]any, []any:
		raw, err := json.Marshal(val)
		if err != nil {
			return "", fmt.Errorf("export: marshal cell: %w", err)
		}
		return string(raw), nil
	default:
		return fmt.Sprintf("%v", val), nil
	}
}

func decodeCell(s string) any {
	if s == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
