package tabular

import (
	"encoding/json"
	"fmt"
	"io"

	"datalens/domain/table"
	"datalens/internal/errors"
)

// parseJSON reads either an array of flat records or an object of
// column arrays. Key order in the file determines column order, which
// is why this walks decoder tokens instead of unmarshaling into maps.
func parseJSON(r io.Reader) (*table.Table, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, errors.InputFormat("file could not be parsed as JSON", err)
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		return nil, errors.InputFormat("JSON root must be an array of records or an object of columns", nil)
	}

	switch delim {
	case '[':
		return parseRecordsArray(dec)
	case '{':
		return parseColumnsObject(dec)
	default:
		return nil, errors.InputFormat("JSON root must be an array of records or an object of columns", nil)
	}
}

// record preserves the key order of one JSON object
type record struct {
	keys   []string
	values map[string]interface{}
}

func parseRecordsArray(dec *json.Decoder) (*table.Table, error) {
	var records []record
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, errors.InputFormat("malformed JSON record array", err)
		}
		if d, ok := tok.(json.Delim); !ok || d != '{' {
			return nil, errors.InputFormat("JSON array elements must be objects", nil)
		}
		rec := record{values: make(map[string]interface{})}
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, errors.InputFormat("malformed JSON record", err)
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, errors.InputFormat("malformed JSON record key", nil)
			}
			val, err := readValue(dec)
			if err != nil {
				return nil, errors.InputFormat("malformed JSON record value", err)
			}
			if _, dup := rec.values[key]; !dup {
				rec.keys = append(rec.keys, key)
			}
			rec.values[key] = val
		}
		if _, err := dec.Token(); err != nil { // closing '}'
			return nil, errors.InputFormat("malformed JSON record", err)
		}
		records = append(records, rec)
	}
	if _, err := dec.Token(); err != nil { // closing ']'
		return nil, errors.InputFormat("malformed JSON record array", err)
	}

	if len(records) == 0 {
		return nil, errors.EmptyInput("JSON file contains no records")
	}

	// Columns appear in first-seen key order across records.
	var names []string
	index := make(map[string]int)
	for _, rec := range records {
		for _, k := range rec.keys {
			if _, ok := index[k]; !ok {
				index[k] = len(names)
				names = append(names, k)
			}
		}
	}
	if len(names) == 0 {
		return nil, errors.EmptyInput("JSON records contain no fields")
	}

	cols := make([]table.Column, len(names))
	for i, name := range names {
		cols[i] = table.Column{Name: name, Values: make([]table.Value, 0, len(records))}
	}
	for _, rec := range records {
		for i, name := range names {
			if v, ok := rec.values[name]; ok {
				cols[i].Values = append(cols[i].Values, jsonCell(v))
			} else {
				cols[i].Values = append(cols[i].Values, table.MissingValue)
			}
		}
	}

	return &table.Table{Columns: cols}, nil
}

func parseColumnsObject(dec *json.Decoder) (*table.Table, error) {
	var cols []table.Column
	maxLen := 0
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, errors.InputFormat("malformed JSON column object", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, errors.InputFormat("malformed JSON column key", nil)
		}
		val, err := readValue(dec)
		if err != nil {
			return nil, errors.InputFormat("malformed JSON column value", err)
		}
		arr, ok := val.([]interface{})
		if !ok {
			return nil, errors.InputFormat(fmt.Sprintf("JSON column %q must be an array", key), nil)
		}
		col := table.Column{Name: key, Values: make([]table.Value, 0, len(arr))}
		for _, v := range arr {
			col.Values = append(col.Values, jsonCell(v))
		}
		if len(arr) > maxLen {
			maxLen = len(arr)
		}
		cols = append(cols, col)
	}
	if _, err := dec.Token(); err != nil { // closing '}'
		return nil, errors.InputFormat("malformed JSON column object", err)
	}

	if len(cols) == 0 || maxLen == 0 {
		return nil, errors.EmptyInput("JSON file contains no data rows")
	}

	// Pad short columns so every column has the same length.
	for i := range cols {
		for len(cols[i].Values) < maxLen {
			cols[i].Values = append(cols[i].Values, table.MissingValue)
		}
	}

	return &table.Table{Columns: cols}, nil
}

// readValue consumes one JSON value from the decoder token stream
func readValue(dec *json.Decoder) (interface{}, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil // string, json.Number, bool or nil
	}
	switch delim {
	case '{':
		m := make(map[string]interface{})
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("object key is not a string")
			}
			v, err := readValue(dec)
			if err != nil {
				return nil, err
			}
			m[key] = v
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return m, nil
	case '[':
		arr := []interface{}{}
		for dec.More() {
			v, err := readValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return arr, nil
	default:
		return nil, fmt.Errorf("unexpected delimiter %v", delim)
	}
}

// jsonCell types a decoded JSON value as a table cell
func jsonCell(v interface{}) table.Value {
	switch t := v.(type) {
	case nil:
		return table.MissingValue
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return table.Num(f)
		}
		return table.Str(t.String())
	case string:
		return parseCell(t)
	case bool:
		if t {
			return table.Str("true")
		}
		return table.Str("false")
	default:
		// Nested structures are kept as their JSON text.
		raw, err := json.Marshal(t)
		if err != nil {
			return table.MissingValue
		}
		return table.Str(string(raw))
	}
}
