package docxfill

import (
	"bytes"
	"encoding/json"
	"log"
	"math"
	"sort"
	"strconv"
)

// RepeatKey - the only record key holding repeated rows
const RepeatKey = "deliverables"

// Record - input data for template.
// Values are scalars (string, integer, float, json.Number) except
// RepeatKey which holds list of sub-records.
type Record map[string]any

// ParseRecord - load record from JSON object.
// Numbers keep their literal text: 3 stays "3", 3.0 stays "3.0"
func ParseRecord(buf []byte) (Record, error) {
	buf = bytes.TrimSpace(buf)
	if len(buf) == 0 {
		return nil, &RecordError{Reason: "empty input"}
	}

	d := json.NewDecoder(bytes.NewReader(buf))
	d.UseNumber()

	var v any
	if err := d.Decode(&v); err != nil {
		return nil, &RecordError{Reason: "invalid JSON", Cause: err}
	}
	if d.More() {
		return nil, &RecordError{Reason: "unexpected data after JSON object"}
	}

	m, ok := v.(map[string]any)
	if !ok {
		return nil, &RecordError{Reason: "JSON value is not an object"}
	}
	return Record(m), nil
}

// NewRecord - load record from any value
// 1) Record / map[string]any as is
// 2) JSON bytes or string are parsed
// 3) Anything else (structs, typed maps) is converted to JSON and parsed back
func NewRecord(v any) (Record, error) {
	switch val := v.(type) {
	case nil:
		return nil, &RecordError{Reason: "no record"}
	case Record:
		return val, nil
	case map[string]any:
		return Record(val), nil
	case []byte:
		return ParseRecord(val)
	case json.RawMessage:
		return ParseRecord(val)
	case string:
		return ParseRecord([]byte(val))
	}

	buf, err := json.Marshal(v)
	if err != nil {
		return nil, &RecordError{Reason: "value can not be converted to JSON", Cause: err}
	}
	return ParseRecord(buf)
}

// Fields - text of every scalar field, repeated collection is skipped.
// Unsupported values (bool, null, objects, lists) are not included.
func (rec Record) Fields() map[string]string {
	fields := make(map[string]string, len(rec))
	for key, val := range rec {
		if key == RepeatKey {
			continue
		}
		s, ok := ScalarText(val)
		if !ok {
			continue
		}
		fields[key] = s
	}
	return fields
}

// Repeated - items of repeated collection in their order.
// Missing or not a list collection has no items, non object items are skipped.
func (rec Record) Repeated() []Record {
	raw, ok := rec[RepeatKey]
	if !ok || raw == nil {
		return nil
	}

	var items []Record
	switch list := raw.(type) {
	case []Record:
		items = append(items, list...)
	case []map[string]any:
		for _, m := range list {
			items = append(items, Record(m))
		}
	case []any:
		for i, item := range list {
			switch m := item.(type) {
			case map[string]any:
				items = append(items, Record(m))
			case Record:
				items = append(items, m)
			default:
				log.Printf("record: %s[%d]: skip %T, object expected", RepeatKey, i, item)
			}
		}
	default:
		log.Printf("record: %s: skip %T, list expected", RepeatKey, raw)
	}
	return items
}

// Keys - sorted record keys
func (rec Record) Keys() []string {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ScalarText - value to its default text form
// false when value is not scalar
func ScalarText(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case json.Number:
		return val.String(), true
	case int:
		return strconv.Itoa(val), true
	case int8:
		return strconv.FormatInt(int64(val), 10), true
	case int16:
		return strconv.FormatInt(int64(val), 10), true
	case int32:
		return strconv.FormatInt(int64(val), 10), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case uint:
		return strconv.FormatUint(uint64(val), 10), true
	case uint8:
		return strconv.FormatUint(uint64(val), 10), true
	case uint16:
		return strconv.FormatUint(uint64(val), 10), true
	case uint32:
		return strconv.FormatUint(uint64(val), 10), true
	case uint64:
		return strconv.FormatUint(val, 10), true
	case float32:
		return formatFloat(float64(val), 32)
	case float64:
		return formatFloat(val, 64)
	}
	return "", false
}

func formatFloat(f float64, bitSize int) (string, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", false
	}
	return strconv.FormatFloat(f, 'f', -1, bitSize), true
}
