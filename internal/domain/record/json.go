package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// jsonDateLayout matches how browsers serialize dates in JSON
const jsonDateLayout = "2006-01-02T15:04:05.000Z"

// MarshalJSON encodes a cell as null, a number or a string
func (c Cell) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case KindNumber:
		return []byte(strconv.FormatFloat(c.Num, 'f', -1, 64)), nil
	case KindText:
		return json.Marshal(c.Text)
	case KindDate:
		return json.Marshal(c.Time.UTC().Format(jsonDateLayout))
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes numbers as number cells and everything else as text.
// Dates come back as text and are re-parsed by the date normalizer.
func (c *Cell) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	*c = cellFromToken(tok)
	return nil
}

func cellFromToken(tok json.Token) Cell {
	switch v := tok.(type) {
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return Text(v.String())
		}
		return Number(f)
	case string:
		return Text(v)
	case bool:
		return Text(strconv.FormatBool(v))
	default:
		return Cell{}
	}
}

// MarshalJSON encodes the record as an object with keys in insertion order
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := r.values[k].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object keeping the key order of the input
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("record: expected object, got %v", tok)
	}

	*r = Record{values: make(map[string]Cell)}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("record: expected key, got %v", keyTok)
		}
		valTok, err := dec.Token()
		if err != nil {
			return err
		}
		if _, nested := valTok.(json.Delim); nested {
			return fmt.Errorf("record: nested value under %q", key)
		}
		r.Set(key, cellFromToken(valTok))
	}
	_, err = dec.Token()
	return err
}
