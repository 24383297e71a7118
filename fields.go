package binlog

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"unicode/utf8"
)

// Field is one named value of a dumped event.
type Field struct {
	Key   string
	Value interface{}
}

// Fields is an ordered field-name-to-value mapping.
//
// After Dump, values are uint64, bool, string, Blob or nested Fields.
type Fields []Field

// Get returns the value stored under key.
func (f Fields) Get(key string) (interface{}, bool) {
	for _, kv := range f {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return nil, false
}

func (f Fields) Keys() []string {
	keys := make([]string, len(f))
	for i, kv := range f {
		keys[i] = kv.Key
	}
	return keys
}

// MarshalJSON encodes f as a JSON object, keeping the field order.
func (f Fields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, kv := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(kv.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(kv.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Blob is a byte sequence that could not be converted to text.
type Blob []byte

func (b Blob) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Binary string `json:"binary"`
	}{hex.EncodeToString(b)})
}

// Dump returns the fields of e: class, timestamp, log_pos, event_size,
// read_bytes and flags followed by the fields of its kind.
//
// RotateEvent is dumped as class, position, next_binlog and timestamp only.
//
// Byte values are converted to text where they are valid UTF-8 and kept
// as Blob otherwise; Dump never fails.
func Dump(e Event) Fields {
	var f Fields
	switch e := e.(type) {
	case *RotateEvent:
		f = append(Fields{{"class", e.Class()}}, e.extra()...)
		f = append(f, Field{"timestamp", e.Timestamp})
	default:
		f = append(e.Header().fields(e.Class()), e.extra()...)
	}
	return normalize(f)
}

func normalize(f Fields) Fields {
	out := make(Fields, len(f))
	for i, kv := range f {
		out[i] = Field{kv.Key, normalizeValue(kv.Value)}
	}
	return out
}

func normalizeValue(v interface{}) interface{} {
	switch v := v.(type) {
	case Fields:
		return normalize(v)
	case []byte:
		if utf8.Valid(v) {
			return string(v)
		}
		return Blob(append([]byte(nil), v...))
	case string:
		if utf8.ValidString(v) {
			return v
		}
		return Blob(v)
	case uint8:
		return uint64(v)
	case uint16:
		return uint64(v)
	case uint32:
		return uint64(v)
	case EventType:
		return uint64(v)
	}
	return v
}
