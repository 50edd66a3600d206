package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
)

// ObjType is the shape of a composite object.
type ObjType string

const (
	TypeMap   ObjType = "map"
	TypeTable ObjType = "table"
	TypeList  ObjType = "list"
	TypeText  ObjType = "text"
)

// IsSequence reports whether objects of this type hold ordered elements.
func (t ObjType) IsSequence() bool {
	return t == TypeList || t == TypeText
}

// DataType is the wire hint that tells apart value encodings sharing one
// JSON shape, for example counters and plain ints.
type DataType string

const (
	DataCounter   DataType = "counter"
	DataTimestamp DataType = "timestamp"
	DataBytes     DataType = "bytes"
	DataCursor    DataType = "cursor"
	DataUint      DataType = "uint"
	DataInt       DataType = "int"
	DataF64       DataType = "float64"
	DataUndefined DataType = "undefined"
)

// ValueKind discriminates the variants of a ScalarValue.
type ValueKind uint8

const (
	KindNull ValueKind = iota
	KindBool
	KindStr
	KindInt
	KindUint
	KindF64
	KindCounter
	KindTimestamp
	KindBytes
	KindCursor
)

func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindStr:
		return "str"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindF64:
		return "float64"
	case KindCounter:
		return "counter"
	case KindTimestamp:
		return "timestamp"
	case KindBytes:
		return "bytes"
	case KindCursor:
		return "cursor"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// ScalarValue is one primitive document value: the element payload of
// sequences and the leaf payload of maps. Only the field selected by Kind
// is meaningful; Int doubles as the payload of counters and timestamps.
type ScalarValue struct {
	Kind   ValueKind
	Bool   bool
	Str    string
	Int    int64
	Uint   uint64
	F64    float64
	Bytes  []byte
	Cursor OpID
}

// Null returns the null value.
func Null() ScalarValue {
	return ScalarValue{Kind: KindNull}
}

// Bool returns a boolean value.
func Bool(b bool) ScalarValue {
	return ScalarValue{Kind: KindBool, Bool: b}
}

// Str returns a string value.
func Str(s string) ScalarValue {
	return ScalarValue{Kind: KindStr, Str: s}
}

// Int returns a signed integer value.
func Int(n int64) ScalarValue {
	return ScalarValue{Kind: KindInt, Int: n}
}

// Uint returns an unsigned integer value.
func Uint(n uint64) ScalarValue {
	return ScalarValue{Kind: KindUint, Uint: n}
}

// F64 returns a floating point value.
func F64(f float64) ScalarValue {
	return ScalarValue{Kind: KindF64, F64: f}
}

// Counter returns a counter value with the given current total.
func Counter(n int64) ScalarValue {
	return ScalarValue{Kind: KindCounter, Int: n}
}

// Timestamp returns a timestamp value in milliseconds since the epoch.
func Timestamp(ms int64) ScalarValue {
	return ScalarValue{Kind: KindTimestamp, Int: ms}
}

// BytesValue returns a byte string value.
func BytesValue(b []byte) ScalarValue {
	return ScalarValue{Kind: KindBytes, Bytes: b}
}

// CursorValue returns a cursor pointing at the sequence element inserted
// by the given op.
func CursorValue(id OpID) ScalarValue {
	return ScalarValue{Kind: KindCursor, Cursor: id}
}

// ErrValueCoercion reports a value that cannot carry the requested datatype.
var ErrValueCoercion = errors.New("value cannot carry datatype")

// DataType returns the wire hint that accompanies the value's JSON
// encoding. DataUndefined means the JSON shape alone is enough.
func (v ScalarValue) DataType() DataType {
	switch v.Kind {
	case KindCounter:
		return DataCounter
	case KindTimestamp:
		return DataTimestamp
	case KindBytes:
		return DataBytes
	case KindCursor:
		return DataCursor
	case KindUint:
		return DataUint
	case KindInt:
		return DataInt
	case KindF64:
		return DataF64
	}
	return DataUndefined
}

// As reinterprets the value under the given wire hint. Numeric hints
// accept any numeric value, bytes and cursor hints require that exact
// kind, and DataUndefined leaves the value unchanged.
func (v ScalarValue) As(dt DataType) (ScalarValue, error) {
	switch dt {
	case DataUndefined:
		return v, nil
	case DataBytes:
		if v.Kind == KindBytes {
			return v, nil
		}
	case DataCursor:
		if v.Kind == KindCursor {
			return v, nil
		}
	case DataCounter:
		if n, ok := v.toInt64(); ok {
			return Counter(n), nil
		}
	case DataTimestamp:
		if n, ok := v.toInt64(); ok {
			return Timestamp(n), nil
		}
	case DataInt:
		if n, ok := v.toInt64(); ok {
			return Int(n), nil
		}
	case DataUint:
		if n, ok := v.toUint64(); ok {
			return Uint(n), nil
		}
	case DataF64:
		if f, ok := v.toFloat64(); ok {
			return F64(f), nil
		}
	default:
		return ScalarValue{}, fmt.Errorf("unknown datatype %q: %w", dt, ErrValueCoercion)
	}
	return ScalarValue{}, fmt.Errorf("%s as %s: %w", v.Kind, dt, ErrValueCoercion)
}

func (v ScalarValue) toInt64() (int64, bool) {
	switch v.Kind {
	case KindInt, KindCounter, KindTimestamp:
		return v.Int, true
	case KindUint:
		return int64(v.Uint), true
	case KindF64:
		return int64(v.F64), true
	}
	return 0, false
}

func (v ScalarValue) toUint64() (uint64, bool) {
	switch v.Kind {
	case KindInt, KindCounter, KindTimestamp:
		return uint64(v.Int), true
	case KindUint:
		return v.Uint, true
	case KindF64:
		return uint64(v.F64), true
	}
	return 0, false
}

func (v ScalarValue) toFloat64() (float64, bool) {
	switch v.Kind {
	case KindInt, KindCounter, KindTimestamp:
		return float64(v.Int), true
	case KindUint:
		return float64(v.Uint), true
	case KindF64:
		return v.F64, true
	}
	return 0, false
}

// MarshalJSON encodes the value in its natural JSON shape. The DataType
// hint travels in a sibling field, never here.
func (v ScalarValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		return json.Marshal(v.Bool)
	case KindStr:
		return json.Marshal(v.Str)
	case KindInt, KindCounter, KindTimestamp:
		return json.Marshal(v.Int)
	case KindUint:
		return json.Marshal(v.Uint)
	case KindF64:
		return json.Marshal(v.F64)
	case KindBytes:
		return json.Marshal(v.Bytes)
	case KindCursor:
		return json.Marshal(v.Cursor.String())
	}
	return nil, fmt.Errorf("marshal scalar: unknown kind %s", v.Kind)
}

// ScalarFromJSON decodes a value from its JSON shape plus the wire hint
// that travelled beside it. An empty or undefined hint falls back to the
// JSON shape: integers become ints (uints when they overflow int64),
// other numbers become float64s.
func ScalarFromJSON(raw json.RawMessage, dt DataType) (ScalarValue, error) {
	switch dt {
	case DataCursor:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ScalarValue{}, fmt.Errorf("cursor value: %w", err)
		}
		id, err := ParseOpID(s)
		if err != nil {
			return ScalarValue{}, fmt.Errorf("cursor value: %w", err)
		}
		return CursorValue(id), nil
	case DataBytes:
		var b []byte
		if err := json.Unmarshal(raw, &b); err != nil {
			return ScalarValue{}, fmt.Errorf("bytes value: %w", err)
		}
		return BytesValue(b), nil
	case DataCounter, DataTimestamp, DataInt, DataUint, DataF64:
		v, err := scalarFromShape(raw)
		if err != nil {
			return ScalarValue{}, err
		}
		return v.As(dt)
	}
	return scalarFromShape(raw)
}

func scalarFromShape(raw json.RawMessage) (ScalarValue, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return ScalarValue{}, errors.New("empty scalar value")
	}
	switch trimmed[0] {
	case 'n':
		return Null(), nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return ScalarValue{}, fmt.Errorf("boolean value: %w", err)
		}
		return Bool(b), nil
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ScalarValue{}, fmt.Errorf("string value: %w", err)
		}
		return Str(s), nil
	}
	var num json.Number
	if err := json.Unmarshal(raw, &num); err != nil {
		return ScalarValue{}, fmt.Errorf("scalar value %s: %w", trimmed, err)
	}
	if n, err := num.Int64(); err == nil {
		return Int(n), nil
	}
	if u, err := strconv.ParseUint(num.String(), 10, 64); err == nil {
		return Uint(u), nil
	}
	f, err := num.Float64()
	if err != nil {
		return ScalarValue{}, fmt.Errorf("numeric value %s: %w", num, err)
	}
	return F64(f), nil
}
