package protocol

import (
	"errors"
	"math"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
)

func TestScalarAs(t *testing.T) {
	cursor := CursorValue(ActorID("aa").OpIDAt(4))

	tests := []struct {
		description string
		value       ScalarValue
		datatype    DataType
		expected    ScalarValue
		wantErr     bool
	}{
		{description: "int to counter", value: Int(10), datatype: DataCounter, expected: Counter(10)},
		{description: "uint to counter", value: Uint(10), datatype: DataCounter, expected: Counter(10)},
		{description: "float to int truncates", value: F64(3.9), datatype: DataInt, expected: Int(3)},
		{description: "counter to uint", value: Counter(7), datatype: DataUint, expected: Uint(7)},
		{description: "int to float", value: Int(5), datatype: DataF64, expected: F64(5)},
		{description: "int to timestamp", value: Int(1_594_979_727_000), datatype: DataTimestamp, expected: Timestamp(1_594_979_727_000)},
		{description: "undefined is identity", value: Str("s"), datatype: DataUndefined, expected: Str("s")},
		{description: "bytes passes through", value: BytesValue([]byte{1, 2}), datatype: DataBytes, expected: BytesValue([]byte{1, 2})},
		{description: "bytes needs bytes", value: Str("s"), datatype: DataBytes, wantErr: true},
		{description: "cursor passes through", value: cursor, datatype: DataCursor, expected: cursor},
		{description: "cursor needs cursor", value: Int(0), datatype: DataCursor, wantErr: true},
		{description: "string is not numeric", value: Str("10"), datatype: DataInt, wantErr: true},
		{description: "bool is not numeric", value: Bool(true), datatype: DataCounter, wantErr: true},
		{description: "null is not numeric", value: Null(), datatype: DataF64, wantErr: true},
		{description: "unknown datatype", value: Int(1), datatype: DataType("duration"), wantErr: true},
	}

	for _, tc := range tests {
		got, err := tc.value.As(tc.datatype)
		if tc.wantErr {
			if !errors.Is(err, ErrValueCoercion) {
				t.Errorf("(%s) expected ErrValueCoercion, got %v", tc.description, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("(%s) unexpected error: %v", tc.description, err)
			continue
		}
		if !cmp.Equal(got, tc.expected) {
			t.Errorf("(%s) got != expected, diff: %v", tc.description, cmp.Diff(got, tc.expected))
		}
	}
}

func TestScalarMarshalJSON(t *testing.T) {
	tests := []struct {
		description string
		value       ScalarValue
		expected    string
	}{
		{description: "string", value: Str("hi"), expected: `"hi"`},
		{description: "int", value: Int(-3), expected: `-3`},
		{description: "counter carries its total", value: Counter(12), expected: `12`},
		{description: "uint", value: Uint(7), expected: `7`},
		{description: "float", value: F64(1.5), expected: `1.5`},
		{description: "null", value: Null(), expected: `null`},
		{description: "bool", value: Bool(true), expected: `true`},
		{description: "cursor is an op id string", value: CursorValue(ActorID("aa").OpIDAt(2)), expected: `"2@aa"`},
	}

	for _, tc := range tests {
		got, err := json.Marshal(tc.value)
		if err != nil {
			t.Errorf("(%s) unexpected error: %v", tc.description, err)
			continue
		}
		if string(got) != tc.expected {
			t.Errorf("(%s) got %s, expected %s", tc.description, got, tc.expected)
		}
	}
}

func TestScalarFromJSON(t *testing.T) {
	tests := []struct {
		description string
		raw         string
		datatype    DataType
		expected    ScalarValue
	}{
		{description: "plain int", raw: "4", expected: Int(4)},
		{description: "negative int", raw: "-4", expected: Int(-4)},
		{description: "uint beyond int64", raw: "18446744073709551615", expected: Uint(math.MaxUint64)},
		{description: "float", raw: "1.5", expected: F64(1.5)},
		{description: "string", raw: `"x"`, expected: Str("x")},
		{description: "null", raw: "null", expected: Null()},
		{description: "bool", raw: "false", expected: Bool(false)},
		{description: "counter hint", raw: "9", datatype: DataCounter, expected: Counter(9)},
		{description: "timestamp hint", raw: "100", datatype: DataTimestamp, expected: Timestamp(100)},
		{description: "uint hint", raw: "7", datatype: DataUint, expected: Uint(7)},
		{description: "cursor hint", raw: `"3@bb"`, datatype: DataCursor, expected: CursorValue(ActorID("bb").OpIDAt(3))},
		{description: "bytes hint", raw: `"AQI="`, datatype: DataBytes, expected: BytesValue([]byte{1, 2})},
	}

	for _, tc := range tests {
		got, err := ScalarFromJSON(json.RawMessage(tc.raw), tc.datatype)
		if err != nil {
			t.Errorf("(%s) unexpected error: %v", tc.description, err)
			continue
		}
		if !cmp.Equal(got, tc.expected) {
			t.Errorf("(%s) got != expected, diff: %v", tc.description, cmp.Diff(got, tc.expected))
		}
	}
}

func TestObjTypeIsSequence(t *testing.T) {
	tests := []struct {
		objType  ObjType
		expected bool
	}{
		{objType: TypeList, expected: true},
		{objType: TypeText, expected: true},
		{objType: TypeMap, expected: false},
		{objType: TypeTable, expected: false},
	}

	for _, tc := range tests {
		if got := tc.objType.IsSequence(); got != tc.expected {
			t.Errorf("(%s) got %v, expected %v", tc.objType, got, tc.expected)
		}
	}
}
