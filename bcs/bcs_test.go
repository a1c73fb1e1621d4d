package bcs

import (
	"bytes"
	"encoding/hex"
	"testing"
)

func TestMarshalGoldenVector(t *testing.T) {
	// This byte sequence is the contract independent verifiers rely on:
	// a scope tag, a millisecond timestamp and a payload struct must always
	// encode to exactly these bytes.
	type payload struct {
		Location    string
		Temperature uint64
	}
	type message struct {
		Intent      uint8
		TimestampMS uint64
		Data        payload
	}

	msg := message{
		Intent:      0,
		TimestampMS: 1744038900000,
		Data:        payload{Location: "San Francisco", Temperature: 13},
	}

	encoded, err := Marshal(msg)
	if err != nil {
		t.Fatalf("Failed to marshal message: %v", err)
	}

	expected, err := hex.DecodeString("0020b1d110960100000d53616e204672616e636973636f0d00000000000000")
	if err != nil {
		t.Fatalf("Failed to decode expected hex: %v", err)
	}

	if !bytes.Equal(encoded, expected) {
		t.Errorf("Golden vector mismatch:\n got  %x\n want %x", encoded, expected)
	}
}

func TestMarshalDeterminism(t *testing.T) {
	type inner struct {
		Name   string
		Values []uint32
	}
	type outer struct {
		ID    uint64
		Tags  map[string]uint8
		Inner *inner
	}

	v := outer{
		ID:    42,
		Tags:  map[string]uint8{"c": 3, "a": 1, "b": 2},
		Inner: &inner{Name: "x", Values: []uint32{7, 8, 9}},
	}

	first, err := Marshal(v)
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}

	for i := 0; i < 100; i++ {
		again, err := Marshal(v)
		if err != nil {
			t.Fatalf("Failed to marshal on iteration %d: %v", i, err)
		}
		if !bytes.Equal(first, again) {
			t.Fatalf("Encoding is not deterministic on iteration %d:\n got  %x\n want %x", i, again, first)
		}
	}
}

func TestMarshalMapKeyOrdering(t *testing.T) {
	encoded, err := Marshal(map[string]uint8{"bb": 2, "a": 1, "ccc": 3})
	if err != nil {
		t.Fatalf("Failed to marshal map: %v", err)
	}

	// Entries sorted by encoded key bytes: "a" (len 1) < "bb" (len 2) < "ccc" (len 3).
	expected := []byte{
		0x03,
		0x01, 'a', 0x01,
		0x02, 'b', 'b', 0x02,
		0x03, 'c', 'c', 'c', 0x03,
	}
	if !bytes.Equal(encoded, expected) {
		t.Errorf("Map encoding mismatch:\n got  %x\n want %x", encoded, expected)
	}
}

func TestMarshalScalars(t *testing.T) {
	cases := []struct {
		name  string
		value interface{}
		want  []byte
	}{
		{"bool true", true, []byte{0x01}},
		{"bool false", false, []byte{0x00}},
		{"u8", uint8(0xab), []byte{0xab}},
		{"u16", uint16(0x1234), []byte{0x34, 0x12}},
		{"u32", uint32(0x12345678), []byte{0x78, 0x56, 0x34, 0x12}},
		{"u64", uint64(1), []byte{1, 0, 0, 0, 0, 0, 0, 0}},
		{"i8 negative", int8(-1), []byte{0xff}},
		{"i64 negative", int64(-2), []byte{0xfe, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}},
		{"empty string", "", []byte{0x00}},
		{"bytes", []byte{0xde, 0xad}, []byte{0x02, 0xde, 0xad}},
		{"nil option", (*uint8)(nil), []byte{0x00}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Marshal(tc.value)
			if err != nil {
				t.Fatalf("Failed to marshal: %v", err)
			}
			if !bytes.Equal(got, tc.want) {
				t.Errorf("Encoding mismatch: got %x, want %x", got, tc.want)
			}
		})
	}
}

func TestMarshalOption(t *testing.T) {
	value := uint16(0x0102)
	got, err := Marshal(&value)
	if err != nil {
		t.Fatalf("Failed to marshal option: %v", err)
	}
	want := []byte{0x01, 0x02, 0x01}
	if !bytes.Equal(got, want) {
		t.Errorf("Option encoding mismatch: got %x, want %x", got, want)
	}
}

func TestMarshalRejectsUnsupportedTypes(t *testing.T) {
	cases := []struct {
		name  string
		value interface{}
	}{
		{"int", int(1)},
		{"uint", uint(1)},
		{"float64", float64(1.5)},
		{"chan", make(chan int)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Marshal(tc.value); err == nil {
				t.Errorf("Expected error for %s value", tc.name)
			}
		})
	}
}

func TestULEB128Boundaries(t *testing.T) {
	cases := []struct {
		value uint64
		want  []byte
	}{
		{0, []byte{0x00}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x01}},
		{16383, []byte{0xff, 0x7f}},
		{16384, []byte{0x80, 0x80, 0x01}},
	}

	for _, tc := range cases {
		var buf bytes.Buffer
		writeULEB128(&buf, tc.value)
		if !bytes.Equal(buf.Bytes(), tc.want) {
			t.Errorf("ULEB128(%d) = %x, want %x", tc.value, buf.Bytes(), tc.want)
		}
	}
}

func TestMarshalSkipsUnexportedFields(t *testing.T) {
	type mixed struct {
		A uint8
		b uint8
		C uint8
	}

	got, err := Marshal(mixed{A: 1, b: 2, C: 3})
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}
	want := []byte{0x01, 0x03}
	if !bytes.Equal(got, want) {
		t.Errorf("Encoding mismatch: got %x, want %x", got, want)
	}
}
