// Package bcs implements the canonical binary encoding used for every signed
// payload produced by the enclave (Binary Canonical Serialization).
//
// The encoding is deterministic: identical logical values always produce
// identical bytes, which is what allows an independent verifier in any
// language to reconstruct a response and check its signature. The rules are:
//
//   - bool: one byte, 0x00 or 0x01
//   - u8/u16/u32/u64, i8/i16/i32/i64: fixed-width little-endian
//   - string: ULEB128 byte length followed by the UTF-8 bytes
//   - byte slice / slice: ULEB128 element count followed by each element
//   - array: each element in order, no length prefix
//   - struct: fields in declaration order, unexported fields skipped
//   - pointer (option): 0x00 for nil, otherwise 0x01 followed by the value
//   - map: ULEB128 entry count, entries sorted by their encoded key bytes
//
// Variable-width ints, floats and interfaces are rejected: they either have
// no canonical form or would make the width of the encoding depend on the
// value rather than the type.
package bcs

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"reflect"
	"sort"
)

// MaxSequenceLength bounds strings, slices and maps. Sequences at or beyond
// this length cannot be represented canonically.
const MaxSequenceLength = 1<<31 - 1

// Marshal encodes v into its canonical byte representation.
func Marshal(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := marshalValue(&buf, reflect.ValueOf(v)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func marshalValue(buf *bytes.Buffer, v reflect.Value) error {
	if !v.IsValid() {
		return fmt.Errorf("bcs: cannot encode invalid value")
	}

	switch v.Kind() {
	case reflect.Bool:
		if v.Bool() {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
		return nil

	case reflect.Uint8:
		buf.WriteByte(byte(v.Uint()))
		return nil
	case reflect.Uint16:
		return writeLittleEndian(buf, uint16(v.Uint()))
	case reflect.Uint32:
		return writeLittleEndian(buf, uint32(v.Uint()))
	case reflect.Uint64:
		return writeLittleEndian(buf, v.Uint())

	case reflect.Int8:
		buf.WriteByte(byte(v.Int()))
		return nil
	case reflect.Int16:
		return writeLittleEndian(buf, uint16(v.Int()))
	case reflect.Int32:
		return writeLittleEndian(buf, uint32(v.Int()))
	case reflect.Int64:
		return writeLittleEndian(buf, uint64(v.Int()))

	case reflect.Int, reflect.Uint:
		return fmt.Errorf("bcs: unsupported variable-width integer type %s, use a fixed-width type", v.Type())

	case reflect.String:
		s := v.String()
		if len(s) > MaxSequenceLength {
			return fmt.Errorf("bcs: string length %d exceeds maximum", len(s))
		}
		writeULEB128(buf, uint64(len(s)))
		buf.WriteString(s)
		return nil

	case reflect.Slice:
		if v.Len() > MaxSequenceLength {
			return fmt.Errorf("bcs: sequence length %d exceeds maximum", v.Len())
		}
		writeULEB128(buf, uint64(v.Len()))
		if v.Type().Elem().Kind() == reflect.Uint8 {
			buf.Write(v.Bytes())
			return nil
		}
		for i := 0; i < v.Len(); i++ {
			if err := marshalValue(buf, v.Index(i)); err != nil {
				return err
			}
		}
		return nil

	case reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if err := marshalValue(buf, v.Index(i)); err != nil {
				return err
			}
		}
		return nil

	case reflect.Struct:
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() {
				continue
			}
			if err := marshalValue(buf, v.Field(i)); err != nil {
				return fmt.Errorf("bcs: field %s.%s: %v", t.Name(), field.Name, err)
			}
		}
		return nil

	case reflect.Ptr:
		// Option<T>: presence byte then the value.
		if v.IsNil() {
			buf.WriteByte(0)
			return nil
		}
		buf.WriteByte(1)
		return marshalValue(buf, v.Elem())

	case reflect.Map:
		return marshalMap(buf, v)

	default:
		return fmt.Errorf("bcs: unsupported type %s", v.Type())
	}
}

// marshalMap encodes a map with entries ordered by the encoded bytes of the
// keys. Go map iteration order is randomized, so sorting here is what keeps
// the encoding canonical.
func marshalMap(buf *bytes.Buffer, v reflect.Value) error {
	if v.Len() > MaxSequenceLength {
		return fmt.Errorf("bcs: map length %d exceeds maximum", v.Len())
	}

	type entry struct {
		key, value []byte
	}
	entries := make([]entry, 0, v.Len())

	iter := v.MapRange()
	for iter.Next() {
		var kb, vb bytes.Buffer
		if err := marshalValue(&kb, iter.Key()); err != nil {
			return err
		}
		if err := marshalValue(&vb, iter.Value()); err != nil {
			return err
		}
		entries = append(entries, entry{key: kb.Bytes(), value: vb.Bytes()})
	}

	sort.Slice(entries, func(i, j int) bool {
		return bytes.Compare(entries[i].key, entries[j].key) < 0
	})

	writeULEB128(buf, uint64(v.Len()))
	for _, e := range entries {
		buf.Write(e.key)
		buf.Write(e.value)
	}
	return nil
}

func writeLittleEndian(buf *bytes.Buffer, v interface{}) error {
	return binary.Write(buf, binary.LittleEndian, v)
}

// writeULEB128 appends the unsigned LEB128 encoding of v.
func writeULEB128(buf *bytes.Buffer, v uint64) {
	for v >= 0x80 {
		buf.WriteByte(byte(v&0x7f) | 0x80)
		v >>= 7
	}
	buf.WriteByte(byte(v))
}
