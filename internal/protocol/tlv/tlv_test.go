package tlv

import (
	"bytes"
	"errors"
	"testing"

	"github.com/danmuck/conventus"
)

func TestEncodeDecodeFieldsRoundTripPreservesUnknown(t *testing.T) {
	in := []Field{
		{ID: 1, Type: TypeString, Value: []byte("intent-1")},
		{ID: 9999, Type: TypeBytes, Value: []byte{0xAA, 0xBB}}, // unknown field id
	}
	b := EncodeFields(in)
	out, err := DecodeFields(b)
	if err != nil {
		t.Fatalf("decode fields: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(out))
	}
	if out[1].ID != 9999 || out[1].Type != TypeBytes || !bytes.Equal(out[1].Value, []byte{0xAA, 0xBB}) {
		t.Fatalf("unknown field not preserved: %+v", out[1])
	}
	if !bytes.Equal(b, EncodeFields(in)) {
		t.Fatalf("decode mutated payload")
	}
}

func TestEncodedLenSizesEncoding(t *testing.T) {
	fields := []Field{NewUint32(1, 7), NewString(2, "abc"), NewBytes(3, nil)}
	want := 3*HeaderLen + 4 + 3
	if got := EncodedLen(fields); got != want {
		t.Fatalf("encoded len: got %d want %d", got, want)
	}
	b := EncodeFields(fields)
	if len(b) != want || cap(b) != want {
		t.Fatalf("encoding: len %d cap %d want %d", len(b), cap(b), want)
	}
	if EncodedLen(nil) != 0 {
		t.Fatalf("expected zero length for no fields")
	}
}

func TestDecodeFieldsEmptyPayload(t *testing.T) {
	out, err := DecodeFields(nil)
	if err != nil {
		t.Fatalf("decode empty: %v", err)
	}
	if out == nil || len(out) != 0 {
		t.Fatalf("expected empty non-nil fields, got %#v", out)
	}
}

func TestDecodeFieldsMalformedHeaderIsDeterministic(t *testing.T) {
	_, err := DecodeFields([]byte{1, 2, 3})
	if !errors.Is(err, ErrShortFieldHeader) {
		t.Fatalf("expected ErrShortFieldHeader, got %v", err)
	}
}

func TestDecodeFieldsMalformedLengthIsDeterministic(t *testing.T) {
	// id=1, type=string, len=5, value only 2 bytes
	payload := []byte{0, 1, TypeString, 0, 0, 0, 5, 'a', 'b'}
	_, err := DecodeFields(payload)
	if !errors.Is(err, ErrShortFieldValue) {
		t.Fatalf("expected ErrShortFieldValue, got %v", err)
	}
}

func TestComposeFromConsumesOneField(t *testing.T) {
	first := NewUint16(1, 99)
	second := NewString(2, "hello")
	buf := append(EncodeField(first), EncodeField(second)...)

	f, err := conventus.ComposeFrom[Field](&buf)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if v, err := f.Uint16(); err != nil || v != 99 {
		t.Fatalf("unexpected first field: %v %v", f, err)
	}
	if !bytes.Equal(buf, EncodeField(second)) {
		t.Fatalf("expected only the first field consumed, left %x", buf)
	}
}

func TestComposeFromIncompleteLeavesInput(t *testing.T) {
	full := EncodeField(NewString(7, "abcdef"))
	for n := 0; n < len(full); n++ {
		buf := bytes.Clone(full[:n])
		_, err := Field{}.ComposeFrom(&buf)
		if !conventus.IsIncomplete(err) {
			t.Fatalf("prefix %d: expected incomplete, got %v", n, err)
		}
		if !bytes.Equal(buf, full[:n]) {
			t.Fatalf("prefix %d: input changed", n)
		}
	}
}

func TestComposeFromRejectsInvalidHeaders(t *testing.T) {
	cases := []struct {
		name string
		in   []byte
		want error
	}{
		{"unknown type", []byte{0, 1, 42, 0, 0, 0, 0}, ErrUnknownType},
		{"u32 wrong width", []byte{0, 1, TypeU32, 0, 0, 0, 2}, ErrInvalidValue},
		{"too large", []byte{0, 1, TypeBytes, 0xFF, 0xFF, 0xFF, 0xFF}, ErrValueTooLarge},
		{"bool out of range", []byte{0, 1, TypeBool, 0, 0, 0, 1, 2}, ErrInvalidValue},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			buf := bytes.Clone(tc.in)
			_, err := conventus.ComposeInto[Field](&buf)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if !conventus.IsInvalid(err) {
				t.Fatalf("expected permanent failure, got %v", err)
			}
			if !bytes.Equal(buf, tc.in) {
				t.Fatalf("input changed on failure")
			}
		})
	}
}

func TestTypedAccessors(t *testing.T) {
	if v, err := NewUint8(1, 7).Uint8(); err != nil || v != 7 {
		t.Fatalf("uint8: %v %v", v, err)
	}
	if v, err := NewUint32(1, 1<<20).Uint32(); err != nil || v != 1<<20 {
		t.Fatalf("uint32: %v %v", v, err)
	}
	if v, err := NewUint64(1, 1<<40).Uint64(); err != nil || v != 1<<40 {
		t.Fatalf("uint64: %v %v", v, err)
	}
	if v, err := NewBool(1, true).Bool(); err != nil || !v {
		t.Fatalf("bool: %v %v", v, err)
	}
	if v, err := NewString(1, "x").Text(); err != nil || v != "x" {
		t.Fatalf("string: %v %v", v, err)
	}
	if _, err := NewString(1, "x").Uint8(); err == nil {
		t.Fatalf("expected type mismatch")
	}
	if err := Validate(Field{ID: 1, Type: TypeBool, Value: []byte{3}}); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("expected invalid bool, got %v", err)
	}
	if got := NewUint16(4, 300).String(); got != "4=300" {
		t.Fatalf("unexpected render: %q", got)
	}
}
