package tlv

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/danmuck/conventus"
)

const HeaderLen = 7

// MaxValueLen bounds a single field value.
const MaxValueLen = 8 * 1024 * 1024

var (
	ErrShortFieldHeader = errors.New("tlv: short field header")
	ErrShortFieldValue  = errors.New("tlv: short field value")
	ErrUnknownType      = errors.New("tlv: unknown field type")
	ErrInvalidValue     = errors.New("tlv: invalid field value")
	ErrValueTooLarge    = errors.New("tlv: field value too large")
)

// Type IDs from tlv contract.
const (
	TypeU8     uint8 = 1
	TypeU16    uint8 = 2
	TypeU32    uint8 = 3
	TypeU64    uint8 = 4
	TypeBool   uint8 = 5
	TypeString uint8 = 6
	TypeBytes  uint8 = 7
)

// Field is one decoded TLV field.
type Field struct {
	ID    uint16
	Type  uint8
	Value []byte
}

func KnownType(t uint8) bool {
	return t >= TypeU8 && t <= TypeBytes
}

// fixedWidth is the exact value length for scalar types.
func fixedWidth(t uint8) (int, bool) {
	switch t {
	case TypeU8, TypeBool:
		return 1, true
	case TypeU16:
		return 2, true
	case TypeU32:
		return 4, true
	case TypeU64:
		return 8, true
	default:
		return 0, false
	}
}

// ComposeFrom consumes one field from the front of b.
//
// Header problems (unknown type, oversized or mis-sized value) are reported
// as soon as the 7 header bytes are present, without waiting for the value.
func (Field) ComposeFrom(b *[]byte) (Field, error) {
	return conventus.Transact(b, func(cur *conventus.Cursor[byte]) (Field, error) {
		head, err := cur.Take(HeaderLen)
		if err != nil {
			return Field{}, err
		}
		id := binary.BigEndian.Uint16(head[0:2])
		typeID := head[2]
		l := binary.BigEndian.Uint32(head[3:7])

		if !KnownType(typeID) {
			return Field{}, fmt.Errorf("%w: field %d type %d", ErrUnknownType, id, typeID)
		}
		if l > MaxValueLen {
			return Field{}, fmt.Errorf("%w: field %d len %d", ErrValueTooLarge, id, l)
		}
		if w, ok := fixedWidth(typeID); ok && int(l) != w {
			return Field{}, fmt.Errorf("%w: field %d type %d len %d", ErrInvalidValue, id, typeID, l)
		}

		val, err := cur.Take(int(l))
		if err != nil {
			return Field{}, err
		}
		if typeID == TypeBool && val[0] > 1 {
			return Field{}, fmt.Errorf("%w: field %d bool %d", ErrInvalidValue, id, val[0])
		}
		return Field{ID: id, Type: typeID, Value: val}, nil
	})
}

func EncodeField(f Field) []byte {
	return AppendField(make([]byte, 0, HeaderLen+len(f.Value)), f)
}

func AppendField(dst []byte, f Field) []byte {
	var head [HeaderLen]byte
	binary.BigEndian.PutUint16(head[0:2], f.ID)
	head[2] = f.Type
	binary.BigEndian.PutUint32(head[3:7], uint32(len(f.Value)))
	dst = append(dst, head[:]...)
	return append(dst, f.Value...)
}

// DecodeFields splits a complete payload into fields. Trailing bytes that do
// not form a whole field are reported as ErrShortFieldHeader or
// ErrShortFieldValue.
func DecodeFields(payload []byte) ([]Field, error) {
	rest := payload
	fields, err := conventus.ComposeAll[Field](&rest)
	if err != nil {
		return nil, err
	}
	if len(rest) == 0 {
		if fields == nil {
			fields = make([]Field, 0)
		}
		return fields, nil
	}
	if len(rest) < HeaderLen {
		return nil, ErrShortFieldHeader
	}
	return nil, ErrShortFieldValue
}

func EncodeFields(fields []Field) []byte {
	out := make([]byte, 0, EncodedLen(fields))
	for _, f := range fields {
		out = AppendField(out, f)
	}
	return out
}

// EncodedLen is the wire size of fields.
func EncodedLen(fields []Field) int {
	n := 0
	for _, f := range fields {
		n += HeaderLen + len(f.Value)
	}
	return n
}

func GetField(fields []Field, id uint16) (Field, bool) {
	for _, f := range fields {
		if f.ID == id {
			return f, true
		}
	}
	return Field{}, false
}

func MustType(f Field, expected uint8) error {
	if f.Type != expected {
		return fmt.Errorf("tlv: field %d type mismatch: got %d want %d", f.ID, f.Type, expected)
	}
	return nil
}

// Validate checks f the way ComposeFrom checks a decoded field.
func Validate(f Field) error {
	if !KnownType(f.Type) {
		return fmt.Errorf("%w: field %d type %d", ErrUnknownType, f.ID, f.Type)
	}
	if len(f.Value) > MaxValueLen {
		return fmt.Errorf("%w: field %d len %d", ErrValueTooLarge, f.ID, len(f.Value))
	}
	if w, ok := fixedWidth(f.Type); ok && len(f.Value) != w {
		return fmt.Errorf("%w: field %d type %d len %d", ErrInvalidValue, f.ID, f.Type, len(f.Value))
	}
	if f.Type == TypeBool && f.Value[0] > 1 {
		return fmt.Errorf("%w: field %d bool %d", ErrInvalidValue, f.ID, f.Value[0])
	}
	return nil
}
