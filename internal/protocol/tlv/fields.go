package tlv

import (
	"encoding/binary"
	"fmt"
)

func NewUint8(id uint16, v uint8) Field {
	return Field{ID: id, Type: TypeU8, Value: []byte{v}}
}

func NewUint16(id uint16, v uint16) Field {
	buf := make([]byte, 2)
	binary.BigEndian.PutUint16(buf, v)
	return Field{ID: id, Type: TypeU16, Value: buf}
}

func NewUint32(id uint16, v uint32) Field {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, v)
	return Field{ID: id, Type: TypeU32, Value: buf}
}

func NewUint64(id uint16, v uint64) Field {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return Field{ID: id, Type: TypeU64, Value: buf}
}

func NewBool(id uint16, v bool) Field {
	b := byte(0)
	if v {
		b = 1
	}
	return Field{ID: id, Type: TypeBool, Value: []byte{b}}
}

func NewString(id uint16, v string) Field {
	return Field{ID: id, Type: TypeString, Value: []byte(v)}
}

func NewBytes(id uint16, v []byte) Field {
	buf := make([]byte, len(v))
	copy(buf, v)
	return Field{ID: id, Type: TypeBytes, Value: buf}
}

func (f Field) Uint8() (uint8, error) {
	if err := f.expect(TypeU8, 1); err != nil {
		return 0, err
	}
	return f.Value[0], nil
}

func (f Field) Uint16() (uint16, error) {
	if err := f.expect(TypeU16, 2); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(f.Value), nil
}

func (f Field) Uint32() (uint32, error) {
	if err := f.expect(TypeU32, 4); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(f.Value), nil
}

func (f Field) Uint64() (uint64, error) {
	if err := f.expect(TypeU64, 8); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(f.Value), nil
}

func (f Field) Bool() (bool, error) {
	if err := f.expect(TypeBool, 1); err != nil {
		return false, err
	}
	switch f.Value[0] {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("%w: field %d bool %d", ErrInvalidValue, f.ID, f.Value[0])
	}
}

// Text returns a string field's value.
func (f Field) Text() (string, error) {
	if err := MustType(f, TypeString); err != nil {
		return "", err
	}
	return string(f.Value), nil
}

func (f Field) Bytes() ([]byte, error) {
	if err := MustType(f, TypeBytes); err != nil {
		return nil, err
	}
	buf := make([]byte, len(f.Value))
	copy(buf, f.Value)
	return buf, nil
}

// String renders the value for logs and CLI output.
func (f Field) String() string {
	switch f.Type {
	case TypeU8, TypeU16, TypeU32, TypeU64:
		v, err := f.unsigned()
		if err != nil {
			return fmt.Sprintf("%d=<%v>", f.ID, err)
		}
		return fmt.Sprintf("%d=%d", f.ID, v)
	case TypeBool:
		b, err := f.Bool()
		if err != nil {
			return fmt.Sprintf("%d=<%v>", f.ID, err)
		}
		return fmt.Sprintf("%d=%t", f.ID, b)
	case TypeString:
		return fmt.Sprintf("%d=%q", f.ID, string(f.Value))
	default:
		return fmt.Sprintf("%d=%x", f.ID, f.Value)
	}
}

func (f Field) unsigned() (uint64, error) {
	switch f.Type {
	case TypeU8:
		v, err := f.Uint8()
		return uint64(v), err
	case TypeU16:
		v, err := f.Uint16()
		return uint64(v), err
	case TypeU32:
		v, err := f.Uint32()
		return uint64(v), err
	default:
		return f.Uint64()
	}
}

func (f Field) expect(typeID uint8, width int) error {
	if err := MustType(f, typeID); err != nil {
		return err
	}
	if len(f.Value) != width {
		return fmt.Errorf("%w: field %d len %d", ErrInvalidValue, f.ID, len(f.Value))
	}
	return nil
}
