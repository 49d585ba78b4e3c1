package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/danmuck/conventus"
)

const (
	FixedHeaderLen uint16 = 32
	FlagHasAuth    uint32 = 0x01
	FlagIsResponse uint32 = 0x02
	FlagIsError    uint32 = 0x04
	// FlagMore marks a fragment that is followed by another of the same message.
	FlagMore uint32 = 0x08
)

var (
	ErrShortHeader       = errors.New("frame: short fixed header")
	ErrHeaderLenTooSmall = errors.New("frame: header_len smaller than fixed header")
	ErrHeaderLenMismatch = errors.New("frame: auth present but header_len has no auth bytes")
	ErrPayloadTooLarge   = errors.New("frame: payload too large")
	ErrAuthTooLarge      = errors.New("frame: auth too large")
)

// Header is the fixed wire header.
type Header struct {
	Magic       uint32
	Version     uint16
	HeaderLen   uint16
	MessageID   uint64
	MessageType uint32
	Flags       uint32
	PayloadLen  uint64
}

// Frame is one complete wire message.
type Frame struct {
	Header  Header
	Auth    []byte
	Payload []byte
}

// Limits constrains frame decode/encode memory use.
type Limits struct {
	MaxAuthBytes    uint64
	MaxPayloadBytes uint64
}

func DefaultLimits() Limits {
	return Limits{
		MaxAuthBytes:    64 * 1024,
		MaxPayloadBytes: 8 * 1024 * 1024,
	}
}

// ComposeFrom consumes one frame from the front of b under DefaultLimits.
func (Frame) ComposeFrom(b *[]byte) (Frame, error) {
	return DefaultLimits().Compose(b)
}

// Compose consumes one frame from the front of b. A header that breaks the
// limits fails as soon as the fixed header is present.
func (l Limits) Compose(b *[]byte) (Frame, error) {
	return conventus.Transact(b, func(cur *conventus.Cursor[byte]) (Frame, error) {
		fixed, err := cur.Take(int(FixedHeaderLen))
		if err != nil {
			return Frame{}, err
		}
		h, err := DecodeHeader(fixed)
		if err != nil {
			return Frame{}, err
		}
		authLen, err := l.check(h)
		if err != nil {
			return Frame{}, err
		}
		auth, err := cur.Take(int(authLen))
		if err != nil {
			return Frame{}, err
		}
		payload, err := cur.Take(int(h.PayloadLen))
		if err != nil {
			return Frame{}, err
		}
		return Frame{Header: h, Auth: auth, Payload: payload}, nil
	})
}

// check validates a decoded header and returns the auth length it declares.
func (l Limits) check(h Header) (uint64, error) {
	if h.HeaderLen < FixedHeaderLen {
		return 0, ErrHeaderLenTooSmall
	}
	authLen := uint64(h.HeaderLen - FixedHeaderLen)
	if h.Flags&FlagHasAuth != 0 && authLen == 0 {
		return 0, ErrHeaderLenMismatch
	}
	if authLen > l.MaxAuthBytes {
		return 0, ErrAuthTooLarge
	}
	if h.PayloadLen > l.MaxPayloadBytes {
		return 0, ErrPayloadTooLarge
	}
	return authLen, nil
}

func WriteFrame(w io.Writer, f Frame, limits Limits) error {
	b, err := Encode(f, limits)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// Encode renders f to wire bytes, deriving header_len, payload_len and the
// auth flag from f's contents.
func Encode(f Frame, limits Limits) ([]byte, error) {
	return Append(nil, f, limits)
}

func Append(dst []byte, f Frame, limits Limits) ([]byte, error) {
	authLen := uint64(len(f.Auth))
	payloadLen := uint64(len(f.Payload))
	if authLen > limits.MaxAuthBytes || authLen > uint64(^uint16(0)-FixedHeaderLen) {
		return nil, ErrAuthTooLarge
	}
	if payloadLen > limits.MaxPayloadBytes {
		return nil, ErrPayloadTooLarge
	}

	h := f.Header
	h.HeaderLen = FixedHeaderLen + uint16(authLen)
	h.PayloadLen = payloadLen
	if authLen > 0 {
		h.Flags |= FlagHasAuth
	} else {
		h.Flags &^= FlagHasAuth
	}

	dst = append(dst, EncodeHeader(h)...)
	dst = append(dst, f.Auth...)
	return append(dst, f.Payload...), nil
}

// Len is the encoded size of f.
func (f Frame) Len() int {
	return int(FixedHeaderLen) + len(f.Auth) + len(f.Payload)
}

func EncodeHeader(h Header) []byte {
	buf := make([]byte, FixedHeaderLen)
	binary.BigEndian.PutUint32(buf[0:4], h.Magic)
	binary.BigEndian.PutUint16(buf[4:6], h.Version)
	binary.BigEndian.PutUint16(buf[6:8], h.HeaderLen)
	binary.BigEndian.PutUint64(buf[8:16], h.MessageID)
	binary.BigEndian.PutUint32(buf[16:20], h.MessageType)
	binary.BigEndian.PutUint32(buf[20:24], h.Flags)
	binary.BigEndian.PutUint64(buf[24:32], h.PayloadLen)
	return buf
}

func DecodeHeader(b []byte) (Header, error) {
	if len(b) != int(FixedHeaderLen) {
		return Header{}, fmt.Errorf("%w: %d bytes", ErrShortHeader, len(b))
	}
	return Header{
		Magic:       binary.BigEndian.Uint32(b[0:4]),
		Version:     binary.BigEndian.Uint16(b[4:6]),
		HeaderLen:   binary.BigEndian.Uint16(b[6:8]),
		MessageID:   binary.BigEndian.Uint64(b[8:16]),
		MessageType: binary.BigEndian.Uint32(b[16:20]),
		Flags:       binary.BigEndian.Uint32(b[20:24]),
		PayloadLen:  binary.BigEndian.Uint64(b[24:32]),
	}, nil
}
