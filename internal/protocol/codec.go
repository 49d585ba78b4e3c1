package protocol

import (
	"fmt"

	"github.com/danmuck/conventus"
	"github.com/danmuck/conventus/internal/auth"
	"github.com/danmuck/conventus/internal/protocol/frame"
	"github.com/danmuck/conventus/internal/protocol/schema"
	"github.com/danmuck/conventus/internal/protocol/tlv"
)

// Codec carries the settings used to compose and decompose messages.
type Codec struct {
	Magic              uint32
	Version            uint16
	MaxAuthBytes       int
	MaxFragmentPayload int
	MaxFragments       int
	// Schema, when set, is checked against every composed message.
	Schema *schema.Registry
	// Auth, when set, must accept the auth block of every composed message.
	Auth auth.Validator
}

func DefaultCodec() Codec {
	return Codec{
		Magic:              Magic,
		Version:            Version,
		MaxAuthBytes:       64 * 1024,
		MaxFragmentPayload: 64 * 1024,
		MaxFragments:       256,
	}
}

// Compose consumes the fragments of one message: every fragment up to and
// including the first one without FlagMore. Until that fragment arrives the
// result is Incomplete.
func (c Codec) Compose(parts *[]Fragment) (Message, error) {
	return conventus.Transact(parts, func(cur *conventus.Cursor[Fragment]) (Message, error) {
		first, err := cur.Next()
		if err != nil {
			return Message{}, err
		}
		if err := c.checkHeader(first.Header); err != nil {
			return Message{}, err
		}
		if len(first.Auth) > c.MaxAuthBytes {
			return Message{}, ErrAuthTooLarge
		}
		if c.Auth != nil {
			if err := c.Auth.Validate(first.Auth); err != nil {
				return Message{}, fmt.Errorf("message %d: %w", first.Header.MessageID, err)
			}
		}
		flags := first.Header.Flags &^ transportFlags

		payload := append([]byte(nil), first.Payload...)
		last := first
		for n := 1; last.more(); n++ {
			if n >= c.MaxFragments {
				return Message{}, fmt.Errorf("%w: message %d over %d", ErrTooManyFragments, first.Header.MessageID, c.MaxFragments)
			}
			next, err := cur.Next()
			if err != nil {
				return Message{}, err
			}
			if err := c.checkContinuation(first, next); err != nil {
				return Message{}, err
			}
			payload = append(payload, next.Payload...)
			last = next
		}

		fields, err := tlv.DecodeFields(payload)
		if err != nil {
			return Message{}, fmt.Errorf("%w: message %d: %w", ErrMalformedPayload, first.Header.MessageID, err)
		}
		if c.Schema != nil {
			if err := c.Schema.Validate(first.Header.MessageType, fields); err != nil {
				return Message{}, err
			}
		}

		msg := Message{
			ID:    first.Header.MessageID,
			Type:  first.Header.MessageType,
			Flags: flags,
		}
		if len(first.Auth) > 0 {
			msg.Auth = append([]byte(nil), first.Auth...)
		}
		if len(fields) > 0 {
			msg.Fields = fields
		}
		return msg, nil
	})
}

func (c Codec) checkHeader(h frame.Header) error {
	if h.Magic != c.Magic {
		return fmt.Errorf("%w: 0x%08X", ErrInvalidMagic, h.Magic)
	}
	if h.Version != c.Version {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	return nil
}

func (c Codec) checkContinuation(first, next Fragment) error {
	if err := c.checkHeader(next.Header); err != nil {
		return err
	}
	if next.Header.MessageID != first.Header.MessageID {
		return fmt.Errorf("%w: %d then %d", ErrMessageIDMismatch, first.Header.MessageID, next.Header.MessageID)
	}
	if next.Header.MessageType != first.Header.MessageType {
		return fmt.Errorf("%w: message %d", ErrMessageTypeMismatch, first.Header.MessageID)
	}
	if next.Header.Flags&^transportFlags != first.Header.Flags&^transportFlags {
		return fmt.Errorf("%w: message %d", ErrFlagMismatch, first.Header.MessageID)
	}
	if len(next.Auth) > 0 {
		return fmt.Errorf("%w: message %d", ErrAuthNotFirst, first.Header.MessageID)
	}
	return nil
}

// Decompose splits m into fragments of at most MaxFragmentPayload payload
// bytes. The first fragment carries the auth block; all but the last carry
// FlagMore. A message without fields still yields one fragment.
func (c Codec) Decompose(m Message) ([]Fragment, error) {
	if len(m.Auth) > c.MaxAuthBytes || len(m.Auth) > int(^uint16(0)-frame.FixedHeaderLen) {
		return nil, ErrAuthTooLarge
	}
	for _, f := range m.Fields {
		if err := tlv.Validate(f); err != nil {
			return nil, err
		}
	}
	if c.MaxFragmentPayload <= 0 {
		return nil, fmt.Errorf("protocol: invalid max fragment payload %d", c.MaxFragmentPayload)
	}

	size := tlv.EncodedLen(m.Fields)
	count := max((size+c.MaxFragmentPayload-1)/c.MaxFragmentPayload, 1)
	if count > c.MaxFragments {
		return nil, fmt.Errorf("%w: message %d needs %d", ErrTooManyFragments, m.ID, count)
	}
	payload := tlv.EncodeFields(m.Fields)

	out := make([]Fragment, 0, count)
	for i := 0; i < count; i++ {
		start := i * c.MaxFragmentPayload
		end := min(start+c.MaxFragmentPayload, len(payload))
		chunk := append([]byte(nil), payload[start:end]...)

		h := frame.Header{
			Magic:       c.Magic,
			Version:     c.Version,
			HeaderLen:   frame.FixedHeaderLen,
			MessageID:   m.ID,
			MessageType: m.Type,
			Flags:       m.Flags &^ transportFlags,
			PayloadLen:  uint64(len(chunk)),
		}
		var auth []byte
		if i == 0 && len(m.Auth) > 0 {
			auth = append([]byte(nil), m.Auth...)
			h.HeaderLen += uint16(len(auth))
			h.Flags |= frame.FlagHasAuth
		}
		if i < count-1 {
			h.Flags |= frame.FlagMore
		}
		out = append(out, Fragment{Header: h, Auth: auth, Payload: chunk})
	}
	return out, nil
}
