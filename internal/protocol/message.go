package protocol

import (
	"github.com/danmuck/conventus/internal/protocol/frame"
	"github.com/danmuck/conventus/internal/protocol/tlv"
)

const (
	Magic   uint32 = 0xEDCE1001
	Version uint16 = 1
)

// transportFlags are owned by the fragmenting layer and never surface on a
// Message.
const transportFlags = frame.FlagHasAuth | frame.FlagMore

// Message is one logical message, possibly carried by several frames.
type Message struct {
	ID     uint64
	Type   uint32
	Flags  uint32
	Auth   []byte
	Fields []tlv.Field
}

// Fragment is one frame's share of a Message.
type Fragment frame.Frame

func (f Fragment) more() bool {
	return f.Header.Flags&frame.FlagMore != 0
}

// ComposeFrom assembles one message from the front of parts using
// DefaultCodec.
func (Message) ComposeFrom(parts *[]Fragment) (Message, error) {
	return DefaultCodec().Compose(parts)
}

// DecomposeFrom splits m into fragments using DefaultCodec.
func (Fragment) DecomposeFrom(m Message) ([]Fragment, error) {
	return DefaultCodec().Decompose(m)
}

func (m Message) Field(id uint16) (tlv.Field, bool) {
	return tlv.GetField(m.Fields, id)
}

func (m Message) IsResponse() bool {
	return m.Flags&frame.FlagIsResponse != 0
}

func (m Message) IsError() bool {
	return m.Flags&frame.FlagIsError != 0
}
