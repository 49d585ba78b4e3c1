package protocol

import (
	"errors"
	"io"

	"github.com/danmuck/conventus"
	"github.com/danmuck/conventus/internal/observability"
	"github.com/danmuck/conventus/internal/protocol/frame"
	"github.com/danmuck/conventus/internal/stream"
)

// MessageReader reads frames from an io.Reader and assembles them into
// messages.
type MessageReader struct {
	frames   *stream.Reader[frame.Frame]
	messages *stream.Assembler[Fragment, Message]
}

func NewMessageReader(r io.Reader, codec Codec, limits frame.Limits, chunkSize int) *MessageReader {
	return &MessageReader{
		frames:   stream.NewReaderFunc[frame.Frame]("frame", r, limits.Compose, chunkSize),
		messages: stream.NewAssemblerFunc[Fragment, Message]("message", codec.Compose),
	}
}

// Next returns the next whole message, io.EOF at a clean end of input, or
// io.ErrUnexpectedEOF when input stops inside a frame or a message.
func (m *MessageReader) Next() (Message, error) {
	for {
		msg, err := m.messages.Next()
		if err == nil || !conventus.IsIncomplete(err) {
			return msg, err
		}
		f, err := m.frames.Next()
		if err != nil {
			if errors.Is(err, io.EOF) && m.messages.Pending() > 0 {
				return Message{}, io.ErrUnexpectedEOF
			}
			return Message{}, err
		}
		m.messages.Feed(Fragment(f))
	}
}

// WriteMessage fragments msg and writes the frames to w.
func WriteMessage(w io.Writer, msg Message, codec Codec, limits frame.Limits) error {
	fragments, err := codec.Decompose(msg)
	observability.RecordDecompose("fragment", err)
	if err != nil {
		return err
	}
	for _, f := range fragments {
		if err := frame.WriteFrame(w, frame.Frame(f), limits); err != nil {
			return err
		}
	}
	return nil
}
