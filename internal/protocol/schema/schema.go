package schema

import (
	"fmt"

	"github.com/danmuck/conventus/internal/logging"
	"github.com/danmuck/conventus/internal/protocol/tlv"
)

type Requirement struct {
	ID   uint16
	Type uint8
}

type ValidationError struct {
	MessageType uint32
	FieldID     uint16
	Reason      string
}

func (e ValidationError) Error() string {
	if e.FieldID == 0 {
		return fmt.Sprintf("schema: message_type=%d: %s", e.MessageType, e.Reason)
	}
	return fmt.Sprintf("schema: message_type=%d field=%d: %s", e.MessageType, e.FieldID, e.Reason)
}

// Registry maps message types to their required fields. A strict registry
// rejects message types it has no entry for.
type Registry struct {
	Strict       bool
	requirements map[uint32][]Requirement
}

func NewRegistry(strict bool) *Registry {
	return &Registry{Strict: strict, requirements: make(map[uint32][]Requirement)}
}

// Require registers (or replaces) the required fields of messageType.
func (r *Registry) Require(messageType uint32, reqs ...Requirement) error {
	for _, req := range reqs {
		if !tlv.KnownType(req.Type) {
			return ValidationError{MessageType: messageType, FieldID: req.ID, Reason: "unknown field type"}
		}
	}
	r.requirements[messageType] = append([]Requirement(nil), reqs...)
	return nil
}

func (r *Registry) Known(messageType uint32) bool {
	_, ok := r.requirements[messageType]
	return ok
}

// Validate enforces required fields and required field types for a message type.
// Unknown fields are ignored.
func (r *Registry) Validate(messageType uint32, fields []tlv.Field) error {
	log := logging.Logger("schema")
	log.Debug().Uint32("message_type", messageType).Int("fields", len(fields)).Msg("validate")
	reqs, ok := r.requirements[messageType]
	if !ok {
		if !r.Strict {
			return nil
		}
		log.Error().Uint32("message_type", messageType).Msg("unknown message_type")
		return ValidationError{MessageType: messageType, Reason: "unknown message_type"}
	}
	for _, req := range reqs {
		f, found := tlv.GetField(fields, req.ID)
		if !found {
			log.Error().Uint32("message_type", messageType).Uint16("field_id", req.ID).Msg("missing field")
			return ValidationError{MessageType: messageType, FieldID: req.ID, Reason: "missing required field"}
		}
		if f.Type != req.Type {
			log.Error().
				Uint32("message_type", messageType).
				Uint16("field_id", req.ID).
				Uint8("got", f.Type).
				Uint8("want", req.Type).
				Msg("type mismatch")
			return ValidationError{MessageType: messageType, FieldID: req.ID, Reason: "type mismatch"}
		}
	}
	return nil
}
