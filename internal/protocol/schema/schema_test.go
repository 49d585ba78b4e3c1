package schema

import (
	"errors"
	"testing"

	"github.com/danmuck/conventus/internal/protocol/tlv"
	"github.com/danmuck/conventus/internal/testutil/testlog"
)

const (
	msgIssue uint32 = 1

	fieldIntentID  uint16 = 1
	fieldActor     uint16 = 100
	fieldObjective uint16 = 102
)

func issueRegistry(t *testing.T, strict bool) *Registry {
	t.Helper()
	r := NewRegistry(strict)
	err := r.Require(msgIssue,
		Requirement{fieldIntentID, tlv.TypeString},
		Requirement{fieldActor, tlv.TypeString},
		Requirement{fieldObjective, tlv.TypeString},
	)
	if err != nil {
		t.Fatalf("require: %v", err)
	}
	return r
}

func TestValidateIssueRequiredFields(t *testing.T) {
	testlog.Start(t)
	fields := []tlv.Field{
		tlv.NewString(fieldIntentID, "intent-1"),
		tlv.NewString(fieldActor, "user:dan"),
		tlv.NewString(fieldObjective, "restart mongodb"),
		{ID: 9999, Type: tlv.TypeBytes, Value: []byte{0x01}},
	}
	if err := issueRegistry(t, true).Validate(msgIssue, fields); err != nil {
		t.Fatalf("validate issue: %v", err)
	}
}

func TestValidateMissingRequiredDeterministic(t *testing.T) {
	testlog.Start(t)
	fields := []tlv.Field{tlv.NewString(fieldIntentID, "intent-1")}
	err := issueRegistry(t, true).Validate(msgIssue, fields)
	var ve ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if ve.FieldID != fieldActor || ve.Reason != "missing required field" {
		t.Fatalf("unexpected validation error: %+v", ve)
	}
}

func TestValidateTypeMismatchDeterministic(t *testing.T) {
	testlog.Start(t)
	fields := []tlv.Field{
		tlv.NewString(fieldIntentID, "intent-1"),
		tlv.NewString(fieldActor, "user:dan"),
		tlv.NewUint32(fieldObjective, 1),
	}
	err := issueRegistry(t, true).Validate(msgIssue, fields)
	var ve ValidationError
	if !errors.As(err, &ve) || ve.FieldID != fieldObjective || ve.Reason != "type mismatch" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateUnknownMessageType(t *testing.T) {
	testlog.Start(t)
	if err := issueRegistry(t, false).Validate(99, nil); err != nil {
		t.Fatalf("lenient registry rejected unknown type: %v", err)
	}
	if err := issueRegistry(t, true).Validate(99, nil); err == nil {
		t.Fatalf("strict registry accepted unknown type")
	}
}

func TestRequireRejectsUnknownFieldType(t *testing.T) {
	if err := NewRegistry(false).Require(1, Requirement{ID: 1, Type: 42}); err == nil {
		t.Fatalf("expected error for unknown field type")
	}
}
