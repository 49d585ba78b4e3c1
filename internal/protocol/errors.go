package protocol

import "errors"

var (
	ErrInvalidMagic        = errors.New("protocol: invalid magic")
	ErrUnsupportedVersion  = errors.New("protocol: unsupported version")
	ErrAuthTooLarge        = errors.New("protocol: auth block too large")
	ErrMessageIDMismatch   = errors.New("protocol: message id changed mid-message")
	ErrMessageTypeMismatch = errors.New("protocol: message type mismatch")
	ErrFlagMismatch        = errors.New("protocol: fragment flags differ from first fragment")
	ErrAuthNotFirst        = errors.New("protocol: auth block outside first fragment")
	ErrTooManyFragments    = errors.New("protocol: too many fragments")
	ErrMalformedPayload    = errors.New("protocol: malformed payload")
)
