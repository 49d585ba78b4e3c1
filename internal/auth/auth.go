// Package auth checks the auth block carried by the first fragment of a
// message.
package auth

import (
	"crypto/subtle"
	"errors"
)

var ErrUnauthorized = errors.New("auth: unauthorized")

// Validator accepts or rejects a message auth block.
type Validator interface {
	Validate(block []byte) error
}

// StaticToken accepts exactly one shared block. An empty Token accepts nothing.
type StaticToken struct {
	Token []byte
}

func (s StaticToken) Validate(block []byte) error {
	if len(s.Token) == 0 {
		return ErrUnauthorized
	}
	if subtle.ConstantTimeCompare(s.Token, block) != 1 {
		return ErrUnauthorized
	}
	return nil
}

type FuncValidator func(block []byte) error

func (f FuncValidator) Validate(block []byte) error {
	return f(block)
}
