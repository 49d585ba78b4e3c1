// Package protocol assembles messages out of frames.
//
// Ownership boundary:
// - frame/header primitives live in protocol/frame
// - tlv payload primitives live in protocol/tlv
// - fragment <-> message composition and schema checks live here
package protocol
