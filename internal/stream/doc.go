// Package stream drives composers over input that arrives in pieces.
//
// An Assembler keeps the growing part sequence and retries its composer each
// time more parts are fed; a Reader does the same for bytes pulled from an
// io.Reader. Neither is safe for concurrent use.
package stream
