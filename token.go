package fdtforge

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"unicode/utf8"
	"unsafe"
)

// TokenKind enumerates the struct tokens the tokenizer emits. The
// control tags (nop, end) are consumed internally and never surface.
type TokenKind int

const (
	TokenBeginNode TokenKind = iota
	TokenEndNode
	TokenProp
)

// String returns the canonical name for a token kind.
func (k TokenKind) String() string {
	switch k {
	case TokenBeginNode:
		return "begin-node"
	case TokenEndNode:
		return "end-node"
	case TokenProp:
		return "prop"
	default:
		return "unknown"
	}
}

// Token is one decoded unit of the struct block. Name and Value alias
// the blob's bytes; they are valid for the blob's lifetime and must
// not be mutated.
type Token struct {
	Kind  TokenKind
	Name  string
	Value []byte
}

// Tokenizer is a cursor over the struct block. Its state is two slice
// headers: the unconsumed remainder of the struct block and the whole
// strings block (reread at property name offsets, never consumed).
// Copying a Tokenizer is O(1) and yields an independent cursor over
// the same bytes; tree navigation leans on that for multi-pass scans.
//
// Usage follows bufio.Scanner: Next advances, Token reads the current
// token, Err reports what stopped the scan.
type Tokenizer struct {
	structRest []byte
	strings    []byte
	tok        Token
	err        error
	lenient    bool
}

// Next advances to the next token. It returns false at the end tag or
// on error; after the end tag, Err returns nil.
func (t *Tokenizer) Next() bool {
	if t.err != nil {
		return false
	}
	for len(t.structRest) > 0 {
		if len(t.structRest) < 4 {
			t.err = fmt.Errorf("fdtforge: struct block: %d stray trailing bytes: %w", len(t.structRest), ErrTruncated)
			return false
		}
		tag := binary.BigEndian.Uint32(t.structRest[0:4])
		switch tag {
		case tagBeginNode:
			name, err := cstr(t.structRest[4:])
			if err != nil {
				t.err = fmt.Errorf("fdtforge: begin-node name: %w", err)
				return false
			}
			// name plus NUL terminator, padded to the next 4-byte boundary
			adv := 4 + alignUp(len(name)+1, 4)
			if adv > len(t.structRest) {
				t.err = fmt.Errorf("fdtforge: begin-node record exceeds struct block: %w", ErrTruncated)
				return false
			}
			t.structRest = t.structRest[adv:]
			t.tok = Token{Kind: TokenBeginNode, Name: name}
			return true

		case tagEndNode:
			t.structRest = t.structRest[4:]
			t.tok = Token{Kind: TokenEndNode}
			return true

		case tagProp:
			if len(t.structRest) < 12 {
				t.err = fmt.Errorf("fdtforge: prop record header exceeds struct block: %w", ErrTruncated)
				return false
			}
			vlen := binary.BigEndian.Uint32(t.structRest[4:8])
			nameoff := binary.BigEndian.Uint32(t.structRest[8:12])
			if uint64(nameoff) >= uint64(len(t.strings)) {
				t.err = fmt.Errorf("fdtforge: prop name offset %d exceeds strings block (%d bytes): %w",
					nameoff, len(t.strings), ErrOutOfBounds)
				return false
			}
			name, err := cstr(t.strings[nameoff:])
			if err != nil {
				t.err = fmt.Errorf("fdtforge: prop name at offset %d: %w", nameoff, err)
				return false
			}
			adv := 12 + alignUp(int(vlen), 4)
			if uint64(12)+uint64(vlen) > uint64(len(t.structRest)) || adv > len(t.structRest) {
				t.err = fmt.Errorf("fdtforge: prop %q claims %d value bytes, %d remain: %w",
					name, vlen, len(t.structRest)-12, ErrTruncated)
				return false
			}
			value := t.structRest[12 : 12+int(vlen)]
			t.structRest = t.structRest[adv:]
			t.tok = Token{Kind: TokenProp, Name: name, Value: value}
			return true

		case tagNop:
			t.structRest = t.structRest[4:]

		case tagEnd:
			t.structRest = t.structRest[4:]
			if len(t.structRest) != 0 {
				t.err = fmt.Errorf("fdtforge: %d bytes after end tag: %w", len(t.structRest), ErrMalformedToken)
			}
			return false

		default:
			if t.lenient {
				t.structRest = t.structRest[4:]
				continue
			}
			t.err = fmt.Errorf("fdtforge: unrecognized struct tag %#x: %w", tag, ErrMalformedToken)
			return false
		}
	}
	return false
}

// Token returns the token read by the last successful Next.
func (t *Tokenizer) Token() Token { return t.tok }

// Err returns the error that stopped the scan, if any.
func (t *Tokenizer) Err() error { return t.err }

// cstr returns the NUL-terminated UTF-8 string at the start of b,
// excluding the terminator. The result aliases b: no copy is made, so
// it stays valid exactly as long as the underlying blob.
func cstr(b []byte) (string, error) {
	i := bytes.IndexByte(b, 0)
	if i < 0 {
		return "", fmt.Errorf("fdtforge: missing NUL terminator: %w", ErrInvalidString)
	}
	if i == 0 {
		return "", nil
	}
	s := b[:i]
	if !utf8.Valid(s) {
		return "", fmt.Errorf("fdtforge: not valid UTF-8: %w", ErrInvalidString)
	}
	// unsafe.String: views the blob bytes as a string without copying.
	// Safe because the blob is never mutated and the caller keeps it
	// alive for the lifetime of every derived value.
	return unsafe.String(&s[0], len(s)), nil
}
