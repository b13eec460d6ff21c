package fdtforge

import (
	"fmt"
	"unsafe"
)

// FDT is a parsed view over a flattened device tree blob.
//
// The blob bytes are borrowed, never copied: every value derived from
// an FDT (reservations, tokens, nodes, properties, names) aliases the
// original buffer and must not outlive it. Nothing here mutates the
// buffer, allocates, or keeps state beyond the cursor values handed to
// the caller, so an FDT is safe to use before any other runtime
// facility exists.
type FDT struct {
	header Header
	data   []byte
	cfg    config
}

// FromBytes parses the blob at the start of data. data must be at
// least as long as the header's total size; extra trailing bytes are
// ignored. The returned FDT borrows data.
func FromBytes(data []byte, opts ...Option) (*FDT, error) {
	h, err := DecodeHeader(data)
	if err != nil {
		return nil, err
	}
	if uint64(len(data)) < uint64(h.TotalSize) {
		return nil, fmt.Errorf("fdtforge: blob is %d bytes, header claims %d: %w", len(data), h.TotalSize, ErrTruncated)
	}
	return &FDT{header: *h, data: data[:h.TotalSize], cfg: applyOptions(opts)}, nil
}

// FromPointer parses the blob at a raw address, typically handed over
// by firmware. This is the single trust boundary: the header is read
// and validated first, then exactly TotalSize bytes are mapped into
// one bounded slice. Everything downstream slices that checked buffer
// and never re-trusts a raw offset.
//
// The caller asserts that ptr points at readable memory covering at
// least HeaderSize bytes, and, if the header validates, the full
// TotalSize claimed by it, and that the memory stays valid and
// unchanged for as long as the FDT or anything derived from it is in
// use.
func FromPointer(ptr unsafe.Pointer, opts ...Option) (*FDT, error) {
	if ptr == nil {
		return nil, fmt.Errorf("fdtforge: nil blob pointer: %w", ErrOutOfBounds)
	}
	h, err := DecodeHeader(unsafe.Slice((*byte)(ptr), HeaderSize))
	if err != nil {
		return nil, err
	}
	// unsafe.Slice: creates a Go slice header over the firmware-supplied
	// region. Safe because DecodeHeader bounds-checked every block
	// offset against TotalSize, and the caller vouches for the region
	// itself.
	data := unsafe.Slice((*byte)(ptr), int(h.TotalSize))
	return &FDT{header: *h, data: data, cfg: applyOptions(opts)}, nil
}

// Header returns a copy of the validated blob header.
func (f *FDT) Header() Header { return f.header }

// TotalSize returns the blob size in bytes as claimed by the header.
func (f *FDT) TotalSize() uint32 { return f.header.TotalSize }

// BootCPUID returns the physical id of the booting CPU recorded by
// the firmware.
func (f *FDT) BootCPUID() uint32 { return f.header.BootCPUID }

// Reservations returns a scanner over the memory reservation block.
// Each call re-derives the scan from the header, so enumeration is
// cheaply restartable.
func (f *FDT) Reservations() ReservationScanner {
	return ReservationScanner{rest: f.data[f.header.OffMemRsvmap:]}
}

// Tokens returns a tokenizer positioned at the start of the struct
// block. The tokenizer is a value: copying it yields an independent
// cursor over the same bytes.
func (f *FDT) Tokens() Tokenizer {
	// offsets were validated against TotalSize at decode, so these
	// slices cannot go out of range
	structOff, structSize := int(f.header.OffDTStruct), int(f.header.SizeDTStruct)
	strOff, strSize := int(f.header.OffDTStrings), int(f.header.SizeDTStrings)
	return Tokenizer{
		structRest: f.data[structOff : structOff+structSize],
		strings:    f.data[strOff : strOff+strSize],
		lenient:    f.cfg.lenientTags,
	}
}

// Root returns the root node. The first struct token must be a
// begin-node; its name is conventionally the empty string.
func (f *FDT) Root() (Node, error) {
	tz := f.Tokens()
	if !tz.Next() {
		if err := tz.Err(); err != nil {
			return Node{}, err
		}
		return Node{}, fmt.Errorf("fdtforge: empty struct block: %w", ErrMalformedToken)
	}
	tok := tz.Token()
	if tok.Kind != TokenBeginNode {
		return Node{}, fmt.Errorf("fdtforge: struct block starts with %v, want begin-node: %w", tok.Kind, ErrMalformedToken)
	}
	return Node{name: tok.Name, cur: tz}, nil
}
