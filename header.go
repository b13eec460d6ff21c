package fdtforge

import (
	"encoding/binary"
	"fmt"
)

// Header is the fixed 40-byte record at the start of every blob. Field
// order matches the on-disk layout; all fields are big-endian uint32.
type Header struct {
	Magic           uint32
	TotalSize       uint32
	OffDTStruct     uint32
	OffDTStrings    uint32
	OffMemRsvmap    uint32
	Version         uint32
	LastCompVersion uint32
	BootCPUID       uint32
	SizeDTStrings   uint32
	SizeDTStruct    uint32
}

// DecodeHeader reads the first 40 bytes of src into a Header and
// validates it: magic, version window, and that every block the header
// points at lies inside TotalSize. The offset checks are what make it
// safe to re-slice the blob by header offsets without further bounds
// checks.
func DecodeHeader(src []byte) (*Header, error) {
	if len(src) < HeaderSize {
		return nil, fmt.Errorf("fdtforge: header decode: buffer too small (%d < %d): %w", len(src), HeaderSize, ErrTruncated)
	}
	h := &Header{}
	h.Magic = binary.BigEndian.Uint32(src[0:4])
	if h.Magic != Magic {
		return nil, fmt.Errorf("fdtforge: header decode: %w (got %#x)", ErrBadMagic, h.Magic)
	}
	h.TotalSize = binary.BigEndian.Uint32(src[4:8])
	h.OffDTStruct = binary.BigEndian.Uint32(src[8:12])
	h.OffDTStrings = binary.BigEndian.Uint32(src[12:16])
	h.OffMemRsvmap = binary.BigEndian.Uint32(src[16:20])
	h.Version = binary.BigEndian.Uint32(src[20:24])
	h.LastCompVersion = binary.BigEndian.Uint32(src[24:28])
	if h.Version < MinVersion {
		return nil, fmt.Errorf("fdtforge: header decode: %w (version %d < %d)", ErrUnsupportedVersion, h.Version, MinVersion)
	}
	if h.LastCompVersion > MaxCompVersion {
		return nil, fmt.Errorf("fdtforge: header decode: %w (last compatible version %d > %d)", ErrUnsupportedVersion, h.LastCompVersion, MaxCompVersion)
	}
	h.BootCPUID = binary.BigEndian.Uint32(src[28:32])
	h.SizeDTStrings = binary.BigEndian.Uint32(src[32:36])
	h.SizeDTStruct = binary.BigEndian.Uint32(src[36:40])
	if err := h.checkBounds(); err != nil {
		return nil, err
	}
	return h, nil
}

// checkBounds rejects headers whose block offsets or sizes reach past
// TotalSize. All arithmetic is done in uint64 so hostile offset+size
// pairs cannot wrap.
func (h *Header) checkBounds() error {
	if h.TotalSize < HeaderSize {
		return fmt.Errorf("fdtforge: header decode: total size %d smaller than header: %w", h.TotalSize, ErrOutOfBounds)
	}
	total := uint64(h.TotalSize)
	if uint64(h.OffDTStruct)+uint64(h.SizeDTStruct) > total {
		return fmt.Errorf("fdtforge: header decode: struct block [%d, +%d) exceeds total size %d: %w",
			h.OffDTStruct, h.SizeDTStruct, h.TotalSize, ErrOutOfBounds)
	}
	if uint64(h.OffDTStrings)+uint64(h.SizeDTStrings) > total {
		return fmt.Errorf("fdtforge: header decode: strings block [%d, +%d) exceeds total size %d: %w",
			h.OffDTStrings, h.SizeDTStrings, h.TotalSize, ErrOutOfBounds)
	}
	if uint64(h.OffMemRsvmap) > total {
		return fmt.Errorf("fdtforge: header decode: reservation block offset %d exceeds total size %d: %w",
			h.OffMemRsvmap, h.TotalSize, ErrOutOfBounds)
	}
	return nil
}
