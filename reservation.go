package fdtforge

import (
	"encoding/binary"
	"fmt"
)

// MemoryReservation is one region the firmware asserts the kernel must
// leave untouched, independent of the device tree itself.
type MemoryReservation struct {
	Address uint64
	Size    uint64
}

// ReservationScanner walks the memory reservation block: consecutive
// 16-byte (address, size) records, terminated by an all-zero record.
// The block carries no record count, so a missing terminator is
// reported as ErrTruncated rather than read past.
//
// Usage follows bufio.Scanner: Next advances, Reservation reads the
// current record, Err reports what stopped the scan.
type ReservationScanner struct {
	rest []byte
	cur  MemoryReservation
	err  error
	done bool
}

// Next advances to the next reservation. It returns false at the
// zero-record terminator or on error.
func (s *ReservationScanner) Next() bool {
	if s.done || s.err != nil {
		return false
	}
	if len(s.rest) < rsvRecordSize {
		s.err = fmt.Errorf("fdtforge: memory reservations: block ends without zero terminator: %w", ErrTruncated)
		return false
	}
	addr := binary.BigEndian.Uint64(s.rest[0:8])
	size := binary.BigEndian.Uint64(s.rest[8:16])
	if addr == 0 && size == 0 {
		s.done = true
		return false
	}
	s.rest = s.rest[rsvRecordSize:]
	s.cur = MemoryReservation{Address: addr, Size: size}
	return true
}

// Reservation returns the record read by the last successful Next.
func (s *ReservationScanner) Reservation() MemoryReservation { return s.cur }

// Err returns the error that stopped the scan, if any. A scan that
// reached the zero terminator returns nil.
func (s *ReservationScanner) Err() error { return s.err }
