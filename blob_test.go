package fdtforge

import (
	"encoding/binary"
	"testing"
)

// strTable accumulates a strings block, deduplicating names the way
// dtc does.
type strTable struct {
	buf []byte
	off map[string]uint32
}

func (st *strTable) offset(name string) uint32 {
	if st.off == nil {
		st.off = map[string]uint32{}
	}
	if o, ok := st.off[name]; ok {
		return o
	}
	o := uint32(len(st.buf))
	st.off[name] = o
	st.buf = append(st.buf, name...)
	st.buf = append(st.buf, 0)
	return o
}

// structWriter builds a struct block token by token.
type structWriter struct {
	buf []byte
	st  strTable
}

func (w *structWriter) u32(v uint32) {
	w.buf = binary.BigEndian.AppendUint32(w.buf, v)
}

func (w *structWriter) pad4() {
	for len(w.buf)%4 != 0 {
		w.buf = append(w.buf, 0)
	}
}

func (w *structWriter) begin(name string) {
	w.u32(tagBeginNode)
	w.buf = append(w.buf, name...)
	w.buf = append(w.buf, 0)
	w.pad4()
}

func (w *structWriter) beginRawName(name []byte) {
	w.u32(tagBeginNode)
	w.buf = append(w.buf, name...)
	w.pad4()
}

func (w *structWriter) end() { w.u32(tagEndNode) }

func (w *structWriter) prop(name string, value []byte) {
	w.u32(tagProp)
	w.u32(uint32(len(value)))
	w.u32(w.st.offset(name))
	w.buf = append(w.buf, value...)
	w.pad4()
}

// propRaw writes a prop record with an explicit value length and name
// offset, for malformed-input tests.
func (w *structWriter) propRaw(vlen, nameoff uint32, value []byte) {
	w.u32(tagProp)
	w.u32(vlen)
	w.u32(nameoff)
	w.buf = append(w.buf, value...)
	w.pad4()
}

func (w *structWriter) nop() { w.u32(tagNop) }

func (w *structWriter) endTag() { w.u32(tagEnd) }

func (w *structWriter) rawTag(tag uint32) { w.u32(tag) }

// encodeTestHeader is the test-side header writer; the library itself
// has no write path.
func encodeTestHeader(h Header) []byte {
	var b []byte
	for _, v := range []uint32{
		h.Magic, h.TotalSize, h.OffDTStruct, h.OffDTStrings, h.OffMemRsvmap,
		h.Version, h.LastCompVersion, h.BootCPUID, h.SizeDTStrings, h.SizeDTStruct,
	} {
		b = binary.BigEndian.AppendUint32(b, v)
	}
	return b
}

// buildBlob assembles a complete blob: header, reservation block (the
// zero terminator is appended here), struct block, strings block.
func buildBlob(rsv []MemoryReservation, w *structWriter) []byte {
	var rsvBuf []byte
	for _, r := range rsv {
		rsvBuf = binary.BigEndian.AppendUint64(rsvBuf, r.Address)
		rsvBuf = binary.BigEndian.AppendUint64(rsvBuf, r.Size)
	}
	rsvBuf = append(rsvBuf, make([]byte, rsvRecordSize)...)

	offRsv := uint32(HeaderSize)
	offStruct := offRsv + uint32(len(rsvBuf))
	offStrings := offStruct + uint32(len(w.buf))
	total := offStrings + uint32(len(w.st.buf))

	h := Header{
		Magic:           Magic,
		TotalSize:       total,
		OffDTStruct:     offStruct,
		OffDTStrings:    offStrings,
		OffMemRsvmap:    offRsv,
		Version:         17,
		LastCompVersion: 17,
		BootCPUID:       0,
		SizeDTStrings:   uint32(len(w.st.buf)),
		SizeDTStruct:    uint32(len(w.buf)),
	}

	buf := encodeTestHeader(h)
	buf = append(buf, rsvBuf...)
	buf = append(buf, w.buf...)
	buf = append(buf, w.st.buf...)
	return buf
}

// scenarioA: root node with one "compatible" property and no children.
func scenarioA() []byte {
	w := &structWriter{}
	w.begin("")
	w.prop("compatible", []byte("test\x00"))
	w.end()
	w.endTag()
	return buildBlob(nil, w)
}

// scenarioB: root{ a{} c{} }.
func scenarioB() []byte {
	w := &structWriter{}
	w.begin("")
	w.begin("a")
	w.end()
	w.begin("c")
	w.end()
	w.end()
	w.endTag()
	return buildBlob(nil, w)
}

func mustParse(t *testing.T, data []byte, opts ...Option) *FDT {
	t.Helper()
	f, err := FromBytes(data, opts...)
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	return f
}

func mustRoot(t *testing.T, f *FDT) Node {
	t.Helper()
	root, err := f.Root()
	if err != nil {
		t.Fatalf("Root: %v", err)
	}
	return root
}
