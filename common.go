package fdtforge

// Magic is the big-endian sentinel in the first four bytes of every
// flattened device tree blob.
const Magic uint32 = 0xd00dfeed

// HeaderSize is the fixed size of the blob header: ten big-endian
// 32-bit fields.
const HeaderSize = 40

// MinVersion is the oldest blob format version we accept. Version 17
// introduced the size_dt_struct header field, which the tokenizer
// depends on.
const MinVersion = 17

// MaxCompVersion is the newest last_comp_version we accept. A blob
// whose last compatible version is above this was produced for a
// format we do not understand.
const MaxCompVersion = 17

// struct block tags, per the devicetree spec
const (
	tagBeginNode uint32 = 0x1
	tagEndNode   uint32 = 0x2
	tagProp      uint32 = 0x3
	tagNop       uint32 = 0x4
	tagEnd       uint32 = 0x9
)

const rsvRecordSize = 16

// alignUp rounds n up to the next multiple of align. align must be a
// power of two.
func alignUp(n, align int) int {
	return (n + align - 1) &^ (align - 1)
}
