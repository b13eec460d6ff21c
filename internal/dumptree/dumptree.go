// Package dumptree renders a parsed device tree blob as indented,
// dts-flavored text for human inspection. Value rendering here is
// heuristic on purpose: the core parser hands out raw bytes and takes
// no position on their encoding.
package dumptree

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/CreditWorthy/fdtforge"
)

// Printer writes the reservation list and node tree of a blob to w.
type Printer struct {
	w         io.Writer
	nodeColor *color.Color
	propColor *color.Color
	valColor  *color.Color
}

func New(w io.Writer) *Printer {
	return &Printer{
		w:         w,
		nodeColor: color.New(color.FgCyan, color.Bold),
		propColor: color.New(color.FgGreen),
		valColor:  color.New(color.FgHiBlack),
	}
}

// Reservations prints one line per memory reservation, in file order.
func (p *Printer) Reservations(f *fdtforge.FDT) error {
	rs := f.Reservations()
	n := 0
	for rs.Next() {
		r := rs.Reservation()
		fmt.Fprintf(p.w, "/memreserve/ 0x%016x %#x;\n", r.Address, r.Size)
		n++
	}
	if err := rs.Err(); err != nil {
		return err
	}
	if n > 0 {
		fmt.Fprintln(p.w)
	}
	return nil
}

// Tree prints the whole node tree, root first.
func (p *Printer) Tree(f *fdtforge.FDT) error {
	root, err := f.Root()
	if err != nil {
		return err
	}
	return p.node(root, 0)
}

func (p *Printer) node(n fdtforge.Node, depth int) error {
	indent := strings.Repeat("    ", depth)
	name := n.Name()
	if name == "" {
		name = "/"
	}
	fmt.Fprintf(p.w, "%s%s {\n", indent, p.nodeColor.Sprint(name))

	ps := n.Properties()
	for ps.Next() {
		prop := ps.Property()
		if len(prop.Value) == 0 {
			fmt.Fprintf(p.w, "%s    %s;\n", indent, p.propColor.Sprint(prop.Name))
			continue
		}
		fmt.Fprintf(p.w, "%s    %s = %s;\n", indent,
			p.propColor.Sprint(prop.Name), p.valColor.Sprint(FormatValue(prop.Value)))
	}
	if err := ps.Err(); err != nil {
		return err
	}

	cs := n.Children()
	for cs.Next() {
		if err := p.node(cs.Node(), depth+1); err != nil {
			return err
		}
	}
	if err := cs.Err(); err != nil {
		return err
	}

	fmt.Fprintf(p.w, "%s};\n", indent)
	return nil
}

// FormatValue renders a property value the way dts source would:
// NUL-separated printable strings become a quoted list, lengths that
// are a multiple of 4 become a cell list, anything else a byte list.
func FormatValue(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	if ss, ok := stringList(b); ok {
		quoted := make([]string, len(ss))
		for i, s := range ss {
			quoted[i] = strconv.Quote(s)
		}
		return strings.Join(quoted, ", ")
	}
	if len(b)%4 == 0 {
		var sb strings.Builder
		sb.WriteByte('<')
		for i := 0; i < len(b); i += 4 {
			if i > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%#x", binary.BigEndian.Uint32(b[i:i+4]))
		}
		sb.WriteByte('>')
		return sb.String()
	}
	return fmt.Sprintf("[% x]", b)
}

// stringList reports whether b is a NUL-terminated list of non-empty
// printable ASCII strings, the common encoding for "compatible" and
// friends.
func stringList(b []byte) ([]string, bool) {
	if b[len(b)-1] != 0 {
		return nil, false
	}
	parts := bytes.Split(b[:len(b)-1], []byte{0})
	out := make([]string, len(parts))
	for i, part := range parts {
		if len(part) == 0 {
			return nil, false
		}
		for _, c := range part {
			if c < 0x20 || c > 0x7e {
				return nil, false
			}
		}
		out[i] = string(part)
	}
	return out, true
}
