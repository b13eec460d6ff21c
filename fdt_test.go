package fdtforge

import (
	"bytes"
	"errors"
	"testing"
	"unsafe"
)

func TestFromBytes_ScenarioA(t *testing.T) {
	f := mustParse(t, scenarioA())

	rs := f.Reservations()
	for rs.Next() {
		t.Errorf("unexpected reservation %+v", rs.Reservation())
	}
	if err := rs.Err(); err != nil {
		t.Fatalf("reservations: %v", err)
	}

	root := mustRoot(t, f)
	if root.Name() != "" {
		t.Errorf("root name = %q, want empty", root.Name())
	}

	ps := root.Properties()
	if !ps.Next() {
		t.Fatalf("no properties (err: %v)", ps.Err())
	}
	p := ps.Property()
	if p.Name != "compatible" {
		t.Errorf("property name = %q, want compatible", p.Name)
	}
	if !bytes.Equal(p.Value, []byte("test\x00")) {
		t.Errorf("property value = %q, want %q", p.Value, "test\x00")
	}
	if ps.Next() {
		t.Errorf("unexpected second property %+v", ps.Property())
	}
	if err := ps.Err(); err != nil {
		t.Fatalf("properties: %v", err)
	}

	cs := root.Children()
	if cs.Next() {
		t.Errorf("unexpected child %q", cs.Node().Name())
	}
	if err := cs.Err(); err != nil {
		t.Fatalf("children: %v", err)
	}
}

func TestFromBytes_BufferShorterThanTotalSize(t *testing.T) {
	blob := scenarioA()
	_, err := FromBytes(blob[:len(blob)-4])
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("err = %v, want ErrTruncated", err)
	}
}

func TestFromBytes_TrailingBytesIgnored(t *testing.T) {
	blob := append(scenarioA(), 0xAA, 0xBB, 0xCC, 0xDD)
	f := mustParse(t, blob)
	if got := f.TotalSize(); int(got) != len(blob)-4 {
		t.Errorf("TotalSize = %d, want %d", got, len(blob)-4)
	}
}

func TestFromPointer_MatchesFromBytes(t *testing.T) {
	blob := scenarioA()
	f, err := FromPointer(unsafe.Pointer(&blob[0]))
	if err != nil {
		t.Fatalf("FromPointer: %v", err)
	}
	if f.Header() != mustParse(t, blob).Header() {
		t.Errorf("headers differ")
	}
	root := mustRoot(t, f)
	if root.Name() != "" {
		t.Errorf("root name = %q, want empty", root.Name())
	}
}

func TestFromPointer_Nil(t *testing.T) {
	_, err := FromPointer(nil)
	if !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("err = %v, want ErrOutOfBounds", err)
	}
}

func TestFromPointer_BadMagic(t *testing.T) {
	blob := scenarioA()
	patchU32(blob, 0, 0)
	_, err := FromPointer(unsafe.Pointer(&blob[0]))
	if !errors.Is(err, ErrBadMagic) {
		t.Fatalf("err = %v, want ErrBadMagic", err)
	}
}

func TestRoot_FirstTokenNotBeginNode(t *testing.T) {
	w := &structWriter{}
	w.end()
	w.endTag()
	f := mustParse(t, buildBlob(nil, w))
	_, err := f.Root()
	if !errors.Is(err, ErrMalformedToken) {
		t.Fatalf("err = %v, want ErrMalformedToken", err)
	}
}

func TestRoot_EmptyStructBlock(t *testing.T) {
	f := mustParse(t, buildBlob(nil, &structWriter{}))
	_, err := f.Root()
	if !errors.Is(err, ErrMalformedToken) {
		t.Fatalf("err = %v, want ErrMalformedToken", err)
	}
}

func TestBootCPUID(t *testing.T) {
	blob := scenarioA()
	patchU32(blob, 28, 3)
	f := mustParse(t, blob)
	if f.BootCPUID() != 3 {
		t.Errorf("BootCPUID = %d, want 3", f.BootCPUID())
	}
}
