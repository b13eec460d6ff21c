package fdtforge

import "fmt"

// Node is one device tree node, identified by a tokenizer cursor saved
// immediately after its begin-node token. It is an immutable value:
// Properties and Children each copy the saved cursor, so the two views
// never disturb each other and both are restartable.
type Node struct {
	name string
	cur  Tokenizer
}

// Name returns the node's name, empty for the root.
func (n Node) Name() string { return n.name }

// Properties returns a scanner over the node's direct properties: the
// maximal run of prop tokens immediately after its begin-node token.
func (n Node) Properties() PropScanner {
	return PropScanner{tz: n.cur}
}

// Children returns a scanner over the node's direct children. Deeper
// descendants are skipped, not recursed into; reach them by calling
// Children on the emitted child.
func (n Node) Children() ChildScanner {
	return ChildScanner{tz: n.cur, depth: 1}
}

// Property returns the node's direct property with the given name, or
// ErrNotFound.
func (n Node) Property(name string) (Property, error) {
	ps := n.Properties()
	for ps.Next() {
		if p := ps.Property(); p.Name == name {
			return p, nil
		}
	}
	if err := ps.Err(); err != nil {
		return Property{}, err
	}
	return Property{}, fmt.Errorf("fdtforge: property %q: %w", name, ErrNotFound)
}

// Child returns the node's direct child with the given name, or
// ErrNotFound.
func (n Node) Child(name string) (Node, error) {
	cs := n.Children()
	for cs.Next() {
		if c := cs.Node(); c.Name() == name {
			return c, nil
		}
	}
	if err := cs.Err(); err != nil {
		return Node{}, err
	}
	return Node{}, fmt.Errorf("fdtforge: child %q: %w", name, ErrNotFound)
}

// Property is a (name, raw value) pair. The value's encoding (cells,
// strings, string lists) is the caller's concern; both fields alias
// the blob.
type Property struct {
	Name  string
	Value []byte
}

// PropScanner walks a node's direct properties. It runs on its own
// copy of the node's cursor and stops, without error, at the first
// token that is not a property.
type PropScanner struct {
	tz   Tokenizer
	cur  Property
	done bool
}

// Next advances to the next property. It returns false at the first
// non-property token or on error.
func (s *PropScanner) Next() bool {
	if s.done {
		return false
	}
	if !s.tz.Next() {
		s.done = true
		return false
	}
	tok := s.tz.Token()
	if tok.Kind != TokenProp {
		s.done = true
		return false
	}
	s.cur = Property{Name: tok.Name, Value: tok.Value}
	return true
}

// Property returns the property read by the last successful Next.
func (s *PropScanner) Property() Property { return s.cur }

// Err returns the error that stopped the scan, if any.
func (s *PropScanner) Err() error { return s.tz.Err() }

// ChildScanner walks a node's direct children with a flat depth-counted
// scan: begin-node increments depth and emits at depth 2, end-node
// decrements, properties at any depth are structurally skipped. The
// scan ends when depth reaches 0 (the node's own end-node). No
// recursion state is kept, so traversal works with zero allocation.
type ChildScanner struct {
	tz    Tokenizer
	cur   Node
	depth int
	done  bool
}

// Next advances to the next direct child. It returns false when the
// enclosing node closes or on error.
func (s *ChildScanner) Next() bool {
	if s.done {
		return false
	}
	for s.depth > 0 {
		if !s.tz.Next() {
			s.done = true
			return false
		}
		switch tok := s.tz.Token(); tok.Kind {
		case TokenBeginNode:
			s.depth++
			if s.depth == 2 {
				// the child's cursor is a copy of ours, positioned just
				// past its begin-node token
				s.cur = Node{name: tok.Name, cur: s.tz}
				return true
			}
		case TokenEndNode:
			s.depth--
		case TokenProp:
			// properties interleave with children in the token stream;
			// skip them here, the Properties view reads them
		}
	}
	s.done = true
	return false
}

// Node returns the child read by the last successful Next.
func (s *ChildScanner) Node() Node { return s.cur }

// Err returns the error that stopped the scan, if any.
func (s *ChildScanner) Err() error { return s.tz.Err() }
