package backend

// AttribKind is the component type of a vertex attribute.
type AttribKind int

const (
	Float AttribKind = iota
	Int
	Byte
)

// Size returns the size of one component in bytes.
func (k AttribKind) Size() int {
	if k == Byte {
		return 1
	}
	return 4
}

// Attrib is one vertex attribute: Count components of Kind.
type Attrib struct {
	Kind  AttribKind
	Count int
}

// Layout lists vertex attributes in declaration order. Attribute i is bound
// to shader location i.
type Layout struct {
	Attribs []Attrib
}

func (l Layout) AddFloat(count int) Layout { return l.add(Float, count) }
func (l Layout) AddInt(count int) Layout   { return l.add(Int, count) }
func (l Layout) AddByte(count int) Layout  { return l.add(Byte, count) }

func (l Layout) add(kind AttribKind, count int) Layout {
	attribs := make([]Attrib, len(l.Attribs), len(l.Attribs)+1)
	copy(attribs, l.Attribs)
	l.Attribs = append(attribs, Attrib{Kind: kind, Count: count})
	return l
}

// Stride returns the size of one vertex in bytes.
func (l Layout) Stride() int {
	s := 0
	for _, a := range l.Attribs {
		s += a.Kind.Size() * a.Count
	}
	return s
}

// Offsets returns the byte offset of each attribute within a vertex.
func (l Layout) Offsets() []int {
	offsets := make([]int, len(l.Attribs))
	off := 0
	for i, a := range l.Attribs {
		offsets[i] = off
		off += a.Kind.Size() * a.Count
	}
	return offsets
}
