package packer

import "image"

// node is one region of the packed surface. A node is a leaf until it is
// split; only leaves are ever marked filled.
type node struct {
	pos    image.Point
	size   image.Point
	left   *node
	right  *node
	filled bool
}

// Packer places rectangles inside a fixed-size surface using a binary tree of
// free regions. It supports insertion only: placements are never freed.
type Packer struct {
	root *node
}

// New returns a packer covering the rectangle [0,0]..size.
func New(size image.Point) *Packer {
	return &Packer{root: &node{size: size}}
}

// Size returns the extent of the surface the packer allocates from.
func (p *Packer) Size() image.Point {
	return p.root.size
}

// Pack finds room for a rectangle of the given size. It reports false when no
// free region can hold it; that is an expected outcome once the surface fills up.
// Empty rectangles are never placed.
func (p *Packer) Pack(size image.Point) (image.Rectangle, bool) {
	if size.X <= 0 || size.Y <= 0 {
		return image.Rectangle{}, false
	}
	n := p.root.pack(size)
	if n == nil {
		return image.Rectangle{}, false
	}
	return image.Rectangle{Min: n.pos, Max: n.pos.Add(size)}, true
}

func (n *node) pack(size image.Point) *node {
	if n.left != nil && n.right != nil {
		if placed := n.left.pack(size); placed != nil {
			return placed
		}
		return n.right.pack(size)
	}

	if n.filled || n.size.X < size.X || n.size.Y < size.Y {
		return nil
	}
	if n.size == size {
		n.filled = true
		return n
	}

	// Split along the axis with the most slack. The left child always starts
	// at this node's origin.
	dw, dh := n.size.X-size.X, n.size.Y-size.Y
	if dw > dh {
		n.left = &node{pos: n.pos, size: image.Pt(size.X, n.size.Y)}
		n.right = &node{pos: image.Pt(n.pos.X+size.X, n.pos.Y), size: image.Pt(dw, n.size.Y)}
	} else {
		n.left = &node{pos: n.pos, size: image.Pt(n.size.X, size.Y)}
		n.right = &node{pos: image.Pt(n.pos.X, n.pos.Y+size.Y), size: image.Pt(n.size.X, dh)}
	}
	return n.left.pack(size)
}
