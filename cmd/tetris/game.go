package main

import (
	"image"
	"math/rand"
	"time"
)

const (
	boardWidth  = 10
	boardHeight = 20
)

// shapes holds each tetromino in its spawn orientation. Kind k uses
// shapes[k-1]; kind 0 is an empty cell.
var shapes = [7][4]image.Point{
	{{0, 1}, {1, 1}, {2, 1}, {3, 1}}, // I
	{{1, 0}, {2, 0}, {1, 1}, {2, 1}}, // O
	{{1, 0}, {0, 1}, {1, 1}, {2, 1}}, // T
	{{1, 0}, {2, 0}, {0, 1}, {1, 1}}, // S
	{{0, 0}, {1, 0}, {1, 1}, {2, 1}}, // Z
	{{0, 0}, {0, 1}, {1, 1}, {2, 1}}, // J
	{{2, 0}, {0, 1}, {1, 1}, {2, 1}}, // L
}

type piece struct {
	kind   int
	pos    image.Point
	blocks [4]image.Point
}

func (p piece) cells() [4]image.Point {
	var out [4]image.Point
	for i, b := range p.blocks {
		out[i] = b.Add(p.pos)
	}
	return out
}

type game struct {
	board   [boardHeight][boardWidth]int
	current piece
	rng     *rand.Rand
	score   int
	lines   int
	over    bool
}

func newGame(seed int64) *game {
	g := &game{rng: rand.New(rand.NewSource(seed))}
	g.spawn()
	return g
}

func (g *game) reset() {
	g.board = [boardHeight][boardWidth]int{}
	g.score, g.lines, g.over = 0, 0, false
	g.spawn()
}

// interval is the gravity period; it shortens every ten cleared lines.
func (g *game) interval() time.Duration {
	d := 600*time.Millisecond - time.Duration(g.lines/10)*50*time.Millisecond
	return max(d, 80*time.Millisecond)
}

func (g *game) spawn() {
	kind := g.rng.Intn(len(shapes)) + 1
	g.current = piece{kind: kind, pos: image.Pt(boardWidth/2-2, 0), blocks: shapes[kind-1]}
	if !g.fits(g.current) {
		g.over = true
	}
}

func (g *game) fits(p piece) bool {
	for _, c := range p.cells() {
		if c.X < 0 || c.X >= boardWidth || c.Y >= boardHeight {
			return false
		}
		if c.Y >= 0 && g.board[c.Y][c.X] != 0 {
			return false
		}
	}
	return true
}

func (g *game) move(dx, dy int) bool {
	if g.over {
		return false
	}
	next := g.current
	next.pos = next.pos.Add(image.Pt(dx, dy))
	if !g.fits(next) {
		return false
	}
	g.current = next
	return true
}

// rotate turns the piece clockwise around its 4x4 box, trying one cell of
// wall kick either side.
func (g *game) rotate() {
	if g.over || g.current.kind == 2 {
		return
	}
	next := g.current
	for i, b := range next.blocks {
		next.blocks[i] = image.Pt(2-b.Y, b.X)
	}
	for _, kick := range []int{0, -1, 1} {
		try := next
		try.pos.X += kick
		if g.fits(try) {
			g.current = try
			return
		}
	}
}

func (g *game) drop() {
	for g.move(0, 1) {
	}
	g.lock()
}

// step advances gravity by one row, locking the piece when it lands.
func (g *game) step() {
	if g.over {
		return
	}
	if !g.move(0, 1) {
		g.lock()
	}
}

func (g *game) lock() {
	if g.over {
		return
	}
	for _, c := range g.current.cells() {
		if c.Y < 0 {
			g.over = true
			return
		}
		g.board[c.Y][c.X] = g.current.kind
	}
	cleared := g.clearLines()
	g.lines += cleared
	g.score += [...]int{0, 100, 300, 500, 800}[cleared]
	g.spawn()
}

func (g *game) clearLines() int {
	cleared := 0
	for y := boardHeight - 1; y >= 0; {
		full := true
		for x := 0; x < boardWidth; x++ {
			if g.board[y][x] == 0 {
				full = false
				break
			}
		}
		if !full {
			y--
			continue
		}
		copy(g.board[1:y+1], g.board[0:y])
		g.board[0] = [boardWidth]int{}
		cleared++
	}
	return cleared
}
