package stagedef

import (
	"encoding/binary"
	"math"

	"github.com/Faultbox/stagedef/pkg/stagedef/ppc"
)

// testBlob assembles synthetic big-endian stagedefs. The file header is at
// offset 0 and every alloc is 4-byte aligned.
type testBlob struct {
	buf []byte
}

func newTestBlob() *testBlob {
	b := &testBlob{buf: make([]byte, ppc.FileHeaderSize)}
	b.u32(0x00, ppc.MagicA)
	b.u32(0x04, ppc.MagicB)
	return b
}

func (b *testBlob) alloc(n int) uint32 {
	for len(b.buf)%4 != 0 {
		b.buf = append(b.buf, 0)
	}
	off := uint32(len(b.buf))
	b.buf = append(b.buf, make([]byte, n)...)
	return off
}

func (b *testBlob) u16(off uint32, v uint16) { binary.BigEndian.PutUint16(b.buf[off:], v) }
func (b *testBlob) u32(off uint32, v uint32) { binary.BigEndian.PutUint32(b.buf[off:], v) }
func (b *testBlob) f32(off uint32, v float32) {
	binary.BigEndian.PutUint32(b.buf[off:], math.Float32bits(v))
}

// list writes a (count, offset) pair at off.
func (b *testBlob) list(off, count, target uint32) {
	b.u32(off, count)
	b.u32(off+4, target)
}

func (b *testBlob) bytes() []byte { return b.buf }

// File header field offsets.
const (
	fhCollisionHeaders    = 0x08
	fhStart               = 0x10
	fhFallout             = 0x14
	fhGoals               = 0x18
	fhBananas             = 0x30
	fhBackgroundModels    = 0x58
	fhForegroundModels    = 0x60
	fhStageModelInstances = 0x84
	fhStageModelAs        = 0x8C
	fhStageModelBs        = 0x94
	fhFogAnimHeader       = 0xB0
	fhWormholes           = 0xB4
	fhFog                 = 0xBC
	fhMystery3            = 0xD4
)

// Collision header field offsets.
const (
	chAnimHeader    = 0x14
	chTriangles     = 0x24
	chGrid          = 0x28
	chGridStart     = 0x2C
	chGridStep      = 0x34
	chGridStepCount = 0x3C
	chGoals         = 0x44
	chWormholes     = 0xC4
)

// cellList writes a terminated triangle index list.
func (b *testBlob) cellList(indices ...uint16) uint32 {
	off := b.alloc(2 * (len(indices) + 1))
	for i, idx := range indices {
		b.u16(off+uint32(2*i), idx)
	}
	b.u16(off+uint32(2*len(indices)), ppc.TriIndexListEnd)
	return off
}

// triangles writes n triangles whose Point1.X is their index.
func (b *testBlob) triangles(n int) uint32 {
	off := b.alloc(n * ppc.CollisionTriSize)
	for i := 0; i < n; i++ {
		b.f32(off+uint32(i*ppc.CollisionTriSize), float32(i))
	}
	return off
}

// collisionHeaders allocates n zeroed collision headers and points the file
// header at them.
func (b *testBlob) collisionHeaders(n int) uint32 {
	off := b.alloc(n * ppc.CollisionHeaderSize)
	b.list(fhCollisionHeaders, uint32(n), off)
	return off
}

// grid writes an x*y grid whose cells hold the given lists (nil = empty
// cell) and attaches it and a triangle table of tris entries to header h.
func (b *testBlob) grid(h uint32, x, y int32, cells [][]uint16, tris int) {
	gridOff := b.alloc(int(x*y) * 4)
	for i, c := range cells {
		if c == nil {
			continue
		}
		b.u32(gridOff+uint32(4*i), b.cellList(c...))
	}
	b.u32(h+chGrid, gridOff)
	b.u32(h+chGridStepCount, uint32(x))
	b.u32(h+chGridStepCount+4, uint32(y))
	b.f32(h+chGridStart, -100)
	b.f32(h+chGridStart+4, -100)
	b.f32(h+chGridStep, 50)
	b.f32(h+chGridStep+4, 50)
	if tris > 0 {
		b.u32(h+chTriangles, b.triangles(tris))
	}
}

// minimalStage returns a stage with one collision header, a 1x1 grid whose
// only cell lists triangle 0, and one triangle.
func minimalStage() (*testBlob, uint32) {
	b := newTestBlob()
	h := b.collisionHeaders(1)
	b.grid(h, 1, 1, [][]uint16{{0}}, 1)
	return b, h
}

// suffixStage returns a stage whose 2x2 grid points into one cell list
// {5, 2, 9} at its first three entries and at its terminator, and whose two
// background models name "BG_CLOUD" and its tail "CLOUD".
func suffixStage() *testBlob {
	b := newTestBlob()
	h := b.collisionHeaders(1)
	b.grid(h, 2, 2, [][]uint16{nil, nil, nil, nil}, 10)
	list := b.cellList(5, 2, 9)
	gridOff := binary.BigEndian.Uint32(b.buf[h+chGrid:])
	for i := uint32(0); i < 4; i++ {
		b.u32(gridOff+4*i, list+2*i)
	}

	name := b.alloc(12)
	copy(b.buf[name:], "BG_CLOUD\x00")
	models := b.alloc(2 * ppc.BackgroundModelSize)
	b.u32(models+4, name+3)
	b.u32(models+ppc.BackgroundModelSize+4, name)
	b.list(fhBackgroundModels, 2, models)
	return b
}
