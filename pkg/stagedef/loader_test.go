package stagedef

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/Faultbox/stagedef/pkg/stagedef/ppc"
)

func TestLoad_OneTriangleOneCell(t *testing.T) {
	b, _ := minimalStage()

	sd, err := Load(b.bytes())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	headers := sd.CollisionHeaders()
	if len(headers) != 1 {
		t.Fatalf("expected 1 collision header, got %d", len(headers))
	}
	h := &headers[0]
	if got := len(sd.Triangles(h)); got != 1 {
		t.Errorf("expected 1 triangle, got %d", got)
	}
	cell, ok := sd.GridCell(h, 0, 0)
	if !ok {
		t.Fatal("GridCell(0, 0) not found")
	}
	if !reflect.DeepEqual(cell, []uint16{0}) {
		t.Errorf("cell (0, 0) = %v, want [0]", cell)
	}
	if _, ok := sd.GridCell(h, 1, 0); ok {
		t.Error("GridCell(1, 0) should be outside a 1x1 grid")
	}
}

func TestLoad_TriangleTableSizedByHighestIndex(t *testing.T) {
	b := newTestBlob()
	h := b.collisionHeaders(1)
	b.grid(h, 2, 2, [][]uint16{{0, 3}, nil, {7}, {3}}, 8)

	sd, err := Load(b.bytes())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	hdr := &sd.CollisionHeaders()[0]
	tris := sd.Triangles(hdr)
	if len(tris) != 8 {
		t.Fatalf("expected 8 triangles, got %d", len(tris))
	}
	for i, tri := range tris {
		if tri.Point1.X != float32(i) {
			t.Errorf("triangle %d Point1.X = %v", i, tri.Point1.X)
		}
	}

	referenced := map[uint16]bool{}
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			cell, _ := sd.GridCell(hdr, x, y)
			for _, idx := range cell {
				referenced[idx] = true
			}
		}
	}
	for _, idx := range []uint16{1, 2, 4, 5, 6} {
		if referenced[idx] {
			t.Errorf("index %d should not be referenced by any cell", idx)
		}
	}

	empty, ok := sd.GridCell(hdr, 1, 0)
	if !ok || len(empty) != 0 {
		t.Errorf("cell (1, 0) = %v, %v; want empty", empty, ok)
	}
}

func TestLoad_SharedCellListsAreStoredOnce(t *testing.T) {
	b := newTestBlob()
	h := b.collisionHeaders(1)
	b.grid(h, 2, 1, [][]uint16{nil, nil}, 0)
	shared := b.cellList(0, 1, 2)
	gridOff := binary.BigEndian.Uint32(b.buf[h+chGrid:])
	b.u32(gridOff, shared)
	b.u32(gridOff+4, shared)
	b.u32(h+chTriangles, b.triangles(3))

	sd, err := Load(b.bytes())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(sd.Arena.TriIndices) != 3 {
		t.Errorf("expected 3 stored indices, got %d", len(sd.Arena.TriIndices))
	}
	cells := sd.CollisionHeaders()[0].Grid.Cells.Of(sd.Arena.GridCells)
	if cells[0] != cells[1] {
		t.Errorf("shared cell lists map to different spans: %+v %+v", cells[0], cells[1])
	}
}

func TestLoad_SuffixCellListsShareStorage(t *testing.T) {
	sd, err := Load(suffixStage().bytes())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(sd.Arena.TriIndices, []uint16{5, 2, 9}) {
		t.Errorf("TriIndices = %v, want [5 2 9]", sd.Arena.TriIndices)
	}

	h := &sd.CollisionHeaders()[0]
	if got := len(sd.Triangles(h)); got != 10 {
		t.Errorf("expected 10 triangles, got %d", got)
	}
	want := []struct {
		x, y int
		cell []uint16
		span Span[uint16]
	}{
		{0, 0, []uint16{5, 2, 9}, SpanOf[uint16](0, 3)},
		{1, 0, []uint16{2, 9}, SpanOf[uint16](1, 2)},
		{0, 1, []uint16{9}, SpanOf[uint16](2, 1)},
		{1, 1, nil, Span[uint16]{}},
	}
	cells := h.Grid.Cells.Of(sd.Arena.GridCells)
	for i, w := range want {
		cell, ok := sd.GridCell(h, w.x, w.y)
		if !ok {
			t.Fatalf("GridCell(%d, %d) not found", w.x, w.y)
		}
		if len(cell) != len(w.cell) || (len(w.cell) > 0 && !reflect.DeepEqual(cell, w.cell)) {
			t.Errorf("cell (%d, %d) = %v, want %v", w.x, w.y, cell, w.cell)
		}
		if cells[i] != w.span {
			t.Errorf("cell %d span = %+v, want %+v", i, cells[i], w.span)
		}
	}
}

func TestLoad_ModelNamesShareTail(t *testing.T) {
	sd, err := Load(suffixStage().bytes())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(sd.Arena.Names, []string{"BG_CLOUD", "CLOUD"}) {
		t.Fatalf("Names = %q", sd.Arena.Names)
	}
	bgs := sd.BackgroundModels()
	if got := sd.DisplayName(bgs[0].ModelName); got != "CLOUD" {
		t.Errorf("first model name = %q, want CLOUD", got)
	}
	if got := sd.DisplayName(bgs[1].ModelName); got != "BG_CLOUD" {
		t.Errorf("second model name = %q, want BG_CLOUD", got)
	}
}

// A long list whose tail holds many other cells' starts is read once.
func TestLoad_OverlappingCellListsScanLinearly(t *testing.T) {
	const n = 4096
	b := newTestBlob()
	h := b.collisionHeaders(1)
	b.grid(h, n, 1, make([][]uint16, n), 1)
	indices := make([]uint16, n)
	list := b.cellList(indices...)
	gridOff := binary.BigEndian.Uint32(b.buf[h+chGrid:])
	for i := uint32(0); i < n; i++ {
		b.u32(gridOff+4*i, list+2*i)
	}

	sd, err := Load(b.bytes())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(sd.Arena.TriIndices) != n {
		t.Fatalf("expected %d stored indices, got %d", n, len(sd.Arena.TriIndices))
	}
	hdr := &sd.CollisionHeaders()[0]
	for _, x := range []int{0, 1, n / 2, n - 1} {
		cell, _ := sd.GridCell(hdr, x, 0)
		if len(cell) != n-x {
			t.Errorf("cell %d has %d entries, want %d", x, len(cell), n-x)
		}
	}
}

func TestLoad_BadMagic(t *testing.T) {
	tests := []struct {
		name   string
		offset int
	}{
		{"magic a", 0},
		{"magic b", 5},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b, _ := minimalStage()
			data := b.bytes()
			data[tc.offset] ^= 0xFF

			_, err := Load(data)
			if !errors.Is(err, ErrBadMagic) {
				t.Errorf("expected ErrBadMagic, got %v", err)
			}
		})
	}
}

func TestLoad_BadMagicCheckedFirst(t *testing.T) {
	// Wrong magic and a header far too short: the magic must be reported.
	data := []byte{0, 0, 0, 1, 0x44, 0x7A, 0, 0, 0xFF}
	if _, err := Load(data); !errors.Is(err, ErrBadMagic) {
		t.Errorf("expected ErrBadMagic, got %v", err)
	}
}

func TestLoad_Truncated(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"partial magic", []byte{0, 0, 0, 0, 0x44}},
		{"header only magic", []byte{0, 0, 0, 0, 0x44, 0x7A, 0, 0}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(tc.data)
			if !errors.Is(err, ErrTruncated) {
				t.Errorf("expected ErrTruncated, got %v", err)
			}
		})
	}
}

func TestLoad_OffsetAtBlobLength(t *testing.T) {
	b, _ := minimalStage()
	b.list(fhGoals, 1, uint32(len(b.bytes())))

	_, err := Load(b.bytes())
	if !errors.Is(err, ErrOffsetOutOfRange) {
		t.Fatalf("expected ErrOffsetOutOfRange, got %v", err)
	}
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected *DecodeError, got %T", err)
	}
	if de.Offset != uint32(len(b.bytes())) || de.Field != "goals" {
		t.Errorf("DecodeError = %+v", de)
	}
}

func TestLoad_ListRunsPastEnd(t *testing.T) {
	b, _ := minimalStage()
	goals := b.alloc(ppc.GoalSize)
	b.list(fhGoals, 2, goals)

	_, err := Load(b.bytes())
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
	var de *DecodeError
	if errors.As(err, &de) {
		if de.Offset != goals || de.Needed != 2*ppc.GoalSize {
			t.Errorf("DecodeError = %+v", de)
		}
	}
}

func TestLoad_EmptyListKeepsOffsetCheck(t *testing.T) {
	b, _ := minimalStage()
	b.list(fhGoals, 0, uint32(len(b.bytes()))+0x100)

	if _, err := Load(b.bytes()); !errors.Is(err, ErrOffsetOutOfRange) {
		t.Errorf("expected ErrOffsetOutOfRange, got %v", err)
	}

	b, _ = minimalStage()
	b.list(fhGoals, 0, ppc.FileHeaderSize)
	sd, err := Load(b.bytes())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if sd.Header.Goals.Len() != 0 || len(sd.Arena.Goals) != 0 {
		t.Errorf("expected no goals, got %d", sd.Header.Goals.Len())
	}
}

func TestLoad_NullOffsetsAreAbsent(t *testing.T) {
	b, _ := minimalStage()

	sd, err := Load(b.bytes())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !sd.Header.Start.IsNil() || sd.Start() != nil {
		t.Error("start should be absent")
	}
	if !sd.Header.Fog.IsNil() || !sd.Header.FogAnimHeader.IsNil() || !sd.Header.Mystery3.IsNil() {
		t.Error("fog, fog anim and mystery3 should be absent")
	}
	h := &sd.CollisionHeaders()[0]
	if !h.AnimHeader.IsNil() || h.AnimHeader.Get(sd.Arena.AnimHeaders) != nil {
		t.Error("anim header should be absent")
	}
	if h.AnimHeader.Index() != -1 {
		t.Errorf("absent Index() = %d, want -1", h.AnimHeader.Index())
	}
}

func TestLoad_NullOffsetIsNeverDereferenced(t *testing.T) {
	// A zero offset with a nonzero count must not read the file header as
	// a list of goals.
	b, _ := minimalStage()
	b.list(fhGoals, 1000, 0)

	sd, err := Load(b.bytes())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(sd.Arena.Goals) != 0 {
		t.Errorf("expected no goals, got %d", len(sd.Arena.Goals))
	}
}

func TestLoad_Singletons(t *testing.T) {
	b, _ := minimalStage()
	start := b.alloc(ppc.StartSize)
	b.f32(start, 12.5)
	b.u16(start+0xE, 0x4000)
	fallout := b.alloc(ppc.FalloutSize)
	b.f32(fallout, -20)
	fog := b.alloc(ppc.FogSize)
	b.buf[fog] = 2
	b.f32(fog+4, 100)
	m3 := b.alloc(ppc.Mystery3Size)
	b.buf[m3+0x23] = 0xAB
	b.u32(fhStart, start)
	b.u32(fhFallout, fallout)
	b.u32(fhFog, fog)
	b.u32(fhMystery3, m3)

	sd, err := Load(b.bytes())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s := sd.Start(); s == nil || s.Position.X != 12.5 || s.Rotation.Y != 0x4000 {
		t.Errorf("start = %+v", s)
	}
	if f := sd.Header.Fallout.Get(sd.Arena.Fallouts); f == nil || f.Y != -20 {
		t.Errorf("fallout = %+v", f)
	}
	if f := sd.Header.Fog.Get(sd.Arena.Fogs); f == nil || f.Type != 2 || f.StartDistance != 100 {
		t.Errorf("fog = %+v", f)
	}
	if m := sd.Header.Mystery3.Get(sd.Arena.Mystery3s); m == nil || m[0x23] != 0xAB {
		t.Errorf("mystery3 = %v", m)
	}
}

func TestLoad_WormholeMutualPair(t *testing.T) {
	b, _ := minimalStage()
	list := b.alloc(2 * ppc.WormholeSize)
	w0, w1 := list, list+ppc.WormholeSize
	b.f32(w0+4, 1)
	b.f32(w1+4, 2)
	b.u32(w0+0x18, w1)
	b.u32(w1+0x18, w0)
	b.list(fhWormholes, 2, list)

	sd, err := Load(b.bytes())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	ws := sd.Wormholes()
	if len(ws) != 2 {
		t.Fatalf("expected 2 wormholes, got %d", len(ws))
	}
	d0 := sd.WormholeDestination(&ws[0])
	d1 := sd.WormholeDestination(&ws[1])
	if d0 != &ws[1] || d1 != &ws[0] {
		t.Errorf("destinations do not form a pair: %p %p (list %p %p)", d0, d1, &ws[0], &ws[1])
	}
	if d0.Position.X != 2 || d1.Position.X != 1 {
		t.Errorf("destination positions = %v, %v", d0.Position.X, d1.Position.X)
	}
}

func TestLoad_WormholeCycles(t *testing.T) {
	t.Run("self", func(t *testing.T) {
		b, _ := minimalStage()
		w := b.alloc(ppc.WormholeSize)
		b.u32(w+0x18, w)
		b.list(fhWormholes, 1, w)

		sd, err := Load(b.bytes())
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		ws := sd.Wormholes()
		if sd.WormholeDestination(&ws[0]) != &ws[0] {
			t.Error("self-referencing wormhole should point at itself")
		}
	})

	t.Run("chain outside list", func(t *testing.T) {
		// The listed wormhole leads to two unlisted ones that loop back.
		b, _ := minimalStage()
		a := b.alloc(ppc.WormholeSize)
		b.alloc(0x10)
		c := b.alloc(ppc.WormholeSize)
		d := b.alloc(ppc.WormholeSize)
		b.u32(a+0x18, c)
		b.u32(c+0x18, d)
		b.u32(d+0x18, a)
		b.list(fhWormholes, 1, a)

		sd, err := Load(b.bytes())
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if len(sd.Arena.Wormholes) != 3 {
			t.Fatalf("expected 3 wormholes in arena, got %d", len(sd.Arena.Wormholes))
		}
		start := &sd.Wormholes()[0]
		w := start
		for i := 0; i < 3; i++ {
			w = sd.WormholeDestination(w)
			if w == nil {
				t.Fatalf("chain broken at step %d", i)
			}
		}
		if w != start {
			t.Error("chain should return to the listed wormhole after 3 hops")
		}
	})

	t.Run("destination out of range", func(t *testing.T) {
		b, _ := minimalStage()
		w := b.alloc(ppc.WormholeSize)
		b.u32(w+0x18, uint32(len(b.bytes())))
		b.list(fhWormholes, 1, w)

		if _, err := Load(b.bytes()); !errors.Is(err, ErrOffsetOutOfRange) {
			t.Errorf("expected ErrOffsetOutOfRange, got %v", err)
		}
	})
}

func TestLoad_SharedReferences(t *testing.T) {
	b, h := minimalStage()

	name := b.alloc(8)
	copy(b.buf[name:], "GATE\x00")
	model := b.alloc(ppc.StageModelSize)
	b.u32(model+4, name)

	ptrAs := b.alloc(2 * ppc.StageModelPtrASize)
	b.u32(ptrAs+8, model)
	b.u32(ptrAs+ppc.StageModelPtrASize+8, model)

	inst := b.alloc(ppc.StageModelInstanceSize)
	b.u32(inst, ptrAs+ppc.StageModelPtrASize)
	ptrB := b.alloc(ppc.StageModelPtrBSize)
	b.u32(ptrB, ptrAs+ppc.StageModelPtrASize)

	b.list(fhStageModelAs, 2, ptrAs)
	b.list(fhStageModelInstances, 1, inst)
	b.list(fhStageModelBs, 1, ptrB)

	// The same goals are listed by the file header and the collision header.
	goals := b.alloc(3 * ppc.GoalSize)
	b.list(fhGoals, 3, goals)
	b.list(h+chGoals, 2, goals+ppc.GoalSize)

	sd, err := Load(b.bytes())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	a := sd.Arena

	if len(a.StageModelPtrAs) != 2 {
		t.Fatalf("expected 2 PtrA records, got %d", len(a.StageModelPtrAs))
	}
	instRef := a.StageModelInstances[0].StageModelA
	bRef := a.StageModelPtrBs[0].StageModelA
	if instRef != bRef {
		t.Errorf("instance and PtrB reference different PtrA: %d vs %d", instRef.Index(), bRef.Index())
	}
	if instRef != sd.Header.StageModelAs.At(1) {
		t.Errorf("instance PtrA = %d, want listed PtrA 1", instRef.Index())
	}
	if len(a.StageModels) != 1 || len(a.Names) != 1 {
		t.Errorf("expected 1 stage model and 1 name, got %d and %d", len(a.StageModels), len(a.Names))
	}
	if m := sd.StageModelOf(instRef); m == nil {
		t.Error("StageModelOf returned nil")
	} else if n, _ := sd.ModelName(m.ModelName); n != "GATE" {
		t.Errorf("model name = %q, want GATE", n)
	}

	if len(a.Goals) != 3 {
		t.Errorf("expected 3 goals in arena, got %d", len(a.Goals))
	}
	hGoals := sd.CollisionHeaders()[0].Goals
	if hGoals.Start != sd.Header.Goals.Start+1 || hGoals.Len() != 2 {
		t.Errorf("header goals span = %+v, file goals span = %+v", hGoals, sd.Header.Goals)
	}
}

func TestLoad_Animation(t *testing.T) {
	b, h := minimalStage()

	keys := b.alloc(3 * ppc.AnimKeyframeSize)
	for i := 0; i < 3; i++ {
		off := keys + uint32(i*ppc.AnimKeyframeSize)
		b.u32(off, 1)
		b.f32(off+4, float32(i))
		b.f32(off+8, float32(10*i))
	}
	anim := b.alloc(ppc.AnimHeaderSize)
	b.list(anim+8*ppc.TrackRotY, 3, keys)
	b.list(anim+8*ppc.TrackPosX, 2, keys+ppc.AnimKeyframeSize)
	b.u32(h+chAnimHeader, anim)

	fogAnim := b.alloc(ppc.FogAnimHeaderSize)
	b.list(fogAnim+8*ppc.FogTrackRed, 1, keys)
	b.u32(fhFogAnimHeader, fogAnim)

	sd, err := Load(b.bytes())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	a := sd.Arena
	if len(a.AnimKeyframes) != 3 {
		t.Fatalf("overlapping tracks should share keyframes, got %d", len(a.AnimKeyframes))
	}

	ah := sd.CollisionHeaders()[0].AnimHeader.Get(a.AnimHeaders)
	if ah == nil {
		t.Fatal("anim header missing")
	}
	rotY := ah.Tracks[ppc.TrackRotY].Of(a.AnimKeyframes)
	posX := ah.Tracks[ppc.TrackPosX].Of(a.AnimKeyframes)
	if len(rotY) != 3 || len(posX) != 2 {
		t.Fatalf("track lengths = %d, %d", len(rotY), len(posX))
	}
	if posX[0].Value != 10 || &posX[0] != &rotY[1] {
		t.Error("pos X track should start at the second rot Y keyframe")
	}
	if ah.Tracks[ppc.TrackRotX].Len() != 0 {
		t.Error("rot X track should be empty")
	}

	fa := sd.Header.FogAnimHeader.Get(a.FogAnimHeaders)
	if fa == nil || fa.Tracks[ppc.FogTrackRed].Of(a.AnimKeyframes)[0].Value != 0 {
		t.Errorf("fog anim = %+v", fa)
	}
}

func TestLoad_BackgroundModels(t *testing.T) {
	b, _ := minimalStage()

	name := b.alloc(12)
	copy(b.buf[name:], "BG_CLOUD\x00")

	bgAnim := b.alloc(ppc.BgAnimHeaderSize)
	b.f32(bgAnim+4, 60)
	bgAnim2 := b.alloc(ppc.BgAnim2HeaderSize)
	b.f32(bgAnim2+4, 30)
	keys := b.alloc(ppc.AnimKeyframeSize)
	b.list(bgAnim2+8+8*ppc.Bg2TrackUnk11, 1, keys)

	scroll := b.alloc(ppc.TextureScrollSize)
	b.f32(scroll, 0.5)
	fx1 := b.alloc(2 * ppc.Effect1Size)
	b.buf[fx1] = 0x11
	effect := b.alloc(ppc.EffectHeaderSize)
	b.list(effect, 2, fx1)
	b.u32(effect+0x10, scroll)

	models := b.alloc(2 * ppc.BackgroundModelSize)
	b.u32(models+4, name)
	b.u32(models+0x2C, bgAnim)
	b.u32(models+0x30, bgAnim2)
	b.u32(models+0x34, effect)
	b.u32(models+ppc.BackgroundModelSize+4, name)
	b.list(fhBackgroundModels, 2, models)

	fg := b.alloc(ppc.ForegroundModelSize)
	b.u32(fg+4, name)
	b.u32(fg+0x30, bgAnim2)
	b.u32(fg+0x34, 0xDEADBEEF) // never followed
	b.list(fhForegroundModels, 1, fg)

	sd, err := Load(b.bytes())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	a := sd.Arena

	bgs := sd.BackgroundModels()
	if len(bgs) != 2 {
		t.Fatalf("expected 2 background models, got %d", len(bgs))
	}
	if bgs[0].ModelName != bgs[1].ModelName || len(a.Names) != 1 {
		t.Error("models sharing a name offset should share the name")
	}
	if got := sd.DisplayName(bgs[0].ModelName); got != "BG_CLOUD" {
		t.Errorf("DisplayName = %q", got)
	}
	if bg := bgs[0].BgAnimHeader.Get(a.BgAnimHeaders); bg == nil || bg.LoopPointSeconds != 60 {
		t.Errorf("bg anim = %+v", bg)
	}
	if !bgs[1].BgAnimHeader.IsNil() || !bgs[1].EffectHeader.IsNil() {
		t.Error("second model should have no animation or effects")
	}

	eh := bgs[0].EffectHeader.Get(a.EffectHeaders)
	if eh == nil || eh.Effect1.Len() != 2 || eh.Effect2.Len() != 0 {
		t.Fatalf("effect header = %+v", eh)
	}
	if eh.Effect1.Of(a.Effect1s)[0][0] != 0x11 {
		t.Error("effect1 bytes not preserved")
	}
	if ts := eh.TextureScroll.Get(a.TextureScrolls); ts == nil || ts.Speed.X != 0.5 {
		t.Errorf("texture scroll = %+v", ts)
	}

	fgm := sd.Header.ForegroundModels.Of(a.ForegroundModels)[0]
	if fgm.BgAnim2Header != bgs[0].BgAnim2Header {
		t.Error("foreground and background models should share the anim2 header")
	}
	if fgm.Unk0x34 != [4]byte{0xDE, 0xAD, 0xBE, 0xEF} {
		t.Errorf("Unk0x34 = % x", fgm.Unk0x34)
	}
	bg2 := fgm.BgAnim2Header.Get(a.BgAnim2Headers)
	if bg2.Tracks[ppc.Bg2TrackUnk11].Len() != 1 {
		t.Errorf("unk11 track = %+v", bg2.Tracks[ppc.Bg2TrackUnk11])
	}
}

func TestLoad_UnterminatedModelName(t *testing.T) {
	b, _ := minimalStage()
	models := b.alloc(ppc.ReflectiveStageModelSize)
	name := uint32(len(b.bytes()))
	b.buf = append(b.buf, 'A', 'B', 'C')
	b.u32(models, name)
	b.list(0x70, 1, models)

	if _, err := Load(b.bytes()); !errors.Is(err, ErrTruncated) {
		t.Errorf("expected ErrTruncated, got %v", err)
	}
}

func TestLoad_GridErrors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(b *testBlob, h uint32)
		want  error
	}{
		{
			name: "zero width",
			setup: func(b *testBlob, h uint32) {
				b.u32(h+chGridStepCount, 0)
			},
			want: ErrInvalidGridDimensions,
		},
		{
			name: "negative height",
			setup: func(b *testBlob, h uint32) {
				b.u32(h+chGridStepCount+4, 0xFFFFFFFF)
			},
			want: ErrInvalidGridDimensions,
		},
		{
			name: "overflowing cell count",
			setup: func(b *testBlob, h uint32) {
				b.u32(h+chGridStepCount, 0x7FFFFFFF)
				b.u32(h+chGridStepCount+4, 0x7FFFFFFF)
			},
			want: ErrInvalidGridDimensions,
		},
		{
			name: "cell pointers past end",
			setup: func(b *testBlob, h uint32) {
				b.u32(h+chGridStepCount, 1000)
			},
			want: ErrTruncated,
		},
		{
			name: "cell list without terminator",
			setup: func(b *testBlob, h uint32) {
				cell := uint32(len(b.bytes()))
				b.buf = append(b.buf, 0x00, 0x00)
				grid := b.alloc(4)
				b.u32(grid, cell)
				b.u32(h+chGrid, grid)
			},
			want: ErrTruncated,
		},
		{
			name: "no referenced triangle",
			setup: func(b *testBlob, h uint32) {
				grid := b.alloc(4)
				b.u32(h+chGrid, grid)
			},
			want: ErrDegenerateTriangleTable,
		},
		{
			name: "index without triangle table",
			setup: func(b *testBlob, h uint32) {
				b.u32(h+chTriangles, 0)
			},
			want: ErrIndexOutOfRange,
		},
		{
			name: "triangle table past end",
			setup: func(b *testBlob, h uint32) {
				b.u32(h+chTriangles, uint32(len(b.bytes()))-ppc.CollisionTriSize/2)
			},
			want: ErrTruncated,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b, h := minimalStage()
			tc.setup(b, h)
			_, err := Load(b.bytes())
			if !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestLoad_DegenerateStage(t *testing.T) {
	// A collision header with neither grid nor triangles is fine on its
	// own, but a stage whose headers reference no triangle at all is not.
	b := newTestBlob()
	b.collisionHeaders(2)
	if _, err := Load(b.bytes()); !errors.Is(err, ErrDegenerateTriangleTable) {
		t.Errorf("expected ErrDegenerateTriangleTable, got %v", err)
	}

	b = newTestBlob()
	hs := b.collisionHeaders(2)
	b.grid(hs, 1, 1, [][]uint16{{0}}, 1)
	sd, err := Load(b.bytes())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if sd.CollisionHeaders()[1].Triangles.Len() != 0 {
		t.Error("second header should have no triangles")
	}
	if sd.TriangleCount() != 1 {
		t.Errorf("TriangleCount = %d, want 1", sd.TriangleCount())
	}
}

func TestLoad_StageWithoutCollisionHeaders(t *testing.T) {
	b := newTestBlob()
	sd, err := Load(b.bytes())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(sd.CollisionHeaders()) != 0 {
		t.Errorf("expected no collision headers")
	}
}

func TestLoad_DoesNotRetainInput(t *testing.T) {
	b, _ := minimalStage()
	data := b.bytes()

	sd, err := Load(data)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	for i := range data {
		data[i] = 0xFF
	}
	if sd.Arena.CollisionTris[0].Point1.X != 0 {
		t.Error("converted triangle changed after input was overwritten")
	}
}

func TestLoad_Concurrent(t *testing.T) {
	b := newTestBlob()
	h := b.collisionHeaders(1)
	b.grid(h, 2, 2, [][]uint16{{0, 3}, nil, {7}, {3}}, 8)
	data := b.bytes()

	want, err := Load(data)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := Load(data)
			if err != nil {
				errs <- err
				return
			}
			if !reflect.DeepEqual(got, want) {
				errs <- errors.New("concurrent load produced a different stagedef")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestLoader_MaxSize(t *testing.T) {
	b, _ := minimalStage()
	l := NewLoader(WithLogger(zap.NewNop()), WithMaxSize(ppc.FileHeaderSize))

	if _, err := l.Load(b.bytes()); !errors.Is(err, ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}
	if _, err := NewLoader(WithMaxSize(0)).Load(b.bytes()); err != nil {
		t.Errorf("unlimited loader failed: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	b, _ := minimalStage()
	path := filepath.Join(t.TempDir(), "STAGE001.bin")
	if err := os.WriteFile(path, b.bytes(), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	sd, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if len(sd.Arena.CollisionTris) != 1 {
		t.Errorf("expected 1 triangle, got %d", len(sd.Arena.CollisionTris))
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.bin")); err == nil {
		t.Error("expected error for missing file")
	}
}
