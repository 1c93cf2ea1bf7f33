package stagedef

import (
	"fmt"
	"math"
	"sort"

	"github.com/Faultbox/stagedef/pkg/endian"
	"github.com/Faultbox/stagedef/pkg/stagedef/ppc"
)

// Encode serializes a Stagedef back into the big-endian console format. The
// file header is written at offset 0, followed by each pool as one 4-byte
// aligned block; cell lists sharing a tail are written once and
// re-terminated, and names are NUL-terminated.
// Loading the result yields a Stagedef equal to sd.
func Encode(sd *Stagedef) ([]byte, error) {
	e := &encoder{a: sd.Arena}
	if err := e.layout(); err != nil {
		return nil, err
	}
	e.buf = make([]byte, e.size)

	var h ppc.FileHeader
	e.fileHeader(&sd.Header, &h)
	if e.err != nil {
		return nil, e.err
	}
	h.Encode(e.buf)

	if err := e.pools(); err != nil {
		return nil, err
	}
	return e.buf, nil
}

type encoder struct {
	a    *Arena
	buf  []byte
	size uint32
	err  error

	base     [kindCount]uint32
	counts   [kindCount]int
	cellRuns []cellRun
	runOf    map[uint64]int // span end -> index into cellRuns
	names    []uint32
}

// cellRun is the TriIndices range [lo, end) written as one terminated list.
// Cell spans ending at end point into it.
type cellRun struct {
	lo, end uint32
	off     uint32
}

func align4(n uint64) uint64 { return (n + 3) &^ 3 }

// layout assigns a blob offset to every pool, cell list and name.
func (e *encoder) layout() error {
	e.counts = e.a.Sizes().Counts
	pos := uint64(ppc.FileHeaderSize)

	for k := kind(0); k < kindCount; k++ {
		pos = align4(pos)
		e.base[k] = uint32(pos)
		pos += uint64(e.counts[k]) * uint64(k.stride())
		if pos > math.MaxUint32 {
			return fmt.Errorf("encoding %s: stagedef exceeds 4 GiB", k)
		}
	}

	e.runOf = make(map[uint64]int)
	for _, c := range e.a.GridCells {
		if c.Count == 0 {
			continue
		}
		if c.end() > uint64(len(e.a.TriIndices)) {
			return indexOutOfRange("grid_cells", uint32(c.end()), uint32(len(e.a.TriIndices)))
		}
		i, ok := e.runOf[c.end()]
		if !ok {
			e.runOf[c.end()] = len(e.cellRuns)
			e.cellRuns = append(e.cellRuns, cellRun{lo: c.Start, end: uint32(c.end())})
			continue
		}
		e.cellRuns[i].lo = min(e.cellRuns[i].lo, c.Start)
	}
	sort.Slice(e.cellRuns, func(i, j int) bool { return e.cellRuns[i].lo < e.cellRuns[j].lo })

	pos = align4(pos)
	for i := range e.cellRuns {
		r := &e.cellRuns[i]
		e.runOf[uint64(r.end)] = i
		r.off = uint32(pos)
		pos += uint64(r.end-r.lo+1) * ppc.TriIndexSize
	}

	e.names = make([]uint32, len(e.a.Names))
	for i, n := range e.a.Names {
		e.names[i] = uint32(pos)
		pos += uint64(len(n)) + 1
	}

	pos = align4(pos)
	if pos > math.MaxUint32 {
		return fmt.Errorf("encoding: stagedef exceeds 4 GiB")
	}
	e.size = uint32(pos)
	return nil
}

func encodeRef[T any](e *encoder, k kind, r Ref[T]) ppc.Offset {
	if r.IsNil() {
		return 0
	}
	if r.Index() >= e.counts[k] {
		if e.err == nil {
			e.err = indexOutOfRange(k.String(), uint32(r.Index()), uint32(e.counts[k]))
		}
		return 0
	}
	return ppc.Offset(e.base[k] + uint32(r.Index())*k.stride())
}

func encodeSpan[T any](e *encoder, k kind, s Span[T]) ppc.List {
	if s.Count == 0 {
		return ppc.List{}
	}
	if s.end() > uint64(e.counts[k]) {
		if e.err == nil {
			e.err = indexOutOfRange(k.String(), uint32(s.end()), uint32(e.counts[k]))
		}
		return ppc.List{}
	}
	return ppc.List{Count: s.Count, Offset: ppc.Offset(e.base[k] + s.Start*k.stride())}
}

func encodeSpans[T any](e *encoder, k kind, src []Span[T], dst []ppc.List) {
	for i, s := range src {
		dst[i] = encodeSpan(e, k, s)
	}
}

func (e *encoder) name(r Ref[string]) ppc.Offset {
	if r.IsNil() {
		return 0
	}
	if r.Index() >= len(e.names) {
		if e.err == nil {
			e.err = indexOutOfRange("names", uint32(r.Index()), uint32(len(e.names)))
		}
		return 0
	}
	return ppc.Offset(e.names[r.Index()])
}

// slot returns the destination bytes of pool element i.
func (e *encoder) slot(k kind, i int) []byte {
	off := e.base[k] + uint32(i)*k.stride()
	return e.buf[off : off+k.stride()]
}

func (e *encoder) fileHeader(n *FileHeader, h *ppc.FileHeader) {
	*h = ppc.FileHeader{
		MagicA:                n.MagicA,
		MagicB:                n.MagicB,
		CollisionHeaders:      encodeSpan(e, kindCollisionHeader, n.CollisionHeaders),
		Start:                 encodeRef(e, kindStart, n.Start),
		Fallout:               encodeRef(e, kindFallout, n.Fallout),
		Goals:                 encodeSpan(e, kindGoal, n.Goals),
		Bumpers:               encodeSpan(e, kindBumper, n.Bumpers),
		Jamabars:              encodeSpan(e, kindJamabar, n.Jamabars),
		Bananas:               encodeSpan(e, kindBanana, n.Bananas),
		ConeCollisions:        encodeSpan(e, kindConeCollision, n.ConeCollisions),
		SphereCollisions:      encodeSpan(e, kindSphereCollision, n.SphereCollisions),
		CylinderCollisions:    encodeSpan(e, kindCylinderCollision, n.CylinderCollisions),
		FalloutVolumes:        encodeSpan(e, kindFalloutVolume, n.FalloutVolumes),
		BackgroundModels:      encodeSpan(e, kindBackgroundModel, n.BackgroundModels),
		ForegroundModels:      encodeSpan(e, kindForegroundModel, n.ForegroundModels),
		Unk0x68:               n.Unk0x68,
		ReflectiveStageModels: encodeSpan(e, kindReflectiveStageModel, n.ReflectiveStageModels),
		Unk0x78:               n.Unk0x78,
		StageModelInstances:   encodeSpan(e, kindStageModelInstance, n.StageModelInstances),
		StageModelAs:          encodeSpan(e, kindStageModelPtrA, n.StageModelAs),
		StageModelBs:          encodeSpan(e, kindStageModelPtrB, n.StageModelBs),
		Unk0x9C:               n.Unk0x9C,
		Buttons:               encodeSpan(e, kindButton, n.Buttons),
		FogAnimHeader:         encodeRef(e, kindFogAnimHeader, n.FogAnimHeader),
		Wormholes:             encodeSpan(e, kindWormhole, n.Wormholes),
		Fog:                   encodeRef(e, kindFog, n.Fog),
		Unk0xC0:               n.Unk0xC0,
		Mystery3:              encodeRef(e, kindMystery3, n.Mystery3),
		Unk0xD8:               n.Unk0xD8,
	}
}

func (e *encoder) collisionHeader(n *CollisionHeader) ppc.CollisionHeader {
	return ppc.CollisionHeader{
		Origin:                n.Origin,
		InitialRotation:       n.InitialRotation,
		AnimLoopTypeAndSeesaw: n.AnimLoopTypeAndSeesaw,
		AnimHeader:            encodeRef(e, kindAnimHeader, n.AnimHeader),
		ConveyorSpeed:         n.ConveyorSpeed,
		Triangles:             encodeSpan(e, kindCollisionTri, n.Triangles).Offset,
		Grid:                  encodeSpan(e, kindGridCell, n.Grid.Cells).Offset,
		GridStart:             n.Grid.Start,
		GridStep:              n.Grid.Step,
		GridStepCount:         n.Grid.StepCount,
		Goals:                 encodeSpan(e, kindGoal, n.Goals),
		Bumpers:               encodeSpan(e, kindBumper, n.Bumpers),
		Jamabars:              encodeSpan(e, kindJamabar, n.Jamabars),
		Bananas:               encodeSpan(e, kindBanana, n.Bananas),
		ConeCollisions:        encodeSpan(e, kindConeCollision, n.ConeCollisions),
		SphereCollisions:      encodeSpan(e, kindSphereCollision, n.SphereCollisions),
		CylinderCollisions:    encodeSpan(e, kindCylinderCollision, n.CylinderCollisions),
		FalloutVolumes:        encodeSpan(e, kindFalloutVolume, n.FalloutVolumes),
		ReflectiveStageModels: encodeSpan(e, kindReflectiveStageModel, n.ReflectiveStageModels),
		StageModelInstances:   encodeSpan(e, kindStageModelInstance, n.StageModelInstances),
		StageModelBs:          encodeSpan(e, kindStageModelPtrB, n.StageModelBs),
		Unk0x9C:               n.Unk0x9C,
		AnimGroupID:           n.AnimGroupID,
		Padding:               n.Padding,
		Buttons:               encodeSpan(e, kindButton, n.Buttons),
		Unk0xB0:               n.Unk0xB0,
		Mystery5:              encodeRef(e, kindMystery5, n.Mystery5),
		SeesawSensitivity:     n.SeesawSensitivity,
		SeesawFriction:        n.SeesawFriction,
		SeesawSpring:          n.SeesawSpring,
		Wormholes:             encodeSpan(e, kindWormhole, n.Wormholes),
		InitialPlaybackState:  n.InitialPlaybackState,
		Unk0xD0:               n.Unk0xD0,
		AnimLoopPointSeconds:  n.AnimLoopPointSeconds,
		TextureScroll:         encodeRef(e, kindTextureScroll, n.TextureScroll),
		Unk0xDC:               n.Unk0xDC,
	}
}

// pools writes every arena pool, cell list and name.
func (e *encoder) pools() error {
	a := e.a

	for i := range a.CollisionHeaders {
		h := e.collisionHeader(&a.CollisionHeaders[i])
		h.Encode(e.slot(kindCollisionHeader, i))
	}
	for i := range a.CollisionTris {
		(*ppc.CollisionTri)(&a.CollisionTris[i]).Encode(e.slot(kindCollisionTri, i))
	}
	for i, c := range a.GridCells {
		var p uint32
		if c.Count > 0 {
			r := e.cellRuns[e.runOf[c.end()]]
			p = r.off + (c.Start-r.lo)*ppc.TriIndexSize
		}
		endian.PutU32(e.slot(kindGridCell, i), p)
	}
	for i := range a.AnimHeaders {
		var h ppc.AnimHeader
		encodeSpans(e, kindAnimKeyframe, a.AnimHeaders[i].Tracks[:], h.Tracks[:])
		h.Unk0x30 = a.AnimHeaders[i].Unk0x30
		h.Encode(e.slot(kindAnimHeader, i))
	}
	for i := range a.AnimKeyframes {
		(*ppc.AnimKeyframe)(&a.AnimKeyframes[i]).Encode(e.slot(kindAnimKeyframe, i))
	}
	for i := range a.BgAnimHeaders {
		n := &a.BgAnimHeaders[i]
		h := ppc.BgAnimHeader{Unk0x0: n.Unk0x0, LoopPointSeconds: n.LoopPointSeconds, Unk0x8: n.Unk0x8, Unk0x40: n.Unk0x40}
		encodeSpans(e, kindAnimKeyframe, n.Tracks[:], h.Tracks[:])
		h.Encode(e.slot(kindBgAnimHeader, i))
	}
	for i := range a.BgAnim2Headers {
		n := &a.BgAnim2Headers[i]
		h := ppc.BgAnim2Header{Unk0x0: n.Unk0x0, LoopPointSeconds: n.LoopPointSeconds}
		encodeSpans(e, kindAnimKeyframe, n.Tracks[:], h.Tracks[:])
		h.Encode(e.slot(kindBgAnim2Header, i))
	}
	for i := range a.FogAnimHeaders {
		var h ppc.FogAnimHeader
		encodeSpans(e, kindAnimKeyframe, a.FogAnimHeaders[i].Tracks[:], h.Tracks[:])
		h.Encode(e.slot(kindFogAnimHeader, i))
	}
	for i := range a.EffectHeaders {
		n := &a.EffectHeaders[i]
		h := ppc.EffectHeader{
			Effect1:       encodeSpan(e, kindEffect1, n.Effect1),
			Effect2:       encodeSpan(e, kindEffect2, n.Effect2),
			TextureScroll: encodeRef(e, kindTextureScroll, n.TextureScroll),
			Unk0x14:       n.Unk0x14,
		}
		h.Encode(e.slot(kindEffectHeader, i))
	}
	for i := range a.Effect1s {
		(*ppc.Effect1)(&a.Effect1s[i]).Encode(e.slot(kindEffect1, i))
	}
	for i := range a.Effect2s {
		(*ppc.Effect2)(&a.Effect2s[i]).Encode(e.slot(kindEffect2, i))
	}
	for i := range a.TextureScrolls {
		(*ppc.TextureScroll)(&a.TextureScrolls[i]).Encode(e.slot(kindTextureScroll, i))
	}
	for i := range a.Goals {
		(*ppc.Goal)(&a.Goals[i]).Encode(e.slot(kindGoal, i))
	}
	for i := range a.Bumpers {
		(*ppc.Bumper)(&a.Bumpers[i]).Encode(e.slot(kindBumper, i))
	}
	for i := range a.Jamabars {
		(*ppc.Jamabar)(&a.Jamabars[i]).Encode(e.slot(kindJamabar, i))
	}
	for i := range a.Bananas {
		(*ppc.Banana)(&a.Bananas[i]).Encode(e.slot(kindBanana, i))
	}
	for i := range a.ConeCollisions {
		(*ppc.ConeCollision)(&a.ConeCollisions[i]).Encode(e.slot(kindConeCollision, i))
	}
	for i := range a.SphereCollisions {
		(*ppc.SphereCollision)(&a.SphereCollisions[i]).Encode(e.slot(kindSphereCollision, i))
	}
	for i := range a.CylinderCollisions {
		(*ppc.CylinderCollision)(&a.CylinderCollisions[i]).Encode(e.slot(kindCylinderCollision, i))
	}
	for i := range a.FalloutVolumes {
		(*ppc.FalloutVolume)(&a.FalloutVolumes[i]).Encode(e.slot(kindFalloutVolume, i))
	}
	for i := range a.Buttons {
		(*ppc.Button)(&a.Buttons[i]).Encode(e.slot(kindButton, i))
	}
	for i := range a.Wormholes {
		n := &a.Wormholes[i]
		w := ppc.Wormhole{
			Unk0x0:      n.Unk0x0,
			Position:    n.Position,
			Rotation:    n.Rotation,
			Padding:     n.Padding,
			Destination: encodeRef(e, kindWormhole, n.Destination),
		}
		w.Encode(e.slot(kindWormhole, i))
	}
	for i := range a.Starts {
		(*ppc.Start)(&a.Starts[i]).Encode(e.slot(kindStart, i))
	}
	for i := range a.Fallouts {
		(*ppc.Fallout)(&a.Fallouts[i]).Encode(e.slot(kindFallout, i))
	}
	for i := range a.Fogs {
		(*ppc.Fog)(&a.Fogs[i]).Encode(e.slot(kindFog, i))
	}
	for i := range a.Mystery3s {
		(*ppc.Mystery3)(&a.Mystery3s[i]).Encode(e.slot(kindMystery3, i))
	}
	for i := range a.Mystery5s {
		(*ppc.Mystery5)(&a.Mystery5s[i]).Encode(e.slot(kindMystery5, i))
	}
	for i := range a.BackgroundModels {
		n := &a.BackgroundModels[i]
		m := ppc.BackgroundModel{
			Unk0x0:        n.Unk0x0,
			ModelName:     e.name(n.ModelName),
			Unk0x8:        n.Unk0x8,
			Position:      n.Position,
			Rotation:      n.Rotation,
			Padding:       n.Padding,
			Scale:         n.Scale,
			BgAnimHeader:  encodeRef(e, kindBgAnimHeader, n.BgAnimHeader),
			BgAnim2Header: encodeRef(e, kindBgAnim2Header, n.BgAnim2Header),
			EffectHeader:  encodeRef(e, kindEffectHeader, n.EffectHeader),
		}
		m.Encode(e.slot(kindBackgroundModel, i))
	}
	for i := range a.ForegroundModels {
		n := &a.ForegroundModels[i]
		m := ppc.ForegroundModel{
			Unk0x0:        n.Unk0x0,
			ModelName:     e.name(n.ModelName),
			Unk0x8:        n.Unk0x8,
			Position:      n.Position,
			Rotation:      n.Rotation,
			Padding:       n.Padding,
			Scale:         n.Scale,
			Unk0x2C:       n.Unk0x2C,
			BgAnim2Header: encodeRef(e, kindBgAnim2Header, n.BgAnim2Header),
			Unk0x34:       n.Unk0x34,
		}
		m.Encode(e.slot(kindForegroundModel, i))
	}
	for i := range a.ReflectiveStageModels {
		n := &a.ReflectiveStageModels[i]
		m := ppc.ReflectiveStageModel{ModelName: e.name(n.ModelName), Unk0x4: n.Unk0x4}
		m.Encode(e.slot(kindReflectiveStageModel, i))
	}
	for i := range a.StageModelInstances {
		n := &a.StageModelInstances[i]
		m := ppc.StageModelInstance{
			StageModelA: encodeRef(e, kindStageModelPtrA, n.StageModelA),
			Position:    n.Position,
			Rotation:    n.Rotation,
			Padding:     n.Padding,
			Scale:       n.Scale,
		}
		m.Encode(e.slot(kindStageModelInstance, i))
	}
	for i := range a.StageModels {
		n := &a.StageModels[i]
		m := ppc.StageModel{Unk0x0: n.Unk0x0, ModelName: e.name(n.ModelName), Unk0x8: n.Unk0x8}
		m.Encode(e.slot(kindStageModel, i))
	}
	for i := range a.StageModelPtrAs {
		n := &a.StageModelPtrAs[i]
		p := ppc.StageModelPtrA{Unk0x0: n.Unk0x0, StageModel: encodeRef(e, kindStageModel, n.StageModel)}
		p.Encode(e.slot(kindStageModelPtrA, i))
	}
	for i := range a.StageModelPtrBs {
		p := ppc.StageModelPtrB{StageModelA: encodeRef(e, kindStageModelPtrA, a.StageModelPtrBs[i].StageModelA)}
		p.Encode(e.slot(kindStageModelPtrB, i))
	}

	for _, r := range e.cellRuns {
		for i, idx := range a.TriIndices[r.lo:r.end] {
			endian.PutU16(e.buf[r.off+uint32(i)*ppc.TriIndexSize:], idx)
		}
		endian.PutU16(e.buf[r.off+(r.end-r.lo)*ppc.TriIndexSize:], ppc.TriIndexListEnd)
	}
	for i, n := range a.Names {
		copy(e.buf[e.names[i]:], n)
	}

	return e.err
}
