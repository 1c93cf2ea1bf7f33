package stagedef

import (
	"fmt"

	"github.com/Faultbox/stagedef/pkg/endian"
	"github.com/Faultbox/stagedef/pkg/stagedef/ppc"
)

// builder is the second pass: it allocates every pool once with the sizes
// found by the sizer and converts each planned record exactly once.
type builder struct {
	res  *resolver
	plan *plan
}

// conv carries the first relocation error while one record is converted.
type conv struct {
	b     *builder
	field string
	err   error
}

func (b *builder) conv(k kind, off uint32) *conv {
	return &conv{b: b, field: fmt.Sprintf("%s@0x%x", k, off)}
}

// refOf relocates a nullable offset into a pool reference.
func refOf[T any](c *conv, k kind, name string, off ppc.Offset) Ref[T] {
	if c.err != nil || off.IsNull() {
		return Ref[T]{}
	}
	i, ok := c.b.plan.tables[k].lookup(uint32(off))
	if !ok {
		c.err = &DecodeError{Kind: ErrIndexOutOfRange, Field: c.field + "." + name, Offset: uint32(off)}
		return Ref[T]{}
	}
	return RefTo[T](int(i))
}

// spanOf relocates a (count, offset) list into a pool span.
func spanOf[T any](c *conv, k kind, name string, l ppc.List) Span[T] {
	if c.err != nil || l.Offset.IsNull() || l.Count == 0 {
		return Span[T]{}
	}
	t := c.b.plan.tables[k]
	i, ok := t.lookup(uint32(l.Offset))
	if !ok {
		c.err = &DecodeError{Kind: ErrIndexOutOfRange, Field: c.field + "." + name, Offset: uint32(l.Offset)}
		return Span[T]{}
	}
	if uint64(i)+uint64(l.Count) > uint64(t.total) {
		c.err = indexOutOfRange(c.field+"."+name, i+l.Count, t.total)
		return Span[T]{}
	}
	return SpanOf[T](int(i), int(l.Count))
}

func spansOf[T any](c *conv, k kind, name string, src []ppc.List, dst []Span[T]) {
	for i, l := range src {
		dst[i] = spanOf[T](c, k, fmt.Sprintf("%s[%d]", name, i), l)
	}
}

// nameOf relocates a model name offset into the Names pool.
func nameOf(c *conv, name string, off ppc.Offset) Ref[string] {
	if c.err != nil || off.IsNull() {
		return Ref[string]{}
	}
	it, ok := c.b.plan.names.get(uint32(off))
	if !ok {
		c.err = &DecodeError{Kind: ErrIndexOutOfRange, Field: c.field + "." + name, Offset: uint32(off)}
		return Ref[string]{}
	}
	return RefTo[string](int(it.index))
}

// fill converts every planned record of kind k into pool.
func fill[T any](b *builder, k kind, pool []T, decode func(off uint32, raw []byte, dst *T) error) error {
	stride := k.stride()
	return b.plan.tables[k].each(func(off, i uint32) error {
		if int(i) >= len(pool) {
			return indexOutOfRange(k.String(), i, uint32(len(pool)))
		}
		return decode(off, b.res.bytes(off, stride), &pool[i])
	})
}

func (b *builder) build(raw *ppc.FileHeader) (*Stagedef, error) {
	n := func(k kind) uint32 { return b.plan.tables[k].total }

	a := &Arena{
		CollisionHeaders:      make([]CollisionHeader, n(kindCollisionHeader)),
		CollisionTris:         make([]CollisionTri, n(kindCollisionTri)),
		GridCells:             make([]Span[uint16], n(kindGridCell)),
		TriIndices:            make([]uint16, b.plan.cells.total),
		AnimHeaders:           make([]AnimHeader, n(kindAnimHeader)),
		AnimKeyframes:         make([]AnimKeyframe, n(kindAnimKeyframe)),
		BgAnimHeaders:         make([]BgAnimHeader, n(kindBgAnimHeader)),
		BgAnim2Headers:        make([]BgAnim2Header, n(kindBgAnim2Header)),
		FogAnimHeaders:        make([]FogAnimHeader, n(kindFogAnimHeader)),
		EffectHeaders:         make([]EffectHeader, n(kindEffectHeader)),
		Effect1s:              make([]Effect1, n(kindEffect1)),
		Effect2s:              make([]Effect2, n(kindEffect2)),
		TextureScrolls:        make([]TextureScroll, n(kindTextureScroll)),
		Goals:                 make([]Goal, n(kindGoal)),
		Bumpers:               make([]Bumper, n(kindBumper)),
		Jamabars:              make([]Jamabar, n(kindJamabar)),
		Bananas:               make([]Banana, n(kindBanana)),
		ConeCollisions:        make([]ConeCollision, n(kindConeCollision)),
		SphereCollisions:      make([]SphereCollision, n(kindSphereCollision)),
		CylinderCollisions:    make([]CylinderCollision, n(kindCylinderCollision)),
		FalloutVolumes:        make([]FalloutVolume, n(kindFalloutVolume)),
		Buttons:               make([]Button, n(kindButton)),
		Wormholes:             make([]Wormhole, n(kindWormhole)),
		Starts:                make([]Start, n(kindStart)),
		Fallouts:              make([]Fallout, n(kindFallout)),
		Fogs:                  make([]Fog, n(kindFog)),
		Mystery3s:             make([]Mystery3, n(kindMystery3)),
		Mystery5s:             make([]Mystery5, n(kindMystery5)),
		BackgroundModels:      make([]BackgroundModel, n(kindBackgroundModel)),
		ForegroundModels:      make([]ForegroundModel, n(kindForegroundModel)),
		ReflectiveStageModels: make([]ReflectiveStageModel, n(kindReflectiveStageModel)),
		StageModelInstances:   make([]StageModelInstance, n(kindStageModelInstance)),
		StageModels:           make([]StageModel, n(kindStageModel)),
		StageModelPtrAs:       make([]StageModelPtrA, n(kindStageModelPtrA)),
		StageModelPtrBs:       make([]StageModelPtrB, n(kindStageModelPtrB)),
		Names:                 make([]string, len(b.plan.names.order)),
	}

	steps := []func() error{
		func() error { return b.flat(a) },
		func() error { return fill(b, kindCollisionHeader, a.CollisionHeaders, b.collisionHeader) },
		func() error { return fill(b, kindGridCell, a.GridCells, b.gridCell) },
		func() error { return b.triIndices(a.TriIndices) },
		func() error { return b.names(a.Names) },
		func() error { return fill(b, kindAnimHeader, a.AnimHeaders, b.animHeader) },
		func() error { return fill(b, kindBgAnimHeader, a.BgAnimHeaders, b.bgAnimHeader) },
		func() error { return fill(b, kindBgAnim2Header, a.BgAnim2Headers, b.bgAnim2Header) },
		func() error { return fill(b, kindFogAnimHeader, a.FogAnimHeaders, b.fogAnimHeader) },
		func() error { return fill(b, kindEffectHeader, a.EffectHeaders, b.effectHeader) },
		func() error { return fill(b, kindWormhole, a.Wormholes, b.wormhole) },
		func() error { return fill(b, kindBackgroundModel, a.BackgroundModels, b.backgroundModel) },
		func() error { return fill(b, kindForegroundModel, a.ForegroundModels, b.foregroundModel) },
		func() error {
			return fill(b, kindReflectiveStageModel, a.ReflectiveStageModels, b.reflectiveStageModel)
		},
		func() error { return fill(b, kindStageModelInstance, a.StageModelInstances, b.stageModelInstance) },
		func() error { return fill(b, kindStageModel, a.StageModels, b.stageModel) },
		func() error { return fill(b, kindStageModelPtrA, a.StageModelPtrAs, b.stageModelPtrA) },
		func() error { return fill(b, kindStageModelPtrB, a.StageModelPtrBs, b.stageModelPtrB) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}

	header, err := b.fileHeader(raw)
	if err != nil {
		return nil, err
	}
	if err := checkGridIndices(a); err != nil {
		return nil, err
	}
	return &Stagedef{Header: header, Arena: a}, nil
}

// flat converts the records that hold no offsets.
func (b *builder) flat(a *Arena) error {
	steps := []func() error{
		func() error {
			return fill(b, kindCollisionTri, a.CollisionTris, func(_ uint32, raw []byte, t *CollisionTri) error {
				(*ppc.CollisionTri)(t).Decode(raw)
				return nil
			})
		},
		func() error {
			return fill(b, kindAnimKeyframe, a.AnimKeyframes, func(_ uint32, raw []byte, k *AnimKeyframe) error {
				(*ppc.AnimKeyframe)(k).Decode(raw)
				return nil
			})
		},
		func() error {
			return fill(b, kindEffect1, a.Effect1s, func(_ uint32, raw []byte, e *Effect1) error {
				(*ppc.Effect1)(e).Decode(raw)
				return nil
			})
		},
		func() error {
			return fill(b, kindEffect2, a.Effect2s, func(_ uint32, raw []byte, e *Effect2) error {
				(*ppc.Effect2)(e).Decode(raw)
				return nil
			})
		},
		func() error {
			return fill(b, kindTextureScroll, a.TextureScrolls, func(_ uint32, raw []byte, t *TextureScroll) error {
				(*ppc.TextureScroll)(t).Decode(raw)
				return nil
			})
		},
		func() error {
			return fill(b, kindGoal, a.Goals, func(_ uint32, raw []byte, g *Goal) error {
				(*ppc.Goal)(g).Decode(raw)
				return nil
			})
		},
		func() error {
			return fill(b, kindBumper, a.Bumpers, func(_ uint32, raw []byte, m *Bumper) error {
				(*ppc.Bumper)(m).Decode(raw)
				return nil
			})
		},
		func() error {
			return fill(b, kindJamabar, a.Jamabars, func(_ uint32, raw []byte, j *Jamabar) error {
				(*ppc.Jamabar)(j).Decode(raw)
				return nil
			})
		},
		func() error {
			return fill(b, kindBanana, a.Bananas, func(_ uint32, raw []byte, n *Banana) error {
				(*ppc.Banana)(n).Decode(raw)
				return nil
			})
		},
		func() error {
			return fill(b, kindConeCollision, a.ConeCollisions, func(_ uint32, raw []byte, c *ConeCollision) error {
				(*ppc.ConeCollision)(c).Decode(raw)
				return nil
			})
		},
		func() error {
			return fill(b, kindSphereCollision, a.SphereCollisions, func(_ uint32, raw []byte, s *SphereCollision) error {
				(*ppc.SphereCollision)(s).Decode(raw)
				return nil
			})
		},
		func() error {
			return fill(b, kindCylinderCollision, a.CylinderCollisions, func(_ uint32, raw []byte, c *CylinderCollision) error {
				(*ppc.CylinderCollision)(c).Decode(raw)
				return nil
			})
		},
		func() error {
			return fill(b, kindFalloutVolume, a.FalloutVolumes, func(_ uint32, raw []byte, f *FalloutVolume) error {
				(*ppc.FalloutVolume)(f).Decode(raw)
				return nil
			})
		},
		func() error {
			return fill(b, kindButton, a.Buttons, func(_ uint32, raw []byte, btn *Button) error {
				(*ppc.Button)(btn).Decode(raw)
				return nil
			})
		},
		func() error {
			return fill(b, kindStart, a.Starts, func(_ uint32, raw []byte, s *Start) error {
				(*ppc.Start)(s).Decode(raw)
				return nil
			})
		},
		func() error {
			return fill(b, kindFallout, a.Fallouts, func(_ uint32, raw []byte, f *Fallout) error {
				(*ppc.Fallout)(f).Decode(raw)
				return nil
			})
		},
		func() error {
			return fill(b, kindFog, a.Fogs, func(_ uint32, raw []byte, f *Fog) error {
				(*ppc.Fog)(f).Decode(raw)
				return nil
			})
		},
		func() error {
			return fill(b, kindMystery3, a.Mystery3s, func(_ uint32, raw []byte, m *Mystery3) error {
				(*ppc.Mystery3)(m).Decode(raw)
				return nil
			})
		},
		func() error {
			return fill(b, kindMystery5, a.Mystery5s, func(_ uint32, raw []byte, m *Mystery5) error {
				(*ppc.Mystery5)(m).Decode(raw)
				return nil
			})
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) fileHeader(h *ppc.FileHeader) (FileHeader, error) {
	c := &conv{b: b, field: "file_header"}
	out := FileHeader{
		MagicA:                h.MagicA,
		MagicB:                h.MagicB,
		CollisionHeaders:      spanOf[CollisionHeader](c, kindCollisionHeader, "collision_headers", h.CollisionHeaders),
		Start:                 refOf[Start](c, kindStart, "start", h.Start),
		Fallout:               refOf[Fallout](c, kindFallout, "fallout", h.Fallout),
		Goals:                 spanOf[Goal](c, kindGoal, "goals", h.Goals),
		Bumpers:               spanOf[Bumper](c, kindBumper, "bumpers", h.Bumpers),
		Jamabars:              spanOf[Jamabar](c, kindJamabar, "jamabars", h.Jamabars),
		Bananas:               spanOf[Banana](c, kindBanana, "bananas", h.Bananas),
		ConeCollisions:        spanOf[ConeCollision](c, kindConeCollision, "cone_collisions", h.ConeCollisions),
		SphereCollisions:      spanOf[SphereCollision](c, kindSphereCollision, "sphere_collisions", h.SphereCollisions),
		CylinderCollisions:    spanOf[CylinderCollision](c, kindCylinderCollision, "cylinder_collisions", h.CylinderCollisions),
		FalloutVolumes:        spanOf[FalloutVolume](c, kindFalloutVolume, "fallout_volumes", h.FalloutVolumes),
		BackgroundModels:      spanOf[BackgroundModel](c, kindBackgroundModel, "background_models", h.BackgroundModels),
		ForegroundModels:      spanOf[ForegroundModel](c, kindForegroundModel, "foreground_models", h.ForegroundModels),
		Unk0x68:               h.Unk0x68,
		ReflectiveStageModels: spanOf[ReflectiveStageModel](c, kindReflectiveStageModel, "reflective_stage_models", h.ReflectiveStageModels),
		Unk0x78:               h.Unk0x78,
		StageModelInstances:   spanOf[StageModelInstance](c, kindStageModelInstance, "stage_model_instances", h.StageModelInstances),
		StageModelAs:          spanOf[StageModelPtrA](c, kindStageModelPtrA, "stage_model_as", h.StageModelAs),
		StageModelBs:          spanOf[StageModelPtrB](c, kindStageModelPtrB, "stage_model_bs", h.StageModelBs),
		Unk0x9C:               h.Unk0x9C,
		Buttons:               spanOf[Button](c, kindButton, "buttons", h.Buttons),
		FogAnimHeader:         refOf[FogAnimHeader](c, kindFogAnimHeader, "fog_anim_header", h.FogAnimHeader),
		Wormholes:             spanOf[Wormhole](c, kindWormhole, "wormholes", h.Wormholes),
		Fog:                   refOf[Fog](c, kindFog, "fog", h.Fog),
		Unk0xC0:               h.Unk0xC0,
		Mystery3:              refOf[Mystery3](c, kindMystery3, "mystery3", h.Mystery3),
		Unk0xD8:               h.Unk0xD8,
	}
	return out, c.err
}

func (b *builder) collisionHeader(off uint32, raw []byte, dst *CollisionHeader) error {
	var h ppc.CollisionHeader
	h.Decode(raw)
	c := b.conv(kindCollisionHeader, off)

	var grid ppc.List
	if !h.Grid.IsNull() {
		grid = ppc.List{Count: uint32(h.GridStepCount.X) * uint32(h.GridStepCount.Y), Offset: h.Grid}
	}

	*dst = CollisionHeader{
		Origin:                h.Origin,
		InitialRotation:       h.InitialRotation,
		AnimLoopTypeAndSeesaw: h.AnimLoopTypeAndSeesaw,
		AnimHeader:            refOf[AnimHeader](c, kindAnimHeader, "anim_header", h.AnimHeader),
		ConveyorSpeed:         h.ConveyorSpeed,
		Triangles: spanOf[CollisionTri](c, kindCollisionTri, "triangles",
			ppc.List{Count: b.plan.triCount[off], Offset: h.Triangles}),
		Grid: CollisionGrid{
			Start:     h.GridStart,
			Step:      h.GridStep,
			StepCount: h.GridStepCount,
			Cells:     spanOf[Span[uint16]](c, kindGridCell, "grid", grid),
		},
		Goals:                 spanOf[Goal](c, kindGoal, "goals", h.Goals),
		Bumpers:               spanOf[Bumper](c, kindBumper, "bumpers", h.Bumpers),
		Jamabars:              spanOf[Jamabar](c, kindJamabar, "jamabars", h.Jamabars),
		Bananas:               spanOf[Banana](c, kindBanana, "bananas", h.Bananas),
		ConeCollisions:        spanOf[ConeCollision](c, kindConeCollision, "cone_collisions", h.ConeCollisions),
		SphereCollisions:      spanOf[SphereCollision](c, kindSphereCollision, "sphere_collisions", h.SphereCollisions),
		CylinderCollisions:    spanOf[CylinderCollision](c, kindCylinderCollision, "cylinder_collisions", h.CylinderCollisions),
		FalloutVolumes:        spanOf[FalloutVolume](c, kindFalloutVolume, "fallout_volumes", h.FalloutVolumes),
		ReflectiveStageModels: spanOf[ReflectiveStageModel](c, kindReflectiveStageModel, "reflective_stage_models", h.ReflectiveStageModels),
		StageModelInstances:   spanOf[StageModelInstance](c, kindStageModelInstance, "stage_model_instances", h.StageModelInstances),
		StageModelBs:          spanOf[StageModelPtrB](c, kindStageModelPtrB, "stage_model_bs", h.StageModelBs),
		Unk0x9C:               h.Unk0x9C,
		AnimGroupID:           h.AnimGroupID,
		Padding:               h.Padding,
		Buttons:               spanOf[Button](c, kindButton, "buttons", h.Buttons),
		Unk0xB0:               h.Unk0xB0,
		Mystery5:              refOf[Mystery5](c, kindMystery5, "mystery5", h.Mystery5),
		SeesawSensitivity:     h.SeesawSensitivity,
		SeesawFriction:        h.SeesawFriction,
		SeesawSpring:          h.SeesawSpring,
		Wormholes:             spanOf[Wormhole](c, kindWormhole, "wormholes", h.Wormholes),
		InitialPlaybackState:  h.InitialPlaybackState,
		Unk0xD0:               h.Unk0xD0,
		AnimLoopPointSeconds:  h.AnimLoopPointSeconds,
		TextureScroll:         refOf[TextureScroll](c, kindTextureScroll, "texture_scroll", h.TextureScroll),
		Unk0xDC:               h.Unk0xDC,
	}
	return c.err
}

func (b *builder) gridCell(off uint32, raw []byte, dst *Span[uint16]) error {
	p := endian.U32(raw)
	if p == 0 {
		*dst = Span[uint16]{}
		return nil
	}
	it, ok := b.plan.cells.get(p)
	if !ok {
		return &DecodeError{Kind: ErrIndexOutOfRange, Field: fmt.Sprintf("grid_cell@0x%x", off), Offset: p}
	}
	if it.length == 0 {
		*dst = Span[uint16]{}
		return nil
	}
	*dst = SpanOf[uint16](int(it.start), int(it.length))
	return nil
}

// triIndices copies every run of cell lists once, without its terminator.
// Lists ending at the same terminator are suffixes of one run.
func (b *builder) triIndices(dst []uint16) error {
	for _, r := range b.plan.cells.runs {
		n := r.count(ppc.TriIndexSize)
		if uint64(r.start)+uint64(n) > uint64(len(dst)) {
			return indexOutOfRange("tri_indices", r.start+n, uint32(len(dst)))
		}
		raw := b.res.bytes(r.lo, r.end-r.lo)
		for i := uint32(0); i < n; i++ {
			dst[r.start+i] = endian.U16(raw[i*ppc.TriIndexSize:])
		}
	}
	return nil
}

// names slices each model name out of the run string it ends in.
func (b *builder) names(dst []string) error {
	runs := make([]string, len(b.plan.names.runs))
	for i, r := range b.plan.names.runs {
		runs[i] = string(b.res.bytes(r.lo, r.end-r.lo))
	}
	for _, off := range b.plan.names.order {
		it := b.plan.names.items[off]
		if int(it.index) >= len(dst) {
			return indexOutOfRange("names", it.index, uint32(len(dst)))
		}
		dst[it.index] = runs[it.run][off-b.plan.names.runs[it.run].lo:]
	}
	return nil
}

func (b *builder) animHeader(off uint32, raw []byte, dst *AnimHeader) error {
	var h ppc.AnimHeader
	h.Decode(raw)
	c := b.conv(kindAnimHeader, off)
	spansOf(c, kindAnimKeyframe, "tracks", h.Tracks[:], dst.Tracks[:])
	dst.Unk0x30 = h.Unk0x30
	return c.err
}

func (b *builder) bgAnimHeader(off uint32, raw []byte, dst *BgAnimHeader) error {
	var h ppc.BgAnimHeader
	h.Decode(raw)
	c := b.conv(kindBgAnimHeader, off)
	dst.Unk0x0 = h.Unk0x0
	dst.LoopPointSeconds = h.LoopPointSeconds
	dst.Unk0x8 = h.Unk0x8
	spansOf(c, kindAnimKeyframe, "tracks", h.Tracks[:], dst.Tracks[:])
	dst.Unk0x40 = h.Unk0x40
	return c.err
}

func (b *builder) bgAnim2Header(off uint32, raw []byte, dst *BgAnim2Header) error {
	var h ppc.BgAnim2Header
	h.Decode(raw)
	c := b.conv(kindBgAnim2Header, off)
	dst.Unk0x0 = h.Unk0x0
	dst.LoopPointSeconds = h.LoopPointSeconds
	spansOf(c, kindAnimKeyframe, "tracks", h.Tracks[:], dst.Tracks[:])
	return c.err
}

func (b *builder) fogAnimHeader(off uint32, raw []byte, dst *FogAnimHeader) error {
	var h ppc.FogAnimHeader
	h.Decode(raw)
	c := b.conv(kindFogAnimHeader, off)
	spansOf(c, kindAnimKeyframe, "tracks", h.Tracks[:], dst.Tracks[:])
	return c.err
}

func (b *builder) effectHeader(off uint32, raw []byte, dst *EffectHeader) error {
	var h ppc.EffectHeader
	h.Decode(raw)
	c := b.conv(kindEffectHeader, off)
	*dst = EffectHeader{
		Effect1:       spanOf[Effect1](c, kindEffect1, "effect1", h.Effect1),
		Effect2:       spanOf[Effect2](c, kindEffect2, "effect2", h.Effect2),
		TextureScroll: refOf[TextureScroll](c, kindTextureScroll, "texture_scroll", h.TextureScroll),
		Unk0x14:       h.Unk0x14,
	}
	return c.err
}

func (b *builder) wormhole(off uint32, raw []byte, dst *Wormhole) error {
	var w ppc.Wormhole
	w.Decode(raw)
	c := b.conv(kindWormhole, off)
	*dst = Wormhole{
		Unk0x0:      w.Unk0x0,
		Position:    w.Position,
		Rotation:    w.Rotation,
		Padding:     w.Padding,
		Destination: refOf[Wormhole](c, kindWormhole, "destination", w.Destination),
	}
	return c.err
}

func (b *builder) backgroundModel(off uint32, raw []byte, dst *BackgroundModel) error {
	var m ppc.BackgroundModel
	m.Decode(raw)
	c := b.conv(kindBackgroundModel, off)
	*dst = BackgroundModel{
		Unk0x0:        m.Unk0x0,
		ModelName:     nameOf(c, "model_name", m.ModelName),
		Unk0x8:        m.Unk0x8,
		Position:      m.Position,
		Rotation:      m.Rotation,
		Padding:       m.Padding,
		Scale:         m.Scale,
		BgAnimHeader:  refOf[BgAnimHeader](c, kindBgAnimHeader, "bg_anim_header", m.BgAnimHeader),
		BgAnim2Header: refOf[BgAnim2Header](c, kindBgAnim2Header, "bg_anim2_header", m.BgAnim2Header),
		EffectHeader:  refOf[EffectHeader](c, kindEffectHeader, "effect_header", m.EffectHeader),
	}
	return c.err
}

func (b *builder) foregroundModel(off uint32, raw []byte, dst *ForegroundModel) error {
	var m ppc.ForegroundModel
	m.Decode(raw)
	c := b.conv(kindForegroundModel, off)
	*dst = ForegroundModel{
		Unk0x0:        m.Unk0x0,
		ModelName:     nameOf(c, "model_name", m.ModelName),
		Unk0x8:        m.Unk0x8,
		Position:      m.Position,
		Rotation:      m.Rotation,
		Padding:       m.Padding,
		Scale:         m.Scale,
		Unk0x2C:       m.Unk0x2C,
		BgAnim2Header: refOf[BgAnim2Header](c, kindBgAnim2Header, "bg_anim2_header", m.BgAnim2Header),
		Unk0x34:       m.Unk0x34,
	}
	return c.err
}

func (b *builder) reflectiveStageModel(off uint32, raw []byte, dst *ReflectiveStageModel) error {
	var m ppc.ReflectiveStageModel
	m.Decode(raw)
	c := b.conv(kindReflectiveStageModel, off)
	*dst = ReflectiveStageModel{
		ModelName: nameOf(c, "model_name", m.ModelName),
		Unk0x4:    m.Unk0x4,
	}
	return c.err
}

func (b *builder) stageModelInstance(off uint32, raw []byte, dst *StageModelInstance) error {
	var m ppc.StageModelInstance
	m.Decode(raw)
	c := b.conv(kindStageModelInstance, off)
	*dst = StageModelInstance{
		StageModelA: refOf[StageModelPtrA](c, kindStageModelPtrA, "stage_model_a", m.StageModelA),
		Position:    m.Position,
		Rotation:    m.Rotation,
		Padding:     m.Padding,
		Scale:       m.Scale,
	}
	return c.err
}

func (b *builder) stageModel(off uint32, raw []byte, dst *StageModel) error {
	var m ppc.StageModel
	m.Decode(raw)
	c := b.conv(kindStageModel, off)
	*dst = StageModel{
		Unk0x0:    m.Unk0x0,
		ModelName: nameOf(c, "model_name", m.ModelName),
		Unk0x8:    m.Unk0x8,
	}
	return c.err
}

func (b *builder) stageModelPtrA(off uint32, raw []byte, dst *StageModelPtrA) error {
	var p ppc.StageModelPtrA
	p.Decode(raw)
	c := b.conv(kindStageModelPtrA, off)
	*dst = StageModelPtrA{
		Unk0x0:     p.Unk0x0,
		StageModel: refOf[StageModel](c, kindStageModel, "stage_model", p.StageModel),
	}
	return c.err
}

func (b *builder) stageModelPtrB(off uint32, raw []byte, dst *StageModelPtrB) error {
	var p ppc.StageModelPtrB
	p.Decode(raw)
	c := b.conv(kindStageModelPtrB, off)
	dst.StageModelA = refOf[StageModelPtrA](c, kindStageModelPtrA, "stage_model_a", p.StageModelA)
	return c.err
}

// checkGridIndices verifies every cell index against the triangle table of
// the header that owns the grid.
func checkGridIndices(a *Arena) error {
	for hi := range a.CollisionHeaders {
		h := &a.CollisionHeaders[hi]
		bound := h.Triangles.Count
		if h.Grid.Cells.end() > uint64(len(a.GridCells)) {
			return indexOutOfRange(fmt.Sprintf("collision_headers[%d].grid", hi), uint32(h.Grid.Cells.end()), uint32(len(a.GridCells)))
		}
		for ci, cell := range h.Grid.Cells.Of(a.GridCells) {
			if cell.end() > uint64(len(a.TriIndices)) {
				return indexOutOfRange(fmt.Sprintf("collision_headers[%d].grid.cells[%d]", hi, ci), uint32(cell.end()), uint32(len(a.TriIndices)))
			}
			for _, idx := range cell.Of(a.TriIndices) {
				if uint32(idx) >= bound {
					return indexOutOfRange(fmt.Sprintf("collision_headers[%d].grid.cells[%d]", hi, ci), uint32(idx), bound)
				}
			}
		}
	}
	return nil
}
