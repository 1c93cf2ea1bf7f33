package ppc

import "github.com/Faultbox/stagedef/pkg/math"

// Record sizes.
const (
	BackgroundModelSize      = 0x38
	ForegroundModelSize      = 0x38
	StageModelSize           = 0x10
	StageModelPtrASize       = 0xC
	StageModelPtrBSize       = 0x4
	StageModelInstanceSize   = 0x24
	ReflectiveStageModelSize = 0xC
)

// BackgroundModel places a decorative model outside the playfield.
type BackgroundModel struct {
	Unk0x0        [4]byte
	ModelName     Offset
	Unk0x8        [4]byte
	Position      math.Vec3
	Rotation      math.Vec3s
	Padding       [2]byte
	Scale         math.Vec3
	BgAnimHeader  Offset
	BgAnim2Header Offset
	EffectHeader  Offset
}

func (m *BackgroundModel) Decode(b []byte) {
	r := reader{b: b[:BackgroundModelSize]}
	r.raw(m.Unk0x0[:])
	m.ModelName = r.offset()
	r.raw(m.Unk0x8[:])
	m.Position = r.vec3()
	m.Rotation = r.vec3s()
	r.raw(m.Padding[:])
	m.Scale = r.vec3()
	m.BgAnimHeader = r.offset()
	m.BgAnim2Header = r.offset()
	m.EffectHeader = r.offset()
}

func (m *BackgroundModel) Encode(b []byte) {
	w := writer{b: b[:BackgroundModelSize]}
	w.raw(m.Unk0x0[:])
	w.offset(m.ModelName)
	w.raw(m.Unk0x8[:])
	w.vec3(m.Position)
	w.vec3s(m.Rotation)
	w.raw(m.Padding[:])
	w.vec3(m.Scale)
	w.offset(m.BgAnimHeader)
	w.offset(m.BgAnim2Header)
	w.offset(m.EffectHeader)
}

// ForegroundModel places a model in front of the playfield. Unk0x34 looks
// like an offset in some stages but its target is unknown, so it is kept
// verbatim and never followed.
type ForegroundModel struct {
	Unk0x0        [4]byte
	ModelName     Offset
	Unk0x8        [4]byte
	Position      math.Vec3
	Rotation      math.Vec3s
	Padding       [2]byte
	Scale         math.Vec3
	Unk0x2C       [4]byte
	BgAnim2Header Offset
	Unk0x34       [4]byte
}

func (m *ForegroundModel) Decode(b []byte) {
	r := reader{b: b[:ForegroundModelSize]}
	r.raw(m.Unk0x0[:])
	m.ModelName = r.offset()
	r.raw(m.Unk0x8[:])
	m.Position = r.vec3()
	m.Rotation = r.vec3s()
	r.raw(m.Padding[:])
	m.Scale = r.vec3()
	r.raw(m.Unk0x2C[:])
	m.BgAnim2Header = r.offset()
	r.raw(m.Unk0x34[:])
}

func (m *ForegroundModel) Encode(b []byte) {
	w := writer{b: b[:ForegroundModelSize]}
	w.raw(m.Unk0x0[:])
	w.offset(m.ModelName)
	w.raw(m.Unk0x8[:])
	w.vec3(m.Position)
	w.vec3s(m.Rotation)
	w.raw(m.Padding[:])
	w.vec3(m.Scale)
	w.raw(m.Unk0x2C[:])
	w.offset(m.BgAnim2Header)
	w.raw(m.Unk0x34[:])
}

// StageModel names a model of the stage itself.
type StageModel struct {
	Unk0x0    [4]byte
	ModelName Offset
	Unk0x8    [8]byte
}

func (m *StageModel) Decode(b []byte) {
	r := reader{b: b[:StageModelSize]}
	r.raw(m.Unk0x0[:])
	m.ModelName = r.offset()
	r.raw(m.Unk0x8[:])
}

func (m *StageModel) Encode(b []byte) {
	w := writer{b: b[:StageModelSize]}
	w.raw(m.Unk0x0[:])
	w.offset(m.ModelName)
	w.raw(m.Unk0x8[:])
}

// StageModelPtrA is the first indirection layer in front of a StageModel.
type StageModelPtrA struct {
	Unk0x0     [8]byte
	StageModel Offset
}

func (p *StageModelPtrA) Decode(b []byte) {
	r := reader{b: b[:StageModelPtrASize]}
	r.raw(p.Unk0x0[:])
	p.StageModel = r.offset()
}

func (p *StageModelPtrA) Encode(b []byte) {
	w := writer{b: b[:StageModelPtrASize]}
	w.raw(p.Unk0x0[:])
	w.offset(p.StageModel)
}

// StageModelPtrB points at a StageModelPtrA.
type StageModelPtrB struct {
	StageModelA Offset
}

func (p *StageModelPtrB) Decode(b []byte) {
	r := reader{b: b[:StageModelPtrBSize]}
	p.StageModelA = r.offset()
}

func (p *StageModelPtrB) Encode(b []byte) {
	w := writer{b: b[:StageModelPtrBSize]}
	w.offset(p.StageModelA)
}

// StageModelInstance places a stage model.
type StageModelInstance struct {
	StageModelA Offset
	Position    math.Vec3
	Rotation    math.Vec3s
	Padding     [2]byte
	Scale       math.Vec3
}

func (m *StageModelInstance) Decode(b []byte) {
	r := reader{b: b[:StageModelInstanceSize]}
	m.StageModelA = r.offset()
	m.Position = r.vec3()
	m.Rotation = r.vec3s()
	r.raw(m.Padding[:])
	m.Scale = r.vec3()
}

func (m *StageModelInstance) Encode(b []byte) {
	w := writer{b: b[:StageModelInstanceSize]}
	w.offset(m.StageModelA)
	w.vec3(m.Position)
	w.vec3s(m.Rotation)
	w.raw(m.Padding[:])
	w.vec3(m.Scale)
}

// ReflectiveStageModel names a model rendered with reflections.
type ReflectiveStageModel struct {
	ModelName Offset
	Unk0x4    [8]byte
}

func (m *ReflectiveStageModel) Decode(b []byte) {
	r := reader{b: b[:ReflectiveStageModelSize]}
	m.ModelName = r.offset()
	r.raw(m.Unk0x4[:])
}

func (m *ReflectiveStageModel) Encode(b []byte) {
	w := writer{b: b[:ReflectiveStageModelSize]}
	w.offset(m.ModelName)
	w.raw(m.Unk0x4[:])
}
