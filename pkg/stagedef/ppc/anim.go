package ppc

import "github.com/Faultbox/stagedef/pkg/math"

// Record sizes.
const (
	AnimKeyframeSize  = 0x14
	AnimHeaderSize    = 0x40
	BgAnimHeaderSize  = 0x50
	BgAnim2HeaderSize = 0x60
	FogAnimHeaderSize = 0x30
	EffectHeaderSize  = 0x30
	Effect1Size       = 0x14
	Effect2Size       = 0x10
	TextureScrollSize = 0x8
)

// Keyframe track slots of AnimHeader and BgAnimHeader.
const (
	TrackRotX = iota
	TrackRotY
	TrackRotZ
	TrackPosX
	TrackPosY
	TrackPosZ
	AnimTrackCount
)

// Keyframe track slots of BgAnim2Header.
const (
	Bg2TrackUnk1 = iota
	Bg2TrackUnk2
	Bg2TrackRotX
	Bg2TrackRotY
	Bg2TrackRotZ
	Bg2TrackPosX
	Bg2TrackPosY
	Bg2TrackPosZ
	Bg2TrackUnk9
	Bg2TrackUnk10
	Bg2TrackUnk11
	BgAnim2TrackCount
)

// Keyframe track slots of FogAnimHeader.
const (
	FogTrackStartDistance = iota
	FogTrackEndDistance
	FogTrackRed
	FogTrackGreen
	FogTrackBlue
	FogTrackUnk
	FogAnimTrackCount
)

// AnimKeyframe is a single keyframe of an animation track.
type AnimKeyframe struct {
	Easing uint32
	Time   float32
	Value  float32
	Unk0xC [8]byte
}

func (k *AnimKeyframe) Decode(b []byte) {
	r := reader{b: b[:AnimKeyframeSize]}
	k.Easing = r.u32()
	k.Time = r.f32()
	k.Value = r.f32()
	r.raw(k.Unk0xC[:])
}

func (k *AnimKeyframe) Encode(b []byte) {
	w := writer{b: b[:AnimKeyframeSize]}
	w.u32(k.Easing)
	w.f32(k.Time)
	w.f32(k.Value)
	w.raw(k.Unk0xC[:])
}

// AnimHeader holds the rotation and position tracks of a collision header.
type AnimHeader struct {
	Tracks  [AnimTrackCount]List
	Unk0x30 [16]byte
}

func (h *AnimHeader) Decode(b []byte) {
	r := reader{b: b[:AnimHeaderSize]}
	r.lists(h.Tracks[:])
	r.raw(h.Unk0x30[:])
}

func (h *AnimHeader) Encode(b []byte) {
	w := writer{b: b[:AnimHeaderSize]}
	w.lists(h.Tracks[:])
	w.raw(h.Unk0x30[:])
}

// BgAnimHeader animates a background model.
type BgAnimHeader struct {
	Unk0x0           [4]byte
	LoopPointSeconds float32
	Unk0x8           [8]byte
	Tracks           [AnimTrackCount]List
	Unk0x40          [16]byte
}

func (h *BgAnimHeader) Decode(b []byte) {
	r := reader{b: b[:BgAnimHeaderSize]}
	r.raw(h.Unk0x0[:])
	h.LoopPointSeconds = r.f32()
	r.raw(h.Unk0x8[:])
	r.lists(h.Tracks[:])
	r.raw(h.Unk0x40[:])
}

func (h *BgAnimHeader) Encode(b []byte) {
	w := writer{b: b[:BgAnimHeaderSize]}
	w.raw(h.Unk0x0[:])
	w.f32(h.LoopPointSeconds)
	w.raw(h.Unk0x8[:])
	w.lists(h.Tracks[:])
	w.raw(h.Unk0x40[:])
}

// BgAnim2Header is the second animation header used by background and
// foreground models.
type BgAnim2Header struct {
	Unk0x0           [4]byte
	LoopPointSeconds float32
	Tracks           [BgAnim2TrackCount]List
}

func (h *BgAnim2Header) Decode(b []byte) {
	r := reader{b: b[:BgAnim2HeaderSize]}
	r.raw(h.Unk0x0[:])
	h.LoopPointSeconds = r.f32()
	r.lists(h.Tracks[:])
}

func (h *BgAnim2Header) Encode(b []byte) {
	w := writer{b: b[:BgAnim2HeaderSize]}
	w.raw(h.Unk0x0[:])
	w.f32(h.LoopPointSeconds)
	w.lists(h.Tracks[:])
}

// FogAnimHeader animates the stage fog.
type FogAnimHeader struct {
	Tracks [FogAnimTrackCount]List
}

func (h *FogAnimHeader) Decode(b []byte) {
	r := reader{b: b[:FogAnimHeaderSize]}
	r.lists(h.Tracks[:])
}

func (h *FogAnimHeader) Encode(b []byte) {
	w := writer{b: b[:FogAnimHeaderSize]}
	w.lists(h.Tracks[:])
}

// EffectHeader references the effect lists of a background model.
type EffectHeader struct {
	Effect1       List
	Effect2       List
	TextureScroll Offset
	Unk0x14       [28]byte
}

func (h *EffectHeader) Decode(b []byte) {
	r := reader{b: b[:EffectHeaderSize]}
	h.Effect1 = r.list()
	h.Effect2 = r.list()
	h.TextureScroll = r.offset()
	r.raw(h.Unk0x14[:])
}

func (h *EffectHeader) Encode(b []byte) {
	w := writer{b: b[:EffectHeaderSize]}
	w.list(h.Effect1)
	w.list(h.Effect2)
	w.offset(h.TextureScroll)
	w.raw(h.Unk0x14[:])
}

// Effect1 is not understood; it is kept as raw bytes.
type Effect1 [Effect1Size]byte

func (e *Effect1) Decode(b []byte) { copy(e[:], b[:Effect1Size]) }
func (e *Effect1) Encode(b []byte) { copy(b[:Effect1Size], e[:]) }

// Effect2 is not understood; it is kept as raw bytes.
type Effect2 [Effect2Size]byte

func (e *Effect2) Decode(b []byte) { copy(e[:], b[:Effect2Size]) }
func (e *Effect2) Encode(b []byte) { copy(b[:Effect2Size], e[:]) }

// TextureScroll is the UV scroll speed of an animated texture.
type TextureScroll struct {
	Speed math.Vec2
}

func (t *TextureScroll) Decode(b []byte) {
	r := reader{b: b[:TextureScrollSize]}
	t.Speed = r.vec2()
}

func (t *TextureScroll) Encode(b []byte) {
	w := writer{b: b[:TextureScrollSize]}
	w.vec2(t.Speed)
}
