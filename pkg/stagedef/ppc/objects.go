package ppc

import "github.com/Faultbox/stagedef/pkg/math"

// Record sizes.
const (
	PlacementSize         = 0x20
	GoalSize              = 0x14
	BumperSize            = PlacementSize
	JamabarSize           = PlacementSize
	ConeCollisionSize     = PlacementSize
	BananaSize            = 0x10
	SphereCollisionSize   = 0x14
	CylinderCollisionSize = 0x1C
	FalloutVolumeSize     = 0x20
	FalloutSize           = 0x4
	StartSize             = 0x14
	ButtonSize            = 0x18
	WormholeSize          = 0x1C
	FogSize               = 0x24
	Mystery3Size          = 0x24
	Mystery5Size          = 0x14
)

// Placement is the position/rotation/scale layout shared by bumpers,
// jamabars and cone collision objects.
type Placement struct {
	Position math.Vec3
	Rotation math.Vec3s
	Padding  [2]byte
	Scale    math.Vec3
}

func (p *Placement) Decode(b []byte) {
	r := reader{b: b[:PlacementSize]}
	p.Position = r.vec3()
	p.Rotation = r.vec3s()
	r.raw(p.Padding[:])
	p.Scale = r.vec3()
}

func (p *Placement) Encode(b []byte) {
	w := writer{b: b[:PlacementSize]}
	w.vec3(p.Position)
	w.vec3s(p.Rotation)
	w.raw(p.Padding[:])
	w.vec3(p.Scale)
}

// Bumper is a pinball-style bumper.
type Bumper struct{ Placement }

// Jamabar is a sliding obstacle bar.
type Jamabar struct{ Placement }

// ConeCollision is a cone collision volume.
type ConeCollision struct{ Placement }

// Goal is a goal gate.
type Goal struct {
	Position math.Vec3
	Rotation math.Vec3s
	Flags    int16
}

func (g *Goal) Decode(b []byte) {
	r := reader{b: b[:GoalSize]}
	g.Position = r.vec3()
	g.Rotation = r.vec3s()
	g.Flags = r.s16()
}

func (g *Goal) Encode(b []byte) {
	w := writer{b: b[:GoalSize]}
	w.vec3(g.Position)
	w.vec3s(g.Rotation)
	w.s16(g.Flags)
}

// Banana is a collectable banana.
type Banana struct {
	Position math.Vec3
	Type     uint32
}

func (n *Banana) Decode(b []byte) {
	r := reader{b: b[:BananaSize]}
	n.Position = r.vec3()
	n.Type = r.u32()
}

func (n *Banana) Encode(b []byte) {
	w := writer{b: b[:BananaSize]}
	w.vec3(n.Position)
	w.u32(n.Type)
}

// SphereCollision is a sphere collision volume.
type SphereCollision struct {
	Position math.Vec3
	Radius   float32
	Unk0x10  [4]byte
}

func (s *SphereCollision) Decode(b []byte) {
	r := reader{b: b[:SphereCollisionSize]}
	s.Position = r.vec3()
	s.Radius = r.f32()
	r.raw(s.Unk0x10[:])
}

func (s *SphereCollision) Encode(b []byte) {
	w := writer{b: b[:SphereCollisionSize]}
	w.vec3(s.Position)
	w.f32(s.Radius)
	w.raw(s.Unk0x10[:])
}

// CylinderCollision is a cylinder collision volume.
type CylinderCollision struct {
	Position math.Vec3
	Radius   float32
	Height   float32
	Rotation math.Vec3s
	Padding  [2]byte
}

func (c *CylinderCollision) Decode(b []byte) {
	r := reader{b: b[:CylinderCollisionSize]}
	c.Position = r.vec3()
	c.Radius = r.f32()
	c.Height = r.f32()
	c.Rotation = r.vec3s()
	r.raw(c.Padding[:])
}

func (c *CylinderCollision) Encode(b []byte) {
	w := writer{b: b[:CylinderCollisionSize]}
	w.vec3(c.Position)
	w.f32(c.Radius)
	w.f32(c.Height)
	w.vec3s(c.Rotation)
	w.raw(c.Padding[:])
}

// FalloutVolume is a box that counts as falling out when entered.
type FalloutVolume struct {
	Position math.Vec3
	Size     math.Vec3
	Rotation math.Vec3s
	Padding  [2]byte
}

func (f *FalloutVolume) Decode(b []byte) {
	r := reader{b: b[:FalloutVolumeSize]}
	f.Position = r.vec3()
	f.Size = r.vec3()
	f.Rotation = r.vec3s()
	r.raw(f.Padding[:])
}

func (f *FalloutVolume) Encode(b []byte) {
	w := writer{b: b[:FalloutVolumeSize]}
	w.vec3(f.Position)
	w.vec3(f.Size)
	w.vec3s(f.Rotation)
	w.raw(f.Padding[:])
}

// Fallout is the stage-wide fallout plane.
type Fallout struct {
	Y float32
}

func (f *Fallout) Decode(b []byte) {
	r := reader{b: b[:FalloutSize]}
	f.Y = r.f32()
}

func (f *Fallout) Encode(b []byte) {
	w := writer{b: b[:FalloutSize]}
	w.f32(f.Y)
}

// Start is the ball start position.
type Start struct {
	Position math.Vec3
	Rotation math.Vec3s
	Padding  [2]byte
}

func (s *Start) Decode(b []byte) {
	r := reader{b: b[:StartSize]}
	s.Position = r.vec3()
	s.Rotation = r.vec3s()
	r.raw(s.Padding[:])
}

func (s *Start) Encode(b []byte) {
	w := writer{b: b[:StartSize]}
	w.vec3(s.Position)
	w.vec3s(s.Rotation)
	w.raw(s.Padding[:])
}

// Button changes the playback state of an animation group when pressed.
type Button struct {
	Position      math.Vec3
	Rotation      math.Vec3s
	PlaybackState uint16
	AnimGroupID   uint16
	Padding       [2]byte
}

func (btn *Button) Decode(b []byte) {
	r := reader{b: b[:ButtonSize]}
	btn.Position = r.vec3()
	btn.Rotation = r.vec3s()
	btn.PlaybackState = r.u16()
	btn.AnimGroupID = r.u16()
	r.raw(btn.Padding[:])
}

func (btn *Button) Encode(b []byte) {
	w := writer{b: b[:ButtonSize]}
	w.vec3(btn.Position)
	w.vec3s(btn.Rotation)
	w.u16(btn.PlaybackState)
	w.u16(btn.AnimGroupID)
	w.raw(btn.Padding[:])
}

// Wormhole teleports the ball to Destination, another wormhole.
type Wormhole struct {
	Unk0x0      [4]byte
	Position    math.Vec3
	Rotation    math.Vec3s
	Padding     [2]byte
	Destination Offset
}

func (wh *Wormhole) Decode(b []byte) {
	r := reader{b: b[:WormholeSize]}
	r.raw(wh.Unk0x0[:])
	wh.Position = r.vec3()
	wh.Rotation = r.vec3s()
	r.raw(wh.Padding[:])
	wh.Destination = r.offset()
}

func (wh *Wormhole) Encode(b []byte) {
	w := writer{b: b[:WormholeSize]}
	w.raw(wh.Unk0x0[:])
	w.vec3(wh.Position)
	w.vec3s(wh.Rotation)
	w.raw(wh.Padding[:])
	w.offset(wh.Destination)
}

// Fog describes the stage fog. Type uses the GX fog type values.
type Fog struct {
	Type          uint8
	Padding       [3]byte
	StartDistance float32
	EndDistance   float32
	Color         math.Vec3
	Unk0x18       [12]byte
}

func (f *Fog) Decode(b []byte) {
	r := reader{b: b[:FogSize]}
	f.Type = r.u8()
	r.raw(f.Padding[:])
	f.StartDistance = r.f32()
	f.EndDistance = r.f32()
	f.Color = r.vec3()
	r.raw(f.Unk0x18[:])
}

func (f *Fog) Encode(b []byte) {
	w := writer{b: b[:FogSize]}
	w.u8(f.Type)
	w.raw(f.Padding[:])
	w.f32(f.StartDistance)
	w.f32(f.EndDistance)
	w.vec3(f.Color)
	w.raw(f.Unk0x18[:])
}

// Mystery3 is referenced by the file header and not understood.
type Mystery3 [Mystery3Size]byte

func (m *Mystery3) Decode(b []byte) { copy(m[:], b[:Mystery3Size]) }
func (m *Mystery3) Encode(b []byte) { copy(b[:Mystery3Size], m[:]) }

// Mystery5 is referenced by collision headers and not understood.
type Mystery5 [Mystery5Size]byte

func (m *Mystery5) Decode(b []byte) { copy(m[:], b[:Mystery5Size]) }
func (m *Mystery5) Encode(b []byte) { copy(b[:Mystery5Size], m[:]) }
