package stagedef

import (
	"github.com/Faultbox/stagedef/pkg/math"
	"github.com/Faultbox/stagedef/pkg/stagedef/ppc"
)

// Records without offsets share the wire layout and are used as-is after the
// endian fix.
type (
	AnimKeyframe      ppc.AnimKeyframe
	CollisionTri      ppc.CollisionTri
	Goal              ppc.Goal
	Bumper            ppc.Bumper
	Jamabar           ppc.Jamabar
	ConeCollision     ppc.ConeCollision
	Banana            ppc.Banana
	SphereCollision   ppc.SphereCollision
	CylinderCollision ppc.CylinderCollision
	FalloutVolume     ppc.FalloutVolume
	Fallout           ppc.Fallout
	Start             ppc.Start
	Button            ppc.Button
	Fog               ppc.Fog
	TextureScroll     ppc.TextureScroll
	Effect1           ppc.Effect1
	Effect2           ppc.Effect2
	Mystery3          ppc.Mystery3
	Mystery5          ppc.Mystery5
)

// FileHeader is the root of a converted stagedef.
type FileHeader struct {
	MagicA                uint32
	MagicB                uint32
	CollisionHeaders      Span[CollisionHeader]
	Start                 Ref[Start]
	Fallout               Ref[Fallout]
	Goals                 Span[Goal]
	Bumpers               Span[Bumper]
	Jamabars              Span[Jamabar]
	Bananas               Span[Banana]
	ConeCollisions        Span[ConeCollision]
	SphereCollisions      Span[SphereCollision]
	CylinderCollisions    Span[CylinderCollision]
	FalloutVolumes        Span[FalloutVolume]
	BackgroundModels      Span[BackgroundModel]
	ForegroundModels      Span[ForegroundModel]
	Unk0x68               [8]byte
	ReflectiveStageModels Span[ReflectiveStageModel]
	Unk0x78               [12]byte
	StageModelInstances   Span[StageModelInstance]
	StageModelAs          Span[StageModelPtrA]
	StageModelBs          Span[StageModelPtrB]
	Unk0x9C               [12]byte
	Buttons               Span[Button]
	FogAnimHeader         Ref[FogAnimHeader]
	Wormholes             Span[Wormhole]
	Fog                   Ref[Fog]
	Unk0xC0               [20]byte
	Mystery3              Ref[Mystery3]
	Unk0xD8               [1988]byte
}

// CollisionGrid bins the triangles of a collision header into
// StepCount.X * StepCount.Y cells, stored row-major. Cells is empty when the
// header has no grid.
type CollisionGrid struct {
	Start     math.Vec2
	Step      math.Vec2
	StepCount math.Vec2i
	Cells     Span[Span[uint16]]
}

// CollisionHeader is one collision mesh with its attached objects.
type CollisionHeader struct {
	Origin                math.Vec3
	InitialRotation       math.Vec3s
	AnimLoopTypeAndSeesaw int16
	AnimHeader            Ref[AnimHeader]
	ConveyorSpeed         math.Vec3
	Triangles             Span[CollisionTri]
	Grid                  CollisionGrid
	Goals                 Span[Goal]
	Bumpers               Span[Bumper]
	Jamabars              Span[Jamabar]
	Bananas               Span[Banana]
	ConeCollisions        Span[ConeCollision]
	SphereCollisions      Span[SphereCollision]
	CylinderCollisions    Span[CylinderCollision]
	FalloutVolumes        Span[FalloutVolume]
	ReflectiveStageModels Span[ReflectiveStageModel]
	StageModelInstances   Span[StageModelInstance]
	StageModelBs          Span[StageModelPtrB]
	Unk0x9C               [8]byte
	AnimGroupID           uint16
	Padding               [2]byte
	Buttons               Span[Button]
	Unk0xB0               [4]byte
	Mystery5              Ref[Mystery5]
	SeesawSensitivity     float32
	SeesawFriction        float32
	SeesawSpring          float32
	Wormholes             Span[Wormhole]
	InitialPlaybackState  uint32
	Unk0xD0               [4]byte
	AnimLoopPointSeconds  float32
	TextureScroll         Ref[TextureScroll]
	Unk0xDC               [960]byte
}

// AnimHeader holds rotation and position keyframe tracks, indexed by
// ppc.TrackRotX through ppc.TrackPosZ.
type AnimHeader struct {
	Tracks  [ppc.AnimTrackCount]Span[AnimKeyframe]
	Unk0x30 [16]byte
}

// BgAnimHeader animates a background model.
type BgAnimHeader struct {
	Unk0x0           [4]byte
	LoopPointSeconds float32
	Unk0x8           [8]byte
	Tracks           [ppc.AnimTrackCount]Span[AnimKeyframe]
	Unk0x40          [16]byte
}

// BgAnim2Header is the second model animation header, indexed by
// ppc.Bg2TrackUnk1 through ppc.Bg2TrackUnk11.
type BgAnim2Header struct {
	Unk0x0           [4]byte
	LoopPointSeconds float32
	Tracks           [ppc.BgAnim2TrackCount]Span[AnimKeyframe]
}

// FogAnimHeader animates the stage fog.
type FogAnimHeader struct {
	Tracks [ppc.FogAnimTrackCount]Span[AnimKeyframe]
}

// EffectHeader holds the effect lists of a background model.
type EffectHeader struct {
	Effect1       Span[Effect1]
	Effect2       Span[Effect2]
	TextureScroll Ref[TextureScroll]
	Unk0x14       [28]byte
}

// Wormhole teleports the ball to Destination.
type Wormhole struct {
	Unk0x0      [4]byte
	Position    math.Vec3
	Rotation    math.Vec3s
	Padding     [2]byte
	Destination Ref[Wormhole]
}

// BackgroundModel places a decorative model outside the playfield.
type BackgroundModel struct {
	Unk0x0        [4]byte
	ModelName     Ref[string]
	Unk0x8        [4]byte
	Position      math.Vec3
	Rotation      math.Vec3s
	Padding       [2]byte
	Scale         math.Vec3
	BgAnimHeader  Ref[BgAnimHeader]
	BgAnim2Header Ref[BgAnim2Header]
	EffectHeader  Ref[EffectHeader]
}

// ForegroundModel places a model in front of the playfield.
type ForegroundModel struct {
	Unk0x0        [4]byte
	ModelName     Ref[string]
	Unk0x8        [4]byte
	Position      math.Vec3
	Rotation      math.Vec3s
	Padding       [2]byte
	Scale         math.Vec3
	Unk0x2C       [4]byte
	BgAnim2Header Ref[BgAnim2Header]
	Unk0x34       [4]byte
}

// StageModel names a model of the stage itself.
type StageModel struct {
	Unk0x0    [4]byte
	ModelName Ref[string]
	Unk0x8    [8]byte
}

// StageModelPtrA points at a StageModel.
type StageModelPtrA struct {
	Unk0x0     [8]byte
	StageModel Ref[StageModel]
}

// StageModelPtrB points at a StageModelPtrA.
type StageModelPtrB struct {
	StageModelA Ref[StageModelPtrA]
}

// StageModelInstance places a stage model.
type StageModelInstance struct {
	StageModelA Ref[StageModelPtrA]
	Position    math.Vec3
	Rotation    math.Vec3s
	Padding     [2]byte
	Scale       math.Vec3
}

// ReflectiveStageModel names a model rendered with reflections.
type ReflectiveStageModel struct {
	ModelName Ref[string]
	Unk0x4    [8]byte
}
