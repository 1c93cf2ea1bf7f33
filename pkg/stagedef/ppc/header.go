package ppc

import "github.com/Faultbox/stagedef/pkg/math"

// Record sizes.
const (
	FileHeaderSize      = 0x89C
	CollisionHeaderSize = 0x49C
	CollisionTriSize    = 0x40
	GridCellSize        = 0x4 // one offset per cell
	TriIndexSize        = 0x2
)

// FileHeader is the root record at offset 0.
type FileHeader struct {
	MagicA                uint32
	MagicB                uint32
	CollisionHeaders      List
	Start                 Offset
	Fallout               Offset
	Goals                 List
	Bumpers               List
	Jamabars              List
	Bananas               List
	ConeCollisions        List
	SphereCollisions      List
	CylinderCollisions    List
	FalloutVolumes        List
	BackgroundModels      List
	ForegroundModels      List
	Unk0x68               [8]byte
	ReflectiveStageModels List
	Unk0x78               [12]byte
	StageModelInstances   List
	StageModelAs          List
	StageModelBs          List
	Unk0x9C               [12]byte
	Buttons               List
	FogAnimHeader         Offset
	Wormholes             List
	Fog                   Offset
	Unk0xC0               [20]byte
	Mystery3              Offset
	Unk0xD8               [1988]byte
}

func (h *FileHeader) Decode(b []byte) {
	r := reader{b: b[:FileHeaderSize]}
	h.MagicA = r.u32()
	h.MagicB = r.u32()
	h.CollisionHeaders = r.list()
	h.Start = r.offset()
	h.Fallout = r.offset()
	h.Goals = r.list()
	h.Bumpers = r.list()
	h.Jamabars = r.list()
	h.Bananas = r.list()
	h.ConeCollisions = r.list()
	h.SphereCollisions = r.list()
	h.CylinderCollisions = r.list()
	h.FalloutVolumes = r.list()
	h.BackgroundModels = r.list()
	h.ForegroundModels = r.list()
	r.raw(h.Unk0x68[:])
	h.ReflectiveStageModels = r.list()
	r.raw(h.Unk0x78[:])
	h.StageModelInstances = r.list()
	h.StageModelAs = r.list()
	h.StageModelBs = r.list()
	r.raw(h.Unk0x9C[:])
	h.Buttons = r.list()
	h.FogAnimHeader = r.offset()
	h.Wormholes = r.list()
	h.Fog = r.offset()
	r.raw(h.Unk0xC0[:])
	h.Mystery3 = r.offset()
	r.raw(h.Unk0xD8[:])
}

func (h *FileHeader) Encode(b []byte) {
	w := writer{b: b[:FileHeaderSize]}
	w.u32(h.MagicA)
	w.u32(h.MagicB)
	w.list(h.CollisionHeaders)
	w.offset(h.Start)
	w.offset(h.Fallout)
	w.list(h.Goals)
	w.list(h.Bumpers)
	w.list(h.Jamabars)
	w.list(h.Bananas)
	w.list(h.ConeCollisions)
	w.list(h.SphereCollisions)
	w.list(h.CylinderCollisions)
	w.list(h.FalloutVolumes)
	w.list(h.BackgroundModels)
	w.list(h.ForegroundModels)
	w.raw(h.Unk0x68[:])
	w.list(h.ReflectiveStageModels)
	w.raw(h.Unk0x78[:])
	w.list(h.StageModelInstances)
	w.list(h.StageModelAs)
	w.list(h.StageModelBs)
	w.raw(h.Unk0x9C[:])
	w.list(h.Buttons)
	w.offset(h.FogAnimHeader)
	w.list(h.Wormholes)
	w.offset(h.Fog)
	w.raw(h.Unk0xC0[:])
	w.offset(h.Mystery3)
	w.raw(h.Unk0xD8[:])
}

// CollisionHeader describes one independently animated collision mesh and
// the objects attached to it.
//
// The triangle count is not stored. Grid points to StepCount.X*StepCount.Y
// cell offsets, each locating a TriIndexListEnd terminated list of indices
// into Triangles.
type CollisionHeader struct {
	Origin                math.Vec3
	InitialRotation       math.Vec3s
	AnimLoopTypeAndSeesaw int16
	AnimHeader            Offset
	ConveyorSpeed         math.Vec3
	Triangles             Offset
	Grid                  Offset
	GridStart             math.Vec2
	GridStep              math.Vec2
	GridStepCount         math.Vec2i
	Goals                 List
	Bumpers               List
	Jamabars              List
	Bananas               List
	ConeCollisions        List
	SphereCollisions      List
	CylinderCollisions    List
	FalloutVolumes        List
	ReflectiveStageModels List
	StageModelInstances   List
	StageModelBs          List
	Unk0x9C               [8]byte
	AnimGroupID           uint16
	Padding               [2]byte
	Buttons               List
	Unk0xB0               [4]byte
	Mystery5              Offset
	SeesawSensitivity     float32
	SeesawFriction        float32
	SeesawSpring          float32
	Wormholes             List
	InitialPlaybackState  uint32
	Unk0xD0               [4]byte
	AnimLoopPointSeconds  float32
	TextureScroll         Offset
	Unk0xDC               [960]byte
}

func (h *CollisionHeader) Decode(b []byte) {
	r := reader{b: b[:CollisionHeaderSize]}
	h.Origin = r.vec3()
	h.InitialRotation = r.vec3s()
	h.AnimLoopTypeAndSeesaw = r.s16()
	h.AnimHeader = r.offset()
	h.ConveyorSpeed = r.vec3()
	h.Triangles = r.offset()
	h.Grid = r.offset()
	h.GridStart = r.vec2()
	h.GridStep = r.vec2()
	h.GridStepCount = r.vec2i()
	h.Goals = r.list()
	h.Bumpers = r.list()
	h.Jamabars = r.list()
	h.Bananas = r.list()
	h.ConeCollisions = r.list()
	h.SphereCollisions = r.list()
	h.CylinderCollisions = r.list()
	h.FalloutVolumes = r.list()
	h.ReflectiveStageModels = r.list()
	h.StageModelInstances = r.list()
	h.StageModelBs = r.list()
	r.raw(h.Unk0x9C[:])
	h.AnimGroupID = r.u16()
	r.raw(h.Padding[:])
	h.Buttons = r.list()
	r.raw(h.Unk0xB0[:])
	h.Mystery5 = r.offset()
	h.SeesawSensitivity = r.f32()
	h.SeesawFriction = r.f32()
	h.SeesawSpring = r.f32()
	h.Wormholes = r.list()
	h.InitialPlaybackState = r.u32()
	r.raw(h.Unk0xD0[:])
	h.AnimLoopPointSeconds = r.f32()
	h.TextureScroll = r.offset()
	r.raw(h.Unk0xDC[:])
}

func (h *CollisionHeader) Encode(b []byte) {
	w := writer{b: b[:CollisionHeaderSize]}
	w.vec3(h.Origin)
	w.vec3s(h.InitialRotation)
	w.s16(h.AnimLoopTypeAndSeesaw)
	w.offset(h.AnimHeader)
	w.vec3(h.ConveyorSpeed)
	w.offset(h.Triangles)
	w.offset(h.Grid)
	w.vec2(h.GridStart)
	w.vec2(h.GridStep)
	w.vec2i(h.GridStepCount)
	w.list(h.Goals)
	w.list(h.Bumpers)
	w.list(h.Jamabars)
	w.list(h.Bananas)
	w.list(h.ConeCollisions)
	w.list(h.SphereCollisions)
	w.list(h.CylinderCollisions)
	w.list(h.FalloutVolumes)
	w.list(h.ReflectiveStageModels)
	w.list(h.StageModelInstances)
	w.list(h.StageModelBs)
	w.raw(h.Unk0x9C[:])
	w.u16(h.AnimGroupID)
	w.raw(h.Padding[:])
	w.list(h.Buttons)
	w.raw(h.Unk0xB0[:])
	w.offset(h.Mystery5)
	w.f32(h.SeesawSensitivity)
	w.f32(h.SeesawFriction)
	w.f32(h.SeesawSpring)
	w.list(h.Wormholes)
	w.u32(h.InitialPlaybackState)
	w.raw(h.Unk0xD0[:])
	w.f32(h.AnimLoopPointSeconds)
	w.offset(h.TextureScroll)
	w.raw(h.Unk0xDC[:])
}

// CollisionTri is one collision triangle. Point 2 and point 3 are stored as
// 2D deltas from point 1 in the triangle's own plane, before RotationFromXY
// is applied.
type CollisionTri struct {
	Point1         math.Vec3
	Normal         math.Vec3
	RotationFromXY math.Vec3s
	Padding        [2]byte
	Point2Delta    math.Vec2
	Point3Delta    math.Vec2
	Tangent        math.Vec2
	Bitangent      math.Vec2
}

func (t *CollisionTri) Decode(b []byte) {
	r := reader{b: b[:CollisionTriSize]}
	t.Point1 = r.vec3()
	t.Normal = r.vec3()
	t.RotationFromXY = r.vec3s()
	r.raw(t.Padding[:])
	t.Point2Delta = r.vec2()
	t.Point3Delta = r.vec2()
	t.Tangent = r.vec2()
	t.Bitangent = r.vec2()
}

func (t *CollisionTri) Encode(b []byte) {
	w := writer{b: b[:CollisionTriSize]}
	w.vec3(t.Point1)
	w.vec3(t.Normal)
	w.vec3s(t.RotationFromXY)
	w.raw(t.Padding[:])
	w.vec2(t.Point2Delta)
	w.vec2(t.Point3Delta)
	w.vec2(t.Tangent)
	w.vec2(t.Bitangent)
}
