package stagedef

import "unsafe"

// Arena owns every converted record of one stagedef. Records link to each
// other through Ref and Span handles into these pools; the whole graph is
// released as a unit when the Arena is dropped.
type Arena struct {
	CollisionHeaders      []CollisionHeader
	CollisionTris         []CollisionTri
	GridCells             []Span[uint16]
	TriIndices            []uint16
	AnimHeaders           []AnimHeader
	AnimKeyframes         []AnimKeyframe
	BgAnimHeaders         []BgAnimHeader
	BgAnim2Headers        []BgAnim2Header
	FogAnimHeaders        []FogAnimHeader
	EffectHeaders         []EffectHeader
	Effect1s              []Effect1
	Effect2s              []Effect2
	TextureScrolls        []TextureScroll
	Goals                 []Goal
	Bumpers               []Bumper
	Jamabars              []Jamabar
	Bananas               []Banana
	ConeCollisions        []ConeCollision
	SphereCollisions      []SphereCollision
	CylinderCollisions    []CylinderCollision
	FalloutVolumes        []FalloutVolume
	Buttons               []Button
	Wormholes             []Wormhole
	Starts                []Start
	Fallouts              []Fallout
	Fogs                  []Fog
	Mystery3s             []Mystery3
	Mystery5s             []Mystery5
	BackgroundModels      []BackgroundModel
	ForegroundModels      []ForegroundModel
	ReflectiveStageModels []ReflectiveStageModel
	StageModelInstances   []StageModelInstance
	StageModels           []StageModel
	StageModelPtrAs       []StageModelPtrA
	StageModelPtrBs       []StageModelPtrB

	// Names holds model names as raw bytes without the NUL terminator.
	Names []string
}

// Sizes lists the element count of every arena pool.
type Sizes struct {
	Counts     [kindCount]int
	TriIndices int
	Names      int
	NameBytes  int
}

// Count returns the element count of the named pool, or -1 if unknown.
func (s Sizes) Count(pool string) int {
	for k := kind(0); k < kindCount; k++ {
		if k.String() == pool {
			return s.Counts[k]
		}
	}
	switch pool {
	case "tri_indices":
		return s.TriIndices
	case "names":
		return s.Names
	}
	return -1
}

// NativeBytes returns the memory held by the arena pools.
func (s Sizes) NativeBytes() uint64 {
	var n uint64
	for k := kind(0); k < kindCount; k++ {
		n += uint64(s.Counts[k]) * uint64(nativeSize[k])
	}
	n += uint64(s.TriIndices) * 2
	n += uint64(s.Names)*uint64(unsafe.Sizeof("")) + uint64(s.NameBytes)
	return n
}

var nativeSize = [kindCount]uintptr{
	kindCollisionHeader:      unsafe.Sizeof(CollisionHeader{}),
	kindCollisionTri:         unsafe.Sizeof(CollisionTri{}),
	kindGridCell:             unsafe.Sizeof(Span[uint16]{}),
	kindAnimHeader:           unsafe.Sizeof(AnimHeader{}),
	kindAnimKeyframe:         unsafe.Sizeof(AnimKeyframe{}),
	kindBgAnimHeader:         unsafe.Sizeof(BgAnimHeader{}),
	kindBgAnim2Header:        unsafe.Sizeof(BgAnim2Header{}),
	kindFogAnimHeader:        unsafe.Sizeof(FogAnimHeader{}),
	kindEffectHeader:         unsafe.Sizeof(EffectHeader{}),
	kindEffect1:              unsafe.Sizeof(Effect1{}),
	kindEffect2:              unsafe.Sizeof(Effect2{}),
	kindTextureScroll:        unsafe.Sizeof(TextureScroll{}),
	kindGoal:                 unsafe.Sizeof(Goal{}),
	kindBumper:               unsafe.Sizeof(Bumper{}),
	kindJamabar:              unsafe.Sizeof(Jamabar{}),
	kindBanana:               unsafe.Sizeof(Banana{}),
	kindConeCollision:        unsafe.Sizeof(ConeCollision{}),
	kindSphereCollision:      unsafe.Sizeof(SphereCollision{}),
	kindCylinderCollision:    unsafe.Sizeof(CylinderCollision{}),
	kindFalloutVolume:        unsafe.Sizeof(FalloutVolume{}),
	kindButton:               unsafe.Sizeof(Button{}),
	kindWormhole:             unsafe.Sizeof(Wormhole{}),
	kindStart:                unsafe.Sizeof(Start{}),
	kindFallout:              unsafe.Sizeof(Fallout{}),
	kindFog:                  unsafe.Sizeof(Fog{}),
	kindMystery3:             unsafe.Sizeof(Mystery3{}),
	kindMystery5:             unsafe.Sizeof(Mystery5{}),
	kindBackgroundModel:      unsafe.Sizeof(BackgroundModel{}),
	kindForegroundModel:      unsafe.Sizeof(ForegroundModel{}),
	kindReflectiveStageModel: unsafe.Sizeof(ReflectiveStageModel{}),
	kindStageModelInstance:   unsafe.Sizeof(StageModelInstance{}),
	kindStageModel:           unsafe.Sizeof(StageModel{}),
	kindStageModelPtrA:       unsafe.Sizeof(StageModelPtrA{}),
	kindStageModelPtrB:       unsafe.Sizeof(StageModelPtrB{}),
}

// Sizes returns the element count of every pool.
func (a *Arena) Sizes() Sizes {
	var s Sizes
	s.Counts = [kindCount]int{
		kindCollisionHeader:      len(a.CollisionHeaders),
		kindCollisionTri:         len(a.CollisionTris),
		kindGridCell:             len(a.GridCells),
		kindAnimHeader:           len(a.AnimHeaders),
		kindAnimKeyframe:         len(a.AnimKeyframes),
		kindBgAnimHeader:         len(a.BgAnimHeaders),
		kindBgAnim2Header:        len(a.BgAnim2Headers),
		kindFogAnimHeader:        len(a.FogAnimHeaders),
		kindEffectHeader:         len(a.EffectHeaders),
		kindEffect1:              len(a.Effect1s),
		kindEffect2:              len(a.Effect2s),
		kindTextureScroll:        len(a.TextureScrolls),
		kindGoal:                 len(a.Goals),
		kindBumper:               len(a.Bumpers),
		kindJamabar:              len(a.Jamabars),
		kindBanana:               len(a.Bananas),
		kindConeCollision:        len(a.ConeCollisions),
		kindSphereCollision:      len(a.SphereCollisions),
		kindCylinderCollision:    len(a.CylinderCollisions),
		kindFalloutVolume:        len(a.FalloutVolumes),
		kindButton:               len(a.Buttons),
		kindWormhole:             len(a.Wormholes),
		kindStart:                len(a.Starts),
		kindFallout:              len(a.Fallouts),
		kindFog:                  len(a.Fogs),
		kindMystery3:             len(a.Mystery3s),
		kindMystery5:             len(a.Mystery5s),
		kindBackgroundModel:      len(a.BackgroundModels),
		kindForegroundModel:      len(a.ForegroundModels),
		kindReflectiveStageModel: len(a.ReflectiveStageModels),
		kindStageModelInstance:   len(a.StageModelInstances),
		kindStageModel:           len(a.StageModels),
		kindStageModelPtrA:       len(a.StageModelPtrAs),
		kindStageModelPtrB:       len(a.StageModelPtrBs),
	}
	s.TriIndices = len(a.TriIndices)
	s.Names = len(a.Names)
	for _, n := range a.Names {
		s.NameBytes += len(n)
	}
	return s
}
