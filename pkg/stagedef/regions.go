package stagedef

import (
	"sort"

	"github.com/Faultbox/stagedef/pkg/stagedef/ppc"
)

// kind identifies a fixed-stride record type and its arena pool.
type kind int

const (
	kindCollisionHeader kind = iota
	kindCollisionTri
	kindGridCell
	kindAnimHeader
	kindAnimKeyframe
	kindBgAnimHeader
	kindBgAnim2Header
	kindFogAnimHeader
	kindEffectHeader
	kindEffect1
	kindEffect2
	kindTextureScroll
	kindGoal
	kindBumper
	kindJamabar
	kindBanana
	kindConeCollision
	kindSphereCollision
	kindCylinderCollision
	kindFalloutVolume
	kindButton
	kindWormhole
	kindStart
	kindFallout
	kindFog
	kindMystery3
	kindMystery5
	kindBackgroundModel
	kindForegroundModel
	kindReflectiveStageModel
	kindStageModelInstance
	kindStageModel
	kindStageModelPtrA
	kindStageModelPtrB
	kindCount
)

var kindInfo = [kindCount]struct {
	name   string
	stride uint32
}{
	kindCollisionHeader:      {"collision_headers", ppc.CollisionHeaderSize},
	kindCollisionTri:         {"collision_tris", ppc.CollisionTriSize},
	kindGridCell:             {"grid_cells", ppc.GridCellSize},
	kindAnimHeader:           {"anim_headers", ppc.AnimHeaderSize},
	kindAnimKeyframe:         {"anim_keyframes", ppc.AnimKeyframeSize},
	kindBgAnimHeader:         {"bg_anim_headers", ppc.BgAnimHeaderSize},
	kindBgAnim2Header:        {"bg_anim2_headers", ppc.BgAnim2HeaderSize},
	kindFogAnimHeader:        {"fog_anim_headers", ppc.FogAnimHeaderSize},
	kindEffectHeader:         {"effect_headers", ppc.EffectHeaderSize},
	kindEffect1:              {"effect1s", ppc.Effect1Size},
	kindEffect2:              {"effect2s", ppc.Effect2Size},
	kindTextureScroll:        {"texture_scrolls", ppc.TextureScrollSize},
	kindGoal:                 {"goals", ppc.GoalSize},
	kindBumper:               {"bumpers", ppc.BumperSize},
	kindJamabar:              {"jamabars", ppc.JamabarSize},
	kindBanana:               {"bananas", ppc.BananaSize},
	kindConeCollision:        {"cone_collisions", ppc.ConeCollisionSize},
	kindSphereCollision:      {"sphere_collisions", ppc.SphereCollisionSize},
	kindCylinderCollision:    {"cylinder_collisions", ppc.CylinderCollisionSize},
	kindFalloutVolume:        {"fallout_volumes", ppc.FalloutVolumeSize},
	kindButton:               {"buttons", ppc.ButtonSize},
	kindWormhole:             {"wormholes", ppc.WormholeSize},
	kindStart:                {"starts", ppc.StartSize},
	kindFallout:              {"fallouts", ppc.FalloutSize},
	kindFog:                  {"fogs", ppc.FogSize},
	kindMystery3:             {"mystery3s", ppc.Mystery3Size},
	kindMystery5:             {"mystery5s", ppc.Mystery5Size},
	kindBackgroundModel:      {"background_models", ppc.BackgroundModelSize},
	kindForegroundModel:      {"foreground_models", ppc.ForegroundModelSize},
	kindReflectiveStageModel: {"reflective_stage_models", ppc.ReflectiveStageModelSize},
	kindStageModelInstance:   {"stage_model_instances", ppc.StageModelInstanceSize},
	kindStageModel:           {"stage_models", ppc.StageModelSize},
	kindStageModelPtrA:       {"stage_model_ptr_as", ppc.StageModelPtrASize},
	kindStageModelPtrB:       {"stage_model_ptr_bs", ppc.StageModelPtrBSize},
}

func (k kind) String() string { return kindInfo[k].name }

func (k kind) stride() uint32 { return kindInfo[k].stride }

// PoolNames returns the names of the fixed-stride pools in arena order.
func PoolNames() []string {
	names := make([]string, kindCount)
	for k := kind(0); k < kindCount; k++ {
		names[k] = k.String()
	}
	return names
}

// run is a contiguous block of same-stride records decoded into one
// contiguous block of a pool.
type run struct {
	off   uint32 // blob offset of the first record
	count uint32
	base  uint32 // pool index of the first record
}

// regionTable collects every byte range of one record kind referenced by the
// blob. Ranges that overlap or touch at a whole-record boundary are merged,
// so every distinct record offset gets exactly one pool slot and lists that
// share records share slots.
type regionTable struct {
	stride uint32
	ranges []run // registered (off, count); base unused until finalize
	runs   []run
	index  map[uint32]uint32 // record offset -> pool index
	total  uint32
}

func newRegionTable(stride uint32) *regionTable {
	return &regionTable{stride: stride}
}

// add registers count records starting at off. Callers validate bounds.
func (t *regionTable) add(off, count uint32) {
	if count == 0 {
		return
	}
	t.ranges = append(t.ranges, run{off: off, count: count})
}

// finalize merges the registered ranges and assigns pool indices.
func (t *regionTable) finalize() {
	stride := t.stride
	sort.Slice(t.ranges, func(i, j int) bool {
		ai, aj := t.ranges[i].off%stride, t.ranges[j].off%stride
		if ai != aj {
			return ai < aj
		}
		return t.ranges[i].off < t.ranges[j].off
	})

	t.runs = t.runs[:0]
	for _, r := range t.ranges {
		end := uint64(r.off) + uint64(r.count)*uint64(stride)
		if n := len(t.runs); n > 0 {
			cur := &t.runs[n-1]
			curEnd := uint64(cur.off) + uint64(cur.count)*uint64(stride)
			if cur.off%stride == r.off%stride && uint64(r.off) <= curEnd {
				if end > curEnd {
					cur.count = uint32((end - uint64(cur.off)) / uint64(stride))
				}
				continue
			}
		}
		t.runs = append(t.runs, r)
	}

	t.index = make(map[uint32]uint32)
	t.total = 0
	for i := range t.runs {
		r := &t.runs[i]
		r.base = t.total
		for j := uint32(0); j < r.count; j++ {
			t.index[r.off+j*stride] = r.base + j
		}
		t.total += r.count
	}
}

// lookup returns the pool index of the record at off.
func (t *regionTable) lookup(off uint32) (uint32, bool) {
	i, ok := t.index[off]
	return i, ok
}

// each calls fn for every record in pool order.
func (t *regionTable) each(fn func(off, index uint32) error) error {
	for _, r := range t.runs {
		for j := uint32(0); j < r.count; j++ {
			if err := fn(r.off+j*t.stride, r.base+j); err != nil {
				return err
			}
		}
	}
	return nil
}

// varTable assigns pool positions to variable-length items (model names and
// grid cell index lists) identified by their blob offset. Items that end at
// the same terminator are suffixes of one run, which is stored once.
type varTable struct {
	unit  uint32 // bytes per element
	items map[uint32]varItem
	order []uint32 // offsets sorted ascending after finalize
	runs  []varRun // sorted by lo after finalize
	total uint32
}

type varItem struct {
	length uint32
	max    int32  // highest value in a cell list, -1 when empty
	end    uint32 // blob offset of the terminator
	start  uint32
	index  uint32
	run    uint32
}

// varRun is the blob range [lo, end) shared by every item ending at end.
type varRun struct {
	lo, end uint32
	start   uint32
}

func (r varRun) count(unit uint32) uint32 { return (r.end - r.lo) / unit }

func newVarTable(unit uint32) *varTable {
	return &varTable{unit: unit, items: make(map[uint32]varItem)}
}

func (t *varTable) get(off uint32) (varItem, bool) {
	it, ok := t.items[off]
	return it, ok
}

func (t *varTable) add(off uint32, it varItem) {
	t.items[off] = it
}

// starts returns the registered offsets, highest first.
func (t *varTable) starts() []uint32 {
	out := make([]uint32, 0, len(t.items))
	for off := range t.items {
		out = append(out, off)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] > out[j] })
	return out
}

// finalize groups the items into runs and lays the runs out back to back in
// offset order.
func (t *varTable) finalize() {
	t.order = t.order[:0]
	for off := range t.items {
		t.order = append(t.order, off)
	}
	sort.Slice(t.order, func(i, j int) bool { return t.order[i] < t.order[j] })

	byEnd := make(map[uint32]uint32, len(t.order))
	t.runs = t.runs[:0]
	for _, off := range t.order {
		end := t.items[off].end
		if _, ok := byEnd[end]; !ok {
			byEnd[end] = uint32(len(t.runs))
			t.runs = append(t.runs, varRun{lo: off, end: end})
		}
	}

	t.total = 0
	for i := range t.runs {
		t.runs[i].start = t.total
		t.total += t.runs[i].count(t.unit)
	}
	for i, off := range t.order {
		it := t.items[off]
		it.run = byEnd[it.end]
		it.start = t.runs[it.run].start + (off-t.runs[it.run].lo)/t.unit
		it.index = uint32(i)
		t.items[off] = it
	}
}
