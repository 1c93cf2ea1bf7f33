package stagedef

import (
	"fmt"
	"math"
	"sort"

	"github.com/Faultbox/stagedef/pkg/endian"
	"github.com/Faultbox/stagedef/pkg/stagedef/ppc"
)

// plan is the result of the sizing pass: every record the blob references,
// grouped per pool, with its final pool index.
type plan struct {
	tables   [kindCount]*regionTable
	names    *varTable
	cells    *varTable
	triCount map[uint32]uint32 // collision header offset -> triangle count
	tris     uint64            // triangles summed over collision headers
}

func newPlan() *plan {
	p := &plan{
		names:    newVarTable(1),
		cells:    newVarTable(ppc.TriIndexSize),
		triCount: make(map[uint32]uint32),
	}
	for k := kind(0); k < kindCount; k++ {
		p.tables[k] = newRegionTable(k.stride())
	}
	return p
}

// sizes reports the pool lengths the plan will allocate.
func (p *plan) sizes() Sizes {
	var s Sizes
	for k := kind(0); k < kindCount; k++ {
		s.Counts[k] = int(p.tables[k].total)
	}
	s.TriIndices = int(p.cells.total)
	s.Names = len(p.names.order)
	s.NameBytes = int(p.names.total)
	return s
}

// sizer walks the raw graph once, validating every reachable offset and
// recording it in the plan. Records with children are visited once per
// offset, so shared records and wormhole cycles terminate.
type sizer struct {
	res     *resolver
	plan    *plan
	visited [kindCount]map[uint32]struct{}

	// Cell lists and names are scanned after the walk, highest offset first,
	// so a scan stops where an already scanned item begins.
	grids     []gridScan
	cellStart map[uint32]cellRef
	nameStart map[uint32]string
}

// gridScan is a collision header whose triangle table is sized once every
// cell list has been scanned.
type gridScan struct {
	field     string
	off       uint32
	grid      ppc.Offset
	cells     uint32
	triangles ppc.Offset
}

// cellRef names the first grid cell seen pointing at a cell list.
type cellRef struct {
	grid int
	cell uint32
}

func newSizer(res *resolver) *sizer {
	s := &sizer{
		res:       res,
		plan:      newPlan(),
		cellStart: make(map[uint32]cellRef),
		nameStart: make(map[uint32]string),
	}
	for k := range s.visited {
		s.visited[k] = make(map[uint32]struct{})
	}
	return s
}

// mark records a visit and reports whether off is new for kind k.
func (s *sizer) mark(k kind, off uint32) bool {
	if _, ok := s.visited[k][off]; ok {
		return false
	}
	s.visited[k][off] = struct{}{}
	return true
}

// list validates and registers a list, then calls visit for each record not
// seen before. visit may be nil for records without offsets.
func (s *sizer) list(k kind, field string, l ppc.List, visit func(field string, off uint32) error) error {
	present, err := s.res.check(field, l.Offset, k.stride(), l.Count)
	if err != nil || !present {
		return err
	}
	s.plan.tables[k].add(uint32(l.Offset), l.Count)
	if visit == nil {
		return nil
	}
	for i := uint32(0); i < l.Count; i++ {
		off := uint32(l.Offset) + i*k.stride()
		if !s.mark(k, off) {
			continue
		}
		if err := visit(fmt.Sprintf("%s[%d]", field, i), off); err != nil {
			return err
		}
	}
	return nil
}

// single validates and registers one nullable record.
func (s *sizer) single(k kind, field string, off ppc.Offset, visit func(field string, off uint32) error) error {
	present, err := s.res.check(field, off, k.stride(), 1)
	if err != nil || !present {
		return err
	}
	s.plan.tables[k].add(uint32(off), 1)
	if visit == nil || !s.mark(k, uint32(off)) {
		return nil
	}
	return visit(field, uint32(off))
}

func (s *sizer) fileHeader(h *ppc.FileHeader) error {
	if err := s.list(kindCollisionHeader, "collision_headers", h.CollisionHeaders, s.collisionHeader); err != nil {
		return err
	}
	if err := s.scanCells(); err != nil {
		return err
	}
	for i := range s.grids {
		if err := s.triangles(&s.grids[i]); err != nil {
			return err
		}
	}
	if len(s.visited[kindCollisionHeader]) > 0 && s.plan.tris == 0 {
		return degenerate("collision_headers")
	}

	singles := []struct {
		k     kind
		field string
		off   ppc.Offset
		visit func(string, uint32) error
	}{
		{kindStart, "start", h.Start, nil},
		{kindFallout, "fallout", h.Fallout, nil},
		{kindFogAnimHeader, "fog_anim_header", h.FogAnimHeader, s.fogAnimHeader},
		{kindFog, "fog", h.Fog, nil},
		{kindMystery3, "mystery3", h.Mystery3, nil},
	}
	for _, e := range singles {
		if err := s.single(e.k, e.field, e.off, e.visit); err != nil {
			return err
		}
	}

	lists := []struct {
		k     kind
		field string
		l     ppc.List
		visit func(string, uint32) error
	}{
		{kindGoal, "goals", h.Goals, nil},
		{kindBumper, "bumpers", h.Bumpers, nil},
		{kindJamabar, "jamabars", h.Jamabars, nil},
		{kindBanana, "bananas", h.Bananas, nil},
		{kindConeCollision, "cone_collisions", h.ConeCollisions, nil},
		{kindSphereCollision, "sphere_collisions", h.SphereCollisions, nil},
		{kindCylinderCollision, "cylinder_collisions", h.CylinderCollisions, nil},
		{kindFalloutVolume, "fallout_volumes", h.FalloutVolumes, nil},
		{kindBackgroundModel, "background_models", h.BackgroundModels, s.backgroundModel},
		{kindForegroundModel, "foreground_models", h.ForegroundModels, s.foregroundModel},
		{kindReflectiveStageModel, "reflective_stage_models", h.ReflectiveStageModels, s.reflectiveStageModel},
		{kindStageModelInstance, "stage_model_instances", h.StageModelInstances, s.stageModelInstance},
		{kindStageModelPtrA, "stage_model_as", h.StageModelAs, s.stageModelPtrA},
		{kindStageModelPtrB, "stage_model_bs", h.StageModelBs, s.stageModelPtrB},
		{kindButton, "buttons", h.Buttons, nil},
		{kindWormhole, "wormholes", h.Wormholes, s.wormhole},
	}
	for _, e := range lists {
		if err := s.list(e.k, e.field, e.l, e.visit); err != nil {
			return err
		}
	}
	if err := s.scanNames(); err != nil {
		return err
	}

	s.finalize()
	return nil
}

func (s *sizer) finalize() {
	for _, t := range s.plan.tables {
		t.finalize()
	}
	s.plan.names.finalize()
	s.plan.cells.finalize()
}

func (s *sizer) collisionHeader(field string, off uint32) error {
	var h ppc.CollisionHeader
	h.Decode(s.res.bytes(off, ppc.CollisionHeaderSize))

	if err := s.single(kindAnimHeader, field+".anim_header", h.AnimHeader, s.animHeader); err != nil {
		return err
	}
	if err := s.grid(field, off, &h); err != nil {
		return err
	}

	lists := []struct {
		k     kind
		field string
		l     ppc.List
		visit func(string, uint32) error
	}{
		{kindGoal, "goals", h.Goals, nil},
		{kindBumper, "bumpers", h.Bumpers, nil},
		{kindJamabar, "jamabars", h.Jamabars, nil},
		{kindBanana, "bananas", h.Bananas, nil},
		{kindConeCollision, "cone_collisions", h.ConeCollisions, nil},
		{kindSphereCollision, "sphere_collisions", h.SphereCollisions, nil},
		{kindCylinderCollision, "cylinder_collisions", h.CylinderCollisions, nil},
		{kindFalloutVolume, "fallout_volumes", h.FalloutVolumes, nil},
		{kindReflectiveStageModel, "reflective_stage_models", h.ReflectiveStageModels, s.reflectiveStageModel},
		{kindStageModelInstance, "stage_model_instances", h.StageModelInstances, s.stageModelInstance},
		{kindStageModelPtrB, "stage_model_bs", h.StageModelBs, s.stageModelPtrB},
		{kindButton, "buttons", h.Buttons, nil},
		{kindWormhole, "wormholes", h.Wormholes, s.wormhole},
	}
	for _, e := range lists {
		if err := s.list(e.k, field+"."+e.field, e.l, e.visit); err != nil {
			return err
		}
	}

	if err := s.single(kindMystery5, field+".mystery5", h.Mystery5, nil); err != nil {
		return err
	}
	return s.single(kindTextureScroll, field+".texture_scroll", h.TextureScroll, nil)
}

// grid validates a collision grid and records the cell lists it points at.
func (s *sizer) grid(field string, off uint32, h *ppc.CollisionHeader) error {
	g := gridScan{field: field, off: off, grid: h.Grid, triangles: h.Triangles}
	if !h.Grid.IsNull() {
		gfield := field + ".grid"
		x, y := h.GridStepCount.X, h.GridStepCount.Y
		if x <= 0 || y <= 0 {
			return invalidGrid(gfield, x, y)
		}
		cells := int64(x) * int64(y)
		if cells > math.MaxUint32/ppc.GridCellSize {
			return invalidGrid(gfield, x, y)
		}
		if _, err := s.res.check(gfield, h.Grid, ppc.GridCellSize, uint32(cells)); err != nil {
			return err
		}
		s.plan.tables[kindGridCell].add(uint32(h.Grid), uint32(cells))
		g.cells = uint32(cells)

		for i := uint32(0); i < g.cells; i++ {
			p := s.cellPointer(&g, i)
			if p == 0 {
				continue
			}
			if _, ok := s.cellStart[p]; !ok {
				s.cellStart[p] = cellRef{grid: len(s.grids), cell: i}
			}
		}
	}
	s.grids = append(s.grids, g)
	return nil
}

func (s *sizer) cellPointer(g *gridScan, i uint32) uint32 {
	return endian.U32(s.res.bytes(uint32(g.grid)+i*ppc.GridCellSize, ppc.GridCellSize))
}

// scanCells reads every referenced cell list. Lists are scanned from the
// highest offset down; a scan that reaches the start of a list already
// scanned takes that list as its tail, so every entry is read once.
func (s *sizer) scanCells() error {
	starts := make([]uint32, 0, len(s.cellStart))
	for p := range s.cellStart {
		starts = append(starts, p)
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i] > starts[j] })

	// Lists only share a tail with lists of the same alignment.
	var next [ppc.TriIndexSize]uint32
	for _, p := range starts {
		q := next[p%ppc.TriIndexSize]
		limit := uint64(math.MaxUint64)
		if q != 0 {
			limit = uint64(q)
		}
		ref := s.cellStart[p]
		field := fmt.Sprintf("%s.grid.cells[%d]", s.grids[ref.grid].field, ref.cell)
		n, m, stop, err := s.res.triIndexList(field, ppc.Offset(p), limit)
		if err != nil {
			return err
		}
		it := varItem{length: n, max: m, end: stop}
		if q != 0 && uint64(stop) == limit {
			tail, _ := s.plan.cells.get(q)
			it.length += tail.length
			it.max = max(it.max, tail.max)
			it.end = tail.end
		}
		s.plan.cells.add(p, it)
		next[p%ppc.TriIndexSize] = p
	}
	return nil
}

// triangles sizes a collision header's triangle table by the highest index
// its grid references.
func (s *sizer) triangles(g *gridScan) error {
	maxIndex := int32(-1)
	for i := uint32(0); i < g.cells; i++ {
		p := s.cellPointer(g, i)
		if p == 0 {
			continue
		}
		it, _ := s.plan.cells.get(p)
		maxIndex = max(maxIndex, it.max)
	}

	if maxIndex < 0 {
		if !g.triangles.IsNull() || !g.grid.IsNull() {
			return degenerate(g.field + ".triangles")
		}
		return nil
	}
	if g.triangles.IsNull() {
		return indexOutOfRange(g.field+".triangles", uint32(maxIndex), 0)
	}

	count := uint32(maxIndex) + 1
	if _, err := s.res.check(g.field+".triangles", g.triangles, ppc.CollisionTriSize, count); err != nil {
		return err
	}
	s.plan.tables[kindCollisionTri].add(uint32(g.triangles), count)
	s.plan.triCount[g.off] = count
	s.plan.tris += uint64(count)
	return nil
}

func (s *sizer) animHeader(field string, off uint32) error {
	var h ppc.AnimHeader
	h.Decode(s.res.bytes(off, ppc.AnimHeaderSize))
	return s.tracks(field, h.Tracks[:])
}

func (s *sizer) bgAnimHeader(field string, off uint32) error {
	var h ppc.BgAnimHeader
	h.Decode(s.res.bytes(off, ppc.BgAnimHeaderSize))
	return s.tracks(field, h.Tracks[:])
}

func (s *sizer) bgAnim2Header(field string, off uint32) error {
	var h ppc.BgAnim2Header
	h.Decode(s.res.bytes(off, ppc.BgAnim2HeaderSize))
	return s.tracks(field, h.Tracks[:])
}

func (s *sizer) fogAnimHeader(field string, off uint32) error {
	var h ppc.FogAnimHeader
	h.Decode(s.res.bytes(off, ppc.FogAnimHeaderSize))
	return s.tracks(field, h.Tracks[:])
}

func (s *sizer) tracks(field string, tracks []ppc.List) error {
	for i, l := range tracks {
		if err := s.list(kindAnimKeyframe, fmt.Sprintf("%s.tracks[%d]", field, i), l, nil); err != nil {
			return err
		}
	}
	return nil
}

func (s *sizer) effectHeader(field string, off uint32) error {
	var h ppc.EffectHeader
	h.Decode(s.res.bytes(off, ppc.EffectHeaderSize))

	if err := s.list(kindEffect1, field+".effect1", h.Effect1, nil); err != nil {
		return err
	}
	if err := s.list(kindEffect2, field+".effect2", h.Effect2, nil); err != nil {
		return err
	}
	return s.single(kindTextureScroll, field+".texture_scroll", h.TextureScroll, nil)
}

func (s *sizer) backgroundModel(field string, off uint32) error {
	var m ppc.BackgroundModel
	m.Decode(s.res.bytes(off, ppc.BackgroundModelSize))

	if err := s.name(field+".model_name", m.ModelName); err != nil {
		return err
	}
	if err := s.single(kindBgAnimHeader, field+".bg_anim_header", m.BgAnimHeader, s.bgAnimHeader); err != nil {
		return err
	}
	if err := s.single(kindBgAnim2Header, field+".bg_anim2_header", m.BgAnim2Header, s.bgAnim2Header); err != nil {
		return err
	}
	return s.single(kindEffectHeader, field+".effect_header", m.EffectHeader, s.effectHeader)
}

func (s *sizer) foregroundModel(field string, off uint32) error {
	var m ppc.ForegroundModel
	m.Decode(s.res.bytes(off, ppc.ForegroundModelSize))

	if err := s.name(field+".model_name", m.ModelName); err != nil {
		return err
	}
	return s.single(kindBgAnim2Header, field+".bg_anim2_header", m.BgAnim2Header, s.bgAnim2Header)
}

func (s *sizer) reflectiveStageModel(field string, off uint32) error {
	var m ppc.ReflectiveStageModel
	m.Decode(s.res.bytes(off, ppc.ReflectiveStageModelSize))
	return s.name(field+".model_name", m.ModelName)
}

func (s *sizer) stageModelInstance(field string, off uint32) error {
	var m ppc.StageModelInstance
	m.Decode(s.res.bytes(off, ppc.StageModelInstanceSize))
	return s.single(kindStageModelPtrA, field+".stage_model_a", m.StageModelA, s.stageModelPtrA)
}

func (s *sizer) stageModelPtrA(field string, off uint32) error {
	var p ppc.StageModelPtrA
	p.Decode(s.res.bytes(off, ppc.StageModelPtrASize))
	return s.single(kindStageModel, field+".stage_model", p.StageModel, s.stageModel)
}

func (s *sizer) stageModelPtrB(field string, off uint32) error {
	var p ppc.StageModelPtrB
	p.Decode(s.res.bytes(off, ppc.StageModelPtrBSize))
	return s.single(kindStageModelPtrA, field+".stage_model_a", p.StageModelA, s.stageModelPtrA)
}

func (s *sizer) stageModel(field string, off uint32) error {
	var m ppc.StageModel
	m.Decode(s.res.bytes(off, ppc.StageModelSize))
	return s.name(field+".model_name", m.ModelName)
}

// wormhole follows a destination chain iteratively until it reaches the
// null offset or a wormhole that was already visited.
func (s *sizer) wormhole(field string, off uint32) error {
	for {
		var w ppc.Wormhole
		w.Decode(s.res.bytes(off, ppc.WormholeSize))
		if w.Destination.IsNull() {
			return nil
		}

		field = fmt.Sprintf("wormhole@0x%x.destination", off)
		if _, err := s.res.check(field, w.Destination, ppc.WormholeSize, 1); err != nil {
			return err
		}
		s.plan.tables[kindWormhole].add(uint32(w.Destination), 1)
		if !s.mark(kindWormhole, uint32(w.Destination)) {
			return nil
		}
		off = uint32(w.Destination)
	}
}

func (s *sizer) name(field string, off ppc.Offset) error {
	if off.IsNull() {
		return nil
	}
	if _, ok := s.nameStart[uint32(off)]; ok {
		return nil
	}
	if _, err := s.res.check(field, off, 1, 1); err != nil {
		return err
	}
	s.nameStart[uint32(off)] = field
	return nil
}

// scanNames reads every referenced model name, highest offset first. A name
// with no terminator before the next name's start shares that name's tail.
func (s *sizer) scanNames() error {
	for off := range s.nameStart {
		s.plan.names.add(off, varItem{})
	}
	var next uint32
	for _, off := range s.plan.names.starts() {
		limit := uint64(math.MaxUint64)
		if next != 0 {
			limit = uint64(next)
		}
		b, terminated, err := s.res.cString(s.nameStart[off], ppc.Offset(off), limit)
		if err != nil {
			return err
		}
		it := varItem{length: uint32(len(b)), end: off + uint32(len(b))}
		if !terminated {
			tail, _ := s.plan.names.get(next)
			it.length += tail.length
			it.end = tail.end
		}
		s.plan.names.add(off, it)
		next = off
	}
	return nil
}
