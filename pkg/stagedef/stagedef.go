package stagedef

import (
	"github.com/Faultbox/stagedef/pkg/encoding"
	"github.com/Faultbox/stagedef/pkg/math"
)

// CollisionHeaders returns the collision headers listed by the file header.
func (sd *Stagedef) CollisionHeaders() []CollisionHeader {
	return sd.Header.CollisionHeaders.Of(sd.Arena.CollisionHeaders)
}

// Goals returns the stage-wide goal list.
func (sd *Stagedef) Goals() []Goal {
	return sd.Header.Goals.Of(sd.Arena.Goals)
}

// Wormholes returns the stage-wide wormhole list.
func (sd *Stagedef) Wormholes() []Wormhole {
	return sd.Header.Wormholes.Of(sd.Arena.Wormholes)
}

// BackgroundModels returns the background model list.
func (sd *Stagedef) BackgroundModels() []BackgroundModel {
	return sd.Header.BackgroundModels.Of(sd.Arena.BackgroundModels)
}

// Start returns the start position, or nil if the stage has none.
func (sd *Stagedef) Start() *Start {
	return sd.Header.Start.Get(sd.Arena.Starts)
}

// Triangles returns the triangle table of collision header h.
func (sd *Stagedef) Triangles(h *CollisionHeader) []CollisionTri {
	return h.Triangles.Of(sd.Arena.CollisionTris)
}

// GridCell returns the triangle indices of cell (x, y) of h's grid, without
// the list terminator. ok is false when the cell is outside the grid or the
// header has no grid.
func (sd *Stagedef) GridCell(h *CollisionHeader, x, y int) (indices []uint16, ok bool) {
	i := h.Grid.CellIndex(x, y)
	if i < 0 || i >= h.Grid.Cells.Len() {
		return nil, false
	}
	cell := sd.Arena.GridCells[int(h.Grid.Cells.Start)+i]
	return cell.Of(sd.Arena.TriIndices), true
}

// TrianglesAt returns the triangles binned into the cell containing the
// world XZ position pos.
func (sd *Stagedef) TrianglesAt(h *CollisionHeader, pos math.Vec2) []*CollisionTri {
	x, y, ok := h.Grid.CellAt(pos)
	if !ok {
		return nil
	}
	indices, _ := sd.GridCell(h, x, y)
	tris := sd.Triangles(h)
	out := make([]*CollisionTri, 0, len(indices))
	for _, i := range indices {
		out = append(out, &tris[i])
	}
	return out
}

// WormholeDestination returns the wormhole w leads to, or nil.
func (sd *Stagedef) WormholeDestination(w *Wormhole) *Wormhole {
	return w.Destination.Get(sd.Arena.Wormholes)
}

// ModelName returns the raw bytes of a model name as a string.
func (sd *Stagedef) ModelName(r Ref[string]) (string, bool) {
	p := r.Get(sd.Arena.Names)
	if p == nil {
		return "", false
	}
	return *p, true
}

// DisplayName decodes a model name from Shift-JIS for display.
func (sd *Stagedef) DisplayName(r Ref[string]) string {
	name, _ := sd.ModelName(r)
	return encoding.DisplayString([]byte(name))
}

// StageModelOf follows a StageModelPtrA reference to its StageModel.
func (sd *Stagedef) StageModelOf(r Ref[StageModelPtrA]) *StageModel {
	a := r.Get(sd.Arena.StageModelPtrAs)
	if a == nil {
		return nil
	}
	return a.StageModel.Get(sd.Arena.StageModels)
}

// TriangleCount returns the number of triangles over all collision headers.
func (sd *Stagedef) TriangleCount() int {
	n := 0
	headers := sd.CollisionHeaders()
	for i := range headers {
		n += headers[i].Triangles.Len()
	}
	return n
}
