// Package report summarizes a loaded stagedef for humans and tools.
package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/stagedef/pkg/math"
	"github.com/Faultbox/stagedef/pkg/stagedef"
)

// Report is the serializable summary of one stagedef.
type Report struct {
	ID          string         `json:"id,omitempty" yaml:"id,omitempty"`
	Source      string         `json:"source,omitempty" yaml:"source,omitempty"`
	BlobBytes   int            `json:"blob_bytes" yaml:"blob_bytes"`
	NativeBytes uint64         `json:"native_bytes" yaml:"native_bytes"`
	Pools       map[string]int `json:"pools" yaml:"pools"`

	Start            *Placement        `json:"start,omitempty" yaml:"start,omitempty"`
	FalloutY         *Float            `json:"fallout_y,omitempty" yaml:"fallout_y,omitempty"`
	CollisionHeaders []CollisionHeader `json:"collision_headers" yaml:"collision_headers"`
	Goals            []Placement       `json:"goals,omitempty" yaml:"goals,omitempty"`
	Wormholes        []Wormhole        `json:"wormholes,omitempty" yaml:"wormholes,omitempty"`
	Models           []Model           `json:"models,omitempty" yaml:"models,omitempty"`
}

// Placement is a positioned object.
type Placement struct {
	Position Vec3     `json:"position" yaml:"position,flow"`
	Rotation [3]int16 `json:"rotation" yaml:"rotation,flow"`
}

// Grid summarizes a collision grid.
type Grid struct {
	Start          Vec2     `json:"start" yaml:"start,flow"`
	Step           Vec2     `json:"step" yaml:"step,flow"`
	StepCount      [2]int32 `json:"step_count" yaml:"step_count,flow"`
	NonEmptyCells  int      `json:"non_empty_cells" yaml:"non_empty_cells"`
	LongestCell    int      `json:"longest_cell" yaml:"longest_cell"`
	IndexedEntries int      `json:"indexed_entries" yaml:"indexed_entries"`
}

// CollisionHeader summarizes one collision mesh.
type CollisionHeader struct {
	Index         int    `json:"index" yaml:"index"`
	Origin        Vec3   `json:"origin" yaml:"origin,flow"`
	Triangles     int    `json:"triangles" yaml:"triangles"`
	Grid          *Grid  `json:"grid,omitempty" yaml:"grid,omitempty"`
	Animated      bool   `json:"animated" yaml:"animated"`
	AnimType      string `json:"anim_type" yaml:"anim_type"`
	PlaybackState string `json:"playback_state" yaml:"playback_state"`
	AnimGroupID   uint16 `json:"anim_group_id" yaml:"anim_group_id"`
	Goals         int    `json:"goals" yaml:"goals"`
	Bananas       int    `json:"bananas" yaml:"bananas"`
	Bumpers       int    `json:"bumpers" yaml:"bumpers"`
	Jamabars      int    `json:"jamabars" yaml:"jamabars"`
	Buttons       int    `json:"buttons" yaml:"buttons"`
	Wormholes     int    `json:"wormholes" yaml:"wormholes"`
}

// Wormhole is a wormhole and the index of its destination in the stage
// wormhole list (-1 when the destination is not listed).
type Wormhole struct {
	Position    Vec3 `json:"position" yaml:"position,flow"`
	Destination int  `json:"destination" yaml:"destination"`
}

// Model is a named model reference.
type Model struct {
	Kind string `json:"kind" yaml:"kind"`
	Name string `json:"name" yaml:"name"`
}

// Build summarizes sd. blobBytes is the size of the blob it was loaded from.
func Build(sd *stagedef.Stagedef, blobBytes int) *Report {
	sizes := sd.Arena.Sizes()
	r := &Report{
		BlobBytes:   blobBytes,
		NativeBytes: sizes.NativeBytes(),
		Pools:       make(map[string]int),
	}
	for _, name := range stagedef.PoolNames() {
		if n := sizes.Count(name); n > 0 {
			r.Pools[name] = n
		}
	}
	if sizes.TriIndices > 0 {
		r.Pools["tri_indices"] = sizes.TriIndices
	}
	if sizes.Names > 0 {
		r.Pools["names"] = sizes.Names
	}

	if s := sd.Start(); s != nil {
		r.Start = &Placement{Position: vec3(s.Position), Rotation: [3]int16{s.Rotation.X, s.Rotation.Y, s.Rotation.Z}}
	}
	if f := sd.Header.Fallout.Get(sd.Arena.Fallouts); f != nil {
		y := Float(f.Y)
		r.FalloutY = &y
	}

	headers := sd.CollisionHeaders()
	r.CollisionHeaders = make([]CollisionHeader, 0, len(headers))
	for i := range headers {
		r.CollisionHeaders = append(r.CollisionHeaders, collisionHeader(sd, i, &headers[i]))
	}

	for _, g := range sd.Goals() {
		r.Goals = append(r.Goals, Placement{
			Position: vec3(g.Position),
			Rotation: [3]int16{g.Rotation.X, g.Rotation.Y, g.Rotation.Z},
		})
	}

	wormholes := sd.Wormholes()
	for i := range wormholes {
		w := &wormholes[i]
		dest := -1
		if d := w.Destination.Index(); d >= 0 {
			if j := d - int(sd.Header.Wormholes.Start); j >= 0 && j < len(wormholes) {
				dest = j
			}
		}
		r.Wormholes = append(r.Wormholes, Wormhole{Position: vec3(w.Position), Destination: dest})
	}

	for _, m := range sd.BackgroundModels() {
		r.Models = append(r.Models, Model{Kind: "background", Name: sd.DisplayName(m.ModelName)})
	}
	for _, m := range sd.Header.ForegroundModels.Of(sd.Arena.ForegroundModels) {
		r.Models = append(r.Models, Model{Kind: "foreground", Name: sd.DisplayName(m.ModelName)})
	}
	for _, m := range sd.Header.ReflectiveStageModels.Of(sd.Arena.ReflectiveStageModels) {
		r.Models = append(r.Models, Model{Kind: "reflective", Name: sd.DisplayName(m.ModelName)})
	}
	for _, inst := range sd.Header.StageModelInstances.Of(sd.Arena.StageModelInstances) {
		if m := sd.StageModelOf(inst.StageModelA); m != nil {
			r.Models = append(r.Models, Model{Kind: "instance", Name: sd.DisplayName(m.ModelName)})
		}
	}
	return r
}

func collisionHeader(sd *stagedef.Stagedef, i int, h *stagedef.CollisionHeader) CollisionHeader {
	out := CollisionHeader{
		Index:         i,
		Origin:        vec3(h.Origin),
		Triangles:     h.Triangles.Len(),
		Animated:      !h.AnimHeader.IsNil(),
		AnimType:      h.AnimType().String(),
		PlaybackState: h.PlaybackState().String(),
		AnimGroupID:   h.AnimGroupID,
		Goals:         h.Goals.Len(),
		Bananas:       h.Bananas.Len(),
		Bumpers:       h.Bumpers.Len(),
		Jamabars:      h.Jamabars.Len(),
		Buttons:       h.Buttons.Len(),
		Wormholes:     h.Wormholes.Len(),
	}
	if h.Grid.Cells.Len() == 0 {
		return out
	}
	g := &Grid{
		Start:     Vec2{h.Grid.Start.X, h.Grid.Start.Y},
		Step:      Vec2{h.Grid.Step.X, h.Grid.Step.Y},
		StepCount: [2]int32{h.Grid.StepCount.X, h.Grid.StepCount.Y},
	}
	for _, cell := range h.Grid.Cells.Of(sd.Arena.GridCells) {
		n := cell.Len()
		if n == 0 {
			continue
		}
		g.NonEmptyCells++
		g.IndexedEntries += n
		if n > g.LongestCell {
			g.LongestCell = n
		}
	}
	out.Grid = g
	return out
}

func vec3(v math.Vec3) Vec3 { return Vec3{v.X, v.Y, v.Z} }

// Write encodes r to w as "json" or "yaml". An indent of 0 writes compact
// JSON; YAML always indents, using 2 spaces when indent is 0.
func Write(w io.Writer, r any, format string, indent int) error {
	switch strings.ToLower(format) {
	case "json":
		var (
			data []byte
			err  error
		)
		if indent > 0 {
			data, err = json.MarshalIndent(r, "", strings.Repeat(" ", indent))
		} else {
			data, err = json.Marshal(r)
		}
		if err != nil {
			return fmt.Errorf("encoding json: %w", err)
		}
		data = append(data, '\n')
		_, err = w.Write(data)
		return err
	case "yaml":
		if indent <= 0 {
			indent = 2
		}
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(indent)
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		_, err := w.Write(buf.Bytes())
		return err
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}
