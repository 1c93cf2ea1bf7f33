// Package server exposes the stagedef loader over HTTP.
package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"github.com/labstack/echo/v5"
	"go.uber.org/zap"

	"github.com/Faultbox/stagedef/internal/report"
	"github.com/Faultbox/stagedef/pkg/stagedef"
)

// Config configures a Server.
type Config struct {
	Loader       *stagedef.Loader
	Logger       *zap.Logger
	MaxBodyBytes int64 // 0 = no limit
}

// Server serves the stagedef API.
type Server struct {
	store   *Store
	loader  *stagedef.Loader
	log     *zap.Logger
	maxBody int64
	clock   func() time.Time
}

// New returns a Server backed by store. A nil store gets a fresh one.
func New(store *Store, cfg Config) *Server {
	if store == nil {
		store = NewStore()
	}
	if cfg.Loader == nil {
		cfg.Loader = stagedef.NewLoader()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Server{
		store:   store,
		loader:  cfg.Loader,
		log:     cfg.Logger,
		maxBody: cfg.MaxBodyBytes,
		clock:   time.Now,
	}
}

// Register mounts the API routes on e.
func (s *Server) Register(e *echo.Echo) {
	e.POST("/v1/stagedefs", s.handleCreate)
	e.GET("/v1/stagedefs", s.handleList)
	e.GET("/v1/stagedefs/:id", s.handleGet)
	e.DELETE("/v1/stagedefs/:id", s.handleDelete)
	e.GET("/v1/stagedefs/:id/headers/:header/cells/:x/:y", s.handleCell)
}

// ErrorBody is the payload of every error response.
type ErrorBody struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Offset  *int64 `json:"offset,omitempty"`
}

func writeError(c *echo.Context, status int, errType, msg string) error {
	return c.JSON(status, map[string]any{"error": ErrorBody{Type: errType, Message: msg}})
}

func writeNotFound(c *echo.Context, msg string) error {
	return writeError(c, http.StatusNotFound, "not_found", msg)
}

func writeBadRequest(c *echo.Context, msg string) error {
	return writeError(c, http.StatusBadRequest, "invalid_request", msg)
}

func writeLoadError(c *echo.Context, err error) error {
	body := ErrorBody{Type: stagedef.ErrorKind(err), Message: err.Error()}
	var de *stagedef.DecodeError
	if errors.As(err, &de) {
		body.Field = de.Field
		if de.Offset != 0 {
			off := int64(de.Offset)
			body.Offset = &off
		}
	}
	return c.JSON(http.StatusUnprocessableEntity, map[string]any{"error": body})
}

func (s *Server) readBody(c *echo.Context) ([]byte, error) {
	body := io.Reader(c.Request().Body)
	if s.maxBody > 0 {
		body = io.LimitReader(body, s.maxBody+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	if s.maxBody > 0 && int64(len(data)) > s.maxBody {
		return nil, fmt.Errorf("%w: request body exceeds %d bytes", stagedef.ErrTooLarge, s.maxBody)
	}
	return data, nil
}

func (s *Server) handleCreate(c *echo.Context) error {
	data, err := s.readBody(c)
	if err != nil {
		if errors.Is(err, stagedef.ErrTooLarge) {
			return writeError(c, http.StatusRequestEntityTooLarge, stagedef.ErrorKind(err), err.Error())
		}
		return writeBadRequest(c, err.Error())
	}
	if len(data) == 0 {
		return writeBadRequest(c, "request body must be a stagedef blob")
	}

	sd, err := s.loader.Load(data)
	if err != nil {
		if errors.Is(err, stagedef.ErrTooLarge) {
			return writeError(c, http.StatusRequestEntityTooLarge, stagedef.ErrorKind(err), err.Error())
		}
		s.log.Info("rejected stagedef", zap.Int("bytes", len(data)), zap.Error(err))
		return writeLoadError(c, err)
	}

	rep := report.Build(sd, len(data))
	id := s.store.Put(sd, rep, s.clock())
	body, err := json.Marshal(rep)
	if err != nil {
		s.store.Delete(id)
		s.log.Error("encoding report", zap.String("id", id), zap.Error(err))
		return writeError(c, http.StatusInternalServerError, "internal", "encoding report failed")
	}
	s.log.Info("stored stagedef",
		zap.String("id", id),
		zap.Int("bytes", len(data)),
		zap.Int("triangles", sd.TriangleCount()),
	)
	return c.JSONBlob(http.StatusCreated, body)
}

func (s *Server) handleList(c *echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"stagedefs": s.store.List()})
}

func (s *Server) handleGet(c *echo.Context) error {
	e, ok := s.store.get(c.Param("id"))
	if !ok {
		return writeNotFound(c, "stagedef not found")
	}
	return c.JSON(http.StatusOK, e.report)
}

// DeleteResponse confirms a deletion.
type DeleteResponse struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

func (s *Server) handleDelete(c *echo.Context) error {
	id := c.Param("id")
	if !s.store.Delete(id) {
		return writeNotFound(c, "stagedef not found")
	}
	s.log.Info("deleted stagedef", zap.String("id", id))
	return c.JSON(http.StatusOK, DeleteResponse{ID: id, Deleted: true})
}

// CellResponse lists the triangles binned into one grid cell.
type CellResponse struct {
	Header    int              `json:"header"`
	X         int              `json:"x"`
	Y         int              `json:"y"`
	Indices   []uint16         `json:"indices"`
	Triangles [][3]report.Vec3 `json:"triangles"`
	Normals   []report.Vec3    `json:"normals"`
}

func (s *Server) handleCell(c *echo.Context) error {
	e, ok := s.store.get(c.Param("id"))
	if !ok {
		return writeNotFound(c, "stagedef not found")
	}

	var params [3]int
	for i, name := range []string{"header", "x", "y"} {
		v, err := strconv.Atoi(c.Param(name))
		if err != nil {
			return writeBadRequest(c, fmt.Sprintf("%s must be an integer", name))
		}
		params[i] = v
	}
	hi, x, y := params[0], params[1], params[2]

	headers := e.sd.CollisionHeaders()
	if hi < 0 || hi >= len(headers) {
		return writeNotFound(c, fmt.Sprintf("collision header %d not found", hi))
	}
	h := &headers[hi]
	indices, ok := e.sd.GridCell(h, x, y)
	if !ok {
		return writeNotFound(c, fmt.Sprintf("cell (%d, %d) is outside the grid", x, y))
	}

	tris := e.sd.Triangles(h)
	resp := CellResponse{
		Header:    hi,
		X:         x,
		Y:         y,
		Indices:   append([]uint16{}, indices...),
		Triangles: make([][3]report.Vec3, 0, len(indices)),
		Normals:   make([]report.Vec3, 0, len(indices)),
	}
	for _, i := range indices {
		v := tris[i].Vertices()
		resp.Triangles = append(resp.Triangles, [3]report.Vec3{
			{v[0].X, v[0].Y, v[0].Z},
			{v[1].X, v[1].Y, v[1].Z},
			{v[2].X, v[2].Y, v[2].Z},
		})
		n := tris[i].FaceNormal()
		resp.Normals = append(resp.Normals, report.Vec3{n.X, n.Y, n.Z})
	}
	return c.JSON(http.StatusOK, resp)
}
