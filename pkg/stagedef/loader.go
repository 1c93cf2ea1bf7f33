// Package stagedef converts Super Monkey Ball 2 stage definitions from their
// big-endian, offset-linked console format into an owned, host-native graph.
//
// Conversion runs in two passes. The first walks every reachable record,
// validates its offset and discovers the sizes the format does not store
// (notably the triangle table, sized by the highest index in the collision
// grid). The second allocates each arena pool once and converts every record
// exactly once, relocating offsets into Ref and Span handles.
package stagedef

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/stagedef/internal/blobfile"
	"github.com/Faultbox/stagedef/pkg/endian"
	"github.com/Faultbox/stagedef/pkg/stagedef/ppc"
)

// Stagedef is a converted stage definition. It holds no reference to the
// blob it was loaded from.
type Stagedef struct {
	Header FileHeader
	Arena  *Arena
}

// Loader converts stagedef blobs. A Loader has no mutable state and may be
// used from several goroutines at once.
type Loader struct {
	log     *zap.Logger
	maxSize int
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger used for load diagnostics.
func WithLogger(log *zap.Logger) Option {
	return func(l *Loader) {
		if log != nil {
			l.log = log
		}
	}
}

// WithMaxSize rejects blobs larger than n bytes. Zero disables the limit.
func WithMaxSize(n int) Option {
	return func(l *Loader) {
		l.maxSize = n
	}
}

// NewLoader creates a Loader. By default it logs nothing and accepts blobs of
// any size.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{log: zap.NewNop()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

var defaultLoader = NewLoader()

// Load converts a decompressed stagedef blob.
func Load(data []byte) (*Stagedef, error) {
	return defaultLoader.Load(data)
}

// LoadFile converts the decompressed stagedef stored at path.
func LoadFile(path string) (*Stagedef, error) {
	return defaultLoader.LoadFile(path)
}

// Load converts a decompressed stagedef blob. It returns either a fully
// converted Stagedef or an error wrapping one of the Err* sentinels; a
// partially converted graph is never returned.
func (l *Loader) Load(data []byte) (*Stagedef, error) {
	start := time.Now()

	if l.maxSize > 0 && len(data) > l.maxSize {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrTooLarge, len(data), l.maxSize)
	}
	if len(data) < 8 {
		return nil, truncated("magic", 0, 8)
	}
	if a, b := endian.U32(data), endian.U32(data[4:]); a != ppc.MagicA || b != ppc.MagicB {
		return nil, &DecodeError{Kind: ErrBadMagic, Field: fmt.Sprintf("magic %08x %08x", a, b)}
	}
	if len(data) < ppc.FileHeaderSize {
		return nil, truncated("file_header", 0, ppc.FileHeaderSize)
	}

	var raw ppc.FileHeader
	raw.Decode(data)

	res := &resolver{data: data}
	s := newSizer(res)
	if err := s.fileHeader(&raw); err != nil {
		l.log.Debug("stagedef sizing failed", zap.Error(err))
		return nil, err
	}
	sizes := s.plan.sizes()
	l.log.Debug("stagedef sized",
		zap.Int("blob_bytes", len(data)),
		zap.Int("collision_headers", sizes.Counts[kindCollisionHeader]),
		zap.Int("triangles", sizes.Counts[kindCollisionTri]),
		zap.Int("tri_indices", sizes.TriIndices),
		zap.Uint64("native_bytes", sizes.NativeBytes()),
	)

	b := &builder{res: res, plan: s.plan}
	sd, err := b.build(&raw)
	if err != nil {
		l.log.Debug("stagedef build failed", zap.Error(err))
		return nil, err
	}

	l.log.Debug("stagedef loaded", zap.Duration("elapsed", time.Since(start)))
	return sd, nil
}

// LoadFile converts the decompressed stagedef stored at path. The file is
// mapped only for the duration of the conversion.
func (l *Loader) LoadFile(path string) (*Stagedef, error) {
	f, err := blobfile.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening stagedef: %w", err)
	}
	defer f.Close()

	sd, err := l.Load(f.Bytes())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sd, nil
}
