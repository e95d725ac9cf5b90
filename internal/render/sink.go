package render

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// ErrSinkClosed is returned for frames written after end of stream.
var ErrSinkClosed = errors.New("frame sink closed")

// ErrOutOfOrder is returned when a frame timestamp does not increase.
var ErrOutOfOrder = errors.New("frame timestamp not increasing")

type encodeFunc func(io.Writer, image.Image) error

var encoders = map[string]encodeFunc{
	"png": png.Encode,
	"bmp": bmp.Encode,
	"tiff": func(w io.Writer, m image.Image) error {
		return tiff.Encode(w, m, &tiff.Options{Compression: tiff.Deflate})
	},
}

// DirSink writes each captured frame to its own numbered image file and a
// timestamp index on close. It implements game.FrameSink.
type DirSink struct {
	dir    string
	ext    string
	encode encodeFunc

	frames  int
	lastPTS time.Duration
	index   strings.Builder
	closed  bool
}

// NewDirSink creates dir if needed. format is png, bmp or tiff.
func NewDirSink(dir, format string) (*DirSink, error) {
	format = strings.ToLower(format)
	if format == "" {
		format = "png"
	}
	enc, ok := encoders[format]
	if !ok {
		return nil, fmt.Errorf("unsupported frame format %q", format)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create capture dir: %w", err)
	}
	return &DirSink{dir: dir, ext: format, encode: enc, lastPTS: -1}, nil
}

// WriteFrame encodes one frame.
func (s *DirSink) WriteFrame(frame *image.RGBA, pts time.Duration) error {
	if s.closed {
		return ErrSinkClosed
	}
	if pts <= s.lastPTS {
		return fmt.Errorf("%w: %v after %v", ErrOutOfOrder, pts, s.lastPTS)
	}
	name := fmt.Sprintf("frame_%05d.%s", s.frames, s.ext)
	f, err := os.Create(filepath.Join(s.dir, name)) // #nosec G304 -- path built from our own dir
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if err := s.encode(f, frame); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	fmt.Fprintf(&s.index, "%s %d\n", name, pts.Microseconds())
	s.frames++
	s.lastPTS = pts
	return nil
}

// Close writes the index of frame timestamps and ends the stream.
func (s *DirSink) Close() error {
	if s.closed {
		return ErrSinkClosed
	}
	s.closed = true
	path := filepath.Join(s.dir, "frames.txt")
	if err := os.WriteFile(path, []byte(s.index.String()), 0o600); err != nil {
		return fmt.Errorf("write frame index: %w", err)
	}
	return nil
}

// Frames returns how many frames were written.
func (s *DirSink) Frames() int { return s.frames }
