// Package cloudlog reads and writes the binary point-cloud log format used to
// record and replay marker-cloud sessions: a sequence of frames,
// each a little-endian uint32 timestamp in milliseconds, a little-endian
// uint32 point count, and that many little-endian float32 (x, y, z) triples.
package cloudlog

import (
	"bufio"
	"context"
	"encoding/binary"
	"io"
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/IMRCLab/librigidbodytracker/pointcloud"
)

// Frame is one recorded observation.
type Frame struct {
	TimestampMS uint32
	Cloud       pointcloud.Cloud
}

// Writer appends frames to the binary log format.
type Writer struct {
	w io.Writer
}

// NewWriter wraps w. Callers own closing the underlying stream.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteFrame appends one frame.
func (w *Writer) WriteFrame(timestampMS uint32, cloud pointcloud.Cloud) error {
	var header [8]byte
	binary.LittleEndian.PutUint32(header[0:4], timestampMS)
	binary.LittleEndian.PutUint32(header[4:8], uint32(len(cloud)))
	if _, err := w.w.Write(header[:]); err != nil {
		return errors.Wrap(err, "writing frame header")
	}
	buf := make([]byte, 12*len(cloud))
	for i, p := range cloud {
		off := i * 12
		binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(p.X))
		binary.LittleEndian.PutUint32(buf[off+4:off+8], math.Float32bits(p.Y))
		binary.LittleEndian.PutUint32(buf[off+8:off+12], math.Float32bits(p.Z))
	}
	if _, err := w.w.Write(buf); err != nil {
		return errors.Wrap(err, "writing frame points")
	}
	return nil
}

// Reader reads frames from the binary log format in order.
type Reader struct {
	r io.Reader
}

// NewReader wraps r in a bufio.Reader, so callers need not add their own
// buffering for file access.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// ReadFrame reads the next frame. It returns io.EOF (unwrapped) when the
// stream ends exactly on a frame boundary; any other truncation is reported
// as a wrapped error.
func (r *Reader) ReadFrame() (Frame, error) {
	var header [8]byte
	if _, err := io.ReadFull(r.r, header[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return Frame{}, io.EOF
		}
		return Frame{}, errors.Wrap(err, "reading frame header")
	}
	timestampMS := binary.LittleEndian.Uint32(header[0:4])
	count := binary.LittleEndian.Uint32(header[4:8])

	buf := make([]byte, 12*count)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return Frame{}, errors.Wrap(err, "reading frame points")
	}
	cloud := make(pointcloud.Cloud, count)
	for i := range cloud {
		off := i * 12
		cloud[i] = pointcloud.Point{
			X: math.Float32frombits(binary.LittleEndian.Uint32(buf[off : off+4])),
			Y: math.Float32frombits(binary.LittleEndian.Uint32(buf[off+4 : off+8])),
			Z: math.Float32frombits(binary.LittleEndian.Uint32(buf[off+8 : off+12])),
		}
	}
	return Frame{TimestampMS: timestampMS, Cloud: cloud}, nil
}

// FrameHandler processes one replayed frame. Returning an error stops Play.
type FrameHandler func(ctx context.Context, stamp time.Time, cloud pointcloud.Cloud) error

// Play reads every remaining frame from r in order and invokes handle for
// each, converting each frame's millisecond timestamp to a time.Time relative
// to epoch. Play stops at the first error from either the reader or handle,
// or when ctx is cancelled.
func Play(ctx context.Context, r *Reader, handle FrameHandler) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		frame, err := r.ReadFrame()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		stamp := time.UnixMilli(int64(frame.TimestampMS))
		if err := handle(ctx, stamp, frame.Cloud); err != nil {
			return err
		}
	}
}
