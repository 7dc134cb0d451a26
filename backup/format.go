package backup

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/recstore/record"
)

// Suffix is appended to the store file name to form the blob name.
const Suffix = ".bak"

// Version is the frame format version written by Run.
const Version = 1

const (
	headerSize  = 4 + 1 + 1 + 1 + 1 + 4 + 8
	trailerSize = 8 + 8 + 4
)

var magic = [4]byte{'R', 'S', 'B', 'K'}

var le = binary.LittleEndian

var (
	// ErrInvalidFormat is returned when a blob is not a store backup.
	ErrInvalidFormat = errors.New("backup: invalid format")
	// ErrUnsupportedVersion is returned for frames newer than this package.
	ErrUnsupportedVersion = errors.New("backup: unsupported version")
	// ErrCorrupt is returned when the record stream is truncated or inconsistent.
	ErrCorrupt = errors.New("backup: corrupt record stream")
	// ErrStoreMismatch is returned when a backup does not fit the target store.
	ErrStoreMismatch = errors.New("backup: store mismatch")
)

// Compression selects the codec of the record stream.
type Compression uint8

const (
	// CompressionNone stores the record stream as is.
	CompressionNone Compression = 0
	// CompressionLZ4 uses the LZ4 frame format.
	CompressionLZ4 Compression = 1
	// CompressionZstd uses Zstandard.
	CompressionZstd Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("Compression(%d)", uint8(c))
	}
}

// ParseCompression parses "none", "lz4" or "zstd", ignoring case.
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZstd, nil
	default:
		return 0, fmt.Errorf("backup: unknown compression %q", s)
	}
}

// Header describes one store backup.
type Header struct {
	Version     uint8
	Kind        record.Kind
	Compression Compression
	RecordSize  uint32
	HighID      uint64
}

// MarshalBinary encodes h.
func (h Header) MarshalBinary() ([]byte, error) {
	buf := make([]byte, headerSize)
	copy(buf, magic[:])
	buf[4] = h.Version
	buf[5] = byte(h.Kind)
	buf[6] = byte(h.Compression)
	le.PutUint32(buf[8:], h.RecordSize)
	le.PutUint64(buf[12:], h.HighID)
	return buf, nil
}

// UnmarshalBinary decodes h and validates magic and version.
func (h *Header) UnmarshalBinary(buf []byte) error {
	if len(buf) < headerSize || [4]byte(buf[:4]) != magic {
		return ErrInvalidFormat
	}
	if buf[4] == 0 || buf[4] > Version {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, buf[4])
	}
	*h = Header{
		Version:     buf[4],
		Kind:        record.Kind(buf[5]),
		Compression: Compression(buf[6]),
		RecordSize:  le.Uint32(buf[8:]),
		HighID:      le.Uint64(buf[12:]),
	}
	if h.RecordSize == 0 {
		return fmt.Errorf("%w: zero record size", ErrInvalidFormat)
	}
	return nil
}

// ReadHeader reads and validates a frame header.
func ReadHeader(r io.Reader) (Header, error) {
	buf := make([]byte, headerSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Header{}, ErrInvalidFormat
		}
		return Header{}, err
	}
	var h Header
	err := h.UnmarshalBinary(buf)
	return h, err
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// newCompressor wraps w; closing the result flushes the codec but leaves w open.
func newCompressor(w io.Writer, c Compression, level zstd.EncoderLevel) (io.WriteCloser, error) {
	switch c {
	case CompressionNone:
		return nopWriteCloser{w}, nil
	case CompressionLZ4:
		return lz4.NewWriter(w), nil
	case CompressionZstd:
		return zstd.NewWriter(w, zstd.WithEncoderLevel(level))
	default:
		return nil, fmt.Errorf("%w: compression %s", ErrInvalidFormat, c)
	}
}

type zstdReadCloser struct{ *zstd.Decoder }

func (z zstdReadCloser) Close() error {
	z.Decoder.Close()
	return nil
}

func newDecompressor(r io.Reader, c Compression) (io.ReadCloser, error) {
	switch c {
	case CompressionNone:
		return io.NopCloser(r), nil
	case CompressionLZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	case CompressionZstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return zstdReadCloser{dec}, nil
	default:
		return nil, fmt.Errorf("%w: compression %s", ErrInvalidFormat, c)
	}
}
