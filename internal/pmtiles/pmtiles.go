// Package pmtiles writes PMTiles v3 archives with a single root directory.
//
// Format: https://github.com/protomaps/PMTiles/blob/main/spec/v3/spec.md
package pmtiles

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/paulmach/orb"
)

// Compression is the compression applied to directories, metadata or tiles.
type Compression uint8

const (
	NoCompression Compression = 1
	Gzip          Compression = 2
)

// TileType is the format of the tile contents.
type TileType uint8

const MVT TileType = 1

// HeaderLen is the size of the fixed binary header.
const HeaderLen = 127

// maxRootLen is the root directory budget: header plus root must fit in the
// first 16 KiB read by clients.
const maxRootLen = 16384 - HeaderLen

var (
	ErrNoTiles      = errors.New("pmtiles: no tiles to write")
	ErrRootTooLarge = errors.New("pmtiles: root directory exceeds 16 KiB, leaf directories are not supported")
	ErrBadHeader    = errors.New("pmtiles: invalid header")
)

// Header is the fixed-size PMTiles v3 header.
type Header struct {
	RootOffset          uint64
	RootLength          uint64
	MetadataOffset      uint64
	MetadataLength      uint64
	LeafDirectoryOffset uint64
	LeafDirectoryLength uint64
	TileDataOffset      uint64
	TileDataLength      uint64
	AddressedTiles      uint64
	TileEntries         uint64
	TileContents        uint64
	Clustered           bool
	InternalCompression Compression
	TileCompression     Compression
	TileType            TileType
	MinZoom             uint8
	MaxZoom             uint8
	MinLonE7            int32
	MinLatE7            int32
	MaxLonE7            int32
	MaxLatE7            int32
	CenterZoom          uint8
	CenterLonE7         int32
	CenterLatE7         int32
}

// Tile is one encoded tile.
type Tile struct {
	Z    uint8
	X, Y uint32
	Data []byte
}

// Archive is everything needed to write a PMTiles file.
type Archive struct {
	Tiles           []Tile
	TileCompression Compression
	Metadata        map[string]any
	MinZoom         uint8
	MaxZoom         uint8
	Bounds          orb.Bound
	Center          orb.Point
	CenterZoom      uint8
}

type entry struct {
	id     uint64
	offset uint64
	length uint32
}

// TileID converts z/x/y to the Hilbert tile ID used by PMTiles.
func TileID(z uint8, x, y uint32) uint64 {
	if z == 0 {
		return 0
	}
	id := (uint64(1)<<(2*uint64(z)) - 1) / 3
	n := uint64(z) - 1
	for s := uint32(1) << n; s > 0; s >>= 1 {
		rx := s & x
		ry := s & y
		id += uint64((3*rx)^ry) << n
		if ry == 0 {
			if rx != 0 {
				x = s - 1 - x
				y = s - 1 - y
			}
			x, y = y, x
		}
		n--
	}
	return id
}

// Write encodes the archive to w. Tiles are written in tile ID order.
func Write(w io.Writer, a Archive) error {
	if len(a.Tiles) == 0 {
		return ErrNoTiles
	}
	if a.TileCompression == 0 {
		a.TileCompression = Gzip
	}

	tiles := make([]Tile, len(a.Tiles))
	copy(tiles, a.Tiles)
	sort.Slice(tiles, func(i, j int) bool {
		return TileID(tiles[i].Z, tiles[i].X, tiles[i].Y) < TileID(tiles[j].Z, tiles[j].X, tiles[j].Y)
	})

	entries := make([]entry, len(tiles))
	var data bytes.Buffer
	for i, t := range tiles {
		entries[i] = entry{
			id:     TileID(t.Z, t.X, t.Y),
			offset: uint64(data.Len()),
			length: uint32(len(t.Data)),
		}
		data.Write(t.Data)
	}

	root, err := encodeDirectory(entries)
	if err != nil {
		return err
	}
	if len(root) > maxRootLen {
		return ErrRootTooLarge
	}

	meta, err := json.Marshal(a.Metadata)
	if err != nil {
		return fmt.Errorf("pmtiles: metadata: %w", err)
	}
	meta, err = gzipBytes(meta)
	if err != nil {
		return err
	}

	h := Header{
		RootOffset:          HeaderLen,
		RootLength:          uint64(len(root)),
		MetadataOffset:      HeaderLen + uint64(len(root)),
		MetadataLength:      uint64(len(meta)),
		TileDataOffset:      HeaderLen + uint64(len(root)) + uint64(len(meta)),
		TileDataLength:      uint64(data.Len()),
		AddressedTiles:      uint64(len(entries)),
		TileEntries:         uint64(len(entries)),
		TileContents:        uint64(len(entries)),
		Clustered:           true,
		InternalCompression: Gzip,
		TileCompression:     a.TileCompression,
		TileType:            MVT,
		MinZoom:             a.MinZoom,
		MaxZoom:             a.MaxZoom,
		MinLonE7:            e7(a.Bounds.Min[0]),
		MinLatE7:            e7(a.Bounds.Min[1]),
		MaxLonE7:            e7(a.Bounds.Max[0]),
		MaxLatE7:            e7(a.Bounds.Max[1]),
		CenterZoom:          a.CenterZoom,
		CenterLonE7:         e7(a.Center[0]),
		CenterLatE7:         e7(a.Center[1]),
	}

	for _, b := range [][]byte{h.encode(), root, meta, data.Bytes()} {
		if _, err := w.Write(b); err != nil {
			return err
		}
	}
	return nil
}

func e7(v float64) int32 { return int32(math.Round(v * 1e7)) }

func (h Header) encode() []byte {
	b := make([]byte, HeaderLen)
	copy(b[0:7], "PMTiles")
	b[7] = 3

	le := binary.LittleEndian
	for i, v := range []uint64{
		h.RootOffset, h.RootLength, h.MetadataOffset, h.MetadataLength,
		h.LeafDirectoryOffset, h.LeafDirectoryLength, h.TileDataOffset, h.TileDataLength,
		h.AddressedTiles, h.TileEntries, h.TileContents,
	} {
		le.PutUint64(b[8+8*i:], v)
	}
	if h.Clustered {
		b[96] = 1
	}
	b[97] = uint8(h.InternalCompression)
	b[98] = uint8(h.TileCompression)
	b[99] = uint8(h.TileType)
	b[100] = h.MinZoom
	b[101] = h.MaxZoom
	le.PutUint32(b[102:], uint32(h.MinLonE7))
	le.PutUint32(b[106:], uint32(h.MinLatE7))
	le.PutUint32(b[110:], uint32(h.MaxLonE7))
	le.PutUint32(b[114:], uint32(h.MaxLatE7))
	b[118] = h.CenterZoom
	le.PutUint32(b[119:], uint32(h.CenterLonE7))
	le.PutUint32(b[123:], uint32(h.CenterLatE7))
	return b
}

// ReadHeader decodes the header at the start of an archive.
func ReadHeader(b []byte) (Header, error) {
	if len(b) < HeaderLen || string(b[0:7]) != "PMTiles" {
		return Header{}, ErrBadHeader
	}
	if b[7] != 3 {
		return Header{}, fmt.Errorf("%w: version %d", ErrBadHeader, b[7])
	}

	le := binary.LittleEndian
	u := func(i int) uint64 { return le.Uint64(b[8+8*i:]) }
	i32 := func(off int) int32 { return int32(le.Uint32(b[off:])) }
	return Header{
		RootOffset:          u(0),
		RootLength:          u(1),
		MetadataOffset:      u(2),
		MetadataLength:      u(3),
		LeafDirectoryOffset: u(4),
		LeafDirectoryLength: u(5),
		TileDataOffset:      u(6),
		TileDataLength:      u(7),
		AddressedTiles:      u(8),
		TileEntries:         u(9),
		TileContents:        u(10),
		Clustered:           b[96] == 1,
		InternalCompression: Compression(b[97]),
		TileCompression:     Compression(b[98]),
		TileType:            TileType(b[99]),
		MinZoom:             b[100],
		MaxZoom:             b[101],
		MinLonE7:            i32(102),
		MinLatE7:            i32(106),
		MaxLonE7:            i32(110),
		MaxLatE7:            i32(114),
		CenterZoom:          b[118],
		CenterLonE7:         i32(119),
		CenterLatE7:         i32(123),
	}, nil
}

// encodeDirectory writes the gzipped varint directory: count, delta IDs,
// run lengths, lengths, then offsets (0 when contiguous with the previous
// entry, otherwise offset+1).
func encodeDirectory(entries []entry) ([]byte, error) {
	var raw []byte
	raw = binary.AppendUvarint(raw, uint64(len(entries)))

	var last uint64
	for _, e := range entries {
		raw = binary.AppendUvarint(raw, e.id-last)
		last = e.id
	}
	for range entries {
		raw = binary.AppendUvarint(raw, 1)
	}
	for _, e := range entries {
		raw = binary.AppendUvarint(raw, uint64(e.length))
	}
	for i, e := range entries {
		if i > 0 && e.offset == entries[i-1].offset+uint64(entries[i-1].length) {
			raw = binary.AppendUvarint(raw, 0)
		} else {
			raw = binary.AppendUvarint(raw, e.offset+1)
		}
	}
	return gzipBytes(raw)
}

func gzipBytes(b []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(b); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
