package raster

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrFormat is returned for malformed grid files.
var ErrFormat = errors.New("invalid ESRI ASCII grid")

// ReadASCIIFile reads an ESRI ASCII grid from path.
func ReadASCIIFile(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	g, err := ReadASCII(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// ReadASCII parses an ESRI ASCII grid. The header keys are ncols, nrows,
// xllcorner or xllcenter, yllcorner or yllcenter, cellsize and the optional
// nodata_value. Values follow row by row starting at the north edge.
func ReadASCII(r io.Reader) (*Grid, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	sc.Split(bufio.ScanWords)

	header := map[string]float64{}
	var first string
	for sc.Scan() {
		key := strings.ToLower(sc.Text())
		if _, err := strconv.ParseFloat(key, 64); err == nil {
			first = sc.Text()
			break
		}
		if !sc.Scan() {
			return nil, fmt.Errorf("%w: header key %q has no value", ErrFormat, key)
		}
		v, err := strconv.ParseFloat(sc.Text(), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: header %s: %v", ErrFormat, key, err)
		}
		header[key] = v
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	h, err := parseHeader(header)
	if err != nil {
		return nil, err
	}

	g := &Grid{Header: h, Values: make([]float64, 0, h.Rows*h.Cols)}
	if first != "" {
		v, _ := strconv.ParseFloat(first, 64)
		g.Values = append(g.Values, v)
	}
	for sc.Scan() {
		v, err := strconv.ParseFloat(sc.Text(), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: cell %d: %v", ErrFormat, len(g.Values), err)
		}
		g.Values = append(g.Values, v)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(g.Values) != h.Rows*h.Cols {
		return nil, fmt.Errorf("%w: expected %d cells, got %d", ErrFormat, h.Rows*h.Cols, len(g.Values))
	}
	return g, nil
}

func parseHeader(kv map[string]float64) (Header, error) {
	var h Header

	cols, okc := kv["ncols"]
	rows, okr := kv["nrows"]
	size, oks := kv["cellsize"]
	if !okc || !okr || !oks {
		return h, fmt.Errorf("%w: ncols, nrows and cellsize are required", ErrFormat)
	}
	if cols < 1 || rows < 1 || size <= 0 {
		return h, fmt.Errorf("%w: non-positive dimensions %vx%v, cellsize %v", ErrFormat, cols, rows, size)
	}
	h.Cols, h.Rows, h.CellSize = int(cols), int(rows), size

	switch {
	case has(kv, "xllcorner"):
		h.XLLCorner = kv["xllcorner"]
	case has(kv, "xllcenter"):
		h.XLLCorner = kv["xllcenter"] - size/2
	default:
		return h, fmt.Errorf("%w: missing xllcorner", ErrFormat)
	}
	switch {
	case has(kv, "yllcorner"):
		h.YLLCorner = kv["yllcorner"]
	case has(kv, "yllcenter"):
		h.YLLCorner = kv["yllcenter"] - size/2
	default:
		return h, fmt.Errorf("%w: missing yllcorner", ErrFormat)
	}

	h.NoData, h.HasNoData = kv["nodata_value"]
	return h, nil
}

func has(kv map[string]float64, key string) bool {
	_, ok := kv[key]
	return ok
}
