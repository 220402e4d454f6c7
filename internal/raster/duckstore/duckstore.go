// Package duckstore keeps raster layers in DuckDB tables.
package duckstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/joeblew999/plat-dtw/internal/raster"
)

var schema = []string{`
CREATE TABLE IF NOT EXISTS raster_layers (
	name       VARCHAR NOT NULL,
	role       VARCHAR NOT NULL,
	ncols      INTEGER NOT NULL,
	nrows      INTEGER NOT NULL,
	xllcorner  DOUBLE  NOT NULL,
	yllcorner  DOUBLE  NOT NULL,
	cellsize   DOUBLE  NOT NULL,
	nodata     DOUBLE,
	has_nodata BOOLEAN NOT NULL
)`, `
CREATE TABLE IF NOT EXISTS raster_cells (
	layer   VARCHAR NOT NULL,
	row_idx INTEGER NOT NULL,
	col_idx INTEGER NOT NULL,
	value   DOUBLE
)`}

// Store is a raster.Store backed by DuckDB. Nodata cells are stored as NULL.
type Store struct {
	db    *sql.DB
	owned bool
}

// New creates the tables on db if needed. The caller keeps ownership of db.
func New(ctx context.Context, db *sql.DB) (*Store, error) {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("create raster schema: %w", err)
		}
	}
	return &Store{db: db}, nil
}

// NewOwned is like New but Close also closes db.
func NewOwned(ctx context.Context, db *sql.DB) (*Store, error) {
	s, err := New(ctx, db)
	if err != nil {
		return nil, err
	}
	s.owned = true
	return s, nil
}

var _ raster.Store = (*Store)(nil)

func (s *Store) Add(ctx context.Context, name string, role raster.Role, g *raster.Grid) error {
	if name == "" {
		return fmt.Errorf("layer name is required")
	}
	if g == nil || len(g.Values) != g.Rows*g.Cols {
		return fmt.Errorf("layer %s: %w: cell count does not match header", name, raster.ErrFormat)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM raster_cells WHERE layer = ?`, name); err != nil {
		return fmt.Errorf("clear layer %s: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM raster_layers WHERE name = ?`, name); err != nil {
		return fmt.Errorf("clear layer %s: %w", name, err)
	}

	h := g.Header
	var nodata sql.NullFloat64
	if h.HasNoData {
		nodata = sql.NullFloat64{Float64: h.NoData, Valid: true}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO raster_layers (name, role, ncols, nrows, xllcorner, yllcorner, cellsize, nodata, has_nodata)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		name, string(role), h.Cols, h.Rows, h.XLLCorner, h.YLLCorner, h.CellSize, nodata, h.HasNoData,
	); err != nil {
		return fmt.Errorf("insert layer %s: %w", name, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO raster_cells (layer, row_idx, col_idx, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, v := range g.Values {
		var value sql.NullFloat64
		if !h.IsNoData(v) {
			value = sql.NullFloat64{Float64: v, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, name, i/h.Cols, i%h.Cols, value); err != nil {
			return fmt.Errorf("insert cell %d of %s: %w", i, name, err)
		}
	}
	return tx.Commit()
}

const layerQuery = `
SELECT l.name, l.role, l.ncols, l.nrows, l.xllcorner, l.yllcorner, l.cellsize, l.nodata, l.has_nodata,
       min(c.value), max(c.value), avg(c.value), median(c.value), count(c.value)
FROM raster_layers l
LEFT JOIN raster_cells c ON c.layer = l.name
`

const layerGroup = `
GROUP BY l.name, l.role, l.ncols, l.nrows, l.xllcorner, l.yllcorner, l.cellsize, l.nodata, l.has_nodata
ORDER BY l.name`

func (s *Store) Layers(ctx context.Context) ([]raster.Layer, error) {
	rows, err := s.db.QueryContext(ctx, layerQuery+layerGroup)
	if err != nil {
		return nil, fmt.Errorf("list layers: %w", err)
	}
	defer rows.Close()

	var out []raster.Layer
	for rows.Next() {
		l, err := scanLayer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *Store) Layer(ctx context.Context, name string) (raster.Layer, error) {
	rows, err := s.db.QueryContext(ctx, layerQuery+`WHERE l.name = ?`+layerGroup, name)
	if err != nil {
		return raster.Layer{}, fmt.Errorf("get layer %s: %w", name, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return raster.Layer{}, err
		}
		return raster.Layer{}, fmt.Errorf("%w: %s", raster.ErrLayerNotFound, name)
	}
	return scanLayer(rows)
}

func (s *Store) Value(ctx context.Context, name string, row, col int) (float64, bool, error) {
	var v sql.NullFloat64
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM raster_cells WHERE layer = ? AND row_idx = ? AND col_idx = ?`,
		name, row, col,
	).Scan(&v)
	if err == sql.ErrNoRows {
		var exists bool
		if err := s.db.QueryRowContext(ctx,
			`SELECT count(*) > 0 FROM raster_layers WHERE name = ?`, name,
		).Scan(&exists); err != nil {
			return 0, false, err
		}
		if !exists {
			return 0, false, fmt.Errorf("%w: %s", raster.ErrLayerNotFound, name)
		}
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read %s[%d,%d]: %w", name, row, col, err)
	}
	return v.Float64, v.Valid, nil
}

// Close closes the database when the store owns it.
func (s *Store) Close() error {
	if s.owned {
		return s.db.Close()
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLayer(row scanner) (raster.Layer, error) {
	var (
		l                      raster.Layer
		role                   string
		nodata                 sql.NullFloat64
		min, max, mean, median sql.NullFloat64
		count                  int64
	)
	if err := row.Scan(
		&l.Name, &role, &l.Header.Cols, &l.Header.Rows,
		&l.Header.XLLCorner, &l.Header.YLLCorner, &l.Header.CellSize,
		&nodata, &l.Header.HasNoData,
		&min, &max, &mean, &median, &count,
	); err != nil {
		return raster.Layer{}, fmt.Errorf("scan layer: %w", err)
	}
	l.Role = raster.Role(role)
	l.Header.NoData = nodata.Float64
	l.Stats = raster.Stats{
		Minimum: min.Float64,
		Maximum: max.Float64,
		Mean:    mean.Float64,
		Median:  median.Float64,
		Count:   int(count),
	}
	return l, nil
}
