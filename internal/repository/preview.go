package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shubhgupta2005/SQL-QUERIES-ON-REAL-RAW-DATA/internal/gateway"
)

// PreviewLimit is the number of rows returned by a raw data preview.
const PreviewLimit = 100

// ErrSourceNotFound means the backing file or table does not exist.
var ErrSourceNotFound = errors.New("raw data source not found")

// Previewer returns the first rows of the raw dataset.
type Previewer interface {
	Preview(ctx context.Context) (*gateway.Result, error)
	// Source describes where rows come from, e.g. "table" or "file".
	Source() string
}

// TablePreview reads the live table through the gateway.
type TablePreview struct {
	gw gateway.Gateway
}

func NewTablePreview(gw gateway.Gateway) *TablePreview {
	return &TablePreview{gw: gw}
}

func (p *TablePreview) Source() string { return "table" }

func (p *TablePreview) Preview(ctx context.Context) (*gateway.Result, error) {
	res, err := p.gw.Query(ctx, RawPreview.SQL)
	if err != nil {
		if gateway.HasCode(err, gateway.CodeUndefinedTable) {
			return nil, fmt.Errorf("%w: %w", ErrSourceNotFound, err)
		}
		return nil, err
	}
	return res, nil
}

// FilePreview reads a CSV export of the raw dataset. The header row gives
// the column names; cells are typed as integer, float, null or string.
type FilePreview struct {
	path string
}

func NewFilePreview(path string) *FilePreview {
	return &FilePreview{path: path}
}

func (p *FilePreview) Source() string { return "file" }

func (p *FilePreview) Preview(ctx context.Context) (*gateway.Result, error) {
	f, err := os.Open(p.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, p.path)
		}
		return nil, fmt.Errorf("open raw data: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &gateway.Result{Rows: []gateway.Row{}}, nil
		}
		return nil, fmt.Errorf("read raw data header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	res := &gateway.Result{
		Columns: header,
		Types:   make([]string, len(header)),
		Rows:    make([]gateway.Row, 0, PreviewLimit),
	}

	for len(res.Rows) < PreviewLimit {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read raw data row %d: %w", len(res.Rows)+1, err)
		}

		row := make(gateway.Row, len(header))
		for i := range header {
			if i < len(rec) {
				row[i] = parseCell(rec[i])
			}
		}
		res.Rows = append(res.Rows, row)
	}
	return res, nil
}

func parseCell(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
