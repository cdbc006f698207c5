// Package export turns entity selections into downloadable artifacts.
package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/goliatone/go-inkhub/components/datatable"
	"github.com/goliatone/go-inkhub/components/metrics"
)

// Format is an export file format.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatPDF  Format = "pdf"
)

var (
	// ErrComingSoon is returned for formats that only show a notice.
	ErrComingSoon = errors.New("export: format coming soon")
	// ErrUnsupportedFormat is returned for unknown formats.
	ErrUnsupportedFormat = errors.New("export: unsupported format")
)

// ComingSoonNotice is the user-visible message for ErrComingSoon.
const ComingSoonNotice = "PDF export is coming soon."

// ParseFormat reads a format name case-insensitively.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatJSON, FormatCSV, FormatPDF:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
}

// Request describes one export.
type Request struct {
	Resource string
	Format   Format
	Items    []datatable.Entity
	// Columns is the caller-selected field subset. Empty exports whole
	// entities as JSON and the id column as CSV.
	Columns []datatable.Column
	// Now stamps the filename, time.Now when zero.
	Now time.Time
}

// Artifact is a generated file.
type Artifact struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Body        []byte `json:"-"`
	Notice      string `json:"notice,omitempty"`
}

// Filename builds "<resource>-export-YYYY-MM-DD.<ext>".
func Filename(resource string, format Format, now time.Time) string {
	if resource == "" {
		resource = "data"
	}
	return fmt.Sprintf("%s-export-%s.%s", resource, now.Format(time.DateOnly), format)
}

// Export renders the request. PDF yields an artifact that only carries the
// notice, together with ErrComingSoon.
func Export(req Request) (Artifact, error) {
	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}
	art := Artifact{Filename: Filename(req.Resource, req.Format, now)}
	switch req.Format {
	case FormatJSON:
		body, err := JSON(req.Items, req.Columns)
		if err != nil {
			return Artifact{}, err
		}
		art.ContentType = "application/json"
		art.Body = body
	case FormatCSV:
		art.ContentType = "text/csv; charset=utf-8"
		art.Body = CSV(req.Items, req.Columns)
	case FormatPDF:
		art.ContentType = "application/pdf"
		art.Notice = ComingSoonNotice
		return art, ErrComingSoon
	default:
		return Artifact{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, req.Format)
	}
	return art, nil
}

// JSON encodes items restricted to columns, indented by two spaces.
func JSON(items []datatable.Entity, columns []datatable.Column) ([]byte, error) {
	rows := make([]map[string]any, len(items))
	for i, e := range items {
		if len(columns) == 0 {
			rows[i] = e
			continue
		}
		row := make(map[string]any, len(columns))
		for _, c := range columns {
			row[c.Key] = e.Get(c.Key)
		}
		rows[i] = row
	}
	body, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export: encode json: %w", err)
	}
	return body, nil
}

// CSV renders a header of column labels and one line per item. Every cell is
// double-quoted with inner quotes doubled. Objects render empty and arrays
// are joined with ", ".
func CSV(items []datatable.Entity, columns []datatable.Column) []byte {
	if len(columns) == 0 {
		columns = []datatable.Column{{Key: datatable.IDField}}
	}
	var buf bytes.Buffer
	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = quote(c.DisplayLabel())
	}
	buf.WriteString(strings.Join(header, ","))
	for _, e := range items {
		buf.WriteByte('\n')
		cells := make([]string, len(columns))
		for i, c := range columns {
			cells[i] = quote(Cell(e.Get(c.Key)))
		}
		buf.WriteString(strings.Join(cells, ","))
	}
	return buf.Bytes()
}

// Cell renders one value for CSV.
func Cell(v any) string {
	switch val := v.(type) {
	case nil, map[string]any, datatable.Entity:
		return ""
	case []string:
		return strings.Join(val, ", ")
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = Cell(item)
		}
		return strings.Join(parts, ", ")
	}
	return datatable.AsString(v)
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// KPISnapshot is the exported form of one metric.
type KPISnapshot struct {
	Resource   string            `json:"resource"`
	Metric     metrics.KPIMetric `json:"metric"`
	ExportedAt time.Time         `json:"exportedAt"`
}

// ExportKPI serializes one KPI metric snapshot as JSON.
func ExportKPI(resource string, metric metrics.KPIMetric, now time.Time) (Artifact, error) {
	if now.IsZero() {
		now = time.Now()
	}
	snap := KPISnapshot{Resource: resource, Metric: metric, ExportedAt: now.UTC()}
	if math.IsNaN(snap.Metric.Value) || math.IsInf(snap.Metric.Value, 0) {
		snap.Metric.Value = 0
	}
	body, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return Artifact{}, fmt.Errorf("export: encode kpi: %w", err)
	}
	key := metric.Key
	if key == "" {
		key = "kpi"
	}
	return Artifact{
		Filename:    fmt.Sprintf("%s-%s-%s.json", resource, key, now.Format(time.DateOnly)),
		ContentType: "application/json",
		Body:        body,
	}, nil
}
