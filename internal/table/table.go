// Package table accumulates normalized observations column by column and
// encodes the merged table as Parquet.
package table

import (
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"

	"github.com/lox/asosingest/internal/models"
)

// Columns holds one slice per output column. Index i of every slice belongs
// to the same station.
type Columns struct {
	BranchName          []string
	Temp                []float64
	Rain                []float64
	Snow                []float64
	CloudCoverTotal     []int64
	CloudCoverLowMiddle []int64
	CloudLowest         []int64
	CloudShape          []string
	Humidity            []int64
	WindSpeed           []float64
	WindDirection       []string
	PressureLocal       []float64
	PressureSea         []float64
	PressureVapor       []float64
	DewPoint            []float64
}

// ColumnNames lists the output schema in column order.
var ColumnNames = []string{
	"branch_name",
	"temp",
	"rain",
	"snow",
	"cloud_cover_total",
	"cloud_cover_lowmiddle",
	"cloud_lowest",
	"cloud_shape",
	"humidity",
	"wind_speed",
	"wind_direction",
	"pressure_local",
	"pressure_sea",
	"pressure_vaper",
	"dew_point",
}

// Builder is the per-run accumulator. It is owned by a single run and is not
// safe for concurrent use.
type Builder struct {
	cols Columns
	n    int
}

// NewBuilder returns a builder with capacity for n rows.
func NewBuilder(n int) *Builder {
	return &Builder{cols: Columns{
		BranchName:          make([]string, 0, n),
		Temp:                make([]float64, 0, n),
		Rain:                make([]float64, 0, n),
		Snow:                make([]float64, 0, n),
		CloudCoverTotal:     make([]int64, 0, n),
		CloudCoverLowMiddle: make([]int64, 0, n),
		CloudLowest:         make([]int64, 0, n),
		CloudShape:          make([]string, 0, n),
		Humidity:            make([]int64, 0, n),
		WindSpeed:           make([]float64, 0, n),
		WindDirection:       make([]string, 0, n),
		PressureLocal:       make([]float64, 0, n),
		PressureSea:         make([]float64, 0, n),
		PressureVapor:       make([]float64, 0, n),
		DewPoint:            make([]float64, 0, n),
	}}
}

// Append adds one row across every column.
func (b *Builder) Append(obs models.Observation) {
	b.cols.BranchName = append(b.cols.BranchName, obs.BranchName)
	b.cols.Temp = append(b.cols.Temp, obs.Temp)
	b.cols.Rain = append(b.cols.Rain, obs.Rain)
	b.cols.Snow = append(b.cols.Snow, obs.Snow)
	b.cols.CloudCoverTotal = append(b.cols.CloudCoverTotal, obs.CloudCoverTotal)
	b.cols.CloudCoverLowMiddle = append(b.cols.CloudCoverLowMiddle, obs.CloudCoverLowMiddle)
	b.cols.CloudLowest = append(b.cols.CloudLowest, obs.CloudLowest)
	b.cols.CloudShape = append(b.cols.CloudShape, obs.CloudShape)
	b.cols.Humidity = append(b.cols.Humidity, obs.Humidity)
	b.cols.WindSpeed = append(b.cols.WindSpeed, obs.WindSpeed)
	b.cols.WindDirection = append(b.cols.WindDirection, obs.WindDirection)
	b.cols.PressureLocal = append(b.cols.PressureLocal, obs.PressureLocal)
	b.cols.PressureSea = append(b.cols.PressureSea, obs.PressureSea)
	b.cols.PressureVapor = append(b.cols.PressureVapor, obs.PressureVapor)
	b.cols.DewPoint = append(b.cols.DewPoint, obs.DewPoint)
	b.n++
}

// Len returns the number of rows appended so far.
func (b *Builder) Len() int {
	return b.n
}

// Table finalizes the accumulated columns. The builder must not be used
// afterwards.
func (b *Builder) Table() *Table {
	t := &Table{cols: b.cols, n: b.n}
	b.cols = Columns{}
	b.n = 0
	return t
}

// Table is an immutable, column-oriented merged observation table.
type Table struct {
	cols Columns
	n    int
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return t.n
}

// Row materializes row i.
func (t *Table) Row(i int) models.Observation {
	c := t.cols
	return models.Observation{
		BranchName:          c.BranchName[i],
		Temp:                c.Temp[i],
		Rain:                c.Rain[i],
		Snow:                c.Snow[i],
		CloudCoverTotal:     c.CloudCoverTotal[i],
		CloudCoverLowMiddle: c.CloudCoverLowMiddle[i],
		CloudLowest:         c.CloudLowest[i],
		CloudShape:          c.CloudShape[i],
		Humidity:            c.Humidity[i],
		WindSpeed:           c.WindSpeed[i],
		WindDirection:       c.WindDirection[i],
		PressureLocal:       c.PressureLocal[i],
		PressureSea:         c.PressureSea[i],
		PressureVapor:       c.PressureVapor[i],
		DewPoint:            c.DewPoint[i],
	}
}

// Rows materializes every row in order.
func (t *Table) Rows() []models.Observation {
	rows := make([]models.Observation, t.n)
	for i := range rows {
		rows[i] = t.Row(i)
	}
	return rows
}

// WriteParquet encodes the table as a single Parquet file.
func (t *Table) WriteParquet(w io.Writer) error {
	pw := parquet.NewGenericWriter[models.Observation](w)
	if _, err := pw.Write(t.Rows()); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return nil
}

// ReadParquet decodes a Parquet file written by WriteParquet.
func ReadParquet(r io.ReaderAt, size int64) (*Table, error) {
	rows, err := parquet.Read[models.Observation](r, size)
	if err != nil {
		return nil, fmt.Errorf("read parquet: %w", err)
	}
	b := NewBuilder(len(rows))
	for _, row := range rows {
		b.Append(row)
	}
	return b.Table(), nil
}
