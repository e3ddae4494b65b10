package models

import (
	"database/sql"
	"time"
)

type Station struct {
	ID   int
	Name string
}

// Observation is one normalized hourly row of the merged table. Column names
// match the historical output files, including the pressure_vaper spelling.
type Observation struct {
	BranchName          string  `parquet:"branch_name"`
	Temp                float64 `parquet:"temp"`                  // °C
	Rain                float64 `parquet:"rain"`                  // mm
	Snow                float64 `parquet:"snow"`                  // cm
	CloudCoverTotal     int64   `parquet:"cloud_cover_total"`     // 1~10
	CloudCoverLowMiddle int64   `parquet:"cloud_cover_lowmiddle"` // 1~10
	CloudLowest         int64   `parquet:"cloud_lowest"`          // 100m
	CloudShape          string  `parquet:"cloud_shape"`
	Humidity            int64   `parquet:"humidity"`   // %
	WindSpeed           float64 `parquet:"wind_speed"` // m/s
	WindDirection       string  `parquet:"wind_direction"`
	PressureLocal       float64 `parquet:"pressure_local"` // hPa
	PressureSea         float64 `parquet:"pressure_sea"`   // hPa
	PressureVapor       float64 `parquet:"pressure_vaper"` // hPa
	DewPoint            float64 `parquet:"dew_point"`      // °C
}

// RawPayload describes a stored station response without its body.
type RawPayload struct {
	ID             int64
	IngestRunID    int64
	StationID      int
	FetchedAt      time.Time
	CompressedSize int
}

// IngestRun is one audited execution of the job for a slot.
type IngestRun struct {
	ID              int64
	Date            string
	Hour            string
	ObjectKey       string
	StartedAt       time.Time
	FinishedAt      sql.NullTime
	StationsFetched int
	RowsWritten     int
	Outcome         string // "running", "written", "skipped", "failed"
	ErrorMessage    sql.NullString
}
