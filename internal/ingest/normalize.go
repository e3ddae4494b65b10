package ingest

import (
	"fmt"
	"strconv"

	"github.com/lox/asosingest/internal/models"
	"github.com/lox/asosingest/internal/stations"
)

// Source field names in the ASOS hourly record.
const (
	fieldTemp          = "ta"
	fieldRain          = "rn"
	fieldSnow          = "dsnw"
	fieldCloudTotal    = "dc10Tca"
	fieldCloudLowMid   = "dc10LmcsCa"
	fieldCloudLowest   = "lcsCh"
	fieldCloudShape    = "clfmAbbrCd"
	fieldHumidity      = "hm"
	fieldWindSpeed     = "ws"
	fieldWindDirection = "wd"
	fieldPressureLocal = "pa"
	fieldPressureSea   = "ps"
	fieldPressureVapor = "pv"
	fieldDewPoint      = "td"
)

// ParseInt converts a string field, treating the empty string as 0.
func ParseInt(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}

// ParseFloat converts a string field, treating the empty string as 0.0.
func ParseFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

// ParseWindDirection parses a bearing code and looks it up in the codebook.
// Empty and unknown codes are errors.
func ParseWindDirection(s string) (string, error) {
	code, err := strconv.Atoi(s)
	if err != nil {
		return "", fmt.Errorf("parse wind direction %q: %w", s, err)
	}
	return stations.WindDirection(code)
}

type recordReader struct {
	item Item
	err  error
}

func (r *recordReader) field(name string) string {
	if r.err != nil {
		return ""
	}
	v, ok := r.item[name]
	if !ok {
		r.err = fmt.Errorf("%w %q", ErrMissingField, name)
	}
	return v
}

func (r *recordReader) float(name string) float64 {
	s := r.field(name)
	if r.err != nil {
		return 0
	}
	v, err := ParseFloat(s)
	if err != nil {
		r.err = fmt.Errorf("field %s: %w", name, err)
	}
	return v
}

func (r *recordReader) int(name string) int64 {
	s := r.field(name)
	if r.err != nil {
		return 0
	}
	v, err := ParseInt(s)
	if err != nil {
		r.err = fmt.Errorf("field %s: %w", name, err)
	}
	return v
}

func (r *recordReader) windDirection(name string) string {
	s := r.field(name)
	if r.err != nil {
		return ""
	}
	v, err := ParseWindDirection(s)
	if err != nil {
		r.err = fmt.Errorf("field %s: %w", name, err)
	}
	return v
}

// Normalize converts one raw hourly record into a typed row labelled with the
// station's display name.
func Normalize(stationName string, item Item) (models.Observation, error) {
	r := &recordReader{item: item}
	obs := models.Observation{
		BranchName:          stationName,
		Temp:                r.float(fieldTemp),
		Rain:                r.float(fieldRain),
		Snow:                r.float(fieldSnow),
		CloudCoverTotal:     r.int(fieldCloudTotal),
		CloudCoverLowMiddle: r.int(fieldCloudLowMid),
		CloudLowest:         r.int(fieldCloudLowest),
		CloudShape:          r.field(fieldCloudShape),
		Humidity:            r.int(fieldHumidity),
		WindSpeed:           r.float(fieldWindSpeed),
		WindDirection:       r.windDirection(fieldWindDirection),
		PressureLocal:       r.float(fieldPressureLocal),
		PressureSea:         r.float(fieldPressureSea),
		PressureVapor:       r.float(fieldPressureVapor),
		DewPoint:            r.float(fieldDewPoint),
	}
	if r.err != nil {
		return models.Observation{}, r.err
	}
	return obs, nil
}
