// Package slot identifies the (date, hour) unit of work and derives its
// deterministic object key.
package slot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidDate = errors.New("invalid date")
	ErrInvalidHour = errors.New("invalid hour")
)

// Slot is a validated (date, hour) pair. Date is YYYYMMDD and Hour is always
// two digits.
type Slot struct {
	Date string
	Hour string
}

// New validates a date and hour as supplied by configuration. One-digit hours
// are zero-padded.
func New(date, hour string) (Slot, error) {
	date = strings.TrimSpace(date)
	hour = strings.TrimSpace(hour)

	if len(date) != 8 {
		return Slot{}, fmt.Errorf("%w %q: want YYYYMMDD", ErrInvalidDate, date)
	}
	if _, err := time.Parse("20060102", date); err != nil {
		return Slot{}, fmt.Errorf("%w %q: %v", ErrInvalidDate, date, err)
	}

	if len(hour) == 0 || len(hour) > 2 {
		return Slot{}, fmt.Errorf("%w %q: want 0-23", ErrInvalidHour, hour)
	}
	h, err := strconv.Atoi(hour)
	if err != nil || h < 0 || h > 23 || strings.HasPrefix(hour, "-") || strings.HasPrefix(hour, "+") {
		return Slot{}, fmt.Errorf("%w %q: want 0-23", ErrInvalidHour, hour)
	}

	return Slot{Date: date, Hour: fmt.Sprintf("%02d", h)}, nil
}

// Key returns root/YYYY/MM/DD/HH.parquet.
func (s Slot) Key(root string) string {
	return root + "/" + s.Date[0:4] + "/" + s.Date[4:6] + "/" + s.Date[6:8] + "/" + s.Hour + ".parquet"
}

func (s Slot) String() string {
	return s.Date + "T" + s.Hour
}

// DeriveKey validates date and hour and returns the slot key under root.
func DeriveKey(root, date, hour string) (string, error) {
	s, err := New(date, hour)
	if err != nil {
		return "", err
	}
	return s.Key(root), nil
}
