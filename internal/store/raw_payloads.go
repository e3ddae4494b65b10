package store

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"github.com/lox/asosingest/internal/models"
)

// StoreRawPayload stores a compressed station response. Returns the payload
// ID, or 0 if an identical payload was already stored for the same run.
func (s *Store) StoreRawPayload(runID int64, stationID int, payload []byte) (int64, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(payload); err != nil {
		return 0, fmt.Errorf("compress payload: %w", err)
	}
	if err := gz.Close(); err != nil {
		return 0, fmt.Errorf("close gzip: %w", err)
	}

	hash := sha256.Sum256(payload)

	result, err := s.db.Exec(`
		INSERT INTO raw_payloads
		(ingest_run_id, fetched_at, station_id, payload_compressed, payload_hash, schema_version)
		VALUES (?, ?, ?, ?, ?, 1)
		ON CONFLICT(ingest_run_id, payload_hash) DO NOTHING
	`, runID, time.Now().UTC(), stationID, buf.Bytes(), hex.EncodeToString(hash[:]))
	if err != nil {
		return 0, fmt.Errorf("insert raw payload: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}
	return result.LastInsertId()
}

// GetRawPayload retrieves and decompresses a stored payload by ID.
func (s *Store) GetRawPayload(id int64) ([]byte, error) {
	var compressed []byte
	err := s.db.QueryRow(`SELECT payload_compressed FROM raw_payloads WHERE id = ?`, id).
		Scan(&compressed)
	if err != nil {
		return nil, err
	}

	gz, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("create gzip reader: %w", err)
	}
	defer gz.Close()

	return io.ReadAll(gz)
}

// RawPayloads lists the payloads stored for a run in fetch order.
func (s *Store) RawPayloads(runID int64) ([]models.RawPayload, error) {
	rows, err := s.db.Query(`
		SELECT id, ingest_run_id, station_id, fetched_at, LENGTH(payload_compressed)
		FROM raw_payloads
		WHERE ingest_run_id = ?
		ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query raw payloads: %w", err)
	}
	defer rows.Close()

	var payloads []models.RawPayload
	for rows.Next() {
		var p models.RawPayload
		if err := rows.Scan(&p.ID, &p.IngestRunID, &p.StationID, &p.FetchedAt, &p.CompressedSize); err != nil {
			return nil, fmt.Errorf("scan raw payload: %w", err)
		}
		payloads = append(payloads, p)
	}
	return payloads, rows.Err()
}

// CountRawPayloads returns how many payloads were stored for a run.
func (s *Store) CountRawPayloads(runID int64) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM raw_payloads WHERE ingest_run_id = ?`, runID).Scan(&n)
	return n, err
}
