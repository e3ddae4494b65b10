package store

import (
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	_ "modernc.org/sqlite"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	store := New(db)
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return store
}

func TestMigrate_Idempotent(t *testing.T) {
	store := setupTestStore(t)

	if err := store.Migrate(); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
	version, err := store.MigrationVersion()
	if err != nil {
		t.Fatalf("MigrationVersion: %v", err)
	}
	if version != len(migrations) {
		t.Errorf("version = %d, want %d", version, len(migrations))
	}
}

func TestStartAndCompleteRun(t *testing.T) {
	store := setupTestStore(t)

	run, err := store.StartRun("20240315", "14", "asos/2024/03/15/14.parquet")
	if err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	if run.ID == 0 {
		t.Fatal("run.ID = 0, want assigned id")
	}
	if run.Outcome != OutcomeRunning {
		t.Errorf("Outcome = %q, want %q", run.Outcome, OutcomeRunning)
	}

	run.StationsFetched = 95
	run.RowsWritten = 95
	run.Outcome = OutcomeWritten
	if err := store.CompleteRun(run); err != nil {
		t.Fatalf("CompleteRun: %v", err)
	}

	runs, err := store.RecentRuns(10)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("len(runs) = %d, want 1", len(runs))
	}
	got := runs[0]
	if got.Date != "20240315" || got.Hour != "14" {
		t.Errorf("slot = %s/%s, want 20240315/14", got.Date, got.Hour)
	}
	if got.Outcome != OutcomeWritten {
		t.Errorf("Outcome = %q, want %q", got.Outcome, OutcomeWritten)
	}
	if got.RowsWritten != 95 || got.StationsFetched != 95 {
		t.Errorf("counters = %d/%d, want 95/95", got.StationsFetched, got.RowsWritten)
	}
	if !got.FinishedAt.Valid {
		t.Error("FinishedAt not set")
	}
	if got.ErrorMessage.Valid {
		t.Errorf("ErrorMessage = %q, want NULL", got.ErrorMessage.String)
	}
}

func TestCompleteRun_Nil(t *testing.T) {
	store := setupTestStore(t)
	if err := store.CompleteRun(nil); err != nil {
		t.Errorf("CompleteRun(nil) = %v, want nil", err)
	}
}

func TestRecentRuns_Order(t *testing.T) {
	store := setupTestStore(t)

	for _, hour := range []string{"01", "02", "03"} {
		if _, err := store.StartRun("20240315", hour, "k"); err != nil {
			t.Fatalf("StartRun: %v", err)
		}
	}

	runs, err := store.RecentRuns(2)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("len(runs) = %d, want 2", len(runs))
	}
	if runs[0].Hour != "03" || runs[1].Hour != "02" {
		t.Errorf("order = %s,%s, want 03,02", runs[0].Hour, runs[1].Hour)
	}
}

func TestRawPayloads(t *testing.T) {
	store := setupTestStore(t)

	run, err := store.StartRun("20240315", "14", "k")
	if err != nil {
		t.Fatalf("StartRun: %v", err)
	}

	payload := []byte(`{"response":{"header":{"resultCode":"00"}}}`)
	id, err := store.StoreRawPayload(run.ID, 108, payload)
	if err != nil {
		t.Fatalf("StoreRawPayload: %v", err)
	}
	if id == 0 {
		t.Fatal("id = 0 for first insert")
	}

	dup, err := store.StoreRawPayload(run.ID, 108, payload)
	if err != nil {
		t.Fatalf("StoreRawPayload duplicate: %v", err)
	}
	if dup != 0 {
		t.Errorf("duplicate id = %d, want 0", dup)
	}

	got, err := store.GetRawPayload(id)
	if err != nil {
		t.Fatalf("GetRawPayload: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("payload = %s, want %s", got, payload)
	}

	n, err := store.CountRawPayloads(run.ID)
	if err != nil {
		t.Fatalf("CountRawPayloads: %v", err)
	}
	if n != 1 {
		t.Errorf("CountRawPayloads = %d, want 1", n)
	}

	if _, err := store.StoreRawPayload(run.ID, 159, []byte(`{"other":true}`)); err != nil {
		t.Fatalf("StoreRawPayload: %v", err)
	}
	listed, err := store.RawPayloads(run.ID)
	if err != nil {
		t.Fatalf("RawPayloads: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("RawPayloads len = %d, want 2", len(listed))
	}
	if listed[0].ID != id || listed[0].StationID != 108 || listed[1].StationID != 159 {
		t.Errorf("RawPayloads = %+v", listed)
	}
	if listed[0].CompressedSize == 0 || listed[0].FetchedAt.IsZero() {
		t.Errorf("RawPayloads[0] = %+v, want size and fetch time", listed[0])
	}
}

func TestRawPayloads_SamePayloadInLaterRun(t *testing.T) {
	store := setupTestStore(t)
	payload := []byte(`{"response":{"header":{"resultCode":"00"}}}`)

	first, err := store.StartRun("20240315", "14", "k")
	if err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	if _, err := store.StoreRawPayload(first.ID, 108, payload); err != nil {
		t.Fatalf("StoreRawPayload first run: %v", err)
	}

	second, err := store.StartRun("20240315", "14", "k")
	if err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	id, err := store.StoreRawPayload(second.ID, 108, payload)
	if err != nil {
		t.Fatalf("StoreRawPayload second run: %v", err)
	}
	if id == 0 {
		t.Error("id = 0, want payload stored again for a new run")
	}

	for _, run := range []int64{first.ID, second.ID} {
		n, err := store.CountRawPayloads(run)
		if err != nil {
			t.Fatalf("CountRawPayloads: %v", err)
		}
		if n != 1 {
			t.Errorf("run %d payloads = %d, want 1", run, n)
		}
	}
}

func TestMigrate_KeepsPayloadsFromVersion2(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	store := New(db)

	all := migrations
	migrations = all[:2]
	err = store.Migrate()
	migrations = all
	if err != nil {
		t.Fatalf("migrate to v2: %v", err)
	}

	run, err := store.StartRun("20240315", "14", "k")
	if err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	if _, err := db.Exec(`
		INSERT INTO raw_payloads
		(id, ingest_run_id, fetched_at, station_id, payload_compressed, payload_hash)
		VALUES (7, ?, CURRENT_TIMESTAMP, 108, x'00', 'abc')
	`, run.ID); err != nil {
		t.Fatalf("seed v2 payload: %v", err)
	}

	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate to latest: %v", err)
	}

	n, err := store.CountRawPayloads(run.ID)
	if err != nil {
		t.Fatalf("CountRawPayloads: %v", err)
	}
	if n != 1 {
		t.Errorf("payloads after migration = %d, want 1", n)
	}

	later, err := store.StartRun("20240315", "14", "k")
	if err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	if _, err := db.Exec(`
		INSERT INTO raw_payloads
		(ingest_run_id, fetched_at, station_id, payload_compressed, payload_hash)
		VALUES (?, CURRENT_TIMESTAMP, 108, x'00', 'abc')
	`, later.ID); err != nil {
		t.Errorf("same hash in a later run: %v", err)
	}
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")

	st, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := st.StartRun("20240315", "14", "k"); err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	runs, err := reopened.RecentRuns(5)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("len(runs) after reopen = %d, want 1", len(runs))
	}
}

func TestOpen_UnwritablePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "ledger.db")

	st, err := Open(path)
	if err == nil {
		st.Close()
		t.Fatal("Open error = nil, want error for missing directory")
	}
	if !strings.Contains(err.Error(), "PRAGMA journal_mode") {
		t.Errorf("error = %v, want it to name the failing pragma", err)
	}
}
