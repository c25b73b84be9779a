package store

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "nested", "supervision.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNew_IsReopenable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "supervision.db")
	s, err := New(path)
	require.NoError(t, err)
	require.NoError(t, s.SaveNote(context.Background(), "10001", "ligar segunda"))
	require.NoError(t, s.Close())

	s, err = New(path)
	require.NoError(t, err)
	defer s.Close()
	notes, err := s.ListNotes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"10001": "ligar segunda"}, notes)
}

func TestNotes_Upsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	notes, err := s.ListNotes(ctx)
	require.NoError(t, err)
	assert.Empty(t, notes)

	require.NoError(t, s.SaveNote(ctx, "1", "a"))
	require.NoError(t, s.SaveNote(ctx, "2", "b"))
	require.NoError(t, s.SaveNote(ctx, "1", "c"))

	notes, err = s.ListNotes(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"1": "c", "2": "b"}, notes)
}

func TestImportLog_Lifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.CreateImportLog(ctx, "vendas", "vendas.csv", "/data/vendas_bd.csv", "text/csv", 2048)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	logs, err := s.RecentImports(ctx, 0)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, ImportProcessing, logs[0].Status)
	assert.False(t, logs[0].CompletedAt.Valid)

	require.NoError(t, s.FinishImportLog(ctx, id, 120, ImportCompleted, ""))
	logs, err = s.RecentImports(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, ImportCompleted, logs[0].Status)
	assert.Equal(t, 120, logs[0].RowCount)
	assert.Equal(t, int64(2048), logs[0].FileSize)
	assert.True(t, logs[0].CompletedAt.Valid)
}

func TestAlertLog(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordAlert(ctx, AlertLog{RunID: "r1", Job: "monday-09", SectorID: "1414", UserID: "U1", RiskCount: 3, Status: AlertSent}))
	require.NoError(t, s.RecordAlert(ctx, AlertLog{RunID: "r1", Job: "monday-09", SectorID: "9540", Status: AlertFailed, ErrorMessage: "channel_not_found"}))

	logs, err := s.RecentAlerts(ctx, 10)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	for _, l := range logs {
		assert.NotEmpty(t, l.ID)
		assert.False(t, l.CreatedAt.IsZero())
	}
}

func TestStore_PropagatesDriverErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock DB: %v", err)
	}
	defer db.Close()

	s := NewFromDB(db)
	ctx := context.Background()
	boom := errors.New("disk I/O error")

	mock.ExpectExec(`INSERT INTO notes`).WillReturnError(boom)
	err = s.SaveNote(ctx, "1", "x")
	assert.ErrorIs(t, err, boom)

	mock.ExpectQuery(`SELECT reseller_id, note, updated_at FROM notes`).WillReturnError(boom)
	_, err = s.ListNotes(ctx)
	assert.ErrorIs(t, err, boom)

	mock.ExpectExec(`UPDATE import_logs SET`).
		WithArgs(0, ImportFailed, "bad header", sqlmock.AnyArg(), "abc").
		WillReturnError(boom)
	err = s.FinishImportLog(ctx, "abc", 0, ImportFailed, "bad header")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "failed to update import log"))

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("There were unfulfilled expectations: %s", err)
	}
}
