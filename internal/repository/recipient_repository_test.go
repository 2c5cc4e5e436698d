package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"botpanel/internal/models"
)

func newRecipientRepo(t *testing.T) (RecipientRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRecipientRepository(db), mock
}

func TestCountEligible(t *testing.T) {
	repo, mock := newRecipientRepo(t)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM recipients WHERE NOT is_blocked").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(120))

	count, err := repo.CountEligible(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 120, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEligibleWindow(t *testing.T) {
	repo, mock := newRecipientRepo(t)
	rows := sqlmock.NewRows([]string{"telegram_id"}).
		AddRow(int64(1001)).
		AddRow(int64(1002)).
		AddRow(int64(1003))
	mock.ExpectQuery("SELECT telegram_id").
		WithArgs(50, 100).
		WillReturnRows(rows)

	ids, err := repo.EligibleWindow(context.Background(), 100, 50)

	require.NoError(t, err)
	assert.Equal(t, []int64{1001, 1002, 1003}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEligibleWindowEmpty(t *testing.T) {
	repo, mock := newRecipientRepo(t)
	mock.ExpectQuery("SELECT telegram_id").
		WithArgs(50, 500).
		WillReturnRows(sqlmock.NewRows([]string{"telegram_id"}))

	ids, err := repo.EligibleWindow(context.Background(), 500, 50)

	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestEligibleWindowRejectsNegativeOffset(t *testing.T) {
	repo, _ := newRecipientRepo(t)

	_, err := repo.EligibleWindow(context.Background(), -1, 50)

	assert.Error(t, err)
}

func TestUpsertRecipient(t *testing.T) {
	repo, mock := newRecipientRepo(t)
	now := time.Now()
	username := "gopher"
	mock.ExpectQuery("INSERT INTO recipients").
		WithArgs(int64(555), &username, nil, false).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(12), now))

	recipient := &models.Recipient{TelegramID: 555, Username: &username}
	err := repo.Upsert(context.Background(), recipient)

	require.NoError(t, err)
	assert.Equal(t, int64(12), recipient.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetBlockedNotFound(t *testing.T) {
	repo, mock := newRecipientRepo(t)
	mock.ExpectExec("UPDATE recipients SET is_blocked").
		WithArgs(int64(555), true).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetBlocked(context.Background(), 555, true)

	assert.ErrorIs(t, err, ErrNotFound)
}
