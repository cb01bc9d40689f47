package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper function to create a mock DB and PostgresStore for testing
func newMockDBAndStore(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresStore) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err, "Failed to create sqlmock")

	store, err := NewPostgresStore(db, "kiosk-1")
	require.NoError(t, err)
	return db, mock, store
}

func TestNewPostgresStore_RequiresProfile(t *testing.T) {
	_, err := NewPostgresStore(nil, "")
	assert.ErrorIs(t, err, ErrEmptyProfile)
}

func TestPostgresStore_Language(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	query := regexp.QuoteMeta(`SELECT language FROM client.preferences WHERE profile = $1;`)
	mock.ExpectQuery(query).WithArgs("kiosk-1").
		WillReturnRows(sqlmock.NewRows([]string{"language"}).AddRow("ar"))

	lang, err := store.Language(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ar", lang)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Language_NoRow(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT language FROM client.preferences`)).
		WithArgs("kiosk-1").
		WillReturnError(sql.ErrNoRows)

	lang, err := store.Language(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "", lang)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SetLanguage(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO client.preferences (profile, language)`)).
		WithArgs("kiosk-1", "en").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.SetLanguage(context.Background(), "en"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_RecentlyViewed(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT recently_viewed FROM client.preferences WHERE profile = $1;`)).
		WithArgs("kiosk-1").
		WillReturnRows(sqlmock.NewRows([]string{"recently_viewed"}).AddRow("{p3,p2,p1}"))

	ids, err := store.RecentlyViewed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"p3", "p2", "p1"}, ids)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_PushRecentlyViewed(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT recently_viewed FROM client.preferences WHERE profile = $1 FOR UPDATE;`)).
		WithArgs("kiosk-1").
		WillReturnRows(sqlmock.NewRows([]string{"recently_viewed"}).AddRow("{p3,p2,p1}"))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO client.preferences (profile, recently_viewed)`)).
		WithArgs("kiosk-1", pq.Array([]string{"p2", "p3", "p1"})).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ids, err := store.PushRecentlyViewed(context.Background(), "p2")
	require.NoError(t, err)
	assert.Equal(t, []string{"p2", "p3", "p1"}, ids)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_PushRecentlyViewed_FirstEntry(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT recently_viewed FROM client.preferences`)).
		WithArgs("kiosk-1").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO client.preferences (profile, recently_viewed)`)).
		WithArgs("kiosk-1", pq.Array([]string{"p9"})).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ids, err := store.PushRecentlyViewed(context.Background(), "p9")
	require.NoError(t, err)
	assert.Equal(t, []string{"p9"}, ids)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_PushRecentlyViewed_WriteFails(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT recently_viewed FROM client.preferences`)).
		WithArgs("kiosk-1").
		WillReturnRows(sqlmock.NewRows([]string{"recently_viewed"}).AddRow("{}"))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO client.preferences (profile, recently_viewed)`)).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := store.PushRecentlyViewed(context.Background(), "p1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to write list")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_AuthTokenLifecycle(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO client.preferences (profile, auth_token)`)).
		WithArgs("kiosk-1", "tok").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT auth_token FROM client.preferences WHERE profile = $1;`)).
		WithArgs("kiosk-1").
		WillReturnRows(sqlmock.NewRows([]string{"auth_token"}).AddRow("tok"))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE client.preferences SET auth_token = ''`)).
		WithArgs("kiosk-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.SetAuthToken(ctx, "tok"))
	token, err := store.AuthToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok", token)
	require.NoError(t, store.ClearAuthToken(ctx))
	require.NoError(t, mock.ExpectationsWereMet())
}
