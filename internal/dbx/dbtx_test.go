package dbx

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(`CREATE TABLE refresh_tokens (token TEXT PRIMARY KEY, user_id TEXT NOT NULL)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO refresh_tokens VALUES ('old', 'u-1')`)
	require.NoError(t, err)
	return db
}

func tokens(t *testing.T, db *sql.DB) []string {
	t.Helper()
	rows, err := db.Query(`SELECT token FROM refresh_tokens ORDER BY token`)
	require.NoError(t, err)
	defer rows.Close()

	var out []string
	for rows.Next() {
		var tok string
		require.NoError(t, rows.Scan(&tok))
		out = append(out, tok)
	}
	require.NoError(t, rows.Err())
	return out
}

func rotate(ctx context.Context, tx DBTX) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE token = 'old'`); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, `INSERT INTO refresh_tokens VALUES ('new', 'u-1')`)
	return err
}

func TestWithTx_RotationCommits(t *testing.T) {
	db := setupDB(t)

	require.NoError(t, WithTx(context.Background(), db, nil, rotate))
	require.Equal(t, []string{"new"}, tokens(t, db))
}

func TestWithTx_FailedStepKeepsOldToken(t *testing.T) {
	db := setupDB(t)
	boom := errors.New("insert failed")

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		_, e := tx.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE token = 'old'`)
		require.NoError(t, e)
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.Equal(t, []string{"old"}, tokens(t, db))
}

func TestWithTx_PanicRollsBackAndPropagates(t *testing.T) {
	db := setupDB(t)

	require.PanicsWithValue(t, "kaput", func() {
		_ = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
			_, e := tx.ExecContext(ctx, `DELETE FROM refresh_tokens`)
			require.NoError(t, e)
			panic("kaput")
		})
	})
	require.Equal(t, []string{"old"}, tokens(t, db))
}

func TestWithTx_DriverErrors(t *testing.T) {
	boom := errors.New("connection reset")

	tests := []struct {
		name   string
		expect func(mock sqlmock.Sqlmock)
		fnErr  error
		want   string
	}{
		{
			name:   "begin",
			expect: func(mock sqlmock.Sqlmock) { mock.ExpectBegin().WillReturnError(boom) },
			want:   "begin transaction",
		},
		{
			name: "commit",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectCommit().WillReturnError(boom)
			},
			want: "commit transaction",
		},
		{
			name: "rollback is joined to the cause",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectRollback().WillReturnError(boom)
			},
			fnErr: errors.New("user not found"),
			want:  "rollback",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()
			tt.expect(mock)

			err = WithTx(context.Background(), db, nil, func(context.Context, DBTX) error { return tt.fnErr })
			require.ErrorIs(t, err, boom)
			require.ErrorContains(t, err, tt.want)
			if tt.fnErr != nil {
				require.ErrorIs(t, err, tt.fnErr)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
