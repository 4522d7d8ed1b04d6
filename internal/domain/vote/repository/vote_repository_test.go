package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 conn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestVoteReplace(t *testing.T) {
	t.Run("Vote deletes then inserts in one transaction", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewVoteRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "post_like"`).
			WithArgs("post-1", "person-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`INSERT INTO "post_like"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		mock.ExpectCommit()

		err := repo.Replace(context.Background(), "post-1", "person-1", 1, true)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Retraction only deletes", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewVoteRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "post_like"`).
			WithArgs("post-1", "person-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.Replace(context.Background(), "post-1", "person-1", 0, false)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Insert failure rolls the delete back", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewVoteRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "post_like"`).
			WithArgs("post-1", "person-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`INSERT INTO "post_like"`).
			WillReturnError(errors.New("constraint violation"))
		mock.ExpectRollback()

		err := repo.Replace(context.Background(), "post-1", "person-1", -1, true)

		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
