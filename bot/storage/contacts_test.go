package storage

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactsReplace(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM contacts WHERE user_id = $1")).
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO contacts (user_id, contact_type, contact_value)")).
		WithArgs(int64(42), "load", "Петренко, 0671234567").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO contacts (user_id, contact_type, contact_value)")).
		WithArgs(int64(42), "unload", "Коваль, 0509876543").
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	err := NewContacts(db).Replace(context.Background(), 42, []Contact{
		{Type: "load", Value: "Петренко, 0671234567"},
		{Type: "unload", Value: "Коваль, 0509876543"},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContactsReplaceEmptyClearsAll(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM contacts WHERE user_id = $1")).
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	require.NoError(t, NewContacts(db).Replace(context.Background(), 42, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContactsReplaceRollsBackOnInsertError(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM contacts WHERE user_id = $1")).
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO contacts (user_id, contact_type, contact_value)")).
		WithArgs(int64(42), "load", "x").
		WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	err := NewContacts(db).Replace(context.Background(), 42, []Contact{{Type: "load", Value: "x"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert contact")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContactsList(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT contact_type, contact_value")).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"contact_type", "contact_value"}).
			AddRow("unload", "Коваль").
			AddRow("load", "Петренко"))

	list, err := NewContacts(db).List(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, Contact{Type: "unload", Value: "Коваль"}, list[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}
