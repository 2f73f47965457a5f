package reminder

import (
	"context"
	"database/sql"
	"log"
	"regexp"
	"testing"
	"time"

	"clinic-booking/internal/mock"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type emptyWriter struct{}

func (e emptyWriter) Write(p []byte) (n int, err error) {
	return 0, nil
}

var logger = log.New(&emptyWriter{}, "", log.LstdFlags)

type recordingSender struct {
	sent    []string
	failFor string
}

func (r *recordingSender) Send(to string, subject string, htmlBody string) error {
	if to == r.failFor {
		return sql.ErrConnDone
	}
	r.sent = append(r.sent, to)
	return nil
}

func reminderRows(emails ...string) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "uuid", "name", "email", "date", "start_time"})
	for i, email := range emails {
		rows.AddRow(int64(i+1), uuid.New().String(), "Jane Doe", email, "2026-09-02", "10:00:00")
	}
	return rows
}

func newTestScanner(dbConn mock.Connection, sender *recordingSender) *Scanner {
	scanner := NewScanner(logger, dbConn, sender)
	scanner.now = func() time.Time {
		return time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	}
	return scanner
}

func TestSweepSendsAndMarksReminders(t *testing.T) {
	dbConn := mock.MustCreateConnectionMock()
	sender := &recordingSender{}
	scanner := newTestScanner(dbConn, sender)

	dbConn.SQLMock.ExpectQuery(regexp.QuoteMeta(listDueRemindersQuery)).
		WithArgs(
			time.Date(2026, 9, 2, 10, 0, 0, 0, time.UTC),
			time.Date(2026, 9, 2, 11, 0, 0, 0, time.UTC),
		).
		WillReturnRows(reminderRows("one@clinic.com", "two@clinic.com"))
	dbConn.SQLMock.ExpectExec(regexp.QuoteMeta(markRemindedQuery)).WithArgs(int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	dbConn.SQLMock.ExpectExec(regexp.QuoteMeta(markRemindedQuery)).WithArgs(int64(2)).WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, scanner.Sweep(context.Background()))
	assert.Equal(t, []string{"one@clinic.com", "two@clinic.com"}, sender.sent)
	assert.NoError(t, dbConn.SQLMock.ExpectationsWereMet())
}

func TestSweepLeavesFailedDeliveriesUnmarked(t *testing.T) {
	dbConn := mock.MustCreateConnectionMock()
	sender := &recordingSender{failFor: "one@clinic.com"}
	scanner := newTestScanner(dbConn, sender)

	dbConn.SQLMock.ExpectQuery(regexp.QuoteMeta(listDueRemindersQuery)).
		WillReturnRows(reminderRows("one@clinic.com", "two@clinic.com"))
	// only the delivered reminder gets flagged, the failed one is retried on
	// the next sweep
	dbConn.SQLMock.ExpectExec(regexp.QuoteMeta(markRemindedQuery)).WithArgs(int64(2)).WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, scanner.Sweep(context.Background()))
	assert.Equal(t, []string{"two@clinic.com"}, sender.sent)
	assert.NoError(t, dbConn.SQLMock.ExpectationsWereMet())
}

func TestSweepPropagatesQueryErrors(t *testing.T) {
	dbConn := mock.MustCreateConnectionMock()
	sender := &recordingSender{}
	scanner := newTestScanner(dbConn, sender)

	dbConn.SQLMock.ExpectQuery(regexp.QuoteMeta(listDueRemindersQuery)).WillReturnError(sql.ErrConnDone)

	assert.Error(t, scanner.Sweep(context.Background()))
	assert.Empty(t, sender.sent)
}
