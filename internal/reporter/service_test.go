package reporter

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func TestLogQueuesReport(t *testing.T) {
	client, redisMock := redismock.NewClientMock()
	svc := NewWithClient(client, nil)

	redisMock.Regexp().ExpectLPush(queueKey, `.*seat already reserved.*`).SetVal(1)

	svc.Log(context.Background(), errors.New("seat already reserved"), "reservation.checkConflicts", SeverityLow)

	require.NoError(t, redisMock.ExpectationsWereMet())
}

func TestLogNilErrorIsNoop(t *testing.T) {
	client, redisMock := redismock.NewClientMock()
	svc := NewWithClient(client, nil)

	svc.Log(context.Background(), nil, "anywhere", SeverityHigh)

	// Nothing queued.
	require.NoError(t, redisMock.ExpectationsWereMet())
}

func TestLogQueueFailureDoesNotPropagate(t *testing.T) {
	client, redisMock := redismock.NewClientMock()
	svc := NewWithClient(client, nil)

	redisMock.Regexp().ExpectLPush(queueKey, `.*`).SetErr(errors.New("redis down"))

	// Must not panic or surface the redis failure.
	svc.Log(context.Background(), errors.New("storage failed"), "reservation.Create", SeverityHigh)
}

func TestProcessNextPersistsReport(t *testing.T) {
	client, redisMock := redismock.NewClientMock()

	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "sqlmock")
	defer sqlxDB.Close()

	svc := NewWithClient(client, sqlxDB)

	report := Report{
		Message:  "seat already reserved",
		Context:  "reservation.checkConflicts",
		Severity: SeverityLow,
		Created:  time.Now(),
	}
	payload, err := json.Marshal(report)
	require.NoError(t, err)

	redisMock.ExpectBRPop(2*time.Second, queueKey).SetVal([]string{queueKey, string(payload)})
	dbMock.ExpectExec("INSERT INTO error_logs").
		WithArgs(report.Message, report.Context, report.Severity, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	svc.processNext(context.Background())

	require.NoError(t, redisMock.ExpectationsWereMet())
	require.NoError(t, dbMock.ExpectationsWereMet())
}

func TestQueueLength(t *testing.T) {
	client, redisMock := redismock.NewClientMock()
	svc := NewWithClient(client, nil)

	redisMock.ExpectLLen(queueKey).SetVal(4)

	require.Equal(t, int64(4), svc.QueueLength(context.Background()))
}
