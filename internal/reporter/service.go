package reporter

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"labslot/internal/logger"
	"labslot/internal/metrics"
)

// Severity levels for reported errors. Validation failures are never
// reported; conflicts are low, authorization failures medium, storage
// failures high.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

const queueKey = "error_reports"

type Report struct {
	Message  string    `json:"message"`
	Context  string    `json:"context"`
	Severity string    `json:"severity"`
	Created  time.Time `json:"created"`
}

// Service queues error reports on redis and drains them into the error_logs
// table from a background worker. Reporting is fire-and-forget: a failure to
// queue or persist never propagates to the operation that triggered it.
type Service struct {
	redis *redis.Client
	db    *sqlx.DB
}

func New(redisAddr string, db *sqlx.DB) *Service {
	return &Service{
		redis: redis.NewClient(&redis.Options{
			Addr: redisAddr,
		}),
		db: db,
	}
}

// NewWithClient is used by tests to inject a mock redis client.
func NewWithClient(client *redis.Client, db *sqlx.DB) *Service {
	return &Service{redis: client, db: db}
}

func (s *Service) Log(ctx context.Context, err error, reportCtx, severity string) {
	if err == nil {
		return
	}

	report := Report{
		Message:  err.Error(),
		Context:  reportCtx,
		Severity: severity,
		Created:  time.Now(),
	}

	metrics.RecordErrorReport(severity)

	data, marshalErr := json.Marshal(report)
	if marshalErr != nil {
		logger.Errorf("Failed to marshal error report: %v", marshalErr)
		return
	}

	if pushErr := s.redis.LPush(ctx, queueKey, string(data)).Err(); pushErr != nil {
		// Reporting must not fail the caller; fall back to the process log.
		logger.Error("Failed to queue error report", "context", reportCtx, "error", pushErr)
		logger.Error("Unreported error", "context", reportCtx, "severity", severity, "error", err)
	}
}

func (s *Service) Start(ctx context.Context) {
	logger.Info("Error reporter started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Error reporter stopped")
			return
		default:
			s.processNext(ctx)
		}
	}
}

func (s *Service) processNext(ctx context.Context) {
	result, err := s.redis.BRPop(ctx, 2*time.Second, queueKey).Result()
	if err != nil {
		return
	}

	var report Report
	if err := json.Unmarshal([]byte(result[1]), &report); err != nil {
		logger.Errorf("Bad error report data: %v", err)
		return
	}

	if err := s.persist(ctx, report); err != nil {
		logger.Errorf("Failed to persist error report: %v", err)
	}
}

func (s *Service) persist(ctx context.Context, report Report) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO error_logs (message, context, severity, created_at)
		 VALUES ($1, $2, $3, $4)`,
		report.Message, report.Context, report.Severity, report.Created,
	)
	return err
}

func (s *Service) QueueLength(ctx context.Context) int64 {
	length, _ := s.redis.LLen(ctx, queueKey).Result()
	return length
}

func (s *Service) Close() error {
	return s.redis.Close()
}
