package telemetry

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"forecastpipe/pkg/contracts/domain"
)

// SQLiteRecorder appends every observation to a local SQLite database so
// accuracy can be charted over time.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	logger *slog.Logger
}

// NewSQLiteRecorder opens (or creates) the database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger *slog.Logger) (*SQLiteRecorder, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, logger: logger.With(slog.String("component", "sqlite_recorder"))}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.logger.Info("SQLite recorder opened", slog.String("path", dbPath))
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS forecast_metrics (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			recorded_at INTEGER NOT NULL,
			timestamp   INTEGER NOT NULL,
			namespace   TEXT NOT NULL,
			model_name  TEXT NOT NULL,
			quantile    TEXT NOT NULL,
			mape        REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_forecast_metrics_model ON forecast_metrics(model_name, timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) PutMetric(ctx context.Context, namespace string, obs domain.MetricObservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx, `INSERT INTO forecast_metrics
		(recorded_at, timestamp, namespace, model_name, quantile, mape)
		VALUES (?,?,?,?,?,?)`,
		time.Now().Unix(), obs.Timestamp.Unix(), namespace,
		obs.ModelName, obs.QuantileLabel, obs.MeanAbsolutePercentError,
	)
	if err != nil {
		return fmt.Errorf("record observation: %w", err)
	}
	return nil
}

// Observations returns the recorded observations for modelName, oldest first.
// An empty modelName returns every model.
func (r *SQLiteRecorder) Observations(ctx context.Context, modelName string) ([]domain.MetricObservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.QueryContext(ctx, `SELECT timestamp, model_name, quantile, mape
		FROM forecast_metrics
		WHERE ? = '' OR model_name = ?
		ORDER BY timestamp, id`, modelName, modelName)
	if err != nil {
		return nil, fmt.Errorf("query observations: %w", err)
	}
	defer rows.Close()

	var out []domain.MetricObservation
	for rows.Next() {
		var (
			ts  int64
			obs domain.MetricObservation
		)
		if err := rows.Scan(&ts, &obs.ModelName, &obs.QuantileLabel, &obs.MeanAbsolutePercentError); err != nil {
			return nil, fmt.Errorf("scan observation: %w", err)
		}
		obs.Timestamp = time.Unix(ts, 0).UTC()
		out = append(out, obs)
	}
	return out, rows.Err()
}

// Ping checks the database is reachable
func (r *SQLiteRecorder) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRecorder) Close() error {
	r.logger.Info("Closing SQLite recorder")
	return r.db.Close()
}
