package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"apkmirror/models"
	"apkmirror/utils"

	_ "github.com/lib/pq"
)

// ErrUnknownSession is returned when an unload names a session with no visits
var ErrUnknownSession = errors.New("no visit recorded for session")

// PostgresVisitStore stores visits in PostgreSQL
type PostgresVisitStore struct {
	db     *sql.DB
	logger *utils.Logger
}

// NewPostgresVisitStore opens the database and pings it
func NewPostgresVisitStore(ctx context.Context, connStr string, logger *utils.Logger) (*PostgresVisitStore, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open DB: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Minute * 5)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}

	logger.Info("Connected to PostgreSQL successfully")
	return &PostgresVisitStore{db: db, logger: logger}, nil
}

// CreateTable creates the visits table if it doesn't exist, with indexes
func (s *PostgresVisitStore) CreateTable(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS visits (
		id                   BIGSERIAL PRIMARY KEY,
		session_id           VARCHAR(64)  NOT NULL,
		ip_address           VARCHAR(64)  NOT NULL DEFAULT 'Unknown',
		user_agent           TEXT,
		visited_url          TEXT,
		referrer             TEXT,
		browser              VARCHAR(32)  DEFAULT 'Unknown',
		os                   VARCHAR(32)  DEFAULT 'Unknown',
		device_type          VARCHAR(16)  DEFAULT 'Unknown',
		screen_resolution    VARCHAR(32),
		country              VARCHAR(64)  DEFAULT 'N/A',
		city                 VARCHAR(64)  DEFAULT 'N/A',
		timezone             VARCHAR(64)  DEFAULT 'N/A',
		time_on_page_seconds INTEGER      NOT NULL DEFAULT 0,
		visit_time           TIMESTAMP    NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_visits_session    ON visits (session_id, visit_time DESC);
	CREATE INDEX IF NOT EXISTS idx_visits_visit_time ON visits (visit_time);
	`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	s.logger.Info("Table 'visits' is ready")
	return nil
}

// LogPageLoad inserts one visit row
func (s *PostgresVisitStore) LogPageLoad(ctx context.Context, v *models.Visit) (int64, error) {
	visitTime := v.VisitTime
	if visitTime.IsZero() {
		visitTime = time.Now().UTC()
	}

	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO visits (session_id, ip_address, user_agent, visited_url, referrer,
			browser, os, device_type, screen_resolution, country, city, timezone, visit_time)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`,
		v.SessionID,
		v.IPAddress,
		v.UserAgent,
		v.VisitedURL,
		v.Referrer,
		v.Browser,
		v.OS,
		v.DeviceType,
		v.ScreenResolution,
		v.Country,
		v.City,
		v.Timezone,
		visitTime,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert visit: %w", err)
	}
	s.logger.Debug("Logged visit %d for session %s", id, v.SessionID)
	return id, nil
}

// LogPageUnload updates the newest visit of the session
func (s *PostgresVisitStore) LogPageUnload(ctx context.Context, sessionID string, seconds int) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE visits SET time_on_page_seconds = $1
		WHERE id = (
			SELECT id FROM visits WHERE session_id = $2
			ORDER BY visit_time DESC, id DESC
			LIMIT 1
		)
	`, seconds, sessionID)
	if err != nil {
		return fmt.Errorf("failed to update time on page: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrUnknownSession
	}
	return nil
}

// Close closes the database connection
func (s *PostgresVisitStore) Close() {
	if s.db != nil {
		_ = s.db.Close()
	}
}
