package repo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/dbpg"

	"eventverteiler/internal/model"
)

var (
	ErrEventNotFound  = errors.New("event not found")
	ErrLogNotFound    = errors.New("publication log not found")
	ErrConfigNotFound = errors.New("platform config not found")
)

type Repository interface {
	CreateEvent(ctx context.Context, e *model.Event) (string, error)
	GetEventByID(ctx context.Context, id string) (*model.Event, error)
	GetAllEvents(ctx context.Context) ([]model.Event, error)
	UpdateEvent(ctx context.Context, e *model.Event) error
	DeleteEvent(ctx context.Context, id string) error

	AppendLog(ctx context.Context, l *model.PublicationLog) (string, error)
	UpdateLogResult(ctx context.Context, logID string, status model.PublicationStatus, platformEventID, errorDetails, screenshotRef string) error
	UpdateLogVerification(ctx context.Context, logID string, status model.PublicationStatus, verifyError string) error
	GetLogByID(ctx context.Context, logID string) (*model.PublicationLog, error)
	GetLogsByEventID(ctx context.Context, eventID string) ([]model.PublicationLog, error)
	GetLatestLogsPerTarget(ctx context.Context, eventID string) ([]model.PublicationLog, error)

	UpsertPlatformConfig(ctx context.Context, cfg *model.PlatformConfig) error
	GetPlatformConfig(ctx context.Context, p model.Platform) (*model.PlatformConfig, error)
	ListPlatformConfigs(ctx context.Context) ([]model.PlatformConfig, error)

	MigrateUp(migrationsDir string) error
	MigrateDown(migrationsDir string) error
}

type repository struct {
	db  *dbpg.DB
	log *zerolog.Logger
}

func NewRepository(db *dbpg.DB, log *zerolog.Logger) (Repository, error) {
	if db == nil {
		return nil, fmt.Errorf("db cannot be nil")
	}
	if err := db.Master.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}
	return &repository{db: db, log: log}, nil
}

func (r *repository) MigrateUp(migrationsDir string) error {
	files, err := filepath.Glob(filepath.Join(migrationsDir, "*.up.sql"))
	if err != nil {
		return fmt.Errorf("failed to read migration files: %w", err)
	}

	for _, file := range files {
		sqlBytes, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", file, err)
		}

		if _, err := r.db.ExecContext(context.Background(), string(sqlBytes)); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", file, err)
		}
	}

	r.log.Info().Msgf("Migrations applied successfully from %s", migrationsDir)
	return nil
}

func (r *repository) MigrateDown(migrationsDir string) error {
	files, err := filepath.Glob(filepath.Join(migrationsDir, "*.down.sql"))
	if err != nil {
		return fmt.Errorf("failed to read rollback files: %w", err)
	}

	for _, file := range files {
		sqlBytes, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read rollback file %s: %w", file, err)
		}

		if _, err := r.db.ExecContext(context.Background(), string(sqlBytes)); err != nil {
			return fmt.Errorf("failed to rollback migration %s: %w", file, err)
		}
	}

	r.log.Info().Msgf("Migrations rolled back successfully from %s", migrationsDir)
	return nil
}

func (r *repository) CreateEvent(ctx context.Context, e *model.Event) (string, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	query := `
		INSERT INTO events (id, title, description, date, time, location, category,
		                    organizer, url, price, tags, image_urls, event_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`

	row := r.db.QueryRowContext(ctx, query,
		e.ID, e.Title, e.Description, e.Date, e.Time, e.Location, e.Category,
		e.Organizer, e.URL, e.Price, pq.Array(e.Tags), pq.Array(e.ImageURLs), e.EventType,
	)

	var id string
	if err := row.Scan(&id); err != nil {
		return "", fmt.Errorf("failed to insert event: %w", err)
	}
	return id, nil
}

const eventColumns = `id, title, description, date, time, location, category,
       organizer, url, price, tags, image_urls, event_type, created_at, updated_at`

func scanEvent(row interface{ Scan(...any) error }) (*model.Event, error) {
	var e model.Event
	if err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.Date, &e.Time, &e.Location, &e.Category,
		&e.Organizer, &e.URL, &e.Price, pq.Array(&e.Tags), pq.Array(&e.ImageURLs),
		&e.EventType, &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *repository) GetEventByID(ctx context.Context, id string) (*model.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	e, err := scanEvent(row)
	if err != nil {
		return nil, ErrEventNotFound
	}
	return e, nil
}

func (r *repository) GetAllEvents(ctx context.Context) ([]model.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, *e)
	}

	return events, rows.Err()
}

func (r *repository) UpdateEvent(ctx context.Context, e *model.Event) error {
	query := `
		UPDATE events
		SET title = $1, description = $2, date = $3, time = $4, location = $5,
		    category = $6, organizer = $7, url = $8, price = $9, tags = $10,
		    image_urls = $11, event_type = $12, updated_at = NOW()
		WHERE id = $13
		RETURNING id
	`
	var id string
	err := r.db.QueryRowContext(ctx, query,
		e.Title, e.Description, e.Date, e.Time, e.Location, e.Category,
		e.Organizer, e.URL, e.Price, pq.Array(e.Tags), pq.Array(e.ImageURLs),
		e.EventType, e.ID,
	).Scan(&id)
	if err != nil {
		return ErrEventNotFound
	}
	return nil
}

// DeleteEvent removes the event together with all of its publication logs.
func (r *repository) DeleteEvent(ctx context.Context, id string) error {
	tx, err := r.db.Master.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM publication_logs WHERE event_id = $1`, id); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to delete publication logs: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to delete event: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		_ = tx.Rollback()
		return ErrEventNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *repository) AppendLog(ctx context.Context, l *model.PublicationLog) (string, error) {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.PublishedAt.IsZero() {
		l.PublishedAt = time.Now()
	}
	query := `
		INSERT INTO publication_logs (id, event_id, platform, method, status,
		                              platform_event_id, error_details, verify_error,
		                              screenshot_ref, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	var id string
	err := r.db.QueryRowContext(ctx, query,
		l.ID, l.EventID, l.Platform, l.Method, l.Status,
		l.PlatformEventID, l.ErrorDetails, l.VerifyError, l.ScreenshotRef, l.PublishedAt,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to insert publication log: %w", err)
	}
	return id, nil
}

func (r *repository) UpdateLogResult(ctx context.Context, logID string, status model.PublicationStatus, platformEventID, errorDetails, screenshotRef string) error {
	query := `
		UPDATE publication_logs
		SET status = $1, platform_event_id = $2, error_details = $3,
		    screenshot_ref = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING id
	`
	var id string
	if err := r.db.QueryRowContext(ctx, query, status, platformEventID, errorDetails, screenshotRef, logID).Scan(&id); err != nil {
		return fmt.Errorf("failed to update publication log %s: %w", logID, err)
	}
	return nil
}

// UpdateLogVerification touches only the verify-phase columns; the create
// error stays intact for the audit trail.
func (r *repository) UpdateLogVerification(ctx context.Context, logID string, status model.PublicationStatus, verifyError string) error {
	query := `
		UPDATE publication_logs
		SET status = $1, verify_error = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING id
	`
	var id string
	if err := r.db.QueryRowContext(ctx, query, status, verifyError, logID).Scan(&id); err != nil {
		return fmt.Errorf("failed to update verification for log %s: %w", logID, err)
	}
	return nil
}

const logColumns = `id, event_id, platform, method, status, platform_event_id,
       error_details, verify_error, screenshot_ref, published_at, updated_at`

func scanLog(row interface{ Scan(...any) error }) (*model.PublicationLog, error) {
	var l model.PublicationLog
	if err := row.Scan(
		&l.ID, &l.EventID, &l.Platform, &l.Method, &l.Status, &l.PlatformEventID,
		&l.ErrorDetails, &l.VerifyError, &l.ScreenshotRef, &l.PublishedAt, &l.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *repository) GetLogByID(ctx context.Context, logID string) (*model.PublicationLog, error) {
	query := `SELECT ` + logColumns + ` FROM publication_logs WHERE id = $1`
	l, err := scanLog(r.db.QueryRowContext(ctx, query, logID))
	if err != nil {
		return nil, ErrLogNotFound
	}
	return l, nil
}

func (r *repository) GetLogsByEventID(ctx context.Context, eventID string) ([]model.PublicationLog, error) {
	query := `
		SELECT ` + logColumns + `
		FROM publication_logs
		WHERE event_id = $1
		ORDER BY published_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get publication logs: %w", err)
	}
	defer rows.Close()

	var logs []model.PublicationLog
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan publication log: %w", err)
		}
		logs = append(logs, *l)
	}
	return logs, rows.Err()
}

// GetLatestLogsPerTarget returns, per (platform, method), the most recent
// attempt for the event. The dashboard shows current status, not history.
func (r *repository) GetLatestLogsPerTarget(ctx context.Context, eventID string) ([]model.PublicationLog, error) {
	query := `
		SELECT DISTINCT ON (platform, method) ` + logColumns + `
		FROM publication_logs
		WHERE event_id = $1
		ORDER BY platform, method, published_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest publication logs: %w", err)
	}
	defer rows.Close()

	var logs []model.PublicationLog
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan publication log: %w", err)
		}
		logs = append(logs, *l)
	}
	return logs, rows.Err()
}

// UpsertPlatformConfig writes the whole config row: latest write wins, no
// versioning.
func (r *repository) UpsertPlatformConfig(ctx context.Context, cfg *model.PlatformConfig) error {
	query := `
		INSERT INTO platform_configs (platform, api_enabled, api_key, client_id, client_secret,
		                              automation_enabled, username, password, session_blob,
		                              connection_status, last_tested_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (platform) DO UPDATE SET
			api_enabled = EXCLUDED.api_enabled,
			api_key = EXCLUDED.api_key,
			client_id = EXCLUDED.client_id,
			client_secret = EXCLUDED.client_secret,
			automation_enabled = EXCLUDED.automation_enabled,
			username = EXCLUDED.username,
			password = EXCLUDED.password,
			session_blob = EXCLUDED.session_blob,
			connection_status = EXCLUDED.connection_status,
			last_tested_at = EXCLUDED.last_tested_at,
			updated_at = NOW()
	`
	_, err := r.db.ExecContext(ctx, query,
		cfg.Platform, cfg.APIEnabled, cfg.APIKey, cfg.ClientID, cfg.ClientSecret,
		cfg.AutomationEnabled, cfg.Username, cfg.Password, cfg.SessionBlob,
		cfg.ConnectionStatus, cfg.LastTestedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert platform config: %w", err)
	}
	return nil
}

const configColumns = `platform, api_enabled, api_key, client_id, client_secret,
       automation_enabled, username, password, session_blob,
       connection_status, last_tested_at, updated_at`

func scanConfig(row interface{ Scan(...any) error }) (*model.PlatformConfig, error) {
	var c model.PlatformConfig
	if err := row.Scan(
		&c.Platform, &c.APIEnabled, &c.APIKey, &c.ClientID, &c.ClientSecret,
		&c.AutomationEnabled, &c.Username, &c.Password, &c.SessionBlob,
		&c.ConnectionStatus, &c.LastTestedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) GetPlatformConfig(ctx context.Context, p model.Platform) (*model.PlatformConfig, error) {
	query := `SELECT ` + configColumns + ` FROM platform_configs WHERE platform = $1`
	c, err := scanConfig(r.db.QueryRowContext(ctx, query, p))
	if err != nil {
		return nil, ErrConfigNotFound
	}
	return c, nil
}

func (r *repository) ListPlatformConfigs(ctx context.Context) ([]model.PlatformConfig, error) {
	query := `SELECT ` + configColumns + ` FROM platform_configs ORDER BY platform`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list platform configs: %w", err)
	}
	defer rows.Close()

	var configs []model.PlatformConfig
	for rows.Next() {
		c, err := scanConfig(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan platform config: %w", err)
		}
		configs = append(configs, *c)
	}
	return configs, rows.Err()
}
