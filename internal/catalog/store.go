package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"media-ingest/internal/logging"
	"media-ingest/internal/metrics"
)

// Default timeout for store operations
const defaultTimeout = 5 * time.Second

// ErrNotFound is returned when no content matches a lookup.
var ErrNotFound = errors.New("content not found")

// Store is the persistence boundary for the catalog. Content documents
// are stored one row each, with genre/cast/seasons as JSON columns so
// season merges stay whole-document writes.
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore opens (or creates) the catalog database at dbPath.
// dbPath must be the full path to the database file and its parent
// directory must already exist and be writable; use startup.LoadConfig
// to validate directories before calling this.
func NewStore(ctx context.Context, dbPath string) (*Store, error) {
	logging.Info("Catalog database path: %s", dbPath)

	// WAL mode plus busy_timeout to avoid "database is locked" errors
	// when workers update status while a request inserts.
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=10000&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to catalog database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{db: db, dbPath: dbPath}

	if err := s.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after initialization failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize catalog schema: %w", err)
	}

	logging.Info("Catalog database initialized at %s", dbPath)
	return s, nil
}

func (s *Store) initialize(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS contents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		uuid TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		type TEXT NOT NULL,
		release_year INTEGER NOT NULL DEFAULT 0,
		genre TEXT NOT NULL DEFAULT '[]',
		rating REAL NOT NULL DEFAULT 0,
		description TEXT NOT NULL DEFAULT '',
		cast_list TEXT NOT NULL DEFAULT '[]',
		status TEXT NOT NULL,
		file_path TEXT NOT NULL DEFAULT '',
		duration_seconds REAL NOT NULL DEFAULT 0,
		seasons TEXT NOT NULL DEFAULT '[]',
		created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now')),
		updated_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_contents_uuid ON contents(uuid);
	CREATE INDEX IF NOT EXISTS idx_contents_type ON contents(type);
	CREATE INDEX IF NOT EXISTS idx_contents_status ON contents(status);
	`

	start := time.Now()
	_, err := s.db.ExecContext(ctx, schema)
	recordQuery("initialize_schema", start, err)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database connection is alive.
func (s *Store) Ping() error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return s.db.PingContext(ctx)
}

// Insert persists a new content document and returns its row id.
// Called exactly once per upload request.
func (s *Store) Insert(ctx context.Context, c *Content) (int64, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("insert_content", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	genre, err := json.Marshal(emptyIfNil(c.Genre))
	if err != nil {
		return 0, fmt.Errorf("failed to encode genre: %w", err)
	}
	cast, err := json.Marshal(emptyIfNil(c.Cast))
	if err != nil {
		return 0, fmt.Errorf("failed to encode cast: %w", err)
	}
	seasons, err := json.Marshal(emptySeasonsIfNil(c.Seasons))
	if err != nil {
		return 0, fmt.Errorf("failed to encode seasons: %w", err)
	}

	now := time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	query := `
	INSERT INTO contents (uuid, title, type, release_year, genre, rating, description, cast_list,
		status, file_path, duration_seconds, seasons, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var result sql.Result
	result, err = s.db.ExecContext(ctx, query,
		c.UUID, c.Title, string(c.Type), c.ReleaseYear, string(genre), c.Rating,
		c.Description, string(cast), string(c.Status), c.FilePath,
		c.DurationSeconds, string(seasons), c.CreatedAt.Unix(), c.UpdatedAt.Unix(),
	)
	if err != nil {
		return 0, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}
	c.ID = id
	return id, nil
}

// UpdateStatus advances the status of the content with the given uuid.
// ready is terminal and never reverts. failed can still be promoted to
// ready: a series runs one encode job per episode under the same uuid,
// and any successful episode makes the content playable no matter what
// order its siblings finish in. A failed write only matches documents
// still in_progress.
//
// The returned bool reports whether a document was updated. When no
// document carries the uuid at all, the error is ErrNotFound; a false
// result with a nil error means the document is already terminal.
func (s *Store) UpdateStatus(ctx context.Context, uuid string, status Status) (bool, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("update_status", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := `
		UPDATE contents
		SET status = ?, updated_at = strftime('%s', 'now')
		WHERE uuid = ? AND status = ?
	`
	args := []any{string(status), uuid, string(StatusInProgress)}
	if status == StatusReady {
		query = `
		UPDATE contents
		SET status = ?, updated_at = strftime('%s', 'now')
		WHERE uuid = ? AND status IN (?, ?)
	`
		args = append(args, string(StatusFailed))
	}

	var result sql.Result
	result, err = s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if rows > 0 {
		return true, nil
	}

	var count int
	if scanErr := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM contents WHERE uuid = ?", uuid).Scan(&count); scanErr == nil && count == 0 {
		err = ErrNotFound
		return false, err
	}
	return false, nil
}

// FindByUUID returns the content document with the given uuid, or
// ErrNotFound.
func (s *Store) FindByUUID(ctx context.Context, uuid string) (*Content, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("find_by_uuid", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	row := s.db.QueryRowContext(ctx, selectColumns+" FROM contents WHERE uuid = ?", uuid)
	c, err := scanContent(row)
	if errors.Is(err, sql.ErrNoRows) {
		err = ErrNotFound
		return nil, err
	}
	return c, err
}

// List returns every content document ordered by creation time.
func (s *Store) List(ctx context.Context) ([]Content, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("list_contents", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, selectColumns+" FROM contents ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	return collectContents(rows)
}

// ListByType returns one page of content documents of the given type.
// page is 1-based.
func (s *Store) ListByType(ctx context.Context, t ContentType, page, perPage int) ([]Content, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("list_by_type", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if page < 1 {
		page = 1
	}
	offset := (page - 1) * perPage

	rows, err := s.db.QueryContext(ctx,
		selectColumns+" FROM contents WHERE type = ? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?",
		string(t), perPage, offset,
	)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	return collectContents(rows)
}

// CountByType returns the number of content documents of the given type.
func (s *Store) CountByType(ctx context.Context, t ContentType) (int, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("count_by_type", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var count int
	err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM contents WHERE type = ?", string(t)).Scan(&count)
	return count, err
}

// SeasonEpisodes returns one row per episode for the given content uuid
// and season number. An empty slice means no matching content/season.
func (s *Store) SeasonEpisodes(ctx context.Context, uuid string, season int) ([]EpisodeRow, error) {
	c, err := s.FindByUUID(ctx, uuid)
	if err != nil {
		return nil, err
	}

	var rows []EpisodeRow
	for _, se := range c.Seasons {
		if se.SeasonNumber != season {
			continue
		}
		for _, ep := range se.Episodes {
			rows = append(rows, EpisodeRow{
				UUID:            c.UUID,
				Title:           c.Title,
				ReleaseYear:     c.ReleaseYear,
				Genre:           c.Genre,
				Rating:          c.Rating,
				Type:            "video",
				SeasonNumber:    se.SeasonNumber,
				Episode:         ep.EpisodeNumber,
				IntroStartTime:  ep.IntroStartTime,
				IntroEndTime:    ep.IntroEndTime,
				NextEpisodeTime: ep.NextEpisodeTime,
				FilePath:        ep.FilePath,
			})
		}
	}
	return rows, nil
}

// UpdateMetrics refreshes store connection gauges.
func (s *Store) UpdateMetrics() {
	stats := s.db.Stats()
	metrics.DBConnectionsOpen.Set(float64(stats.OpenConnections))
}

const selectColumns = `
	SELECT id, uuid, title, type, release_year, genre, rating, description, cast_list,
		status, file_path, duration_seconds, seasons, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContent(row rowScanner) (*Content, error) {
	var (
		c                   Content
		typ, status         string
		genre, cast, season string
		createdAt           int64
		updatedAt           int64
	)

	err := row.Scan(
		&c.ID, &c.UUID, &c.Title, &typ, &c.ReleaseYear, &genre, &c.Rating,
		&c.Description, &cast, &status, &c.FilePath, &c.DurationSeconds,
		&season, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Type = ContentType(typ)
	c.Status = Status(status)
	c.CreatedAt = time.Unix(createdAt, 0)
	c.UpdatedAt = time.Unix(updatedAt, 0)

	if err := json.Unmarshal([]byte(genre), &c.Genre); err != nil {
		return nil, fmt.Errorf("failed to decode genre for %s: %w", c.UUID, err)
	}
	if err := json.Unmarshal([]byte(cast), &c.Cast); err != nil {
		return nil, fmt.Errorf("failed to decode cast for %s: %w", c.UUID, err)
	}
	if err := json.Unmarshal([]byte(season), &c.Seasons); err != nil {
		return nil, fmt.Errorf("failed to decode seasons for %s: %w", c.UUID, err)
	}

	return &c, nil
}

func collectContents(rows *sql.Rows) ([]Content, error) {
	contents := []Content{}
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, err
		}
		contents = append(contents, *c)
	}
	return contents, rows.Err()
}

func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		logging.Warn("failed to close result rows: %v", err)
	}
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func emptySeasonsIfNil(s []Season) []Season {
	if s == nil {
		return []Season{}
	}
	return s
}

// recordQuery records store query metrics
func recordQuery(operation string, start time.Time, err error) {
	duration := time.Since(start).Seconds()
	status := "success"
	if err != nil && !errors.Is(err, ErrNotFound) {
		status = "error"
	}
	metrics.DBQueryTotal.WithLabelValues(operation, status).Inc()
	metrics.DBQueryDuration.WithLabelValues(operation).Observe(duration)
}
