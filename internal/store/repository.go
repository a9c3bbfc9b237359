package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/abhishekchandaliya/IIID-Sports-Auction/internal/models"
)

// Repository persists the record store in Postgres. Records are JSONB
// documents keyed the same way the store addresses them, so a write to
// players/7 is one upsert of row 7.
type Repository struct {
	pool *pgxpool.Pool
}

var _ Backend = (*Repository)(nil)

// NewRepository wraps a pgx pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// EnsureSchema creates the backing tables if they do not exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS players (
			id INT PRIMARY KEY,
			record JSONB NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS tournament_config (
			singleton BOOL PRIMARY KEY DEFAULT TRUE CHECK (singleton),
			record JSONB NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS current_offer (
			singleton BOOL PRIMARY KEY DEFAULT TRUE CHECK (singleton),
			player_id TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS activity_log (
			write_ms BIGINT PRIMARY KEY,
			entry JSONB NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}

// Put writes one path. Writes are plain upserts: last write wins.
func (r *Repository) Put(ctx context.Context, path string, value any) error {
	root, key := splitPath(path)

	switch root {
	case PathPlayers:
		id, err := parsePlayerKey(key)
		if err != nil {
			return err
		}
		record, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to marshal player %d: %w", id, err)
		}
		_, err = r.pool.Exec(ctx, `
			INSERT INTO players (id, record) VALUES ($1, $2)
			ON CONFLICT (id) DO UPDATE SET record = EXCLUDED.record`,
			id, record)
		if err != nil {
			return fmt.Errorf("failed to upsert player %d: %w", id, err)
		}

	case PathConfig:
		record, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		_, err = r.pool.Exec(ctx, `
			INSERT INTO tournament_config (singleton, record) VALUES (TRUE, $1)
			ON CONFLICT (singleton) DO UPDATE SET record = EXCLUDED.record`,
			record)
		if err != nil {
			return fmt.Errorf("failed to upsert config: %w", err)
		}

	case PathCurrentOffer:
		id, ok := value.(string)
		if !ok {
			return fmt.Errorf("current offer value must be a string, got %T", value)
		}
		_, err := r.pool.Exec(ctx, `
			INSERT INTO current_offer (singleton, player_id) VALUES (TRUE, $1)
			ON CONFLICT (singleton) DO UPDATE SET player_id = EXCLUDED.player_id`,
			id)
		if err != nil {
			return fmt.Errorf("failed to upsert current offer: %w", err)
		}

	case PathActivityLog:
		ms, err := parseActivityKey(key)
		if err != nil {
			return err
		}
		entry, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to marshal activity entry: %w", err)
		}
		_, err = r.pool.Exec(ctx, `
			INSERT INTO activity_log (write_ms, entry) VALUES ($1, $2)
			ON CONFLICT (write_ms) DO UPDATE SET entry = EXCLUDED.entry`,
			ms, entry)
		if err != nil {
			return fmt.Errorf("failed to insert activity entry: %w", err)
		}

	default:
		return fmt.Errorf("unknown path %q", path)
	}
	return nil
}

// Delete removes one path, or a whole collection when the path is a
// bare root.
func (r *Repository) Delete(ctx context.Context, path string) error {
	root, key := splitPath(path)

	switch root {
	case PathPlayers:
		if key == "" {
			if _, err := r.pool.Exec(ctx, `DELETE FROM players`); err != nil {
				return fmt.Errorf("failed to clear players: %w", err)
			}
			return nil
		}
		id, err := parsePlayerKey(key)
		if err != nil {
			return err
		}
		if _, err := r.pool.Exec(ctx, `DELETE FROM players WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete player %d: %w", id, err)
		}

	case PathConfig:
		if _, err := r.pool.Exec(ctx, `DELETE FROM tournament_config`); err != nil {
			return fmt.Errorf("failed to delete config: %w", err)
		}

	case PathCurrentOffer:
		if _, err := r.pool.Exec(ctx, `DELETE FROM current_offer`); err != nil {
			return fmt.Errorf("failed to clear current offer: %w", err)
		}

	case PathActivityLog:
		if key == "" {
			if _, err := r.pool.Exec(ctx, `DELETE FROM activity_log`); err != nil {
				return fmt.Errorf("failed to clear activity log: %w", err)
			}
			return nil
		}
		ms, err := parseActivityKey(key)
		if err != nil {
			return err
		}
		if _, err := r.pool.Exec(ctx, `DELETE FROM activity_log WHERE write_ms = $1`, ms); err != nil {
			return fmt.Errorf("failed to delete activity entry %d: %w", ms, err)
		}

	default:
		return fmt.Errorf("unknown path %q", path)
	}
	return nil
}

// Load reads the full persisted state for boot-time hydration.
func (r *Repository) Load(ctx context.Context) ([]models.Player, *models.TournamentConfig, *int, map[int64]models.ActivityEntry, error) {
	players, err := r.loadPlayers(ctx)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	cfg, err := r.loadConfig(ctx)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	offerID, err := r.loadCurrentOffer(ctx)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	activity, err := r.loadActivity(ctx)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	return players, cfg, offerID, activity, nil
}

func (r *Repository) loadPlayers(ctx context.Context) ([]models.Player, error) {
	rows, err := r.pool.Query(ctx, `SELECT record FROM players ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to load players: %w", err)
	}
	defer rows.Close()

	var players []models.Player
	for rows.Next() {
		var record []byte
		if err := rows.Scan(&record); err != nil {
			return nil, fmt.Errorf("failed to scan player row: %w", err)
		}
		var p models.Player
		if err := json.Unmarshal(record, &p); err != nil {
			return nil, fmt.Errorf("failed to decode player record: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (r *Repository) loadConfig(ctx context.Context) (*models.TournamentConfig, error) {
	var record []byte
	err := r.pool.QueryRow(ctx, `SELECT record FROM tournament_config`).Scan(&record)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	var cfg models.TournamentConfig
	if err := json.Unmarshal(record, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

func (r *Repository) loadCurrentOffer(ctx context.Context) (*int, error) {
	var raw string
	err := r.pool.QueryRow(ctx, `SELECT player_id FROM current_offer`).Scan(&raw)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load current offer: %w", err)
	}
	id, err := parsePlayerKey(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func (r *Repository) loadActivity(ctx context.Context) (map[int64]models.ActivityEntry, error) {
	rows, err := r.pool.Query(ctx, `SELECT write_ms, entry FROM activity_log`)
	if err != nil {
		return nil, fmt.Errorf("failed to load activity log: %w", err)
	}
	defer rows.Close()

	activity := make(map[int64]models.ActivityEntry)
	for rows.Next() {
		var ms int64
		var raw []byte
		if err := rows.Scan(&ms, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan activity row: %w", err)
		}
		var e models.ActivityEntry
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, fmt.Errorf("failed to decode activity entry: %w", err)
		}
		activity[ms] = e
	}
	return activity, rows.Err()
}
