// Package sqlite provides SQLite-backed persistence for game state.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/bergenthala/ai-class-generator/internal/forge/candidate"
	"github.com/bergenthala/ai-class-generator/internal/forge/engine"
	"github.com/bergenthala/ai-class-generator/internal/forge/rarity"
	"github.com/bergenthala/ai-class-generator/internal/game/storage"
	"github.com/bergenthala/ai-class-generator/internal/game/storage/sqlite/migrations"
	"github.com/bergenthala/ai-class-generator/internal/platform/storage/sqlitemigrate"
	"github.com/bergenthala/ai-class-generator/internal/unlock"
)

// Store provides SQLite-backed persistence for game state.
type Store struct {
	sqlDB *sql.DB
}

var _ storage.Store = (*Store)(nil)

// Open opens and migrates a game SQLite store.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close releases the underlying SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// EnsurePlayer creates the player record if it does not exist yet.
func (s *Store) EnsurePlayer(ctx context.Context, id string, now time.Time) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("player id is required")
	}
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO players (id, created_at) VALUES (?, ?)
		 ON CONFLICT(id) DO NOTHING`,
		id, now.UTC().Unix(),
	)
	if err != nil {
		return fmt.Errorf("ensure player: %w", err)
	}
	return nil
}

// AppendEvent records one event in the player's stream.
func (s *Store) AppendEvent(ctx context.Context, event storage.Event) (int64, error) {
	if event.PlayerID == "" || event.Name == "" {
		return 0, fmt.Errorf("event player id and name are required")
	}
	metadata := event.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return 0, fmt.Errorf("encode event metadata: %w", err)
	}

	res, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO events (player_id, name, metadata_json, created_at) VALUES (?, ?, ?, ?)`,
		event.PlayerID, event.Name, string(metadataJSON), event.CreatedAt.UTC().Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("append event: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("event id: %w", err)
	}
	return id, nil
}

// PlayerStats loads the player's aggregated event statistics.
func (s *Store) PlayerStats(ctx context.Context, playerID string) (unlock.PlayerStats, error) {
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT event_counts_json FROM player_stats WHERE player_id = ?`,
		playerID,
	)
	var countsJSON string
	if err := row.Scan(&countsJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return unlock.PlayerStats{}, nil
		}
		return nil, fmt.Errorf("load player stats: %w", err)
	}

	stats := unlock.PlayerStats{}
	if err := json.Unmarshal([]byte(countsJSON), &stats); err != nil {
		return nil, fmt.Errorf("decode player stats: %w", err)
	}
	return stats, nil
}

// SavePlayerStats replaces the player's aggregates.
func (s *Store) SavePlayerStats(ctx context.Context, playerID string, stats unlock.PlayerStats, now time.Time) error {
	countsJSON, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("encode player stats: %w", err)
	}
	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO player_stats (player_id, event_counts_json, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(player_id) DO UPDATE SET event_counts_json = excluded.event_counts_json, updated_at = excluded.updated_at`,
		playerID, string(countsJSON), now.UTC().Unix(),
	)
	if err != nil {
		return fmt.Errorf("save player stats: %w", err)
	}
	return nil
}

// SaveForest replaces the stored class forest and its unlock rules
// atomically.
func (s *Store) SaveForest(ctx context.Context, forests map[string]engine.Forest, rules []unlock.Rule, now time.Time) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin forest tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"class_nodes", "forests", "unlock_rules"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	bases := make([]string, 0, len(forests))
	for base := range forests {
		bases = append(bases, base)
	}
	sort.Strings(bases)

	for _, base := range bases {
		forest := forests[base]
		pathJSON, err := json.Marshal(forest.CommonPath)
		if err != nil {
			return fmt.Errorf("encode common path: %w", err)
		}
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO forests (base, common_path_json, generated_at) VALUES (?, ?, ?)`,
			base, string(pathJSON), now.UTC().Unix(),
		); err != nil {
			return fmt.Errorf("insert forest %s: %w", base, err)
		}

		for pos, node := range forest.Nodes {
			classJSON, err := json.Marshal(node)
			if err != nil {
				return fmt.Errorf("encode class %s: %w", node.ID, err)
			}
			if _, err := tx.ExecContext(
				ctx,
				`INSERT INTO class_nodes (id, base, parent_id, tier, level, position, class_json)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				node.ID, base, node.ParentID, node.Tier.String(), node.Level, pos, string(classJSON),
			); err != nil {
				return fmt.Errorf("insert class %s: %w", node.ID, err)
			}
		}
	}

	for _, rule := range rules {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO unlock_rules (id, event_name, agg, threshold, class_id, archetype, tier, parent_id, level)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rule.ID, rule.EventName, rule.Agg.String(), rule.Threshold,
			rule.ClassID, rule.ArchetypeKey, rule.Tier.String(), rule.ParentID, rule.Level,
		); err != nil {
			return fmt.Errorf("insert rule %s: %w", rule.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit forest tx: %w", err)
	}
	return nil
}

// Forest loads the stored class forest, keyed by base archetype.
func (s *Store) Forest(ctx context.Context) (map[string]engine.Forest, error) {
	forests := make(map[string]engine.Forest)

	rows, err := s.sqlDB.QueryContext(ctx, `SELECT base, common_path_json FROM forests ORDER BY base`)
	if err != nil {
		return nil, fmt.Errorf("load forests: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var base, pathJSON string
		if err := rows.Scan(&base, &pathJSON); err != nil {
			return nil, fmt.Errorf("scan forest: %w", err)
		}
		var path []string
		if err := json.Unmarshal([]byte(pathJSON), &path); err != nil {
			return nil, fmt.Errorf("decode common path for %s: %w", base, err)
		}
		forests[base] = engine.Forest{Base: base, CommonPath: path}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate forests: %w", err)
	}

	nodeRows, err := s.sqlDB.QueryContext(ctx, `SELECT base, class_json FROM class_nodes ORDER BY base, position`)
	if err != nil {
		return nil, fmt.Errorf("load class nodes: %w", err)
	}
	defer nodeRows.Close()
	for nodeRows.Next() {
		var base, classJSON string
		if err := nodeRows.Scan(&base, &classJSON); err != nil {
			return nil, fmt.Errorf("scan class node: %w", err)
		}
		var node candidate.Class
		if err := json.Unmarshal([]byte(classJSON), &node); err != nil {
			return nil, fmt.Errorf("decode class node: %w", err)
		}
		forest := forests[base]
		forest.Nodes = append(forest.Nodes, node)
		forests[base] = forest
	}
	if err := nodeRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate class nodes: %w", err)
	}

	return forests, nil
}

// Class looks up one generated class by identifier.
func (s *Store) Class(ctx context.Context, id string) (candidate.Class, error) {
	row := s.sqlDB.QueryRowContext(ctx, `SELECT class_json FROM class_nodes WHERE id = ?`, id)
	var classJSON string
	if err := row.Scan(&classJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return candidate.Class{}, fmt.Errorf("class %s: %w", id, storage.ErrNotFound)
		}
		return candidate.Class{}, fmt.Errorf("load class %s: %w", id, err)
	}
	var node candidate.Class
	if err := json.Unmarshal([]byte(classJSON), &node); err != nil {
		return candidate.Class{}, fmt.Errorf("decode class %s: %w", id, err)
	}
	return node, nil
}

// Rules loads every stored unlock rule.
func (s *Store) Rules(ctx context.Context) ([]unlock.Rule, error) {
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, event_name, agg, threshold, class_id, archetype, tier, parent_id, level
		 FROM unlock_rules ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}
	defer rows.Close()

	var rules []unlock.Rule
	for rows.Next() {
		var rule unlock.Rule
		var aggName, tierName string
		if err := rows.Scan(
			&rule.ID, &rule.EventName, &aggName, &rule.Threshold,
			&rule.ClassID, &rule.ArchetypeKey, &tierName, &rule.ParentID, &rule.Level,
		); err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		if rule.Agg, err = unlock.ParseAggregation(aggName); err != nil {
			return nil, fmt.Errorf("rule %s: %w", rule.ID, err)
		}
		if rule.Tier, err = rarity.Parse(tierName); err != nil {
			return nil, fmt.Errorf("rule %s: %w", rule.ID, err)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rules: %w", err)
	}
	return rules, nil
}

// PutPlayerClass records an unlocked class; repeats are no-ops.
func (s *Store) PutPlayerClass(ctx context.Context, pc storage.PlayerClass) error {
	classJSON, err := json.Marshal(pc.Class)
	if err != nil {
		return fmt.Errorf("encode player class: %w", err)
	}
	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO player_classes (player_id, class_id, rule_id, class_json, unlocked_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(player_id, class_id) DO NOTHING`,
		pc.PlayerID, pc.Class.ID, pc.RuleID, string(classJSON), pc.UnlockedAt.UTC().Unix(),
	)
	if err != nil {
		return fmt.Errorf("put player class: %w", err)
	}
	return nil
}

// ListPlayerClasses returns a player's unlocked classes in unlock order.
func (s *Store) ListPlayerClasses(ctx context.Context, playerID string) ([]storage.PlayerClass, error) {
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT class_id, rule_id, class_json, unlocked_at FROM player_classes
		 WHERE player_id = ? ORDER BY unlocked_at, class_id`,
		playerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list player classes: %w", err)
	}
	defer rows.Close()

	var out []storage.PlayerClass
	for rows.Next() {
		var classID, ruleID, classJSON string
		var unlockedAt int64
		if err := rows.Scan(&classID, &ruleID, &classJSON, &unlockedAt); err != nil {
			return nil, fmt.Errorf("scan player class: %w", err)
		}
		var class candidate.Class
		if err := json.Unmarshal([]byte(classJSON), &class); err != nil {
			return nil, fmt.Errorf("decode player class %s: %w", classID, err)
		}
		out = append(out, storage.PlayerClass{
			PlayerID:   playerID,
			Class:      class,
			RuleID:     ruleID,
			UnlockedAt: time.Unix(unlockedAt, 0).UTC(),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate player classes: %w", err)
	}
	return out, nil
}
