// Package storage defines persistence contracts for game state: players,
// their event streams and aggregates, the generated class forest, and
// unlocked classes.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/bergenthala/ai-class-generator/internal/forge/candidate"
	"github.com/bergenthala/ai-class-generator/internal/forge/engine"
	"github.com/bergenthala/ai-class-generator/internal/unlock"
)

var (
	// ErrNotFound indicates a requested record is missing.
	ErrNotFound = errors.New("record not found")
)

// Player is one registered player.
type Player struct {
	ID        string
	CreatedAt time.Time
}

// Event is one ingested player action.
type Event struct {
	ID        int64
	PlayerID  string
	Name      string
	Metadata  map[string]string
	CreatedAt time.Time
}

// PlayerClass records a class a player has unlocked.
type PlayerClass struct {
	PlayerID   string
	Class      candidate.Class
	RuleID     string
	UnlockedAt time.Time
}

// Store persists all game state. Implementations must be safe for
// concurrent use by HTTP handlers.
type Store interface {
	// EnsurePlayer creates the player record if it does not exist yet.
	EnsurePlayer(ctx context.Context, id string, now time.Time) error

	// AppendEvent records one event in the player's stream.
	AppendEvent(ctx context.Context, event Event) (int64, error)

	// PlayerStats loads the player's aggregated event statistics. A
	// player with no events yields empty stats, not an error.
	PlayerStats(ctx context.Context, playerID string) (unlock.PlayerStats, error)
	// SavePlayerStats replaces the player's aggregates.
	SavePlayerStats(ctx context.Context, playerID string, stats unlock.PlayerStats, now time.Time) error

	// SaveForest replaces the stored class forest and its unlock rules
	// atomically.
	SaveForest(ctx context.Context, forests map[string]engine.Forest, rules []unlock.Rule, now time.Time) error
	// Forest loads the stored class forest, keyed by base archetype.
	Forest(ctx context.Context) (map[string]engine.Forest, error)
	// Class looks up one generated class by identifier.
	Class(ctx context.Context, id string) (candidate.Class, error)

	// Rules loads every stored unlock rule.
	Rules(ctx context.Context) ([]unlock.Rule, error)

	// PutPlayerClass records an unlocked class; repeats are no-ops.
	PutPlayerClass(ctx context.Context, pc PlayerClass) error
	// ListPlayerClasses returns a player's unlocked classes in unlock
	// order.
	ListPlayerClasses(ctx context.Context, playerID string) ([]PlayerClass, error)

	Close() error
}
