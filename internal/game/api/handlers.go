package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"github.com/bergenthala/ai-class-generator/internal/forge/candidate"
	"github.com/bergenthala/ai-class-generator/internal/forge/engine"
	"github.com/bergenthala/ai-class-generator/internal/game/storage"
	"github.com/bergenthala/ai-class-generator/internal/platform/id"
	"github.com/bergenthala/ai-class-generator/internal/unlock"
)

type eventRequest struct {
	UserID    string         `json:"user_id"`
	EventName string         `json:"event_name"`
	Metadata  map[string]any `json:"metadata"`
	Timestamp *time.Time     `json:"timestamp"`
}

type eventResponse struct {
	ID         int64             `json:"id"`
	UserID     string            `json:"user_id"`
	EventName  string            `json:"event_name"`
	Metadata   map[string]string `json:"metadata"`
	Timestamp  time.Time         `json:"timestamp"`
	NewUnlocks []string          `json:"new_unlocks"`
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.tracer.Start(r.Context(), "api.create_event")
	defer span.End()

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" || req.EventName == "" {
		writeJSONError(w, http.StatusBadRequest, "user_id and event_name are required")
		return
	}

	now := s.now().UTC()
	at := now
	if req.Timestamp != nil {
		at = req.Timestamp.UTC()
	}
	metadata := stringifyMetadata(req.Metadata)

	if err := s.store.EnsurePlayer(ctx, req.UserID, now); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "persist player")
		return
	}
	id, err := s.store.AppendEvent(ctx, storage.Event{
		PlayerID:  req.UserID,
		Name:      req.EventName,
		Metadata:  metadata,
		CreatedAt: at,
	})
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "persist event")
		return
	}

	stats, err := s.store.PlayerStats(ctx, req.UserID)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "load player stats")
		return
	}
	stats.Observe(req.EventName, unlock.DistinctKey(metadata))
	if err := s.store.SavePlayerStats(ctx, req.UserID, stats, now); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "save player stats")
		return
	}

	newUnlocks, err := s.checkUnlocks(ctx, req.UserID, stats)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "check unlocks")
		return
	}

	writeJSON(w, http.StatusCreated, eventResponse{
		ID:         id,
		UserID:     req.UserID,
		EventName:  req.EventName,
		Metadata:   metadata,
		Timestamp:  at,
		NewUnlocks: newUnlocks,
	})
}

// stringifyMetadata flattens arbitrary JSON metadata values so distinct
// counting and storage see stable strings.
func stringifyMetadata(in map[string]any) map[string]string {
	if len(in) == 0 {
		return map[string]string{}
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = fmt.Sprint(v)
	}
	return out
}

// checkUnlocks evaluates all rules against the player's stats and
// grants newly earned classes. Classes already generated in the forest
// are granted as-is; seed rules without a class forge one on the spot.
func (s *Server) checkUnlocks(ctx context.Context, playerID string, stats unlock.PlayerStats) ([]string, error) {
	stored, err := s.store.Rules(ctx)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}
	rules := append([]unlock.Rule(nil), s.seedRules...)
	seen := make(map[string]bool, len(rules))
	for _, r := range rules {
		seen[r.ID] = true
	}
	for _, r := range stored {
		if !seen[r.ID] {
			rules = append(rules, r)
			seen[r.ID] = true
		}
	}

	owned, err := s.store.ListPlayerClasses(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("load player classes: %w", err)
	}
	unlocked := make(map[string]bool, len(owned))
	for _, pc := range owned {
		if pc.RuleID != "" {
			unlocked[pc.RuleID] = true
		}
	}

	now := s.now().UTC()
	var granted []string
	for _, rule := range unlock.CheckUnlocks(rules, stats, unlocked) {
		class, err := s.classForRule(ctx, rule)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", rule.ID, err)
		}
		if err := s.store.PutPlayerClass(ctx, storage.PlayerClass{
			PlayerID:   playerID,
			Class:      class,
			RuleID:     rule.ID,
			UnlockedAt: now,
		}); err != nil {
			return nil, fmt.Errorf("grant class %s: %w", class.ID, err)
		}
		granted = append(granted, class.ID)
	}
	return granted, nil
}

func (s *Server) classForRule(ctx context.Context, rule unlock.Rule) (candidate.Class, error) {
	if rule.ClassID != "" {
		class, err := s.store.Class(ctx, rule.ClassID)
		if err == nil {
			return class, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return candidate.Class{}, err
		}
		// Forest was regenerated since the rule fired; fall through and
		// forge a replacement from the rule's shape.
	}
	arch, err := s.catalog.Get(rule.ArchetypeKey)
	if err != nil {
		return candidate.Class{}, err
	}
	level := rule.Level
	if level < 1 {
		level = 1
	}
	factory := candidate.NewFactory(s.catalog, rand.New(rand.NewSource(s.seed())))
	class := factory.Forge(arch, rule.Tier, level)
	class.ParentID = rule.ParentID
	// Granted classes live outside any seeded run, so they get a
	// globally unique identifier instead of the run-scoped one.
	grantID, err := id.NewID()
	if err != nil {
		return candidate.Class{}, fmt.Errorf("generate class id: %w", err)
	}
	class.ID = "class_" + grantID
	return class, nil
}

type playerFeaturesResponse struct {
	UserID      string                        `json:"user_id"`
	EventCounts map[string]*unlock.EventStats `json:"event_counts"`
}

func (s *Server) handlePlayerFeatures(w http.ResponseWriter, r *http.Request) {
	playerID := r.PathValue("id")
	stats, err := s.store.PlayerStats(r.Context(), playerID)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "load player stats")
		return
	}
	writeJSON(w, http.StatusOK, playerFeaturesResponse{
		UserID:      playerID,
		EventCounts: stats,
	})
}

type playerClassResponse struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	ClassData  candidate.Class `json:"class_data"`
	RuleID     string          `json:"unlock_condition_id,omitempty"`
	UnlockedAt time.Time       `json:"unlocked_at"`
}

func (s *Server) handlePlayerClasses(w http.ResponseWriter, r *http.Request) {
	playerID := r.PathValue("id")
	classes, err := s.store.ListPlayerClasses(r.Context(), playerID)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "load player classes")
		return
	}
	out := make([]playerClassResponse, 0, len(classes))
	for _, pc := range classes {
		out = append(out, playerClassResponse{
			ID:         pc.Class.ID,
			UserID:     pc.PlayerID,
			ClassData:  pc.Class,
			RuleID:     pc.RuleID,
			UnlockedAt: pc.UnlockedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type unlockCheckResponse struct {
	PlayerID   string   `json:"player_id"`
	NewUnlocks []string `json:"new_unlocks"`
	Message    string   `json:"message"`
}

func (s *Server) handleCheckUnlocks(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.tracer.Start(r.Context(), "api.check_unlocks")
	defer span.End()

	playerID := r.PathValue("id")
	if err := s.store.EnsurePlayer(ctx, playerID, s.now().UTC()); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "persist player")
		return
	}
	stats, err := s.store.PlayerStats(ctx, playerID)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "load player stats")
		return
	}
	newUnlocks, err := s.checkUnlocks(ctx, playerID, stats)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "check unlocks")
		return
	}

	message := "No new unlocks"
	if n := len(newUnlocks); n > 0 {
		message = fmt.Sprintf("Unlocked %d new classes!", n)
	}
	writeJSON(w, http.StatusOK, unlockCheckResponse{
		PlayerID:   playerID,
		NewUnlocks: newUnlocks,
		Message:    message,
	})
}

type storyRequest struct {
	Context     string `json:"context"`
	PlayerClass string `json:"player_class"`
	Action      string `json:"action"`
	PlayerID    string `json:"player_id"`
}

type storyResponse struct {
	StoryText string `json:"story_text"`
}

func (s *Server) handleGenerateStory(w http.ResponseWriter, r *http.Request) {
	var req storyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PlayerClass == "" {
		writeJSONError(w, http.StatusBadRequest, "player_class is required")
		return
	}
	text := s.story.Generate(r.Context(), req.PlayerClass, req.Action)
	writeJSON(w, http.StatusOK, storyResponse{StoryText: text})
}

type generateForestRequest struct {
	// Targets sets per-base class counts; empty targets every catalog
	// archetype at Target (or the default).
	Targets           map[string]int `json:"targets"`
	Target            int            `json:"target"`
	Seed              int64          `json:"seed"`
	CeilingMultiplier int            `json:"ceiling_multiplier"`
}

type generateForestResponse struct {
	State        string                   `json:"state"`
	Seed         int64                    `json:"seed"`
	Iterations   int                      `json:"iterations"`
	TotalClasses int                      `json:"total_classes"`
	Shortfall    map[string]int           `json:"shortfall,omitempty"`
	Forests      map[string]engine.Forest `json:"forests"`
}

// defaultTargetPerBase matches the forest size the game ships with.
const defaultTargetPerBase = 10

func (s *Server) handleGenerateForest(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.tracer.Start(r.Context(), "api.generate_forest")
	defer span.End()

	// An empty body generates the default forest.
	var req generateForestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	targets := req.Targets
	if len(targets) == 0 {
		perBase := req.Target
		if perBase <= 0 {
			perBase = defaultTargetPerBase
		}
		targets = make(map[string]int)
		for _, key := range s.catalog.Keys() {
			targets[key] = perBase
		}
	}
	seed := req.Seed
	if seed == 0 {
		seed = s.seed()
	}

	gen, err := engine.New(engine.Config{
		Targets: targets,
		Seed:    seed,
		Tuning:  engine.Tuning{CeilingMultiplier: req.CeilingMultiplier},
		Catalog: s.catalog,
	})
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	result := gen.Run()

	classes := result.Classes()
	rules := append(append([]unlock.Rule(nil), s.seedRules...), unlock.ForClasses(rand.New(rand.NewSource(seed)), classes)...)
	if err := s.store.SaveForest(ctx, result.Forests, rules, s.now().UTC()); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "persist forest")
		return
	}

	writeJSON(w, http.StatusOK, generateForestResponse{
		State:        result.State.String(),
		Seed:         seed,
		Iterations:   result.Iterations,
		TotalClasses: len(classes),
		Shortfall:    result.Shortfall,
		Forests:      result.Forests,
	})
}

type forestResponse struct {
	Forests map[string]engine.Forest `json:"forests"`
}

func (s *Server) handleGetForest(w http.ResponseWriter, r *http.Request) {
	forests, err := s.store.Forest(r.Context())
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "load forest")
		return
	}
	writeJSON(w, http.StatusOK, forestResponse{Forests: forests})
}
