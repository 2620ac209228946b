package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bergenthala/ai-class-generator/internal/game/storage/sqlite"
	"github.com/bergenthala/ai-class-generator/internal/unlock"
)

func newTestServer(t *testing.T) (*Server, *sqlite.Store, *httptest.Server) {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "game.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	srv := NewServer(store, nil, nil, nil)
	srv.now = func() time.Time { return time.Date(2026, time.March, 5, 10, 0, 0, 0, time.UTC) }
	srv.seed = func() int64 { return 1234 }

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, store, ts
}

func postJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestCreateEventAggregatesStats(t *testing.T) {
	_, _, ts := newTestServer(t)

	for _, book := range []string{"b1", "b1", "b2"} {
		resp := postJSON(t, ts.URL+"/events", map[string]any{
			"user_id":    "p1",
			"event_name": "read_book",
			"metadata":   map[string]any{"book_id": book},
		})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("status = %d, want 201", resp.StatusCode)
		}
		resp.Body.Close()
	}

	resp, err := http.Get(ts.URL + "/player/p1/features")
	if err != nil {
		t.Fatalf("GET features: %v", err)
	}
	var features playerFeaturesResponse
	decodeBody(t, resp, &features)

	books := features.EventCounts["read_book"]
	if books == nil || books.Count != 3 || books.DistinctCount() != 2 {
		t.Fatalf("read_book stats = %+v", books)
	}
}

func TestCreateEventRejectsBadRequests(t *testing.T) {
	_, _, ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/events", map[string]any{"event_name": "explore"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing user_id: status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()

	resp, err := http.Post(ts.URL+"/events", "application/json", strings.NewReader("{not json"))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad body: status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestCreateEventFiresSeedUnlock(t *testing.T) {
	_, store, ts := newTestServer(t)
	ctx := context.Background()
	now := time.Date(2026, time.March, 5, 9, 0, 0, 0, time.UTC)

	if err := store.EnsurePlayer(ctx, "p1", now); err != nil {
		t.Fatalf("ensure player: %v", err)
	}
	stats := unlock.PlayerStats{"kill_monster": &unlock.EventStats{Count: 4999}}
	if err := store.SavePlayerStats(ctx, "p1", stats, now); err != nil {
		t.Fatalf("save stats: %v", err)
	}

	resp := postJSON(t, ts.URL+"/events", map[string]any{
		"user_id":    "p1",
		"event_name": "kill_monster",
		"metadata":   map[string]any{"monster_id": "goblin"},
	})
	var event eventResponse
	decodeBody(t, resp, &event)
	if len(event.NewUnlocks) != 1 {
		t.Fatalf("new unlocks = %v, want one class from the kill rule", event.NewUnlocks)
	}

	listResp, err := http.Get(ts.URL + "/player/p1/classes")
	if err != nil {
		t.Fatalf("GET classes: %v", err)
	}
	var classes []playerClassResponse
	decodeBody(t, listResp, &classes)
	if len(classes) != 1 {
		t.Fatalf("got %d classes, want 1", len(classes))
	}
	if classes[0].RuleID != "unlock_kill_5000" {
		t.Fatalf("rule id = %q, want unlock_kill_5000", classes[0].RuleID)
	}
	if classes[0].ClassData.Archetype != "warrior" {
		t.Fatalf("unlocked archetype = %q, want warrior", classes[0].ClassData.Archetype)
	}
	// Granted classes carry a globally unique identifier, not a
	// run-scoped one: "class_" plus a 26-character base32 id.
	if got := classes[0].ID; !strings.HasPrefix(got, "class_") || len(got) != len("class_")+26 {
		t.Fatalf("granted class id = %q, want class_ prefix with a 26-char id", got)
	}
}

func TestCheckUnlocksEndpointIsIdempotent(t *testing.T) {
	_, store, ts := newTestServer(t)
	ctx := context.Background()
	now := time.Date(2026, time.March, 5, 9, 0, 0, 0, time.UTC)

	if err := store.EnsurePlayer(ctx, "p1", now); err != nil {
		t.Fatalf("ensure player: %v", err)
	}
	stats := unlock.PlayerStats{"craft_item": &unlock.EventStats{Count: 150}}
	for i := 0; i < 100; i++ {
		stats["craft_item"].Distinct = append(stats["craft_item"].Distinct, "item-"+string(rune('a'+i%26))+string(rune('0'+i/26)))
	}
	if err := store.SavePlayerStats(ctx, "p1", stats, now); err != nil {
		t.Fatalf("save stats: %v", err)
	}

	var first unlockCheckResponse
	decodeBody(t, postJSON(t, ts.URL+"/check-unlocks/p1", struct{}{}), &first)
	if len(first.NewUnlocks) != 1 {
		t.Fatalf("first check unlocks = %+v, want one", first)
	}

	var second unlockCheckResponse
	decodeBody(t, postJSON(t, ts.URL+"/check-unlocks/p1", struct{}{}), &second)
	if len(second.NewUnlocks) != 0 {
		t.Fatalf("second check unlocks = %+v, want none", second)
	}
}

func TestGenerateForestAndFetch(t *testing.T) {
	_, _, ts := newTestServer(t)

	var generated generateForestResponse
	decodeBody(t, postJSON(t, ts.URL+"/generate-forest", map[string]any{
		"targets": map[string]int{"warrior": 6},
		"seed":    42,
	}), &generated)
	if generated.State != "done" {
		t.Fatalf("state = %q, want done", generated.State)
	}
	if generated.TotalClasses != 6 {
		t.Fatalf("total classes = %d, want 6", generated.TotalClasses)
	}
	if generated.Seed != 42 {
		t.Fatalf("seed = %d, want the requested 42", generated.Seed)
	}

	resp, err := http.Get(ts.URL + "/forest")
	if err != nil {
		t.Fatalf("GET forest: %v", err)
	}
	var forest forestResponse
	decodeBody(t, resp, &forest)
	if len(forest.Forests["warrior"].Nodes) != 6 {
		t.Fatalf("stored forest = %+v", forest.Forests["warrior"])
	}
}

func TestGenerateForestRejectsUnknownBase(t *testing.T) {
	_, _, ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/generate-forest", map[string]any{
		"targets": map[string]int{"necromancer": 3},
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestGenerateStory(t *testing.T) {
	_, _, ts := newTestServer(t)

	var out storyResponse
	decodeBody(t, postJSON(t, ts.URL+"/generate-story", map[string]any{
		"player_class": "warrior",
	}), &out)
	if !strings.Contains(out.StoryText, "training grounds") {
		t.Fatalf("story = %q", out.StoryText)
	}

	resp := postJSON(t, ts.URL+"/generate-story", map[string]any{"action": "explore"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing class: status = %d, want 400", resp.StatusCode)
	}
}
