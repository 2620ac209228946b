// Package story produces short narrative text for player actions. A
// remote text-generation endpoint can be configured; without one, or
// when the remote call fails, curated fallback texts are served so the
// game never blocks on narration.
package story

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

var classDescriptions = map[string]string{
	"warrior":  "a brave warrior skilled in combat and strength",
	"priest":   "a holy priest dedicated to light, healing, and divine magic",
	"mage":     "a powerful mage who wields arcane magic and studies ancient tomes",
	"thief":    "a cunning thief who moves in shadows and excels at stealth",
	"wanderer": "a free-spirited wanderer with no class restrictions, forging their own path",
}

var actionTexts = map[string]string{
	"read_book":    "The knowledge flows into your mind. You feel wiser and more enlightened.",
	"kill_monster": "The battle is won! Your combat prowess grows with each victory.",
	"craft_item":   "Your creation is complete! A fine piece of work that showcases your skill.",
	"explore":      "You discover new paths and hidden secrets in the world around you.",
	"meditate":     "You feel more centered and focused after your meditation.",
}

var openingTexts = map[string]string{
	"warrior":  "You stand at the gates of the training grounds, your sword gleaming in the sunlight. The master trainer approaches: 'Prove your worth, warrior. Your journey begins with combat.'",
	"priest":   "You enter the sacred temple, the light of the divine surrounding you. The high priest greets you: 'Welcome, child of light. Knowledge and wisdom await.'",
	"mage":     "You step into the arcane library, ancient tomes floating around you. The archmage appears: 'Magic flows through knowledge, young apprentice. Study well.'",
	"thief":    "You slip into the shadows of the city, unnoticed by all. A voice whispers: 'Stealth and cunning are your tools. Use them wisely.'",
	"wanderer": "You walk an untrodden path, free from the constraints of tradition. A mysterious figure appears: 'You walk alone, but that is your strength. Forge your own destiny.'",
}

// FallbackText returns the curated narration for a class and optional
// action.
func FallbackText(playerClass, action string) string {
	if action != "" {
		if text, ok := actionTexts[action]; ok {
			return text
		}
		return "You continue your journey..."
	}
	if text, ok := openingTexts[playerClass]; ok {
		return text
	}
	return "Your adventure begins..."
}

// Service generates narration, preferring a remote model when one is
// configured.
type Service struct {
	endpoint string
	token    string
	client   *http.Client
}

// New builds a Service. An empty endpoint disables remote generation
// entirely. A nil client gets a sane timeout.
func New(endpoint, token string, client *http.Client) *Service {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Service{endpoint: endpoint, token: token, client: client}
}

// Generate returns narration for the player's class and latest action.
// Remote failures degrade to the fallback text, never to an error.
func (s *Service) Generate(ctx context.Context, playerClass, action string) string {
	if s.endpoint == "" {
		return FallbackText(playerClass, action)
	}
	text, err := s.remote(ctx, prompt(playerClass, action))
	if err != nil || text == "" {
		return FallbackText(playerClass, action)
	}
	return text
}

type generateRequest struct {
	Inputs     string             `json:"inputs"`
	Parameters generateParameters `json:"parameters"`
}

type generateParameters struct {
	MaxNewTokens   int     `json:"max_new_tokens"`
	Temperature    float64 `json:"temperature"`
	ReturnFullText bool    `json:"return_full_text"`
}

type generateResponse struct {
	GeneratedText string `json:"generated_text"`
}

func (s *Service) remote(ctx context.Context, input string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Inputs: input,
		Parameters: generateParameters{
			MaxNewTokens: 150,
			Temperature:  0.8,
		},
	})
	if err != nil {
		return "", fmt.Errorf("encode story request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build story request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call story endpoint: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("story endpoint returned %s", resp.Status)
	}

	var out []generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode story response: %w", err)
	}
	if len(out) == 0 {
		return "", nil
	}
	return Clean(out[0].GeneratedText), nil
}

func prompt(playerClass, action string) string {
	desc, ok := classDescriptions[playerClass]
	if !ok {
		desc = "an adventurer"
	}
	if action == "" {
		return fmt.Sprintf("Write an engaging opening scene for a fantasy game. The player is %s beginning their journey.", desc)
	}
	return fmt.Sprintf("As %s, you perform the action %q. Continue the narrative in two or three sentences.", desc, action)
}

// Clean normalizes model output: collapsed whitespace, no wrapping
// quotes, leading capital, terminal punctuation.
func Clean(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if strings.HasPrefix(text, `"`) && strings.HasSuffix(text, `"`) && len(text) >= 2 {
		text = text[1 : len(text)-1]
	}
	if text == "" {
		return ""
	}
	text = strings.ToUpper(text[:1]) + text[1:]
	if !strings.ContainsAny(text[len(text)-1:], ".!?") {
		text += "."
	}
	return text
}
