// Package ai implements the Guarden AI chat advisor: an expert nursery
// consultant backed by an OpenAI-compatible chat API, seeded with the
// user's current garden so it never recommends plants already owned.
package ai

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"log/slog"

	"github.com/sashabaranov/go-openai"

	"github.com/hrygo/guarden/store"
)

// Config holds the chat advisor configuration.
type Config struct {
	BaseURL    string
	APIKey     string
	Model      string
	MaxRetries int
	Timeout    time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:    "https://api.openai.com/v1",
		APIKey:     "",
		Model:      "gpt-4o-mini",
		MaxRetries: 3,
		Timeout:    30 * time.Second,
	}
}

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"` // system, user, assistant
	Content string `json:"content"`
}

// PlantLister is how the advisor observes the current garden.
type PlantLister interface {
	ListPlants(ctx context.Context, find *store.FindPlant) ([]*store.Plant, error)
}

// Advisor is the chat advisor. Conversation history is kept in memory
// per session id for the lifetime of the process.
type Advisor struct {
	client *openai.Client
	config *Config
	plants PlantLister

	mu       sync.Mutex
	sessions map[string][]Message
}

// NewAdvisor creates a new chat advisor.
func NewAdvisor(cfg *Config, plants PlantLister) (*Advisor, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required, set GUARDEN_AI_API_KEY environment variable")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &Advisor{
		client:   openai.NewClientWithConfig(clientConfig),
		config:   cfg,
		plants:   plants,
		sessions: make(map[string][]Message),
	}, nil
}

// SendMessage appends the user's question to the session history, asks
// the model, records the reply, and returns it.
func (a *Advisor) SendMessage(ctx context.Context, sessionID, question string) (string, error) {
	a.mu.Lock()
	history, ok := a.sessions[sessionID]
	a.mu.Unlock()

	if !ok {
		var err error
		history, err = a.newSessionHistory(ctx)
		if err != nil {
			return "", err
		}
	}

	history = append(history, Message{Role: openai.ChatMessageRoleUser, Content: question})

	reply, err := a.chat(ctx, history)
	if err != nil {
		return "", fmt.Errorf("failed to complete chat: %w", err)
	}
	history = append(history, Message{Role: openai.ChatMessageRoleAssistant, Content: reply})

	a.mu.Lock()
	a.sessions[sessionID] = history
	a.mu.Unlock()

	return reply, nil
}

// ResetSession drops the conversation history for a session.
func (a *Advisor) ResetSession(sessionID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.sessions, sessionID)
}

func (a *Advisor) newSessionHistory(ctx context.Context) ([]Message, error) {
	plants, err := a.plants.ListPlants(ctx, &store.FindPlant{})
	if err != nil {
		return nil, fmt.Errorf("failed to list plants for chat context: %w", err)
	}

	return []Message{
		{Role: openai.ChatMessageRoleSystem, Content: buildSystemPrompt(plants)},
		{Role: openai.ChatMessageRoleAssistant, Content: "Understood. I am Guarden AI. How can I help you with your garden today?"},
	}, nil
}

func buildSystemPrompt(plants []*store.Plant) string {
	plantsContext := "None (The user garden is empty)."
	if len(plants) > 0 {
		parts := make([]string, len(plants))
		for i, p := range plants {
			parts[i] = fmt.Sprintf("%s (Type: %s)", p.Name, p.Type)
		}
		plantsContext = strings.Join(parts, ", ")
	}

	return fmt.Sprintf(`You are 'Guarden AI', an expert nursery consultant.

--- CONTEXT: CURRENT GARDEN ---
The user ALREADY owns these plants:
[%s]

--- LOGIC & INSTRUCTIONS ---
1. **NEW PLANT RECOMMENDATIONS:**
   - Do NOT recommend plants already owned.
   - You MUST collect ALL 4 pieces of info before recommending:
     a) Sunlight exposure
     b) Location
     c) Watering commitment
     d) Desired Size
   - If info is missing, ask for it. DO NOT recommend yet.

2. **POTS & PLANTERS:** Ask for size, color, and specific plant.
3. **CARE:** Give specific advice for owned plants.
4. **TONE:** Friendly, emojis 🌱, short answers.

IMPORTANT: Remember the conversation history. If the user answers a question you asked, use that new info combined with previous info to give the recommendation.`, plantsContext)
}

func (a *Advisor) chat(ctx context.Context, messages []Message) (string, error) {
	llmMessages := make([]openai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		llmMessages[i] = openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	var result string
	err := a.doWithRetry(ctx, func() error {
		resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:    a.config.Model,
			Messages: llmMessages,
		})
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("empty chat response")
		}
		result = resp.Choices[0].Message.Content
		return nil
	})
	return result, err
}

// doWithRetry executes a function with exponential backoff retry.
func (a *Advisor) doWithRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < a.config.MaxRetries; attempt++ {
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			if attempt < a.config.MaxRetries-1 {
				waitTime := time.Duration(math.Pow(2, float64(attempt))) * time.Second
				slog.Debug("chat request failed, retrying",
					"attempt", attempt+1,
					"wait_time", waitTime,
					"error", err)
				select {
				case <-time.After(waitTime):
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	}
	return lastErr
}
