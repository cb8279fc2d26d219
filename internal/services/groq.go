package services

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/zafira-bot/zafira-backend/internal/config"
)

const groqChatCompletionsURL = "https://api.groq.com/openai/v1/chat/completions"

const zafiraPersona = "Você é a Zafira, uma assistente brasileira especialista em " +
	"encontrar produtos. Seja simpática, use emojis, e sempre direcione a conversa " +
	"para ajudar com compras. Respostas curtas e objetivas."

// GroqService calls the Groq chat-completions API (OpenAI compatible) for
// free-form conversation turns.
type GroqService struct {
	apiKey     string
	model      string
	apiURL     string
	httpClient *http.Client
}

// NewGroqService creates a new Groq chat client
func NewGroqService(cfg *config.Config) *GroqService {
	if cfg.GroqAPIKey == "" {
		log.Println("⚠️  GROQ_API_KEY not set - conversational fallback disabled")
	}
	return &GroqService{
		apiKey:     cfg.GroqAPIKey,
		model:      cfg.GroqModel,
		apiURL:     groqChatCompletionsURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Configured reports whether the client has an API key.
func (g *GroqService) Configured() bool {
	return g.apiKey != ""
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Chat sends the session history plus the latest message and returns the
// model's reply. Any failure returns an error; callers degrade to a canned
// response.
func (g *GroqService) Chat(history []string, message string) (string, error) {
	if g.apiKey == "" {
		return "", errors.New("groq api key not configured")
	}

	messages := []chatMessage{{Role: "system", Content: zafiraPersona}}
	for _, h := range history {
		messages = append(messages, chatMessage{Role: "user", Content: h})
	}
	messages = append(messages, chatMessage{Role: "user", Content: message})

	payload := map[string]interface{}{
		"model":       g.model,
		"messages":    messages,
		"max_tokens":  150,
		"temperature": 0.7,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", errors.Wrap(err, "marshaling payload")
	}

	req, err := http.NewRequest(http.MethodPost, g.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "building request")
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "calling groq api")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("groq api status %d", resp.StatusCode)
	}

	var result struct {
		Choices []struct {
			Message chatMessage `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", errors.Wrap(err, "decoding response")
	}
	if len(result.Choices) == 0 {
		return "", errors.New("groq returned no choices")
	}

	return strings.TrimSpace(result.Choices[0].Message.Content), nil
}
