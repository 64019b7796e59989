// Package llm talks to Gemini for the bot's chat persona and for vocabulary
// meanings.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	applog "tutornotes/internal/log"
)

const personaPrompt = `You are Molly, a friendly English tutor's assistant in Hong Kong.
Answer secondary-school students clearly and briefly. Correct their English gently
and give one short example when it helps. Reply in English unless asked for Chinese.`

const meaningPrompt = `You translate English vocabulary for Hong Kong students.
Reply with only the Traditional Chinese meaning for the given part of speech,
at most a few words, with no punctuation, romanisation or explanation.`

var ErrEmptyResponse = errors.New("model returned no text")

type Client struct {
	client     *genai.Client
	chat       *genai.GenerativeModel
	translator *genai.GenerativeModel
	logger     *applog.Logger
}

// New creates a Gemini client for model, e.g. "gemini-1.5-flash".
func New(ctx context.Context, apiKey, model string, logger *applog.Logger) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("missing GEMINI_API_KEY")
	}
	if logger == nil {
		logger = applog.Discard(applog.ComponentLLM)
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	chat := client.GenerativeModel(model)
	chat.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(personaPrompt)}}
	chat.SetTemperature(0.7)

	tr := client.GenerativeModel(model)
	tr.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(meaningPrompt)}}
	tr.SetTemperature(0)

	logger.Info("Gemini client initialized", "model", model)
	return &Client{client: client, chat: chat, translator: tr, logger: logger}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// Chat answers message in the tutor-assistant persona.
func (c *Client) Chat(ctx context.Context, message string) (string, error) {
	resp, err := c.chat.GenerateContent(ctx, genai.Text(message))
	if err != nil {
		c.logger.ErrorContext(ctx, "Chat request failed", applog.FieldOperation, applog.OpChat, applog.FieldError, err)
		return "", fmt.Errorf("gemini chat: %w", err)
	}
	return responseText(resp)
}

// Meaning returns the Traditional Chinese meaning of word used as pos.
func (c *Client) Meaning(ctx context.Context, word, pos string) (string, error) {
	resp, err := c.translator.GenerateContent(ctx, genai.Text(fmt.Sprintf("%s (%s)", word, pos)))
	if err != nil {
		return "", fmt.Errorf("gemini meaning %q: %w", word, err)
	}
	text, err := responseText(resp)
	if err != nil {
		return "", err
	}
	return cleanMeaning(text), nil
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}

// cleanMeaning keeps the first line and drops trailing punctuation.
func cleanMeaning(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimRight(strings.TrimSpace(s), "。.，,")
}
