// Package llm generates the agent's spoken replies.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const geminiModel = "gemini-2.0-flash"

const systemPrompt = `You are Rahul, a friendly outbound sales agent for Siaara, a service that helps businesses save time on sales calls. You are speaking on a live phone call.

CONVERSATION STYLE:
- Keep every reply to one or two short spoken sentences.
- Be warm and conversational, never scripted or pushy.
- Ask one question at a time.
- If the lead is not interested, thank them politely and offer to follow up later.`

// GeminiClient holds one chat session, so conversation history accumulates
// across turns of a call.
type GeminiClient struct {
	client *genai.Client
	chat   *genai.ChatSession
}

func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("llm: create gemini client: %w", err)
	}

	model := client.GenerativeModel(geminiModel)
	model.SetTemperature(0.7)
	model.SystemInstruction = genai.NewUserContent(genai.Text(systemPrompt))

	return &GeminiClient{
		client: client,
		chat:   model.StartChat(),
	}, nil
}

// GenerateReply returns a short reply to the lead's transcript. An empty
// string with a nil error means the model produced nothing usable; the
// caller decides what filler to speak.
func (g *GeminiClient) GenerateReply(ctx context.Context, transcript string) (string, error) {
	resp, err := g.chat.SendMessage(ctx, genai.Text(transcript))
	if err != nil {
		return "", fmt.Errorf("llm: generate reply: %w", err)
	}

	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				sb.WriteString(string(txt))
			}
		}
		break
	}
	return strings.TrimSpace(sb.String()), nil
}

func (g *GeminiClient) Close() {
	g.client.Close()
}
