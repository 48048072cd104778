package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/Vasu1592004/campus-ai-chatbot/internal/llm"
)

const DefaultModel = "gemini-2.0-flash"

type GeminiProvider struct {
	client    *genai.Client
	modelName string
}

var _ llm.Provider = &GeminiProvider{}

func NewGeminiProvider(ctx context.Context, apiKey, modelName string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if modelName == "" {
		modelName = DefaultModel
	}
	return &GeminiProvider{client: client, modelName: modelName}, nil
}

func (p *GeminiProvider) Name() string { return "gemini" }

func (p *GeminiProvider) Close() error {
	return p.client.Close()
}

func (p *GeminiProvider) Chat(ctx context.Context, messages []llm.Message, opts ...llm.Option) (string, error) {
	options := llm.Apply(llm.Options{}, opts...)

	name := p.modelName
	if options.Model != "" {
		name = options.Model
	}
	model := p.client.GenerativeModel(name)
	if options.Temperature > 0 {
		model.SetTemperature(float32(options.Temperature))
	}
	if options.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(options.MaxTokens))
	}

	system, contents := toContents(messages)
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}
	if len(contents) == 0 {
		return "", fmt.Errorf("gemini: nothing to send")
	}

	cs := model.StartChat()
	cs.History = contents[:len(contents)-1]
	last := contents[len(contents)-1]

	resp, err := cs.SendMessage(ctx, last.Parts...)
	if err != nil {
		if isRateLimited(err) {
			return "", fmt.Errorf("%w: %v", llm.ErrRateLimited, err)
		}
		return "", fmt.Errorf("Gemini chat error: %w", err)
	}

	text := strings.TrimSpace(extractText(resp))
	if text == "" {
		return "", fmt.Errorf("Gemini returned an empty reply")
	}
	return text, nil
}

// toContents splits out system text and maps the remaining turns to Gemini
// contents. Consecutive turns of the same role are merged, since a chat
// history must alternate between user and model.
func toContents(messages []llm.Message) (string, []*genai.Content) {
	var system []string
	var contents []*genai.Content

	for _, m := range messages {
		if m.Role == llm.RoleSystem {
			if s := strings.TrimSpace(m.Content); s != "" {
				system = append(system, s)
			}
			continue
		}

		role := "user"
		if m.Role == llm.RoleAssistant {
			role = "model"
		}

		var parts []genai.Part
		if m.Content != "" {
			parts = append(parts, genai.Text(m.Content))
		}
		for _, url := range m.Images {
			if mimeType, data, ok := llm.ParseDataURL(url); ok {
				parts = append(parts, genai.Blob{MIMEType: mimeType, Data: data})
			}
		}
		if len(parts) == 0 {
			continue
		}

		if n := len(contents); n > 0 && contents[n-1].Role == role {
			contents[n-1].Parts = append(contents[n-1].Parts, parts...)
			continue
		}
		contents = append(contents, &genai.Content{Role: role, Parts: parts})
	}

	return strings.Join(system, "\n\n"), contents
}

func isRateLimited(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusTooManyRequests
	}
	var coded interface{ HTTPCode() int }
	if errors.As(err, &coded) {
		return coded.HTTPCode() == http.StatusTooManyRequests
	}
	return false
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}
