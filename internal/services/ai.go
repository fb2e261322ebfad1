package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

var ErrAIUnavailable = fmt.Errorf("%w: listing drafts are not configured", ErrTransient)

type AIService struct {
	client *openai.Client
}

// ListingDraft is a suggested listing the sponsor reviews before creating it.
type ListingDraft struct {
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Requirements   string     `json:"requirements"`
	Skills         []string   `json:"skills"`
	TimeToComplete string     `json:"timeToComplete"`
	Deadline       *time.Time `json:"deadline"`
}

func NewAIService(apiKey string) *AIService {
	if apiKey == "" {
		return &AIService{}
	}
	return &AIService{
		client: openai.NewClient(apiKey),
	}
}

// GenerateListingDraft turns a free-form brief into a listing draft using OpenAI GPT
func (s *AIService) GenerateListingDraft(ctx context.Context, brief string) (*ListingDraft, error) {
	if s.client == nil {
		return nil, ErrAIUnavailable
	}
	if strings.TrimSpace(brief) == "" {
		return nil, fmt.Errorf("%w: brief is required", ErrValidation)
	}

	currentTime := time.Now().UTC().Format(time.RFC3339)
	prompt := fmt.Sprintf(`You help sponsors write bounty and project listings for freelancers.
Turn the brief below into a single listing.

Current time: %s

Brief:
%s

Return JSON in exactly this shape:
{
  "title": "short listing title",
  "description": "what needs to be done and why",
  "requirements": "what a winning submission must include",
  "skills": ["skill", "..."],
  "timeToComplete": "rough effort, e.g. 1-2 weeks",
  "deadline": "ISO8601 timestamp, e.g. 2025-10-28T23:59:59Z, or null when the brief names none"
}

Rules:
- Convert relative dates such as "next Friday" to absolute timestamps
- Return only JSON, no prose`, currentTime, brief)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT4o,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
			Temperature: 0.3,
		},
	)

	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode < 500 && apiErr.HTTPStatusCode != 429 {
			return nil, fmt.Errorf("OpenAI API error: %w", err)
		}
		return nil, fmt.Errorf("%w: OpenAI API error: %w", ErrTransient, err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no response from OpenAI", ErrTransient)
	}

	content := resp.Choices[0].Message.Content

	var draft ListingDraft
	if err := json.Unmarshal([]byte(content), &draft); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	return &draft, nil
}
