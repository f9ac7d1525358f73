// Package vision describes B-roll clips from a handful of still frames using
// an OpenAI-compatible chat completions endpoint.
package vision

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	defaultModel   = "gpt-4o-mini"
	defaultTimeout = 60 * time.Second
	maxTokens      = 100
)

const framePrompt = "These are frames from a video clip. Describe the visual content, mood, and potential context in 2-3 sentences. " +
	"Focus on objects, actions, and setting that an editor could match to spoken words."

var ErrNoFrames = errors.New("vision: no frames to describe")

type Options struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
	// Extra request options, mostly for tests.
	ClientOptions []option.RequestOption
}

type Adapter struct {
	client  openai.Client
	model   string
	timeout time.Duration
}

func New(opts Options) *Adapter {
	clientOpts := []option.RequestOption{option.WithAPIKey(opts.APIKey)}
	if strings.TrimSpace(opts.BaseURL) != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(strings.TrimRight(opts.BaseURL, "/")+"/"))
	}
	clientOpts = append(clientOpts, opts.ClientOptions...)

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Adapter{
		client:  openai.NewClient(clientOpts...),
		model:   model,
		timeout: timeout,
	}
}

func (a *Adapter) Describe(ctx context.Context, framesJPEG [][]byte) (string, error) {
	parts := contentParts(framesJPEG)
	if len(parts) < 2 {
		return "", ErrNoFrames
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	resp, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: a.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(parts),
		},
		MaxTokens: openai.Int(maxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("vision describe: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("vision: response has no choices")
	}
	desc := cleanDescription(resp.Choices[0].Message.Content)
	if desc == "" {
		return "", errors.New("vision: empty description")
	}
	return desc, nil
}

// contentParts is the prompt followed by one low-detail image per non-empty
// frame.
func contentParts(frames [][]byte) []openai.ChatCompletionContentPartUnionParam {
	parts := []openai.ChatCompletionContentPartUnionParam{openai.TextContentPart(framePrompt)}
	for _, f := range frames {
		if len(f) == 0 {
			continue
		}
		parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL:    dataURL(f),
			Detail: "low",
		}))
	}
	return parts
}

func dataURL(jpeg []byte) string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(jpeg)
}

func cleanDescription(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
