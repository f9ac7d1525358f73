package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/forPelevin/brollcut/internal/types"
)

const (
	defaultModel   = "openai/gpt-4o-mini"
	defaultTimeout = 90 * time.Second
)

var ErrNoChoices = errors.New("openrouter: response has no choices")

type Options struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration

	// MinSec and MaxSec are quoted to the model as insertion bounds.
	MinSec float64
	MaxSec float64
}

type Adapter struct {
	key     string
	model   string
	baseURL string
	timeout time.Duration
	minSec  float64
	maxSec  float64
	client  *http.Client
}

func New(opts Options) *Adapter {
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	minSec, maxSec := opts.MinSec, opts.MaxSec
	if minSec <= 0 || maxSec < minSec {
		minSec, maxSec = 2, 5
	}
	return &Adapter{
		key:     opts.APIKey,
		model:   model,
		baseURL: normalizeBaseURL(opts.BaseURL),
		timeout: timeout,
		minSec:  minSec,
		maxSec:  maxSec,
		client:  &http.Client{Timeout: 5 * time.Minute},
	}
}

// ProposeInsertions asks the model to place B-roll clips against the
// transcript. The returned candidates are only checked for shape; bounds,
// ids and overlaps are the planner's job.
func (a *Adapter) ProposeInsertions(
	ctx context.Context,
	tr types.Transcript,
	assets []types.BRollAsset,
) ([]types.RawCandidate, error) {
	if len(tr.Segments) == 0 || len(assets) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(chatRequest{
		Model:       a.model,
		Temperature: 0.2,
		MaxTokens:   1500,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt(a.minSec, a.maxSec)},
			{Role: "user", Content: userPrompt(FormatTranscript(tr), FormatAssets(assets))},
		},
		ResponseFormat: &responseFormat{
			Type: "json_schema",
			JSONSchema: jsonSchemaFormat{
				Name:   "broll_insertion_plan",
				Schema: json.RawMessage(planSchema),
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	content, err := a.complete(ctx, body)
	if err != nil {
		return nil, err
	}
	return parsePlan(content)
}

func (a *Adapter) complete(ctx context.Context, body []byte) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, a.baseURL+"/api/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.key)
	req.Header.Set("X-Title", "brollcut")

	resp, err := a.client.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("openrouter timeout after %s (model=%s)", a.timeout, a.model)
		}
		return "", fmt.Errorf("openrouter request: %s", redactSecrets(err.Error(), a.key))
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		msg, readErr := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if readErr != nil {
			return "", fmt.Errorf("openrouter status %d (body unreadable: %v)", resp.StatusCode, readErr)
		}
		return "", fmt.Errorf("openrouter status %d: %s", resp.StatusCode, truncate(redactSecrets(string(msg), a.key), 400))
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", fmt.Errorf("openrouter decode response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return "", ErrNoChoices
	}
	return contentText(cr.Choices[0].Message.Content)
}

// parsePlan extracts the JSON object from the model text, checks it against
// the plan schema and decodes the insertions.
func parsePlan(content string) ([]types.RawCandidate, error) {
	obj, err := extractJSONObject(content)
	if err != nil {
		return nil, err
	}
	doc := []byte(obj)
	if err := validatePlan(doc); err != nil {
		return nil, err
	}
	var plan struct {
		Insertions []types.RawCandidate `json:"insertions"`
	}
	if err := json.Unmarshal(doc, &plan); err != nil {
		return nil, fmt.Errorf("openrouter: decode plan: %w", err)
	}
	for i := range plan.Insertions {
		c := &plan.Insertions[i]
		c.BRollID = strings.TrimSpace(c.BRollID)
		c.Reason = strings.TrimSpace(c.Reason)
	}
	return plan.Insertions, nil
}
