package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/lueurxax/theme-scout/internal/config"
	"github.com/lueurxax/theme-scout/internal/core/domain"
	apperrors "github.com/lueurxax/theme-scout/internal/core/errors"
	"github.com/lueurxax/theme-scout/internal/core/ports"
)

type openaiClient struct {
	cfg         *config.Config
	client      *openai.Client
	logger      *zerolog.Logger
	rateLimiter *rate.Limiter

	// Circuit breaker state
	consecutiveFailures int
	circuitOpenUntil    time.Time
	mu                  sync.Mutex
}

const (
	circuitBreakerThreshold = 5
	circuitBreakerTimeout   = 1 * time.Minute
)

// NewOpenAI creates the OpenAI-backed scoring client.
func NewOpenAI(cfg *config.Config, logger *zerolog.Logger) Client {
	return &openaiClient{
		cfg:         cfg,
		client:      openai.NewClient(cfg.LLMAPIKey),
		logger:      logger,
		rateLimiter: rate.NewLimiter(rate.Limit(float64(cfg.RateLimitRPS)), rateLimiterBurst),
	}
}

func (c *openaiClient) checkCircuit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if time.Now().Before(c.circuitOpenUntil) {
		return fmt.Errorf("%w until %v", apperrors.ErrCircuitBreakerOpen, c.circuitOpenUntil)
	}

	return nil
}

func (c *openaiClient) recordSuccess() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.consecutiveFailures = 0
}

func (c *openaiClient) recordFailure() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.consecutiveFailures++
	if c.consecutiveFailures >= circuitBreakerThreshold {
		c.circuitOpenUntil = time.Now().Add(circuitBreakerTimeout)
		c.logger.Warn().
			Int("consecutive_failures", c.consecutiveFailures).
			Time("open_until", c.circuitOpenUntil).
			Msg("Circuit breaker opened")
	}
}

// ScoreThemes asks the model to rate each candidate 0.0-1.0 against the
// asset and returns the scores it chose to include, referencing 1-based
// candidate positions.
func (c *openaiClient) ScoreThemes(ctx context.Context, assetName, assetDescription string, candidates []domain.CandidateTheme) ([]ports.ThemeScore, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	if err := c.checkCircuit(); err != nil {
		return nil, err
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model(),
		Temperature: rerankTemperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildRerankPrompt(assetName, assetDescription, candidates),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		c.recordFailure()

		return nil, fmt.Errorf("openai chat completion error: %w", err)
	}

	c.recordSuccess()

	if len(resp.Choices) == 0 {
		return nil, apperrors.ErrEmptyResponse
	}

	content := resp.Choices[0].Message.Content
	c.logger.Debug().Str("content", content).Msg("LLM rerank response")

	scores, err := parseThemeScores(content)
	if err != nil {
		return nil, err
	}

	return scores, nil
}

func (c *openaiClient) model() string {
	if c.cfg.LLMModel != "" {
		return c.cfg.LLMModel
	}

	return openai.GPT4oMini
}

// parseThemeScores extracts score entries from the model response. The model
// is asked for a {"results": [...]} object but bare arrays and other array
// keys are tolerated.
func parseThemeScores(content string) ([]ports.ThemeScore, error) {
	var wrapper struct {
		Results []ports.ThemeScore `json:"results"`
	}

	if err := json.Unmarshal([]byte(content), &wrapper); err == nil && len(wrapper.Results) > 0 {
		return wrapper.Results, nil
	}

	var scores []ports.ThemeScore
	if err := json.Unmarshal([]byte(content), &scores); err == nil && len(scores) > 0 {
		return scores, nil
	}

	// Last resort: find any array value in the JSON object.
	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(content), &raw); err == nil {
		for _, v := range raw {
			arr, ok := v.([]interface{})
			if !ok || len(arr) == 0 {
				continue
			}

			arrBytes, _ := json.Marshal(v)
			if err := json.Unmarshal(arrBytes, &scores); err == nil && len(scores) > 0 {
				return scores, nil
			}
		}
	}

	return nil, fmt.Errorf("failed to extract any scores from LLM response: %s", content)
}
