// Package sentiment derives a coarse 3-way sentiment label from free
// text using an LLM behind a never-fails interface.
package sentiment

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/leadflow/internal/config"
	"github.com/sells-group/leadflow/internal/model"
	"github.com/sells-group/leadflow/pkg/anthropic"
)

// Classifier labels free text with a sentiment. Implementations never
// return an error: any internal failure degrades to neutral.
type Classifier interface {
	Classify(ctx context.Context, text string) model.Sentiment
}

// Label is the fine-grained 5-way label emitted by the model over an
// ordered scale from very_negative to very_positive.
type Label string

const (
	LabelVeryNegative Label = "very_negative"
	LabelNegative     Label = "negative"
	LabelNeutral      Label = "neutral"
	LabelPositive     Label = "positive"
	LabelVeryPositive Label = "very_positive"
)

// coarseLabels maps the 5-way scale onto the stored 3-way sentiment.
// The mapping is total: every valid label has an entry.
var coarseLabels = map[Label]model.Sentiment{
	LabelVeryNegative: model.SentimentNegative,
	LabelNegative:     model.SentimentNegative,
	LabelNeutral:      model.SentimentNeutral,
	LabelPositive:     model.SentimentPositive,
	LabelVeryPositive: model.SentimentPositive,
}

const systemPrompt = `You are a sentiment rater for sales lead notes. Classify the sentiment of the text into exactly one of: very_negative, negative, neutral, positive, very_positive. Respond with a valid JSON object: {"sentiment": "<label>"}`

// ModelClassifier classifies text with an Anthropic model. A nil client
// (missing API key, failed startup) is valid: every call then returns
// neutral, so ingestion keeps working without the model.
type ModelClassifier struct {
	client    anthropic.Client
	model     string
	system    []anthropic.SystemBlock
	limiter   *rate.Limiter
	maxInput  int
	maxTokens int64
}

// NewModelClassifier constructs a classifier. Never fails.
func NewModelClassifier(client anthropic.Client, modelName string, cfg config.SentimentConfig) *ModelClassifier {
	maxInput := cfg.MaxInputChars
	if maxInput <= 0 {
		maxInput = 2000
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 64
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}

	if client == nil {
		zap.L().Warn("sentiment: model unavailable, all notes will classify as neutral")
	}

	return &ModelClassifier{
		client:    client,
		model:     modelName,
		system:    anthropic.BuildCachedSystemBlocks(systemPrompt),
		limiter:   rate.NewLimiter(rate.Limit(rps), 1),
		maxInput:  maxInput,
		maxTokens: maxTokens,
	}
}

// Classify returns the sentiment of text. Empty or whitespace-only text
// is neutral without a model call. Failures are absorbed here, logged,
// and coerced to neutral; this is the only point where that happens.
func (c *ModelClassifier) Classify(ctx context.Context, text string) model.Sentiment {
	if strings.TrimSpace(text) == "" {
		return model.SentimentNeutral
	}
	if c.client == nil {
		return model.SentimentNeutral
	}

	label, err := c.infer(ctx, text)
	if err != nil {
		zap.L().Warn("sentiment: classification failed, defaulting to neutral", zap.Error(err))
		return model.SentimentNeutral
	}
	return coarseLabels[label]
}

// infer runs one model call and returns the raw 5-way label. Input is
// truncated to keep inference cost and latency bounded; the remainder
// is not chunked or aggregated.
func (c *ModelClassifier) infer(ctx context.Context, text string) (Label, error) {
	if len(text) > c.maxInput {
		text = text[:c.maxInput]
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", eris.Wrap(err, "sentiment: rate limit wait")
	}

	resp, err := c.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    c.system,
		Messages: []anthropic.Message{
			{Role: "user", Content: text},
		},
	})
	if err != nil {
		return "", eris.Wrap(err, "sentiment: create message")
	}

	label, err := parseLabel(resp.Text())
	if err != nil {
		return "", err
	}

	zap.L().Debug("sentiment: classified",
		zap.String("label", string(label)),
		zap.Int64("input_tokens", resp.Usage.InputTokens),
		zap.Int64("output_tokens", resp.Usage.OutputTokens),
	)
	return label, nil
}

func parseLabel(text string) (Label, error) {
	text = cleanJSON(text)

	var result struct {
		Sentiment string `json:"sentiment"`
	}
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return "", eris.Wrapf(err, "sentiment: parse model output %q", text)
	}

	label := Label(strings.ToLower(strings.TrimSpace(result.Sentiment)))
	if _, ok := coarseLabels[label]; !ok {
		return "", eris.Errorf("sentiment: unknown label %q", result.Sentiment)
	}
	return label, nil
}

// cleanJSON strips markdown fences and surrounding prose from a model
// response so the embedded JSON object can be unmarshalled.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}
