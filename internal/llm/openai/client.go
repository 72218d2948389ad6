package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/structeng/cfst-extractor/internal/entity"
	"github.com/structeng/cfst-extractor/internal/llm"
)

// ExtractSpecimens implements llm.Extractor over an OpenAI-compatible
// chat/completions endpoint with vision input. Transient failures are
// retried with exponential backoff (2s, 4s, 8s); schema repair runs before
// validation so minor formatting defects do not burn an attempt.
func (c *Client) ExtractSpecimens(ctx context.Context, req llm.ExtractRequest) (entity.ExtractionResult, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("llm.extract.start",
		"req_id", rid,
		"ref_no", req.RefNo,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"pages", len(req.Images),
	)

	body := c.buildVisionPayload(req)
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}

	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxRetries; attempt++ {
		raw, status, err := llm.SendJSON(ctx, c.http, endpoint, body, headers, c.logger)
		if err != nil {
			lastErr = err
			// 4xx responses are not transient; retrying them only burns quota.
			if status >= 400 && status < 500 && status != 429 {
				c.logger.Error("llm.extract.rejected",
					"req_id", rid, "status", status, "error", err)
				return entity.ExtractionResult{}, raw, fmt.Errorf("extraction rejected: %w", err)
			}
			if attempt < c.cfg.MaxRetries {
				wait := time.Duration(1<<attempt) * time.Second // 2s, 4s, 8s
				c.logger.Warn("llm.extract.retry",
					"req_id", rid, "attempt", attempt, "wait", wait, "error", err)
				select {
				case <-ctx.Done():
					return entity.ExtractionResult{}, nil, ctx.Err()
				default:
				}
				c.sleep(wait)
			}
			continue
		}

		result, content, decodeErr := c.decodeResponse(rid, raw)
		if decodeErr != nil {
			lastErr = decodeErr
			continue
		}
		c.logger.Info("llm.extract.ok",
			"req_id", rid,
			"ref_no", req.RefNo,
			"is_valid", result.IsValid,
			"specimens", result.Count(),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return result, content, nil
	}

	c.logger.Error("llm.extract.failed",
		"req_id", rid, "attempts", c.cfg.MaxRetries, "error", lastErr,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return entity.ExtractionResult{}, nil,
		fmt.Errorf("extraction failed after %d attempts: %w", c.cfg.MaxRetries, lastErr)
}

// buildVisionPayload assembles the chat/completions body: system prompt,
// user message, then one high-detail image block per page as a data URI.
func (c *Client) buildVisionPayload(req llm.ExtractRequest) map[string]any {
	content := []map[string]any{
		{"type": "text", "text": llm.BuildUserPrompt(req.RefNo, len(req.Images))},
	}
	for _, img := range req.Images {
		dataURI := "data:image/png;base64," + base64.StdEncoding.EncodeToString(img.PNG)
		content = append(content, map[string]any{
			"type": "image_url",
			"image_url": map[string]any{
				"url":    dataURI,
				"detail": "high", // tables need the full-resolution pass
			},
		})
	}

	schema := llm.BuildExtractionJSONSchema()
	return map[string]any{
		"model":       c.cfg.Model,
		"temperature": c.cfg.Temperature,
		"max_tokens":  c.cfg.MaxTokens,
		"messages": []map[string]any{
			{"role": "system", "content": llm.BuildSystemPrompt()},
			{"role": "user", "content": content},
			{"role": "system", "content": "JSON Schema:\n" + mustJSON(schema)},
		},
	}
}

// decodeResponse unwraps the chat choice, repairs and validates the JSON,
// and decodes the extraction result.
func (c *Client) decodeResponse(rid string, raw []byte) (entity.ExtractionResult, []byte, error) {
	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.logger.Error("llm.extract.decode_error", "req_id", rid, "error", err, "raw_bytes", len(raw))
		return entity.ExtractionResult{}, raw, fmt.Errorf("decode response: %w", err)
	}
	if len(cc.Choices) == 0 {
		c.logger.Error("llm.extract.no_choices", "req_id", rid)
		return entity.ExtractionResult{}, raw, fmt.Errorf("no choices in response")
	}

	content := llm.StripCodeFences([]byte(cc.Choices[0].Message.Content))
	cleaned, repairs, err := llm.NormalizeExtractionJSON(content, c.logger)
	if err != nil {
		c.logger.Error("llm.extract.sanitize_failed", "req_id", rid, "error", err)
		return entity.ExtractionResult{}, content, fmt.Errorf("sanitize: %w", err)
	}
	if len(repairs) > 0 {
		c.logger.Warn("llm.extract.sanitize_applied", "req_id", rid, "repairs", len(repairs))
	}

	schema := llm.BuildExtractionJSONSchema()
	if err := llm.ValidateJSONAgainstSchema(schema, cleaned); err != nil {
		c.logger.Error("llm.extract.schema_validation_failed",
			"req_id", rid, "error", err, "content", string(cleaned))
		return entity.ExtractionResult{}, cleaned, fmt.Errorf("schema validation: %w", err)
	}

	var result entity.ExtractionResult
	if err := json.Unmarshal(cleaned, &result); err != nil {
		return entity.ExtractionResult{}, cleaned, fmt.Errorf("decode extraction result: %w", err)
	}
	return result, cleaned, nil
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
