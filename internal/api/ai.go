package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Quota is the caller's remaining allowance for the AI title generator.
type Quota struct {
	Allowed   bool
	Remaining int64
}

// quotaPayload tolerates both field names the backend has used for the
// remaining count.
type quotaPayload struct {
	Allowed        *bool  `json:"allowed"`
	Remaining      *int64 `json:"remaining"`
	RemainingCount *int64 `json:"remainingCount"`
}

// CheckQuota asks the backend how much title-generation allowance remains.
// A success=false envelope is not an error here: it reports an exhausted
// quota, matching how the admin panels treat it.
func (c *Client) CheckQuota(ctx context.Context) (Quota, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/v1/ai/check-quota", nil, nil, "")
	if err != nil {
		return Quota{}, err
	}
	var env envelope
	if err := c.do(req, &env); err != nil {
		return Quota{}, err
	}
	if !env.Success {
		return Quota{}, nil
	}
	var payload quotaPayload
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			return Quota{}, fmt.Errorf("api: decode quota payload: %w", err)
		}
	}
	quota := Quota{}
	switch {
	case payload.Remaining != nil:
		quota.Remaining = *payload.Remaining
	case payload.RemainingCount != nil:
		quota.Remaining = *payload.RemainingCount
	}
	if payload.Allowed != nil {
		quota.Allowed = *payload.Allowed
	} else {
		quota.Allowed = quota.Remaining > 0
	}
	return quota, nil
}

// GenerateTitle asks the backend to produce a title for the given article
// content. Application rejections (including success=false on HTTP 200)
// come back as *Error carrying the server's reason, so the UI can prefer it
// over a generic fallback.
func (c *Client) GenerateTitle(ctx context.Context, content string) (string, error) {
	req, err := c.jsonRequest(ctx, http.MethodPost, "/v1/ai/generate-title", map[string]string{"content": content})
	if err != nil {
		return "", err
	}
	data, err := c.doEnvelope(req)
	if err != nil {
		return "", err
	}
	var title string
	if err := json.Unmarshal(data, &title); err != nil {
		return "", fmt.Errorf("api: decode generated title: %w", err)
	}
	return title, nil
}
