package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Plan is the summary of one plan record.
type Plan struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	CreateTime  string `json:"createTime"`
}

type planPage struct {
	Current int64  `json:"current"`
	Size    int64  `json:"size"`
	Total   int64  `json:"total"`
	Pages   int64  `json:"pages"`
	Records []Plan `json:"records"`
}

// ListPlans fetches one page of the operator's plans.
func (c *Client) ListPlans(ctx context.Context, page, size int) ([]Plan, int64, error) {
	query := url.Values{
		"page": {strconv.Itoa(page)},
		"size": {strconv.Itoa(size)},
	}
	req, err := c.newRequest(ctx, http.MethodGet, "/v1/plans", query, nil, "")
	if err != nil {
		return nil, 0, err
	}
	var result planPage
	if err := c.do(req, &result); err != nil {
		return nil, 0, err
	}
	return result.Records, result.Total, nil
}

// PlanProgress is one progress note attached to a plan.
type PlanProgress struct {
	ID          string `json:"id"`
	PlanID      string `json:"planId"`
	Description string `json:"description"`
	CreateTime  string `json:"createTime"`
	UpdateTime  string `json:"updateTime"`
}

// ProgressUpdate carries only the fields a client may change on a progress
// note. Everything else is server-owned.
type ProgressUpdate struct {
	ID          string `json:"id"`
	PlanID      string `json:"planId"`
	Description string `json:"description"`
}

type progressPage struct {
	Current int64          `json:"current"`
	Size    int64          `json:"size"`
	Total   int64          `json:"total"`
	Pages   int64          `json:"pages"`
	Records []PlanProgress `json:"records"`
}

// ListProgresses fetches one page of progress notes for a plan.
func (c *Client) ListProgresses(ctx context.Context, planID string, page, size int) ([]PlanProgress, int64, error) {
	query := url.Values{
		"page": {strconv.Itoa(page)},
		"size": {strconv.Itoa(size)},
	}
	path := fmt.Sprintf("/v1/plans/%s/progresses", url.PathEscape(planID))
	req, err := c.newRequest(ctx, http.MethodGet, path, query, nil, "")
	if err != nil {
		return nil, 0, err
	}
	var result progressPage
	if err := c.do(req, &result); err != nil {
		return nil, 0, err
	}
	return result.Records, result.Total, nil
}

// UpdateProgress persists an edited description. The returned entity is the
// server's authoritative post-update state and must replace any local copy
// wholesale; the request payload is never re-displayed.
func (c *Client) UpdateProgress(ctx context.Context, update ProgressUpdate) (PlanProgress, error) {
	if update.ID == "" {
		return PlanProgress{}, fmt.Errorf("api: progress update requires an id")
	}
	req, err := c.jsonRequest(ctx, http.MethodPut, fmt.Sprintf("/v1/plan-progresses/%s", url.PathEscape(update.ID)), update)
	if err != nil {
		return PlanProgress{}, err
	}
	var updated PlanProgress
	if err := c.do(req, &updated); err != nil {
		return PlanProgress{}, err
	}
	return updated, nil
}
