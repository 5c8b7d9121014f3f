// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/danielhkuo/pollkit/models"
)

// Client is a stateless wrapper around the MyWorld REST API. It holds no
// voting state; every call is request/response.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the given base URL ("https://host", no trailing
// slash required). httpClient may be nil, in which case a client with a
// 15 second timeout is used.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	for len(baseURL) > 0 && baseURL[len(baseURL)-1] == '/' {
		baseURL = baseURL[:len(baseURL)-1]
	}
	return &Client{baseURL: baseURL, http: httpClient}
}

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return "server returned " + http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("server returned %s: %s", http.StatusText(e.StatusCode), e.Message)
}

// Categories handles GET /api/categories.
func (c *Client) Categories(ctx context.Context) ([]models.Category, error) {
	var resp models.CategoriesResponse
	if err := c.get(ctx, "/api/categories", &resp); err != nil {
		return nil, err
	}
	return resp.Categories, nil
}

// Blocks handles GET /api/categories/{categoryID}/blocks.
func (c *Client) Blocks(ctx context.Context, categoryID int) ([]models.Block, error) {
	var resp models.BlocksResponse
	if err := c.get(ctx, "/api/categories/"+strconv.Itoa(categoryID)+"/blocks", &resp); err != nil {
		return nil, err
	}
	return resp.Blocks, nil
}

// Questions handles GET /api/blocks/{blockCode}/questions.
func (c *Client) Questions(ctx context.Context, blockCode string) ([]models.Question, error) {
	var resp models.QuestionsResponse
	if err := c.get(ctx, "/api/blocks/"+url.PathEscape(blockCode)+"/questions", &resp); err != nil {
		return nil, err
	}
	return resp.Questions, nil
}

// Options handles GET /api/questions/{questionCode}/options. Records are
// returned as-is; per-record validation is the caller's concern so one
// malformed option cannot hide its siblings.
func (c *Client) Options(ctx context.Context, questionCode string) ([]models.Option, error) {
	var resp models.OptionsResponse
	if err := c.get(ctx, "/api/questions/"+url.PathEscape(questionCode)+"/options", &resp); err != nil {
		return nil, err
	}
	return resp.Options, nil
}

// CreateUser handles POST /api/users?user_uuid=&year_of_birth=.
func (c *Client) CreateUser(ctx context.Context, userUUID string, yearOfBirth int) error {
	q := url.Values{}
	q.Set("user_uuid", userUUID)
	q.Set("year_of_birth", strconv.Itoa(yearOfBirth))

	var resp models.CreateUserResponse
	return c.post(ctx, "/api/users?"+q.Encode(), nil, &resp)
}

// SubmitSingle handles POST /api/vote/single.
func (c *Client) SubmitSingle(ctx context.Context, req models.SingleVoteRequest) error {
	var ack models.VoteAck
	return c.post(ctx, "/api/vote/single", req, &ack)
}

// SubmitCheckbox handles POST /api/vote/checkbox.
func (c *Client) SubmitCheckbox(ctx context.Context, req models.CheckboxVoteRequest) error {
	var ack models.VoteAck
	return c.post(ctx, "/api/vote/checkbox", req, &ack)
}

// SubmitOther handles POST /api/vote/other.
func (c *Client) SubmitOther(ctx context.Context, req models.OtherVoteRequest) error {
	var ack models.VoteAck
	return c.post(ctx, "/api/vote/other", req, &ack)
}

// Results handles GET /api/results/{questionCode}.
func (c *Client) Results(ctx context.Context, questionCode string) (models.Results, error) {
	var resp models.Results
	if err := c.get(ctx, "/api/results/"+url.PathEscape(questionCode), &resp); err != nil {
		return models.Results{}, err
	}
	if resp.QuestionCode == "" {
		resp.QuestionCode = questionCode
	}
	return resp, nil
}

// Soundtracks handles GET /api/soundtracks.
func (c *Client) Soundtracks(ctx context.Context) ([]models.Song, error) {
	var resp models.SoundtracksResponse
	if err := c.get(ctx, "/api/soundtracks", &resp); err != nil {
		return nil, err
	}
	return resp.Soundtracks, nil
}

// Playlists handles GET /api/soundtracks/playlists. Comma-separated
// entries are split and deduplicated.
func (c *Client) Playlists(ctx context.Context) ([]string, error) {
	var resp models.PlaylistsResponse
	if err := c.get(ctx, "/api/soundtracks/playlists", &resp); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var out []string
	for _, entry := range resp.Playlists {
		for _, name := range (models.Song{PlaylistTag: entry}).Playlists() {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr models.ErrorResponse
		// Best effort; the error body may not be JSON.
		_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&apiErr)
		msg := apiErr.Message
		if msg == "" {
			msg = apiErr.Error
		}
		return &StatusError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", req.URL.Path, err)
	}
	return nil
}
