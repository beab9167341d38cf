// Package backend implements the generation client for OpenAI-compatible
// chat completion endpoints.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/task-sh/task-sh/internal/domain"
	"github.com/task-sh/task-sh/internal/ports"
)

const (
	defaultEndpoint = "https://api.openai.com/v1/chat/completions"
	defaultAuthVar  = "OPENAI_API_KEY"

	// Replies are one command plus an explanation; anything bigger is noise.
	maxReplyBytes = 1 << 20
)

// Client implements ports.BackendClient. It sends exactly one request per
// invocation and never retries: on failure the user simply reruns.
//
// When a fake response override is configured, Invoke returns it without
// touching the network, so the rest of the pipeline can be exercised
// offline.
type Client struct {
	endpoint     string
	model        string
	apiKey       string
	authVar      string
	fakeResponse string
	httpClient   *http.Client
	log          ports.Logger
}

// NewClient builds a client from the loaded backend settings.
func NewClient(cfg domain.BackendSettings, log ports.Logger) *Client {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	authVar := cfg.AuthEnvVar
	if authVar == "" {
		authVar = defaultAuthVar
	}
	return &Client{
		endpoint:     endpoint,
		model:        cfg.Model,
		apiKey:       cfg.APIKey,
		authVar:      authVar,
		fakeResponse: cfg.FakeResponse,
		httpClient:   &http.Client{Timeout: cfg.EffectiveTimeout()},
		log:          log,
	}
}

type chatRequest struct {
	Model       string                 `json:"model"`
	Messages    []domain.PromptMessage `json:"messages"`
	MaxTokens   int                    `json:"max_tokens,omitempty"`
	Temperature float64                `json:"temperature,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Invoke performs one chat completion call and returns the raw reply text.
func (c *Client) Invoke(ctx context.Context, req domain.GenerationRequest) (domain.RawReply, error) {
	if c.fakeResponse != "" {
		if c.log != nil {
			c.log.Debug("returning fake response override", nil)
		}
		return domain.RawReply{Content: c.fakeResponse, FromOverride: true}, nil
	}

	if c.apiKey == "" {
		return domain.RawReply{}, &domain.BackendError{
			Reason: domain.BackendAuth,
			Err:    fmt.Errorf("missing API key: set %s", c.authVar),
		}
	}

	model := req.Model
	if model == "" {
		model = c.model
	}
	body, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    req.Messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return domain.RawReply{}, &domain.BackendError{Reason: domain.BackendBadPayload, Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.RawReply{}, &domain.BackendError{Reason: domain.BackendNetwork, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	if c.log != nil {
		c.log.Debug("calling backend", map[string]interface{}{"endpoint": c.endpoint, "model": model})
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return domain.RawReply{}, &domain.BackendError{Reason: failureReason(err), Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return domain.RawReply{}, &domain.BackendError{Reason: failureReason(err), Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.RawReply{}, &domain.BackendError{
			Reason: domain.BackendBadStatus,
			Status: resp.StatusCode,
			Err:    errors.New(apiErrorMessage(raw, resp.Status)),
		}
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return domain.RawReply{}, &domain.BackendError{Reason: domain.BackendBadPayload, Err: err}
	}
	if len(parsed.Choices) == 0 {
		return domain.RawReply{}, &domain.BackendError{
			Reason: domain.BackendBadPayload,
			Err:    errors.New("reply carries no choices"),
		}
	}

	return domain.RawReply{
		Content: parsed.Choices[0].Message.Content,
		Model:   parsed.Model,
	}, nil
}

// failureReason tells timeouts apart from other transport failures. The
// HTTP client timeout and a context deadline both count as timeouts.
func failureReason(err error) domain.BackendReason {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.BackendTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.BackendTimeout
	}
	return domain.BackendNetwork
}

// apiErrorMessage pulls the human-readable message out of an error body,
// falling back to the HTTP status line when the body is not the documented
// {"error": {"message": ...}} shape.
func apiErrorMessage(body []byte, fallback string) string {
	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Error.Message != "" {
		return er.Error.Message
	}
	return fallback
}

var _ ports.BackendClient = (*Client)(nil)
