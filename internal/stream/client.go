// Package stream implements the widget-side streaming chat client: it
// issues one request to the chat backend and delivers incremental text
// deltas to caller-supplied callbacks as the response streams.
package stream

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sitewise-ai/sitewise/internal/domain"
)

// Callbacks receives stream events. OnDelta is invoked with each raw
// fragment, never accumulated text; accumulation belongs to the caller.
// OnDone fires exactly once on normal termination. OnError fires at
// most once with a human-readable message; after it fires no further
// callbacks are delivered for that call.
type Callbacks struct {
	OnDelta func(delta string)
	OnDone  func()
	OnError func(msg string)
}

// Client consumes the chat backend's SSE stream.
type Client struct {
	// Endpoint is the chat backend URL, e.g. <base>/api/widget/chat.
	Endpoint string
	// HTTPClient defaults to http.DefaultClient when nil.
	HTTPClient *http.Client
}

// New creates a stream client for the given chat endpoint
func New(endpoint string) *Client {
	return &Client{Endpoint: endpoint}
}

// Stream sends the conversation to the chat backend and consumes the
// response until [DONE], an error, or context cancellation. It blocks
// for the lifetime of the stream.
func (c *Client) Stream(ctx context.Context, req domain.ChatRequest, cb Callbacks) {
	body, err := json.Marshal(req)
	if err != nil {
		c.fail(cb, fmt.Sprintf("failed to encode chat request: %v", err))
		return
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		c.fail(cb, fmt.Sprintf("failed to create chat request: %v", err))
		return
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		c.fail(cb, fmt.Sprintf("chat request failed: %v", err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		c.fail(cb, fmt.Sprintf("chat backend returned status %d", resp.StatusCode))
		return
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimPrefix(line, "data: ")
		if data == domain.DoneSentinel {
			break
		}

		var chunk domain.StreamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			// Lenient parsing: a malformed line is skipped, not fatal
			continue
		}
		if chunk.Content != "" && cb.OnDelta != nil {
			cb.OnDelta(chunk.Content)
		}
	}

	if err := scanner.Err(); err != nil {
		c.fail(cb, fmt.Sprintf("chat stream interrupted: %v", err))
		return
	}

	if cb.OnDone != nil {
		cb.OnDone()
	}
}

func (c *Client) fail(cb Callbacks, msg string) {
	if cb.OnError != nil {
		cb.OnError(msg)
	}
}
