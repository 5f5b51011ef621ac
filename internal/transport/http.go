package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const maxResponseBodyBytes = 4 << 10

// HTTPRequester implements Requester with net/http. Redirects are not followed:
// the camera answers the time-set call directly.
type HTTPRequester struct {
	client *http.Client
}

func NewHTTPRequester(client *http.Client, timeout time.Duration) *HTTPRequester {
	if client == nil {
		client = &http.Client{
			Timeout: timeout,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		}
	}

	return &HTTPRequester{client: client}
}

func (r *HTTPRequester) Get(ctx context.Context, url string) (int, []byte, error) {
	logger := channelLogger("http", "url", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}

	started := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		logger.Debug("request failed", "error", err, "duration", time.Since(started))
		return 0, nil, fmt.Errorf("perform request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response body: %w", err)
	}
	logger.Debug("request completed", "status", resp.StatusCode, "body_len", len(body), "duration", time.Since(started))

	return resp.StatusCode, body, nil
}
