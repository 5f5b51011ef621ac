package camera

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/skobkin/camsync/internal/timesource"
	"github.com/skobkin/camsync/internal/transport"
)

// Endpoint is the camera time-set target on the joined network.
type Endpoint struct {
	BaseURL string
	Path    string
}

// EncodeTimeParam renders the snapshot as six %xx groups: year mod 100,
// month, day, hour, minute, second.
func EncodeTimeParam(s timesource.Snapshot) string {
	fields := [...]int{s.Year % 100, s.Month, s.Day, s.Hour, s.Minute, s.Second}

	var b strings.Builder
	b.Grow(len(fields) * 3)
	for _, v := range fields {
		fmt.Fprintf(&b, "%%%02x", byte(v))
	}

	return b.String()
}

// TimeURL joins the endpoint with the encoded parameter. The parameter is
// appended verbatim; url.Values would escape the percent signs.
func TimeURL(e Endpoint, s timesource.Snapshot) string {
	return strings.TrimRight(e.BaseURL, "/") + "/" + strings.TrimLeft(e.Path, "/") + "?p=" + EncodeTimeParam(s)
}

// ApplyTime performs one time-set exchange. 200 and 204 succeed; anything
// else, including a transport failure, is an *HTTPError.
func ApplyTime(
	ctx context.Context,
	requester transport.Requester,
	endpoint Endpoint,
	snap timesource.Snapshot,
	logger *slog.Logger,
) error {
	logger = stageLogger(logger, "apply")
	target := TimeURL(endpoint, snap)
	logger.Info("applying time", "time", snap.String(), "url", target)

	status, body, err := requester.Get(ctx, target)
	if err != nil {
		return &HTTPError{StatusCode: status, Body: strings.TrimSpace(string(body)), Err: err}
	}
	switch status {
	case http.StatusOK, http.StatusNoContent:
		logger.Info("time applied", "status", status)
		return nil
	default:
		return &HTTPError{StatusCode: status, Body: strings.TrimSpace(string(body))}
	}
}
