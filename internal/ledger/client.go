package ledger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/ioutil"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// ErrSourceUnavailable wraps transport failures against the ledger
// gateway. Fetches are idempotent, so the caller may retry the same
// window; duplicates are collapsed by the projection's deduplication.
var ErrSourceUnavailable = errors.New("ledger source unavailable")

const (
	eventsAPI       = "events"
	callAPI         = "call"
	intentSubmitAPI = "intents"
	intentStatusAPI = "intent_statuses"

	contentTypeOctetStream = "application/octet-stream"
)

// Client talks to the ledger gateway: historical event reads, point
// calls against current state, and write-intent submission. The
// gateway is authoritative; this client never interprets beyond its
// wire format.
type Client struct {
	logger *zap.Logger
	url    string
}

func NewClient(logger *zap.Logger, gatewayAddr string) *Client {
	return &Client{logger: logger, url: gatewayAddr}
}

func (c Client) sendRequest(ctx context.Context, apiSuffix string, data []byte, contentType string) (string, error) {

	var url string
	if strings.HasPrefix(c.url, "http://") {
		url = fmt.Sprintf("%s/%s", c.url, apiSuffix)
	} else {
		url = fmt.Sprintf("http://%s/%s", c.url, apiSuffix)
	}

	var request *http.Request
	var err error
	if len(data) > 0 {
		request, err = http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(data))
		if err == nil {
			request.Header.Set("Content-Type", contentType)
		}
	} else {
		request, err = http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	}
	if err != nil {
		return "", err
	}

	response, err := http.DefaultClient.Do(request)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer response.Body.Close()

	if response.StatusCode == 404 {
		c.logger.Debug(fmt.Sprintf("%v", response))
		return "", errors.New("gateway responded with status 404")
	} else if response.StatusCode >= 400 {
		return "", fmt.Errorf("gateway error %d: %s", response.StatusCode, response.Status)
	}

	responseBody, err := ioutil.ReadAll(response.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %v", ErrSourceUnavailable, err)
	}
	return string(responseBody), nil
}
