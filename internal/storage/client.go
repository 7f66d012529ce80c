package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"mime/multipart"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Client uploads record content to the external content-addressed
// store and returns the handle the ledger keeps. Content is opaque
// here; it is never inspected or fetched back.
type Client struct {
	logger *zap.Logger
	url    string
	client *http.Client
}

func NewClient(logger *zap.Logger, storeAddr string) *Client {
	return &Client{
		logger: logger,
		url:    strings.TrimSuffix(storeAddr, "/"),
		client: http.DefaultClient,
	}
}

type uploadResponse struct {
	ContentHash string `json:"contentHash"`
}

// Upload pins the content and returns its hash handle.
func (c *Client) Upload(ctx context.Context, fileName string, content []byte) (string, error) {
	if len(content) == 0 {
		return "", errors.New("refusing to upload empty content")
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return "", errors.New("failed to build the upload form: " + err.Error())
	}
	if _, err := part.Write(content); err != nil {
		return "", errors.New("failed to write the upload form: " + err.Error())
	}
	if err := writer.Close(); err != nil {
		return "", errors.New("failed to close the upload form: " + err.Error())
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/pin", &body)
	if err != nil {
		return "", err
	}
	request.Header.Set("Content-Type", writer.FormDataContentType())

	response, err := c.client.Do(request)
	if err != nil {
		return "", errors.New("failed to reach the content store: " + err.Error())
	}
	defer response.Body.Close()

	if response.StatusCode >= 400 {
		return "", fmt.Errorf("content store error %d: %s", response.StatusCode, response.Status)
	}

	responseBody, err := ioutil.ReadAll(response.Body)
	if err != nil {
		return "", errors.New("failed to read the upload response: " + err.Error())
	}

	var parsed uploadResponse
	if err := json.Unmarshal(responseBody, &parsed); err != nil {
		return "", errors.New("failed to unmarshal the upload response: " + err.Error())
	}
	if parsed.ContentHash == "" {
		return "", errors.New("content store returned no content hash")
	}

	c.logger.Debug("content pinned", zap.String("fileName", fileName), zap.String("contentHash", parsed.ContentHash))
	return parsed.ContentHash, nil
}
