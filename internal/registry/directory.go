package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"net/http"
	"strings"

	"medrec-verification/internal/model"
)

// DirectoryClient reads the external participant directory. The
// directory is never mutated from here.
type DirectoryClient struct {
	baseURL string
	client  *http.Client
}

func NewDirectoryClient(baseURL string, client *http.Client) *DirectoryClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &DirectoryClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
	}
}

type directoryEntry struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

func (d *DirectoryClient) Providers(ctx context.Context) ([]model.Participant, error) {
	return d.fetch(ctx, "providers", model.RoleDoctor)
}

func (d *DirectoryClient) Insurers(ctx context.Context) ([]model.Participant, error) {
	return d.fetch(ctx, "insurers", model.RoleInsurer)
}

func (d *DirectoryClient) fetch(ctx context.Context, resource string, role model.Role) ([]model.Participant, error) {
	url := fmt.Sprintf("%s/%s", d.baseURL, resource)

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	response, err := d.client.Do(request)
	if err != nil {
		return nil, errors.New("failed to reach the directory service: " + err.Error())
	}
	defer response.Body.Close()

	if response.StatusCode >= 400 {
		return nil, fmt.Errorf("directory service error %d: %s", response.StatusCode, response.Status)
	}

	body, err := ioutil.ReadAll(response.Body)
	if err != nil {
		return nil, errors.New("failed to read the directory response: " + err.Error())
	}

	var entries []directoryEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, errors.New("failed to unmarshal the directory response: " + err.Error())
	}

	participants := make([]model.Participant, 0, len(entries))
	for _, entry := range entries {
		if entry.Name == "" {
			continue
		}
		participants = append(participants, model.Participant{
			Address:     entry.Address,
			DisplayName: entry.Name,
			Role:        role,
		})
	}

	return participants, nil
}
