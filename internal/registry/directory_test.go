package registry_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"medrec-verification/internal/model"
	"medrec-verification/internal/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectoryFetch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/providers":
			_, _ = w.Write([]byte(`[{"name":"GeneralHospital","address":"0xd0"},{"name":"","address":"0x00"}]`))
		case "/insurers":
			_, _ = w.Write([]byte(`[{"name":"Acme","address":"0x15"}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer ts.Close()

	client := registry.NewDirectoryClient(ts.URL, nil)

	providers, err := client.Providers(context.Background())
	require.NoError(t, err)
	// nameless entries are skipped
	require.Len(t, providers, 1)
	assert.Equal(t, "GeneralHospital", providers[0].DisplayName)
	assert.Equal(t, model.RoleDoctor, providers[0].Role)

	insurers, err := client.Insurers(context.Background())
	require.NoError(t, err)
	require.Len(t, insurers, 1)
	assert.Equal(t, model.RoleInsurer, insurers[0].Role)
}

func TestDirectoryFetchErrors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	client := registry.NewDirectoryClient(ts.URL, nil)

	_, err := client.Providers(context.Background())
	assert.Error(t, err)

	ts.Close()
	_, err = client.Insurers(context.Background())
	assert.Error(t, err)
}
