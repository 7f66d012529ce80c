package ledger_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"medrec-verification/internal/ledger"
	"medrec-verification/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFetchRecordCreated(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/events", r.URL.Path)
		assert.Equal(t, model.KindRecordCreated, r.URL.Query().Get("kind"))
		assert.Equal(t, "0", r.URL.Query().Get("from"))
		assert.Equal(t, "latest", r.URL.Query().Get("to"))

		_, _ = w.Write([]byte(`{"data":[
			{"kind":"RecordCreated","position":4,"attributes":{"tokenId":1,"ownerAddress":"0xaa","patientName":"Jan Kowalski","contentHash":"QmContent","providerName":"GeneralHospital"}},
			{"kind":"VerificationRequested","position":5,"attributes":{"tokenId":1,"insurerName":"Acme"}}
		]}`))
	}))
	defer ts.Close()

	client := ledger.NewClient(zap.NewNop(), ts.URL)

	events, err := client.FetchRecordCreated(context.Background(), 0, ledger.PositionLatest)
	require.NoError(t, err)

	// the stray event of another kind is dropped
	require.Len(t, events, 1)
	assert.Equal(t, uint64(1), events[0].TokenID)
	assert.Equal(t, "GeneralHospital", events[0].ProviderName)
	assert.Equal(t, uint64(4), events[0].Position)
}

func TestFetchVerificationRequested(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[
			{"kind":"VerificationRequested","position":9,"attributes":{"tokenId":2,"insurerName":"Acme","doctorName":"GeneralHospital"}}
		]}`))
	}))
	defer ts.Close()

	client := ledger.NewClient(zap.NewNop(), ts.URL)

	events, err := client.FetchVerificationRequested(context.Background(), 0, "")
	require.NoError(t, err)

	require.Len(t, events, 1)
	assert.Equal(t, "Acme", events[0].InsurerName)
	assert.Equal(t, uint64(9), events[0].Position)
}

func TestFetchSourceUnavailable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close()

	client := ledger.NewClient(zap.NewNop(), ts.URL)

	_, err := client.FetchRecordCreated(context.Background(), 0, ledger.PositionLatest)
	assert.ErrorIs(t, err, ledger.ErrSourceUnavailable)
}

func TestPointCalls(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/call/isDoctorVerified":
			assert.Equal(t, "7", r.URL.Query().Get("tokenId"))
			_, _ = w.Write([]byte(`{"data":{"bool":true}}`))
		case "/call/isInsurerVerified":
			_, _ = w.Write([]byte(`{"data":{"bool":false}}`))
		case "/call/getRequestDetails":
			_, _ = w.Write([]byte(`{"data":{"request":{"insurerName":"Acme","requested":true}}}`))
		case "/call/isRegisteredInsurer":
			assert.Equal(t, "0x15", r.URL.Query().Get("address"))
			_, _ = w.Write([]byte(`{"data":{"bool":true}}`))
		case "/call/getInsurerName":
			_, _ = w.Write([]byte(`{"data":{"text":"Acme"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer ts.Close()

	client := ledger.NewClient(zap.NewNop(), ts.URL)
	ctx := context.Background()

	doctorVerified, err := client.IsDoctorVerified(ctx, 7)
	require.NoError(t, err)
	assert.True(t, doctorVerified)

	insurerVerified, err := client.IsInsurerVerified(ctx, 7)
	require.NoError(t, err)
	assert.False(t, insurerVerified)

	details, err := client.GetRequestDetails(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, ledger.RequestDetails{InsurerName: "Acme", Requested: true}, details)

	registered, err := client.IsRegisteredInsurer(ctx, "0x15")
	require.NoError(t, err)
	assert.True(t, registered)

	name, err := client.GetInsurerName(ctx, "0x15")
	require.NoError(t, err)
	assert.Equal(t, "Acme", name)
}
