package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"medrec-verification/internal/hashing"
	"medrec-verification/internal/metrics"

	"github.com/fxamacker/cbor"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	statusCommitted = "COMMITTED"
	statusPending   = "PENDING"
	statusRejected  = "REJECTED"

	submitWait uint = 5
)

// Write-intent kinds accepted by the ledger.
const (
	IntentCreateRecord     = "createRecord"
	IntentIssueRequest     = "issueRequest"
	IntentApproveRequest   = "approveRequest"
	IntentVerifyByProvider = "verifyByProvider"
)

// Intent is a validated state-changing action bound for the ledger.
// The guard's allow decision is a pre-check only; the ledger applies
// its own rules on submission.
type Intent struct {
	Kind   string
	Sender string
	Params map[string]interface{}
}

func NewCreateRecordIntent(sender, patientName, contentHash, providerName string) Intent {
	return Intent{
		Kind:   IntentCreateRecord,
		Sender: sender,
		Params: map[string]interface{}{
			"patientName":  patientName,
			"contentHash":  contentHash,
			"providerName": providerName,
		},
	}
}

func NewIssueRequestIntent(sender string, tokenID uint64, insurerName, doctorName string) Intent {
	return Intent{
		Kind:   IntentIssueRequest,
		Sender: sender,
		Params: map[string]interface{}{
			"tokenId":     tokenID,
			"insurerName": insurerName,
			"doctorName":  doctorName,
		},
	}
}

func NewApproveRequestIntent(sender string, tokenID uint64) Intent {
	return Intent{
		Kind:   IntentApproveRequest,
		Sender: sender,
		Params: map[string]interface{}{"tokenId": tokenID},
	}
}

func NewVerifyByProviderIntent(sender string, tokenID uint64) Intent {
	return Intent{
		Kind:   IntentVerifyByProvider,
		Sender: sender,
		Params: map[string]interface{}{"tokenId": tokenID},
	}
}

// Receipt confirms a committed intent. Callers use it to rebuild the
// affected record's projection; observing the write through a fresh
// build is the only deterministic way to see its effect.
type Receipt struct {
	IntentID    string
	Kind        string
	CommittedAt time.Time
}

// RejectedError carries the ledger's own refusal reason verbatim,
// together with the intent ID it was submitted under so the refusal
// can be correlated in the journal. It reflects a ledger-enforced
// rule, not a transient fault, and is never retried automatically.
type RejectedError struct {
	IntentID string
	Reason   string
}

func (e RejectedError) Error() string {
	return "the ledger rejected the intent: " + e.Reason
}

// Submit sends the intent to the gateway and waits for it to leave the
// pending state.
func (c Client) Submit(ctx context.Context, intent Intent) (Receipt, error) {
	receipt, err := c.submit(ctx, intent)

	outcome := "committed"
	var rejected RejectedError
	switch {
	case err == nil:
	case errors.As(err, &rejected):
		outcome = "rejected"
	default:
		outcome = "failed"
	}
	metrics.IntentSubmissions.WithLabelValues(intent.Kind, outcome).Inc()

	return receipt, err
}

func (c Client) submit(ctx context.Context, intent Intent) (Receipt, error) {
	paramsDump, err := cbor.Marshal(intent.Params, cbor.CanonicalEncOptions())
	if err != nil {
		return Receipt{}, errors.New("failed to dump the intent params: " + err.Error())
	}

	intentID := uuid.NewString()
	envelope := map[string]interface{}{
		"intentId":      intentID,
		"kind":          intent.Kind,
		"sender":        intent.Sender,
		"payload":       paramsDump,
		"payloadSha512": hashing.Calculate(paramsDump),
	}
	body, err := cbor.Marshal(envelope, cbor.CanonicalEncOptions())
	if err != nil {
		return Receipt{}, errors.New("failed to dump the intent envelope: " + err.Error())
	}

	if _, err := c.sendRequest(ctx, intentSubmitAPI, body, contentTypeOctetStream); err != nil {
		return Receipt{}, err
	}

	waited := uint(0)
	startTime := time.Now()
	for {
		status, reason, err := c.getStatus(ctx, intentID, submitWait-waited)
		if err != nil {
			return Receipt{}, err
		}
		switch status {
		case statusCommitted:
			c.logger.Info("intent committed", zap.String("kind", intent.Kind), zap.String("intentID", intentID))
			return Receipt{IntentID: intentID, Kind: intent.Kind, CommittedAt: time.Now()}, nil
		case statusRejected:
			c.logger.Warn("intent rejected: "+reason, zap.String("kind", intent.Kind), zap.String("intentID", intentID))
			return Receipt{}, RejectedError{IntentID: intentID, Reason: reason}
		case statusPending:
			waited = uint(time.Since(startTime).Seconds())
			if waited >= submitWait {
				return Receipt{}, fmt.Errorf("%w: intent still pending after %d seconds", ErrSourceUnavailable, submitWait)
			}
		default:
			return Receipt{}, errors.New("unknown intent status: " + status)
		}
	}
}

func (c Client) getStatus(ctx context.Context, intentID string, wait uint) (status, reason string, err error) {
	apiSuffix := fmt.Sprintf("%s?id=%s&wait=%d", intentStatusAPI, intentID, wait)
	response, err := c.sendRequest(ctx, apiSuffix, nil, "")
	if err != nil {
		return "", "", err
	}

	// the gateway answers in JSON, which the yaml parser reads as a
	// superset without a second schema definition
	responseMap := make(map[string]interface{})
	if err := yaml.Unmarshal([]byte(response), &responseMap); err != nil {
		return "", "", errors.New("failed to read the status response: " + err.Error())
	}

	data, ok := responseMap["data"].([]interface{})
	if !ok || len(data) == 0 {
		return "", "", errors.New("status response holds no entries")
	}
	entry, ok := data[0].(map[string]interface{})
	if !ok {
		return "", "", errors.New("malformed status entry")
	}

	return fmt.Sprint(entry["status"]), fmt.Sprint(entry["reason"]), nil
}
