package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"medrec-verification/internal/model"
)

// PositionLatest selects the newest log position as a window bound.
const PositionLatest = "latest"

// FetchRecordCreated replays RecordCreated events between two log
// positions, inclusive. Overlapping windows may return the same event
// more than once; callers deduplicate.
func (c Client) FetchRecordCreated(ctx context.Context, from uint64, to string) ([]model.RecordCreatedEvent, error) {
	raw, err := c.fetchEvents(ctx, model.KindRecordCreated, from, to)
	if err != nil {
		return nil, err
	}

	events := make([]model.RecordCreatedEvent, len(raw))
	for i, event := range raw {
		events[i] = model.RecordCreatedEvent{
			TokenID:      event.Attributes.TokenID,
			OwnerAddress: event.Attributes.OwnerAddress,
			PatientName:  event.Attributes.PatientName,
			ContentHash:  event.Attributes.ContentHash,
			ProviderName: event.Attributes.ProviderName,
			Position:     event.Position,
		}
	}
	return events, nil
}

// FetchVerificationRequested replays VerificationRequested events
// between two log positions, inclusive.
func (c Client) FetchVerificationRequested(ctx context.Context, from uint64, to string) ([]model.VerificationRequestedEvent, error) {
	raw, err := c.fetchEvents(ctx, model.KindVerificationRequested, from, to)
	if err != nil {
		return nil, err
	}

	events := make([]model.VerificationRequestedEvent, len(raw))
	for i, event := range raw {
		events[i] = model.VerificationRequestedEvent{
			TokenID:     event.Attributes.TokenID,
			InsurerName: event.Attributes.InsurerName,
			DoctorName:  event.Attributes.DoctorName,
			Position:    event.Position,
		}
	}
	return events, nil
}

func (c Client) fetchEvents(ctx context.Context, kind string, from uint64, to string) ([]rawEvent, error) {
	if to == "" {
		to = PositionLatest
	}
	filter := url.Values{}
	filter.Set("kind", kind)
	filter.Set("from", strconv.FormatUint(from, 10))
	filter.Set("to", to)

	response, err := c.sendRequest(ctx, fmt.Sprintf("%s?%s", eventsAPI, filter.Encode()), nil, "")
	if err != nil {
		return nil, err
	}

	var envelope eventEnvelope
	if err := json.Unmarshal([]byte(response), &envelope); err != nil {
		return nil, errors.New("failed to unmarshal the events response: " + err.Error())
	}

	events := make([]rawEvent, 0, len(envelope.Data))
	for _, event := range envelope.Data {
		if event.Kind != kind {
			c.logger.Warn("gateway returned an event of a kind not asked for: " + event.Kind)
			continue
		}
		events = append(events, event)
	}

	return events, nil
}
