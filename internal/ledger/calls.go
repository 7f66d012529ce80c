package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
)

// RequestDetails is the point-call answer for a record's verification
// request: which insurer it names and whether one was issued at all.
type RequestDetails struct {
	InsurerName string
	Requested   bool
}

// The point-call surface reads current ledger state, not history.
// The two verified flags are deliberately fetched fresh per record
// instead of folded from the log.

func (c Client) IsDoctorVerified(ctx context.Context, tokenID uint64) (bool, error) {
	result, err := c.call(ctx, "isDoctorVerified", tokenParam(tokenID))
	if err != nil {
		return false, err
	}
	return result.Bool, nil
}

func (c Client) IsInsurerVerified(ctx context.Context, tokenID uint64) (bool, error) {
	result, err := c.call(ctx, "isInsurerVerified", tokenParam(tokenID))
	if err != nil {
		return false, err
	}
	return result.Bool, nil
}

func (c Client) GetRequestDetails(ctx context.Context, tokenID uint64) (RequestDetails, error) {
	result, err := c.call(ctx, "getRequestDetails", tokenParam(tokenID))
	if err != nil {
		return RequestDetails{}, err
	}
	return RequestDetails{
		InsurerName: result.Request.InsurerName,
		Requested:   result.Request.Requested,
	}, nil
}

func (c Client) IsRegisteredProvider(ctx context.Context, address string) (bool, error) {
	result, err := c.call(ctx, "isRegisteredProvider", addressParam(address))
	if err != nil {
		return false, err
	}
	return result.Bool, nil
}

func (c Client) IsRegisteredInsurer(ctx context.Context, address string) (bool, error) {
	result, err := c.call(ctx, "isRegisteredInsurer", addressParam(address))
	if err != nil {
		return false, err
	}
	return result.Bool, nil
}

func (c Client) GetInsurerName(ctx context.Context, address string) (string, error) {
	result, err := c.call(ctx, "getInsurerName", addressParam(address))
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

func (c Client) call(ctx context.Context, method string, params url.Values) (callResult, error) {
	response, err := c.sendRequest(ctx, fmt.Sprintf("%s/%s?%s", callAPI, method, params.Encode()), nil, "")
	if err != nil {
		return callResult{}, err
	}

	var envelope callEnvelope
	if err := json.Unmarshal([]byte(response), &envelope); err != nil {
		return callResult{}, errors.New("failed to unmarshal the call response: " + err.Error())
	}

	return envelope.Data, nil
}

func tokenParam(tokenID uint64) url.Values {
	params := url.Values{}
	params.Set("tokenId", strconv.FormatUint(tokenID, 10))
	return params
}

func addressParam(address string) url.Values {
	params := url.Values{}
	params.Set("address", address)
	return params
}
