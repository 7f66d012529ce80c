package model

import (
	"errors"
	"strings"

	"go.uber.org/multierr"
)

// Record is a single uploaded document's on-ledger identity plus its
// metadata. The token ID is assigned by the ledger on creation and is
// immutable afterwards, as are the owner and the provider.
type Record struct {
	TokenID      uint64
	PatientName  string
	ContentHash  string
	ProviderName string
	OwnerAddress string
}

// VerificationRequest is the insurer review step a doctor opens for a
// record. At most one live (unapproved) request per token is supported;
// the first request seen for a (token, insurer) pair is canonical.
type VerificationRequest struct {
	TokenID     uint64
	InsurerName string
	DoctorName  string
	IssuedAt    uint64
	Approved    bool
}

// IsLive reports whether the request still awaits insurer approval.
func (r VerificationRequest) IsLive() bool {
	return !r.Approved
}

func (r Record) Validate() error {
	var err error
	if r.PatientName == "" {
		err = multierr.Append(err, errors.New("patient name is missing"))
	}
	if r.ContentHash == "" {
		err = multierr.Append(err, errors.New("content hash is missing"))
	}
	if r.ProviderName == "" {
		err = multierr.Append(err, errors.New("provider name is missing"))
	}

	return err
}

// NormalizeName canonicalizes a participant name for comparison. The
// ledger stores names as free text, so every name match in the workflow
// goes through this case fold first.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// SameName compares two participant names case-insensitively.
func SameName(a, b string) bool {
	return NormalizeName(a) == NormalizeName(b)
}

// SameAddress compares two ledger addresses. Addresses are hex strings
// that may differ in letter case between sources.
func SameAddress(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
