package ledger

// Wire format of the gateway's read surface.

type eventEnvelope struct {
	Data []rawEvent `json:"data"`
}

type rawEvent struct {
	Kind       string          `json:"kind"`
	Position   uint64          `json:"position"`
	Attributes eventAttributes `json:"attributes"`
}

type eventAttributes struct {
	TokenID      uint64 `json:"tokenId"`
	OwnerAddress string `json:"ownerAddress"`
	PatientName  string `json:"patientName"`
	ContentHash  string `json:"contentHash"`
	ProviderName string `json:"providerName"`
	InsurerName  string `json:"insurerName"`
	DoctorName   string `json:"doctorName"`
}

type callEnvelope struct {
	Data callResult `json:"data"`
}

type callResult struct {
	Bool    bool           `json:"bool"`
	Text    string         `json:"text"`
	Request requestDetails `json:"request"`
}

type requestDetails struct {
	InsurerName string `json:"insurerName"`
	Requested   bool   `json:"requested"`
}
