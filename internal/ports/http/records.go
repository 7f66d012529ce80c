package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"medrec-verification/internal/model"

	"github.com/gorilla/mux"
)

type retrievedRequest struct {
	InsurerName string `json:"insurerName"`
	DoctorName  string `json:"doctorName"`
	IssuedAt    uint64 `json:"issuedAt"`
	Approved    bool   `json:"approved"`
}

type retrievedRecordView struct {
	TokenID         uint64            `json:"tokenId"`
	PatientName     string            `json:"patientName"`
	ContentHash     string            `json:"contentHash"`
	ProviderName    string            `json:"providerName"`
	OwnerAddress    string            `json:"ownerAddress"`
	DoctorVerified  bool              `json:"doctorVerified"`
	InsurerVerified bool              `json:"insurerVerified"`
	InsurerStatus   string            `json:"insurerStatus"`
	Request         *retrievedRequest `json:"request,omitempty"`
}

func (r *retrievedRecordView) assign(view model.RecordView) {
	r.TokenID = view.Record.TokenID
	r.PatientName = view.Record.PatientName
	r.ContentHash = view.Record.ContentHash
	r.ProviderName = view.Record.ProviderName
	r.OwnerAddress = view.Record.OwnerAddress
	r.DoctorVerified = view.DoctorVerified
	r.InsurerVerified = view.InsurerVerified
	r.InsurerStatus = string(view.InsurerStatus())

	if view.Request != nil {
		r.Request = &retrievedRequest{
			InsurerName: view.Request.InsurerName,
			DoctorName:  view.Request.DoctorName,
			IssuedAt:    view.Request.IssuedAt,
			Approved:    view.Request.Approved,
		}
	}
}

func (ser server) getPatientRecords(w http.ResponseWriter, r *http.Request) {
	address := normalize(mux.Vars(r)["address"])
	if address == "" {
		ser.badRequest(w, "the owner address is missing")
		return
	}

	ser.logger.Debug("getting the records of patient " + address)

	views, err := ser.app.PatientRecords(r.Context(), address)
	if err != nil {
		ser.serverError(w, "building the patient projection failed: "+err.Error())
		return
	}

	ser.respondViews(w, views)
}

func (ser server) getDoctorRecords(w http.ResponseWriter, r *http.Request) {
	address := normalize(r.URL.Query().Get("address"))
	if address == "" {
		ser.badRequest(w, "the doctor address is missing")
		return
	}

	views, err := ser.app.DoctorRecords(r.Context(), address)
	if err != nil {
		ser.serverError(w, "building the doctor projection failed: "+err.Error())
		return
	}

	ser.respondViews(w, views)
}

func (ser server) getInsurerRequests(w http.ResponseWriter, r *http.Request) {
	address := normalize(mux.Vars(r)["address"])
	if address == "" {
		ser.badRequest(w, "the insurer address is missing")
		return
	}

	views, err := ser.app.InsurerRequests(r.Context(), address)
	if err != nil {
		ser.serverError(w, "building the insurer projection failed: "+err.Error())
		return
	}

	ser.respondViews(w, views)
}

func (ser server) respondViews(w http.ResponseWriter, views []model.RecordView) {
	retViews := make([]retrievedRecordView, len(views))
	for i, view := range views {
		retViews[i].assign(view)
	}

	response, err := json.Marshal(retViews)
	if err != nil {
		ser.serverError(w, "marshalling the response failed: "+err.Error())
		return
	}

	if _, err := w.Write(response); err != nil {
		ser.serverError(w, "failed to write the response: "+err.Error())
		return
	}
}

type retrievedParticipant struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

func (ser server) getProviders(w http.ResponseWriter, r *http.Request) {
	ser.respondParticipants(w, ser.app.RegisteredProviders())
}

func (ser server) getInsurers(w http.ResponseWriter, r *http.Request) {
	ser.respondParticipants(w, ser.app.RegisteredInsurers())
}

func (ser server) respondParticipants(w http.ResponseWriter, participants []model.Participant) {
	retParticipants := make([]retrievedParticipant, len(participants))
	for i, participant := range participants {
		retParticipants[i] = retrievedParticipant{
			Name:    participant.DisplayName,
			Address: participant.Address,
		}
	}

	response, err := json.Marshal(retParticipants)
	if err != nil {
		ser.serverError(w, "marshalling the response failed: "+err.Error())
		return
	}

	if _, err := w.Write(response); err != nil {
		ser.serverError(w, "failed to write the response: "+err.Error())
	}
}

type retrievedReceipt struct {
	IntentID    string `json:"intentId"`
	Kind        string `json:"kind"`
	TokenID     uint64 `json:"tokenId,omitempty"`
	Outcome     string `json:"outcome"`
	Reason      string `json:"reason,omitempty"`
	SubmittedAt string `json:"submittedAt"`
}

func (ser server) getReceipts(w http.ResponseWriter, r *http.Request) {
	actor := normalize(r.URL.Query().Get("actor"))
	if actor == "" {
		ser.badRequest(w, "the actor address is missing")
		return
	}

	receipts, err := ser.app.GetReceipts(r.Context(), actor)
	if err != nil {
		ser.serverError(w, "getting the receipts failed: "+err.Error())
		return
	}

	retReceipts := make([]retrievedReceipt, len(receipts))
	for i, receipt := range receipts {
		retReceipts[i] = retrievedReceipt{
			IntentID:    receipt.IntentID,
			Kind:        receipt.Kind,
			TokenID:     receipt.TokenID,
			Outcome:     receipt.Outcome,
			Reason:      receipt.Reason,
			SubmittedAt: receipt.SubmittedAt.Format(time.RFC3339),
		}
	}

	response, err := json.Marshal(retReceipts)
	if err != nil {
		ser.serverError(w, "marshalling the response failed: "+err.Error())
		return
	}

	if _, err := w.Write(response); err != nil {
		ser.serverError(w, "failed to write the response: "+err.Error())
	}
}

func normalize(param string) string {
	return strings.TrimSpace(param)
}
