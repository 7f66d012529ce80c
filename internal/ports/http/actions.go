package http

import (
	"context"
	"encoding/json"
	"errors"
	"io/ioutil"
	"net/http"
	"strconv"

	"medrec-verification/internal/config"
	"medrec-verification/internal/ledger"
	"medrec-verification/internal/workflow"

	"github.com/gorilla/mux"
	"go.uber.org/multierr"
)

type receiptResponse struct {
	IntentID string `json:"intentId"`
	Kind     string `json:"kind"`
}

func (ser server) postRecord(w http.ResponseWriter, r *http.Request) {
	// max file size is 10MB
	if err := r.ParseMultipartForm(10e7); err != nil {
		ser.badRequest(w, "failed to parse the form: "+err.Error())
		return
	}

	var err error
	ownerAddress := normalize(r.FormValue("ownerAddress"))
	if ownerAddress == "" {
		err = multierr.Append(err, errors.New("ownerAddress is missing"))
	}
	patientName := normalize(r.FormValue("patientName"))
	if patientName == "" {
		err = multierr.Append(err, errors.New("patientName is missing"))
	}
	providerName := normalize(r.FormValue("provider"))
	if providerName == "" {
		err = multierr.Append(err, errors.New("provider is missing"))
	}
	if err != nil {
		ser.badRequest(w, err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		ser.badRequest(w, "the record file is missing: "+err.Error())
		return
	}
	defer file.Close()

	content, err := ioutil.ReadAll(file)
	if err != nil {
		ser.serverError(w, "failed to read the record file: "+err.Error())
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	receipt, err := ser.app.UploadRecord(ctx, ownerAddress, patientName, providerName, header.Filename, content)
	if err != nil {
		ser.respondActionError(w, err)
		return
	}

	ser.respondReceipt(w, receipt)
}

func (ser server) postIssueRequest(w http.ResponseWriter, r *http.Request) {
	tokenID, ok := ser.readTokenID(w, r)
	if !ok {
		return
	}

	doctorAddress, doctorName, err := readDoctorParams(r)
	if err != nil {
		ser.badRequest(w, err.Error())
		return
	}
	insurerName := normalize(r.FormValue("insurer"))
	if insurerName == "" {
		ser.badRequest(w, "insurer is missing")
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	receipt, err := ser.app.IssueRequest(ctx, doctorAddress, doctorName, tokenID, insurerName)
	if err != nil {
		ser.respondActionError(w, err)
		return
	}

	ser.respondReceipt(w, receipt)
}

func (ser server) postApproveRequest(w http.ResponseWriter, r *http.Request) {
	tokenID, ok := ser.readTokenID(w, r)
	if !ok {
		return
	}

	insurerAddress := normalize(r.FormValue("insurerAddress"))
	if insurerAddress == "" {
		ser.badRequest(w, "insurerAddress is missing")
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	receipt, err := ser.app.ApproveRequest(ctx, insurerAddress, tokenID)
	if err != nil {
		ser.respondActionError(w, err)
		return
	}

	ser.respondReceipt(w, receipt)
}

func (ser server) postVerifyRecord(w http.ResponseWriter, r *http.Request) {
	tokenID, ok := ser.readTokenID(w, r)
	if !ok {
		return
	}

	doctorAddress, doctorName, err := readDoctorParams(r)
	if err != nil {
		ser.badRequest(w, err.Error())
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	receipt, err := ser.app.VerifyRecord(ctx, doctorAddress, doctorName, tokenID)
	if err != nil {
		ser.respondActionError(w, err)
		return
	}

	ser.respondReceipt(w, receipt)
}

// readDoctorParams validates the acting doctor's identity fields. The
// guard compares the name against the record's provider, so a missing
// name is a malformed request, not a workflow denial.
func readDoctorParams(r *http.Request) (doctorAddress, doctorName string, err error) {
	doctorAddress = normalize(r.FormValue("doctorAddress"))
	if doctorAddress == "" {
		err = multierr.Append(err, errors.New("doctorAddress is missing"))
	}
	doctorName = normalize(r.FormValue("doctorName"))
	if doctorName == "" {
		err = multierr.Append(err, errors.New("doctorName is missing"))
	}

	return doctorAddress, doctorName, err
}

func (ser server) readTokenID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	tokenID, err := strconv.ParseUint(mux.Vars(r)["tokenId"], 10, 64)
	if err != nil {
		ser.badRequest(w, "invalid token ID: "+err.Error())
		return 0, false
	}
	return tokenID, true
}

// respondActionError keeps the error taxonomy visible to the caller:
// guard denials and ledger rejections answer 409 with the exact
// reason, everything else is a server failure.
func (ser server) respondActionError(w http.ResponseWriter, err error) {
	var rejected ledger.RejectedError
	switch {
	case workflow.IsDenial(err):
		ser.denied(w, err.Error())
	case errors.As(err, &rejected):
		ser.denied(w, rejected.Error())
	default:
		ser.serverError(w, err.Error())
	}
}

func (ser server) respondReceipt(w http.ResponseWriter, receipt ledger.Receipt) {
	response, err := json.Marshal(receiptResponse{
		IntentID: receipt.IntentID,
		Kind:     receipt.Kind,
	})
	if err != nil {
		ser.serverError(w, "marshalling the response failed: "+err.Error())
		return
	}

	w.WriteHeader(http.StatusCreated)
	if _, err := w.Write(response); err != nil {
		ser.serverError(w, "failed to write the response: "+err.Error())
	}
}

// TODO: derive the context from the client request once the frontend
// sends cancellation properly
func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), config.GetRequestTimeout())
}
