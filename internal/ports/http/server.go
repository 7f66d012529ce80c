package http

import (
	"net/http"

	"medrec-verification/internal/app"
	"medrec-verification/internal/ports/http/middleware/cors"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type server struct {
	app        *app.App
	httpServer *http.Server
	addr       string
	logger     *zap.Logger
}

func NewServer(logger *zap.Logger, a *app.App, address string) server {
	return server{
		app:    a,
		addr:   address,
		logger: logger,
	}
}

func (ser server) badRequest(w http.ResponseWriter, message string) {
	w.WriteHeader(http.StatusBadRequest)
	if _, err := w.Write([]byte(message)); err != nil {
		ser.logger.Error("failed to write a bad request error message: " + err.Error())
	}
	ser.logger.Warn(message)
}

// denied answers a workflow-guard refusal or a ledger rejection. The
// specific reason always reaches the caller.
func (ser server) denied(w http.ResponseWriter, message string) {
	w.WriteHeader(http.StatusConflict)
	if _, err := w.Write([]byte(message)); err != nil {
		ser.logger.Error("failed to write a denial message: " + err.Error())
	}
	ser.logger.Info("transition denied: " + message)
}

func (ser server) serverError(w http.ResponseWriter, message string) {
	w.WriteHeader(http.StatusInternalServerError)
	if _, err := w.Write([]byte(message)); err != nil {
		ser.logger.Error("failed to write a server error message: " + err.Error())
	}
	ser.logger.Error(message)
}

func (ser server) registerHandlers(router *mux.Router) {

	router.HandleFunc("/health", healthcheck)
	router.Handle("/metrics", promhttp.Handler())

	router.HandleFunc("/api/records/patient/{address}", ser.getPatientRecords).Methods(http.MethodGet)
	router.HandleFunc("/api/records/doctor", ser.getDoctorRecords).Methods(http.MethodGet)
	router.HandleFunc("/api/requests/insurer/{address}", ser.getInsurerRequests).Methods(http.MethodGet)

	router.HandleFunc("/api/records", ser.postRecord).Methods(http.MethodPost)
	router.HandleFunc("/api/records/{tokenId}/request", ser.postIssueRequest).Methods(http.MethodPost)
	router.HandleFunc("/api/records/{tokenId}/approve", ser.postApproveRequest).Methods(http.MethodPost)
	router.HandleFunc("/api/records/{tokenId}/verify", ser.postVerifyRecord).Methods(http.MethodPost)

	router.HandleFunc("/api/participants/providers", ser.getProviders).Methods(http.MethodGet)
	router.HandleFunc("/api/participants/insurers", ser.getInsurers).Methods(http.MethodGet)
	router.HandleFunc("/api/receipts", ser.getReceipts).Methods(http.MethodGet)
}

func healthcheck(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte("all good here"))
}

func (ser server) Run() error {
	router := mux.NewRouter()
	ser.registerHandlers(router)

	handler := cors.AddCorsPolicy(router)
	ser.httpServer = &http.Server{
		Handler: handler,
		Addr:    ser.addr,
	}

	return ser.httpServer.ListenAndServe()
}
