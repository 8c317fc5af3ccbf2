package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"tiffy-rewards-go/internal/api"
	"tiffy-rewards-go/internal/models"

	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Tiffy rewards ledger running\n"))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.service.HealthCheck(r.Context()); err != nil {
		zap.L().Warn("Health check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetWallet(w http.ResponseWriter, r *http.Request) {
	balance, err := s.service.GetWallet(r.Context(), r.URL.Query().Get("address"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balance)
}

func (s *Server) handleWalletHistory(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, err := queryInt(query.Get("limit"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	offset, err := queryInt(query.Get("offset"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	address := query.Get("address")
	entries, err := s.service.GetWalletHistory(r.Context(), address, limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if entries == nil {
		entries = []models.JournalEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"address": address, "entries": entries})
}

func (s *Server) handleSubmitAction(w http.ResponseWriter, r *http.Request) {
	var req models.ActionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	result, err := s.service.SubmitAction(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleShareState(w http.ResponseWriter, r *http.Request) {
	var req models.ShareStateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	result, err := s.service.ReportShareState(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleAdminReset(w http.ResponseWriter, r *http.Request) {
	var req models.AdminResetRequest
	if !decodeBody(w, r, &req) {
		return
	}
	result, err := s.service.ResetUser(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleAdminFund(w http.ResponseWriter, r *http.Request) {
	var req models.AdminFundRequest
	if !decodeBody(w, r, &req) {
		return
	}
	result, err := s.service.FundWallet(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		zap.L().Debug("Rejected request body", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, http.StatusBadRequest, "Invalid request")
		return false
	}
	return true
}

func queryInt(value string) (int, error) {
	if value == "" {
		return 0, nil
	}
	return strconv.Atoi(value)
}

// writeServiceError maps service errors onto status codes. Only request
// errors carry their message to the client.
func writeServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, api.ErrInvalidRequest), errors.Is(err, api.ErrUnknownAction):
		status = http.StatusBadRequest
	case errors.Is(err, api.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, api.ErrUnavailable):
		status = http.StatusServiceUnavailable
	}

	var reqErr *api.RequestError
	if status == http.StatusInternalServerError || !errors.As(err, &reqErr) {
		zap.L().Error("Request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeError(w, status, reqErr.Message)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Warn("Failed to encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
