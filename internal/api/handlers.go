package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	domainerrors "github.com/vitrinaapp/vitrina-store/internal/errors"
	"github.com/vitrinaapp/vitrina-store/internal/http/response"
)

const maxActionBody = 1 << 20

// HealthResponse is the /health payload.
type HealthResponse struct {
	Status     string `json:"status"`
	Version    uint64 `json:"version"`
	SSEClients int    `json:"sse_clients"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	view := s.facade.State()
	response.Success(w, HealthResponse{
		Status:     "healthy",
		Version:    view.Version,
		SSEClients: s.events.ClientCount(),
	}, s.logger)
}

func (s *Server) handleGetState(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, s.facade.State(), s.logger)
}

func (s *Server) handleListActions(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, s.facade.ActionNames(), s.logger)
}

// handleDispatch runs one action. Backend effects land asynchronously, so
// the reply is 202 with the view as it stands once the synchronous part ran.
func (s *Server) handleDispatch(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxActionBody))
	if err != nil {
		response.HandleError(w, domainerrors.Validation("request body too large or unreadable"), s.logger)
		return
	}

	if err := s.facade.Dispatch(r.Context(), name, json.RawMessage(body)); err != nil {
		s.logger.Debug("action rejected", "action", name, "error", err)
		response.HandleError(w, err, s.logger)
		return
	}

	response.Accepted(w, s.facade.State(), s.logger)
}
