package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/kozaktomas/face-insight/internal/ai"
	"github.com/kozaktomas/face-insight/internal/constants"
	"github.com/kozaktomas/face-insight/internal/imaging"
	"github.com/kozaktomas/face-insight/internal/session"
)

// PeopleHandler runs the whole analysis server-side for the embedded page.
type PeopleHandler struct {
	analyzer *ai.Analyzer
}

// NewPeopleHandler creates a people handler. A nil analyzer means no
// credential is configured and every request fails with 500.
func NewPeopleHandler(analyzer *ai.Analyzer) *PeopleHandler {
	return &PeopleHandler{analyzer: analyzer}
}

// PeopleRequest carries one image as a data URL.
type PeopleRequest struct {
	Image string `json:"image"`
}

// PeopleResponse mirrors the session state after the attempt.
type PeopleResponse struct {
	Phase   session.Phase     `json:"phase"`
	Results []ai.PersonRecord `json:"results"`
	Error   string            `json:"error,omitempty"`
	Empty   string            `json:"empty,omitempty"`
}

// Analyze handles POST /api/v1/people.
func (h *PeopleHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	if h.analyzer == nil {
		respondError(w, http.StatusInternalServerError, constants.ErrMsgServerMisconfigured)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxRelayBodySize)
	var req PeopleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	img, err := imaging.ParseDataURL(req.Image)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	locale := h.analyzer.Locale()
	sess := session.New(h.analyzer, locale.FailureMessage)
	sess.Acquire(img)

	state, err := sess.Analyze(r.Context())
	if err != nil {
		if errors.Is(err, session.ErrAnalysisInFlight) {
			respondError(w, http.StatusConflict, err.Error())
			return
		}
		log.Printf("people: analysis via %s failed", sanitizeForLog(h.analyzer.Name()))
		respondJSON(w, http.StatusBadGateway, PeopleResponse{
			Phase:   state.Phase,
			Results: []ai.PersonRecord{},
			Error:   state.ErrorMessage,
		})
		return
	}

	resp := PeopleResponse{Phase: state.Phase, Results: state.Results}
	if len(state.Results) == 0 {
		resp.Empty = locale.EmptyMessage
	}
	respondJSON(w, http.StatusOK, resp)
}
