package handlers

import (
	"errors"
	"net/http"

	"github.com/orya-live/padel-engine/models"
	"github.com/orya-live/padel-engine/services"
)

var (
	errUnknownPhase       = errors.New("phase must be GROUPS or KNOCKOUT")
	errPairingIDsRequired = errors.New("pairing_a_id and pairing_b_id are required")
	errUnknownStatus      = errors.New("status must be IN_PROGRESS or DONE")
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(matchService services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: matchService}
}

func (h *MatchHandler) GetMatchHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.GetByID(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListCategoryMatchesHandler отдаёт матчи категории, опционально по фазе
// (?phase=GROUPS|KNOCKOUT).
func (h *MatchHandler) ListCategoryMatchesHandler(w http.ResponseWriter, r *http.Request) {
	categoryID, err := getIDFromURL(r, "categoryID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var phase *models.Phase
	if raw := r.URL.Query().Get("phase"); raw != "" {
		p := models.Phase(raw)
		if p != models.PhaseGroups && p != models.PhaseKnockout {
			badRequestResponse(w, r, errUnknownPhase)
			return
		}
		phase = &p
	}

	matches, err := h.matchService.ListByCategory(r.Context(), categoryID, phase)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) ListEventMatchesHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.matchService.ListByEvent(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ReportScoreHandler принимает результат матча и продвигает победителя по
// сетке. status=IN_PROGRESS без счёта помечает матч как идущий.
func (h *MatchHandler) ReportScoreHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	actor, err := actorFromRequest(r)
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var input struct {
		Status     models.MatchStatus `json:"status,omitempty"`
		Sets       []models.SetScore  `json:"sets,omitempty"`
		Result     models.ResultType  `json:"result,omitempty"`
		WinnerSide models.Side        `json:"winner_side,omitempty"`
		StreamURL  *string            `json:"stream_url,omitempty"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var match *models.Match
	switch input.Status {
	case models.MatchInProgress:
		match, err = h.matchService.MarkInProgress(r.Context(), matchID, actor)
	case "", models.MatchDone:
		payload := models.ScorePayload{
			Sets:       input.Sets,
			Result:     input.Result,
			WinnerSide: input.WinnerSide,
			StreamURL:  input.StreamURL,
		}
		match, err = h.matchService.ReportScore(r.Context(), matchID, payload, actor)
	default:
		badRequestResponse(w, r, errUnknownStatus)
		return
	}
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// AssignSlotsHandler вручную рассаживает пары в ожидающий матч.
func (h *MatchHandler) AssignSlotsHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	actor, err := actorFromRequest(r)
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var input struct {
		PairingAID int `json:"pairing_a_id"`
		PairingBID int `json:"pairing_b_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.PairingAID <= 0 || input.PairingBID <= 0 {
		badRequestResponse(w, r, errPairingIDsRequired)
		return
	}

	match, err := h.matchService.AssignSlots(r.Context(), matchID, input.PairingAID, input.PairingBID, actor)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
