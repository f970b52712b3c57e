package handlers

import (
	"errors"
	"net/http"

	"github.com/orya-live/padel-engine/models"
	"github.com/orya-live/padel-engine/services"
)

var errUnknownDisputeStatus = errors.New("status must be OPEN or RESOLVED")

type DisputeHandler struct {
	disputeService services.DisputeService
}

func NewDisputeHandler(disputeService services.DisputeService) *DisputeHandler {
	return &DisputeHandler{disputeService: disputeService}
}

// OpenDisputeHandler открывает спор по матчу и замораживает его счёт для
// непривилегированных участников.
func (h *DisputeHandler) OpenDisputeHandler(w http.ResponseWriter, r *http.Request) {
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
		Reason string `json:"reason"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	dispute, err := h.disputeService.Open(r.Context(), matchID, input.Reason, actor)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"dispute": dispute}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *DisputeHandler) ResolveDisputeHandler(w http.ResponseWriter, r *http.Request) {
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
		ResolutionNote string `json:"resolution_note"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	dispute, err := h.disputeService.Resolve(r.Context(), matchID, input.ResolutionNote, actor)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"dispute": dispute}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListEventDisputesHandler отдаёт споры события, опционально по статусу
// (?status=OPEN|RESOLVED).
func (h *DisputeHandler) ListEventDisputesHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var status *models.DisputeStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := models.DisputeStatus(raw)
		if s != models.DisputeOpen && s != models.DisputeResolved {
			badRequestResponse(w, r, errUnknownDisputeStatus)
			return
		}
		status = &s
	}

	disputes, err := h.disputeService.ListByEvent(r.Context(), eventID, status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"disputes": disputes}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
