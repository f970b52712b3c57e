package handlers

import (
	"errors"
	"net/http"

	"github.com/orya-live/padel-engine/models"
	"github.com/orya-live/padel-engine/services"
)

var errStatusRequired = errors.New("status is required")

type LifecycleHandler struct {
	lifecycleService services.LifecycleService
}

func NewLifecycleHandler(lifecycleService services.LifecycleService) *LifecycleHandler {
	return &LifecycleHandler{lifecycleService: lifecycleService}
}

func (h *LifecycleHandler) GetTournamentHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.lifecycleService.Get(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LifecycleHandler) AllowedTransitionsHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	transitions, err := h.lifecycleService.AllowedTransitions(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"allowed_transitions": transitions}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// TransitionHandler переводит турнир в следующее состояние жизненного цикла.
func (h *LifecycleHandler) TransitionHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
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
		Status models.LifecycleState `json:"status"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Status == "" {
		badRequestResponse(w, r, errStatusRequired)
		return
	}

	tournament, err := h.lifecycleService.Transition(r.Context(), eventID, input.Status, actor)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
