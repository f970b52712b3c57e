package handlers

import (
	"net/http"

	"github.com/orya-live/padel-engine/services"
)

type GenerationHandler struct {
	generationService services.GenerationService
}

func NewGenerationHandler(generationService services.GenerationService) *GenerationHandler {
	return &GenerationHandler{generationService: generationService}
}

// GenerateGroupsHandler (пере)генерирует групповой этап категории.
func (h *GenerationHandler) GenerateGroupsHandler(w http.ResponseWriter, r *http.Request) {
	categoryID, err := getIDFromURL(r, "categoryID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	actor, err := actorFromRequest(r)
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var req services.GroupsRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.generationService.GenerateGroups(r.Context(), categoryID, req, actor)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"group_stage": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GenerateKnockoutHandler строит сетку плей-офф из посева.
func (h *GenerationHandler) GenerateKnockoutHandler(w http.ResponseWriter, r *http.Request) {
	categoryID, err := getIDFromURL(r, "categoryID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	actor, err := actorFromRequest(r)
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var req services.KnockoutRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.generationService.GenerateKnockout(r.Context(), categoryID, req, actor)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"knockout": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// PreviewSeedsHandler показывает посев, который использовала бы следующая
// генерация, ничего не изменяя.
func (h *GenerationHandler) PreviewSeedsHandler(w http.ResponseWriter, r *http.Request) {
	categoryID, err := getIDFromURL(r, "categoryID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	preview, err := h.generationService.PreviewSeeds(r.Context(), categoryID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"seed_preview": preview}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
