package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/orya-live/padel-engine/middleware"
	"github.com/orya-live/padel-engine/repositories"
	"github.com/orya-live/padel-engine/scoring"
	"github.com/orya-live/padel-engine/services"
)

type jsonResponse map[string]interface{}

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case err.Error() == "http: request body too large":
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err) // Ошибка программиста: передан не указатель.
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	if err != nil {
		return err
	}

	return nil
}

func getIDFromURL(r *http.Request, param string) (int, error) {
	raw := chi.URLParam(r, param)
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s parameter %q", param, raw)
	}
	return id, nil
}

// actorFromRequest восстанавливает Actor из JWT claims запроса.
func actorFromRequest(r *http.Request) (services.Actor, error) {
	id, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		return services.Actor{}, err
	}
	role, err := middleware.GetUserRoleFromContext(r.Context())
	if err != nil {
		return services.Actor{}, err
	}
	return services.Actor{ID: id, Role: role}, nil
}

func errorResponse(w http.ResponseWriter, r *http.Request, status int, message interface{}) {
	env := jsonResponse{"error": message}
	if err := writeJSON(w, status, env, nil); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	message := "the server encountered a problem and could not process your request"
	errorResponse(w, r, http.StatusInternalServerError, message)
}

func badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func unprocessableResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusUnprocessableEntity, err.Error())
}

func notFoundResponse(w http.ResponseWriter, r *http.Request) {
	message := "the requested resource could not be found"
	errorResponse(w, r, http.StatusNotFound, message)
}

func conflictResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusConflict, message)
}

func unauthorizedResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusUnauthorized, message)
}

func forbiddenResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusForbidden, message)
}

func lockedResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusLocked, message)
}

// mapServiceErrorToHTTP преобразует ошибки сервисного слоя в HTTP-ответы.
func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	// Отсутствующие ресурсы
	case errors.Is(err, repositories.ErrMatchNotFound),
		errors.Is(err, repositories.ErrPairingNotFound),
		errors.Is(err, repositories.ErrConfigNotFound),
		errors.Is(err, repositories.ErrDisputeNotFound),
		errors.Is(err, repositories.ErrSnapshotNotFound),
		errors.Is(err, repositories.ErrTournamentNotFound):
		notFoundResponse(w, r)

	// Конфликты и гонки
	case errors.Is(err, services.ErrGenerationConflict),
		errors.Is(err, services.ErrRegenerationLocked),
		errors.Is(err, services.ErrKnockoutLocked),
		errors.Is(err, services.ErrPairingAlreadyAssigned),
		errors.Is(err, services.ErrDuplicatePairing),
		errors.Is(err, repositories.ErrDisputeAlreadyOpen),
		errors.Is(err, repositories.ErrTournamentDuplicate),
		errors.Is(err, repositories.ErrLifecycleConflict):
		conflictResponse(w, r, err.Error())

	// Счёт, не проходящий валидацию правил
	case errors.Is(err, scoring.ErrInvalidScore),
		errors.Is(err, scoring.ErrWinnerRequired),
		errors.Is(err, services.ErrValidationFailed),
		errors.Is(err, services.ErrGenerationFailed):
		unprocessableResponse(w, r, err)

	// Бизнес-правила
	case errors.Is(err, services.ErrCategoryNotAvailable),
		errors.Is(err, services.ErrGroupsNotFinished),
		errors.Is(err, services.ErrMatchNotPending),
		errors.Is(err, services.ErrMatchCancelled),
		errors.Is(err, services.ErrMatchSlotsIncomplete),
		errors.Is(err, services.ErrNothingToLock),
		errors.Is(err, services.ErrPairingInvalid),
		errors.Is(err, services.ErrInvalidTransition):
		badRequestResponse(w, r, err)

	// Матч заблокирован открытым спором
	case errors.Is(err, services.ErrMatchDisputed):
		lockedResponse(w, r, err.Error())

	// Доступ
	case errors.Is(err, services.ErrInvalidCredentials):
		unauthorizedResponse(w, r, err.Error())
	case errors.Is(err, services.ErrNotPrivileged),
		errors.Is(err, services.ErrOverrideNotAllowed):
		forbiddenResponse(w, r, err.Error())

	default:
		serverErrorResponse(w, r, err)
	}
}
