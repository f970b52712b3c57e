package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ошибки валидации и бизнес-правил
	ErrValidationFailed     = errors.New("validation failed")
	ErrCategoryNotAvailable = errors.New("category has fewer than 2 confirmed pairings")
	ErrGroupsNotFinished    = errors.New("group stage has unfinished matches")
	ErrGenerationFailed     = errors.New("bracket generation failed")
	ErrMatchNotPending      = errors.New("match has already started or finished")
	ErrMatchCancelled       = errors.New("match is cancelled")
	ErrMatchSlotsIncomplete = errors.New("match does not have both pairings assigned")
	ErrNothingToLock        = errors.New("no confirmed pairings to lock")

	// Ошибки конфликтов
	ErrKnockoutLocked         = errors.New("knockout bracket already has started matches")
	ErrRegenerationLocked     = errors.New("completed matches exist, regeneration requires an override")
	ErrPairingAlreadyAssigned = errors.New("pairing is already assigned in this round")
	ErrDuplicatePairing       = errors.New("cannot assign the same pairing to both slots")
	ErrPairingInvalid         = errors.New("pairing is not confirmed or belongs to another category")
	ErrMatchDisputed          = errors.New("match has an open dispute")
	ErrInvalidTransition      = errors.New("lifecycle transition not allowed from current state")
	ErrGenerationConflict     = errors.New("a concurrent operation on this category won, re-read and retry")

	// Ошибки аутентификации и авторизации
	ErrInvalidCredentials = errors.New("invalid user id or password")
	ErrNotPrivileged      = errors.New("operation not allowed for the current role")
	ErrOverrideNotAllowed = errors.New("override requires owner privileges")
)
