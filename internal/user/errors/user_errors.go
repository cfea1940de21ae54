package usererrors

import (
	"net/http"

	"breakly/internal/shared/apperror"
)

var (
	ErrUserNotFound = apperror.New(
		apperror.CodeNotFound,
		"User not found",
		http.StatusNotFound,
	)

	ErrUserAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"User already exists",
		http.StatusConflict,
	)

	ErrEmailRequired = apperror.New(
		apperror.CodeInvalidInput,
		"Identity has no email address",
		http.StatusBadRequest,
	)

	ErrInvalidDisplayName = apperror.New(
		apperror.CodeInvalidInput,
		"Display name must not be empty",
		http.StatusBadRequest,
	)

	ErrInvalidRole = apperror.New(
		apperror.CodeInvalidInput,
		"Role must be one of Employee, Manager, HR",
		http.StatusBadRequest,
	)

	ErrForbidden = apperror.New(
		apperror.CodeForbidden,
		"Only HR can assign roles",
		http.StatusForbidden,
	)
)
