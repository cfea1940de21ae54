package dashboarderrors

import (
	"net/http"

	"breakly/internal/shared/apperror"
)

var ErrUserNotFound = apperror.New(
	apperror.CodeNotFound,
	"User not found",
	http.StatusNotFound,
)
