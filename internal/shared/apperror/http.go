package apperror

import (
	"errors"
	"net/http"
)

// HTTPError is the transport view of an error: status plus envelope code and message.
type HTTPError struct {
	Status  int
	Code    string
	Message string
}

// ToHTTP maps any error to its HTTP representation. Errors that are not
// AppErrors never leak their text to the client.
func ToHTTP(err error) HTTPError {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr != nil {
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusInternalServerError
		}
		return HTTPError{
			Status:  status,
			Code:    appErr.Code,
			Message: appErr.Message,
		}
	}

	return HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    CodeInternalError,
		Message: "Internal server error",
	}
}
