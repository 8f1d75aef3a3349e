package errs

import "net/http"

// errorMap holds the message and HTTP status for every known code.
// A zero Status is served as 200 with the code in the body.
var errorMap = map[int]CustomError{
	ErrInvalidParams:         {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrUnsupportedMediaType:  {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:     {Code: ErrInvalidJSONFormat, Message: "Unsupported request format.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:    {Code: ErrExtraContentInBody, Message: "Request contains unexpected data.", Status: http.StatusBadRequest},
	ErrFormParseFailed:       {Code: ErrFormParseFailed, Message: "Failed to process uploaded data.", Status: http.StatusBadRequest},
	ErrRequestEntityTooLarge: {Code: ErrRequestEntityTooLarge, Message: "Request size is too large.", Status: http.StatusRequestEntityTooLarge},
	ErrRateLimitExceeded:     {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},
	ErrValidationFailed:      {Code: ErrValidationFailed, Message: "Please correct the highlighted fields.", Status: http.StatusUnprocessableEntity},

	ErrContactNotFound:     {Code: ErrContactNotFound, Message: "Contact not found.", Status: http.StatusNotFound},
	ErrUnknownFormKind:     {Code: ErrUnknownFormKind, Message: "Unknown form."},
	ErrFileSizeTooLarge:    {Code: ErrFileSizeTooLarge, Message: "Photo must be %d MB or smaller.", Status: http.StatusRequestEntityTooLarge},
	ErrUnsupportedFileType: {Code: ErrUnsupportedFileType, Message: "Photo must be a JPEG, PNG or WebP image.", Status: http.StatusBadRequest},

	ErrUnauthorized:        {Code: ErrUnauthorized, Message: "Please sign in to continue.", Status: http.StatusUnauthorized},
	ErrAlreadyLoggedIn:     {Code: ErrAlreadyLoggedIn, Message: "You are already signed in."},
	ErrUserAlreadyExists:   {Code: ErrUserAlreadyExists, Message: "This email is already registered.", Status: http.StatusConflict},
	ErrInvalidCredentials:  {Code: ErrInvalidCredentials, Message: "Incorrect email or password.", Status: http.StatusUnauthorized},
	ErrUserNotFound:        {Code: ErrUserNotFound, Message: "Account not found.", Status: http.StatusUnauthorized},
	ErrPhotoUploadDisabled: {Code: ErrPhotoUploadDisabled, Message: "Photo uploads are not available."},

	ErrUnknown:           {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
	ErrFileStorageFailed: {Code: ErrFileStorageFailed, Message: "File upload failed. Please try again.", Status: http.StatusBadGateway},
}
