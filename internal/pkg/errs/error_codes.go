/*
Package errs defines the application error type and the numeric codes shared with clients.

Codes are grouped by thousand: 1xxx request handling, 2xxx contacts and forms,
3xxx accounts and sessions, 5xxx internal failures. The API client in internal/client
decodes the same codes, so a code must never change meaning once released.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates a malformed JSON body.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates trailing data after the JSON document.
	ErrExtraContentInBody = 1004

	// ErrFormParseFailed indicates that a multipart body could not be parsed.
	ErrFormParseFailed = 1005

	// ErrRequestEntityTooLarge indicates that the request body exceeded the server limit.
	ErrRequestEntityTooLarge = 1006

	// ErrRateLimitExceeded indicates that the caller is sending requests too fast.
	ErrRateLimitExceeded = 1007

	// ErrValidationFailed indicates that one or more fields failed schema validation.
	// The offending fields travel in CustomError.Fields.
	ErrValidationFailed = 1008
)

// 2xxx: Contacts and Forms
const (
	// ErrContactNotFound indicates that the contact does not exist or belongs to someone else.
	ErrContactNotFound = 2101

	// ErrUnknownFormKind indicates a live form session for a kind the server does not know.
	ErrUnknownFormKind = 2201

	// ErrFileSizeTooLarge indicates that an uploaded photo is too big.
	ErrFileSizeTooLarge = 2301

	// ErrUnsupportedFileType indicates that an uploaded photo is not an accepted image type.
	ErrUnsupportedFileType = 2302
)

// 3xxx: Accounts and Sessions
const (
	// ErrUnauthorized indicates a missing or invalid identity token.
	ErrUnauthorized = 3001

	// ErrAlreadyLoggedIn indicates a register/login call made with a valid token.
	ErrAlreadyLoggedIn = 3002

	// ErrUserAlreadyExists indicates that the email is already registered.
	ErrUserAlreadyExists = 3003

	// ErrInvalidCredentials indicates a wrong email/password pair.
	ErrInvalidCredentials = 3004

	// ErrUserNotFound indicates that the token refers to an account that no longer exists.
	ErrUserNotFound = 3005

	// ErrPhotoUploadDisabled indicates that no object storage is configured.
	ErrPhotoUploadDisabled = 3006
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified internal error.
	ErrUnknown = 5000

	// ErrFileStorageFailed indicates that the object storage call failed.
	ErrFileStorageFailed = 5001
)
