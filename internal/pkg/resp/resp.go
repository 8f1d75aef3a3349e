/*
Package resp writes the JSON envelope every phonebook API response uses:

	{"code": 0, "message": "success", "data": {...}}

A non-zero code is one of the errs package codes. Validation failures also carry
the per-field messages under data.fields.
*/
package resp

import (
	"encoding/json"
	"net/http"

	"phonebook/internal/pkg/errs"
	"phonebook/internal/pkg/logx"
)

// JSONResponse is the response envelope.
type JSONResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// RespondJSON marshals payload and writes it with httpStatus.
func RespondJSON(w http.ResponseWriter, r *http.Request, httpStatus int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		logx.Error(err, "Error encoding JSON response", "http_status", httpStatus, "path", r.URL.Path)
		http.Error(w, "Error encoding JSON response", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(httpStatus)
	_, _ = w.Write(body)
}

// RespondSuccess writes a 200 response with code 0.
func RespondSuccess(w http.ResponseWriter, r *http.Request, data any) {
	RespondJSON(w, r, http.StatusOK, JSONResponse{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// RespondError writes customErr with its own HTTP status. A nil error is served as ErrUnknown.
func RespondError(w http.ResponseWriter, r *http.Request, customErr *errs.CustomError) {
	if customErr == nil {
		customErr = errs.NewError(errs.ErrUnknown)
	}

	res := JSONResponse{
		Code:    customErr.Code,
		Message: customErr.Message,
	}
	if len(customErr.Fields) > 0 {
		res.Data = map[string]any{"fields": customErr.Fields}
	}

	RespondJSON(w, r, customErr.Status, res)
}

// RespondErr is RespondError for plain errors returned by services.
func RespondErr(w http.ResponseWriter, r *http.Request, err error) {
	RespondError(w, r, errs.From(err))
}
