package handler

import (
	"net/http"

	"phonebook/internal/app/avatar"
	"phonebook/internal/pkg/resp"
)

// HandleAvatar returns the placeholder avatar of the name query parameter.
// A missing name yields the default avatar, like any name shorter than two characters.
func HandleAvatar() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("name")

		resp.RespondSuccess(w, r, map[string]any{
			"name":   name,
			"avatar": avatar.Derive(name),
		})
	}
}
