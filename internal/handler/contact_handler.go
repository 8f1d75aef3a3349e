package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"phonebook/internal/pkg/auth/jwt"
	"phonebook/internal/pkg/req"
	"phonebook/internal/pkg/resp"
)

type ContactInput struct {
	Name   string `json:"name"`
	Number string `json:"number"`
}

// HandleListContacts returns the caller's contacts sorted by name.
func HandleListContacts(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)

		items, err := deps.Contacts.List(r.Context(), identity.ID)
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"contacts": items})
	}
}

func HandleCreateContact(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)

		var input ContactInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		c, err := deps.Contacts.Add(r.Context(), identity.ID, input.Name, input.Number)
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"contact": c})
	}
}

func HandleUpdateContact(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)

		var input ContactInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		c, err := deps.Contacts.Update(r.Context(), identity.ID, chi.URLParam(r, "id"), input.Name, input.Number)
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"contact": c})
	}
}

func HandleDeleteContact(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)

		if err := deps.Contacts.Delete(r.Context(), identity.ID, chi.URLParam(r, "id")); err != nil {
			resp.RespondErr(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, nil)
	}
}
