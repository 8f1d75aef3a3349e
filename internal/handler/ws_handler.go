/*
Package handler provides the HTTP handler function for WebSocket connection upgrading and initialization.

This file contains HandleFormSocket, which validates the requested form kind and the caller's
identity, upgrades the HTTP connection to WebSocket, and hands it to the live session manager.
*/
package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"phonebook/internal/app/form"
	"phonebook/internal/pkg/auth/jwt"
	"phonebook/internal/pkg/errs"
	"phonebook/internal/pkg/logx"
	"phonebook/internal/pkg/resp"
)

// HandleFormSocket serves GET /ws/forms/{kind}. Register and login forms are for
// anonymous callers; the contact form needs an identity and adds to its address book.
func HandleFormSocket(upgrader websocket.Upgrader, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind := form.Kind(chi.URLParam(r, "kind"))
		if _, err := deps.Forms.Schema(kind); err != nil {
			logx.Info("WebSocket request rejected: Unknown form kind.", "kind", kind)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknownFormKind))
			return
		}

		identity := jwt.GetPayloadFromContext(r)

		var contacts form.ContactsAPI
		switch kind {
		case form.KindContact:
			if identity == nil {
				resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
				return
			}
			contacts = deps.Contacts.Book(identity.ID)
		default:
			if identity != nil {
				resp.RespondError(w, r, errs.NewError(errs.ErrAlreadyLoggedIn))
				return
			}
		}

		cfg, err := form.ConfigFor(kind, deps.Forms, deps.Accounts, contacts)
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		session, err := deps.Live.Serve(conn, cfg)
		if err != nil {
			logx.Warn("Live session refused", "kind", kind, "error", err.Error())
			_ = conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "server unavailable"),
				time.Now().Add(time.Second),
			)
			_ = conn.Close()
			return
		}

		logx.Info("WebSocket connection established", "session_id", session.ID, "kind", kind)
	}
}
