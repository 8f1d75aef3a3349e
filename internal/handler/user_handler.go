package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"phonebook/internal/app/account"
	"phonebook/internal/pkg/auth/jwt"
	"phonebook/internal/pkg/errs"
	"phonebook/internal/pkg/logx"
	"phonebook/internal/pkg/req"
	"phonebook/internal/pkg/resp"
)

const (
	// AvatarFormField is the multipart field carrying the photo.
	AvatarFormField = "avatar"

	// MaxAvatarSizeMB caps a profile photo.
	MaxAvatarSizeMB = 5
	maxAvatarSize   = MaxAvatarSizeMB << 20
)

// allowedPhotoTypes maps the sniffed content type of an accepted photo to its extension.
var allowedPhotoTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// HandleGetCurrentUser returns the profile of the authenticated user.
func HandleGetCurrentUser(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)

		u, err := deps.Accounts.Current(r.Context(), identity.ID)
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"user": u})
	}
}

// HandleUploadAvatar replaces the profile photo of the authenticated user with the
// image sent in the "avatar" multipart field.
func HandleUploadAvatar(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)

		if customErr := req.SetupMultipart(w, r); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}
		defer func() {
			if r.MultipartForm != nil {
				_ = r.MultipartForm.RemoveAll()
			}
		}()

		file, header, err := r.FormFile(AvatarFormField)
		if err != nil {
			if errors.Is(err, http.ErrMissingFile) {
				resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
				return
			}
			resp.RespondError(w, r, errs.NewError(errs.ErrFormParseFailed))
			return
		}
		defer file.Close()

		if header.Size > maxAvatarSize {
			resp.RespondError(w, r, errs.NewError(errs.ErrFileSizeTooLarge, MaxAvatarSizeMB))
			return
		}

		contentType, ext, err := sniffPhoto(file)
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}

		u, err := deps.Accounts.UpdateAvatar(r.Context(), identity.ID, account.Photo{
			Body:        file,
			ContentType: contentType,
			Ext:         ext,
		})
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}

		logx.Info("Avatar updated", "user_id", identity.ID, "content_type", contentType, "size", header.Size)
		resp.RespondSuccess(w, r, map[string]any{"user": u})
	}
}

// sniffPhoto detects the content type from the first bytes of file and rewinds it.
func sniffPhoto(file multipart.File) (contentType, ext string, err error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", "", errs.NewError(errs.ErrFormParseFailed)
	}

	contentType = http.DetectContentType(head[:n])
	ext, ok := allowedPhotoTypes[contentType]
	if !ok {
		return "", "", errs.NewError(errs.ErrUnsupportedFileType)
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", "", errs.NewError(errs.ErrFormParseFailed)
	}

	return contentType, ext, nil
}
