// Temporary-image HTTP handlers.
//
// This file exposes REST endpoints for the image upload lifecycle:
//   - POST   /til-images/temp        (upload an image ahead of entry creation)
//   - DELETE /til-images/temp/{id}   (discard a still-unattached upload)
//
// Uploads are multipart/form-data with the file under the "image" field.
// A successful upload yields an identifier the client later submits in a TIL
// create/update payload to promote the image to permanent storage.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/growlog/til-backend/internal/services"
)

// UploadImageResponse is the JSON envelope for a stored temporary image.
type UploadImageResponse struct {
	// ImageID is submitted later in a TIL payload to attach the image.
	ImageID string `json:"image_id"`
	// ImageURL is immediately usable for client-side preview.
	ImageURL string `json:"image_url"`
}

// UploadTempImage stores an uploaded file as a temporary image.
//
// The file travels in the "image" multipart field. The object is stored under
// a collision-free temporary key; the image stays unattached until a TIL
// create or update references its id.
func (h *Handlers) UploadTempImage(c *gin.Context) {
	ctx := c.Request.Context()

	fh, err := c.FormFile("image")
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "no image provided")
		return
	}

	f, err := fh.Open()
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unreadable image payload")
		return
	}
	defer f.Close()

	img, err := h.imgSvc.UploadTemp(ctx, fh.Filename, f)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeUploadFailed, err.Error())
		return
	}

	ok(c, http.StatusCreated, UploadImageResponse{
		ImageID:  img.ID,
		ImageURL: img.URL,
	})
}

// DeleteTempImage discards a temporary image and its stored object.
//
// Images already attached to a TIL are not deletable through this endpoint;
// they are managed via TIL update and delete.
func (h *Handlers) DeleteTempImage(c *gin.Context) {
	ctx := c.Request.Context()
	imageID := c.Param("id")

	if _, err := uuid.Parse(imageID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "image id must be a UUID")
		return
	}

	if err := h.imgSvc.DeleteTemp(ctx, imageID); err != nil {
		switch err {
		case services.ErrImageNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "temporary image not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeDeleteFailed, err.Error())
		}
		return
	}
	noContent(c)
}
