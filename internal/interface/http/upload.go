package handlers

import (
	"github.com/gin-gonic/gin"

	app "github.com/taranco/contact-directory-api/internal/application"
)

// formImage pulls an optional image out of a multipart form. Returns
// (nil, nil, nil) when the field is absent; the caller must invoke the
// returned closer once the upload has been consumed.
func formImage(c *gin.Context, field string) (*app.ImageUpload, func(), error) {
	fh, err := c.FormFile(field)
	if err != nil {
		// gin returns http.ErrMissingFile (wrapped) for an absent field
		return nil, nil, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, nil, err
	}
	return &app.ImageUpload{
		Reader:      f,
		ContentType: fh.Header.Get("Content-Type"),
	}, func() { _ = f.Close() }, nil
}
