package imaging

import (
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/h2non/bimg"

	"github.com/petermazzocco/interior-admin/models"
)

// Detect sniffs the content type of data. http.DetectContentType covers
// the common formats; mimetype picks up the rest (heic, avif and friends).
func Detect(data []byte) string {
	ct := http.DetectContentType(data)
	if ct == "application/octet-stream" || strings.HasPrefix(ct, "text/plain") {
		ct = mimetype.Detect(data).String()
	}
	if mt, _, err := mime.ParseMediaType(ct); err == nil {
		return mt
	}
	return ct
}

// Preparer only lets images through and, when MaxWidth is set, scales
// wider images down to it.
type Preparer struct {
	MaxWidth int
}

func (p Preparer) Prepare(u models.Upload) (models.Upload, error) {
	ct := Detect(u.Data)
	if !strings.HasPrefix(ct, "image/") {
		return u, models.ValidationError("%s is not an image.", u.Filename)
	}
	u.ContentType = ct
	if p.MaxWidth <= 0 || ct == "image/svg+xml" || ct == "image/gif" {
		return u, nil
	}
	data, err := Resize(u.Data, p.MaxWidth)
	if err != nil {
		return u, err
	}
	u.Data = data
	return u, nil
}

// Resize scales data down to maxWidth keeping the aspect ratio. Narrower
// images come back untouched.
func Resize(data []byte, maxWidth int) ([]byte, error) {
	size, err := bimg.NewImage(data).Size()
	if err != nil {
		return nil, fmt.Errorf("failed to read image size: %w", err)
	}
	if size.Width <= maxWidth {
		return data, nil
	}
	out, err := bimg.NewImage(data).Process(bimg.Options{Width: maxWidth})
	if err != nil {
		return nil, fmt.Errorf("failed to resize image: %w", err)
	}
	return out, nil
}
