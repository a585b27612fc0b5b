// Package media prepares product images and hands them to the media host.
package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/disintegration/imaging"
)

const webpQuality = 82

type Uploader struct {
	host   Host
	maxDim int
	log    *slog.Logger
}

// NewUploader downsizes images to fit a maxDim square and re-encodes them as
// WebP before upload when maxDim > 0. Otherwise files pass through untouched.
func NewUploader(host Host, maxDim int, log *slog.Logger) *Uploader {
	if log == nil {
		log = slog.Default()
	}
	return &Uploader{host: host, maxDim: maxDim, log: log.With("service", "media")}
}

func (u *Uploader) Upload(ctx context.Context, r io.Reader, filename string) (*uploader.UploadResult, error) {
	if u.host == nil {
		return nil, ErrNotConfigured
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty upload")
	}

	body, name := raw, filename
	if u.maxDim > 0 {
		if out, err := u.optimize(raw); err != nil {
			u.log.Debug("uploading original, not a decodable image", "filename", filename, "error", err)
		} else {
			body = out
			name = strings.TrimSuffix(filename, filepath.Ext(filename)) + ".webp"
		}
	}
	return u.host.Upload(ctx, bytes.NewReader(body), name)
}

func (u *Uploader) optimize(raw []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	if b.Dx() > u.maxDim || b.Dy() > u.maxDim {
		img = imaging.Fit(img, u.maxDim, u.maxDim, imaging.Lanczos)
	}
	return encodeWebP(img)
}

func encodeWebP(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Quality: webpQuality}); err != nil {
		return nil, fmt.Errorf("encode webp: %w", err)
	}
	return buf.Bytes(), nil
}
