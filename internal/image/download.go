package imagepkg

import (
	"bytes"
	"context"
	"image"
	"net/http"

	"github.com/disintegration/imaging"

	"github.com/youruser/deckbuilder/internal/util"
)

// DownloadImage downloads an image from URL and returns it decoded.
func DownloadImage(ctx context.Context, client *http.Client, url string) (image.Image, error) {
	body, err := util.GetBytes(ctx, client, url)
	if err != nil {
		return nil, err
	}
	return imaging.Decode(bytes.NewReader(body))
}
