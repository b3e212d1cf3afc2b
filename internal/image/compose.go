package imagepkg

import (
	"context"
	"image"
	"image/color"
	"net/http"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"github.com/youruser/deckbuilder/internal/deck"
)

const (
	cardW   = 168
	cardH   = 246
	gap     = 8
	margin  = 48
	perRow  = 10
	qrSize  = 400
	rowsGap = 32
)

var (
	background  = color.NRGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff}
	placeholder = color.NRGBA{R: 0x99, G: 0x99, B: 0x99, A: 0xff}
)

func rowsFor(n int) int {
	return (n + perRow - 1) / perRow
}

func blockHeight(n int) int {
	r := rowsFor(n)
	if r == 0 {
		return 0
	}
	return r*cardH + (r-1)*gap
}

// ComposeDeckImage lays out each section's card images as a grid, one copy
// per tile, sections stacked top to bottom, with an optional QR code to the
// right. Nil images are drawn as grey placeholders.
func ComposeDeckImage(sections [][]image.Image, qr image.Image) *image.NRGBA {
	w := margin*2 + perRow*cardW + (perRow-1)*gap
	if qr != nil {
		w += rowsGap + qrSize
	}
	h := margin * 2
	nonEmpty := 0
	for _, imgs := range sections {
		if len(imgs) == 0 {
			continue
		}
		if nonEmpty > 0 {
			h += rowsGap
		}
		h += blockHeight(len(imgs))
		nonEmpty++
	}
	if qr != nil && h < margin*2+qrSize {
		h = margin*2 + qrSize
	}
	if h == margin*2 {
		h += cardH
	}
	canvas := imaging.New(w, h, background)

	y := margin
	for _, imgs := range sections {
		if len(imgs) == 0 {
			continue
		}
		for i, img := range imgs {
			x := margin + (i%perRow)*(cardW+gap)
			cy := y + (i/perRow)*(cardH+gap)
			var tile image.Image
			if img != nil {
				tile = imaging.Fill(img, cardW, cardH, imaging.Center, imaging.Lanczos)
			} else {
				tile = imaging.New(cardW, cardH, placeholder)
			}
			canvas = imaging.Paste(canvas, tile, image.Pt(x, cy))
		}
		y += blockHeight(len(imgs)) + rowsGap
	}

	if qr != nil {
		q := imaging.Resize(qr, qrSize, qrSize, imaging.NearestNeighbor)
		canvas = imaging.Paste(canvas, q, image.Pt(w-margin-qrSize, margin))
	}
	return canvas
}

// RenderDeck downloads the artwork of every card in d and composes the deck
// image. Each distinct card is fetched once; failed downloads become
// placeholders. When qrText is not empty it is encoded into the QR code.
func RenderDeck(ctx context.Context, client *http.Client, logger *zap.Logger, d deck.Deck, qrText string) *image.NRGBA {
	if logger == nil {
		logger = zap.NewNop()
	}
	art := map[int]image.Image{}
	fetch := func(dc deck.DeckCard) image.Image {
		if img, ok := art[dc.Card.ID]; ok {
			return img
		}
		var img image.Image
		if u := dc.Card.SmallImageURL(); u != "" {
			var err error
			img, err = DownloadImage(ctx, client, u)
			if err != nil {
				logger.Warn("card image download failed", zap.Int("card_id", dc.Card.ID), zap.Error(err))
				img = nil
			}
		}
		art[dc.Card.ID] = img
		return img
	}

	var sections [][]image.Image
	for _, s := range deck.Sections {
		var imgs []image.Image
		for _, dc := range d.Entries(s) {
			img := fetch(dc)
			for i := 0; i < dc.Count; i++ {
				imgs = append(imgs, img)
			}
		}
		sections = append(sections, imgs)
	}

	var qr image.Image
	if qrText != "" {
		q, err := GenerateQRImage(qrText, qrSize)
		if err != nil {
			logger.Warn("deck list does not fit in a QR code", zap.Int("bytes", len(qrText)), zap.Error(err))
		} else {
			qr = q
		}
	}
	return ComposeDeckImage(sections, qr)
}
