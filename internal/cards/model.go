package cards

import "errors"

// ErrCardNotFound is returned when a catalog has no card for the requested id.
var ErrCardNotFound = errors.New("card not found")

// Card is a card record as served by the YGOPRODeck card database.
// Only ID, Name and Type are interpreted by the deck engine.
type Card struct {
	ID         int         `json:"id" yaml:"id"`
	Name       string      `json:"name" yaml:"name"`
	Type       string      `json:"type" yaml:"type"`
	FrameType  string      `json:"frameType,omitempty" yaml:"-"`
	Desc       string      `json:"desc" yaml:"-"`
	Atk        *int        `json:"atk,omitempty" yaml:"-"`
	Def        *int        `json:"def,omitempty" yaml:"-"`
	Level      *int        `json:"level,omitempty" yaml:"-"`
	Race       string      `json:"race" yaml:"-"`
	Attribute  string      `json:"attribute,omitempty" yaml:"-"`
	Archetype  string      `json:"archetype,omitempty" yaml:"-"`
	CardSets   []CardSet   `json:"card_sets,omitempty" yaml:"-"`
	CardImages []CardImage `json:"card_images,omitempty" yaml:"-"`
	CardPrices []CardPrice `json:"card_prices,omitempty" yaml:"-"`
}

type CardSet struct {
	SetName   string `json:"set_name"`
	SetRarity string `json:"set_rarity"`
}

type CardImage struct {
	ID            int    `json:"id"`
	ImageURL      string `json:"image_url"`
	ImageURLSmall string `json:"image_url_small"`
	ImageURLCrop  string `json:"image_url_cropped"`
}

type CardPrice struct {
	CardmarketPrice string `json:"cardmarket_price"`
	TCGPlayerPrice  string `json:"tcgplayer_price"`
}

// SmallImageURL returns the thumbnail URL of the card's first artwork, if any.
func (c Card) SmallImageURL() string {
	if len(c.CardImages) == 0 {
		return ""
	}
	if c.CardImages[0].ImageURLSmall != "" {
		return c.CardImages[0].ImageURLSmall
	}
	return c.CardImages[0].ImageURL
}
