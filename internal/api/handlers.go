package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/youruser/deckbuilder/internal/cards"
	"github.com/youruser/deckbuilder/internal/deck"
	imagepkg "github.com/youruser/deckbuilder/internal/image"
)

// health
func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func rateLimitStatus(c *gin.Context) {
	c.String(http.StatusOK, "OK: You are under the rate limit!")
}

// writeError maps domain errors to status codes.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, deck.ErrNoUser):
		status = http.StatusUnauthorized
	case errors.Is(err, deck.ErrDeckNotFound), errors.Is(err, cards.ErrCardNotFound):
		status = http.StatusNotFound
	case errors.Is(err, deck.ErrSaveLimitReached):
		status = http.StatusConflict
	case errors.Is(err, deck.ErrNotEnoughCards):
		status = http.StatusUnprocessableEntity
	}
	c.Error(err)
	c.JSON(status, gin.H{"error": err.Error()})
}

// searchCards runs a catalog query from the URL parameters.
func (s *Server) searchCards(c *gin.Context) {
	var filters cards.SearchFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	limit := cards.DefaultLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}
	out, err := s.catalog.Search(c.Request.Context(), filters, limit)
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(out), "cards": out})
}

func (s *Server) getCard(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "card id must be an integer"})
		return
	}
	card, err := s.catalog.Card(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, card)
}

// qr endpoint returns a PNG of a QR for "text" query param
func qrHandler(c *gin.Context) {
	text := c.Query("text")
	if text == "" {
		text = "deck:example"
	}
	size := 400
	if v, err := strconv.Atoi(c.Query("size")); err == nil && v > 0 && v <= 2048 {
		size = v
	}
	b, err := imagepkg.GenerateQRPNG(text, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", b)
}
