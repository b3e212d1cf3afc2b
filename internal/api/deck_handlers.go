package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/youruser/deckbuilder/internal/cards"
	"github.com/youruser/deckbuilder/internal/deck"
	imagepkg "github.com/youruser/deckbuilder/internal/image"
)

type deckView struct {
	Deck     deck.Deck     `json:"deck"`
	Stats    deck.Stats    `json:"stats"`
	Validity deck.Validity `json:"validity"`
	Dirty    bool          `json:"dirty"`
}

func (s *Server) view() deckView {
	d := s.engine.Current()
	return deckView{
		Deck:     d,
		Stats:    deck.ComputeStats(d),
		Validity: deck.CheckValidity(d),
		Dirty:    s.engine.IsDirty(),
	}
}

func (s *Server) getDeck(c *gin.Context) {
	c.JSON(http.StatusOK, s.view())
}

type nameRequest struct {
	Name string `json:"name"`
}

func (s *Server) newDeck(c *gin.Context) {
	var req nameRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	s.engine.CreateNew(strings.TrimSpace(req.Name))
	c.JSON(http.StatusCreated, s.view())
}

func (s *Server) renameDeck(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.engine.Rename(req.Name)
	c.JSON(http.StatusOK, s.view())
}

func (s *Server) resetDeck(c *gin.Context) {
	s.engine.Reset()
	c.JSON(http.StatusOK, s.view())
}

type addCardRequest struct {
	CardID  int    `json:"card_id" binding:"required"`
	Section string `json:"section"`
}

// addCard looks the card up in the catalog and adds one copy. Requests the
// section policy would silently ignore are reported as 409 instead.
func (s *Server) addCard(c *gin.Context) {
	var req addCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sec := deck.SectionMain
	if req.Section != "" {
		var err error
		if sec, err = deck.ParseSection(req.Section); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	card, err := s.catalog.Card(c.Request.Context(), req.CardID)
	if err != nil {
		writeError(c, err)
		return
	}

	target := deck.ResolveSection(card, sec)
	if !s.engine.CanAddCard(target) {
		c.JSON(http.StatusConflict, gin.H{"error": target.Title() + " limit reached"})
		return
	}
	cur := s.engine.Current()
	if cur.Copies(target, card.ID) >= deck.MaxCopies {
		c.JSON(http.StatusConflict, gin.H{
			"error": fmt.Sprintf("%s already holds %d copies of %s", target.Title(), deck.MaxCopies, card.Name),
		})
		return
	}
	s.engine.AddCard(card, sec)
	c.JSON(http.StatusOK, s.view())
}

func sectionAndID(c *gin.Context) (deck.Section, int, bool) {
	sec, err := deck.ParseSection(c.Param("section"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", 0, false
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "card id must be an integer"})
		return "", 0, false
	}
	return sec, id, true
}

func (s *Server) removeCard(c *gin.Context) {
	sec, id, ok := sectionAndID(c)
	if !ok {
		return
	}
	s.engine.RemoveCard(id, sec)
	c.JSON(http.StatusOK, s.view())
}

type countRequest struct {
	Count *int `json:"count" binding:"required"`
}

func (s *Server) setCardCount(c *gin.Context) {
	sec, id, ok := sectionAndID(c)
	if !ok {
		return
	}
	var req countRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if n := *req.Count; n < 0 || n > deck.MaxCopies {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("count must be between 0 and %d", deck.MaxCopies)})
		return
	}
	s.engine.SetCardCount(id, sec, *req.Count)
	c.JSON(http.StatusOK, s.view())
}

func (s *Server) deckStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.Stats())
}

func (s *Server) deckValidity(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.Validity())
}

// exportDeck writes the current deck as a text list (default) or YAML.
// download=1 adds a Content-Disposition header.
func (s *Server) exportDeck(c *gin.Context) {
	d := s.engine.Current()
	format := strings.ToLower(c.DefaultQuery("format", "text"))

	var (
		body        []byte
		contentType string
		ext         string
	)
	switch format {
	case "text", "txt":
		body, contentType, ext = []byte(deck.ExportText(d)), "text/plain; charset=utf-8", "txt"
	case "yaml", "yml":
		b, err := deck.MarshalYAML(d)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		body, contentType, ext = b, "application/x-yaml", "yaml"
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be text or yaml"})
		return
	}
	if dl, _ := strconv.ParseBool(c.Query("download")); dl {
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", deck.FileName(d.Name, ext)))
	}
	c.Data(http.StatusOK, contentType, body)
}

// importDeck replaces the current deck with a posted deck list. The body is
// either exported text or a YAML deck file, whose first deck is used.
func (s *Server) importDeck(c *gin.Context) {
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var list deck.List
	format := strings.ToLower(c.DefaultQuery("format", "text"))
	switch format {
	case "text", "txt":
		list, err = deck.ParseText(bytes.NewReader(data))
	case "yaml", "yml":
		var f deck.DeckFile
		f, err = deck.ParseDeckFile(data)
		if err == nil {
			if len(f.Decks) == 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "deck file holds no decks"})
				return
			}
			list = f.Decks[0].List()
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be text or yaml"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lookup := func(ctx context.Context, name string) (cards.Card, error) {
		return cards.FindByName(ctx, s.catalog, name)
	}
	report, err := s.engine.Import(c.Request.Context(), list, lookup)
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"import": report, "deck": s.view()})
}

func (s *Server) drawHand(c *gin.Context) {
	n := deck.HandSize
	if v := c.Query("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "n must be a positive integer"})
			return
		}
		n = parsed
	}
	hand, err := s.engine.DrawHand(n, nil)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hand": hand})
}

// deckImage renders the current deck as a PNG card grid with a QR code of
// the exported list.
func (s *Server) deckImage(c *gin.Context) {
	d := s.engine.Current()
	qrText := c.Query("qr_text")
	if qrText == "" {
		qrText = deck.ExportText(d)
	}
	out := imagepkg.RenderDeck(c.Request.Context(), s.imageClient, s.logger, d, qrText)
	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, out, imaging.PNG); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

func (s *Server) saveDeck(c *gin.Context) {
	if err := s.engine.Save(c.Request.Context(), userID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deck": s.view(), "saved": s.engine.SavedDecks()})
}

func (s *Server) listDecks(c *gin.Context) {
	if err := s.engine.LoadSaved(c.Request.Context(), userID(c)); err != nil {
		writeError(c, err)
		return
	}
	decks := s.engine.SavedDecks()
	c.JSON(http.StatusOK, gin.H{"count": len(decks), "decks": decks})
}

func (s *Server) deleteDeck(c *gin.Context) {
	id := c.Param("id")
	if err := s.engine.DeleteSaved(c.Request.Context(), id, userID(c)); err != nil {
		writeError(c, err)
		return
	}
	s.logger.Info("deck deleted", zap.String("deck_id", id))
	decks := s.engine.SavedDecks()
	c.JSON(http.StatusOK, gin.H{"count": len(decks), "decks": decks})
}

// selectDeck loads one of the caller's saved decks into the editor. Unsaved cards block the
// switch unless force=true; an empty deck is never worth keeping.
func (s *Server) selectDeck(c *gin.Context) {
	user := userID(c)
	if user == "" {
		writeError(c, deck.ErrNoUser)
		return
	}
	force, _ := strconv.ParseBool(c.Query("force"))
	if !force && s.engine.IsDirty() && s.engine.Stats().Total > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "current deck has unsaved changes"})
		return
	}
	if err := s.engine.Select(c.Param("id"), user); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.view())
}
