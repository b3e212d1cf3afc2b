package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/youruser/deckbuilder/internal/cards"
	"github.com/youruser/deckbuilder/internal/deck"
	"github.com/youruser/deckbuilder/internal/ratelimit"
	"github.com/youruser/deckbuilder/internal/util"
)

// Server exposes one deck engine and a card catalog over HTTP.
type Server struct {
	engine      *deck.Engine
	catalog     cards.Catalog
	limiter     *ratelimit.Limiter
	logger      *zap.Logger
	imageClient *http.Client
}

// NewServer wires the handlers. limiter may be nil to disable rate limiting.
func NewServer(engine *deck.Engine, catalog cards.Catalog, limiter *ratelimit.Limiter, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		engine:      engine,
		catalog:     catalog,
		limiter:     limiter,
		logger:      logger,
		imageClient: util.DefaultClient,
	}
}

// Router returns a gin engine with middleware and every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), logRequests(s.logger))
	s.RegisterRoutes(r)
	return r
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")
	{
		api.GET("/health", health)
		api.GET("/qr", qrHandler)
		api.GET("/cards/:id", s.getCard)

		d := api.Group("/deck")
		d.GET("", s.getDeck)
		d.POST("/new", s.newDeck)
		d.PUT("/name", s.renameDeck)
		d.POST("/reset", s.resetDeck)
		d.POST("/cards", s.addCard)
		d.DELETE("/cards/:section/:id", s.removeCard)
		d.PUT("/cards/:section/:id", s.setCardCount)
		d.GET("/stats", s.deckStats)
		d.GET("/validity", s.deckValidity)
		d.GET("/export", s.exportDeck)
		d.POST("/import", s.importDeck)
		d.GET("/draw", s.drawHand)
		d.GET("/image", s.deckImage)
	}

	limited := api.Group("")
	if s.limiter != nil {
		limited.Use(rateLimit(s.limiter, s.logger))
	}
	{
		limited.GET("/ratelimit", rateLimitStatus)
		limited.GET("/cards", s.searchCards)
		limited.GET("/decks", s.listDecks)
		limited.POST("/decks/save", s.saveDeck)
		limited.DELETE("/decks/:id", s.deleteDeck)
		limited.POST("/decks/:id/select", s.selectDeck)
	}
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
