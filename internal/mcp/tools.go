package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/youruser/deckbuilder/internal/cards"
	"github.com/youruser/deckbuilder/internal/deck"
)

// Tools exposes one deck engine to an MCP client.
type Tools struct {
	engine  *deck.Engine
	catalog cards.Catalog
}

func NewTools(engine *deck.Engine, catalog cards.Catalog) *Tools {
	return &Tools{engine: engine, catalog: catalog}
}

// NewServer returns an MCP server with every deck tool registered.
func NewServer(version string, engine *deck.Engine, catalog cards.Catalog) *server.MCPServer {
	s := server.NewMCPServer("deckbuilder", version)
	NewTools(engine, catalog).Register(s)
	return s
}

// Register adds all deck tools to the MCP server.
func (t *Tools) Register(s *server.MCPServer) {
	s.AddTool(searchCardsTool(), t.handleSearchCards)
	s.AddTool(getDeckTool(), t.handleGetDeck)
	s.AddTool(addCardTool(), t.handleAddCard)
	s.AddTool(removeCardTool(), t.handleRemoveCard)
	s.AddTool(setCardCountTool(), t.handleSetCardCount)
	s.AddTool(renameDeckTool(), t.handleRenameDeck)
	s.AddTool(newDeckTool(), t.handleNewDeck)
	s.AddTool(deckStatsTool(), t.handleDeckStats)
	s.AddTool(exportDeckTool(), t.handleExportDeck)
	s.AddTool(importDeckTool(), t.handleImportDeck)
	s.AddTool(drawHandTool(), t.handleDrawHand)
	s.AddTool(saveDeckTool(), t.handleSaveDeck)
	s.AddTool(listDecksTool(), t.handleListDecks)
}

// --- Tool definitions ---

func sectionParam() mcp.ToolOption {
	return mcp.WithString("section", mcp.Description("Deck section: main, extra or side. Defaults to main."))
}

func searchCardsTool() mcp.Tool {
	return mcp.NewTool("search_cards",
		mcp.WithDescription("Search the card catalog. All filters are optional; name matches partially, the rest exactly."),
		mcp.WithString("name", mcp.Description("Part of the card name")),
		mcp.WithString("type", mcp.Description("Card type, e.g. 'Effect Monster' or 'Spell Card'")),
		mcp.WithString("race", mcp.Description("Monster race or spell/trap kind")),
		mcp.WithString("archetype", mcp.Description("Archetype name")),
		mcp.WithString("attribute", mcp.Description("Monster attribute, e.g. LIGHT")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 50)")),
	)
}

func getDeckTool() mcp.Tool {
	return mcp.NewTool("get_deck",
		mcp.WithDescription("Get the deck being edited with its stats, validity and unsaved-changes flag. Read-only."),
	)
}

func addCardTool() mcp.Tool {
	return mcp.NewTool("add_card",
		mcp.WithDescription("Add one copy of a card to the deck. Fusion, Synchro, XYZ and Link monsters always go to the extra deck "+
			"when the main deck is requested. At most 3 copies per card per section."),
		mcp.WithNumber("card_id", mcp.Required(), mcp.Description("Catalog id of the card")),
		sectionParam(),
	)
}

func removeCardTool() mcp.Tool {
	return mcp.NewTool("remove_card",
		mcp.WithDescription("Remove one copy of a card from a deck section."),
		mcp.WithNumber("card_id", mcp.Required(), mcp.Description("Catalog id of the card")),
		sectionParam(),
	)
}

func setCardCountTool() mcp.Tool {
	return mcp.NewTool("set_card_count",
		mcp.WithDescription("Set the copies of a card already in a section. 0 removes it."),
		mcp.WithNumber("card_id", mcp.Required(), mcp.Description("Catalog id of the card")),
		mcp.WithNumber("count", mcp.Required(), mcp.Description("Copies, 0 to 3")),
		sectionParam(),
	)
}

func renameDeckTool() mcp.Tool {
	return mcp.NewTool("rename_deck",
		mcp.WithDescription("Rename the deck being edited."),
		mcp.WithString("name", mcp.Required(), mcp.Description("New deck name")),
	)
}

func newDeckTool() mcp.Tool {
	return mcp.NewTool("new_deck",
		mcp.WithDescription("Start a new empty deck. Unsaved changes to the current deck are discarded."),
		mcp.WithString("name", mcp.Description("Deck name (default 'New Deck')")),
	)
}

func deckStatsTool() mcp.Tool {
	return mcp.NewTool("deck_stats",
		mcp.WithDescription("Get card counts per section and whether each section is within its size limits. Read-only."),
	)
}

func exportDeckTool() mcp.Tool {
	return mcp.NewTool("export_deck",
		mcp.WithDescription("Export the deck as a text list or YAML. Read-only."),
		mcp.WithString("format", mcp.Description("'text' (default) or 'yaml'")),
	)
}

func importDeckTool() mcp.Tool {
	return mcp.NewTool("import_deck",
		mcp.WithDescription("Replace the current deck with a text deck list in the export_deck format. "+
			"Cards are matched by exact name; unknown names are reported."),
		mcp.WithString("list", mcp.Required(), mcp.Description("Deck list text")),
	)
}

func drawHandTool() mcp.Tool {
	return mcp.NewTool("draw_hand",
		mcp.WithDescription("Shuffle the main deck and draw a sample opening hand. Read-only."),
		mcp.WithNumber("n", mcp.Description("Cards to draw (default 5)")),
	)
}

func saveDeckTool() mcp.Tool {
	return mcp.NewTool("save_deck",
		mcp.WithDescription("Save the current deck for a user."),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("Owning user id")),
	)
}

func listDecksTool() mcp.Tool {
	return mcp.NewTool("list_decks",
		mcp.WithDescription("List a user's saved decks."),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("Owning user id")),
	)
}

// --- Tool handlers ---

type deckResponse struct {
	Deck     deck.Deck     `json:"deck"`
	Stats    deck.Stats    `json:"stats"`
	Validity deck.Validity `json:"validity"`
	Dirty    bool          `json:"dirty"`
	Message  string        `json:"message,omitempty"`
}

func (t *Tools) deckState(msg string) *mcp.CallToolResult {
	d := t.engine.Current()
	return respondJSON(deckResponse{
		Deck:     d,
		Stats:    deck.ComputeStats(d),
		Validity: deck.CheckValidity(d),
		Dirty:    t.engine.IsDirty(),
		Message:  msg,
	})
}

func respondJSON(v any) *mcp.CallToolResult {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultErrorf("marshal error: %v", err)
	}
	return mcp.NewToolResultText(string(data))
}

func sectionArg(request mcp.CallToolRequest) (deck.Section, error) {
	raw := request.GetString("section", "")
	if raw == "" {
		return deck.SectionMain, nil
	}
	return deck.ParseSection(raw)
}

func (t *Tools) handleSearchCards(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filters := cards.SearchFilters{
		Name:      request.GetString("name", ""),
		Type:      request.GetString("type", ""),
		Race:      request.GetString("race", ""),
		Archetype: request.GetString("archetype", ""),
		Attribute: request.GetString("attribute", ""),
	}
	found, err := t.catalog.Search(ctx, filters, request.GetInt("limit", cards.DefaultLimit))
	if err != nil {
		return mcp.NewToolResultErrorf("Search failed: %v", err), nil
	}
	type hit struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
		Type string `json:"type"`
		Desc string `json:"desc,omitempty"`
	}
	hits := make([]hit, 0, len(found))
	for _, c := range found {
		hits = append(hits, hit{ID: c.ID, Name: c.Name, Type: c.Type, Desc: c.Desc})
	}
	return respondJSON(map[string]any{"count": len(hits), "cards": hits}), nil
}

func (t *Tools) handleGetDeck(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return t.deckState(""), nil
}

func (t *Tools) handleAddCard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sec, err := sectionArg(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id := request.GetInt("card_id", 0)
	card, err := t.catalog.Card(ctx, id)
	if errors.Is(err, cards.ErrCardNotFound) {
		return mcp.NewToolResultErrorf("No card with id %d.", id), nil
	}
	if err != nil {
		return mcp.NewToolResultErrorf("Card lookup failed: %v", err), nil
	}

	target := deck.ResolveSection(card, sec)
	if !t.engine.CanAddCard(target) {
		return mcp.NewToolResultErrorf("%s limit reached (%d cards).", target.Title(), target.Limit()), nil
	}
	cur := t.engine.Current()
	if cur.Copies(target, card.ID) >= deck.MaxCopies {
		return mcp.NewToolResultErrorf("%s already holds %d copies of %s.", target.Title(), deck.MaxCopies, card.Name), nil
	}
	t.engine.AddCard(card, sec)
	return t.deckState(fmt.Sprintf("Added %s to the %s.", card.Name, target.Title())), nil
}

func (t *Tools) handleRemoveCard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sec, err := sectionArg(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id := request.GetInt("card_id", 0)
	cur := t.engine.Current()
	if cur.Copies(sec, id) == 0 {
		return mcp.NewToolResultErrorf("Card %d is not in the %s.", id, sec.Title()), nil
	}
	t.engine.RemoveCard(id, sec)
	return t.deckState(""), nil
}

func (t *Tools) handleSetCardCount(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sec, err := sectionArg(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id := request.GetInt("card_id", 0)
	count := request.GetInt("count", -1)
	if count < 0 || count > deck.MaxCopies {
		return mcp.NewToolResultErrorf("count must be 0-%d.", deck.MaxCopies), nil
	}
	cur := t.engine.Current()
	if cur.Copies(sec, id) == 0 {
		return mcp.NewToolResultErrorf("Card %d is not in the %s.", id, sec.Title()), nil
	}
	t.engine.SetCardCount(id, sec, count)
	return t.deckState(""), nil
}

func (t *Tools) handleRenameDeck(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := strings.TrimSpace(request.GetString("name", ""))
	if name == "" {
		return mcp.NewToolResultError("name must not be empty."), nil
	}
	t.engine.Rename(name)
	return t.deckState(""), nil
}

func (t *Tools) handleNewDeck(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t.engine.CreateNew(strings.TrimSpace(request.GetString("name", "")))
	return t.deckState(""), nil
}

func (t *Tools) handleDeckStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return respondJSON(map[string]any{
		"stats":    t.engine.Stats(),
		"validity": t.engine.Validity(),
	}), nil
}

func (t *Tools) handleExportDeck(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	switch strings.ToLower(request.GetString("format", "text")) {
	case "text", "txt":
		return mcp.NewToolResultText(t.engine.ExportText()), nil
	case "yaml", "yml":
		data, err := deck.MarshalYAML(t.engine.Current())
		if err != nil {
			return mcp.NewToolResultErrorf("Export failed: %v", err), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	}
	return mcp.NewToolResultError("format must be 'text' or 'yaml'."), nil
}

func (t *Tools) handleImportDeck(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := deck.ParseText(strings.NewReader(request.GetString("list", "")))
	if err != nil {
		return mcp.NewToolResultErrorf("Invalid deck list: %v", err), nil
	}
	report, err := t.engine.Import(ctx, list, func(ctx context.Context, name string) (cards.Card, error) {
		return cards.FindByName(ctx, t.catalog, name)
	})
	if err != nil {
		return mcp.NewToolResultErrorf("Import failed: %v", err), nil
	}
	msg := fmt.Sprintf("Imported %d cards.", report.CardCount)
	if len(report.Missing) > 0 {
		msg += " Not found: " + strings.Join(report.Missing, ", ")
	}
	return t.deckState(msg), nil
}

func (t *Tools) handleDrawHand(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	hand, err := t.engine.DrawHand(request.GetInt("n", deck.HandSize), nil)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	names := make([]string, len(hand))
	for i, c := range hand {
		names[i] = c.Name
	}
	return respondJSON(map[string]any{"hand": names}), nil
}

func (t *Tools) handleSaveDeck(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := t.engine.Save(ctx, request.GetString("user_id", "")); err != nil {
		return mcp.NewToolResultErrorf("Save failed: %v", err), nil
	}
	return t.deckState("Saved."), nil
}

func (t *Tools) handleListDecks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := t.engine.LoadSaved(ctx, request.GetString("user_id", "")); err != nil {
		return mcp.NewToolResultErrorf("Listing decks failed: %v", err), nil
	}
	type summary struct {
		ID    string     `json:"id"`
		Name  string     `json:"name"`
		Stats deck.Stats `json:"stats"`
	}
	decks := t.engine.SavedDecks()
	out := make([]summary, len(decks))
	for i, d := range decks {
		out[i] = summary{ID: d.ID, Name: d.Name, Stats: deck.ComputeStats(d)}
	}
	return respondJSON(map[string]any{"count": len(out), "decks": out}), nil
}
