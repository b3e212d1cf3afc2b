package deck

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/youruser/deckbuilder/internal/cards"
)

// DefaultSaveLimit is how many decks one user may keep saved.
const DefaultSaveLimit = 10

// Engine owns the deck being edited, the user's saved decks and the snapshot
// taken at the last successful save.
//
// Mutations never fail: requests the section policy forbids leave the deck
// untouched (including UpdatedAt). Callers that want to report why use
// CanAddCard before adding. Persistence calls do not hold the engine lock, so
// the deck stays editable while a save is in flight.
type Engine struct {
	mu        sync.Mutex
	store     Store
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
	saveLimit int

	current   Deck
	saved     []Deck
	lastSaved *Deck
}

type Option func(*Engine)

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator replaces uuid.NewString for new deck ids.
func WithIDGenerator(f func() string) Option {
	return func(e *Engine) { e.newID = f }
}

// WithSaveLimit sets the saved deck limit per user; 0 disables it.
func WithSaveLimit(n int) Option {
	return func(e *Engine) { e.saveLimit = n }
}

// NewEngine returns an engine editing a fresh empty deck.
func NewEngine(store Store, opts ...Option) *Engine {
	e := &Engine{
		store:     store,
		logger:    zap.NewNop(),
		now:       time.Now,
		newID:     uuid.NewString,
		saveLimit: DefaultSaveLimit,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.current = New(e.newID(), "", e.now())
	return e
}

// Current returns a copy of the deck being edited.
func (e *Engine) Current() Deck {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current.Clone()
}

// SavedDecks returns copies of the decks last read from persistence.
func (e *Engine) SavedDecks() []Deck {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Deck, len(e.saved))
	for i, d := range e.saved {
		out[i] = d.Clone()
	}
	return out
}

// CanAddCard reports whether section s has room for one more copy.
func (e *Engine) CanAddCard(s Section) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.canAdd(s)
}

func (e *Engine) canAdd(s Section) bool {
	return e.current.Count(s) < s.Limit()
}

// AddCard adds one copy of card to the requested section. Extra-deck cards
// requested for the main deck go to the extra deck instead. Nothing changes
// when the section is full or already holds MaxCopies of the card.
func (e *Engine) AddCard(card cards.Card, s Section) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.add(card, s)
}

func (e *Engine) add(card cards.Card, s Section) bool {
	s = ResolveSection(card, s)
	if !e.canAdd(s) {
		return false
	}
	entries := e.current.section(s)
	if i := e.current.indexOf(s, card.ID); i >= 0 {
		if (*entries)[i].Count >= MaxCopies {
			return false
		}
		(*entries)[i].Count++
	} else {
		*entries = append(*entries, DeckCard{Card: card, Count: 1})
	}
	e.touch()
	return true
}

// RemoveCard removes one copy of cardID from section s, dropping the entry
// when its last copy goes. Other sections are not searched.
func (e *Engine) RemoveCard(cardID int, s Section) {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.current.indexOf(s, cardID)
	if i < 0 {
		return
	}
	entries := e.current.section(s)
	if (*entries)[i].Count > 1 {
		(*entries)[i].Count--
	} else {
		*entries = append((*entries)[:i], (*entries)[i+1:]...)
	}
	e.touch()
}

// SetCardCount sets the copies of an existing entry. A count of 0 removes
// the entry. Counts outside [0, MaxCopies] and absent entries are ignored;
// this never creates an entry.
func (e *Engine) SetCardCount(cardID int, s Section, count int) {
	if count < 0 || count > MaxCopies {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.current.indexOf(s, cardID)
	if i < 0 {
		return
	}
	entries := e.current.section(s)
	if count == 0 {
		*entries = append((*entries)[:i], (*entries)[i+1:]...)
	} else {
		(*entries)[i].Count = count
	}
	e.touch()
}

// Rename replaces the deck name.
func (e *Engine) Rename(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.current.Name = name
	e.touch()
}

// CreateNew replaces the current deck with an empty one. Saved decks and the
// last saved snapshot are kept.
func (e *Engine) CreateNew(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.current = New(e.newID(), name, e.now())
}

// Reset drops everything: fresh deck, no saved decks, no snapshot.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.current = New(e.newID(), "", e.now())
	e.saved = nil
	e.lastSaved = nil
}

func (e *Engine) touch() {
	e.current.UpdatedAt = e.now()
}

// Stats recomputes section totals from the current deck.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return ComputeStats(e.current)
}

// IsValid reports whether section s is within its size bounds.
func (e *Engine) IsValid(s Section) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return SectionValid(s, e.current.Count(s))
}

// IsLegal reports whether all three sections are valid.
func (e *Engine) IsLegal() bool {
	return e.Validity().Legal
}

func (e *Engine) Validity() Validity {
	e.mu.Lock()
	defer e.mu.Unlock()
	return CheckValidity(e.current)
}

// IsDirty reports whether the current deck differs from the last successful
// save. A deck that was never saved is dirty.
func (e *Engine) IsDirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.lastSaved == nil {
		return true
	}
	return !Equal(e.current, *e.lastSaved)
}

func (e *Engine) ExportText() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return ExportText(e.current)
}

// Save writes the current deck for userID, then refreshes the saved decks and
// records what was written as the last saved snapshot. Edits made while the
// call is in flight are not part of the snapshot and keep the deck dirty.
func (e *Engine) Save(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrNoUser
	}

	e.mu.Lock()
	snap := e.current.Clone()
	e.mu.Unlock()
	snap.UserID = userID

	if e.saveLimit > 0 {
		existing, err := e.store.ListByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to list saved decks: %w", err)
		}
		if !containsDeck(existing, snap.ID) && len(existing) >= e.saveLimit {
			return fmt.Errorf("%w: %d of %d", ErrSaveLimitReached, len(existing), e.saveLimit)
		}
	}

	if err := e.store.Upsert(ctx, snap, userID); err != nil {
		e.logger.Warn("deck save failed", zap.String("deck_id", snap.ID), zap.Error(err))
		return fmt.Errorf("failed to save deck: %w", err)
	}
	decks, err := e.store.ListByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to list saved decks: %w", err)
	}

	e.mu.Lock()
	e.saved = decks
	e.lastSaved = &snap
	e.mu.Unlock()

	e.logger.Debug("deck saved",
		zap.String("deck_id", snap.ID),
		zap.String("user_id", userID),
		zap.Int("saved_decks", len(decks)))
	return nil
}

// LoadSaved replaces the saved decks with what persistence holds for userID.
// The current deck is not touched.
func (e *Engine) LoadSaved(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrNoUser
	}
	decks, err := e.store.ListByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to list saved decks: %w", err)
	}
	e.setSaved(decks)
	e.logger.Debug("saved decks loaded", zap.String("user_id", userID), zap.Int("count", len(decks)))
	return nil
}

// DeleteSaved removes a saved deck owned by userID and refreshes the saved decks.
func (e *Engine) DeleteSaved(ctx context.Context, deckID, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrNoUser
	}
	if err := e.store.Delete(ctx, deckID, userID); err != nil {
		return fmt.Errorf("failed to delete deck: %w", err)
	}
	decks, err := e.store.ListByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to list saved decks: %w", err)
	}
	e.setSaved(decks)
	e.logger.Debug("deck deleted", zap.String("deck_id", deckID), zap.String("user_id", userID))
	return nil
}

// Select makes a copy of the saved deck deckID owned by userID the current
// deck. Decks of other users are reported as ErrDeckNotFound.
func (e *Engine) Select(deckID, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrNoUser
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, d := range e.saved {
		if d.ID == deckID && d.UserID == userID {
			e.current = d.Clone()
			return nil
		}
	}
	return ErrDeckNotFound
}

func (e *Engine) setSaved(decks []Deck) {
	e.mu.Lock()
	e.saved = decks
	e.mu.Unlock()
}

func containsDeck(decks []Deck, id string) bool {
	for _, d := range decks {
		if d.ID == id {
			return true
		}
	}
	return false
}
