package deck

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/youruser/deckbuilder/internal/cards"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("deck-%d", n)
	}
}

// memStore is an in-memory Store with injectable failures.
type memStore struct {
	mu        sync.Mutex
	decks     map[string]map[string]Deck
	upsertErr error
	listErr   error
	deleteErr error
	calls     int
	// onUpsert runs before the deck is stored.
	onUpsert func()
}

func newMemStore() *memStore {
	return &memStore{decks: map[string]map[string]Deck{}}
}

func (m *memStore) Upsert(_ context.Context, d Deck, userID string) error {
	if m.onUpsert != nil {
		m.onUpsert()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.upsertErr != nil {
		return m.upsertErr
	}
	if m.decks[userID] == nil {
		m.decks[userID] = map[string]Deck{}
	}
	m.decks[userID][d.ID] = d.Clone()
	return nil
}

func (m *memStore) ListByUser(_ context.Context, userID string) ([]Deck, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []Deck
	for _, d := range m.decks[userID] {
		out = append(out, d.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) Delete(_ context.Context, deckID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.decks[userID], deckID)
	return nil
}

func newTestEngine(t *testing.T, store Store, opts ...Option) *Engine {
	t.Helper()
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	base := []Option{WithClock(clock.Now), WithIDGenerator(sequentialIDs())}
	return NewEngine(store, append(base, opts...)...)
}

func normal(id int, name string) cards.Card {
	return cards.Card{ID: id, Name: name, Type: "Normal Monster"}
}

func TestEngine_NewDeckIsEmpty(t *testing.T) {
	e := newTestEngine(t, newMemStore())
	d := e.Current()

	assert.Equal(t, "deck-1", d.ID)
	assert.Equal(t, DefaultName, d.Name)
	assert.Equal(t, Stats{}, e.Stats())
	assert.Equal(t, d.CreatedAt, d.UpdatedAt)
}

func TestEngine_AddRemoveScenario(t *testing.T) {
	e := newTestEngine(t, newMemStore())
	a := normal(1, "A")

	e.AddCard(a, SectionMain)
	assert.Equal(t, Stats{Main: 1, Total: 1}, e.Stats())

	e.AddCard(a, SectionMain)
	e.AddCard(a, SectionMain)
	d := e.Current()
	assert.Equal(t, 3, d.Copies(SectionMain, 1))

	before := e.Current()
	e.AddCard(a, SectionMain)
	after := e.Current()
	assert.Equal(t, 3, after.Copies(SectionMain, 1))
	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("add at copy cap changed the deck (-before +after):\n%s", diff)
	}

	for i := 0; i < 3; i++ {
		e.RemoveCard(1, SectionMain)
	}
	assert.Empty(t, e.Current().Main)
	assert.Equal(t, Stats{}, e.Stats())
}

func TestEngine_AddRoutesExtraDeckTypes(t *testing.T) {
	for _, typ := range []string{"Fusion Monster", "Synchro Monster", "XYZ Monster", "Link Monster"} {
		t.Run(typ, func(t *testing.T) {
			e := newTestEngine(t, newMemStore())
			e.AddCard(cards.Card{ID: 2, Name: "B", Type: typ}, SectionMain)

			st := e.Stats()
			assert.Equal(t, 1, st.Extra)
			assert.Equal(t, 0, st.Main)
		})
	}
}

func TestEngine_ExplicitSectionsAreNotRedirected(t *testing.T) {
	e := newTestEngine(t, newMemStore())
	fusion := cards.Card{ID: 2, Name: "B", Type: "Fusion Monster"}
	e.AddCard(fusion, SectionSide)
	e.AddCard(normal(3, "C"), SectionExtra)

	st := e.Stats()
	assert.Equal(t, Stats{Extra: 1, Side: 1, Total: 2}, st)
}

func TestEngine_MainDeckCapacity(t *testing.T) {
	e := newTestEngine(t, newMemStore())
	for i := 1; i <= 60; i++ {
		e.AddCard(normal(i, fmt.Sprintf("card %d", i)), SectionMain)
	}
	require.Equal(t, 60, e.Stats().Main)
	assert.False(t, e.CanAddCard(SectionMain))

	stamp := e.Current().UpdatedAt
	e.AddCard(normal(61, "card 61"), SectionMain)
	assert.Equal(t, 60, e.Stats().Main)
	assert.Equal(t, 0, e.Current().Copies(SectionMain, 61))
	assert.Equal(t, stamp, e.Current().UpdatedAt)
}

func TestEngine_SectionCapsHoldForAnySequence(t *testing.T) {
	e := newTestEngine(t, newMemStore())
	for i := 0; i < 500; i++ {
		id := i%37 + 1
		s := Sections[i%len(Sections)]
		if i%7 == 0 {
			e.RemoveCard(id, s)
			continue
		}
		e.AddCard(normal(id, "x"), s)
	}
	d := e.Current()
	for _, s := range Sections {
		assert.LessOrEqual(t, d.Count(s), s.Limit(), "section %s", s)
		for _, dc := range d.Entries(s) {
			assert.GreaterOrEqual(t, dc.Count, 1)
			assert.LessOrEqual(t, dc.Count, MaxCopies)
		}
	}
}

func TestEngine_RemoveCard(t *testing.T) {
	e := newTestEngine(t, newMemStore())
	e.AddCard(normal(1, "A"), SectionMain)
	e.AddCard(normal(1, "A"), SectionSide)

	stamp := e.Current().UpdatedAt
	e.RemoveCard(99, SectionMain)
	assert.Equal(t, stamp, e.Current().UpdatedAt, "removing an absent card is a no-op")

	e.RemoveCard(1, SectionExtra)
	assert.Equal(t, Stats{Main: 1, Side: 1, Total: 2}, e.Stats(), "other sections are not searched")

	e.RemoveCard(1, SectionMain)
	d := e.Current()
	assert.Empty(t, d.Main)
	assert.Equal(t, 1, d.Copies(SectionSide, 1))
}

func TestEngine_SetCardCount(t *testing.T) {
	e := newTestEngine(t, newMemStore())
	e.AddCard(normal(1, "A"), SectionMain)
	e.AddCard(normal(2, "B"), SectionMain)

	e.SetCardCount(1, SectionMain, 3)
	assert.Equal(t, 3, e.Current().Copies(SectionMain, 1))

	stamp := e.Current().UpdatedAt
	e.SetCardCount(1, SectionMain, 4)
	e.SetCardCount(1, SectionMain, -1)
	assert.Equal(t, 3, e.Current().Copies(SectionMain, 1))
	assert.Equal(t, stamp, e.Current().UpdatedAt)

	e.SetCardCount(7, SectionMain, 2)
	assert.Equal(t, 0, e.Current().Copies(SectionMain, 7), "set count never creates an entry")

	e.SetCardCount(1, SectionMain, 0)
	d := e.Current()
	require.Len(t, d.Main, 1)
	assert.Equal(t, 2, d.Main[0].Card.ID)

	e.SetCardCount(1, SectionMain, 0)
	assert.Len(t, e.Current().Main, 1)
}

func TestEngine_RenameAndCreateNew(t *testing.T) {
	store := newMemStore()
	e := newTestEngine(t, store)
	first := e.Current()

	e.Rename("Dragons")
	renamed := e.Current()
	assert.Equal(t, "Dragons", renamed.Name)
	assert.True(t, renamed.UpdatedAt.After(first.UpdatedAt))
	assert.Equal(t, first.CreatedAt, renamed.CreatedAt)

	require.NoError(t, e.Save(context.Background(), "u1"))
	e.CreateNew("")
	fresh := e.Current()
	assert.NotEqual(t, first.ID, fresh.ID)
	assert.Equal(t, DefaultName, fresh.Name)
	assert.Len(t, e.SavedDecks(), 1, "create new keeps saved decks")

	e.CreateNew("Spellcasters")
	assert.Equal(t, "Spellcasters", e.Current().Name)
}

func TestEngine_Validity(t *testing.T) {
	e := newTestEngine(t, newMemStore())
	for i := 1; i <= 15; i++ {
		e.AddCard(normal(i, "m"), SectionMain)
		e.AddCard(normal(i, "m"), SectionMain)
		e.AddCard(normal(i, "m"), SectionMain)
	}
	for i := 100; i < 110; i++ {
		e.AddCard(cards.Card{ID: i, Type: "Link Monster"}, SectionMain)
	}
	for i := 200; i < 205; i++ {
		e.AddCard(normal(i, "s"), SectionSide)
	}
	require.Equal(t, Stats{Main: 45, Extra: 10, Side: 5, Total: 60}, e.Stats())
	for _, s := range Sections {
		assert.True(t, e.IsValid(s), "section %s", s)
	}
	assert.True(t, e.IsLegal())

	for i := 1; i <= 5; i++ {
		e.SetCardCount(i, SectionMain, 0)
	}
	require.Equal(t, 30, e.Stats().Main)
	assert.False(t, e.IsValid(SectionMain))
	assert.False(t, e.IsLegal())

	v := e.Validity()
	assert.Equal(t, 10, v.Main.Needed)
	assert.True(t, v.Extra.Valid)
}

func TestEngine_DirtyLifecycle(t *testing.T) {
	e := newTestEngine(t, newMemStore())
	ctx := context.Background()

	assert.True(t, e.IsDirty(), "never saved")

	e.AddCard(normal(1, "A"), SectionMain)
	require.NoError(t, e.Save(ctx, "u1"))
	assert.False(t, e.IsDirty())

	e.AddCard(normal(1, "A"), SectionMain)
	assert.True(t, e.IsDirty())

	e.RemoveCard(1, SectionMain)
	assert.False(t, e.IsDirty(), "structurally back to the snapshot")

	e.Rename(e.Current().Name)
	assert.False(t, e.IsDirty(), "timestamps are not compared")
}

func TestEngine_SaveRefreshesSavedDecks(t *testing.T) {
	store := newMemStore()
	e := newTestEngine(t, store)
	ctx := context.Background()

	e.Rename("One")
	require.NoError(t, e.Save(ctx, "u1"))
	e.CreateNew("Two")
	require.NoError(t, e.Save(ctx, "u1"))

	saved := e.SavedDecks()
	require.Len(t, saved, 2)
	assert.Equal(t, "One", saved[0].Name)
	assert.Equal(t, "u1", saved[0].UserID)
	assert.Equal(t, "Two", saved[1].Name)
}

func TestEngine_EditsDuringSaveStayDirty(t *testing.T) {
	store := newMemStore()
	e := newTestEngine(t, store, WithSaveLimit(0))
	e.AddCard(normal(1, "A"), SectionMain)

	store.onUpsert = func() {
		e.AddCard(normal(2, "B"), SectionMain)
	}
	require.NoError(t, e.Save(context.Background(), "u1"))

	assert.True(t, e.IsDirty())
	saved := e.SavedDecks()
	require.Len(t, saved, 1)
	assert.Len(t, saved[0].Main, 1)
}

func TestEngine_SaveFailureKeepsState(t *testing.T) {
	store := newMemStore()
	e := newTestEngine(t, store)
	ctx := context.Background()
	require.NoError(t, e.Save(ctx, "u1"))
	e.Rename("changed")

	boom := errors.New("network down")
	store.upsertErr = boom
	err := e.Save(ctx, "u1")
	require.ErrorIs(t, err, boom)
	assert.True(t, e.IsDirty())
	require.Len(t, e.SavedDecks(), 1)
	assert.Equal(t, DefaultName, e.SavedDecks()[0].Name)

	store.upsertErr = nil
	store.listErr = boom
	require.ErrorIs(t, e.Save(ctx, "u1"), boom)
	assert.True(t, e.IsDirty(), "a failed refresh leaves the snapshot untouched")
}

func TestEngine_FailedSaveKeepsSavedDecks(t *testing.T) {
	store := newMemStore()
	seeded := New("seeded", "Seeded", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	seeded.UserID = "u1"
	require.NoError(t, store.Upsert(context.Background(), seeded, "u1"))

	e := newTestEngine(t, store)
	ctx := context.Background()
	require.Empty(t, e.SavedDecks())

	store.upsertErr = errors.New("network down")
	require.Error(t, e.Save(ctx, "u1"))
	assert.Empty(t, e.SavedDecks(), "a failed save must not refresh the saved decks")

	store.upsertErr = nil
	limited := newTestEngine(t, store, WithSaveLimit(1))
	require.ErrorIs(t, limited.Save(ctx, "u1"), ErrSaveLimitReached)
	assert.Empty(t, limited.SavedDecks())
	assert.True(t, limited.IsDirty())
}

func TestEngine_PersistenceRequiresUser(t *testing.T) {
	store := newMemStore()
	e := newTestEngine(t, store)
	ctx := context.Background()

	assert.ErrorIs(t, e.Save(ctx, ""), ErrNoUser)
	assert.ErrorIs(t, e.LoadSaved(ctx, "  "), ErrNoUser)
	assert.ErrorIs(t, e.DeleteSaved(ctx, "deck-1", ""), ErrNoUser)
	assert.Zero(t, store.calls, "the store is never reached without a user")
}

func TestEngine_SaveLimit(t *testing.T) {
	store := newMemStore()
	e := newTestEngine(t, store, WithSaveLimit(2))
	ctx := context.Background()

	require.NoError(t, e.Save(ctx, "u1"))
	e.CreateNew("second")
	require.NoError(t, e.Save(ctx, "u1"))

	e.Rename("second, renamed")
	require.NoError(t, e.Save(ctx, "u1"), "re-saving an existing deck is allowed")

	e.CreateNew("third")
	err := e.Save(ctx, "u1")
	require.ErrorIs(t, err, ErrSaveLimitReached)
	assert.Len(t, e.SavedDecks(), 2)
	assert.True(t, e.IsDirty())
}

func TestEngine_LoadDeleteSelect(t *testing.T) {
	store := newMemStore()
	e := newTestEngine(t, store)
	ctx := context.Background()

	e.AddCard(normal(1, "A"), SectionMain)
	require.NoError(t, e.Save(ctx, "u1"))
	savedID := e.Current().ID

	other := newTestEngine(t, store, WithIDGenerator(func() string { return "other" }))
	require.NoError(t, other.LoadSaved(ctx, "u1"))
	require.Len(t, other.SavedDecks(), 1)
	assert.Equal(t, "other", other.Current().ID, "loading does not replace the current deck")

	assert.ErrorIs(t, other.Select(savedID, ""), ErrNoUser)
	assert.ErrorIs(t, other.Select(savedID, "u2"), ErrDeckNotFound, "decks of another user are not selectable")
	assert.Equal(t, "other", other.Current().ID)

	require.NoError(t, other.Select(savedID, "u1"))
	assert.Equal(t, 1, other.Current().Copies(SectionMain, 1))
	assert.ErrorIs(t, other.Select("nope", "u1"), ErrDeckNotFound)

	require.NoError(t, other.LoadSaved(ctx, "u2"))
	assert.Empty(t, other.SavedDecks())

	require.NoError(t, e.DeleteSaved(ctx, savedID, "u2"))
	require.NoError(t, e.LoadSaved(ctx, "u1"))
	assert.Len(t, e.SavedDecks(), 1, "delete scoped to another user keeps the deck")

	require.NoError(t, e.DeleteSaved(ctx, savedID, "u1"))
	assert.Empty(t, e.SavedDecks())
}

func TestEngine_DeleteFailureKeepsSavedDecks(t *testing.T) {
	store := newMemStore()
	e := newTestEngine(t, store)
	ctx := context.Background()
	require.NoError(t, e.Save(ctx, "u1"))

	store.deleteErr = errors.New("denied")
	require.Error(t, e.DeleteSaved(ctx, e.Current().ID, "u1"))
	assert.Len(t, e.SavedDecks(), 1)
}

func TestEngine_Reset(t *testing.T) {
	e := newTestEngine(t, newMemStore())
	e.AddCard(normal(1, "A"), SectionMain)
	require.NoError(t, e.Save(context.Background(), "u1"))

	e.Reset()
	assert.Empty(t, e.SavedDecks())
	assert.Equal(t, Stats{}, e.Stats())
	assert.True(t, e.IsDirty())
}

func TestEngine_CurrentIsACopy(t *testing.T) {
	e := newTestEngine(t, newMemStore())
	e.AddCard(normal(1, "A"), SectionMain)

	d := e.Current()
	d.Main[0].Count = 3
	d.Main = append(d.Main, DeckCard{Card: normal(2, "B"), Count: 1})

	assert.Equal(t, Stats{Main: 1, Total: 1}, e.Stats())
}
