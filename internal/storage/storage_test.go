package storage_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/youruser/deckbuilder/internal/cards"
	"github.com/youruser/deckbuilder/internal/deck"
	"github.com/youruser/deckbuilder/internal/ratelimit"
	"github.com/youruser/deckbuilder/internal/storage"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

func sampleDeck(id, name string, updated time.Time) deck.Deck {
	atk := 3000
	d := deck.New(id, name, updated.Add(-time.Hour))
	d.UpdatedAt = updated
	d.Main = []deck.DeckCard{
		{Card: cards.Card{ID: 89631139, Name: "Blue-Eyes White Dragon", Type: "Normal Monster", Atk: &atk}, Count: 3},
		{Card: cards.Card{ID: 38517737, Name: "Blue-Eyes Alternative White Dragon", Type: "Effect Monster"}, Count: 1},
	}
	d.Extra = []deck.DeckCard{{Card: cards.Card{ID: 23995346, Name: "Blue-Eyes Ultimate Dragon", Type: "Fusion Monster"}, Count: 1}}
	return d
}

func TestDeckStore_UpsertAndList(t *testing.T) {
	store := storage.NewDeckStore(setupTestDB(t))
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	d := sampleDeck("deck-1", "Blue-Eyes", now)
	require.NoError(t, store.Upsert(ctx, d, "user-a"))

	got, err := store.ListByUser(ctx, "user-a")
	require.NoError(t, err)
	require.Len(t, got, 1)

	want := d
	want.UserID = "user-a"
	if diff := cmp.Diff(want, got[0]); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, deck.Equal(d, got[0]))
	assert.Empty(t, got[0].Side)
	assert.NotNil(t, got[0].Side)
}

func TestDeckStore_UpsertReplaces(t *testing.T) {
	store := storage.NewDeckStore(setupTestDB(t))
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	d := sampleDeck("deck-1", "Blue-Eyes", now)
	require.NoError(t, store.Upsert(ctx, d, "user-a"))

	d.Name = "Blue-Eyes v2"
	d.Main = d.Main[:1]
	d.UpdatedAt = now.Add(time.Minute)
	require.NoError(t, store.Upsert(ctx, d, "user-a"))

	got, err := store.ListByUser(ctx, "user-a")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Blue-Eyes v2", got[0].Name)
	assert.Len(t, got[0].Main, 1)
	assert.True(t, got[0].CreatedAt.Equal(d.CreatedAt))
}

func TestDeckStore_ListIsScopedAndOrdered(t *testing.T) {
	store := storage.NewDeckStore(setupTestDB(t))
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, store.Upsert(ctx, sampleDeck("older", "Older", now), "user-a"))
	require.NoError(t, store.Upsert(ctx, sampleDeck("newer", "Newer", now.Add(500*time.Millisecond)), "user-a"))
	require.NoError(t, store.Upsert(ctx, sampleDeck("theirs", "Theirs", now), "user-b"))

	got, err := store.ListByUser(ctx, "user-a")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "newer", got[0].ID)
	assert.Equal(t, "older", got[1].ID)

	none, err := store.ListByUser(ctx, "user-c")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDeckStore_DeleteRequiresOwner(t *testing.T) {
	store := storage.NewDeckStore(setupTestDB(t))
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.Upsert(ctx, sampleDeck("deck-1", "Mine", now), "user-a"))

	require.NoError(t, store.Delete(ctx, "deck-1", "user-b"))
	got, err := store.ListByUser(ctx, "user-a")
	require.NoError(t, err)
	assert.Len(t, got, 1, "another user cannot delete the deck")

	require.NoError(t, store.Delete(ctx, "deck-1", "user-a"))
	got, err = store.ListByUser(ctx, "user-a")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDeckStore_WithEngine(t *testing.T) {
	store := storage.NewDeckStore(setupTestDB(t))
	e := deck.NewEngine(store)
	ctx := context.Background()

	e.AddCard(cards.Card{ID: 1, Name: "Kuriboh", Type: "Effect Monster"}, deck.SectionMain)
	require.NoError(t, e.Save(ctx, "user-a"))
	assert.False(t, e.IsDirty())

	other := deck.NewEngine(store)
	require.NoError(t, other.LoadSaved(ctx, "user-a"))
	require.Len(t, other.SavedDecks(), 1)
	require.NoError(t, other.Select(e.Current().ID, "user-a"))
	assert.Equal(t, e.ExportText(), other.ExportText())
}

func TestOpen_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "decks.db")
	db, err := storage.Open(path)
	require.NoError(t, err)
	defer db.Close()
	assert.FileExists(t, path)
}

func TestRateLimitStore(t *testing.T) {
	db := setupTestDB(t)
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := start
	l := ratelimit.New(storage.NewRateLimitStore(db), 2, time.Minute, ratelimit.WithClock(func() time.Time { return now }))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, _, err := l.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, w, err := l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 3, w.Count)
	assert.True(t, w.Start.Equal(start))

	now = start.Add(61 * time.Second)
	ok, w, err = l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, w.Count)
}
