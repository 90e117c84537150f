package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	return Config{
		DBPath:    filepath.Join(t.TempDir(), "data", "ebookstore"),
		DBDriver:  driverModernc,
		IDFloor:   defaultIDFloor,
		CacheSize: 16,
	}
}

func openTestRepo(t *testing.T, cfg Config) *Repository {
	t.Helper()
	repo, err := NewRepository(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	return openTestRepo(t, testConfig(t))
}

func countBooks(t *testing.T, repo *Repository) int {
	t.Helper()
	var n int
	require.NoError(t, repo.DB.QueryRow(`SELECT COUNT(1) FROM books`).Scan(&n))
	return n
}

func bookIDs(books []Book) []int64 {
	out := make([]int64, 0, len(books))
	for _, b := range books {
		out = append(out, b.ID)
	}
	return out
}

func TestNewRepositorySeedsFreshDatabase(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)
	require.Equal(t, len(seedBooks), repo.Seeded())

	books, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Equal(t, seedBooks, books)
	require.Equal(t, int64(3008), repo.NextID())
}

func TestNewRepositoryDoesNotReseedExistingDatabase(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cfg := testConfig(t)

	first, err := NewRepository(ctx, cfg)
	require.NoError(t, err)
	_, err = first.Add(ctx, "Dune", "Frank Herbert", 4)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second := openTestRepo(t, cfg)
	require.Zero(t, second.Seeded())
	require.Equal(t, 8, countBooks(t, second))
	require.Equal(t, int64(3009), second.NextID())
}

func TestCounterRespectsFloor(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.IDFloor = 5000
	repo := openTestRepo(t, cfg)
	require.Equal(t, int64(5000), repo.NextID())

	b, err := repo.Add(context.Background(), "Dune", "Frank Herbert", 4)
	require.NoError(t, err)
	require.Equal(t, int64(5000), b.ID)

	repo.nextID = 1
	require.NoError(t, repo.ResetCounter(context.Background()))
	require.Equal(t, int64(5001), repo.NextID())
}

func TestAddDuplicateLeavesTableUnchanged(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newTestRepo(t)

	_, err := repo.Add(ctx, "A Tale of Two Cities", "Charles Dickens", 5)
	require.ErrorIs(t, err, ErrDuplicate)
	require.Equal(t, 7, countBooks(t, repo))

	// the rejected add still consumed 3008
	b, err := repo.Add(ctx, "Dune", "Frank Herbert", 4)
	require.NoError(t, err)
	require.Equal(t, int64(3009), b.ID)
	_, err = repo.FindByID(ctx, 3008)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAddThenFind(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newTestRepo(t)

	added, err := repo.Add(ctx, "Dune", "Frank Herbert", 4)
	require.NoError(t, err)
	require.Equal(t, 8, countBooks(t, repo))

	repo.cache.forget(added.ID)
	got, err := repo.FindByID(ctx, added.ID)
	require.NoError(t, err)
	require.Equal(t, Book{ID: 3008, Title: "Dune", Author: "Frank Herbert", Qty: 4}, got)
}

func TestSameTitleDifferentAuthorIsAllowed(t *testing.T) {
	t.Parallel()
	repo := newTestRepo(t)

	_, err := repo.Add(context.Background(), "A Tale of Two Cities", "Someone Else", 1)
	require.NoError(t, err)
	require.Equal(t, 8, countBooks(t, repo))
}

func TestUpdate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("missing id", func(t *testing.T) {
		t.Parallel()
		repo := newTestRepo(t)
		_, err := repo.Update(ctx, 9999, FieldTitle, "Anything")
		require.ErrorIs(t, err, ErrNotFound)
		books, err := repo.List(ctx)
		require.NoError(t, err)
		require.Equal(t, seedBooks, books)
	})

	t.Run("each field", func(t *testing.T) {
		t.Parallel()
		repo := newTestRepo(t)
		_, err := repo.Update(ctx, 3005, FieldTitle, "Through the Looking-Glass")
		require.NoError(t, err)
		_, err = repo.Update(ctx, 3005, FieldAuthor, "L. Carroll")
		require.NoError(t, err)
		b, err := repo.Update(ctx, 3005, FieldQty, " 7 ")
		require.NoError(t, err)
		require.Equal(t, Book{ID: 3005, Title: "Through the Looking-Glass", Author: "L. Carroll", Qty: 7}, b)

		got, err := repo.FindByID(ctx, 3005)
		require.NoError(t, err)
		require.Equal(t, b, got)
	})

	t.Run("non numeric quantity", func(t *testing.T) {
		t.Parallel()
		repo := newTestRepo(t)
		_, err := repo.Update(ctx, 3001, FieldQty, "lots")
		require.ErrorIs(t, err, ErrInvalidNumber)
		got, err := repo.FindByID(ctx, 3001)
		require.NoError(t, err)
		require.Equal(t, int64(30), got.Qty)
	})

	t.Run("collision with existing pair", func(t *testing.T) {
		t.Parallel()
		repo := newTestRepo(t)
		_, err := repo.Update(ctx, 3006, FieldTitle, "Harry Potter and the Half Blood Prince")
		require.ErrorIs(t, err, ErrDuplicate)

		repo.cache.forget(3006)
		got, err := repo.FindByID(ctx, 3006)
		require.NoError(t, err)
		require.Equal(t, seedBooks[5], got)
	})

	t.Run("unknown field", func(t *testing.T) {
		t.Parallel()
		repo := newTestRepo(t)
		_, err := repo.Update(ctx, 3001, Field("price"), "10")
		require.ErrorIs(t, err, ErrInvalidField)
	})
}

func TestDeleteThenSearch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newTestRepo(t)

	_, err := repo.FindByID(ctx, 3004)
	require.NoError(t, err)
	require.Equal(t, 1, repo.cache.len())

	deleted, err := repo.Delete(ctx, 3004)
	require.NoError(t, err)
	require.Equal(t, seedBooks[3], deleted)
	require.Equal(t, 6, countBooks(t, repo))

	_, err = repo.FindByID(ctx, 3004)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = repo.Delete(ctx, 3004)
	require.ErrorIs(t, err, ErrNotFound)
	require.Equal(t, 6, countBooks(t, repo))
}

func TestSearchQuantityRange(t *testing.T) {
	t.Parallel()
	repo := newTestRepo(t)

	books, err := repo.SearchQuantity(context.Background(), 25, 30)
	require.NoError(t, err)
	require.ElementsMatch(t, []int64{3001, 3003, 3006, 3007}, bookIDs(books))

	books, err = repo.SearchQuantity(context.Background(), 30, 25)
	require.NoError(t, err)
	require.Empty(t, books)
}

func TestSearchText(t *testing.T) {
	t.Parallel()
	repo := newTestRepo(t)

	cases := []struct {
		term string
		want []int64
	}{
		{"harry potter", []int64{3002, 3006, 3007}},
		{"ROWLING", []int64{3002, 3006, 3007}},
		{"lewis", []int64{3003, 3005}},
		{"wardrobe", []int64{3003}},
		{"%", nil},
		{"_", nil},
		{"tolstoy", nil},
	}
	for _, tc := range cases {
		books, err := repo.SearchText(context.Background(), tc.term)
		require.NoError(t, err)
		require.Equalf(t, tc.want, nilIfEmpty(bookIDs(books)), "term %q", tc.term)
	}
}

func nilIfEmpty(ids []int64) []int64 {
	if len(ids) == 0 {
		return nil
	}
	return ids
}

func TestListIsStableWithoutWrites(t *testing.T) {
	t.Parallel()
	repo := newTestRepo(t)

	first, err := repo.List(context.Background())
	require.NoError(t, err)
	second, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestCacheDisabled(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.CacheSize = 0
	repo := openTestRepo(t, cfg)
	require.Nil(t, repo.cache)

	b, err := repo.FindByID(context.Background(), 3001)
	require.NoError(t, err)
	require.Equal(t, seedBooks[0], b)
	require.Zero(t, repo.cache.len())
}

func TestNewRepositoryRejectsUnknownDriver(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.DBDriver = "postgres"
	_, err := NewRepository(context.Background(), cfg)
	require.Error(t, err)
}

func TestSearchTextFoldsNonASCII(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newTestRepo(t)

	added, err := repo.Add(ctx, "Ángeles y Demonios", "Dan Brown", 3)
	require.NoError(t, err)
	_, err = repo.Add(ctx, "Cien años de soledad", "Gabriel García Márquez", 2)
	require.NoError(t, err)

	for _, term := range []string{"Ángeles y Demonios", "Ángeles", "ángeles", "ÁNGELES Y"} {
		books, err := repo.SearchText(ctx, term)
		require.NoError(t, err)
		require.Equalf(t, []int64{added.ID}, bookIDs(books), "term %q", term)
	}

	books, err := repo.SearchText(ctx, "GARCÍA MÁRQUEZ")
	require.NoError(t, err)
	require.Equal(t, []int64{3009}, bookIDs(books))
}

func TestNewRepositoryFailsOnNonSQLiteFile(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755))
	require.NoError(t, os.WriteFile(cfg.DBPath, []byte(strings.Repeat("not a database ", 512)), 0o600))

	repo, err := NewRepository(context.Background(), cfg)
	require.Error(t, err)
	require.Nil(t, repo)
}

func TestNewRepositoryFailsOnDirectory(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.DBPath = t.TempDir()

	repo, err := NewRepository(context.Background(), cfg)
	require.Error(t, err)
	require.Nil(t, repo)
}

func TestInitializeRollsBackPartialSeed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cfg := testConfig(t)

	db, err := openSQLite(cfg.DBDriver, cfg.DBPath)
	require.NoError(t, err)
	broken := &Repository{DB: db, seed: []Book{
		{ID: 1, Title: "Same", Author: "Pair", Qty: 1},
		{ID: 2, Title: "Same", Author: "Pair", Qty: 2},
	}}

	err = broken.initialize(ctx)
	require.ErrorContains(t, err, "seed book 2")
	require.Zero(t, broken.Seeded())

	var tables int
	require.NoError(t, db.QueryRow(`SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='books'`).Scan(&tables))
	require.Zero(t, tables)
	require.NoError(t, db.Close())

	// a later start sees a fresh database and seeds it completely
	repo := openTestRepo(t, cfg)
	require.Equal(t, len(seedBooks), repo.Seeded())
	require.Equal(t, 7, countBooks(t, repo))
}
