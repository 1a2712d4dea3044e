package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sujalbistaa/polls/internal/models"
	"github.com/sujalbistaa/polls/internal/testutil"
)

func TestFindByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewQuestions(db)
	ctx := context.Background()

	q := testutil.CreateQuestion(t, db, "Favourite colour?", -1, "Red", "Green", "Blue")

	t.Run("loads choices in id order", func(t *testing.T) {
		got, err := repo.FindByID(ctx, q.ID)
		require.NoError(t, err)
		assert.Equal(t, "Favourite colour?", got.Text)
		require.Len(t, got.Choices, 3)
		assert.Equal(t, "Red", got.Choices[0].Text)
		assert.Equal(t, "Blue", got.Choices[2].Text)
	})

	t.Run("future questions are still found", func(t *testing.T) {
		future := testutil.CreateQuestion(t, db, "Later?", 30)
		got, err := repo.FindByID(ctx, future.ID)
		require.NoError(t, err)
		assert.Equal(t, future.ID, got.ID)
	})

	t.Run("missing question", func(t *testing.T) {
		_, err := repo.FindByID(ctx, 9999)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestListVisible(t *testing.T) {
	ctx := context.Background()

	t.Run("empty database", func(t *testing.T) {
		repo := NewQuestions(testutil.SetupTestDB(t))
		got, err := repo.ListVisible(ctx, time.Now(), 5)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("excludes future questions", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := NewQuestions(db)
		testutil.CreateQuestion(t, db, "Past question.", -30)
		for i := 0; i < 10; i++ {
			testutil.CreateQuestion(t, db, "Future question.", 30+i)
		}

		got, err := repo.ListVisible(ctx, time.Now(), 5)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Past question.", got[0].Text)
	})

	t.Run("newest first and limited", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := NewQuestions(db)
		for _, days := range []int{-35, -25, -1, -2, -40, -3, -10} {
			testutil.CreateQuestion(t, db, "q", days)
		}

		got, err := repo.ListVisible(ctx, time.Now(), 5)
		require.NoError(t, err)
		require.Len(t, got, 5)
		for i := 1; i < len(got); i++ {
			assert.True(t, got[i-1].PublishedAt.After(got[i].PublishedAt))
		}
		assert.True(t, got[4].PublishedAt.Before(time.Now().Add(-24*testutil.Day)))
	})

	t.Run("ties broken by id descending", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := NewQuestions(db)
		at := time.Now().Add(-time.Hour)
		first := testutil.CreateQuestionAt(t, db, "first", at)
		second := testutil.CreateQuestionAt(t, db, "second", at)

		got, err := repo.ListVisible(ctx, time.Now(), 5)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, second.ID, got[0].ID)
		assert.Equal(t, first.ID, got[1].ID)
	})

	t.Run("question published exactly now is visible", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := NewQuestions(db)
		now := time.Now()
		testutil.CreateQuestionAt(t, db, "now", now)

		got, err := repo.ListVisible(ctx, now, 5)
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})
}

func TestIncrementVotes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewQuestions(db)
	ctx := context.Background()

	q := testutil.CreateQuestion(t, db, "Tea or coffee?", -1, "Tea", "Coffee")
	other := testutil.CreateQuestion(t, db, "Cats or dogs?", -1, "Cats", "Dogs")
	tea, coffee := q.Choices[0].ID, q.Choices[1].ID

	t.Run("increments by exactly one", func(t *testing.T) {
		votes, err := repo.IncrementVotes(ctx, q.ID, tea)
		require.NoError(t, err)
		assert.Equal(t, int64(1), votes)

		votes, err = repo.IncrementVotes(ctx, q.ID, tea)
		require.NoError(t, err)
		assert.Equal(t, int64(2), votes)
		assert.Equal(t, int64(0), testutil.Votes(t, db, coffee))
	})

	t.Run("choice of another question", func(t *testing.T) {
		_, err := repo.IncrementVotes(ctx, q.ID, other.Choices[0].ID)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, int64(0), testutil.Votes(t, db, other.Choices[0].ID))
	})

	t.Run("missing choice", func(t *testing.T) {
		_, err := repo.IncrementVotes(ctx, q.ID, 9999)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestConcurrentIncrements(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewQuestions(db)
	ctx := context.Background()

	q := testutil.CreateQuestion(t, db, "Concurrent?", -1, "Yes", "No")
	yes, no := q.Choices[0].ID, q.Choices[1].ID

	const workers = 25
	var wg sync.WaitGroup
	errs := make(chan error, 2*workers)
	for i := 0; i < workers; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := repo.IncrementVotes(ctx, q.ID, yes)
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := repo.IncrementVotes(ctx, q.ID, no)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, int64(workers), testutil.Votes(t, db, yes))
	assert.Equal(t, int64(workers), testutil.Votes(t, db, no))
}

func TestCreate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewQuestions(db)
	ctx := context.Background()

	q := &models.Question{
		Text:        "New?",
		PublishedAt: time.Now().Add(time.Hour),
		Choices:     []models.Choice{{Text: "A"}, {Text: "B"}},
	}
	require.NoError(t, repo.Create(ctx, q))
	require.NotZero(t, q.ID)

	got, err := repo.FindByID(ctx, q.ID)
	require.NoError(t, err)
	assert.Len(t, got.Choices, 2)
	assert.WithinDuration(t, q.PublishedAt, got.PublishedAt, time.Millisecond)
	assert.NoError(t, repo.Ping(ctx))
}
