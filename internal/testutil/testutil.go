package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sujalbistaa/polls/internal/db"
	"github.com/sujalbistaa/polls/internal/models"
)

// Day is used to place questions relative to now.
const Day = 24 * time.Hour

// SetupTestDB opens a fresh, migrated SQLite database inside t.TempDir().
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "polls_test.db")
	database, err := db.Open("sqlite://"+path+"?_pragma=busy_timeout(5000)", logger.Silent)
	require.NoError(t, err, "open test database")
	t.Cleanup(func() { db.Close(database) })

	require.NoError(t, db.Migrate(database), "migrate test database")
	return database
}

// CreateQuestion stores a question published the given number of days from
// now (negative for the past) with the given choices.
func CreateQuestion(t *testing.T, database *gorm.DB, text string, days int, choices ...string) *models.Question {
	t.Helper()
	return CreateQuestionAt(t, database, text, time.Now().Add(time.Duration(days)*Day), choices...)
}

// CreateQuestionAt stores a question with an explicit publish time.
func CreateQuestionAt(t *testing.T, database *gorm.DB, text string, publishedAt time.Time, choices ...string) *models.Question {
	t.Helper()

	q := &models.Question{Text: text, PublishedAt: publishedAt}
	for _, c := range choices {
		q.Choices = append(q.Choices, models.Choice{Text: c})
	}
	require.NoError(t, database.Create(q).Error, "create test question")
	return q
}

// Votes reads the current tally of a choice straight from the database.
func Votes(t *testing.T, database *gorm.DB, choiceID uint) int64 {
	t.Helper()

	var c models.Choice
	require.NoError(t, database.First(&c, choiceID).Error, "load choice")
	return c.Votes
}
