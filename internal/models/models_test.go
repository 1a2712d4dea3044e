package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWasPublishedRecently(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		publishedAt time.Time
		want        bool
	}{
		{"future question", now.Add(30 * 24 * time.Hour), false},
		{"one second in the future", now.Add(time.Second), false},
		{"one microsecond in the future", now.Add(time.Microsecond), false},
		{"exactly now", now, true},
		{"one hour ago", now.Add(-time.Hour), true},
		{"exactly one day ago", now.Add(-24 * time.Hour), true},
		{"one microsecond older than a day", now.Add(-24*time.Hour - time.Microsecond), false},
		{"one second older than a day", now.Add(-24*time.Hour - time.Second), false},
		{"old question", now.Add(-30 * 24 * time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Question{PublishedAt: tt.publishedAt}
			assert.Equal(t, tt.want, q.WasPublishedRecently(now))
		})
	}
}

func TestIsVisible(t *testing.T) {
	now := time.Now()

	assert.True(t, (&Question{PublishedAt: now}).IsVisible(now))
	assert.True(t, (&Question{PublishedAt: now.Add(-28 * 24 * time.Hour)}).IsVisible(now))
	assert.False(t, (&Question{PublishedAt: now.Add(time.Second)}).IsVisible(now))
}

func TestQuestionTotalsAndLookup(t *testing.T) {
	q := Question{Choices: []Choice{
		{ID: 1, Votes: 3},
		{ID: 2, Votes: 0},
		{ID: 7, Votes: 4},
	}}

	assert.Equal(t, int64(7), q.TotalVotes())
	assert.True(t, q.HasChoice(7))
	assert.False(t, q.HasChoice(3))
	assert.Equal(t, int64(0), (&Question{}).TotalVotes())
}

func TestQuestionValidate(t *testing.T) {
	t.Run("valid question", func(t *testing.T) {
		q := Question{Text: "What's up?", Choices: []Choice{{Text: "Not much"}, {Text: "The sky"}}}
		assert.NoError(t, q.Validate())
	})

	t.Run("missing text", func(t *testing.T) {
		q := Question{}
		assert.Error(t, q.Validate())
	})

	t.Run("text too long", func(t *testing.T) {
		q := Question{Text: strings.Repeat("x", 201)}
		assert.Error(t, q.Validate())
	})

	t.Run("empty choice text", func(t *testing.T) {
		q := Question{Text: "Pick one", Choices: []Choice{{Text: ""}}}
		assert.Error(t, q.Validate())
	})

	t.Run("negative votes", func(t *testing.T) {
		c := Choice{Text: "Yes", Votes: -1}
		assert.Error(t, c.Validate())
	})
}
