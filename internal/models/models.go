package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// RecentWindow is how far back a question still counts as recently published.
const RecentWindow = 24 * time.Hour

var validate = validator.New()

// Question is a poll question. It only becomes visible once PublishedAt has passed.
type Question struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	Text        string    `gorm:"not null;size:200" json:"text" validate:"required,max=200"`
	PublishedAt time.Time `gorm:"not null;index" json:"publishedAt"`
	Choices     []Choice  `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"choices,omitempty" validate:"dive"`
}

// Choice is one selectable answer of a Question, carrying its vote tally.
type Choice struct {
	ID         uint   `gorm:"primarykey" json:"id"`
	QuestionID uint   `gorm:"not null;index" json:"questionId"`
	Text       string `gorm:"not null;size:200" json:"text" validate:"required,max=200"`
	Votes      int64  `gorm:"not null;default:0" json:"votes" validate:"gte=0"`
}

// WasPublishedRecently reports whether the question was published within the
// last day as seen from now. Both ends of the window are inclusive.
func (q *Question) WasPublishedRecently(now time.Time) bool {
	return !q.PublishedAt.Before(now.Add(-RecentWindow)) && !q.PublishedAt.After(now)
}

// IsVisible reports whether the question may be shown to the public at now.
func (q *Question) IsVisible(now time.Time) bool {
	return !q.PublishedAt.After(now)
}

// TotalVotes sums the tallies of all loaded choices.
func (q *Question) TotalVotes() int64 {
	var total int64
	for _, c := range q.Choices {
		total += c.Votes
	}
	return total
}

// HasChoice reports whether choiceID is one of the loaded choices.
func (q *Question) HasChoice(choiceID uint) bool {
	for _, c := range q.Choices {
		if c.ID == choiceID {
			return true
		}
	}
	return false
}

// BeforeSave stores publish times in UTC so that comparisons in SQLite,
// which keeps timestamps as text, order correctly.
func (q *Question) BeforeSave(tx *gorm.DB) error {
	q.PublishedAt = q.PublishedAt.UTC()
	return nil
}

// Validate checks the question and its choices before they are stored.
func (q *Question) Validate() error {
	return validate.Struct(q)
}

// Validate checks a single choice.
func (c *Choice) Validate() error {
	return validate.Struct(c)
}
