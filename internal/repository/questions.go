package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/sujalbistaa/polls/internal/models"
)

// ErrNotFound is returned when a question or choice does not exist.
var ErrNotFound = errors.New("record not found")

// Questions is the gorm-backed store for questions and their choices.
type Questions struct {
	db *gorm.DB
}

func NewQuestions(db *gorm.DB) *Questions {
	return &Questions{db: db}
}

// FindByID loads a question with its choices ordered by id.
// Visibility is not checked here.
func (r *Questions) FindByID(ctx context.Context, id uint) (*models.Question, error) {
	var q models.Question
	err := r.db.WithContext(ctx).
		Preload("Choices", func(tx *gorm.DB) *gorm.DB { return tx.Order("id asc") }).
		First(&q, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find question %d: %w", id, err)
	}
	return &q, nil
}

// ListVisible returns up to limit questions published at or before now,
// newest first. Ties on publish time go to the higher id.
func (r *Questions) ListVisible(ctx context.Context, now time.Time, limit int) ([]models.Question, error) {
	questions := []models.Question{}
	err := r.db.WithContext(ctx).
		Where("published_at <= ?", now.UTC()).
		Order("published_at desc").
		Order("id desc").
		Limit(limit).
		Find(&questions).Error
	if err != nil {
		return nil, fmt.Errorf("list visible questions: %w", err)
	}
	return questions, nil
}

// IncrementVotes adds one vote to the choice, provided it belongs to the
// question, and returns the new tally. The increment is a single UPDATE so
// concurrent votes are never lost.
func (r *Questions) IncrementVotes(ctx context.Context, questionID, choiceID uint) (int64, error) {
	var votes int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Choice{}).
			Where("id = ? AND question_id = ?", choiceID, questionID).
			UpdateColumn("votes", gorm.Expr("votes + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Model(&models.Choice{}).
			Select("votes").
			Where("id = ?", choiceID).
			Row().
			Scan(&votes)
	})
	if errors.Is(err, ErrNotFound) {
		return 0, err
	}
	if err != nil {
		return 0, fmt.Errorf("increment votes for choice %d: %w", choiceID, err)
	}
	return votes, nil
}

// Create inserts a question together with its choices.
func (r *Questions) Create(ctx context.Context, q *models.Question) error {
	if err := r.db.WithContext(ctx).Create(q).Error; err != nil {
		return fmt.Errorf("create question: %w", err)
	}
	return nil
}

// Ping checks that the database is reachable.
func (r *Questions) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
