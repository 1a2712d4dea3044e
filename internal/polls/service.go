package polls

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sujalbistaa/polls/internal/models"
	"github.com/sujalbistaa/polls/internal/repository"
)

// LatestLimit is how many questions the index shows.
const LatestLimit = 5

var (
	// ErrNotFound covers both missing and not yet published questions.
	ErrNotFound         = errors.New("question not found")
	ErrInvalidSelection = errors.New("you didn't select a choice")
	ErrInvalidQuestion  = errors.New("invalid question")
)

type QuestionRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Question, error)
	ListVisible(ctx context.Context, now time.Time, limit int) ([]models.Question, error)
	IncrementVotes(ctx context.Context, questionID, choiceID uint) (int64, error)
	Create(ctx context.Context, q *models.Question) error
}

type Service struct {
	repo QuestionRepository
	now  func() time.Time
}

// NewService builds a Service. A nil clock means time.Now.
func NewService(repo QuestionRepository, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{repo: repo, now: now}
}

// Now is the service clock, exposed for rendering.
func (s *Service) Now() time.Time {
	return s.now()
}

// Latest returns the most recently published visible questions.
func (s *Service) Latest(ctx context.Context) ([]models.Question, error) {
	return s.repo.ListVisible(ctx, s.now(), LatestLimit)
}

// Detail returns a visible question with its choices.
func (s *Service) Detail(ctx context.Context, id uint) (*models.Question, error) {
	return s.visibleQuestion(ctx, id)
}

// Results returns a visible question with its vote tallies.
func (s *Service) Results(ctx context.Context, id uint) (*models.Question, error) {
	return s.visibleQuestion(ctx, id)
}

// Vote records one vote for choiceID on the question. A zero choiceID means
// nothing was selected. On ErrInvalidSelection the question is still returned
// so callers can show it again.
func (s *Service) Vote(ctx context.Context, questionID, choiceID uint) (*models.Question, int64, error) {
	q, err := s.visibleQuestion(ctx, questionID)
	if err != nil {
		return nil, 0, err
	}
	if choiceID == 0 || !q.HasChoice(choiceID) {
		return q, 0, ErrInvalidSelection
	}

	votes, err := s.repo.IncrementVotes(ctx, q.ID, choiceID)
	if errors.Is(err, repository.ErrNotFound) {
		return q, 0, ErrInvalidSelection
	}
	if err != nil {
		return nil, 0, fmt.Errorf("could not record vote: %w", err)
	}
	return q, votes, nil
}

// CreateQuestion stores a new question. A zero publishedAt publishes it
// immediately; a future one keeps it hidden until then.
func (s *Service) CreateQuestion(ctx context.Context, text string, publishedAt time.Time, choices []string) (*models.Question, error) {
	if publishedAt.IsZero() {
		publishedAt = s.now()
	}
	q := &models.Question{Text: strings.TrimSpace(text), PublishedAt: publishedAt}
	for _, c := range choices {
		q.Choices = append(q.Choices, models.Choice{Text: strings.TrimSpace(c)})
	}
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuestion, err)
	}

	if err := s.repo.Create(ctx, q); err != nil {
		return nil, fmt.Errorf("could not save question: %w", err)
	}
	return q, nil
}

// visibleQuestion is the single guard shared by detail, results and vote.
func (s *Service) visibleQuestion(ctx context.Context, id uint) (*models.Question, error) {
	q, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("could not retrieve question: %w", err)
	}
	if !q.IsVisible(s.now()) {
		return nil, ErrNotFound
	}
	return q, nil
}
