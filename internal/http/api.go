package http

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sujalbistaa/polls/internal/models"
	"github.com/sujalbistaa/polls/internal/polls"
)

// CreateQuestionInput is the admin payload for a new question.
type CreateQuestionInput struct {
	Text        string     `json:"text" binding:"required,max=200"`
	PublishedAt *time.Time `json:"publishedAt"`
	Choices     []string   `json:"choices" binding:"required,min=1,dive,required,max=200"`
}

type choiceOption struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
}

type questionDetail struct {
	questionSummary
	Choices []choiceOption `json:"choices"`
}

type questionResults struct {
	ID      uint            `json:"id"`
	Text    string          `json:"text"`
	Choices []models.Choice `json:"choices"`
	Total   int64           `json:"total"`
}

func (e *Env) ListQuestions(c *gin.Context) {
	questions, err := e.Polls.Latest(c.Request.Context())
	if err != nil {
		e.apiError(c, "fetching latest questions", err)
		return
	}
	c.JSON(http.StatusOK, summarizeAll(questions, e.Polls.Now()))
}

// GetQuestion returns the question and its choices without tallies.
func (e *Env) GetQuestion(c *gin.Context) {
	q, ok := e.apiLookup(c, e.Polls.Detail)
	if !ok {
		return
	}
	detail := questionDetail{
		questionSummary: summarize(q, e.Polls.Now()),
		Choices:         make([]choiceOption, 0, len(q.Choices)),
	}
	for _, ch := range q.Choices {
		detail.Choices = append(detail.Choices, choiceOption{ID: ch.ID, Text: ch.Text})
	}
	c.JSON(http.StatusOK, detail)
}

func (e *Env) GetResults(c *gin.Context) {
	q, ok := e.apiLookup(c, e.Polls.Results)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, questionResults{
		ID:      q.ID,
		Text:    q.Text,
		Choices: q.Choices,
		Total:   q.TotalVotes(),
	})
}

func (e *Env) VoteOnQuestion(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Question not found"})
		return
	}
	var input VoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	q, votes, err := e.Polls.Vote(c.Request.Context(), id, input.ChoiceID)
	switch {
	case errors.Is(err, polls.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Question not found"})
	case errors.Is(err, polls.ErrInvalidSelection):
		c.JSON(http.StatusBadRequest, gin.H{"error": noChoiceMessage})
	case err != nil:
		e.apiError(c, "recording vote", err)
	default:
		c.JSON(http.StatusOK, gin.H{"questionId": q.ID, "choiceId": input.ChoiceID, "votes": votes})
	}
}

// CreateQuestion is the admin endpoint. Future publish times are allowed.
func (e *Env) CreateQuestion(c *gin.Context) {
	var input CreateQuestionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}
	var publishedAt time.Time
	if input.PublishedAt != nil {
		publishedAt = *input.PublishedAt
	}

	q, err := e.Polls.CreateQuestion(c.Request.Context(), input.Text, publishedAt, input.Choices)
	if errors.Is(err, polls.ErrInvalidQuestion) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		e.apiError(c, "creating question", err)
		return
	}
	c.JSON(http.StatusCreated, q)
}

func (e *Env) apiLookup(c *gin.Context, find func(context.Context, uint) (*models.Question, error)) (*models.Question, bool) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Question not found"})
		return nil, false
	}
	q, err := find(c.Request.Context(), id)
	if errors.Is(err, polls.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Question not found"})
		return nil, false
	}
	if err != nil {
		e.apiError(c, "fetching question", err)
		return nil, false
	}
	return q, true
}

func (e *Env) apiError(c *gin.Context, action string, err error) {
	log.Printf("[%s] Error %s: %v", requestID(c), action, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
