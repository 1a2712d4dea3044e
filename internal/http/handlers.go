package http

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sujalbistaa/polls/internal/models"
	"github.com/sujalbistaa/polls/internal/polls"
)

const (
	noChoiceMessage = "You didn't select a choice."
	healthTimeout   = 2 * time.Second
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Env carries the handler dependencies.
type Env struct {
	Polls *polls.Service
	DB    Pinger
}

// VoteInput is the submitted choice, either as the "choice" form field or
// as JSON.
type VoteInput struct {
	ChoiceID uint `form:"choice" json:"choiceId"`
}

type questionSummary struct {
	ID          uint      `json:"id"`
	Text        string    `json:"text"`
	PublishedAt time.Time `json:"publishedAt"`
	Recent      bool      `json:"wasPublishedRecently"`
}

func summarize(q *models.Question, now time.Time) questionSummary {
	return questionSummary{
		ID:          q.ID,
		Text:        q.Text,
		PublishedAt: q.PublishedAt,
		Recent:      q.WasPublishedRecently(now),
	}
}

func summarizeAll(questions []models.Question, now time.Time) []questionSummary {
	out := make([]questionSummary, 0, len(questions))
	for i := range questions {
		out = append(out, summarize(&questions[i], now))
	}
	return out
}

// Index handles GET /
func (e *Env) Index(c *gin.Context) {
	questions, err := e.Polls.Latest(c.Request.Context())
	if err != nil {
		e.pageError(c, "fetching latest questions", err)
		return
	}
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Title":     "Latest polls",
		"Questions": summarizeAll(questions, e.Polls.Now()),
	})
}

// Detail handles GET /:id/
func (e *Env) Detail(c *gin.Context) {
	q, ok := e.pageLookup(c, e.Polls.Detail)
	if !ok {
		return
	}
	renderDetail(c, q, "")
}

// Results handles GET /:id/results/
func (e *Env) Results(c *gin.Context) {
	q, ok := e.pageLookup(c, e.Polls.Results)
	if !ok {
		return
	}
	c.HTML(http.StatusOK, "results.html", gin.H{
		"Title":    q.Text,
		"Question": q,
		"Total":    q.TotalVotes(),
	})
}

// Vote handles POST /:id/vote/ and redirects to the results on success.
func (e *Env) Vote(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		pageNotFound(c)
		return
	}

	var input VoteInput
	if err := c.ShouldBind(&input); err != nil {
		// Garbage in the choice field is the same as no choice.
		input.ChoiceID = 0
	}

	q, _, err := e.Polls.Vote(c.Request.Context(), id, input.ChoiceID)
	switch {
	case errors.Is(err, polls.ErrNotFound):
		pageNotFound(c)
	case errors.Is(err, polls.ErrInvalidSelection):
		renderDetail(c, q, noChoiceMessage)
	case err != nil:
		e.pageError(c, "recording vote", err)
	default:
		c.Redirect(http.StatusFound, fmt.Sprintf("/%d/results/", q.ID))
	}
}

// Health handles GET /healthz
func (e *Env) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	if err := e.DB.Ping(ctx); err != nil {
		log.Printf("[%s] Health check failed: %v", requestID(c), err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (e *Env) pageLookup(c *gin.Context, find func(context.Context, uint) (*models.Question, error)) (*models.Question, bool) {
	id, ok := parseID(c)
	if !ok {
		pageNotFound(c)
		return nil, false
	}
	q, err := find(c.Request.Context(), id)
	if errors.Is(err, polls.ErrNotFound) {
		pageNotFound(c)
		return nil, false
	}
	if err != nil {
		e.pageError(c, "fetching question", err)
		return nil, false
	}
	return q, true
}

func (e *Env) pageError(c *gin.Context, action string, err error) {
	log.Printf("[%s] Error %s: %v", requestID(c), action, err)
	c.HTML(http.StatusInternalServerError, "error.html", gin.H{
		"Title":   "Server error",
		"Status":  http.StatusInternalServerError,
		"Message": "Something went wrong. Please try again later.",
	})
}

func renderDetail(c *gin.Context, q *models.Question, errMsg string) {
	c.HTML(http.StatusOK, "detail.html", gin.H{
		"Title":    q.Text,
		"Question": q,
		"Error":    errMsg,
	})
}

func pageNotFound(c *gin.Context) {
	c.HTML(http.StatusNotFound, "error.html", gin.H{
		"Title":   "Not found",
		"Status":  http.StatusNotFound,
		"Message": "No question matches the given query.",
	})
}

// parseID reads the :id path parameter. Non-numeric ids are treated as
// missing questions.
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
