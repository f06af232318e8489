package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	prserrors "github.com/gyapaarachchi-ifs/pr-summarizer/pkg/errors"
	"github.com/gyapaarachchi-ifs/pr-summarizer/pkg/orchestrator"
	"github.com/gyapaarachchi-ifs/pr-summarizer/pkg/store"
	"github.com/gyapaarachchi-ifs/pr-summarizer/pkg/summarizer"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// summaryRequest is the body of the summary endpoints. github_pr_url is
// accepted as an alias of pr_url.
type summaryRequest struct {
	PRURL        string                `json:"pr_url"`
	GitHubPRURL  string                `json:"github_pr_url"`
	JiraTicketID string                `json:"jira_ticket_id"`
	RequestID    string                `json:"request_id"`
	Options      *orchestrator.Options `json:"options"`
}

type asyncResponse struct {
	ID     string                      `json:"id"`
	Status summarizer.ProcessingStatus `json:"status"`
}

type listResponse struct {
	Summaries []*summarizer.PRSummary `json:"summaries"`
	Total     int                     `json:"total"`
	Limit     int                     `json:"limit"`
	Offset    int                     `json:"offset"`
}

// parseRequest decodes the body. A missing or unreadable body is a 400;
// field validation is left to the orchestrator.
func parseRequest(c *fiber.Ctx) (orchestrator.Request, error) {
	var body summaryRequest
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return orchestrator.Request{}, fiber.NewError(http.StatusBadRequest, "invalid request body")
	}

	url := strings.TrimSpace(body.PRURL)
	if url == "" {
		url = strings.TrimSpace(body.GitHubPRURL)
	}
	if url == "" {
		return orchestrator.Request{}, fiber.NewError(http.StatusBadRequest, "pr_url is required")
	}

	req := orchestrator.Request{
		PRURL:        url,
		JiraTicketID: body.JiraTicketID,
		RequestID:    body.RequestID,
	}
	if body.Options != nil {
		req.Options = *body.Options
	}
	if req.RequestID == "" {
		req.RequestID = strings.Clone(c.GetRespHeader(fiber.HeaderXRequestID))
	}
	return req, nil
}

func (s *Server) createSummary(c *fiber.Ctx) error {
	req, err := parseRequest(c)
	if err != nil {
		return err
	}

	summary, err := s.svc.Summarize(c.UserContext(), req)
	if err != nil {
		return writeError(c, err)
	}

	if s.store != nil {
		if err := s.store.Save(c.UserContext(), summary); err != nil {
			s.logger.Warn("failed to persist summary", "summary_id", summary.ID, "error", err)
		}
	}

	return c.Status(http.StatusCreated).JSON(summary)
}

func (s *Server) createSummaryAsync(c *fiber.Ctx) error {
	req, err := parseRequest(c)
	if err != nil {
		return err
	}
	req, err = req.Validate()
	if err != nil {
		return writeError(c, err)
	}

	pending := &summarizer.PRSummary{
		ID:           uuid.NewString(),
		RequestID:    req.RequestID,
		GitHubPRURL:  req.PRURL,
		JiraTicketID: req.JiraTicketID,
		Status:       summarizer.StatusPending,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.Save(c.UserContext(), pending); err != nil {
		s.logger.Error("failed to persist pending summary", "error", err)
		return writeDetail(c, http.StatusInternalServerError, "Failed to queue summary: storage unavailable")
	}

	s.jobs.Submit(pending.ID, req)

	return c.Status(http.StatusAccepted).JSON(asyncResponse{ID: pending.ID, Status: pending.Status})
}

func (s *Server) getSummary(c *fiber.Ctx) error {
	id := c.Params("id")
	summary, err := s.store.Get(c.UserContext(), id)
	if prserrors.Is(err, store.ErrNotFound) {
		return writeDetail(c, http.StatusNotFound, "Summary not found: "+id)
	}
	if err != nil {
		s.logger.Error("failed to read summary", "summary_id", id, "error", err)
		return writeDetail(c, http.StatusInternalServerError, "Failed to read summary: storage unavailable")
	}
	return c.JSON(summary)
}

func (s *Server) listSummaries(c *fiber.Ctx) error {
	limit, err := queryInt(c, "limit", defaultListLimit)
	if err != nil || limit < 1 {
		return writeDetail(c, http.StatusBadRequest, "limit must be a positive integer")
	}
	limit = min(limit, maxListLimit)

	offset, err := queryInt(c, "offset", 0)
	if err != nil || offset < 0 {
		return writeDetail(c, http.StatusBadRequest, "offset must be a non-negative integer")
	}

	summaries, total, err := s.store.List(c.UserContext(), limit, offset)
	if err != nil {
		s.logger.Error("failed to list summaries", "error", err)
		return writeDetail(c, http.StatusInternalServerError, "Failed to list summaries: storage unavailable")
	}

	return c.JSON(listResponse{Summaries: summaries, Total: total, Limit: limit, Offset: offset})
}

func (s *Server) cancelSummary(c *fiber.Ctx) error {
	id := c.Params("id")

	summary, err := s.store.Get(c.UserContext(), id)
	if prserrors.Is(err, store.ErrNotFound) {
		return writeDetail(c, http.StatusNotFound, "Summary not found: "+id)
	}
	if err != nil {
		return writeDetail(c, http.StatusInternalServerError, "Failed to read summary: storage unavailable")
	}
	if summary.Status.IsTerminal() {
		return writeDetail(c, http.StatusConflict, "Summary is already "+string(summary.Status))
	}

	err = s.store.UpdateStatus(c.UserContext(), id, summarizer.StatusCancelled, "cancelled by client")
	if prserrors.Is(err, store.ErrInvalidTransition) {
		// The job finished between the read and the update.
		return writeDetail(c, http.StatusConflict, "Summary is no longer running")
	}
	if err != nil {
		return writeDetail(c, http.StatusInternalServerError, "Failed to cancel summary: storage unavailable")
	}
	s.jobs.Cancel(id)

	return c.JSON(asyncResponse{ID: id, Status: summarizer.StatusCancelled})
}

func (s *Server) health(c *fiber.Ctx) error {
	h := s.svc.HealthCheck(c.UserContext())
	status := http.StatusOK
	if h.Status == orchestrator.StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	return c.Status(status).JSON(h)
}

func (s *Server) metrics(c *fiber.Ctx) error {
	return c.JSON(s.svc.Metrics())
}

func queryInt(c *fiber.Ctx, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
