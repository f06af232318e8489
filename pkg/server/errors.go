package server

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	prserrors "github.com/gyapaarachchi-ifs/pr-summarizer/pkg/errors"
)

// errorBody is the JSON body of every error response.
type errorBody struct {
	Detail string `json:"detail"`
}

func writeDetail(c *fiber.Ctx, status int, detail string) error {
	return c.Status(status).JSON(errorBody{Detail: detail})
}

// writeError maps err to a status and a detail naming the failing
// dependency.
func writeError(c *fiber.Ctx, err error) error {
	return writeDetail(c, statusFor(err), prserrors.Detail(err))
}

// statusFor picks the HTTP status for err. Validation problems found in
// upstream data are reported as upstream failures, not client errors.
func statusFor(err error) int {
	var ghErr *prserrors.GitHubError
	switch {
	case prserrors.As(err, &ghErr):
		switch ghErr.StatusCode {
		case http.StatusNotFound:
			return http.StatusNotFound
		case http.StatusForbidden:
			return http.StatusForbidden
		}
		return http.StatusInternalServerError
	case prserrors.IsJiraError(err), prserrors.IsSummaryGenerationError(err), prserrors.IsAIError(err):
		return http.StatusInternalServerError
	case prserrors.IsValidationError(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
