package server

import (
	"github.com/gofiber/fiber/v2"

	"candor/internal/models"
	"candor/internal/service"
)

// voteStatus maps a vote outcome to the response status: a freshly inserted
// vote is a 201, a flip or no-op a 200.
func voteStatus(outcome service.VoteOutcome) int {
	if outcome == service.VoteCreated {
		return fiber.StatusCreated
	}
	return fiber.StatusOK
}

// VoteOnPost handles POST /api/posts/:id/vote
func (s *Server) VoteOnPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		VoteType        string `json:"vote_type"`
		AnonymousUserID string `json:"anonymous_user_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	result, svcErr := s.voteService.VoteOnPost(c.Context(), postID, req.VoteType,
		actorToken(c, req.AnonymousUserID), c.IP())
	if svcErr != nil {
		return respondServiceError(c, svcErr)
	}

	setActorCookie(c, result.Token)
	return c.Status(voteStatus(result.Outcome)).JSON(result)
}

// VoteOnFeedback handles POST /api/feedback/:id/vote
func (s *Server) VoteOnFeedback(c *fiber.Ctx) error {
	feedbackID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		VoteType        string `json:"vote_type"`
		AnonymousUserID string `json:"anonymous_user_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	result, svcErr := s.voteService.VoteOnFeedback(c.Context(), feedbackID, req.VoteType,
		actorToken(c, req.AnonymousUserID), c.IP())
	if svcErr != nil {
		return respondServiceError(c, svcErr)
	}

	setActorCookie(c, result.Token)
	return c.Status(voteStatus(result.Outcome)).JSON(result)
}
