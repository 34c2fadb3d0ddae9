package server

import (
	"github.com/gofiber/fiber/v2"

	"candor/internal/models"
)

// SubmitFeedback handles POST /api/posts/:id/feedback
func (s *Server) SubmitFeedback(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content         string `json:"content"`
		AnonymousUserID string `json:"anonymous_user_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	result, svcErr := s.feedbackService.Submit(c.Context(), postID, req.Content,
		actorToken(c, req.AnonymousUserID), c.IP())
	if svcErr != nil {
		return respondServiceError(c, svcErr)
	}

	setActorCookie(c, result.Token)
	return c.Status(fiber.StatusCreated).JSON(result)
}

// EditFeedback handles PUT /api/feedback/:id
func (s *Server) EditFeedback(c *fiber.Ctx) error {
	feedbackID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content         string `json:"content"`
		AnonymousUserID string `json:"anonymous_user_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	result, svcErr := s.feedbackService.Edit(c.Context(), feedbackID, req.Content,
		actorToken(c, req.AnonymousUserID), c.IP())
	if svcErr != nil {
		return respondServiceError(c, svcErr)
	}

	setActorCookie(c, result.Token)
	return c.JSON(result)
}

// DeleteFeedback handles DELETE /api/feedback/:id
func (s *Server) DeleteFeedback(c *fiber.Ctx) error {
	feedbackID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		AnonymousUserID string `json:"anonymous_user_id"`
	}
	// A body is optional on delete; the cookie may carry the token.
	_ = c.BodyParser(&req)

	if svcErr := s.feedbackService.Delete(c.Context(), feedbackID,
		actorToken(c, req.AnonymousUserID), c.IP()); svcErr != nil {
		return respondServiceError(c, svcErr)
	}
	return c.JSON(fiber.Map{"message": "Feedback deleted"})
}
