package server

import (
	"github.com/gofiber/fiber/v2"

	"candor/internal/models"
)

// CreatePost handles POST /api/me/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.Context(), currentUserID(c), req.Title, req.Description)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetMyPosts handles GET /api/me/posts
func (s *Server) GetMyPosts(c *fiber.Ctx) error {
	pagination := parsePagination(c, 20)
	search := c.Query("search")

	result, err := s.postService.ListPosts(c.Context(), currentUserID(c), search, pagination.Limit, pagination.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(result)
}

// GetMyPost handles GET /api/me/posts/:id
func (s *Server) GetMyPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, svcErr := s.postService.GetOwnerPost(c.Context(), currentUserID(c), postID)
	if svcErr != nil {
		return respondServiceError(c, svcErr)
	}
	return c.JSON(post)
}

// GetPublicPost handles GET /api/posts/:id
func (s *Server) GetPublicPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, svcErr := s.postService.GetPublicPost(c.Context(), postID)
	if svcErr != nil {
		return respondServiceError(c, svcErr)
	}
	return c.JSON(post)
}

// SetAcceptingFeedback handles PATCH /api/me/posts/:id/accepting
func (s *Server) SetAcceptingFeedback(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		IsAcceptingFeedback *bool `json:"is_accepting_feedback"`
	}
	if err := c.BodyParser(&req); err != nil || req.IsAcceptingFeedback == nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("is_accepting_feedback is required"))
	}

	post, svcErr := s.postService.SetAcceptingFeedback(c.Context(), currentUserID(c), postID, *req.IsAcceptingFeedback)
	if svcErr != nil {
		return respondServiceError(c, svcErr)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/me/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if svcErr := s.postService.DeletePost(c.Context(), currentUserID(c), postID); svcErr != nil {
		return respondServiceError(c, svcErr)
	}
	return c.JSON(fiber.Map{"message": "Post deleted"})
}

// GetDashboardStats handles GET /api/dashboard/stats
func (s *Server) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := s.postService.Stats(c.Context(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(stats)
}

// GetTopPosts handles GET /api/dashboard/top-posts
func (s *Server) GetTopPosts(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 5)

	posts, err := s.postService.TopPosts(c.Context(), currentUserID(c), limit)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"posts": posts})
}
