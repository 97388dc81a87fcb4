package server

import (
	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /api/posts
// @Summary Create a post
// @Tags posts
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param request body postRequest true "Post"
// @Success 200 {object} models.Post
// @Failure 400 {object} models.ValidationErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return respondServiceError(c, err)
	}
	var req postRequest
	if err := parseBody(c, &req); err != nil {
		return respondServiceError(c, err)
	}

	post, err := s.postService.CreatePost(c.UserContext(), userID, req.Text)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}

// GetPosts handles GET /api/posts
// @Summary All posts, newest first
// @Tags posts
// @Produce json
// @Security TokenAuth
// @Success 200 {array} models.Post
// @Router /posts [get]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	posts, err := s.postService.ListPosts(c.UserContext())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:id
// @Summary One post
// @Tags posts
// @Produce json
// @Security TokenAuth
// @Param id path string true "Post id"
// @Success 200 {object} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	post, err := s.postService.GetPost(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
// @Summary Delete one of the caller's posts
// @Tags posts
// @Produce json
// @Security TokenAuth
// @Param id path string true "Post id"
// @Success 200 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return respondServiceError(c, err)
	}
	if err := s.postService.DeletePost(c.UserContext(), c.Params("id"), userID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"msg": "Post removed"})
}

// LikePost handles PUT /api/posts/like/:id
// @Summary Like a post
// @Tags posts
// @Produce json
// @Security TokenAuth
// @Param id path string true "Post id"
// @Success 200 {array} models.Like
// @Failure 400 {object} models.ErrorResponse
// @Router /posts/like/{id} [put]
func (s *Server) LikePost(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return respondServiceError(c, err)
	}
	likes, err := s.postService.Like(c.UserContext(), c.Params("id"), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(likes)
}

// UnlikePost handles PUT /api/posts/unlike/:id
// @Summary Remove the caller's like
// @Tags posts
// @Produce json
// @Security TokenAuth
// @Param id path string true "Post id"
// @Success 200 {array} models.Like
// @Failure 400 {object} models.ErrorResponse
// @Router /posts/unlike/{id} [put]
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return respondServiceError(c, err)
	}
	likes, err := s.postService.Unlike(c.UserContext(), c.Params("id"), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(likes)
}

// AddComment handles POST /api/posts/comment/:id
// @Summary Comment on a post
// @Tags posts
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param id path string true "Post id"
// @Param request body postRequest true "Comment"
// @Success 200 {array} models.Comment
// @Failure 400 {object} models.ValidationErrorResponse
// @Router /posts/comment/{id} [post]
func (s *Server) AddComment(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return respondServiceError(c, err)
	}
	var req postRequest
	if err := parseBody(c, &req); err != nil {
		return respondServiceError(c, err)
	}

	comments, err := s.postService.AddComment(c.UserContext(), c.Params("id"), userID, req.Text)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(comments)
}

// DeleteComment handles DELETE /api/posts/comment/:id/:comment_id
// @Summary Remove one of the caller's comments
// @Tags posts
// @Produce json
// @Security TokenAuth
// @Param id path string true "Post id"
// @Param comment_id path string true "Comment id"
// @Success 200 {array} models.Comment
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/comment/{id}/{comment_id} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return respondServiceError(c, err)
	}
	comments, err := s.postService.RemoveComment(c.UserContext(), c.Params("id"), c.Params("comment_id"), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(comments)
}
