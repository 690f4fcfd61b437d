package handlers

import (
	"net/http"

	"github.com/beerbuddy/beerbuddy/internal/middleware"
	"github.com/beerbuddy/beerbuddy/internal/models"
	"github.com/beerbuddy/beerbuddy/internal/services"
	"github.com/beerbuddy/beerbuddy/pkg/logger"
	"github.com/gin-gonic/gin"
)

type FeedHandler struct {
	feedService    *services.FeedService
	likeService    *services.LikeService
	commentService *services.CommentService
	logger         *logger.Logger
}

func NewFeedHandler(feedService *services.FeedService, likeService *services.LikeService, commentService *services.CommentService, logger *logger.Logger) *FeedHandler {
	return &FeedHandler{
		feedService:    feedService,
		likeService:    likeService,
		commentService: commentService,
		logger:         logger,
	}
}

// ListPosts serves both the global timeline and, with feed=true, the posts of
// followed users.
func (h *FeedHandler) ListPosts(c *gin.Context) {
	var query struct {
		Limit  int   `form:"limit"`
		Cursor *uint `form:"cursor"`
		Feed   bool  `form:"feed"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		badRequest(c, "Invalid query parameters")
		return
	}

	page, err := h.feedService.ListPosts(c.Request.Context(), middleware.GetViewer(c), services.PostQuery{
		Limit:  query.Limit,
		Cursor: query.Cursor,
		Feed:   query.Feed,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *FeedHandler) CreatePost(c *gin.Context) {
	viewer, ok := authedViewer(c, h.logger)
	if !ok {
		return
	}

	var req models.NewPost
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	post, err := h.feedService.CreatePost(c.Request.Context(), viewer, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, post)
}

func (h *FeedHandler) DeletePost(c *gin.Context) {
	viewer, ok := authedViewer(c, h.logger)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	done, err := h.feedService.DeletePost(c.Request.Context(), viewer, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": done})
}

func (h *FeedHandler) ToggleLike(c *gin.Context) {
	viewer, ok := authedViewer(c, h.logger)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	post, err := h.likeService.ToggleLike(c.Request.Context(), viewer, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

func (h *FeedHandler) GetPostComments(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	comments, err := h.commentService.PostComments(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, comments)
}

func (h *FeedHandler) CreateComment(c *gin.Context) {
	viewer, ok := authedViewer(c, h.logger)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	comment, err := h.commentService.CreateComment(c.Request.Context(), viewer, id, req.Text)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}

func (h *FeedHandler) DeleteComment(c *gin.Context) {
	viewer, ok := authedViewer(c, h.logger)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	done, err := h.commentService.DeleteComment(c.Request.Context(), viewer, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": done})
}
