package handlers

import (
	"net/http"

	"github.com/beerbuddy/beerbuddy/internal/middleware"
	"github.com/beerbuddy/beerbuddy/internal/models"
	"github.com/beerbuddy/beerbuddy/internal/services"
	"github.com/beerbuddy/beerbuddy/pkg/logger"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService   *services.UserService
	followService *services.FollowService
	logger        *logger.Logger
}

func NewUserHandler(userService *services.UserService, followService *services.FollowService, logger *logger.Logger) *UserHandler {
	return &UserHandler{
		userService:   userService,
		followService: followService,
		logger:        logger,
	}
}

func (h *UserHandler) Signup(c *gin.Context) {
	var req services.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	payload, err := h.userService.Signup(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, payload)
}

func (h *UserHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	payload, err := h.userService.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, payload)
}

func (h *UserHandler) Me(c *gin.Context) {
	profile, err := h.userService.Me(c.Request.Context(), middleware.GetViewer(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	viewer, ok := authedViewer(c, h.logger)
	if !ok {
		return
	}

	var req models.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	profile, err := h.userService.UpdateProfile(c.Request.Context(), viewer, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	profile, err := h.userService.GetUser(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *UserHandler) Follow(c *gin.Context) {
	viewer, ok := authedViewer(c, h.logger)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	done, err := h.followService.Follow(c.Request.Context(), viewer, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": done})
}

func (h *UserHandler) Unfollow(c *gin.Context) {
	viewer, ok := authedViewer(c, h.logger)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	done, err := h.followService.Unfollow(c.Request.Context(), viewer, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": done})
}

func (h *UserHandler) IsFollowing(c *gin.Context) {
	var query struct {
		FollowerID  uint `form:"follower_id" binding:"required"`
		FollowingID uint `form:"following_id" binding:"required"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		badRequest(c, "follower_id and following_id are required")
		return
	}

	following, err := h.followService.IsFollowing(c.Request.Context(), middleware.GetViewer(c), query.FollowerID, query.FollowingID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"is_following": following})
}

func (h *UserHandler) GetFollowers(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	followers, err := h.followService.Followers(c.Request.Context(), middleware.GetViewer(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, followers)
}

func (h *UserHandler) GetFollowing(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	following, err := h.followService.Following(c.Request.Context(), middleware.GetViewer(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, following)
}

func (h *UserHandler) GetFollows(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	follows, err := h.followService.Follows(c.Request.Context(), middleware.GetViewer(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, follows)
}
