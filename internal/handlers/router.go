package handlers

import (
	"net/http"
	"time"

	"github.com/beerbuddy/beerbuddy/internal/middleware"
	"github.com/beerbuddy/beerbuddy/pkg/logger"
	"github.com/gin-gonic/gin"
)

// RateLimitOptions configures the limiter in front of signup and login. A
// nil Counter disables it.
type RateLimitOptions struct {
	Counter  middleware.Counter
	Requests int64
	Window   time.Duration
}

type RouterOptions struct {
	Users         *UserHandler
	Feed          *FeedHandler
	Notifications *NotificationHandler
	Viewers       middleware.ViewerResolver
	Metrics       *middleware.Metrics
	RateLimit     RateLimitOptions
	Logger        *logger.Logger
}

func NewRouter(opts RouterOptions) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(opts.Logger))
	if opts.Metrics != nil {
		router.Use(opts.Metrics.Middleware())
	}
	router.Use(middleware.CORS())
	router.Use(middleware.Authenticate(opts.Viewers))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})
	if opts.Metrics != nil {
		router.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}

	api := router.Group("/api/v1")
	{
		authRoutes := api.Group("/auth")
		if rl := opts.RateLimit; rl.Counter != nil {
			authRoutes.Use(middleware.RateLimit(rl.Counter, "auth", rl.Requests, rl.Window, opts.Logger))
		}
		authRoutes.POST("/signup", opts.Users.Signup)
		authRoutes.POST("/login", opts.Users.Login)

		api.GET("/me", opts.Users.Me)
		api.PUT("/me", opts.Users.UpdateProfile)

		users := api.Group("/users")
		{
			users.GET("", opts.Users.ListUsers)
			users.GET("/:id", opts.Users.GetUser)
			users.GET("/:id/followers", opts.Users.GetFollowers)
			users.GET("/:id/following", opts.Users.GetFollowing)
			users.GET("/:id/follows", opts.Users.GetFollows)
			users.POST("/:id/follow", opts.Users.Follow)
			users.DELETE("/:id/follow", opts.Users.Unfollow)
		}
		api.GET("/follows/status", opts.Users.IsFollowing)

		posts := api.Group("/posts")
		{
			posts.GET("", opts.Feed.ListPosts)
			posts.POST("", opts.Feed.CreatePost)
			posts.DELETE("/:id", opts.Feed.DeletePost)
			posts.POST("/:id/like", opts.Feed.ToggleLike)
			posts.GET("/:id/comments", opts.Feed.GetPostComments)
			posts.POST("/:id/comments", opts.Feed.CreateComment)
		}
		api.DELETE("/comments/:id", opts.Feed.DeleteComment)

		api.GET("/notifications", opts.Notifications.List)
	}

	return router
}
