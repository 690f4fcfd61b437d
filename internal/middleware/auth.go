package middleware

import (
	"github.com/beerbuddy/beerbuddy/internal/auth"
	"github.com/gin-gonic/gin"
)

const viewerKey = "viewer"

// ViewerResolver turns an Authorization header into a viewer.
type ViewerResolver interface {
	ViewerFromHeader(header string) auth.Viewer
}

// Authenticate resolves the caller from the bearer token and stores the
// viewer on the context. It never rejects a request: a missing, malformed or
// expired token yields the anonymous viewer and each operation decides.
func Authenticate(resolver ViewerResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(viewerKey, resolver.ViewerFromHeader(c.GetHeader("Authorization")))
		c.Next()
	}
}

// GetViewer returns the viewer stored by Authenticate, or anonymous.
func GetViewer(c *gin.Context) auth.Viewer {
	v, ok := c.Get(viewerKey)
	if !ok {
		return auth.Anonymous
	}
	viewer, ok := v.(auth.Viewer)
	if !ok {
		return auth.Anonymous
	}
	return viewer
}
