package handlers

import (
	"net/http"
	"strconv"

	"github.com/beerbuddy/beerbuddy/internal/apperrors"
	"github.com/beerbuddy/beerbuddy/internal/auth"
	"github.com/beerbuddy/beerbuddy/internal/middleware"
	"github.com/beerbuddy/beerbuddy/internal/services"
	"github.com/beerbuddy/beerbuddy/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// respondError renders err as {"error": message}. Internal errors are logged
// with their cause and reach the client only as a generic message.
func respondError(c *gin.Context, log *logger.Logger, err error) {
	status := apperrors.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.WithError(err).WithFields(logrus.Fields{
			"route":      c.FullPath(),
			"request_id": middleware.GetRequestID(c),
		}).Error("Request failed with internal error")
	}
	c.JSON(status, gin.H{"error": apperrors.PublicMessage(err)})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

// idParam parses a positive numeric path parameter, answering 400 otherwise.
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// authedViewer answers 401 for anonymous callers. Handlers call it before
// touching the path or body so a bad request never masks missing auth.
func authedViewer(c *gin.Context, log *logger.Logger) (auth.Viewer, bool) {
	viewer := middleware.GetViewer(c)
	if err := services.RequireViewer(viewer); err != nil {
		respondError(c, log, err)
		return viewer, false
	}
	return viewer, true
}
