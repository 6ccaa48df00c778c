package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/carhive/service-rental/internal/common/domain"
)

// Success writes a 200 response with the given payload.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created writes a 201 response with the given payload.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// BadRequest writes a 400 response with the given message.
func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// Error maps a domain error to its HTTP status. Errors outside the
// taxonomy surface as a generic 500; the handler pipeline has already
// logged them with request context.
func Error(c *gin.Context, err error) {
	var (
		notFound     *domain.NotFoundError
		validation   *domain.ValidationError
		unauthorized *domain.UnauthorizedError
		forbidden    *domain.ForbiddenError
		conflict     *domain.ConflictError
		invalidState *domain.InvalidStateError
	)

	switch {
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &invalidState):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &unauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.As(err, &forbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
