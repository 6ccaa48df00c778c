package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/carhive/service-rental/internal/application"
	"github.com/carhive/service-rental/internal/common/auth"
	"github.com/carhive/service-rental/internal/common/middleware"
	"github.com/carhive/service-rental/internal/common/response"
)

// PaymentHandler handles HTTP requests for the simulated payment flow.
type PaymentHandler struct {
	service *application.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(service *application.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// RegisterRoutes registers all payment routes on the given router group.
func (h *PaymentHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	payments := r.Group("/api/payments")
	payments.Use(middleware.AuthMiddleware(jwtManager), middleware.RequireRole(auth.RoleRenter))
	{
		payments.POST("/create-order", h.CreateOrder)
		payments.POST("/verify", h.VerifyPayment)
		payments.POST("/fail", h.FailPayment)
	}
}

// CreateOrder handles POST /api/payments/create-order.
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var body struct {
		BookingID uuid.UUID `json:"bookingId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateOrder(c.Request.Context(), userID, body.BookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// VerifyPayment handles POST /api/payments/verify.
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.VerifyPayment(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// FailPayment handles POST /api/payments/fail.
func (h *PaymentHandler) FailPayment(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var body struct {
		BookingID uuid.UUID `json:"bookingId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.FailPayment(c.Request.Context(), userID, body.BookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
