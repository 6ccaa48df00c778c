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

// CarHandler handles HTTP requests for the car catalog.
type CarHandler struct {
	service *application.CarService
}

// NewCarHandler creates a new CarHandler.
func NewCarHandler(service *application.CarService) *CarHandler {
	return &CarHandler{service: service}
}

// RegisterRoutes registers all car routes on the given router group.
// Listing and availability lookups are public; mutations are owner-only.
func (h *CarHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	ownerMW := middleware.RequireRole(auth.RoleOwner)

	cars := r.Group("/api/cars")
	{
		cars.GET("", h.ListCars)
		cars.GET("/owner", authMW, ownerMW, h.GetOwnerCars)
		cars.GET("/:id", h.GetCar)
		cars.GET("/:id/availability", h.GetAvailability)
		cars.POST("", authMW, ownerMW, h.CreateCar)
		cars.PATCH("/:id/status", authMW, ownerMW, h.UpdateCarStatus)
		cars.DELETE("/:id", authMW, ownerMW, h.DeleteCar)
	}
}

// ListCars handles GET /api/cars.
func (h *CarHandler) ListCars(c *gin.Context) {
	query := application.ListCarsQuery{
		Brand:         c.Query("brand"),
		Model:         c.Query("model"),
		Location:      c.Query("location"),
		AvailableOnly: c.Query("available") == "true",
		PickupDate:    c.Query("pickupDate"),
		ReturnDate:    c.Query("returnDate"),
	}

	result, err := h.service.ListCars(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetOwnerCars handles GET /api/cars/owner.
func (h *CarHandler) GetOwnerCars(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.service.GetOwnerCars(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetCar handles GET /api/cars/:id.
func (h *CarHandler) GetCar(c *gin.Context) {
	carID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid car ID")
		return
	}

	result, err := h.service.GetCar(c.Request.Context(), carID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetAvailability handles GET /api/cars/:id/availability.
func (h *CarHandler) GetAvailability(c *gin.Context) {
	carID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid car ID")
		return
	}

	result, err := h.service.GetAvailability(c.Request.Context(), carID, c.Query("from"), c.Query("to"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CreateCar handles POST /api/cars.
func (h *CarHandler) CreateCar(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.CreateCarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateCar(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// UpdateCarStatus handles PATCH /api/cars/:id/status.
func (h *CarHandler) UpdateCarStatus(c *gin.Context) {
	carID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid car ID")
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var body struct {
		IsAvailable *bool `json:"isAvailable" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateCarStatus(c.Request.Context(), userID, carID, *body.IsAvailable)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// DeleteCar handles DELETE /api/cars/:id.
func (h *CarHandler) DeleteCar(c *gin.Context) {
	carID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid car ID")
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.service.DeleteCar(c.Request.Context(), userID, carID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"deleted": true})
}
