package handler

import (
	"net/http"

	"autoshop/internal/middleware"
	"autoshop/internal/model"
	"autoshop/internal/service"
	"autoshop/pkg/pagination"
	"autoshop/pkg/response"

	"github.com/gin-gonic/gin"
)

type VehicleHandler struct {
	vehicleService service.VehicleService
}

func NewVehicleHandler(vehicleService service.VehicleService) *VehicleHandler {
	return &VehicleHandler{vehicleService: vehicleService}
}

func (h *VehicleHandler) RegisterRoutes(router *gin.RouterGroup) {
	anyUser := middleware.RequireRole(model.RoleAdmin, model.RoleWorker, model.RoleClient)
	staff := middleware.RequireRole(model.RoleAdmin, model.RoleWorker)

	vehicles := router.Group("/vehicles")
	{
		vehicles.POST("", anyUser, h.Create)
		vehicles.GET("/my", anyUser, h.ListMy)
		vehicles.GET("", staff, h.List)
		vehicles.GET("/:id", anyUser, h.GetByID)
		vehicles.PUT("/:id", anyUser, h.Update)
		vehicles.DELETE("/:id", anyUser, h.Delete)
	}
}

// Create registers a vehicle
// @Summary      Register a vehicle
// @Tags         vehicles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateVehicleRequest  true  "Vehicle Payload"
// @Success      201      {object}  response.Response{data=service.VehicleResponse}
// @Failure      400      {object}  response.Response
// @Router       /vehicles [post]
func (h *VehicleHandler) Create(c *gin.Context) {
	var req service.CreateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	vehicle, err := h.vehicleService.Create(c.Request.Context(), c.GetString("userID"), c.GetString("userRole"), req)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, vehicle))
}

// ListMy returns the caller's vehicles
// @Summary      List my vehicles
// @Tags         vehicles
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.VehicleResponse}
// @Router       /vehicles/my [get]
func (h *VehicleHandler) ListMy(c *gin.Context) {
	vehicles, err := h.vehicleService.ListMy(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, vehicles))
}

// List returns all vehicles, staff only
// @Summary      List vehicles
// @Tags         vehicles
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page"
// @Param        limit  query     int  false  "Limit"
// @Success      200    {object}  response.Response{data=handler.ListResponse}
// @Router       /vehicles [get]
func (h *VehicleHandler) List(c *gin.Context) {
	params := pagination.Parse(c)

	vehicles, total, err := h.vehicleService.List(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, ListResponse{
		Items: vehicles,
		Total: total,
		Page:  params.Page,
		Limit: params.Limit,
	}))
}

// GetByID returns one vehicle
// @Summary      Get vehicle by id
// @Tags         vehicles
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Vehicle ID"
// @Success      200  {object}  response.Response{data=service.VehicleResponse}
// @Failure      404  {object}  response.Response
// @Router       /vehicles/{id} [get]
func (h *VehicleHandler) GetByID(c *gin.Context) {
	vehicle, err := h.vehicleService.GetByID(c.Request.Context(), c.GetString("userID"), c.GetString("userRole"), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, vehicle))
}

// Update edits a vehicle
// @Summary      Update vehicle
// @Tags         vehicles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                        true  "Vehicle ID"
// @Param        payload  body      service.UpdateVehicleRequest  true  "Vehicle Payload"
// @Success      200      {object}  response.Response{data=service.VehicleResponse}
// @Failure      404      {object}  response.Response
// @Router       /vehicles/{id} [put]
func (h *VehicleHandler) Update(c *gin.Context) {
	var req service.UpdateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	vehicle, err := h.vehicleService.Update(c.Request.Context(), c.GetString("userID"), c.GetString("userRole"), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, vehicle))
}

// Delete removes a vehicle
// @Summary      Delete vehicle
// @Tags         vehicles
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Vehicle ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /vehicles/{id} [delete]
func (h *VehicleHandler) Delete(c *gin.Context) {
	if err := h.vehicleService.Delete(c.Request.Context(), c.GetString("userID"), c.GetString("userRole"), c.Param("id")); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "vehicle deleted"}))
}
