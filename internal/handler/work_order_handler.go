package handler

import (
	"net/http"

	"autoshop/internal/middleware"
	"autoshop/internal/model"
	"autoshop/internal/service"
	"autoshop/pkg/response"

	"github.com/gin-gonic/gin"
)

type WorkOrderHandler struct {
	workOrderService service.WorkOrderService
}

func NewWorkOrderHandler(workOrderService service.WorkOrderService) *WorkOrderHandler {
	return &WorkOrderHandler{workOrderService: workOrderService}
}

func (h *WorkOrderHandler) RegisterRoutes(router *gin.RouterGroup) {
	anyUser := middleware.RequireRole(model.RoleAdmin, model.RoleWorker, model.RoleClient)
	staff := middleware.RequireRole(model.RoleAdmin, model.RoleWorker)

	orders := router.Group("/work-orders")
	{
		orders.POST("", staff, h.Create)
		orders.GET("", staff, h.List)
		orders.GET("/my", anyUser, h.ListMy)
		orders.GET("/:id", anyUser, h.GetByID)
		orders.PATCH("/:id", staff, h.Update)
		orders.PUT("/:id", staff, h.Update)
		orders.PATCH("/:id/status", staff, h.UpdateStatus)
		orders.POST("/:id/services", staff, h.AddService)
		orders.DELETE("/:id/services/:rowId", staff, h.DeleteService)
		orders.POST("/:id/parts", staff, h.AddPart)
		orders.DELETE("/:id/parts/:rowId", staff, h.DeletePart)
	}
}

// Create opens a work order from a service request
// @Summary      Create work order
// @Description  Creates a DRAFT work order bound 1:1 to a service request
// @Tags         work-orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateWorkOrderRequest  true  "Work Order Payload"
// @Success      201      {object}  response.Response{data=service.WorkOrderResponse}
// @Failure      400      {object}  response.Response
// @Router       /work-orders [post]
func (h *WorkOrderHandler) Create(c *gin.Context) {
	var req service.CreateWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	order, err := h.workOrderService.CreateFromRequest(c.Request.Context(), c.GetString("userID"), req)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, order))
}

// List returns all work orders with optional filters, staff only
// @Summary      List work orders
// @Tags         work-orders
// @Produce      json
// @Security     BearerAuth
// @Param        status      query     string  false  "Filter by status"
// @Param        client_id   query     string  false  "Filter by client"
// @Param        vehicle_id  query     string  false  "Filter by vehicle"
// @Param        worker_id   query     string  false  "Filter by responsible worker"
// @Success      200         {object}  response.Response{data=[]service.WorkOrderResponse}
// @Router       /work-orders [get]
func (h *WorkOrderHandler) List(c *gin.Context) {
	filters := service.WorkOrderFilters{
		Status:              c.Query("status"),
		ClientID:            c.Query("client_id"),
		VehicleID:           c.Query("vehicle_id"),
		ResponsibleWorkerID: c.Query("worker_id"),
	}

	orders, err := h.workOrderService.GetAll(c.Request.Context(), filters)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, orders))
}

// ListMy returns the caller's work orders
// @Summary      List my work orders
// @Tags         work-orders
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.WorkOrderResponse}
// @Router       /work-orders/my [get]
func (h *WorkOrderHandler) ListMy(c *gin.Context) {
	orders, err := h.workOrderService.GetMyWorkOrders(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, orders))
}

// GetByID returns one work order with its lines
// @Summary      Get work order by id
// @Tags         work-orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Work Order ID"
// @Success      200  {object}  response.Response{data=service.WorkOrderResponse}
// @Failure      404  {object}  response.Response
// @Router       /work-orders/{id} [get]
func (h *WorkOrderHandler) GetByID(c *gin.Context) {
	order, err := h.workOrderService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}

	// Clients only see their own orders.
	if c.GetString("userRole") == model.RoleClient && order.ClientID != c.GetString("userID") {
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "work order belongs to another user"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// Update applies a bulk edit: details plus full line replacement
// @Summary      Update work order
// @Description  Updates details and optionally replaces the full service/part line sets atomically
// @Tags         work-orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                          true  "Work Order ID"
// @Param        payload  body      service.UpdateWorkOrderRequest  true  "Update Payload"
// @Success      200      {object}  response.Response{data=service.WorkOrderResponse}
// @Failure      400      {object}  response.Response
// @Router       /work-orders/{id} [patch]
func (h *WorkOrderHandler) Update(c *gin.Context) {
	var req service.UpdateWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	order, err := h.workOrderService.UpdateWorkOrder(c.Request.Context(), c.GetString("userID"), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// UpdateStatus moves a work order through its lifecycle
// @Summary      Update work order status
// @Tags         work-orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                                true  "Work Order ID"
// @Param        payload  body      service.UpdateWorkOrderStatusRequest  true  "Status Payload"
// @Success      200      {object}  response.Response{data=service.WorkOrderResponse}
// @Failure      404      {object}  response.Response
// @Router       /work-orders/{id}/status [patch]
func (h *WorkOrderHandler) UpdateStatus(c *gin.Context) {
	var req service.UpdateWorkOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	order, err := h.workOrderService.UpdateStatus(c.Request.Context(), c.GetString("userID"), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// AddService appends a labor line with a price snapshot
// @Summary      Add service line
// @Tags         work-orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                         true  "Work Order ID"
// @Param        payload  body      service.AddServiceLineRequest  true  "Service Line Payload"
// @Success      200      {object}  response.Response{data=service.WorkOrderResponse}
// @Failure      400      {object}  response.Response
// @Router       /work-orders/{id}/services [post]
func (h *WorkOrderHandler) AddService(c *gin.Context) {
	var req service.AddServiceLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	order, err := h.workOrderService.AddServiceLine(c.Request.Context(), c.GetString("userID"), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// DeleteService removes one labor line
// @Summary      Delete service line
// @Tags         work-orders
// @Produce      json
// @Security     BearerAuth
// @Param        id     path      string  true  "Work Order ID"
// @Param        rowId  path      string  true  "Line Row ID"
// @Success      200    {object}  response.Response{data=service.WorkOrderResponse}
// @Failure      404    {object}  response.Response
// @Router       /work-orders/{id}/services/{rowId} [delete]
func (h *WorkOrderHandler) DeleteService(c *gin.Context) {
	order, err := h.workOrderService.DeleteServiceLine(c.Request.Context(), c.GetString("userID"), c.Param("id"), c.Param("rowId"))
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// AddPart appends a spare part line with a price snapshot
// @Summary      Add part line
// @Tags         work-orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                      true  "Work Order ID"
// @Param        payload  body      service.AddPartLineRequest  true  "Part Line Payload"
// @Success      200      {object}  response.Response{data=service.WorkOrderResponse}
// @Failure      400      {object}  response.Response
// @Router       /work-orders/{id}/parts [post]
func (h *WorkOrderHandler) AddPart(c *gin.Context) {
	var req service.AddPartLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	order, err := h.workOrderService.AddPartLine(c.Request.Context(), c.GetString("userID"), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// DeletePart removes one spare part line
// @Summary      Delete part line
// @Tags         work-orders
// @Produce      json
// @Security     BearerAuth
// @Param        id     path      string  true  "Work Order ID"
// @Param        rowId  path      string  true  "Line Row ID"
// @Success      200    {object}  response.Response{data=service.WorkOrderResponse}
// @Failure      404    {object}  response.Response
// @Router       /work-orders/{id}/parts/{rowId} [delete]
func (h *WorkOrderHandler) DeletePart(c *gin.Context) {
	order, err := h.workOrderService.DeletePartLine(c.Request.Context(), c.GetString("userID"), c.Param("id"), c.Param("rowId"))
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}
