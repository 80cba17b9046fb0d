package handler

import (
	"net/http"

	"autoshop/internal/middleware"
	"autoshop/internal/model"
	"autoshop/internal/service"
	"autoshop/pkg/response"

	"github.com/gin-gonic/gin"
)

type ServiceRequestHandler struct {
	requestService service.ServiceRequestService
}

func NewServiceRequestHandler(requestService service.ServiceRequestService) *ServiceRequestHandler {
	return &ServiceRequestHandler{requestService: requestService}
}

func (h *ServiceRequestHandler) RegisterRoutes(router *gin.RouterGroup) {
	anyUser := middleware.RequireRole(model.RoleAdmin, model.RoleWorker, model.RoleClient)
	staff := middleware.RequireRole(model.RoleAdmin, model.RoleWorker)

	requests := router.Group("/requests")
	{
		requests.POST("", anyUser, h.Create)
		requests.GET("/my", anyUser, h.ListMy)
		requests.GET("", staff, h.List)
		requests.GET("/:id", anyUser, h.GetByID)
		requests.PATCH("/:id/status", staff, h.UpdateStatus)
		requests.POST("/:id/cancel", anyUser, h.Cancel)
	}
}

// Create submits a service request for one of the caller's vehicles
// @Summary      Create service request
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateServiceRequestRequest  true  "Request Payload"
// @Success      201      {object}  response.Response{data=service.ServiceRequestResponse}
// @Failure      400      {object}  response.Response
// @Router       /requests [post]
func (h *ServiceRequestHandler) Create(c *gin.Context) {
	var req service.CreateServiceRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.requestService.Create(c.Request.Context(), c.GetString("userID"), req)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// ListMy returns the caller's requests
// @Summary      List my service requests
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.ServiceRequestResponse}
// @Router       /requests/my [get]
func (h *ServiceRequestHandler) ListMy(c *gin.Context) {
	result, err := h.requestService.ListMy(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// List returns all requests with optional filters, staff only
// @Summary      List service requests
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        status     query     string  false  "Filter by status"
// @Param        client_id  query     string  false  "Filter by client"
// @Param        from       query     string  false  "Created from (YYYY-MM-DD)"
// @Param        to         query     string  false  "Created to (YYYY-MM-DD)"
// @Success      200        {object}  response.Response{data=[]service.ServiceRequestResponse}
// @Router       /requests [get]
func (h *ServiceRequestHandler) List(c *gin.Context) {
	filters := service.ServiceRequestFilters{
		Status:   c.Query("status"),
		ClientID: c.Query("client_id"),
		FromDate: c.Query("from"),
		ToDate:   c.Query("to"),
	}

	result, err := h.requestService.List(c.Request.Context(), filters)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// GetByID returns one request
// @Summary      Get service request by id
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response{data=service.ServiceRequestResponse}
// @Failure      404  {object}  response.Response
// @Router       /requests/{id} [get]
func (h *ServiceRequestHandler) GetByID(c *gin.Context) {
	result, err := h.requestService.GetByID(c.Request.Context(), c.GetString("userID"), c.GetString("userRole"), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// UpdateStatus moves a request through its workflow, staff only
// @Summary      Update request status
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                              true  "Request ID"
// @Param        payload  body      service.UpdateRequestStatusRequest  true  "Status Payload"
// @Success      200      {object}  response.Response{data=service.ServiceRequestResponse}
// @Failure      404      {object}  response.Response
// @Router       /requests/{id}/status [patch]
func (h *ServiceRequestHandler) UpdateStatus(c *gin.Context) {
	var req service.UpdateRequestStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.requestService.UpdateStatus(c.Request.Context(), c.GetString("userID"), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// Cancel withdraws the caller's own NEW request
// @Summary      Cancel service request
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response{data=service.ServiceRequestResponse}
// @Failure      400  {object}  response.Response
// @Router       /requests/{id}/cancel [post]
func (h *ServiceRequestHandler) Cancel(c *gin.Context) {
	result, err := h.requestService.Cancel(c.Request.Context(), c.GetString("userID"), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
