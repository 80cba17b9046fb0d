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

type CatalogHandler struct {
	catalogService service.CatalogService
}

func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

func (h *CatalogHandler) RegisterRoutes(router *gin.RouterGroup) {
	staff := middleware.RequireRole(model.RoleAdmin, model.RoleWorker)

	services := router.Group("/services")
	{
		services.GET("", h.ListServices)
		services.GET("/:id", h.GetService)
		services.POST("", staff, h.CreateService)
		services.PUT("/:id", staff, h.UpdateService)
		services.DELETE("/:id", staff, h.DeleteService)
	}

	parts := router.Group("/spare-parts")
	{
		parts.GET("", h.ListParts)
		parts.GET("/:id", h.GetPart)
		parts.POST("", staff, h.CreatePart)
		parts.PUT("/:id", staff, h.UpdatePart)
		parts.DELETE("/:id", staff, h.DeletePart)
	}
}

// ListServices returns the service catalog
// @Summary      List services
// @Tags         catalog
// @Produce      json
// @Param        page    query     int   false  "Page"
// @Param        limit   query     int   false  "Limit"
// @Param        active  query     bool  false  "Only active items"
// @Success      200     {object}  response.Response{data=handler.ListResponse}
// @Router       /services [get]
func (h *CatalogHandler) ListServices(c *gin.Context) {
	params := pagination.Parse(c)
	activeOnly := c.Query("active") == "true"

	items, total, err := h.catalogService.ListServices(c.Request.Context(), params.Page, params.Limit, activeOnly)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, ListResponse{
		Items: items,
		Total: total,
		Page:  params.Page,
		Limit: params.Limit,
	}))
}

// GetService returns one catalog service
// @Summary      Get service by id
// @Tags         catalog
// @Produce      json
// @Param        id   path      string  true  "Service ID"
// @Success      200  {object}  response.Response{data=service.CatalogServiceResponse}
// @Failure      404  {object}  response.Response
// @Router       /services/{id} [get]
func (h *CatalogHandler) GetService(c *gin.Context) {
	item, err := h.catalogService.GetService(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, item))
}

// CreateService adds a catalog service
// @Summary      Create service
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateCatalogServiceRequest  true  "Service Payload"
// @Success      201      {object}  response.Response{data=service.CatalogServiceResponse}
// @Failure      400      {object}  response.Response
// @Router       /services [post]
func (h *CatalogHandler) CreateService(c *gin.Context) {
	var req service.CreateCatalogServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	item, err := h.catalogService.CreateService(c.Request.Context(), c.GetString("userID"), req)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, item))
}

// UpdateService edits a catalog service
// @Summary      Update service
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                               true  "Service ID"
// @Param        payload  body      service.UpdateCatalogServiceRequest  true  "Service Payload"
// @Success      200      {object}  response.Response{data=service.CatalogServiceResponse}
// @Failure      404      {object}  response.Response
// @Router       /services/{id} [put]
func (h *CatalogHandler) UpdateService(c *gin.Context) {
	var req service.UpdateCatalogServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	item, err := h.catalogService.UpdateService(c.Request.Context(), c.GetString("userID"), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, item))
}

// DeleteService removes a catalog service
// @Summary      Delete service
// @Tags         catalog
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Service ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /services/{id} [delete]
func (h *CatalogHandler) DeleteService(c *gin.Context) {
	if err := h.catalogService.DeleteService(c.Request.Context(), c.GetString("userID"), c.Param("id")); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "service deleted"}))
}

// ListParts returns the spare part catalog
// @Summary      List spare parts
// @Tags         catalog
// @Produce      json
// @Param        page    query     int   false  "Page"
// @Param        limit   query     int   false  "Limit"
// @Param        active  query     bool  false  "Only active items"
// @Success      200     {object}  response.Response{data=handler.ListResponse}
// @Router       /spare-parts [get]
func (h *CatalogHandler) ListParts(c *gin.Context) {
	params := pagination.Parse(c)
	activeOnly := c.Query("active") == "true"

	items, total, err := h.catalogService.ListParts(c.Request.Context(), params.Page, params.Limit, activeOnly)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, ListResponse{
		Items: items,
		Total: total,
		Page:  params.Page,
		Limit: params.Limit,
	}))
}

// GetPart returns one spare part
// @Summary      Get spare part by id
// @Tags         catalog
// @Produce      json
// @Param        id   path      string  true  "Spare Part ID"
// @Success      200  {object}  response.Response{data=service.SparePartResponse}
// @Failure      404  {object}  response.Response
// @Router       /spare-parts/{id} [get]
func (h *CatalogHandler) GetPart(c *gin.Context) {
	item, err := h.catalogService.GetPart(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, item))
}

// CreatePart adds a spare part
// @Summary      Create spare part
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateSparePartRequest  true  "Spare Part Payload"
// @Success      201      {object}  response.Response{data=service.SparePartResponse}
// @Failure      400      {object}  response.Response
// @Router       /spare-parts [post]
func (h *CatalogHandler) CreatePart(c *gin.Context) {
	var req service.CreateSparePartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	item, err := h.catalogService.CreatePart(c.Request.Context(), c.GetString("userID"), req)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, item))
}

// UpdatePart edits a spare part
// @Summary      Update spare part
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                          true  "Spare Part ID"
// @Param        payload  body      service.UpdateSparePartRequest  true  "Spare Part Payload"
// @Success      200      {object}  response.Response{data=service.SparePartResponse}
// @Failure      404      {object}  response.Response
// @Router       /spare-parts/{id} [put]
func (h *CatalogHandler) UpdatePart(c *gin.Context) {
	var req service.UpdateSparePartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	item, err := h.catalogService.UpdatePart(c.Request.Context(), c.GetString("userID"), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, item))
}

// DeletePart removes a spare part
// @Summary      Delete spare part
// @Tags         catalog
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Spare Part ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /spare-parts/{id} [delete]
func (h *CatalogHandler) DeletePart(c *gin.Context) {
	if err := h.catalogService.DeletePart(c.Request.Context(), c.GetString("userID"), c.Param("id")); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "spare part deleted"}))
}
