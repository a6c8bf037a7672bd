package controllers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/cafe-queue/middlewares"
	"github.com/yeremiapane/cafe-queue/models"
	"github.com/yeremiapane/cafe-queue/services"
	"github.com/yeremiapane/cafe-queue/utils"
)

type MenuController struct {
	Catalog *services.CatalogService
}

func NewMenuController(catalog *services.CatalogService) *MenuController {
	return &MenuController{Catalog: catalog}
}

type availabilityRequest struct {
	Available *bool `json:"available" binding:"required"`
}

// GetMenuItems -> GET /menu/items?include_unavailable=true
func (mc *MenuController) GetMenuItems(c *gin.Context) {
	include, ok := includeUnavailable(c)
	if !ok {
		return
	}
	items, err := mc.Catalog.ListMenuItems(c.Request.Context(), include)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of menu items", items)
}

func (mc *MenuController) GetMilkOptions(c *gin.Context) {
	include, ok := includeUnavailable(c)
	if !ok {
		return
	}
	options, err := mc.Catalog.ListMilkOptions(c.Request.Context(), include)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of milk options", options)
}

func (mc *MenuController) GetCustomizationOptions(c *gin.Context) {
	include, ok := includeUnavailable(c)
	if !ok {
		return
	}
	options, err := mc.Catalog.ListCustomizationOptions(c.Request.Context(), include)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of customization options", options)
}

func (mc *MenuController) UpdateItemAvailability(c *gin.Context) {
	mc.updateAvailability(c, mc.Catalog.UpdateItemAvailability)
}

func (mc *MenuController) UpdateMilkAvailability(c *gin.Context) {
	mc.updateAvailability(c, mc.Catalog.UpdateMilkAvailability)
}

func (mc *MenuController) UpdateCustomizationAvailability(c *gin.Context) {
	mc.updateAvailability(c, mc.Catalog.UpdateCustomizationAvailability)
}

type availabilityFunc func(ctx context.Context, sess *models.Session, id uint, available bool) error

func (mc *MenuController) updateAvailability(c *gin.Context, update availabilityFunc) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req availabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err)
		return
	}

	if err := update(c.Request.Context(), middlewares.GetSession(c), id, *req.Available); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Availability updated", gin.H{"id": id, "available": *req.Available})
}

func includeUnavailable(c *gin.Context) (bool, bool) {
	raw := c.Query("include_unavailable")
	if raw == "" {
		return false, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		badRequest(c, c.FullPath(), map[string]any{"field": "include_unavailable", "reason": "invalid_bool"})
		return false, false
	}
	return v, true
}
