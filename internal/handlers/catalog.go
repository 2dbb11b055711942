package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/orgtask-api/internal/dto"
	apierrors "github.com/yukikurage/orgtask-api/internal/errors"
	"github.com/yukikurage/orgtask-api/internal/services"
	"github.com/yukikurage/orgtask-api/internal/utils"
)

type CatalogHandler struct {
	catalog *services.CatalogService
}

func NewCatalogHandler(catalog *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

func (h *CatalogHandler) CreateBrand(c *gin.Context) {
	var req dto.BrandRequest
	if !bindJSON(c, &req) {
		return
	}
	brand := req.Model()
	if err := h.catalog.CreateBrand(c.Request.Context(), brand); err != nil {
		apierrors.HandleError(c, err)
		return
	}
	apierrors.Respond(c, http.StatusCreated, "Brand created successfully", gin.H{"brand": brand})
}

func (h *CatalogHandler) ListBrands(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	brands, total, err := h.catalog.ListBrands(c.Request.Context(), params)
	if err != nil {
		apierrors.HandleError(c, err)
		return
	}
	apierrors.Respond(c, http.StatusOK, "Brands retrieved successfully", gin.H{
		"brands":     brands,
		"pagination": params.Response(total),
	})
}

func (h *CatalogHandler) CreateInventory(c *gin.Context) {
	var req dto.InventoryRequest
	if !bindJSON(c, &req) {
		return
	}
	inventory := req.Model()
	if err := h.catalog.CreateInventory(c.Request.Context(), inventory); err != nil {
		apierrors.HandleError(c, err)
		return
	}
	apierrors.Respond(c, http.StatusCreated, "Inventory created successfully", gin.H{"inventory": inventory})
}

func (h *CatalogHandler) ListInventories(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	inventories, total, err := h.catalog.ListInventories(c.Request.Context(), params)
	if err != nil {
		apierrors.HandleError(c, err)
		return
	}
	apierrors.Respond(c, http.StatusOK, "Inventories retrieved successfully", gin.H{
		"inventories": inventories,
		"pagination":  params.Response(total),
	})
}

func (h *CatalogHandler) CreateEvent(c *gin.Context) {
	var req dto.EventRequest
	if !bindJSON(c, &req) {
		return
	}
	event := req.Model()
	if err := h.catalog.CreateEvent(c.Request.Context(), event); err != nil {
		apierrors.HandleError(c, err)
		return
	}
	apierrors.Respond(c, http.StatusCreated, "Event created successfully", gin.H{"event": event})
}

func (h *CatalogHandler) ListEvents(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	events, total, err := h.catalog.ListEvents(c.Request.Context(), params)
	if err != nil {
		apierrors.HandleError(c, err)
		return
	}
	apierrors.Respond(c, http.StatusOK, "Events retrieved successfully", gin.H{
		"events":     events,
		"pagination": params.Response(total),
	})
}

// GetBrand returns a brand with its contacts and owners
func (h *CatalogHandler) GetBrand(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "brand")
	if !ok {
		return
	}

	detail, err := h.catalog.GetBrandDetail(c.Request.Context(), id, actor)
	if err != nil {
		apierrors.HandleError(c, err)
		return
	}
	apierrors.Respond(c, http.StatusOK, "Brand retrieved successfully", gin.H{
		"brand":    detail.Brand,
		"contacts": detail.Contacts,
		"owners":   dto.ToUserDTOs(detail.Owners),
	})
}

func (h *CatalogHandler) UpdateBrand(c *gin.Context) {
	id, ok := paramID(c, "id", "brand")
	if !ok {
		return
	}
	var req dto.UpdateBrandRequest
	if !bindJSON(c, &req) {
		return
	}

	brand, err := h.catalog.UpdateBrand(c.Request.Context(), id, services.UpdateBrandInput{
		Name:        req.Name,
		Revenue:     req.Revenue,
		DealClosed:  req.DealClosed,
		Description: req.Description,
	})
	if err != nil {
		apierrors.HandleError(c, err)
		return
	}
	apierrors.Respond(c, http.StatusOK, "Brand updated successfully", gin.H{"brand": brand})
}

func (h *CatalogHandler) DeleteBrand(c *gin.Context) {
	id, ok := paramID(c, "id", "brand")
	if !ok {
		return
	}
	if err := h.catalog.DeleteBrand(c.Request.Context(), id); err != nil {
		apierrors.HandleError(c, err)
		return
	}
	apierrors.Respond(c, http.StatusOK, "Brand deleted successfully", nil)
}

func (h *CatalogHandler) AddBrandContact(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "brand")
	if !ok {
		return
	}
	var req dto.BrandContactRequest
	if !bindJSON(c, &req) {
		return
	}

	contact := req.Model()
	if err := h.catalog.AddBrandContact(c.Request.Context(), id, contact, actor); err != nil {
		apierrors.HandleError(c, err)
		return
	}
	apierrors.Respond(c, http.StatusCreated, "Brand contact added successfully", gin.H{"contact": contact})
}

func (h *CatalogHandler) UpdateBrandContact(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "brand")
	if !ok {
		return
	}
	contactID, ok := paramID(c, "contact_id", "contact")
	if !ok {
		return
	}
	var req dto.UpdateBrandContactRequest
	if !bindJSON(c, &req) {
		return
	}

	contact, err := h.catalog.UpdateBrandContact(c.Request.Context(), id, contactID, services.ContactInput{
		Name:  req.ContactPersonName,
		Phone: req.ContactPersonPhone,
		Email: req.ContactPersonEmail,
	}, actor)
	if err != nil {
		apierrors.HandleError(c, err)
		return
	}
	apierrors.Respond(c, http.StatusOK, "Brand contact updated successfully", gin.H{"contact": contact})
}

// AddBrandOwnership makes a BO user below the caller an owner of the brand
func (h *CatalogHandler) AddBrandOwnership(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "brand")
	if !ok {
		return
	}
	var req dto.BrandOwnershipRequest
	if !bindJSON(c, &req) {
		return
	}

	ownership, err := h.catalog.AddBrandOwnership(c.Request.Context(), id, req.BoUserID, actor)
	if err != nil {
		apierrors.HandleError(c, err)
		return
	}
	apierrors.Respond(c, http.StatusOK, "Brand ownership added successfully", gin.H{"brand_ownership": ownership})
}
