package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/local-services-marketplace/internal/model"
	"github.com/iliyamo/local-services-marketplace/internal/service"
)

// ServiceHandler serves the catalog.
type ServiceHandler struct {
	Catalog CatalogAPI
}

func NewServiceHandler(catalog CatalogAPI) *ServiceHandler {
	return &ServiceHandler{Catalog: catalog}
}

// List is public.  Optional query filters: location, category.
func (h *ServiceHandler) List(c echo.Context) error {
	f := model.ServiceFilter{Location: c.QueryParam("location"), Category: c.QueryParam("category")}
	ls, err := h.Catalog.ListServices(c.Request().Context(), f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newListingViews(ls))
}

func (h *ServiceHandler) Mine(c echo.Context) error {
	me, err := actor(c)
	if err != nil {
		return err
	}
	ls, err := h.Catalog.MyServices(c.Request().Context(), me)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newListingViews(ls))
}

func (h *ServiceHandler) Create(c echo.Context) error {
	me, err := actor(c)
	if err != nil {
		return err
	}
	var req service.ServiceInput
	if err := bind(c, &req); err != nil {
		return err
	}
	svc, err := h.Catalog.CreateService(c.Request().Context(), me, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, newServiceView(svc))
}

func (h *ServiceHandler) Update(c echo.Context) error {
	me, err := actor(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req service.ServiceInput
	if err := bind(c, &req); err != nil {
		return err
	}
	svc, err := h.Catalog.UpdateService(c.Request().Context(), me, id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newServiceView(svc))
}

type deleteServiceResp struct {
	Message         string `json:"message"`
	BookingsRemoved int64  `json:"bookings_removed"`
}

// Delete removes the service and every booking that references it.
func (h *ServiceHandler) Delete(c echo.Context) error {
	me, err := actor(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	n, err := h.Catalog.DeleteService(c.Request().Context(), me, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, deleteServiceResp{Message: "Service deleted", BookingsRemoved: n})
}
