package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ProfessionalHandler serves public professional profiles.
type ProfessionalHandler struct {
	Catalog CatalogAPI
}

func NewProfessionalHandler(catalog CatalogAPI) *ProfessionalHandler {
	return &ProfessionalHandler{Catalog: catalog}
}

func (h *ProfessionalHandler) Profile(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.Catalog.ProfessionalProfile(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newProfessionalView(p))
}
