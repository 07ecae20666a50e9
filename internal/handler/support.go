package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/local-services-marketplace/internal/service"
)

type SupportHandler struct {
	Support SupportAPI
}

func NewSupportHandler(support SupportAPI) *SupportHandler {
	return &SupportHandler{Support: support}
}

func (h *SupportHandler) Open(c echo.Context) error {
	me, err := actor(c)
	if err != nil {
		return err
	}
	var req service.TicketInput
	if err := bind(c, &req); err != nil {
		return err
	}
	t, err := h.Support.Open(c.Request().Context(), me, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, newTicketView(t))
}

func (h *SupportHandler) Mine(c echo.Context) error {
	me, err := actor(c)
	if err != nil {
		return err
	}
	ts, err := h.Support.Mine(c.Request().Context(), me)
	if err != nil {
		return err
	}
	out := make([]ticketView, 0, len(ts))
	for i := range ts {
		out = append(out, newTicketView(&ts[i]))
	}
	return c.JSON(http.StatusOK, out)
}
