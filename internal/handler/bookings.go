package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/local-services-marketplace/internal/service"
)

// BookingHandler serves the booking lifecycle.  Dates and times are shown
// in Loc.
type BookingHandler struct {
	Bookings BookingAPI
	Loc      *time.Location
}

func NewBookingHandler(bookings BookingAPI, loc *time.Location) *BookingHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &BookingHandler{Bookings: bookings, Loc: loc}
}

func (h *BookingHandler) Create(c echo.Context) error {
	me, err := actor(c)
	if err != nil {
		return err
	}
	var req service.CreateBookingInput
	if err := bind(c, &req); err != nil {
		return err
	}
	b, err := h.Bookings.Create(c.Request().Context(), me, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, newBookingView(b, h.Loc))
}

// List returns the bookings addressed to a professional or made by a
// customer.
func (h *BookingHandler) List(c echo.Context) error {
	me, err := actor(c)
	if err != nil {
		return err
	}
	views, err := h.Bookings.List(c.Request().Context(), me)
	if err != nil {
		return err
	}
	out := make([]bookingView, 0, len(views))
	for _, v := range views {
		out = append(out, newBookingRecordView(v, h.Loc))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *BookingHandler) Get(c echo.Context) error {
	me, err := actor(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	v, err := h.Bookings.Get(c.Request().Context(), me, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newBookingRecordView(*v, h.Loc))
}

type statusReq struct {
	Status string `json:"status"`
}

// UpdateStatus applies accept or reject.
func (h *BookingHandler) UpdateStatus(c echo.Context) error {
	me, err := actor(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req statusReq
	if err := bind(c, &req); err != nil {
		return err
	}
	b, err := h.Bookings.Decide(c.Request().Context(), me, id, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newBookingView(b, h.Loc))
}

func (h *BookingHandler) Complete(c echo.Context) error {
	me, err := actor(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	b, err := h.Bookings.Complete(c.Request().Context(), me, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newBookingView(b, h.Loc))
}
