package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/local-services-marketplace/internal/service"
)

type ReviewHandler struct {
	Reviews ReviewAPI
}

func NewReviewHandler(reviews ReviewAPI) *ReviewHandler {
	return &ReviewHandler{Reviews: reviews}
}

func (h *ReviewHandler) Submit(c echo.Context) error {
	me, err := actor(c)
	if err != nil {
		return err
	}
	var req service.SubmitReviewInput
	if err := bind(c, &req); err != nil {
		return err
	}
	rv, err := h.Reviews.Submit(c.Request().Context(), me, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, newReviewView(rv))
}

type serviceReviewsResp struct {
	ServiceID uint64       `json:"service_id"`
	Summary   ratingView   `json:"summary"`
	Reviews   []reviewView `json:"reviews"`
}

// ForService is public.
func (h *ReviewHandler) ForService(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	sr, err := h.Reviews.ForService(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, serviceReviewsResp{
		ServiceID: sr.ServiceID,
		Summary:   newRatingView(sr.Summary),
		Reviews:   newReviewViews(sr.Reviews),
	})
}
