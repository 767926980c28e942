package reservation

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"labslot/internal/api"
	"labslot/internal/auth"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// respondError maps service errors onto HTTP statuses. Internal failures get
// a generic body; details stay in the error log.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrSeatConflict), errors.Is(err, ErrHolderConflict):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrGracePeriodExpired):
		c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "Cannot remove reservation: the grace period has expired"})
	case errors.Is(err, ErrNotAllowed):
		c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "Not authorized"})
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Reservation not found"})
	case errors.Is(err, ErrMemberNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Member not found or inactive"})
	default:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Reservation failed"})
	}
}

// Create godoc
// @Summary      Create reservation
// @Description  Books one or more seats in a facility for a single half-hour slot, as one atomic group.
// @Tags         reservations
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateRequest  true  "Reservation data"
// @Success      201      {array}   Reservation
// @Failure      400      {object}  api.ErrorResponse
// @Failure      403      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Failure      500      {object}  api.ErrorResponse
// @Router       /reservations [post]
func (h *Handler) Create(c *gin.Context) {
	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Missing required fields"})
		return
	}

	created, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// CreateOnBehalf godoc
// @Summary      Create reservation for a member
// @Description  Staff books seats on behalf of an active member. Never anonymous.
// @Tags         staff
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateOnBehalfRequest  true  "Reservation data"
// @Success      201      {array}   Reservation
// @Failure      400      {object}  api.ErrorResponse
// @Failure      403      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Failure      500      {object}  api.ErrorResponse
// @Router       /staff/reservations [post]
func (h *Handler) CreateOnBehalf(c *gin.Context) {
	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	var req CreateOnBehalfRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Missing required fields"})
		return
	}

	created, err := h.service.CreateOnBehalf(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// GetByID godoc
// @Summary      Get reservation
// @Description  Returns one reservation with facility and holder details. Visible to the holder and staff.
// @Tags         reservations
// @Security     BearerAuth
// @Produce      json
// @Param        reservationID  path      int  true  "Reservation ID"
// @Success      200            {object}  ReservationWithDetails
// @Failure      400            {object}  api.ErrorResponse
// @Failure      403            {object}  api.ErrorResponse
// @Failure      404            {object}  api.ErrorResponse
// @Router       /reservations/{reservationID} [get]
func (h *Handler) GetByID(c *gin.Context) {
	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	reservationID, err := strconv.Atoi(c.Param("reservationID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid reservation ID"})
		return
	}

	row, err := h.service.Get(c.Request.Context(), actor, reservationID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, row)
}

// Edit godoc
// @Summary      Edit reservation
// @Description  Moves a single reservation row to a new seat and/or slot, re-validating conflicts.
// @Tags         reservations
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        reservationID  path      int          true  "Reservation ID"
// @Param        request        body      EditRequest  true  "New seat and slot"
// @Success      200            {object}  Reservation
// @Failure      400            {object}  api.ErrorResponse
// @Failure      403            {object}  api.ErrorResponse
// @Failure      404            {object}  api.ErrorResponse
// @Failure      409            {object}  api.ErrorResponse
// @Router       /reservations/{reservationID} [patch]
func (h *Handler) Edit(c *gin.Context) {
	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	reservationID, err := strconv.Atoi(c.Param("reservationID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid reservation ID"})
		return
	}

	var req EditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Missing required fields"})
		return
	}

	updated, err := h.service.Edit(c.Request.Context(), actor, reservationID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// Delete godoc
// @Summary      Cancel reservation group
// @Description  Removes every row of the reservation's group. Holders may cancel any time; staff only within the grace period after the slot starts.
// @Tags         reservations
// @Security     BearerAuth
// @Produce      json
// @Param        reservationID  path      int  true  "Reservation ID"
// @Success      200            {object}  DeleteResponse
// @Failure      400            {object}  api.ErrorResponse
// @Failure      403            {object}  api.ErrorResponse
// @Failure      404            {object}  api.ErrorResponse
// @Router       /reservations/{reservationID} [delete]
func (h *Handler) Delete(c *gin.Context) {
	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	reservationID, err := strconv.Atoi(c.Param("reservationID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid reservation ID"})
		return
	}

	removed, err := h.service.Delete(c.Request.Context(), actor, reservationID, time.Now())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, DeleteResponse{Removed: removed})
}

// RemoveByStaff godoc
// @Summary      Remove single reservation row
// @Description  Staff-only removal of one row, allowed only within the grace period after the slot starts. Does not cascade to the group.
// @Tags         staff
// @Security     BearerAuth
// @Produce      json
// @Param        reservationID  path      int  true  "Reservation ID"
// @Success      200            {object}  Reservation
// @Failure      400            {object}  api.ErrorResponse
// @Failure      403            {object}  api.ErrorResponse
// @Failure      404            {object}  api.ErrorResponse
// @Router       /staff/reservations/{reservationID} [delete]
func (h *Handler) RemoveByStaff(c *gin.Context) {
	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	reservationID, err := strconv.Atoi(c.Param("reservationID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid reservation ID"})
		return
	}

	removed, err := h.service.RemoveByStaff(c.Request.Context(), actor, reservationID, time.Now())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, removed)
}

// ListMine godoc
// @Summary      List my reservations
// @Tags         reservations
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   ReservationWithDetails
// @Failure      500  {object}  api.ErrorResponse
// @Router       /reservations [get]
func (h *Handler) ListMine(c *gin.Context) {
	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	reservations, err := h.service.ListForHolder(c.Request.Context(), actor.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch reservations"})
		return
	}

	c.JSON(http.StatusOK, reservations)
}

// ListAll godoc
// @Summary      List all reservations
// @Description  Staff-only listing of every reservation with holder and facility details.
// @Tags         staff
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   ReservationWithDetails
// @Failure      403  {object}  api.ErrorResponse
// @Failure      500  {object}  api.ErrorResponse
// @Router       /staff/reservations [get]
func (h *Handler) ListAll(c *gin.Context) {
	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	reservations, err := h.service.ListAll(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, reservations)
}
