package search

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"labslot/internal/api"
	"labslot/internal/facility"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// FreeSlots godoc
// @Summary      Free seat/slot pairs
// @Description  Returns every open (seat, slot) combination for a facility on a date.
// @Tags         search
// @Security     BearerAuth
// @Produce      json
// @Param        facilityID  path      int     true  "Facility ID"
// @Param        date        query     string  true  "Date (YYYY-MM-DD)"
// @Success      200         {array}   FreeSlot
// @Failure      400         {object}  api.ErrorResponse
// @Failure      404         {object}  api.ErrorResponse
// @Failure      500         {object}  api.ErrorResponse
// @Router       /facilities/{facilityID}/free-slots [get]
func (h *Handler) FreeSlots(c *gin.Context) {
	facilityID, err := strconv.Atoi(c.Param("facilityID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid facility ID"})
		return
	}

	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "date query param is required"})
		return
	}

	free, err := h.service.FreeSlots(c.Request.Context(), facilityID, date)
	if err != nil {
		switch {
		case errors.Is(err, facility.ErrFacilityNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Facility not found"})
		case errors.Is(err, facility.ErrInvalidDate), errors.Is(err, facility.ErrInvalidTime):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid date"})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch availability"})
		}
		return
	}

	c.JSON(http.StatusOK, free)
}

// FindMembers godoc
// @Summary      Search members
// @Description  Staff-only member directory search by name or email substring.
// @Tags         staff
// @Security     BearerAuth
// @Produce      json
// @Param        q    query     string  false  "Search text"
// @Success      200  {array}   user.MemberSummary
// @Failure      500  {object}  api.ErrorResponse
// @Router       /staff/members [get]
func (h *Handler) FindMembers(c *gin.Context) {
	members, err := h.service.FindMembers(c.Request.Context(), c.Query("q"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to search members"})
		return
	}

	c.JSON(http.StatusOK, members)
}
