package facility

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"labslot/internal/api"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// ListFacilities godoc
// @Summary      List facilities
// @Description  Returns all facilities ordered by name.
// @Tags         facilities
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   Facility
// @Failure      500  {object}  api.ErrorResponse
// @Router       /facilities [get]
func (h *Handler) ListFacilities(c *gin.Context) {
	facilities, err := h.service.GetAllFacilities(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch facilities"})
		return
	}

	c.JSON(http.StatusOK, facilities)
}

// GetFacility godoc
// @Summary      Get facility
// @Description  Returns a facility with its seat list and bookable slots.
// @Tags         facilities
// @Security     BearerAuth
// @Produce      json
// @Param        facilityID  path      int  true  "Facility ID"
// @Success      200         {object}  FacilityWithSeats
// @Failure      400         {object}  api.ErrorResponse
// @Failure      404         {object}  api.ErrorResponse
// @Router       /facilities/{facilityID} [get]
func (h *Handler) GetFacility(c *gin.Context) {
	facilityID, err := strconv.Atoi(c.Param("facilityID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid facility ID"})
		return
	}

	facility, err := h.service.GetFacilityByID(c.Request.Context(), facilityID)
	if err != nil {
		if errors.Is(err, ErrFacilityNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Facility not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch facility"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"facility": facility,
		"slots":    Slots(),
	})
}
