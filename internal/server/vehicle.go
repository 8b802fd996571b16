package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	vehicledomain "github.com/smallbiznis/parqo/internal/vehicle/domain"
)

type vehiclePayload struct {
	Plate      string `json:"plate"`
	Model      string `json:"model"`
	Year       *int   `json:"year,omitempty"`
	CustomerID string `json:"customer_id"`
}

func (s *Server) CreateVehicle(c *gin.Context) {
	var req vehiclePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.vehicleSvc.Create(c.Request.Context(), vehicledomain.CreateVehicleRequest{
		Plate:      req.Plate,
		Model:      req.Model,
		Year:       req.Year,
		CustomerID: req.CustomerID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListVehicles(c *gin.Context) {
	var query vehicledomain.ListVehicleRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.vehicleSvc.List(c.Request.Context(), query)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetVehicleByID(c *gin.Context) {
	resp, err := s.vehicleSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetVehicleHistory(c *gin.Context) {
	resp, err := s.vehicleSvc.GetHistory(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateVehicle(c *gin.Context) {
	var req vehiclePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.vehicleSvc.Update(c.Request.Context(), vehicledomain.UpdateVehicleRequest{
		ID:         strings.TrimSpace(c.Param("id")),
		Plate:      req.Plate,
		Model:      req.Model,
		Year:       req.Year,
		CustomerID: req.CustomerID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteVehicle(c *gin.Context) {
	if err := s.vehicleSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

func isVehicleValidationError(err error) bool {
	switch err {
	case vehicledomain.ErrInvalidPlate,
		vehicledomain.ErrUnknownCustomer,
		vehicledomain.ErrInvalidID:
		return true
	default:
		return false
	}
}
