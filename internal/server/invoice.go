package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	billingdomain "github.com/smallbiznis/parqo/internal/billing/domain"
)

func (s *Server) ListInvoices(c *gin.Context) {
	var query billingdomain.ListInvoiceRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.billingSvc.List(c.Request.Context(), query)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetInvoiceByID(c *gin.Context) {
	resp, err := s.billingSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListInvoicePlates(c *gin.Context) {
	resp, err := s.billingSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"plates": resp.Plates}})
}

type generateInvoicesRequest struct {
	Period string `json:"period"`
}

func (s *Server) GenerateInvoices(c *gin.Context) {
	var req generateInvoicesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	period, err := billingdomain.ParsePeriod(strings.TrimSpace(req.Period))
	if err != nil {
		AbortWithError(c, newValidationError("period", "invalid_period", "period must be YYYY-MM"))
		return
	}

	resp, err := s.billingSvc.GenerateInvoices(c.Request.Context(), period)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
