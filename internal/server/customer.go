package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	customerdomain "github.com/smallbiznis/parqo/internal/customer/domain"
)

type customerPayload struct {
	Name            string `json:"name"`
	Phone           string `json:"phone"`
	Address         string `json:"address"`
	Subscriber      bool   `json:"subscriber"`
	MonthlyFeeCents *int64 `json:"monthly_fee_cents,omitempty"`
}

func (s *Server) CreateCustomer(c *gin.Context) {
	var req customerPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.customerSvc.Create(c.Request.Context(), customerdomain.CreateCustomerRequest{
		Name:            req.Name,
		Phone:           req.Phone,
		Address:         req.Address,
		Subscriber:      req.Subscriber,
		MonthlyFeeCents: req.MonthlyFeeCents,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListCustomers(c *gin.Context) {
	var query struct {
		Name       string `form:"name"`
		Subscriber string `form:"subscriber"`
		Page       int    `form:"page"`
		PageSize   int    `form:"page_size"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.customerSvc.List(c.Request.Context(), customerdomain.ListCustomerRequest{
		Name:       strings.TrimSpace(query.Name),
		Subscriber: query.Subscriber,
		Page:       query.Page,
		PageSize:   query.PageSize,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetCustomerByID(c *gin.Context) {
	resp, err := s.customerSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateCustomer(c *gin.Context) {
	var req customerPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.customerSvc.Update(c.Request.Context(), customerdomain.UpdateCustomerRequest{
		ID:              strings.TrimSpace(c.Param("id")),
		Name:            req.Name,
		Phone:           req.Phone,
		Address:         req.Address,
		Subscriber:      req.Subscriber,
		MonthlyFeeCents: req.MonthlyFeeCents,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteCustomer(c *gin.Context) {
	if err := s.customerSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

// GetCustomerCoverage reports how many calendar days in [from, to] the
// customer held at least one vehicle, per the ownership ledger.
func (s *Server) GetCustomerCoverage(c *gin.Context) {
	customerID, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil || customerID == 0 {
		AbortWithError(c, customerdomain.ErrInvalidID)
		return
	}

	from, err := time.Parse("2006-01-02", strings.TrimSpace(c.Query("from")))
	if err != nil {
		AbortWithError(c, newValidationError("from", "invalid_from", "from must be YYYY-MM-DD"))
		return
	}
	to, err := time.Parse("2006-01-02", strings.TrimSpace(c.Query("to")))
	if err != nil {
		AbortWithError(c, newValidationError("to", "invalid_to", "to must be YYYY-MM-DD"))
		return
	}

	days, err := s.billingSvc.CoverageDays(c.Request.Context(), customerID, from, to)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"customer_id": customerID.String(),
		"from":        from.Format("2006-01-02"),
		"to":          to.Format("2006-01-02"),
		"days":        days,
	}})
}

func isCustomerValidationError(err error) bool {
	switch err {
	case customerdomain.ErrInvalidName,
		customerdomain.ErrInvalidMonthlyFee,
		customerdomain.ErrInvalidID:
		return true
	default:
		return false
	}
}
