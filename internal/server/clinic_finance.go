package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	clinicfinancedomain "github.com/odontocare/odontocare/internal/clinicfinance/domain"
)

type upsertClinicFinanceRequest struct {
	ID                     string     `json:"id"`
	Operation              string     `json:"operation"`
	TypeInput              string     `json:"type_input"`
	TypeOutput             string     `json:"type_output"`
	Description            string     `json:"description"`
	Amount                 float64    `json:"amount"`
	PaymentDate            *time.Time `json:"payment_date"`
	DueDate                string     `json:"due_date"`
	Status                 string     `json:"status"`
	PaymentMethod          string     `json:"payment_method"`
	PatientID              string     `json:"patient_id"`
	EmployeeID             string     `json:"employee_id"`
	LinkedPatientChargeIDs []string   `json:"linked_patient_charge_ids"`
}

func (s *Server) UpsertClinicFinance(c *gin.Context) {
	var req upsertClinicFinanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	dueDate, err := parseOptionalTime(req.DueDate, false)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.clinicFinanceSvc.Upsert(c.Request.Context(), clinicfinancedomain.UpsertEntryRequest{
		ID:                     strings.TrimSpace(req.ID),
		Operation:              clinicfinancedomain.Operation(strings.TrimSpace(req.Operation)),
		TypeInput:              strings.TrimSpace(req.TypeInput),
		TypeOutput:             strings.TrimSpace(req.TypeOutput),
		Description:            strings.TrimSpace(req.Description),
		AmountInCents:          amountToCents(req.Amount),
		PaymentDate:            req.PaymentDate,
		DueDate:                dueDate,
		Status:                 clinicfinancedomain.Status(strings.TrimSpace(req.Status)),
		PaymentMethod:          strings.TrimSpace(req.PaymentMethod),
		PatientID:              strings.TrimSpace(req.PatientID),
		EmployeeID:             strings.TrimSpace(req.EmployeeID),
		LinkedPatientChargeIDs: req.LinkedPatientChargeIDs,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "id": resp.ID.String()})
}

func (s *Server) DeleteClinicFinance(c *gin.Context) {
	if err := s.clinicFinanceSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) RefundClinicFinance(c *gin.Context) {
	if err := s.clinicFinanceSvc.Refund(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) MarkOverdueTransactions(c *gin.Context) {
	resp, err := s.clinicFinanceSvc.MarkOverdueTransactions(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ClinicFinanceSummary(c *gin.Context) {
	var query struct {
		From string `form:"from"`
		To   string `form:"to"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	from, err := parseOptionalTime(query.From, false)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	to, err := parseOptionalTime(query.To, true)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.clinicFinanceSvc.Summary(c.Request.Context(), clinicfinancedomain.SummaryRequest{
		From: from,
		To:   to,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListClinicTransactions(c *gin.Context) {
	var query struct {
		From      string `form:"from"`
		To        string `form:"to"`
		Status    string `form:"status"`
		Operation string `form:"operation"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	from, err := parseOptionalTime(query.From, false)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	to, err := parseOptionalTime(query.To, true)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.clinicFinanceSvc.ListTransactions(c.Request.Context(), clinicfinancedomain.ListTransactionsRequest{
		From:      from,
		To:        to,
		Status:    clinicfinancedomain.Status(strings.TrimSpace(query.Status)),
		Operation: clinicfinancedomain.Operation(strings.TrimSpace(query.Operation)),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListLinkableCharges(c *gin.Context) {
	patientID := strings.TrimSpace(c.Query("patient_id"))
	resp, err := s.clinicFinanceSvc.ListLinkableCharges(c.Request.Context(), patientID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
