package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	patientfinancedomain "github.com/odontocare/odontocare/internal/patientfinance/domain"
)

type upsertPatientFinanceRequest struct {
	ID          string  `json:"id"`
	PatientID   string  `json:"patient_id"`
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	DueDate     string  `json:"due_date"`
	Status      string  `json:"status"`
}

func (s *Server) UpsertPatientFinance(c *gin.Context) {
	var req upsertPatientFinanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	dueDate, err := parseOptionalTime(req.DueDate, false)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.patientLedgerSvc.Upsert(c.Request.Context(), patientfinancedomain.UpsertEntryRequest{
		ID:            strings.TrimSpace(req.ID),
		PatientID:     strings.TrimSpace(req.PatientID),
		Type:          patientfinancedomain.EntryType(strings.TrimSpace(req.Type)),
		Description:   strings.TrimSpace(req.Description),
		AmountInCents: amountToCents(req.Amount),
		DueDate:       dueDate,
		Status:        patientfinancedomain.ChargeStatus(strings.TrimSpace(req.Status)),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "id": resp.ID.String()})
}

func (s *Server) DeletePatientFinance(c *gin.Context) {
	err := s.patientLedgerSvc.Delete(c.Request.Context(), patientfinancedomain.DeleteEntryRequest{
		ID:        strings.TrimSpace(c.Param("id")),
		PatientID: strings.TrimSpace(c.Query("patient_id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) ListPatientFinances(c *gin.Context) {
	resp, err := s.patientLedgerSvc.List(c.Request.Context(), patientfinancedomain.ListEntriesRequest{
		PatientID: strings.TrimSpace(c.Query("patient_id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
