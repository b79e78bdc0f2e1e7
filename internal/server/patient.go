package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	patientdomain "github.com/odontocare/odontocare/internal/patient/domain"
)

type upsertPatientRequest struct {
	Name      string     `json:"name"`
	Phone     string     `json:"phone"`
	Email     string     `json:"email"`
	BirthDate *time.Time `json:"birth_date"`
	Notes     string     `json:"notes"`
}

func (s *Server) CreatePatient(c *gin.Context) {
	var req upsertPatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.patientSvc.Create(c.Request.Context(), patientdomain.CreatePatientRequest{
		Name:      strings.TrimSpace(req.Name),
		Phone:     strings.TrimSpace(req.Phone),
		Email:     strings.TrimSpace(req.Email),
		BirthDate: req.BirthDate,
		Notes:     req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdatePatient(c *gin.Context) {
	var req upsertPatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.patientSvc.Update(c.Request.Context(), patientdomain.UpdatePatientRequest{
		ID:        strings.TrimSpace(c.Param("id")),
		Name:      strings.TrimSpace(req.Name),
		Phone:     strings.TrimSpace(req.Phone),
		Email:     strings.TrimSpace(req.Email),
		BirthDate: req.BirthDate,
		Notes:     req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPatient(c *gin.Context) {
	resp, err := s.patientSvc.GetByID(c.Request.Context(), patientdomain.GetPatientRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListPatients(c *gin.Context) {
	var query struct {
		PageToken string `form:"page_token"`
		PageSize  int32  `form:"page_size"`
		Name      string `form:"name"`
		Status    string `form:"status"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.patientSvc.List(c.Request.Context(), patientdomain.ListPatientsRequest{
		PageToken: query.PageToken,
		PageSize:  query.PageSize,
		Name:      strings.TrimSpace(query.Name),
		Status:    patientdomain.FinancialStatus(strings.TrimSpace(query.Status)),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateAnamnesisRequest struct {
	Answers map[string]any `json:"answers"`
}

func (s *Server) UpdateAnamnesis(c *gin.Context) {
	var req updateAnamnesisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.patientSvc.UpdateAnamnesis(c.Request.Context(), patientdomain.UpdateAnamnesisRequest{
		ID:      strings.TrimSpace(c.Param("id")),
		Answers: req.Answers,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateOdontogramRequest struct {
	Tooth  string                     `json:"tooth"`
	Record *patientdomain.ToothRecord `json:"record"`
}

func (s *Server) UpdateOdontogram(c *gin.Context) {
	var req updateOdontogramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.patientSvc.UpdateOdontogram(c.Request.Context(), patientdomain.UpdateOdontogramRequest{
		ID:     strings.TrimSpace(c.Param("id")),
		Tooth:  strings.TrimSpace(req.Tooth),
		Record: req.Record,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
