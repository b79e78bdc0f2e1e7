package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	staffdomain "github.com/odontocare/odontocare/internal/staff/domain"
)

type upsertStaffRequest struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	CRO   string `json:"cro"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

func (s *Server) UpsertStaff(c *gin.Context) {
	var req upsertStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.staffSvc.Upsert(c.Request.Context(), staffdomain.UpsertStaffRequest{
		ID:    strings.TrimSpace(req.ID),
		Name:  strings.TrimSpace(req.Name),
		Role:  staffdomain.Role(strings.TrimSpace(req.Role)),
		CRO:   strings.TrimSpace(req.CRO),
		Phone: strings.TrimSpace(req.Phone),
		Email: strings.TrimSpace(req.Email),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeactivateStaff(c *gin.Context) {
	if err := s.staffSvc.Deactivate(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) ListStaff(c *gin.Context) {
	onlyActive := c.Query("only_active") != "false"
	resp, err := s.staffSvc.List(c.Request.Context(), onlyActive)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
