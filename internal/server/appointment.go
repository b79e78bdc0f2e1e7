package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	appointmentdomain "github.com/odontocare/odontocare/internal/appointment/domain"
)

type bookAppointmentRequest struct {
	PatientID string    `json:"patient_id"`
	StaffID   string    `json:"staff_id"`
	StartsAt  time.Time `json:"starts_at"`
	EndsAt    time.Time `json:"ends_at"`
	Procedure string    `json:"procedure"`
	Notes     string    `json:"notes"`
}

func (s *Server) BookAppointment(c *gin.Context) {
	var req bookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.appointmentSvc.Book(c.Request.Context(), appointmentdomain.BookRequest{
		PatientID: strings.TrimSpace(req.PatientID),
		StaffID:   strings.TrimSpace(req.StaffID),
		StartsAt:  req.StartsAt,
		EndsAt:    req.EndsAt,
		Procedure: strings.TrimSpace(req.Procedure),
		Notes:     req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type rescheduleAppointmentRequest struct {
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}

func (s *Server) RescheduleAppointment(c *gin.Context) {
	var req rescheduleAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.appointmentSvc.Reschedule(c.Request.Context(), appointmentdomain.RescheduleRequest{
		ID:       strings.TrimSpace(c.Param("id")),
		StartsAt: req.StartsAt,
		EndsAt:   req.EndsAt,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type setAppointmentStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) SetAppointmentStatus(c *gin.Context) {
	var req setAppointmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	status := appointmentdomain.Status(strings.TrimSpace(req.Status))
	if err := s.appointmentSvc.SetStatus(c.Request.Context(), strings.TrimSpace(c.Param("id")), status); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) CancelAppointment(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.appointmentSvc.SetStatus(c.Request.Context(), id, appointmentdomain.StatusCancelled); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) ListAppointments(c *gin.Context) {
	var query struct {
		Day     string `form:"day"`
		StaffID string `form:"staff_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	day := time.Now().UTC()
	if trimmed := strings.TrimSpace(query.Day); trimmed != "" {
		parsed, err := time.Parse(dateOnlyLayout, trimmed)
		if err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		day = parsed
	}

	resp, err := s.appointmentSvc.ListDay(c.Request.Context(), appointmentdomain.ListDayRequest{
		Day:     day,
		StaffID: strings.TrimSpace(query.StaffID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
