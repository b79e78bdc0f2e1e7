package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	subscriptiondomain "github.com/odontocare/odontocare/internal/subscription/domain"
)

func (s *Server) GetSubscription(c *gin.Context) {
	resp, err := s.subscriptionSvc.Get(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type syncSubscriptionRequest struct {
	Provider               string     `json:"provider"`
	ProviderCustomerID     string     `json:"provider_customer_id"`
	ProviderSubscriptionID string     `json:"provider_subscription_id"`
	Status                 string     `json:"status"`
	CurrentPeriodEnd       *time.Time `json:"current_period_end"`
}

func (s *Server) SyncSubscription(c *gin.Context) {
	var req syncSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.subscriptionSvc.Sync(c.Request.Context(), subscriptiondomain.SyncRequest{
		Provider:               strings.TrimSpace(req.Provider),
		ProviderCustomerID:     strings.TrimSpace(req.ProviderCustomerID),
		ProviderSubscriptionID: strings.TrimSpace(req.ProviderSubscriptionID),
		Status:                 subscriptiondomain.Status(strings.TrimSpace(req.Status)),
		CurrentPeriodEnd:       req.CurrentPeriodEnd,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
