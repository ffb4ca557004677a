package api

import (
	"net/http"

	"agroalerta.app/internal/core/subscription"
	"agroalerta.app/internal/ports"
	"agroalerta.app/pkg/errors"
	"github.com/gin-gonic/gin"
)

// SubscriptionRequest represents the HTTP request for creating a subscription
type SubscriptionRequest struct {
	Email     string  `json:"email" form:"email" binding:"required,email"`
	Region    string  `json:"region" form:"region" binding:"required"`
	Latitude  float64 `json:"latitude" form:"latitude" binding:"required,gte=-90,lte=90"`
	Longitude float64 `json:"longitude" form:"longitude" binding:"required,gte=-180,lte=180"`
	Frequency string  `json:"frequency" form:"frequency" binding:"required,frequency"`
}

// SuccessResponse represents a successful HTTP response
type SuccessResponse struct {
	Message string `json:"message"`
}

// subscribe handles POST /api/subscriptions requests
func (s *HTTPServerAdapter) subscribe(c *gin.Context) {
	var httpReq SubscriptionRequest
	if err := c.ShouldBind(&httpReq); err != nil {
		s.logger.Debug("Subscription binding error", ports.F("error", err.Error()))
		s.handleError(c, errors.NewValidationError("invalid request format"))
		return
	}

	params := subscription.SubscribeParams{
		Email:     httpReq.Email,
		Region:    httpReq.Region,
		Latitude:  httpReq.Latitude,
		Longitude: httpReq.Longitude,
		Frequency: subscription.FrequencyFromString(httpReq.Frequency),
	}

	if err := s.subscriptionUseCase.Subscribe(c.Request.Context(), params); err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Subscrição criada. Email de confirmação enviado."})
}

// confirmSubscription handles GET /api/subscriptions/confirm/:token requests
func (s *HTTPServerAdapter) confirmSubscription(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		s.handleError(c, errors.NewValidationError("token parameter is required"))
		return
	}

	if err := s.subscriptionUseCase.ConfirmSubscription(c.Request.Context(), subscription.ConfirmParams{Token: token}); err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Subscrição confirmada."})
}

// unsubscribe handles GET /api/subscriptions/unsubscribe/:token requests
func (s *HTTPServerAdapter) unsubscribe(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		s.handleError(c, errors.NewValidationError("token parameter is required"))
		return
	}

	if err := s.subscriptionUseCase.Unsubscribe(c.Request.Context(), subscription.UnsubscribeParams{Token: token}); err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Subscrição cancelada."})
}
