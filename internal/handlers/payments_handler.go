package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zyvex/zyvex-go/internal/auth"
	internalaws "github.com/zyvex/zyvex-go/internal/aws"
	"github.com/zyvex/zyvex-go/internal/credentials"
	"github.com/zyvex/zyvex-go/internal/gateway"
	"github.com/zyvex/zyvex-go/internal/payments"
	"github.com/zyvex/zyvex-go/internal/service"
	"github.com/zyvex/zyvex-go/internal/validation"
)

// HandlerConfig groups dependencies for the payment routes.
type HandlerConfig struct {
	DynamoDBClient   internalaws.DynamoDBAPI
	CloudWatchClient internalaws.CloudWatchAPI // optional; metrics skipped when nil
	PaymentsTable    string
	CredentialsTable string
	MetricsNamespace string
	Gateway          gateway.OrderCreator
	Auth             auth.Provider
}

// RegisterPaymentRoutes registers the payment lifecycle API.
func RegisterPaymentRoutes(r *gin.Engine, cfg HandlerConfig) {
	v := validation.New()
	paymentStore := payments.NewStore(cfg.DynamoDBClient, cfg.PaymentsTable)
	credStore := credentials.NewStore(cfg.DynamoDBClient, cfg.CredentialsTable)

	var metrics service.MetricsRecorder
	if cfg.CloudWatchClient != nil {
		metrics = internalaws.NewMetricsPublisher(cfg.CloudWatchClient, cfg.MetricsNamespace)
	}

	svc := service.New(paymentStore, credStore, cfg.Gateway, metrics)
	requireUser := auth.RequireUser(cfg.Auth)

	r.POST("/payment", requireUser, func(c *gin.Context) {
		var req validation.InitiateRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			// BindAndValidate already wrote a 400
			return
		}

		res, serr := svc.InitiatePayment(c.Request.Context(), auth.CurrentUser(c), req)
		if serr != nil {
			writeError(c, serr)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "order": res.Order})
	})

	// signature is the authentication here; no session required
	r.POST("/payment/verify", func(c *gin.Context) {
		var req validation.VerifyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
			return
		}

		res, serr := svc.VerifyPayment(c.Request.Context(), req)
		if serr != nil {
			writeError(c, serr)
			return
		}
		body := gin.H{"success": true, "message": res.Message}
		if res.Payment != nil {
			body["payment"] = res.Payment
		}
		c.JSON(http.StatusOK, body)
	})

	r.GET("/payments", requireUser, func(c *gin.Context) {
		res, serr := svc.Payments(c.Request.Context(), auth.CurrentUser(c))
		if serr != nil {
			writeError(c, serr)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":     true,
			"payments":    res.Payments,
			"totalCount":  res.TotalCount,
			"totalAmount": res.TotalAmount,
		})
	})

	r.POST("/credentials", requireUser, func(c *gin.Context) {
		var req validation.CredentialsRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}

		res, serr := svc.SaveCredentials(c.Request.Context(), auth.CurrentUser(c), req)
		if serr != nil {
			writeError(c, serr)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Razorpay credentials saved successfully",
			"data":    res,
		})
	})

	r.GET("/credentials", requireUser, func(c *gin.Context) {
		res, serr := svc.GetCredentials(c.Request.Context(), auth.CurrentUser(c))
		if serr != nil {
			writeError(c, serr)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": res})
	})
}

// writeError renders a service failure in the uniform envelope.
func writeError(c *gin.Context, e *service.Error) {
	c.JSON(statusFor(e.Code), gin.H{
		"success": false,
		"code":    e.Code,
		"error":   e.Message,
	})
}

func statusFor(code service.ErrorCode) int {
	switch code {
	case service.CodeValidation, service.CodeSignatureMismatch:
		return http.StatusBadRequest
	case service.CodeAuth:
		return http.StatusUnauthorized
	case service.CodeNotConfigured, service.CodeNotFound:
		return http.StatusNotFound
	case service.CodeDependencyTimeout:
		return http.StatusGatewayTimeout
	case service.CodeGateway:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
