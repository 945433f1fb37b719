package handler

import (
	"errors"
	"io"
	"net/http"

	"academy/internal/domain"
	"academy/internal/logging"
	"academy/internal/service"
	"academy/pkg/payment"

	"github.com/gin-gonic/gin"
)

const maxWebhookBody = 64 << 10

type PaymentWebhookHandler struct {
	provider payment.Provider
	verifier *service.VerifierService
}

func NewPaymentWebhookHandler(provider payment.Provider, verifier *service.VerifierService) *PaymentWebhookHandler {
	return &PaymentWebhookHandler{provider: provider, verifier: verifier}
}

// Handle authenticates a processor notification and settles the payment it names. The payload
// only identifies the payment; status and amounts are re-read from the processor.
func (h *PaymentWebhookHandler) Handle(c *gin.Context) {
	if h.provider == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": domain.ErrConfiguration.Error()})
		return
	}
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	log := logging.Ctx(c.Request.Context())

	ref, err := h.provider.ParseWebhook(body, c.Request.Header)
	switch {
	case errors.Is(err, payment.ErrIgnoredEvent):
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	case errors.Is(err, payment.ErrInvalidSignature):
		log.Warn().Err(err).Str("ip", c.ClientIP()).Msg("rejected webhook with invalid signature")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	case errors.Is(err, payment.ErrMisconfigured):
		log.Error().Msg("webhook received but no webhook secret is configured")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": domain.ErrConfiguration.Error()})
		return
	case err != nil:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	out, err := h.verifier.VerifyAndSettle(c.Request.Context(), ref, service.Caller{Trusted: true, IP: c.ClientIP()})
	if err != nil {
		// Acknowledge outcomes a redelivery cannot change; anything else is retried by the processor.
		if errors.Is(err, domain.ErrPaymentNotCompleted) || errors.Is(err, domain.ErrInvalidPaymentMetadata) {
			log.Warn().Err(err).Str("reference", ref).Msg("webhook did not settle payment")
			c.JSON(http.StatusOK, gin.H{"received": true, "settled": false})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true, "settled": true, "tokens_credited": out.TokensCredited})
}
