package billing

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/toolhunt-ai/backend/pkg/response"
)

// Payment provider events we act on. Anything else is acknowledged and ignored.
const (
	EventSubscriptionActivated = "subscription.activated"
	EventSubscriptionCanceled  = "subscription.canceled"
)

// WebhookPayload is the body of POST /webhooks/payment.
type WebhookPayload struct {
	Event string `json:"event"`
	Email string `json:"email"`
}

// SubscriberStore flips the subscriber flag for an account.
type SubscriberStore interface {
	SetProByEmail(ctx context.Context, email string, pro bool) (int64, error)
}

// WebhookHandler handles payment provider webhooks. Requests are
// authenticated by an HMAC-SHA256 signature over the raw body, not by a
// session.
type WebhookHandler struct {
	store  SubscriberStore
	secret []byte
	logger *zap.Logger
}

// NewWebhookHandler creates a payment webhook handler.
func NewWebhookHandler(store SubscriberStore, secret string, logger *zap.Logger) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{store: store, secret: []byte(secret), logger: logger}
}

// PaymentEvent handles POST /webhooks/payment.
func (h *WebhookHandler) PaymentEvent(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		response.BadRequest(c, "unreadable body")
		return
	}

	if len(h.secret) > 0 {
		sig := c.GetHeader("X-Webhook-Signature")
		if !h.verifySignature(body, sig) {
			response.Unauthorized(c, "invalid signature")
			return
		}
	}

	var payload WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		response.BadRequest(c, "invalid payload")
		return
	}
	if payload.Email == "" {
		response.BadRequest(c, "email required")
		return
	}

	var pro bool
	switch payload.Event {
	case EventSubscriptionActivated:
		pro = true
	case EventSubscriptionCanceled:
		pro = false
	default:
		// Unknown events are acknowledged so the provider stops retrying.
		h.logger.Debug("ignoring payment event", zap.String("event", payload.Event))
		response.OK(c, gin.H{"ignored": true})
		return
	}

	n, err := h.store.SetProByEmail(c.Request.Context(), payload.Email, pro)
	if err != nil {
		h.logger.Error("update subscriber failed", zap.Error(err), zap.String("event", payload.Event))
		response.Internal(c, "failed to process event")
		return
	}
	if n == 0 {
		// No account for this email yet; the flag applies when they register
		// and the provider replays, so acknowledge rather than error.
		h.logger.Warn("payment event for unknown email", zap.String("event", payload.Event))
	}

	h.logger.Info("payment event processed", zap.String("event", payload.Event), zap.Bool("pro", pro))
	response.OK(c, gin.H{"processed": true})
}

func (h *WebhookHandler) verifySignature(body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, h.secret)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
