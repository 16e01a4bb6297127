package checkout

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/merchkit/storeadmin/internal/domain"
	"github.com/merchkit/storeadmin/internal/webserver"
	"github.com/merchkit/storeadmin/pkg/common"
)

const (
	// SignatureHeader carries the hex HMAC-SHA256 of the raw body.
	SignatureHeader = "X-Webhook-Signature"

	// EventCheckoutCompleted settles the referenced session.
	EventCheckoutCompleted = "checkout.completed"

	maxWebhookBody = 64 * 1024
)

var fastJson = jsoniter.ConfigCompatibleWithStandardLibrary

type webhookEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		SessionToken string `json:"session_token"`
		Phone        string `json:"phone"`
		Address      string `json:"address"`
	} `json:"data"`
}

type checkoutRequest struct {
	ProductIDs []string `json:"product_ids"`
}

// RegisterRoutes attaches the storefront checkout and the payment
// webhook. Both are public endpoints, outside the admin surface.
func (s *Service) RegisterRoutes() {
	webserver.PubPOST("/api/:store_id/checkout", s.handleCheckout)
	webserver.PubPOST("/api/payments/webhook", s.handleWebhook)
}

func writeError(c echo.Context, status int, code, message string) error {
	return c.JSON(status, map[string]any{"code": code, "message": message})
}

func (s *Service) handleCheckout(c echo.Context) error {
	sid := common.ParseInt64(c.Param("store_id"), 0)
	if sid <= 0 {
		return writeError(c, http.StatusBadRequest, "INVALID_ID", "Invalid store ID")
	}
	var count int64
	s.db.Model(&domain.Store{}).Where("id = ?", sid).Count(&count)
	if count == 0 {
		return writeError(c, http.StatusNotFound, "STORE_NOT_FOUND", "Store not found")
	}

	var req checkoutRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse checkout parameters")
	}
	ids := make([]int64, 0, len(req.ProductIDs))
	for _, raw := range req.ProductIDs {
		if id := common.ParseInt64(strings.TrimSpace(raw), 0); id > 0 {
			ids = append(ids, id)
		}
	}

	session, err := s.CreateSession(c.Request().Context(), sid, ids)
	switch {
	case errors.Is(err, ErrNoProducts):
		return writeError(c, http.StatusBadRequest, "EMPTY_CART", "Product ids are required")
	case errors.Is(err, ErrUnknownProducts):
		return writeError(c, http.StatusBadRequest, "UNKNOWN_PRODUCTS", "Some products are unavailable")
	case err != nil:
		return writeError(c, http.StatusInternalServerError, "CHECKOUT_ERROR", "Failed to open checkout session")
	}

	return c.JSON(http.StatusOK, session)
}

// verifySignature checks the HMAC-SHA256 hex signature over body.
func verifySignature(body []byte, signature, secret string) bool {
	if signature == "" || secret == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(strings.TrimSpace(signature))))
}

func (s *Service) handleWebhook(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to read webhook body")
	}

	secret := s.settings.GetSettingsStringValue("payment", "webhook_secret")
	if secret == "" {
		zap.L().Warn("webhook received but no payment secret configured")
		return writeError(c, http.StatusServiceUnavailable, "PAYMENT_NOT_CONFIGURED", "Payment webhook secret is not configured")
	}
	if !verifySignature(body, c.Request().Header.Get(SignatureHeader), secret) {
		return writeError(c, http.StatusUnauthorized, "INVALID_SIGNATURE", "Webhook signature verification failed")
	}

	var event webhookEvent
	if err := fastJson.Unmarshal(body, &event); err != nil {
		return writeError(c, http.StatusBadRequest, "INVALID_PAYLOAD", "Unable to parse webhook payload")
	}
	if event.Type != EventCheckoutCompleted {
		return c.JSON(http.StatusOK, map[string]any{"ignored": true})
	}

	// Without the dedupe store the IsPaid check below still blocks
	// double settlement, so a broken store degrades instead of failing.
	if s.dedupe != nil {
		seen, err := s.dedupe.Seen(event.ID)
		if err != nil {
			zap.L().Error("webhook dedupe check failed", zap.Error(err))
			return writeError(c, http.StatusInternalServerError, "DEDUPE_ERROR", "Failed to record webhook event")
		}
		if seen {
			return c.JSON(http.StatusOK, map[string]any{"duplicate": true})
		}
	}

	ctx := c.Request().Context()
	order, err := s.orderRepo.GetBySessionToken(ctx, event.Data.SessionToken)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return writeError(c, http.StatusNotFound, "ORDER_NOT_FOUND", "No order for this checkout session")
	} else if err != nil {
		return writeError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load order")
	}
	if order.IsPaid {
		return c.JSON(http.StatusOK, map[string]any{"already_paid": true})
	}

	phone := strings.TrimSpace(event.Data.Phone)
	address := strings.TrimSpace(event.Data.Address)
	if err := s.settle(ctx, order, phone, address); err != nil {
		zap.L().Error("failed to settle order", zap.Int64("order_id", order.ID), zap.Error(err))
		return writeError(c, http.StatusInternalServerError, "SETTLE_ERROR", "Failed to settle order")
	}

	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}
