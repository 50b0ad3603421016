package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/webhook"

	"vroomgo/internal/db"
	"vroomgo/internal/service"
)

type StripeWebhookHandler struct {
	webhookSecret string
	bookings      *service.BookingService
	logger        zerolog.Logger
}

func NewStripeWebhookHandler(webhookSecret string, bookings *service.BookingService, logger zerolog.Logger) *StripeWebhookHandler {
	return &StripeWebhookHandler{
		webhookSecret: webhookSecret,
		bookings:      bookings,
		logger:        logger,
	}
}

func (h *StripeWebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	const maxBodyBytes = int64(65536)
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.Error().Err(err).Msg("error reading webhook body")
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	sigHeader := r.Header.Get("Stripe-Signature")
	event, err := webhook.ConstructEvent(payload, sigHeader, h.webhookSecret)
	if err != nil {
		h.logger.Warn().Err(err).Msg("webhook signature verification failed")
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil || sess.ID == "" {
			h.logger.Warn().Err(err).Msg("bad checkout.session payload")
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if err := h.bookings.SettlePaymentBySession(r.Context(), sess.ID, db.PaymentPaid); err != nil {
			h.logger.Error().Err(err).Str("session_id", sess.ID).Msg("could not record payment")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

	case "charge.refunded":
		var charge stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
			h.logger.Warn().Err(err).Msg("bad charge payload")
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		// Refunds initiated by the service are recorded directly; this path
		// covers refunds issued from the Stripe dashboard. The booking id is
		// attached to the payment intent at session creation and inherited by
		// its charges.
		bookingID := charge.Metadata["booking_id"]
		if bookingID == "" {
			h.logger.Warn().Str("charge_id", charge.ID).Msg("refunded charge carries no booking id")
			break
		}
		if err := h.bookings.SettlePayment(r.Context(), bookingID, db.PaymentRefunded); err != nil {
			h.logger.Error().Err(err).Str("booking_id", bookingID).Msg("could not record refund")
		}

	default:
		h.logger.Debug().Str("event_type", string(event.Type)).Msg("unhandled stripe event")
	}

	w.WriteHeader(http.StatusOK)
}
