package api

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v78"

	"vroomgo/internal/db"
	"vroomgo/internal/repository"
	"vroomgo/internal/service"
)

const webhookSecret = "whsec_test"

func signedWebhookRequest(t *testing.T, payload string) *http.Request {
	t.Helper()
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(webhookSecret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)

	req := httptest.NewRequest(http.MethodPost, "/api/stripe/webhook", bytes.NewBufferString(payload))
	req.Header.Set("Stripe-Signature", fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil))))
	return req
}

func eventPayload(eventType, objectJSON string) string {
	return fmt.Sprintf(`{"id":"evt_test","object":"event","api_version":%q,"type":%q,"data":{"object":%s}}`,
		stripe.APIVersion, eventType, objectJSON)
}

func newWebhookFixture(t *testing.T) (*StripeWebhookHandler, *repository.MemoryStore, db.Booking) {
	t.Helper()
	store := repository.NewMemoryStore()
	svc := service.NewBookingService(store, store.Vehicles(), nil, nil, zerolog.Nop())
	handler := NewStripeWebhookHandler(webhookSecret, svc, zerolog.Nop())

	now := time.Now().UTC()
	booking := db.Booking{
		ID:              uuid.NewString(),
		VehicleID:       uuid.NewString(),
		UserID:          "user-1",
		StartTime:       now.Add(24 * time.Hour),
		EndTime:         now.Add(26 * time.Hour),
		TotalPrice:      200,
		Status:          db.StatusPending,
		PaymentStatus:   db.PaymentPending,
		StripeSessionID: "cs_test_123",
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	require.NoError(t, store.CreateIfAvailable(context.Background(), &booking))
	return handler, store, booking
}

func TestWebhookCheckoutCompleted(t *testing.T) {
	handler, store, booking := newWebhookFixture(t)

	payload := eventPayload("checkout.session.completed",
		`{"id":"cs_test_123","object":"checkout.session"}`)
	rec := httptest.NewRecorder()
	handler.HandleWebhook(rec, signedWebhookRequest(t, payload))
	require.Equal(t, http.StatusOK, rec.Code)

	stored, err := store.GetByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, db.PaymentPaid, stored.PaymentStatus)
}

func TestWebhookChargeRefunded(t *testing.T) {
	handler, store, booking := newWebhookFixture(t)
	require.NoError(t, store.UpdatePaymentStatus(context.Background(), booking.ID, db.PaymentPaid))

	// The booking id rides on the charge metadata, inherited from the
	// payment intent created with the checkout session.
	payload := eventPayload("charge.refunded",
		fmt.Sprintf(`{"id":"ch_test_1","object":"charge","metadata":{"booking_id":%q}}`, booking.ID))
	rec := httptest.NewRecorder()
	handler.HandleWebhook(rec, signedWebhookRequest(t, payload))
	require.Equal(t, http.StatusOK, rec.Code)

	stored, err := store.GetByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, db.PaymentRefunded, stored.PaymentStatus)
}

func TestWebhookChargeRefundedWithoutBookingID(t *testing.T) {
	handler, store, booking := newWebhookFixture(t)
	require.NoError(t, store.UpdatePaymentStatus(context.Background(), booking.ID, db.PaymentPaid))

	payload := eventPayload("charge.refunded", `{"id":"ch_test_1","object":"charge"}`)
	rec := httptest.NewRecorder()
	handler.HandleWebhook(rec, signedWebhookRequest(t, payload))
	require.Equal(t, http.StatusOK, rec.Code)

	stored, err := store.GetByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, db.PaymentPaid, stored.PaymentStatus)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	handler, store, booking := newWebhookFixture(t)

	payload := eventPayload("checkout.session.completed",
		`{"id":"cs_test_123","object":"checkout.session"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/stripe/webhook", bytes.NewBufferString(payload))
	req.Header.Set("Stripe-Signature", "t=1,v1=deadbeef")
	rec := httptest.NewRecorder()
	handler.HandleWebhook(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	stored, err := store.GetByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, db.PaymentPending, stored.PaymentStatus)
}
