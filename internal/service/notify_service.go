package service

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"vroomgo/internal/config"
	"vroomgo/internal/db"
)

// NotifyService sends booking emails via SendGrid and SMS via Twilio. Both
// providers are optional: with no credentials configured the service only
// logs. Delivery runs in a goroutine so the booking flow never waits on a
// provider.
type NotifyService struct {
	cfg    *config.Config
	logger zerolog.Logger
}

func NewNotifyService(cfg *config.Config, logger zerolog.Logger) *NotifyService {
	return &NotifyService{cfg: cfg, logger: logger}
}

func (s *NotifyService) BookingCreated(booking db.Booking, vehicle *db.Vehicle) {
	subject := fmt.Sprintf("Your VroomGo booking is received - %s", booking.ID)
	body := fmt.Sprintf(
		"Hello %s,\n\nYour booking with VroomGo is pending confirmation.\n\n"+
			"Booking Details:\n"+
			"Booking ID: %s\n"+
			"Vehicle: %s\n"+
			"Pick-up: %s\n"+
			"Drop-off: %s\n"+
			"Total: %d\n\n"+
			"Thank you for choosing VroomGo.",
		booking.Customer.FirstName,
		booking.ID,
		vehicleLabel(vehicle),
		booking.StartTime.Format("02 Jan 2006 15:04 MST"),
		booking.EndTime.Format("02 Jan 2006 15:04 MST"),
		booking.TotalPrice,
	)
	sms := fmt.Sprintf("VroomGo: booking %s received. Pick-up: %s. Details in your email.",
		booking.ID, booking.StartTime.Format("02/01 15:04"))

	s.dispatch(booking, subject, body, sms)
}

func (s *NotifyService) BookingStatusChanged(booking db.Booking, vehicle *db.Vehicle, newStatus string) {
	subject := fmt.Sprintf("Your VroomGo booking is %s - %s", newStatus, booking.ID)
	body := fmt.Sprintf(
		"Hello %s,\n\nYour booking with VroomGo is now %s.\n\n"+
			"Booking ID: %s\n"+
			"Vehicle: %s\n"+
			"Pick-up: %s\n"+
			"Drop-off: %s\n\n"+
			"Thank you for choosing VroomGo.",
		booking.Customer.FirstName,
		newStatus,
		booking.ID,
		vehicleLabel(vehicle),
		booking.StartTime.Format("02 Jan 2006 15:04 MST"),
		booking.EndTime.Format("02 Jan 2006 15:04 MST"),
	)
	sms := fmt.Sprintf("VroomGo: booking %s is now %s. Pick-up: %s.",
		booking.ID, newStatus, booking.StartTime.Format("02/01 15:04"))

	s.dispatch(booking, subject, body, sms)
}

func (s *NotifyService) dispatch(booking db.Booking, subject, body, sms string) {
	go func() {
		if err := s.sendEmail(booking.Customer.Email, booking.Customer.FirstName, subject, body); err != nil {
			s.logger.Warn().Err(err).Str("booking_id", booking.ID).Msg("booking email failed")
		}
		if err := s.sendSMS(booking.Customer.Phone, sms); err != nil {
			s.logger.Warn().Err(err).Str("booking_id", booking.ID).Msg("booking SMS failed")
		}
	}()
}

func (s *NotifyService) sendEmail(toEmail, toName, subject, body string) error {
	if s.cfg.SendgridAPIKey == "" || s.cfg.SendgridFromEmail == "" {
		s.logger.Debug().Msg("sendgrid not configured, skipping email")
		return nil
	}

	from := mail.NewEmail(s.cfg.SendgridFromName, s.cfg.SendgridFromEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, body, "")

	client := sendgrid.NewSendClient(s.cfg.SendgridAPIKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("sendgrid send failed: %w", err)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned status %d: %s", response.StatusCode, response.Body)
	}
	return nil
}

func (s *NotifyService) sendSMS(toNumber, message string) error {
	if s.cfg.TwilioAccountSID == "" || s.cfg.TwilioAuthToken == "" || s.cfg.TwilioFromNumber == "" {
		s.logger.Debug().Msg("twilio not configured, skipping SMS")
		return nil
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: s.cfg.TwilioAccountSID,
		Password: s.cfg.TwilioAuthToken,
	})

	params := &openapi.CreateMessageParams{}
	params.SetTo(toNumber)
	params.SetFrom(s.cfg.TwilioFromNumber)
	params.SetBody(message)

	if _, err := client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("twilio send failed: %w", err)
	}
	return nil
}

func vehicleLabel(vehicle *db.Vehicle) string {
	if vehicle == nil {
		return "Unknown Vehicle"
	}
	return vehicle.Name
}
