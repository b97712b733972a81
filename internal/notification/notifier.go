// Package notification delivers best-effort booking notifications: email to
// the visitor and web push to subscribed staff browsers. Nothing here ever
// returns an error into the booking workflow; failures are logged and
// dropped.
package notification

import (
	"log"

	"studio-booking-backend/internal/model"
)

// Service fans booking events out to the configured channels. A nil Mailer
// or nil WorkerPool disables the respective channel.
type Service struct {
	mailer *Mailer
	pool   *WorkerPool
}

// NewService creates a notification service.
func NewService(mailer *Mailer, pool *WorkerPool) *Service {
	return &Service{mailer: mailer, pool: pool}
}

// BookingRequested notifies the visitor that their request was received and
// pings subscribed staff about the new pending request.
func (s *Service) BookingRequested(bookings []model.Booking) {
	if len(bookings) == 0 {
		return
	}

	if s.pool != nil {
		for _, b := range bookings {
			s.pool.Dispatch(b.ID)
		}
	}

	if s.mailer != nil {
		go func(bookings []model.Booking) {
			if err := s.mailer.SendRequestReceived(bookings); err != nil {
				log.Printf("failed to send booking request email: %v", err)
			}
		}(bookings)
	}
}

// BookingDecision notifies the visitor about an approval or decline.
func (s *Service) BookingDecision(booking model.Booking, status model.BookingStatus, reason string) {
	if s.mailer != nil {
		go func() {
			if err := s.mailer.SendDecision(booking, status, reason); err != nil {
				log.Printf("failed to send booking %s email: %v", status, err)
			}
		}()
	}
}
