package notification

import (
	"fmt"
	"io"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"gopkg.in/gomail.v2"

	"studio-booking-backend/config"
	"studio-booking-backend/internal/model"
)

const slotTimeFormat = "Monday, January 2 2006 · 15:04"

// MailSender abstracts the SMTP dial-and-send so tests can capture outgoing
// messages.
type MailSender interface {
	Send(m *gomail.Message) error
}

type smtpSender struct {
	dialer *gomail.Dialer
}

func (s *smtpSender) Send(m *gomail.Message) error {
	return s.dialer.DialAndSend(m)
}

// Mailer composes and sends visitor-facing booking emails.
type Mailer struct {
	cfg    config.MailConfig
	loc    *time.Location
	sender MailSender
}

// NewMailer creates a Mailer backed by a real SMTP dialer.
func NewMailer(cfg config.MailConfig, loc *time.Location) *Mailer {
	return &Mailer{
		cfg:    cfg,
		loc:    loc,
		sender: &smtpSender{dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)},
	}
}

// SendRequestReceived emails the visitor a summary of the slots they
// requested and the hold window.
func (m *Mailer) SendRequestReceived(bookings []model.Booking) error {
	if len(bookings) == 0 {
		return nil
	}
	first := bookings[0]

	lines := []string{
		fmt.Sprintf("Hi %s,", first.VisitorName),
		"",
		"Thanks for requesting a session at the studio. We will confirm your booking soon.",
		"",
	}
	if len(bookings) == 1 {
		lines = append(lines, fmt.Sprintf("Reference: %s", first.ID))
	} else {
		refs := make([]string, len(bookings))
		for i, b := range bookings {
			refs[i] = shortID(b.ID)
		}
		lines = append(lines, fmt.Sprintf("References: %s", strings.Join(refs, ", ")))
	}
	lines = append(lines, "", "Requested slot(s):")
	for _, b := range bookings {
		if b.Slot == nil {
			lines = append(lines, "- Slot details unavailable")
			continue
		}
		lines = append(lines, fmt.Sprintf("- %s – %s",
			b.Slot.StartAt.In(m.loc).Format(slotTimeFormat),
			b.Slot.EndAt.In(m.loc).Format("15:04")))
	}
	lines = append(lines,
		"",
		"We'll hold this time for up to 2 hours while pending approval.",
		"",
		"The Studio Team",
	)

	msg := m.newMessage(first.VisitorEmail, "Booking request received", strings.Join(lines, "\n"))
	return m.sender.Send(msg)
}

// SendDecision emails the visitor about an approval or decline. Approvals
// carry a calendar invite attachment.
func (m *Mailer) SendDecision(booking model.Booking, status model.BookingStatus, reason string) error {
	subject := "Update on your studio booking"
	lines := []string{fmt.Sprintf("Hi %s,", booking.VisitorName), ""}

	if status == model.BookingApproved {
		subject = "Your studio session is confirmed"
		lines = append(lines, "Great news — your session is confirmed!")
	} else {
		lines = append(lines, "Thanks for your request. Unfortunately, we couldn't confirm this slot.")
	}

	if booking.Slot != nil {
		lines = append(lines, "", fmt.Sprintf("Slot: %s – %s",
			booking.Slot.StartAt.In(m.loc).Format(slotTimeFormat),
			booking.Slot.EndAt.In(m.loc).Format("15:04")))
	}
	if status == model.BookingDeclined && reason != "" {
		lines = append(lines, "", fmt.Sprintf("Reason: %s", reason))
	}
	lines = append(lines, "", "The Studio Team")

	msg := m.newMessage(booking.VisitorEmail, subject, strings.Join(lines, "\n"))

	if status == model.BookingApproved && booking.Slot != nil {
		invite := buildCalendarInvite(booking)
		msg.Attach("session.ics", gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := io.WriteString(w, invite)
			return err
		}))
	}

	return m.sender.Send(msg)
}

func (m *Mailer) newMessage(to, subject, body string) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	return msg
}

// buildCalendarInvite renders an ICS event for the approved slot.
func buildCalendarInvite(booking model.Booking) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodRequest)

	event := cal.AddEvent(booking.ID)
	event.SetDtStampTime(time.Now().UTC())
	event.SetStartAt(booking.Slot.StartAt)
	event.SetEndAt(booking.Slot.EndAt)
	event.SetSummary("Photo studio session")
	event.SetDescription(fmt.Sprintf("Session for %s (booking %s)", booking.VisitorName, shortID(booking.ID)))

	return cal.Serialize()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
