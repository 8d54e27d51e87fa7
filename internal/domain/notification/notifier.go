package notification

import (
	"context"
	"fmt"
	"time"
)

// Notifier builds events for domain happenings and hands them to a
// Submitter. Every method returns immediately.
type Notifier struct {
	out Submitter
}

func NewNotifier(out Submitter) *Notifier {
	return &Notifier{out: out}
}

func (n *Notifier) submit(ctx context.Context, ev Event) {
	if n == nil || n.out == nil {
		return
	}
	n.out.Submit(ctx, ev)
}

func (n *Notifier) BookingCreated(ctx context.Context, musicianID, bookingID, clientName string, eventDate time.Time) {
	n.submit(ctx, Event{
		UserID:            musicianID,
		Type:              TypeBookingCreated,
		Title:             "New booking request",
		Body:              fmt.Sprintf("%s wants to book you for %s.", clientName, eventDate.Format("Mon, Jan 2 2006")),
		Priority:          PriorityHigh,
		RelatedEntityType: "booking",
		RelatedEntityID:   bookingID,
		ActionURL:         "/bookings/" + bookingID,
		Data:              map[string]any{"booking_id": bookingID},
	})
}

func (n *Notifier) BookingConfirmed(ctx context.Context, clientID, bookingID, musicianName string) {
	n.submit(ctx, Event{
		UserID:            clientID,
		Type:              TypeBookingConfirmed,
		Title:             "Booking confirmed",
		Body:              fmt.Sprintf("%s confirmed your booking.", musicianName),
		Priority:          PriorityHigh,
		RelatedEntityType: "booking",
		RelatedEntityID:   bookingID,
		ActionURL:         "/bookings/" + bookingID,
		Data:              map[string]any{"booking_id": bookingID},
	})
}

func (n *Notifier) BookingCancelled(ctx context.Context, userID, bookingID, reason string) {
	body := "Your booking was cancelled."
	if reason != "" {
		body = "Your booking was cancelled. Reason: " + reason
	}
	n.submit(ctx, Event{
		UserID:            userID,
		Type:              TypeBookingCancelled,
		Title:             "Booking cancelled",
		Body:              body,
		Priority:          PriorityHigh,
		RelatedEntityType: "booking",
		RelatedEntityID:   bookingID,
		ActionURL:         "/bookings/" + bookingID,
		Data:              map[string]any{"booking_id": bookingID, "reason": reason},
	})
}

func (n *Notifier) PaymentReceived(ctx context.Context, userID, bookingID string, amountCents int64, currency string) {
	n.submit(ctx, Event{
		UserID:            userID,
		Type:              TypePaymentReceived,
		Title:             "Payment received",
		Body:              fmt.Sprintf("A payment of %s was received and is held until the gig is completed.", formatAmount(amountCents, currency)),
		Priority:          PriorityNormal,
		RelatedEntityType: "booking",
		RelatedEntityID:   bookingID,
		ActionURL:         "/bookings/" + bookingID,
		Data:              map[string]any{"booking_id": bookingID, "amount_cents": amountCents, "currency": currency},
	})
}

func (n *Notifier) PaymentReleased(ctx context.Context, musicianID, bookingID string, amountCents int64, currency string) {
	n.submit(ctx, Event{
		UserID:            musicianID,
		Type:              TypePaymentReleased,
		Title:             "Payment released",
		Body:              fmt.Sprintf("%s has been released to your bank account.", formatAmount(amountCents, currency)),
		Priority:          PriorityHigh,
		RelatedEntityType: "booking",
		RelatedEntityID:   bookingID,
		ActionURL:         "/earnings",
		Data:              map[string]any{"booking_id": bookingID, "amount_cents": amountCents, "currency": currency},
	})
}

func (n *Notifier) MessageReceived(ctx context.Context, recipientID, conversationID, senderName, preview string) {
	n.submit(ctx, Event{
		UserID:            recipientID,
		Type:              TypeMessageReceived,
		Title:             "New message from " + senderName,
		Body:              truncate(preview, 140),
		Priority:          PriorityNormal,
		RelatedEntityType: "conversation",
		RelatedEntityID:   conversationID,
		ActionURL:         "/messages/" + conversationID,
		Data:              map[string]any{"conversation_id": conversationID},
	})
}

func (n *Notifier) JobApplicationReceived(ctx context.Context, posterID, jobID, applicantName, jobTitle string) {
	n.submit(ctx, Event{
		UserID:            posterID,
		Type:              TypeJobApplicationReceived,
		Title:             "New application",
		Body:              fmt.Sprintf("%s applied to %q.", applicantName, jobTitle),
		RelatedEntityType: "job",
		RelatedEntityID:   jobID,
		ActionURL:         "/jobs/" + jobID + "/applications",
		Data:              map[string]any{"job_id": jobID},
	})
}

func (n *Notifier) JobApplicationShortlisted(ctx context.Context, musicianID, jobID, jobTitle string) {
	n.submit(ctx, Event{
		UserID:            musicianID,
		Type:              TypeJobApplicationShortlisted,
		Title:             "You've been shortlisted",
		Body:              fmt.Sprintf("Your application to %q was shortlisted.", jobTitle),
		Priority:          PriorityHigh,
		RelatedEntityType: "job",
		RelatedEntityID:   jobID,
		ActionURL:         "/jobs/" + jobID,
		Data:              map[string]any{"job_id": jobID},
	})
}

func (n *Notifier) AuditionScheduled(ctx context.Context, musicianID, jobID string, at time.Time, location string) {
	n.submit(ctx, Event{
		UserID:            musicianID,
		Type:              TypeAuditionScheduled,
		Title:             "Audition scheduled",
		Body:              fmt.Sprintf("Your audition is on %s at %s.", at.Format("Mon, Jan 2 at 3:04 PM"), location),
		Priority:          PriorityHigh,
		RelatedEntityType: "job",
		RelatedEntityID:   jobID,
		ActionURL:         "/jobs/" + jobID,
		Data:              map[string]any{"job_id": jobID, "scheduled_at": at.UTC().Format(time.RFC3339)},
	})
}

func (n *Notifier) RatingReceived(ctx context.Context, userID, bookingID string, stars int) {
	n.submit(ctx, Event{
		UserID:            userID,
		Type:              TypeRatingReceived,
		Title:             "You received a new rating",
		Body:              fmt.Sprintf("You were rated %d out of 5.", stars),
		Priority:          PriorityLow,
		RelatedEntityType: "booking",
		RelatedEntityID:   bookingID,
		ActionURL:         "/profile/reviews",
		Data:              map[string]any{"booking_id": bookingID, "rating": stars},
	})
}

func (n *Notifier) EventReminder(ctx context.Context, userID, bookingID, eventName string, startsAt time.Time) {
	n.submit(ctx, Event{
		UserID:            userID,
		Type:              TypeEventReminder,
		Title:             "Upcoming gig: " + eventName,
		Body:              fmt.Sprintf("Your gig starts %s.", startsAt.Format("Mon, Jan 2 at 3:04 PM")),
		Priority:          PriorityUrgent,
		RelatedEntityType: "booking",
		RelatedEntityID:   bookingID,
		ActionURL:         "/bookings/" + bookingID,
		Data:              map[string]any{"booking_id": bookingID},
	})
}

func (n *Notifier) ProposalReceived(ctx context.Context, clientID, proposalID, musicianName string) {
	n.submit(ctx, Event{
		UserID:            clientID,
		Type:              TypeProposalReceived,
		Title:             "New proposal",
		Body:              fmt.Sprintf("%s sent you a proposal.", musicianName),
		RelatedEntityType: "proposal",
		RelatedEntityID:   proposalID,
		ActionURL:         "/proposals/" + proposalID,
		Data:              map[string]any{"proposal_id": proposalID},
	})
}

func (n *Notifier) ProposalAccepted(ctx context.Context, musicianID, proposalID, clientName string) {
	n.submit(ctx, Event{
		UserID:            musicianID,
		Type:              TypeProposalAccepted,
		Title:             "Proposal accepted",
		Body:              fmt.Sprintf("%s accepted your proposal.", clientName),
		Priority:          PriorityHigh,
		RelatedEntityType: "proposal",
		RelatedEntityID:   proposalID,
		ActionURL:         "/proposals/" + proposalID,
		Data:              map[string]any{"proposal_id": proposalID},
	})
}

func formatAmount(cents int64, currency string) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	if currency == "" {
		currency = "USD"
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, cents/100, cents%100, currency)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
