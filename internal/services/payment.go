package services

import (
	"context"
	"fmt"
	"log"

	"github.com/shopspring/decimal"
	"github.com/yukikurage/listing-api/internal/metrics"
	"github.com/yukikurage/listing-api/internal/models"
	"github.com/yukikurage/listing-api/internal/notify"
	"github.com/yukikurage/listing-api/internal/repository"
	"gorm.io/datatypes"
)

// RecordPaymentInput represents a sponsor marking a submission as paid or unpaid
type RecordPaymentInput struct {
	ActorID        string
	SubmissionID   string
	Amount         decimal.Decimal
	IsPaid         bool
	PaymentDetails datatypes.JSON
}

// PaymentRecorder stores payment status on submissions and keeps the
// listing's payment counter in step.
type PaymentRecorder struct {
	repos  *repository.Repositories
	sender notify.Sender
}

// NewPaymentRecorder creates a PaymentRecorder.
func NewPaymentRecorder(repos *repository.Repositories, sender notify.Sender) *PaymentRecorder {
	return &PaymentRecorder{repos: repos, sender: sender}
}

// Record updates the submission's payment fields. When isPaid is true the
// listing's total_payments_made is incremented in the same transaction and
// the applicant gets one confirmation email.
//
// TODO: re-marking a paid submission increments the counter again; make this
// transition-based once product confirms the intended semantics.
func (p *PaymentRecorder) Record(ctx context.Context, input RecordPaymentInput) (*models.Submission, error) {
	actor, err := loadActor(ctx, p.repos.Users, input.ActorID)
	if err != nil {
		return nil, err
	}

	submission, err := p.repos.Submissions.FindByID(ctx, input.SubmissionID, "Listing", "User")
	if err != nil {
		return nil, storeError("load submission", err, fmt.Errorf("%w: id=%s", ErrSubmissionNotFound, input.SubmissionID))
	}
	if submission.Listing == nil {
		return nil, fmt.Errorf("%w: listing of submission %s", ErrNotFound, submission.ID)
	}

	if actor.CurrentSponsorID == nil || submission.Listing.SponsorID == nil ||
		*actor.CurrentSponsorID != *submission.Listing.SponsorID {
		return nil, ErrNotListingSponsor
	}

	err = p.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := tx.Submissions.UpdatePayment(ctx, submission.ID, input.IsPaid, input.PaymentDetails); err != nil {
			return err
		}
		if input.IsPaid {
			return tx.Listings.IncrementPaymentsMade(ctx, submission.ListingID)
		}
		return nil
	})
	if err != nil {
		return nil, storeError("record payment", err, ErrSubmissionNotFound)
	}

	if input.IsPaid {
		metrics.PaymentsRecorded.Inc()
		p.sendConfirmation(ctx, submission, input.Amount)
	}

	updated, err := p.repos.Submissions.FindByID(ctx, submission.ID)
	if err != nil {
		return nil, storeError("reload submission", err, ErrSubmissionNotFound)
	}
	return updated, nil
}

func (p *PaymentRecorder) sendConfirmation(ctx context.Context, submission *models.Submission, amount decimal.Decimal) {
	if submission.User == nil || submission.User.Email == "" {
		log.Printf("WARN: submission %s has no applicant email, payment confirmation skipped", submission.ID)
		return
	}

	msg, err := notify.PaymentReceived(submission.User.Email, notify.PaymentReceivedData{
		Name:          submission.User.FirstName,
		ListingName:   submission.Listing.Title,
		Amount:        amount.String(),
		TokenName:     submission.Listing.Token,
		WalletAddress: submission.User.PublicKey,
		Username:      submission.User.Username,
	})
	if err == nil {
		err = p.sender.Send(ctx, msg)
	}
	if err != nil {
		metrics.NotificationsFailed.WithLabelValues(notify.TemplatePaymentReceived).Inc()
		log.Printf("ERROR: payment confirmation for submission %s failed: %v", submission.ID, err)
		return
	}
	metrics.NotificationsSent.WithLabelValues(notify.TemplatePaymentReceived).Inc()
}
