// File: internal/usecase/reconcile_uc.go
package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"ssfi-membership-portal/internal/domain"
	"ssfi-membership-portal/internal/domain/model"
	"ssfi-membership-portal/internal/domain/ports/adapter"
	"ssfi-membership-portal/internal/domain/ports/repository"
	"ssfi-membership-portal/internal/infra/metrics"
)

// Compile-time check
var _ ReconcileUseCase = (*reconcileUC)(nil)

// WebhookOutcome tells the HTTP layer what happened. Replayed and Ignored
// deliveries are both acknowledged 2xx; only signature failures and store
// errors are not.
type WebhookOutcome struct {
	Ignored  bool
	Replayed bool
	Entry    *model.LedgerEntry
}

// ReconcileUseCase applies gateway payment confirmations to business records
// exactly once.
type ReconcileUseCase interface {
	HandleWebhook(ctx context.Context, rawBody []byte, signatureHeader string) (*WebhookOutcome, error)
}

type reconcileUC struct {
	decoder     adapter.WebhookDecoder
	locker      adapter.PaymentLocker
	ledger      repository.PaymentLedgerRepository
	memberships repository.MembershipRepository
	eventRegs   repository.EventRegistrationRepository
	registrants repository.RegistrantRepository
	tm          repository.TransactionManager
	log         *zerolog.Logger
}

func NewReconcileUseCase(
	decoder adapter.WebhookDecoder,
	locker adapter.PaymentLocker,
	ledger repository.PaymentLedgerRepository,
	memberships repository.MembershipRepository,
	eventRegs repository.EventRegistrationRepository,
	registrants repository.RegistrantRepository,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) *reconcileUC {
	return &reconcileUC{
		decoder:     decoder,
		locker:      locker,
		ledger:      ledger,
		memberships: memberships,
		eventRegs:   eventRegs,
		registrants: registrants,
		tm:          tm,
		log:         logger,
	}
}

// membershipTerm is how far a renewal pushes the expiry, measured from the
// confirmation time rather than the prior expiry. TODO(product): confirm the
// measured-from-now behavior; a double renewal before expiry currently
// forfeits the unused remainder.
const membershipTerm = 1 // years

const paymentLockTTL = 30 * time.Second

func (u *reconcileUC) HandleWebhook(ctx context.Context, rawBody []byte, signatureHeader string) (*WebhookOutcome, error) {
	if err := u.decoder.VerifySignature(rawBody, signatureHeader); err != nil {
		metrics.IncWebhook("invalid_signature")
		// Tampering or misconfiguration, not transient failure: the retry
		// would carry the same bad signature.
		u.log.Warn().Msg("webhook signature rejected")
		return nil, err
	}

	now := time.Now()
	conf, err := u.decoder.Decode(rawBody, now)
	if err != nil {
		metrics.IncWebhook("malformed")
		return nil, err
	}
	if conf == nil {
		// Unrecognized event type: acknowledge so the gateway stops
		// retrying something we do not care about.
		metrics.IncWebhook("ignored")
		return &WebhookOutcome{Ignored: true}, nil
	}

	if u.locker != nil {
		token, err := u.locker.TryLock(ctx, paymentLockKey(conf.GatewayPaymentID), paymentLockTTL)
		if err != nil {
			// Another delivery of the same payment is being processed;
			// surface retryable so the gateway redelivers.
			return nil, domain.ErrStoreUnavailable
		}
		defer func() { _ = u.locker.Unlock(ctx, paymentLockKey(conf.GatewayPaymentID), token) }()
	}

	// Fast path for replays: the gateway retries deliveries as a matter of
	// course, so an existing entry is normal, not exceptional.
	if prior, err := u.ledger.FindByGatewayPaymentID(ctx, repository.NoTX, conf.GatewayPaymentID); err == nil {
		metrics.IncWebhook("replay")
		return &WebhookOutcome{Replayed: true, Entry: prior}, nil
	} else if err != domain.ErrNotFound {
		return nil, err
	}

	entry := &model.LedgerEntry{
		ID:               ulid.Make().String(),
		GatewayPaymentID: conf.GatewayPaymentID,
		GatewayEventID:   conf.GatewayEventID,
		EventType:        conf.EventType,
		Purpose:          conf.Purpose,
		Amount:           conf.Amount,
		Currency:         conf.Currency,
		Subject:          conf.Subject,
		Outcome:          model.OutcomeApplied,
		ReceivedAt:       conf.ReceivedAt,
	}

	// Ledger insert and subject mutation are one atomic unit. A ledger row
	// without the mutation, or the reverse, is the failure mode this whole
	// component exists to prevent.
	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := u.ledger.Insert(ctx, tx, entry); err != nil {
			return err
		}
		return u.applySubject(ctx, tx, conf)
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			// Lost a race with a concurrent delivery; the unique constraint
			// rejected the duplicate. Answer with the winner's outcome.
			prior, ferr := u.ledger.FindByGatewayPaymentID(ctx, repository.NoTX, conf.GatewayPaymentID)
			if ferr != nil {
				return nil, ferr
			}
			metrics.IncWebhook("replay")
			return &WebhookOutcome{Replayed: true, Entry: prior}, nil
		}
		return nil, err
	}

	metrics.IncWebhook("applied")
	metrics.AddSettledAmount(conf.Currency, conf.Amount)
	u.log.Info().
		Str("gateway_payment_id", conf.GatewayPaymentID).
		Str("purpose", string(conf.Purpose)).
		Int64("amount", conf.Amount).
		Msg("payment reconciled")
	return &WebhookOutcome{Entry: entry}, nil
}

func (u *reconcileUC) applySubject(ctx context.Context, tx repository.Tx, conf *model.PaymentConfirmation) error {
	switch conf.Purpose {
	case model.PurposeEventRegistration:
		return u.eventRegs.AttachPayment(ctx, tx,
			conf.Subject.RegistrantID, conf.Subject.EventID,
			conf.GatewayPaymentID, conf.GatewayOrderID, conf.ReceivedAt)
	case model.PurposeMembershipRenewal:
		if _, err := u.registrants.FindByID(ctx, tx, conf.Subject.RegistrantID); err != nil {
			return err
		}
		expiry := conf.ReceivedAt.AddDate(membershipTerm, 0, 0)
		return u.memberships.SetExpiry(ctx, tx, conf.Subject.RegistrantID, expiry, conf.GatewayPaymentID)
	default:
		return domain.ErrUnknownPurpose
	}
}

func paymentLockKey(gatewayPaymentID string) string {
	return "payment_webhook:" + gatewayPaymentID
}
