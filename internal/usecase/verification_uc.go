// File: internal/usecase/verification_uc.go
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"ssfi-membership-portal/internal/domain"
	"ssfi-membership-portal/internal/domain/model"
	"ssfi-membership-portal/internal/domain/ports/adapter"
	"ssfi-membership-portal/internal/domain/ports/repository"
	"ssfi-membership-portal/internal/infra/metrics"
)

// Compile-time check
var _ VerificationUseCase = (*verificationUC)(nil)

// RateLimiter throttles OTP issuance per registrant. Satisfied by the Redis
// rate limiter; unit tests plug in a permissive fake.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// VerificationUseCase drives registrants from unverified to verified through
// an OTP challenge.
type VerificationUseCase interface {
	// IssueCode generates a fresh code, invalidates prior ones for the same
	// purpose, and dispatches it through the delivery adapter. Delivery
	// failures do not roll back issuance; the user can request a resend.
	IssueCode(ctx context.Context, registrantID string, purpose model.CodePurpose, now time.Time) (*model.OneTimeCode, error)

	// Verify checks the submitted code and, on success, consumes it and
	// flips the registrant to verified in one transaction.
	Verify(ctx context.Context, registrantID, submittedCode string, now time.Time) error
}

// VerificationConfig carries the tunables observed in operation: a ten-minute
// code lifetime and a small per-registrant issuance budget.
type VerificationConfig struct {
	CodeTTL         time.Duration
	IssueLimit      int
	IssueWindow     time.Duration
	DeliveryTimeout time.Duration
}

func (c *VerificationConfig) normalize() {
	if c.CodeTTL <= 0 {
		c.CodeTTL = 10 * time.Minute
	}
	if c.IssueLimit <= 0 {
		c.IssueLimit = 5
	}
	if c.IssueWindow <= 0 {
		c.IssueWindow = time.Hour
	}
	if c.DeliveryTimeout <= 0 {
		c.DeliveryTimeout = 10 * time.Second
	}
}

type verificationUC struct {
	registrants repository.RegistrantRepository
	codes       repository.OneTimeCodeRepository
	sender      adapter.CodeSender
	limiter     RateLimiter
	tm          repository.TransactionManager
	cfg         VerificationConfig
	log         *zerolog.Logger
}

func NewVerificationUseCase(
	registrants repository.RegistrantRepository,
	codes repository.OneTimeCodeRepository,
	sender adapter.CodeSender,
	limiter RateLimiter,
	tm repository.TransactionManager,
	cfg VerificationConfig,
	logger *zerolog.Logger,
) *verificationUC {
	cfg.normalize()
	return &verificationUC{
		registrants: registrants,
		codes:       codes,
		sender:      sender,
		limiter:     limiter,
		tm:          tm,
		cfg:         cfg,
		log:         logger,
	}
}

func (u *verificationUC) IssueCode(ctx context.Context, registrantID string, purpose model.CodePurpose, now time.Time) (*model.OneTimeCode, error) {
	reg, err := u.registrants.FindByID(ctx, repository.NoTX, registrantID)
	if err != nil {
		return nil, err
	}
	if purpose == model.PurposeRegistration && reg.VerificationState == model.VerificationVerified {
		return nil, domain.ErrAlreadyVerified
	}

	if u.limiter != nil {
		ok, err := u.limiter.Allow(ctx, otpIssueKey(registrantID, purpose), u.cfg.IssueLimit, u.cfg.IssueWindow)
		if err != nil {
			// Throttle store down: issue anyway, the OTP store is the
			// source of truth.
			u.log.Warn().Err(err).Str("registrant_id", registrantID).Msg("otp rate limiter unavailable")
		} else if !ok {
			return nil, domain.ErrTooManyRequests
		}
	}

	value, err := generateOneTimeCode()
	if err != nil {
		return nil, err
	}
	code := &model.OneTimeCode{
		ID:           uuid.NewString(),
		RegistrantID: registrantID,
		Code:         value,
		Purpose:      purpose,
		ExpiresAt:    now.Add(u.cfg.CodeTTL),
		CreatedAt:    now,
	}

	// Supersede-then-save in one transaction so only the newest code is
	// ever valid for the registrant.
	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := u.codes.SupersedeActive(ctx, tx, registrantID, purpose, now); err != nil {
			return err
		}
		return u.codes.Save(ctx, tx, code)
	})
	if err != nil {
		return nil, err
	}
	metrics.IncOTPIssued(string(purpose))

	// Issuance is done; delivery is best effort.
	sendCtx, cancel := context.WithTimeout(ctx, u.cfg.DeliveryTimeout)
	defer cancel()
	if err := u.sender.SendCode(sendCtx, reg.Contact, value); err != nil {
		metrics.IncOTPDeliveryFailure(u.sender.Name())
		u.log.Warn().Err(err).
			Str("registrant_id", registrantID).
			Str("sender", u.sender.Name()).
			Msg("otp delivery failed; registrant can request a resend")
	}
	return code, nil
}

func (u *verificationUC) Verify(ctx context.Context, registrantID, submittedCode string, now time.Time) error {
	return u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		reg, err := u.registrants.FindByID(ctx, tx, registrantID)
		if err != nil {
			return err
		}
		if reg.VerificationState == model.VerificationVerified {
			return domain.ErrAlreadyVerified
		}

		code, err := u.codes.FindActive(ctx, tx, registrantID, model.PurposeRegistration)
		if err != nil {
			if err == domain.ErrNotFound {
				// No live challenge: whatever was submitted cannot match.
				return domain.ErrCodeMismatch
			}
			return err
		}
		if now.After(code.ExpiresAt) {
			return domain.ErrCodeExpired
		}
		if code.Code != submittedCode {
			metrics.IncOTPVerification("mismatch")
			return domain.ErrCodeMismatch
		}

		// Consume and flip inside the same transaction: a failure in either
		// step rolls back both, so the registrant can never end up verified
		// with the code unconsumed or vice versa.
		ok, err := u.codes.Consume(ctx, tx, code.ID, now)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrAlreadyVerified
		}
		ok, err = u.registrants.MarkVerified(ctx, tx, registrantID, now)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrAlreadyVerified
		}
		metrics.IncOTPVerification("ok")
		return nil
	})
}

func otpIssueKey(registrantID string, purpose model.CodePurpose) string {
	return "otp_issue:" + registrantID + ":" + string(purpose)
}
