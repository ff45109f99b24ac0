//go:build !integration

package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"ssfi-membership-portal/internal/domain"
	"ssfi-membership-portal/internal/domain/model"
	"ssfi-membership-portal/internal/usecase"
)

type reconcileFixture struct {
	decoder     *MockWebhookDecoder
	locker      *MockPaymentLocker
	ledger      *MockLedgerRepo
	memberships *MockMembershipRepo
	eventRegs   *MockEventRegRepo
	registrants *MockRegistrantRepo
	uc          usecase.ReconcileUseCase
}

func newReconcileFixture() *reconcileFixture {
	f := &reconcileFixture{
		decoder:     &MockWebhookDecoder{},
		locker:      NewMockPaymentLocker(),
		ledger:      NewMockLedgerRepo(),
		memberships: NewMockMembershipRepo(),
		eventRegs:   NewMockEventRegRepo(),
		registrants: NewMockRegistrantRepo(),
	}
	f.uc = usecase.NewReconcileUseCase(
		f.decoder, f.locker, f.ledger, f.memberships, f.eventRegs, f.registrants,
		&MockTxManager{}, testLogger(),
	)
	return f
}

func (f *reconcileFixture) addApprovedRegistrant(t *testing.T) *model.Registrant {
	t.Helper()
	reg, err := model.NewRegistrant("", model.RoleStudent, "Skater", "+919000000001", "SSFI-TN-0001-0001-0001",
		model.Jurisdiction{StateCode: "TN", DistrictCode: "0001", ClubCode: "0001"})
	if err != nil {
		t.Fatalf("NewRegistrant: %v", err)
	}
	reg.VerificationState = model.VerificationVerified
	reg.ApprovalState = model.ApprovalApproved
	if err := f.registrants.Save(context.Background(), nil, reg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	return reg
}

func renewalConfirmation(registrantID, paymentID string, at time.Time) *model.PaymentConfirmation {
	return &model.PaymentConfirmation{
		GatewayEventID:   "evt_" + paymentID,
		GatewayPaymentID: paymentID,
		EventType:        "payment.captured",
		Amount:           150000,
		Currency:         "INR",
		Purpose:          model.PurposeMembershipRenewal,
		Subject:          model.SubjectRef{RegistrantID: registrantID},
		ReceivedAt:       at,
	}
}

func TestReconcileUseCase_HandleWebhook(t *testing.T) {
	ctx := context.Background()

	t.Run("membership renewal extends expiry one year from confirmation", func(t *testing.T) {
		f := newReconcileFixture()
		reg := f.addApprovedRegistrant(t)
		at := now()
		f.decoder.DecodeFunc = func(rawBody []byte, receivedAt time.Time) (*model.PaymentConfirmation, error) {
			return renewalConfirmation(reg.ID, "pay_001", at), nil
		}

		out, err := f.uc.HandleWebhook(ctx, []byte(`{}`), "sig")
		if err != nil {
			t.Fatalf("HandleWebhook: %v", err)
		}
		if out.Ignored || out.Replayed {
			t.Fatalf("outcome = %+v, want applied", out)
		}
		rec, err := f.memberships.FindByRegistrant(ctx, nil, reg.ID)
		if err != nil {
			t.Fatalf("FindByRegistrant: %v", err)
		}
		want := at.AddDate(1, 0, 0)
		if rec.ExpiresAt == nil || !rec.ExpiresAt.Equal(want) {
			t.Fatalf("expiry = %v, want %v", rec.ExpiresAt, want)
		}
		if rec.LastPaymentID == nil || *rec.LastPaymentID != "pay_001" {
			t.Fatalf("last payment = %v, want pay_001", rec.LastPaymentID)
		}
	})

	t.Run("event registration fee attaches payment", func(t *testing.T) {
		f := newReconcileFixture()
		reg := f.addApprovedRegistrant(t)
		entry := &model.EventRegistration{
			ID: "er1", SkaterID: reg.ID, EventID: "nationals-2026",
			Status: model.RegistrationUnpaid, CreatedAt: now(), UpdatedAt: now(),
		}
		if err := f.eventRegs.Save(ctx, nil, entry); err != nil {
			t.Fatalf("Save: %v", err)
		}
		at := now()
		f.decoder.DecodeFunc = func(rawBody []byte, receivedAt time.Time) (*model.PaymentConfirmation, error) {
			return &model.PaymentConfirmation{
				GatewayPaymentID: "pay_002",
				GatewayOrderID:   "order_002",
				EventType:        "payment.captured",
				Amount:           50000,
				Currency:         "INR",
				Purpose:          model.PurposeEventRegistration,
				Subject:          model.SubjectRef{RegistrantID: reg.ID, EventID: "nationals-2026"},
				ReceivedAt:       at,
			}, nil
		}

		if _, err := f.uc.HandleWebhook(ctx, []byte(`{}`), "sig"); err != nil {
			t.Fatalf("HandleWebhook: %v", err)
		}
		got, err := f.eventRegs.FindBySkaterAndEvent(ctx, nil, reg.ID, "nationals-2026")
		if err != nil {
			t.Fatalf("FindBySkaterAndEvent: %v", err)
		}
		if got.Status != model.RegistrationPaid {
			t.Fatalf("status = %q, want paid", got.Status)
		}
		if got.GatewayPaymentID == nil || *got.GatewayPaymentID != "pay_002" {
			t.Fatalf("gateway payment id = %v", got.GatewayPaymentID)
		}
	})

	t.Run("replayed delivery applies once", func(t *testing.T) {
		f := newReconcileFixture()
		reg := f.addApprovedRegistrant(t)
		at := now()
		f.decoder.DecodeFunc = func(rawBody []byte, receivedAt time.Time) (*model.PaymentConfirmation, error) {
			return renewalConfirmation(reg.ID, "pay_003", at), nil
		}

		first, err := f.uc.HandleWebhook(ctx, []byte(`{}`), "sig")
		if err != nil {
			t.Fatalf("first delivery: %v", err)
		}
		second, err := f.uc.HandleWebhook(ctx, []byte(`{}`), "sig")
		if err != nil {
			t.Fatalf("second delivery: %v", err)
		}
		if !second.Replayed {
			t.Fatal("second delivery not reported as replay")
		}
		if second.Entry.ID != first.Entry.ID {
			t.Fatalf("replay answered with entry %s, want original %s", second.Entry.ID, first.Entry.ID)
		}
		rec, _ := f.memberships.FindByRegistrant(ctx, nil, reg.ID)
		want := at.AddDate(1, 0, 0)
		if !rec.ExpiresAt.Equal(want) {
			t.Fatalf("expiry moved on replay: %v, want %v", rec.ExpiresAt, want)
		}
	})

	t.Run("bad signature rejects before any work", func(t *testing.T) {
		f := newReconcileFixture()
		f.decoder.VerifySignatureFunc = func(rawBody []byte, signatureHeader string) error {
			return domain.ErrInvalidSignature
		}
		decoded := false
		f.decoder.DecodeFunc = func(rawBody []byte, receivedAt time.Time) (*model.PaymentConfirmation, error) {
			decoded = true
			return nil, nil
		}

		if _, err := f.uc.HandleWebhook(ctx, []byte(`{}`), "bad"); err != domain.ErrInvalidSignature {
			t.Fatalf("err = %v, want ErrInvalidSignature", err)
		}
		if decoded {
			t.Fatal("body decoded despite bad signature")
		}
	})

	t.Run("unrecognized event type is acknowledged and ignored", func(t *testing.T) {
		f := newReconcileFixture()
		out, err := f.uc.HandleWebhook(ctx, []byte(`{}`), "sig")
		if err != nil {
			t.Fatalf("HandleWebhook: %v", err)
		}
		if !out.Ignored {
			t.Fatalf("outcome = %+v, want ignored", out)
		}
	})

	t.Run("held lock surfaces retryable", func(t *testing.T) {
		f := newReconcileFixture()
		reg := f.addApprovedRegistrant(t)
		f.decoder.DecodeFunc = func(rawBody []byte, receivedAt time.Time) (*model.PaymentConfirmation, error) {
			return renewalConfirmation(reg.ID, "pay_004", now()), nil
		}
		f.locker.TryLockFunc = func(ctx context.Context, key string, ttl time.Duration) (string, error) {
			return "", domain.ErrLockHeld
		}

		if _, err := f.uc.HandleWebhook(ctx, []byte(`{}`), "sig"); err != domain.ErrStoreUnavailable {
			t.Fatalf("err = %v, want ErrStoreUnavailable", err)
		}
	})

	t.Run("renewal for unknown registrant fails the delivery", func(t *testing.T) {
		// Rolling the ledger row back with the failed mutation is the
		// transaction's job; here only the error propagation is checked.
		f := newReconcileFixture()
		f.decoder.DecodeFunc = func(rawBody []byte, receivedAt time.Time) (*model.PaymentConfirmation, error) {
			return renewalConfirmation("missing", "pay_005", now()), nil
		}

		if _, err := f.uc.HandleWebhook(ctx, []byte(`{}`), "sig"); err != domain.ErrNotFound {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
		if _, err := f.memberships.FindByRegistrant(ctx, nil, "missing"); err != domain.ErrNotFound {
			t.Fatal("membership written for unknown registrant")
		}
	})

	t.Run("concurrent deliveries settle exactly once", func(t *testing.T) {
		f := newReconcileFixture()
		reg := f.addApprovedRegistrant(t)
		at := now()
		f.decoder.DecodeFunc = func(rawBody []byte, receivedAt time.Time) (*model.PaymentConfirmation, error) {
			return renewalConfirmation(reg.ID, "pay_006", at), nil
		}
		uc := usecase.NewReconcileUseCase(
			f.decoder, nil, f.ledger, f.memberships, f.eventRegs, f.registrants,
			&MockTxManager{}, testLogger(),
		)

		const n = 16
		applied := 0
		var mu sync.Mutex
		var wg sync.WaitGroup
		wg.Add(n)
		for i := 0; i < n; i++ {
			go func() {
				defer wg.Done()
				out, err := uc.HandleWebhook(ctx, []byte(`{}`), "sig")
				if err != nil {
					t.Errorf("HandleWebhook: %v", err)
					return
				}
				if !out.Replayed {
					mu.Lock()
					applied++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		if applied != 1 {
			t.Fatalf("applied %d times, want exactly 1", applied)
		}
	})
}
