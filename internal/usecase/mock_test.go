//go:build !integration

package usecase_test

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"ssfi-membership-portal/internal/domain"
	"ssfi-membership-portal/internal/domain/model"
	"ssfi-membership-portal/internal/domain/ports/adapter"
	"ssfi-membership-portal/internal/domain/ports/repository"
)

// -----------------------------
// Utilities: tiny helpers
// -----------------------------

func now() time.Time { return time.Now().Truncate(time.Millisecond) }

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func strPtr(s string) *string { return &s }

// =============================
// Transaction manager
// =============================

// MockTxManager runs the function inline; the in-memory repositories below
// do not need real transaction isolation, they only need the tx handle to be
// threaded through.
type MockTxManager struct {
	WithTxFunc func(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

func (m *MockTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, fn)
	}
	return fn(ctx, struct{}{})
}

// =============================
// Repositories
// =============================

// ---- Mock SequenceCounterRepository ----

type MockCounterRepo struct {
	mu       sync.Mutex
	counters map[string]uint32

	AllocateNextFunc func(ctx context.Context, tx repository.Tx, scope model.HierarchyScope) (uint32, error)
}

var _ repository.SequenceCounterRepository = (*MockCounterRepo)(nil)

func NewMockCounterRepo() *MockCounterRepo {
	return &MockCounterRepo{counters: make(map[string]uint32)}
}

func (m *MockCounterRepo) AllocateNext(ctx context.Context, tx repository.Tx, scope model.HierarchyScope) (uint32, error) {
	if m.AllocateNextFunc != nil {
		return m.AllocateNextFunc(ctx, tx, scope)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[scope.Key()]++
	return m.counters[scope.Key()], nil
}

// ---- Mock HierarchyRepository ----

type MockHierarchyRepo struct {
	mu        sync.Mutex
	states    map[string]*model.State
	districts map[string]*model.District
	clubs     map[string]*model.Club
}

var _ repository.HierarchyRepository = (*MockHierarchyRepo)(nil)

func NewMockHierarchyRepo() *MockHierarchyRepo {
	return &MockHierarchyRepo{
		states:    make(map[string]*model.State),
		districts: make(map[string]*model.District),
		clubs:     make(map[string]*model.Club),
	}
}

func (m *MockHierarchyRepo) FindState(_ context.Context, _ repository.Tx, code string) (*model.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.states[code]; ok {
		return s, nil
	}
	return nil, domain.ErrNotFound
}

func (m *MockHierarchyRepo) FindDistrict(_ context.Context, _ repository.Tx, stateCode, code string) (*model.District, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.districts[stateCode+"/"+code]; ok {
		return d, nil
	}
	return nil, domain.ErrNotFound
}

func (m *MockHierarchyRepo) FindClub(_ context.Context, _ repository.Tx, stateCode, districtCode, code string) (*model.Club, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.clubs[stateCode+"/"+districtCode+"/"+code]; ok {
		return c, nil
	}
	return nil, domain.ErrNotFound
}

func (m *MockHierarchyRepo) SaveState(_ context.Context, _ repository.Tx, s *model.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[s.Code] = s
	return nil
}

func (m *MockHierarchyRepo) SaveDistrict(_ context.Context, _ repository.Tx, d *model.District) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.districts[d.StateCode+"/"+d.Code] = d
	return nil
}

func (m *MockHierarchyRepo) SaveClub(_ context.Context, _ repository.Tx, c *model.Club) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clubs[c.StateCode+"/"+c.DistrictCode+"/"+c.Code] = c
	return nil
}

// seedHierarchy loads the minimal TN tree most tests register against.
func seedHierarchy(m *MockHierarchyRepo) {
	ctx := context.Background()
	_ = m.SaveState(ctx, repository.NoTX, &model.State{Code: "TN", Name: "Tamil Nadu"})
	_ = m.SaveDistrict(ctx, repository.NoTX, &model.District{StateCode: "TN", Code: "0001", Name: "Chennai"})
	_ = m.SaveClub(ctx, repository.NoTX, &model.Club{StateCode: "TN", DistrictCode: "0001", Code: "0001", Name: "Chennai Skating Club"})
}

// ---- Mock RegistrantRepository ----

type MockRegistrantRepo struct {
	mu   sync.Mutex
	byID map[string]*model.Registrant

	SaveFunc         func(ctx context.Context, tx repository.Tx, r *model.Registrant) error
	FindByIDFunc     func(ctx context.Context, tx repository.Tx, id string) (*model.Registrant, error)
	MarkVerifiedFunc func(ctx context.Context, tx repository.Tx, id string, at time.Time) (bool, error)
	DecideFunc       func(ctx context.Context, tx repository.Tx, id string, decision model.ApprovalState, reason *string, at time.Time) (bool, error)
}

var _ repository.RegistrantRepository = (*MockRegistrantRepo)(nil)

func NewMockRegistrantRepo() *MockRegistrantRepo {
	return &MockRegistrantRepo{byID: make(map[string]*model.Registrant)}
}

func (m *MockRegistrantRepo) Save(ctx context.Context, tx repository.Tx, r *model.Registrant) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, r)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *r
	m.byID[r.ID] = &cp
	return nil
}

func (m *MockRegistrantRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Registrant, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, tx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.byID[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (m *MockRegistrantRepo) FindByPublicCode(_ context.Context, _ repository.Tx, code string) (*model.Registrant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.byID {
		if r.PublicCode == code {
			cp := *r
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockRegistrantRepo) MarkVerified(ctx context.Context, tx repository.Tx, id string, at time.Time) (bool, error) {
	if m.MarkVerifiedFunc != nil {
		return m.MarkVerifiedFunc(ctx, tx, id, at)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byID[id]
	if !ok {
		return false, domain.ErrNotFound
	}
	if r.VerificationState != model.VerificationUnverified {
		return false, nil
	}
	r.VerificationState = model.VerificationVerified
	r.UpdatedAt = at
	return true, nil
}

func (m *MockRegistrantRepo) Decide(ctx context.Context, tx repository.Tx, id string, decision model.ApprovalState, reason *string, at time.Time) (bool, error) {
	if m.DecideFunc != nil {
		return m.DecideFunc(ctx, tx, id, decision, reason, at)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byID[id]
	if !ok {
		return false, domain.ErrNotFound
	}
	if r.ApprovalState != model.ApprovalPending || r.VerificationState != model.VerificationVerified {
		return false, nil
	}
	r.ApprovalState = decision
	r.RejectReason = reason
	r.UpdatedAt = at
	return true, nil
}

func (m *MockRegistrantRepo) Deactivate(_ context.Context, _ repository.Tx, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	if r.DeactivatedAt == nil {
		r.DeactivatedAt = &at
	}
	return nil
}

func (m *MockRegistrantRepo) ListPending(_ context.Context, _ repository.Tx, within model.Jurisdiction, limit int) ([]*model.Registrant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Registrant
	for _, r := range m.byID {
		if r.VerificationState != model.VerificationVerified || r.ApprovalState != model.ApprovalPending {
			continue
		}
		if !within.Contains(r.Jurisdiction) {
			continue
		}
		cp := *r
		out = append(out, &cp)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// ---- Mock OneTimeCodeRepository ----

type MockOTPRepo struct {
	mu    sync.Mutex
	codes map[string]*model.OneTimeCode

	SaveFunc    func(ctx context.Context, tx repository.Tx, c *model.OneTimeCode) error
	ConsumeFunc func(ctx context.Context, tx repository.Tx, id string, at time.Time) (bool, error)
}

var _ repository.OneTimeCodeRepository = (*MockOTPRepo)(nil)

func NewMockOTPRepo() *MockOTPRepo {
	return &MockOTPRepo{codes: make(map[string]*model.OneTimeCode)}
}

func (m *MockOTPRepo) Save(ctx context.Context, tx repository.Tx, c *model.OneTimeCode) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, c)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.codes[c.ID] = &cp
	return nil
}

func (m *MockOTPRepo) FindActive(_ context.Context, _ repository.Tx, registrantID string, purpose model.CodePurpose) (*model.OneTimeCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var newest *model.OneTimeCode
	for _, c := range m.codes {
		if c.RegistrantID != registrantID || c.Purpose != purpose {
			continue
		}
		if c.ConsumedAt != nil || c.SupersededAt != nil {
			continue
		}
		if newest == nil || c.CreatedAt.After(newest.CreatedAt) {
			newest = c
		}
	}
	if newest == nil {
		return nil, domain.ErrNotFound
	}
	cp := *newest
	return &cp, nil
}

func (m *MockOTPRepo) Consume(ctx context.Context, tx repository.Tx, id string, at time.Time) (bool, error) {
	if m.ConsumeFunc != nil {
		return m.ConsumeFunc(ctx, tx, id, at)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.codes[id]
	if !ok {
		return false, domain.ErrNotFound
	}
	if c.ConsumedAt != nil || c.SupersededAt != nil {
		return false, nil
	}
	c.ConsumedAt = &at
	return true, nil
}

func (m *MockOTPRepo) SupersedeActive(_ context.Context, _ repository.Tx, registrantID string, purpose model.CodePurpose, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.codes {
		if c.RegistrantID == registrantID && c.Purpose == purpose && c.ConsumedAt == nil && c.SupersededAt == nil {
			t := at
			c.SupersededAt = &t
		}
	}
	return nil
}

// ---- Mock PaymentLedgerRepository ----

type MockLedgerRepo struct {
	mu        sync.Mutex
	byPayment map[string]*model.LedgerEntry

	InsertFunc func(ctx context.Context, tx repository.Tx, e *model.LedgerEntry) error
}

var _ repository.PaymentLedgerRepository = (*MockLedgerRepo)(nil)

func NewMockLedgerRepo() *MockLedgerRepo {
	return &MockLedgerRepo{byPayment: make(map[string]*model.LedgerEntry)}
}

func (m *MockLedgerRepo) Insert(ctx context.Context, tx repository.Tx, e *model.LedgerEntry) error {
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, tx, e)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byPayment[e.GatewayPaymentID]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *e
	m.byPayment[e.GatewayPaymentID] = &cp
	return nil
}

func (m *MockLedgerRepo) FindByGatewayPaymentID(_ context.Context, _ repository.Tx, gatewayPaymentID string) (*model.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.byPayment[gatewayPaymentID]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

// ---- Mock MembershipRepository ----

type MockMembershipRepo struct {
	mu      sync.Mutex
	records map[string]*model.MembershipRecord
}

var _ repository.MembershipRepository = (*MockMembershipRepo)(nil)

func NewMockMembershipRepo() *MockMembershipRepo {
	return &MockMembershipRepo{records: make(map[string]*model.MembershipRecord)}
}

func (m *MockMembershipRepo) FindByRegistrant(_ context.Context, _ repository.Tx, registrantID string) (*model.MembershipRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.records[registrantID]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (m *MockMembershipRepo) SetExpiry(_ context.Context, _ repository.Tx, registrantID string, expiresAt time.Time, gatewayPaymentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	exp := expiresAt
	pid := gatewayPaymentID
	m.records[registrantID] = &model.MembershipRecord{
		RegistrantID:  registrantID,
		ExpiresAt:     &exp,
		LastPaymentID: &pid,
		UpdatedAt:     time.Now(),
	}
	return nil
}

// ---- Mock EventRegistrationRepository ----

type MockEventRegRepo struct {
	mu   sync.Mutex
	regs map[string]*model.EventRegistration // skaterID/eventID

	AttachPaymentFunc func(ctx context.Context, tx repository.Tx, skaterID, eventID, gatewayPaymentID, gatewayOrderID string, paidAt time.Time) error
}

var _ repository.EventRegistrationRepository = (*MockEventRegRepo)(nil)

func NewMockEventRegRepo() *MockEventRegRepo {
	return &MockEventRegRepo{regs: make(map[string]*model.EventRegistration)}
}

func (m *MockEventRegRepo) Save(_ context.Context, _ repository.Tx, r *model.EventRegistration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *r
	m.regs[r.SkaterID+"/"+r.EventID] = &cp
	return nil
}

func (m *MockEventRegRepo) FindBySkaterAndEvent(_ context.Context, _ repository.Tx, skaterID, eventID string) (*model.EventRegistration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.regs[skaterID+"/"+eventID]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (m *MockEventRegRepo) AttachPayment(ctx context.Context, tx repository.Tx, skaterID, eventID, gatewayPaymentID, gatewayOrderID string, paidAt time.Time) error {
	if m.AttachPaymentFunc != nil {
		return m.AttachPaymentFunc(ctx, tx, skaterID, eventID, gatewayPaymentID, gatewayOrderID, paidAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.regs[skaterID+"/"+eventID]
	if !ok {
		return domain.ErrNotFound
	}
	r.Status = model.RegistrationPaid
	r.GatewayPaymentID = &gatewayPaymentID
	r.GatewayOrderID = &gatewayOrderID
	t := paidAt
	r.PaidAt = &t
	return nil
}

// =============================
// Adapters
// =============================

// ---- Mock CodeSender ----

type MockCodeSender struct {
	mu   sync.Mutex
	Sent []SentCode

	SendCodeFunc func(ctx context.Context, destination, code string) error
}

type SentCode struct {
	Destination string
	Code        string
}

var _ adapter.CodeSender = (*MockCodeSender)(nil)

func (m *MockCodeSender) Name() string { return "mock" }

func (m *MockCodeSender) SendCode(ctx context.Context, destination, code string) error {
	if m.SendCodeFunc != nil {
		return m.SendCodeFunc(ctx, destination, code)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, SentCode{Destination: destination, Code: code})
	return nil
}

func (m *MockCodeSender) LastSent() (SentCode, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Sent) == 0 {
		return SentCode{}, false
	}
	return m.Sent[len(m.Sent)-1], true
}

// ---- Mock RateLimiter ----

type MockRateLimiter struct {
	AllowFunc func(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

func (m *MockRateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if m.AllowFunc != nil {
		return m.AllowFunc(ctx, key, limit, window)
	}
	return true, nil
}

// ---- Mock WebhookDecoder ----

type MockWebhookDecoder struct {
	VerifySignatureFunc func(rawBody []byte, signatureHeader string) error
	DecodeFunc          func(rawBody []byte, receivedAt time.Time) (*model.PaymentConfirmation, error)
}

var _ adapter.WebhookDecoder = (*MockWebhookDecoder)(nil)

func (m *MockWebhookDecoder) VerifySignature(rawBody []byte, signatureHeader string) error {
	if m.VerifySignatureFunc != nil {
		return m.VerifySignatureFunc(rawBody, signatureHeader)
	}
	return nil
}

func (m *MockWebhookDecoder) Decode(rawBody []byte, receivedAt time.Time) (*model.PaymentConfirmation, error) {
	if m.DecodeFunc != nil {
		return m.DecodeFunc(rawBody, receivedAt)
	}
	return nil, nil
}

// ---- Mock PaymentLocker ----

type MockPaymentLocker struct {
	mu   sync.Mutex
	held map[string]string

	TryLockFunc func(ctx context.Context, key string, ttl time.Duration) (string, error)
}

var _ adapter.PaymentLocker = (*MockPaymentLocker)(nil)

func NewMockPaymentLocker() *MockPaymentLocker {
	return &MockPaymentLocker{held: make(map[string]string)}
}

func (m *MockPaymentLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if m.TryLockFunc != nil {
		return m.TryLockFunc(ctx, key, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.held[key]; ok {
		return "", domain.ErrLockHeld
	}
	token := key + "-token"
	m.held[key] = token
	return token, nil
}

func (m *MockPaymentLocker) Unlock(_ context.Context, key, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held[key] == token {
		delete(m.held, key)
	}
	return nil
}
