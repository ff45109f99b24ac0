// File: internal/infra/api/server.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"ssfi-membership-portal/internal/domain"
	"ssfi-membership-portal/internal/domain/model"
	"ssfi-membership-portal/internal/infra/web"
	"ssfi-membership-portal/internal/usecase"
)

// Server exposes the onboarding and settlement core over HTTP. Everything
// here is a thin translation layer; all rules live in the use cases.
type Server struct {
	registrations usecase.RegistrationUseCase
	verifications usecase.VerificationUseCase
	approvals     usecase.ApprovalUseCase
	reconciler    usecase.ReconcileUseCase
	auth          *web.AuthManager
	sigHeader     string
	webhookWait   time.Duration
	log           *zerolog.Logger
}

func NewServer(
	registrations usecase.RegistrationUseCase,
	verifications usecase.VerificationUseCase,
	approvals usecase.ApprovalUseCase,
	reconciler usecase.ReconcileUseCase,
	auth *web.AuthManager,
	signatureHeader string,
	webhookTimeout time.Duration,
	logger *zerolog.Logger,
) *Server {
	if signatureHeader == "" {
		signatureHeader = "X-Gateway-Signature"
	}
	if webhookTimeout <= 0 {
		webhookTimeout = 15 * time.Second
	}
	return &Server{
		registrations: registrations,
		verifications: verifications,
		approvals:     approvals,
		reconciler:    reconciler,
		auth:          auth,
		sigHeader:     signatureHeader,
		webhookWait:   webhookTimeout,
		log:           logger,
	}
}

// Router builds the chi mux with the standard middleware chain.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(func(h http.Handler) http.Handler {
		return Chain(h, Recover(s.log), TraceID(), RequestLog(s.log))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/registrations", s.handleRegister)
		r.Post("/registrations/{id}/verify", s.handleVerify)
		r.Post("/registrations/{id}/resend-code", s.handleResend)
		r.Post("/registrations/{id}/decision", s.requireApprover(s.handleDecide))
		r.Get("/approvals/pending", s.requireApprover(s.handlePendingQueue))
	})
	r.Post("/webhook/payments", s.handlePaymentWebhook)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// ---- registration intake ----

type registerRequest struct {
	Role         string `json:"role"`
	Name         string `json:"name"`
	Contact      string `json:"contact"`
	StateCode    string `json:"state_code"`
	DistrictCode string `json:"district_code"`
	ClubCode     string `json:"club_code"`
}

type registerResponse struct {
	RegistrantID string `json:"registrant_id"`
	PublicCode   string `json:"public_code"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	res, err := s.registrations.Register(r.Context(), usecase.RegisterInput{
		Role:         model.Role(req.Role),
		Name:         req.Name,
		Contact:      req.Contact,
		StateCode:    req.StateCode,
		DistrictCode: req.DistrictCode,
		ClubCode:     req.ClubCode,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, registerResponse{
		RegistrantID: res.RegistrantID,
		PublicCode:   res.PublicCode,
	})
}

// ---- verification ----

type verifyRequest struct {
	Code string `json:"code"`
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := s.verifications.Verify(r.Context(), id, req.Code, time.Now()); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"verification_state": string(model.VerificationVerified)})
}

type resendRequest struct {
	Purpose string `json:"purpose"`
}

func (s *Server) handleResend(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	purpose := model.PurposeRegistration
	var req resendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.Purpose != "" {
		switch model.CodePurpose(req.Purpose) {
		case model.PurposeRegistration, model.PurposePasswordReset:
			purpose = model.CodePurpose(req.Purpose)
		default:
			writeError(w, http.StatusBadRequest, "unknown purpose")
			return
		}
	}
	if _, err := s.verifications.IssueCode(r.Context(), id, purpose, time.Now()); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "code_sent"})
}

// ---- approvals ----

type approverHandler func(w http.ResponseWriter, r *http.Request, approver usecase.Approver)

func (s *Server) requireApprover(next approverHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.auth.ParseFromRequest(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next(w, r, claims.Approver())
	}
}

type decisionRequest struct {
	Decision string  `json:"decision"` // "approved" | "rejected"
	Reason   *string `json:"reason,omitempty"`
}

func (s *Server) handleDecide(w http.ResponseWriter, r *http.Request, approver usecase.Approver) {
	id := chi.URLParam(r, "id")
	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	reg, err := s.approvals.Decide(r.Context(), id, approver, model.ApprovalState(req.Decision), req.Reason)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"registrant_id":  reg.ID,
		"approval_state": string(reg.ApprovalState),
	})
}

func (s *Server) handlePendingQueue(w http.ResponseWriter, r *http.Request, approver usecase.Approver) {
	pending, err := s.approvals.ListPending(r.Context(), approver, 0)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	type item struct {
		RegistrantID string `json:"registrant_id"`
		PublicCode   string `json:"public_code"`
		Role         string `json:"role"`
		Name         string `json:"name"`
		StateCode    string `json:"state_code"`
		DistrictCode string `json:"district_code,omitempty"`
		ClubCode     string `json:"club_code,omitempty"`
	}
	out := make([]item, 0, len(pending))
	for _, p := range pending {
		out = append(out, item{
			RegistrantID: p.ID,
			PublicCode:   p.PublicCode,
			Role:         string(p.Role),
			Name:         p.Name,
			StateCode:    p.Jurisdiction.StateCode,
			DistrictCode: p.Jurisdiction.DistrictCode,
			ClubCode:     p.Jurisdiction.ClubCode,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"pending": out})
}

// ---- payment webhook ----

func (s *Server) handlePaymentWebhook(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.webhookWait)
	defer cancel()

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable body")
		return
	}

	outcome, err := s.reconciler.HandleWebhook(ctx, body, r.Header.Get(s.sigHeader))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidSignature):
			// Not retryable: a redelivery carries the same bad signature.
			writeError(w, http.StatusUnauthorized, "invalid signature")
		case errors.Is(err, domain.ErrStoreUnavailable), errors.Is(err, domain.ErrOperationFailed):
			// 5xx so the gateway's retry loop redelivers; idempotency makes
			// that safe.
			writeError(w, http.StatusServiceUnavailable, "temporarily unavailable")
		default:
			writeError(w, http.StatusBadRequest, "unprocessable event")
		}
		return
	}

	status := "applied"
	switch {
	case outcome.Ignored:
		status = "ignored"
	case outcome.Replayed:
		status = "replayed"
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": status})
}

// ---- shared helpers ----

func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrInvalidScope):
		writeError(w, http.StatusBadRequest, "unknown hierarchy scope")
	case errors.Is(err, domain.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, "invalid request")
	case errors.Is(err, domain.ErrAlreadyVerified):
		writeError(w, http.StatusConflict, "already verified")
	case errors.Is(err, domain.ErrCodeExpired):
		writeError(w, http.StatusConflict, "code expired")
	case errors.Is(err, domain.ErrCodeMismatch):
		writeError(w, http.StatusConflict, "code mismatch")
	case errors.Is(err, domain.ErrTooManyRequests):
		writeError(w, http.StatusTooManyRequests, "too many code requests")
	case errors.Is(err, domain.ErrNotEligible):
		writeError(w, http.StatusConflict, "not eligible for approval")
	case errors.Is(err, domain.ErrAlreadyDecided):
		writeError(w, http.StatusConflict, "already decided")
	case errors.Is(err, domain.ErrOutOfJurisdiction):
		writeError(w, http.StatusForbidden, "out of jurisdiction")
	case errors.Is(err, domain.ErrStoreUnavailable):
		writeError(w, http.StatusServiceUnavailable, "temporarily unavailable")
	default:
		s.log.Error().Err(err).Msg("unhandled error")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
