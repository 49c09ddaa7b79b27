package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"digipraman/internal/verification/models"
	"digipraman/internal/verification/service"
	id "digipraman/pkg/domain"
	dErrors "digipraman/pkg/domain-errors"
	"digipraman/pkg/platform/sentinel"
	strs "digipraman/pkg/platform/strings"
)

// Loan is the slice of a loan application the verification views denormalize.
type Loan struct {
	ID               id.LoanID
	LoanRefNo        string
	SchemeID         *string
	OrgID            *id.OrgID
	BeneficiaryID    id.UserID
	SanctionedAmount decimal.Decimal
	Purpose          *string
}

type riskEntry struct {
	snapshot   models.RiskSnapshot
	computedAt time.Time
}

// InMemory is a development and test store. Transactions are serialized by
// a single lock and staged so a failed unit of work leaves no trace.
type InMemory struct {
	txMu sync.Mutex

	mu           sync.RWMutex
	loans        map[id.LoanID]Loan
	requests     map[id.VerificationID]models.Request
	requirements map[id.VerificationID][]models.Requirement
	evidence     map[id.VerificationID][]models.EvidenceItem
	decisions    map[id.VerificationID][]models.Decision
	risks        map[id.VerificationID][]riskEntry
	timeout      time.Duration
}

func NewInMemory() *InMemory {
	return &InMemory{
		loans:        make(map[id.LoanID]Loan),
		requests:     make(map[id.VerificationID]models.Request),
		requirements: make(map[id.VerificationID][]models.Requirement),
		evidence:     make(map[id.VerificationID][]models.EvidenceItem),
		decisions:    make(map[id.VerificationID][]models.Decision),
		risks:        make(map[id.VerificationID][]riskEntry),
		timeout:      defaultTxTimeout,
	}
}

// AddLoan seeds a loan application.
func (s *InMemory) AddLoan(loan Loan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loans[loan.ID] = loan
}

// AddEvidence seeds an evidence item; ingestion is external in production.
func (s *InMemory) AddEvidence(verificationID id.VerificationID, item models.EvidenceItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evidence[verificationID] = append(s.evidence[verificationID], item)
}

func (s *InMemory) AddDecision(verificationID id.VerificationID, d models.Decision) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decisions[verificationID] = append(s.decisions[verificationID], d)
}

// AddRisk records a snapshot computed at computedAt. Readers see the latest.
func (s *InMemory) AddRisk(verificationID id.VerificationID, snapshot models.RiskSnapshot, computedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.risks[verificationID] = append(s.risks[verificationID], riskEntry{snapshot: snapshot, computedAt: computedAt})
}

// Counts reports stored rows for a verification, for atomicity checks.
func (s *InMemory) Counts(verificationID id.VerificationID) (requests, requirements int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.requests[verificationID]; ok {
		requests = 1
	}
	return requests, len(s.requirements[verificationID])
}

// RequestCount is the total number of stored verification requests.
func (s *InMemory) RequestCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.requests)
}

func (s *InMemory) RunInTx(ctx context.Context, fn func(ctx context.Context, store service.Store) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	stage := &memoryTx{
		parent:       s,
		requests:     make(map[id.VerificationID]models.Request),
		requirements: make(map[id.VerificationID][]models.Requirement),
	}
	if err := fn(ctx, stage); err != nil {
		return err
	}
	s.commit(stage)
	return nil
}

func (s *InMemory) commit(stage *memoryTx) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for vid, req := range stage.requests {
		s.requests[vid] = req
	}
	for vid, reqs := range stage.requirements {
		s.requirements[vid] = append(s.requirements[vid], reqs...)
	}
}

// memoryTx stages writes until commit. Reads see staged rows first.
type memoryTx struct {
	parent       *InMemory
	requests     map[id.VerificationID]models.Request
	requirements map[id.VerificationID][]models.Requirement
}

func (t *memoryTx) LoanExists(_ context.Context, loanID id.LoanID) (bool, error) {
	t.parent.mu.RLock()
	defer t.parent.mu.RUnlock()
	_, ok := t.parent.loans[loanID]
	return ok, nil
}

func (t *memoryTx) InsertRequest(_ context.Context, req *models.Request) error {
	if _, ok := t.lookup(req.ID); ok {
		return fmt.Errorf("duplicate verification id %s", req.ID)
	}
	t.requests[req.ID] = *req
	return nil
}

func (t *memoryTx) InsertRequirement(_ context.Context, req *models.Requirement) error {
	if _, ok := t.lookup(req.VerificationID); !ok {
		return fmt.Errorf("requirement references unknown verification %s", req.VerificationID)
	}
	t.requirements[req.VerificationID] = append(t.requirements[req.VerificationID], *req)
	return nil
}

func (t *memoryTx) GetRequestForUpdate(_ context.Context, verificationID id.VerificationID) (*models.Request, error) {
	req, ok := t.lookup(verificationID)
	if !ok {
		return nil, fmt.Errorf("verification not found: %w", sentinel.ErrNotFound)
	}
	return &req, nil
}

func (t *memoryTx) UpdateStatus(_ context.Context, verificationID id.VerificationID, status models.Status) error {
	req, ok := t.lookup(verificationID)
	if !ok {
		return fmt.Errorf("verification not found: %w", sentinel.ErrNotFound)
	}
	req.Status = status
	t.requests[verificationID] = req
	return nil
}

func (t *memoryTx) lookup(verificationID id.VerificationID) (models.Request, bool) {
	if req, ok := t.requests[verificationID]; ok {
		return req, true
	}
	t.parent.mu.RLock()
	defer t.parent.mu.RUnlock()
	req, ok := t.parent.requests[verificationID]
	return req, ok
}

func (s *InMemory) header(req models.Request) models.Header {
	loan := s.loans[req.LoanID]
	return models.Header{
		ID:               req.ID,
		LoanID:           req.LoanID,
		LoanRefNo:        loan.LoanRefNo,
		SchemeID:         loan.SchemeID,
		Status:           req.Status,
		CurrentTier:      req.CurrentTier,
		DueDate:          req.DueDate,
		CreatedAt:        req.CreatedAt,
		SanctionedAmount: loan.SanctionedAmount,
		Purpose:          loan.Purpose,
	}
}

func (s *InMemory) latestRisk(verificationID id.VerificationID) *models.RiskSnapshot {
	entries := s.risks[verificationID]
	if len(entries) == 0 {
		return nil
	}
	latest := entries[0]
	for _, e := range entries[1:] {
		if e.computedAt.After(latest.computedAt) {
			latest = e
		}
	}
	snap := latest.snapshot
	snap.Flags = strs.DedupeAndTrim(snap.Flags)
	if snap.Flags == nil {
		snap.Flags = []string{}
	}
	if snap.Explanation == nil {
		snap.Explanation = json.RawMessage("[]")
	}
	return &snap
}

func (s *InMemory) ListForBeneficiary(_ context.Context, beneficiaryID id.UserID) ([]models.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Summary
	for _, req := range s.requests {
		loan, ok := s.loans[req.LoanID]
		if !ok || loan.BeneficiaryID != beneficiaryID {
			continue
		}
		summary := models.Summary{Header: s.header(req)}
		if risk := s.latestRisk(req.ID); risk != nil {
			summary.Risk = &models.RiskSummary{Score: risk.Score, Tier: risk.Tier}
		}
		out = append(out, summary)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemory) GetHeader(_ context.Context, verificationID id.VerificationID) (*models.Detail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	req, ok := s.requests[verificationID]
	if !ok {
		return nil, fmt.Errorf("verification not found: %w", sentinel.ErrNotFound)
	}
	loan := s.loans[req.LoanID]
	return &models.Detail{
		Header:        s.header(req),
		OrgID:         loan.OrgID,
		BeneficiaryID: loan.BeneficiaryID,
		InitiatedBy:   req.InitiatedBy,
		ThresholdsRef: req.ThresholdsRef,
	}, nil
}

func (s *InMemory) GetLatestRisk(_ context.Context, verificationID id.VerificationID) (*models.RiskSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latestRisk(verificationID), nil
}

func (s *InMemory) ListRequirements(_ context.Context, verificationID id.VerificationID) ([]models.Requirement, error) {
	s.mu.RLock()
	out := append([]models.Requirement(nil), s.requirements[verificationID]...)
	s.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (s *InMemory) ListEvidence(_ context.Context, verificationID id.VerificationID) ([]models.EvidenceItem, error) {
	s.mu.RLock()
	out := append([]models.EvidenceItem(nil), s.evidence[verificationID]...)
	s.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].CapturedAt, out[j].CapturedAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
	return out, nil
}

func (s *InMemory) ListDecisions(_ context.Context, verificationID id.VerificationID) ([]models.Decision, error) {
	s.mu.RLock()
	out := append([]models.Decision(nil), s.decisions[verificationID]...)
	s.mu.RUnlock()
	for i := range out {
		if out[i].Attachments == nil {
			out[i].Attachments = json.RawMessage("[]")
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DecidedAt.After(out[j].DecidedAt) })
	return out, nil
}

var (
	_ service.Tx     = (*InMemory)(nil)
	_ service.Reader = (*InMemory)(nil)
	_ service.Store  = (*memoryTx)(nil)
)
