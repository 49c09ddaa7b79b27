package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkb"

	"digipraman/internal/verification/models"
	"digipraman/internal/verification/service"
	id "digipraman/pkg/domain"
	dErrors "digipraman/pkg/domain-errors"
	"digipraman/pkg/platform/sentinel"
	strs "digipraman/pkg/platform/strings"
	txcontext "digipraman/pkg/platform/tx"
)

const defaultTxTimeout = 5 * time.Second

// Postgres serves the read views and runs write transactions.
type Postgres struct {
	db      *sqlx.DB
	timeout time.Duration
}

func NewPostgres(db *sqlx.DB, timeout time.Duration) *Postgres {
	if timeout <= 0 {
		timeout = defaultTxTimeout
	}
	return &Postgres{db: db, timeout: timeout}
}

// RunInTx begins a transaction, exposes it on ctx for the audit outbox, and
// commits only when fn succeeds.
func (s *Postgres) RunInTx(ctx context.Context, fn func(ctx context.Context, store service.Store) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(txcontext.WithTx(ctx, tx), NewPostgresTx(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// PostgresTx is the write side bound to one open transaction.
type PostgresTx struct {
	tx *sqlx.Tx
}

func NewPostgresTx(tx *sqlx.Tx) *PostgresTx {
	return &PostgresTx{tx: tx}
}

func (s *PostgresTx) LoanExists(ctx context.Context, loanID id.LoanID) (bool, error) {
	var exists bool
	err := s.tx.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM loan_applications WHERE id = $1)`, uuid.UUID(loanID))
	if err != nil {
		return false, fmt.Errorf("check loan: %w", err)
	}
	return exists, nil
}

func (s *PostgresTx) InsertRequest(ctx context.Context, req *models.Request) error {
	_, err := s.tx.ExecContext(ctx, `
		INSERT INTO verification_requests
			(id, loan_id, initiated_by, status, current_tier, thresholds_ref, due_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, uuid.UUID(req.ID), uuid.UUID(req.LoanID), userArg(req.InitiatedBy), string(req.Status),
		req.CurrentTier, jsonArg(req.ThresholdsRef), req.DueDate, req.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert verification: %w", err)
	}
	return nil
}

func (s *PostgresTx) InsertRequirement(ctx context.Context, req *models.Requirement) error {
	_, err := s.tx.ExecContext(ctx, `
		INSERT INTO verification_requirements
			(id, verification_id, label, type, required, instructions, status, sort_order, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, uuid.UUID(req.ID), uuid.UUID(req.VerificationID), req.Label, string(req.Type), req.Required,
		req.Instructions, string(req.Status), req.SortOrder, req.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert requirement: %w", err)
	}
	return nil
}

type requestRow struct {
	ID            uuid.UUID     `db:"id"`
	LoanID        uuid.UUID     `db:"loan_id"`
	InitiatedBy   uuid.NullUUID `db:"initiated_by"`
	Status        string        `db:"status"`
	CurrentTier   *string       `db:"current_tier"`
	ThresholdsRef []byte        `db:"thresholds_ref"`
	DueDate       *time.Time    `db:"due_date"`
	CreatedAt     time.Time     `db:"created_at"`
}

func toRequest(r requestRow) *models.Request {
	return &models.Request{
		ID:            id.VerificationID(r.ID),
		LoanID:        id.LoanID(r.LoanID),
		InitiatedBy:   toUserID(r.InitiatedBy),
		Status:        models.Status(r.Status),
		CurrentTier:   r.CurrentTier,
		ThresholdsRef: rawOrNil(r.ThresholdsRef),
		DueDate:       r.DueDate,
		CreatedAt:     r.CreatedAt,
	}
}

func (s *PostgresTx) GetRequestForUpdate(ctx context.Context, verificationID id.VerificationID) (*models.Request, error) {
	var row requestRow
	err := s.tx.GetContext(ctx, &row, `
		SELECT id, loan_id, initiated_by, status, current_tier, thresholds_ref, due_date, created_at
		FROM verification_requests
		WHERE id = $1
		FOR UPDATE
	`, uuid.UUID(verificationID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("verification not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("lock verification: %w", err)
	}
	return toRequest(row), nil
}

func (s *PostgresTx) UpdateStatus(ctx context.Context, verificationID id.VerificationID, status models.Status) error {
	res, err := s.tx.ExecContext(ctx,
		`UPDATE verification_requests SET status = $2 WHERE id = $1`,
		uuid.UUID(verificationID), string(status))
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("verification not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

type summaryRow struct {
	ID               uuid.UUID           `db:"id"`
	LoanID           uuid.UUID           `db:"loan_id"`
	Status           string              `db:"status"`
	CurrentTier      *string             `db:"current_tier"`
	DueDate          *time.Time          `db:"due_date"`
	CreatedAt        time.Time           `db:"created_at"`
	LoanRefNo        string              `db:"loan_ref_no"`
	SchemeID         *string             `db:"scheme_id"`
	SanctionedAmount decimal.Decimal     `db:"sanctioned_amount"`
	Purpose          *string             `db:"purpose"`
	RiskScore        decimal.NullDecimal `db:"risk_score"`
	RiskTier         *string             `db:"risk_tier"`
}

func toSummary(r summaryRow) models.Summary {
	s := models.Summary{Header: models.Header{
		ID:               id.VerificationID(r.ID),
		LoanID:           id.LoanID(r.LoanID),
		LoanRefNo:        r.LoanRefNo,
		SchemeID:         r.SchemeID,
		Status:           models.Status(r.Status),
		CurrentTier:      r.CurrentTier,
		DueDate:          r.DueDate,
		CreatedAt:        r.CreatedAt,
		SanctionedAmount: r.SanctionedAmount,
		Purpose:          r.Purpose,
	}}
	if r.RiskScore.Valid && r.RiskTier != nil {
		s.Risk = &models.RiskSummary{Score: r.RiskScore.Decimal, Tier: *r.RiskTier}
	}
	return s
}

func (s *Postgres) ListForBeneficiary(ctx context.Context, beneficiaryID id.UserID) ([]models.Summary, error) {
	var rows []summaryRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT vr.id, vr.loan_id, vr.status, vr.current_tier, vr.due_date, vr.created_at,
			la.loan_ref_no, la.scheme_id::text AS scheme_id, la.sanctioned_amount, la.purpose,
			ra.risk_score, ra.risk_tier
		FROM verification_requests vr
		JOIN loan_applications la ON la.id = vr.loan_id
		LEFT JOIN LATERAL (
			SELECT risk_score, risk_tier
			FROM risk_analyses
			WHERE verification_id = vr.id
			ORDER BY computed_at DESC
			LIMIT 1
		) ra ON true
		WHERE la.beneficiary_id = $1
		ORDER BY vr.created_at DESC
	`, uuid.UUID(beneficiaryID))
	if err != nil {
		return nil, fmt.Errorf("list verifications: %w", err)
	}
	out := make([]models.Summary, 0, len(rows))
	for _, r := range rows {
		out = append(out, toSummary(r))
	}
	return out, nil
}

type headerRow struct {
	summaryRow
	InitiatedBy   uuid.NullUUID `db:"initiated_by"`
	ThresholdsRef []byte        `db:"thresholds_ref"`
	OrgID         uuid.NullUUID `db:"org_id"`
	BeneficiaryID uuid.UUID     `db:"beneficiary_id"`
}

func toDetail(r headerRow) *models.Detail {
	d := &models.Detail{
		Header:        toSummary(r.summaryRow).Header,
		BeneficiaryID: id.UserID(r.BeneficiaryID),
		InitiatedBy:   toUserID(r.InitiatedBy),
		ThresholdsRef: rawOrNil(r.ThresholdsRef),
	}
	if r.OrgID.Valid {
		org := id.OrgID(r.OrgID.UUID)
		d.OrgID = &org
	}
	return d
}

func (s *Postgres) GetHeader(ctx context.Context, verificationID id.VerificationID) (*models.Detail, error) {
	var row headerRow
	err := s.db.GetContext(ctx, &row, `
		SELECT vr.id, vr.loan_id, vr.status, vr.current_tier, vr.due_date, vr.created_at,
			vr.initiated_by, vr.thresholds_ref,
			la.loan_ref_no, la.scheme_id::text AS scheme_id, la.sanctioned_amount, la.purpose,
			la.org_id, la.beneficiary_id
		FROM verification_requests vr
		JOIN loan_applications la ON la.id = vr.loan_id
		WHERE vr.id = $1
	`, uuid.UUID(verificationID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("verification not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("get verification: %w", err)
	}
	return toDetail(row), nil
}

type riskRow struct {
	Score             decimal.Decimal `db:"risk_score"`
	Tier              string          `db:"risk_tier"`
	Flags             pq.StringArray  `db:"flags"`
	Explanation       []byte          `db:"explanation"`
	RecommendedAction *string         `db:"recommended_action"`
}

func toRiskSnapshot(r riskRow) *models.RiskSnapshot {
	flags := strs.DedupeAndTrim(r.Flags)
	if flags == nil {
		flags = []string{}
	}
	return &models.RiskSnapshot{
		Score:             r.Score,
		Tier:              r.Tier,
		Flags:             flags,
		Explanation:       rawOrEmptyArray(r.Explanation),
		RecommendedAction: r.RecommendedAction,
	}
}

// GetLatestRisk returns nil when no analysis has been computed yet.
func (s *Postgres) GetLatestRisk(ctx context.Context, verificationID id.VerificationID) (*models.RiskSnapshot, error) {
	var row riskRow
	err := s.db.GetContext(ctx, &row, `
		SELECT risk_score, risk_tier, flags, explanation, recommended_action
		FROM risk_analyses
		WHERE verification_id = $1
		ORDER BY computed_at DESC
		LIMIT 1
	`, uuid.UUID(verificationID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get risk: %w", err)
	}
	return toRiskSnapshot(row), nil
}

type requirementRow struct {
	ID             uuid.UUID `db:"id"`
	VerificationID uuid.UUID `db:"verification_id"`
	Label          string    `db:"label"`
	Type           string    `db:"type"`
	Required       bool      `db:"required"`
	Instructions   *string   `db:"instructions"`
	Status         string    `db:"status"`
	SortOrder      int       `db:"sort_order"`
	CreatedAt      time.Time `db:"created_at"`
}

func toRequirement(r requirementRow) models.Requirement {
	return models.Requirement{
		ID:             id.RequirementID(r.ID),
		VerificationID: id.VerificationID(r.VerificationID),
		Label:          r.Label,
		Type:           models.RequirementType(r.Type),
		Required:       r.Required,
		Instructions:   r.Instructions,
		Status:         models.RequirementStatus(r.Status),
		SortOrder:      r.SortOrder,
		CreatedAt:      r.CreatedAt,
	}
}

func (s *Postgres) ListRequirements(ctx context.Context, verificationID id.VerificationID) ([]models.Requirement, error) {
	var rows []requirementRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, verification_id, label, type, required, instructions, status, sort_order, created_at
		FROM verification_requirements
		WHERE verification_id = $1
		ORDER BY sort_order ASC, created_at ASC
	`, uuid.UUID(verificationID))
	if err != nil {
		return nil, fmt.Errorf("list requirements: %w", err)
	}
	out := make([]models.Requirement, 0, len(rows))
	for _, r := range rows {
		out = append(out, toRequirement(r))
	}
	return out, nil
}

type evidenceRow struct {
	ID            uuid.UUID     `db:"id"`
	RequirementID uuid.NullUUID `db:"requirement_id"`
	Type          string        `db:"type"`
	StorageURL    string        `db:"storage_url"`
	FileKey       string        `db:"file_key"`
	GPSWKB        []byte        `db:"gps_wkb"`
	CapturedAt    *time.Time    `db:"captured_at"`
	UploadedAt    *time.Time    `db:"uploaded_at"`
	Metadata      []byte        `db:"metadata"`
}

func toEvidence(r evidenceRow) (models.EvidenceItem, error) {
	item := models.EvidenceItem{
		ID:         id.EvidenceID(r.ID),
		Type:       models.RequirementType(r.Type),
		StorageURL: r.StorageURL,
		FileKey:    r.FileKey,
		CapturedAt: r.CapturedAt,
		UploadedAt: r.UploadedAt,
		Metadata:   rawOrNil(r.Metadata),
	}
	if r.RequirementID.Valid {
		rid := id.RequirementID(r.RequirementID.UUID)
		item.RequirementID = &rid
	}
	if len(r.GPSWKB) > 0 {
		lat, lon, err := decodePoint(r.GPSWKB)
		if err != nil {
			return models.EvidenceItem{}, fmt.Errorf("evidence %s: %w", r.ID, err)
		}
		item.Latitude, item.Longitude = &lat, &lon
	}
	return item, nil
}

// decodePoint reads a WKB point. X is longitude, Y is latitude.
func decodePoint(b []byte) (lat, lon float64, err error) {
	g, err := wkb.Unmarshal(b)
	if err != nil {
		return 0, 0, fmt.Errorf("unmarshal gps: %w", err)
	}
	p, ok := g.(*geom.Point)
	if !ok {
		return 0, 0, fmt.Errorf("gps is not a point")
	}
	return p.Y(), p.X(), nil
}

func (s *Postgres) ListEvidence(ctx context.Context, verificationID id.VerificationID) ([]models.EvidenceItem, error) {
	var rows []evidenceRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, requirement_id, type, storage_url, file_key,
			ST_AsBinary(gps::geometry) AS gps_wkb,
			captured_at, uploaded_at, metadata
		FROM evidence_items
		WHERE verification_id = $1
		ORDER BY captured_at DESC NULLS LAST
	`, uuid.UUID(verificationID))
	if err != nil {
		return nil, fmt.Errorf("list evidence: %w", err)
	}
	out := make([]models.EvidenceItem, 0, len(rows))
	for _, r := range rows {
		item, err := toEvidence(r)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

type decisionRow struct {
	ID          uuid.UUID     `db:"id"`
	OfficerID   uuid.NullUUID `db:"officer_id"`
	Decision    string        `db:"decision"`
	Notes       *string       `db:"notes"`
	Attachments []byte        `db:"attachments"`
	DecidedAt   time.Time     `db:"decided_at"`
}

func toDecision(r decisionRow) models.Decision {
	return models.Decision{
		ID:          id.DecisionID(r.ID),
		OfficerID:   toUserID(r.OfficerID),
		Decision:    models.DecisionKind(r.Decision),
		Notes:       r.Notes,
		Attachments: rawOrEmptyArray(r.Attachments),
		DecidedAt:   r.DecidedAt,
	}
}

func (s *Postgres) ListDecisions(ctx context.Context, verificationID id.VerificationID) ([]models.Decision, error) {
	var rows []decisionRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, officer_id, decision, notes, attachments, decided_at
		FROM decisions
		WHERE verification_id = $1
		ORDER BY decided_at DESC
	`, uuid.UUID(verificationID))
	if err != nil {
		return nil, fmt.Errorf("list decisions: %w", err)
	}
	out := make([]models.Decision, 0, len(rows))
	for _, r := range rows {
		out = append(out, toDecision(r))
	}
	return out, nil
}

func toUserID(u uuid.NullUUID) *id.UserID {
	if !u.Valid {
		return nil
	}
	uid := id.UserID(u.UUID)
	return &uid
}

func userArg(u *id.UserID) uuid.NullUUID {
	if u == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(*u), Valid: true}
}

func jsonArg(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}

func rawOrNil(b []byte) json.RawMessage {
	if len(b) == 0 {
		return nil
	}
	return json.RawMessage(b)
}

func rawOrEmptyArray(b []byte) json.RawMessage {
	if len(b) == 0 {
		return json.RawMessage("[]")
	}
	return json.RawMessage(b)
}

var (
	_ service.Tx     = (*Postgres)(nil)
	_ service.Reader = (*Postgres)(nil)
	_ service.Store  = (*PostgresTx)(nil)
)
