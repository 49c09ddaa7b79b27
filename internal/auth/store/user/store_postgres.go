package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"digipraman/internal/auth/models"
	id "digipraman/pkg/domain"
	"digipraman/pkg/platform/sentinel"
)

// PostgresUserStore reads and writes the users table.
type PostgresUserStore struct {
	db *sqlx.DB
}

func NewPostgres(db *sqlx.DB) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

const userColumns = `id, org_id, role, name, mobile, email, locale, status, created_at`

type userRow struct {
	ID        uuid.UUID      `db:"id"`
	OrgID     uuid.NullUUID  `db:"org_id"`
	Role      string         `db:"role"`
	Name      string         `db:"name"`
	Mobile    string         `db:"mobile"`
	Email     sql.NullString `db:"email"`
	Locale    sql.NullString `db:"locale"`
	Status    sql.NullString `db:"status"`
	CreatedAt time.Time      `db:"created_at"`
}

func toUser(r userRow) *models.User {
	u := &models.User{
		ID:        id.UserID(r.ID),
		Role:      r.Role,
		Name:      r.Name,
		Mobile:    r.Mobile,
		Email:     r.Email.String,
		Locale:    r.Locale.String,
		Status:    r.Status.String,
		CreatedAt: r.CreatedAt,
	}
	if u.Locale == "" {
		u.Locale = "en"
	}
	if r.OrgID.Valid {
		org := id.OrgID(r.OrgID.UUID)
		u.OrgID = &org
	}
	return u
}

func orgArg(org *id.OrgID) uuid.NullUUID {
	if org == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(*org), Valid: true}
}

func (s *PostgresUserStore) get(ctx context.Context, query string, arg any) (*models.User, error) {
	var row userRow
	if err := s.db.GetContext(ctx, &row, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return toUser(row), nil
}

func (s *PostgresUserStore) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	return s.get(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, uuid.UUID(userID))
}

func (s *PostgresUserStore) FindByMobile(ctx context.Context, mobile string) (*models.User, error) {
	return s.get(ctx, `SELECT `+userColumns+` FROM users WHERE mobile = $1 LIMIT 1`, mobile)
}

func (s *PostgresUserStore) Save(ctx context.Context, u *models.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			org_id = EXCLUDED.org_id, role = EXCLUDED.role, name = EXCLUDED.name,
			mobile = EXCLUDED.mobile, email = EXCLUDED.email, locale = EXCLUDED.locale,
			status = EXCLUDED.status
	`, uuid.UUID(u.ID), orgArg(u.OrgID), u.Role, u.Name, u.Mobile, u.Email, u.Locale, u.Status, u.CreatedAt)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

// FindOrCreate inserts candidate unless a user with the same mobile exists.
// The unique mobile constraint settles concurrent first logins.
func (s *PostgresUserStore) FindOrCreate(ctx context.Context, candidate *models.User) (*models.User, bool, error) {
	var row userRow
	err := s.db.GetContext(ctx, &row, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9)
		ON CONFLICT (mobile) DO NOTHING
		RETURNING `+userColumns,
		uuid.UUID(candidate.ID), orgArg(candidate.OrgID), candidate.Role, candidate.Name,
		candidate.Mobile, candidate.Email, candidate.Locale, candidate.Status, candidate.CreatedAt,
	)
	if err == nil {
		return toUser(row), true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("insert user: %w", err)
	}
	existing, err := s.FindByMobile(ctx, candidate.Mobile)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (s *PostgresUserStore) Delete(ctx context.Context, userID id.UserID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, uuid.UUID(userID))
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
	}
	return nil
}
