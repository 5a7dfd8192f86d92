package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/picshare/internal/common"
	"github.com/dmitrijs2005/picshare/internal/dbx"
	"github.com/dmitrijs2005/picshare/internal/server/models"
)

// PostgresRepository implements account storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, subjectID string) (*models.Account, error) {
	query :=
		`SELECT subject_id, email, provider_uid FROM accounts
		 WHERE subject_id = $1
		 `

	account := &models.Account{}
	var email, uid sql.NullString
	err := r.db.QueryRowContext(ctx, query, subjectID).Scan(&account.SubjectID, &email, &uid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	// NULL identity columns mean a placeholder created by an ACL grant.
	if email.Valid || uid.Valid {
		account.Identity = &models.Identity{Email: email.String, UserID: uid.String}
	}

	membership, err := r.membership(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	account.ACLMembership = membership

	return account, nil
}

func (r *PostgresRepository) membership(ctx context.Context, subjectID string) ([]string, error) {
	query :=
		`SELECT sharing_subject_id FROM account_shares
		 WHERE subject_id = $1
		 ORDER BY sharing_subject_id
		 `

	rows, err := r.db.QueryContext(ctx, query, subjectID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		result = append(result, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) (bool, error) {
	query :=
		`INSERT INTO accounts (subject_id, email, provider_uid)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (subject_id) DO NOTHING
		 `

	var email, uid sql.NullString
	if account.Identity != nil {
		email = sql.NullString{String: account.Identity.Email, Valid: true}
		uid = sql.NullString{String: account.Identity.UserID, Valid: true}
	}

	res, err := r.db.ExecContext(ctx, query, account.SubjectID, email, uid)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return n > 0, nil
}

func (r *PostgresRepository) CreatePlaceholder(ctx context.Context, subjectID string) error {
	query :=
		`INSERT INTO accounts (subject_id)
		 VALUES ($1)
		 ON CONFLICT (subject_id) DO NOTHING
		 `

	if _, err := r.db.ExecContext(ctx, query, subjectID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) SetIdentity(ctx context.Context, subjectID string, identity models.Identity) error {
	query :=
		`UPDATE accounts SET email = $2, provider_uid = $3
		 WHERE subject_id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, subjectID, identity.Email, identity.UserID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) AddMembership(ctx context.Context, subjectID, sharingSubjectID string) error {
	query :=
		`INSERT INTO account_shares (subject_id, sharing_subject_id)
		 VALUES ($1, $2)
		 ON CONFLICT (subject_id, sharing_subject_id) DO NOTHING
		 `

	if _, err := r.db.ExecContext(ctx, query, subjectID, sharingSubjectID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
