package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-feedback-api/internal/models"
	"github.com/noah-isme/course-feedback-api/pkg/database"
)

// LoginCodeRepository persists login codes and resolves them to identities.
type LoginCodeRepository struct {
	db *sqlx.DB
}

// NewLoginCodeRepository constructs the repository.
func NewLoginCodeRepository(db *sqlx.DB) *LoginCodeRepository {
	return &LoginCodeRepository{db: db}
}

const insertCodeQuery = `INSERT INTO login_codes (code, user_type, is_used, generated_on)
VALUES ($1, $2, FALSE, $3)
ON CONFLICT (code) DO NOTHING`

// Insert stores an unused code. It reports false when the code already exists.
func (r *LoginCodeRepository) Insert(ctx context.Context, code *models.LoginCode) (bool, error) {
	return insertCode(ctx, r.db, code)
}

func insertCode(ctx context.Context, exec sqlx.ExecerContext, code *models.LoginCode) (bool, error) {
	if code.GeneratedOn.IsZero() {
		code.GeneratedOn = time.Now().UTC()
	}
	res, err := exec.ExecContext(ctx, insertCodeQuery, code.Code, code.Role, code.GeneratedOn)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("insert login code: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert login code rows: %w", err)
	}
	return affected == 1, nil
}

// List returns every code, newest first, with the user it was provisioned to.
func (r *LoginCodeRepository) List(ctx context.Context) ([]models.LoginCodeDetail, error) {
	const query = `SELECT lc.code, lc.user_type, lc.is_used, lc.generated_on, u.user_name AS assigned_to
FROM login_codes lc
LEFT JOIN users u ON u.login_code = lc.code
ORDER BY lc.generated_on DESC, lc.code`
	var codes []models.LoginCodeDetail
	if err := r.db.SelectContext(ctx, &codes, query); err != nil {
		return nil, fmt.Errorf("list login codes: %w", err)
	}
	return codes, nil
}

// Authenticate resolves code to the user provisioned with it under role.
// When consume is set the code is locked and marked used in the same
// transaction, so only one concurrent login can succeed with it.
func (r *LoginCodeRepository) Authenticate(ctx context.Context, code string, role models.Role, consume bool) (*models.Identity, error) {
	var identity models.Identity
	err := database.WithTx(ctx, r.db, nil, func(tx *sqlx.Tx) error {
		lookup := `SELECT code, user_type, is_used, generated_on FROM login_codes WHERE code = $1`
		if consume {
			lookup += ` FOR UPDATE`
		}
		var stored models.LoginCode
		if err := tx.GetContext(ctx, &stored, lookup, code); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrCodeNotFound
			}
			return fmt.Errorf("lookup login code: %w", err)
		}
		if stored.Role != role {
			return &WrongRoleError{Actual: stored.Role}
		}

		const userQuery = `SELECT user_id, user_name, user_type FROM users WHERE login_code = $1 AND user_type = $2`
		if err := tx.GetContext(ctx, &identity, userQuery, code, role); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNoMatchingUser
			}
			return fmt.Errorf("lookup user by login code: %w", err)
		}

		if !consume {
			return nil
		}
		if stored.Used {
			return ErrCodeConsumed
		}
		const consumeQuery = `UPDATE login_codes SET is_used = TRUE WHERE code = $1 AND is_used = FALSE`
		res, err := tx.ExecContext(ctx, consumeQuery, code)
		if err != nil {
			return fmt.Errorf("consume login code: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("consume login code rows: %w", err)
		}
		if affected == 0 {
			return ErrCodeConsumed
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &identity, nil
}

// ProvisionUser stores a fresh code and the user bound to it atomically. It
// reports false, storing nothing, when the code collides with an existing one.
func (r *LoginCodeRepository) ProvisionUser(ctx context.Context, user *models.User, code *models.LoginCode) (bool, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	user.LoginCode = &code.Code

	errCollision := errors.New("code collision")
	err := database.WithTx(ctx, r.db, nil, func(tx *sqlx.Tx) error {
		inserted, err := insertCode(ctx, tx, code)
		if err != nil {
			return err
		}
		if !inserted {
			return errCollision
		}
		const query = `INSERT INTO users (user_id, user_name, user_type, login_code, created_at)
VALUES (:user_id, :user_name, :user_type, :login_code, :created_at)`
		if _, err := tx.NamedExecContext(ctx, query, user); err != nil {
			return fmt.Errorf("insert user: %w", err)
		}
		return nil
	})
	if errors.Is(err, errCollision) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
