package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/online-school/internal/domain/entity"
	"github.com/oksasatya/online-school/internal/domain/repository"
)

const uniqueViolation = "23505"

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, username, password, role, phone, gender, address, COALESCE(profile_pic, ''), created_at, updated_at`

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	if err := row.Scan(&u.ID, &u.Username, &u.Password, &u.Role, &u.Phone, &u.Gender, &u.Address,
		&u.ProfilePic, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) CreateAccount(ctx context.Context, a *entity.Account) error {
	if err := a.Validate(); err != nil {
		return err
	}
	u := &a.User
	if u.ID == "" {
		u.ID = uuid.NewString()
	}

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO users (id, username, password, role, phone, gender, address, profile_pic)
			VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''))
			RETURNING created_at, updated_at
		`, u.ID, u.Username, u.Password, u.Role, u.Phone, u.Gender, u.Address, u.ProfilePic).
			Scan(&u.CreatedAt, &u.UpdatedAt)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				return repository.ErrUsernameTaken
			}
			return fmt.Errorf("insert user: %w", err)
		}
		if err := insertProfile(ctx, tx, u.ID, a.Profile); err != nil {
			return fmt.Errorf("insert %s profile: %w", u.Role, err)
		}
		return nil
	})
}

func insertProfile(ctx context.Context, q querier, userID string, p entity.Profile) error {
	switch p := p.(type) {
	case *entity.StudentProfile:
		p.UserID = userID
		return q.QueryRow(ctx, `
			INSERT INTO student_profiles (user_id, preferred_learning_mode, education_level)
			VALUES ($1, $2, $3)
			RETURNING id
		`, userID, p.PreferredLearningMode, p.EducationLevel).Scan(&p.ID)
	case *entity.TutorProfile:
		p.UserID = userID
		return q.QueryRow(ctx, `
			INSERT INTO tutor_profiles (user_id, is_verified, cv, resume, proof_of_identity, personal_statement_or_teaching_philosophy)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`, userID, p.IsVerified, p.CV, p.Resume, p.ProofOfIdentity, p.PersonalStatement).Scan(&p.ID)
	case *entity.AdminProfile:
		p.UserID = userID
		return q.QueryRow(ctx, `
			INSERT INTO admin_profiles (user_id) VALUES ($1) RETURNING id
		`, userID).Scan(&p.ID)
	default:
		return fmt.Errorf("unsupported profile type %T", p)
	}
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, repository.ErrNotFound
	}
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists)
	return exists, err
}

func (r *UserRepository) GetAccount(ctx context.Context, userID string) (*entity.Account, error) {
	u, err := r.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	a := &entity.Account{User: *u}

	switch u.Role {
	case entity.RoleStudent:
		p := &entity.StudentProfile{UserID: u.ID}
		err = r.pool.QueryRow(ctx, `
			SELECT id, preferred_learning_mode, education_level
			FROM student_profiles WHERE user_id = $1
		`, u.ID).Scan(&p.ID, &p.PreferredLearningMode, &p.EducationLevel)
		a.Profile = p
	case entity.RoleTutor:
		var p *entity.TutorProfile
		p, err = r.tutorProfile(ctx, u.ID)
		if err == nil {
			p.Education, err = r.ListEducation(ctx, p.ID)
		}
		if err == nil {
			p.Certifications, err = r.ListCertifications(ctx, p.ID)
		}
		a.Profile = p
	case entity.RoleAdmin:
		p := &entity.AdminProfile{UserID: u.ID}
		err = r.pool.QueryRow(ctx, `SELECT id FROM admin_profiles WHERE user_id = $1`, u.ID).Scan(&p.ID)
		a.Profile = p
	default:
		return nil, fmt.Errorf("user %s has unknown role %q", u.ID, u.Role)
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s profile of user %s: %w", u.Role, u.ID, repository.ErrNotFound)
		}
		return nil, err
	}
	return a, nil
}

func (r *UserRepository) tutorProfile(ctx context.Context, userID string) (*entity.TutorProfile, error) {
	p := &entity.TutorProfile{UserID: userID}
	err := r.pool.QueryRow(ctx, `
		SELECT id, is_verified, cv, resume, proof_of_identity, personal_statement_or_teaching_philosophy
		FROM tutor_profiles WHERE user_id = $1
	`, userID).Scan(&p.ID, &p.IsVerified, &p.CV, &p.Resume, &p.ProofOfIdentity, &p.PersonalStatement)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *UserRepository) tutorID(ctx context.Context, userID string) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `SELECT id FROM tutor_profiles WHERE user_id = $1`, userID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, repository.ErrNotTutor
	}
	return id, err
}

// ListEducation returns the education documents of a tutor profile, oldest first.
func (r *UserRepository) ListEducation(ctx context.Context, tutorID int64) ([]entity.TutorEducation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, tutor_id, document_type, file, created_at
		FROM tutor_educations WHERE tutor_id = $1 ORDER BY id
	`, tutorID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.TutorEducation, error) {
		var e entity.TutorEducation
		err := row.Scan(&e.ID, &e.TutorID, &e.DocumentType, &e.File, &e.CreatedAt)
		return e, err
	})
}

// ListCertifications returns the certifications of a tutor profile, oldest first.
func (r *UserRepository) ListCertifications(ctx context.Context, tutorID int64) ([]entity.TutorCertification, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, tutor_id, COALESCE(name, ''), COALESCE(file1, ''), COALESCE(file2, ''), COALESCE(file3, ''), created_at
		FROM tutor_certifications WHERE tutor_id = $1 ORDER BY id
	`, tutorID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.TutorCertification, error) {
		var c entity.TutorCertification
		err := row.Scan(&c.ID, &c.TutorID, &c.Name, &c.File1, &c.File2, &c.File3, &c.CreatedAt)
		return c, err
	})
}

func (r *UserRepository) AddEducation(ctx context.Context, userID string, e *entity.TutorEducation) error {
	tid, err := r.tutorID(ctx, userID)
	if err != nil {
		return err
	}
	e.TutorID = tid
	return r.pool.QueryRow(ctx, `
		INSERT INTO tutor_educations (tutor_id, document_type, file)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, tid, e.DocumentType, e.File).Scan(&e.ID, &e.CreatedAt)
}

func (r *UserRepository) AddCertification(ctx context.Context, userID string, c *entity.TutorCertification) error {
	tid, err := r.tutorID(ctx, userID)
	if err != nil {
		return err
	}
	c.TutorID = tid
	return r.pool.QueryRow(ctx, `
		INSERT INTO tutor_certifications (tutor_id, name, file1, file2, file3)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''))
		RETURNING id, created_at
	`, tid, c.Name, c.File1, c.File2, c.File3).Scan(&c.ID, &c.CreatedAt)
}

// SetTutorVerified flips the flag and touches users.updated_at in one
// statement.
func (r *UserRepository) SetTutorVerified(ctx context.Context, userID string, verified bool) error {
	if _, err := uuid.Parse(userID); err != nil {
		return repository.ErrNotTutor
	}
	res, err := r.pool.Exec(ctx, `
		WITH t AS (
			UPDATE tutor_profiles SET is_verified = $1 WHERE user_id = $2 RETURNING user_id
		)
		UPDATE users SET updated_at = now() FROM t WHERE users.id = t.user_id
	`, verified, userID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotTutor
	}
	return nil
}

func (r *UserRepository) DeleteUser(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return repository.ErrNotFound
	}
	res, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
