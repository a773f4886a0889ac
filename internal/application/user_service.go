package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/online-school/internal/domain/entity"
	repo "github.com/oksasatya/online-school/internal/domain/repository"
	"github.com/oksasatya/online-school/pkg/helpers"
	mailtpl "github.com/oksasatya/online-school/pkg/mailer/templates"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrUserNotFound       = errors.New("user not found")
	ErrNotTutor           = errors.New("only tutors can upload documents")
	ErrMissingDocument    = errors.New("missing required document")
	ErrRoleNotAllowed     = errors.New("role cannot self-register")
)

type Service struct {
	Repo     repo.UserRepository
	Blobs    BlobStore
	Sessions *SessionStore
	Logger   *logrus.Logger

	// optional collaborators
	Index   UserIndex
	Jobs    JobPublisher
	Metrics *helpers.Prom
	Brand   mailtpl.Brand
}

func NewService(repo repo.UserRepository, blobs BlobStore, sessions *SessionStore, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{Repo: repo, Blobs: blobs, Sessions: sessions, Logger: logger}
}

type RegisterInput struct {
	Username string
	Password string
	Role     entity.Role
	Phone    string
	Gender   entity.Gender
	Address  string

	ProfilePic *FileUpload

	// Student
	PreferredLearningMode entity.LearningMode
	EducationLevel        string

	// Tutor
	CV                *FileUpload
	Resume            *FileUpload
	ProofOfIdentity   *FileUpload
	PersonalStatement string

	IP string
}

// Register creates the user and its role profile. Files are uploaded before
// the database write and removed again if the write fails.
func (s *Service) Register(ctx context.Context, in RegisterInput) (acc *entity.Account, err error) {
	defer func() { s.Metrics.ObserveRegistration(string(in.Role), err) }()

	if in.Role != entity.RoleStudent && in.Role != entity.RoleTutor {
		return nil, ErrRoleNotAllowed
	}
	if in.Role == entity.RoleTutor {
		for name, f := range map[string]*FileUpload{"cv": in.CV, "resume": in.Resume, "proof_of_identity": in.ProofOfIdentity} {
			if f == nil {
				return nil, fmt.Errorf("%w: %s", ErrMissingDocument, name)
			}
		}
	}

	taken, err := s.Repo.ExistsByUsername(ctx, in.Username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if taken {
		return nil, ErrUsernameTaken
	}

	var stored []string
	put := func(bucket string, f *FileUpload) (string, error) {
		if f == nil {
			return "", nil
		}
		key, err := s.upload(ctx, bucket, f)
		if err != nil {
			return "", fmt.Errorf("store %s: %w", f.Filename, err)
		}
		stored = append(stored, key)
		return key, nil
	}
	defer func() {
		if err != nil {
			s.discard(ctx, stored)
		}
	}()

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	acc = &entity.Account{User: entity.User{
		Username: in.Username,
		Password: hash,
		Role:     in.Role,
		Phone:    in.Phone,
		Gender:   in.Gender,
		Address:  in.Address,
	}}
	if acc.User.ProfilePic, err = put(BucketProfilePics, in.ProfilePic); err != nil {
		return nil, err
	}

	switch in.Role {
	case entity.RoleStudent:
		acc.Profile = &entity.StudentProfile{
			PreferredLearningMode: in.PreferredLearningMode,
			EducationLevel:        in.EducationLevel,
		}
	case entity.RoleTutor:
		t := &entity.TutorProfile{PersonalStatement: in.PersonalStatement}
		if t.CV, err = put(BucketCV, in.CV); err != nil {
			return nil, err
		}
		if t.Resume, err = put(BucketResume, in.Resume); err != nil {
			return nil, err
		}
		if t.ProofOfIdentity, err = put(BucketIdentity, in.ProofOfIdentity); err != nil {
			return nil, err
		}
		acc.Profile = t
	}

	if err = s.Repo.CreateAccount(ctx, acc); err != nil {
		if errors.Is(err, repo.ErrUsernameTaken) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	s.Logger.WithFields(logrus.Fields{"user_id": acc.User.ID, "role": acc.User.Role}).Info("user registered")
	s.index(ctx, acc)
	s.notifyRegistration(ctx, acc, in.IP)
	return acc, nil
}

// Authenticate checks username and password without starting a session.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*entity.User, error) {
	u, err := s.Repo.GetByUsername(ctx, username)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *Service) StartSession(ctx context.Context, u *entity.User) (Session, error) {
	return s.Sessions.Start(ctx, u)
}

func (s *Service) Login(ctx context.Context, username, password string) (u *entity.User, sess Session, err error) {
	defer func() { s.Metrics.ObserveLogin(err) }()

	u, err = s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, Session{}, err
	}
	sess, err = s.Sessions.Start(ctx, u)
	if err != nil {
		return nil, Session{}, err
	}
	s.Logger.WithField("user_id", u.ID).Info("user logged in")
	return u, sess, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	return s.Sessions.Destroy(ctx, token)
}

func (s *Service) ResolveSession(ctx context.Context, token string) (*Identity, error) {
	return s.Sessions.Resolve(ctx, token)
}

func (s *Service) GetAccount(ctx context.Context, userID string) (*entity.Account, error) {
	a, err := s.Repo.GetAccount(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}
	return a, nil
}

func (s *Service) requireTutor(ctx context.Context, userID string) error {
	a, err := s.GetAccount(ctx, userID)
	if err != nil {
		return err
	}
	if _, ok := a.Tutor(); !ok {
		return ErrNotTutor
	}
	return nil
}

func (s *Service) AddEducation(ctx context.Context, userID string, docType entity.DocumentType, f FileUpload) (*entity.TutorEducation, error) {
	if err := s.requireTutor(ctx, userID); err != nil {
		return nil, err
	}
	key, err := s.upload(ctx, BucketEducation, &f)
	if err != nil {
		return nil, fmt.Errorf("store %s: %w", f.Filename, err)
	}
	e := &entity.TutorEducation{DocumentType: docType, File: key}
	if err := s.Repo.AddEducation(ctx, userID, e); err != nil {
		s.discard(ctx, []string{key})
		if errors.Is(err, repo.ErrNotTutor) {
			return nil, ErrNotTutor
		}
		return nil, fmt.Errorf("add education: %w", err)
	}
	return e, nil
}

func (s *Service) AddCertification(ctx context.Context, userID, name string, files []FileUpload) (*entity.TutorCertification, error) {
	if len(files) > entity.MaxCertificationFiles {
		return nil, fmt.Errorf("at most %d files per certification", entity.MaxCertificationFiles)
	}
	if err := s.requireTutor(ctx, userID); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(files))
	for i := range files {
		key, err := s.upload(ctx, BucketCertifications, &files[i])
		if err != nil {
			s.discard(ctx, keys)
			return nil, fmt.Errorf("store %s: %w", files[i].Filename, err)
		}
		keys = append(keys, key)
	}

	c := &entity.TutorCertification{Name: name}
	if err := c.SetFiles(keys); err != nil {
		s.discard(ctx, keys)
		return nil, err
	}
	if err := s.Repo.AddCertification(ctx, userID, c); err != nil {
		s.discard(ctx, keys)
		if errors.Is(err, repo.ErrNotTutor) {
			return nil, ErrNotTutor
		}
		return nil, fmt.Errorf("add certification: %w", err)
	}
	return c, nil
}

// DeleteAccount removes the user with every owned record, then its files,
// session and search entry. Only the database delete can fail the call.
func (s *Service) DeleteAccount(ctx context.Context, userID string) error {
	a, err := s.GetAccount(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.Repo.DeleteUser(ctx, userID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}

	s.discard(ctx, a.BlobKeys())
	if err := s.Sessions.DestroyUser(ctx, userID); err != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Warn("session cleanup failed")
	}
	if s.Index != nil {
		if err := s.Index.Remove(ctx, userID); err != nil {
			s.Logger.WithError(err).WithField("user_id", userID).Warn("search index remove failed")
		}
	}
	s.Logger.WithField("user_id", userID).Info("account deleted")
	return nil
}

func (s *Service) SearchUsers(ctx context.Context, q string, size int) ([]UserDoc, error) {
	if s.Index == nil {
		return []UserDoc{}, nil
	}
	return s.Index.Search(ctx, q, size)
}

// ProvisionAdmin creates an administrator unless the username exists.
// created reports whether a new account was written.
func (s *Service) ProvisionAdmin(ctx context.Context, username, password string) (acc *entity.Account, created bool, err error) {
	if u, err := s.Repo.GetByUsername(ctx, username); err == nil {
		if u.Role != entity.RoleAdmin {
			return nil, false, fmt.Errorf("user %q exists with role %s", username, u.Role)
		}
		a, err := s.GetAccount(ctx, u.ID)
		return a, false, err
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, false, fmt.Errorf("lookup admin: %w", err)
	}

	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, false, fmt.Errorf("hash password: %w", err)
	}
	acc = &entity.Account{
		User:    entity.User{Username: username, Password: hash, Role: entity.RoleAdmin, Gender: entity.GenderOther},
		Profile: &entity.AdminProfile{},
	}
	if err := s.Repo.CreateAccount(ctx, acc); err != nil {
		return nil, false, fmt.Errorf("create admin: %w", err)
	}
	s.index(ctx, acc)
	return acc, true, nil
}

// VerifyTutor marks the tutor's documents as reviewed.
func (s *Service) VerifyTutor(ctx context.Context, username string) error {
	u, err := s.Repo.GetByUsername(ctx, username)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("lookup tutor: %w", err)
	}
	if err := s.Repo.SetTutorVerified(ctx, u.ID, true); err != nil {
		if errors.Is(err, repo.ErrNotTutor) {
			return ErrNotTutor
		}
		return fmt.Errorf("verify tutor: %w", err)
	}
	if a, err := s.Repo.GetAccount(ctx, u.ID); err == nil {
		s.index(ctx, a)
	}
	s.notifyTutorVerified(ctx, u)
	return nil
}

func (s *Service) index(ctx context.Context, a *entity.Account) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexAccount(context.WithoutCancel(ctx), a); err != nil {
		s.Logger.WithError(err).WithField("user_id", a.User.ID).Warn("search index failed")
	}
}
