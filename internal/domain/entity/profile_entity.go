package entity

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrProfileMissing  = errors.New("account has no profile")
	ErrProfileMismatch = errors.New("profile does not match user role")
)

// Profile is the role specific half of an account. Exactly one variant
// exists per user and its Role always equals User.Role.
type Profile interface {
	Role() Role
	isProfile()
}

type LearningMode string

const (
	LearningOnline   LearningMode = "Online"
	LearningInPerson LearningMode = "In-Person"
)

var LearningModes = []LearningMode{LearningOnline, LearningInPerson}

func (m LearningMode) Valid() bool {
	return m == LearningOnline || m == LearningInPerson
}

type StudentProfile struct {
	ID                    int64
	UserID                string
	PreferredLearningMode LearningMode
	EducationLevel        string
}

func (*StudentProfile) Role() Role { return RoleStudent }
func (*StudentProfile) isProfile() {}

// TutorProfile carries the documents every tutor uploads at sign up.
// IsVerified is only flipped by an administrator.
type TutorProfile struct {
	ID                int64
	UserID            string
	IsVerified        bool
	CV                string
	Resume            string
	ProofOfIdentity   string
	PersonalStatement string

	Education      []TutorEducation
	Certifications []TutorCertification
}

func (*TutorProfile) Role() Role { return RoleTutor }
func (*TutorProfile) isProfile() {}

type AdminProfile struct {
	ID     int64
	UserID string
}

func (*AdminProfile) Role() Role { return RoleAdmin }
func (*AdminProfile) isProfile() {}

type DocumentType string

const (
	DocHighSchoolDiploma DocumentType = "High School Diploma"
	DocCollegeDegree     DocumentType = "College Degree"
	DocMasters           DocumentType = "Masters"
	DocPhD               DocumentType = "PhD"
)

var DocumentTypes = []DocumentType{DocHighSchoolDiploma, DocCollegeDegree, DocMasters, DocPhD}

func (d DocumentType) Valid() bool {
	switch d {
	case DocHighSchoolDiploma, DocCollegeDegree, DocMasters, DocPhD:
		return true
	}
	return false
}

type TutorEducation struct {
	ID           int64
	TutorID      int64
	DocumentType DocumentType
	File         string
	CreatedAt    time.Time
}

// MaxCertificationFiles bounds the attachments of one certification.
const MaxCertificationFiles = 3

type TutorCertification struct {
	ID        int64
	TutorID   int64
	Name      string
	File1     string
	File2     string
	File3     string
	CreatedAt time.Time
}

// Files returns the non-empty attachments in slot order.
func (c *TutorCertification) Files() []string {
	out := make([]string, 0, MaxCertificationFiles)
	for _, f := range []string{c.File1, c.File2, c.File3} {
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// SetFiles fills the attachment slots in order.
func (c *TutorCertification) SetFiles(keys []string) error {
	if len(keys) > MaxCertificationFiles {
		return fmt.Errorf("certification accepts at most %d files, got %d", MaxCertificationFiles, len(keys))
	}
	slots := []*string{&c.File1, &c.File2, &c.File3}
	for i, k := range keys {
		*slots[i] = k
	}
	return nil
}

// Account pairs a user with its profile variant.
type Account struct {
	User    User
	Profile Profile
}

func (a *Account) Validate() error {
	if a.Profile == nil {
		return ErrProfileMissing
	}
	if a.Profile.Role() != a.User.Role {
		return fmt.Errorf("%w: user is %s, profile is %s", ErrProfileMismatch, a.User.Role, a.Profile.Role())
	}
	return nil
}

func (a *Account) Student() (*StudentProfile, bool) {
	p, ok := a.Profile.(*StudentProfile)
	return p, ok
}

func (a *Account) Tutor() (*TutorProfile, bool) {
	p, ok := a.Profile.(*TutorProfile)
	return p, ok
}

func (a *Account) Admin() (*AdminProfile, bool) {
	p, ok := a.Profile.(*AdminProfile)
	return p, ok
}

// BlobKeys lists every stored file owned by the account.
func (a *Account) BlobKeys() []string {
	var keys []string
	if a.User.ProfilePic != "" {
		keys = append(keys, a.User.ProfilePic)
	}
	t, ok := a.Tutor()
	if !ok {
		return keys
	}
	for _, k := range []string{t.CV, t.Resume, t.ProofOfIdentity} {
		if k != "" {
			keys = append(keys, k)
		}
	}
	for _, e := range t.Education {
		if e.File != "" {
			keys = append(keys, e.File)
		}
	}
	for i := range t.Certifications {
		keys = append(keys, t.Certifications[i].Files()...)
	}
	return keys
}
