package handlers

import (
	"errors"
	"io"
	"mime/multipart"

	"github.com/oksasatya/online-school/internal/application"
	"github.com/oksasatya/online-school/internal/domain/entity"
)

type registerForm struct {
	Username string                `form:"username" binding:"required,max=150,username"`
	Password string                `form:"password" binding:"required,pwd"`
	Role     string                `form:"role" binding:"required,oneof=Student Tutor"`
	Phone    string                `form:"phone" binding:"required,max=20"`
	Gender   string                `form:"gender" binding:"required,oneof=Male Female Other"`
	Address  string                `form:"address" binding:"required,max=255"`
	Picture  *multipart.FileHeader `form:"profile_pic"`

	PreferredLearningMode string `form:"preferred_learning_mode" binding:"required_if=Role Student,learning_mode"`
	EducationLevel        string `form:"education_level" binding:"required_if=Role Student,max=100"`

	CV                *multipart.FileHeader `form:"cv" binding:"required_if=Role Tutor"`
	Resume            *multipart.FileHeader `form:"resume" binding:"required_if=Role Tutor"`
	ProofOfIdentity   *multipart.FileHeader `form:"proof_of_identity" binding:"required_if=Role Tutor"`
	PersonalStatement string                `form:"personal_statement_or_teaching_philosophy" binding:"required_if=Role Tutor"`
}

// values echoes the submitted text fields back into the form. The
// password is never sent back.
func (f *registerForm) values() map[string]string {
	return map[string]string{
		"username":                f.Username,
		"role":                    f.Role,
		"phone":                   f.Phone,
		"gender":                  f.Gender,
		"address":                 f.Address,
		"preferred_learning_mode": f.PreferredLearningMode,
		"education_level":         f.EducationLevel,
		"personal_statement_or_teaching_philosophy": f.PersonalStatement,
	}
}

type loginForm struct {
	Username string `form:"username" binding:"required,max=150"`
	Password string `form:"password" binding:"required"`
}

type educationForm struct {
	DocumentType string                `form:"document_type" binding:"required,document_type"`
	File         *multipart.FileHeader `form:"file" binding:"required"`
}

type certificationForm struct {
	Name  string                `form:"name" binding:"max=255"`
	File1 *multipart.FileHeader `form:"file1"`
	File2 *multipart.FileHeader `form:"file2"`
	File3 *multipart.FileHeader `form:"file3"`
}

// uploads opens submitted files and closes them all at once.
type uploads struct {
	closers []io.Closer
}

func (u *uploads) open(fh *multipart.FileHeader) (*application.FileUpload, error) {
	if fh == nil {
		return nil, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	u.closers = append(u.closers, f)
	return &application.FileUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Body:        f,
	}, nil
}

func (u *uploads) Close() error {
	var errs []error
	for _, c := range u.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

func (f *registerForm) input(u *uploads) (application.RegisterInput, error) {
	in := application.RegisterInput{
		Username:              f.Username,
		Password:              f.Password,
		Role:                  entity.Role(f.Role),
		Phone:                 f.Phone,
		Gender:                entity.Gender(f.Gender),
		Address:               f.Address,
		PreferredLearningMode: entity.LearningMode(f.PreferredLearningMode),
		EducationLevel:        f.EducationLevel,
		PersonalStatement:     f.PersonalStatement,
	}
	var err error
	if in.ProfilePic, err = u.open(f.Picture); err != nil {
		return in, err
	}
	if in.Role != entity.RoleTutor {
		return in, nil
	}
	if in.CV, err = u.open(f.CV); err != nil {
		return in, err
	}
	if in.Resume, err = u.open(f.Resume); err != nil {
		return in, err
	}
	if in.ProofOfIdentity, err = u.open(f.ProofOfIdentity); err != nil {
		return in, err
	}
	return in, nil
}

func (f *certificationForm) files(u *uploads) ([]application.FileUpload, error) {
	var out []application.FileUpload
	for _, fh := range []*multipart.FileHeader{f.File1, f.File2, f.File3} {
		up, err := u.open(fh)
		if err != nil {
			return nil, err
		}
		if up != nil {
			out = append(out, *up)
		}
	}
	return out, nil
}
