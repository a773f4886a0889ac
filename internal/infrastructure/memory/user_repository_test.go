package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/oksasatya/online-school/internal/domain/entity"
	"github.com/oksasatya/online-school/internal/domain/repository"
)

func tutorAccount(username string) *entity.Account {
	return &entity.Account{
		User:    entity.User{Username: username, Role: entity.RoleTutor},
		Profile: &entity.TutorProfile{CV: "cv", Resume: "resume", ProofOfIdentity: "id"},
	}
}

func TestCreateAccountRejectsMismatchedProfile(t *testing.T) {
	repo := NewUserRepository()
	a := &entity.Account{User: entity.User{Username: "x", Role: entity.RoleTutor}, Profile: &entity.StudentProfile{}}
	if err := repo.CreateAccount(context.Background(), a); !errors.Is(err, entity.ErrProfileMismatch) {
		t.Fatalf("got %v, want ErrProfileMismatch", err)
	}
	if repo.Len() != 0 {
		t.Fatal("no user should be stored")
	}
}

func TestUniqueUsername(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()
	if err := repo.CreateAccount(ctx, tutorAccount("tom")); err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	if err := repo.CreateAccount(ctx, tutorAccount("tom")); !errors.Is(err, repository.ErrUsernameTaken) {
		t.Fatalf("got %v, want ErrUsernameTaken", err)
	}
}

func TestGetAccountReturnsCopy(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()
	a := tutorAccount("tom")
	if err := repo.CreateAccount(ctx, a); err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}

	got, err := repo.GetAccount(ctx, a.User.ID)
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	tp, _ := got.Tutor()
	tp.IsVerified = true

	again, _ := repo.GetAccount(ctx, a.User.ID)
	if tp2, _ := again.Tutor(); tp2.IsVerified {
		t.Fatal("mutating a returned account must not change the store")
	}
}

func TestDeleteUserDropsTutorDocuments(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()
	a := tutorAccount("tom")
	if err := repo.CreateAccount(ctx, a); err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	if err := repo.AddEducation(ctx, a.User.ID, &entity.TutorEducation{DocumentType: entity.DocPhD, File: "f"}); err != nil {
		t.Fatalf("AddEducation: %v", err)
	}
	if err := repo.DeleteUser(ctx, a.User.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if _, err := repo.GetAccount(ctx, a.User.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	if ok, _ := repo.ExistsByUsername(ctx, "tom"); ok {
		t.Fatal("username should be free again")
	}
	if err := repo.DeleteUser(ctx, a.User.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("second delete: got %v, want ErrNotFound", err)
	}
}
