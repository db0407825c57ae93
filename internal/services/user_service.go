package services

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"useradmin/internal/domain"
	"useradmin/internal/domain/models"
	"useradmin/internal/repositories"
	"useradmin/internal/utils"
)

const minPasswordLength = 6

// UserService validates user writes and hashes passwords before they
// reach the repository.
type UserService struct {
	Repo      repositories.UserRepository
	Logger    *zap.SugaredLogger
	RequestID string
	HashCost  int
}

func (s UserService) cost() int {
	if s.HashCost == 0 {
		return bcrypt.DefaultCost
	}
	return s.HashCost
}

func (s UserService) List(ctx context.Context, f repositories.UserFilter) (models.UserPage, error) {
	if f.Status != "" && !models.ValidStatus(f.Status) {
		return models.UserPage{}, domain.ValidationError{Field: "status", Msg: "must be active or inactive"}
	}
	list, total, err := s.Repo.List(ctx, f)
	if err != nil {
		return models.UserPage{}, err
	}
	return models.UserPage{Data: list, TotalUsers: total}, nil
}

func (s UserService) Get(ctx context.Context, id int64) (models.User, error) {
	if id <= 0 {
		return models.User{}, domain.ValidationError{Field: "id", Msg: "invalid id"}
	}
	return s.Repo.GetByID(ctx, id)
}

func (s UserService) Create(ctx context.Context, in models.UserInput) (models.User, error) {
	in = in.Normalize()
	if in.Status == "" {
		in.Status = models.StatusActive
	}
	if err := validateUser(in, true); err != nil {
		return models.User{}, err
	}
	if err := s.ensureUsernameFree(ctx, in.Username, 0); err != nil {
		return models.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost())
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	u := models.User{Username: in.Username, Name: in.Name, Lastname: in.Lastname, Status: in.Status}
	id, err := s.Repo.Create(ctx, u, string(hash))
	if err != nil {
		return models.User{}, err
	}
	u.ID = id
	utils.LogEvent(s.Logger, s.RequestID, "users", "create", "id="+strconv.FormatInt(id, 10))
	return u, nil
}

// Update replaces the profile fields of id. A blank password keeps the
// stored hash.
func (s UserService) Update(ctx context.Context, id int64, in models.UserInput) (models.User, error) {
	if id <= 0 {
		return models.User{}, domain.ValidationError{Field: "id", Msg: "invalid id"}
	}
	in = in.Normalize()
	if err := validateUser(in, false); err != nil {
		return models.User{}, err
	}
	if err := s.ensureUsernameFree(ctx, in.Username, id); err != nil {
		return models.User{}, err
	}

	hash := ""
	if in.Password != "" {
		b, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost())
		if err != nil {
			return models.User{}, fmt.Errorf("hash password: %w", err)
		}
		hash = string(b)
	}
	u := models.User{ID: id, Username: in.Username, Name: in.Name, Lastname: in.Lastname, Status: in.Status}
	if err := s.Repo.Update(ctx, u, hash); err != nil {
		return models.User{}, err
	}
	utils.LogEvent(s.Logger, s.RequestID, "users", "update", "id="+strconv.FormatInt(id, 10))
	return u, nil
}

func (s UserService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return domain.ValidationError{Field: "id", Msg: "invalid id"}
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	utils.LogEvent(s.Logger, s.RequestID, "users", "delete", "id="+strconv.FormatInt(id, 10))
	return nil
}

func (s UserService) ensureUsernameFree(ctx context.Context, username string, exceptID int64) error {
	taken, err := s.Repo.UsernameTaken(ctx, username, exceptID)
	if err != nil {
		return err
	}
	if taken {
		return domain.ConflictError{Resource: "user", Msg: "username already exists"}
	}
	return nil
}

func validateUser(in models.UserInput, creating bool) error {
	switch {
	case in.Username == "":
		return domain.ValidationError{Field: "username", Msg: "required"}
	case in.Name == "":
		return domain.ValidationError{Field: "name", Msg: "required"}
	case in.Lastname == "":
		return domain.ValidationError{Field: "lastname", Msg: "required"}
	case !models.ValidStatus(in.Status):
		return domain.ValidationError{Field: "status", Msg: "must be active or inactive"}
	}
	if creating && in.Password == "" {
		return domain.ValidationError{Field: "password", Msg: "required"}
	}
	if in.Password != "" && len(in.Password) < minPasswordLength {
		return domain.ValidationError{Field: "password", Msg: "too short"}
	}
	return nil
}
