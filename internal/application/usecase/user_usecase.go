package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/branch-pos-api/internal/application/auth"
	"github.com/jhoicas/branch-pos-api/internal/application/dto"
	"github.com/jhoicas/branch-pos-api/internal/application/identity"
	"github.com/jhoicas/branch-pos-api/internal/domain"
	"github.com/jhoicas/branch-pos-api/internal/domain/entity"
	"github.com/jhoicas/branch-pos-api/internal/domain/repository"
)

var phonePattern = regexp.MustCompile(`^[0-9]{10,11}$`)

// UserUseCase directorio de usuarios; todas las operaciones son solo para admin.
type UserUseCase struct {
	repo       repository.UserRepository
	bcryptCost int
}

// NewUserUseCase construye el caso de uso con el puerto de persistencia.
func NewUserUseCase(repo repository.UserRepository) *UserUseCase {
	return &UserUseCase{repo: repo, bcryptCost: bcrypt.DefaultCost}
}

// WithBcryptCost cambia el costo de bcrypt (los tests usan bcrypt.MinCost).
func (uc *UserUseCase) WithBcryptCost(cost int) *UserUseCase {
	uc.bcryptCost = cost
	return uc
}

type userFields struct {
	name, lastName, email, phone, role, branchID string
}

func validateUser(name, lastName, email, phone, role, branchID string) (*userFields, error) {
	f := &userFields{
		name:     strings.TrimSpace(name),
		lastName: strings.TrimSpace(lastName),
		email:    auth.NormalizeEmail(email),
		phone:    strings.TrimSpace(phone),
		role:     strings.TrimSpace(role),
		branchID: strings.TrimSpace(branchID),
	}
	if f.role == "" {
		f.role = entity.RoleUser
	}
	switch {
	case f.name == "":
		return nil, domain.NewValidationError("name", "el nombre es obligatorio")
	case f.email == "":
		return nil, domain.NewValidationError("email", "el correo es obligatorio")
	case !auth.EmailPattern.MatchString(f.email):
		return nil, domain.NewValidationError("email", "el formato del correo no es válido")
	case f.phone != "" && !phonePattern.MatchString(f.phone):
		return nil, domain.NewValidationError("phone", "el teléfono debe tener 10 u 11 dígitos")
	case !entity.IsValidRole(f.role):
		return nil, domain.NewValidationError("role", "el rol debe ser admin o user")
	case f.branchID == "":
		return nil, domain.NewValidationError("branch_id", "la sucursal es obligatoria")
	}
	return f, nil
}

func (uc *UserUseCase) hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), uc.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// Create da de alta un usuario con la contraseña hasheada.
func (uc *UserUseCase) Create(ctx context.Context, sess *identity.Session, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	if !sess.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	f, err := validateUser(in.Name, in.LastName, in.Email, in.Phone, in.Role, in.BranchID)
	if err != nil {
		return nil, err
	}
	if len(in.Password) < auth.MinPasswordLength {
		return nil, domain.NewValidationError("password", fmt.Sprintf("la contraseña debe tener al menos %d caracteres", auth.MinPasswordLength))
	}
	hash, err := uc.hash(in.Password)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	user := &entity.User{
		ID:           uuid.New().String(),
		Name:         f.name,
		LastName:     f.lastName,
		Email:        f.email,
		Phone:        f.phone,
		Role:         f.role,
		BranchID:     f.branchID,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// GetByID obtiene un usuario por ID.
func (uc *UserUseCase) GetByID(ctx context.Context, sess *identity.Session, id string) (*dto.UserResponse, error) {
	if !sess.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	return toUserResponse(user), nil
}

// List lista usuarios, opcionalmente de una sucursal.
func (uc *UserUseCase) List(ctx context.Context, sess *identity.Session, branchID string) (*dto.ListResponse[dto.UserResponse], error) {
	if !sess.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	list, err := uc.repo.List(ctx, branchID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.UserResponse, 0, len(list))
	for _, u := range list {
		items = append(items, *toUserResponse(u))
	}
	out := dto.NewList(items)
	return &out, nil
}

// Update sobrescribe nombre, correo, teléfono, rol y sucursal; la contraseña solo si viene.
// La contraseña nueva no se vuelve a validar en largo.
func (uc *UserUseCase) Update(ctx context.Context, sess *identity.Session, id string, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	if !sess.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	f, err := validateUser(in.Name, in.LastName, in.Email, in.Phone, in.Role, in.BranchID)
	if err != nil {
		return nil, err
	}
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	user.Name = f.name
	user.LastName = f.lastName
	user.Email = f.email
	user.Phone = f.phone
	user.Role = f.role
	user.BranchID = f.branchID
	if in.Password != "" {
		if user.PasswordHash, err = uc.hash(in.Password); err != nil {
			return nil, err
		}
	}
	user.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// Delete elimina la cuenta; sus sesiones abiertas fallan en la siguiente petición.
func (uc *UserUseCase) Delete(ctx context.Context, sess *identity.Session, id string) error {
	if !sess.IsAdmin() {
		return domain.ErrForbidden
	}
	return uc.repo.Delete(ctx, id)
}

func toUserResponse(u *entity.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		LastName:  u.LastName,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      u.Role,
		BranchID:  u.BranchID,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
