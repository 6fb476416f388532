package repositories

import (
	"context"

	"github.com/gofrs/uuid"

	"task-tracker/internal/database"
	"task-tracker/internal/models"
)

type UserSort int

const (
	UserSortNewest UserSort = iota
	UserSortNameAsc
	UserSortNameDesc
)

type UserFilter struct {
	Role  string
	Email string
}

type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context, filter UserFilter, sort UserSort) ([]models.User, error)
	Create(ctx context.Context, name, email, passwordHash, role string) (*models.User, error)
	Save(ctx context.Context, user *models.User) (*models.User, error)
}

type UserRepositoryImpl struct {
	store *database.Store
}

func NewUserRepository(store *database.Store) *UserRepositoryImpl {
	return &UserRepositoryImpl{store: store}
}

// FindByEmail matches the address exactly; nil means no such user.
func (r *UserRepositoryImpl) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return database.FindOne[models.User](ctx, r.store, database.Filter{"email": email})
}

func (r *UserRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return database.FindByID[models.User](ctx, r.store, id)
}

func (r *UserRepositoryImpl) List(ctx context.Context, filter UserFilter, sort UserSort) ([]models.User, error) {
	where := database.Filter{}
	if filter.Role != "" {
		where["role"] = filter.Role
	}
	if filter.Email != "" {
		where["email"] = filter.Email
	}

	var order database.Sort
	switch sort {
	case UserSortNameAsc:
		order = database.Sort{Column: "name"}
	case UserSortNameDesc:
		order = database.Sort{Column: "name", Desc: true}
	default:
		order = database.Sort{Column: "created_at", Desc: true}
	}
	return database.Find[models.User](ctx, r.store, where, order)
}

// Create stores a new account. Role falls back to developer; attendance
// always starts absent.
func (r *UserRepositoryImpl) Create(ctx context.Context, name, email, passwordHash, role string) (*models.User, error) {
	if role == "" {
		role = models.RoleDeveloper
	}
	return database.Save(ctx, r.store, &models.User{
		Name:       name,
		Email:      email,
		Password:   passwordHash,
		Role:       role,
		Attendance: models.AttendanceAbsent,
	})
}

func (r *UserRepositoryImpl) Save(ctx context.Context, user *models.User) (*models.User, error) {
	return database.Save(ctx, r.store, user)
}
