package employee

import (
	"context"
	"errors"

	employeeerrors "github.com/LamineOzilJr/memoire-master2/internal/employee/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Directory is the read-only lookup surface other modules depend on. The
// transition engine resolves the requester's manager through it and the
// notification consumer fans role recipients out with it, without either
// touching the full employee service.
type Directory struct {
	repo Repository
}

func NewDirectory(repo Repository) *Directory {
	return &Directory{repo: repo}
}

// FindManagerID returns nil with no error when the employee exists but
// has no manager assigned.
func (d *Directory) FindManagerID(ctx context.Context, employeeID string) (*uuid.UUID, error) {
	e, err := d.repo.FindByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, employeeerrors.ErrEmployeeNotFound
		}
		return nil, err
	}
	return e.ManagerID, nil
}

func (d *Directory) FindIDsByRole(ctx context.Context, role string) ([]string, error) {
	return d.repo.FindIDsByRole(ctx, role)
}
