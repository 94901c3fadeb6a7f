package services

import (
	"errors"

	"github.com/songyu/bugtrack/internal/models"
	"gorm.io/gorm"
)

// DeveloperService is the registry of assignable engineers.
type DeveloperService struct {
	db *gorm.DB
}

func NewDeveloperService(db *gorm.DB) *DeveloperService {
	return &DeveloperService{db: db}
}

// DeveloperUpdate carries optional fields for a partial developer update.
type DeveloperUpdate struct {
	Name   *string `json:"name"`
	Email  *string `json:"email"`
	Role   *string `json:"role"`
	Status *string `json:"status"`
}

// Create registers a developer. Duplicate name or email yields ErrDuplicate.
func (s *DeveloperService) Create(name string, email *string, role, status string) (uint, error) {
	var count int64
	if err := s.db.Model(&models.Developer{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return 0, err
	}
	if count == 0 && email != nil {
		if err := s.db.Model(&models.Developer{}).Where("email = ?", *email).Count(&count).Error; err != nil {
			return 0, err
		}
	}
	if count > 0 {
		return 0, ErrDuplicate
	}

	dev := models.Developer{
		Name:   name,
		Email:  email,
		Role:   role,
		Status: status,
	}
	if err := s.db.Create(&dev).Error; err != nil {
		return 0, err
	}
	return dev.ID, nil
}

// List returns one page of developers plus the unpaginated total. Search is
// a substring match on name; role/status filters equal to "all" or empty are
// absent. Ordering is name ascending so pagination stays stable.
func (s *DeveloperService) List(search, roleFilter, statusFilter string, page, pageSize int) ([]models.Developer, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	query := s.db.Model(&models.Developer{})
	if search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}
	if roleFilter != "" && roleFilter != models.FilterAll {
		query = query.Where("role = ?", roleFilter)
	}
	if statusFilter != "" && statusFilter != models.FilterAll {
		query = query.Where("status = ?", statusFilter)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var devs []models.Developer
	err := query.Order("name ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&devs).Error
	if err != nil {
		return nil, 0, err
	}
	return devs, total, nil
}

// GetByID returns nil without error when the id does not exist.
func (s *DeveloperService) GetByID(id uint) (*models.Developer, error) {
	var dev models.Developer
	if err := s.db.First(&dev, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &dev, nil
}

// ResolveByName looks up a developer by exact name. Nil when absent.
func (s *DeveloperService) ResolveByName(name string) (*models.Developer, error) {
	var dev models.Developer
	if err := s.db.Where("name = ?", name).First(&dev).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &dev, nil
}

// Update applies only the provided fields; false when nothing was supplied
// or no row matched. A name/email conflict with another developer yields
// ErrDuplicate.
func (s *DeveloperService) Update(id uint, upd DeveloperUpdate) (bool, error) {
	updates := make(map[string]interface{})
	if upd.Name != nil {
		var count int64
		if err := s.db.Model(&models.Developer{}).
			Where("name = ? AND id <> ?", *upd.Name, id).
			Count(&count).Error; err != nil {
			return false, err
		}
		if count > 0 {
			return false, ErrDuplicate
		}
		updates["name"] = *upd.Name
	}
	if upd.Email != nil {
		var count int64
		if err := s.db.Model(&models.Developer{}).
			Where("email = ? AND id <> ?", *upd.Email, id).
			Count(&count).Error; err != nil {
			return false, err
		}
		if count > 0 {
			return false, ErrDuplicate
		}
		updates["email"] = *upd.Email
	}
	if upd.Role != nil {
		updates["role"] = *upd.Role
	}
	if upd.Status != nil {
		updates["status"] = *upd.Status
	}

	if len(updates) == 0 {
		return false, nil
	}

	res := s.db.Model(&models.Developer{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Delete removes a developer unless any bug still references it. The
// reference count and the delete run in one transaction so a concurrent
// assignment cannot slip between check and mutation.
func (s *DeveloperService) Delete(id uint) (bool, error) {
	deleted := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var assigned int64
		if err := tx.Model(&models.Bug{}).Where("assignee_id = ?", id).Count(&assigned).Error; err != nil {
			return err
		}
		if assigned > 0 {
			return nil
		}

		res := tx.Delete(&models.Developer{}, id)
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	return deleted, err
}
