package services

import (
	"errors"
	"time"

	"github.com/songyu/bugtrack/internal/models"
	"github.com/songyu/bugtrack/internal/utils"
	"gorm.io/gorm"
)

// AuthService is the credential store: it owns user accounts, password
// hashing and the admin-survival invariant.
type AuthService struct {
	db *gorm.DB
}

func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{db: db}
}

// UserUpdate carries optional fields for a partial user update.
type UserUpdate struct {
	Username *string `json:"username"`
	Role     *string `json:"role"`
	Email    *string `json:"email"`
	RealName *string `json:"real_name"`
	Status   *string `json:"status"`
}

// CreateUser registers a new account. The password is combined with a fresh
// random salt and one-way hashed; the plaintext is never persisted.
// Returns ErrDuplicate when the username or email is already taken.
func (s *AuthService) CreateUser(username, password, role string, email *string, realName string) (uint, error) {
	var count int64
	if err := s.db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return 0, err
	}
	if count == 0 && email != nil {
		if err := s.db.Model(&models.User{}).Where("email = ?", *email).Count(&count).Error; err != nil {
			return 0, err
		}
	}
	if count > 0 {
		return 0, ErrDuplicate
	}

	salt, err := utils.GenerateSalt()
	if err != nil {
		return 0, err
	}

	user := models.User{
		Username:     username,
		PasswordHash: utils.HashPassword(password, salt),
		Salt:         salt,
		Role:         role,
		Email:        email,
		RealName:     realName,
		Status:       models.UserStatusActive,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return 0, err
	}
	return user.ID, nil
}

// Authenticate matches an active user by username, recomputes the password
// hash with the stored salt and compares. On success the last-login time is
// stamped; on failure nothing is mutated and ErrInvalidCredentials is
// returned.
func (s *AuthService) Authenticate(username, password string) (*models.User, error) {
	var user models.User
	err := s.db.Where("username = ? AND status = ?", username, models.UserStatusActive).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !utils.VerifyPassword(password, user.Salt, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	if err := s.db.Model(&user).Update("last_login", now).Error; err != nil {
		return nil, err
	}
	user.LastLogin = &now
	return &user, nil
}

// ChangePassword regenerates the salt and hash unconditionally.
func (s *AuthService) ChangePassword(id uint, newPassword string) (bool, error) {
	salt, err := utils.GenerateSalt()
	if err != nil {
		return false, err
	}

	res := s.db.Model(&models.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"password_hash": utils.HashPassword(newPassword, salt),
		"salt":          salt,
	})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DeleteUser soft-deletes an account by flipping its status to inactive.
// The row persists. Returns false without mutating anything when the target
// is the last active admin; the guard and the status flip run in one
// transaction so a concurrent delete cannot slip past the count.
func (s *AuthService) DeleteUser(id uint) (bool, error) {
	deleted := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		if user.Role == models.RoleAdmin {
			var admins int64
			if err := tx.Model(&models.User{}).
				Where("role = ? AND status = ?", models.RoleAdmin, models.UserStatusActive).
				Count(&admins).Error; err != nil {
				return err
			}
			if admins <= 1 {
				return nil
			}
		}

		res := tx.Model(&models.User{}).Where("id = ?", id).
			Update("status", models.UserStatusInactive)
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	return deleted, err
}

// UpdateUser applies only the provided fields. Returns false when nothing
// was supplied or no row matched. Username/email conflicts with other users
// surface as ErrDuplicate.
func (s *AuthService) UpdateUser(id uint, upd UserUpdate) (bool, error) {
	updates := make(map[string]interface{})
	if upd.Username != nil {
		var count int64
		if err := s.db.Model(&models.User{}).
			Where("username = ? AND id <> ?", *upd.Username, id).
			Count(&count).Error; err != nil {
			return false, err
		}
		if count > 0 {
			return false, ErrDuplicate
		}
		updates["username"] = *upd.Username
	}
	if upd.Email != nil {
		var count int64
		if err := s.db.Model(&models.User{}).
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
	if upd.RealName != nil {
		updates["real_name"] = *upd.RealName
	}
	if upd.Status != nil {
		updates["status"] = *upd.Status
	}

	if len(updates) == 0 {
		return false, nil
	}

	res := s.db.Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// GetUserByID returns nil without error when the id does not exist.
func (s *AuthService) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// ListUsers returns a page of users plus the unpaginated total. Search
// matches username or real name as a substring; an empty or "all" role
// filter is treated as absent. Ordering is created_at descending.
func (s *AuthService) ListUsers(search, roleFilter string, page, pageSize int) ([]models.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	query := s.db.Model(&models.User{})
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("username LIKE ? OR real_name LIKE ?", like, like)
	}
	if roleFilter != "" && roleFilter != models.FilterAll {
		query = query.Where("role = ?", roleFilter)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}
