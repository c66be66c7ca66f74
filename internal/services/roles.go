package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/snapform/snapform-api/internal/models"
	"github.com/snapform/snapform-api/internal/plans"
	"gorm.io/gorm"
)

// RoleResolver decides which users are super admins.
type RoleResolver struct {
	SuperAdmins []string
}

// IsPrivileged reports whether email is configured as a super admin.
func (r RoleResolver) IsPrivileged(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}
	return lo.Contains(r.SuperAdmins, email)
}

// Actor is the authenticated caller of an owner or admin operation.
type Actor struct {
	ID    string
	Email string
	Role  models.Role
}

// EnsureUser creates or refreshes the user row for a verified identity and
// promotes configured super admins. Safe to call on every request.
func EnsureUser(ctx context.Context, db *gorm.DB, resolver RoleResolver, id Identity) (models.User, error) {
	var user models.User
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("id = ?", id.ID).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			user = models.User{
				ID:    id.ID,
				Email: strings.ToLower(id.Email),
				Name:  id.Name,
				Role:  models.RoleUser,
				Plan:  string(plans.TierFree),
			}
			if resolver.IsPrivileged(id.Email) {
				user.Role = models.RoleSuperAdmin
			}
			return tx.Create(&user).Error
		}
		if err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if email := strings.ToLower(id.Email); email != user.Email {
			updates["email"] = email
		}
		if id.Name != "" && id.Name != user.Name {
			updates["name"] = id.Name
		}
		if resolver.IsPrivileged(id.Email) && user.Role != models.RoleSuperAdmin {
			updates["role"] = models.RoleSuperAdmin
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&user).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id.ID).First(&user).Error
	})
	return user, err
}

// AdminStats is the system overview for administrators.
type AdminStats struct {
	TotalUsers     int64 `json:"totalUsers"`
	TotalForms     int64 `json:"totalForms"`
	TotalResponses int64 `json:"totalResponses"`
	FormsToday     int64 `json:"formsToday"`
	ResponsesToday int64 `json:"responsesToday"`
}

// GetAdminStats counts users, forms and responses, in total and since the
// start of now's UTC day.
func GetAdminStats(ctx context.Context, db *gorm.DB, now time.Time) (AdminStats, error) {
	u := now.UTC()
	today := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	q := db.WithContext(ctx)

	var s AdminStats
	counts := []struct {
		dst   *int64
		query *gorm.DB
	}{
		{&s.TotalUsers, q.Model(&models.User{})},
		{&s.TotalForms, q.Model(&models.Form{})},
		{&s.TotalResponses, q.Model(&models.Response{})},
		{&s.FormsToday, q.Model(&models.Form{}).Where("created_at >= ?", today)},
		{&s.ResponsesToday, q.Model(&models.Response{}).Where("created_at >= ?", today)},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dst).Error; err != nil {
			return AdminStats{}, err
		}
	}
	return s, nil
}

// ListUsers returns a page of users, newest first.
func ListUsers(ctx context.Context, db *gorm.DB, page Page) ([]models.User, Pagination, error) {
	var users []models.User
	var total int64
	q := db.WithContext(ctx).Model(&models.User{}).Session(&gorm.Session{})
	if err := q.Count(&total).Error; err != nil {
		return nil, Pagination{}, err
	}
	if err := q.Order("created_at DESC").Offset(page.Offset()).Limit(page.Limit).Find(&users).Error; err != nil {
		return nil, Pagination{}, err
	}
	return users, page.Result(total), nil
}

// SetUserPlan moves userID to tier.
func SetUserPlan(ctx context.Context, db *gorm.DB, userID string, tier plans.Tier) (models.User, error) {
	return updateUser(ctx, db, userID, "plan", string(tier))
}

// SetUserRole changes userID's role. Only super admins may change roles and
// configured super admins cannot be demoted.
func SetUserRole(ctx context.Context, db *gorm.DB, resolver RoleResolver, actor Actor, userID string, role models.Role) (models.User, error) {
	if actor.Role != models.RoleSuperAdmin {
		return models.User{}, ErrForbidden
	}
	switch role {
	case models.RoleUser, models.RoleAdmin, models.RoleSuperAdmin:
	default:
		return models.User{}, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}

	var user models.User
	if err := db.WithContext(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	if resolver.IsPrivileged(user.Email) && role != models.RoleSuperAdmin {
		return models.User{}, fmt.Errorf("%w: %s is a configured super admin", ErrInvalidInput, user.Email)
	}
	return updateUser(ctx, db, userID, "role", role)
}

func updateUser(ctx context.Context, db *gorm.DB, userID, column string, value interface{}) (models.User, error) {
	var user models.User
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", userID).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		if err := tx.Model(&user).Update(column, value).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", userID).First(&user).Error
	})
	return user, err
}
