package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/snapform/snapform-api/internal/logging"
	"github.com/snapform/snapform-api/internal/models"
	"github.com/snapform/snapform-api/internal/plans"
	"github.com/snapform/snapform-api/internal/sheets"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
	defaultIcon      = "📝"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9-]{3,50}$`)

// Page is a validated pagination request.
type Page struct {
	Number int
	Limit  int
}

// Pagination describes the page returned to the client.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

// NewPage validates page and limit. Zero values select the defaults.
func NewPage(number, limit int) (Page, error) {
	if number == 0 {
		number = 1
	}
	if limit == 0 {
		limit = defaultPageLimit
	}
	if number < 1 {
		return Page{}, fmt.Errorf("%w: page must be at least 1", ErrInvalidInput)
	}
	if limit < 1 || limit > maxPageLimit {
		return Page{}, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidInput, maxPageLimit)
	}
	return Page{Number: number, Limit: limit}, nil
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

func (p Page) Result(total int64) Pagination {
	return Pagination{
		Page:       p.Number,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: (total + int64(p.Limit) - 1) / int64(p.Limit),
	}
}

// FormInput carries owner supplied form attributes. Nil members are left
// unchanged on update.
type FormInput struct {
	Title        *string           `json:"title"`
	Description  *string           `json:"description"`
	CoverURL     *string           `json:"coverUrl"`
	IconSymbol   *string           `json:"iconSymbol"`
	RequireEmail *bool             `json:"requireEmail"`
	Fields       *models.FieldList `json:"fields"`
	Published    *bool             `json:"published"`
	Slug         *string           `json:"slug"`
}

func (in FormInput) validate(creating bool) error {
	if in.Title != nil || creating {
		title := ""
		if in.Title != nil {
			title = strings.TrimSpace(*in.Title)
		}
		if title == "" {
			return fmt.Errorf("%w: form title is required", ErrInvalidInput)
		}
		if utf8.RuneCountInString(title) > 200 {
			return fmt.Errorf("%w: title too long", ErrInvalidInput)
		}
	}
	if in.Description != nil && utf8.RuneCountInString(*in.Description) > 1000 {
		return fmt.Errorf("%w: description too long", ErrInvalidInput)
	}
	if in.CoverURL != nil && *in.CoverURL != "" {
		if u, err := url.Parse(*in.CoverURL); err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: invalid cover URL", ErrInvalidInput)
		}
	}
	if in.IconSymbol != nil && utf8.RuneCountInString(*in.IconSymbol) > 10 {
		return fmt.Errorf("%w: icon symbol too long", ErrInvalidInput)
	}
	if in.Slug != nil && !slugPattern.MatchString(*in.Slug) {
		return fmt.Errorf("%w: slug must be 3-50 lowercase letters, numbers or hyphens", ErrInvalidInput)
	}
	if in.Fields != nil {
		return ValidateFieldSchema(*in.Fields)
	}
	return nil
}

// FormService manages forms for owners. Sheets is optional.
type FormService struct {
	DB     *gorm.DB
	Sheets sheets.Service
}

// CanAccess reports whether actor may read or edit form.
func CanAccess(actor Actor, form *models.Form) bool {
	return actor.Role.IsAdmin() || form.UserID == actor.ID
}

func (s *FormService) load(ctx context.Context, actor Actor, formID uuid.UUID) (*models.Form, error) {
	form, err := FindForm(ctx, s.DB, formID)
	if err != nil {
		return nil, err
	}
	if !CanAccess(actor, form) {
		return nil, ErrForbidden
	}
	return form, nil
}

// Create stores a new form for actor, enforcing the plan's form limit. When
// the plan includes sheet export a response spreadsheet is created and
// shared with the owner; spreadsheet failures do not fail the create.
func (s *FormService) Create(ctx context.Context, actor Actor, in FormInput) (*models.Form, error) {
	if err := in.validate(true); err != nil {
		return nil, err
	}

	tier, err := FindOwnerTier(ctx, s.DB, actor.ID)
	if err != nil {
		return nil, err
	}
	limits := plans.LimitsFor(tier)

	form := models.Form{
		UserID:       actor.ID,
		Title:        strings.TrimSpace(*in.Title),
		IconSymbol:   defaultIcon,
		RequireEmail: true,
		Fields:       models.FieldList{},
	}
	applyFormInput(&form, in)

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if limits.MaxForms != plans.Unlimited {
			// serialise creates per owner where the dialect supports row locks
			var owner models.User
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("id = ?", actor.ID).Limit(1).Find(&owner).Error; err != nil {
				return err
			}
			used, err := CountForms(ctx, tx, actor.ID)
			if err != nil {
				return err
			}
			if !plans.Within(used, limits.MaxForms) {
				return ErrFormLimitReached
			}
		}
		if form.Slug != nil {
			if err := ensureSlugFree(tx, *form.Slug, uuid.Nil); err != nil {
				return err
			}
		}
		return tx.Create(&form).Error
	})
	if err != nil {
		return nil, err
	}

	if s.Sheets != nil && limits.SheetExport && len(form.Fields) > 0 {
		s.attachSheet(ctx, actor, &form)
	}
	return &form, nil
}

func (s *FormService) attachSheet(ctx context.Context, actor Actor, form *models.Form) {
	log := logging.WithFields(logrus.Fields{"form_id": form.ID, "owner_id": actor.ID})

	sheet, err := s.Sheets.CreateSpreadsheet(ctx, form.Title, sheets.Header(form.Fields))
	if err != nil {
		log.WithError(err).Warn("failed to create response spreadsheet")
		return
	}
	if actor.Email != "" {
		if err := s.Sheets.Share(ctx, sheet.ID, actor.Email); err != nil {
			log.WithError(err).Warn("failed to share response spreadsheet")
		}
	}
	err = s.DB.WithContext(ctx).Model(form).Updates(map[string]interface{}{
		"sheet_id":  sheet.ID,
		"sheet_url": sheet.URL,
	}).Error
	if err != nil {
		log.WithError(err).Warn("failed to record response spreadsheet")
		return
	}
	form.SheetID = &sheet.ID
	form.SheetURL = &sheet.URL
}

func applyFormInput(form *models.Form, in FormInput) {
	if in.Title != nil {
		form.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		form.Description = *in.Description
	}
	if in.CoverURL != nil {
		form.CoverURL = *in.CoverURL
	}
	if in.IconSymbol != nil && *in.IconSymbol != "" {
		form.IconSymbol = *in.IconSymbol
	}
	if in.RequireEmail != nil {
		form.RequireEmail = *in.RequireEmail
	}
	if in.Fields != nil {
		form.Fields = *in.Fields
	}
	if in.Published != nil {
		form.Published = *in.Published
	}
	if in.Slug != nil {
		slug := *in.Slug
		form.Slug = &slug
	}
}

func ensureSlugFree(tx *gorm.DB, slug string, self uuid.UUID) error {
	var n int64
	if err := tx.Model(&models.Form{}).Where("slug = ? AND id <> ?", slug, self).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: slug already in use", ErrInvalidInput)
	}
	return nil
}

// Get returns a form the actor owns, or any form for admins.
func (s *FormService) Get(ctx context.Context, actor Actor, formID uuid.UUID) (*models.Form, error) {
	return s.load(ctx, actor, formID)
}

// GetPublic returns a published form for respondents and counts the view.
func (s *FormService) GetPublic(ctx context.Context, formID uuid.UUID) (*models.Form, error) {
	var form models.Form
	err := s.DB.WithContext(ctx).Where("id = ? AND published = ?", formID, true).First(&form).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrFormNotFound
	}
	if err != nil {
		return nil, err
	}
	err = s.DB.WithContext(ctx).Model(&models.Form{}).Where("id = ?", formID).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error
	if err != nil {
		return nil, err
	}
	form.ViewCount++
	return &form, nil
}

// Update applies in to the form. Changed fields rewrite the sheet header on
// a best effort basis.
func (s *FormService) Update(ctx context.Context, actor Actor, formID uuid.UUID, in FormInput) (*models.Form, error) {
	if err := in.validate(false); err != nil {
		return nil, err
	}

	var form models.Form
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", formID).First(&form).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFormNotFound
		}
		if err != nil {
			return err
		}
		if !CanAccess(actor, &form) {
			return ErrForbidden
		}
		if in.Slug != nil {
			if err := ensureSlugFree(tx, *in.Slug, form.ID); err != nil {
				return err
			}
		}
		applyFormInput(&form, in)
		return tx.Select("title", "description", "cover_url", "icon_symbol", "require_email",
			"fields", "published", "slug", "updated_at").Updates(&form).Error
	})
	if err != nil {
		return nil, err
	}

	if in.Fields != nil && s.Sheets != nil && form.SheetID != nil {
		if err := s.Sheets.WriteHeader(ctx, *form.SheetID, sheets.Header(form.Fields)); err != nil {
			logging.WithField("form_id", form.ID).WithError(err).Warn("failed to update sheet header")
		}
	}
	return &form, nil
}

// Delete removes a form and its responses. Only the owner may delete.
func (s *FormService) Delete(ctx context.Context, actor Actor, formID uuid.UUID) error {
	var form models.Form
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", formID).First(&form).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFormNotFound
		}
		if err != nil {
			return err
		}
		if form.UserID != actor.ID {
			return ErrForbidden
		}
		if err := tx.Where("form_id = ?", form.ID).Delete(&models.Response{}).Error; err != nil {
			return err
		}
		return tx.Delete(&form).Error
	})
	if err != nil {
		return err
	}

	if s.Sheets != nil && form.SheetID != nil {
		if err := s.Sheets.Delete(ctx, *form.SheetID); err != nil {
			logging.WithField("form_id", form.ID).WithError(err).Warn("failed to delete response spreadsheet")
		}
	}
	return nil
}

// List returns a page of the owner's forms, most recently updated first.
func (s *FormService) List(ctx context.Context, ownerID string, page Page) ([]models.Form, Pagination, error) {
	return listForms(ctx, s.DB.Where("user_id = ?", ownerID), page)
}

// ListAll returns a page of every form, for administrators.
func (s *FormService) ListAll(ctx context.Context, page Page) ([]models.Form, Pagination, error) {
	return listForms(ctx, s.DB, page)
}

func listForms(ctx context.Context, scope *gorm.DB, page Page) ([]models.Form, Pagination, error) {
	q := scope.WithContext(ctx).Model(&models.Form{}).Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, Pagination{}, err
	}
	var forms []models.Form
	if err := q.Order("updated_at DESC").Offset(page.Offset()).Limit(page.Limit).Find(&forms).Error; err != nil {
		return nil, Pagination{}, err
	}
	return forms, page.Result(total), nil
}

// ListResponses returns a page of a form's responses, newest first.
func (s *FormService) ListResponses(ctx context.Context, actor Actor, formID uuid.UUID, page Page) ([]models.Response, Pagination, error) {
	if _, err := s.load(ctx, actor, formID); err != nil {
		return nil, Pagination{}, err
	}
	q := s.DB.WithContext(ctx).Model(&models.Response{}).Where("form_id = ?", formID).Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, Pagination{}, err
	}
	var responses []models.Response
	if err := q.Order("created_at DESC").Offset(page.Offset()).Limit(page.Limit).Find(&responses).Error; err != nil {
		return nil, Pagination{}, err
	}
	return responses, page.Result(total), nil
}
