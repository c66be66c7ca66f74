package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/snapform/snapform-api/internal/types"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Form struct {
	ID            uuid.UUID  `gorm:"type:char(36);primaryKey" json:"id"`
	UserID        string     `gorm:"type:char(36);not null;index" json:"userId"`
	Title         string     `gorm:"size:200;not null" json:"title"`
	Description   string     `gorm:"size:1000" json:"description"`
	CoverURL      string     `gorm:"size:2048" json:"coverUrl"`
	IconSymbol    string     `gorm:"size:10" json:"iconSymbol"`
	Slug          *string    `gorm:"size:50;uniqueIndex" json:"slug,omitempty"`
	Published     bool       `gorm:"not null" json:"published"`
	RequireEmail  bool       `gorm:"not null" json:"requireEmail"`
	Fields        FieldList  `gorm:"not null" json:"fields"`
	ResponseCount int64      `gorm:"not null;default:0" json:"responseCount"`
	ViewCount     int64      `gorm:"not null;default:0" json:"viewCount"`
	SheetID       *string    `gorm:"size:128" json:"sheetId,omitempty"`
	SheetURL      *string    `gorm:"size:512" json:"sheetUrl,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	Responses     []Response `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (f *Form) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// ResponseData maps a field id to its submitted value.
type ResponseData map[string]types.FieldValue

// Response is one submission. It is never updated after insert.
type Response struct {
	ID        uuid.UUID                        `gorm:"type:char(36);primaryKey" json:"id"`
	FormID    uuid.UUID                        `gorm:"type:char(36);not null;index:idx_responses_form_created,priority:1" json:"formId"`
	Email     *string                          `gorm:"size:254" json:"email,omitempty"`
	Data      datatypes.JSONType[ResponseData] `gorm:"not null" json:"data"`
	IPAddress string                           `gorm:"size:64" json:"-"`
	UserAgent string                           `gorm:"size:512" json:"-"`
	Referrer  *string                          `gorm:"size:2048" json:"referrer,omitempty"`
	CreatedAt time.Time                        `gorm:"not null;index;index:idx_responses_form_created,priority:2" json:"createdAt"`
}

func (r *Response) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Template is an admin-curated starting point for new forms.
type Template struct {
	ID          uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Description string    `gorm:"size:1000" json:"description"`
	Category    string    `gorm:"size:50;index" json:"category"`
	IconSymbol  string    `gorm:"size:10" json:"iconSymbol"`
	Fields      FieldList `gorm:"not null" json:"fields"`
	Featured    bool      `gorm:"not null" json:"featured"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (t *Template) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

func (Form) TableName() string {
	return "forms"
}

func (Response) TableName() string {
	return "responses"
}

func (Template) TableName() string {
	return "templates"
}
