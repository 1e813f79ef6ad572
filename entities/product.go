package entities

import (
	"time"

	"github.com/google/uuid"
)

type Product struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Barcode        *string   `gorm:"uniqueIndex" json:"barcode"`
	Name           string    `json:"name"`
	GenericName    string    `json:"generic_name,omitempty"`
	Brands         string    `json:"brands"`
	Categories     string    `json:"categories"`
	ImageURL       string    `gorm:"type:text" json:"image_url"`
	Ingredients    string    `gorm:"type:text" json:"ingredients,omitempty"`
	ImageEmbedding Embedding `gorm:"type:vector(1536)" json:"-"`

	Timestamp
}

// History records that a user has encountered a product.
type History struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	ProductID   uint      `gorm:"not null;index" json:"product_id"`
	TextContent *string   `gorm:"type:text" json:"text_content,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`

	Product *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

func (History) TableName() string {
	return "history"
}

// AISuggestion holds one health opinion per (user, product). Opinion and
// Reason stay null until a suggestion has been computed.
type AISuggestion struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_ai_suggestions_user_product" json:"user_id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_ai_suggestions_user_product" json:"product_id"`
	Opinion   *string   `json:"opinion"`
	Reason    *string   `gorm:"type:text" json:"reason"`

	Product *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Timestamp
}

func (AISuggestion) TableName() string {
	return "ai_suggestions"
}

type Review struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_user_product" json:"user_id"`
	ProductID  uint      `gorm:"not null;uniqueIndex:idx_reviews_user_product" json:"product_id"`
	Rating     int       `json:"rating"`
	Note       string    `gorm:"type:text" json:"note"`
	LikesCount int       `gorm:"default:0" json:"likes_count"`

	Product *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Timestamp
}

// ProductInteraction is the per-user read model joining a product with the
// caller's history, review and AI suggestion rows.
type ProductInteraction struct {
	ProductID    uint       `gorm:"column:product_id"`
	Name         string     `gorm:"column:name"`
	Barcode      *string    `gorm:"column:barcode"`
	Brands       string     `gorm:"column:brands"`
	ImageURL     string     `gorm:"column:image_url"`
	Categories   string     `gorm:"column:categories"`
	IsReviewed   bool       `gorm:"column:is_reviewed"`
	UserRating   *int       `gorm:"column:user_rating"`
	UserNote     *string    `gorm:"column:user_note"`
	DateReviewed *time.Time `gorm:"column:date_reviewed"`
	DateScanned  *time.Time `gorm:"column:date_scanned"`
	LikesCount   int        `gorm:"column:likes_count"`
	AIOpinion    *string    `gorm:"column:ai_opinion"`
	AIReason     *string    `gorm:"column:ai_reason"`
}
