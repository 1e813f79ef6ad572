package domain

import (
	"errors"
	"time"
)

const (
	OpinionOK      = "ok"
	OpinionNeutral = "neutral"
	OpinionAvoid   = "avoid"
	OpinionUnknown = "unknown"
)

var (
	MessageSuccessRegisterProduct   = "product registered successfully"
	MessageSuccessProductExists     = "product already registered"
	MessageSuccessGetProducts       = "products retrieved successfully"
	MessageSuccessGetProduct        = "product retrieved successfully"
	MessageSuccessSearchProduct     = "similar product found"
	MessageSuccessHealthSuggestion  = "health suggestion generated successfully"
	MessageSuccessReviewProduct     = "review saved successfully"
	MessageSuccessRemoveFromHistory = "product removed from history"

	MessageFailedRegisterProduct   = "failed to register product"
	MessageFailedGetProducts       = "failed to retrieve products"
	MessageFailedGetProduct        = "failed to retrieve product"
	MessageFailedSearchProduct     = "failed to search product"
	MessageFailedHealthSuggestion  = "failed to generate health suggestion"
	MessageFailedReviewProduct     = "failed to save review"
	MessageFailedRemoveFromHistory = "failed to remove product from history"

	ErrProductNotFound      = errors.New("product not found")
	ErrProductNotRegistered = errors.New("product is not in the user's history")
	ErrInvalidProductID     = errors.New("invalid product id")
	ErrInvalidBarcode       = errors.New("barcode must not be blank")
	ErrInvalidImage         = errors.New("invalid base64 image, must be a PNG, JPEG or WEBP data URI")
	ErrNoSimilarProduct     = errors.New("no similar product found")
)

type (
	RegisterBarcodeRequest struct {
		Barcode string `json:"barcode" validate:"required"`
	}

	RegisterPhotoRequest struct {
		ImageBase64 string `json:"imageBase64" validate:"required,image_data_uri"`
	}

	SearchPhotoRequest struct {
		ImageBase64 string `json:"imageBase64" validate:"required,image_data_uri"`
		MineOnly    bool   `json:"mineOnly"`
	}

	HealthSuggestionRequest struct {
		ProductID   uint   `json:"productId"`
		ImageBase64 string `json:"imageBase64" validate:"required,image_data_uri"`
	}

	ReviewProductRequest struct {
		Rating int    `json:"rating" validate:"required,min=1,max=5"`
		Note   string `json:"note" validate:"omitempty,max=2000"`
	}

	ProductResponse struct {
		ID                 uint       `json:"id"`
		Name               string     `json:"name"`
		Barcode            *string    `json:"barcode"`
		Brands             string     `json:"brands"`
		ImageURL           string     `json:"imageUrl"`
		Categories         string     `json:"categories"`
		IsReviewed         bool       `json:"isReviewed"`
		UserRating         *int       `json:"userRating"`
		UserNotes          *string    `json:"userNotes"`
		DateReviewed       *time.Time `json:"dateReviewed"`
		DateScanned        *time.Time `json:"dateScanned"`
		LikeCount          int        `json:"likeCount"`
		AIHealthConclusion *string    `json:"aiHealthConclusion"`
		AIHealthSummary    *string    `json:"aiHealthSummary"`
	}
)

func IsValidOpinion(opinion string) bool {
	switch opinion {
	case OpinionOK, OpinionNeutral, OpinionAvoid, OpinionUnknown:
		return true
	}
	return false
}
