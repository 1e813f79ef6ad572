package product

import (
	"context"
	"errors"
	"flavorpal-backend/domain"
	"flavorpal-backend/entities"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type (
	ProductRepository interface {
		FindByBarcode(ctx context.Context, barcode string) (*entities.Product, error)
		HasHistory(ctx context.Context, productID uint) (bool, error)
		GetProductByID(ctx context.Context, id uint) (*entities.Product, error)
		RegisterProduct(ctx context.Context, product *entities.Product, history *entities.History) error
		RecordScan(ctx context.Context, history *entities.History) error
		FindMostSimilar(ctx context.Context, embedding entities.Embedding, threshold float64, userID *uuid.UUID) (*entities.Product, error)

		// Per-user state
		IsRegisteredByUser(ctx context.Context, productID uint, userID uuid.UUID) (bool, error)
		UpdateAISuggestion(ctx context.Context, productID uint, userID uuid.UUID, opinion, reason string) error
		GetProductInteraction(ctx context.Context, productID uint, userID uuid.UUID) (*entities.ProductInteraction, error)
		ListProductInteractions(ctx context.Context, userID uuid.UUID, page, limit int) ([]*entities.ProductInteraction, int64, error)
		DeleteHistory(ctx context.Context, productID uint, userID uuid.UUID) error
		UpsertReview(ctx context.Context, review *entities.Review) error
	}

	productRepository struct {
		db *gorm.DB
	}
)

const interactionColumns = `
	p.id AS product_id, p.name, p.barcode, p.brands, p.image_url, p.categories,
	r.id IS NOT NULL AS is_reviewed,
	r.rating AS user_rating,
	r.note AS user_note,
	r.updated_at AS date_reviewed,
	h.scanned_at AS date_scanned,
	COALESCE(r.likes_count, 0) AS likes_count,
	s.opinion AS ai_opinion,
	s.reason AS ai_reason`

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) FindByBarcode(ctx context.Context, barcode string) (*entities.Product, error) {
	var product entities.Product
	if err := r.db.WithContext(ctx).Where("barcode = ?", barcode).Take(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// HasHistory reports whether any user has the product in their history.
func (r *productRepository) HasHistory(ctx context.Context, productID uint) (bool, error) {
	var exists bool
	err := r.db.WithContext(ctx).Model(&entities.History{}).
		Select("count(*) > 0").
		Where("product_id = ?", productID).
		Find(&exists).Error
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *productRepository) GetProductByID(ctx context.Context, id uint) (*entities.Product, error) {
	var product entities.Product
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// RegisterProduct writes the product, the caller's history row and an empty
// AI suggestion in one transaction. Failures come back as
// *domain.PersistenceError naming the write that failed.
func (r *productRepository) RegisterProduct(ctx context.Context, product *entities.Product, history *entities.History) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(product).Error; err != nil {
			return &domain.PersistenceError{Stage: domain.StageProduct, Err: err}
		}

		history.ProductID = product.ID
		if err := tx.Create(history).Error; err != nil {
			return &domain.PersistenceError{Stage: domain.StageHistory, Err: err}
		}

		suggestion := &entities.AISuggestion{
			UserID:    history.UserID,
			ProductID: product.ID,
		}
		if err := tx.Create(suggestion).Error; err != nil {
			return &domain.PersistenceError{Stage: domain.StageAISuggestion, Err: err}
		}
		return nil
	})
	return stageError(err)
}

// RecordScan adds a history row for an existing product and makes sure the
// user has an AI suggestion row for it. A suggestion kept from an earlier
// registration is left untouched.
func (r *productRepository) RecordScan(ctx context.Context, history *entities.History) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(history).Error; err != nil {
			return &domain.PersistenceError{Stage: domain.StageHistory, Err: err}
		}

		suggestion := &entities.AISuggestion{
			UserID:    history.UserID,
			ProductID: history.ProductID,
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(suggestion).Error; err != nil {
			return &domain.PersistenceError{Stage: domain.StageAISuggestion, Err: err}
		}
		return nil
	})
	return stageError(err)
}

func stageError(err error) error {
	if err == nil {
		return nil
	}
	var persistenceErr *domain.PersistenceError
	if errors.As(err, &persistenceErr) {
		return err
	}
	return &domain.PersistenceError{Stage: domain.StageCommit, Err: err}
}

// FindMostSimilar returns the product whose image embedding has the smallest
// cosine distance to embedding, provided that distance is below threshold.
// A non-nil userID restricts the search to products in that user's history.
func (r *productRepository) FindMostSimilar(ctx context.Context, embedding entities.Embedding, threshold float64, userID *uuid.UUID) (*entities.Product, error) {
	vector := embedding.String()
	query := r.db.WithContext(ctx).
		Where("image_embedding IS NOT NULL").
		Where("image_embedding <=> ?::vector < ?", vector, threshold)

	if userID != nil {
		query = query.Where("id IN (?)", r.db.Model(&entities.History{}).Select("product_id").Where("user_id = ?", *userID))
	}

	var product entities.Product
	err := query.
		Clauses(clause.OrderBy{Expression: clause.Expr{SQL: "image_embedding <=> ?::vector", Vars: []interface{}{vector}}}).
		Take(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// IsRegisteredByUser reports whether the (user, product) pair has an AI
// suggestion row, which exists from registration onwards.
func (r *productRepository) IsRegisteredByUser(ctx context.Context, productID uint, userID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entities.AISuggestion{}).
		Where("product_id = ? AND user_id = ?", productID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *productRepository) UpdateAISuggestion(ctx context.Context, productID uint, userID uuid.UUID, opinion, reason string) error {
	res := r.db.WithContext(ctx).Model(&entities.AISuggestion{}).
		Where("product_id = ? AND user_id = ?", productID, userID).
		Updates(map[string]interface{}{"opinion": opinion, "reason": reason})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productRepository) GetProductInteraction(ctx context.Context, productID uint, userID uuid.UUID) (*entities.ProductInteraction, error) {
	var interaction entities.ProductInteraction
	res := r.db.WithContext(ctx).Raw(`
		SELECT`+interactionColumns+`
		FROM products p
		LEFT JOIN (
			SELECT product_id, MAX(created_at) AS scanned_at
			FROM history
			WHERE user_id = ? AND product_id = ?
			GROUP BY product_id
		) h ON h.product_id = p.id
		LEFT JOIN reviews r ON r.product_id = p.id AND r.user_id = ?
		LEFT JOIN ai_suggestions s ON s.product_id = p.id AND s.user_id = ?
		WHERE p.id = ?`,
		userID, productID, userID, userID, productID,
	).Scan(&interaction)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &interaction, nil
}

func (r *productRepository) ListProductInteractions(ctx context.Context, userID uuid.UUID, page, limit int) ([]*entities.ProductInteraction, int64, error) {
	var interactions []*entities.ProductInteraction
	var count int64

	offset := (page - 1) * limit

	if err := r.db.WithContext(ctx).Model(&entities.History{}).
		Where("user_id = ?", userID).
		Distinct("product_id").
		Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.WithContext(ctx).Raw(`
		SELECT`+interactionColumns+`
		FROM (
			SELECT product_id, MAX(created_at) AS scanned_at
			FROM history
			WHERE user_id = ?
			GROUP BY product_id
		) h
		JOIN products p ON p.id = h.product_id
		LEFT JOIN reviews r ON r.product_id = p.id AND r.user_id = ?
		LEFT JOIN ai_suggestions s ON s.product_id = p.id AND s.user_id = ?
		ORDER BY h.scanned_at DESC, p.id DESC
		LIMIT ? OFFSET ?`,
		userID, userID, userID, limit, offset,
	).Scan(&interactions).Error; err != nil {
		return nil, 0, err
	}

	return interactions, count, nil
}

// DeleteHistory removes the user's history rows for the product. The product
// and the user's AI suggestion are kept.
func (r *productRepository) DeleteHistory(ctx context.Context, productID uint, userID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("product_id = ? AND user_id = ?", productID, userID).
		Delete(&entities.History{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productRepository) UpsertReview(ctx context.Context, review *entities.Review) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"rating", "note", "updated_at"}),
	}).Create(review).Error
}
