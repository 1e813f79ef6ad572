package product

import (
	"context"
	"errors"
	"flavorpal-backend/domain"
	"flavorpal-backend/entities"
	"flavorpal-backend/internal/utils/storage"
	"flavorpal-backend/pkg/ai"
	"flavorpal-backend/pkg/openfoodfacts"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"sync"
	"sync/atomic"
	"time"
)

var (
	_ ProductRepository = (*memoryRepository)(nil)
	_ Catalog           = (*mockCatalog)(nil)
	_ Vision            = (*mockVision)(nil)
	_ HealthAdvisor     = (*mockAdvisor)(nil)
	_ HealthFlagSource  = (*mockHealthFlags)(nil)
	_ storage.AwsS3     = (*mockS3)(nil)
)

// memoryRepository keeps products, history, suggestions and reviews in maps.
// RegisterFunc overrides the transactional write when set.
type memoryRepository struct {
	mu          sync.Mutex
	nextID      uint
	products    map[uint]*entities.Product
	history     []*entities.History
	suggestions []*entities.AISuggestion
	reviews     []*entities.Review

	RegisterFunc     func(ctx context.Context, product *entities.Product, history *entities.History) error
	FindSimilarFunc  func(ctx context.Context, embedding entities.Embedding, threshold float64, userID *uuid.UUID) (*entities.Product, error)
	UpdateSuggestErr error
	RecordScanErr    error

	RegisterCallCount   int32
	RecordScanCallCount int32
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{products: map[uint]*entities.Product{}}
}

func (m *memoryRepository) HasHistory(ctx context.Context, productID uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, h := range m.history {
		if h.ProductID == productID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryRepository) FindByBarcode(ctx context.Context, barcode string) (*entities.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if p.Barcode != nil && *p.Barcode == barcode {
			copied := *p
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memoryRepository) GetProductByID(ctx context.Context, id uint) (*entities.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.products[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memoryRepository) RegisterProduct(ctx context.Context, product *entities.Product, history *entities.History) error {
	atomic.AddInt32(&m.RegisterCallCount, 1)
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, product, history)
	}
	return m.register(product, history)
}

func (m *memoryRepository) register(product *entities.Product, history *entities.History) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if product.Barcode != nil {
		for _, p := range m.products {
			if p.Barcode != nil && *p.Barcode == *product.Barcode {
				return &domain.PersistenceError{Stage: domain.StageProduct, Err: gorm.ErrDuplicatedKey}
			}
		}
	}
	m.nextID++
	product.ID = m.nextID
	stored := *product
	m.products[product.ID] = &stored

	history.ID = uint(len(m.history) + 1)
	history.ProductID = product.ID
	history.CreatedAt = time.Now()
	m.history = append(m.history, history)

	m.suggestions = append(m.suggestions, &entities.AISuggestion{
		ID:        uint(len(m.suggestions) + 1),
		UserID:    history.UserID,
		ProductID: product.ID,
	})
	return nil
}

func (m *memoryRepository) RecordScan(ctx context.Context, history *entities.History) error {
	atomic.AddInt32(&m.RecordScanCallCount, 1)
	if m.RecordScanErr != nil {
		return m.RecordScanErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	history.ID = uint(len(m.history) + 1)
	history.CreatedAt = time.Now()
	m.history = append(m.history, history)

	for _, s := range m.suggestions {
		if s.ProductID == history.ProductID && s.UserID == history.UserID {
			return nil
		}
	}
	m.suggestions = append(m.suggestions, &entities.AISuggestion{
		ID:        uint(len(m.suggestions) + 1),
		UserID:    history.UserID,
		ProductID: history.ProductID,
	})
	return nil
}

func (m *memoryRepository) FindMostSimilar(ctx context.Context, embedding entities.Embedding, threshold float64, userID *uuid.UUID) (*entities.Product, error) {
	if m.FindSimilarFunc != nil {
		return m.FindSimilarFunc(ctx, embedding, threshold, userID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memoryRepository) IsRegisteredByUser(ctx context.Context, productID uint, userID uuid.UUID) (bool, error) {
	return m.suggestion(productID, userID) != nil, nil
}

func (m *memoryRepository) suggestion(productID uint, userID uuid.UUID) *entities.AISuggestion {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.suggestions {
		if s.ProductID == productID && s.UserID == userID {
			return s
		}
	}
	return nil
}

func (m *memoryRepository) UpdateAISuggestion(ctx context.Context, productID uint, userID uuid.UUID, opinion, reason string) error {
	if m.UpdateSuggestErr != nil {
		return m.UpdateSuggestErr
	}
	s := m.suggestion(productID, userID)
	if s == nil {
		return gorm.ErrRecordNotFound
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s.Opinion = &opinion
	s.Reason = &reason
	return nil
}

func (m *memoryRepository) GetProductInteraction(ctx context.Context, productID uint, userID uuid.UUID) (*entities.ProductInteraction, error) {
	p, err := m.GetProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	return m.interaction(p, userID), nil
}

func (m *memoryRepository) interaction(p *entities.Product, userID uuid.UUID) *entities.ProductInteraction {
	res := &entities.ProductInteraction{
		ProductID:  p.ID,
		Name:       p.Name,
		Barcode:    p.Barcode,
		Brands:     p.Brands,
		ImageURL:   p.ImageURL,
		Categories: p.Categories,
	}
	if s := m.suggestion(p.ID, userID); s != nil {
		res.AIOpinion = s.Opinion
		res.AIReason = s.Reason
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, h := range m.history {
		if h.ProductID == p.ID && h.UserID == userID {
			scanned := h.CreatedAt
			res.DateScanned = &scanned
		}
	}
	for _, r := range m.reviews {
		if r.ProductID == p.ID && r.UserID == userID {
			rating, note, reviewed := r.Rating, r.Note, r.UpdatedAt
			res.IsReviewed = true
			res.UserRating = &rating
			res.UserNote = &note
			res.DateReviewed = &reviewed
			res.LikesCount = r.LikesCount
		}
	}
	return res
}

func (m *memoryRepository) ListProductInteractions(ctx context.Context, userID uuid.UUID, page, limit int) ([]*entities.ProductInteraction, int64, error) {
	m.mu.Lock()
	var ids []uint
	seen := map[uint]bool{}
	for i := len(m.history) - 1; i >= 0; i-- {
		h := m.history[i]
		if h.UserID == userID && !seen[h.ProductID] {
			seen[h.ProductID] = true
			ids = append(ids, h.ProductID)
		}
	}
	m.mu.Unlock()

	total := int64(len(ids))
	start := (page - 1) * limit
	if start > len(ids) {
		start = len(ids)
	}
	end := start + limit
	if end > len(ids) {
		end = len(ids)
	}

	var res []*entities.ProductInteraction
	for _, id := range ids[start:end] {
		p, err := m.GetProductByID(ctx, id)
		if err != nil {
			return nil, 0, err
		}
		res = append(res, m.interaction(p, userID))
	}
	return res, total, nil
}

func (m *memoryRepository) DeleteHistory(ctx context.Context, productID uint, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.history[:0]
	for _, h := range m.history {
		if h.ProductID == productID && h.UserID == userID {
			continue
		}
		kept = append(kept, h)
	}
	if len(kept) == len(m.history) {
		return gorm.ErrRecordNotFound
	}
	m.history = kept
	return nil
}

func (m *memoryRepository) UpsertReview(ctx context.Context, review *entities.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	review.UpdatedAt = time.Now()
	for i, r := range m.reviews {
		if r.ProductID == review.ProductID && r.UserID == review.UserID {
			m.reviews[i] = review
			return nil
		}
	}
	m.reviews = append(m.reviews, review)
	return nil
}

func (m *memoryRepository) counts() (products, history, suggestions int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.products), len(m.history), len(m.suggestions)
}

type mockCatalog struct {
	LookupFunc      func(ctx context.Context, barcode string) (openfoodfacts.Record, error)
	LookupCallCount int32
}

func (m *mockCatalog) LookupBarcode(ctx context.Context, barcode string) (openfoodfacts.Record, error) {
	atomic.AddInt32(&m.LookupCallCount, 1)
	if m.LookupFunc != nil {
		return m.LookupFunc(ctx, barcode)
	}
	return openfoodfacts.Record{}, errors.New("LookupFunc not implemented in mock")
}

type mockVision struct {
	DescribeFunc      func(ctx context.Context, image ai.ImageRef, mode ai.DescribeMode) (ai.Description, error)
	EmbedImageFunc    func(ctx context.Context, image ai.ImageRef) (entities.Embedding, error)
	DescribeCallCount int32
	EmbedCallCount    int32
}

func (m *mockVision) Describe(ctx context.Context, image ai.ImageRef, mode ai.DescribeMode) (ai.Description, error) {
	atomic.AddInt32(&m.DescribeCallCount, 1)
	if m.DescribeFunc != nil {
		return m.DescribeFunc(ctx, image, mode)
	}
	return ai.Description{}, errors.New("DescribeFunc not implemented in mock")
}

func (m *mockVision) EmbedImage(ctx context.Context, image ai.ImageRef) (entities.Embedding, error) {
	atomic.AddInt32(&m.EmbedCallCount, 1)
	if m.EmbedImageFunc != nil {
		return m.EmbedImageFunc(ctx, image)
	}
	return nil, errors.New("EmbedImageFunc not implemented in mock")
}

type mockAdvisor struct {
	SuggestFunc      func(ctx context.Context, dietaryPreference string, image ai.ImageRef) (ai.HealthOpinion, error)
	SuggestCallCount int32
}

func (m *mockAdvisor) Suggest(ctx context.Context, dietaryPreference string, image ai.ImageRef) (ai.HealthOpinion, error) {
	atomic.AddInt32(&m.SuggestCallCount, 1)
	if m.SuggestFunc != nil {
		return m.SuggestFunc(ctx, dietaryPreference, image)
	}
	return ai.HealthOpinion{}, errors.New("SuggestFunc not implemented in mock")
}

type mockHealthFlags struct {
	Flags []string
	Err   error
}

func (m *mockHealthFlags) GetHealthFlags(ctx context.Context, userID string) ([]string, error) {
	return m.Flags, m.Err
}

type mockS3 struct {
	UploadErr error
	Uploaded  []string
	Deleted   []string
}

func (m *mockS3) UploadBase64Image(ctx context.Context, fileName string, dataURI string, dir string) (string, error) {
	if m.UploadErr != nil {
		return "", m.UploadErr
	}
	key := dir + "/" + fileName + ".png"
	m.Uploaded = append(m.Uploaded, key)
	return key, nil
}

func (m *mockS3) DeleteFile(objectKey string) error {
	m.Deleted = append(m.Deleted, objectKey)
	return nil
}

func (m *mockS3) GetPublicLinkKey(objectKey string) string {
	return "https://bucket.s3.local/" + objectKey
}

func (m *mockS3) GetObjectKeyFromLink(link string) string {
	return link[len("https://bucket.s3.local/"):]
}
