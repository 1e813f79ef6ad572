package product

import (
	"context"
	"errors"
	"flavorpal-backend/domain"
	"flavorpal-backend/entities"
	"flavorpal-backend/internal/utils/storage"
	"flavorpal-backend/pkg/ai"
	"flavorpal-backend/pkg/openfoodfacts"
	"fmt"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"strings"
)

const DefaultSimilarityThreshold = 0.2

type (
	Catalog interface {
		LookupBarcode(ctx context.Context, barcode string) (openfoodfacts.Record, error)
	}

	Vision interface {
		Describe(ctx context.Context, image ai.ImageRef, mode ai.DescribeMode) (ai.Description, error)
		EmbedImage(ctx context.Context, image ai.ImageRef) (entities.Embedding, error)
	}

	HealthAdvisor interface {
		Suggest(ctx context.Context, dietaryPreference string, image ai.ImageRef) (ai.HealthOpinion, error)
	}

	// HealthFlagSource yields the caller's dietary restrictions.
	HealthFlagSource interface {
		GetHealthFlags(ctx context.Context, userID string) ([]string, error)
	}

	ProductService interface {
		RegisterByBarcode(ctx context.Context, req domain.RegisterBarcodeRequest, userID string) (domain.ProductResponse, bool, error)
		RegisterByPhoto(ctx context.Context, req domain.RegisterPhotoRequest, userID string) (domain.ProductResponse, error)
		AttachHealthSuggestion(ctx context.Context, req domain.HealthSuggestionRequest, userID string) (domain.ProductResponse, error)
		SearchByPhoto(ctx context.Context, req domain.SearchPhotoRequest, userID string) (domain.ProductResponse, error)
		GetProducts(ctx context.Context, userID string, page, limit int) ([]domain.ProductResponse, int64, error)
		GetProductByID(ctx context.Context, productID uint, userID string) (domain.ProductResponse, error)
		ReviewProduct(ctx context.Context, productID uint, req domain.ReviewProductRequest, userID string) (domain.ProductResponse, error)
		RemoveFromHistory(ctx context.Context, productID uint, userID string) error
	}

	productService struct {
		productRepository   ProductRepository
		catalog             Catalog
		vision              Vision
		advisor             HealthAdvisor
		healthFlags         HealthFlagSource
		s3                  storage.AwsS3
		similarityThreshold float64
		logger              logrus.FieldLogger
	}
)

// NewProductService wires the registration orchestrator. s3 may be nil, in
// which case photo products keep their data URI as image reference.
func NewProductService(
	productRepository ProductRepository,
	catalog Catalog,
	vision Vision,
	advisor HealthAdvisor,
	healthFlags HealthFlagSource,
	s3 storage.AwsS3,
	similarityThreshold float64,
	logger logrus.FieldLogger,
) ProductService {
	if similarityThreshold <= 0 {
		similarityThreshold = DefaultSimilarityThreshold
	}
	return &productService{
		productRepository:   productRepository,
		catalog:             catalog,
		vision:              vision,
		advisor:             advisor,
		healthFlags:         healthFlags,
		s3:                  s3,
		similarityThreshold: similarityThreshold,
		logger:              logger,
	}
}

// RegisterByBarcode returns the shared product for barcode, creating it from
// the catalog on first sight. The bool reports whether it already existed.
func (s *productService) RegisterByBarcode(ctx context.Context, req domain.RegisterBarcodeRequest, userID string) (domain.ProductResponse, bool, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.ProductResponse{}, false, domain.ErrParseUUID
	}

	barcode := strings.TrimSpace(req.Barcode)
	if barcode == "" {
		return domain.ProductResponse{}, false, domain.ErrInvalidBarcode
	}
	log := s.logger.WithFields(logrus.Fields{"barcode": barcode, "user_id": userID})

	existing, err := s.productRepository.FindByBarcode(ctx, barcode)
	if err == nil {
		log.Debug("barcode already registered")
		if err := s.reattachOrphan(ctx, existing, userUUID); err != nil {
			log.WithError(err).Error("failed to record scan of existing product")
			return domain.ProductResponse{}, false, err
		}
		return toProductResponse(existing), true, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ProductResponse{}, false, fmt.Errorf("find product by barcode: %w", err)
	}

	record, err := s.catalog.LookupBarcode(ctx, barcode)
	if err != nil {
		log.WithError(err).Info("catalog lookup failed")
		return domain.ProductResponse{}, false, err
	}

	product := &entities.Product{
		Barcode:     &barcode,
		Name:        record.DisplayName(),
		GenericName: record.Generic(),
		Brands:      strings.TrimSpace(record.Brands),
		Categories:  strings.TrimSpace(record.Categories),
		ImageURL:    record.DisplayImage(),
	}

	if product.ImageURL != "" {
		embedding, err := s.embedRemoteImage(ctx, product.ImageURL)
		if err != nil {
			log.WithError(err).Warn("registering product without embedding")
		} else {
			product.ImageEmbedding = embedding
		}
	}

	if err := s.productRepository.RegisterProduct(ctx, product, &entities.History{UserID: userUUID}); err != nil {
		var persistenceErr *domain.PersistenceError
		if errors.As(err, &persistenceErr) && persistenceErr.Stage == domain.StageProduct && errors.Is(err, gorm.ErrDuplicatedKey) {
			if winner, findErr := s.productRepository.FindByBarcode(ctx, barcode); findErr == nil {
				log.Info("barcode registered concurrently")
				return toProductResponse(winner), true, nil
			}
		}
		log.WithError(err).Error("failed to register product")
		return domain.ProductResponse{}, false, err
	}

	return toProductResponse(product), false, nil
}

// reattachOrphan records a scan for userID when nobody holds the product in
// their history anymore. Products someone still holds are returned without
// any write.
func (s *productService) reattachOrphan(ctx context.Context, product *entities.Product, userID uuid.UUID) error {
	held, err := s.productRepository.HasHistory(ctx, product.ID)
	if err != nil {
		return fmt.Errorf("check product history: %w", err)
	}
	if held {
		return nil
	}
	return s.productRepository.RecordScan(ctx, &entities.History{UserID: userID, ProductID: product.ID})
}

func (s *productService) embedRemoteImage(ctx context.Context, imageURL string) (entities.Embedding, error) {
	image, err := ai.RemoteImage(imageURL)
	if err != nil {
		return nil, err
	}
	return s.vision.EmbedImage(ctx, image)
}

// RegisterByPhoto creates a new product from a photo. Unlike the barcode
// path, a failed embedding aborts the registration.
func (s *productService) RegisterByPhoto(ctx context.Context, req domain.RegisterPhotoRequest, userID string) (domain.ProductResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.ProductResponse{}, domain.ErrParseUUID
	}

	image, err := ai.InlineImage(req.ImageBase64)
	if err != nil {
		return domain.ProductResponse{}, err
	}
	log := s.logger.WithField("user_id", userID)

	desc, err := s.vision.Describe(ctx, image, ai.Structured)
	if err != nil {
		log.WithError(err).Info("photo description failed")
		return domain.ProductResponse{}, err
	}

	embedding, err := s.vision.EmbedImage(ctx, image)
	if err != nil {
		log.WithError(err).Info("photo embedding failed")
		return domain.ProductResponse{}, err
	}

	imageURL, objectKey, err := s.storeImage(ctx, req.ImageBase64)
	if err != nil {
		log.WithError(err).Error("failed to store product photo")
		return domain.ProductResponse{}, &domain.PersistenceError{Stage: domain.StageImage, Err: err}
	}

	name := desc.Structured.ProductName
	if name == "" {
		name = openfoodfacts.UnknownProductName
	}
	product := &entities.Product{
		Name:           name,
		Brands:         desc.Structured.ProductManufacturer,
		ImageURL:       imageURL,
		ImageEmbedding: embedding,
	}
	history := &entities.History{
		UserID:      userUUID,
		TextContent: &desc.Text,
	}

	if err := s.productRepository.RegisterProduct(ctx, product, history); err != nil {
		if objectKey != "" {
			_ = s.s3.DeleteFile(objectKey)
		}
		log.WithError(err).Error("failed to register product")
		return domain.ProductResponse{}, err
	}

	return toProductResponse(product), nil
}

func (s *productService) storeImage(ctx context.Context, dataURI string) (string, string, error) {
	if s.s3 == nil {
		return dataURI, "", nil
	}
	objectKey, err := s.s3.UploadBase64Image(ctx, fmt.Sprintf("product-%s", uuid.New().String()), dataURI, "products")
	if err != nil {
		return "", "", err
	}
	return s.s3.GetPublicLinkKey(objectKey), objectKey, nil
}

// AttachHealthSuggestion fills the caller's AI suggestion for a product they
// registered. A not-applicable verdict from the model is returned as
// *domain.ModelRefusalError and nothing is written.
func (s *productService) AttachHealthSuggestion(ctx context.Context, req domain.HealthSuggestionRequest, userID string) (domain.ProductResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.ProductResponse{}, domain.ErrParseUUID
	}

	image, err := ai.InlineImage(req.ImageBase64)
	if err != nil {
		return domain.ProductResponse{}, err
	}
	log := s.logger.WithFields(logrus.Fields{"product_id": req.ProductID, "user_id": userID})

	var (
		flags      []string
		registered bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		flags, err = s.healthFlags.GetHealthFlags(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		registered, err = s.productRepository.IsRegisteredByUser(gctx, req.ProductID, userUUID)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.ProductResponse{}, err
	}
	if !registered {
		return domain.ProductResponse{}, domain.ErrProductNotRegistered
	}

	opinion, err := s.advisor.Suggest(ctx, strings.Join(flags, ","), image)
	if err != nil {
		log.WithError(err).Info("health suggestion failed")
		return domain.ProductResponse{}, err
	}
	if !opinion.Success {
		return domain.ProductResponse{}, &domain.ModelRefusalError{Reason: opinion.Reason}
	}

	if err := s.productRepository.UpdateAISuggestion(ctx, req.ProductID, userUUID, opinion.Opinion, opinion.Reason); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ProductResponse{}, domain.ErrProductNotRegistered
		}
		log.WithError(err).Error("failed to update ai suggestion")
		return domain.ProductResponse{}, &domain.PersistenceError{Stage: domain.StageAISuggestion, Err: err}
	}

	return s.GetProductByID(ctx, req.ProductID, userID)
}

// SearchByPhoto finds the registered product closest to the photo, optionally
// only among the caller's own history.
func (s *productService) SearchByPhoto(ctx context.Context, req domain.SearchPhotoRequest, userID string) (domain.ProductResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.ProductResponse{}, domain.ErrParseUUID
	}

	image, err := ai.InlineImage(req.ImageBase64)
	if err != nil {
		return domain.ProductResponse{}, err
	}

	embedding, err := s.vision.EmbedImage(ctx, image)
	if err != nil {
		return domain.ProductResponse{}, err
	}

	var scope *uuid.UUID
	if req.MineOnly {
		scope = &userUUID
	}

	product, err := s.productRepository.FindMostSimilar(ctx, embedding, s.similarityThreshold, scope)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ProductResponse{}, domain.ErrNoSimilarProduct
		}
		return domain.ProductResponse{}, err
	}

	return s.GetProductByID(ctx, product.ID, userID)
}

func (s *productService) GetProducts(ctx context.Context, userID string, page, limit int) ([]domain.ProductResponse, int64, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, 0, domain.ErrParseUUID
	}

	interactions, count, err := s.productRepository.ListProductInteractions(ctx, userUUID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]domain.ProductResponse, 0, len(interactions))
	for _, interaction := range interactions {
		res = append(res, toInteractionResponse(interaction))
	}
	return res, count, nil
}

func (s *productService) GetProductByID(ctx context.Context, productID uint, userID string) (domain.ProductResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.ProductResponse{}, domain.ErrParseUUID
	}

	interaction, err := s.productRepository.GetProductInteraction(ctx, productID, userUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ProductResponse{}, domain.ErrProductNotFound
		}
		return domain.ProductResponse{}, err
	}
	return toInteractionResponse(interaction), nil
}

func (s *productService) ReviewProduct(ctx context.Context, productID uint, req domain.ReviewProductRequest, userID string) (domain.ProductResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.ProductResponse{}, domain.ErrParseUUID
	}

	if _, err := s.productRepository.GetProductByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ProductResponse{}, domain.ErrProductNotFound
		}
		return domain.ProductResponse{}, err
	}

	review := &entities.Review{
		UserID:    userUUID,
		ProductID: productID,
		Rating:    req.Rating,
		Note:      strings.TrimSpace(req.Note),
	}
	if err := s.productRepository.UpsertReview(ctx, review); err != nil {
		return domain.ProductResponse{}, err
	}

	return s.GetProductByID(ctx, productID, userID)
}

func (s *productService) RemoveFromHistory(ctx context.Context, productID uint, userID string) error {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.ErrParseUUID
	}

	if err := s.productRepository.DeleteHistory(ctx, productID, userUUID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrProductNotRegistered
		}
		return err
	}
	return nil
}

func toProductResponse(product *entities.Product) domain.ProductResponse {
	return domain.ProductResponse{
		ID:         product.ID,
		Name:       product.Name,
		Barcode:    product.Barcode,
		Brands:     product.Brands,
		ImageURL:   product.ImageURL,
		Categories: product.Categories,
	}
}

func toInteractionResponse(interaction *entities.ProductInteraction) domain.ProductResponse {
	return domain.ProductResponse{
		ID:                 interaction.ProductID,
		Name:               interaction.Name,
		Barcode:            interaction.Barcode,
		Brands:             interaction.Brands,
		ImageURL:           interaction.ImageURL,
		Categories:         interaction.Categories,
		IsReviewed:         interaction.IsReviewed,
		UserRating:         interaction.UserRating,
		UserNotes:          interaction.UserNote,
		DateReviewed:       interaction.DateReviewed,
		DateScanned:        interaction.DateScanned,
		LikeCount:          interaction.LikesCount,
		AIHealthConclusion: interaction.AIOpinion,
		AIHealthSummary:    interaction.AIReason,
	}
}
