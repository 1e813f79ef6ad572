package product

import (
	"context"
	"errors"
	"flavorpal-backend/domain"
	"flavorpal-backend/entities"
	"flavorpal-backend/pkg/ai"
	"flavorpal-backend/pkg/openfoodfacts"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"testing"
)

const photo = "data:image/jpeg;base64,/9j/4AAQSkZJRgABAQ=="

var nutella = openfoodfacts.Record{
	ProductNameEN: "Nutella",
	Brands:        "Ferrero",
	Categories:    "Spreads",
	ImageFrontURL: "https://images.openfoodfacts.org/images/products/301/762/042/2003/front_en.jpg",
}

type fixture struct {
	repo    *memoryRepository
	catalog *mockCatalog
	vision  *mockVision
	advisor *mockAdvisor
	flags   *mockHealthFlags
	s3      *mockS3
	service ProductService
}

func newFixture(withS3 bool) *fixture {
	f := &fixture{
		repo: newMemoryRepository(),
		catalog: &mockCatalog{LookupFunc: func(ctx context.Context, barcode string) (openfoodfacts.Record, error) {
			return nutella, nil
		}},
		vision: &mockVision{
			DescribeFunc: func(ctx context.Context, image ai.ImageRef, mode ai.DescribeMode) (ai.Description, error) {
				return ai.Description{
					Mode: mode,
					Text: "Pocky chocolate biscuit sticks",
					Structured: &ai.StructuredDescription{
						Detected:            true,
						ProductName:         "Pocky",
						ProductManufacturer: "Glico",
						ProductDescription:  "Pocky chocolate biscuit sticks",
					},
				}, nil
			},
			EmbedImageFunc: func(ctx context.Context, image ai.ImageRef) (entities.Embedding, error) {
				return entities.Embedding{0.1, 0.2, 0.3}, nil
			},
		},
		advisor: &mockAdvisor{},
		flags:   &mockHealthFlags{},
	}
	logger, _ := test.NewNullLogger()
	if withS3 {
		f.s3 = &mockS3{}
		f.service = NewProductService(f.repo, f.catalog, f.vision, f.advisor, f.flags, f.s3, 0, logger)
	} else {
		f.service = NewProductService(f.repo, f.catalog, f.vision, f.advisor, f.flags, nil, 0, logger)
	}
	return f
}

func TestRegisterByBarcode(t *testing.T) {
	ctx := context.Background()
	userA := uuid.New().String()
	userB := uuid.New().String()

	t.Run("new barcode creates product history and empty suggestion", func(t *testing.T) {
		f := newFixture(false)

		res, existed, err := f.service.RegisterByBarcode(ctx, domain.RegisterBarcodeRequest{Barcode: "3017620422003"}, userA)

		require.NoError(t, err)
		assert.False(t, existed)
		assert.Equal(t, "Nutella", res.Name)
		assert.Equal(t, "Ferrero", res.Brands)
		assert.Equal(t, nutella.ImageFrontURL, res.ImageURL)
		require.NotNil(t, res.Barcode)
		assert.Equal(t, "3017620422003", *res.Barcode)

		products, history, suggestions := f.repo.counts()
		assert.Equal(t, 1, products)
		assert.Equal(t, 1, history)
		assert.Equal(t, 1, suggestions)
		assert.Equal(t, entities.Embedding{0.1, 0.2, 0.3}, f.repo.products[res.ID].ImageEmbedding)
		assert.Nil(t, f.repo.suggestions[0].Opinion)
		assert.Nil(t, f.repo.suggestions[0].Reason)
	})

	t.Run("known barcode short circuits for any user", func(t *testing.T) {
		f := newFixture(false)
		first, _, err := f.service.RegisterByBarcode(ctx, domain.RegisterBarcodeRequest{Barcode: "3017620422003"}, userA)
		require.NoError(t, err)

		second, existed, err := f.service.RegisterByBarcode(ctx, domain.RegisterBarcodeRequest{Barcode: "3017620422003"}, userB)

		require.NoError(t, err)
		assert.True(t, existed)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, int32(1), f.catalog.LookupCallCount)
		assert.Equal(t, int32(1), f.vision.EmbedCallCount)
		assert.Equal(t, int32(1), f.repo.RegisterCallCount)
		products, history, _ := f.repo.counts()
		assert.Equal(t, 1, products)
		assert.Equal(t, 1, history)
	})

	t.Run("catalog not found writes nothing", func(t *testing.T) {
		f := newFixture(false)
		f.catalog.LookupFunc = func(ctx context.Context, barcode string) (openfoodfacts.Record, error) {
			return openfoodfacts.Record{}, domain.ErrCatalogNotFound
		}

		_, _, err := f.service.RegisterByBarcode(ctx, domain.RegisterBarcodeRequest{Barcode: "0000000000000"}, userA)

		assert.ErrorIs(t, err, domain.ErrCatalogNotFound)
		assert.Equal(t, int32(0), f.repo.RegisterCallCount)
		assert.Equal(t, int32(0), f.vision.EmbedCallCount)
	})

	t.Run("catalog transport error is fatal", func(t *testing.T) {
		f := newFixture(false)
		f.catalog.LookupFunc = func(ctx context.Context, barcode string) (openfoodfacts.Record, error) {
			return openfoodfacts.Record{}, domain.TransportError("openfoodfacts", context.DeadlineExceeded)
		}

		_, _, err := f.service.RegisterByBarcode(ctx, domain.RegisterBarcodeRequest{Barcode: "3017620422003"}, userA)

		assert.ErrorIs(t, err, domain.ErrTransport)
		assert.Equal(t, int32(0), f.repo.RegisterCallCount)
	})

	t.Run("embedding failure is not blocking", func(t *testing.T) {
		f := newFixture(false)
		f.vision.EmbedImageFunc = func(ctx context.Context, image ai.ImageRef) (entities.Embedding, error) {
			return nil, domain.TransportError("openai", errors.New("connection refused"))
		}

		res, _, err := f.service.RegisterByBarcode(ctx, domain.RegisterBarcodeRequest{Barcode: "3017620422003"}, userA)

		require.NoError(t, err)
		assert.Nil(t, f.repo.products[res.ID].ImageEmbedding)
	})

	t.Run("record without image skips embedding", func(t *testing.T) {
		f := newFixture(false)
		f.catalog.LookupFunc = func(ctx context.Context, barcode string) (openfoodfacts.Record, error) {
			return openfoodfacts.Record{GenericName: "Hazelnut spread"}, nil
		}

		res, _, err := f.service.RegisterByBarcode(ctx, domain.RegisterBarcodeRequest{Barcode: "3017620422003"}, userA)

		require.NoError(t, err)
		assert.Equal(t, "Hazelnut spread", res.Name)
		assert.Equal(t, int32(0), f.vision.EmbedCallCount)
	})

	t.Run("persistence stage is reported", func(t *testing.T) {
		f := newFixture(false)
		f.repo.RegisterFunc = func(ctx context.Context, product *entities.Product, history *entities.History) error {
			return &domain.PersistenceError{Stage: domain.StageHistory, Err: errors.New("connection reset")}
		}

		_, _, err := f.service.RegisterByBarcode(ctx, domain.RegisterBarcodeRequest{Barcode: "3017620422003"}, userA)

		var persistenceErr *domain.PersistenceError
		require.ErrorAs(t, err, &persistenceErr)
		assert.Equal(t, domain.StageHistory, persistenceErr.Stage)
		assert.ErrorIs(t, err, domain.ErrPersistence)
	})

	t.Run("concurrent duplicate returns the winner", func(t *testing.T) {
		f := newFixture(false)
		barcode := "3017620422003"
		winner := &entities.Product{Barcode: &barcode, Name: "Nutella"}
		// the winner commits between our dedup read and our insert
		f.repo.RegisterFunc = func(ctx context.Context, product *entities.Product, history *entities.History) error {
			require.NoError(t, f.repo.register(winner, &entities.History{UserID: uuid.New()}))
			return f.repo.register(product, history)
		}

		res, existed, err := f.service.RegisterByBarcode(ctx, domain.RegisterBarcodeRequest{Barcode: barcode}, userA)

		require.NoError(t, err)
		assert.True(t, existed)
		assert.Equal(t, winner.ID, res.ID)
		products, _, _ := f.repo.counts()
		assert.Equal(t, 1, products)
	})

	t.Run("rescan after removal restores history without upstream calls", func(t *testing.T) {
		f := newFixture(false)
		first, _, err := f.service.RegisterByBarcode(ctx, domain.RegisterBarcodeRequest{Barcode: "3017620422003"}, userA)
		require.NoError(t, err)
		require.NoError(t, f.service.RemoveFromHistory(ctx, first.ID, userA))
		f.catalog.LookupFunc = func(ctx context.Context, barcode string) (openfoodfacts.Record, error) {
			return openfoodfacts.Record{}, domain.TransportError("openfoodfacts", errors.New("connection refused"))
		}

		second, existed, err := f.service.RegisterByBarcode(ctx, domain.RegisterBarcodeRequest{Barcode: "3017620422003"}, userA)

		require.NoError(t, err)
		assert.True(t, existed)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, int32(1), f.catalog.LookupCallCount)
		assert.Equal(t, int32(1), f.vision.EmbedCallCount)
		assert.Equal(t, int32(1), f.repo.RegisterCallCount)
		assert.Equal(t, int32(1), f.repo.RecordScanCallCount)

		products, history, suggestions := f.repo.counts()
		assert.Equal(t, 1, products)
		assert.Equal(t, 1, history)
		assert.Equal(t, 1, suggestions)

		items, count, err := f.service.GetProducts(ctx, userA, 1, 20)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
		require.Len(t, items, 1)
		assert.Equal(t, first.ID, items[0].ID)
	})

	t.Run("orphaned product is picked up by another user", func(t *testing.T) {
		f := newFixture(false)
		first, _, err := f.service.RegisterByBarcode(ctx, domain.RegisterBarcodeRequest{Barcode: "3017620422003"}, userA)
		require.NoError(t, err)
		require.NoError(t, f.service.RemoveFromHistory(ctx, first.ID, userA))

		_, existed, err := f.service.RegisterByBarcode(ctx, domain.RegisterBarcodeRequest{Barcode: "3017620422003"}, userB)

		require.NoError(t, err)
		assert.True(t, existed)
		registered, err := f.repo.IsRegisteredByUser(ctx, first.ID, uuid.MustParse(userB))
		require.NoError(t, err)
		assert.True(t, registered)
		_, _, suggestions := f.repo.counts()
		assert.Equal(t, 2, suggestions)
	})

	t.Run("failed scan record is reported", func(t *testing.T) {
		f := newFixture(false)
		first, _, err := f.service.RegisterByBarcode(ctx, domain.RegisterBarcodeRequest{Barcode: "3017620422003"}, userA)
		require.NoError(t, err)
		require.NoError(t, f.service.RemoveFromHistory(ctx, first.ID, userA))
		f.repo.RecordScanErr = &domain.PersistenceError{Stage: domain.StageHistory, Err: errors.New("connection reset")}

		_, _, err = f.service.RegisterByBarcode(ctx, domain.RegisterBarcodeRequest{Barcode: "3017620422003"}, userA)

		var persistenceErr *domain.PersistenceError
		require.ErrorAs(t, err, &persistenceErr)
		assert.Equal(t, domain.StageHistory, persistenceErr.Stage)
	})

	t.Run("blank barcode is rejected before any lookup", func(t *testing.T) {
		f := newFixture(false)

		_, _, err := f.service.RegisterByBarcode(ctx, domain.RegisterBarcodeRequest{Barcode: " \t "}, userA)

		assert.ErrorIs(t, err, domain.ErrInvalidBarcode)
		assert.Equal(t, int32(0), f.catalog.LookupCallCount)
		assert.Equal(t, int32(0), f.repo.RegisterCallCount)
	})

	t.Run("invalid user id", func(t *testing.T) {
		f := newFixture(false)

		_, _, err := f.service.RegisterByBarcode(ctx, domain.RegisterBarcodeRequest{Barcode: "3017620422003"}, "not-a-uuid")

		assert.ErrorIs(t, err, domain.ErrParseUUID)
	})
}

func TestRegisterByPhoto(t *testing.T) {
	ctx := context.Background()
	user := uuid.New()

	t.Run("writes exactly three rows", func(t *testing.T) {
		f := newFixture(false)

		res, err := f.service.RegisterByPhoto(ctx, domain.RegisterPhotoRequest{ImageBase64: photo}, user.String())

		require.NoError(t, err)
		assert.Equal(t, "Pocky", res.Name)
		assert.Equal(t, "Glico", res.Brands)
		assert.Nil(t, res.Barcode)
		assert.Equal(t, photo, res.ImageURL)

		products, history, suggestions := f.repo.counts()
		assert.Equal(t, 1, products)
		assert.Equal(t, 1, history)
		assert.Equal(t, 1, suggestions)
		assert.Equal(t, user, f.repo.history[0].UserID)
		assert.Equal(t, res.ID, f.repo.history[0].ProductID)
		assert.Equal(t, user, f.repo.suggestions[0].UserID)
		assert.Nil(t, f.repo.suggestions[0].Opinion)
		assert.NotEmpty(t, f.repo.products[res.ID].ImageEmbedding)
	})

	t.Run("nothing detected writes nothing", func(t *testing.T) {
		f := newFixture(false)
		f.vision.DescribeFunc = func(ctx context.Context, image ai.ImageRef, mode ai.DescribeMode) (ai.Description, error) {
			return ai.Description{}, &domain.ModelRefusalError{Reason: "no product detected in the image"}
		}

		_, err := f.service.RegisterByPhoto(ctx, domain.RegisterPhotoRequest{ImageBase64: photo}, user.String())

		assert.ErrorIs(t, err, domain.ErrModelRefusal)
		assert.Equal(t, int32(0), f.repo.RegisterCallCount)
		products, history, suggestions := f.repo.counts()
		assert.Zero(t, products+history+suggestions)
	})

	t.Run("embedding failure is fatal", func(t *testing.T) {
		f := newFixture(false)
		f.vision.EmbedImageFunc = func(ctx context.Context, image ai.ImageRef) (entities.Embedding, error) {
			return nil, domain.SchemaError("openai", errors.New("no embedding returned"))
		}

		_, err := f.service.RegisterByPhoto(ctx, domain.RegisterPhotoRequest{ImageBase64: photo}, user.String())

		assert.ErrorIs(t, err, domain.ErrSchema)
		assert.Equal(t, int32(0), f.repo.RegisterCallCount)
	})

	t.Run("stores photo in s3", func(t *testing.T) {
		f := newFixture(true)

		res, err := f.service.RegisterByPhoto(ctx, domain.RegisterPhotoRequest{ImageBase64: photo}, user.String())

		require.NoError(t, err)
		require.Len(t, f.s3.Uploaded, 1)
		assert.Equal(t, f.s3.GetPublicLinkKey(f.s3.Uploaded[0]), res.ImageURL)
	})

	t.Run("uploaded photo is removed when persistence fails", func(t *testing.T) {
		f := newFixture(true)
		f.repo.RegisterFunc = func(ctx context.Context, product *entities.Product, history *entities.History) error {
			return &domain.PersistenceError{Stage: domain.StageProduct, Err: errors.New("disk full")}
		}

		_, err := f.service.RegisterByPhoto(ctx, domain.RegisterPhotoRequest{ImageBase64: photo}, user.String())

		assert.ErrorIs(t, err, domain.ErrPersistence)
		assert.Equal(t, f.s3.Uploaded, f.s3.Deleted)
	})

	t.Run("upload failure", func(t *testing.T) {
		f := newFixture(true)
		f.s3.UploadErr = errors.New("access denied")

		_, err := f.service.RegisterByPhoto(ctx, domain.RegisterPhotoRequest{ImageBase64: photo}, user.String())

		var persistenceErr *domain.PersistenceError
		require.ErrorAs(t, err, &persistenceErr)
		assert.Equal(t, domain.StageImage, persistenceErr.Stage)
	})

	t.Run("rejects non image payload", func(t *testing.T) {
		f := newFixture(false)

		_, err := f.service.RegisterByPhoto(ctx, domain.RegisterPhotoRequest{ImageBase64: "data:text/plain;base64,aGk="}, user.String())

		assert.ErrorIs(t, err, domain.ErrInvalidImage)
		assert.Equal(t, int32(0), f.vision.DescribeCallCount)
	})
}

func TestAttachHealthSuggestion(t *testing.T) {
	ctx := context.Background()
	user := uuid.New().String()

	register := func(t *testing.T, f *fixture) uint {
		res, _, err := f.service.RegisterByBarcode(ctx, domain.RegisterBarcodeRequest{Barcode: "3017620422003"}, user)
		require.NoError(t, err)
		return res.ID
	}

	t.Run("updates the existing suggestion", func(t *testing.T) {
		f := newFixture(false)
		productID := register(t, f)
		f.flags.Flags = []string{"peanut allergy", "vegan"}
		var gotPreference string
		f.advisor.SuggestFunc = func(ctx context.Context, dietaryPreference string, image ai.ImageRef) (ai.HealthOpinion, error) {
			gotPreference = dietaryPreference
			return ai.HealthOpinion{Success: true, Opinion: domain.OpinionAvoid, Reason: "Contains peanuts."}, nil
		}

		res, err := f.service.AttachHealthSuggestion(ctx, domain.HealthSuggestionRequest{ProductID: productID, ImageBase64: photo}, user)

		require.NoError(t, err)
		assert.Equal(t, "peanut allergy,vegan", gotPreference)
		require.NotNil(t, res.AIHealthConclusion)
		assert.Equal(t, domain.OpinionAvoid, *res.AIHealthConclusion)
		require.NotNil(t, res.AIHealthSummary)
		assert.Equal(t, "Contains peanuts.", *res.AIHealthSummary)
	})

	t.Run("second call overwrites instead of inserting", func(t *testing.T) {
		f := newFixture(false)
		productID := register(t, f)
		opinions := []ai.HealthOpinion{
			{Success: true, Opinion: domain.OpinionOK, Reason: "Fine."},
			{Success: true, Opinion: domain.OpinionNeutral, Reason: "High sugar."},
		}
		call := 0
		f.advisor.SuggestFunc = func(ctx context.Context, dietaryPreference string, image ai.ImageRef) (ai.HealthOpinion, error) {
			o := opinions[call]
			call++
			return o, nil
		}

		for range opinions {
			_, err := f.service.AttachHealthSuggestion(ctx, domain.HealthSuggestionRequest{ProductID: productID, ImageBase64: photo}, user)
			require.NoError(t, err)
		}

		_, _, suggestions := f.repo.counts()
		assert.Equal(t, 1, suggestions)
		assert.Equal(t, domain.OpinionNeutral, *f.repo.suggestions[0].Opinion)
		assert.Equal(t, "High sugar.", *f.repo.suggestions[0].Reason)
	})

	t.Run("not applicable is a refusal and writes nothing", func(t *testing.T) {
		f := newFixture(false)
		productID := register(t, f)
		f.advisor.SuggestFunc = func(ctx context.Context, dietaryPreference string, image ai.ImageRef) (ai.HealthOpinion, error) {
			return ai.HealthOpinion{Success: false, Opinion: domain.OpinionUnknown, Reason: "No ingredient table visible."}, nil
		}

		_, err := f.service.AttachHealthSuggestion(ctx, domain.HealthSuggestionRequest{ProductID: productID, ImageBase64: photo}, user)

		var refusal *domain.ModelRefusalError
		require.ErrorAs(t, err, &refusal)
		assert.Equal(t, "No ingredient table visible.", refusal.Reason)
		assert.Nil(t, f.repo.suggestions[0].Opinion)
	})

	t.Run("product not registered by caller", func(t *testing.T) {
		f := newFixture(false)
		productID := register(t, f)

		_, err := f.service.AttachHealthSuggestion(ctx, domain.HealthSuggestionRequest{ProductID: productID, ImageBase64: photo}, uuid.New().String())

		assert.ErrorIs(t, err, domain.ErrProductNotRegistered)
		assert.Equal(t, int32(0), f.advisor.SuggestCallCount)
	})

	t.Run("health flag lookup failure", func(t *testing.T) {
		f := newFixture(false)
		productID := register(t, f)
		f.flags.Err = errors.New("profile store down")

		_, err := f.service.AttachHealthSuggestion(ctx, domain.HealthSuggestionRequest{ProductID: productID, ImageBase64: photo}, user)

		assert.EqualError(t, err, "profile store down")
		assert.Equal(t, int32(0), f.advisor.SuggestCallCount)
	})

	t.Run("update failure names the stage", func(t *testing.T) {
		f := newFixture(false)
		productID := register(t, f)
		f.advisor.SuggestFunc = func(ctx context.Context, dietaryPreference string, image ai.ImageRef) (ai.HealthOpinion, error) {
			return ai.HealthOpinion{Success: true, Opinion: domain.OpinionOK, Reason: "Fine."}, nil
		}
		f.repo.UpdateSuggestErr = errors.New("deadlock detected")

		_, err := f.service.AttachHealthSuggestion(ctx, domain.HealthSuggestionRequest{ProductID: productID, ImageBase64: photo}, user)

		var persistenceErr *domain.PersistenceError
		require.ErrorAs(t, err, &persistenceErr)
		assert.Equal(t, domain.StageAISuggestion, persistenceErr.Stage)
	})
}

func TestSearchByPhoto(t *testing.T) {
	ctx := context.Background()
	user := uuid.New()

	t.Run("returns closest product", func(t *testing.T) {
		f := newFixture(false)
		registered, err := f.service.RegisterByPhoto(ctx, domain.RegisterPhotoRequest{ImageBase64: photo}, user.String())
		require.NoError(t, err)

		var gotThreshold float64
		var gotScope *uuid.UUID
		f.repo.FindSimilarFunc = func(ctx context.Context, embedding entities.Embedding, threshold float64, userID *uuid.UUID) (*entities.Product, error) {
			gotThreshold, gotScope = threshold, userID
			return f.repo.GetProductByID(ctx, registered.ID)
		}

		res, err := f.service.SearchByPhoto(ctx, domain.SearchPhotoRequest{ImageBase64: photo, MineOnly: true}, user.String())

		require.NoError(t, err)
		assert.Equal(t, registered.ID, res.ID)
		assert.NotNil(t, res.DateScanned)
		assert.Equal(t, DefaultSimilarityThreshold, gotThreshold)
		require.NotNil(t, gotScope)
		assert.Equal(t, user, *gotScope)
	})

	t.Run("nothing close enough", func(t *testing.T) {
		f := newFixture(false)

		_, err := f.service.SearchByPhoto(ctx, domain.SearchPhotoRequest{ImageBase64: photo}, user.String())

		assert.ErrorIs(t, err, domain.ErrNoSimilarProduct)
	})
}

func TestProductsForUser(t *testing.T) {
	ctx := context.Background()
	user := uuid.New().String()
	f := newFixture(false)

	first, _, err := f.service.RegisterByBarcode(ctx, domain.RegisterBarcodeRequest{Barcode: "3017620422003"}, user)
	require.NoError(t, err)
	second, err := f.service.RegisterByPhoto(ctx, domain.RegisterPhotoRequest{ImageBase64: photo}, user)
	require.NoError(t, err)

	t.Run("list newest first", func(t *testing.T) {
		items, count, err := f.service.GetProducts(ctx, user, 1, 20)

		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
		require.Len(t, items, 2)
		assert.Equal(t, second.ID, items[0].ID)
		assert.Equal(t, first.ID, items[1].ID)
	})

	t.Run("review upsert", func(t *testing.T) {
		_, err := f.service.ReviewProduct(ctx, first.ID, domain.ReviewProductRequest{Rating: 3, Note: "ok"}, user)
		require.NoError(t, err)

		res, err := f.service.ReviewProduct(ctx, first.ID, domain.ReviewProductRequest{Rating: 5, Note: " great "}, user)

		require.NoError(t, err)
		assert.True(t, res.IsReviewed)
		assert.Equal(t, 5, *res.UserRating)
		assert.Equal(t, "great", *res.UserNotes)
		assert.Len(t, f.repo.reviews, 1)
	})

	t.Run("review unknown product", func(t *testing.T) {
		_, err := f.service.ReviewProduct(ctx, 999, domain.ReviewProductRequest{Rating: 4}, user)

		assert.ErrorIs(t, err, domain.ErrProductNotFound)
	})

	t.Run("remove from history keeps product and suggestion", func(t *testing.T) {
		require.NoError(t, f.service.RemoveFromHistory(ctx, first.ID, user))

		products, _, suggestions := f.repo.counts()
		assert.Equal(t, 2, products)
		assert.Equal(t, 2, suggestions)

		items, count, err := f.service.GetProducts(ctx, user, 1, 20)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
		assert.Equal(t, second.ID, items[0].ID)

		assert.ErrorIs(t, f.service.RemoveFromHistory(ctx, first.ID, user), domain.ErrProductNotRegistered)
	})

	t.Run("get unknown product", func(t *testing.T) {
		_, err := f.service.GetProductByID(ctx, 999, user)

		assert.ErrorIs(t, err, domain.ErrProductNotFound)
	})
}

func TestRepositoryErrorsAreNotMasked(t *testing.T) {
	f := newFixture(false)
	f.repo.FindSimilarFunc = func(ctx context.Context, embedding entities.Embedding, threshold float64, userID *uuid.UUID) (*entities.Product, error) {
		return nil, gorm.ErrInvalidDB
	}

	_, err := f.service.SearchByPhoto(context.Background(), domain.SearchPhotoRequest{ImageBase64: photo}, uuid.New().String())

	assert.ErrorIs(t, err, gorm.ErrInvalidDB)
}
