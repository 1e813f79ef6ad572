package openfoodfacts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"flavorpal-backend/domain"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	defaultBaseURL   = "https://world.openfoodfacts.org"
	defaultTimeout   = 12 * time.Second
	userAgent        = "flavorpal-backend/1.0"
	serviceName      = "openfoodfacts"
	maxLoggedPayload = 512

	UnknownProductName = "Unknown Product Name"
)

var validate = validator.New()

// Record is the subset of an Open Food Facts product this service consumes.
// Every field is optional upstream.
type Record struct {
	Barcode             string `json:"-"`
	ProductNameEN       string `json:"product_name_en"`
	ProductName         string `json:"product_name"`
	GenericNameEN       string `json:"generic_name_en"`
	GenericName         string `json:"generic_name"`
	Brands              string `json:"brands"`
	Categories          string `json:"categories"`
	ImageURL            string `json:"image_url" validate:"omitempty,url"`
	ImageFrontURL       string `json:"image_front_url" validate:"omitempty,url"`
	ImageNutritionURL   string `json:"image_nutrition_url" validate:"omitempty,url"`
	ImageIngredientsURL string `json:"image_ingredients_url" validate:"omitempty,url"`
}

// DisplayName resolves the product name: English product name, English
// generic name, product name, generic name, then UnknownProductName.
func (r Record) DisplayName() string {
	return firstNonEmpty(UnknownProductName, r.ProductNameEN, r.GenericNameEN, r.ProductName, r.GenericName)
}

func (r Record) Generic() string {
	return firstNonEmpty("", r.GenericNameEN, r.GenericName)
}

// DisplayImage is the primary image, falling back to the front image.
func (r Record) DisplayImage() string {
	return firstNonEmpty("", r.ImageURL, r.ImageFrontURL)
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     logrus.FieldLogger
}

func NewClient(baseURL string, timeout time.Duration, logger logrus.FieldLogger) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{},
		Timeout:    timeout,
		Logger:     logger,
	}
}

func (c *Client) LookupBarcode(ctx context.Context, barcode string) (Record, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return Record{}, domain.ErrInvalidBarcode
	}
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/api/v2/product/%s.json", base, url.PathEscape(barcode))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Record{}, errors.Wrap(err, "create openfoodfacts request")
	}
	req.Header.Set("User-Agent", userAgent)

	c.logger().WithField("barcode", barcode).Debug("fetching product from open food facts")
	resp, err := httpClient.Do(req)
	if err != nil {
		return Record{}, domain.TransportError(serviceName, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Record{}, domain.TransportError(serviceName, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return Record{}, fmt.Errorf("%w: barcode %q", domain.ErrCatalogNotFound, barcode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Record{}, domain.TransportError(serviceName, fmt.Errorf("request failed with status %s", resp.Status))
	}

	var parsed offResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		c.logSchemaAnomaly(barcode, body, err)
		return Record{}, domain.SchemaError(serviceName, err)
	}
	if parsed.Status != nil && *parsed.Status == 0 {
		return Record{}, fmt.Errorf("%w: barcode %q", domain.ErrCatalogNotFound, barcode)
	}
	if parsed.Product == nil {
		err := errors.New("response has no product object")
		c.logSchemaAnomaly(barcode, body, err)
		return Record{}, domain.SchemaError(serviceName, err)
	}
	if err := validate.Struct(parsed.Product); err != nil {
		c.logSchemaAnomaly(barcode, body, err)
		return Record{}, domain.SchemaError(serviceName, err)
	}

	record := *parsed.Product
	record.Barcode = barcode
	return record, nil
}

func (c *Client) logSchemaAnomaly(barcode string, body []byte, err error) {
	payload := string(body)
	if len(payload) > maxLoggedPayload {
		payload = payload[:maxLoggedPayload]
	}
	c.logger().WithFields(logrus.Fields{
		"barcode": barcode,
		"payload": payload,
	}).WithError(err).Warn("open food facts response failed validation")
}

func (c *Client) logger() logrus.FieldLogger {
	if c.Logger == nil {
		return logrus.StandardLogger()
	}
	return c.Logger
}

type offResponse struct {
	Status  *int    `json:"status"`
	Product *Record `json:"product"`
}

func firstNonEmpty(fallback string, values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return fallback
}
