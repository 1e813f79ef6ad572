package ai

import (
	"context"
	"encoding/json"
	"strings"

	"flavorpal-backend/domain"

	"github.com/pkg/errors"
)

type DescribeMode int

const (
	// PlainText asks for free prose tuned to be a discriminative search key.
	PlainText DescribeMode = iota
	// Structured asks for name, manufacturer, description and a detected flag.
	Structured
)

func (m DescribeMode) String() string {
	if m == Structured {
		return "structured"
	}
	return "plain_text"
}

type StructuredDescription struct {
	Detected            bool   `json:"detected"`
	ProductName         string `json:"productName"`
	ProductManufacturer string `json:"productManufacturer"`
	ProductDescription  string `json:"productDescription"`
}

type Description struct {
	Mode          DescribeMode
	Text          string
	Structured    *StructuredDescription
	Model         string
	PromptVersion string
}

// Describe runs the vision model over image. In Structured mode a frame with
// no product yields a ModelRefusalError and no description.
func (c *Client) Describe(ctx context.Context, image ImageRef, mode DescribeMode) (Description, error) {
	if image.IsZero() {
		return Description{}, domain.ErrInvalidImage
	}
	set := prompts[c.cfg.Vision.PromptVersion]
	desc := Description{
		Mode:          mode,
		Model:         c.cfg.Vision.Model,
		PromptVersion: c.cfg.Vision.PromptVersion,
	}

	if mode == PlainText {
		text, err := c.respond(ctx, c.cfg.Vision.Model, set.describePlain, "", image, nil)
		if err != nil {
			return Description{}, err
		}
		desc.Text = strings.TrimSpace(text)
		return desc, nil
	}

	text, err := c.respond(ctx, c.cfg.Vision.Model, set.describeStructured, "", image, &textFormat{
		Type:   "json_schema",
		Name:   "productDescription",
		Schema: structuredDescriptionSchema,
		Strict: true,
	})
	if err != nil {
		return Description{}, err
	}

	var raw struct {
		Detected            *bool   `json:"detected"`
		ProductName         *string `json:"productName"`
		ProductManufacturer *string `json:"productManufacturer"`
		ProductDescription  *string `json:"productDescription"`
	}
	if err := decodeStrict(text, &raw); err != nil {
		c.logSchemaAnomaly(c.cfg.Vision.Model, []byte(text), err)
		return Description{}, domain.SchemaError(serviceName, err)
	}
	if raw.Detected == nil || raw.ProductName == nil || raw.ProductManufacturer == nil || raw.ProductDescription == nil {
		err := errors.New("structured description is missing required fields")
		c.logSchemaAnomaly(c.cfg.Vision.Model, []byte(text), err)
		return Description{}, domain.SchemaError(serviceName, err)
	}
	if !*raw.Detected {
		return Description{}, &domain.ModelRefusalError{Reason: "no product detected in the image"}
	}

	desc.Structured = &StructuredDescription{
		Detected:            true,
		ProductName:         strings.TrimSpace(*raw.ProductName),
		ProductManufacturer: strings.TrimSpace(*raw.ProductManufacturer),
		ProductDescription:  strings.TrimSpace(*raw.ProductDescription),
	}
	desc.Text = desc.Structured.ProductDescription
	return desc, nil
}

func decodeStrict(text string, out any) error {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}
