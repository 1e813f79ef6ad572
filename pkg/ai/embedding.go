package ai

import (
	"context"
	"encoding/json"

	"flavorpal-backend/domain"
	"flavorpal-backend/entities"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type embeddingsRequest struct {
	Input          string `json:"input"`
	Model          string `json:"model"`
	EncodingFormat string `json:"encoding_format"`
}

type embeddingData struct {
	Index     int       `json:"index"`
	Embedding []float32 `json:"embedding"`
}

type embeddingsResponse struct {
	Data  []embeddingData `json:"data"`
	Error *openAIApiError `json:"error,omitempty"`
}

// Embed returns the embedding of text exactly as the model produced it.
func (c *Client) Embed(ctx context.Context, text string) (entities.Embedding, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.EmbeddingTimeout)
	defer cancel()

	body, err := c.post(ctx, "/v1/embeddings", embeddingsRequest{
		Input:          text,
		Model:          c.cfg.Embedding.Model,
		EncodingFormat: "float",
	})
	if err != nil {
		return nil, err
	}

	var resBody embeddingsResponse
	if err := json.Unmarshal(body, &resBody); err != nil {
		c.logSchemaAnomaly(c.cfg.Embedding.Model, body, err)
		return nil, domain.SchemaError(serviceName, err)
	}
	if resBody.Error != nil {
		return nil, domain.TransportError(serviceName, errors.New(resBody.Error.Message))
	}
	if len(resBody.Data) == 0 || len(resBody.Data[0].Embedding) == 0 {
		err := errors.New("no embedding returned")
		c.logSchemaAnomaly(c.cfg.Embedding.Model, body, err)
		return nil, domain.SchemaError(serviceName, err)
	}

	vector := entities.Embedding(resBody.Data[0].Embedding)
	if len(vector) != c.cfg.EmbeddingDimensions {
		c.logger.WithFields(logrus.Fields{
			"model":      c.cfg.Embedding.Model,
			"dimensions": len(vector),
		}).Warn("embedding width differs from the vector column")
		return nil, domain.SchemaError(serviceName, errors.Errorf("embedding has %d dimensions, want %d", len(vector), c.cfg.EmbeddingDimensions))
	}
	return vector, nil
}

// EmbedImage describes image as plain text and embeds that description.
func (c *Client) EmbedImage(ctx context.Context, image ImageRef) (entities.Embedding, error) {
	desc, err := c.Describe(ctx, image, PlainText)
	if err != nil {
		return nil, err
	}
	return c.Embed(ctx, desc.Text)
}
