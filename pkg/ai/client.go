package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"flavorpal-backend/domain"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const serviceName = "openai"

type inputContent struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

type inputMessage struct {
	Role    string         `json:"role"`
	Content []inputContent `json:"content"`
}

type textFormat struct {
	Type   string         `json:"type"`
	Name   string         `json:"name,omitempty"`
	Schema map[string]any `json:"schema,omitempty"`
	Strict bool           `json:"strict,omitempty"`
}

type textOptions struct {
	Format textFormat `json:"format"`
}

type responsesRequest struct {
	Model string         `json:"model"`
	Input []inputMessage `json:"input"`
	Text  *textOptions   `json:"text,omitempty"`
}

type outputContent struct {
	Type    string `json:"type"`
	Text    string `json:"text"`
	Refusal string `json:"refusal"`
}

type outputItem struct {
	Type    string          `json:"type"`
	Role    string          `json:"role"`
	Content []outputContent `json:"content"`
}

type responsesResponse struct {
	Status            string          `json:"status"`
	Output            []outputItem    `json:"output"`
	Error             *openAIApiError `json:"error"`
	IncompleteDetails *struct {
		Reason string `json:"reason"`
	} `json:"incomplete_details"`
}

type openAIApiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Param   string `json:"param"`
}

// Client talks to an OpenAI-compatible API for image description, health
// suggestions and text embeddings. It performs no retries.
type Client struct {
	cfg        Config
	httpClient *http.Client
	buildURLFn func(baseURL, path string) (string, error)
	logger     logrus.FieldLogger
}

func New(cfg Config, logger logrus.FieldLogger) (*Client, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{},
		buildURLFn: buildURL,
		logger:     logger,
	}, nil
}

func buildURL(baseURL, path string) (string, error) {
	return url.JoinPath(baseURL, path)
}

// respond sends one system+user turn to the responses endpoint and returns the
// assistant's output text. A refusal from the model is a ModelRefusalError.
func (c *Client) respond(ctx context.Context, model, system, userText string, image ImageRef, format *textFormat) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.VisionTimeout)
	defer cancel()

	userContent := make([]inputContent, 0, 2)
	if userText != "" {
		userContent = append(userContent, inputContent{Type: "input_text", Text: userText})
	}
	userContent = append(userContent, inputContent{Type: "input_image", ImageURL: image.String(), Detail: "auto"})

	payload := responsesRequest{
		Model: model,
		Input: []inputMessage{
			{Role: "system", Content: []inputContent{{Type: "input_text", Text: system}}},
			{Role: "user", Content: userContent},
		},
	}
	if format != nil {
		payload.Text = &textOptions{Format: *format}
	}

	body, err := c.post(ctx, "/v1/responses", payload)
	if err != nil {
		return "", err
	}

	var resBody responsesResponse
	if err := json.Unmarshal(body, &resBody); err != nil {
		c.logSchemaAnomaly(model, body, err)
		return "", domain.SchemaError(serviceName, err)
	}
	if resBody.Error != nil {
		return "", domain.TransportError(serviceName, errors.New(resBody.Error.Message))
	}

	var out strings.Builder
	for _, item := range resBody.Output {
		if item.Type != "message" {
			continue
		}
		for _, content := range item.Content {
			switch content.Type {
			case "refusal":
				return "", &domain.ModelRefusalError{Reason: content.Refusal}
			case "output_text":
				out.WriteString(content.Text)
			}
		}
	}
	if out.Len() == 0 {
		err := errors.New("response contained no output text")
		if resBody.IncompleteDetails != nil {
			err = errors.Errorf("response incomplete: %s", resBody.IncompleteDetails.Reason)
		}
		c.logSchemaAnomaly(model, body, err)
		return "", domain.SchemaError(serviceName, err)
	}
	return out.String(), nil
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	startTime := time.Now()
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "marshal body")
	}

	endpoint, err := c.buildURLFn(c.cfg.BaseURL, path)
	if err != nil {
		return nil, errors.Wrap(err, "join OpenAI API host and path")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "create POST request")
	}
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", c.cfg.APIKey))
	req.Header.Add("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.TransportError(serviceName, err)
	}
	defer res.Body.Close()

	bodyBytes, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, domain.TransportError(serviceName, err)
	}

	c.logger.WithFields(logrus.Fields{
		"endpoint": endpoint,
		"status":   res.StatusCode,
		"took":     time.Since(startTime),
	}).Debug("openai request finished")

	if res.StatusCode != http.StatusOK {
		return nil, domain.TransportError(serviceName, c.getError(res.StatusCode, res.Header.Get("x-request-id"), bodyBytes))
	}
	return bodyBytes, nil
}

func (c *Client) getError(statusCode int, requestID string, body []byte) error {
	errorMsg := fmt.Sprintf("connection to OpenAI API failed with status: %d", statusCode)
	if requestID != "" {
		errorMsg = fmt.Sprintf("%s request-id: %s", errorMsg, requestID)
	}
	var resBody struct {
		Error *openAIApiError `json:"error"`
	}
	if err := json.Unmarshal(body, &resBody); err == nil && resBody.Error != nil {
		errorMsg = fmt.Sprintf("%s error: %v", errorMsg, resBody.Error.Message)
	}
	return errors.New(errorMsg)
}

func (c *Client) logSchemaAnomaly(model string, body []byte, err error) {
	payload := string(body)
	if len(payload) > 512 {
		payload = payload[:512]
	}
	c.logger.WithFields(logrus.Fields{
		"model":   model,
		"payload": payload,
	}).WithError(err).Warn("openai response failed validation")
}
