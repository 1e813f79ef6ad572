package ai

import (
	"context"

	"flavorpal-backend/domain"

	"github.com/pkg/errors"
)

type HealthOpinion struct {
	Success bool   `json:"success"`
	Opinion string `json:"opinion"`
	Reason  string `json:"reason"`
}

// Suggest asks for a health opinion on the ingredient table in image given the
// user's dietary restrictions. Success is false when the inputs were not
// usable, and then Opinion is always "unknown".
func (c *Client) Suggest(ctx context.Context, dietaryPreference string, image ImageRef) (HealthOpinion, error) {
	if image.IsZero() {
		return HealthOpinion{}, domain.ErrInvalidImage
	}
	set := prompts[c.cfg.Health.PromptVersion]
	text, err := c.respond(ctx, c.cfg.Health.Model, set.health, dietaryPreference, image, &textFormat{
		Type:   "json_schema",
		Name:   "healthSuggestion",
		Schema: healthSuggestionSchema,
		Strict: true,
	})
	if err != nil {
		return HealthOpinion{}, err
	}

	var raw struct {
		Success *bool   `json:"success"`
		Opinion *string `json:"opinion"`
		Reason  *string `json:"reason"`
	}
	if err := decodeStrict(text, &raw); err != nil {
		c.logSchemaAnomaly(c.cfg.Health.Model, []byte(text), err)
		return HealthOpinion{}, domain.SchemaError(serviceName, err)
	}
	if raw.Success == nil || raw.Opinion == nil || raw.Reason == nil {
		err := errors.New("health suggestion is missing required fields")
		c.logSchemaAnomaly(c.cfg.Health.Model, []byte(text), err)
		return HealthOpinion{}, domain.SchemaError(serviceName, err)
	}
	if !domain.IsValidOpinion(*raw.Opinion) {
		err := errors.Errorf("unexpected opinion %q", *raw.Opinion)
		c.logSchemaAnomaly(c.cfg.Health.Model, []byte(text), err)
		return HealthOpinion{}, domain.SchemaError(serviceName, err)
	}

	if !*raw.Success {
		return HealthOpinion{Success: false, Opinion: domain.OpinionUnknown, Reason: *raw.Reason}, nil
	}
	if *raw.Opinion == domain.OpinionUnknown {
		err := errors.New(`opinion "unknown" returned for usable input`)
		c.logSchemaAnomaly(c.cfg.Health.Model, []byte(text), err)
		return HealthOpinion{}, domain.SchemaError(serviceName, err)
	}
	return HealthOpinion{Success: true, Opinion: *raw.Opinion, Reason: *raw.Reason}, nil
}
