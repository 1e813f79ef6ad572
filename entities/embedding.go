package entities

import (
	"context"
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EmbeddingDimensions is the width of the image_embedding vector column.
const EmbeddingDimensions = 1536

// Embedding is stored in its pgvector text form: [v0,v1,...,vn].
type Embedding []float32

func (e Embedding) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range e {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(v), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}

func ParseEmbedding(s string) (Embedding, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, fmt.Errorf("embedding %q is not bracketed", s)
	}
	body := strings.TrimSpace(s[1 : len(s)-1])
	if body == "" {
		return Embedding{}, nil
	}
	parts := strings.Split(body, ",")
	out := make(Embedding, 0, len(parts))
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 32)
		if err != nil {
			return nil, fmt.Errorf("embedding value %d: %w", i, err)
		}
		out = append(out, float32(v))
	}
	return out, nil
}

func (e Embedding) Value() (driver.Value, error) {
	if len(e) == 0 {
		return nil, nil
	}
	return e.String(), nil
}

// GormValue casts the text form to vector on insert and update.
func (e Embedding) GormValue(ctx context.Context, db *gorm.DB) clause.Expr {
	if len(e) == 0 {
		return clause.Expr{SQL: "NULL"}
	}
	return clause.Expr{SQL: "?::vector", Vars: []interface{}{e.String()}}
}

func (e *Embedding) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*e = nil
		return nil
	case string:
		parsed, err := ParseEmbedding(v)
		if err != nil {
			return err
		}
		*e = parsed
		return nil
	case []byte:
		parsed, err := ParseEmbedding(string(v))
		if err != nil {
			return err
		}
		*e = parsed
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Embedding", src)
	}
}
