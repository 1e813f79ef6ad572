package ai

import (
	"net/url"

	"flavorpal-backend/domain"
)

// ImageRef is either an inline data URI or a fetchable URL.
type ImageRef struct {
	value  string
	inline bool
}

func InlineImage(dataURI string) (ImageRef, error) {
	if !domain.ImageDataURIPattern.MatchString(dataURI) {
		return ImageRef{}, domain.ErrInvalidImage
	}
	return ImageRef{value: dataURI, inline: true}, nil
}

func RemoteImage(rawURL string) (ImageRef, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ImageRef{}, domain.ErrInvalidImage
	}
	return ImageRef{value: rawURL}, nil
}

func (r ImageRef) String() string {
	return r.value
}

func (r ImageRef) IsInline() bool {
	return r.inline
}

func (r ImageRef) IsZero() bool {
	return r.value == ""
}
