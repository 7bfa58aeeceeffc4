package models

// Source is one syndication endpoint. Category carries the region tag.
type Source struct {
	Name     string `json:"name" yaml:"name" validate:"required"`
	URL      string `json:"url" yaml:"url" validate:"required,url"`
	Category string `json:"category" yaml:"category"`
}
