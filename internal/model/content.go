package model

import (
	"sort"
	"strings"
)

// Meta keys extracted from a page head. Open Graph properties keep their
// original "og:" names.
const (
	MetaTitle       = "title"
	MetaDescription = "description"
	MetaKeywords    = "keywords"
)

// PageLink is a link together with the relation it was found under, used for
// canonical and amphtml checks.
type PageLink struct {
	URL string `json:"url"`
	Rel string `json:"rel,omitempty"`
}

// ExtractedContent is the normalized view of one fetched page.
type ExtractedContent struct {
	VisibleText         string            `json:"visible_text"`
	Links               []string          `json:"links"`
	RelLinks            []PageLink        `json:"rel_links,omitempty"`
	Meta                map[string]string `json:"meta"`
	HiddenTextFragments []string          `json:"hidden_text_fragments"`
	ParseFailed         bool              `json:"parse_failed,omitempty"`
}

// MetaFields returns the names of meta entries worth scanning for injected
// content: title, description, keywords and every og:* property.
func (c *ExtractedContent) MetaFields() []string {
	fields := make([]string, 0, len(c.Meta))
	for _, k := range []string{MetaTitle, MetaDescription, MetaKeywords} {
		if _, ok := c.Meta[k]; ok {
			fields = append(fields, k)
		}
	}
	var og []string
	for k := range c.Meta {
		if strings.HasPrefix(k, "og:") {
			og = append(og, k)
		}
	}
	sort.Strings(og)
	return append(fields, og...)
}
