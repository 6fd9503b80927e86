// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the data entities shared across pipeline stages.
package types

import "strings"

// Document holds the metadata and reference list for one corpus paper.
// Documents are immutable once loaded; every stage receives the same slice
// and the corpus size stays constant through the whole run.
type Document struct {
	// ID is the document identifier, normally a DOI.
	ID string `json:"id" yaml:"id"`

	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Journal is the publication venue.
	Journal string `json:"journal,omitempty" yaml:"journal,omitempty"`

	// Year is the publication year.
	Year int `json:"year,omitempty" yaml:"year,omitempty"`

	// Abstract is the paper abstract.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// References lists the identifiers of works this document cites,
	// in source order. May be empty.
	References []string `json:"references,omitempty" yaml:"references,omitempty"`
}

// Text returns the clustering text for the document: title and abstract
// joined. A document with neither still participates in the run and is
// assigned a zero feature vector.
func (d Document) Text() string {
	return strings.TrimSpace(d.Title + " " + d.Abstract)
}

// HasText reports whether the document contributes any terms.
func (d Document) HasText() bool {
	return d.Text() != ""
}
