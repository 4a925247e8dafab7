package entity

import (
	"github.com/superclaims/claims-processor/constants"
)

// UploadedDocument is one file of a claim as delivered by the intake layer.
// Immutable once accepted.
type UploadedDocument struct {
	Filename string
	Content  []byte
}

// ClaimRequest is one submitted batch of documents.
type ClaimRequest struct {
	RequestID string
	Documents []UploadedDocument
}

// RawText is the output of text acquisition for a single document.
type RawText struct {
	Filename  string                     `json:"filename"`
	Text      string                     `json:"-"`
	Method    constants.ExtractionMethod `json:"method"`
	CharCount int                        `json:"char_count"`
	Pages     int                        `json:"pages,omitempty"`
	Warnings  []string                   `json:"warnings,omitempty"`
}

// Section is one (kind, text-span) pair found in a document. A normal
// document yields exactly one; a multi-section document yields one per
// embedded document kind, all sharing the same source bytes.
type Section struct {
	Kind constants.DocumentKind
	Text string
}

// ClassifiedDocument is the classifier's verdict for one document.
type ClassifiedDocument struct {
	Filename             string                 `json:"filename"`
	Kind                 constants.DocumentKind `json:"document_type"`
	Confidence           float64                `json:"confidence"`
	HasAdditionalSection bool                   `json:"has_additional_section"`
	Reasoning            string                 `json:"reasoning,omitempty"`
	Sections             []Section              `json:"-"`
}
