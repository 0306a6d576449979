// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"time"

	"github.com/jeranaias/assistchat/internal/model"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter exports conversations to JSON. The conversation is written
// in its stored shape, so the output can be restored with
// chatstore.Store.CreateConversation using the messages as seed.
type JSONExporter struct {
	options *Options
}

// jsonDocument wraps the conversation with export metadata.
type jsonDocument struct {
	Generator    string              `json:"generator"`
	ExportedAt   string              `json:"exported_at"`
	Conversation *model.Conversation `json:"conversation"`
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(opts *Options) *JSONExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &JSONExporter{options: opts}
}

// Export converts a conversation to JSON. Empty conversations are allowed.
func (e *JSONExporter) Export(conv *model.Conversation) ([]byte, error) {
	if conv == nil {
		return nil, ErrNilConversation
	}
	doc := jsonDocument{
		Generator:    "assistchat",
		ExportedAt:   e.options.now().UTC().Format(time.RFC3339),
		Conversation: conv,
	}
	return json.MarshalIndent(doc, "", "  ")
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// MimeType returns the MIME type for JSON.
func (e *JSONExporter) MimeType() string {
	return "application/json"
}
