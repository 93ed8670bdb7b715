package models

import "time"

type DocumentType string

const (
	DocumentTypeDocument DocumentType = "Document"
	DocumentTypeTweet    DocumentType = "Tweet"
	DocumentTypeYoutube  DocumentType = "Youtube"
	DocumentTypeLink     DocumentType = "Link"
)

type (
	// Document is a saved content item. SharableID is non-nil iff Sharable is true.
	Document struct {
		ID          string       `json:"_id"`
		OwnerID     string       `json:"userId"`
		Type        DocumentType `json:"type"`
		Link        string       `json:"link"`
		Title       string       `json:"title"`
		Description *string      `json:"description,omitempty"`
		Tags        []string     `json:"tags"`
		Sharable    bool         `json:"sharable"`
		SharableID  *string      `json:"sharableId,omitempty"`
		CreatedAt   time.Time    `json:"createdAt"`
		UpdatedAt   time.Time    `json:"updatedAt"`
	}

	// DocumentInput is what an owner may supply when creating a document.
	// Sharing state is never taken from the client.
	DocumentInput struct {
		Type        DocumentType `json:"type" validate:"required,oneof=Document Tweet Youtube Link"`
		Link        string       `json:"link" validate:"required,link"`
		Title       string       `json:"title" validate:"required,min=3,max=64"`
		Description *string      `json:"description" validate:"omitempty,min=3,max=300"`
		Tags        []string     `json:"tags" validate:"omitempty,dive,tag"`
	}

	// DocumentPatch lists the updatable fields; nil means "leave as is".
	DocumentPatch struct {
		Type        *DocumentType `json:"type" validate:"omitempty,oneof=Document Tweet Youtube Link"`
		Link        *string       `json:"link" validate:"omitempty,link"`
		Title       *string       `json:"title" validate:"omitempty,min=3,max=64"`
		Description *string       `json:"description" validate:"omitempty,min=3,max=300"`
		Tags        []string      `json:"tags" validate:"omitempty,dive,tag"`
	}

	DocumentFilter struct {
		Tag          string
		SharableOnly bool
	}

	// PublicDocument is a document as shown to non-owners: the owner id is hidden.
	PublicDocument struct {
		ID          string       `json:"_id"`
		Type        DocumentType `json:"type"`
		Link        string       `json:"link"`
		Title       string       `json:"title"`
		Description *string      `json:"description,omitempty"`
		Tags        []string     `json:"tags"`
		Sharable    bool         `json:"sharable"`
		SharableID  *string      `json:"sharableId,omitempty"`
		CreatedAt   time.Time    `json:"createdAt"`
		UpdatedAt   time.Time    `json:"updatedAt"`
	}
)

func (p DocumentPatch) IsEmpty() bool {
	return p.Type == nil && p.Link == nil && p.Title == nil && p.Description == nil && p.Tags == nil
}

func (d Document) Public() PublicDocument {
	return PublicDocument{
		ID:          d.ID,
		Type:        d.Type,
		Link:        d.Link,
		Title:       d.Title,
		Description: d.Description,
		Tags:        d.Tags,
		Sharable:    d.Sharable,
		SharableID:  d.SharableID,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}
