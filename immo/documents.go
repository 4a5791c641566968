package immo

import (
	"context"
	"fmt"
	"strconv"
)

// ListDocumentTypes returns a page of document categories.
func (c *Client) ListDocumentTypes(ctx context.Context, params Params) (*Page[DocumentType], error) {
	var page Page[DocumentType]
	if err := c.get(ctx, "/document-types", params, &page); err != nil {
		return nil, fmt.Errorf("listing document types: %w", err)
	}

	return &page, nil
}

// GetDocumentType returns a single document category.
func (c *Client) GetDocumentType(ctx context.Context, id int) (*DocumentType, error) {
	var dt DocumentType
	if err := c.get(ctx, fmt.Sprintf("/document-types/%d", id), nil, &dt); err != nil {
		return nil, fmt.Errorf("fetching document type %d: %w", id, err)
	}

	return &dt, nil
}

// CreateDocumentType creates a document category (admin only).
func (c *Client) CreateDocumentType(ctx context.Context, fields map[string]any) (*DocumentType, error) {
	var dt DocumentType
	if err := c.post(ctx, "/document-types", fields, &dt); err != nil {
		return nil, fmt.Errorf("creating document type: %w", err)
	}

	return &dt, nil
}

// UpdateDocumentType updates a document category (admin only).
func (c *Client) UpdateDocumentType(ctx context.Context, id int, fields map[string]any) (*DocumentType, error) {
	var dt DocumentType
	if err := c.patch(ctx, fmt.Sprintf("/document-types/%d", id), fields, &dt); err != nil {
		return nil, fmt.Errorf("updating document type %d: %w", id, err)
	}

	return &dt, nil
}

// DeleteDocumentType removes a document category (admin only).
func (c *Client) DeleteDocumentType(ctx context.Context, id int) error {
	if err := c.del(ctx, fmt.Sprintf("/document-types/%d", id)); err != nil {
		return fmt.Errorf("deleting document type %d: %w", id, err)
	}

	return nil
}

// DocumentUpload pairs file content with its metadata for a
// verification-document upload.
type DocumentUpload struct {
	FileName       string
	Content        []byte
	DocumentTypeID int
	Name           string
	Description    string
}

// UploadUserDocuments uploads verification documents for an account.
// Files and their metadata share the documents[i] index on the wire.
func (c *Client) UploadUserDocuments(ctx context.Context, userID int, docs []DocumentUpload) ([]Document, error) {
	files := make([]UploadFile, 0, len(docs))
	fields := make(map[string]string)

	for i, d := range docs {
		prefix := fmt.Sprintf("documents[%d]", i)
		files = append(files, UploadFile{Field: prefix, FileName: d.FileName, Content: d.Content})

		if d.DocumentTypeID != 0 {
			fields[prefix+"[document_type_id]"] = strconv.Itoa(d.DocumentTypeID)
		}

		if d.Name != "" {
			fields[prefix+"[name]"] = d.Name
		}

		if d.Description != "" {
			fields[prefix+"[description]"] = d.Description
		}
	}

	var uploaded []Document
	if err := c.postMultipart(ctx, fmt.Sprintf("/users/%d/documents", userID), files, fields, &uploaded); err != nil {
		return nil, fmt.Errorf("uploading documents for user %d: %w", userID, err)
	}

	return uploaded, nil
}

// UserDocuments returns an account's verification documents.
func (c *Client) UserDocuments(ctx context.Context, userID int) ([]Document, error) {
	var docs []Document
	if err := c.get(ctx, fmt.Sprintf("/users/%d/documents", userID), nil, &docs); err != nil {
		return nil, fmt.Errorf("listing documents for user %d: %w", userID, err)
	}

	return docs, nil
}

// DeleteUserDocument removes a verification document.
func (c *Client) DeleteUserDocument(ctx context.Context, userID, documentID int) error {
	if err := c.del(ctx, fmt.Sprintf("/users/%d/documents/%d", userID, documentID)); err != nil {
		return fmt.Errorf("deleting document %d for user %d: %w", documentID, userID, err)
	}

	return nil
}

// VerifyUserDocument approves a verification document (admin only).
func (c *Client) VerifyUserDocument(ctx context.Context, userID, documentID int, notes string) error {
	body := map[string]string{"notes": notes}
	endpoint := fmt.Sprintf("/users/%d/documents/%d/verify", userID, documentID)

	if err := c.patch(ctx, endpoint, body, nil); err != nil {
		return fmt.Errorf("verifying document %d for user %d: %w", documentID, userID, err)
	}

	return nil
}

// RejectUserDocument rejects a verification document with a reason
// (admin only).
func (c *Client) RejectUserDocument(ctx context.Context, userID, documentID int, reason string) error {
	body := map[string]string{"rejection_reason": reason}
	endpoint := fmt.Sprintf("/users/%d/documents/%d/reject", userID, documentID)

	if err := c.patch(ctx, endpoint, body, nil); err != nil {
		return fmt.Errorf("rejecting document %d for user %d: %w", documentID, userID, err)
	}

	return nil
}
