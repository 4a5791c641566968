package immo

import (
	"context"
	"fmt"
)

// ImageUpload pairs image content with its metadata.
type ImageUpload struct {
	FileName string
	Content  []byte
	AltText  string
	Caption  string
	IsMain   bool
}

// UploadPropertyImages uploads photos for a listing.
func (c *Client) UploadPropertyImages(ctx context.Context, propertyID int, images []ImageUpload) ([]PropertyImage, error) {
	files := make([]UploadFile, 0, len(images))
	fields := make(map[string]string)

	for i, img := range images {
		prefix := fmt.Sprintf("images[%d]", i)
		files = append(files, UploadFile{Field: prefix, FileName: img.FileName, Content: img.Content})

		if img.AltText != "" {
			fields[prefix+"[alt_text]"] = img.AltText
		}

		if img.Caption != "" {
			fields[prefix+"[caption]"] = img.Caption
		}

		if img.IsMain {
			fields[prefix+"[is_main]"] = "1"
		}
	}

	endpoint := fmt.Sprintf("/properties/%d/media/images", propertyID)

	var uploaded []PropertyImage
	if err := c.postMultipart(ctx, endpoint, files, fields, &uploaded); err != nil {
		return nil, fmt.Errorf("uploading images for property %d: %w", propertyID, err)
	}

	return uploaded, nil
}

// PropertyImages returns a listing's photos.
func (c *Client) PropertyImages(ctx context.Context, propertyID int) ([]PropertyImage, error) {
	var images []PropertyImage
	if err := c.get(ctx, fmt.Sprintf("/properties/%d/media/images", propertyID), nil, &images); err != nil {
		return nil, fmt.Errorf("listing images for property %d: %w", propertyID, err)
	}

	return images, nil
}

// UpdatePropertyImage updates a photo's metadata.
func (c *Client) UpdatePropertyImage(ctx context.Context, propertyID, imageID int, fields map[string]any) (*PropertyImage, error) {
	endpoint := fmt.Sprintf("/properties/%d/media/images/%d", propertyID, imageID)

	var img PropertyImage
	if err := c.patch(ctx, endpoint, fields, &img); err != nil {
		return nil, fmt.Errorf("updating image %d on property %d: %w", imageID, propertyID, err)
	}

	return &img, nil
}

// DeletePropertyImage removes a photo.
func (c *Client) DeletePropertyImage(ctx context.Context, propertyID, imageID int) error {
	endpoint := fmt.Sprintf("/properties/%d/media/images/%d", propertyID, imageID)
	if err := c.del(ctx, endpoint); err != nil {
		return fmt.Errorf("deleting image %d on property %d: %w", imageID, propertyID, err)
	}

	return nil
}

// SetMainImage makes a photo the listing's cover image.
func (c *Client) SetMainImage(ctx context.Context, propertyID, imageID int) error {
	endpoint := fmt.Sprintf("/properties/%d/media/images/%d/set-main", propertyID, imageID)
	if err := c.patch(ctx, endpoint, struct{}{}, nil); err != nil {
		return fmt.Errorf("setting main image %d on property %d: %w", imageID, propertyID, err)
	}

	return nil
}

// VerifyPropertyImage approves a photo (admin only).
func (c *Client) VerifyPropertyImage(ctx context.Context, propertyID, imageID int, notes string) error {
	endpoint := fmt.Sprintf("/properties/%d/media/images/%d/verify", propertyID, imageID)
	if err := c.patch(ctx, endpoint, map[string]string{"notes": notes}, nil); err != nil {
		return fmt.Errorf("verifying image %d on property %d: %w", imageID, propertyID, err)
	}

	return nil
}

// RejectPropertyImage rejects a photo with a reason (admin only).
func (c *Client) RejectPropertyImage(ctx context.Context, propertyID, imageID int, reason string) error {
	endpoint := fmt.Sprintf("/properties/%d/media/images/%d/reject", propertyID, imageID)
	if err := c.patch(ctx, endpoint, map[string]string{"rejection_reason": reason}, nil); err != nil {
		return fmt.Errorf("rejecting image %d on property %d: %w", imageID, propertyID, err)
	}

	return nil
}

// UploadPropertyDocuments uploads ownership documents for a listing.
func (c *Client) UploadPropertyDocuments(ctx context.Context, propertyID int, docs []DocumentUpload) ([]Document, error) {
	files := make([]UploadFile, 0, len(docs))
	fields := make(map[string]string)

	for i, d := range docs {
		prefix := fmt.Sprintf("documents[%d]", i)
		files = append(files, UploadFile{Field: prefix, FileName: d.FileName, Content: d.Content})

		if d.DocumentTypeID != 0 {
			fields[prefix+"[document_type_id]"] = fmt.Sprintf("%d", d.DocumentTypeID)
		}

		if d.Name != "" {
			fields[prefix+"[name]"] = d.Name
		}

		if d.Description != "" {
			fields[prefix+"[description]"] = d.Description
		}
	}

	endpoint := fmt.Sprintf("/properties/%d/media/documents", propertyID)

	var uploaded []Document
	if err := c.postMultipart(ctx, endpoint, files, fields, &uploaded); err != nil {
		return nil, fmt.Errorf("uploading documents for property %d: %w", propertyID, err)
	}

	return uploaded, nil
}

// PropertyDocuments returns a listing's ownership documents.
func (c *Client) PropertyDocuments(ctx context.Context, propertyID int) ([]Document, error) {
	var docs []Document
	if err := c.get(ctx, fmt.Sprintf("/properties/%d/media/documents", propertyID), nil, &docs); err != nil {
		return nil, fmt.Errorf("listing documents for property %d: %w", propertyID, err)
	}

	return docs, nil
}

// DeletePropertyDocument removes an ownership document.
func (c *Client) DeletePropertyDocument(ctx context.Context, propertyID, documentID int) error {
	endpoint := fmt.Sprintf("/properties/%d/media/documents/%d", propertyID, documentID)
	if err := c.del(ctx, endpoint); err != nil {
		return fmt.Errorf("deleting document %d on property %d: %w", documentID, propertyID, err)
	}

	return nil
}

// VerifyPropertyDocument approves an ownership document (admin only).
func (c *Client) VerifyPropertyDocument(ctx context.Context, propertyID, documentID int, notes string) error {
	endpoint := fmt.Sprintf("/properties/%d/media/documents/%d/verify", propertyID, documentID)
	if err := c.patch(ctx, endpoint, map[string]string{"notes": notes}, nil); err != nil {
		return fmt.Errorf("verifying document %d on property %d: %w", documentID, propertyID, err)
	}

	return nil
}

// RejectPropertyDocument rejects an ownership document with a reason
// (admin only).
func (c *Client) RejectPropertyDocument(ctx context.Context, propertyID, documentID int, reason string) error {
	endpoint := fmt.Sprintf("/properties/%d/media/documents/%d/reject", propertyID, documentID)
	if err := c.patch(ctx, endpoint, map[string]string{"rejection_reason": reason}, nil); err != nil {
		return fmt.Errorf("rejecting document %d on property %d: %w", documentID, propertyID, err)
	}

	return nil
}
