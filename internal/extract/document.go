package extract

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pveilleux/claimsift/internal/cache"
	"github.com/pveilleux/claimsift/internal/model"
)

// DocumentExtractor turns a claim PDF into typed text and image fields.
// Section roles are positional and injected through model.SectionRoles;
// a document with fewer sections than a role index yields an empty string
// for that role, never an error.
type DocumentExtractor struct {
	open  SourceOpener
	store *cache.ImageStore
	roles model.SectionRoles
}

// NewDocumentExtractor creates a new extractor
func NewDocumentExtractor(open SourceOpener, store *cache.ImageStore, roles model.SectionRoles) *DocumentExtractor {
	return &DocumentExtractor{
		open:  open,
		store: store,
		roles: roles,
	}
}

// Extract parses the document at path into a ClaimDocument. Embedded
// incident images are persisted through the image store exactly once per
// distinct image; repeated calls return the same paths in the same order.
func (e *DocumentExtractor) Extract(path string) (*model.ClaimDocument, error) {
	src, err := e.open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", model.ErrDocumentUnreadable, path, err)
	}
	defer func() { _ = src.Close() }()

	doc := &model.ClaimDocument{
		ID:           DocumentID(path),
		Path:         path,
		IncidentText: sectionTextOrEmpty(src, e.roles.Narrative),
		ContractText: sectionTextOrEmpty(src, e.roles.Contract),
	}

	if e.roles.Images < src.NumSections() {
		images, err := src.SectionImages(e.roles.Images)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: extract images: %v", model.ErrDocumentUnreadable, path, err)
		}

		for i, img := range images {
			storagePath, err := e.store.Put(doc.ID, i, img.Data, img.FileType)
			if err != nil {
				return nil, fmt.Errorf("store image %d of %s: %w", i, path, err)
			}
			doc.Images = append(doc.Images, model.ImageRef{
				DocumentID:    doc.ID,
				SequenceIndex: i,
				StoragePath:   storagePath,
			})
		}
	}

	return doc, nil
}

// DocumentID derives the document identity from its path: the base
// filename without extension.
func DocumentID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// sectionTextOrEmpty reads section text, degrading to "" when the section
// is missing or its text cannot be recovered. Text extraction is
// best-effort; only a document that cannot be opened at all is an error.
func sectionTextOrEmpty(src SectionSource, section int) string {
	if section < 0 || section >= src.NumSections() {
		return ""
	}
	text, err := src.SectionText(section)
	if err != nil {
		return ""
	}
	return text
}
