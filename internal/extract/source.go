package extract

// SectionImage is one embedded image pulled out of a document section
type SectionImage struct {
	Data     []byte // Raw image bytes as embedded in the document
	FileType string // e.g. "png", "jpg"; empty if unknown
}

// SectionSource is the parser capability the extractor consumes: positional
// access to section text and embedded images. The concrete PDF adapter
// lives in internal/pdfdoc; tests substitute an in-memory fake.
type SectionSource interface {
	// NumSections returns the number of sections in the document
	NumSections() int

	// SectionText returns the plain text of section i (0-based)
	SectionText(i int) (string, error)

	// SectionImages returns the embedded images of section i, in embedding order
	SectionImages(i int) ([]SectionImage, error)

	Close() error
}

// SourceOpener opens a document path as a SectionSource
type SourceOpener func(path string) (SectionSource, error)
