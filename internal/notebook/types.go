package notebook

import (
	"time"

	"github.com/google/uuid"
)

// EntryID is a 128-bit opaque identifier with a total order, used only for
// deterministic tie-breaking.
type EntryID = uuid.UUID

// NotebookID is a 128-bit opaque identifier with a total order.
type NotebookID = uuid.UUID

// AuthorID is a 32-byte content-addressed identifier. By convention it is
// the BLAKE3 hash of a public key, but the engine treats it as opaque bytes
// and never derives or verifies it; identity and signatures are an
// out-of-scope external collaborator.
type AuthorID [32]byte

// Entry is an immutable, content-addressed record within a notebook. Once
// sealed it is never mutated; revisions are new entries linked via
// RevisionOf.
type Entry struct {
	ID             EntryID
	Author         AuthorID
	Content        []byte
	ContentType    string // MIME-like, e.g. "text/plain"
	Topic          string // optional; empty string means absent
	References     []EntryID
	RevisionOf     *EntryID
	Signature      []byte
	CausalPosition CausalPosition
	IntegrationCost IntegrationCost
	CreatedAt      time.Time // informational only, never used for ordering
}

// IsText reports whether the entry's content type is subject to
// tokenization (prefixed "text/"). Non-text entries yield an empty token
// list everywhere in the tokenizer and clustering pipeline.
func (e *Entry) IsText() bool {
	return len(e.ContentType) >= 5 && e.ContentType[:5] == "text/"
}

// ActivityContext summarizes an author's recent activity in a notebook at
// the moment a sequence number is assigned.
type ActivityContext struct {
	EntriesSinceLastByAuthor uint64
	TotalNotebookEntries     uint64
	RecentEntropy            float64
}

// CausalPosition orders writes within a notebook without reference to a
// wall clock: Sequence is monotonic, strictly increasing, and gap-free per
// notebook.
type CausalPosition struct {
	Sequence        uint64
	ActivityContext ActivityContext
}

// IntegrationCost is the four-component measurement of how much a
// notebook's internal organization had to reorganize to accept an entry.
type IntegrationCost struct {
	EntriesRevised    uint32
	ReferencesBroken  uint32
	CatalogShift      float64 // in [0,1]
	Orphan            bool
}

// ClampCatalogShift clamps a computed shift into [0,1], guarding against
// floating-point drift at the cosine-similarity boundary.
func ClampCatalogShift(shift float64) float64 {
	if shift < 0 {
		return 0
	}
	if shift > 1 {
		return 1
	}
	return shift
}

// NewEntry builds an Entry with zero-value CausalPosition and
// IntegrationCost, replacing the source's builder pattern with an explicit
// literal plus this small default-filling helper.
func NewEntry(id EntryID, author AuthorID, content []byte, contentType string) Entry {
	return Entry{
		ID:          id,
		Author:      author,
		Content:     content,
		ContentType: contentType,
		CreatedAt:   time.Now(),
	}
}
