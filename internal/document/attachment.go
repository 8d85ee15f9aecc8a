package document

type BinaryKind string

const (
	BinaryPDF BinaryKind = "pdf"
	BinaryDoc BinaryKind = "doc"
)

type AttachmentStatus string

const (
	AttachmentPending    AttachmentStatus = "pending"
	AttachmentDownloaded AttachmentStatus = "downloaded"
	AttachmentFailed     AttachmentStatus = "failed"
)

// AttachmentRef points at one binary attached to a document.
// RemoteURL is stored after extension cleanup.
type AttachmentRef struct {
	RemoteURL string
	LocalName string
	LocalPath string
	Kind      BinaryKind
	Status    AttachmentStatus
	Hash      string
}
