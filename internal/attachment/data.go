package attachment

import (
	"github.com/rohmanhakim/vnlaw-crawler/internal/document"
	"github.com/rohmanhakim/vnlaw-crawler/pkg/hashutil"
)

// Request describes one binary to materialize.
type Request struct {
	Source    document.Source
	RemoteURL string
	// KnownID is the registry file ID, when the binary comes from
	// enrichment. It replaces the URL-derived name.
	KnownID string
	// IsPDF picks the extension of a KnownID name.
	IsPDF bool
}

type ResolveParam struct {
	// OutputDir is the root under which pdf/ and doc/ folders are created.
	OutputDir string
	HashAlgo  hashutil.HashAlgo
}
