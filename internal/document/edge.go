package document

import "strings"

// EdgeSpace separates the two relation graphs between documents.
type EdgeSpace string

const (
	// "related documents" tab
	SpaceRelated EdgeSpace = "related"
	// amendment / supersession map
	SpaceCrossRef EdgeSpace = "crossref"
)

// LabelConsolidated is the fixed label of consolidated-document cross references.
const LabelConsolidated = "Văn bản được hợp nhất"

// Edge is a directed, labelled relation between two documents of the same
// source. Edges with different labels between the same pair coexist.
type Edge struct {
	Source   Source
	Space    EdgeSpace
	SourceID string
	TargetID string
	Label    string
}

// IdentityKey is the idempotence key of an edge.
func (e Edge) IdentityKey() string {
	return strings.Join([]string{string(e.Source), string(e.Space), e.SourceID, e.TargetID, e.Label}, "|")
}
