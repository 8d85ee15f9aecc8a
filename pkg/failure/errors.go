package failure

type Severity int

// crawler control flow
const (
	SeverityFatal Severity = iota
	SeverityRecoverable
)

// ClassifiedError is returned by every pipeline stage. Stages classify,
// the crawler decides.
type ClassifiedError interface {
	error
	Severity() Severity
}
