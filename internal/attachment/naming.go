package attachment

import (
	"net/http"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rohmanhakim/vnlaw-crawler/internal/document"
)

// NoID stands in for a file ID that cannot be read from the URL.
const NoID = "noId"

var (
	duplicateExtension = regexp.MustCompile(`\.{2}(docx?|pdf)$`)
	vbplFileID         = regexp.MustCompile(`/Attachments/(\d+)/`)
	anleFileID         = regexp.MustCompile(`/UCMServer/(\w+)`)
	dispositionName    = regexp.MustCompile(`filename=(.*?)(?:;|$)`)
	pdfSuffix          = regexp.MustCompile(`(?i)\.pdf$`)
)

// CleanURL fixes the doubled extension (name..pdf) some portal links carry.
func CleanURL(remoteURL string) string {
	return duplicateExtension.ReplaceAllString(remoteURL, ".$1")
}

// FileID returns the portal file ID embedded in remoteURL, or NoID.
func FileID(source document.Source, remoteURL string) string {
	pattern := vbplFileID
	if source == document.SourceAnle {
		pattern = anleFileID
	}
	if m := pattern.FindStringSubmatch(remoteURL); m != nil {
		return m[1]
	}
	return NoID
}

/*
DeriveName returns the local file name of an attachment.

	knownID set:  {knownID}.pdf or {knownID}.doc
	vbpl:         ({fileID})-{decoded URL basename}
	anle:         ({fileID})-{content-disposition filename}

The case-law portal serves files from opaque URLs, so its name comes from
the response header, falling back to the URL basename. Spaces and percent
signs left after decoding become underscores. The same URL and header
always give the same name.
*/
func DeriveName(req Request, header http.Header) (string, *AttachmentError) {
	if req.KnownID != "" {
		if req.IsPDF {
			return req.KnownID + ".pdf", nil
		}
		return req.KnownID + ".doc", nil
	}

	remoteURL := CleanURL(req.RemoteURL)
	name := ""
	if req.Source == document.SourceAnle {
		name = strings.ReplaceAll(dispositionFilename(header), " ", "_")
	}
	if name == "" {
		name = unquote(urlBasename(remoteURL), true)
	}
	name = unquote(name, false)
	name = strings.NewReplacer(" ", "_", "%", "_", "/", "_", "\\", "_").Replace(name)
	if name == "" {
		return "", &AttachmentError{
			Message:   "no file name in " + req.RemoteURL,
			Retryable: false,
			Cause:     ErrCauseIdentity,
		}
	}

	return "(" + FileID(req.Source, remoteURL) + ")-" + name, nil
}

// KindOf classifies a local file name by its extension.
func KindOf(name string) document.BinaryKind {
	if pdfSuffix.MatchString(name) {
		return document.BinaryPDF
	}
	return document.BinaryDoc
}

// Folder is {outputDir}/{kind}/{source}_{kind}.
func Folder(outputDir string, source document.Source, kind document.BinaryKind) string {
	return filepath.Join(outputDir, string(kind), string(source)+"_"+string(kind))
}

func dispositionFilename(header http.Header) string {
	if header == nil {
		return ""
	}
	m := dispositionName.FindStringSubmatch(header.Get("Content-Disposition"))
	if m == nil {
		return ""
	}
	return strings.Trim(strings.TrimSpace(m[1]), `"`)
}

func urlBasename(remoteURL string) string {
	raw := remoteURL
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}
	base := path.Base(raw)
	if base == "." || base == "/" || strings.HasSuffix(raw, "/") || strings.HasSuffix(base, ":") {
		return ""
	}
	return base
}

// unquote decodes %XX escapes, and '+' when plus is set. Malformed escapes
// are kept as they are.
func unquote(s string, plus bool) string {
	if !strings.ContainsAny(s, "%+") {
		return s
	}
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]):
			out = append(out, unhex(s[i+1])<<4|unhex(s[i+2]))
			i += 2
		case c == '+' && plus:
			out = append(out, ' ')
		default:
			out = append(out, c)
		}
	}
	return string(out)
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
