package mdextract

import "strings"

// SourceKind identifies what a Request points at.
type SourceKind string

// SourceKind constants.
const (
	SourcePDF SourceKind = "pdf"
	SourceWeb SourceKind = "web"
)

// Backend selects between the local open-source stack and the remote
// commercial services.
type Backend string

// Backend constants.
const (
	BackendOpenSource Backend = "opensource"
	BackendEnterprise Backend = "enterprise"
)

// Strategy identifies one of the interchangeable extraction strategies.
type Strategy string

// Strategy constants.
const (
	StrategyLocalPDF       Strategy = "local_pdf"
	StrategyRemotePDF      Strategy = "remote_pdf"
	StrategyHTMLScrape     Strategy = "html_scrape"
	StrategyRemoteAnalysis Strategy = "remote_analysis"
)

// Strategies lists every strategy in a stable order.
func Strategies() []Strategy {
	return []Strategy{
		StrategyLocalPDF,
		StrategyRemotePDF,
		StrategyHTMLScrape,
		StrategyRemoteAnalysis,
	}
}

// Local reports whether the strategy does its decomposition in-process
// rather than delegating to a remote service.
func (s Strategy) Local() bool {
	return s == StrategyLocalPDF || s == StrategyHTMLScrape
}

// Request describes one extraction: either PDF bytes or a web URL, plus the
// backend choice. A Request is consumed once and must not be modified after
// construction.
type Request struct {
	Kind    SourceKind
	Backend Backend

	// Filename is the original name of an uploaded PDF.
	Filename string

	// PDF holds the document bytes for SourcePDF requests.
	PDF []byte

	// URL is the page address for SourceWeb requests.
	URL string
}

// NewPDFRequest returns a request to extract an uploaded PDF.
func NewPDFRequest(filename string, data []byte, backend Backend) *Request {
	return &Request{
		Kind:     SourcePDF,
		Backend:  backend,
		Filename: filename,
		PDF:      data,
	}
}

// NewWebRequest returns a request to extract a web page.
func NewWebRequest(rawURL string, backend Backend) *Request {
	return &Request{
		Kind:    SourceWeb,
		Backend: backend,
		URL:     strings.TrimSpace(rawURL),
	}
}

// Validate returns an error if the request is missing required fields.
func (r *Request) Validate() error {
	switch r.Kind {
	case SourcePDF:
		if r.Filename == "" {
			return Errorf(EINVALID, "file name required")
		}
		if len(r.PDF) == 0 {
			return Errorf(EINVALID, "file is empty")
		}
	case SourceWeb:
		if r.URL == "" {
			return Errorf(EINVALID, "url required")
		}
	default:
		return Errorf(EINVALID, "unknown source kind %q", r.Kind)
	}
	if r.Backend != BackendOpenSource && r.Backend != BackendEnterprise {
		return Errorf(EINVALID, "unknown backend %q", r.Backend)
	}
	return nil
}

// Strategy resolves the (source kind, backend) pair to an extraction
// strategy. The request must be valid.
func (r *Request) Strategy() Strategy {
	switch {
	case r.Kind == SourcePDF && r.Backend == BackendEnterprise:
		return StrategyRemotePDF
	case r.Kind == SourcePDF:
		return StrategyLocalPDF
	case r.Backend == BackendEnterprise:
		return StrategyRemoteAnalysis
	default:
		return StrategyHTMLScrape
	}
}
