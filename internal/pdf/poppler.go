package pdf

import (
	"bytes"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// PopplerReader reads PDFs through the poppler command-line tools
// (pdfinfo for the page count, pdftotext for page text). Both tools
// are widely packaged and keep the PDF strictly read-only.
type PopplerReader struct {
	// PDFInfoBin and PDFToTextBin override the tool names, mainly for
	// tests. Empty means "pdfinfo" / "pdftotext" on PATH.
	PDFInfoBin   string
	PDFToTextBin string
}

// Available reports whether the poppler tools can be found on PATH.
func (r *PopplerReader) Available() bool {
	_, err := exec.LookPath(r.pdfinfo())
	if err != nil {
		return false
	}
	_, err = exec.LookPath(r.pdftotext())
	return err == nil
}

func (r *PopplerReader) pdfinfo() string {
	if r.PDFInfoBin != "" {
		return r.PDFInfoBin
	}
	return "pdfinfo"
}

func (r *PopplerReader) pdftotext() string {
	if r.PDFToTextBin != "" {
		return r.PDFToTextBin
	}
	return "pdftotext"
}

// NumPages implements Reader via `pdfinfo`, parsing its "Pages:" line.
func (r *PopplerReader) NumPages(path string) (int, error) {
	out, err := exec.Command(r.pdfinfo(), path).Output()
	if err != nil {
		return 0, fmt.Errorf("pdfinfo %s: %w", path, err)
	}
	for _, line := range strings.Split(string(out), "\n") {
		rest, ok := strings.CutPrefix(line, "Pages:")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(rest))
		if err != nil {
			return 0, fmt.Errorf("pdfinfo %s: bad page count %q", path, rest)
		}
		return n, nil
	}
	return 0, fmt.Errorf("pdfinfo %s: no Pages line in output", path)
}

// PageText implements Reader via `pdftotext -f N -l N <path> -`.
func (r *PopplerReader) PageText(path string, page int) (string, error) {
	if page < 1 {
		return "", fmt.Errorf("%s page %d: %w", path, page, ErrNoSuchPage)
	}
	p := strconv.Itoa(page)
	cmd := exec.Command(r.pdftotext(), "-f", p, "-l", p, path, "-")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return "", fmt.Errorf("pdftotext %s page %d: %s: %w", path, page, msg, err)
		}
		return "", fmt.Errorf("pdftotext %s page %d: %w", path, page, err)
	}
	return string(out), nil
}
