package exhibits

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// CandidateFile is one file discovered under the exhibits root.
type CandidateFile struct {
	// Path is the absolute filesystem path.
	Path string

	// RelativeKey is the path relative to the exhibits root, with
	// forward slashes.
	RelativeKey string

	// NormalizedName is the filename with whitespace/punctuation
	// collapsed and the extension stripped, for matching.
	NormalizedName string

	// ExhibitKey is NormalizedName with any leading exhibit keyword
	// removed ("ex_1_memo" -> "1_memo").
	ExhibitKey string

	// SlugKey and SlugExhibitKey are the slug-folded forms of the raw
	// filename, used by the Normalized matching tier.
	SlugKey        string
	SlugExhibitKey string

	// BatesPrefix and BatesStart are parsed from the filename when it
	// follows the Bates grammar (SMITH_003.pdf). BatesStart is 0 for
	// non-Bates names.
	BatesPrefix string
	BatesStart  int

	// Memoized page-scan result; populated by Index.BatesRange.
	batesRange   *BatesRange
	batesErr     error
	batesScanned bool
}

// IsPDF reports whether the file has a .pdf extension.
func (f *CandidateFile) IsPDF() bool {
	return strings.EqualFold(filepath.Ext(f.Path), ".pdf")
}

// Name returns the bare filename.
func (f *CandidateFile) Name() string {
	return filepath.Base(f.Path)
}

// Warning records a file or directory that could not be indexed.
// Index warnings are reported, never fatal.
type Warning struct {
	Path string
	Err  error
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %v", w.Path, w.Err)
}

// Index is the read-only candidate index for one run.
type Index struct {
	Root     string
	Files    []*CandidateFile
	Warnings []Warning

	scanner *Scanner
}

// Build scans root recursively and constructs the index. Unreadable
// entries are recorded as warnings and skipped. The scanner may be nil
// when no Bates page scanning is possible (no PDF reader available).
func Build(root string, scanner *Scanner) (*Index, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve exhibits root: %w", err)
	}
	if st, err := os.Stat(absRoot); err != nil {
		return nil, fmt.Errorf("exhibits root: %w", err)
	} else if !st.IsDir() {
		return nil, fmt.Errorf("exhibits root %s is not a directory", absRoot)
	}

	ix := &Index{Root: absRoot, scanner: scanner}

	walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			ix.Warnings = append(ix.Warnings, Warning{Path: path, Err: err})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		name := d.Name()
		if d.IsDir() {
			// Skip the cache dir and other hidden directories.
			if path != absRoot && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}

		rel, err := filepath.Rel(absRoot, path)
		if err != nil {
			ix.Warnings = append(ix.Warnings, Warning{Path: path, Err: err})
			return nil
		}

		normalized := NameKey(name)
		slugged := SlugKey(name)
		f := &CandidateFile{
			Path:           path,
			RelativeKey:    filepath.ToSlash(rel),
			NormalizedName: normalized,
			ExhibitKey:     ExhibitKey(normalized),
			SlugKey:        slugged,
			SlugExhibitKey: SlugExhibitKey(slugged),
		}
		if prefix, start, ok := ParseBatesName(name); ok {
			f.BatesPrefix = prefix
			f.BatesStart = start
		}
		ix.Files = append(ix.Files, f)
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walk exhibits root: %w", walkErr)
	}

	sort.Slice(ix.Files, func(i, j int) bool {
		return ix.Files[i].RelativeKey < ix.Files[j].RelativeKey
	})
	return ix, nil
}

// BatesCandidates returns the Bates-named PDFs for a prefix whose
// filename start number is at most n, ordered by start descending, so
// the first entry is the "mid-document containment" favorite.
func (ix *Index) BatesCandidates(prefix string, n int) []*CandidateFile {
	var out []*CandidateFile
	for _, f := range ix.Files {
		if f.BatesPrefix == prefix && f.BatesStart <= n && f.BatesStart > 0 && f.IsPDF() {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].BatesStart > out[j].BatesStart
	})
	return out
}

// BatesRange returns the page-scanned Bates range of f, scanning on
// first use and memoizing for the run (including the error, so a
// corrupt PDF is not re-read per citation).
func (ix *Index) BatesRange(ctx context.Context, f *CandidateFile) (*BatesRange, error) {
	if f.batesScanned {
		return f.batesRange, f.batesErr
	}
	if ix.scanner == nil {
		return nil, fmt.Errorf("no PDF reader available to scan %s", f.Path)
	}
	f.batesRange, f.batesErr = ix.scanner.Scan(ctx, f.Path)
	f.batesScanned = true
	return f.batesRange, f.batesErr
}
