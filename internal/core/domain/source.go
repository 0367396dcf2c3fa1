package domain

import (
	"fmt"
	"path"
	"strings"
	"time"
)

// Source identifies one external repository/branch to ingest, plus the
// path-filtering rules applied to its files. A source belongs to exactly
// one collection.
type Source struct {
	// ID is the unique identifier for the source.
	ID string

	// CollectionID links to the owning Collection.
	CollectionID string

	// Owner is the repository owner (user or organisation).
	Owner string

	// Repo is the repository name. For the filesystem crawler this is
	// interpreted as a root directory path.
	Repo string

	// Branch is the branch to ingest.
	Branch string

	// AllowedExt is the set of file extensions to ingest (".md", ".go").
	// A file must match at least one.
	AllowedExt []string

	// AllowedDirs restricts ingestion to these subtrees. Empty means
	// no restriction.
	AllowedDirs []string

	// IgnoredDirs excludes these subtrees. Takes precedence over
	// AllowedDirs.
	IgnoredDirs []string

	// CreatedAt is when the source was created.
	CreatedAt time.Time

	// UpdatedAt is when the source was last updated.
	UpdatedAt time.Time
}

// FullName returns the owner/repo@branch display form.
func (s *Source) FullName() string {
	return fmt.Sprintf("%s/%s@%s", s.Owner, s.Repo, s.Branch)
}

// PathFilter decides which crawled paths a source ingests.
// Compile one with NewPathFilter; the zero value accepts nothing.
type PathFilter struct {
	allowedExt  []string
	allowedDirs []string
	ignoredDirs []string
}

// NewPathFilter compiles the source's filtering rules.
// Returns a FilterConfigError when a rule is malformed: extensions must
// start with a dot, directory rules must be clean relative paths.
func NewPathFilter(s *Source) (*PathFilter, error) {
	if len(s.AllowedExt) == 0 {
		return nil, &FilterConfigError{SourceID: s.ID, Rule: "allowed_ext", Reason: "no allowed extensions"}
	}
	for _, ext := range s.AllowedExt {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return nil, &FilterConfigError{SourceID: s.ID, Rule: "allowed_ext", Reason: fmt.Sprintf("%q is not a file extension", ext)}
		}
	}
	f := &PathFilter{allowedExt: s.AllowedExt}

	var err error
	if f.allowedDirs, err = cleanDirRules(s.ID, "allowed_dirs", s.AllowedDirs); err != nil {
		return nil, err
	}
	if f.ignoredDirs, err = cleanDirRules(s.ID, "ignored_dirs", s.IgnoredDirs); err != nil {
		return nil, err
	}
	return f, nil
}

// Match reports whether a crawled path passes the source's rules.
// Precedence: the extension must be allowed, the path must not fall under
// an ignored directory, and when allowed_dirs is non-empty the path must
// fall under one of them.
func (f *PathFilter) Match(p string) bool {
	ext := strings.ToLower(path.Ext(p))
	allowed := false
	for _, e := range f.allowedExt {
		if strings.EqualFold(e, ext) {
			allowed = true
			break
		}
	}
	if !allowed {
		return false
	}

	for _, dir := range f.ignoredDirs {
		if underDir(p, dir) {
			return false
		}
	}

	if len(f.allowedDirs) == 0 {
		return true
	}
	for _, dir := range f.allowedDirs {
		if underDir(p, dir) {
			return true
		}
	}
	return false
}

// cleanDirRules normalises directory rules, rejecting absolute paths and
// parent traversal.
func cleanDirRules(sourceID, rule string, dirs []string) ([]string, error) {
	cleaned := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		d := path.Clean(strings.TrimSuffix(dir, "/"))
		if d == "." || d == "" {
			continue
		}
		if path.IsAbs(d) || d == ".." || strings.HasPrefix(d, "../") {
			return nil, &FilterConfigError{SourceID: sourceID, Rule: rule, Reason: fmt.Sprintf("%q is not a relative subtree", dir)}
		}
		cleaned = append(cleaned, d)
	}
	return cleaned, nil
}

// underDir reports whether p is dir itself or inside it.
func underDir(p, dir string) bool {
	return p == dir || strings.HasPrefix(p, dir+"/")
}
