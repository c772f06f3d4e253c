// Package vault gives access to a directory tree of Markdown notes and their
// assets, with Obsidian-style wiki-link resolution.
package vault

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/notecourier/notecourier/pkg/text"
)

// File is a handle on a file inside a vault.
type File struct {
	// RelativePath is slash-separated, relative to the vault root.
	RelativePath string
	AbsolutePath string
}

// Name returns the base name, extension included.
func (f *File) Name() string {
	return path.Base(f.RelativePath)
}

// Title returns the base name without extension.
func (f *File) Title() string {
	return text.TrimExtension(f.Name())
}

// Extension returns the lowercased extension without the leading dot.
func (f *File) Extension() string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(f.RelativePath), "."))
}

func (f *File) String() string {
	return f.RelativePath
}

// Vault is an indexed directory tree of notes.
type Vault struct {
	root    string
	byPath  map[string]*File
	byTitle map[string][]*File
}

// Directories never containing publishable content
var ignoredDirs = map[string]bool{
	".git":      true,
	".ntc":      true,
	".obsidian": true,
}

// Open walks a directory tree and indexes every file by path and base name.
func Open(root string) (*Vault, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	vault := &Vault{
		root:    absRoot,
		byPath:  make(map[string]*File),
		byTitle: make(map[string][]*File),
	}

	err = filepath.WalkDir(absRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if ignoredDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		relativePath, err := filepath.Rel(absRoot, p)
		if err != nil {
			return err
		}
		file := &File{
			RelativePath: filepath.ToSlash(relativePath),
			AbsolutePath: p,
		}
		vault.byPath[file.RelativePath] = file
		title := strings.ToLower(file.Title())
		vault.byTitle[title] = append(vault.byTitle[title], file)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to walk vault %q: %w", root, err)
	}

	return vault, nil
}

// Root returns the absolute path of the vault root.
func (v *Vault) Root() string {
	return v.root
}

// Get returns the file at an exact vault-relative path, or nil.
func (v *Vault) Get(relativePath string) *File {
	return v.byPath[filepath.ToSlash(relativePath)]
}

// Resolve resolves a wiki-link target against the vault, relative to the file
// containing the link. An exact vault-relative path wins (with or without the
// `.md` extension), then a base-name match, ambiguity broken by proximity to
// the context file. Returns nil when nothing matches.
func (v *Vault) Resolve(linkText, contextPath string) *File {
	link := filepath.ToSlash(strings.TrimSpace(linkText))
	if link == "" {
		return nil
	}

	// Exact path, from the vault root then from the context directory
	contextDir := path.Dir(filepath.ToSlash(contextPath))
	for _, candidate := range []string{
		link,
		link + ".md",
		path.Join(contextDir, link),
		path.Join(contextDir, link) + ".md",
	} {
		if file, ok := v.byPath[path.Clean(candidate)]; ok {
			return file
		}
	}

	// Base-name match
	base := strings.ToLower(text.TrimExtension(path.Base(link)))
	candidates := v.byTitle[base]
	if len(candidates) == 0 {
		return nil
	}
	if link != path.Base(link) {
		// The link carried directories that matched nothing: require the
		// candidate path to end with them.
		suffix := strings.ToLower(text.TrimExtension(link))
		var filtered []*File
		for _, candidate := range candidates {
			if strings.HasSuffix(strings.ToLower(text.TrimExtension(candidate.RelativePath)), suffix) {
				filtered = append(filtered, candidate)
			}
		}
		candidates = filtered
	}
	if len(candidates) == 0 {
		return nil
	}

	// Ambiguity is broken by proximity to the context file
	sort.SliceStable(candidates, func(i, j int) bool {
		pi, pj := proximity(candidates[i].RelativePath, contextDir), proximity(candidates[j].RelativePath, contextDir)
		if pi != pj {
			return pi > pj
		}
		return candidates[i].RelativePath < candidates[j].RelativePath
	})
	return candidates[0]
}

// proximity counts the path segments shared between a candidate's directory
// and the context directory.
func proximity(candidatePath, contextDir string) int {
	candidateDir := path.Dir(candidatePath)
	if candidateDir == contextDir {
		return 1 << 16 // same directory always wins
	}
	candidateSegments := strings.Split(candidateDir, "/")
	contextSegments := strings.Split(contextDir, "/")
	shared := 0
	for shared < len(candidateSegments) && shared < len(contextSegments) &&
		candidateSegments[shared] == contextSegments[shared] {
		shared++
	}
	return shared
}

// ReadText reads a file as text.
func (v *Vault) ReadText(f *File) (string, error) {
	content, err := os.ReadFile(f.AbsolutePath)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// ReadBinary reads a file as raw bytes.
func (v *Vault) ReadBinary(f *File) ([]byte, error) {
	return os.ReadFile(f.AbsolutePath)
}

// WriteText overwrites a file's content.
func (v *Vault) WriteText(f *File, content string) error {
	info, err := os.Stat(f.AbsolutePath)
	mode := fs.FileMode(0644)
	if err == nil {
		mode = info.Mode()
	}
	return os.WriteFile(f.AbsolutePath, []byte(content), mode)
}
