// Package scan walks a project directory into a tree of file and folder
// nodes and tracks which of them are selected for compilation.
package scan

import (
	"path/filepath"
	"strings"
	"time"
)

// Kind distinguishes file nodes from directory nodes.
type Kind int

const (
	KindFile Kind = iota
	KindDir
)

// Node is one filesystem entry in the scanned tree. Directory nodes own
// their children in display order (directories first, then files, each
// sorted case-insensitively by name).
type Node struct {
	Path     string // Absolute path.
	RelPath  string // Slash-separated path relative to the scan root.
	Name     string // Base name for display.
	Kind     Kind
	Size     int64
	ModTime  time.Time
	Binary   bool // Content sniff says the file is not text.
	Oversize bool // File exceeds the configured size cutoff.

	checked  bool // File selection flag; derived for directories.
	Parent   *Node
	Children []*Node
}

// IsDir reports whether the node is a directory.
func (n *Node) IsDir() bool {
	return n.Kind == KindDir
}

// Walk visits the node and all descendants in display order.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, child := range n.Children {
		child.Walk(fn)
	}
}

// Depth is the number of ancestors below the root, for indentation.
func (n *Node) Depth() int {
	depth := 0
	for p := n.Parent; p != nil; p = p.Parent {
		depth++
	}
	return depth
}

// Tree is the scanned Node hierarchy for one root directory. A Tree is not
// safe for concurrent mutation; hand it to a single owner after the scan.
type Tree struct {
	Root    *Node
	Skipped int // Entries the scan could not read and left out.

	byRel map[string]*Node
}

// NewTree creates an empty tree rooted at the given absolute path.
func NewTree(rootPath string) *Tree {
	root := &Node{
		Path:    rootPath,
		RelPath: ".",
		Name:    filepath.Base(rootPath),
		Kind:    KindDir,
	}
	return &Tree{
		Root:  root,
		byRel: map[string]*Node{".": root},
	}
}

// Insert attaches one scanned entry to the tree. Entries must arrive in
// depth-first order, parents before children, as the scanner emits them.
// The inserted node is returned; entries whose parent is unknown are
// dropped and nil is returned.
func (t *Tree) Insert(e Entry) *Node {
	parentRel := filepath.ToSlash(filepath.Dir(e.RelPath))
	parent, ok := t.byRel[parentRel]
	if !ok || !parent.IsDir() {
		return nil
	}

	node := &Node{
		Path:     filepath.Join(t.Root.Path, filepath.FromSlash(e.RelPath)),
		RelPath:  e.RelPath,
		Name:     e.Name,
		Kind:     e.Kind,
		Size:     e.Size,
		ModTime:  e.ModTime,
		Binary:   e.Binary,
		Oversize: e.Oversize,
		Parent:   parent,
	}
	parent.Children = append(parent.Children, node)
	t.byRel[e.RelPath] = node
	return node
}

// Lookup returns the node for a slash-separated relative path, or nil.
func (t *Tree) Lookup(relPath string) *Node {
	return t.byRel[strings.ReplaceAll(relPath, "\\", "/")]
}

// Files returns all file nodes in display order.
func (t *Tree) Files() []*Node {
	var files []*Node
	t.Root.Walk(func(n *Node) {
		if !n.IsDir() {
			files = append(files, n)
		}
	})
	return files
}

// Dirs returns all directory nodes in display order, root included.
func (t *Tree) Dirs() []*Node {
	var dirs []*Node
	t.Root.Walk(func(n *Node) {
		if n.IsDir() {
			dirs = append(dirs, n)
		}
	})
	return dirs
}
