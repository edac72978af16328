package scan

// CheckState is the display state of a node's checkbox. For files it is
// Checked or Unchecked; for directories it is derived from descendant files.
type CheckState int

const (
	Unchecked CheckState = iota
	PartialCheck
	Checked
)

// State returns the node's derived check state. A directory is Checked when
// every descendant file is checked, Unchecked when none are (or it has no
// files at all), and PartialCheck otherwise.
func (n *Node) State() CheckState {
	if !n.IsDir() {
		if n.checked {
			return Checked
		}
		return Unchecked
	}

	total, checked := 0, 0
	n.Walk(func(d *Node) {
		if d.IsDir() {
			return
		}
		total++
		if d.checked {
			checked++
		}
	})
	switch {
	case total == 0 || checked == 0:
		return Unchecked
	case checked == total:
		return Checked
	default:
		return PartialCheck
	}
}

// SetChecked sets a file node's flag, or recursively applies the flag to
// every descendant file of a directory node. Directory state is never
// stored; it is always derived, so no upward propagation is needed.
func (t *Tree) SetChecked(n *Node, on bool) {
	if n == nil {
		return
	}
	n.Walk(func(d *Node) {
		if !d.IsDir() {
			d.checked = on
		}
	})
}

// Toggle flips a file node, or flips a directory to the opposite of its
// current derived state (a partially checked directory becomes checked).
func (t *Tree) Toggle(n *Node) {
	if n == nil {
		return
	}
	if !n.IsDir() {
		n.checked = !n.checked
		return
	}
	t.SetChecked(n, n.State() != Checked)
}

// CheckAll selects every file in the tree.
func (t *Tree) CheckAll() {
	t.SetChecked(t.Root, true)
}

// UncheckAll clears the whole selection.
func (t *Tree) UncheckAll() {
	t.SetChecked(t.Root, false)
}

// CheckedFiles returns the checked file nodes in display order. Only file
// nodes are ever part of the selection; directories are presentation.
func (t *Tree) CheckedFiles() []*Node {
	var files []*Node
	t.Root.Walk(func(n *Node) {
		if !n.IsDir() && n.checked {
			files = append(files, n)
		}
	})
	return files
}

// CheckedPaths returns the absolute paths of the checked files.
func (t *Tree) CheckedPaths() []string {
	files := t.CheckedFiles()
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	return paths
}
