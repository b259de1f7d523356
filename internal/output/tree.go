package output

import (
	"sort"
	"strings"
)

type treeNode struct {
	name     string
	children []*treeNode
	isDir    bool
}

func (n *treeNode) child(name string, isDir bool) *treeNode {
	for _, c := range n.children {
		if c.name == name && c.isDir == isDir {
			return c
		}
	}
	c := &treeNode{name: name, isDir: isDir}
	n.children = append(n.children, c)
	return c
}

// BuildTree renders forward-slash paths as an indented directory tree.
// Directories are listed before files and carry a trailing slash.
func BuildTree(paths []string) string {
	root := &treeNode{isDir: true}
	for _, p := range paths {
		parts := strings.Split(p, "/")
		node := root
		for i, part := range parts {
			if part == "" {
				continue
			}
			node = node.child(part, i < len(parts)-1)
		}
	}

	var b strings.Builder
	writeTree(&b, root, 0)
	return strings.TrimRight(b.String(), "\n")
}

func writeTree(b *strings.Builder, n *treeNode, depth int) {
	sort.Slice(n.children, func(i, j int) bool {
		a, c := n.children[i], n.children[j]
		if a.isDir != c.isDir {
			return a.isDir
		}
		return a.name < c.name
	})
	for _, c := range n.children {
		b.WriteString(strings.Repeat("  ", depth))
		b.WriteString(c.name)
		if c.isDir {
			b.WriteString("/")
		}
		b.WriteString("\n")
		if c.isDir {
			writeTree(b, c, depth+1)
		}
	}
}
