package output

import (
	"strings"
)

// TreeNode is one node of a rendered tree
type TreeNode struct {
	Code     string
	Label    string
	Children []TreeNode
}

// TreeRenderOptions configures tree rendering behavior
type TreeRenderOptions struct {
	MaxDepth int  // 0 = unlimited
	ShowCode bool // Append the node code in brackets
}

// RenderTree renders the children of root as a tree
func RenderTree(root TreeNode, opts TreeRenderOptions) string {
	lines := renderTreeNodes(root.Children, opts, 0, "")
	return strings.Join(lines, "\n")
}

// RenderTreeLines renders multiple root nodes and returns individual lines
func RenderTreeLines(roots []TreeNode, opts TreeRenderOptions) []string {
	return renderTreeNodes(roots, opts, 0, "")
}

// PathTree nests labels into a single chain, one level per label. Empty
// labels end the chain.
func PathTree(codes, labels []string) []TreeNode {
	var build func(i int) []TreeNode
	build = func(i int) []TreeNode {
		if i >= len(labels) || labels[i] == "" {
			return nil
		}
		n := TreeNode{Label: labels[i], Children: build(i + 1)}
		if i < len(codes) {
			n.Code = codes[i]
		}
		return []TreeNode{n}
	}
	return build(0)
}

func renderTreeNodes(nodes []TreeNode, opts TreeRenderOptions, depth int, prefix string) []string {
	if opts.MaxDepth > 0 && depth >= opts.MaxDepth {
		return nil
	}

	var lines []string
	for i, node := range nodes {
		isLast := i == len(nodes)-1

		connector := "\u251c\u2500\u2500 " // ├──
		if isLast {
			connector = "\u2514\u2500\u2500 " // └──
		}

		line := prefix + connector + node.Label
		if opts.ShowCode && node.Code != "" {
			line += " [" + node.Code + "]"
		}
		lines = append(lines, line)

		childPrefix := prefix
		if isLast {
			childPrefix += "    "
		} else {
			childPrefix += "\u2502   " // │
		}
		lines = append(lines, renderTreeNodes(node.Children, opts, depth+1, childPrefix)...)
	}
	return lines
}
