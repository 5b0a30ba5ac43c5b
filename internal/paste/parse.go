// Package paste parses an indented markdown-style list into a task tree
// and turns the tree into task records ready for one batch write.
package paste

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/alexanderramin/tasklane/internal/domain"
)

// UntitledTitle replaces a line whose title is empty after parsing.
const UntitledTitle = "Untitled task"

// minBlockIDLen filters out short parenthesized text that is not a block id.
const minBlockIDLen = 20

// Node is one parsed line with its nested children.
type Node struct {
	Title     string
	Level     int
	Priority  domain.Priority
	StartDate domain.DateKey
	EndDate   domain.DateKey
	BlockID   string
	Completed *bool
	Children  []*Node
}

// Count returns the number of nodes in the forest.
func Count(nodes []*Node) int {
	n := 0
	for _, node := range nodes {
		n += 1 + Count(node.Children)
	}
	return n
}

// Walk calls fn for every node in pre-order.
func Walk(nodes []*Node, fn func(*Node)) {
	for _, n := range nodes {
		fn(n)
		Walk(n.Children, fn)
	}
}

var (
	dashDepth     = regexp.MustCompile(`^(-{2,})\s*`)
	bulletPrefix  = regexp.MustCompile(`^[-*+]+\s*`)
	checkbox      = regexp.MustCompile(`^\s*\[\s*([ xX])\s*\]\s*`)
	blockRefTitle = regexp.MustCompile(`\(\(([^)\s]+)\s+['"]([^'"]+)['"]\)\)`)
	blockRef      = regexp.MustCompile(`\(\(([^)]+)\)\)`)
)

// Parse reads one task per non-blank line. Nesting comes from indentation
// (two spaces or one tab per level) plus one level per extra leading dash,
// so "--- item" sits two levels below "- item". A non-bullet line at the
// left margin starts a new top-level task.
func Parse(text string) []*Node {
	var roots []*Node
	type frame struct {
		node  *Node
		level int
	}
	var stack []frame

	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		level := indentLevel(line)
		clean := strings.TrimSpace(line)

		if level == 0 && !isBullet(clean) {
			node := parseLine(clean)
			roots = append(roots, node)
			stack = append(stack[:0], frame{node: node, level: 0})
			continue
		}

		if m := dashDepth.FindStringSubmatch(clean); m != nil {
			level += len(m[1]) - 1
		}
		content := bulletPrefix.ReplaceAllString(clean, "")
		if content == "" {
			continue
		}
		node := parseLine(content)
		node.Level = level

		for len(stack) > 0 && stack[len(stack)-1].level >= level {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			roots = append(roots, node)
		} else {
			parent := stack[len(stack)-1].node
			parent.Children = append(parent.Children, node)
		}
		stack = append(stack, frame{node: node, level: level})
	}
	return roots
}

func isBullet(s string) bool {
	return strings.HasPrefix(s, "-") || strings.HasPrefix(s, "*") || strings.HasPrefix(s, "+")
}

func indentLevel(line string) int {
	spaces := 0
	for _, r := range line {
		switch r {
		case ' ':
			spaces++
		case '\t':
			spaces += 2
		default:
			return spaces / 2
		}
	}
	return spaces / 2
}

// parseLine extracts the checkbox, block reference and trailing
// "@key=value&..." parameters from one line.
func parseLine(line string) *Node {
	node := &Node{}
	title := line

	var params string
	if i := strings.Index(title, "@"); i >= 0 {
		params = title[i+1:]
		title = title[:i]
	}

	if id := extractBlockID(title); id != "" {
		node.BlockID = id
		title = blockRefTitle.ReplaceAllString(title, "$2")
		title = blockRef.ReplaceAllString(title, "")
	}

	if m := checkbox.FindStringSubmatch(title); m != nil {
		done := strings.EqualFold(m[1], "x")
		node.Completed = &done
		title = checkbox.ReplaceAllString(title, "")
	}

	if params != "" {
		applyParams(node, params)
	}

	node.Title = strings.TrimSpace(title)
	if node.Title == "" {
		node.Title = UntitledTitle
	}
	return node
}

func applyParams(node *Node, raw string) {
	values, err := url.ParseQuery(strings.TrimSpace(raw))
	if err != nil {
		return
	}
	if p := values.Get("priority"); p != "" {
		if domain.ValidPriorities[p] {
			node.Priority = domain.Priority(p)
		} else {
			node.Priority = domain.PriorityNone
		}
	}
	if d, err := domain.ParseDateKey(values.Get("startDate")); err == nil {
		node.StartDate = d
	}
	if d, err := domain.ParseDateKey(values.Get("endDate")); err == nil {
		node.EndDate = d
	}
}

func extractBlockID(text string) string {
	if m := blockRefTitle.FindStringSubmatch(text); m != nil && len(m[1]) >= minBlockIDLen {
		return m[1]
	}
	if m := blockRef.FindStringSubmatch(text); m != nil {
		if id := strings.TrimSpace(m[1]); len(id) >= minBlockIDLen {
			return id
		}
	}
	return ""
}
