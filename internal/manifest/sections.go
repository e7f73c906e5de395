package manifest

import (
	"fmt"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// bodyParserInstance is initialized once and reused. The parser
// configuration never changes and the goldmark Parser is safe to
// share; actual parsing creates per-call state via Parse(reader).
var (
	bodyParserInstance goldmark.Markdown
	bodyParserOnce     sync.Once
)

func getBodyParser() goldmark.Markdown {
	bodyParserOnce.Do(func() {
		bodyParserInstance = goldmark.New()
	})
	return bodyParserInstance
}

// sectionKind identifies which recognized section the walker is inside.
type sectionKind int

const (
	secNone sectionKind = iota
	secEndState
	secPrinciples
	secCriteria
	secPrereqs
	secFiles
	secContracts
	secOpaque
)

// sectionForHeading maps a level-2 heading to its section kind.
// Matching is case-insensitive; unrecognized headings open an opaque
// section whose content is skipped.
func sectionForHeading(title string) sectionKind {
	switch strings.ToLower(strings.TrimSpace(title)) {
	case "end state":
		return secEndState
	case "implementation principles":
		return secPrinciples
	case "verification criteria":
		return secCriteria
	case "prerequisites", "requires", "compatible with":
		return secPrereqs
	case "file structure":
		return secFiles
	case "interface contracts":
		return secContracts
	default:
		return secOpaque
	}
}

// parseBody walks the markdown body and fills the kit's section fields.
// Returns the issues found in the File Structure section.
func parseBody(kit *Kit, body []byte) []string {
	if len(body) == 0 {
		return nil
	}

	doc := getBodyParser().Parser().Parse(text.NewReader(body))

	w := &bodyWalker{source: body, kit: kit}
	_ = ast.Walk(doc, w.walk)
	w.flushPending()

	if w.contracts.Len() > 0 {
		kit.Contracts = strings.TrimSpace(w.contracts.String())
	}
	return w.issues
}

// bodyWalker accumulates section content during a single AST walk.
type bodyWalker struct {
	source  []byte
	kit     *Kit
	section sectionKind

	// pending is the File Structure entry awaiting its code block.
	pending *FileEntry

	contracts strings.Builder
	issues    []string
}

func (w *bodyWalker) walk(node ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node.Kind() {

	case ast.KindHeading:
		if !entering {
			return ast.WalkContinue, nil
		}
		heading := node.(*ast.Heading)
		title := nodeText(heading, w.source)
		switch {
		case heading.Level <= 2:
			w.flushPending()
			w.section = sectionForHeading(title)
			if heading.Level == 1 {
				w.section = secOpaque
			}
		case heading.Level == 3 && w.section == secFiles:
			w.flushPending()
			entry, issue := parseFileHeading(title)
			if issue != "" {
				w.issues = append(w.issues, issue)
			} else {
				w.pending = &entry
			}
		}
		return ast.WalkSkipChildren, nil

	case ast.KindListItem:
		if !entering {
			return ast.WalkContinue, nil
		}
		item := itemText(node, w.source)
		if item == "" {
			return ast.WalkContinue, nil
		}
		switch w.section {
		case secEndState:
			w.kit.EndState = append(w.kit.EndState, item)
		case secPrinciples:
			w.kit.Principles = append(w.kit.Principles, item)
		case secCriteria:
			w.kit.Criteria = append(w.kit.Criteria, item)
		case secPrereqs:
			w.kit.Prereqs = append(w.kit.Prereqs, item)
		}
		return ast.WalkContinue, nil

	case ast.KindFencedCodeBlock, ast.KindCodeBlock:
		if !entering {
			return ast.WalkContinue, nil
		}
		if w.section == secFiles && w.pending != nil {
			w.pending.Content = blockLines(node, w.source)
			w.flushPending()
		} else if w.section == secContracts {
			w.contracts.WriteString(blockLines(node, w.source))
			w.contracts.WriteString("\n")
		}
		return ast.WalkSkipChildren, nil

	case ast.KindParagraph, ast.KindTextBlock:
		if entering && w.section == secContracts {
			w.contracts.WriteString(blockLines(node, w.source))
			w.contracts.WriteString("\n")
		}
		return ast.WalkContinue, nil
	}

	return ast.WalkContinue, nil
}

// flushPending commits a File Structure entry that never saw a code
// block; its content is empty.
func (w *bodyWalker) flushPending() {
	if w.pending == nil {
		return
	}
	w.kit.Files = append(w.kit.Files, *w.pending)
	w.pending = nil
}

// parseFileHeading parses one File Structure entry heading of the form
// "path", "path (appendable)", "path (exclusive)", or
// "path (patch: <anchor>)". Omitted policy means exclusive.
func parseFileHeading(title string) (FileEntry, string) {
	entry := FileEntry{Policy: PolicyExclusive}

	path := title
	if strings.HasSuffix(title, ")") {
		if i := strings.LastIndex(title, " ("); i > 0 {
			annot := title[i+2 : len(title)-1]
			path = strings.TrimSpace(title[:i])
			switch {
			case annot == string(PolicyExclusive):
			case annot == string(PolicyAppendable):
				entry.Policy = PolicyAppendable
			case strings.HasPrefix(annot, "patch:"):
				entry.Policy = PolicyPatch
				entry.Anchor = strings.TrimSpace(strings.TrimPrefix(annot, "patch:"))
				if entry.Anchor == "" {
					return entry, fmt.Sprintf("file %q: patch entry missing anchor", path)
				}
			case annot == string(PolicyPatch):
				return entry, fmt.Sprintf("file %q: patch annotation requires an anchor: (patch: <anchor>)", path)
			default:
				return entry, fmt.Sprintf("file %q: unknown policy %q", path, annot)
			}
		}
	}

	entry.RelPath = path
	return entry, ""
}

// nodeText concatenates the text content of a node's subtree. Code
// spans contribute their inner text; soft line breaks become spaces.
func nodeText(n ast.Node, source []byte) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			sb.Write(t.Segment.Value(source))
			if t.SoftLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.String:
			sb.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}

// itemText extracts a list item's own text: the inline content of its
// first child block. Nested sub-items are visited separately by the
// outer walk and contribute their own entries.
func itemText(item ast.Node, source []byte) string {
	first := item.FirstChild()
	if first == nil {
		return ""
	}
	return nodeText(first, source)
}

// blockLines returns a block node's raw source lines, verbatim.
func blockLines(n ast.Node, source []byte) string {
	var sb strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		sb.Write(segment.Value(source))
	}
	return sb.String()
}
