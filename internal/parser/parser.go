// Package parser is the default parse stage: it turns trimmed template text
// into an ast.Node tree, reporting recoverable problems through the
// configuration's warn capability.
package parser

import (
	"errors"
	"fmt"
	"html"
	"math"
	"regexp"
	"strings"

	"tmplc/internal/ast"
	"tmplc/internal/options"
	"tmplc/internal/source"
)

const maxDepth = 256

// offsets are uint32
var maxTemplateLen int64 = math.MaxUint32

var (
	// ErrInvalidDelimiters is returned when the configured delimiters are unusable.
	ErrInvalidDelimiters = errors.New("invalid delimiters")
	// ErrNestingTooDeep is returned when elements nest deeper than the parser allows.
	ErrNestingTooDeep = errors.New("template nesting too deep")
	// ErrTemplateTooLarge is returned when a template cannot be addressed by source offsets.
	ErrTemplateTooLarge = errors.New("template too large")
)

var (
	startTagOpenRE  = regexp.MustCompile(`^<([a-zA-Z_][\w\-.]*)`)
	startTagCloseRE = regexp.MustCompile(`^\s*(/?)>`)
	endTagRE        = regexp.MustCompile(`^</([a-zA-Z_][\w\-.]*)[^>]*>`)
	attributeRE     = regexp.MustCompile("^\\s*([^\\s\"'<>/=]+)(?:\\s*=\\s*(?:\"([^\"]*)\"|'([^']*)'|([^\\s\"'=<>`]+)))?")
)

type openTag struct {
	tag  string // lower-cased, for end tag matching
	node *ast.Node
}

type parser struct {
	src    string
	pos    int
	cfg    *options.Config
	delims options.Delimiters

	root   *ast.Node
	parent *ast.Node
	stack  []openTag

	inVPre     bool
	inPre      bool
	warnedRoot bool
}

// Parse builds the AST for template. A nil root with a nil error means the
// template had no element.
func Parse(template string, cfg *options.Config) (*ast.Node, error) {
	if int64(len(template)) > maxTemplateLen {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrTemplateTooLarge, len(template), maxTemplateLen)
	}
	d := cfg.Delimiters()
	if d.Open == "" || d.Close == "" || d.Open == d.Close {
		return nil, fmt.Errorf("%w: %q %q", ErrInvalidDelimiters, d.Open, d.Close)
	}
	p := &parser{src: template, cfg: cfg, delims: d}
	if err := p.run(); err != nil {
		return nil, err
	}
	return p.root, nil
}

func (p *parser) warn(msg string, rng source.Range) {
	p.cfg.Warn(msg, rng, false)
}

func span(start, end int) source.Range {
	return source.Span(source.Offset(start), source.Offset(end))
}

func nodeRange(n *ast.Node) source.Range {
	return source.Span(n.Start, n.End)
}

// attrRange returns the range of a raw attribute, falling back to the node.
func attrRange(n *ast.Node, name string) source.Range {
	if a, ok := n.RawAttrs[name]; ok {
		return source.Span(a.Start, a.End)
	}
	return nodeRange(n)
}

func (p *parser) top() *openTag {
	if len(p.stack) == 0 {
		return nil
	}
	return &p.stack[len(p.stack)-1]
}

func (p *parser) run() error {
	for p.pos < len(p.src) {
		if top := p.top(); top != nil && isRawTextTag(top.tag) {
			p.scanRawText(top.tag)
			continue
		}
		rest := p.src[p.pos:]
		if rest[0] == '<' {
			handled, err := p.markup(rest)
			if err != nil {
				return err
			}
			if handled {
				continue
			}
		}
		next := p.nextMarkup(p.pos + 1)
		p.chars(p.src[p.pos:next], p.pos, next, false)
		p.pos = next
	}
	p.closeAll(len(p.src))
	return nil
}

// markup handles a construct starting with '<'. It reports false when the
// '<' is plain text.
func (p *parser) markup(rest string) (bool, error) {
	if strings.HasPrefix(rest, "<!--") {
		if end := strings.Index(rest[4:], "-->"); end >= 0 {
			p.comment(rest[4:4+end], p.pos, p.pos+end+7)
			p.pos += end + 7
			return true, nil
		}
	}
	if strings.HasPrefix(rest, "<!") {
		// doctype и условные комментарии просто пропускаем
		if end := strings.IndexByte(rest, '>'); end >= 0 {
			p.pos += end + 1
			return true, nil
		}
	}
	if m := endTagRE.FindStringSubmatch(rest); m != nil {
		start := p.pos
		p.pos += len(m[0])
		p.endTag(m[1], start, p.pos)
		return true, nil
	}
	if startTagOpenRE.MatchString(rest) {
		return p.startTag()
	}
	return false, nil
}

func (p *parser) nextMarkup(from int) int {
	for from < len(p.src) {
		i := strings.IndexByte(p.src[from:], '<')
		if i < 0 {
			return len(p.src)
		}
		rest := p.src[from+i:]
		if strings.HasPrefix(rest, "<!") || endTagRE.MatchString(rest) || startTagOpenRE.MatchString(rest) {
			return from + i
		}
		from += i + 1
	}
	return len(p.src)
}

func (p *parser) startTag() (bool, error) {
	start := p.pos
	m := startTagOpenRE.FindStringSubmatch(p.src[start:])
	cur := start + len(m[0])
	var attrs []ast.Attr
	for {
		if c := startTagCloseRE.FindStringSubmatch(p.src[cur:]); c != nil {
			cur += len(c[0])
			p.pos = cur
			return true, p.openElement(m[1], attrs, c[1] != "", start, cur)
		}
		idx := attributeRE.FindStringSubmatchIndex(p.src[cur:])
		if idx == nil {
			break
		}
		attrs = append(attrs, attrFromMatch(p.src[cur:], idx, cur))
		cur += idx[1]
	}
	if strings.TrimSpace(p.src[cur:]) == "" {
		p.warn(fmt.Sprintf("Mal-formatted tag at end of template: %q", p.src[start:]), span(start, len(p.src)))
		p.pos = len(p.src)
		return true, nil
	}
	return false, nil
}

func attrFromMatch(s string, idx []int, base int) ast.Attr {
	a := ast.Attr{
		Name:  s[idx[2]:idx[3]],
		Start: source.Offset(base + idx[2]),
		End:   source.Offset(base + idx[1]),
	}
	for g := 4; g <= 8; g += 2 {
		if idx[g] >= 0 {
			a.Value = html.UnescapeString(s[idx[g]:idx[g+1]])
			break
		}
	}
	return a
}

func (p *parser) scanRawText(tag string) {
	rest := p.src[p.pos:]
	idx := indexFold(rest, "</"+tag)
	if idx < 0 {
		idx = len(rest)
	}
	if idx > 0 {
		p.chars(rest[:idx], p.pos, p.pos+idx, true)
		p.pos += idx
	}
	if p.pos >= len(p.src) {
		return
	}
	if m := endTagRE.FindStringSubmatch(p.src[p.pos:]); m != nil {
		start := p.pos
		p.pos += len(m[0])
		p.endTag(m[1], start, p.pos)
		return
	}
	p.chars(p.src[p.pos:], p.pos, len(p.src), true)
	p.pos = len(p.src)
}

// indexFold is strings.Index with ASCII case folding; offsets stay byte exact.
func indexFold(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if strings.EqualFold(s[i:i+len(substr)], substr) {
			return i
		}
	}
	return -1
}

func isRawTextTag(tag string) bool {
	return tag == "script" || tag == "style" || tag == "textarea"
}

func isForbiddenTag(n *ast.Node) bool {
	if n.Tag == "style" {
		return true
	}
	if n.Tag != "script" {
		return false
	}
	typ, ok := n.Attr("type")
	return !ok || typ == "text/javascript"
}
