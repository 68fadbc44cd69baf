package templating

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/flosch/pongo2/v6"
)

// interTagSpace matches whitespace runs sitting directly between a
// closing '>' and an opening '<'. Whitespace anywhere else (attribute
// areas, text content) must not match.
var interTagSpace = regexp.MustCompile(`>\s+<`)

// CollapseTagWhitespace trims s and removes whitespace between adjacent
// tags, turning "<div>   <span>" into "<div><span>". It is the string
// operation behind the {% spaceless %} tag, exported so it can be used
// on pre-rendered fragments directly.
func CollapseTagWhitespace(s string) string {
	return interTagSpace.ReplaceAllString(strings.TrimSpace(s), "><")
}

type tagSpacelessNode struct {
	wrapper *pongo2.NodeWrapper
}

func (node *tagSpacelessNode) Execute(ctx *pongo2.ExecutionContext, writer pongo2.TemplateWriter) *pongo2.Error {
	var b bytes.Buffer
	if err := node.wrapper.Execute(ctx, &b); err != nil {
		return err
	}

	// The body was already escaped (or marked safe) while it rendered,
	// so the collapsed result is written back raw; pushing it through
	// the escaper again would mangle the markup.
	writer.WriteString(CollapseTagWhitespace(b.String()))

	return nil
}

func tagSpacelessParser(doc *pongo2.Parser, start *pongo2.Token, arguments *pongo2.Parser) (pongo2.INodeTag, *pongo2.Error) {
	node := &tagSpacelessNode{}

	wrapper, _, err := doc.WrapUntilTag("endspaceless")
	if err != nil {
		return nil, err
	}
	node.wrapper = wrapper

	if arguments.Remaining() > 0 {
		return nil, arguments.Error("spaceless takes no arguments", nil)
	}

	return node, nil
}

func init() {
	// pongo2 ships a spaceless tag of its own; this one follows Django's
	// SpacelessNode instead: trim the rendered block, then collapse each
	// whitespace run bounded by '>' and '<' in a single pass.
	pongo2.ReplaceTag("spaceless", tagSpacelessParser)
}
