package templating

import (
	"bytes"

	"github.com/flosch/pongo2/v6"
)

// {% markdown %}...{% endmarkdown %} renders the enclosed block as
// Markdown. Block form of the markdown filter; both share the same
// render pipeline.

type tagMarkdownNode struct {
	wrapper *pongo2.NodeWrapper
}

func (node *tagMarkdownNode) Execute(ctx *pongo2.ExecutionContext, writer pongo2.TemplateWriter) *pongo2.Error {
	var b bytes.Buffer
	if err := node.wrapper.Execute(ctx, &b); err != nil {
		return err
	}

	writer.WriteString(renderMarkdown(b.String()))

	return nil
}

func tagMarkdownParser(doc *pongo2.Parser, start *pongo2.Token, arguments *pongo2.Parser) (pongo2.INodeTag, *pongo2.Error) {
	node := &tagMarkdownNode{}

	wrapper, _, err := doc.WrapUntilTag("endmarkdown")
	if err != nil {
		return nil, err
	}
	node.wrapper = wrapper

	if arguments.Remaining() > 0 {
		return nil, arguments.Error("markdown takes no arguments", nil)
	}

	return node, nil
}

func init() {
	pongo2.RegisterTag("markdown", tagMarkdownParser)
}
