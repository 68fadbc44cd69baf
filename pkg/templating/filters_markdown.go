package templating

import (
	"github.com/flosch/pongo2/v6"
	"github.com/microcosm-cc/bluemonday"
	"github.com/russross/blackfriday/v2"
)

// markdownPolicy strips whatever markup blackfriday lets through that
// user-authored content should not carry (script/style, event handlers).
var markdownPolicy = bluemonday.UGCPolicy()

func init() {
	pongo2.RegisterFilter("markdown", filterMarkdown)
}

// filterMarkdown renders its input as Markdown and returns safe HTML.
//
// The input is always taken as its underlying plain string, even when
// the value arrived marked safe: handing escaped markup to the renderer
// would escape its entities a second time on the way out.
func filterMarkdown(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsSafeValue(renderMarkdown(in.String())), nil
}

// renderMarkdown is the pipeline shared by the markdown filter and the
// {% markdown %} tag.
func renderMarkdown(source string) string {
	return string(markdownPolicy.SanitizeBytes(blackfriday.Run([]byte(source))))
}
