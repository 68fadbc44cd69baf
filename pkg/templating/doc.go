/*
Package templating wires a pongo2 template environment for web
applications. It provides Django-style filters (date and number
formatting, humanized values, Markdown rendering), url() and static()
globals backed by a named-route registry, and block tags for collapsing
inter-tag whitespace and rendering Markdown inline.

The environment is constructed once at startup and is safe for
concurrent renders afterwards: templates are compiled on first use and
cached until Refresh is called (or recompiled per render when Debug is
set). Missing context variables resolve leniently; chained attribute or
index access on a missing value keeps yielding empty values and only
collapses to an empty string when the template actually outputs it.
*/
package templating
