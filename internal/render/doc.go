// Package render turns page content into the bytes written to a site's deployment
// directory.
//
// Content is anything implementing Renderable. The component layer assembles
// golang.org/x/net/html trees (HTML), Markdown sources rendered with goldmark
// (Markdown), or plain strings (Text). RenderPage serializes the content, optionally
// minifies it, trims it, terminates it with exactly one newline and writes it below the
// deployment directory.
package render
