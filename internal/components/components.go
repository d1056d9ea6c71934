// Package components holds the HTML building blocks shared by the shipped sites.
package components

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/sitedeploy/internal/render"
)

// Language is the document language of every page.
var Language = language.BritishEnglish

// Owner is the copyright holder named in page footers.
const Owner = "CarrotManMatt"

// HTML5UPCopyright is the licence notice required by pages built on HTML5 UP themes.
const HTML5UPCopyright = "\n    Spectral by HTML5 UP\n    html5up.net | @ajlkn\n" +
	"    Free for personal and commercial use under the CCA 3.0 license (html5up.net/license)\n"

// Now is the clock used for copyright years.
var Now = time.Now

// CurrentYear returns the current year of the configured clock.
func CurrentYear() int { return Now().Year() }

// Title converts s to title case using the page language rules.
func Title(s string) string {
	return cases.Title(Language).String(s)
}

// BaseOptions configures the document skeleton.
type BaseOptions struct {
	Title       string
	Description string
	MetaImage   string
	ContentType string
	Keywords    []string
	SiteURL     string
	// Comment placed before <head>, omitted when empty.
	CopyrightComment string
	Stylesheets      []*html.Node
	ExtraHead        []*html.Node
	Body             *html.Node
	AfterBody        []*html.Node
}

// DefaultBaseOptions returns the defaults used by carrotmanmatt.com pages.
func DefaultBaseOptions() BaseOptions {
	return BaseOptions{
		Title:       "CarrotManMatt.com",
		Description: "CarrotManMatt's personal website.",
		MetaImage:   "https://carrotmanmatt.com/static/website_icon.png",
		ContentType: "article",
		Keywords:    []string{"CarrotManMatt"},
		SiteURL:     "https://carrotmanmatt.com",
		Stylesheets: []*html.Node{Stylesheet("/static/css/main.css")},
	}
}

// Base builds a complete document: doctype, <html lang>, the shared <head> metadata
// and the given body.
func Base(o BaseOptions) render.HTML {
	head := render.Element(atom.Head, nil,
		render.Element(atom.Title, nil, render.TextNode(o.Title)),
		meta("content", o.Title, "property", "og:title"),
		meta("content", o.Description, "property", "og:description"),
		meta("content", o.SiteURL, "property", "og:url"),
		meta("content", o.MetaImage, "property", "og:image"),
		meta("content", o.ContentType, "property", "og:type"),
		meta("content", o.MetaImage, "name", "twitter:card"),
		meta("content", "#ff9f0e", "data-react-helmet", "true", "name", "theme-color"),
		meta("content", o.Title, "itemprop", "name"),
		meta("content", o.Description, "itemprop", "description"),
		meta("content", o.Description, "name", "description"),
		meta("content", strings.Join(o.Keywords, ", "), "name", "keywords"),
		meta("charset", "utf-8"),
		meta("content", "IE=edge", "http-equiv", "X-UA-Compatible"),
		meta("content", "width=device-width, initial-scale=1", "name", "viewport"),
	)
	appendAll(head, o.Stylesheets)
	head.AppendChild(render.Element(atom.Link, []string{
		"href", "/favicon.ico", "rel", "shortcut icon", "type", "image/png",
	}))
	appendAll(head, o.ExtraHead)

	root := render.Element(atom.Html, []string{"lang", Language.String()})
	if o.CopyrightComment != "" {
		root.AppendChild(render.Comment(o.CopyrightComment))
	}
	root.AppendChild(head)
	body := o.Body
	if body == nil {
		body = render.Element(atom.Body, nil)
	}
	root.AppendChild(body)
	appendAll(root, o.AfterBody)
	return render.Document(root)
}

// BodyParts are the sections of a page body. Nil sections are omitted.
type BodyParts struct {
	Header  []*html.Node
	Main    []*html.Node
	Footer  []*html.Node
	Scripts []*html.Node
}

// Body builds <body> with <header>, <main> and <footer> sections followed by scripts.
func Body(p BodyParts) *html.Node {
	body := render.Element(atom.Body, nil)
	if len(p.Header) > 0 {
		body.AppendChild(render.Element(atom.Header, nil, p.Header...))
	}
	if len(p.Main) > 0 {
		body.AppendChild(render.Element(atom.Main, nil, p.Main...))
	}
	if len(p.Footer) > 0 {
		body.AppendChild(render.Element(atom.Footer, nil, p.Footer...))
	}
	appendAll(body, p.Scripts)
	return body
}

// SiteCopyright renders "© <year> <owner link>" as inline nodes wrapped in a span.
func SiteCopyright(classes ...string) *html.Node {
	return render.Element(atom.Span, nil,
		render.TextNode("© "+strconv.Itoa(CurrentYear())+" "),
		render.Element(atom.A, []string{
			"class", Classes(classes...),
			"href", "https://carrotmanmatt.com",
		}, render.TextNode(Owner)),
	)
}

// Stylesheet links a CSS file.
func Stylesheet(href string) *html.Node {
	return render.Element(atom.Link, []string{"href", href, "rel", "stylesheet"})
}

// Script references a JavaScript file.
func Script(src string) *html.Node {
	return render.Element(atom.Script, []string{"src", src, "type", "text/javascript"})
}

// InlineScript embeds JavaScript source.
func InlineScript(source string) *html.Node {
	return render.Element(atom.Script, []string{"type", "text/javascript"}, render.TextNode(source))
}

// Classes joins CSS class names, skipping empty ones.
func Classes(names ...string) string {
	kept := names[:0:0]
	for _, n := range names {
		if n != "" {
			kept = append(kept, n)
		}
	}
	return strings.Join(kept, " ")
}

func meta(attrs ...string) *html.Node {
	return render.Element(atom.Meta, attrs)
}

func appendAll(parent *html.Node, children []*html.Node) {
	for _, c := range children {
		if c != nil {
			parent.AppendChild(c)
		}
	}
}
