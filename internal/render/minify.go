package render

import (
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	minhtml "github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"

	"git.home.luguber.info/inful/sitedeploy/internal/errors"
	"git.home.luguber.info/inful/sitedeploy/internal/logging"
)

const mediaTypeHTML = "text/html"

var (
	leadingDoctype   = regexp.MustCompile(`(?i)\A\s*(<!doctype[^>]*>)`)
	spaceAfterTag    = regexp.MustCompile(`>\s+`)
	spaceBeforeTag   = regexp.MustCompile(`\s+<`)
	labelColonInline = regexp.MustCompile(`([A-Za-z]):<(a|span)`)
	scriptMediaTypes = regexp.MustCompile(`^(application|text)/(x-)?(java|ecma)script$`)
)

// Minifier compacts rendered HTML pages.
type Minifier struct {
	m *minify.M
}

// NewMinifier returns a Minifier that keeps document and end tags, keeps attribute
// quotes where removing them would be unsafe, drops comments and minifies inline CSS
// and JavaScript.
func NewMinifier() *Minifier {
	m := minify.New()
	m.Add(mediaTypeHTML, &minhtml.Minifier{
		KeepDocumentTags: true,
		KeepEndTags:      true,
		KeepQuotes:       false,
		KeepComments:     false,
	})
	m.AddFunc("text/css", css.Minify)
	m.AddFuncRegexp(scriptMediaTypes, js.Minify)
	return &Minifier{m: m}
}

var defaultMinifier = sync.OnceValue(NewMinifier)

// Minify compacts page. The leading doctype is passed through verbatim. Whitespace
// left around tags is collapsed afterwards and reported at warn level, and a space is
// re-inserted between a label colon and an inline link or span.
func (mf *Minifier) Minify(logger *slog.Logger, page string) (string, error) {
	logger = logging.OrDiscard(logger)
	doctype := ""
	body := page
	if loc := leadingDoctype.FindStringSubmatchIndex(page); loc != nil {
		doctype = page[loc[2]:loc[3]]
		body = page[loc[1]:]
	}

	out, err := mf.m.String(mediaTypeHTML, body)
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryRender, "failed to minify html").Build()
	}

	if spaceAfterTag.MatchString(out) {
		logger.Warn("Whitespace after tag survived minification; collapsing it")
		out = spaceAfterTag.ReplaceAllString(out, ">")
	}
	if spaceBeforeTag.MatchString(out) {
		logger.Warn("Whitespace before tag survived minification; collapsing it")
		out = spaceBeforeTag.ReplaceAllString(out, "<")
	}
	out = labelColonInline.ReplaceAllString(out, "${1}: <${2}")

	return doctype + strings.TrimLeft(out, " \t\r\n"), nil
}
