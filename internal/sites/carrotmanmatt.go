package sites

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"git.home.luguber.info/inful/sitedeploy/internal/components"
	"git.home.luguber.info/inful/sitedeploy/internal/render"
)

// Link is an entry of the profile link list.
type Link struct {
	Label string
	// Font Awesome icon classes, e.g. "brands fa-github".
	Icon string
	Href string
}

// ProfileLinks lists the profiles linked from carrotmanmatt.com.
var ProfileLinks = []Link{
	{Label: "GitHub", Icon: "brands fa-github", Href: "https://github.carrotmanmatt.com"},
	{Label: "Twitch", Icon: "brands fa-twitch", Href: "https://twitch.carrotmanmatt.com"},
	{Label: "Reddit", Icon: "brands fa-reddit", Href: "https://reddit.carrotmanmatt.com"},
	{Label: "Instagram", Icon: "brands fa-instagram", Href: "https://instagram.carrotmanmatt.com"},
	{Label: "YouTube", Icon: "brands fa-youtube", Href: "https://youtube.carrotmanmatt.com"},
	{Label: "Stack Overflow", Icon: "brands fa-stack-overflow", Href: "https://stackoverflow.carrotmanmatt.com"},
	{Label: "Email", Icon: "solid fa-envelope", Href: "mailto:matt@carrotmanmatt.com"},
}

const carrotmanmattAbout = `
Hi, I'm **Matt**. I write software, stream on Twitch and occasionally build small
web games such as [Car Points](https://car-points.carrotmanmatt.com).
`

const carrotmanmattRobots = "User-agent: *\nAllow: /\n"

// CarrotmanMatt is the personal website.
func CarrotmanMatt() Site {
	return Site{
		Name: "carrotmanmatt.com",
		Pages: map[string]render.Renderable{
			"index.html": render.Func(func() (string, error) { return carrotmanmattIndex().Render() }),
			"robots.txt": render.Text(carrotmanmattRobots),
		},
	}
}

func carrotmanmattIndex() render.HTML {
	opts := components.DefaultBaseOptions()
	opts.CopyrightComment = components.HTML5UPCopyright

	links := render.Element(atom.Ul, []string{"class", "icons"})
	for _, l := range ProfileLinks {
		links.AppendChild(render.Element(atom.Li, nil,
			render.Element(atom.A, []string{"class", "icon " + l.Icon, "href", l.Href},
				render.Element(atom.Span, []string{"class", "label"}, render.TextNode(l.Label)))))
	}

	opts.Body = components.Body(components.BodyParts{
		Header: []*html.Node{
			render.Element(atom.H1, nil, render.TextNode(components.Owner)),
		},
		Main: []*html.Node{
			render.Element(atom.Section, []string{"id", "about"},
				render.Element(atom.H2, nil, render.TextNode(components.Title("about me"))),
				render.Node(render.Markdown{Source: carrotmanmattAbout})),
			render.Element(atom.Section, []string{"id", "links"},
				render.Element(atom.H2, nil, render.TextNode(components.Title("find me elsewhere"))),
				links),
		},
		Footer: []*html.Node{
			render.Element(atom.P, nil, components.SiteCopyright()),
		},
	})
	return components.Base(opts)
}
