package sites

import (
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"git.home.luguber.info/inful/sitedeploy/internal/components"
	"git.home.luguber.info/inful/sitedeploy/internal/render"
)

const carPointsCounters = 9

// CarPoints is the car points counting game.
func CarPoints() Site {
	return Site{
		Name: "car-points",
		Pages: map[string]render.Renderable{
			"index.html": render.Func(func() (string, error) { return carPointsIndex().Render() }),
		},
	}
}

func carPointsIndex() render.HTML {
	opts := components.BaseOptions{
		Title:       "Car Points Game",
		Description: "CarrotManMatt's web car points counting game.",
		SiteURL:     "https://car-points.carrotmanmatt.com",
		MetaImage:   "https://car-points.carrotmanmatt.com/static/Logo.png",
		ContentType: "game",
		Keywords: append(components.DefaultBaseOptions().Keywords,
			"game", "car-points", "overtaking", "undertaking", "vehicles", "video game"),
		Stylesheets: []*html.Node{
			components.Stylesheet("/static/bootstrap-5.2.0-dist/css/bootstrap.min.css"),
		},
		ExtraHead: []*html.Node{
			render.Element(atom.Link, []string{
				"rel", "stylesheet", "type", "text/css", "href", "/static/styles/main.css",
			}),
			components.Script("/static/scripts/main.js"),
		},
	}

	main := []*html.Node{
		render.Element(atom.H1, []string{"class", "text-center fs-3 mb-0", "id", "counter"}),
	}
	for counter := 1; counter <= carPointsCounters; counter++ {
		main = append(main, counterRow(counter))
	}
	main = append(main, modeSelector())

	opts.Body = components.Body(components.BodyParts{
		Header: []*html.Node{
			render.Element(atom.Div, []string{"class", "row mx-0 mt-4"},
				render.Element(atom.Div, []string{"class", "w-auto mx-auto"},
					render.Element(atom.Div, []string{"class", "col col-auto"},
						render.Element(atom.A, []string{"class", "text-reset text-decoration-none", "href", ""},
							render.Element(atom.Img, []string{
								"src", "/static/images/Logo.png",
								"alt", "a carrot within a blue car",
								"height", "100vh",
								"width", "100%",
							}))))),
			render.Element(atom.H1, []string{"class", "text-center fs-1 my-0 pb-1"},
				render.TextNode("Car Points Game")),
		},
		Main: main,
		Footer: []*html.Node{
			render.Element(atom.P, []string{"class", "text-center fs-5 my-3"},
				components.SiteCopyright("text-secondary", "text-decoration-none")),
		},
		Scripts: []*html.Node{components.InlineScript("names()")},
	})
	return components.Base(opts)
}

func counterRow(counter int) *html.Node {
	n := strconv.Itoa(counter)
	margin := "mt-2"
	if counter == 1 {
		margin = ""
	}
	return render.Element(atom.Div, []string{"class", components.Classes("row", "mx-0", margin)},
		render.Element(atom.Div, []string{"class", "w-auto mx-auto"},
			render.Element(atom.Button, []string{
				"type", "button",
				"class", "btn btn-success fw-bold",
				"onclick", "increase(" + n + ")",
			}, render.TextNode("+")),
			render.Element(atom.P, []string{
				"class", "d-inline fs-5 align-middle mx-2",
				"id", "button-" + n,
			}),
			render.Element(atom.Button, []string{
				"type", "button",
				"disabled", "",
				"onclick", "decrease(" + n + ")",
				"class", "btn btn-danger fw-bold decrease",
			}, render.TextNode("-")),
		))
}

func modeSelector() *html.Node {
	option := func(id, onclick, label string, checked bool, classes string) *html.Node {
		input := []string{
			"class", "form-check-input",
			"type", "radio",
			"name", "namesOrPoints",
			"id", id,
		}
		if checked {
			input = append(input, "checked", "")
		}
		return render.Element(atom.Div, []string{"class", classes, "onclick", onclick},
			render.Element(atom.Input, input),
			render.Element(atom.Label, []string{"class", "ms-1 form-check-label", "for", id},
				render.TextNode(components.Title(label))),
		)
	}
	return render.Element(atom.Div, []string{"class", "row mx-0 mt-4"},
		render.Element(atom.Div, []string{"class", "w-auto mx-auto"},
			option("names", "names()", "category names", true, ""),
			option("points", "points()", "points rewarded", false, "mt-2"),
		))
}
