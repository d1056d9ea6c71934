// Package sites defines the static websites sitedeploy builds. The set is fixed at
// compile time; All returns it.
package sites

import (
	"slices"
	"strings"

	"git.home.luguber.info/inful/sitedeploy/internal/render"
)

// Site is a named collection of pages keyed by relative, slash-separated path.
type Site struct {
	Name  string
	Pages map[string]render.Renderable
}

// PagePaths returns the site's page paths in sorted order.
func (s Site) PagePaths() []string {
	paths := make([]string, 0, len(s.Pages))
	for p := range s.Pages {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths
}

// All returns every shipped site, sorted by name.
func All() []Site {
	all := []Site{CarPoints(), CarrotmanMatt()}
	slices.SortFunc(all, func(a, b Site) int { return strings.Compare(a.Name, b.Name) })
	return all
}

// Select returns the sites whose names are listed, preserving All's order. An empty
// names list selects every site. Unknown names are reported in missing.
func Select(all []Site, names []string) (selected []Site, missing []string) {
	if len(names) == 0 {
		return all, nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	for _, s := range all {
		if want[s.Name] {
			selected = append(selected, s)
			delete(want, s.Name)
		}
	}
	for n := range want {
		missing = append(missing, n)
	}
	slices.Sort(missing)
	return selected, missing
}
