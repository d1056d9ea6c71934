package sites

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAll(t *testing.T) {
	all := All()
	require.Len(t, all, 2)
	assert.Equal(t, "car-points", all[0].Name)
	assert.Equal(t, "carrotmanmatt.com", all[1].Name)

	for _, s := range all {
		require.NotEmpty(t, s.Pages, s.Name)
		for _, p := range s.PagePaths() {
			assert.False(t, strings.HasPrefix(p, "/"), "%s/%s", s.Name, p)
			out, err := s.Pages[p].Render()
			require.NoError(t, err, "%s/%s", s.Name, p)
			assert.NotEmpty(t, strings.TrimSpace(out))
		}
	}
}

func TestPagePaths_Sorted(t *testing.T) {
	assert.Equal(t, []string{"index.html", "robots.txt"}, CarrotmanMatt().PagePaths())
}

func TestSelect(t *testing.T) {
	all := All()

	selected, missing := Select(all, nil)
	assert.Equal(t, all, selected)
	assert.Empty(t, missing)

	selected, missing = Select(all, []string{"carrotmanmatt.com", "nope"})
	require.Len(t, selected, 1)
	assert.Equal(t, "carrotmanmatt.com", selected[0].Name)
	assert.Equal(t, []string{"nope"}, missing)
}

func TestCarPointsIndex(t *testing.T) {
	out, err := CarPoints().Pages["index.html"].Render()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, `<!DOCTYPE html><html lang="en-GB">`))
	assert.Equal(t, carPointsCounters, strings.Count(out, `class="btn btn-success fw-bold"`))
	assert.Contains(t, out, `onclick="increase(9)"`)
	assert.Contains(t, out, `<label class="ms-1 form-check-label" for="names">Category Names</label>`)
	assert.Contains(t, out, `<script src="/static/scripts/main.js" type="text/javascript"></script>`)
	assert.Contains(t, out, `car-points, overtaking`)
}

func TestCarrotmanMattIndex(t *testing.T) {
	out, err := CarrotmanMatt().Pages["index.html"].Render()
	require.NoError(t, err)

	assert.Contains(t, out, "Spectral by HTML5 UP")
	assert.Contains(t, out, "<strong>Matt</strong>")
	for _, l := range ProfileLinks {
		assert.Contains(t, out, `href="`+l.Href+`"`)
	}
}
