package grid

import (
	"strings"

	"github.com/ohadf2015/boggle-new-sub010/internal/dictionary"
)

// Grid is the board's letter matrix. Cells are lower-cased and may hold more
// than one letter (e.g. "qu").
type Grid [][]string

// Adjacency used by the word validator: horizontal steps and all four
// diagonals. Pure vertical movement is intentionally not included; the
// validator's direction set is authoritative over what the board renderer
// implies.
var directions = [6][2]int{
	{0, -1}, {0, 1},
	{-1, -1}, {-1, 1},
	{1, -1}, {1, 1},
}

func New(cells [][]string) Grid {
	g := make(Grid, len(cells))
	for i, row := range cells {
		g[i] = make([]string, len(row))
		for j, c := range row {
			g[i][j] = strings.ToLower(c)
		}
	}
	return g
}

func (g Grid) Rows() int { return len(g) }

func (g Grid) Cols() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

// HasPath reports whether word can be traced as a chain of adjacent cells
// with no cell reused.
func (g Grid) HasPath(word string) bool {
	word = strings.ToLower(word)
	if word == "" || g.Rows() == 0 {
		return false
	}
	visited := make([][]bool, g.Rows())
	for i := range visited {
		visited[i] = make([]bool, len(g[i]))
	}
	for r := range g {
		for c := range g[r] {
			if g.walk(word, r, c, visited) {
				return true
			}
		}
	}
	return false
}

func (g Grid) walk(rest string, r, c int, visited [][]bool) bool {
	cell := g[r][c]
	if !strings.HasPrefix(rest, cell) {
		return false
	}
	remaining := rest[len(cell):]
	if remaining == "" {
		return true
	}
	visited[r][c] = true
	defer func() { visited[r][c] = false }()
	for _, d := range directions {
		nr, nc := r+d[0], c+d[1]
		if nr < 0 || nr >= g.Rows() || nc < 0 || nc >= len(g[nr]) || visited[nr][nc] {
			continue
		}
		if g.walk(remaining, nr, nc, visited) {
			return true
		}
	}
	return false
}

// Solve enumerates every dictionary word of at least minLen letters that is
// present on the grid. Feeds the bot word pool at game start.
func (g Grid) Solve(dict dictionary.Lookup, language string, minLen, maxLen int) []string {
	if g.Rows() == 0 {
		return nil
	}
	found := make(map[string]struct{})
	visited := make([][]bool, g.Rows())
	for i := range visited {
		visited[i] = make([]bool, len(g[i]))
	}
	var dfs func(r, c int, prefix string)
	dfs = func(r, c int, prefix string) {
		word := prefix + g[r][c]
		if len(word) > maxLen || !dict.HasPrefix(language, word) {
			return
		}
		if len(word) >= minLen && dict.Contains(language, word) {
			found[word] = struct{}{}
		}
		visited[r][c] = true
		for _, d := range directions {
			nr, nc := r+d[0], c+d[1]
			if nr < 0 || nr >= g.Rows() || nc < 0 || nc >= len(g[nr]) || visited[nr][nc] {
				continue
			}
			dfs(nr, nc, word)
		}
		visited[r][c] = false
	}
	for r := range g {
		for c := range g[r] {
			dfs(r, c, "")
		}
	}
	words := make([]string, 0, len(found))
	for w := range found {
		words = append(words, w)
	}
	return words
}
