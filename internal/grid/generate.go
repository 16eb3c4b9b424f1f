package grid

import "math/rand"

// English letter distribution weighted roughly by Scrabble tile counts.
var letterBag = []rune("eeeeeeeeeeeeaaaaaaaaaiiiiiiiiioooooooonnnnnnrrrrrrttttttllllssssuuuuddddgggbbccmmppffhhvvwwyykjxqz")

// Generate rolls a fresh size x size board from the weighted letter bag.
// Used when the host starts a round without supplying a grid.
func Generate(size int) [][]string {
	if size < 2 {
		size = 2
	}
	cells := make([][]string, size)
	for r := range cells {
		row := make([]string, size)
		for c := range row {
			letter := letterBag[rand.Intn(len(letterBag))]
			if letter == 'q' {
				row[c] = "qu"
			} else {
				row[c] = string(letter)
			}
		}
		cells[r] = row
	}
	return cells
}
