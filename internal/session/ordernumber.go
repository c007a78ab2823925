package session

import (
	"fmt"
	"math/rand/v2"
)

// RandSource supplies the randomness for order numbers.
type RandSource interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int {
	return rand.IntN(n)
}

// GenerateOrderNumber returns a display number such as "#K4821": one letter
// A-Z followed by a number in [1000, 9999]. Numbers are not unique.
func GenerateOrderNumber(r RandSource) string {
	letter := 'A' + rune(r.IntN(26))
	number := 1000 + r.IntN(9000)
	return fmt.Sprintf("#%c%d", letter, number)
}
