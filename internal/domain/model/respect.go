package model

// Group size limits for a Respect Game session.
const (
	MinGroupSize = 2
	MaxGroupSize = 6
)

// respectByLevel is the fixed Respect award per final level (Year 2 = 2x Fibonacci).
// It is configuration in the constant sense: never derived at runtime.
var respectByLevel = map[int]int{
	6: 110,
	5: 68,
	4: 42,
	3: 26,
	2: 16,
	1: 10,
}

// RespectForLevel returns the Respect points awarded for a final level.
// Levels outside 1..6 award nothing.
func RespectForLevel(level int) int {
	return respectByLevel[level]
}
