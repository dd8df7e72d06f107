package game

import (
	"fmt"
	"math/rand"
)

// Difficulty names an operand-range configuration
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
	DifficultyGenius Difficulty = "genius"
)

// operand ranges, inclusive
var ranges = map[Difficulty][2]int{
	DifficultyEasy:   {1, 10},
	DifficultyMedium: {2, 15},
	DifficultyHard:   {5, 50},
	DifficultyGenius: {10, 100},
}

// RangeLabel returns the operand range shown on menu buttons
func (d Difficulty) RangeLabel() string {
	r, ok := ranges[d]
	if !ok {
		return ""
	}
	return fmt.Sprintf("%d-%d", r[0], r[1])
}

// ParseDifficulty validates a difficulty name from the transport
func ParseDifficulty(s string) (Difficulty, bool) {
	d := Difficulty(s)
	_, ok := ranges[d]
	return d, ok
}

// Question is one generated arithmetic problem. Choices holds the
// correct answer and three distractors in display order.
type Question struct {
	Num1     int
	Num2     int
	Division bool
	Text     string
	Answer   int
	Choices  []int
}

// Generate produces a question for the requested difficulty. Half the
// time the question is multiplication over the difficulty's range; the
// other half is division built from divisor×quotient so the answer is
// always an exact integer. Uses the shared math/rand source, which is
// safe for concurrent sessions.
func Generate(difficulty Difficulty) (Question, error) {
	r, ok := ranges[difficulty]
	if !ok {
		return Question{}, fmt.Errorf("unknown difficulty: %s", difficulty)
	}
	a, b := r[0], r[1]

	prefix := "🧮"
	if difficulty == DifficultyGenius {
		prefix = "🧠"
	}

	var q Question
	if rand.Float64() < 0.5 {
		// Division with a guaranteed integer result. Genius draws both
		// operands from the harder half of its range.
		divisorMin := max(a, 2)
		quotientMin := a
		if difficulty == DifficultyGenius {
			divisorMin = max(a, 10)
			quotientMin = max(a, 10)
		}
		divisor := randRange(divisorMin, b)
		quotient := randRange(quotientMin, b)
		dividend := divisor * quotient
		q = Question{
			Num1:     dividend,
			Num2:     divisor,
			Division: true,
			Answer:   quotient,
			Text:     fmt.Sprintf("%s Чему равно %d ÷ %d?", prefix, dividend, divisor),
		}
	} else {
		num1 := randRange(a, b)
		num2 := randRange(a, b)
		q = Question{
			Num1:   num1,
			Num2:   num2,
			Answer: num1 * num2,
			Text:   fmt.Sprintf("%s Что такое %d × %d?", prefix, num1, num2),
		}
	}

	q.Choices = append(distractors(q.Answer), q.Answer)
	rand.Shuffle(len(q.Choices), func(i, j int) {
		q.Choices[i], q.Choices[j] = q.Choices[j], q.Choices[i]
	})

	return q, nil
}

// distractors returns 3 distinct positive wrong answers near the correct
// one, drawn from ±max(5, correct/2). The window doubles after repeated
// rejections so generation terminates even for tiny answers.
func distractors(correct int) []int {
	spread := correct / 2
	if spread < 5 {
		spread = 5
	}

	seen := make(map[int]bool, 3)
	out := make([]int, 0, 3)
	draws := 0
	for len(out) < 3 {
		draws++
		if draws%25 == 0 {
			spread *= 2
		}
		variation := randRange(-spread, spread)
		if variation == 0 {
			continue
		}
		candidate := correct + variation
		if candidate <= 0 || candidate == correct || seen[candidate] {
			continue
		}
		seen[candidate] = true
		out = append(out, candidate)
	}
	return out
}

// randRange returns a uniform value in [lo, hi], inclusive
func randRange(lo, hi int) int {
	return lo + rand.Intn(hi-lo+1)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
