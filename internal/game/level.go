package game

// level bands, checked in order; the last entry catches everything else
var levelBands = []struct {
	below int
	label string
}{
	{100, "🎒 Новичок"},
	{500, "🎓 Ученик"},
	{1000, "🥉 Бронза"},
	{2000, "🥈 Серебро"},
	{5000, "🥇 Золото"},
}

// DiamondLevel is the top tier label
const DiamondLevel = "💎 Алмаз"

// Level maps accumulated points to one of 6 named tiers. It is a pure
// step function; the stored user level is recomputed from the running
// total on every scoring update.
func Level(points int) string {
	for _, band := range levelBands {
		if points < band.below {
			return band.label
		}
	}
	return DiamondLevel
}
