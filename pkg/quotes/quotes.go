// Package quotes holds the short title phrases offered by the editor.
package quotes

import "math/rand/v2"

// Category names a group of quotes.
type Category string

const (
	General Category = "general"
	Healing Category = "healing"
)

var library = map[Category][]string{
	General: {
		"风有归处，心有颜色。",
		"白日梦，也是种勇敢。",
		"此刻心境，只属于你。",
		"山川自有归途，心事不必声张。",
		"光会照进来，雪也会融化。",
		"人间值得，日子要慢慢爱。",
		"听风写意，看云成诗。",
		"心安处，便是远方。",
		"万物皆有裂隙，那是光的入口。",
		"花会开，风会停，故事会继续。",
		"留一方白，给心安静。",
		"一念之间，四季皆春。",
		"山高水长，别怕路远。",
		"月色归来，心事已淡。",
		"云自飘摇，心自澄明。",
		"慢慢走，都是风景。",
		"一纸素心，半盏清欢。",
		"时光不语，却懂得回答。",
		"明月千里，心有相知。",
		"此刻宁静，足以抵抗喧嚣。",
	},
	Healing: {
		"光会照进来，雪也会融化。",
		"花会开，风会停，故事会继续。",
		"慢慢走，都是风景。",
		"此刻宁静，足以抵抗喧嚣。",
	},
}

// Categories returns the known categories, general first.
func Categories() []Category {
	return []Category{General, Healing}
}

// List returns a copy of the quotes in c, or nil for an unknown category.
func List(c Category) []string {
	q, ok := library[c]
	if !ok {
		return nil
	}
	return append([]string(nil), q...)
}

// Random picks a quote from c using rng, or the global source when rng is
// nil. Unknown categories fall back to General.
func Random(c Category, rng *rand.Rand) string {
	list, ok := library[c]
	if !ok {
		list = library[General]
	}
	if rng == nil {
		return list[rand.IntN(len(list))]
	}
	return list[rng.IntN(len(list))]
}
