package sentiment

// Label is the closed three-class sentiment category produced by the classifier.
type Label int

const (
	Negative Label = 0
	Neutral  Label = 1
	Positive Label = 2
)

// Labels lists the classes in index order.
var Labels = []Label{Negative, Neutral, Positive}

// Class holds the display attributes of one label.
type Class struct {
	Label     Label
	Key       string
	Name      string
	ShortName string
	ChartName string
	Color     string
	Badge     string
}

var classes = [...]Class{
	{Label: Negative, Key: "negative", Name: "Негативная", ShortName: "Негатив", ChartName: "Негативные", Color: "hsl(0, 84%, 60%)", Badge: "badge-negative"},
	{Label: Neutral, Key: "neutral", Name: "Нейтральная", ShortName: "Нейтрал", ChartName: "Нейтральные", Color: "hsl(220, 9%, 46%)", Badge: "badge-neutral"},
	{Label: Positive, Key: "positive", Name: "Позитивная", ShortName: "Позитив", ChartName: "Позитивные", Color: "hsl(142, 71%, 45%)", Badge: "badge-positive"},
}

// Valid reports whether l indexes the class table.
func (l Label) Valid() bool {
	return l >= Negative && l <= Positive
}

// Class returns the display attributes for l. Out-of-range labels render as neutral.
func (l Label) Class() Class {
	if !l.Valid() {
		return classes[Neutral]
	}
	return classes[l]
}

func (l Label) String() string {
	return l.Class().Key
}

// Classes returns the display table in index order.
func Classes() []Class {
	out := make([]Class, len(classes))
	copy(out, classes[:])
	return out
}

// RGB returns the label color as 8-bit RGB components, for renderers that cannot take CSS colors.
func (c Class) RGB() (r, g, b uint8) {
	switch c.Label {
	case Negative:
		return 239, 68, 68
	case Positive:
		return 34, 197, 94
	default:
		return 107, 114, 128
	}
}
