package models

// Tag colors a recipe card may use.
const (
	ColorBlack       = "#000000"
	ColorSilver      = "#C0C0C0"
	ColorGray        = "#808080"
	ColorSaddleBrown = "#8B4513"
	ColorMaroon      = "#800000"
	ColorRed         = "#FF0000"
	ColorPurple      = "#800080"
	ColorFuchsia     = "#FF00FF"
	ColorGreen       = "#008000"
	ColorLime        = "#00FF00"
	ColorOlive       = "#808000"
	ColorGreenYellow = "#ADFF2F"
	ColorNavy        = "#000080"
	ColorBlue        = "#0000FF"
	ColorTeal        = "#008080"
	ColorAqua        = "#00FFFF"

	DefaultTagColor = ColorBlack
)

var TagColors = []string{
	ColorBlack, ColorSilver, ColorGray, ColorSaddleBrown,
	ColorMaroon, ColorRed, ColorPurple, ColorFuchsia,
	ColorGreen, ColorLime, ColorOlive, ColorGreenYellow,
	ColorNavy, ColorBlue, ColorTeal, ColorAqua,
}

// IsTagColor reports whether c is one of TagColors.
func IsTagColor(c string) bool {
	for _, color := range TagColors {
		if color == c {
			return true
		}
	}
	return false
}

type Tag struct {
	ID    uint   `gorm:"primarykey" json:"id"`
	Name  string `gorm:"size:50;uniqueIndex;not null" json:"name"`
	Color string `gorm:"size:7;uniqueIndex;not null;default:'#000000'" json:"color"`
	Slug  string `gorm:"size:50;uniqueIndex;not null" json:"slug"`
}
