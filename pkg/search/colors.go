package search

import (
	"github.com/logrusorgru/aurora"
)

// Colorizer decorates one part of a search result line.
type Colorizer func(string) string

type Colors struct {
	TableColumn Colorizer
	ID          Colorizer
	Match       Colorizer
}

const (
	DEFAULT_TABLE_COLUMN_COLOR = "%G"
	DEFAULT_ID_COLOR           = "%Y"
	DEFAULT_MATCH_COLOR        = "%3%k"
)

// ParseColor turns a color token string like "%G" or "%3%k" into a
// Colorizer. Lower case letters select a foreground color, upper case ones
// the bold variant, digits a background color. An empty spec leaves the text
// as it is, unknown tokens are ignored.
func ParseColor(au aurora.Aurora, spec string) Colorizer {
	if spec == "" {
		return plain
	}
	return func(s string) string {
		v := au.Colorize(s, 0)
		for i := 0; i+1 < len(spec); i++ {
			if spec[i] != '%' {
				continue
			}
			i++
			v = applyToken(v, spec[i])
		}
		return v.String()
	}
}

func plain(s string) string {
	return s
}

func applyToken(v aurora.Value, token byte) aurora.Value {
	switch token {
	case 'k':
		return v.Black()
	case 'r':
		return v.Red()
	case 'g':
		return v.Green()
	case 'y':
		return v.Yellow()
	case 'b':
		return v.Blue()
	case 'm', 'p':
		return v.Magenta()
	case 'c':
		return v.Cyan()
	case 'w':
		return v.White()
	case 'K':
		return v.Black().Bold()
	case 'R':
		return v.Red().Bold()
	case 'G':
		return v.Green().Bold()
	case 'Y':
		return v.Yellow().Bold()
	case 'B':
		return v.Blue().Bold()
	case 'M', 'P':
		return v.Magenta().Bold()
	case 'C':
		return v.Cyan().Bold()
	case 'W':
		return v.White().Bold()
	case '0':
		return v.BgBlack()
	case '1':
		return v.BgRed()
	case '2':
		return v.BgGreen()
	case '3':
		return v.BgYellow()
	case '4':
		return v.BgBlue()
	case '5':
		return v.BgMagenta()
	case '6':
		return v.BgCyan()
	case '7':
		return v.BgWhite()
	case '8':
		return v.Reverse()
	case '9', '_':
		return v.Bold()
	case 'U':
		return v.Underline()
	}
	return v
}

// NewColors builds the colors of a search. Empty specs fall back to the
// defaults; the match is only highlighted by default when context is shown.
func NewColors(enabled bool, tableColumn, id, match string, withContext bool) Colors {
	au := aurora.NewAurora(enabled)
	if tableColumn == "" {
		tableColumn = DEFAULT_TABLE_COLUMN_COLOR
	}
	if id == "" {
		id = DEFAULT_ID_COLOR
	}
	if match == "" && withContext {
		match = DEFAULT_MATCH_COLOR
	}
	return Colors{
		TableColumn: ParseColor(au, tableColumn),
		ID:          ParseColor(au, id),
		Match:       ParseColor(au, match),
	}
}

// NoColors leaves every part undecorated.
func NoColors() Colors {
	return Colors{TableColumn: plain, ID: plain, Match: plain}
}
