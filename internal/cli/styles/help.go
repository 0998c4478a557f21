package styles

import "github.com/charmbracelet/bubbles/help"

// NewStyledHelp returns a help model styled by the theme.
func NewStyledHelp(theme *Theme) help.Model {
	h := help.New()
	h.Styles.ShortKey = theme.HelpKey
	h.Styles.ShortDesc = theme.HelpDesc
	h.Styles.ShortSeparator = theme.Subtle
	h.Styles.FullKey = theme.HelpKey
	h.Styles.FullDesc = theme.Normal
	h.Styles.FullSeparator = theme.Subtle
	h.Styles.Ellipsis = theme.Subtle
	return h
}
