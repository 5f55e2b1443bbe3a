package menu

import (
	"html"
	"strings"
)

type Button struct {
	Label string
	Event Event
}

// View is a rendered screen: HTML text plus rows of buttons.
type View struct {
	State   State
	Notice  string
	Title   string
	Lines   []string
	Buttons [][]Button
}

// Text joins notice, title and lines into Telegram HTML. Lines are
// expected to be escaped already.
func (v View) Text() string {
	var parts []string
	if v.Notice != "" {
		parts = append(parts, "<i>"+html.EscapeString(v.Notice)+"</i>")
	}
	if v.Title != "" {
		parts = append(parts, "<b>"+html.EscapeString(v.Title)+"</b>")
	}
	if len(v.Lines) > 0 {
		parts = append(parts, strings.Join(v.Lines, "\n"))
	}
	return strings.Join(parts, "\n\n")
}

// PlainText strips the HTML tags used by Text, for e-mail and logs.
func (v View) PlainText() string {
	r := strings.NewReplacer("<b>", "", "</b>", "", "<i>", "", "</i>", "", "<code>", "", "</code>", "")
	return html.UnescapeString(r.Replace(v.Text()))
}

// Actions flattens the buttons into (label, action id) pairs.
func (v View) Actions() []Action {
	var out []Action
	for _, row := range v.Buttons {
		for _, btn := range row {
			out = append(out, Action{Label: btn.Label, ActionID: btn.Event.Encode()})
		}
	}
	return out
}

type Action struct {
	Label    string `json:"label"`
	ActionID string `json:"action_id"`
}
