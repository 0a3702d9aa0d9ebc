package main

import (
	"github.com/gookit/color"
)

// TerminalAlerter renders the dismissable in-app alerts as colored
// terminal lines.
type TerminalAlerter struct {
	title color.Style
	body  color.Style
}

func NewTerminalAlerter() *TerminalAlerter {
	return &TerminalAlerter{
		title: color.New(color.FgBlack, color.BgYellow, color.OpBold),
		body:  color.New(color.FgYellow),
	}
}

func (a *TerminalAlerter) Alert(title, message string) {
	a.title.Printf(" %s \n", title)
	a.body.Println(message)
}
