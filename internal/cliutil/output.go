// Package cliutil holds the plumbing shared by the three CLI tools: the
// Output abstraction over stdout/stderr, environment-variable fallback
// helpers, and JSON/plain error rendering, generalized from the original
// CLI's single-binary "cli" package into an importable package three
// binaries can share.
package cliutil

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Output is a uniform interface to write text to some stream, exactly as
// the original dupfiles CLI defined it.
type Output interface {
	Print(text string) (int, error)
	Println(text string) (int, error)
	Printf(format string, args ...interface{}) (int, error)
	Printfln(format string, args ...interface{}) (int, error)
}

// PlainOutput writes uncolored text to Device.
type PlainOutput struct {
	Device io.Writer
}

func (o *PlainOutput) Print(text string) (int, error) {
	return o.Device.Write([]byte(text))
}

func (o *PlainOutput) Println(text string) (int, error) {
	n1, err := o.Device.Write([]byte(text))
	if err != nil {
		return n1, err
	}
	n2, err := o.Device.Write([]byte{'\n'})
	return n1 + n2, err
}

func (o *PlainOutput) Printf(format string, args ...interface{}) (int, error) {
	return o.Device.Write([]byte(fmt.Sprintf(format, args...)))
}

func (o *PlainOutput) Printfln(format string, args ...interface{}) (int, error) {
	return o.Device.Write([]byte(fmt.Sprintf(format+"\n", args...)))
}

// ColorOutput writes text to Device through a fatih/color.Color, used for
// diagnostic output on a TTY.
type ColorOutput struct {
	Device io.Writer
	Color  *color.Color
}

func (o *ColorOutput) Print(text string) (int, error) {
	return o.Color.Fprint(o.Device, text)
}

func (o *ColorOutput) Println(text string) (int, error) {
	return o.Color.Fprintln(o.Device, text)
}

func (o *ColorOutput) Printf(format string, args ...interface{}) (int, error) {
	return o.Color.Fprintf(o.Device, format, args...)
}

func (o *ColorOutput) Printfln(format string, args ...interface{}) (int, error) {
	return o.Color.Fprintf(o.Device, format+"\n", args...)
}
