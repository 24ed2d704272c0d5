package cli

import (
	"fmt"
	"io"

	"github.com/common-nighthawk/go-figure"
)

func printBanner(out io.Writer, appname string) {
	fmt.Fprintln(out, figure.NewFigure(appname, "cybermedium", true).String())
}
