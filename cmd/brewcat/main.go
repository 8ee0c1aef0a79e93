package main

import (
	"fmt"
	"os"

	"github.com/blackwell-systems/brewcat/internal/app"
)

func main() {
	if err := app.Execute(); err != nil {
		fmt.Fprint(os.Stderr, app.FormatError(err))
		os.Exit(1)
	}
}
