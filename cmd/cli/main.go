// gedline reads GEDCOM genealogy files in any of their legal character
// encodings and prints them as clean lines of text.
package main

import (
	"os"

	"github.com/ccollicutt/gedline/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
