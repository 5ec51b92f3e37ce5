// Command bfbin2text renders the tables of a structured data file as
// delimited text that spreadsheets can import.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/bjaus/bintext"
)

func main() {
	progname := filepath.Base(os.Args[0])
	a := &app{
		fs:      afero.NewOsFs(),
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		decoder: bintext.YAMLDecoder{Fs: afero.NewOsFs()},
	}
	err := a.run(context.Background(), progname, os.Args[1:])
	if hasMessage(err) {
		fmt.Fprintf(os.Stderr, "%s: %v\n", progname, err)
	}
	os.Exit(GetExitCode(err))
}
