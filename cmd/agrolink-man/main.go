package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/agrolink/agrolink/internal/cli"
	"github.com/agrolink/agrolink/internal/version"
)

func main() {
	var outDir string
	flag.StringVar(&outDir, "out", "dist/man", "output directory for generated man pages")
	flag.Parse()

	err := cli.GenerateManPages(outDir, cli.BuildInfo{
		Version:   version.Version,
		Commit:    version.Commit,
		BuildTime: version.BuildTime,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "agrolink-man: %v\n", err)
		os.Exit(1)
	}
}
