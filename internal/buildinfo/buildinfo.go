// Package buildinfo carries version data stamped in at link time:
//
//	go build -ldflags "-X github.com/dmitrijs2005/cloudvault/internal/buildinfo.Version=1.2.0 \
//	    -X github.com/dmitrijs2005/cloudvault/internal/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/dmitrijs2005/cloudvault/internal/buildinfo.Date=$(date -u +%F)"
package buildinfo

import (
	"fmt"
	"io"
)

var (
	Version string
	Date    string
	Commit  string
)

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// PrintBuildData writes the version block shown at startup.
func PrintBuildData(w io.Writer) {
	fmt.Fprintf(w, "Build version: %s\n", orNA(Version))
	fmt.Fprintf(w, "Build date: %s\n", orNA(Date))
	fmt.Fprintf(w, "Build commit: %s\n", orNA(Commit))
}
