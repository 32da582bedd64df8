// Command chrserve starts the compile-inspection HTTP service
// (SPEC_FULL.md §6.4), parallel to the teacher's cmd/rage and cmd/oink.
package main

import (
	"flag"

	"github.com/ATSOTECK/chrc/internal/devserver"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	flag.Parse()

	e := devserver.New()
	e.Logger.Fatal(e.Start(*addr))
}
