package travelagent

import (
	"fmt"
	"io"
	"runtime"

	"github.com/davecgh/go-spew/spew"
)

var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	SortKeys:                true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

// Dump writes v to w in spew format, prefixed with the caller's file and line.
// Pointer addresses and capacities are left out so two dumps of the same
// session diff cleanly.
func Dump(w io.Writer, v ...any) {
	_, file, line, _ := runtime.Caller(1)
	fmt.Fprintf(w, "%s:%d:\n", file, line)
	dumpConfig.Fdump(w, v...)
}
