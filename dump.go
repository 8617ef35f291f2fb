package pantrytracker

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/davecgh/go-spew/spew"
)

var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	SortKeys:                true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

// Dump prints v to stdout prefixed with the caller's location.
func Dump(v ...any) {
	_, file, line, _ := runtime.Caller(1)
	DumpTo(os.Stdout, fmt.Sprintf("%s:%d:", file, line), v...)
}

// DumpTo writes a stable, address-free dump of v to w under a header line.
func DumpTo(w io.Writer, header string, v ...any) {
	if header != "" {
		fmt.Fprintln(w, header)
	}
	dumpConfig.Fdump(w, v...)
}
