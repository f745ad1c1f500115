package watch

import (
	"fmt"
	"io"
)

// RunPlain prints each poll result as a text block until the stream closes.
// This is the non-TTY fallback for the watch command.
func RunPlain(events <-chan Event, w io.Writer) error {
	for event := range events {
		if event.Err != nil {
			fmt.Fprintf(w, "[%s] poll error: %v\n", event.At.Format("15:04:05"), event.Err)
			continue
		}
		fmt.Fprintf(w, "[%s]\n%s\n", event.At.Format("15:04:05"), FormatSnapshot(event.Snapshot))
	}
	return nil
}
