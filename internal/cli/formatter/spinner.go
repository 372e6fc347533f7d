package formatter

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

// ProgressSpinner is the animation shown while a one-shot question is
// being answered. It matches the chat view's spinner.
var ProgressSpinner = spinner.Dot

// StartSpinner animates frames of ProgressSpinner followed by message on
// w until the returned stop function is called. Stop clears the line and
// is safe to call more than once.
func StartSpinner(w io.Writer, message string) (stop func()) {
	quit := make(chan struct{})
	done := make(chan struct{})
	frames, fps := ProgressSpinner.Frames, ProgressSpinner.FPS

	go func() {
		defer close(done)
		tick := time.NewTicker(fps)
		defer tick.Stop()
		for i := 0; ; i++ {
			fmt.Fprintf(w, "\r  %s %s", StylePurple.Render(frames[i%len(frames)]), Dim(message))
			select {
			case <-quit:
				fmt.Fprint(w, "\r\033[K")
				return
			case <-tick.C:
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(quit)
			<-done
		})
	}
}
