package progress

import (
	"io"
	"os"
	"sync"

	"github.com/schollz/progressbar/v3"
)

var (
	mu       sync.Mutex
	out      io.Writer = os.Stderr
	Progress           = progressCreate(-1, "") // init as spinner
	count    int
)

// SetQuiet sends the bar to io.Discard.
func SetQuiet(quiet bool) {
	mu.Lock()
	defer mu.Unlock()
	if quiet {
		out = io.Discard
	} else {
		out = os.Stderr
	}
}

func ProgressSpinner(desc string) {
	ProgressReset(-1, desc)
	mu.Lock()
	defer mu.Unlock()
	_ = Progress.RenderBlank()
}

func ProgressReset(max int, desc string) {
	mu.Lock()
	defer mu.Unlock()
	_ = Progress.Clear()
	Progress = progressCreate(max, desc)
	count = 0
}

func Add(n int) {
	mu.Lock()
	defer mu.Unlock()
	_ = Progress.Add(n)
	count += n
}

// Count is the progress added since the last reset.
func Count() int {
	mu.Lock()
	defer mu.Unlock()
	return count
}

func Describe(desc string) {
	mu.Lock()
	defer mu.Unlock()
	Progress.Describe(desc)
}

func Finish() {
	mu.Lock()
	defer mu.Unlock()
	_ = Progress.Finish()
}

func progressCreate(max int, desc string) *progressbar.ProgressBar {
	return progressbar.NewOptions(max,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription(desc),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]/[reset]",
			SaucerHead:    "[green]/[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
