package present

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

// Spinner reports the outcome of a pending operation.
type Spinner interface {
	Success(msg string)
	Error(msg string)
}

type lineSpinner struct {
	p    *Presenter
	text string

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// Spinner starts a spinner with text. On a terminal it animates until
// Success or Error; otherwise it prints text once.
func (p *Presenter) Spinner(text string) Spinner {
	s := &lineSpinner{p: p, text: text, stop: make(chan struct{}), done: make(chan struct{})}
	if !p.animate {
		fmt.Fprintln(p.status, p.dim.Render(text))
		close(s.done)
		return s
	}
	go s.run(spinner.Dot)
	return s
}

func (s *lineSpinner) run(frames spinner.Spinner) {
	defer close(s.done)
	ticker := time.NewTicker(frames.FPS)
	defer ticker.Stop()

	for i := 0; ; i++ {
		frame := frames.Frames[i%len(frames.Frames)]
		fmt.Fprintf(s.p.status, "\r\033[K%s %s", frame, s.text)
		select {
		case <-s.stop:
			fmt.Fprint(s.p.status, "\r\033[K")
			return
		case <-ticker.C:
		}
	}
}

func (s *lineSpinner) finish(line string) {
	s.once.Do(func() {
		close(s.stop)
		<-s.done
		fmt.Fprintln(s.p.status, line)
	})
}

// Success stops the spinner with a check mark and msg, or the spinner text
// when msg is empty.
func (s *lineSpinner) Success(msg string) {
	if msg == "" {
		msg = s.text
	}
	s.finish(s.p.success.Render("✔ " + msg))
}

// Error stops the spinner with a cross and msg.
func (s *lineSpinner) Error(msg string) {
	if msg == "" {
		msg = s.text
	}
	s.finish(s.p.failure.Render("✖ " + msg))
}
