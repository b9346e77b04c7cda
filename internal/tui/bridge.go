package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/tuidispatch/runtime"
)

// Program is the part of *tea.Program the bridge uses.
type Program interface {
	Send(msg tea.Msg)
}

// Attach re-renders state after every changed cycle of rt and delivers the
// frame to p. Rendering happens on the dispatch goroutine, so render may
// read state freely.
func Attach[S, A, E any](rt *runtime.Runtime[S, A, E], p Program, render func(*S) Frame) {
	rt.OnChange(func(s *S) {
		p.Send(FrameMsg(render(s)))
	})
}
