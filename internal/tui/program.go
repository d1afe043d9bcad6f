package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/i474232898/weathervision/internal/controller"
	"github.com/i474232898/weathervision/internal/render"
)

// Run starts the dashboard and blocks until the user quits or ctx ends.
func Run(ctx context.Context, ctrl Controller, terminal render.Terminal) error {
	p := tea.NewProgram(NewModel(ctx, ctrl, terminal), tea.WithAltScreen(), tea.WithContext(ctx))
	ctrl.AddRenderer(controller.RendererFunc(func(v controller.View) {
		p.Send(viewMsg(v))
	}))
	_, err := p.Run()
	return err
}
