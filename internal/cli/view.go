package cli

import (
	"fmt"
	"strings"
	"time"

	"cogentcore.org/core/math32"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/binpack3d/packview/pkg/document"
	"github.com/binpack3d/packview/pkg/engine"
	"github.com/binpack3d/packview/pkg/scene"
	"github.com/binpack3d/packview/pkg/scene/camera"
	"github.com/binpack3d/packview/pkg/scene/picking"
)

// viewCommand creates the view command for interactive terminal viewing.
func (c *CLI) viewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view [document.json]",
		Short: "Explore a packing document interactively",
		Long: `Explore a packing document interactively in the terminal.

Move the mouse over the item list to inspect items; the highlighted item is
the one the pointer picks in the 3D scene. Keys switch camera views:

  p  perspective    t  top    f  front    s  side
  u  toggle holding area    r  reset view    q  quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := document.ReadFile(args[0])
			if err != nil {
				return err
			}
			return c.runView(doc, args[0])
		},
	}
	return cmd
}

func (c *CLI) runView(doc *document.Document, path string) error {
	surface := engine.NewOffscreen()
	eng, err := engine.New(surface,
		engine.WithLogger(c.Logger),
		engine.WithSceneOptions(
			scene.WithCellSize(c.Config.Scene.CellSize),
			scene.WithItemsPerRow(c.Config.Scene.ItemsPerRow),
		),
	)
	if err != nil {
		return err
	}
	defer eng.Close()

	if mode, err := camera.ParseViewMode(c.Config.Camera.DefaultView); err == nil {
		eng.SetViewMode(mode)
	}
	eng.Submit(doc)
	eng.Step()

	m := newViewModel(eng, path)
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion()).Run()
	return err
}

// viewTickInterval paces scene updates while the viewer is open.
const viewTickInterval = 100 * time.Millisecond

type viewTickMsg time.Time

func viewTick() tea.Cmd {
	return tea.Tick(viewTickInterval, func(t time.Time) tea.Msg {
		return viewTickMsg(t)
	})
}

// itemRowTop is the terminal row where the first item row renders: two
// header lines, the hint line, a blank line, the status line, another blank
// line, and the table border plus header row precede it.
const itemRowTop = 8

// viewModel is the bubbletea model for the interactive viewer.
type viewModel struct {
	eng    *engine.Engine
	path   string
	width  int
	height int

	hoverIndex int
}

func newViewModel(eng *engine.Engine, path string) viewModel {
	return viewModel{eng: eng, path: path, hoverIndex: -1}
}

func (m viewModel) Init() tea.Cmd {
	return viewTick()
}

func (m viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case viewTickMsg:
		m.eng.Step()
		return m, viewTick()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionMotion {
			m = m.pointTo(msg.Y)
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "p":
			m.eng.SetViewMode(camera.Perspective)
		case "t":
			m.eng.SetViewMode(camera.Top)
		case "f":
			m.eng.SetViewMode(camera.Front)
		case "s":
			m.eng.SetViewMode(camera.Side)
		case "u":
			m.eng.ToggleHoldingArea()
		case "r":
			m.eng.ResetView()
		}
	}
	return m, nil
}

// pointTo maps a terminal row to an item and steers the engine's pointer to
// that item's scene position, so hover state flows through regular picking.
func (m viewModel) pointTo(row int) viewModel {
	frame := m.snapshot()
	if frame.Generation == nil {
		return m
	}
	idx := row - itemRowTop
	if idx < 0 || idx >= len(frame.Generation.Items) {
		if m.hoverIndex >= 0 {
			m.eng.PointerLeft()
			m.hoverIndex = -1
		}
		return m
	}
	if idx == m.hoverIndex {
		return m
	}
	m.hoverIndex = idx
	mesh := frame.Generation.Items[idx]
	if nx, ny, ok := picking.PointerFor(frame.Camera, mesh.Center, m.aspect()); ok {
		m.eng.PointerMoved(nx, ny)
	}
	return m
}

func (m viewModel) snapshot() engine.Frame {
	return m.eng.Snapshot()
}

func (m viewModel) aspect() float32 {
	return float32(engine.DefaultWidth) / float32(engine.DefaultHeight)
}

func (m viewModel) View() string {
	frame := m.snapshot()

	var b strings.Builder
	b.WriteString(StyleTitle.Render("Packview"))
	b.WriteString("  ")
	b.WriteString(StyleDim.Render(m.path))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("p/t/f/s views  u holding area  r reset  q quit"))
	b.WriteString("\n\n")

	gen := frame.Generation
	if gen == nil {
		b.WriteString(StyleDim.Render("waiting for scene..."))
		return b.String()
	}

	b.WriteString(m.statusLine(frame))
	b.WriteString("\n\n")
	b.WriteString(m.itemTable(gen, frame))
	b.WriteString("\n")
	b.WriteString(m.hoverPanel(frame))
	return b.String()
}

// statusLine summarizes the camera and document state.
func (m viewModel) statusLine(frame engine.Frame) string {
	gen := frame.Generation
	parts := []string{
		fmt.Sprintf("view %s", StyleHighlight.Render(frame.Camera.Mode.String())),
		fmt.Sprintf("%d packed", gen.Stats.PackedCount),
		fmt.Sprintf("%d unpacked", gen.Stats.UnpackedCount),
		fmt.Sprintf("%.1f%% utilization", gen.Stats.Utilization),
	}
	if d := gen.Diagnostics; d.SkippedItems > 0 {
		parts = append(parts, StyleWarning.Render(fmt.Sprintf("%d skipped", d.SkippedItems)))
	}
	return "  " + strings.Join(parts, StyleDim.Render(" · "))
}

// itemTable renders the item list with the hovered item highlighted.
func (m viewModel) itemTable(gen *scene.Generation, frame engine.Frame) string {
	hoverID := ""
	if frame.Hover != nil {
		hoverID = frame.Hover.ItemID
	}

	rows := make([][]string, 0, len(gen.Items))
	for _, mesh := range gen.Items {
		md, ok := gen.MetadataFor(mesh)
		if !ok {
			continue
		}
		status := "packed"
		if !md.Packed() {
			status = "unpacked"
		}
		dims := fmt.Sprintf("%g x %g x %g", md.Dimensions.X, md.Dimensions.Y, md.Dimensions.Z)
		rows = append(rows, []string{md.Name, md.ID, dims, status})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Item", "ID", "Size", "Status").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row >= 0 && row < len(rows) && rows[row][1] == hoverID {
				return lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
			}
			if row >= 0 && row < len(rows) && rows[row][3] == "unpacked" {
				return lipgloss.NewStyle().Foreground(colorYellow)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})
	return t.Render()
}

// hoverPanel describes the item currently under the pointer.
func (m viewModel) hoverPanel(frame engine.Frame) string {
	if frame.Hover == nil {
		return StyleDim.Render("  hover an item row to inspect it")
	}
	md := frame.Hover.Metadata
	var detail string
	if p, ok := md.Detail.(scene.Placed); ok {
		detail = fmt.Sprintf("position (%g, %g, %g)", p.Position.X, p.Position.Y, p.Position.Z)
		if p.Rotation != (math32.Vector3{}) {
			detail += fmt.Sprintf("  rotation (%g, %g, %g)", p.Rotation.X, p.Rotation.Y, p.Rotation.Z)
		}
	} else if u, ok := md.Detail.(scene.Unplaced); ok {
		detail = "not packed"
		if u.Reason != "" {
			detail = "not packed: " + u.Reason
		}
	}
	return fmt.Sprintf("  %s %s\n  %s",
		StyleHighlight.Render(md.Name),
		StyleDim.Render("("+md.ID+")"),
		StyleDim.Render(detail))
}
