package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/netscale-tools/bgpmap/pkg/pipeline"
	"github.com/netscale-tools/bgpmap/pkg/render"
	"github.com/netscale-tools/bgpmap/pkg/topology"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// eventsCommand creates the events command for replaying an edit log.
func (c *CLI) eventsCommand() *cobra.Command {
	var (
		output     string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "events [topology.json] [events.json]",
		Short: "Replay an edit-event log interactively",
		Long: `Replay an edit-event log interactively.

The events command applies a recorded edit log (the JSON array returned by
GET /api/events) on top of a base topology and opens a time-travel view:
arrow keys scrub through the log, and every step shows the topology as it
stood after that prefix of events. Press enter to export the layout of the
selected step.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEvents(cmd.Context(), args[0], args[1], output, configPath)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "layout file written for the step selected with enter")
	cmd.Flags().StringVar(&configPath, "config", "", "TOML file with layout engine overrides")

	return cmd
}

// runEvents precomputes one layout per log prefix and opens the TUI.
func (c *CLI) runEvents(ctx context.Context, input, logPath, output, configPath string) error {
	doc, err := topology.ReadDocumentFile(input)
	if err != nil {
		return fmt.Errorf("load topology %s: %w", input, err)
	}

	events, err := readEventLog(logPath)
	if err != nil {
		return fmt.Errorf("load event log %s: %w", logPath, err)
	}

	runner, err := c.newRunner(doc, configPath)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Replaying %d events...", len(events)))
	spinner.Start()

	for _, ev := range events {
		if _, err := runner.ApplyEdit(ctx, ev); err != nil {
			spinner.StopWithError("Replay failed")
			return fmt.Errorf("apply event %s: %w", ev.ID, err)
		}
	}

	frames := make([]eventFrame, 0, len(events)+1)
	for n := 0; n <= len(events); n++ {
		res, err := runner.Replay(ctx, n)
		if err != nil {
			spinner.StopWithError("Replay failed")
			return fmt.Errorf("replay step %d: %w", n, err)
		}
		frames = append(frames, eventFrame{stats: res.Stats, layout: res.Layout})
	}
	spinner.Stop()

	model := newReplayModel(events, frames)
	final, err := tea.NewProgram(model, tea.WithContext(ctx)).Run()
	if err != nil {
		return fmt.Errorf("event view: %w", err)
	}

	m, ok := final.(replayModel)
	if !ok || !m.selected || output == "" {
		return nil
	}
	if err := render.WriteLayoutFile(frames[m.cursor].layout, output); err != nil {
		return fmt.Errorf("write layout: %w", err)
	}
	printSuccess("Exported step %d", m.cursor)
	printFile(output)
	return nil
}

// readEventLog parses the JSON event array produced by the serve API.
func readEventLog(path string) ([]pipeline.Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var events []pipeline.Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// =============================================================================
// ReplayModel - Interactive event time-travel
// =============================================================================

// eventFrame is the precomputed layout of one log prefix.
type eventFrame struct {
	stats  pipeline.Stats
	layout render.Layout
}

// replayModel is the bubbletea model for scrubbing through the event log.
// Cursor n shows the topology after the first n events; 0 is the base.
type replayModel struct {
	events   []pipeline.Event
	frames   []eventFrame
	cursor   int
	selected bool
	height   int
	offset   int
}

// newReplayModel creates a replay model positioned at the newest step.
func newReplayModel(events []pipeline.Event, frames []eventFrame) replayModel {
	return replayModel{
		events: events,
		frames: frames,
		cursor: len(frames) - 1,
		height: 15,
	}
}

func (m replayModel) Init() tea.Cmd {
	return nil
}

func (m replayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k", "left", "h":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j", "right", "l":
			if m.cursor < len(m.frames)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case "home", "g":
			m.cursor, m.offset = 0, 0
		case "end", "G":
			m.cursor = len(m.frames) - 1
			if m.cursor >= m.offset+m.height {
				m.offset = m.cursor - m.height + 1
			}
		case "enter":
			m.selected = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 8
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

func (m replayModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Event Replay"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ scrub  ⏎ export  q quit"))
	b.WriteString("\n\n")

	end := m.offset + m.height
	if end > len(m.frames) {
		end = len(m.frames)
	}

	rows := [][]string{}
	for i := m.offset; i < end; i++ {
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}

		step := strconv.Itoa(i)
		kind := "—"
		detail := "base document"
		at := ""
		if i > 0 {
			ev := m.events[i-1]
			kind = string(ev.Kind)
			detail = ev.String()
			at = ev.At.Format("15:04:05")
		}
		rows = append(rows, []string{cursor, step, kind, detail, at})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Step", "Kind", "Event", "At").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.offset+row == m.cursor {
				return listSelectedStyle
			}
			return lipgloss.NewStyle().Foreground(colorGray)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")

	f := m.frames[m.cursor]
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  step %d/%d · %d nodes · %d edges",
		m.cursor, len(m.frames)-1, f.stats.NodeCount, f.stats.EdgeCount)))

	return b.String()
}
