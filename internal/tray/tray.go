// Package tray models the notification-area surface: the tooltip text
// and the context menu with its checkmarks. Rendering pixels is a
// platform front-end concern; the daemon owns the model and hands it
// to a Surface implementation and to the control API, so any front-end
// can draw it.
package tray

import (
	"strconv"

	"github.com/google/uuid"

	"github.com/powertray/powertray/internal/afk"
	"github.com/powertray/powertray/internal/powerplan"
)

// DefaultTooltip is shown when the active plan cannot be resolved.
const DefaultTooltip = "Power Plans"

// Menu command identifiers. Arg carries the plan ID or the timeout in
// minutes where a command needs one.
const (
	CmdSelectPlan = "select-plan"
	CmdAfkOff     = "afk-off"
	CmdAfkTimeout = "afk-timeout"
	CmdAfkTarget  = "afk-target"
	CmdStartup    = "toggle-startup"
	CmdRefresh    = "refresh"
	CmdExit       = "exit"
)

// Item is one menu entry.
type Item struct {
	Label     string `json:"label,omitempty"`
	Command   string `json:"command,omitempty"`
	Arg       string `json:"arg,omitempty"`
	Checked   bool   `json:"checked,omitempty"`
	Separator bool   `json:"separator,omitempty"`
	Children  []Item `json:"children,omitempty"`
}

// Model is a complete snapshot of the user-visible surface state.
type Model struct {
	Tooltip string `json:"tooltip"`
	Items   []Item `json:"items"`
}

// Surface receives model updates. Update is always called from the
// daemon's event loop, never concurrently.
type Surface interface {
	Update(Model)
}

// Nop is a Surface that discards updates.
type Nop struct{}

func (Nop) Update(Model) {}

// Tooltip resolves the tooltip text for the active plan, falling back
// to DefaultTooltip when the plan is unknown or the query failed.
func Tooltip(plans []powerplan.Plan, active uuid.UUID) string {
	if name, ok := powerplan.NameOf(plans, active); ok {
		return name
	}
	return DefaultTooltip
}

// BuildModel renders the menu in the same order the original tray
// used: plans first, then the AFK submenu, refresh, the startup
// toggle, and exit at the end.
func BuildModel(plans []powerplan.Plan, active uuid.UUID, cfg afk.Config, startupEnabled bool) Model {
	m := Model{Tooltip: Tooltip(plans, active)}

	for _, p := range plans {
		m.Items = append(m.Items, Item{
			Label:   p.Name,
			Command: CmdSelectPlan,
			Arg:     p.ID.String(),
			Checked: p.ID == active,
		})
	}
	m.Items = append(m.Items, Item{Separator: true})

	m.Items = append(m.Items, Item{
		Label: "AFK",
		Children: []Item{
			{Label: "Switch after", Children: timeoutItems(cfg)},
			{Label: "Switch to", Children: targetItems(plans, cfg)},
		},
	})

	m.Items = append(m.Items,
		Item{Label: "Refresh", Command: CmdRefresh},
		Item{Label: "Start at login", Command: CmdStartup, Checked: startupEnabled},
		Item{Separator: true},
		Item{Label: "Exit", Command: CmdExit},
	)
	return m
}

func timeoutItems(cfg afk.Config) []Item {
	items := make([]Item, 0, len(afk.TimeoutOptions))
	for _, minutes := range afk.TimeoutOptions {
		it := Item{
			Checked: cfg.TimeoutMinutes == minutes,
		}
		if minutes == 0 {
			it.Label = "Off"
			it.Command = CmdAfkOff
		} else {
			it.Label = timeoutLabel(minutes)
			it.Command = CmdAfkTimeout
			it.Arg = strconv.Itoa(minutes)
		}
		items = append(items, it)
	}
	return items
}

func timeoutLabel(minutes int) string {
	if minutes == 1 {
		return "1 minute"
	}
	return strconv.Itoa(minutes) + " minutes"
}

func targetItems(plans []powerplan.Plan, cfg afk.Config) []Item {
	items := make([]Item, 0, len(plans))
	for _, p := range plans {
		items = append(items, Item{
			Label:   p.Name,
			Command: CmdAfkTarget,
			Arg:     p.ID.String(),
			Checked: p.ID == cfg.TargetPlan,
		})
	}
	return items
}
