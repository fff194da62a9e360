package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/powertray/powertray/internal/api"
	"github.com/powertray/powertray/internal/client"
	"github.com/powertray/powertray/internal/daemon"
	"github.com/powertray/powertray/internal/powerplan"
)

// apiClient builds a client for the daemon address in the config.
func apiClient() (*client.Client, error) {
	cfg, err := daemon.LoadConfig()
	if err != nil {
		return nil, err
	}
	return client.New(cfg.API.Host, cfg.API.Port), nil
}

// daemonPlans fetches the plan list from a running daemon, or reads
// the OS directly when none is up. The bool reports whether a daemon
// answered, so callers know which path mutations must take.
func daemonPlans(ctx context.Context) ([]api.PlanEntry, *client.Client, error) {
	c, err := apiClient()
	if err != nil {
		return nil, nil, err
	}
	if c.Ping(ctx) {
		plans, err := c.Plans(ctx)
		return plans, c, err
	}

	dir := powerplan.System()
	plans, err := dir.ListPlans()
	if err != nil {
		return nil, nil, err
	}
	active, _ := dir.ActivePlan()
	var entries []api.PlanEntry
	for _, p := range plans {
		entries = append(entries, api.PlanEntry{Plan: p, Active: p.ID == active})
	}
	return entries, nil, nil
}

// resolvePlan matches arg against the plan list: a 1-based position, a
// plan identifier, or a case-insensitive name prefix.
func resolvePlan(plans []api.PlanEntry, arg string) (uuid.UUID, error) {
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(plans) {
			return uuid.Nil, fmt.Errorf("plan position %d out of range (1-%d)", n, len(plans))
		}
		return plans[n-1].ID, nil
	}
	if id, err := uuid.Parse(arg); err == nil {
		return id, nil
	}

	var matches []api.PlanEntry
	lower := strings.ToLower(arg)
	for _, p := range plans {
		name := strings.ToLower(p.Name)
		if name == lower {
			return p.ID, nil
		}
		if strings.HasPrefix(name, lower) {
			matches = append(matches, p)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0].ID, nil
	case 0:
		return uuid.Nil, fmt.Errorf("no plan matches %q", arg)
	default:
		var names []string
		for _, p := range matches {
			names = append(names, p.Name)
		}
		return uuid.Nil, fmt.Errorf("%q is ambiguous: %s", arg, strings.Join(names, ", "))
	}
}

func checkmark(b bool) string {
	if b {
		return "*"
	}
	return " "
}
