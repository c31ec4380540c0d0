package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/supercraft/internal/core"
	"github.com/valter-silva-au/supercraft/pkg/models"
)

// completeTaskIDs returns a completion function that lists task IDs,
// optionally filtered to exclude certain statuses.
func completeTaskIDs(excludeStatuses ...models.TaskStatus) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(_ *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if TaskMgr == nil || len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		tasks, err := TaskMgr.ListTasks(core.TaskFilter{})
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		exclude := make(map[models.TaskStatus]bool)
		for _, s := range excludeStatuses {
			exclude[s] = true
		}

		var ids []string
		for _, task := range tasks {
			if exclude[task.Status] {
				continue
			}
			if toComplete == "" || strings.HasPrefix(task.ID, toComplete) {
				// Title as description.
				ids = append(ids, task.ID+"\t"+string(task.Status)+": "+task.Title)
			}
		}

		return ids, cobra.ShellCompDirectiveNoFileComp
	}
}

// completeStatuses completes the four task statuses.
func completeStatuses(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	statuses := models.ValidStatuses()
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// completePriorities completes the three priorities.
func completePriorities(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{
		"high\tUrgent work",
		"medium\tDefault priority",
		"low\tCan wait",
	}, cobra.ShellCompDirectiveNoFileComp
}

// completeSnapshots lists snapshot file names, newest first.
func completeSnapshots(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if HistoryMgr == nil || len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	snaps, err := HistoryMgr.List(0)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	names := make([]string, len(snaps))
	for i, s := range snaps {
		names[i] = s.Name
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

// completeSpecs lists spec names.
func completeSpecs(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if SpecCatalog == nil || len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	specs, err := SpecCatalog.List("")
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	names := make([]string, len(specs))
	for i, s := range specs {
		names[i] = s.Name
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

// completeTemplates lists template names with their source.
func completeTemplates(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if TemplateCat == nil || len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	templates, err := TemplateCat.List()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	names := make([]string, len(templates))
	for i, t := range templates {
		names[i] = t.Name + "\t" + t.Source
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

// completeConfigKeys completes the first argument of config get/set.
func completeConfigKeys(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return core.SupportedConfigKeys(), cobra.ShellCompDirectiveNoFileComp
}
