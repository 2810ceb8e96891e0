package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/indexlog/internal/changelog"
	"github.com/manav03panchal/indexlog/internal/model"
	"github.com/manav03panchal/indexlog/internal/runtime"
)

type completionFunc = func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective)

// fixedCompletions completes from a fixed list of values.
func fixedCompletions(values ...string) completionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return filterPrefix(values, toComplete), cobra.ShellCompDirectiveNoFileComp
	}
}

// completeKinds completes change kinds, one entry of a comma-separated list.
func completeKinds(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var values []string
	for _, k := range model.Kinds {
		values = append(values, string(k)+"\t"+changelog.FormatKind(k))
	}
	return completeListItem(values, toComplete), cobra.ShellCompDirectiveNoFileComp
}

// completeCategories completes change categories.
func completeCategories(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var values []string
	for _, c := range changelog.Categories {
		values = append(values, string(c))
	}
	return completeListItem(values, toComplete), cobra.ShellCompDirectiveNoFileComp
}

// completeDeltaTypes suggests delta type tags, comma-list aware.
func completeDeltaTypes(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return completeListItem(model.DeltaTypes, toComplete), cobra.ShellCompDirectiveNoFileComp
}

// completeTimes suggests relative periods for --since and --until.
func completeTimes(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	periods := []string{
		"today\tsince midnight",
		"yesterday\tall of yesterday",
		"this hour",
		"last hour",
		"this week",
		"last week",
		"this month",
	}
	return filterPrefix(periods, toComplete), cobra.ShellCompDirectiveNoFileComp
}

// completeExportIDs completes archived export IDs. The archive is opened
// read-only for the duration of the completion.
func completeExportIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	c := ctx
	if c == nil {
		var err error
		c, err = runtime.New(runtime.DefaultOptions())
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		defer c.Close()
	}

	repo, err := c.Exports()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	docs, err := repo.List()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var completions []string
	for _, d := range docs {
		if strings.HasPrefix(d.ID, toComplete) {
			desc := d.ExportedAt.Format("2006-01-02 15:04")
			if d.Structure != "" {
				desc += " " + d.Structure
			}
			completions = append(completions, d.ID+"\t"+desc)
		}
	}
	return completions, cobra.ShellCompDirectiveNoFileComp
}

// completeListItem completes the last item of a comma-separated value.
func completeListItem(values []string, toComplete string) []string {
	head := ""
	last := toComplete
	if i := strings.LastIndex(toComplete, ","); i >= 0 {
		head = toComplete[:i+1]
		last = toComplete[i+1:]
	}

	var completions []string
	for _, v := range filterPrefix(values, last) {
		completions = append(completions, head+v)
	}
	return completions
}

func filterPrefix(values []string, prefix string) []string {
	var filtered []string
	for _, v := range values {
		if strings.HasPrefix(strings.Split(v, "\t")[0], prefix) {
			filtered = append(filtered, v)
		}
	}
	return filtered
}
