package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"kani/internal/console"
	"kani/internal/provider"
)

var (
	flagSearchPage int
	flagSeasons    bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the catalog for series",
	Long: `Search prints the series matching a query. With --seasons the
argument is treated as a series path and its seasons are listed with
the feed ids usable with -s.`,
	Args: cobra.MinimumNArgs(1),
	RunE: searchRun,
}

func init() {
	searchCmd.Flags().IntVar(&flagSearchPage, "page", 0, "Result page offset")
	searchCmd.Flags().BoolVar(&flagSeasons, "seasons", false, "List the seasons of a series path instead of searching")
}

func searchRun(cmd *cobra.Command, args []string) error {
	sc := provider.NewSearchClient(client, cfg.Base)

	if flagSeasons {
		return listSeasons(sc, args[0])
	}

	query := strings.Join(args, " ")
	results, err := sc.Search(query, flagSearchPage)
	if err != nil {
		return fmt.Errorf("searching: %w", err)
	}
	if len(results) == 0 {
		console.Warnf("no series found for %q", query)
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Series", "Path"})
	for _, r := range results {
		t.AppendRow(table.Row{r.Name, r.URI})
	}
	t.Render()
	console.Infof("run %q to list feed ids", "kani search --seasons <path>")
	return nil
}

func listSeasons(sc *provider.SearchClient, seriesURI string) error {
	seasons, err := sc.Seasons(seriesURI, seriesURI)
	if err != nil {
		return fmt.Errorf("listing seasons: %w", err)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Season", "Feed ID"})
	for _, s := range seasons {
		id := fmt.Sprintf("%d", s.ShowID)
		if s.ShowID == 0 {
			id = "region locked"
		}
		t.AppendRow(table.Row{s.Title, id})
	}
	t.Render()
	return nil
}
