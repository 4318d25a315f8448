package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dukerupert/grocerylist/internal/feed"
)

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	var url string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import items from the remote list",
		Long: `Fetch the remote todo list and add every title not already on the list.

Existing items are never modified. If anything fails nothing is imported.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rootOpts.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if url == "" {
				url = s.cfg.ImportURL
			}
			client := feed.NewClient(feed.Config{URL: url, Timeout: s.cfg.ImportTimeout})
			importer := feed.NewImporter(client, s.store, s.logger.With("component", "import"))

			res, err := importer.Run(cmd.Context())
			if err != nil {
				return fail(s.out, err)
			}
			return s.out.Success(res, fmt.Sprintf("Imported %d of %d item(s); %d already listed",
				res.Inserted, res.Fetched, res.Skipped))
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "remote list URL (overrides import_url)")

	return cmd
}
