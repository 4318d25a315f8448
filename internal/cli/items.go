package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dukerupert/grocerylist/internal/grocery"
	"github.com/dukerupert/grocerylist/internal/model"
)

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list [filter]",
		Short: "List items, newest first",
		Long: `List items on the grocery list, newest first.

With a filter only items whose name contains it are shown. The match is
case-insensitive for ASCII letters.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rootOpts.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			var filter string
			if len(args) == 1 {
				filter = args[0]
			}
			items, err := s.store.List(cmd.Context(), filter)
			if err != nil {
				return fail(s.out, err)
			}
			return s.out.Items(items)
		},
	}
}

type itemFlags struct {
	quantity int
	category string
}

func (f *itemFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.quantity, "quantity", "q", 1, "how many to buy")
	cmd.Flags().StringVarP(&f.category, "category", "c", "", "category label")
}

func (f *itemFlags) input(name string) model.ItemInput {
	in := model.ItemInput{Name: name, Quantity: f.quantity}
	if c := strings.TrimSpace(f.category); c != "" {
		in.Category = &c
	}
	return in
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		flags  itemFlags
		bought bool
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add an item",
		Long: `Add an item to the list.

Without --category the item is categorised from its name when
auto_categorize is enabled.

Example:
  grocerylist add "Greek yogurt" -q 2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rootOpts.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			in := flags.input(args[0])
			in.Bought = bought
			if in.Category == nil && s.cfg.AutoCategorize {
				c := grocery.Categorize(in.Name)
				in.Category = &c
			}

			id, err := s.store.Add(cmd.Context(), in)
			if err != nil {
				return fail(s.out, err)
			}
			item, err := s.store.Get(cmd.Context(), id)
			if err != nil {
				return fail(s.out, err)
			}
			return s.out.Success(item, "Added "+describe(item))
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&bought, "bought", false, "mark the item as already bought")

	return cmd
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	var flags itemFlags

	cmd := &cobra.Command{
		Use:   "update <id> <name>",
		Short: "Rename an item and set its quantity and category",
		Long: `Overwrite the name, quantity and category of an item.

The bought flag and creation time are left alone. An unknown id is not an
error; nothing is changed.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := rootOpts.formatter(cmd)
			id, err := parseID(args[0])
			if err != nil {
				return fail(out, err)
			}

			s, err := rootOpts.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.store.Update(cmd.Context(), id, flags.input(args[1])); err != nil {
				return fail(s.out, err)
			}
			return reportItem(s, cmd, id, "Updated")
		},
	}

	flags.register(cmd)

	return cmd
}

// NewToggleCommand creates the toggle command.
func NewToggleCommand(rootOpts *RootOptions) *cobra.Command {
	var current bool

	cmd := &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip the bought flag of an item",
		Long: `Flip the bought flag of an item.

With --current the item is set to the opposite of the given value, whatever
is stored. Without it the stored value is flipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := rootOpts.formatter(cmd)
			id, err := parseID(args[0])
			if err != nil {
				return fail(out, err)
			}

			s, err := rootOpts.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if cmd.Flags().Changed("current") {
				err = s.store.ToggleBought(cmd.Context(), id, current)
			} else {
				err = s.store.Flip(cmd.Context(), id)
			}
			if err != nil {
				return fail(s.out, err)
			}
			return reportItem(s, cmd, id, "Toggled")
		},
	}

	cmd.Flags().BoolVar(&current, "current", false, "bought value the caller currently sees")

	return cmd
}

// reportItem prints the item after a mutation, or a notice when id is unknown.
func reportItem(s *session, cmd *cobra.Command, id int64, verb string) error {
	item, err := s.store.Get(cmd.Context(), id)
	if err != nil {
		return fail(s.out, err)
	}
	if item == nil {
		return s.out.Success(nil, fmt.Sprintf("No item #%d; nothing changed.", id))
	}
	return s.out.Success(item, verb+" "+describe(item))
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := rootOpts.formatter(cmd)
			id, err := parseID(args[0])
			if err != nil {
				return fail(out, err)
			}

			s, err := rootOpts.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.store.Delete(cmd.Context(), id); err != nil {
				return fail(s.out, err)
			}
			return s.out.Success(map[string]int64{"deleted": id}, fmt.Sprintf("Deleted #%d", id))
		},
	}
}

// NewClearBoughtCommand creates the clear-bought command.
func NewClearBoughtCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-bought",
		Short: "Remove every bought item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rootOpts.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			n, err := s.store.ClearBought(cmd.Context())
			if err != nil {
				return fail(s.out, err)
			}
			return s.out.Success(map[string]int64{"cleared": n}, fmt.Sprintf("Cleared %d bought item(s)", n))
		},
	}
}

// NewSummaryCommand creates the summary command.
func NewSummaryCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Count items on the list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rootOpts.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			sum, err := s.store.Summary(cmd.Context())
			if err != nil {
				return fail(s.out, err)
			}
			return s.out.Success(sum, fmt.Sprintf("%d of %d bought", sum.Bought, sum.Total))
		},
	}
}
