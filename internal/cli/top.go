package cli

import (
	"fmt"
	"sort"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/zzeleznick/saaskit/internal/analytics"
	"github.com/zzeleznick/saaskit/internal/domain"
	"github.com/zzeleznick/saaskit/internal/rank"
	"github.com/zzeleznick/saaskit/internal/repository"
)

type rankedItem struct {
	item *domain.Item
	key  string
}

// NewTopCommand creates the top command: recompute every item's normalized
// score and print the ranking, best first.
func NewTopCommand(rootOpts *RootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "top",
		Short: "Recompute and print item rankings",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(rootOpts)
			if err != nil {
				return err
			}
			defer store.Close()

			clock := clockwork.NewRealClock()
			items := repository.NewItemRepo(store, clock, analytics.NopPublisher{})

			var all []*domain.Item
			cursor := ""
			for {
				page, next, err := items.List(cmd.Context(), domain.PageRequest{Cursor: cursor})
				if err != nil {
					return err
				}
				all = append(all, page...)
				if next == "" {
					break
				}
				cursor = next
			}

			now := clock.Now()
			ranked := make([]rankedItem, 0, len(all))
			for _, item := range all {
				ranked = append(ranked, rankedItem{
					item: item,
					key:  rank.ItemKey(item.Score, item.CreatedAt, now),
				})
			}
			sort.Slice(ranked, func(i, j int) bool {
				return ranked[i].key > ranked[j].key
			})

			if limit > 0 && len(ranked) > limit {
				ranked = ranked[:limit]
			}

			out := cmd.OutOrStdout()
			for i, r := range ranked {
				fmt.Fprintf(out, "%4d  %s  score=%-5d votes  %s  %s\n",
					i+1, r.key, r.item.Score, r.item.Title, r.item.URL)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "print at most this many items (0 = all)")
	return cmd
}
