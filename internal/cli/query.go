package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/sqlstash/sqlstash/internal/cache"
	"github.com/sqlstash/sqlstash/internal/table"
	"github.com/sqlstash/sqlstash/internal/warehouse"
)

// newQueryCmd creates the "query" command: the read-through path. The query
// is served from a fresh cache entry when possible, otherwise executed
// against the configured warehouse and cached.
func newQueryCmd() *cobra.Command {
	var (
		maxAge  string
		refresh bool
		noCache bool
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "query <sql>",
		Short: "Run a query through the result cache",
		Args:  cobra.ExactArgs(1),
		Example: `  sqlstash query "SELECT * FROM trades LIMIT 100"
  sqlstash query --max-age 1h "SELECT * FROM curves"
  sqlstash query --refresh "SELECT * FROM curves"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cfg, err := openStore(cmd)
			if err != nil {
				return err
			}

			user, token, err := warehouse.LoadCredentials()
			if err != nil {
				return err
			}
			exec, err := warehouse.NewClient(warehouse.Config{
				Host:   cfg.Warehouse.Host,
				Port:   cfg.Warehouse.Port,
				UseTLS: cfg.Warehouse.UseTLS,
				User:   user,
				Token:  token,
			}, logger)
			if err != nil {
				return err
			}

			var tbl *table.Table
			if noCache {
				tbl, err = exec.Execute(cmd.Context(), args[0])
			} else {
				mopts := []cache.ManagerOption{
					cache.WithDefaultMaxAge(time.Duration(cfg.MaxAge)),
					cache.WithLogger(logger),
				}
				if cfg.StaleFallback {
					mopts = append(mopts, cache.WithStaleFallback())
				}
				mgr := cache.NewManager(store, exec, mopts...)

				var qopts []cache.QueryOption
				if maxAge != "" {
					var d time.Duration
					if d, err = cache.ParseMaxAge(maxAge); err != nil {
						return err
					}
					qopts = append(qopts, cache.WithMaxAge(d))
				}
				if refresh {
					qopts = append(qopts, cache.WithForceRefresh())
				}
				tbl, err = mgr.GetData(cmd.Context(), args[0], qopts...)
			}
			if err != nil {
				return err
			}

			return renderTable(cmd.OutOrStdout(), tbl, limit)
		},
	}

	cmd.Flags().StringVar(&maxAge, "max-age", "", "freshness threshold for the cached entry (e.g. 1h, 2d; default from config)")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "skip the freshness check and always re-execute")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the cache entirely (no read, no write)")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum rows to print (0 = all)")

	return cmd
}
