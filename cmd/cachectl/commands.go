package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	config "github.com/avatarctic/quantum-studio/configs"
	"github.com/avatarctic/quantum-studio/internal/infrastructure/cache"
)

var errMiss = errors.New("key not found")

// cli carries the backend shared by every subcommand.
type cli struct {
	out     io.Writer
	logger  *logrus.Logger
	cfg     config.CacheConfig
	backend *cache.Backend
}

// newRootCmd builds the command tree. A nil cfg loads settings from the environment.
func newRootCmd(out io.Writer, cfg *config.CacheConfig) *cobra.Command {
	c := &cli{out: out, logger: logrus.New()}
	c.logger.SetOutput(io.Discard)
	var (
		redisURL string
		prefix   string
		verbose  bool
	)

	root := &cobra.Command{
		Use:          "cachectl",
		Short:        "Inspect and maintain the Quantum Studio cache",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfg != nil {
				c.cfg = *cfg
			} else {
				loaded, err := config.Load()
				if err != nil {
					return fmt.Errorf("failed to load configuration: %w", err)
				}
				c.cfg = loaded.Cache
			}
			if cmd.Flags().Changed("redis-url") {
				c.cfg.RedisURL = redisURL
			}
			if cmd.Flags().Changed("prefix") {
				c.cfg.KeyPrefix = prefix
			}
			if verbose {
				c.logger.SetOutput(cmd.ErrOrStderr())
				c.logger.SetLevel(logrus.DebugLevel)
			}
			c.backend = cache.NewBackend(&c.cfg, c.logger)
			if c.backend.Backend() == "memory" {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: no REDIS_URL configured; operating on an empty in-process cache")
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if c.backend == nil {
				return nil
			}
			return c.backend.Close()
		},
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&redisURL, "redis-url", "", "redis URL (overrides REDIS_URL)")
	root.PersistentFlags().StringVar(&prefix, "prefix", "", "key prefix (overrides CACHE_KEY_PREFIX)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log backend diagnostics to stderr")

	root.AddCommand(c.getCmd(), c.setCmd(), c.delCmd(), c.existsCmd(), c.flushCmd())
	return root
}

func (c *cli) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print the JSON stored under key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, ok, err := c.backend.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%s: %w", args[0], errMiss)
			}
			_, err = fmt.Fprintln(c.out, string(raw))
			return err
		},
	}
}

func (c *cli) setCmd() *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "set <key> <json>",
		Short: "Store a JSON value under key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			value := []byte(args[1])
			if !json.Valid(value) {
				return fmt.Errorf("value for %s is not valid JSON", args[0])
			}
			if ttl <= 0 {
				ttl = c.cfg.DefaultTTL
			}
			if err := c.backend.Set(cmd.Context(), args[0], value, ttl); err != nil {
				return err
			}
			_, err := fmt.Fprintln(c.out, "OK")
			return err
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "expiry (defaults to CACHE_DEFAULT_TTL)")
	return cmd
}

func (c *cli) delCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "del <key>...",
		Short: "Delete keys and print how many existed",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var removed int64
			for _, key := range args {
				n, err := c.backend.Delete(cmd.Context(), key)
				if err != nil {
					return fmt.Errorf("delete %s: %w", key, err)
				}
				removed += n
			}
			_, err := fmt.Fprintln(c.out, removed)
			return err
		},
	}
}

func (c *cli) existsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exists <key>",
		Short: "Print whether key holds an unexpired entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := c.backend.Exists(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(c.out, ok)
			return err
		},
	}
}

func (c *cli) flushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "flush",
		Short: "Remove every entry (only prefixed keys when a prefix is set)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.backend.FlushAll(cmd.Context()); err != nil {
				return err
			}
			_, err := fmt.Fprintln(c.out, "OK")
			return err
		},
	}
}
