package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pageza/recipes-api/internal/client"
	"github.com/pageza/recipes-api/internal/logger"
	"github.com/pageza/recipes-api/internal/model"
	"github.com/pageza/recipes-api/internal/store"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		apiURL   string
		file     string
		replace  bool
		upsert   bool
		dryRun   bool
		logLevel string
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:          "seed_recipes",
		Short:        "Load recipes from a YAML file into a running recipes API",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, err := logger.NewWithOutput(cmd.ErrOrStderr(), logLevel, "text")
			if err != nil {
				return err
			}

			inputs, err := store.LoadSeed(file)
			if err != nil {
				return err
			}

			if dryRun {
				for _, in := range inputs {
					fmt.Fprintln(cmd.OutOrStdout(), describe(in))
				}
				return nil
			}

			c, err := client.New(apiURL, &http.Client{Timeout: timeout})
			if err != nil {
				return err
			}
			return seed(cmd.Context(), c, inputs, seedOptions{replace: replace, upsert: upsert}, log)
		},
	}

	cmd.Flags().StringVar(&apiURL, "url", "http://localhost:8080", "base URL of the recipes API")
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML seed file (built-in recipes when empty)")
	cmd.Flags().BoolVar(&replace, "replace", false, "delete every existing recipe first")
	cmd.Flags().BoolVar(&upsert, "upsert", false, "update recipes whose name already exists instead of adding duplicates")
	cmd.MarkFlagsMutuallyExclusive("replace", "upsert")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the recipes instead of sending them")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "per request timeout")

	return cmd
}

// recipeAPI is the part of client.Client used for seeding
type recipeAPI interface {
	List(ctx context.Context) ([]model.Recipe, error)
	Create(ctx context.Context, in model.RecipeInput) (*model.Recipe, error)
	Update(ctx context.Context, id string, in model.RecipeInput) error
	Delete(ctx context.Context, id string) error
}

type seedOptions struct {
	replace bool
	upsert  bool
}

func seed(ctx context.Context, api recipeAPI, inputs []model.RecipeInput, opts seedOptions, log logrus.FieldLogger) error {
	// name -> id of recipes already on the server, filled for upsert
	byName := map[string]string{}

	if opts.replace || opts.upsert {
		existing, err := api.List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list recipes: %w", err)
		}

		if opts.replace {
			for _, r := range existing {
				if err := api.Delete(ctx, r.ID); err != nil {
					return fmt.Errorf("failed to delete recipe %s: %w", r.ID, err)
				}
			}
			log.WithField("count", len(existing)).Info("deleted existing recipes")
		} else {
			for _, r := range existing {
				if _, ok := byName[r.Name]; !ok {
					byName[r.Name] = r.ID
				}
			}
		}
	}

	for i, in := range inputs {
		if in.Name != nil {
			if id, ok := byName[*in.Name]; ok {
				if err := api.Update(ctx, id, in); err != nil {
					return fmt.Errorf("failed to update recipe %d: %w", i, err)
				}
				log.WithFields(logrus.Fields{"id": id, "name": *in.Name}).Info("updated recipe")
				continue
			}
		}

		r, err := api.Create(ctx, in)
		if err != nil {
			return fmt.Errorf("failed to create recipe %d: %w", i, err)
		}
		log.WithFields(logrus.Fields{"id": r.ID, "name": r.Name}).Info("created recipe")
	}
	return nil
}

func describe(in model.RecipeInput) string {
	name := "<missing name>"
	if in.Name != nil {
		name = *in.Name
	}
	if in.Ingredients == nil {
		return name + ": <missing ingredients>"
	}
	return name + ": " + strings.Join(*in.Ingredients, ", ")
}
