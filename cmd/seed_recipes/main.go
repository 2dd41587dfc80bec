package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pageza/larder/backend/config"
	"github.com/pageza/larder/backend/internal/database"
	"github.com/pageza/larder/backend/internal/logging"
	"github.com/pageza/larder/backend/internal/metrics"
	"github.com/pageza/larder/backend/internal/model"
	"github.com/pageza/larder/backend/internal/realtime"
	"github.com/pageza/larder/backend/internal/service"
	"github.com/pageza/larder/backend/internal/store"
	"github.com/pageza/larder/backend/internal/types"
)

var (
	email    string
	password string
	withList bool
)

func ing(name, amount, unit string) types.IngredientInput {
	return types.IngredientInput{Name: name, Amount: types.Amount(amount), Unit: unit}
}

func ptr(s string) *string { return &s }

var sampleRecipes = []types.CreateRecipeRequest{
	{
		Name: "Buttermilk Pancakes",
		Ingredients: []types.IngredientInput{
			ing("flour", "2", "cup"),
			ing("buttermilk", "2", "cup"),
			ing("egg", "2", ""),
			ing("sugar", "2", "tbsp"),
			ing("butter", "3", "tbsp"),
		},
		Steps: []string{"Whisk the dry ingredients.", "Beat in buttermilk, eggs and melted butter.", "Cook on a hot griddle until golden."},
	},
	{
		Name:       "Weeknight Chili",
		SourceType: model.SourceURL,
		Source:     ptr("https://example.com/recipes/weeknight-chili"),
		Ingredients: []types.IngredientInput{
			ing("ground beef", "1", "lb"),
			ing("onion", "1", ""),
			ing("kidney beans", "2", "can"),
			ing("crushed tomatoes", "28", "oz"),
			ing("chili powder", "2", "tbsp"),
		},
		Steps: []string{"Brown the beef with the onion.", "Add the rest and simmer for 30 minutes."},
	},
	{
		Name: "Sunday Bread",
		Ingredients: []types.IngredientInput{
			ing("flour", "4", "cup"),
			ing("yeast", "2.25", "tsp"),
			ing("sugar", "1", "tbsp"),
			ing("butter", "2", "tbsp"),
			ing("salt", "2", "tsp"),
		},
		Steps: []string{"Proof the yeast.", "Knead for 10 minutes.", "Rise, shape and bake at 375F for 35 minutes."},
	},
}

var rootCmd = &cobra.Command{
	Use:          "seed_recipes",
	Short:        "Create sample recipes for a user, creating the user if needed",
	SilenceUsage: true,
	RunE:         seed,
}

func init() {
	rootCmd.Flags().StringVar(&email, "email", "cook@example.com", "account to seed")
	rootCmd.Flags().StringVar(&password, "password", "testpassword123", "password used when the account is created")
	rootCmd.Flags().BoolVar(&withList, "grocery-list", true, "also create a grocery list from the sample recipes")
}

func seed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if cfg.StoreBackend != config.StoreSQL || cfg.AuthProvider != config.AuthJWT {
		return fmt.Errorf("seeding needs STORE_BACKEND=%s and AUTH_PROVIDER=%s", config.StoreSQL, config.AuthJWT)
	}
	logger, err := logging.New(config.GetEnvironment(), cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	db, err := database.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if err := database.RunMigrations(ctx, db, logger); err != nil {
		return err
	}

	auth := service.NewAuthService(db, cfg.JWTSecret)
	user, _, err := auth.Register(ctx, email, password)
	switch {
	case errors.Is(err, service.ErrEmailTaken):
		if user, err = model.GetUserByEmail(db, email); err != nil {
			return fmt.Errorf("failed to load user %s: %w", email, err)
		}
		logger.Info("seeding existing user", zap.String("email", user.Email))
	case err != nil:
		return err
	default:
		logger.Info("created user", zap.String("email", user.Email), zap.String("uid", user.ID))
	}

	// Seeded documents are not announced to running API instances.
	docs := store.NewSQLStore(db, realtime.NewHub(), logger)
	m := metrics.New()
	recipes := service.NewRecipeService(docs, logger, m)
	lists := service.NewGroceryListService(docs, logger, m)

	ids := make([]string, 0, len(sampleRecipes))
	for _, req := range sampleRecipes {
		r, err := recipes.Create(ctx, user.ID, req)
		if err != nil {
			return fmt.Errorf("failed to create recipe %q: %w", req.Name, err)
		}
		ids = append(ids, r.ID)
		fmt.Fprintf(cmd.OutOrStdout(), "created recipe %s (%s)\n", r.Name, r.ID)
	}

	if withList {
		list, err := lists.CreateFromRecipes(ctx, user.ID, "Sample shopping", ids)
		if err != nil {
			return fmt.Errorf("failed to create grocery list: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created grocery list %s with %d items\n", list.Name, len(list.Items))
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
