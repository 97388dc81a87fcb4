package main

import (
	"errors"
	"fmt"

	"devconnect/internal/auth"
	"devconnect/internal/bootstrap"
	"devconnect/internal/cache"
	"devconnect/internal/models"
	"devconnect/internal/repository"
	"devconnect/internal/seed"
	"devconnect/internal/service"

	"github.com/spf13/cobra"
)

var seedOpts = seed.DefaultOptions()

var seedCmd = &cobra.Command{
	Use:               "seed",
	Short:             "Fill the store with demo accounts, profiles and posts",
	PersistentPreRunE: loadConfig,
	RunE:              runSeed,
}

var purgeAccountCmd = &cobra.Command{
	Use:               "purge-account <account-id>",
	Short:             "Delete an account with its profile and posts",
	Args:              cobra.ExactArgs(1),
	PersistentPreRunE: loadConfig,
	RunE:              runPurgeAccount,
}

var mintTokenCmd = &cobra.Command{
	Use:               "mint-token <account-id>",
	Short:             "Issue a token for an existing account",
	Args:              cobra.ExactArgs(1),
	PersistentPreRunE: loadConfig,
	RunE:              runMintToken,
}

func init() {
	f := seedCmd.Flags()
	f.IntVar(&seedOpts.Accounts, "accounts", seedOpts.Accounts, "Number of demo accounts")
	f.IntVar(&seedOpts.PostsPerAccount, "posts", seedOpts.PostsPerAccount, "Posts per account")
	f.IntVar(&seedOpts.CommentsPerPost, "comments", seedOpts.CommentsPerPost, "Comments per post")
	f.IntVar(&seedOpts.MaxDays, "max-days", seedOpts.MaxDays, "Spread post dates over this many days")
	f.StringVar(&seedOpts.Password, "password", seedOpts.Password, "Password for every demo account")
	f.StringVar(&seedOpts.FixturesPath, "fixtures", "", "YAML fixture file overriding the built-in lists")
	f.Int64Var(&seedOpts.Seed, "seed", 0, "Random seed for repeatable data (0 picks one)")
	f.BoolVar(&seedOpts.Force, "force", false, "Seed even when the store already has content")
}

func runSeed(cmd *cobra.Command, _ []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	store, err := bootstrap.OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close(ctx)

	res, err := seed.Demo(ctx, store, seedOpts)
	if err != nil {
		return err
	}
	if res.Skipped {
		fmt.Fprintln(cmd.OutOrStdout(), "store already has content; use --force to seed anyway")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d accounts, %d profiles, %d posts, %d comments, %d likes\n",
		res.Accounts, res.Profiles, res.Posts, res.Comments, res.Likes)
	return nil
}

func runPurgeAccount(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	rt, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{})
	if err != nil {
		return err
	}
	defer rt.Close(ctx)

	id := models.CanonicalID(args[0])
	store := rt.Store.WithCache(cache.New(rt.Redis))
	if _, err := store.Accounts.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("account %s not found", id)
		}
		return err
	}

	if err := service.NewProfileService(store, rt.Events).DeleteAccountCascade(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "account %s purged\n", id)
	return nil
}

func runMintToken(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	store, err := bootstrap.OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close(ctx)

	id := models.CanonicalID(args[0])
	account, err := store.Accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("account %s not found", id)
		}
		return err
	}

	token, err := auth.NewTokenManager(cfg, nil).Issue(account.ID)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
