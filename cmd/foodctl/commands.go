package main

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/spf13/cobra"

	"github.com/pageza/foodtracking/backend/internal/app"
	"github.com/pageza/foodtracking/backend/internal/model"
	"github.com/pageza/foodtracking/backend/internal/service"
)

var nowFunc = time.Now

// Loader builds the application for commands that need storage.
type Loader func(ctx context.Context) (*app.App, error)

// RootCommand creates and returns the root command
func RootCommand(load Loader) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "foodctl",
		Short:         "foodctl inspects and maintains the food diary backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		goalsCommand(),
		summaryCommand(load),
		syncCommand(load),
		tokenCommand(load),
	)
	return rootCmd
}

func withApp(cmd *cobra.Command, load Loader, fn func(a *app.App) error) error {
	a, err := load(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func goalsCommand() *cobra.Command {
	profile := model.DefaultPhysicalProfile()
	var activity string

	cmd := &cobra.Command{
		Use:   "goals",
		Short: "Compute daily targets for a physical profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := model.ParseActivityLevel(activity)
			if err != nil {
				return err
			}
			profile.Activity = level
			if err := service.ValidateProfile(profile); err != nil {
				return err
			}

			b := service.ComputeGoals(profile)
			goal := service.GoalProfileFor(profile)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "BMR: %.0f kcal\nTDEE: %d kcal (%s)\n", b.BMR, goal.TDEE, level.Label())
			label := "Surplus"
			if goal.IsLosingWeight {
				label = "Deficit"
			}
			fmt.Fprintf(out, "%s: %.0f kcal/day\n", label, math.Abs(goal.DailyDeficit))
			fmt.Fprintf(out, "Calories: %d\nProtein: %dg\nCarbs: %dg\nFat: %dg\n", b.Calories, b.Proteins, b.Carbs, b.Fats)
			return nil
		},
	}

	defaults := model.DefaultPhysicalProfile()
	cmd.Flags().IntVar(&profile.Age, "age", defaults.Age, "Age in years")
	cmd.Flags().Float64Var(&profile.WeightKg, "weight", defaults.WeightKg, "Current weight in kg")
	cmd.Flags().Float64Var(&profile.TargetWeightKg, "target", defaults.TargetWeightKg, "Target weight in kg")
	cmd.Flags().IntVar(&profile.WeeksToGoal, "weeks", defaults.WeeksToGoal, "Weeks to reach the target")
	cmd.Flags().BoolVar(&profile.IsMale, "male", defaults.IsMale, "Use the male BMR formula")
	cmd.Flags().StringVar(&activity, "activity", string(defaults.Activity), "Activity level (sedentary, light, moderate, active, very_active)")
	return cmd
}

func summaryCommand(load Loader) *cobra.Command {
	var dateFlag string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show a day's totals against the daily limits",
		RunE: func(cmd *cobra.Command, args []string) error {
			var date model.Date
			if dateFlag != "" {
				d, err := model.ParseDate(dateFlag)
				if err != nil {
					return fmt.Errorf("invalid --date: %w", err)
				}
				date = d
			}
			return withApp(cmd, load, func(a *app.App) error {
				if date.IsZero() {
					date = model.DateOf(nowFunc())
				}
				ctx := cmd.Context()
				summary, err := a.Entries.Summary(ctx, date)
				if err != nil {
					return err
				}
				limits, err := a.Settings.Limits(ctx)
				if err != nil {
					return err
				}
				p := service.ProgressAgainst(summary, limits)

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Date: %s\n", date)
				fmt.Fprintf(out, "Calories: %d / %d (%.0f%%)\n", summary.TotalCalories, limits.Calories, p.Calories*100)
				fmt.Fprintf(out, "Protein: %.1f / %.0fg (%.0f%%)\n", summary.TotalProteins, limits.Proteins, p.Proteins*100)
				fmt.Fprintf(out, "Carbs: %.1f / %.0fg (%.0f%%)\n", summary.TotalCarbs, limits.Carbs, p.Carbs*100)
				fmt.Fprintf(out, "Fat: %.1f / %.0fg (%.0f%%)\n", summary.TotalFats, limits.Fats, p.Fats*100)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&dateFlag, "date", "", "Day to summarize (YYYY-MM-DD, default today)")
	return cmd
}

func syncCommand(load Loader) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Reconcile recent entries with the health store",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, load, func(a *app.App) error {
				result := a.Sync.SyncRecent(cmd.Context())
				fmt.Fprintln(cmd.OutOrStdout(), result.Message())
				return result.Err
			})
		},
	}
}

func tokenCommand(load Loader) *cobra.Command {
	return &cobra.Command{
		Use:   "token <client-id>",
		Short: "Issue a bearer token for an API client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, load, func(a *app.App) error {
				token, err := a.Tokens.Issue(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), token)
				return nil
			})
		},
	}
}
