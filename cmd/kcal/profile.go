package kcal

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/hovosukiasyan/calorie-tracker/internal/energy"
	"github.com/hovosukiasyan/calorie-tracker/internal/model"
	"github.com/hovosukiasyan/calorie-tracker/internal/render"
	"github.com/hovosukiasyan/calorie-tracker/internal/service"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage your body profile and calorie target",
}

var (
	profileSex      string
	profileAge      int
	profileHeight   float64
	profileWeight   float64
	profileActivity string
	profileGoal     string
	profilePace     float64
	profileJSON     bool
)

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Create or update the profile (BMR, TDEE and target are recomputed)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sqlx.DB) error {
			existing, err := service.GetProfile(sqldb)
			if err != nil {
				return err
			}
			body, err := profileBodyFromFlags(cmd, existing)
			if err != nil {
				return err
			}
			p, err := service.SaveProfile(sqldb, body)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Saved profile")
			printProfile(cmd, p)
			return nil
		})
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the profile and its derived values",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sqlx.DB) error {
			p, err := service.RequireProfile(sqldb)
			if err != nil {
				return err
			}
			if profileJSON {
				return printJSON(cmd.OutOrStdout(), p)
			}
			printProfile(cmd, p)
			return nil
		})
	},
}

var (
	deficitGoalKg          float64
	deficitKcalPerKg       float64
	deficitUseTargetChange bool
	deficitTargetBefore    int
	deficitTargetAfter     int
	deficitChangeDay       int
)

var profileDeficitCmd = &cobra.Command{
	Use:   "deficit",
	Short: "Show or update deficit tracking settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sqlx.DB) error {
			p, err := service.RequireProfile(sqldb)
			if err != nil {
				return err
			}
			s := p.Deficit
			changed := 0
			flags := cmd.Flags()
			if flags.Changed("goal-kg") {
				s.GoalKg = deficitGoalKg
				changed++
			}
			if flags.Changed("kcal-per-kg") {
				s.KcalPerKg = deficitKcalPerKg
				changed++
			}
			if flags.Changed("use-target-change") {
				s.UseTargetChange = deficitUseTargetChange
				changed++
			}
			if flags.Changed("target-before") {
				s.TargetBefore = deficitTargetBefore
				changed++
			}
			if flags.Changed("target-after") {
				s.TargetAfter = deficitTargetAfter
				changed++
			}
			if flags.Changed("change-day") {
				s.ChangeDay = deficitChangeDay
				changed++
			}
			if changed > 0 {
				if err := service.SetDeficitSettings(sqldb, s); err != nil {
					return err
				}
				if p, err = service.RequireProfile(sqldb); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated %d deficit setting(s)\n", changed)
			}
			printDeficitSettings(cmd, p)
			return nil
		})
	},
}

// profileBodyFromFlags starts from the stored profile, if any, and overlays
// the flags that were set. Without a stored profile every input is required.
func profileBodyFromFlags(cmd *cobra.Command, existing *model.Profile) (energy.Body, error) {
	flags := cmd.Flags()
	var body energy.Body
	if existing != nil {
		body = existing.Body()
	} else {
		for _, name := range []string{"sex", "age", "height", "weight", "activity", "goal"} {
			if !flags.Changed(name) {
				return body, fmt.Errorf("--%s is required when creating a profile", name)
			}
		}
	}
	if flags.Changed("sex") {
		sex, err := energy.ParseSex(profileSex)
		if err != nil {
			return body, err
		}
		body.Sex = sex
	}
	if flags.Changed("age") {
		body.Age = profileAge
	}
	if flags.Changed("height") {
		body.HeightCm = profileHeight
	}
	if flags.Changed("weight") {
		body.WeightKg = profileWeight
	}
	if flags.Changed("activity") {
		level, err := energy.ParseActivityLevel(profileActivity)
		if err != nil {
			return body, err
		}
		body.ActivityLevel = level
	}
	if flags.Changed("goal") {
		goal, err := energy.ParseGoal(profileGoal)
		if err != nil {
			return body, err
		}
		body.Goal = goal
	}
	// A stored maintain profile has pace 0; switching goal picks up the default.
	if flags.Changed("pace") || existing == nil || (body.Goal != energy.GoalMaintain && body.PaceKgPerWeek == 0) {
		body.PaceKgPerWeek = profilePace
	}
	return body, nil
}

func printProfile(cmd *cobra.Command, p *model.Profile) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Sex: %s | Age: %d | Height: %.1f cm | Weight: %.1f kg\n", p.Sex, p.Age, p.HeightCm, p.WeightKg)
	fmt.Fprintf(out, "Activity: %s | Goal: %s", p.ActivityLevel, p.Goal)
	if p.Goal != energy.GoalMaintain {
		fmt.Fprintf(out, " (%.2f kg/week)", p.Pace)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, render.CardRow(
		render.Card{Label: "BMR", Value: render.Kcal(p.BMR)},
		render.Card{Label: "TDEE", Value: render.Kcal(p.TDEE)},
		render.Card{Label: "Daily target", Value: render.Kcal(p.TargetCalories)},
	))
}

func printDeficitSettings(cmd *cobra.Command, p *model.Profile) {
	cfg := service.DeficitConfig(p)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Goal: %.1f kg | Energy per kg: %.0f kcal\n", cfg.GoalKg, cfg.KcalPerKg)
	if cfg.UseTargetChange {
		fmt.Fprintf(out, "Target: %d kcal before tracked day %d, %d kcal from then on\n", cfg.TargetBefore, cfg.ChangeDay, cfg.TargetAfter)
		return
	}
	fmt.Fprintf(out, "Target: %d kcal every tracked day\n", cfg.TargetAfter)
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileSetCmd, profileShowCmd, profileDeficitCmd)

	profileSetCmd.Flags().StringVar(&profileSex, "sex", "", "Sex: male|female")
	profileSetCmd.Flags().IntVar(&profileAge, "age", 0, "Age in years (13-120)")
	profileSetCmd.Flags().Float64Var(&profileHeight, "height", 0, "Height in cm (120-230)")
	profileSetCmd.Flags().Float64Var(&profileWeight, "weight", 0, "Weight in kg (30-250)")
	profileSetCmd.Flags().StringVar(&profileActivity, "activity", "", "Activity: sedentary|light|moderate|active|very-active")
	profileSetCmd.Flags().StringVar(&profileGoal, "goal", "", "Goal: lose|maintain|gain")
	profileSetCmd.Flags().Float64Var(&profilePace, "pace", 0.5, "Pace in kg/week (0.1-1.0, ignored for maintain)")

	profileShowCmd.Flags().BoolVar(&profileJSON, "json", false, "Output as JSON")

	profileDeficitCmd.Flags().Float64Var(&deficitGoalKg, "goal-kg", 0, "Mass change goal in kg (0 disables goal progress)")
	profileDeficitCmd.Flags().Float64Var(&deficitKcalPerKg, "kcal-per-kg", 7700, "Energy per kg of body mass")
	profileDeficitCmd.Flags().BoolVar(&deficitUseTargetChange, "use-target-change", false, "Switch targets on --change-day")
	profileDeficitCmd.Flags().IntVar(&deficitTargetBefore, "target-before", 0, "Target before the change day (0 = profile target)")
	profileDeficitCmd.Flags().IntVar(&deficitTargetAfter, "target-after", 0, "Target from the change day on (0 = profile target)")
	profileDeficitCmd.Flags().IntVar(&deficitChangeDay, "change-day", 1, "1-based tracked day on which the target switches")
}
