package cmd

import (
	"context"
	"fmt"

	"github.com/marcus/kadilac/internal/cascade"
	"github.com/marcus/kadilac/internal/config"
	"github.com/marcus/kadilac/internal/fipe"
	"github.com/marcus/kadilac/internal/models"
	"github.com/marcus/kadilac/internal/output"
	"github.com/marcus/kadilac/pkg/console"
	"github.com/marcus/kadilac/pkg/console/selector"
	"github.com/spf13/cobra"
)

var fipeCmd = &cobra.Command{
	Use:   "fipe",
	Short: "Look up a FIPE reference price",
	Long: `Pick category, make, model and year to see the FIPE reference price.

Each choice loads the next list; changing an earlier choice clears
everything after it. Press enter on "Use this value" to print the result.`,
	GroupID: "valuation",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		v, ok, err := lookupValuation(cmd, s)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		if !ok {
			output.Info("No valuation selected")
			return nil
		}
		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return output.JSON(v)
		}
		printValuation(v)
		return nil
	},
}

var fipeListCmd = &cobra.Command{
	Use:   "list <category> [make-code [model-code]]",
	Short: "List makes, models or years",
	Long: `List the options of one cascade level.

  kadilac fipe list cars             makes
  kadilac fipe list cars 56          models of make 56
  kadilac fipe list cars 56 2001     years of model 2001`,
	Args: cobra.RangeArgs(1, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := parseCategory(args[0])
		if err != nil {
			return err
		}
		s, err := loadSettings()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		noCache, _ := cmd.Flags().GetBool("no-cache")
		src, closeSrc := newFipeSource(s, noCache)
		defer closeSrc()

		ctx, cancel := commandContext(cmd)
		defer cancel()

		opts, err := listLevel(ctx, src, cat, args[1:])
		if err != nil {
			output.Error("%v", err)
			return err
		}
		if filter, _ := cmd.Flags().GetString("filter"); filter != "" {
			opts = selector.Filter(opts, filter)
		}

		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return output.JSON(opts)
		}
		if len(opts) == 0 {
			output.Info("No options")
			return nil
		}
		tbl := output.NewTable("CODE", "LABEL")
		for _, o := range opts {
			tbl.Row(o.Code, o.Label)
		}
		tbl.Print()
		return nil
	},
}

var priceCategory models.Category

var fipePriceCmd = &cobra.Command{
	Use:   "price",
	Short: "Resolve a FIPE price from codes",
	Long: `Resolve the FIPE reference price without the interactive view.
Codes are the ones printed by 'kadilac fipe list'.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cascade.Path{Category: priceCategory}
		path.Make, _ = cmd.Flags().GetString("make")
		path.Model, _ = cmd.Flags().GetString("model")
		path.Year, _ = cmd.Flags().GetString("year")

		s, err := loadSettings()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		noCache, _ := cmd.Flags().GetBool("no-cache")
		src, closeSrc := newFipeSource(s, noCache)
		defer closeSrc()

		ctx, cancel := commandContext(cmd)
		defer cancel()

		state, err := cascade.Walk(ctx, src, path)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		v, ok := state.Confirm()
		if !ok {
			err := fmt.Errorf("no valuation for %s", path.Key())
			output.Error("%v", err)
			return err
		}

		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return output.JSON(v)
		}
		codes := []string{string(path.Category), path.Make, path.Model, path.Year}
		labels := make([]string, models.LevelCount)
		for l := models.LevelCategory; l < models.LevelCount; l++ {
			labels[l] = state.Label(l)
		}
		for _, line := range output.RenderTreeLines(output.PathTree(codes, labels), output.TreeRenderOptions{ShowCode: true}) {
			fmt.Fprintln(output.Stdout, line)
		}
		fmt.Fprintln(output.Stdout)
		printValuation(v)
		return nil
	},
}

var fipeWarmCmd = &cobra.Command{
	Use:   "warm [category...]",
	Short: "Prefetch make lists into the lookup cache",
	Long:  `Fetch the make list of each category (all by default) and store it in the cache.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cats := models.AllCategories()
		if len(args) > 0 {
			cats = cats[:0:0]
			for _, a := range args {
				cat, err := parseCategory(a)
				if err != nil {
					return err
				}
				cats = append(cats, cat)
			}
		}
		noCache, _ := cmd.Flags().GetBool("no-cache")
		if noCache {
			return fmt.Errorf("warm fills the cache; it cannot run with --no-cache")
		}

		s, err := loadSettings()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		src, closeSrc := newFipeSource(s, false)
		defer closeSrc()

		ctx, cancel := commandContext(cmd)
		defer cancel()

		limit, _ := cmd.Flags().GetInt("concurrency")
		results, err := fipe.Warm(ctx, src, cats, limit)
		if err != nil {
			output.Error("warm failed: %v", err)
			return err
		}
		tbl := output.NewTable("CATEGORY", "MAKES").RightAlign(1)
		for _, r := range results {
			tbl.Row(r.Category.Label(), r.Makes)
		}
		tbl.Print()
		output.Success("Cached make lists for %d categories", len(results))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fipeCmd)
	fipeCmd.AddCommand(fipeListCmd)
	fipeCmd.AddCommand(fipePriceCmd)
	fipeCmd.AddCommand(fipeWarmCmd)

	fipeCmd.PersistentFlags().Bool("no-cache", false, "Skip the lookup cache")
	fipeCmd.PersistentFlags().Bool("json", false, "Output as JSON")

	fipeListCmd.Flags().StringP("filter", "f", "", "Only show options whose label contains this text")

	fipePriceCmd.Flags().VarP(newCategoryValue(models.CategoryCars, &priceCategory), "category", "c", "Vehicle category (cars, motorcycles, trucks)")
	fipePriceCmd.Flags().String("make", "", "Make code")
	fipePriceCmd.Flags().String("model", "", "Model code")
	fipePriceCmd.Flags().String("year", "", "Year code")
	_ = fipePriceCmd.MarkFlagRequired("make")
	_ = fipePriceCmd.MarkFlagRequired("model")
	_ = fipePriceCmd.MarkFlagRequired("year")

	fipeWarmCmd.Flags().Int("concurrency", 3, "Maximum parallel fetches")
}

// listLevel fetches the options under the given codes: none for makes,
// a make code for models, make and model codes for years.
func listLevel(ctx context.Context, src cascade.Source, cat models.Category, codes []string) ([]models.Option, error) {
	switch len(codes) {
	case 0:
		return src.Makes(ctx, cat)
	case 1:
		return src.Models(ctx, cat, codes[0])
	case 2:
		return src.Years(ctx, cat, codes[0], codes[1])
	}
	return nil, fmt.Errorf("too many codes: %v", codes)
}

// lookupValuation runs the interactive lookup. ok is false when the user
// left without confirming a value.
func lookupValuation(cmd *cobra.Command, s config.Settings) (models.ResolvedValuation, bool, error) {
	noCache, _ := cmd.Flags().GetBool("no-cache")
	src, closeSrc := newFipeSource(s, noCache)
	defer closeSrc()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	final, err := runProgram(console.NewLookup(ctx, src))
	if err != nil {
		return models.ResolvedValuation{}, false, err
	}
	lookup, ok := final.(console.LookupModel)
	if !ok {
		return models.ResolvedValuation{}, false, nil
	}
	v, ok := lookup.Result()
	return v, ok, nil
}

func printValuation(v models.ResolvedValuation) {
	tbl := output.NewTable().
		Row("Vehicle", v.CanonicalLabel).
		Row("FIPE value", v.DisplayValue)
	if v.FipeCode != "" {
		tbl.Row("FIPE code", v.FipeCode)
	}
	if v.Fuel != "" {
		tbl.Row("Fuel", v.Fuel)
	}
	if v.ReferenceMonth != "" {
		tbl.Row("Reference", v.ReferenceMonth)
	}
	tbl.Print()
}
