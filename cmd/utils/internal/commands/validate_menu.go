package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/appetiteclub/apt"

	"github.com/appetiteclub/miniapp/internal/menu"
)

// ValidateMenu loads the configured menu and writes a summary and any problems to out.
func ValidateMenu(ctx context.Context, config *apt.Config, logger apt.Logger, out io.Writer) error {
	unit, err := menu.ParsePriceUnit(config.GetStringOrDef("menu.price.unit", string(menu.MinorUnits)))
	if err != nil {
		return err
	}

	source := config.GetStringOrDef("menu.source", "menu.json")
	catalog, err := menu.NewLoader(source, unit, logger).Load(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s: %d categories, %d items\n", source, len(catalog.Categories), catalog.Len())

	problems := CheckMenu(catalog)
	for _, p := range problems {
		fmt.Fprintf(out, "  - %s\n", p)
	}
	if len(problems) > 0 {
		return fmt.Errorf("%d problem(s) found", len(problems))
	}
	return nil
}

// CheckMenu reports entries a customer could not order sensibly.
func CheckMenu(catalog *menu.Catalog) []string {
	var problems []string
	seen := make(map[menu.ItemID]string)

	for _, cat := range catalog.Categories {
		for _, item := range cat.Items {
			if first, dup := seen[item.ID]; dup {
				problems = append(problems, fmt.Sprintf("item %s in %q repeats an id from %q", item.ID, cat.Name, first))
				continue
			}
			seen[item.ID] = cat.Name

			if item.Name == "" {
				problems = append(problems, fmt.Sprintf("item %s has no name", item.ID))
			}
			if item.Price <= 0 {
				problems = append(problems, fmt.Sprintf("item %s has price %d", item.ID, item.Price))
			}
			for _, g := range item.OptionGroups {
				if len(g.Choices) == 0 {
					problems = append(problems, fmt.Sprintf("item %s option %q has no choices", item.ID, g.Name))
				}
			}
		}
	}

	return problems
}
