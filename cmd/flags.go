package cmd

import (
	"fmt"
	"strings"

	"github.com/marcus/kadilac/internal/models"
	"github.com/spf13/pflag"
)

// categoryValue is a pflag.Value accepting a FIPE vehicle category
type categoryValue models.Category

var _ pflag.Value = (*categoryValue)(nil)

func newCategoryValue(def models.Category, p *models.Category) *categoryValue {
	*p = def
	return (*categoryValue)(p)
}

func (c *categoryValue) String() string {
	return string(*c)
}

func (c *categoryValue) Set(s string) error {
	cat, err := parseCategory(s)
	if err != nil {
		return err
	}
	*c = categoryValue(cat)
	return nil
}

func (c *categoryValue) Type() string {
	return "category"
}

// parseCategory accepts a category name in any case
func parseCategory(s string) (models.Category, error) {
	cat := models.Category(strings.ToLower(strings.TrimSpace(s)))
	if !models.IsValidCategory(cat) {
		names := make([]string, 0, len(models.AllCategories()))
		for _, c := range models.AllCategories() {
			names = append(names, string(c))
		}
		return "", fmt.Errorf("invalid category %q (valid: %s)", s, strings.Join(names, ", "))
	}
	return cat, nil
}
