package cmd

import (
	"testing"

	"github.com/marcus/kadilac/internal/models"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in      string
		want    models.Category
		wantErr bool
	}{
		{"cars", models.CategoryCars, false},
		{"Motorcycles", models.CategoryMotorcycles, false},
		{" TRUCKS ", models.CategoryTrucks, false},
		{"carros", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseCategory(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseCategory(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseCategory(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCategoryValue(t *testing.T) {
	var cat models.Category
	v := newCategoryValue(models.CategoryCars, &cat)

	if v.String() != "cars" || v.Type() != "category" {
		t.Errorf("String=%q Type=%q", v.String(), v.Type())
	}
	if err := v.Set("trucks"); err != nil {
		t.Fatal(err)
	}
	if cat != models.CategoryTrucks {
		t.Errorf("bound category = %q, want trucks", cat)
	}
	if err := v.Set("boats"); err == nil {
		t.Error("Set(boats) should fail")
	}
	if cat != models.CategoryTrucks {
		t.Errorf("failed Set changed the value to %q", cat)
	}
}
