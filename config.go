package pit38

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed years.yaml
var defaultYearsYAML []byte

// SettlementRegime captures the business-day offsets applied to market
// trades: DaysBefore business days when the trade date is strictly before
// the switch date, DaysAfter on or after it. This encodes the regulatory
// shortening of the US settlement cycle.
type SettlementRegime struct {
	SwitchDate Date
	DaysBefore int
	DaysAfter  int
}

// Days returns the settlement offset in force on a trade date.
func (r SettlementRegime) Days(tradeDate Date) int {
	if tradeDate.Before(r.SwitchDate) {
		return r.DaysBefore
	}
	return r.DaysAfter
}

// YearConfig holds the statutory parameters of one fiscal year.
type YearConfig struct {
	Year       int
	TaxRate    decimal.Decimal
	FormLayout string
	Regime     SettlementRegime
}

// Config is the set of supported fiscal years. Field layouts are hard-coded
// per year by statute, so an unconfigured year is a fatal condition, never
// an extrapolation.
type Config struct {
	years map[int]YearConfig
}

type yamlRegime struct {
	SwitchDate Date `yaml:"switch_date"`
	DaysBefore int  `yaml:"days_before"`
	DaysAfter  int  `yaml:"days_after"`
}

type yamlYear struct {
	TaxRate    string     `yaml:"tax_rate"`
	FormLayout string     `yaml:"form_layout"`
	Settlement yamlRegime `yaml:"settlement"`
}

type yamlConfig struct {
	Years map[int]yamlYear `yaml:"years"`
}

// ParseConfig decodes a year-configuration document.
func ParseConfig(data []byte) (*Config, error) {
	var doc yamlConfig
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing year configuration: %w", err)
	}
	cfg := &Config{years: make(map[int]YearConfig, len(doc.Years))}
	for year, y := range doc.Years {
		rate, err := decimal.NewFromString(y.TaxRate)
		if err != nil {
			return nil, fmt.Errorf("year %d: invalid tax rate %q: %w", year, y.TaxRate, err)
		}
		if y.Settlement.SwitchDate.IsZero() {
			return nil, fmt.Errorf("year %d: missing settlement switch date", year)
		}
		cfg.years[year] = YearConfig{
			Year:       year,
			TaxRate:    rate,
			FormLayout: y.FormLayout,
			Regime: SettlementRegime{
				SwitchDate: y.Settlement.SwitchDate,
				DaysBefore: y.Settlement.DaysBefore,
				DaysAfter:  y.Settlement.DaysAfter,
			},
		}
	}
	return cfg, nil
}

// DefaultConfig returns the embedded year configuration.
func DefaultConfig() *Config {
	cfg, err := ParseConfig(defaultYearsYAML)
	if err != nil {
		panic("embedded year configuration is invalid: " + err.Error())
	}
	return cfg
}

// LoadConfig reads a year-configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading year configuration %q: %w", path, err)
	}
	return ParseConfig(data)
}

// ForYear returns the configuration of a fiscal year, or
// ErrUnsupportedFormYear when the year is not configured.
func (c *Config) ForYear(year int) (YearConfig, error) {
	y, ok := c.years[year]
	if !ok {
		return YearConfig{}, fmt.Errorf("year %d: %w", year, ErrUnsupportedFormYear)
	}
	return y, nil
}

// Years returns the configured fiscal years.
func (c *Config) Years() []int {
	years := make([]int, 0, len(c.years))
	for y := range c.years {
		years = append(years, y)
	}
	return years
}
