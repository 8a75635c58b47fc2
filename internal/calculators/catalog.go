// Package calculators registers the built-in calculator widgets.
//
// Each widget renders a mount point that the client-side bundle for the
// calculator attaches to; the arithmetic lives in that bundle.
package calculators

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/quick-calculator/calcdir/internal/content"
	"github.com/quick-calculator/calcdir/internal/registry"
)

// Entry describes one built-in calculator.
type Entry struct {
	ID       string
	Category content.Category
}

// Catalog lists every built-in calculator id.
var Catalog = []Entry{
	{ID: "AverageCalculator", Category: content.CategoryMath},
	{ID: "MortgageCalculator", Category: content.CategoryFinancial},
	{ID: "LoanCalculator", Category: content.CategoryFinancial},
	{ID: "LoanAffordabilityCalculator", Category: content.CategoryFinancial},
	{ID: "CarAffordabilityCalculator", Category: content.CategoryFinancial},
	{ID: "HomeAffordabilityCalculator", Category: content.CategoryFinancial},
	{ID: "AmortizationScheduleCalculator", Category: content.CategoryFinancial},
	{ID: "BMICalculator", Category: content.CategoryHealth},
	{ID: "CreditCardCalculator", Category: content.CategoryFinancial},
	{ID: "SavingsCalculator", Category: content.CategoryFinancial},
	{ID: "TaxCalculator", Category: content.CategoryFinancial},
	{ID: "RetirementCalculator", Category: content.CategoryFinancial},
	{ID: "InvestmentCalculator", Category: content.CategoryFinancial},
	{ID: "BudgetCalculator", Category: content.CategoryFinancial},
	{ID: "CurrencyConverter", Category: content.CategoryConversion},
	{ID: "GPACalculator", Category: content.CategoryUtility},
	{ID: "PropertyTaxCalculator", Category: content.CategoryFinancial},
	{ID: "FutureValueCalculator", Category: content.CategoryFinancial},
	{ID: "WordCounter", Category: content.CategoryUtility},
	{ID: "NumbersToWordsConverter", Category: content.CategoryConversion},
	{ID: "AdvancedLoanCalculator", Category: content.CategoryFinancial},
	{ID: "StockReturnCalculator", Category: content.CategoryFinancial},
	{ID: "LifeInsuranceCalculator", Category: content.CategoryFinancial},
	{ID: "ExpenseCalculator", Category: content.CategoryFinancial},
	{ID: "CarInsuranceCalculator", Category: content.CategoryFinancial},
	{ID: "HealthInsuranceCalculator", Category: content.CategoryFinancial},
	{ID: "HourlyToSalaryCalculator", Category: content.CategoryFinancial},
	{ID: "SalaryCalculator", Category: content.CategoryFinancial},
	{ID: "OvertimePayCalculator", Category: content.CategoryFinancial},
	{ID: "CryptoROICalculator", Category: content.CategoryFinancial},
	{ID: "DebtConsolidationCalculator", Category: content.CategoryFinancial},
	{ID: "InterestOnlyMortgageCalculator", Category: content.CategoryFinancial},
	{ID: "CarLoanCalculator", Category: content.CategoryFinancial},
	{ID: "CompoundInterestCalculator", Category: content.CategoryFinancial},
	{ID: "ScientificCalculator", Category: content.CategoryMath},
	{ID: "PercentageCalculator", Category: content.CategoryMath},
	{ID: "FractionCalculator", Category: content.CategoryMath},
	{ID: "InterestCalculator", Category: content.CategoryFinancial},
	{ID: "AgeCalculator", Category: content.CategoryUtility},
	{ID: "UnitConverter", Category: content.CategoryConversion},
	{ID: "TipCalculator", Category: content.CategoryUtility},
	{ID: "PasswordGenerator", Category: content.CategoryUtility},
	{ID: "DateCalculator", Category: content.CategoryUtility},
	{ID: "BMRCalculator", Category: content.CategoryHealth},
	{ID: "BodyFatCalculator", Category: content.CategoryHealth},
	{ID: "CalorieCalculator", Category: content.CategoryHealth},
	{ID: "IdealWeightCalculator", Category: content.CategoryHealth},
	{ID: "CircleAreaCalculator", Category: content.CategoryMath},
	{ID: "CircleCircumferenceCalculator", Category: content.CategoryMath},
	{ID: "PythagoreanTheoremCalculator", Category: content.CategoryMath},
	{ID: "VolumeCalculator", Category: content.CategoryMath},
	{ID: "SurfaceAreaCalculator", Category: content.CategoryMath},
	{ID: "QuadraticEquationCalculator", Category: content.CategoryMath},
	{ID: "ConcreteCalculator", Category: content.CategoryUtility},
	{ID: "FeetInchesCalculator", Category: content.CategoryConversion},
	{ID: "InflationCalculator", Category: content.CategoryFinancial},
	{ID: "MeanMedianModeCalculator", Category: content.CategoryMath},
	{ID: "PaycheckCalculator", Category: content.CategoryFinancial},
	{ID: "PercentCalculator", Category: content.CategoryMath},
	{ID: "TankVolumeCalculator", Category: content.CategoryMath},
	{ID: "SalesTaxCalculator", Category: content.CategoryFinancial},
	{ID: "PercentageChangeCalculator", Category: content.CategoryMath},
	{ID: "SimpleInterestCalculator", Category: content.CategoryFinancial},
	{ID: "SquareFootageCalculator", Category: content.CategoryUtility},
	{ID: "RatioCalculator", Category: content.CategoryMath},
	{ID: "StandardDeviationCalculator", Category: content.CategoryMath},
	{ID: "LoanPaymentTableGenerator", Category: content.CategoryFinancial},
	{ID: "EqualPrincipalAmortizationCalculator", Category: content.CategoryFinancial},
	{ID: "APRCalculator", Category: content.CategoryFinancial},
	{ID: "EARCalculator", Category: content.CategoryFinancial},
	{ID: "EffectiveInterestRateCalculator", Category: content.CategoryFinancial},
	{ID: "InterestRateTableCalculator", Category: content.CategoryFinancial},
	{ID: "BasicAPRCalculator", Category: content.CategoryFinancial},
	{ID: "NominalInterestRateCalculator", Category: content.CategoryFinancial},
	{ID: "PeriodicInterestRateCalculator", Category: content.CategoryFinancial},
	{ID: "EquivalentInterestRateCalculator", Category: content.CategoryFinancial},
	{ID: "DebtRatiosCalculator", Category: content.CategoryFinancial},
	{ID: "LiquidityRatiosCalculator", Category: content.CategoryFinancial},
	{ID: "OperationsRatiosCalculator", Category: content.CategoryFinancial},
	{ID: "ProfitabilityRatiosCalculator", Category: content.CategoryFinancial},
	{ID: "StockRatiosCalculator", Category: content.CategoryFinancial},
	{ID: "NetIncomeCalculator", Category: content.CategoryFinancial},
	{ID: "TakeHomePayCalculator", Category: content.CategoryFinancial},
	{ID: "IncomeTaxCalculator", Category: content.CategoryFinancial},
	{ID: "ProteinIntakeCalculator", Category: content.CategoryHealth},
	{ID: "WaterIntakeCalculator", Category: content.CategoryHealth},
	{ID: "LeanBodyMassCalculator", Category: content.CategoryHealth},
	{ID: "MaintenanceCaloriesCalculator", Category: content.CategoryHealth},
	{ID: "TDEECalculator", Category: content.CategoryHealth},
	{ID: "WaistToHipRatioCalculator", Category: content.CategoryHealth},
	{ID: "EMICalculator", Category: content.CategoryFinancial},
	{ID: "TriangleAreaCalculator", Category: content.CategoryMath},
}

// Register adds the whole catalog to b.
func Register(b *registry.Builder) error {
	for _, e := range Catalog {
		if err := b.Register(e.ID, Widget(e)); err != nil {
			return fmt.Errorf("registering %s: %w", e.ID, err)
		}
	}

	return nil
}

// Lookup returns the catalog entry for id.
func Lookup(id string) (Entry, bool) {
	for _, e := range Catalog {
		if e.ID == id {
			return e, true
		}
	}

	return Entry{}, false
}

// Widget returns the mount-point calculator for e.
func Widget(e Entry) registry.Calculator {
	return registry.CalculatorFunc(func(locale string, props registry.Props) templ.Component {
		return mountPoint(e, locale, props)
	})
}

func mountPoint(e Entry, locale string, props registry.Props) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		noscript := "JavaScript is required to use this calculator."
		if s, ok := props.Labels["noscript"].(string); ok && s != "" {
			noscript = s
		}

		_, err := fmt.Fprintf(w,
			`<section class="calculator calculator-%s" id="calculator-root" data-calculator="%s" data-locale="%s" data-slug="%s">`+
				`<h2 class="calculator-title">%s</h2><noscript>%s</noscript></section>`,
			templ.EscapeString(string(e.Category)),
			templ.EscapeString(e.ID),
			templ.EscapeString(locale),
			templ.EscapeString(props.Slug),
			templ.EscapeString(props.Title),
			templ.EscapeString(noscript),
		)

		return err
	})
}
