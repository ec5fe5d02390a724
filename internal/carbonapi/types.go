package carbonapi

// Raw payloads as decoded from the service. Numeric fields whose absence matters are
// pointers: nil means the key was missing, a pointer to 0 means a reported zero.

// CategoryAnalysis is an emission breakdown for one category.
type CategoryAnalysis struct {
	Category   string   `json:"category"`
	TotalKg    *float64 `json:"total_kg"`
	Percentage *float64 `json:"percentage"`
	ItemCount  int      `json:"item_count"`
	AvgPerItem *float64 `json:"avg_per_item,omitempty"`
}

// EmissionSource is one of the top emitting items in an insights period.
type EmissionSource struct {
	Item             string   `json:"item"`
	TotalKg          *float64 `json:"total_kg"`
	Frequency        int      `json:"frequency"`
	AvgPerPurchaseKg *float64 `json:"avg_per_purchase_kg"`
}

// RecurringPattern is a detected repeat purchase.
type RecurringPattern struct {
	Item               string   `json:"item"`
	FrequencyDays      int      `json:"frequency_days"`
	AnnualImpactKg     *float64 `json:"annual_impact_kg"`
	IsSubscriptionLike bool     `json:"is_subscription_like"`
}

// RawInsights is the /api/carbon/insights response.
// AverageDaily and TotalFootprint are the pre-_kg legacy spellings.
type RawInsights struct {
	Summary           string             `json:"summary"`
	Period            string             `json:"period"`
	TotalFootprintKg  *float64           `json:"total_footprint_kg"`
	TotalFootprint    *float64           `json:"total_footprint,omitempty"`
	AverageDailyKg    *float64           `json:"average_daily_kg"`
	AverageDaily      *float64           `json:"average_daily,omitempty"`
	CategoryBreakdown []CategoryAnalysis `json:"category_breakdown"`
	Top5Sources       []EmissionSource   `json:"top_5_sources"`
	RecurringPatterns []RecurringPattern `json:"recurring_patterns"`
}

// DayForecast is a single predicted day.
type DayForecast struct {
	Date               string     `json:"date"`
	PredictedKg        *float64   `json:"predicted_kg"`
	ConfidenceInterval [2]float64 `json:"confidence_interval"`
	Trend              string     `json:"trend"`
}

// RawForecast is the /api/carbon/forecast response.
type RawForecast struct {
	ForecastDays int           `json:"forecast_days"`
	Forecasts    []DayForecast `json:"forecasts"`
	RiskLevel    string        `json:"risk_level"`
	Summary      string        `json:"summary"`
}

// RawCoachBudget is the /api/carbon/coach response.
// ProgressPercent is not clamped by the service and can exceed 100.
type RawCoachBudget struct {
	WeekStartDate            string   `json:"week_start_date"`
	WeekEndDate              string   `json:"week_end_date"`
	RecommendedWeeklyLimitKg *float64 `json:"recommended_weekly_limit_kg"`
	RecommendedDailyLimitKg  *float64 `json:"recommended_daily_limit_kg"`
	HistoricalWeeklyAvg      *float64 `json:"historical_weekly_avg"`
	ProgressPercent          *float64 `json:"progress_percent"`
	TradeoffSuggestions      []string `json:"tradeoff_suggestions"`

	// Legacy spellings from older backends.
	WeeklyBudget *float64 `json:"weekly_budget,omitempty"`
	DailyBudget  *float64 `json:"daily_budget,omitempty"`
}

// PlanDay is one entry of the 30-day schedule.
type PlanDay struct {
	Day                    int      `json:"day"`
	FocusArea              string   `json:"focus_area"`
	Action                 string   `json:"action"`
	DifficultyLevel        string   `json:"difficulty_level"`
	CarbonSavedVsTypicalKg *float64 `json:"carbon_saved_vs_typical_kg,omitempty"`
}

// Recipe is a low-carbon meal suggestion.
type Recipe struct {
	Name               string   `json:"name"`
	CarbonFootprintKg  *float64 `json:"carbon_footprint_kg"`
	ProteinG           *float64 `json:"protein_g"`
	PrepTimeMinutes    int      `json:"prep_time_minutes"`
	Ingredients        []string `json:"ingredients"`
	SavingsVsTypicalKg *float64 `json:"savings_vs_typical_kg"`
}

// CommuteOption is an alternative way to commute.
type CommuteOption struct {
	Mode              string   `json:"mode"`
	AnnualCarbonKg    *float64 `json:"annual_carbon_kg"`
	CostPerMonth      *float64 `json:"cost_per_month"`
	TimePerDayMinutes int      `json:"time_per_day_minutes"`
	FeasibilityScore  *float64 `json:"feasibility_score"`
}

// SubscriptionToReplace is a recurring purchase with a lower-carbon alternative.
type SubscriptionToReplace struct {
	ItemName           string   `json:"item_name"`
	Frequency          string   `json:"frequency"`
	AnnualCarbonKg     *float64 `json:"annual_carbon_kg"`
	Alternative        string   `json:"alternative"`
	PotentialSavingsKg *float64 `json:"potential_savings_kg"`
}

// RawPlan is the /api/carbon/plan/30-day response.
type RawPlan struct {
	StartDate               string                  `json:"start_date"`
	EndDate                 string                  `json:"end_date"`
	Summary                 string                  `json:"summary"`
	CurrentWeeklyAvgKg      *float64                `json:"current_weekly_avg_kg"`
	TargetWeeklyAvgKg       *float64                `json:"target_weekly_avg_kg"`
	TotalPotentialSavingsKg *float64                `json:"total_potential_savings_kg"`
	ProblemAreas            []CategoryAnalysis      `json:"problem_areas"`
	ImprovementChecklist    []string                `json:"improvement_checklist"`
	DailyPlan               []PlanDay               `json:"daily_plan"`
	Recipes                 []Recipe                `json:"recipes"`
	CommuteAlternatives     []CommuteOption         `json:"commute_alternatives"`
	HabitChanges            []string                `json:"habit_changes"`
	SubscriptionsToReplace  []SubscriptionToReplace `json:"subscriptions_to_replace"`
}

// SimulationRequest is the /api/carbon/simulate request body.
type SimulationRequest struct {
	ChangeType string         `json:"change_type"`
	Parameters map[string]any `json:"parameters"`
}

// SimulationResult is the projected impact of one lifestyle change.
type SimulationResult struct {
	EstimatedReductionKg      float64  `json:"estimated_reduction_kg"`
	EstimatedReductionPercent float64  `json:"estimated_reduction_percent"`
	AnnualImpactKg            float64  `json:"annual_impact_kg"`
	ChangeDescription         string   `json:"change_description"`
	AffectedCategories        []string `json:"affected_categories"`
}
