package domain

// Category labels assigned to claims. CategoryUncategorized is the
// fallback applied when neither classifier produces a label.
const (
	CategoryDamage        = "damage"
	CategoryDelay         = "delay"
	CategoryPayment       = "payment"
	CategoryService       = "service"
	CategoryAccount       = "account"
	CategoryUncategorized = "uncategorized"
)

// Categories returns the assignable claim categories in declaration order.
// The fallback label is excluded; it is never assigned by a classifier.
func Categories() []string {
	return []string{CategoryDamage, CategoryDelay, CategoryPayment, CategoryService, CategoryAccount}
}

// ValidCategory reports whether c is a known category label.
func ValidCategory(c string) bool {
	switch c {
	case CategoryDamage, CategoryDelay, CategoryPayment, CategoryService, CategoryAccount, CategoryUncategorized:
		return true
	default:
		return false
	}
}

// CategorySource constants record which classifier produced a category.
const (
	CategorySourceLocal    = "local"
	CategorySourceRemote   = "remote"
	CategorySourceFallback = "fallback"
)

// CategoryOutcome is the result of a categorization attempt: the label
// plus its provenance and confidence. Kept as an explicit tagged value
// rather than a found/not-found flag so provenance survives into
// storage and metrics.
type CategoryOutcome struct {
	Category   string  `json:"category"`
	Source     string  `json:"source"` // "local", "remote", "fallback"
	Confidence float64 `json:"confidence"`
}

// LocalOutcome tags a category produced by the local rule engine.
func LocalOutcome(category string, confidence float64) CategoryOutcome {
	return CategoryOutcome{Category: category, Source: CategorySourceLocal, Confidence: confidence}
}

// RemoteOutcome tags a category produced by the remote classifier.
func RemoteOutcome(category string) CategoryOutcome {
	return CategoryOutcome{Category: category, Source: CategorySourceRemote, Confidence: remoteConfidence}
}

// FallbackOutcome tags the configured default category applied when
// both classifiers fail to produce a label.
func FallbackOutcome(category string) CategoryOutcome {
	return CategoryOutcome{Category: category, Source: CategorySourceFallback, Confidence: 0}
}

// remoteConfidence is the nominal confidence recorded for remote
// classifications; the LLM endpoint returns a bare label with no score.
const remoteConfidence = 0.5
