package classifier

import "github.com/jonesrussell/claim-ranker/internal/domain"

// Rule confidence floors. Service and account keywords appear in benign
// text more often, so their floors sit slightly higher.
const (
	damageMinConfidence  = 0.12
	delayMinConfidence   = 0.12
	paymentMinConfidence = 0.12
	serviceMinConfidence = 0.15
	accountMinConfidence = 0.15
)

// Tie-break priorities. When two rules match the same number of distinct
// terms, the higher priority wins; declaration order mirrors this ranking.
const (
	damagePriority  = 50
	delayPriority   = 40
	paymentPriority = 30
	servicePriority = 20
	accountPriority = 10
)

// Keywords are matched as substrings of the normalized text, so stems
// ("damage", "cancel") also cover their inflected forms.

var damageKeywords = []string{
	"damage", "broken", "crack", "shatter", "torn",
	"destroy", "ruin", "wreck", "smash", "defect",
}

var delayKeywords = []string{
	"delay", "late", "postpone", "overdue", "waiting",
	"reschedule", "missed", "cancel", "no show", "stuck",
}

var paymentKeywords = []string{
	"refund", "charge", "bill", "invoice", "payment",
	"fees", "transaction", "money", "paid", "debit",
}

var serviceKeywords = []string{
	"rude", "unhelpful", "staff", "representative", "agent",
	"support", "ignored", "unprofessional", "attitude", "customer service",
}

var accountKeywords = []string{
	"account", "login", "password", "locked", "access",
	"profile", "credential", "sign in", "blocked", "verification",
}

// BuiltinRules returns the default category rule set.
// Callers get fresh copies so a hot reload cannot mutate shared state.
func BuiltinRules() []*CategoryRule {
	return []*CategoryRule{
		{
			ID:            1,
			Category:      domain.CategoryDamage,
			Keywords:      damageKeywords,
			MinConfidence: damageMinConfidence,
			Priority:      damagePriority,
			Enabled:       true,
		},
		{
			ID:            2,
			Category:      domain.CategoryDelay,
			Keywords:      delayKeywords,
			MinConfidence: delayMinConfidence,
			Priority:      delayPriority,
			Enabled:       true,
		},
		{
			ID:            3,
			Category:      domain.CategoryPayment,
			Keywords:      paymentKeywords,
			MinConfidence: paymentMinConfidence,
			Priority:      paymentPriority,
			Enabled:       true,
		},
		{
			ID:            4,
			Category:      domain.CategoryService,
			Keywords:      serviceKeywords,
			MinConfidence: serviceMinConfidence,
			Priority:      servicePriority,
			Enabled:       true,
		},
		{
			ID:            5,
			Category:      domain.CategoryAccount,
			Keywords:      accountKeywords,
			MinConfidence: accountMinConfidence,
			Priority:      accountPriority,
			Enabled:       true,
		},
	}
}
