package risk

import (
	"fmt"
	"strings"

	"github.com/sourcegraph/go-diff/diff"

	"github.com/signoffhq/signoff/model"
	"github.com/signoffhq/signoff/service/trust"
)

// Assessor scores proposed action sets. The zero configuration uses the
// standard weights and thresholds; both can be overridden via options.
type Assessor struct {
	weights    Weights
	thresholds Thresholds
}

// Option customises an Assessor.
type Option func(*Assessor)

// WithWeights overrides the dimension weights.
func WithWeights(w Weights) Option {
	return func(a *Assessor) { a.weights = w }
}

// WithThresholds overrides the score-to-level cut-offs.
func WithThresholds(t Thresholds) Option {
	return func(a *Assessor) { a.thresholds = t }
}

// New creates an Assessor.
func New(options ...Option) *Assessor {
	ret := &Assessor{
		weights:    DefaultWeights(),
		thresholds: DefaultThresholds(),
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// changeSet is the flattened view of all proposed actions the dimension
// scorers operate on.
type changeSet struct {
	paths        []string
	descriptions []string
	criticalHits int
	irreversible int
	churn        int // added plus deleted lines recovered from diffs
}

// Assess scores the proposed actions in the given context. Zero actions yield
// score 0 and level low. An unknown category applies no category-specific
// escalation.
func (a *Assessor) Assess(taskCtx *model.TaskContext, actions []model.ProposedAction, category model.Category) *Assessment {
	rank := model.TrustNovice
	if taskCtx != nil && taskCtx.TrustRank.IsValid() {
		rank = taskCtx.TrustRank
	}

	ret := &Assessment{Level: model.RiskLow}
	if len(actions) == 0 {
		ret.RequiresApproval = trust.RequiresApproval(ret.Level, rank, category)
		ret.AutoApprovalEligible = trust.AutoApprovalEligible(ret.Level, rank, false)
		return ret
	}

	set := flatten(actions)
	ret.Factors = []Factor{
		a.fileImpact(set),
		a.security(set, category),
		a.reversibility(set, actions),
		a.dependency(set),
		a.database(set, category),
		a.api(set),
	}

	for _, f := range ret.Factors {
		ret.Score += f.Score * f.Weight
	}
	ret.Level = a.thresholds.Level(ret.Score)

	// Caller-supplied hints are a floor, never a ceiling.
	for _, action := range actions {
		if action.RiskHint.IsValid() {
			ret.Level = model.MaxRiskLevel(ret.Level, action.RiskHint)
		}
	}

	ret.Recommendations = recommendations(ret.Factors)
	ret.RequiresApproval = trust.RequiresApproval(ret.Level, rank, category)
	ret.AutoApprovalEligible = trust.AutoApprovalEligible(ret.Level, rank, ret.SecurityElevated())
	return ret
}

// flatten collects paths, descriptions and diff statistics from all actions.
func flatten(actions []model.ProposedAction) *changeSet {
	set := &changeSet{}
	seen := map[string]bool{}
	addPath := func(p string) {
		if p == "" || seen[p] {
			return
		}
		seen[p] = true
		set.paths = append(set.paths, p)
	}
	for _, action := range actions {
		for _, p := range action.Paths {
			addPath(p)
		}
		if action.Description != "" {
			set.descriptions = append(set.descriptions, action.Description)
		}
		if !action.Reversible {
			set.irreversible++
		} else if irreversiblePattern.MatchString(action.Description) {
			set.irreversible++
		}
		if action.Diff != "" {
			fileDiffs, err := diff.ParseMultiFileDiff([]byte(action.Diff))
			if err != nil {
				continue // malformed diff payloads are ignored, paths still count
			}
			for _, fd := range fileDiffs {
				addPath(strings.TrimPrefix(fd.NewName, "b/"))
				stat := fd.Stat()
				set.churn += int(stat.Added + stat.Deleted + stat.Changed)
			}
		}
	}
	for _, p := range set.paths {
		if matchesAny(criticalFilePatterns, p) {
			set.criticalHits++
		}
	}
	return set
}

func (a *Assessor) fileImpact(set *changeSet) Factor {
	score := float64(len(set.paths))
	if set.churn > 0 {
		score += float64(set.churn) / 100
	}
	if score > 10 {
		score = 10
	}
	weight := a.weights.FileImpact
	description := fmt.Sprintf("%d file(s) affected", len(set.paths))
	if set.criticalHits > 0 {
		if score < 8 {
			score = 8
		}
		weight += a.weights.CriticalFile
		description = fmt.Sprintf("%d file(s) affected, %d critical", len(set.paths), set.criticalHits)
	}
	return Factor{Name: FactorFileImpact, Score: score, Level: levelForScore(score), Weight: weight, Description: description}
}

func (a *Assessor) security(set *changeSet, category model.Category) Factor {
	hits := 0
	for _, s := range set.surfaces() {
		if securityPattern.MatchString(s) {
			hits++
		}
	}
	score := 0.0
	description := "no security-sensitive surface detected"
	if hits > 0 {
		score = clamp10(5 + 2*float64(hits))
		description = fmt.Sprintf("%d security-sensitive reference(s)", hits)
	}
	if category == model.CategorySecurity && score < 7 {
		score = 7
		description = "security-classified change"
	}
	return Factor{Name: FactorSecurity, Score: score, Level: levelForScore(score), Weight: a.weights.Security, Description: description}
}

func (a *Assessor) reversibility(set *changeSet, actions []model.ProposedAction) Factor {
	score := 0.0
	description := "all actions reversible"
	if set.irreversible > 0 {
		score = clamp10(4 + 3*float64(set.irreversible))
		description = fmt.Sprintf("%d of %d action(s) irreversible", set.irreversible, len(actions))
	}
	return Factor{Name: FactorReversibility, Score: score, Level: levelForScore(score), Weight: a.weights.Reversibility, Description: description}
}

func (a *Assessor) dependency(set *changeSet) Factor {
	hits := 0
	for _, p := range set.paths {
		if dependencyPattern.MatchString(p) {
			hits++
		}
	}
	score := 0.0
	description := "no dependency manifests touched"
	if hits > 0 {
		score = clamp10(5 + 2.5*float64(hits))
		description = fmt.Sprintf("%d dependency manifest(s) touched", hits)
	}
	return Factor{Name: FactorDependency, Score: score, Level: levelForScore(score), Weight: a.weights.Dependency, Description: description}
}

func (a *Assessor) database(set *changeSet, category model.Category) Factor {
	hits := 0
	destructive := false
	for _, s := range set.surfaces() {
		if databasePattern.MatchString(s) {
			hits++
		}
		if destructiveDBPattern.MatchString(s) {
			destructive = true
		}
	}
	score := 0.0
	description := "no database surface detected"
	if hits > 0 {
		score = clamp10(6 + 2*float64(hits-1))
		description = fmt.Sprintf("%d database reference(s)", hits)
		if destructive {
			score = clamp10(9)
			description += ", destructive statement detected"
		}
	}
	if category == model.CategoryDatabase && score < 6 {
		score = 6
		description = "database-classified change"
	}
	return Factor{Name: FactorDatabase, Score: score, Level: levelForScore(score), Weight: a.weights.Database, Description: description}
}

func (a *Assessor) api(set *changeSet) Factor {
	hits := 0
	for _, s := range set.surfaces() {
		if apiPattern.MatchString(s) {
			hits++
		}
	}
	score := 0.0
	description := "no API surface detected"
	if hits > 0 {
		score = clamp10(5 + 2*float64(hits-1))
		description = fmt.Sprintf("%d API surface reference(s)", hits)
	}
	return Factor{Name: FactorAPI, Score: score, Level: levelForScore(score), Weight: a.weights.API, Description: description}
}

// surfaces returns every string a keyword pattern may match against.
func (c *changeSet) surfaces() []string {
	out := make([]string, 0, len(c.paths)+len(c.descriptions))
	out = append(out, c.paths...)
	out = append(out, c.descriptions...)
	return out
}

func recommendations(factors []Factor) []string {
	var out []string
	for _, f := range factors {
		if !f.Level.AtLeast(model.RiskMedium) {
			continue
		}
		switch f.Name {
		case FactorFileImpact:
			out = append(out, "review the full file list before approving; critical files are affected")
		case FactorSecurity:
			out = append(out, "require human review: security-sensitive surface involved")
		case FactorReversibility:
			out = append(out, "capture a rollback plan; some actions cannot be undone")
		case FactorDependency:
			out = append(out, "audit dependency changes for supply-chain impact")
		case FactorDatabase:
			out = append(out, "back up affected data before running schema changes")
		case FactorAPI:
			out = append(out, "check API consumers for breaking contract changes")
		}
	}
	return out
}

func clamp10(v float64) float64 {
	if v > 10 {
		return 10
	}
	return v
}
