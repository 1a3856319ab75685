// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package identify scores the processes mapped to a resolved
// fingerprint against contextual flow features and produces a ranked,
// normalized probability distribution.
package identify

import (
	"fmt"
	"math"
	"sort"

	"grimm.is/glasswing/internal/cache"
	"grimm.is/glasswing/internal/classify"
	"grimm.is/glasswing/internal/fpdb"
	"grimm.is/glasswing/internal/logging"
)

// Score floors. A process observed for a fingerprint is never penalized
// below basePrior per feature, and a present-but-rare feature class is
// floored at featurePrior.
var (
	basePrior    = math.Log(1e-8)
	featurePrior = math.Log(1e-2)
)

// genericDMZProcess is a pseudo-process in malware-capable databases
// denoting default DMZ traffic; it is suppressed when a non-malware
// alternative exists, reducing a known false-positive pattern.
const genericDMZProcess = "Generic DMZ Traffic"

// unknownProcess is reported when no record resolves.
const unknownProcess = "Unknown"

// ProcessScore is one ranked candidate in a Result.
type ProcessScore struct {
	Process string  `json:"process"`
	SHA256  string  `json:"sha256,omitempty"`
	Score   float64 `json:"score"`
	Malware *bool   `json:"malware,omitempty"`
}

// Result is the identification outcome for one query. Malware fields
// are present only when the database is malware-capable.
type Result struct {
	Process           string         `json:"process"`
	Score             float64        `json:"score"`
	Malware           *bool          `json:"malware,omitempty"`
	PMalware          *float64       `json:"p_malware,omitempty"`
	ProbableProcesses []ProcessScore `json:"probable_processes,omitempty"`
}

// Engine performs process identification over the shared fingerprint
// database. Results are memoized on the full query tuple: the database
// is append-only and a fingerprint's resolved record never changes
// identity, so cached rankings stay valid.
type Engine struct {
	db          *fpdb.Database
	classifiers *classify.Classifiers
	families    *AppFamilies
	memo        *cache.LRU
	logger      *logging.Logger
}

// NewEngine creates an identification engine. memoCapacity bounds the
// result cache; zero disables memoization.
func NewEngine(db *fpdb.Database, classifiers *classify.Classifiers, families *AppFamilies, memoCapacity int, logger *logging.Logger) *Engine {
	if logger == nil {
		logger = logging.New(logging.DefaultConfig())
	}
	if families == nil {
		families = &AppFamilies{byAlias: map[string]string{}}
	}
	return &Engine{
		db:          db,
		classifiers: classifiers,
		families:    families,
		memo:        cache.NewLRU(memoCapacity),
		logger:      logger,
	}
}

// MemoStats exposes the memo cache hit/miss counters.
func (e *Engine) MemoStats() (hits, misses uint64) {
	return e.memo.Stats()
}

// Identify resolves fpStr and ranks its candidate processes given the
// flow's server name, destination address and destination port. topN >
// 0 attaches the top-N normalized candidates. Missing contextual data
// never fails; it contributes the floor penalty.
func (e *Engine) Identify(fpStr, serverName, dstAddr string, dstPort uint16, topN int) *Result {
	memoKey := fmt.Sprintf("%s\x1f%s\x1f%s\x1f%d\x1f%d", fpStr, serverName, dstAddr, dstPort, topN)
	if cached, ok := e.memo.Get(memoKey); ok {
		return cached.(*Result)
	}

	result := e.identify(fpStr, serverName, dstAddr, dstPort, topN)
	e.memo.Set(memoKey, result)
	return result
}

func (e *Engine) identify(fpStr, serverName, dstAddr string, dstPort uint16, topN int) *Result {
	record, ok := e.db.Resolve(fpStr)
	if !ok {
		return e.unknownResult()
	}

	// Generalized classes for the destination information.
	domain, _ := classify.DomainInfo(serverName)
	asn := e.classifiers.ASN(dstAddr)
	portApp := classify.PortApplication(dstPort)
	features := [3]string{asn, domain, portApp}

	malwareCapable := e.db.MalwareCapable()

	ranked := make([]ProcessScore, 0, len(record.ProcessInfo))
	for i := range record.ProcessInfo {
		ranked = append(ranked, e.scoreProcess(features, &record.ProcessInfo[i], record.TotalCount, malwareCapable))
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })

	// No usable score: fall back to the record's first listed process.
	if len(ranked) == 0 || ranked[0].Score == 0.0 {
		if len(record.ProcessInfo) == 0 {
			return e.unknownResult()
		}
		first := &record.ProcessInfo[0]
		result := &Result{
			Process: e.families.Canonical(first.Process),
			Score:   0.0,
		}
		if malwareCapable {
			malware := first.IsMalware()
			pMalware := 0.0
			result.Malware = &malware
			result.PMalware = &pMalware
		}
		return result
	}

	// Suppress the generic DMZ pseudo-process when a non-malware
	// alternative is ranked right behind it.
	if malwareCapable && ranked[0].Malware != nil && !*ranked[0].Malware &&
		ranked[0].Process == genericDMZProcess && len(ranked) > 1 &&
		ranked[1].Malware != nil && !*ranked[1].Malware {
		ranked = ranked[1:]
	}

	scoreSum := 0.0
	malwareSum := 0.0
	for _, ps := range ranked {
		scoreSum += ps.Score
		if ps.Malware != nil && *ps.Malware {
			malwareSum += ps.Score
		}
	}

	result := &Result{
		Process: e.families.Canonical(ranked[0].Process),
		Score:   ranked[0].Score / scoreSum,
	}
	if malwareCapable {
		result.Malware = ranked[0].Malware
		pMalware := malwareSum / scoreSum
		result.PMalware = &pMalware
	}

	if topN > 0 {
		n := topN
		if len(ranked) < n {
			n = len(ranked)
		}
		probable := make([]ProcessScore, n)
		copy(probable, ranked[:n])
		for i := range probable {
			probable[i].Score /= scoreSum
		}
		result.ProbableProcesses = probable
	}

	return result
}

// scoreProcess computes the per-process posterior score: the process
// prior given the fingerprint, scaled and floored, plus one floored
// log-likelihood term per contextual feature.
func (e *Engine) scoreProcess(features [3]string, p *fpdb.ProcessInfo, totalCount int64, malwareCapable bool) ProcessScore {
	prob := math.Log(float64(p.Count) / float64(totalCount))

	score := basePrior * 3
	if prob > basePrior {
		score = prob * 3
	}

	score += featureTerm(features[0], p.ClassesIPAS, p.Count)
	score += featureTerm(features[1], p.ClassesHostnameDomains, p.Count)
	score += featureTerm(features[2], p.ClassesPortApplications, p.Count)

	ps := ProcessScore{
		Process: p.Process,
		SHA256:  p.SHA256,
		Score:   math.Exp(score),
	}
	if malwareCapable {
		malware := p.IsMalware()
		ps.Malware = &malware
	}
	return ps
}

func featureTerm(class string, counts map[string]int64, processCount int64) float64 {
	count, ok := counts[class]
	if !ok {
		return basePrior
	}
	term := math.Log(float64(count) / float64(processCount))
	if term > featurePrior {
		return term
	}
	return featurePrior
}

func (e *Engine) unknownResult() *Result {
	result := &Result{Process: unknownProcess, Score: 0.0}
	if e.db.MalwareCapable() {
		malware := false
		pMalware := 0.0
		result.Malware = &malware
		result.PMalware = &pMalware
	}
	return result
}
