package hybrid

import (
	"sort"
	"strings"
	"sync"

	"github.com/sourcegraph/conc/pool"
	"github.com/torvik/intent-cascade/internal/constants"
	"github.com/torvik/intent-cascade/internal/util"
)

type keywordScore struct {
	keyword string
	score   float64
}

// weightedRatio approximates a weighted-ratio scorer over the Levenshtein
// primitive: plain ratio, discounted partial ratio for substring-like hits,
// and a token-set ratio that ignores word order and duplication.
func weightedRatio(a, b string) float64 {
	score := util.Similarity(a, b)
	if partial := 0.9 * partialRatio(a, b); partial > score {
		score = partial
	}
	if tokenSet := 0.95 * tokenSetRatio(a, b); tokenSet > score {
		score = tokenSet
	}
	return score
}

// partialRatio scores the shorter string against every same-length window of
// the longer one and keeps the best.
func partialRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}
	if len(ra) == 0 {
		return 0.0
	}
	if len(ra) == len(rb) {
		return util.Similarity(string(ra), string(rb))
	}

	short := string(ra)
	best := 0.0
	for start := 0; start+len(ra) <= len(rb); start++ {
		window := string(rb[start : start+len(ra)])
		if score := util.Similarity(short, window); score > best {
			best = score
			if best == 1.0 {
				break
			}
		}
	}
	return best
}

// tokenSetRatio compares the sorted token intersection against each side's
// full sorted token string, so shared words dominate regardless of order.
func tokenSetRatio(a, b string) float64 {
	tokensA := util.TokenSet(a)
	tokensB := util.TokenSet(b)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0.0
	}

	var common, onlyA, onlyB []string
	for tok := range tokensA {
		if _, ok := tokensB[tok]; ok {
			common = append(common, tok)
		} else {
			onlyA = append(onlyA, tok)
		}
	}
	for tok := range tokensB {
		if _, ok := tokensA[tok]; !ok {
			onlyB = append(onlyB, tok)
		}
	}
	sort.Strings(common)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	base := strings.Join(common, " ")
	fullA := strings.TrimSpace(base + " " + strings.Join(onlyA, " "))
	fullB := strings.TrimSpace(base + " " + strings.Join(onlyB, " "))

	best := util.Similarity(fullA, fullB)
	if base != "" {
		if score := util.Similarity(base, fullA); score > best {
			best = score
		}
		if score := util.Similarity(base, fullB); score > best {
			best = score
		}
	}
	return best
}

// shortlistKeywords runs the batch approximate match of the query over one
// language pool: every keyword above the cutoff, best-first, capped at limit.
// Large pools are scanned in parallel shards.
func shortlistKeywords(query string, keywords []string, cutoff float64, limit int) []keywordScore {
	if len(keywords) == 0 || limit <= 0 {
		return nil
	}

	var candidates []keywordScore
	if len(keywords) >= constants.FuzzyTuning.MinPoolSizeParallel {
		candidates = scanParallel(query, keywords, cutoff)
	} else {
		candidates = scanRange(query, keywords, cutoff)
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].keyword < candidates[j].keyword
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

func scanRange(query string, keywords []string, cutoff float64) []keywordScore {
	var candidates []keywordScore
	for _, keyword := range keywords {
		if score := weightedRatio(query, keyword); score >= cutoff {
			candidates = append(candidates, keywordScore{keyword: keyword, score: score})
		}
	}
	return candidates
}

func scanParallel(query string, keywords []string, cutoff float64) []keywordScore {
	shards := constants.FuzzyTuning.ScanConcurrency
	shardSize := (len(keywords) + shards - 1) / shards

	var mu sync.Mutex
	var candidates []keywordScore

	p := pool.New().WithMaxGoroutines(shards)
	for start := 0; start < len(keywords); start += shardSize {
		end := start + shardSize
		if end > len(keywords) {
			end = len(keywords)
		}
		shard := keywords[start:end]
		p.Go(func() {
			local := scanRange(query, shard, cutoff)
			if len(local) == 0 {
				return
			}
			mu.Lock()
			candidates = append(candidates, local...)
			mu.Unlock()
		})
	}
	p.Wait()

	return candidates
}
