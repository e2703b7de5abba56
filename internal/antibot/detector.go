package antibot

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/use-agent/lynxget/internal/model"
	"github.com/use-agent/lynxget/internal/sanitize"
)

// MinBodyLength below which a response is suspicious enough to flag even
// without a matching content pattern, mirroring the teacher's
// MinContentLength default.
const MinBodyLength = 500

// Detector matches a model.FetchResult against the Signatures table.
type Detector struct {
	signatures []model.Signature
	minBodyLen int
}

func NewDetector() *Detector {
	return &Detector{
		signatures: Signatures,
		minBodyLen: MinBodyLength,
	}
}

// Detect inspects one fetch result and returns every matching signature,
// most-confident first.
func (d *Detector) Detect(fr model.FetchResult) []model.AntibotDetection {
	var out []model.AntibotDetection
	bodyStr := string(fr.Body)
	bodyLower := strings.ToLower(bodyStr)

	for _, sig := range d.signatures {
		if hit, evidence := matchSignature(sig, fr, bodyStr, bodyLower); hit {
			out = append(out, model.AntibotDetection{
				Name:            sig.Name,
				Category:        sig.Category,
				Confidence:      sig.Confidence,
				Evidence:        []string{evidence},
				SuggestedAction: sig.SuggestedAction,
			})
		}
	}

	if len(fr.Body) > 0 && len(fr.Body) < d.minBodyLen {
		text := sanitize.VisibleText(bodyStr)
		if len(text) < d.minBodyLen/2 {
			out = append(out, model.AntibotDetection{
				Name:            "generic",
				Category:        "empty_content",
				Confidence:      60,
				Evidence:        []string{fmt.Sprintf("body is %d bytes, visible text %d chars", len(fr.Body), len(text))},
				SuggestedAction: model.ActionTryArchive,
			})
		}
	}

	return MergeDetections(out)
}

func matchSignature(sig model.Signature, fr model.FetchResult, bodyStr, bodyLower string) (bool, string) {
	switch sig.Source {
	case model.SourceStatusCode:
		code, err := strconv.Atoi(sig.Match)
		if err != nil {
			return false, ""
		}
		return fr.StatusCode == code, fmt.Sprintf("status=%d", fr.StatusCode)
	case model.SourceHeader:
		val, ok := fr.Headers[strings.ToLower(sig.Key)]
		if !ok {
			return false, ""
		}
		if sig.Match == "" {
			return true, fmt.Sprintf("%s present", sig.Key)
		}
		return strings.Contains(strings.ToLower(val), strings.ToLower(sig.Match)), fmt.Sprintf("%s=%s", sig.Key, val)
	case model.SourceCookie:
		for _, c := range fr.Cookies {
			if strings.HasPrefix(strings.ToLower(c), strings.ToLower(sig.Key)+"=") {
				return true, sig.Key + " cookie set"
			}
		}
		return false, ""
	case model.SourceBody:
		if strings.Contains(bodyLower, strings.ToLower(sig.Match)) {
			return true, sig.Match
		}
		return false, ""
	case model.SourceWindowPath:
		re, err := regexp.Compile(sig.Match)
		if err != nil {
			return false, ""
		}
		if re.MatchString(bodyStr) {
			return true, sig.Description
		}
		return false, ""
	}
	return false, ""
}

// corroborationBonus is added, per extra matching signal beyond the first,
// to the highest single confidence seen for a provider — independent
// signals (e.g. a challenge header plus its bot-management cookie) should
// push the merged confidence higher than either alone, capped at 100.
const corroborationBonus = 5

// MergeDetections unions a set of detections by name, keeping the
// highest-confidence signature's category/suggested-action, set-unioning
// every match's evidence, and escalating confidence by corroborationBonus
// per additional corroborating signal (capped at 100) — the semantics
// spec.md §4.5 calls "merge by provider, union evidence" when combining
// signals collected across a redirect chain or an archive fallback attempt.
// The result is ordered by confidence, highest first.
func MergeDetections(all []model.AntibotDetection) []model.AntibotDetection {
	best := map[string]model.AntibotDetection{}
	extra := map[string]int{}
	seenEvidence := map[string]map[string]bool{}
	var order []string
	for _, d := range all {
		cur, ok := best[d.Name]
		if !ok {
			order = append(order, d.Name)
			best[d.Name] = d
			seenEvidence[d.Name] = map[string]bool{}
		} else if d.Confidence > cur.Confidence {
			d.Evidence = append(append([]string{}, cur.Evidence...), d.Evidence...)
			best[d.Name] = d
			extra[d.Name]++
		} else {
			merged := best[d.Name]
			merged.Evidence = append(merged.Evidence, d.Evidence...)
			best[d.Name] = merged
			extra[d.Name]++
		}
		for _, ev := range d.Evidence {
			if !seenEvidence[d.Name][ev] {
				seenEvidence[d.Name][ev] = true
			}
		}
	}

	out := make([]model.AntibotDetection, 0, len(order))
	for _, name := range order {
		d := best[name]
		d.Evidence = dedupStrings(d.Evidence)
		if n := extra[name]; n > 0 {
			d.Confidence = min(100, d.Confidence+corroborationBonus*n)
		}
		out = append(out, d)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Confidence > out[j].Confidence })
	return out
}

func dedupStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
