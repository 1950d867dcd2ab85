package copilot

import (
	"strings"

	"loomsales.app/copilot/internal/model"
)

// DefaultConfidenceThreshold is calibrated for reciprocal-rank-fusion scores
// of the hybrid_search function; other rankers need their own value.
const DefaultConfidenceThreshold = 0.012

// ScoreConfidence is high iff the top record's score exceeds threshold.
func ScoreConfidence(records []model.KnowledgeRecord, threshold float64) Confidence {
	if len(records) > 0 && records[0].Score > threshold {
		return ConfidenceHigh
	}
	return ConfidenceLow
}

// BuildContext renders records as "[label] content" blocks. Low confidence
// with fewer than two records yields NoReferenceSentinel instead.
func BuildContext(records []model.KnowledgeRecord, confidence Confidence) string {
	if confidence == ConfidenceLow && len(records) < 2 {
		return NoReferenceSentinel
	}
	blocks := make([]string, len(records))
	for i, r := range records {
		blocks[i] = "[" + r.Label() + "] " + r.Content
	}
	return strings.Join(blocks, "\n\n")
}

// CollectImages returns the distinct image URLs of records in first-seen
// order. The result is never nil.
func CollectImages(records []model.KnowledgeRecord) []string {
	images := make([]string, 0)
	seen := make(map[string]struct{})
	for _, r := range records {
		if r.ImageURL == "" {
			continue
		}
		if _, ok := seen[r.ImageURL]; ok {
			continue
		}
		seen[r.ImageURL] = struct{}{}
		images = append(images, r.ImageURL)
	}
	return images
}
