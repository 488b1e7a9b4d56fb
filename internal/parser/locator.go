package parser

import (
	"sort"

	"github.com/yt-addons/youtube-monitoring-go/internal/models"
)

const locatorMaxDepth = 8

// Subtrees under these keys cannot contain watch-relevant records and may be
// arbitrarily large, so they are pruned unconditionally.
var prunedKeys = map[string]bool{
	"continuationItemRenderer": true,
	"adSlotRenderer":           true,
}

type frame struct {
	node  any
	depth int
}

// FindVideos walks an arbitrary response tree looking for nodes matching a
// known video shape. It is a safety net against shape drift, used only when
// the structurally-expected paths yield nothing: depth-bounded, pruned at
// continuation/ad markers, and capped at maxCount results. A node carrying a
// video marker ends descent into that branch whether or not extraction
// succeeds.
func (e *Extractor) FindVideos(root any, maxCount int) []models.VideoRecord {
	var videos []models.VideoRecord
	stack := []frame{{node: root, depth: 0}}

	for len(stack) > 0 && len(videos) < maxCount {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.depth > locatorMaxDepth {
			continue
		}

		switch node := f.node.(type) {
		case map[string]any:
			if _, ok := node[markerLockup]; ok {
				if v, ok := e.videoLockup(node); ok {
					videos = append(videos, *v)
				}
				continue
			}
			if vr := childMap(node, markerVideoRenderer); vr != nil {
				if v, ok := e.VideoRenderer(vr); ok {
					videos = append(videos, *v)
				}
				continue
			}
			// Sorted keys keep the walk deterministic across map iteration
			// order; reverse push preserves that order on the LIFO stack.
			keys := make([]string, 0, len(node))
			for key := range node {
				if prunedKeys[key] {
					continue
				}
				keys = append(keys, key)
			}
			sort.Strings(keys)
			for i := len(keys) - 1; i >= 0; i-- {
				stack = append(stack, frame{node: node[keys[i]], depth: f.depth + 1})
			}
		case []any:
			// Reverse push keeps page order across the LIFO stack.
			for i := len(node) - 1; i >= 0; i-- {
				stack = append(stack, frame{node: node[i], depth: f.depth + 1})
			}
		}
	}
	return videos
}
