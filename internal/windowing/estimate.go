package windowing

import (
	"encoding/json"
	"unicode/utf8"

	"github.com/anthropics/anthropic-sdk-go"
)

// blockOverhead is added per content block for framing.
const blockOverhead = 4

// EstimateMessage returns a deterministic size estimate for m in runes.
// It is not a tokenizer; it only needs to grow with the payload.
func EstimateMessage(m anthropic.MessageParam) int {
	total := 0
	for _, blk := range m.Content {
		total += estimateBlock(blk) + blockOverhead
	}
	return total
}

func estimateBlock(blk anthropic.ContentBlockParamUnion) int {
	switch {
	case blk.OfText != nil:
		return utf8.RuneCountInString(blk.OfText.Text)
	case blk.OfToolUse != nil:
		b, err := json.Marshal(blk.OfToolUse.Input)
		if err != nil {
			return 0
		}
		return utf8.RuneCount(b) + len(blk.OfToolUse.Name)
	case blk.OfToolResult != nil:
		n := 0
		for _, c := range blk.OfToolResult.Content {
			if c.OfText != nil {
				n += utf8.RuneCountInString(c.OfText.Text)
			}
		}
		return n
	default:
		return 0
	}
}
