package wordquiz

import "fmt"

// ComposeTitles builds the question and answer document titles. Both share
// the descriptive part (source name, selection, drawn count) and differ only
// in the 問題/解答 role marker. When setTotal > 1 a part suffix is appended so
// every sheet in a batch is distinguishable at a glance.
//
// criteriaDesc may be empty (pooled lesson selections carry no range part).
func ComposeTitles(baseName, criteriaDesc string, n int, modeLabel string, setIndex, setTotal int) (question, answer string) {
	common := baseName
	if criteriaDesc != "" {
		common += " / " + criteriaDesc
	}
	common += fmt.Sprintf(" / %d問", n)
	if setTotal > 1 {
		common += fmt.Sprintf(" / %d部目（全%d部）", setIndex, setTotal)
	}
	question = fmt.Sprintf("%s：問題（%s）", modeLabel, common)
	answer = fmt.Sprintf("%s：解答（%s）", modeLabel, common)
	return question, answer
}
