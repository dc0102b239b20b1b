package wordquiz

import (
	"log"
	"os"
	"path/filepath"
)

// FontConfig is a resolved font: a family name plus, for TrueType fonts, the
// raw font bytes to register into each rendered document. It is plain data
// threaded into every render call; there is no process-wide font state, so
// renders with different fonts cannot contaminate each other.
type FontConfig struct {
	Family string
	TTF    []byte
}

// fontCandidates are tried in order under the fonts directory. Variable-width
// Noto is last on purpose.
var fontCandidates = []string{
	"NotoSansJP-Regular.ttf",
	"NotoSansJP-VariableFont_wght.ttf",
}

// ResolveFont looks for a Japanese-capable TrueType font under fontsDir and
// falls back to the built-in Helvetica when none is found. The fallback
// cannot draw Japanese glyphs but keeps rendering alive.
func ResolveFont(fontsDir string) FontConfig {
	for _, name := range fontCandidates {
		p := filepath.Join(fontsDir, name)
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		log.Printf("[Font] using %s (family NotoSansJP)", p)
		return FontConfig{Family: "NotoSansJP", TTF: data}
	}
	log.Printf("[Font] no candidate font under %s, falling back to Helvetica", fontsDir)
	return FontConfig{Family: "Helvetica"}
}

// StyleConfig carries the text styling for one render. Sizes are in points.
type StyleConfig struct {
	Font         FontConfig
	TitleSize    float64
	QuestionSize float64
	AnswerSize   float64
	IndexSize    float64
	// AnswerColor is the RGB used for revealed answers.
	AnswerColor [3]int
}

// DefaultStyles mirrors the fixed visual template: 13pt prompts, 10pt red
// answers, 10pt index numbers.
func DefaultStyles(font FontConfig) StyleConfig {
	return StyleConfig{
		Font:         font,
		TitleSize:    14,
		QuestionSize: 13,
		AnswerSize:   10,
		IndexSize:    10,
		AnswerColor:  [3]int{255, 0, 0},
	}
}
