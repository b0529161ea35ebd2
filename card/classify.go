package card

import (
	"strings"

	"go.uber.org/zap"
)

// Kind is the detected type of a document.
type Kind int

const (
	Unknown Kind = iota
	Character
	Lorebook
)

func (k Kind) String() string {
	switch k {
	case Character:
		return "character"
	case Lorebook:
		return "lorebook"
	default:
		return "unknown"
	}
}

// characterKeys are field names known to appear in character cards of various
// generations and front ends.
var characterKeys = []string{
	"name", "first_mes", "description", "personality",
	"char_name", "char_persona", "char_greeting", "example_dialogue",
	"avatar", "chat", "persona", "greeting", "mes_example",
}

var entryKeys = []string{"key", "content", "comment"}

// Classify detects document kind. Lorebook check runs first, so a lorebook
// carrying character fields elsewhere is still a lorebook.
func Classify(doc Document, log *zap.Logger) Kind {
	if isLorebook(doc) {
		log.Debug("Lorebook entries detected")
		return Lorebook
	}
	if spec, ok := doc.Field("spec"); ok && spec.IsString() &&
		strings.Contains(strings.ToLower(spec.Text()), "chara_card") {
		log.Debug("Character card spec matched", zap.String("spec", spec.Text()))
		return Character
	}
	if doc.HasAny(characterKeys...) {
		log.Debug("Character fields found in main structure")
		return Character
	}
	if data, ok := doc.Field("data"); ok && data.HasAny(characterKeys...) {
		log.Debug("Character fields found in data field")
		return Character
	}
	log.Debug("Document type not recognized")
	return Unknown
}

func isLorebook(doc Document) bool {
	entries, ok := doc.Field("entries")
	if !ok || !entries.IsObject() {
		return false
	}
	first, ok := entries.First()
	if !ok {
		return false
	}
	return first.HasAny(entryKeys...)
}
