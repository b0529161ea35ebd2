// Package session holds results of a single import: documents, their kind
// and the fields user wants to extract. A session is never modified, every
// import produces a new one.
package session

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"cardx/card"
	"cardx/common"
	"cardx/config"
	"cardx/extract"
)

// ParseError is reported for files which could not be read or parsed.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %v", filepath.Base(e.Source), e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Reason is a short explanation of the failure.
func (e *ParseError) Reason() string {
	if errors.Is(e.Err, card.ErrMalformed) {
		return "Invalid JSON format"
	}
	return "Error: " + e.Err.Error()
}

// SchemaError is reported when document does not match requested import
// mode.
type SchemaError struct {
	Source string
	Want   card.Kind
	Got    card.Kind
}

func (e *SchemaError) Error() string {
	name := filepath.Base(e.Source)
	switch e.Want {
	case card.Character:
		return fmt.Sprintf("%s: selected file is not a valid character card", name)
	case card.Lorebook:
		return fmt.Sprintf("%s: selected file is not a valid lorebook", name)
	default:
		return fmt.Sprintf("%s: unable to determine file type", name)
	}
}

func (e *SchemaError) Reason() string {
	return "Not a character card"
}

// Rejection describes file excluded from multiple cards import.
type Rejection struct {
	Source string
	Reason string
}

func (r Rejection) String() string {
	return fmt.Sprintf("%s (%s)", filepath.Base(r.Source), r.Reason)
}

// Session is the result of an import.
type Session struct {
	ID        uuid.UUID
	Created   time.Time
	Mode      common.ImportMode
	Kind      card.Kind
	Cards     []extract.Card
	Selection extract.Selection
	Rejected  []Rejection
}

// Fields returns fields available for the kind of imported documents.
func (s *Session) Fields() []string {
	if s.Kind == card.Lorebook {
		return extract.LorebookFields
	}
	return extract.CharacterFields
}

// Extract runs extraction of selected fields.
func (s *Session) Extract(log *zap.Logger) []extract.Run {
	log = log.With(zap.Stringer("session", s.ID))
	switch s.Mode {
	case common.ImportModeMultiple:
		return extract.Multiple(s.Cards, s.Selection, log)
	case common.ImportModeLorebook:
		return extract.Lorebook(s.Cards[0].Doc, s.Selection, log)
	default:
		return extract.Character(s.Cards[0].Doc, s.Selection, log)
	}
}

// Import creates new session out of sources. Single document modes require
// exactly one source of matching kind. In multiple mode sources which could
// not be parsed or are not character cards are skipped and reported, import
// fails only when nothing remains. Auto mode selects multiple mode for several
// sources and detects kind of a single one.
//
// Fields come from configuration unless fields is not empty.
func Import(ctx context.Context, mode common.ImportMode, sources []Source, cfg *config.ExtractionConfig, fields []string, log *zap.Logger) (*Session, error) {
	if len(sources) == 0 {
		return nil, errors.New("nothing to import")
	}

	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	s := &Session{ID: id, Created: time.Now(), Mode: mode}

	if mode == common.ImportModeAuto && len(sources) > 1 {
		s.Mode = common.ImportModeMultiple
	}
	if s.Mode == common.ImportModeMultiple {
		err = s.importMultiple(ctx, sources, log)
	} else {
		err = s.importSingle(sources, log)
	}
	if err != nil {
		return nil, err
	}

	if len(fields) == 0 {
		fields = cfg.CharacterFields
		if s.Kind == card.Lorebook {
			fields = cfg.LorebookFields
		}
	}
	if s.Selection, err = extract.NewSelection(s.Fields(), fields...); err != nil {
		return nil, err
	}
	if s.Selection.Empty() {
		return nil, errors.New("no fields selected for extraction")
	}

	log.Info("Fields selected for extraction",
		zap.Stringer("session", s.ID),
		zap.Stringer("mode", s.Mode),
		zap.Int("documents", len(s.Cards)),
		zap.Strings("fields", s.Selection.Labels(s.Fields())))
	return s, nil
}

func (s *Session) importSingle(sources []Source, log *zap.Logger) error {
	if len(sources) != 1 {
		return fmt.Errorf("%s import expects a single file, got %d", s.Mode, len(sources))
	}
	src := sources[0]
	doc, err := Decode(src)
	if err != nil {
		return &ParseError{Source: src.Name, Err: err}
	}

	s.Kind = card.Classify(doc, log.With(zap.String("file", src.Name)))
	switch s.Mode {
	case common.ImportModeCard:
		if s.Kind != card.Character {
			return &SchemaError{Source: src.Name, Want: card.Character, Got: s.Kind}
		}
	case common.ImportModeLorebook:
		if s.Kind != card.Lorebook {
			return &SchemaError{Source: src.Name, Want: card.Lorebook, Got: s.Kind}
		}
	default:
		switch s.Kind {
		case card.Character:
			s.Mode = common.ImportModeCard
		case card.Lorebook:
			s.Mode = common.ImportModeLorebook
		default:
			return &SchemaError{Source: src.Name, Want: card.Unknown, Got: s.Kind}
		}
	}

	c := extract.NewCard(src.Name, doc)
	if s.Kind == card.Lorebook {
		c.Name = src.Stem()
	}
	s.Cards = []extract.Card{c}
	return nil
}

func (s *Session) importMultiple(ctx context.Context, sources []Source, log *zap.Logger) error {
	s.Kind = card.Character

	var errs error
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return err
		}
		doc, err := Decode(src)
		if err != nil {
			pe := &ParseError{Source: src.Name, Err: err}
			s.Rejected = append(s.Rejected, Rejection{Source: src.Name, Reason: pe.Reason()})
			errs = multierr.Append(errs, pe)
			continue
		}
		if kind := card.Classify(doc, log.With(zap.String("file", src.Name))); kind != card.Character {
			se := &SchemaError{Source: src.Name, Want: card.Character, Got: kind}
			s.Rejected = append(s.Rejected, Rejection{Source: src.Name, Reason: se.Reason()})
			errs = multierr.Append(errs, se)
			continue
		}
		log.Debug("Character card accepted", zap.String("file", src.Name))
		s.Cards = append(s.Cards, extract.NewCard(src.Name, card.Unwrap(doc)))
	}

	if len(s.Cards) == 0 {
		return fmt.Errorf("no valid character cards: %w", errs)
	}
	if len(s.Rejected) > 0 {
		rejected := make([]string, 0, len(s.Rejected))
		for _, r := range s.Rejected {
			rejected = append(rejected, r.String())
		}
		log.Warn("The following files could not be processed. Continuing with valid cards...", zap.Strings("files", rejected))
	}
	return nil
}
