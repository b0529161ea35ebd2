package convert

import (
	"bytes"
	"fmt"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"cardx/common"
	"cardx/config"
	"cardx/session"
)

// batchName is used for files produced from several cards.
const batchName = "characters"

// Values is a struct that holds variables we make available for template expansion
type Values struct {
	Context    string
	Name       string
	Kind       string
	Count      int
	SourceFile string
	Format     string
}

func sessionValues(s *session.Session, format common.OutputFmt) Values {
	v := Values{
		Kind:   s.Kind.String(),
		Count:  len(s.Cards),
		Format: format.String(),
	}
	if len(s.Cards) > 0 {
		first := session.Source{Name: s.Cards[0].Source}
		v.SourceFile = first.Stem()
		v.Name = s.Cards[0].Name
	}
	if s.Mode == common.ImportModeMultiple {
		v.Name = batchName
	}
	return v
}

// defaultStem names output when no template is configured: after the source
// for single document, generic name for batches.
func defaultStem(s *session.Session) string {
	if s.Mode == common.ImportModeMultiple || len(s.Cards) == 0 {
		return batchName
	}
	return session.Source{Name: s.Cards[0].Source}.Stem()
}

func expandTemplate(name config.TemplateFieldName, field string, values Values) (string, error) {
	tmpl, err := template.New(string(name)).Funcs(sprig.FuncMap()).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	values.Context = string(name)
	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}
