package convert

import (
	"bytes"
	"fmt"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"aacc/board"
)

// TemplateValues holds the variables available to output name templates.
type TemplateValues struct {
	Name       string
	Root       string
	Format     string
	SourceFile string
	Pages      int
	Buttons    int
}

// ValuesFromDocument collects template values from a decoded document.
func ValuesFromDocument(doc *board.Document, sourceFile, format string) TemplateValues {
	v := TemplateValues{
		Root:       doc.RootID,
		Format:     format,
		SourceFile: sourceFile,
		Pages:      doc.Len(),
	}
	_ = doc.Traverse(func(p *board.Page) error {
		if v.Name == "" {
			v.Name = p.Name
		}
		v.Buttons += len(p.Buttons)
		return nil
	})
	return v
}

// ExpandNameTemplate renders an output name template with the sprig function
// set available.
func ExpandNameTemplate(field string, values TemplateValues) (string, error) {
	tmpl, err := template.New("output_name_template").Funcs(sprig.FuncMap()).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse output name template: %w", err)
	}
	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}
