package export

import (
	"fmt"

	"github.com/gingfrederik/docx"
)

// SaveDOCX writes doc as a Word document at path.
func SaveDOCX(path string, doc Document) error {
	f := docx.NewFile()

	run := f.AddParagraph().AddText(doc.Title)
	run.Size(20)
	if period := doc.Period(); period != "" {
		run = f.AddParagraph().AddText(period)
		run.Color("808080")
	}
	f.AddParagraph() // Spacer
	f.AddParagraph().AddText(doc.Intro)
	f.AddParagraph() // Spacer

	for _, a := range doc.Articles.Items() {
		run = f.AddParagraph().AddText(a.Title)
		run.Size(16)

		run = f.AddParagraph().AddText(fmt.Sprintf("Source: %s | Date: %s", a.SourceName, doc.DisplayDate(a)))
		run.Size(10)
		run.Color("808080")

		if a.Link != "" {
			run = f.AddParagraph().AddText(a.Link)
			run.Size(10)
			run.Color("0000FF")
		}
		if a.Summary != "" {
			f.AddParagraph().AddText(a.Summary)
		}
		for _, line := range generatedLines(a) {
			f.AddParagraph().AddText(line)
		}
		f.AddParagraph() // Spacer
	}

	if err := f.Save(path); err != nil {
		return fmt.Errorf("save DOCX: %w", err)
	}
	return nil
}
