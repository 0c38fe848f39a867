package docxfill

// xmlParagraph - <w:p>
type xmlParagraph struct {
	node *xmlNode
}

// Text - plain text of all runs
func (p *xmlParagraph) Text() string {
	return string(p.node.Contents())
}

// SetText - replace paragraph text with single run.
// First text run keeps its properties, other text runs are removed.
func (p *xmlParagraph) SetText(text string) {
	texts := p.node.textNodes()
	if len(texts) == 0 {
		run := newWordNode("r")
		t := newWordNode("t")
		run.add(t)
		p.node.add(run)
		t.setText(text)
		return
	}

	first := texts[0]
	first.setText(text)
	firstRun := first.closestUp("r")

	for _, t := range texts[1:] {
		run := t.closestUp("r")
		if run != nil && run != firstRun && run.closestUp("p") == p.node {
			run.delete()
			continue
		}
		t.delete()
	}
}
