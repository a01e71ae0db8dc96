package document

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/YadurajManu/bolonyay-server/internal/database"
)

// Layout constants, in millimeters on an A4 page. The page-break rule is
// cursor + estimated height vs. the printable limit; the concrete values
// are configuration, not arithmetic.
const (
	pageWidth     = 210.0
	pageHeight    = 297.0
	marginLeft    = 20.0
	marginRight   = 20.0
	marginTop     = 20.0
	printableTop  = marginTop
	printableEnd  = 272.0 // leave room for the page number stamp
	printableW    = pageWidth - marginLeft - marginRight
	lineHeight    = 5.5
	titleHeight   = 9.0
	headingHeight = 8.0
	bulletIndent  = 6.0
	charsPerLine  = 70 // conservative for 11pt serif across 170mm
	footerHeight  = 52.0
	pageNumberY   = 284.0
)

type itemKind int

const (
	itemTitle itemKind = iota
	itemCourtLine
	itemCaseLine
	itemPartyLine
	itemVersus
	itemSectionTitle
	itemContinuation
	itemBullet
	itemFooter
	itemSpacer
)

// planItem is one drawable element with its estimated height.
type planItem struct {
	kind   itemKind
	text   string
	height float64
}

// estimateTextHeight is the pagination heuristic: content length divided
// by a fixed characters-per-line, times a fixed line height.
func estimateTextHeight(text string, width float64) float64 {
	perLine := int(float64(charsPerLine) * (width / printableW))
	if perLine < 1 {
		perLine = 1
	}
	lines := (len(text) + perLine - 1) / perLine
	if lines < 1 {
		lines = 1
	}
	return float64(lines) * lineHeight
}

func newItem(kind itemKind, text string) planItem {
	item := planItem{kind: kind, text: text}
	switch kind {
	case itemTitle:
		item.height = titleHeight
	case itemCourtLine, itemCaseLine, itemVersus:
		item.height = lineHeight + 1.5
	case itemSectionTitle, itemContinuation:
		item.height = headingHeight
	case itemPartyLine:
		item.height = estimateTextHeight(text, printableW)
	case itemBullet:
		item.height = estimateTextHeight(text, printableW-bulletIndent) + 1.0
	case itemFooter:
		item.height = footerHeight
	case itemSpacer:
		item.height = 4.0
	}
	return item
}

// buildItems flattens the document into the ordered element list the
// planner paginates.
func buildItems(record *database.CaseRecord, content Content, tmpl Template) []planItem {
	var items []planItem

	items = append(items,
		newItem(itemCourtLine, tmpl.Court()),
		newItem(itemTitle, tmpl.Title()),
		newItem(itemCaseLine, fmt.Sprintf("Case No: %s", record.CaseNumber)),
		newItem(itemCaseLine, fmt.Sprintf("Filed on: %s", record.CreatedAt.Format("02 January 2006"))),
		newItem(itemSpacer, ""),
	)

	petitionerLabel, respondentLabel := PartyLabels(record.CaseType)
	items = append(items, newItem(itemSectionTitle, fmt.Sprintf("PARTIES (%s MATTER)", Category(record.CaseType))))
	for _, line := range partyLines(petitionerLabel, content.Fields.Petitioner) {
		items = append(items, newItem(itemPartyLine, line))
	}
	items = append(items, newItem(itemVersus, "VERSUS"))
	for _, line := range partyLines(respondentLabel, content.Fields.Respondent) {
		items = append(items, newItem(itemPartyLine, line))
	}
	items = append(items, newItem(itemSpacer, ""))

	for _, section := range composeBody(record, content) {
		items = append(items, newItem(itemSectionTitle, section.Title))
		for _, bullet := range section.Bullets {
			items = append(items, newItem(itemBullet, bullet))
		}
		items = append(items, newItem(itemSpacer, ""))
	}

	items = append(items, newItem(itemFooter, ""))

	return items
}

// planPages assigns items to pages. Before each item: if the cursor plus
// the item's estimated height passes the printable limit, break the page;
// a break inside a body section opens the next page with a continuation
// header. The footer always stays whole, forcing a break when it does
// not fit.
func planPages(items []planItem) [][]planItem {
	var pages [][]planItem
	var page []planItem

	cursor := printableTop
	currentSection := ""

	breakPage := func(continuation bool) {
		pages = append(pages, page)
		page = nil
		cursor = printableTop
		if continuation && currentSection != "" {
			cont := newItem(itemContinuation, currentSection+" (continued)")
			page = append(page, cont)
			cursor += cont.height
		}
	}

	for _, item := range items {
		if cursor+item.height > printableEnd {
			// Trailing spacers never justify a break.
			if item.kind == itemSpacer {
				continue
			}
			breakPage(item.kind == itemBullet || item.kind == itemPartyLine)
		}
		if item.kind == itemSectionTitle {
			currentSection = item.text
		}
		page = append(page, item)
		cursor += item.height
	}
	if len(page) > 0 {
		pages = append(pages, page)
	}

	return pages
}

// Render produces the paginated PDF for a filed case. Pagination runs as
// two passes: planPages fixes every break and the total page count, then
// drawing consumes the plan, so each page is stamped "Page N of M"
// without lookahead.
func Render(record *database.CaseRecord, content Content) ([]byte, int, error) {
	tmpl := SelectTemplate(record.CaseType)
	pages := planPages(buildItems(record, content, tmpl))
	total := len(pages)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(marginLeft, marginTop, marginRight)

	for n, page := range pages {
		pdf.AddPage()
		cursor := printableTop

		for _, item := range page {
			drawItem(pdf, item, cursor)
			cursor += item.height
		}

		pdf.SetFont("Times", "", 9)
		pdf.SetXY(marginLeft, pageNumberY)
		pdf.CellFormat(printableW, 5, fmt.Sprintf("Page %d of %d", n+1, total), "", 0, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, 0, fmt.Errorf("failed to write pdf: %w", err)
	}

	return buf.Bytes(), total, nil
}

func drawItem(pdf *gofpdf.Fpdf, item planItem, cursor float64) {
	switch item.kind {
	case itemTitle:
		pdf.SetFont("Times", "B", 15)
		pdf.SetXY(marginLeft, cursor)
		pdf.CellFormat(printableW, titleHeight, item.text, "", 0, "C", false, 0, "")
	case itemCourtLine:
		pdf.SetFont("Times", "B", 11)
		pdf.SetXY(marginLeft, cursor)
		pdf.CellFormat(printableW, lineHeight, item.text, "", 0, "C", false, 0, "")
	case itemCaseLine:
		pdf.SetFont("Times", "", 11)
		pdf.SetXY(marginLeft, cursor)
		pdf.CellFormat(printableW, lineHeight, item.text, "", 0, "C", false, 0, "")
	case itemVersus:
		pdf.SetFont("Times", "B", 11)
		pdf.SetXY(marginLeft, cursor)
		pdf.CellFormat(printableW, lineHeight, item.text, "", 0, "C", false, 0, "")
	case itemSectionTitle, itemContinuation:
		pdf.SetFont("Times", "B", 12)
		pdf.SetXY(marginLeft, cursor+1.5)
		pdf.CellFormat(printableW, headingHeight-1.5, item.text, "", 0, "L", false, 0, "")
	case itemPartyLine:
		pdf.SetFont("Times", "", 11)
		pdf.SetXY(marginLeft, cursor)
		pdf.MultiCell(printableW, lineHeight, item.text, "", "L", false)
	case itemBullet:
		pdf.SetFont("Times", "", 11)
		pdf.SetXY(marginLeft, cursor)
		pdf.CellFormat(bulletIndent, lineHeight, "-", "", 0, "L", false, 0, "")
		pdf.SetXY(marginLeft+bulletIndent, cursor)
		pdf.MultiCell(printableW-bulletIndent, lineHeight, item.text, "", "L", false)
	case itemFooter:
		drawFooter(pdf, cursor)
	}
}

// drawFooter renders the verification and signature block.
func drawFooter(pdf *gofpdf.Fpdf, cursor float64) {
	pdf.SetFont("Times", "B", 12)
	pdf.SetXY(marginLeft, cursor)
	pdf.CellFormat(printableW, headingHeight, "VERIFICATION", "", 0, "L", false, 0, "")

	pdf.SetFont("Times", "", 11)
	pdf.SetXY(marginLeft, cursor+headingHeight)
	pdf.MultiCell(printableW, lineHeight,
		"Verified at the place and date below that the contents of the above "+
			"filing are true to my knowledge and belief, and nothing material "+
			"has been concealed therefrom.", "", "L", false)

	y := cursor + headingHeight + 3*lineHeight + 6
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(printableW/2, lineHeight, fmt.Sprintf("Place: %s", "_________________"), "", 0, "L", false, 0, "")
	pdf.SetXY(marginLeft, y+lineHeight+2)
	pdf.CellFormat(printableW/2, lineHeight, fmt.Sprintf("Date: %s", time.Now().Format("02/01/2006")), "", 0, "L", false, 0, "")

	pdf.SetXY(marginLeft+printableW/2, y+lineHeight+8)
	pdf.CellFormat(printableW/2, lineHeight, "_________________________", "", 0, "R", false, 0, "")
	pdf.SetXY(marginLeft+printableW/2, y+2*lineHeight+8)
	pdf.CellFormat(printableW/2, lineHeight, "Signature of the Petitioner", "", 0, "R", false, 0, "")
}
