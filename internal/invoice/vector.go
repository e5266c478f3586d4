package invoice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tourbill/internal/models"

	"github.com/google/uuid"
	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/rs/zerolog"
)

// itemColumns is the explicit column-width table for the line-item
// grid (12-unit page width). There is no layout engine underneath, so
// these widths are the layout.
var itemColumns = struct {
	Description int
	Travelers   int
	Duration    int
	UnitPrice   int
	Amount      int
}{5, 1, 2, 2, 2}

// VectorRenderer produces the fixed-coordinate paginated rendition of
// an invoice for file export. Since text cannot reflow here, the
// description column is truncated to a fixed rune budget instead.
type VectorRenderer struct {
	logos  *LogoFetcher
	logger *zerolog.Logger
}

func NewVectorRenderer(logos *LogoFetcher, logger *zerolog.Logger) *VectorRenderer {
	return &VectorRenderer{logos: logos, logger: logger}
}

// Render generates the PDF bytes and a collision-free filename. The
// filename carries a timestamp plus a short random token so repeated
// exports of one booking never collide or look cached.
func (r *VectorRenderer) Render(ctx context.Context, cm *ContentModel) ([]byte, string, error) {
	cfg := config.NewBuilder().
		WithPageNumber().
		WithLeftMargin(12).
		WithTopMargin(14).
		WithRightMargin(12).
		Build()

	m := maroto.New(cfg)

	r.addHeader(ctx, m, cm)
	r.addParties(m, cm)
	r.addItemsTable(m, cm)
	r.addTotals(m, cm)
	r.addFooter(m, cm)

	doc, err := m.Generate()
	if err != nil {
		return nil, "", fmt.Errorf("generate vector document: %w", err)
	}

	filename := fmt.Sprintf("invoice_%s_%s_%s.pdf",
		sanitizeToken(cm.InvoiceNumber),
		time.Now().UTC().Format("20060102T150405Z"),
		uuid.NewString()[:8],
	)

	return doc.GetBytes(), filename, nil
}

// addHeader embeds the fetched logo when available and falls back to
// the plain company name otherwise. Fetch failures are logged and
// swallowed; they must never fail the document.
func (r *VectorRenderer) addHeader(ctx context.Context, m core.Maroto, cm *ContentModel) {
	brand := col.New(6).Add(
		text.New(cm.Company.Name, props.Text{
			Size:  16,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
		text.New(cm.Company.Address, props.Text{
			Size:  9,
			Top:   9,
			Align: align.Left,
		}),
	)

	if r.logos != nil {
		if data, ext, err := r.logos.Fetch(ctx, cm.Company.LogoURL); err != nil {
			r.logger.Warn().Err(err).Str("logo_url", cm.Company.LogoURL).Msg("logo fetch failed, using text header")
		} else {
			brand = col.New(6).Add(
				image.NewFromBytes(data, ext, props.Rect{
					Percent: 70,
					Left:    2,
				}),
			)
		}
	}

	m.AddRow(26,
		brand,
		col.New(6).Add(
			text.New("INVOICE", props.Text{
				Size:  20,
				Style: fontstyle.Bold,
				Align: align.Right,
			}),
			text.New(fmt.Sprintf("# %s", cm.InvoiceNumber), props.Text{
				Size:  10,
				Top:   9,
				Align: align.Right,
			}),
		),
	)

	m.AddRow(4, line.NewCol(12))
}

func (r *VectorRenderer) addParties(m core.Maroto, cm *ContentModel) {
	m.AddRow(6,
		col.New(6).Add(text.New("BILL TO", props.Text{Size: 8, Style: fontstyle.Bold})),
		col.New(6).Add(text.New("DETAILS", props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Right})),
	)

	billTo := cm.BillTo.Name
	if cm.BillTo.Email != "" {
		billTo += "\n" + cm.BillTo.Email
	}
	if cm.BillTo.Country != "" {
		billTo += "\n" + cm.BillTo.Country
	}

	m.AddRow(18,
		col.New(6).Add(
			text.New(billTo, props.Text{Size: 9, Align: align.Left}),
		),
		col.New(6).Add(
			text.New(fmt.Sprintf("Issued: %s", cm.IssueDate), props.Text{Size: 9, Align: align.Right}),
			text.New(fmt.Sprintf("Due: %s", cm.DueDate), props.Text{Size: 9, Top: 5, Align: align.Right}),
			text.New(fmt.Sprintf("Status: %s", cm.Status), props.Text{Size: 9, Top: 10, Align: align.Right}),
		),
	)
}

func (r *VectorRenderer) addItemsTable(m core.Maroto, cm *ContentModel) {
	headerStyle := props.Text{Size: 9, Style: fontstyle.Bold}

	m.AddRow(8,
		col.New(itemColumns.Description).Add(text.New("Description", headerStyle)),
		col.New(itemColumns.Travelers).Add(text.New("Trav.", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Center})),
		col.New(itemColumns.Duration).Add(text.New("Duration", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Center})),
		col.New(itemColumns.UnitPrice).Add(text.New("Unit Price", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right})),
		col.New(itemColumns.Amount).Add(text.New("Amount", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right})),
	)

	m.AddRow(2, line.NewCol(12))

	for _, item := range cm.Lines {
		m.AddRow(8,
			col.New(itemColumns.Description).Add(
				text.New(TruncateDescription(item.Description, models.MaxDescriptionRunes), props.Text{Size: 9}),
			),
			col.New(itemColumns.Travelers).Add(
				text.New(item.Travelers, props.Text{Size: 9, Align: align.Center}),
			),
			col.New(itemColumns.Duration).Add(
				text.New(item.Duration, props.Text{Size: 9, Align: align.Center}),
			),
			col.New(itemColumns.UnitPrice).Add(
				text.New(item.UnitPrice, props.Text{Size: 9, Align: align.Right}),
			),
			col.New(itemColumns.Amount).Add(
				text.New(item.Amount, props.Text{Size: 9, Align: align.Right}),
			),
		)
	}

	m.AddRow(3, line.NewCol(12))
}

func (r *VectorRenderer) addTotals(m core.Maroto, cm *ContentModel) {
	m.AddRow(6,
		col.New(7),
		col.New(3).Add(text.New("Subtotal:", props.Text{Size: 10, Align: align.Right})),
		col.New(2).Add(text.New(cm.Totals.Subtotal, props.Text{Size: 10, Align: align.Right})),
	)
	m.AddRow(6,
		col.New(7),
		col.New(3).Add(text.New(cm.Totals.DiscountLabel+":", props.Text{Size: 9, Align: align.Right})),
		col.New(2).Add(text.New(cm.Totals.DiscountAmount, props.Text{Size: 9, Align: align.Right})),
	)
	m.AddRow(2, col.New(7), line.NewCol(5))
	m.AddRow(8,
		col.New(7),
		col.New(3).Add(text.New("TOTAL:", props.Text{Size: 12, Style: fontstyle.Bold, Align: align.Right})),
		col.New(2).Add(text.New(cm.Totals.Total, props.Text{Size: 12, Style: fontstyle.Bold, Align: align.Right})),
	)
}

func (r *VectorRenderer) addFooter(m core.Maroto, cm *ContentModel) {
	m.AddRow(6, line.NewCol(12))
	m.AddRow(8,
		col.New(12).Add(
			text.New(fmt.Sprintf("%s · booking %s", cm.Company.Name, cm.InvoiceNumber), props.Text{
				Size:  8,
				Align: align.Center,
			}),
		),
	)
}

// TruncateDescription enforces the description rune budget with an
// ellipsis suffix. Idempotent: a string that already fits, including a
// previously truncated one, is returned unchanged.
func TruncateDescription(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

// sanitizeToken keeps filenames filesystem safe.
func sanitizeToken(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, s)
}
