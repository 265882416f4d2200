// Package pdf implementa la generación de la hoja de picking imprimible de un
// movimiento de stock.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Bodega  │  N° Movimiento + Tipo + Fecha            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  DATOS: referencia / prioridad / origen-destino              │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: # | SKU | Artículo | Cant. | UM | Desde | Hacia      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: total de líneas + casillas de firma                 │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	appmovement "github.com/jhoicas/Almacen-api/internal/application/movement"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPickingSheetGenerator implementa movement.PickingSheetGenerator usando Maroto v2.
type MarotoPickingSheetGenerator struct{}

var _ appmovement.PickingSheetGenerator = (*MarotoPickingSheetGenerator)(nil)

// NewMarotoPickingSheetGenerator construye el generador.
func NewMarotoPickingSheetGenerator() *MarotoPickingSheetGenerator { return &MarotoPickingSheetGenerator{} }

// GeneratePickingSheet genera el PDF y devuelve sus bytes.
func (g *MarotoPickingSheetGenerator) GeneratePickingSheet(
	_ context.Context,
	m *entity.Movement,
	warehouse *entity.Warehouse,
	items map[string]*entity.Item,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Hoja de Picking", true).
		WithAuthor(warehouse.Name, true).
		Build()

	doc := maroto.New(cfg)

	doc.AddRows(headerRow(m, warehouse))
	doc.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	doc.AddRows(detailRow(m))
	doc.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	doc.AddRows(tableHeaderRow())
	for _, r := range tableLineRows(m, items) {
		doc.AddRows(r)
	}

	doc.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	doc.AddRows(footerRows(m)...)

	out, err := doc.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return out.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: bodega (izq) y número/tipo/fecha del movimiento (der).
func headerRow(m *entity.Movement, warehouse *entity.Warehouse) core.Row {
	fecha := m.MovementDate.Format("02/01/2006")

	return row.New(18).Add(
		col.New(7).Add(
			text.New(warehouse.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(nonEmpty(warehouse.Address, "—"), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("HOJA DE PICKING", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(shortID(m.ID), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New(m.Type+"  |  "+fecha, props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// detailRow: referencia, prioridad, estado.
func detailRow(m *entity.Movement) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New("DATOS DEL MOVIMIENTO", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Referencia: %s   |   Prioridad: %s   |   Estado: %s",
				nonEmpty(m.ReferenceNumber, "—"),
				m.Priority,
				m.Status,
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de líneas.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("#", 1, align.Center),
		h("SKU", 2, align.Left),
		h("Artículo", 4, align.Left),
		h("Cant.", 1, align.Right),
		h("UM", 1, align.Center),
		h("Desde", 1, align.Center),
		h("Hacia", 1, align.Center),
		h("✓", 1, align.Center),
	)
}

// tableLineRows: una fila por línea del movimiento, en orden de LineNumber.
func tableLineRows(m *entity.Movement, items map[string]*entity.Item) []core.Row {
	result := make([]core.Row, 0, len(m.Lines))
	for _, l := range m.Lines {
		sku, name := "—", l.ItemID
		if it, ok := items[l.ItemID]; ok {
			sku, name = it.SKU, it.Name
		}
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(
				fmt.Sprintf("%d", l.LineNumber),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(2).Add(text.New(sku, props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
			col.New(4).Add(text.New(name, props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
			col.New(1).Add(text.New(
				l.RequestedQty.String(),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(1).Add(text.New(l.UnitOfMeasure, props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(1).Add(text.New(shortID(l.FromLocationID), props.Text{Size: 7, Align: align.Center, Top: 1})),
			col.New(1).Add(text.New(shortID(l.ToLocationID), props.Text{Size: 7, Align: align.Center, Top: 1})),
			col.New(1).Add(text.New("[   ]", props.Text{Size: 8, Align: align.Center, Top: 1, Color: colorGray})),
		))
	}
	return result
}

// footerRows: total de líneas + casillas de firma del operario y supervisor.
func footerRows(m *entity.Movement) []core.Row {
	return []core.Row{
		row.New(8).Add(col.New(12).Add(
			text.New(fmt.Sprintf("Total de líneas: %d", len(m.Lines)), props.Text{
				Style: fontstyle.Bold, Size: 9, Top: 2,
			}),
		)),
		row.New(4),
		row.New(14).Add(
			col.New(6).Add(
				text.New("______________________________", props.Text{Size: 9, Top: 6, Align: align.Center}),
				text.New("Operario", props.Text{Size: 8, Top: 11, Align: align.Center, Color: colorGray}),
			),
			col.New(6).Add(
				text.New("______________________________", props.Text{Size: 9, Top: 6, Align: align.Center}),
				text.New("Supervisor", props.Text{Size: 8, Top: 11, Align: align.Center, Color: colorGray}),
			),
		),
	}
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// shortID recorta un UUID a su primer bloque para impresión.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	if id == "" {
		return "—"
	}
	return id
}
