package miniapp

import (
	"github.com/appetiteclub/miniapp/internal/cart"
	"github.com/appetiteclub/miniapp/internal/money"
)

type LineView struct {
	cart.Line
	Key          cart.LineKey `json:"key"`
	Subtotal     money.Amount `json:"subtotal"`
	SubtotalText string       `json:"subtotal_text"`
}

type CartView struct {
	Lines     []LineView   `json:"lines"`
	Total     money.Amount `json:"total"`
	TotalText string       `json:"total_text"`
	Count     int          `json:"count"`
}

func (h *Handler) lineView(l cart.Line) LineView {
	return LineView{
		Key:          l.Key(),
		Line:         l,
		Subtotal:     l.Subtotal(),
		SubtotalText: money.Format(l.Subtotal(), h.language, h.currency),
	}
}

func (h *Handler) cartView(lines []cart.Line) CartView {
	view := CartView{
		Lines: make([]LineView, 0, len(lines)),
		Total: cart.Total(lines),
		Count: cart.Count(lines),
	}
	for _, l := range lines {
		view.Lines = append(view.Lines, h.lineView(l))
	}
	view.TotalText = money.Format(view.Total, h.language, h.currency)
	return view
}
