package api

import (
	"encoding/json"
	"fmt"
)

// Page — унифицированный постраничный ответ списочных эндпойнтов.
//
// Бэкенд исторически отдаёт списки в трёх формах; вместо «утиной» пробы
// полей форма распознаётся по явному упорядоченному правилу:
//  1. простой массив — Items со счётчиком len;
//  2. объект {results, count};
//  3. объект {data, total}.
//
// Первая подошедшая форма выигрывает; ничего не подошло — ошибка разбора.
type Page struct {
	Items []json.RawMessage
	Count int64
}

// UnmarshalJSON реализует упорядоченное распознавание форм ответа.
func (p *Page) UnmarshalJSON(data []byte) error {
	const op = "api.Page.UnmarshalJSON"

	// 1) Простой массив.
	var plain []json.RawMessage
	if err := json.Unmarshal(data, &plain); err == nil {
		p.Items = plain
		p.Count = int64(len(plain))
		return nil
	}

	// 2) {results, count}.
	var results struct {
		Results []json.RawMessage `json:"results"`
		Count   *int64            `json:"count"`
	}
	if err := json.Unmarshal(data, &results); err == nil && results.Results != nil {
		p.Items = results.Results
		if results.Count != nil {
			p.Count = *results.Count
		} else {
			p.Count = int64(len(results.Results))
		}
		return nil
	}

	// 3) {data, total}.
	var wrapped struct {
		Data  []json.RawMessage `json:"data"`
		Total *int64            `json:"total"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Data != nil {
		p.Items = wrapped.Data
		if wrapped.Total != nil {
			p.Count = *wrapped.Total
		} else {
			p.Count = int64(len(wrapped.Data))
		}
		return nil
	}

	return fmt.Errorf("%s: unrecognized paged response shape", op)
}

// Decode разбирает элементы страницы в срез назначения (указатель на срез).
func (p *Page) Decode(dst any) error {
	const op = "api.Page.Decode"

	raw, err := json.Marshal(p.Items)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
