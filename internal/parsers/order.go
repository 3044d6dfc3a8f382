package parsers

import (
	"encoding/csv"
	"io"

	"github.com/herobront95-prog/limit-planner/internal/models"
	"github.com/herobront95-prog/limit-planner/pkg/errors"
)

// WriteOrderCSV writes a computed order in the two-column layout the
// buyers expect: the store name over the product names and "Заказ" over
// the quantities. Manual request lines carry an empty quantity cell so
// they read as free-text requests, not computed amounts.
func WriteOrderCSV(w io.Writer, storeName string, items []models.OrderLineItem) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{storeName, "Заказ"}); err != nil {
		return errors.Wrap(err, errors.CategoryFile, errors.CodeWriteFailed, "failed to write order header")
	}

	for _, item := range items {
		quantity := item.Order.String()
		if item.IsManual {
			quantity = ""
		}
		if err := writer.Write([]string{item.Product, quantity}); err != nil {
			return errors.Wrap(err, errors.CategoryFile, errors.CodeWriteFailed, "failed to write order row")
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return errors.Wrap(err, errors.CategoryFile, errors.CodeWriteFailed, "failed to flush order file")
	}
	return nil
}
