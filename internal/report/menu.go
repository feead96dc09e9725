// Package report renders owner-facing spreadsheets.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/tealeg/xlsx"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/models"
)

// ContentTypeXLSX is the media type of the files written here
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var menuHeaders = []string{
	"ID", "Name", "Category", "Description", "Price",
	"Available", "Vegetarian", "Dietary", "Image",
}

// MenuFilename returns the download name for a restaurant's menu export
func MenuFilename(restaurant models.Restaurant) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(restaurant.Name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	name := strings.TrimSuffix(b.String(), "-")
	if name == "" {
		name = restaurant.ID
	}
	return fmt.Sprintf("%s-menu.xlsx", name)
}

// WriteMenuXLSX writes the menu as a single-sheet workbook, one row per item
func WriteMenuXLSX(w io.Writer, restaurant models.Restaurant, items []models.MenuItem) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Menu")
	if err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	title := sheet.AddRow()
	title.AddCell().SetString(restaurant.Name)
	title.AddCell().SetString(restaurant.ID)

	header := sheet.AddRow()
	for _, h := range menuHeaders {
		header.AddCell().SetString(h)
	}

	for _, item := range items {
		row := sheet.AddRow()

		row.AddCell().SetString(item.ID)
		row.AddCell().SetString(item.Name)
		row.AddCell().SetString(item.Category)
		row.AddCell().SetString(item.Description)
		row.AddCell().SetString(item.Price.StringFixed(2))
		row.AddCell().SetBool(item.IsAvailable)
		row.AddCell().SetBool(item.IsVegetarian)
		row.AddCell().SetString(strings.Join(item.Dietary, ","))
		row.AddCell().SetString(item.Image)
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
