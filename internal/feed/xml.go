package feed

import (
	"encoding/xml"
	"fmt"
	"io"
	"log"
	"strings"

	"feedsync/internal/model"
)

// shoppingItem mirrors one <item> of a Google Shopping style feed.
// Unqualified tags also match the g: namespaced variants some networks
// emit, so absent fields simply stay empty instead of failing.
type shoppingItem struct {
	ID           string `xml:"http://base.google.com/ns/1.0 id"`
	Title        string `xml:"title"`
	Description  string `xml:"description"`
	Link         string `xml:"link"`
	ImageLink    string `xml:"http://base.google.com/ns/1.0 image_link"`
	Price        string `xml:"http://base.google.com/ns/1.0 price"`
	SalePrice    string `xml:"http://base.google.com/ns/1.0 sale_price"`
	Brand        string `xml:"http://base.google.com/ns/1.0 brand"`
	ProductType  string `xml:"http://base.google.com/ns/1.0 product_type"`
	Availability string `xml:"http://base.google.com/ns/1.0 availability"`
	GTIN         string `xml:"http://base.google.com/ns/1.0 gtin"`
	MPN          string `xml:"http://base.google.com/ns/1.0 mpn"`
}

// DecodeXML walks a namespaced Shopping feed and turns every <item>
// into a RawRecord. Items carrying no recognizable fields are skipped
// and counted; a broken document is fatal for the feed.
func DecodeXML(r io.Reader) ([]model.RawRecord, int, error) {
	dec := xml.NewDecoder(r)

	var records []model.RawRecord
	skipped := 0

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, skipped, fmt.Errorf("xml decode: %w", err)
		}

		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "item" {
			continue
		}

		var it shoppingItem
		if err := dec.DecodeElement(&it, &se); err != nil {
			return nil, skipped, fmt.Errorf("xml decode item: %w", err)
		}
		rec := itemToRecord(it)
		if rec.Len() == 0 {
			log.Printf("xml: skipping empty item")
			skipped++
			continue
		}
		records = append(records, rec)
	}

	return records, skipped, nil
}

func itemToRecord(it shoppingItem) model.RawRecord {
	rec := model.NewRawRecord()
	rec.Set("id", strings.TrimSpace(it.ID))
	rec.Set("title", strings.TrimSpace(it.Title))
	rec.Set("description", strings.TrimSpace(it.Description))
	rec.Set("link", strings.TrimSpace(it.Link))
	rec.Set("image", strings.TrimSpace(it.ImageLink))
	rec.Set("price", strings.TrimSpace(it.Price))
	rec.Set("sale_price", strings.TrimSpace(it.SalePrice))
	rec.Set("brand", strings.TrimSpace(it.Brand))
	rec.Set("category", strings.TrimSpace(it.ProductType))
	rec.Set("availability", strings.TrimSpace(it.Availability))
	rec.Set("gtin", strings.TrimSpace(it.GTIN))
	rec.Set("model", strings.TrimSpace(it.MPN))
	return rec
}
