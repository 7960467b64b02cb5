package fetch

import (
	"encoding/json"
	"strconv"

	"catalogweb/internal/model"
	"catalogweb/pkg/ptr"
)

// maxDescriptionLen bounds descriptions populated from remote import.
const maxDescriptionLen = 500

// catalogResponse mirrors the remote products.json payload. Unknown fields
// are ignored so new upstream fields cannot break the import.
type catalogResponse struct {
	Products []remoteProduct `json:"products"`
}

type remoteProduct struct {
	ID       int64           `json:"id"`
	Title    string          `json:"title"`
	BodyHTML *string         `json:"body_html"`
	Variants []remoteVariant `json:"variants"`
	Images   []remoteImage   `json:"images"`
}

type remoteVariant struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Price     string `json:"price"`
	Available bool   `json:"available"`
}

type remoteImage struct {
	ID  int64   `json:"id"`
	Src string  `json:"src"`
	Alt *string `json:"alt"`
}

// toProduct maps a remote item to the internal product shape. Mapping never
// fails: a missing or unparsable first-variant price defaults to zero, and
// blank optional fields become absent.
func (rp remoteProduct) toProduct() model.Product {
	var price float64
	if len(rp.Variants) > 0 {
		if v, err := strconv.ParseFloat(rp.Variants[0].Price, 64); err == nil {
			price = v
		}
	}

	var imageURL *string
	if len(rp.Images) > 0 && rp.Images[0].Src != "" {
		imageURL = ptr.New(rp.Images[0].Src)
	}

	var description *string
	if rp.BodyHTML != nil && *rp.BodyHTML != "" {
		description = ptr.New(truncate(*rp.BodyHTML, maxDescriptionLen))
	}

	// The full variant list is kept verbatim even though price only
	// reflects the first variant.
	vs := rp.Variants
	if vs == nil {
		vs = []remoteVariant{}
	}
	var variants *string
	if b, err := json.Marshal(vs); err == nil {
		variants = ptr.New(string(b))
	}

	return model.Product{
		ExternalID:  rp.ID,
		Title:       rp.Title,
		Price:       price,
		ImageURL:    imageURL,
		Description: description,
		Variants:    variants,
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
