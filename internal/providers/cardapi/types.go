package cardapi

/* -------- Response -------- */

// The API has served two generations of payloads: the current one nests set
// metadata and marketplace prices, the legacy one is flat. Both unmarshal
// into cardPayload and normalize the same way.

type searchResponse struct {
	Data       []cardPayload `json:"data"`
	TotalCount int           `json:"totalCount"`
}

type cardResponse struct {
	Data cardPayload `json:"data"`
}

type cardPayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// nested shape
	Set *struct {
		Name   string `json:"name"`
		Series string `json:"series"`
	} `json:"set"`
	Marketplace *struct {
		URL    string                `json:"url"`
		Prices map[string]priceEntry `json:"prices"`
	} `json:"tcgplayer"`

	// legacy flat shape
	SetName string      `json:"setName"`
	Prices  *flatPrices `json:"prices"`
}

type priceEntry struct {
	Low    float64 `json:"low"`
	Mid    float64 `json:"mid"`
	High   float64 `json:"high"`
	Market float64 `json:"market"`
}

type flatPrices struct {
	Low    float64 `json:"low"`
	Market float64 `json:"market"`
	High   float64 `json:"high"`
}
