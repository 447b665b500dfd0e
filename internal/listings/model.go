package listings

// Listing is one record returned by the nearby listings endpoint.
// Fields the bot does not render are ignored at decode time.
type Listing struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Images      []Image `json:"images"`
}

// Image is a listing photo.
type Image struct {
	Image string `json:"image"`
}

// Coordinates is a WGS84 point. Long is sent before Lat on the wire.
type Coordinates struct {
	Long float64
	Lat  float64
}
