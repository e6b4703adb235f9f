package googlebooks

type volumesResponse struct {
	TotalItems int      `json:"totalItems"`
	Items      []volume `json:"items"`
}

type volume struct {
	ID         string     `json:"id"`
	VolumeInfo volumeInfo `json:"volumeInfo"`
}

type volumeInfo struct {
	Title               string     `json:"title"`
	Subtitle            string     `json:"subtitle"`
	Authors             []string   `json:"authors"`
	Description         string     `json:"description"`
	InfoLink            string     `json:"infoLink"`
	CanonicalVolumeLink string     `json:"canonicalVolumeLink"`
	ImageLinks          imageLinks `json:"imageLinks"`
}

type imageLinks struct {
	SmallThumbnail string `json:"smallThumbnail"`
	Thumbnail      string `json:"thumbnail"`
}
