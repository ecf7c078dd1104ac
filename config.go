package qubesite

type Config struct {
	Pages    []PageConfig    `json:"pages"`
	Releases *ReleasesConfig `json:"releases,omitempty"`
}

type PageConfig struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Source string `json:"source"`
}

type ReleasesConfig struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Clone string `json:"clone"`
}
