package notify

// AppDetail carries the presentation fields shared by both change kinds.
// Region is the display name, Release the already formatted timestamp.
type AppDetail struct {
	ID       string
	Name     string
	Version  string
	Region   string
	IconURL  string
	Notes    string
	Release  string
	StoreURL string
}

// NewApp is an app observed for the first time this run.
type NewApp struct {
	AppDetail
}

// UpdatedApp is an app whose version string changed since the last run.
type UpdatedApp struct {
	AppDetail
	OldVersion string
}

// Message is what a channel delivers. URL and IconURL are optional hints;
// channels that cannot render them ignore them.
type Message struct {
	Title   string
	Body    string
	URL     string
	IconURL string
}
