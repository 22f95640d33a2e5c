package launchpad

// Person is the subset of a Launchpad person or team entry used here.
type Person struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	IsTeam      bool   `json:"is_team"`
	WebLink     string `json:"web_link"`
}

// collection is one page of a Launchpad collection resource.
type collection struct {
	TotalSize          int      `json:"total_size"`
	Start              int      `json:"start"`
	Entries            []Person `json:"entries"`
	NextCollectionLink string   `json:"next_collection_link"`
}
