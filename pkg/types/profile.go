package types

// Profile describes one browser profile as reported to the extension.
// HighlightColor and Avatar serialize as JSON null when absent; Email is
// always present, possibly empty.
type Profile struct {
	Directory      string  `json:"directory"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	HighlightColor *string `json:"highlightColor"`
	Avatar         *string `json:"avatar"`
}

// ProfileList is the result payload of a profile enumeration.
// CurrentIndex is the position of the profile whose account email matched
// the query, or null when nothing matched.
type ProfileList struct {
	Profiles     []Profile `json:"profiles"`
	CurrentIndex *int      `json:"currentIndex"`
}
