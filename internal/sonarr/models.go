package sonarr

import "fmt"

// Season is one season of a series, with its monitoring flag.
type Season struct {
	SeasonNumber int  `json:"seasonNumber"`
	Monitored    bool `json:"monitored"`
}

// Series is a series record from lookup or the library listing.
type Series struct {
	Title       string   `json:"title"`
	Year        int      `json:"year"`
	TVDBID      int64    `json:"tvdbId"`
	TitleSlug   string   `json:"titleSlug"`
	Status      string   `json:"status"`
	SeasonCount int      `json:"seasonCount"`
	Seasons     []Season `json:"seasons"`
}

// KeyboardValue returns the literal offered on the series reply keyboard:
// the title, with the year appended when known.
func (s Series) KeyboardValue() string {
	if s.Year > 0 {
		return fmt.Sprintf("%s - %d", s.Title, s.Year)
	}
	return s.Title
}

// Profile is a quality profile.
type Profile struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// KeyboardValue returns the profile's display name.
func (p Profile) KeyboardValue() string { return p.Name }

// RootFolder is a configured destination directory.
type RootFolder struct {
	ID   int64  `json:"id"`
	Path string `json:"path"`
}

// KeyboardValue returns the folder path. Paths may start with '/', which
// the dispatcher must not mistake for a command while a folder choice is
// pending.
func (f RootFolder) KeyboardValue() string { return f.Path }

// CalendarEntry is one upcoming episode.
type CalendarEntry struct {
	Title         string `json:"title"`
	AirDate       string `json:"airDate"`
	SeasonNumber  int    `json:"seasonNumber"`
	EpisodeNumber int    `json:"episodeNumber"`
	Series        struct {
		Title string `json:"title"`
	} `json:"series"`
}

// AddOptions control episode backfill when a series is added.
type AddOptions struct {
	IgnoreEpisodesWithFiles    bool `json:"ignoreEpisodesWithFiles"`
	IgnoreEpisodesWithoutFiles bool `json:"ignoreEpisodesWithoutFiles"`
}

// AddRequest is the payload submitted to add a series.
type AddRequest struct {
	TVDBID           int64       `json:"tvdbId"`
	Title            string      `json:"title"`
	TitleSlug        string      `json:"titleSlug"`
	RootFolderPath   string      `json:"rootFolderPath"`
	SeasonFolder     bool        `json:"seasonFolder"`
	Monitored        bool        `json:"monitored"`
	SeriesType       string      `json:"seriesType"`
	QualityProfileID int64       `json:"qualityProfileId"`
	Seasons          []Season    `json:"seasons"`
	AddOptions       *AddOptions `json:"addOptions,omitempty"`
}

// Command names accepted by RunCommand.
const (
	CommandRSSSync              = "RssSync"
	CommandRefreshSeries        = "RefreshSeries"
	CommandMissingEpisodeSearch = "missingEpisodeSearch"
)
