package sonarr

// MonitorPolicy names a season-monitoring strategy offered at the final
// wizard step.
type MonitorPolicy string

const (
	// MonitorFuture ignores existing and missing episodes; only new
	// content is grabbed.
	MonitorFuture MonitorPolicy = "future"
	// MonitorAll backfills existing and missing episodes.
	MonitorAll MonitorPolicy = "all"
	// MonitorNone unmonitors every listed season; only seasons announced
	// after the add would be monitored.
	MonitorNone MonitorPolicy = "none"
	// MonitorLatest monitors the newest listed season and later ones.
	MonitorLatest MonitorPolicy = "latest"
	// MonitorFirst monitors only the first real season plus any season
	// announced after the add.
	MonitorFirst MonitorPolicy = "first"
)

// MonitorPolicies returns the policies in menu order.
func MonitorPolicies() []MonitorPolicy {
	return []MonitorPolicy{MonitorFuture, MonitorAll, MonitorNone, MonitorLatest, MonitorFirst}
}

// KeyboardValue returns the literal policy token shown on the keyboard.
func (p MonitorPolicy) KeyboardValue() string { return string(p) }

// BuildAddRequest assembles the add-series payload for the chosen profile,
// folder, and monitoring policy.
func BuildAddRequest(series Series, profileID int64, folderPath string, policy MonitorPolicy) AddRequest {
	request := AddRequest{
		TVDBID:           series.TVDBID,
		Title:            series.Title,
		TitleSlug:        series.TitleSlug,
		RootFolderPath:   folderPath,
		SeasonFolder:     true,
		Monitored:        true,
		SeriesType:       "standard",
		QualityProfileID: profileID,
		Seasons:          applyMonitorPolicy(series.Seasons, policy),
	}

	switch policy {
	case MonitorFuture:
		request.AddOptions = &AddOptions{IgnoreEpisodesWithFiles: true, IgnoreEpisodesWithoutFiles: true}
	case MonitorAll:
		request.AddOptions = &AddOptions{}
	}
	return request
}

// applyMonitorPolicy returns a copy of seasons with monitored flags set
// for the policy. Season 0 (specials) never participates in the first/last
// season computation but is flagged by the same threshold rules as the
// rest.
func applyMonitorPolicy(seasons []Season, policy MonitorPolicy) []Season {
	out := append([]Season(nil), seasons...)

	last, first, ok := seasonBounds(out)
	if !ok {
		return out
	}

	switch policy {
	case MonitorNone:
		for i := range out {
			out[i].Monitored = out[i].SeasonNumber >= last+1
		}
	case MonitorLatest:
		for i := range out {
			out[i].Monitored = out[i].SeasonNumber >= last
		}
	case MonitorFirst:
		for i := range out {
			out[i].Monitored = out[i].SeasonNumber >= last+1
		}
		for i := range out {
			if out[i].SeasonNumber == first {
				out[i].Monitored = !out[i].Monitored
			}
		}
	}
	return out
}

// seasonBounds computes the highest season number and the lowest non-special
// season number. ok is false when the list is empty.
func seasonBounds(seasons []Season) (last, first int, ok bool) {
	if len(seasons) == 0 {
		return 0, 0, false
	}

	last = seasons[0].SeasonNumber
	firstSet := false
	for _, season := range seasons {
		if season.SeasonNumber > last {
			last = season.SeasonNumber
		}
		if season.SeasonNumber == 0 {
			continue
		}
		if !firstSet || season.SeasonNumber < first {
			first = season.SeasonNumber
			firstSet = true
		}
	}
	return last, first, true
}
