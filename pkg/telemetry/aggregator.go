package telemetry

// Aggregate computes category statistics and global summaries over the given
// events. It is a pure function of its input: no hidden state, and the
// result does not depend on input order. Empty input yields zero totals and
// empty maps.
//
// Category membership is tested per group independently; an event type that
// belongs to no group is still counted in the global EventTypes map.
func Aggregate(events []Event) Stats {
	stats := Stats{
		TotalEvents: len(events),
		EventTypes:  make(map[EventType]int),
		Search: SearchStats{
			Queries: make(map[string]int),
		},
		Errors: ErrorStats{
			ErrorTypes: make(map[string]int),
		},
	}

	playbackTracks := make(map[string]bool)
	var resultCountSum float64
	var resultCountN int
	var pageLoadSum, apiSum float64

	for i := range events {
		event := &events[i]
		stats.EventTypes[event.EventType]++

		if inGroup(event.EventType, PlaybackEventTypes) {
			aggregatePlayback(event, &stats.Playback, playbackTracks)
		}
		if inGroup(event.EventType, SearchEventTypes) {
			aggregateSearch(event, &stats.Search, &resultCountSum, &resultCountN)
		}
		if inGroup(event.EventType, PerformanceEventTypes) {
			aggregatePerformance(event, &stats.Performance, &pageLoadSum, &apiSum)
		}
		if inGroup(event.EventType, ErrorEventTypes) {
			stats.Errors.TotalErrors++
			stats.Errors.ErrorTypes[event.StringProp("errorType", "unknown")]++
		}
	}

	stats.Playback.UniqueTracks = len(playbackTracks)
	if stats.Playback.TotalPlays > 0 {
		stats.Playback.CompletionRate = float64(stats.Playback.TotalCompletes) / float64(stats.Playback.TotalPlays)
	}
	if stats.Search.TotalSearches > 0 {
		stats.Search.ClickThroughRate = float64(stats.Search.TotalClicks) / float64(stats.Search.TotalSearches)
	}
	if resultCountN > 0 {
		stats.Search.AvgResultCount = resultCountSum / float64(resultCountN)
	}
	if stats.Performance.PageLoads > 0 {
		stats.Performance.AvgPageLoadMs = pageLoadSum / float64(stats.Performance.PageLoads)
	}
	if stats.Performance.APICalls > 0 {
		stats.Performance.AvgAPIResponseMs = apiSum / float64(stats.Performance.APICalls)
	}

	return stats
}

func aggregatePlayback(event *Event, pb *PlaybackStats, tracks map[string]bool) {
	switch event.EventType {
	case EventTypeTrackPlay:
		pb.TotalPlays++
	case EventTypeTrackPause:
		pb.TotalPauses++
	case EventTypeTrackSkip:
		pb.TotalSkips++
	case EventTypeTrackComplete:
		pb.TotalCompletes++
	case EventTypePlaybackSeek:
		pb.TotalSeeks++
	}
	if trackID := event.StringProp("trackId", ""); trackID != "" {
		tracks[trackID] = true
	}
}

func aggregateSearch(event *Event, search *SearchStats, resultSum *float64, resultN *int) {
	switch event.EventType {
	case EventTypeSearchQuery:
		search.TotalSearches++
		if query := event.StringProp("query", ""); query != "" {
			search.Queries[query]++
		}
		if count, ok := event.FloatProp("resultCount", 0); ok {
			*resultSum += count
			*resultN++
		}
	case EventTypeSearchResultClick:
		search.TotalClicks++
	}
}

func aggregatePerformance(event *Event, perf *PerformanceStats, pageLoadSum, apiSum *float64) {
	duration, _ := event.FloatProp("durationMs", 0)
	switch event.EventType {
	case EventTypePageLoad:
		perf.PageLoads++
		*pageLoadSum += duration
	case EventTypeAPIResponseTime:
		perf.APICalls++
		*apiSum += duration
	case EventTypeBuffering:
		perf.BufferingEvents++
	}
}

func inGroup(t EventType, group []EventType) bool {
	for _, member := range group {
		if t == member {
			return true
		}
	}
	return false
}
