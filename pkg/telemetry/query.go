package telemetry

import (
	"fmt"
	"sort"
	"strconv"

	lru "github.com/hashicorp/golang-lru/v2"
)

const queryCacheSize = 256

// QueryEngine filters, sorts, and paginates events drawn from a Store.
// Results pages are cached in an LRU keyed by the store's append generation,
// so a cache entry can never outlive the data it was computed from.
type QueryEngine struct {
	store *Store
	cache *lru.Cache[string, QueryResult]
}

// NewQueryEngine creates a query engine over the given store.
func NewQueryEngine(store *Store) *QueryEngine {
	// lru.New only fails for non-positive sizes.
	cache, _ := lru.New[string, QueryResult](queryCacheSize)
	return &QueryEngine{
		store: store,
		cache: cache,
	}
}

// Query applies the filter, sorts matches by timestamp descending (newest
// first), and returns the page [offset, offset+limit) plus the total match
// count. Events with equal timestamps keep their relative store order.
// limit and offset must be validated by the caller to be non-negative.
func (q *QueryEngine) Query(filter QueryFilter, limit, offset int) QueryResult {
	key := cacheKey(q.store.Version(), filter, limit, offset)
	if cached, ok := q.cache.Get(key); ok {
		return cached
	}

	matched := filterEvents(q.store.AllEvents(), filter)
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})

	result := QueryResult{
		Total:  len(matched),
		Limit:  limit,
		Offset: offset,
		Events: page(matched, limit, offset),
	}
	q.cache.Add(key, result)
	return result
}

// filterEvents returns the events matching the filter, preserving order.
func filterEvents(events []Event, filter QueryFilter) []Event {
	matched := make([]Event, 0, len(events))
	for _, event := range events {
		if filter.EventType != "" && event.EventType != filter.EventType {
			continue
		}
		if filter.StartTime != nil && event.Timestamp.Before(*filter.StartTime) {
			continue
		}
		if filter.EndTime != nil && event.Timestamp.After(*filter.EndTime) {
			continue
		}
		matched = append(matched, event)
	}
	return matched
}

func page(events []Event, limit, offset int) []Event {
	if offset >= len(events) {
		return []Event{}
	}
	end := offset + limit
	if end > len(events) {
		end = len(events)
	}
	return events[offset:end]
}

func cacheKey(version uint64, filter QueryFilter, limit, offset int) string {
	// Absent bounds encode as "-" so a nil bound can never collide with a
	// real timestamp value.
	start, end := "-", "-"
	if filter.StartTime != nil {
		start = strconv.FormatInt(filter.StartTime.UnixNano(), 10)
	}
	if filter.EndTime != nil {
		end = strconv.FormatInt(filter.EndTime.UnixNano(), 10)
	}
	return fmt.Sprintf("%d|%s|%s|%s|%d|%d", version, filter.EventType, start, end, limit, offset)
}
