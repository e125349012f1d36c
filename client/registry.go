package client

import (
	"sync"
	"time"
)

type request struct {
	ProfileID string
	Accessed  time.Time
}

// https://blog.golang.org/maps
// mediate access to the requests-map using a mutex,
// needed because the map is also maintained by a GO-routine (Flush)
var registry = struct {
	sync.RWMutex
	requests map[string]request // key is the client IP
}{}

// Registry tracks the last profile each client requested, so a page
// refresh can be told apart from a real visit before the view counter
// moves
type Registry struct {
}

func (r Registry) Initialize() {
	registry.requests = make(map[string]request)
}

// Continue reports whether the request counts as a new visit. The same
// client hitting the same profile twice in a row is a refresh and returns
// false; the registry is updated either way.
// Read-compare-update happens under one lock, so two concurrent requests
// of the same client cannot both count as a visit.
func (r Registry) Continue(client string, profileID string) bool {

	registry.Lock()
	found := registry.requests[client].ProfileID != profileID

	// add or update the last (relevant) request
	registry.requests[client] = request{
		ProfileID: profileID,
		Accessed:  time.Now(),
	}
	registry.Unlock()

	return found
}

// Flush removes requests from the registry which are older than 15 minutes
// usually called by a GO-routine that runs in a ticker
func (r Registry) Flush() {

	registry.Lock()
	now := time.Now()
	if len(registry.requests) > 5000 {
		// it's safe to just delete expired keys, since iterations over maps are not ordered
		for key, value := range registry.requests {
			if now.Sub(value.Accessed).Minutes() > 15 {
				delete(registry.requests, key)
			}
		}
	}
	registry.Unlock()
}

// Count returns how many different clients are currently active
func (r Registry) Count() int {
	registry.RLock()
	cnt := len(registry.requests)
	registry.RUnlock()
	return cnt
}

// Dump returns the last accessed profile and timestamp for each client
func (r Registry) Dump(max int) []request {

	var res []request
	var req request
	i := 0

	registry.RLock()
	for _, v := range registry.requests {
		if i > max {
			break
		}

		req.ProfileID = v.ProfileID
		req.Accessed = v.Accessed

		res = append(res, req)
		i++
	}
	registry.RUnlock()

	return res
}
