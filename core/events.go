package core

// Realtime topics, named after the tables whose rows changed.
const (
	TopicMessages         = "messages"
	TopicAnnouncements    = "announcements"
	TopicLocationTracking = "location_tracking"
	TopicRequests         = "requests"
)

// Change actions.
const (
	ActionInsert = "insert"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Event notifies subscribers that a row changed. Clients reload their list on receipt.
type Event struct {
	Topic  string `json:"topic"`
	Action string `json:"action"`
	ID     string `json:"id"`

	// UserIDs restricts delivery to these users; empty means every subscriber of Topic.
	UserIDs []string `json:"-"`
}

// Publisher fans out change events.
type Publisher interface {
	Publish(evt Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(Event) {}

// NopPublisher drops every event.
var NopPublisher Publisher = nopPublisher{}
